package scoring

import (
	"fmt"

	"github.com/abhisek/talkie/internal/mode"
)

// puzzleHintAfter is the number of failed tries on one puzzle word before
// a hint is offered.
const puzzleHintAfter = 2

// Spelling grades a typed spelling of reference.
func Spelling(submission, reference string) Result {
	sub, ref := normalize(submission), normalize(reference)
	res := Result{
		Mode: mode.SpellBee,
		Diff: LetterDiff(sub, ref),
	}
	if ref == "" {
		return res
	}
	if sub == ref {
		res.Score, res.Stars, res.Correct, res.Similarity = 100, 3, true, 1
		res.Feedback = "Perfect spelling!"
		return res
	}

	ratio := Ratio(sub, ref)
	res.Similarity = ratio
	res.Score = percent(ratio)
	switch {
	case ratio >= 0.8:
		res.Stars = 2
		res.Feedback = "So close! Check the highlighted letters."
	case ratio >= 0.5:
		res.Stars = 1
		res.Feedback = "Good try! A few letters are different."
	default:
		res.Feedback = fmt.Sprintf("Not quite. The word is spelled %q.", ref)
	}
	return res
}

// Puzzle grades an unscramble answer against the issued target word.
// priorFailures counts earlier wrong answers for the same word.
func Puzzle(submission, target string, priorFailures int) (Result, error) {
	ref := normalize(target)
	if ref == "" {
		return Result{}, ErrExpired
	}
	sub := normalize(submission)
	res := Result{
		Mode: mode.WordPuzzle,
		Diff: LetterDiff(sub, ref),
	}
	if sub == ref {
		res.Score, res.Stars, res.Correct, res.Similarity = 100, 3, true, 1
		res.Feedback = "You solved it!"
		return res, nil
	}

	ratio := Ratio(sub, ref)
	res.Similarity = ratio
	res.Score = percent(ratio)
	if ratio >= 0.75 {
		res.Stars = 1
		res.Feedback = "Almost! You're very close."
	} else {
		res.Feedback = "Not yet. Look at the letters again."
	}
	if priorFailures+1 >= puzzleHintAfter {
		res.Hint = PuzzleHint(ref)
	}
	return res, nil
}

// PuzzleHint reveals the first letter and the length of word.
func PuzzleHint(word string) string {
	r := []rune(word)
	if len(r) == 0 {
		return ""
	}
	return fmt.Sprintf("It starts with %q and has %d letters.", string(r[0]), len(r))
}
