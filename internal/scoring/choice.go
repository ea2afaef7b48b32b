package scoring

import "github.com/abhisek/talkie/internal/mode"

// ChoiceKey is the stored answer for an issued multiple-choice question.
type ChoiceKey struct {
	Answer      int
	Options     []string
	Difficulty  mode.Difficulty
	Explanation string
}

// Choice grades a multiple-choice grammar answer by option index.
func Choice(choice int, key *ChoiceKey) (Result, error) {
	if key == nil {
		return Result{}, ErrExpired
	}
	res := Result{
		Mode:        mode.Grammar,
		Explanation: key.Explanation,
	}
	if choice == key.Answer {
		res.Score, res.Stars, res.Correct, res.Similarity = 100, key.Difficulty.Stars(), true, 1
		res.Feedback = "Correct!"
		return res, nil
	}
	res.Feedback = "Not quite."
	if key.Answer >= 0 && key.Answer < len(key.Options) {
		res.Feedback = "Not quite. The answer is \"" + key.Options[key.Answer] + "\"."
	}
	return res, nil
}
