package scoring

import (
	"strings"
	"unicode"
)

// wordMatchRatio is the per-word similarity at which a spoken word counts
// as correct.
const wordMatchRatio = 0.8

// WordDiff aligns submitted words to reference words by position.
func WordDiff(submission, reference string) []Token {
	ref := words(reference)
	sub := words(submission)

	out := make([]Token, len(ref))
	for i, w := range ref {
		switch {
		case i >= len(sub):
			out[i] = Token{Expected: w, Mark: MarkMissing}
		case Ratio(sub[i], w) >= wordMatchRatio:
			out[i] = Token{Expected: w, Got: sub[i], Mark: MarkCorrect}
		default:
			out[i] = Token{Expected: w, Got: sub[i], Mark: MarkIncorrect}
		}
	}
	return out
}

// LetterDiff compares letters by position up to the longer of the two
// words. Letters typed past the end of the reference come back as
// incorrect tokens with nothing expected.
func LetterDiff(submission, reference string) []Token {
	ref := []rune(strings.ToLower(strings.TrimSpace(reference)))
	sub := []rune(strings.ToLower(strings.TrimSpace(submission)))

	out := make([]Token, max(len(ref), len(sub)))
	for i := range out {
		switch {
		case i >= len(ref):
			out[i] = Token{Got: string(sub[i]), Mark: MarkIncorrect}
		case i >= len(sub):
			out[i] = Token{Expected: string(ref[i]), Mark: MarkMissing}
		case sub[i] == ref[i]:
			out[i] = Token{Expected: string(ref[i]), Got: string(sub[i]), Mark: MarkCorrect}
		default:
			out[i] = Token{Expected: string(ref[i]), Got: string(sub[i]), Mark: MarkIncorrect}
		}
	}
	return out
}

// words lower-cases s and splits it into words with surrounding
// punctuation removed.
func words(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
