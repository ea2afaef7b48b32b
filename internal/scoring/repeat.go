package scoring

import (
	"strings"

	"github.com/abhisek/talkie/internal/mode"
)

// Repeat grades a spoken repetition of a reference sentence.
func Repeat(submission, reference string) Result {
	ratio := Ratio(normalize(submission), normalize(reference))
	return Result{
		Mode:       mode.Repeat,
		Score:      percent(ratio),
		Stars:      repeatStars(ratio),
		Correct:    ratio >= 0.90,
		Similarity: ratio,
		Diff:       WordDiff(submission, reference),
		Feedback:   repeatFeedback(ratio),
	}
}

func repeatStars(ratio float64) int {
	switch {
	case ratio >= 0.90:
		return 3
	case ratio >= 0.75:
		return 2
	case ratio >= 0.60:
		return 1
	default:
		return 0
	}
}

func repeatFeedback(ratio float64) string {
	switch {
	case ratio >= 0.85:
		return "Excellent! Very clear pronunciation!"
	case ratio >= 0.60:
		return "Good! Try speaking a little more clearly."
	default:
		return "Try again! Speak slowly and clearly."
	}
}

// Participation grades the open-ended modes, where any real answer counts.
func Participation(m mode.Mode, submission string) Result {
	if strings.TrimSpace(submission) == "" {
		return Result{Mode: m, Feedback: "Say something and let's talk!"}
	}
	return Result{
		Mode:       m,
		Score:      100,
		Stars:      1,
		Correct:    true,
		Similarity: 1,
		Feedback:   "Great talking with you!",
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
