package scoring

import (
	"errors"
	"math"

	"github.com/abhisek/talkie/internal/mode"
)

// ErrExpired is returned when an answer arrives for a puzzle or question
// that is no longer issued. The caller must issue fresh content.
var ErrExpired = errors.New("no issued content to check against")

// Mark classifies one unit (word or letter) of the reference.
type Mark string

const (
	MarkCorrect   Mark = "correct"
	MarkIncorrect Mark = "incorrect"
	MarkMissing   Mark = "missing"
)

// Token is one reference unit with what the learner produced for it.
type Token struct {
	Expected string `json:"expected"`
	Got      string `json:"got,omitempty"`
	Mark     Mark   `json:"mark"`
}

// Result is the grade for a single attempt.
type Result struct {
	Mode        mode.Mode `json:"mode"`
	Score       int       `json:"score"` // 0-100
	Stars       int       `json:"stars"` // 0-3
	Correct     bool      `json:"correct"`
	Similarity  float64   `json:"similarity"`
	Diff        []Token   `json:"diff,omitempty"`
	Feedback    string    `json:"feedback,omitempty"`
	Explanation string    `json:"explanation,omitempty"`
	Hint        string    `json:"hint,omitempty"`
}

// percent maps a 0-1 ratio to a 0-100 score. Ties round to even.
func percent(ratio float64) int {
	return int(math.RoundToEven(ratio * 100))
}
