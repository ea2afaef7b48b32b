package mode

import "strings"

// Difficulty is the level of a practice item.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// AllDifficulties returns the difficulties from easiest to hardest.
func AllDifficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// ParseDifficulty normalizes a difficulty string. Anything unrecognized
// becomes Easy.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "medium", "med", "normal":
		return Medium
	case "hard", "difficult":
		return Hard
	default:
		return Easy
	}
}

// Stars returns the star tier a correct discrete-choice answer earns at
// this difficulty.
func (d Difficulty) Stars() int {
	switch d {
	case Hard:
		return 3
	case Medium:
		return 2
	default:
		return 1
	}
}
