package content

import "strings"

// Scramble shuffles the letters of word. The result differs from the word
// whenever the word has at least two distinct letters. intn returns a value
// in [0, n).
func Scramble(word string, intn func(int) int) string {
	letters := []rune(strings.ToLower(strings.TrimSpace(word)))
	orig := string(letters)
	if !hasDistinct(letters) {
		return orig
	}
	for tries := 0; tries < 10; tries++ {
		for i := len(letters) - 1; i > 0; i-- {
			j := intn(i + 1)
			letters[i], letters[j] = letters[j], letters[i]
		}
		if string(letters) != orig {
			return string(letters)
		}
	}
	// Unlucky source; rotating left by one always changes a word with two
	// distinct letters.
	return string(append(letters[1:], letters[0]))
}

func hasDistinct(r []rune) bool {
	for i := 1; i < len(r); i++ {
		if r[i] != r[0] {
			return true
		}
	}
	return false
}
