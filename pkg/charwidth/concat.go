package charwidth

import (
	"strings"
	"unicode/utf8"
)

func joinable(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'z':
		return true
	}
	return strings.ContainsRune(",.)}]", r)
}

// Concat joins two text fragments, inserting a space only where both
// sides end and begin with Latin letters, digits or closing
// punctuation. Japanese text concatenates directly.
func Concat(a, b string) string {
	if a == "" || b == "" {
		return a + b
	}
	ra, _ := utf8.DecodeLastRuneInString(a)
	rb, _ := utf8.DecodeRuneInString(b)
	if joinable(ra) && joinable(rb) {
		return a + " " + b
	}
	return a + b
}

// ConcatLines folds a slice of lines into one string with Concat.
func ConcatLines(lines []string) string {
	out := ""
	for _, ln := range lines {
		out = Concat(out, ln)
	}
	return out
}
