// Package numeral converts between integers and the numbering
// characters of Japanese documents: arabic digits, katakana, alphabet
// letters, and kanji figures, each in plain, parenthesized, and
// circled shape.
package numeral

import (
	"errors"
	"strconv"
)

var (
	// ErrNotNumeral reports that a string is not a numeral of the
	// requested shape.
	ErrNotNumeral = errors.New("not a numeral")

	// ErrOutOfRange reports that a value has no representation in the
	// requested shape.
	ErrOutOfRange = errors.New("numeral out of range")
)

// Placeholder is substituted for a numeral that has no representation
// in its shape.
const Placeholder = "〓"

// onlyRune returns the single rune s consists of.
func onlyRune(s string) (rune, bool) {
	rs := []rune(s)
	if len(rs) != 1 {
		return 0, false
	}
	return rs[0], true
}

// runeIndex returns the 1-based position of r in seq, or 0.
func runeIndex(seq string, r rune) int {
	i := 1
	for _, c := range seq {
		if c == r {
			return i
		}
		i++
	}
	return 0
}

// parenInner strips one pair of surrounding parentheses, ASCII or
// full-width in any combination.
func parenInner(s string) (string, bool) {
	rs := []rune(s)
	if len(rs) < 3 {
		return "", false
	}
	if rs[0] != '(' && rs[0] != '（' {
		return "", false
	}
	if last := rs[len(rs)-1]; last != ')' && last != '）' {
		return "", false
	}
	return string(rs[1 : len(rs)-1]), true
}

// ParseArabic reads a run of ASCII or full-width digits.
func ParseArabic(s string) (int, error) {
	if s == "" {
		return 0, ErrNotNumeral
	}
	n := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			n = n*10 + int(r-'0')
		case r >= '０' && r <= '９':
			n = n*10 + int(r-'０')
		default:
			return 0, ErrNotNumeral
		}
	}
	return n, nil
}

// FormatArabic writes 0 through 9 as a full-width digit and larger
// values as plain decimal.
func FormatArabic(n int) (string, error) {
	if n < 0 {
		return "", ErrOutOfRange
	}
	if n <= 9 {
		return string(rune('０' + n)), nil
	}
	return strconv.Itoa(n), nil
}

// ParseParenArabic reads ⑴ through ⒇ or an explicitly parenthesized
// number such as (3) or （２１）.
func ParseParenArabic(s string) (int, error) {
	if r, ok := onlyRune(s); ok && r >= '⑴' && r <= '⒇' {
		return int(r-'⑴') + 1, nil
	}
	if inner, ok := parenInner(s); ok {
		return ParseArabic(inner)
	}
	return 0, ErrNotNumeral
}

// FormatParenArabic writes 1 through 20 as ⑴ through ⒇ and other
// non-negative values in explicit parentheses.
func FormatParenArabic(n int) (string, error) {
	switch {
	case n < 0:
		return "", ErrOutOfRange
	case n == 0:
		return "(0)", nil
	case n <= 20:
		return string(rune('⑴' + n - 1)), nil
	default:
		return "(" + strconv.Itoa(n) + ")", nil
	}
}

// ParseCircledArabic reads ⓪ and 🄋, ① through ㊿, and ➀ through ➉.
func ParseCircledArabic(s string) (int, error) {
	r, ok := onlyRune(s)
	if !ok {
		return 0, ErrNotNumeral
	}
	switch {
	case r == '⓪' || r == '🄋':
		return 0, nil
	case r >= '①' && r <= '⑳':
		return int(r-'①') + 1, nil
	case r >= '㉑' && r <= '㉟':
		return int(r-'㉑') + 21, nil
	case r >= '㊱' && r <= '㊿':
		return int(r-'㊱') + 36, nil
	case r >= '➀' && r <= '➉':
		return int(r-'➀') + 1, nil
	}
	return 0, ErrNotNumeral
}

// FormatCircledArabic writes 0 through 50 as a circled digit. Larger
// values have no circled form.
func FormatCircledArabic(n int) (string, error) {
	switch {
	case n == 0:
		return "⓪", nil
	case n >= 1 && n <= 20:
		return string(rune('①' + n - 1)), nil
	case n >= 21 && n <= 35:
		return string(rune('㉑' + n - 21)), nil
	case n >= 36 && n <= 50:
		return string(rune('㊱' + n - 36)), nil
	}
	return "", ErrOutOfRange
}
