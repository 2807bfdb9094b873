package numeral

// ParseAlphabet reads a single ASCII or full-width letter as its
// position in the alphabet.
func ParseAlphabet(s string) (int, error) {
	r, ok := onlyRune(s)
	if !ok {
		return 0, ErrNotNumeral
	}
	switch {
	case r >= 'a' && r <= 'z':
		return int(r-'a') + 1, nil
	case r >= 'ａ' && r <= 'ｚ':
		return int(r-'ａ') + 1, nil
	}
	return 0, ErrNotNumeral
}

// FormatAlphabet writes 1 through 26 as ａ through ｚ.
func FormatAlphabet(n int) (string, error) {
	if n < 1 || n > 26 {
		return "", ErrOutOfRange
	}
	return string(rune('ａ' + n - 1)), nil
}

// ParseParenAlphabet reads ⒜ through ⒵ or a parenthesized letter such
// as (a).
func ParseParenAlphabet(s string) (int, error) {
	if r, ok := onlyRune(s); ok && r >= '⒜' && r <= '⒵' {
		return int(r-'⒜') + 1, nil
	}
	if inner, ok := parenInner(s); ok {
		return ParseAlphabet(inner)
	}
	return 0, ErrNotNumeral
}

// FormatParenAlphabet writes 1 through 26 as ⒜ through ⒵.
func FormatParenAlphabet(n int) (string, error) {
	if n < 1 || n > 26 {
		return "", ErrOutOfRange
	}
	return string(rune('⒜' + n - 1)), nil
}

// ParseCircledAlphabet reads ⓐ through ⓩ.
func ParseCircledAlphabet(s string) (int, error) {
	r, ok := onlyRune(s)
	if !ok || r < 'ⓐ' || r > 'ⓩ' {
		return 0, ErrNotNumeral
	}
	return int(r-'ⓐ') + 1, nil
}

// FormatCircledAlphabet writes 1 through 26 as ⓐ through ⓩ.
func FormatCircledAlphabet(n int) (string, error) {
	if n < 1 || n > 26 {
		return "", ErrOutOfRange
	}
	return string(rune('ⓐ' + n - 1)), nil
}
