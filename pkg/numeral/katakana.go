package numeral

// Gojūon order, the sequence used for katakana numbering. The
// half-width set has no ヰ and ヱ, so its positions differ from 45 on.
const (
	gojuon     = "アイウエオカキクケコサシスセソタチツテトナニヌネノハヒフヘホマミムメモヤユヨラリルレロワヰヱヲン"
	gojuonHalf = "ｱｲｳｴｵｶｷｸｹｺｻｼｽｾｿﾀﾁﾂﾃﾄﾅﾆﾇﾈﾉﾊﾋﾌﾍﾎﾏﾐﾑﾒﾓﾔﾕﾖﾗﾘﾙﾚﾛﾜｦﾝ"
)

// ParseKatakana reads a single katakana letter, full- or half-width,
// as its position in gojūon order.
func ParseKatakana(s string) (int, error) {
	r, ok := onlyRune(s)
	if !ok {
		return 0, ErrNotNumeral
	}
	if i := runeIndex(gojuon, r); i > 0 {
		return i, nil
	}
	if i := runeIndex(gojuonHalf, r); i > 0 {
		return i, nil
	}
	return 0, ErrNotNumeral
}

// FormatKatakana writes 1 through 48 as ア through ン.
func FormatKatakana(n int) (string, error) {
	rs := []rune(gojuon)
	if n < 1 || n > len(rs) {
		return "", ErrOutOfRange
	}
	return string(rs[n-1]), nil
}

// ParseParenKatakana reads a parenthesized katakana such as (ｱ) or
// （ア）.
func ParseParenKatakana(s string) (int, error) {
	inner, ok := parenInner(s)
	if !ok {
		return 0, ErrNotNumeral
	}
	return ParseKatakana(inner)
}

// FormatParenKatakana writes 1 through 46 as (ｱ) through (ﾝ), using
// half-width letters.
func FormatParenKatakana(n int) (string, error) {
	rs := []rune(gojuonHalf)
	if n < 1 || n > len(rs) {
		return "", ErrOutOfRange
	}
	return "(" + string(rs[n-1]) + ")", nil
}

// ParseCircledKatakana reads ㋐ through ㋾.
func ParseCircledKatakana(s string) (int, error) {
	r, ok := onlyRune(s)
	if !ok || r < '㋐' || r > '㋾' {
		return 0, ErrNotNumeral
	}
	return int(r-'㋐') + 1, nil
}

// FormatCircledKatakana writes 1 through 47 as ㋐ through ㋾.
func FormatCircledKatakana(n int) (string, error) {
	if n < 1 || n > 47 {
		return "", ErrOutOfRange
	}
	return string(rune('㋐' + n - 1)), nil
}
