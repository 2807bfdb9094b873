package numeral

// Kanji digits with the formal variants used in legal documents.
var kanjiDigits = map[rune]int{
	'〇': 0, '零': 0,
	'一': 1, '壱': 1,
	'二': 2, '弐': 2,
	'三': 3, '参': 3,
	'四': 4,
	'五': 5, '伍': 5,
	'六': 6,
	'七': 7,
	'八': 8,
	'九': 9,
}

var kanjiUnits = map[rune]int{
	'十': 10, '拾': 10,
	'百': 100, '佰': 100, '陌': 100,
	'千': 1000, '仟': 1000, '阡': 1000,
	'万': 10000, '萬': 10000,
}

var kanjiFigures = [...]string{"〇", "一", "二", "三", "四", "五", "六", "七", "八", "九"}

// ParseKanji reads a kanji figure such as 二千三百四十五 or 一万二千.
// Plain and full-width digits mix freely with the kanji forms.
func ParseKanji(s string) (int, error) {
	total, section, digits := 0, 0, 0
	hasDigits, any := false, false
	for _, r := range s {
		if d, ok := kanjiDigits[r]; ok {
			digits = digits*10 + d
			hasDigits, any = true, true
			continue
		}
		if (r >= '0' && r <= '9') || (r >= '０' && r <= '９') {
			d := int(r - '0')
			if r >= '０' {
				d = int(r - '０')
			}
			digits = digits*10 + d
			hasDigits, any = true, true
			continue
		}
		unit, ok := kanjiUnits[r]
		if !ok {
			return 0, ErrNotNumeral
		}
		any = true
		if unit == 10000 {
			section += digits
			if section == 0 {
				section = 1
			}
			total += section * 10000
			section, digits, hasDigits = 0, 0, false
			continue
		}
		if !hasDigits {
			digits = 1
		}
		section += digits * unit
		digits, hasDigits = 0, false
	}
	if !any {
		return 0, ErrNotNumeral
	}
	return total + section + digits, nil
}

// FormatKanji writes a non-negative value as a kanji figure.
func FormatKanji(n int) (string, error) {
	if n < 0 {
		return "", ErrOutOfRange
	}
	if n == 0 {
		return "〇", nil
	}
	if n >= 10000 {
		head, err := FormatKanji(n / 10000)
		if err != nil {
			return "", err
		}
		tail := ""
		if n%10000 != 0 {
			tail, err = FormatKanji(n % 10000)
			if err != nil {
				return "", err
			}
		}
		return head + "万" + tail, nil
	}
	out := ""
	for _, u := range []struct {
		value int
		mark  string
	}{{1000, "千"}, {100, "百"}, {10, "十"}} {
		d := n / u.value
		n %= u.value
		if d == 0 {
			continue
		}
		if d > 1 {
			out += kanjiFigures[d]
		}
		out += u.mark
	}
	if n > 0 {
		out += kanjiFigures[n]
	}
	return out, nil
}

// ParseParenKanji reads ㈠ through ㈩.
func ParseParenKanji(s string) (int, error) {
	r, ok := onlyRune(s)
	if !ok || r < '㈠' || r > '㈩' {
		return 0, ErrNotNumeral
	}
	return int(r-'㈠') + 1, nil
}

// FormatParenKanji writes 1 through 10 as ㈠ through ㈩.
func FormatParenKanji(n int) (string, error) {
	if n < 1 || n > 10 {
		return "", ErrOutOfRange
	}
	return string(rune('㈠' + n - 1)), nil
}

// ParseCircledKanji reads ㊀ through ㊉.
func ParseCircledKanji(s string) (int, error) {
	r, ok := onlyRune(s)
	if !ok || r < '㊀' || r > '㊉' {
		return 0, ErrNotNumeral
	}
	return int(r-'㊀') + 1, nil
}

// FormatCircledKanji writes 1 through 10 as ㊀ through ㊉.
func FormatCircledKanji(n int) (string, error) {
	if n < 1 || n > 10 {
		return "", ErrOutOfRange
	}
	return string(rune('㊀' + n - 1)), nil
}
