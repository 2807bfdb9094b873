package numbering

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nerdneilsfield/go-docx-md/pkg/decorator"
	"github.com/nerdneilsfield/go-docx-md/pkg/numeral"
)

// Literal head recognition for the decode direction. Decoded body text
// opens with the numbers the encoder rendered, e.g. 第１章, 第３条の２,
// ⑴, (ｱ) or ②, and the matchers here recover depth, branch count, and
// the observed counter values from them.

const katakanaChars = "アイウエオカキクケコサシスセソタチツテトナニヌネノ" +
	"ハヒフヘホマミムメモヤユヨラリルレロワヰヱヲン"

const (
	arabicFrag   = `[0-9０-９]+`
	branchFrag   = `((?:の[0-9０-９]+)*)`
	katakanaFrag = "[ｦｱ-ﾝ" + katakanaChars + "]"
	plainSep     = `(?:  ?|\t|　)`
	sectionSep   = `(?:  ?|\t|　|\. ?|．)`
	restFrag     = `(.*\S(?s:.*))`
)

// Section head forms by depth: a +++title+++ line, then 第N条, N, ⑴,
// ア, (ｱ), ａ, ⒜. Each numbered form carries three groups: the bare
// symbol, its inner number, and its のN branches.
const (
	secTitleFrag = `\+\+\+(.*)\+\+\+`
	secArticle   = `(?:(第(` + arabicFrag + `)条?)` + branchFrag + `)`
	secNumber    = `(?:((` + arabicFrag + `))` + branchFrag + `)`
	secParenNum  = `(?:([⑴-⒇]|[(（](` + arabicFrag + `)[)）])` + branchFrag + `)`
	secKatakana  = `(?:((` + katakanaFrag + `))` + branchFrag + `)`
	secParenKata = `(?:([(（](` + katakanaFrag + `)[)）])` + branchFrag + `)`
	secAlphabet  = `(?:(([a-zａ-ｚ]))` + branchFrag + `)`
	secParenAlph = `(?:([⒜-⒵]|[(（]([a-zａ-ｚ])[)）])` + branchFrag + `)`
)

// sectionNumberGuardRe keeps plain decimals and enumerations such as
// １．５ from reading as a numbered section head.
var sectionNumberGuardRe = regexp.MustCompile(`^[0-9０-９]+(?:, ?|\. ?|，|．)[0-9０-９]+`)

// sectionPattern is one depth's head regexp with its group indices.
// Optional shallower and deeper forms surround the required one so a
// line can chain adjacent heads; the tail group captures the deeper
// heads for the caller to revisit.
type sectionPattern struct {
	re                  *regexp.Regexp
	sym, num, bra, tail int
}

var sectionPatterns = [7]sectionPattern{
	{regexp.MustCompile(`^` + secArticle + `()` + sectionSep + restFrag + `$`), 1, 2, 3, 4},
	{regexp.MustCompile(`^` + secNumber + `(` + secParenNum + `?` + secKatakana + `?` +
		secParenKata + `?` + secAlphabet + `?` + secParenAlph + `?)` + sectionSep + restFrag + `$`), 1, 2, 3, 4},
	{regexp.MustCompile(`^` + secNumber + `?` + secParenNum + `(` + secKatakana + `?` +
		secParenKata + `?` + secAlphabet + `?` + secParenAlph + `?)` + sectionSep + restFrag + `$`), 4, 5, 6, 7},
	{regexp.MustCompile(`^` + secNumber + `?` + secParenNum + `?` + secKatakana + `(` +
		secParenKata + `?` + secAlphabet + `?` + secParenAlph + `?)` + sectionSep + restFrag + `$`), 7, 8, 9, 10},
	{regexp.MustCompile(`^` + secNumber + `?` + secParenNum + `?` + secKatakana + `?` +
		secParenKata + `(` + secAlphabet + `?` + secParenAlph + `?)` + sectionSep + restFrag + `$`), 10, 11, 12, 13},
	{regexp.MustCompile(`^` + secNumber + `?` + secParenNum + `?` + secKatakana + `?` +
		secParenKata + `?` + secAlphabet + `(` + secParenAlph + `?)` + sectionSep + restFrag + `$`), 13, 14, 15, 16},
	{regexp.MustCompile(`^` + secNumber + `?` + secParenNum + `?` + secKatakana + `?` +
		secParenKata + `?` + secAlphabet + `?` + secParenAlph + `()` + sectionSep + restFrag + `$`), 16, 17, 18, 19},
}

// chapterMatchRes recognize 第N編 through 第N目 on stripped text.
var chapterMatchRes = [5]*regexp.Regexp{}

// Probe forms allow leading font decorators and are used for
// classification before the text is stripped.
var (
	decoratedFrag      = `(?:` + decorator.TokenPattern + `)*`
	chapterProbeRes    = [5]*regexp.Regexp{}
	sectionProbeRes    = [7]*regexp.Regexp{}
	sectionTitleRe     = regexp.MustCompile(`^` + decoratedFrag + secTitleFrag + decoratedFrag + `$`)
	listProbeRes       = [8]*regexp.Regexp{}
	listMatchRes       = [8]*regexp.Regexp{}
	listSymbolClasses  = [8]string{"・", "○", "△", "◇", "[⓪🄋①-⑳㉑-㉟㊱-㊿➀-➉]", "[㋐-㋾]", "[ⓐ-ⓩ]", "[㊀-㊉]"}
	listNumberedOffset = 4
)

func init() {
	for i, unit := range chapterUnits {
		core := `(第(` + arabicFrag + `)` + unit + `)` + branchFrag + plainSep
		chapterMatchRes[i] = regexp.MustCompile(`^` + core + restFrag + `$`)
		chapterProbeRes[i] = regexp.MustCompile(`^` + decoratedFrag + core + restFrag + `$`)
	}
	for i, p := range sectionPatterns {
		src := p.re.String()
		sectionProbeRes[i] = regexp.MustCompile(`^` + decoratedFrag + strings.TrimPrefix(src, `^`))
	}
	for i, class := range listSymbolClasses {
		core := `(` + class + `)` + plainSep + restFrag + `$`
		listMatchRes[i] = regexp.MustCompile(`^` + core)
		listProbeRes[i] = regexp.MustCompile(`^` + decoratedFrag + core)
	}
}

// Head is one numbered heading recognized in decoded text.
type Head struct {
	Depth  int
	Branch int
	// State holds the observed counter values, trunk first. Branch
	// entries are counter-domain, one less than the digit displayed.
	State []int
	// Rest is the text after the head. Section rests keep any deeper
	// adjacent heads, rejoined with a full-width space; match them at
	// the next depths and strip one leading full-width space when done.
	Rest string
}

// MatchChapter recognizes a chapter heading at the start of stripped
// text.
func MatchChapter(text string) (Head, bool) {
	for i, re := range chapterMatchRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		state := observedState(symbolValue(m[2]), m[3])
		return Head{Depth: i + 1, Branch: len(state) - 1, State: state, Rest: m[4]}, true
	}
	return Head{}, false
}

// MatchSection recognizes a section heading of one depth, 2 through 8,
// at the start of stripped text.
func MatchSection(text string, depth int) (Head, bool) {
	if depth < 2 || depth > 8 {
		return Head{}, false
	}
	if sectionNumberGuardRe.MatchString(text) {
		return Head{}, false
	}
	p := sectionPatterns[depth-2]
	m := p.re.FindStringSubmatch(text)
	if m == nil {
		return Head{}, false
	}
	num := m[p.num]
	if num == "" {
		num = m[p.sym]
	}
	state := observedState(symbolValue(num), m[p.bra])
	return Head{
		Depth:  depth,
		Branch: len(state) - 1,
		State:  state,
		Rest:   m[p.tail] + "　" + m[len(m)-1],
	}, true
}

// ListItem is one decoded list head.
type ListItem struct {
	Depth    int
	Numbered bool
	Value    int // observed number; -1 for bullets
	Rest     string
}

// MatchListItem recognizes a bullet or circled number at the start of
// stripped text.
func MatchListItem(text string) (ListItem, bool) {
	for i, re := range listMatchRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		item := ListItem{Depth: i%4 + 1, Value: -1, Rest: m[2]}
		if i >= listNumberedOffset {
			item.Numbered = true
			item.Value = listValue(i%4, m[1])
		}
		return item, true
	}
	return ListItem{}, false
}

func listValue(x int, sym string) int {
	var n int
	var err error
	switch x {
	case 0:
		n, err = numeral.ParseCircledArabic(sym)
	case 1:
		n, err = numeral.ParseCircledKatakana(sym)
	case 2:
		n, err = numeral.ParseCircledAlphabet(sym)
	default:
		n, err = numeral.ParseCircledKanji(sym)
	}
	if err != nil {
		return -1
	}
	return n
}

// ChapterDepth probes text, decorators included, for a chapter heading
// and returns its depth, or 0.
func ChapterDepth(text string) int {
	for i, re := range chapterProbeRes {
		if re.MatchString(text) {
			return i + 1
		}
	}
	return 0
}

// SectionDepths probes text, decorators included, for section
// headings. Head is the shallowest and tail the deepest depth present;
// a +++title+++ line is depth 1. Both are 0 for text with no section
// head.
func SectionDepths(text string) (head, tail int) {
	if !sectionNumberGuardRe.MatchString(text) {
		for i, re := range sectionProbeRes {
			if re.MatchString(text) {
				if head == 0 {
					head = i + 2
				}
				tail = i + 2
			}
		}
	}
	if head == 0 && sectionTitleRe.MatchString(text) {
		return 1, 1
	}
	return head, tail
}

// IsSectionTitle probes text, decorators included, for the +++title+++
// form of a depth 1 section.
func IsSectionTitle(text string) bool {
	return sectionTitleRe.MatchString(text)
}

// ListHeadDepth probes text, decorators included, for a list head and
// returns its depth, or 0.
func ListHeadDepth(text string) int {
	for i, re := range listProbeRes {
		if re.MatchString(text) {
			return i%4 + 1
		}
	}
	return 0
}

// symbolValue reads one head symbol as a number, dispatching on its
// alphabet. Unreadable symbols yield -1.
func symbolValue(sym string) int {
	r, _ := utf8.DecodeRuneInString(sym)
	var n int
	var err error
	switch {
	case r >= '0' && r <= '9' || r >= '０' && r <= '９':
		n, err = numeral.ParseArabic(sym)
	case r >= '⑴' && r <= '⒇':
		n, err = numeral.ParseParenArabic(sym)
	case r == 'ｦ' || r >= 'ｱ' && r <= 'ﾝ' || strings.ContainsRune(katakanaChars, r):
		n, err = numeral.ParseKatakana(sym)
	case r >= 'a' && r <= 'z' || r >= 'ａ' && r <= 'ｚ':
		n, err = numeral.ParseAlphabet(sym)
	case r >= '⒜' && r <= '⒵':
		n, err = numeral.ParseParenAlphabet(sym)
	default:
		return -1
	}
	if err != nil {
		return -1
	}
	return n
}

// observedState builds the observed counter vector from a symbol value
// and its のN branch text.
func observedState(value int, bra string) []int {
	state := []int{value}
	if bra == "" {
		return state
	}
	for _, p := range strings.Split(bra, "の")[1:] {
		n, err := numeral.ParseArabic(p)
		if err != nil {
			n = 0
		}
		state = append(state, n-1)
	}
	return state
}
