// Package charwidth measures text in half-width character cells the way
// Japanese word processors lay out fixed-pitch text, and folds long lines
// at phrase boundaries.
package charwidth

import (
	"math"

	"github.com/mattn/go-runewidth"
	xwidth "golang.org/x/text/width"
)

// TextWidth is the folding threshold for emitted text lines, in
// half-width units.
const TextWidth = 68

// Symbols that Japanese fonts render double width even though their
// Unicode East Asian Width is ambiguous or neutral.
var wideSymbols = []string{
	"−☐☑",
	"´¨―‐∥…‥‘’“”±×÷≠≦≧∞∴♂♀°′″℃§",
	"☆★○●◎◇◆□■△▲▽▼※→←↑↓",
	"∈∋⊆⊇⊂⊃∪∩∧∨⇒⇔∀∃∠⊥⌒∂∇≡≒≪≫√∽∝∵",
	"∫∬Å‰♯♭♪†‡¶◯",
	"─│┌┐┘└├┬┤┴┼━┃┏┓┛┗┣┳┫┻╋┠┯┨┷┿┝┰┥┸╂",
	"№℡∮∑∟⊿",
	"Ёё🄋",
}

// Letter and enumeration blocks of the same kind, as inclusive ranges.
var wideRanges = [][2]rune{
	{'Α', 'Ρ'}, {'Σ', 'Ω'}, // greek
	{'α', 'ρ'}, {'σ', 'ω'},
	{'А', 'Я'}, {'а', 'я'}, // cyrillic
	{'①', '⑳'}, {'㉑', '㉟'}, {'㊱', '㊿'}, // circled numbers
	{'⑴', '⒇'}, {'⒈', '⒛'}, {'➀', '➉'},
	{'Ⅰ', 'Ⅻ'}, {'ⅰ', 'ⅻ'}, // roman numerals
	{'⒜', '⒵'}, {'Ⓐ', 'Ⓩ'}, {'ⓐ', 'ⓩ'}, {'🄐', '🄩'},
	{'㋐', '㋾'}, {'㊀', '㊉'}, // circled kana and ideographs
}

var forcedWide = map[rune]struct{}{}

func init() {
	for _, s := range wideSymbols {
		for _, r := range s {
			forcedWide[r] = struct{}{}
		}
	}
	for _, p := range wideRanges {
		for r := p[0]; r <= p[1]; r++ {
			forcedWide[r] = struct{}{}
		}
	}
}

// Wide reports whether r occupies two cells in a fixed-pitch Japanese font.
func Wide(r rune) bool {
	if _, ok := forcedWide[r]; ok {
		return true
	}
	switch xwidth.LookupRune(r).Kind() {
	case xwidth.EastAsianFullwidth, xwidth.EastAsianWide:
		return true
	}
	return runewidth.RuneWidth(r) > 1
}

// RealWidth measures s as rendered: wide runes count 2, narrow runes 1,
// a switch between the two classes adds 0.5 for letter spacing, and a
// tab advances to the next multiple of eight.
func RealWidth(s string) float64 {
	var wid float64
	last := 0
	for _, r := range s {
		if r == '\t' {
			wid = math.Floor((wid+8)/8) * 8
			last = 0
			continue
		}
		class := 1
		if Wide(r) {
			class = 2
		}
		wid += float64(class)
		if last != 0 && last != class {
			wid += 0.5
		}
		last = class
	}
	return wid
}

// IdealWidth measures s by East Asian Width alone, without letter
// spacing. Line folding uses this measure.
func IdealWidth(s string) int {
	wid := 0
	for _, r := range s {
		if r == '\t' {
			wid = (wid + 8) / 8 * 8
			continue
		}
		switch xwidth.LookupRune(r).Kind() {
		case xwidth.EastAsianFullwidth, xwidth.EastAsianWide:
			wid += 2
		default:
			wid++
		}
	}
	return wid
}
