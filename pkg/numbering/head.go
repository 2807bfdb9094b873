package numbering

import (
	"regexp"
	"strings"

	"github.com/nerdneilsfield/go-docx-md/pkg/numeral"
)

// chapterUnits are the unit characters of the five chapter depths.
var chapterUnits = [5]string{"編", "章", "節", "款", "目"}

// listBullets are the bullet characters of the four list depths.
var listBullets = [4]string{"・", "○", "△", "◇"}

// formatNumeral renders n in one shape, substituting the placeholder
// and recording an overflow warning when the shape cannot express it.
func formatNumeral(format func(int) (string, error), name string, n int, warnings *[]string) string {
	s, err := format(n)
	if err != nil {
		*warnings = append(*warnings, "※ 警告: "+name+"は範囲を超えています")
		return numeral.Placeholder
	}
	return s
}

// branches renders the のN continuations of a heading about to step at
// depth index x, branch count ydepth.
func (c *Counters) branches(f Family, x, ydepth int, warnings *[]string) string {
	var b strings.Builder
	for y := 1; y <= ydepth; y++ {
		sub := numeral.Placeholder
		if x < familyDepths[f] && y < familyBranches[f] {
			value := c.states[f][x][y] + 1
			if y == ydepth {
				value++
			}
			sub = formatNumeral(numeral.FormatArabic, "数字番号", value, warnings)
		}
		b.WriteString("の")
		b.WriteString(sub)
	}
	return b.String()
}

// ChapterHead renders the literal heading a chapter marker displays
// before its counter steps at depth and branch, e.g. 第１編, or
// 第３編の２ for an inserted continuation. Out-of-range depths render
// as placeholders.
func (c *Counters) ChapterHead(depth, branch int) (string, []string) {
	var warnings []string
	x := depth - 1
	digit := numeral.Placeholder
	unit := numeral.Placeholder
	if x >= 0 && x < familyDepths[Chapter] {
		if branch < familyBranches[Chapter] {
			value := c.states[Chapter][x][0]
			if branch == 0 {
				value++
			}
			digit = formatNumeral(numeral.FormatArabic, "数字番号", value, &warnings)
		}
		unit = chapterUnits[x]
	}
	head := "第" + digit + unit
	return head + c.branches(Chapter, x, branch, &warnings), warnings
}

// SectionHead renders the literal heading a section marker displays
// before its counter steps at depth and branch. Depth 1 is the
// centered title and has no number.
func (c *Counters) SectionHead(depth, branch int) (string, []string) {
	var warnings []string
	x := depth - 1
	if x < 0 || x >= familyDepths[Section] {
		return numeral.Placeholder, warnings
	}
	value := c.states[Section][x][0]
	if branch == 0 {
		value++
	}
	var head string
	switch x {
	case 0:
		head = ""
	case 1:
		head = "第" + formatNumeral(numeral.FormatArabic, "数字番号", value, &warnings)
		if c.Style != StyleNormal {
			head += "条"
		}
	case 2:
		if c.lawShifted(Section, x) {
			value++
		}
		head = formatNumeral(numeral.FormatArabic, "数字番号", value, &warnings)
	case 3:
		head = formatNumeral(numeral.FormatParenArabic, "括弧付き数字番号", value, &warnings)
	case 4:
		head = formatNumeral(numeral.FormatKatakana, "カタカナ番号", value, &warnings)
	case 5:
		head = formatNumeral(numeral.FormatParenKatakana, "括弧付きカタカナ番号", value, &warnings)
	case 6:
		head = formatNumeral(numeral.FormatAlphabet, "アルファベット番号", value, &warnings)
	case 7:
		head = formatNumeral(numeral.FormatParenAlphabet, "括弧付きアルファベット番号", value, &warnings)
	}
	return head + c.branches(Section, x, branch, &warnings), warnings
}

// ListBullet returns the bullet character of an unnumbered list item.
func ListBullet(depth int) string {
	if depth < 1 || depth > len(listBullets) {
		return numeral.Placeholder
	}
	return listBullets[depth-1]
}

// ListNumber renders the circled number a numbered list item displays
// before its counter steps at depth.
func (c *Counters) ListNumber(depth int) (string, []string) {
	var warnings []string
	x := depth - 1
	if x < 0 || x >= familyDepths[List] {
		return numeral.Placeholder, warnings
	}
	value := c.states[List][x][0] + 1
	switch x {
	case 0:
		return formatNumeral(numeral.FormatCircledArabic, "丸付き数字番号", value, &warnings), warnings
	case 1:
		return formatNumeral(numeral.FormatCircledKatakana, "丸付きカタカナ番号", value, &warnings), warnings
	case 2:
		return formatNumeral(numeral.FormatCircledAlphabet, "丸付きアルファベット番号", value, &warnings), warnings
	default:
		return formatNumeral(numeral.FormatCircledKanji, "丸付き漢数字番号", value, &warnings), warnings
	}
}

var parenTailRe = regexp.MustCompile(`^.*\(.*\)$`)

// JoinHead joins a rendered head string and the text that follows it:
// a full-width space normally, an ASCII one after a parenthesized
// number such as (ｱ), whose glyphs are half width.
func JoinHead(head, text string) string {
	if parenTailRe.MatchString(head) {
		return head + " " + text
	}
	return head + "　" + text
}
