// Package numbering tracks the running numbers of chapters, sections,
// and list items. A document carries three counter families: chapter
// headings (第１編 through 第１目, five depths), section headings
// (title through ⒜, eight depths), and list items (①㋐ⓐ㊀, four
// depths). Each depth also counts のN continuation branches, the form
// Japanese statutes use for inserted articles such as 第３条の２.
//
// Counters hold completed items: stepping at a depth increments its
// counter and zeroes everything below, and the number a new heading
// displays is the counter plus one. The markup dialect can force a
// counter with a numbering reviser such as $$=3 or ##-#=2, and the
// decode direction emits those revisers whenever a document's literal
// numbers deviate from the expected sequence.
package numbering

import (
	"strconv"
	"strings"
)

// Family selects one of the three counter groups.
type Family int

const (
	Chapter Family = iota
	Section
	List
)

// String returns the family name used in markup-facing contexts.
func (f Family) String() string {
	switch f {
	case Chapter:
		return "chapter"
	case Section:
		return "section"
	case List:
		return "list"
	}
	return "numbering"
}

// Japanese returns the family name used in warning messages.
func (f Family) Japanese() string {
	switch f {
	case Chapter:
		return "チャプター"
	case Section:
		return "セクション"
	case List:
		return "リスト"
	}
	return "番号"
}

// Style is the document style declared in the configuration block. It
// changes how section numbers read: the normal style drops the 条
// suffix at depth 2, and the law style displays depth 3 numbers one
// ahead whenever an article heading is open, because the article line
// itself counts as the first paragraph.
type Style int

const (
	StyleUndefined Style = iota
	StyleNormal          // n: 普通の文書
	StyleContract        // k: 契約書
	StyleLaw             // j: 法律の条文
)

// StyleFromString reads the one-letter style code of the configuration
// block.
func StyleFromString(s string) (Style, bool) {
	switch s {
	case "n":
		return StyleNormal, true
	case "k":
		return StyleContract, true
	case "j":
		return StyleLaw, true
	case "", "-":
		return StyleUndefined, true
	}
	return StyleUndefined, false
}

// String returns the one-letter style code.
func (s Style) String() string {
	switch s {
	case StyleNormal:
		return "n"
	case StyleContract:
		return "k"
	case StyleLaw:
		return "j"
	}
	return "-"
}

const (
	maxDepth  = 8
	maxBranch = 10
)

// Logical bounds per family. The backing arrays are uniform; these
// limit the walk and the overflow warnings.
var (
	familyDepths   = [3]int{5, 8, 4}
	familyBranches = [3]int{10, 10, 1}
)

// Counters is the numbering state of one conversion run. The zero
// value is ready to use. Runs must not share an instance.
type Counters struct {
	// Style adjusts section depth 3 display and comparison. Set it
	// before processing any paragraph.
	Style Style

	states [3][maxDepth][maxBranch]int
}

// Peek returns the counter at depth and branch. Depth counts from 1,
// branch from 0.
func (c *Counters) Peek(f Family, depth, branch int) int {
	if depth < 1 || depth > familyDepths[f] || branch < 0 || branch >= familyBranches[f] {
		return 0
	}
	return c.states[f][depth-1][branch]
}

// Step advances the counter at depth and branch by one, zeroing every
// counter at the same depth beyond the branch and at all deeper
// depths. A zero counter at a shallower branch of the same depth is
// reported as an orphan but left alone.
func (c *Counters) Step(f Family, depth, branch int) []string {
	return c.walk(f, depth-1, branch, 0, true)
}

// Set forces the counter at depth and branch, zeroing deeper state the
// same way Step does.
func (c *Counters) Set(f Family, depth, branch, value int) []string {
	return c.walk(f, depth-1, branch, value, false)
}

func (c *Counters) walk(f Family, xdepth, ydepth, value int, step bool) []string {
	if xdepth < 0 {
		return nil
	}
	name := f.Japanese()
	var warnings []string
	if xdepth >= familyDepths[f] {
		warnings = append(warnings, "※ 警告: "+name+"の深さが上限を超えています")
	} else if ydepth >= familyBranches[f] {
		warnings = append(warnings, "※ 警告: "+name+"の枝が上限を超えています")
	}
	for x := 0; x < familyDepths[f]; x++ {
		for y := 0; y < familyBranches[f]; y++ {
			switch {
			case x < xdepth:
			case x > xdepth:
				c.states[f][x][y] = 0
			case y < ydepth:
				if c.states[f][x][y] == 0 {
					warnings = append(warnings, "※ 警告: "+name+"の枝が\"0\"を含んでいます")
				}
			case y == ydepth:
				if step {
					c.states[f][x][y]++
				} else {
					c.states[f][x][y] = value
				}
			default:
				c.states[f][x][y] = 0
			}
		}
	}
	return warnings
}

// Deviations compares the numbers observed on a decoded heading, trunk
// first, with the counters after their step. Each mismatch yields one
// numbering reviser, and the counter is forced to the observed value
// so the sequence continues from the document's own numbering.
func (c *Counters) Deviations(f Family, depth int, observed []int) []string {
	x := depth - 1
	if x < 0 || x >= familyDepths[f] {
		return nil
	}
	var revisers []string
	for y, value := range observed {
		if y >= familyBranches[f] {
			break
		}
		if y == 0 && c.lawShifted(f, x) {
			value--
		}
		if value == c.states[f][x][y] {
			continue
		}
		var rev string
		switch f {
		case Chapter:
			rev = strings.Repeat("$", x+1) + strings.Repeat("-$", y) + "=" + strconv.Itoa(value)
		case Section:
			rev = strings.Repeat("#", x+1) + strings.Repeat("-#", y) + "=" + strconv.Itoa(value)
		default:
			rev = strings.Repeat("  ", x) + "1.=" + strconv.Itoa(value)
		}
		revisers = append(revisers, rev)
		c.states[f][x][y] = value
	}
	return revisers
}

// lawShifted reports whether numbers at depth index x display one
// ahead of the counter: law-style section depth 3 under an open
// article heading.
func (c *Counters) lawShifted(f Family, x int) bool {
	return c.Style == StyleLaw && f == Section && x == 2 &&
		c.states[Section][1][0] > 0
}

// ResetLists zeroes the list counters. Any paragraph that is not a
// list item restarts list numbering from the top.
func (c *Counters) ResetLists() {
	c.states[List] = [maxDepth][maxBranch]int{}
}

// Reset zeroes every counter for a fresh run.
func (c *Counters) Reset() {
	c.states = [3][maxDepth][maxBranch]int{}
}
