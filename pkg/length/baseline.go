package length

import (
	"strconv"
	"strings"
)

// Class identifies the paragraph family a length baseline belongs to.
// Families not listed here have an all-zero baseline.
type Class int

const (
	ClassOther Class = iota
	ClassChapter
	ClassSection
	ClassList
	ClassTable
	ClassPreformatted
	ClassSentence
)

// Space a table gets around itself, in line units.
const (
	tableSpaceBefore = 0.45
	tableSpaceAfter  = 0.2
)

// Context carries the classification facts that fix a paragraph's baseline.
type Context struct {
	Class          Class
	HeadDepth      int  // section depth at the first heading line
	TailDepth      int  // section depth at the last heading line
	ProperDepth    int  // chapter or list nesting depth
	NumberedSecond bool // a depth-2 section counter has stepped
	JStyle         bool // document style j (条文形式)
}

// ClassDefaults returns the baseline a paragraph of the given class assumes
// before any reviser is applied.
func ClassDefaults(c Context) Lengths {
	var l Lengths
	switch c.Class {
	case ClassChapter:
		l.FirstIndent = -1.0
		l.LeftIndent = float64(c.ProperDepth)
	case ClassSection:
		if c.HeadDepth > 1 {
			l.FirstIndent = float64(c.HeadDepth - c.TailDepth - 1)
		}
		if c.TailDepth > 1 {
			l.LeftIndent = float64(c.TailDepth - 1)
		}
	case ClassList:
		l.FirstIndent = -1.0
		l.LeftIndent = float64(c.ProperDepth)
		if c.TailDepth > 0 {
			l.LeftIndent += float64(c.TailDepth - 1)
		}
	case ClassTable:
		l.SpaceBefore = tableSpaceBefore
		l.SpaceAfter = tableSpaceAfter
	case ClassPreformatted:
		if c.TailDepth > 0 {
			l.LeftIndent = float64(c.TailDepth)
		}
	case ClassSentence:
		if c.TailDepth > 0 {
			l.FirstIndent = 1.0
			l.LeftIndent = float64(c.TailDepth - 1)
		}
	}
	// Until the first numbered depth-2 section, deeper headings and their
	// bodies shift one character back toward the margin.
	switch c.Class {
	case ClassSection, ClassList, ClassPreformatted, ClassSentence:
		if !c.NumberedSecond && c.TailDepth > 2 {
			l.LeftIndent -= 1.0
		}
	}
	// The j style keeps everything below 第2 level flush instead.
	if c.JStyle && c.NumberedSecond && c.TailDepth > 2 {
		l.LeftIndent -= 1.0
	}
	return l
}

// ConfigDefaults returns the Form-level baseline: per-depth section gaps from
// the space_before / space_after header values. Both are comma-separated line
// counts, one slot per depth; empty slots leave the gap alone.
func ConfigDefaults(c Context, spaceBefore, spaceAfter string) Lengths {
	var l Lengths
	if c.Class != ClassSection {
		return l
	}
	if v, ok := depthSlot(spaceBefore, c.HeadDepth); ok {
		l.SpaceBefore += v
	}
	if v, ok := depthSlot(spaceAfter, c.TailDepth); ok {
		l.SpaceAfter += v
	}
	return l
}

func depthSlot(csv string, depth int) (float64, bool) {
	if depth < 1 {
		return 0, false
	}
	parts := strings.Split(csv, ",")
	if depth > len(parts) {
		return 0, false
	}
	s := strings.TrimSpace(parts[depth-1])
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
