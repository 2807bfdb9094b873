package numbering

import (
	"regexp"
	"strconv"
	"strings"
)

// Markup-side grammar. Chapter markers are runs of $, section markers
// runs of #, each with optional -$ / -# branch groups. List items are
// -, +, N. or N) after their indent. A trailing =N turns a marker into
// a numbering reviser.
var (
	chapterMarkerRe  = regexp.MustCompile(`^(\$+)((?:-\$+)*)(?:[\s　]((?s:.*)))?$`)
	chapterReviserRe = regexp.MustCompile(`^(\$+)((?:-\$+)*)=([0-9]+)$`)
	sectionMarkerRe  = regexp.MustCompile(`^(#+)((?:-#+)*)(?:[\s　]((?s:.*)))?$`)
	sectionReviserRe = regexp.MustCompile(`^(#+)((?:-#+)*)=([0-9]+)$`)
	listMarkerRe     = regexp.MustCompile(`^([\s　]*)(-|\+|[0-9]+\.|[0-9]+\))[\s　](.*)$`)
	listReviserRe    = regexp.MustCompile(`^([\s　]*)(?:[0-9]+\.|[0-9]+\))=([0-9]+)$`)
)

// Marker is one parsed chapter or section marker.
type Marker struct {
	Depth  int    // number of $ or # characters
	Branch int    // number of -$ / -# continuation groups
	Rest   string // text after the marker, possibly empty
}

// ParseChapterMarker reads a leading chapter marker such as $$-$ from
// markup text.
func ParseChapterMarker(text string) (Marker, bool) {
	return parseMarker(chapterMarkerRe, text)
}

// ParseSectionMarker reads a leading section marker such as ### from
// markup text.
func ParseSectionMarker(text string) (Marker, bool) {
	return parseMarker(sectionMarkerRe, text)
}

func parseMarker(re *regexp.Regexp, text string) (Marker, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return Marker{}, false
	}
	return Marker{
		Depth:  len(m[1]),
		Branch: strings.Count(m[2], "-"),
		Rest:   m[3],
	}, true
}

// ListMarker is one parsed list item head.
type ListMarker struct {
	Depth    int // from the indent: two spaces per level
	Numbered bool
	Rest     string
}

// ParseListMarker reads a list item head such as "  1. text" from
// markup text.
func ParseListMarker(text string) (ListMarker, bool) {
	m := listMarkerRe.FindStringSubmatch(text)
	if m == nil {
		return ListMarker{}, false
	}
	return ListMarker{
		Depth:    ListMarkerDepth(text),
		Numbered: m[2][0] >= '0' && m[2][0] <= '9',
		Rest:     m[3],
	}, true
}

// ListMarkerDepth derives a list item's depth from its indent. Tabs
// and full-width spaces count as two spaces, and each two-space run is
// one level.
func ListMarkerDepth(text string) int {
	t := normalizeIndent(text)
	i := 0
	for i < len(t) && t[i] == ' ' {
		i++
	}
	return i + 1
}

func normalizeIndent(s string) string {
	s = strings.ReplaceAll(s, "　", "  ")
	s = strings.ReplaceAll(s, "\t", "  ")
	return strings.ReplaceAll(s, "  ", " ")
}

// IsReviser reports whether tok is a numbering reviser of family f.
func IsReviser(f Family, tok string) bool {
	switch f {
	case Chapter:
		return chapterReviserRe.MatchString(tok)
	case Section:
		return sectionReviserRe.MatchString(tok)
	default:
		return listReviserRe.MatchString(tok)
	}
}

// Apply interprets tok as a numbering reviser of family f and forces
// the counter so that the next item at that position displays the
// written value. Returns false when tok is not a reviser of f.
func (c *Counters) Apply(f Family, tok string) ([]string, bool) {
	var re *regexp.Regexp
	switch f {
	case Chapter:
		re = chapterReviserRe
	case Section:
		re = sectionReviserRe
	default:
		m := listReviserRe.FindStringSubmatch(tok)
		if m == nil {
			return nil, false
		}
		value, _ := strconv.Atoi(m[2])
		return c.applyListReviser(len(normalizeIndent(m[1])), value), true
	}
	m := re.FindStringSubmatch(tok)
	if m == nil {
		return nil, false
	}
	value, _ := strconv.Atoi(m[3])
	return c.Set(f, len(m[1]), strings.Count(m[2], "-"), value-1), true
}

// applyListReviser forces a list counter directly. List revisers carry
// the depth index in their indent and never touch branches.
func (c *Counters) applyListReviser(x, value int) []string {
	if x >= familyDepths[List] {
		return []string{"※ 警告: " + List.Japanese() + "の深さが上限を超えています"}
	}
	c.states[List][x][0] = value - 1
	for d := x + 1; d < familyDepths[List]; d++ {
		c.states[List][d][0] = 0
	}
	return nil
}
