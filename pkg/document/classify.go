package document

import (
	"regexp"
	"strings"

	"github.com/nerdneilsfield/go-docx-md/pkg/numbering"
)

// Source is the classification input: the paragraph text plus the
// facts the parsers know about it before any class is assigned. The
// markup side fills Text and the decorator lists; the package side
// adds the style name, the alignment, and the element hints its XML
// carries.
type Source struct {
	Text  string   // lines joined with a space (markup) or decoded text
	Lines []string // original lines where line structure matters

	HeadDecorators []string
	TailDecorators []string

	StyleName string
	Alignment Align

	// Element hints from the package side.
	InTable    bool
	HasSectPr  bool
	HasBreak   bool
	HasRule    bool
	HasImage   bool
	HasMath    bool
	NativeList bool
}

func (s Source) lines() []string {
	if s.Lines != nil {
		return s.Lines
	}
	return strings.Split(s.Text, "\n")
}

// notEscaped matches a prefix that does not end in an active backslash
// escape.
const notEscaped = `^((?:(?s:.)*?[^\\])?(?:\\\\)*?)?`

var (
	blankTextRe = regexp.MustCompile(`^[\s　]*$`)
	tableRe     = regexp.MustCompile(`^\|(?s:.*)\|$`)
	imageRefRe  = regexp.MustCompile(`! *\[([^\[\]]*)\] *\(([^()]+)\)`)
	imageOnlyRe = regexp.MustCompile(`^(?:[\s　]*! *\[[^\[\]]*\] *\([^()]+\)[\s　]*)+$`)
	mathRe      = regexp.MustCompile(`^\\\[(?s:.*)\\\]$`)
	alignTextRe = regexp.MustCompile(`^(?::|:[\s　](?s:.*)|(?s:.*)[\s　]:)$`)
	hlineRe     = regexp.MustCompile(`^(?:[\s　]*[-*][\s　]*){3,}$`)
	pagebreakRe = regexp.MustCompile(`^(?:<div style="break-.*: page;"></div>|<pgbr/?>|<Pgbr/?>)$`)
	breakdownRe = regexp.MustCompile(notEscaped + `!.*!$`)
	remarkRe    = regexp.MustCompile(`^"" ?`)
)

// ClassifyMarkup assigns the class of one markup paragraph. Text must
// already have its revisers separated into the decorator lists.
func ClassifyMarkup(src Source) Class {
	text := src.Text
	switch {
	case text == "":
		return ClassEmpty
	case blankTextRe.MatchString(text):
		return ClassBlank
	}
	if _, ok := numbering.ParseChapterMarker(text); ok {
		return ClassChapter
	}
	if _, ok := numbering.ParseSectionMarker(text); ok {
		return ClassSection
	}
	if _, ok := numbering.ParseListMarker(text); ok {
		return ClassList
	}
	switch {
	case tableRe.MatchString(text):
		return ClassTable
	case imageOnlyRe.MatchString(text):
		return ClassImage
	case mathRe.MatchString(text):
		return ClassMath
	case alignTextRe.MatchString(text):
		return ClassAlignment
	case isFenced(src.HeadDecorators, src.TailDecorators):
		return ClassPreformatted
	case hlineRe.MatchString(text):
		return ClassHorizontalLine
	case pagebreakRe.MatchString(text):
		return ClassPageBreak
	case breakdownRe.MatchString(text):
		return ClassBreakdown
	case isRemarks(src.lines()):
		return ClassRemarks
	}
	return ClassSentence
}

// ClassifyDecoded assigns the class of one decoded package paragraph.
// The literal heading forms take the place of the markup markers, and
// the XML hints decide the element classes. Each predicate carries the
// same exclusions the markup side gets for free from its ordering.
func ClassifyDecoded(src Source) Class {
	text := src.Text
	isImage := src.HasImage && imageOnlyRe.MatchString(text)
	if !src.InTable && !isImage && !src.HasBreak && !src.HasRule &&
		!src.HasSectPr && blankTextRe.MatchString(text) {
		return ClassBlank
	}
	if !src.InTable && !src.HasSectPr {
		if numbering.ChapterDepth(text) > 0 {
			return ClassChapter
		}
		if !isImage {
			_, tail := numbering.SectionDepths(text)
			if tail > 1 || (tail == 1 && src.Alignment == AlignCenter) {
				return ClassSection
			}
		}
		if src.NativeList || numbering.ListHeadDepth(text) > 0 {
			return ClassList
		}
	}
	if src.InTable {
		return ClassTable
	}
	if src.HasSectPr {
		return ClassConfiguration
	}
	switch {
	case isImage:
		return ClassImage
	case src.HasMath:
		return ClassMath
	case src.Alignment != AlignNone:
		return ClassAlignment
	case src.StyleName == "makdo-g":
		return ClassPreformatted
	case src.HasRule:
		return ClassHorizontalLine
	case src.HasBreak:
		return ClassPageBreak
	}
	return ClassSentence
}

// isFenced reports whether the stripped decorators open and close a
// code fence: three backtick tokens at the head and three at the tail.
func isFenced(head, tail []string) bool {
	return strings.HasPrefix(strings.Join(head, ""), "```") &&
		strings.HasSuffix(strings.Join(tail, ""), "```")
}

func isRemarks(lines []string) bool {
	any := false
	for _, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		if !remarkRe.MatchString(ln) {
			return false
		}
		any = true
	}
	return any
}
