package document

import (
	"github.com/nerdneilsfield/go-docx-md/pkg/length"
)

// Align is a paragraph alignment.
type Align int

const (
	AlignNone Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return ""
}

// AlignFromString reads a w:jc value.
func AlignFromString(s string) Align {
	switch s {
	case "left", "start":
		return AlignLeft
	case "center":
		return AlignCenter
	case "right", "end":
		return AlignRight
	}
	return AlignNone
}

// Run is one contiguous span of paragraph text under a single
// decorator state. A decorator opened inside a run either closes in it
// or is inherited whole by the next run; partial overlap cannot occur.
type Run struct {
	Text string
	// Decorators as markup tokens, in the order they opened.
	Decorators []string
}

// LengthSet is the length records of one paragraph. Revi is what the
// markup carries; the records satisfy Docx = Revi + Class + Conf with
// the package side's rounding. Supp accumulates corrections decided by
// the normalize passes: it is added back when Revi is recomputed, so a
// positive Supp widens the reviser and a negative one absorbs it.
type LengthSet struct {
	Docx  length.Lengths
	Class length.Lengths
	Conf  length.Lengths
	Supp  length.Lengths
	Revi  length.Lengths
}

// Revise recomputes Revi from the other records.
func (l *LengthSet) Revise() {
	l.Revi = length.Residual(l.Docx.Add(l.Supp), l.Class, l.Conf)
}

// ImageRef is one image reference of an image paragraph.
type ImageRef struct {
	Alt  string
	Path string
	// Size in centimeters; 0 means natural, negative means that
	// fraction of the text area (-1 full width, -0.5 half).
	WidthCm  float64
	HeightCm float64
}

// Fence is the body of a preformatted paragraph.
type Fence struct {
	Caption string // the [caption] of the first line, if any
	Body    string
}

// RuleKind places a horizontal rule relative to its text.
type RuleKind int

const (
	RuleBottom RuleKind = iota
	RuleTop
	RuleTextbox
)

// BreakKind distinguishes the two page break forms.
type BreakKind int

const (
	BreakPlain       BreakKind = iota // <pgbr>
	BreakResetNumber                  // <Pgbr>, restarts page numbering
)

// HeadMark is one numbering head of a chapter or section paragraph.
// A section paragraph may chain several at increasing depths.
type HeadMark struct {
	Depth  int
	Branch int
}

// ListMark is the head of a list paragraph.
type ListMark struct {
	Depth    int
	Numbered bool
}

// Paragraph is one classified paragraph. Fields beyond the common set
// are filled per class.
type Paragraph struct {
	Number int
	Class  Class

	// Raw is the paragraph as segmented from its source; Text is the
	// body once class syntax has been extracted.
	Raw  string
	Text string
	Runs []Run

	HeadDecorators []string
	TailDecorators []string

	// Reviser lines riding on this paragraph, in markup form.
	NumberingRevisers []string
	LengthRevisers    []string
	DepthSetters      []string

	// PreLines are verbatim markup lines written before the revisers
	// when rendering to markup; the normalize passes stage hoisted
	// revisers and depth setters here.
	PreLines []string

	HeadDepth   int // section depth at the first head
	TailDepth   int // section depth at the last head
	ProperDepth int // chapter or list nesting depth

	// Counter snapshot at classification time; the indent baselines
	// depend on which section levels have already been numbered.
	NumberedSecond bool
	NumberedThird  bool

	Alignment Align
	StyleName string

	Lengths  LengthSet
	Remarks  []string
	Warnings []string

	// HeadString is the rendered numbering literal the package side
	// writes before the body: "第１条" for a section, "⑴" for a
	// numbered list item. The markup parser fills it while stepping
	// the counters; the markup renderer regenerates markers from the
	// typed fields instead.
	HeadString string

	// Variant data.
	Heads     []HeadMark
	ListItem  *ListMark
	Table     *Table
	Images    []ImageRef
	Math      *Math
	Fence     *Fence
	Rule      RuleKind
	PageBreak BreakKind
	Segments  []string // breakdown cells between the frames

	extracted bool
}

// Warn records one warning on the paragraph.
func (p *Paragraph) Warn(msg string) {
	for _, w := range p.Warnings {
		if w == msg {
			return
		}
	}
	p.Warnings = append(p.Warnings, msg)
}

// PlainText is the run text joined, decorators dropped.
func (p *Paragraph) PlainText() string {
	if len(p.Runs) == 0 {
		return p.Text
	}
	var b []byte
	for _, r := range p.Runs {
		b = append(b, r.Text...)
	}
	return string(b)
}
