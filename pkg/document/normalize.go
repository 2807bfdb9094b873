package document

import (
	"math"
	"regexp"
	"strings"

	"github.com/nerdneilsfield/go-docx-md/pkg/charwidth"
	"github.com/nerdneilsfield/go-docx-md/pkg/decorator"
	"github.com/nerdneilsfield/go-docx-md/pkg/length"
)

// NormalizeDecoded runs the decode-side passes over a document fresh
// from a docx package. They trade measured lengths for the idioms a
// hand-written markup file would use: flush sentences become left
// alignments, blank paragraphs fold into space-before revisers, title
// and table spacing is given back, and leftover indent revisers turn
// into depth setters where a setter says the same thing.
func (d *Document) NormalizeDecoded() {
	d.leftAlignment()
	d.blankToSpaceBefore()
	d.earSpacingDecode()
	d.titleAndTableSpacingDecode()
	d.spacedAndCentered()
	d.reviserToDepthSetter()
	d.oneLineIndent()
}

// NormalizeForDocx runs the encode-side passes before rendering to a
// package: ear spacing for the j style, first-level title emphasis and
// table gap absorption, each the inverse of its decode counterpart.
func (d *Document) NormalizeForDocx() {
	d.earSpacingEncode()
	d.titleAndTableSpacingEncode()
}

func lengthContext(p *Paragraph, f *Form) length.Context {
	return length.Context{
		Class:          p.Class.LengthClass(),
		HeadDepth:      p.HeadDepth,
		TailDepth:      p.TailDepth,
		ProperDepth:    p.ProperDepth,
		NumberedSecond: p.NumberedSecond,
		JStyle:         f.DocumentStyle == "j",
	}
}

// Rebase recomputes the class and configuration baselines for p under
// form f and derives the residual lengths. Callers that fill
// Lengths.Docx from measured values use it to find out what, if
// anything, deviates from the defaults.
func (p *Paragraph) Rebase(f *Form) {
	ctx := lengthContext(p, f)
	p.Lengths.Class = length.ClassDefaults(ctx)
	p.Lengths.Conf = length.ConfigDefaults(ctx, f.SpaceBefore, f.SpaceAfter)
	p.Lengths.Revise()
}

// Compose is the encode-direction inverse of Rebase: the revisers are
// already accumulated in Revi, the baselines are filled from f, and
// the package-side lengths come out as their sum.
func (p *Paragraph) Compose(f *Form) {
	ctx := lengthContext(p, f)
	p.Lengths.Class = length.ClassDefaults(ctx)
	p.Lengths.Conf = length.ConfigDefaults(ctx, f.SpaceBefore, f.SpaceAfter)
	p.Lengths.Docx = p.Lengths.Revi.Add(p.Lengths.Class).Add(p.Lengths.Conf).Add(p.Lengths.Supp)
}

// leftAlignment reclassifies sentences that sit flush at the margin as
// left alignments, so the flush survives a re-encode instead of
// picking up the sentence first-line indent.
func (d *Document) leftAlignment() {
	for _, p := range d.Paragraphs {
		if p.Class != ClassSentence {
			continue
		}
		if p.Lengths.Docx.FirstIndent != 0 || p.Lengths.Docx.LeftIndent != 0 {
			continue
		}
		p.Class = ClassAlignment
		p.Alignment = AlignLeft
		lines := strings.Split(p.Text, "\n")
		for i, ln := range lines {
			lines[i] = strings.TrimSuffix(ln, "<br>")
		}
		p.Text = strings.Join(lines, "\n")
	}
}

// blankToSpaceBefore converts blank paragraphs into empties carrying
// their height as space-before, then shifts every empty's residual
// space onto the following paragraph. Consecutive empties cascade, so
// a run of blank lines ends up as one v= reviser on the next body
// paragraph.
func (d *Document) blankToSpaceBefore() {
	m := len(d.Paragraphs) - 1
	for i, p := range d.Paragraphs {
		if p.Class == ClassBlank {
			vline := float64(strings.Count(p.Text, "\n") + 1)
			p.Text = ""
			p.Lengths.Supp.SpaceBefore += vline
			p.Lengths.Revise()
			p.Class = ClassEmpty
		}
		if p.Class == ClassEmpty && i < m {
			next := d.Paragraphs[i+1]
			sb := p.Lengths.Revi.SpaceBefore
			sa := p.Lengths.Revi.SpaceAfter
			nx := next.Lengths.Revi.SpaceBefore
			p.Lengths.Supp.SpaceBefore -= sb
			p.Lengths.Supp.SpaceAfter -= sa
			if sa < nx {
				next.Lengths.Supp.SpaceBefore += sb
			} else {
				next.Lengths.Supp.SpaceBefore = sa + sb
			}
			p.Lengths.Revise()
			next.Lengths.Revise()
		}
	}
}

// earSpacingDecode accounts the configured title gap of a depth-2
// section to the alignment paragraph riding above it (the ear of an
// article in the j style), so neither side needs a reviser.
func (d *Document) earSpacingDecode() {
	if d.Form.DocumentStyle != "j" {
		return
	}
	for i, p := range d.Paragraphs {
		if i == 0 {
			continue
		}
		prev := d.Paragraphs[i-1]
		if p.Class == ClassSection && p.HeadDepth == 2 && p.TailDepth == 2 &&
			prev.Class == ClassAlignment && prev.Alignment == AlignLeft {
			prev.Lengths.Conf.SpaceBefore = p.Lengths.Conf.SpaceBefore
			p.Lengths.Conf.SpaceBefore = 0
			prev.Lengths.Revise()
			p.Lengths.Revise()
		}
	}
}

// titleAndTableSpacingDecode undoes the emphasis the encoder gives a
// first-level title and reclaims the gap it spends around tables.
func (d *Document) titleAndTableSpacingDecode() {
	m := len(d.Paragraphs) - 1
	for i, p := range d.Paragraphs {
		var prev, next *Paragraph
		if i > 0 {
			prev = d.Paragraphs[i-1]
		}
		if i < m {
			next = d.Paragraphs[i+1]
		}
		switch {
		case p.Class == ClassSection && p.HeadDepth == 1 && p.TailDepth == 1:
			if prev != nil {
				if prev.Lengths.Docx.SpaceAfter >= 0.2 {
					prev.Lengths.Docx.SpaceAfter -= 0.1
				} else if prev.Lengths.Docx.SpaceAfter >= 0.0 {
					prev.Lengths.Docx.SpaceAfter /= 2
				}
			}
			if p.Lengths.Docx.SpaceBefore >= 0.2 {
				p.Lengths.Docx.SpaceBefore -= 0.1
			} else if p.Lengths.Docx.SpaceBefore >= 0.0 {
				p.Lengths.Docx.SpaceBefore /= 2
			}
			if p.Lengths.Docx.SpaceAfter >= 0.1 {
				p.Lengths.Docx.SpaceAfter += 0.1
			} else if p.Lengths.Docx.SpaceAfter >= 0.0 {
				p.Lengths.Docx.SpaceAfter *= 2
			}
			if next != nil {
				if next.Lengths.Docx.SpaceBefore >= 0.1 {
					next.Lengths.Docx.SpaceBefore += 0.1
				} else if next.Lengths.Docx.SpaceBefore >= 0.0 {
					next.Lengths.Docx.SpaceBefore *= 2
				}
			}
		case p.Class == ClassTable:
			if prev == nil || prev.Class == ClassPageBreak || prev.Class == ClassConfiguration {
				p.Lengths.Supp.SpaceBefore += TableSpaceBefore
			} else {
				p.Lengths.Docx.SpaceBefore = prev.Lengths.Docx.SpaceAfter
				prev.Lengths.Docx.SpaceAfter = 0
			}
			if next == nil || next.Class == ClassPageBreak || next.Class == ClassConfiguration {
				p.Lengths.Supp.SpaceAfter += TableSpaceAfter
			} else {
				p.Lengths.Docx.SpaceAfter = next.Lengths.Docx.SpaceBefore
				next.Lengths.Docx.SpaceBefore = 0
			}
		default:
			continue
		}
		if prev != nil {
			prev.Lengths.Revise()
		}
		p.Lengths.Revise()
		if next != nil {
			next.Lengths.Revise()
		}
	}
}

// spacedAndCentered reads a centered paragraph preceded by exactly one
// line of space as an untitled first-level section: it stages a v=
// reviser and a depth setter, resets the running section depth, and
// rebuilds every class baseline under the new depths. Conf stays as
// the ear pass left it.
func (d *Document) spacedAndCentered() {
	prevTail := 0
	for _, p := range d.Paragraphs {
		if p.Class == ClassAlignment && p.Alignment == AlignCenter &&
			p.Lengths.Revi.SpaceBefore == 1.0 {
			prevTail = 1
			p.PreLines = append(p.PreLines, "v=1", "# ")
			p.Lengths.Supp.SpaceBefore -= 1.0
		}
		switch p.Class {
		case ClassSection:
			prevTail = p.TailDepth
		case ClassList, ClassPreformatted, ClassSentence:
			p.HeadDepth = prevTail
			p.TailDepth = prevTail
		default:
			p.HeadDepth = 0
			p.TailDepth = 0
		}
		p.Lengths.Class = length.ClassDefaults(lengthContext(p, d.Form))
		p.Lengths.Revise()
	}
}

// reviserToDepthSetter rewrites a sentence whose only residual is a
// whole negative left indent as a depth setter line, which says the
// same thing in section terms.
func (d *Document) reviserToDepthSetter() {
	for i, p := range d.Paragraphs {
		if i == 0 || p.Class != ClassSentence {
			continue
		}
		r := p.Lengths.Revi
		if r.SpaceBefore != 0 || r.SpaceAfter != 0 || r.LineSpacing != 0 ||
			r.FirstIndent != 0 || r.RightIndent != 0 ||
			r.LeftIndent >= 0 || r.LeftIndent != math.Trunc(r.LeftIndent) {
			continue
		}
		li := int(r.LeftIndent)
		if p.HeadDepth+li < 1 {
			continue
		}
		p.HeadDepth += li
		p.TailDepth += li
		if !p.NumberedSecond && p.NumberedThird && p.HeadDepth+li == 2 {
			p.HeadDepth--
			p.TailDepth--
		}
		p.PreLines = []string{strings.Repeat("#", p.HeadDepth) + " "}
		p.Lengths.Class = length.ClassDefaults(lengthContext(p, d.Form))
		p.Lengths.Revise()
	}
}

var (
	plainDecorRe  = regexp.MustCompile(notEscaped + decorator.TokenPattern)
	plainEscapeRe = regexp.MustCompile(notEscaped + `\\`)
)

// plainWidth measures rendered width with decorator tokens and escape
// backslashes removed.
func plainWidth(s string) float64 {
	for {
		t := plainDecorRe.ReplaceAllString(s, "$1")
		if t == s {
			break
		}
		s = t
	}
	for {
		t := plainEscapeRe.ReplaceAllString(s, "$1")
		if t == s {
			break
		}
		s = t
	}
	return charwidth.RealWidth(s)
}

// oneLineIndent drops a canceling first-indent/left-indent reviser
// pair wherever it cannot change the layout: always on tables and
// images, and on any paragraph short enough to fit its line region.
// Widths are measured at the base 12pt size.
func (d *Document) oneLineIndent() {
	unit := 12 * 2.54 / 72 / 2
	for _, p := range d.Paragraphs {
		if p.Class == ClassTable || p.Class == ClassImage {
			if p.Lengths.Revi.FirstIndent+p.Lengths.Revi.LeftIndent == 0 {
				p.Lengths.Supp.FirstIndent -= p.Lengths.Revi.FirstIndent
				p.Lengths.Supp.LeftIndent -= p.Lengths.Revi.LeftIndent
				p.Lengths.Revise()
			}
			continue
		}
		lineWidth := plainWidth(p.Raw) * unit
		indent := p.Lengths.Docx.FirstIndent +
			p.Lengths.Docx.LeftIndent + p.Lengths.Docx.RightIndent
		region := d.Form.PaperWidth() -
			d.Form.LeftMargin - d.Form.RightMargin - indent*unit
		if lineWidth > region {
			continue
		}
		if p.Lengths.Revi.FirstIndent+p.Lengths.Revi.LeftIndent != 0 {
			continue
		}
		p.Lengths.Supp.FirstIndent -= p.Lengths.Revi.FirstIndent
		p.Lengths.Supp.LeftIndent -= p.Lengths.Revi.LeftIndent
		p.Lengths.Revise()
	}
}

// earSpacingEncode moves the configured title gap of a depth-2 section
// onto a left alignment riding above it, the ear of an article in the
// j style.
func (d *Document) earSpacingEncode() {
	if d.Form.DocumentStyle != "j" {
		return
	}
	for i, p := range d.Paragraphs {
		if i == 0 {
			continue
		}
		prev := d.Paragraphs[i-1]
		if p.Class == ClassSection && p.HeadDepth == 2 && p.TailDepth == 2 &&
			prev.Class == ClassAlignment && prev.Alignment == AlignLeft {
			prev.Lengths.Docx.SpaceBefore += p.Lengths.Conf.SpaceBefore
			p.Lengths.Docx.SpaceBefore -= p.Lengths.Conf.SpaceBefore
		}
	}
}

// titleAndTableSpacingEncode gives a first-level title extra room and
// absorbs the space around tables into the standard table gap.
func (d *Document) titleAndTableSpacingEncode() {
	m := len(d.Paragraphs) - 1
	for i, p := range d.Paragraphs {
		var prev, next *Paragraph
		if i > 0 {
			prev = d.Paragraphs[i-1]
		}
		if i < m {
			next = d.Paragraphs[i+1]
		}
		if p.Class == ClassSection && p.HeadDepth == 1 && p.TailDepth == 1 {
			if prev != nil {
				if prev.Lengths.Docx.SpaceAfter >= 0.1 {
					prev.Lengths.Docx.SpaceAfter += 0.1
				} else if prev.Lengths.Docx.SpaceAfter >= 0.0 {
					prev.Lengths.Docx.SpaceAfter *= 2
				}
			}
			if p.Lengths.Docx.SpaceBefore >= 0.1 {
				p.Lengths.Docx.SpaceBefore += 0.1
			} else if p.Lengths.Docx.SpaceBefore >= 0.0 {
				p.Lengths.Docx.SpaceBefore *= 2
			}
			if p.Lengths.Docx.SpaceAfter >= 0.2 {
				p.Lengths.Docx.SpaceAfter -= 0.1
			} else if p.Lengths.Docx.SpaceAfter >= 0.0 {
				p.Lengths.Docx.SpaceAfter /= 2
			}
			if next != nil {
				if next.Lengths.Docx.SpaceBefore >= 0.2 {
					next.Lengths.Docx.SpaceBefore -= 0.1
				} else if next.Lengths.Docx.SpaceBefore >= 0.0 {
					next.Lengths.Docx.SpaceBefore /= 2
				}
			}
		}
		if p.Class == ClassTable {
			// Configuration paragraphs render no spacing, so a table
			// against one keeps its gap in the class baseline alone.
			if prev != nil && prev.Class == ClassConfiguration {
				prev = nil
			}
			if next != nil && next.Class == ClassConfiguration {
				next = nil
			}
			if prev != nil {
				if p.Lengths.Docx.SpaceBefore < 0 {
					p.Warn("警告: 段落前の余白「v」の値が小さ過ぎます")
					p.Lengths.Docx.SpaceBefore = 0.0
				}
				sa := prev.Lengths.Docx.SpaceAfter
				sb := p.Lengths.Docx.SpaceBefore - TableSpaceBefore
				if mx := max(0, sa, sb); mx > 0 {
					prev.Lengths.Docx.SpaceAfter = mx + TableSpaceBefore
				} else {
					prev.Lengths.Docx.SpaceAfter = min(0, sa, sb) + TableSpaceBefore
				}
				p.Lengths.Docx.SpaceBefore = 0.0
			}
			if next != nil {
				if p.Lengths.Docx.SpaceAfter < 0 {
					p.Warn("警告: 段落後の余白「V」の値が小さ過ぎます")
					p.Lengths.Docx.SpaceAfter = 0.0
				}
				sa := p.Lengths.Docx.SpaceAfter - TableSpaceAfter
				sb := next.Lengths.Docx.SpaceBefore
				p.Lengths.Docx.SpaceAfter = 0.0
				if mx := max(0, sa, sb); mx > 0 {
					next.Lengths.Docx.SpaceBefore = mx + TableSpaceAfter
				} else {
					next.Lengths.Docx.SpaceBefore = min(0, sa, sb) + TableSpaceAfter
				}
			}
		}
	}
}
