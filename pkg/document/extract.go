package document

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nerdneilsfield/go-docx-md/pkg/numbering"
)

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

const numberPat = `[-+]?(?:[0-9]+(?:\.[0-9]+)?|\.[0-9]+)`

var (
	leadingWhiteRe = regexp.MustCompile(`^[\s　]+`)
	listHeadRe     = regexp.MustCompile(`^[\s　]*(?:-|\+|[0-9]+\.|[0-9]+\))[\s　]*`)
	listNumberedRe = regexp.MustCompile(`^[\s　]*[0-9]+(?:\.|\))[\s　]`)
	alignHeadRe    = regexp.MustCompile(`^:[\s　]`)
	alignTailRe    = regexp.MustCompile(`[\s　]:$`)
	alignCenterRe  = regexp.MustCompile(`^:[\s　](?s:.*)[\s　]:$`)
	alignHeadPadRe = regexp.MustCompile(`^:[\s　][\s　]`)
	alignTailPadRe = regexp.MustCompile(`[\s　][\s　]:$`)
	imageSizeRe    = regexp.MustCompile(`^(.*):(` + numberPat + `)?(?:x(` + numberPat + `)?)?$`)
	anyWhiteRe     = regexp.MustCompile(`[\s　]`)
)

// Extract strips the class syntax from a freshly classified paragraph
// and fills its typed fields. A paragraph extracts exactly once:
// feeding already-extracted output back in is a self-reference bug and
// reported as an error, never a silent no-op.
func Extract(p *Paragraph, src Source) error {
	if p.extracted {
		return fmt.Errorf("paragraph %d (%s) extracted twice", p.Number, p.Class)
	}
	p.extracted = true
	lines := src.lines()
	p.Raw = strings.Join(lines, "\n")
	p.Text = p.Raw
	if p.HeadDecorators == nil {
		p.HeadDecorators = append([]string(nil), src.HeadDecorators...)
	}
	if p.TailDecorators == nil {
		p.TailDecorators = append([]string(nil), src.TailDecorators...)
	}
	if p.StyleName == "" {
		p.StyleName = src.StyleName
	}
	if p.Alignment == AlignNone {
		p.Alignment = src.Alignment
	}
	switch p.Class {
	case ClassEmpty, ClassBlank, ClassSentence:
		return nil
	case ClassChapter, ClassSection:
		return extractHeads(p, src)
	case ClassList:
		return extractList(p, src)
	case ClassTable:
		return extractTable(p, src)
	case ClassImage:
		return extractImages(p, src)
	case ClassMath:
		return extractMath(p, src)
	case ClassAlignment:
		return extractAlignment(p, src)
	case ClassPreformatted:
		return extractFence(p, src)
	case ClassHorizontalLine:
		p.Text = ""
		return nil
	case ClassPageBreak:
		if strings.HasPrefix(src.Text, "<Pgbr") {
			p.PageBreak = BreakResetNumber
		}
		p.Text = ""
		return nil
	case ClassBreakdown:
		p.Segments = splitFrames(p.Text)
		return nil
	case ClassRemarks:
		remarks, _ := PeelRemarks(lines)
		p.Remarks = append(p.Remarks, remarks...)
		p.Text = ""
		return nil
	case ClassConfiguration:
		p.Text = ""
		return nil
	}
	return nil
}

// extractHeads consumes the marker chain of a chapter or section
// paragraph. Markers may continue over several lines until the first
// non-marker residue, which becomes the title; everything after is the
// body.
func extractHeads(p *Paragraph, src Source) error {
	parse := numbering.ParseChapterMarker
	if p.Class == ClassSection {
		parse = numbering.ParseSectionMarker
	}
	title := ""
	var body []string
	prev := 0
	inBody := false
	bodySeen := false
	for _, ln := range src.lines() {
		t := ln
		if !inBody {
			for {
				mk, ok := parse(t)
				if !ok {
					break
				}
				if prev > 1 && mk.Depth != prev+1 {
					p.Warn("※ 警告: " + p.Class.Japanese() + "の深さが飛んでいます")
				}
				prev = mk.Depth
				p.Heads = append(p.Heads, HeadMark{Depth: mk.Depth, Branch: mk.Branch})
				t = mk.Rest
			}
			if t != ln {
				title = t
				if leadingWhiteRe.MatchString(title) {
					p.Warn("※ 警告: " + p.Class.Japanese() + "のタイトルの最初に空白があります")
				}
				if t != "" {
					inBody = true
				}
				continue
			}
			if t != "" {
				inBody = true
			}
		}
		if !bodySeen && leadingWhiteRe.MatchString(ln) {
			p.Warn("※ 警告: " + p.Class.Japanese() + "の本文の最初に空白があります")
		}
		if ln != "" {
			bodySeen = true
			body = append(body, ln)
		}
	}
	if len(p.Heads) == 0 {
		return fmt.Errorf("paragraph %d: no %s marker found", p.Number, p.Class)
	}
	if p.Class == ClassChapter {
		p.ProperDepth = p.Heads[0].Depth
	} else {
		p.HeadDepth = p.Heads[0].Depth
		p.TailDepth = p.Heads[len(p.Heads)-1].Depth
		if p.HeadDepth == 1 {
			p.Alignment = AlignCenter
		}
	}
	if title == "" && len(body) == 0 {
		// A bare marker steps the counters and renders nothing.
		p.Text = ""
		return nil
	}
	p.Text = strings.Join(append([]string{title}, body...), "\n")
	return nil
}

// extractList strips the bullet of a list item. The indent of the
// whole paragraph decides the depth, the first non-blank line carries
// the bullet, later lines continue the item.
func extractList(p *Paragraph, src Source) error {
	lines := src.lines()
	n := 0
	for n < len(lines) && lines[n] == "" {
		n++
	}
	if n == len(lines) {
		return fmt.Errorf("paragraph %d: no list item found", p.Number)
	}
	p.ListItem = &ListMark{
		Depth:    numbering.ListMarkerDepth(src.Text),
		Numbered: listNumberedRe.MatchString(src.Text),
	}
	p.ProperDepth = p.ListItem.Depth
	kept := []string{listHeadRe.ReplaceAllString(lines[n], "")}
	for _, ln := range lines[n+1:] {
		kept = append(kept, ln)
	}
	p.Text = strings.Join(kept, "\n")
	return nil
}

func extractTable(p *Paragraph, src Source) error {
	tab, err := parseGrid(src.lines())
	if err != nil {
		return fmt.Errorf("paragraph %d: %w", p.Number, err)
	}
	p.Table = tab
	p.Text = ""
	return nil
}

// extractImages reads every image reference of an image paragraph. A
// size suffix on the alt text, alt:WxH, fixes the size in centimeters;
// a negative value means that fraction of the text area.
func extractImages(p *Paragraph, src Source) error {
	text := src.Text
	for _, m := range imageRefRe.FindAllStringSubmatch(text, -1) {
		ref := ImageRef{Alt: m[1], Path: m[2]}
		if sm := imageSizeRe.FindStringSubmatch(ref.Alt); sm != nil {
			ref.Alt = sm[1]
			if sm[2] != "" {
				ref.WidthCm = parseFloat(sm[2])
			}
			if sm[3] != "" {
				ref.HeightCm = parseFloat(sm[3])
			}
		}
		p.Images = append(p.Images, ref)
	}
	if rest := imageRefRe.ReplaceAllString(text, ""); !blankTextRe.MatchString(rest) {
		return fmt.Errorf("paragraph %d: image paragraph has residual text %q", p.Number, rest)
	}
	p.Text = ""
	return nil
}

func extractMath(p *Paragraph, src Source) error {
	inner := strings.TrimPrefix(src.Text, `\[`)
	inner = strings.TrimSuffix(inner, `\]`)
	inner = strings.TrimSpace(inner)
	p.Math = &Math{Source: inner}
	if expr, err := ParseMath(inner); err != nil {
		p.Warn("※ 警告: 数式を解釈できません")
	} else {
		p.Math.Expr = expr
	}
	p.Text = inner
	p.Alignment = AlignCenter
	return nil
}

// extractAlignment decides the direction from the whole text, then
// strips the colon markers line by line. Lines that do not share the
// paragraph's shape are kept as they are, with a warning.
func extractAlignment(p *Paragraph, src Source) error {
	full := src.Text
	switch {
	case alignCenterRe.MatchString(full):
		p.Alignment = AlignCenter
	case alignHeadRe.MatchString(full):
		p.Alignment = AlignLeft
	case alignTailRe.MatchString(full):
		p.Alignment = AlignRight
	}
	var kept []string
	for _, ln := range src.lines() {
		if ln != "" {
			switch p.Alignment {
			case AlignLeft:
				if !alignHeadRe.MatchString(ln) {
					p.Warn("※ 警告: 左寄せでない行が含まれています")
				}
			case AlignCenter:
				if !alignCenterRe.MatchString(ln) {
					p.Warn("※ 警告: 中寄せでない行が含まれています")
				}
			case AlignRight:
				if !alignTailRe.MatchString(ln) {
					p.Warn("※ 警告: 右寄せでない行が含まれています")
				}
			}
		}
		if p.Alignment == AlignLeft || p.Alignment == AlignCenter {
			if alignHeadPadRe.MatchString(ln) {
				p.Warn("※ 警告: テキストの最初に空白があります（必要な場合は先頭に\"\\\"を入れてください）")
			}
		}
		if p.Alignment == AlignCenter || p.Alignment == AlignRight {
			if alignTailPadRe.MatchString(ln) {
				p.Warn("※ 警告: テキストの最後に空白があります")
			}
		}
		t := ln
		if p.Alignment == AlignLeft || p.Alignment == AlignCenter {
			t = alignHeadRe.ReplaceAllString(t, "")
		}
		if p.Alignment == AlignCenter || p.Alignment == AlignRight {
			t = alignTailRe.ReplaceAllString(t, "")
		}
		if t == ":" {
			t = ""
		}
		if t != "" {
			kept = append(kept, t)
		}
	}
	p.Text = strings.Join(kept, "\n")
	return nil
}

// extractFence drops the three backtick tokens from each decorator
// list and reads the caption from the opening line.
func extractFence(p *Paragraph, src Source) error {
	if len(p.HeadDecorators) >= 3 {
		p.HeadDecorators = p.HeadDecorators[3:]
	}
	if len(p.TailDecorators) >= 3 {
		p.TailDecorators = p.TailDecorators[:len(p.TailDecorators)-3]
	}
	lines := src.lines()
	caption := anyWhiteRe.ReplaceAllString(lines[0], "")
	body := ""
	if len(lines) > 1 {
		body = strings.Join(lines[1:], "\n")
	}
	p.Fence = &Fence{Caption: caption, Body: body}
	p.Text = body
	return nil
}

// PeelRemarks splits leading remark lines, the ones opening with a
// double double-quote, from a block's lines. The stripped remark texts
// come first, the remaining lines second.
func PeelRemarks(lines []string) (remarks, rest []string) {
	i := 0
	for i < len(lines) && remarkRe.MatchString(lines[i]) {
		remarks = append(remarks, remarkRe.ReplaceAllString(lines[i], ""))
		i++
	}
	return remarks, lines[i:]
}

// splitFrames cuts breakdown text at its unescaped exclamation marks.
func splitFrames(text string) []string {
	var segs []string
	var cur strings.Builder
	esc := false
	for _, r := range text {
		switch {
		case esc:
			cur.WriteRune(r)
			esc = false
		case r == '\\':
			cur.WriteRune(r)
			esc = true
		case r == '!':
			segs = append(segs, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	segs = append(segs, cur.String())
	return segs
}
