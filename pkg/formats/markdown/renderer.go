package markdown

import (
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-docx-md/pkg/charwidth"
	"github.com/nerdneilsfield/go-docx-md/pkg/document"
	"github.com/nerdneilsfield/go-docx-md/pkg/length"
)

// Renderer writes a document back out as markup: the configuration
// block first, then each paragraph with its remarks, reviser lines and
// folded body.
type Renderer struct {
	log *zap.Logger
}

// NewRenderer returns a renderer logging through log.
func NewRenderer(log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{log: log}
}

// Render produces the complete markup file.
func (r *Renderer) Render(doc *document.Document) string {
	var blocks []string
	blocks = append(blocks, strings.TrimRight(doc.Form.CommentBlock(), "\n"))
	hoists := planHoists(doc.Paragraphs)
	for i, p := range doc.Paragraphs {
		tok := ""
		for _, h := range hoists {
			if i >= h.from && i <= h.to {
				tok = h.tok
				if i == h.from {
					blocks = append(blocks, tok)
				}
				break
			}
		}
		lines := r.paragraphLines(p, tok)
		if len(lines) > 0 {
			blocks = append(blocks, strings.Join(lines, "\n"))
		}
		for _, h := range hoists {
			if i == h.to {
				blocks = append(blocks, mirrorOf(h.tok))
			}
		}
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// hoist is a run of paragraphs sharing the same outermost decoration,
// lifted onto standalone token lines around the run.
type hoist struct {
	from, to int
	tok      string
}

// Tokens whose closing shape differs from the opening one, keyed both
// ways so mirrorOf works on either side of a pair.
var mirrorTokens = map[string]string{
	"->":  "<-",
	"<-":  "->",
	"+>":  "<+",
	"<+":  "+>",
	"[|":  "|]",
	"|]":  "[|",
	">>":  "<<",
	"<<":  ">>",
	">>>": "<<<",
	"<<<": ">>>",
	"^{":  "}^",
	"}^":  "^{",
	"_{":  "}_",
	"}_":  "_{",
}

func mirrorOf(tok string) string {
	if m, ok := mirrorTokens[tok]; ok {
		return m
	}
	return tok
}

func planHoists(ps []*document.Paragraph) []hoist {
	var hs []hoist
	for i := 0; i < len(ps); {
		tok := hoistToken(ps[i])
		if tok == "" {
			i++
			continue
		}
		j := i
		for j+1 < len(ps) && hoistToken(ps[j+1]) == tok {
			j++
		}
		if j > i {
			hs = append(hs, hoist{from: i, to: j, tok: tok})
		}
		i = j + 1
	}
	return hs
}

// hoistToken returns the outermost decoration token of a paragraph
// whose head and tail mirror each other, or "".
func hoistToken(p *document.Paragraph) string {
	switch p.Class {
	case document.ClassSentence, document.ClassChapter, document.ClassSection,
		document.ClassList, document.ClassAlignment:
	default:
		return ""
	}
	if len(p.HeadDecorators) == 0 || len(p.TailDecorators) == 0 {
		return ""
	}
	h := p.HeadDecorators[0]
	if mirrorOf(h) != p.TailDecorators[len(p.TailDecorators)-1] {
		return ""
	}
	return h
}

// paragraphLines renders one paragraph. hoisted names a decoration
// token already lifted onto standalone lines around this paragraph.
func (r *Renderer) paragraphLines(p *document.Paragraph, hoisted string) []string {
	head := append([]string(nil), p.HeadDecorators...)
	tail := append([]string(nil), p.TailDecorators...)
	if hoisted != "" {
		head = head[1:]
		tail = tail[:len(tail)-1]
	}
	hs := strings.Join(head, "")
	ts := strings.Join(tail, "")

	var lines []string
	for _, rem := range p.Remarks {
		lines = append(lines, `"" `+rem)
	}
	lines = append(lines, p.PreLines...)
	lines = append(lines, p.NumberingRevisers...)
	if revs := p.Lengths.Revi.Revisers(); len(revs) > 0 {
		lines = append(lines, strings.Join(revs, " "))
	}

	switch p.Class {
	case document.ClassEmpty, document.ClassBlank,
		document.ClassRemarks, document.ClassConfiguration:
		// nothing beyond the carrier lines
	case document.ClassChapter:
		lines = append(lines, markedLines(p, "$", hs, ts)...)
	case document.ClassSection:
		lines = append(lines, markedLines(p, "#", hs, ts)...)
	case document.ClassList:
		lines = append(lines, listLines(p, hs, ts)...)
	case document.ClassTable:
		if p.Table != nil {
			lines = append(lines, p.Table.RenderMarkup()...)
		}
	case document.ClassImage:
		for _, ref := range p.Images {
			lines = append(lines, renderImageRef(ref))
		}
	case document.ClassMath:
		src := p.Text
		if p.Math != nil {
			src = p.Math.Source
		}
		lines = append(lines, `\[`+src+`\]`)
	case document.ClassAlignment:
		lines = append(lines, alignmentLines(p, hs, ts)...)
	case document.ClassPreformatted:
		lines = append(lines, fenceMarkupLines(p, hs, ts)...)
	case document.ClassHorizontalLine:
		lines = append(lines, strings.Repeat("-", 25))
	case document.ClassPageBreak:
		if p.PageBreak == document.BreakResetNumber {
			lines = append(lines, "<Pgbr>")
		} else {
			lines = append(lines, "<pgbr>")
		}
	case document.ClassBreakdown:
		lines = append(lines, strings.Split(charwidth.Fold(hs+p.Text+ts), "\n")...)
	default:
		lines = append(lines, strings.Split(charwidth.Fold(hs+p.Text+ts), "\n")...)
	}
	return lines
}

// markedLines renders a chapter or section paragraph: the marker
// chain, the title on the marker line, the body folded beneath it.
func markedLines(p *document.Paragraph, sym, hs, ts string) []string {
	var marks []string
	for _, h := range p.Heads {
		marks = append(marks,
			strings.Repeat(sym, h.Depth)+strings.Repeat("-"+sym, h.Branch))
	}
	marker := strings.Join(marks, " ")
	title, body := p.Text, ""
	if i := strings.Index(p.Text, "\n"); i >= 0 {
		title, body = p.Text[:i], p.Text[i+1:]
	}
	first := hs + marker
	if title != "" {
		first += " " + title
	}
	if body == "" {
		return strings.Split(charwidth.Fold(first+ts), "\n")
	}
	out := strings.Split(charwidth.Fold(first), "\n")
	return append(out, strings.Split(charwidth.Fold(body+ts), "\n")...)
}

func listLines(p *document.Paragraph, hs, ts string) []string {
	depth := 1
	mark := "- "
	if p.ListItem != nil {
		depth = p.ListItem.Depth
		if p.ListItem.Numbered {
			mark = "1. "
		}
	}
	indent := strings.Repeat("  ", depth-1)
	return strings.Split(charwidth.Fold(indent+mark+hs+p.Text+ts), "\n")
}

func alignmentLines(p *document.Paragraph, hs, ts string) []string {
	raw := strings.Split(p.Text, "\n")
	out := make([]string, len(raw))
	for i, ln := range raw {
		switch p.Alignment {
		case document.AlignRight:
			out[i] = ln + " :"
		case document.AlignCenter:
			out[i] = ": " + ln + " :"
		default:
			out[i] = ": " + ln
		}
	}
	out[0] = hs + out[0]
	out[len(out)-1] += ts
	return out
}

func fenceMarkupLines(p *document.Paragraph, hs, ts string) []string {
	caption, body := "", p.Text
	if p.Fence != nil {
		caption, body = p.Fence.Caption, p.Fence.Body
	}
	out := []string{hs + "```" + caption}
	if body != "" {
		out = append(out, strings.Split(body, "\n")...)
	}
	return append(out, "```"+ts)
}

func renderImageRef(ref document.ImageRef) string {
	alt := ref.Alt
	if ref.WidthCm != 0 || ref.HeightCm != 0 {
		alt += ":"
		if ref.WidthCm != 0 {
			alt += length.Format(ref.WidthCm)
		}
		if ref.HeightCm != 0 {
			alt += "x" + length.Format(ref.HeightCm)
		}
	}
	return "![" + alt + "](" + ref.Path + ")"
}
