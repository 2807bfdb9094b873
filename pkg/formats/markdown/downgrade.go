package markdown

import (
	"strings"

	"github.com/nerdneilsfield/go-docx-md/pkg/decorator"
	"github.com/nerdneilsfield/go-docx-md/pkg/document"
)

// Downgrade renders a document as plain CommonMark for tools that do
// not speak the dialect: the previewer and the exporter. Numbering
// heads become literal text, decoration collapses to the emphasis
// forms CommonMark has, and everything else is dropped rather than
// guessed at.
func Downgrade(doc *document.Document) string {
	var blocks []string
	if doc.Form.DocumentTitle != "" {
		blocks = append(blocks, "# "+doc.Form.DocumentTitle)
	}
	for _, p := range doc.Paragraphs {
		if b := downgradeParagraph(p); b != "" {
			blocks = append(blocks, b)
		}
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

func downgradeParagraph(p *document.Paragraph) string {
	switch p.Class {
	case document.ClassChapter:
		depth := p.ProperDepth + 1
		if depth > 6 {
			depth = 6
		}
		return strings.Repeat("#", depth) + " " + headedText(p)
	case document.ClassSection:
		depth := p.HeadDepth
		if depth > 6 {
			depth = 6
		}
		if depth < 1 {
			depth = 1
		}
		return strings.Repeat("#", depth) + " " + headedText(p)
	case document.ClassList:
		mark := "- "
		indent := ""
		if p.ListItem != nil {
			if p.ListItem.Numbered {
				mark = "1. "
			}
			indent = strings.Repeat("    ", p.ListItem.Depth-1)
		}
		return indent + mark + downgradeInline(p.Text)
	case document.ClassTable:
		if p.Table == nil {
			return ""
		}
		return downgradeTable(p.Table)
	case document.ClassImage:
		var lines []string
		for _, ref := range p.Images {
			lines = append(lines, "!["+ref.Alt+"]("+ref.Path+")")
		}
		return strings.Join(lines, "\n")
	case document.ClassMath:
		src := p.Text
		if p.Math != nil {
			src = p.Math.Source
		}
		return "$$" + src + "$$"
	case document.ClassAlignment, document.ClassSentence, document.ClassBreakdown:
		return downgradeInline(strings.Join(p.HeadDecorators, "") +
			p.Text + strings.Join(p.TailDecorators, ""))
	case document.ClassPreformatted:
		caption, body := "", p.Text
		if p.Fence != nil {
			caption, body = p.Fence.Caption, p.Fence.Body
		}
		return "```" + caption + "\n" + body + "\n```"
	case document.ClassHorizontalLine:
		return "---"
	case document.ClassPageBreak:
		return `<div style="break-after: page;"></div>`
	}
	return ""
}

func headedText(p *document.Paragraph) string {
	text := downgradeInline(p.Text)
	text = strings.ReplaceAll(text, "\n", " ")
	if p.HeadString == "" {
		return text
	}
	if text == "" {
		return p.HeadString
	}
	return p.HeadString + "　" + text
}

// downgradeInline rescans dialect text and keeps only the decoration
// CommonMark can express.
func downgradeInline(text string) string {
	spans, _ := decorator.Split(text, decorator.Stack{})
	var b strings.Builder
	for _, sp := range spans {
		switch sp.Kind {
		case decorator.SpanImage:
			b.WriteString("![" + sp.Alt + "](" + sp.Path + ")")
		case decorator.SpanText, decorator.SpanIVS:
			t := sp.Text
			switch {
			case sp.Style.Bold && sp.Style.Italic:
				t = "***" + t + "***"
			case sp.Style.Bold:
				t = "**" + t + "**"
			case sp.Style.Italic:
				t = "*" + t + "*"
			}
			if sp.Style.Strike {
				t = "~~" + t + "~~"
			}
			if sp.Style.Gothic {
				t = "`" + t + "`"
			}
			b.WriteString(t)
		case decorator.SpanFixedSpace:
			b.WriteString(" ")
		}
	}
	return strings.ReplaceAll(b.String(), "\n", "  \n")
}

func downgradeTable(t *document.Table) string {
	var lines []string
	for i, row := range t.Rows {
		var cells []string
		for _, c := range row {
			txt := strings.ReplaceAll(downgradeInline(c.Text), "\n", "<br>")
			cells = append(cells, strings.ReplaceAll(txt, "|", `\|`))
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
		if i == 0 {
			var seps []string
			for j := range row {
				align := document.AlignNone
				if len(t.Columns) > 0 {
					align = t.Columns[minInt(j, len(t.Columns)-1)].Align
				}
				switch align {
				case document.AlignCenter:
					seps = append(seps, ":---:")
				case document.AlignRight:
					seps = append(seps, "---:")
				default:
					seps = append(seps, "---")
				}
			}
			lines = append(lines, "| "+strings.Join(seps, " | ")+" |")
		}
	}
	return strings.Join(lines, "\n")
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
