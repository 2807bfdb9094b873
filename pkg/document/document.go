package document

import (
	"fmt"

	"github.com/nerdneilsfield/go-docx-md/pkg/numbering"
)

// Document is one parsed document: its configuration, its paragraph
// list, and the registries a single conversion run accumulates. A run
// owns its Document; nothing here is shared between runs.
type Document struct {
	Form       *Form
	Paragraphs []*Paragraph
	Counters   *numbering.Counters

	// Media holds image parts by stored name; Refs maps the source
	// keys (relationship ids, markup reference paths) onto those names.
	Media map[string][]byte
	Refs  map[string]string

	Warnings []string
}

// New returns an empty document with default configuration and fresh
// numbering state.
func New() *Document {
	return &Document{
		Form:     NewForm(),
		Counters: &numbering.Counters{},
		Media:    map[string][]byte{},
		Refs:     map[string]string{},
	}
}

// Warn records a document-level warning once.
func (d *Document) Warn(msg string) {
	for _, w := range d.Warnings {
		if w == msg {
			return
		}
	}
	d.Warnings = append(d.Warnings, msg)
}

// Append adds a paragraph, numbering it in reading order.
func (d *Document) Append(p *Paragraph) {
	p.Number = len(d.Paragraphs) + 1
	d.Paragraphs = append(d.Paragraphs, p)
}

// AddMedia registers image data under a stored name and returns the
// name, deduplicating repeats.
func (d *Document) AddMedia(name string, data []byte) string {
	if _, ok := d.Media[name]; ok {
		base, ext := name, ""
		if i := lastDot(name); i >= 0 {
			base, ext = name[:i], name[i:]
		}
		for n := 2; ; n++ {
			alt := fmt.Sprintf("%s%d%s", base, n, ext)
			if _, ok := d.Media[alt]; !ok {
				name = alt
				break
			}
		}
	}
	d.Media[name] = data
	return name
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
		if s[i] == '/' {
			break
		}
	}
	return -1
}

// AllWarnings lists every warning of the run with its paragraph
// attribution, configuration and document-level ones first.
func (d *Document) AllWarnings() []string {
	var out []string
	if d.Form != nil {
		out = append(out, d.Form.Warnings()...)
	}
	out = append(out, d.Warnings...)
	for _, p := range d.Paragraphs {
		for _, w := range p.Warnings {
			out = append(out, fmt.Sprintf("%s (段落 %d)", w, p.Number))
		}
	}
	return out
}
