package markdown

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-docx-md/pkg/charwidth"
	"github.com/nerdneilsfield/go-docx-md/pkg/decorator"
	"github.com/nerdneilsfield/go-docx-md/pkg/document"
	"github.com/nerdneilsfield/go-docx-md/pkg/length"
	"github.com/nerdneilsfield/go-docx-md/pkg/numbering"
)

// Parser reads markup text into the document model: configuration from
// the leading comment block, paragraphs classified and extracted, the
// numbering counters stepped so every head literal is known before the
// package side renders it.
type Parser struct {
	log *zap.Logger
}

// NewParser returns a parser logging through log.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log}
}

// Parse reads one markup file.
func (pr *Parser) Parse(data []byte) (*document.Document, error) {
	text, err := DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	doc := document.New()
	src := readSource(text)
	for _, ln := range src.conf {
		doc.Form.ApplyComment(ln)
	}
	if s, ok := numbering.StyleFromString(doc.Form.DocumentStyle); ok {
		doc.Counters.Style = s
	}
	st := &parseState{doc: doc, src: src}
	for _, ch := range chunkLines(src.lines) {
		pr.parseChunk(st, ch)
	}
	pr.log.Debug("parsed markup",
		zap.Int("paragraphs", len(doc.Paragraphs)),
		zap.Int("warnings", len(doc.AllWarnings())))
	return doc, nil
}

type parseState struct {
	doc *document.Document
	src *source

	tail    int      // section depth the next sentence sits under
	ambient []string // decoration opened by a standalone token line
}

// chunk is one paragraph's worth of source lines.
type chunk struct {
	start  int // line index of the first line
	end    int // line index one past the last line
	lines  []string
	fenced bool
}

// chunkLines groups lines into paragraph chunks at blank lines. A
// fence keeps its blank lines; the closing fence ends the chunk.
func chunkLines(lines []string) []chunk {
	var chunks []chunk
	var cur []string
	start := 0
	fenced := false
	flush := func(end int) {
		if len(cur) > 0 {
			ch := chunk{start: start, end: end, lines: cur, fenced: fenced}
			if fenced {
				chunks = append(chunks, ch)
			} else {
				chunks = append(chunks, splitListItems(ch)...)
			}
			cur = nil
		}
		fenced = false
	}
	for i, ln := range lines {
		isFence := strings.HasPrefix(strings.TrimLeft(ln, " \t"), "```")
		switch {
		case fenced:
			cur = append(cur, ln)
			if isFence {
				flush(i + 1)
			}
		case isFence:
			flush(i)
			start = i
			cur = append(cur, ln)
			fenced = true
		case ln == "":
			flush(i)
		default:
			if len(cur) == 0 {
				start = i
			}
			cur = append(cur, ln)
		}
	}
	flush(len(lines))
	return chunks
}

var listItemLineRe = regexp.MustCompile(`^[\s　]*(?:-|\+|[0-9]+\.|[0-9]+\))[\s　]`)

// splitListItems cuts a chunk of adjacent list items into one chunk
// per item. Lines without a marker of their own continue the previous
// item; a chunk that does not open with a marker stays whole.
func splitListItems(ch chunk) []chunk {
	if hlineChunkRe.MatchString(strings.Join(ch.lines, "\n")) {
		return []chunk{ch}
	}
	first := -1
	for i, ln := range ch.lines {
		if listItemLineRe.MatchString(ln) {
			first = i
			break
		}
		fields := strings.Fields(ln)
		if len(fields) > 0 && !decoratorOnlyRe.MatchString(ln) &&
			!length.IsReviser(fields[0]) {
			return []chunk{ch}
		}
	}
	if first < 0 {
		return []chunk{ch}
	}
	var out []chunk
	start := 0
	for i := first + 1; i < len(ch.lines); i++ {
		if listItemLineRe.MatchString(ch.lines[i]) {
			out = append(out, chunk{
				start: ch.start + start,
				end:   ch.start + i,
				lines: ch.lines[start:i],
			})
			start = i
		}
	}
	out = append(out, chunk{
		start: ch.start + start,
		end:   ch.end,
		lines: ch.lines[start:],
	})
	return out
}

var (
	depthSetterRe   = regexp.MustCompile(`^#+[\s　]?$`)
	hlineChunkRe    = regexp.MustCompile(`^(?:[\s　]*[-*][\s　]*){3,}$`)
	decoratorOnlyRe = regexp.MustCompile(`^(?:` + decorator.TokenPattern + `)+$`)
	headTokRe       = regexp.MustCompile(`^(` + decorator.TokenPattern + `)`)
	headReviserRe   = regexp.MustCompile(`^([^\s　]+)[\s　]+`)
)

// tailTokRe matches a decoration token closing the text. The
// lookbehind rejects a token sitting behind an active backslash, that
// is an odd run of backslashes.
var tailTokRe = regexp2.MustCompile(`(?<!(?:^|[^\\])(?:\\\\)*\\)(`+decorator.TokenPattern+`)\z`, regexp2.None)

func (pr *Parser) parseChunk(st *parseState, ch chunk) {
	p := &document.Paragraph{}
	remarks, lines := document.PeelRemarks(ch.lines)
	p.Remarks = append(p.Remarks, remarks...)
	for i := ch.start; i < ch.end; i++ {
		p.Remarks = append(p.Remarks, st.src.comments[i]...)
	}

	var src document.Source
	switch {
	case ch.fenced:
		src = fenceSource(lines)
	default:
		lines = pr.peelRevisers(st, p, lines)
		if len(lines) == 0 && len(p.HeadDecorators) > 0 &&
			len(p.NumberingRevisers) == 0 && len(p.LengthRevisers) == 0 &&
			len(p.DepthSetters) == 0 && len(p.Remarks) == 0 {
			// A chunk of bare decoration tokens toggles the ambient
			// stack for the paragraphs that follow.
			st.toggleAmbient(p.HeadDecorators)
			return
		}
		text := strings.Join(lines, "\n")
		if !hlineChunkRe.MatchString(text) {
			var head, tail []string
			head, tail, text = splitEndTokens(text)
			p.HeadDecorators = append(p.HeadDecorators, head...)
			p.TailDecorators = append(tail, p.TailDecorators...)
		}
		src = document.Source{Text: text, Lines: strings.Split(text, "\n")}
	}

	p.Class = document.ClassifyMarkup(document.Source{
		Text:           src.Text,
		HeadDecorators: p.HeadDecorators,
		TailDecorators: p.TailDecorators,
	})
	if ch.fenced {
		p.HeadDecorators = append([]string{"`", "`", "`"}, p.HeadDecorators...)
		p.TailDecorators = append(p.TailDecorators, "`", "`", "`")
		p.Class = document.ClassPreformatted
	}
	if err := document.Extract(p, src); err != nil {
		p.Warn("※ 警告: 段落を解釈できません")
		pr.log.Warn("paragraph extraction failed", zap.Error(err))
		p.Class = document.ClassSentence
		p.Text = src.Text
	}
	if len(st.ambient) > 0 {
		p.HeadDecorators = append(append([]string(nil), st.ambient...), p.HeadDecorators...)
		closers := make([]string, 0, len(st.ambient))
		for i := len(st.ambient) - 1; i >= 0; i-- {
			closers = append(closers, mirrorOf(st.ambient[i]))
		}
		p.TailDecorators = append(p.TailDecorators, closers...)
	}

	st.stepCounters(p)
	st.setDepths(p)
	unfoldParagraph(p)
	p.Compose(st.doc.Form)
	st.doc.Append(p)
}

// fenceSource shapes a fenced chunk the way the extractor expects it:
// the opening line minus its backticks carries the caption, the fence
// markers become decorators.
func fenceSource(lines []string) document.Source {
	first := strings.TrimPrefix(strings.TrimLeft(lines[0], " \t"), "```")
	body := lines[1:]
	if n := len(body); n > 0 && strings.HasPrefix(strings.TrimLeft(body[n-1], " \t"), "```") {
		body = body[:n-1]
	}
	kept := append([]string{first}, body...)
	return document.Source{
		Text:  strings.Join(kept, "\n"),
		Lines: kept,
	}
}

// peelRevisers consumes the reviser region at the head of a chunk:
// whole lines of numbering revisers, length revisers, depth setters or
// decoration tokens, then inline reviser tokens on the first text
// line. Trailing decoration-only lines peel off the other end.
func (pr *Parser) peelRevisers(st *parseState, p *document.Paragraph, lines []string) []string {
	i := 0
peel:
	for i < len(lines) {
		ln := lines[i]
		switch {
		case numbering.IsReviser(numbering.Chapter, ln),
			numbering.IsReviser(numbering.Section, ln),
			numbering.IsReviser(numbering.List, ln):
			p.NumberingRevisers = append(p.NumberingRevisers, ln)
		case depthSetterRe.MatchString(ln):
			p.DepthSetters = append(p.DepthSetters, strings.TrimRight(ln, " 　"))
			st.tail = strings.Count(ln, "#")
		case allLengthRevisers(ln):
			for _, tok := range strings.Fields(ln) {
				p.LengthRevisers = append(p.LengthRevisers, tok)
				p.Lengths.Revi.Accumulate(tok)
			}
		case decoratorOnlyRe.MatchString(ln):
			p.HeadDecorators = append(p.HeadDecorators, tokenize(ln)...)
		default:
			break peel
		}
		i++
	}
	lines = lines[i:]
	if len(lines) > 0 {
		lines[0] = pr.peelInline(p, lines[0])
		if lines[0] == "" && len(lines) == 1 {
			lines = nil
		}
	}
	j := len(lines)
	for j > 1 && decoratorOnlyRe.MatchString(lines[j-1]) {
		p.TailDecorators = append(tokenize(lines[j-1]), p.TailDecorators...)
		j--
	}
	return lines[:j]
}

// peelInline strips reviser tokens written on the text line itself,
// space separated before the body.
func (pr *Parser) peelInline(p *document.Paragraph, ln string) string {
	for {
		m := headReviserRe.FindStringSubmatch(ln)
		if m == nil {
			if lengthOrNumberingReviser(ln) {
				recordReviser(p, ln)
				return ""
			}
			return ln
		}
		if !lengthOrNumberingReviser(m[1]) {
			return ln
		}
		recordReviser(p, m[1])
		ln = ln[len(m[0]):]
	}
}

func lengthOrNumberingReviser(tok string) bool {
	return length.IsReviser(tok) ||
		numbering.IsReviser(numbering.Chapter, tok) ||
		numbering.IsReviser(numbering.Section, tok)
}

func recordReviser(p *document.Paragraph, tok string) {
	if length.IsReviser(tok) {
		p.LengthRevisers = append(p.LengthRevisers, tok)
		p.Lengths.Revi.Accumulate(tok)
		return
	}
	p.NumberingRevisers = append(p.NumberingRevisers, tok)
}

func allLengthRevisers(ln string) bool {
	fields := strings.Fields(ln)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if !length.IsReviser(f) {
			return false
		}
	}
	return true
}

// tokenize cuts a decoration-only line into its tokens.
func tokenize(ln string) []string {
	var toks []string
	for ln != "" {
		m := headTokRe.FindString(ln)
		if m == "" {
			break
		}
		toks = append(toks, m)
		ln = ln[len(m):]
	}
	return toks
}

// splitEndTokens peels decoration tokens off both ends of the text,
// the tail list in textual order. Escaped tokens stay put.
func splitEndTokens(text string) (head, tail []string, rest string) {
	rest = text
	for {
		m := headTokRe.FindString(rest)
		if m == "" {
			break
		}
		head = append(head, m)
		rest = rest[len(m):]
	}
	for {
		m, err := tailTokRe.FindStringMatch(rest)
		if err != nil || m == nil {
			break
		}
		tok := m.String()
		tail = append([]string{tok}, tail...)
		rest = rest[:len(rest)-len(tok)]
	}
	return head, tail, rest
}

// toggleAmbient opens tokens from a standalone decoration line, or
// closes them again when the same token or its mirror (>>…<<, [|…|])
// reappears.
func (st *parseState) toggleAmbient(toks []string) {
	for _, tok := range toks {
		closed := false
		for i := len(st.ambient) - 1; i >= 0; i-- {
			if st.ambient[i] == tok || st.ambient[i] == mirrorOf(tok) {
				st.ambient = append(st.ambient[:i], st.ambient[i+1:]...)
				closed = true
				break
			}
		}
		if !closed {
			st.ambient = append(st.ambient, tok)
		}
	}
}

// stepCounters applies the paragraph's numbering revisers, renders its
// head literal and advances the counters, then snapshots the section
// state the indent baselines depend on.
func (st *parseState) stepCounters(p *document.Paragraph) {
	c := st.doc.Counters
	for _, tok := range p.NumberingRevisers {
		fam := numbering.List
		switch {
		case strings.HasPrefix(tok, "$"):
			fam = numbering.Chapter
		case strings.HasPrefix(tok, "#"):
			fam = numbering.Section
		}
		warns, ok := c.Apply(fam, tok)
		if !ok {
			p.Warn("※ 警告: 番号の指定を解釈できません")
		}
		for _, w := range warns {
			p.Warn(w)
		}
	}
	warn := func(ws []string) {
		for _, w := range ws {
			p.Warn(w)
		}
	}
	switch p.Class {
	case document.ClassChapter:
		for _, h := range p.Heads {
			lit, ws := c.ChapterHead(h.Depth, h.Branch)
			warn(ws)
			warn(c.Step(numbering.Chapter, h.Depth, h.Branch))
			p.HeadString += lit
		}
		c.ResetLists()
	case document.ClassSection:
		for _, h := range p.Heads {
			lit, ws := c.SectionHead(h.Depth, h.Branch)
			warn(ws)
			warn(c.Step(numbering.Section, h.Depth, h.Branch))
			p.HeadString += lit
		}
		c.ResetLists()
	case document.ClassList:
		if p.ListItem != nil && p.ListItem.Numbered {
			lit, ws := c.ListNumber(p.ListItem.Depth)
			warn(ws)
			warn(c.Step(numbering.List, p.ListItem.Depth, 0))
			p.HeadString = lit
		} else if p.ListItem != nil {
			p.HeadString = numbering.ListBullet(p.ListItem.Depth)
		}
	case document.ClassEmpty, document.ClassBlank, document.ClassRemarks,
		document.ClassConfiguration:
		// carriers only, the list numbering survives them
	default:
		c.ResetLists()
	}
	p.NumberedSecond = c.Peek(numbering.Section, 2, 0) > 0
	p.NumberedThird = c.Peek(numbering.Section, 3, 0) > 0
}

// setDepths places the paragraph under the running section depth the
// way the package-side normalize passes do on the other direction.
func (st *parseState) setDepths(p *document.Paragraph) {
	switch p.Class {
	case document.ClassSection:
		st.tail = p.TailDepth
	case document.ClassList, document.ClassPreformatted, document.ClassSentence:
		p.HeadDepth = st.tail
		p.TailDepth = st.tail
	case document.ClassEmpty, document.ClassBlank, document.ClassRemarks:
		p.HeadDepth = st.tail
		p.TailDepth = st.tail
	}
}

// unfoldParagraph rejoins the soft line wraps of the markup source.
// Explicit break tokens stay as real breaks; the structural title
// break of a chapter or section survives too.
func unfoldParagraph(p *document.Paragraph) {
	switch p.Class {
	case document.ClassSentence, document.ClassList:
		p.Text = unfold(p.Text)
	case document.ClassChapter, document.ClassSection:
		if i := strings.Index(p.Text, "\n"); i >= 0 {
			title := strings.TrimSuffix(p.Text[:i], "<br>")
			p.Text = title + "\n" + unfold(p.Text[i+1:])
		} else {
			p.Text = strings.TrimSuffix(p.Text, "<br>")
		}
	}
}

func unfold(text string) string {
	if text == "" {
		return ""
	}
	out := ""
	for _, ln := range strings.Split(text, "\n") {
		if strings.HasSuffix(ln, "<br>") {
			out = charwidth.Concat(out, strings.TrimSuffix(ln, "<br>"))
			out += "\n"
			continue
		}
		out = charwidth.Concat(out, ln)
	}
	return out
}
