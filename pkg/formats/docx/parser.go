package docx

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-docx-md/pkg/blocks"
	"github.com/nerdneilsfield/go-docx-md/pkg/decorator"
	"github.com/nerdneilsfield/go-docx-md/pkg/document"
	"github.com/nerdneilsfield/go-docx-md/pkg/length"
	"github.com/nerdneilsfield/go-docx-md/pkg/numbering"
)

// Parser decodes a package into the document model. The media
// directory name is what image references in the produced text point
// at; the image bytes themselves are registered on the document.
type Parser struct {
	media string
	log   *zap.Logger
}

// NewParser creates a parser writing image references under mediaDir.
func NewParser(mediaDir string, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{media: mediaDir, log: log}
}

// Parse reads the main document part and every supporting part it
// references. Configuration is taken in fixed precedence: the section
// properties and the style heuristic first, then the core properties,
// the style sheet, and finally the running headers and footers.
func (pr *Parser) Parse(pkg *Package) (*document.Document, error) {
	data, ok := pkg.Part(partDocument)
	if !ok {
		return nil, fmt.Errorf("package has no %s part", partDocument)
	}
	doc := document.New()
	toks := blocks.Tokenize(string(data))
	blks, err := blocks.Group(blocks.Body("w:body", toks))
	if err != nil {
		if !errors.Is(err, blocks.ErrUnclosedElement) {
			return nil, fmt.Errorf("parse %s: %w", partDocument, err)
		}
		doc.Warn("※ 警告: 文書のXMLが正しく閉じられていません")
		pr.log.Warn("document body ends inside an element")
	}

	pr.configureSection(doc.Form, toks)
	texts := make([]string, 0, len(blks))
	for _, b := range blks {
		texts = append(texts, plainText(b))
	}
	doc.Form.DetectStyle(texts)
	pr.configureCore(pkg, doc.Form)
	pr.configureStyles(pkg, doc.Form)

	rels := documentRels(pkg)
	pr.configureRunning(pkg, doc, rels)
	if st, ok := numbering.StyleFromString(doc.Form.DocumentStyle); ok {
		doc.Counters.Style = st
	}
	comments := commentTexts(pkg)

	for _, b := range blks {
		switch b.Name {
		case "w:p":
			pr.decodeParagraph(doc, pkg, rels, comments, b)
		case "w:tbl":
			pr.decodeTable(doc, pkg, rels, comments, b)
		case "w:sectPr":
			p := &document.Paragraph{Class: document.ClassConfiguration}
			if err := document.Extract(p, document.Source{HasSectPr: true}); err != nil {
				pr.log.Warn("section properties block", zap.Error(err))
			}
			doc.Append(p)
			doc.Counters.ResetLists()
		}
	}
	pr.log.Debug("parsed package",
		zap.Int("paragraphs", len(doc.Paragraphs)),
		zap.Int("media", len(doc.Media)))
	return doc, nil
}

// ParseBytes is Parse over a raw package file.
func (pr *Parser) ParseBytes(data []byte) (*document.Document, error) {
	pkg, err := Open(data)
	if err != nil {
		return nil, err
	}
	return pr.Parse(pkg)
}

// documentRels reads the main part's relationship table, or nil.
func documentRels(pkg *Package) *Relationships {
	data, ok := pkg.Part(partDocumentRels)
	if !ok {
		return nil
	}
	rels, err := parseRelationships(data)
	if err != nil {
		return nil
	}
	return rels
}

// commentTexts maps comment ids to their plain text, paragraphs joined
// with a newline.
func commentTexts(pkg *Package) map[string]string {
	data, ok := pkg.Part(partComments)
	if !ok {
		return nil
	}
	out := map[string]string{}
	blks, _ := blocks.Group(blocks.Body("w:comments", blocks.Tokenize(string(data))))
	for _, b := range blks {
		if b.Name != "w:comment" || len(b.Tokens) == 0 {
			continue
		}
		id := b.Tokens[0].Attr("w:id")
		if id == "" {
			continue
		}
		var paras []string
		cur, inText := "", ""
		flush := func() {
			paras = append(paras, cur)
			cur = ""
		}
		opened := false
		for _, t := range b.Tokens {
			switch {
			case t.Name == "w:p" && t.Kind == blocks.Open:
				if opened {
					flush()
				}
				opened = true
			case t.Name == "w:t":
				switch t.Kind {
				case blocks.Open:
					inText = "w:t"
				case blocks.Close:
					inText = ""
				}
			case t.Kind == blocks.Text && inText != "":
				cur += unescapeXML(t.Raw)
			}
		}
		if opened {
			flush()
		}
		out[id] = strings.Join(paras, "\n")
	}
	return out
}

// plainText joins the text runs of one block, entities resolved.
func plainText(b blocks.Block) string {
	var sb strings.Builder
	in := false
	for _, t := range b.Tokens {
		switch {
		case t.Name == "w:t":
			in = t.Kind == blocks.Open
		case t.Kind == blocks.Text && in:
			sb.WriteString(unescapeXML(t.Raw))
		}
	}
	return sb.String()
}

// ---------------------------------------------------------------------------
// configuration

const twipsPerCm = 567

// paper size windows in centimeters, width then height.
var paperWindows = []struct {
	name           string
	w0, w1, h0, h1 float64
}{
	{"A3", 41.9, 42.1, 29.6, 29.8},
	{"A3P", 29.6, 29.8, 41.9, 42.1},
	{"A4", 20.9, 21.1, 29.6, 29.8},
	{"A4L", 29.6, 29.8, 20.9, 21.1},
}

// configureSection reads page size, margins and the line number switch
// from the section properties. The last occurrence of each attribute
// wins, which follows the final section of the document.
func (pr *Parser) configureSection(f *document.Form, toks []blocks.Token) {
	var w, h float64
	for _, t := range toks {
		switch t.Name {
		case "w:pgSz":
			if v := t.FloatAttr("w:w", 0); v > 0 {
				w = v / twipsPerCm
			}
			if v := t.FloatAttr("w:h", 0); v > 0 {
				h = v / twipsPerCm
			}
		case "w:pgMar":
			if v := t.FloatAttr("w:top", 0); v > 0 {
				f.TopMargin = roundN(v/twipsPerCm, 1)
			}
			if v := t.FloatAttr("w:bottom", 0); v > 0 {
				f.BottomMargin = roundN(v/twipsPerCm, 1)
			}
			if v := t.FloatAttr("w:left", 0); v > 0 {
				f.LeftMargin = roundN(v/twipsPerCm, 1)
			}
			if v := t.FloatAttr("w:right", 0); v > 0 {
				f.RightMargin = roundN(v/twipsPerCm, 1)
			}
		case "w:lnNumType":
			if t.Kind != blocks.Close {
				f.LineNumber = true
			}
		}
	}
	for _, pw := range paperWindows {
		if w >= pw.w0 && w <= pw.w1 && h >= pw.h0 && h <= pw.h1 {
			f.PaperSize = pw.name
			break
		}
	}
}

// configureCore reads the package properties. Times written in UTC are
// shifted to JST so the stamp matches what the author saw.
func (pr *Parser) configureCore(pkg *Package, f *document.Form) {
	data, ok := pkg.Part(partCore)
	if !ok {
		return
	}
	props, err := parseCoreProperties(data)
	if err != nil {
		pr.log.Warn("core properties", zap.Error(err))
		return
	}
	if props.Title != "" {
		f.DocumentTitle = props.Title
	}
	if props.Category != "" {
		f.SetCategory(props.Category)
	}
	if props.Version != "" {
		f.Version = props.Version
	}
	if props.ContentStatus != "" {
		f.ContentStatus = props.ContentStatus
	}
	if props.Created != "" {
		f.CreatedTime = props.Created
	}
	if props.Modified != "" {
		if t, err := time.Parse(time.RFC3339, props.Modified); err == nil {
			if t.Location() == time.UTC {
				t = t.In(time.FixedZone("JST", 9*60*60))
			}
			f.OriginalFile = t.Format("2006-01-02T15:04:05-07:00")
		}
	}
}

// configureStyles recovers fonts, base size, line spacing and the
// paragraph space slots from the style sheet. The makdo style is read
// first so the dependent styles divide by the updated base size.
func (pr *Parser) configureStyles(pkg *Package, f *document.Form) {
	data, ok := pkg.Part(partStyles)
	if !ok {
		return
	}
	blks, _ := blocks.Group(blocks.Body("w:styles", blocks.Tokenize(string(data))))
	var sb, sa [6]float64
	seen := false
	for pass := 0; pass < 2; pass++ {
		for _, b := range blks {
			if b.Name != "w:style" || len(b.Tokens) == 0 {
				continue
			}
			id := b.Tokens[0].Attr("w:styleId")
			if (pass == 0) != (id == "makdo") {
				continue
			}
			font, sz, line, before, after := "", -1.0, -1.0, -1.0, -1.0
			deZero, dnZero := false, false
			for _, t := range b.Tokens {
				switch t.Name {
				case "w:rFonts":
					if name, ok := lastAttr(t.Raw); ok {
						font = name
					}
				case "w:sz":
					sz = t.FloatAttr("w:val", -1)
				case "w:spacing":
					if v := t.Attr("w:line"); v != "" {
						line, _ = strconv.ParseFloat(v, 64)
					}
					if v := t.Attr("w:before"); v != "" {
						before, _ = strconv.ParseFloat(v, 64)
					}
					if v := t.Attr("w:after"); v != "" {
						after, _ = strconv.ParseFloat(v, 64)
					}
				case "w:autoSpaceDE":
					deZero = t.Attr("w:val") == "0"
				case "w:autoSpaceDN":
					dnZero = t.Attr("w:val") == "0"
				}
			}
			switch {
			case id == "makdo":
				if font != "" {
					f.MinchoFont = font
				}
				if sz > 0 {
					f.FontSize = roundN(sz/2, 1)
				}
				if line > 0 {
					f.LineSpacing = roundN(line/20/f.FontSize, 2)
				}
				f.AutoSpace = !(deZero && dnZero)
			case id == "makdo-g":
				if font != "" {
					f.GothicFont = font
				}
			case id == "makdo-i":
				if font != "" {
					f.IVSFont = font
				}
			case strings.HasPrefix(id, "makdo-"):
				n, err := strconv.Atoi(id[len("makdo-"):])
				if err != nil || n < 1 || n > 6 {
					continue
				}
				if before >= 0 {
					sb[n-1] = roundN(before/20/f.FontSize/f.LineSpacing, 2)
					seen = true
				}
				if after >= 0 {
					sa[n-1] = roundN(after/20/f.FontSize/f.LineSpacing, 2)
					seen = true
				}
			}
		}
	}
	if !seen {
		return
	}
	zero := true
	for i := range sb {
		if sb[i] != 0 || sa[i] != 0 {
			zero = false
		}
	}
	if zero {
		return
	}
	f.SpaceBefore = joinSlots(sb)
	f.SpaceAfter = joinSlots(sa)
}

func joinSlots(v [6]float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = pyFloat(x)
	}
	return strings.Join(parts, ", ")
}

// configureRunning decodes the header and footer parts. The decoded
// text, alignment colons included, becomes the header string and the
// page number format; a later part overrides an earlier one.
func (pr *Parser) configureRunning(pkg *Package, doc *document.Document, rels *Relationships) {
	for _, name := range []string{"word/header1.xml", "word/header2.xml"} {
		if data, ok := pkg.Part(name); ok {
			if s := pr.decodeRunning(doc, pkg, rels, data); s != "" {
				doc.Form.HeaderString = s
			}
		}
	}
	for _, name := range []string{"word/footer1.xml", "word/footer2.xml"} {
		if data, ok := pkg.Part(name); ok {
			if s := pr.decodeRunning(doc, pkg, rels, data); s != "" {
				doc.Form.PageNumber = s
			}
		}
	}
}

func (pr *Parser) decodeRunning(doc *document.Document, pkg *Package, rels *Relationships, data []byte) string {
	rd := newRunDecoder(doc, pkg, rels, pr.media, false)
	rd.pageField = true
	text := finishText(rd.decode(blocks.Tokenize(string(data))))
	switch rd.align {
	case document.AlignCenter:
		text = ": " + text + " :"
	case document.AlignRight:
		text = text + " :"
	}
	return text
}

// ---------------------------------------------------------------------------
// run decoding

// runDecoder turns the runs of one paragraph, or of one running part,
// into decorated text, collecting the element hints the classifier
// needs on the way. Decoration state lives per run; a run inherits
// nothing from its predecessor, so mirror tokens at the boundary are
// cancelled when the run text is folded in.
type runDecoder struct {
	doc  *document.Document
	pkg  *Package
	rels *Relationships

	media     string
	base      float64 // size the scale bands compare against
	inTable   bool    // no rule detection, table base size
	pageField bool    // literal page letters get escaped

	text    string
	run     string
	st      decorator.Stack
	inRun   bool
	curText string // open text element, "" between
	fld     string // page number field state
	inIns   bool

	style      string
	align      document.Align
	sectPr     bool
	pgNumStart bool
	pageBreak  bool
	ruleSeen   bool
	rule       document.RuleKind
	hasMath    bool
	hasImage   bool
	comments   []string

	imgName     string
	imgSize     string
	imgWidthCm  float64
	pendingName string
}

func newRunDecoder(doc *document.Document, pkg *Package, rels *Relationships, media string, inTable bool) *runDecoder {
	base := doc.Form.FontSize
	if inTable {
		base = doc.Form.FontSize * 0.8
	}
	return &runDecoder{
		doc: doc, pkg: pkg, rels: rels,
		media: media, base: base, inTable: inTable,
	}
}

var spaceCharRe = regexp.MustCompile(`\s`)

func (rd *runDecoder) decode(toks []blocks.Token) string {
	for _, t := range toks {
		if t.Name == "w:fldChar" {
			switch t.Attr("w:fldCharType") {
			case "begin":
				rd.fld = "begin"
			case "separate":
				rd.fld = "separate"
			case "end":
				rd.fld = ""
			}
		}
		if rd.fld == "separate" {
			continue
		}
		switch t.Name {
		case "v:imagedata":
			rd.captureImageMS(t.Attr("r:id"), t.Attr("o:title"))
		case "pic:cNvPr":
			if n := t.Attr("name"); n != "" {
				rd.pendingName = n
			}
		case "a:blip":
			rd.captureImagePy(t.Attr("r:embed"))
		case "wp:extent":
			rd.captureImageSize(t.FloatAttr("cx", 0), t.FloatAttr("cy", 0))
		case "w:sectPr":
			if t.Kind != blocks.Close {
				rd.sectPr = true
			}
		case "w:pgNumType":
			if t.Attr("w:start") != "" {
				rd.pgNumStart = true
			}
		case "m:oMathPara", "m:oMath":
			if t.Kind != blocks.Close {
				rd.hasMath = true
			}
		case "w:commentRangeStart", "w:commentReference":
			rd.noteComment(t.Attr("w:id"))
		case "w:ins":
			switch t.Kind {
			case blocks.Open:
				rd.inIns = true
			case blocks.Close:
				rd.inIns = false
			}
		case "w:pStyle":
			if rd.style == "" {
				rd.style = t.Attr("w:val")
			}
		case "w:jc":
			if rd.align == document.AlignNone {
				rd.align = document.AlignFromString(t.Attr("w:val"))
			}
		}
		if !rd.inTable && t.Kind != blocks.Close {
			switch t.Name {
			case "w:top":
				rd.ruleSeen = true
				rd.rule = document.RuleTop
			case "w:bottom":
				rd.ruleSeen = true
				rd.rule = document.RuleBottom
			case "v:rect":
				if strings.Contains(t.Raw, `style="width:0;height:1.5pt"`) {
					rd.ruleSeen = true
					rd.rule = document.RuleTextbox
				}
			}
		}
		rd.emitImage()
		switch {
		case t.Name == "w:r" && t.Kind == blocks.Open:
			rd.run, rd.st, rd.inRun = "", decorator.Stack{}, true
		case t.Name == "w:r" && t.Kind == blocks.Close:
			rd.closeRun()
		case !rd.inRun:
			// inter-run content carries no text
		case t.Kind == blocks.Text:
			rd.textPiece(t.Raw)
		default:
			rd.runProp(t)
		}
	}
	rd.closeRun()
	return rd.text
}

func (rd *runDecoder) closeRun() {
	if rd.run != "" {
		if rd.st.Track == decorator.TrackNone && rd.inIns {
			rd.st.Track = decorator.TrackInserted
		}
		l, r := decorator.JoinRuns(rd.text, decorator.Wrap(rd.run, rd.st))
		rd.text = l + r
	}
	rd.run, rd.inRun = "", false
}

func (rd *runDecoder) noteComment(id string) {
	if id == "" {
		return
	}
	for _, c := range rd.comments {
		if c == id {
			return
		}
	}
	rd.comments = append(rd.comments, id)
}

var hexColorRe = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// bareTag reports a valueless toggle tag. A tag carrying any
// attribute, such as w:val="false", is left alone.
func bareTag(t blocks.Token, name string) bool {
	return t.Raw == "<"+name+">" || t.Raw == "<"+name+"/>"
}

func (rd *runDecoder) runProp(t blocks.Token) {
	switch t.Name {
	case "w:t", "w:delText", "w:instrText":
		switch t.Kind {
		case blocks.Open:
			rd.curText = t.Name
			if t.Name == "w:delText" {
				rd.st.Track = decorator.TrackDeleted
			}
		case blocks.Close:
			rd.curText = ""
		}
	case "w:sz":
		if s := t.FloatAttr("w:val", -1) / 2; s > 0 {
			rd.st.Scale = decorator.ScaleFromSize(s, rd.base)
		}
	case "w:w":
		if w := t.FloatAttr("w:val", -1); w > 0 {
			rd.st.Width = decorator.WidthFromPercent(w)
		}
	case "w:i":
		if bareTag(t, "w:i") {
			rd.st.Italic = true
		}
	case "w:b":
		if bareTag(t, "w:b") {
			rd.st.Bold = true
		}
	case "w:strike":
		if bareTag(t, "w:strike") {
			rd.st.Strike = true
		}
	case "w:rFonts":
		name, ok := lastAttr(t.Raw)
		if !ok {
			return
		}
		switch name {
		case rd.doc.Form.MinchoFont:
		case rd.doc.Form.GothicFont:
			rd.st.Gothic = true
		default:
			rd.st.FontName = name
		}
	case "w:u":
		rd.st.Underline = "single"
		if v := t.Attr("w:val"); alphaRe.MatchString(v) {
			rd.st.Underline = v
		}
	case "w:color":
		if v := t.Attr("w:val"); hexColorRe.MatchString(v) {
			rd.st.FontColor = strings.ToUpper(v)
		}
	case "w:highlight":
		if v := t.Attr("w:val"); alphaRe.MatchString(v) {
			rd.st.Highlight = v
		}
	case "w:bdr":
		if t.Kind != blocks.Close {
			rd.st.Frame = true
		}
	case "w:vertAlign":
		rd.st.Script = decorator.ScriptFromVert(t.Attr("w:val"))
	case "w:br":
		if t.Raw == "<w:br>" || t.Raw == "<w:br/>" {
			rd.run += "\n"
		} else if t.Attr("w:type") == "page" {
			rd.pageBreak = true
		}
	case "w:tab":
		if t.Kind == blocks.SelfClose {
			rd.run += "\t"
		}
	}
}

var alphaRe = regexp.MustCompile(`^[A-Za-z]+$`)

func (rd *runDecoder) textPiece(raw string) {
	if rd.curText == "" {
		return
	}
	if rd.fld == "begin" {
		s := strings.TrimSpace(unescapeXML(raw))
		if strings.HasPrefix(s, "NUMPAGES") {
			rd.run += "N"
		} else if strings.HasPrefix(s, "PAGE") {
			rd.run += "n"
		}
		return
	}
	s := decorator.EscapeText(unescapeXML(raw))
	if rd.pageField {
		s = strings.ReplaceAll(s, "n", `\n`)
		s = strings.ReplaceAll(s, "N", `\N`)
	}
	rd.run += s
}

// lastAttr returns the value of the final attribute of a raw tag, the
// way a greedy scan reads w:rFonts. A tag whose last attribute is
// w:hint yields nothing.
var attrPairRe = regexp.MustCompile(`([0-9A-Za-z:_-]+)="([^"]*)"`)

func lastAttr(raw string) (string, bool) {
	ms := attrPairRe.FindAllStringSubmatch(raw, -1)
	if len(ms) == 0 {
		return "", false
	}
	last := ms[len(ms)-1]
	if last[1] == "w:hint" {
		return "", false
	}
	return last[2], true
}

// ---------------------------------------------------------------------------
// images

func (rd *runDecoder) captureImageMS(relID, title string) {
	if title == "" {
		return
	}
	rd.registerImage(relID, spaceCharRe.ReplaceAllString(title, "_"), true)
}

func (rd *runDecoder) captureImagePy(relID string) {
	name := rd.pendingName
	rd.registerImage(relID, name, false)
}

func (rd *runDecoder) registerImage(relID, name string, withExt bool) {
	if rd.rels == nil || relID == "" {
		return
	}
	target := rd.rels.Target(relID)
	if target == "" {
		return
	}
	if stored, ok := rd.doc.Refs[target]; ok {
		rd.imgName = stored
		return
	}
	ext := target
	if i := strings.LastIndex(target, "."); i >= 0 {
		ext = target[i+1:]
	}
	if !withExt {
		name = strings.TrimSuffix(name, "."+ext)
		name = spaceCharRe.ReplaceAllString(name, "_")
	}
	part := target
	if strings.HasPrefix(part, "/") {
		part = strings.TrimPrefix(part, "/")
	} else {
		part = "word/" + part
	}
	data, _ := rd.pkg.Part(part)
	stored := rd.doc.AddMedia(name+"."+ext, data)
	rd.doc.Refs[target] = stored
	rd.imgName = stored
}

const emuPerPoint = 12700

func (rd *runDecoder) captureImageSize(cx, cy float64) {
	if cx <= 0 || cy <= 0 {
		return
	}
	w := roundCm(cx * 2.54 / 72 / emuPerPoint)
	h := roundCm(cy * 2.54 / 72 / emuPerPoint)
	rd.imgWidthCm = w
	rd.imgSize = pyFloat(w) + "x" + pyFloat(h)
}

func roundCm(x float64) float64 {
	if x >= 1 {
		return roundN(x, 1)
	}
	return roundN(x, 2)
}

// emitImage writes the reference once both the stored name and the
// extent are known. Conventional sizes become scale decorations, with
// an adjacent identical band merged; anything else keeps the explicit
// size. The <> marker protects the reference until the lookalike
// guards have run.
func (rd *runDecoder) emitImage() {
	if rd.imgName == "" || rd.imgSize == "" {
		return
	}
	m := rd.base * 2.54 / 72
	ref := "<>![" + rd.imgName + "](" + rd.media + "/" + rd.imgName + ")"
	w := rd.imgWidthCm
	switch {
	case w >= m*0.98 && w <= m*1.02:
		rd.text += ref
	case w >= m*0.6*0.98 && w <= m*0.6*1.02:
		rd.mergeBand(ref, "---")
	case w >= m*0.8*0.98 && w <= m*0.8*1.02:
		rd.mergeBand(ref, "--")
	case w >= m*1.2*0.98 && w <= m*1.2*1.02:
		rd.mergeBand(ref, "++")
	case w >= m*1.4*0.98 && w <= m*1.4*1.02:
		rd.mergeBand(ref, "+++")
	default:
		rd.text += "<>![" + rd.imgName + ":" + rd.imgSize + "](" + rd.media + "/" + rd.imgName + ")"
	}
	rd.hasImage = true
	rd.imgName, rd.imgSize = "", ""
}

func (rd *runDecoder) mergeBand(ref, tok string) {
	if strings.HasSuffix(rd.text, tok) {
		rd.text = strings.TrimSuffix(rd.text, tok) + ref + tok
		return
	}
	rd.text += tok + ref + tok
}

// ---------------------------------------------------------------------------
// guards

var (
	lengthGuardRe    = regexp.MustCompile(`^(v|V|X|<<|<|>)=\s*[0-9]+`)
	numberingSetRe   = regexp.MustCompile(`^(\$+(-\$)*|#+(-#)*)=[0-9]+(\s*.*)?$`)
	numberingHeadRe  = regexp.MustCompile(`^(\$+(-\$)*|#+(-#)*)(\s*.*)?$`)
	listLookalikeRe  = regexp.MustCompile(`^(-|\+|[0-9]+\.|[0-9]+\))\s+`)
	tableLookalikeRe = regexp.MustCompile(`^\|(.*)\|$`)
	hlineLookalikeRe = regexp.MustCompile(`^((\s*-\s*)|(\s*\*\s*)){3,}$`)
	imageLookalikeRe = regexp.MustCompile(`! *\[[^\[\]]*\] *\([^()]+\)`)
	imageSentinelRe  = regexp.MustCompile(`<>\\(! *\[[^\[\]]*\] *\([^()]+\))`)
	alignBothGuardRe = regexp.MustCompile(`^:(\s*.*\s*):$`)
	alignHeadGuardRe = regexp.MustCompile(`^:(\s*.*)$`)
	alignTailGuardRe = regexp.MustCompile(`^(.*\s*):$`)
)

// finishText runs the decoded text through the lookalike guards and
// the final cleanups, in the fixed order the round trip depends on.
func finishText(text string) string {
	text = decorator.GuardSpaces(text)
	text = guardMarkers(text)
	text = decorator.EncodeIVS(text)
	return decorator.Tidy(text)
}

// guardMarkers escapes decoded text that would otherwise scan as block
// markup. Image references pass through a sentinel: everything that
// looks like a reference is escaped, then the marked live ones are
// unescaped again.
func guardMarkers(text string) string {
	if lengthGuardRe.MatchString(text) {
		text = `\` + text
	}
	if numberingSetRe.MatchString(text) {
		text = `\` + text
	}
	if numberingHeadRe.MatchString(text) {
		text = `\` + text
	}
	if listLookalikeRe.MatchString(text) {
		text = `\` + text
	}
	if tableLookalikeRe.MatchString(text) {
		text = tableLookalikeRe.ReplaceAllString(text, `\|$1\|`)
	}
	text = imageLookalikeRe.ReplaceAllString(text, `\$0`)
	text = imageSentinelRe.ReplaceAllString(text, "$1")
	switch {
	case alignBothGuardRe.MatchString(text):
		text = alignBothGuardRe.ReplaceAllString(text, `\:$1\:`)
	case alignHeadGuardRe.MatchString(text):
		text = alignHeadGuardRe.ReplaceAllString(text, `\:$1`)
	case alignTailGuardRe.MatchString(text):
		text = alignTailGuardRe.ReplaceAllString(text, `$1\:`)
	}
	if hlineLookalikeRe.MatchString(text) {
		text = `\` + text
	}
	return text
}

// ---------------------------------------------------------------------------
// decorator separation

var (
	headTokenRe = regexp.MustCompile(`^(` + decorator.TokenPattern + `)`)
	// An odd run of backslashes before the token keeps it in the text.
	tailTokenRe = regexp2.MustCompile(`(?<!(?:^|[^\\])(?:\\\\)*\\)(`+decorator.TokenPattern+`)\z`, regexp2.None)
)

// splitDecorators peels decoration tokens off both ends of the text.
// The tail list reads in textual order; a token preceded by an active
// backslash stays in the text.
func splitDecorators(text string) (head, tail []string, rest string) {
	rest = text
	for {
		m := headTokenRe.FindString(rest)
		if m == "" {
			break
		}
		head = append(head, m)
		rest = rest[len(m):]
	}
	for {
		m, err := tailTokenRe.FindStringMatch(rest)
		if err != nil || m == nil {
			break
		}
		tok := m.String()
		tail = append([]string{tok}, tail...)
		rest = rest[:len(rest)-len(tok)]
	}
	return head, tail, rest
}

func removeToken(list []string, tok string) []string {
	for i, t := range list {
		if t == tok {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

// ---------------------------------------------------------------------------
// paragraphs

func (pr *Parser) decodeParagraph(doc *document.Document, pkg *Package, rels *Relationships, comments map[string]string, blk blocks.Block) {
	rd := newRunDecoder(doc, pkg, rels, pr.media, false)
	raw := rd.decode(blk.Tokens)

	var text string
	switch {
	case rd.hasMath:
		text = `\[` + decodeMath(blk) + `\]`
	case rd.pgNumStart:
		text = "<Pgbr>"
	default:
		text = finishText(raw)
	}

	natDepth, natNumbered, native := nativeList(blk, rd.style)
	src := document.Source{
		Text:       text,
		StyleName:  rd.style,
		Alignment:  rd.align,
		HasSectPr:  rd.sectPr && !rd.pgNumStart,
		HasBreak:   rd.pageBreak || rd.pgNumStart,
		HasRule:    rd.ruleSeen,
		HasImage:   rd.hasImage,
		HasMath:    rd.hasMath,
		NativeList: native,
	}
	class := document.ClassifyDecoded(src)
	p := &document.Paragraph{Class: class}

	switch class {
	case document.ClassMath, document.ClassPreformatted, document.ClassPageBreak,
		document.ClassConfiguration, document.ClassBlank:
		// these keep their text whole
	default:
		head, tail, rest := splitDecorators(text)
		src.HeadDecorators, src.TailDecorators = head, tail
		switch class {
		case document.ClassChapter:
			src.Text = pr.buildChapter(doc, p, rest)
		case document.ClassSection:
			src.Text = pr.buildSection(doc, p, rest, &src.HeadDecorators, &src.TailDecorators, blk)
		case document.ClassList:
			if native {
				src.Text = buildNativeList(natDepth, natNumbered, rest)
			} else {
				src.Text = pr.buildList(doc, p, rest)
			}
		case document.ClassAlignment:
			src.Text = buildAlignment(rd.align, rest)
		case document.ClassImage:
			src.Text = fixImageSize(rest, doc.Form)
		default:
			src.Text = rest
		}
	}
	if class == document.ClassPreformatted {
		src.Lines = fenceLines(text)
		src.Text = strings.Join(src.Lines, "\n")
	}

	if err := document.Extract(p, src); err != nil {
		pr.log.Warn("extract paragraph", zap.Error(err))
		p.Warn("※ 警告: 段落を解釈できません")
	}
	if class == document.ClassHorizontalLine {
		p.Rule = rd.rule
	}
	p.NumberedSecond = doc.Counters.Peek(numbering.Section, 2, 0) > 0
	p.NumberedThird = doc.Counters.Peek(numbering.Section, 3, 0) > 0

	tw := harvestTwips(blk)
	if class == document.ClassHorizontalLine && rd.rule != document.RuleTextbox {
		p.Lengths.Docx = ruleLengths(tw, doc.Form)
	} else {
		p.Lengths.Docx = length.FromTwips(tw, doc.Form.FontSize, doc.Form.LineSpacing)
	}
	p.Rebase(doc.Form)

	for _, id := range rd.comments {
		if txt, ok := comments[id]; ok && txt != "" {
			p.Remarks = append(p.Remarks, txt)
		}
	}
	doc.Append(p)
	if class != document.ClassList {
		doc.Counters.ResetLists()
	}
}

func (pr *Parser) buildChapter(doc *document.Document, p *document.Paragraph, text string) string {
	h, ok := numbering.MatchChapter(text)
	if !ok {
		return text
	}
	for _, w := range doc.Counters.Step(numbering.Chapter, h.Depth, h.Branch) {
		p.Warn(w)
	}
	p.NumberingRevisers = append(p.NumberingRevisers,
		doc.Counters.Deviations(numbering.Chapter, h.Depth, h.State)...)
	return strings.Repeat("$", h.Depth) + strings.Repeat("-$", h.Branch) + " " + h.Rest
}

// buildSection walks the chained heads in depth order. A heading whose
// literal numbers disagree with the counters gets a numbering reviser
// for each deviation. The centered title form has no head to consume;
// its size decoration folds into the depth 1 marker.
func (pr *Parser) buildSection(doc *document.Document, p *document.Paragraph, text string, head, tail *[]string, blk blocks.Block) string {
	marker := ""
	rest := text
	matched := false
	for d := 2; d <= 8; d++ {
		h, ok := numbering.MatchSection(rest, d)
		if !ok {
			continue
		}
		matched = true
		for _, w := range doc.Counters.Step(numbering.Section, d, h.Branch) {
			p.Warn(w)
		}
		p.NumberingRevisers = append(p.NumberingRevisers,
			doc.Counters.Deviations(numbering.Section, d, h.State)...)
		marker += strings.Repeat("#", d) + strings.Repeat("-#", h.Branch) + " "
		rest = h.Rest
	}
	if !matched {
		for _, w := range doc.Counters.Step(numbering.Section, 1, 0) {
			p.Warn(w)
		}
		*head = removeToken(*head, "+++")
		*tail = removeToken(*tail, "+++")
		if tok := titleSizeToken(blk, doc.Form); tok != "" {
			*head = append([]string{tok}, *head...)
			*tail = append(*tail, tok)
		}
		return "# " + rest
	}
	rest = strings.TrimPrefix(rest, "　")
	return marker + rest
}

// titleSizeToken reads the first explicit size of a title paragraph
// and renders the deviation from the depth 1 default as a scale token.
func titleSizeToken(blk blocks.Block, f *document.Form) string {
	xl := f.FontSize * 1.4
	for _, t := range blk.Tokens {
		switch t.Name {
		case "w:sz":
			s := t.FloatAttr("w:val", -1) / 2
			if s <= 0 {
				continue
			}
			switch {
			case s < xl*0.7:
				return "---"
			case s < xl*0.9:
				return "--"
			case s > xl*1.3:
				return "+++"
			case s > xl*1.1:
				return "++"
			}
			return ""
		case "w:w":
			w := t.FloatAttr("w:val", -1)
			if w <= 0 {
				continue
			}
			switch {
			case w < 70:
				return "---"
			case w < 90:
				return "--"
			case w > 130:
				return "+++"
			case w > 110:
				return "++"
			}
			return ""
		}
	}
	return ""
}

func (pr *Parser) buildList(doc *document.Document, p *document.Paragraph, text string) string {
	it, ok := numbering.MatchListItem(text)
	if !ok {
		return text
	}
	indent := strings.Repeat("  ", it.Depth-1)
	if !it.Numbered {
		return indent + "- " + it.Rest
	}
	for _, w := range doc.Counters.Step(numbering.List, it.Depth, 0) {
		p.Warn(w)
	}
	p.NumberingRevisers = append(p.NumberingRevisers,
		doc.Counters.Deviations(numbering.List, it.Depth, []int{it.Value})...)
	return indent + "1. " + it.Rest
}

// nativeList recognizes list formatting that rides the package's own
// numbering: a numPr element or a ListBullet/ListNumber style.
func nativeList(blk blocks.Block, style string) (depth int, numbered, ok bool) {
	for _, name := range []string{"ListBullet", "ListNumber"} {
		if !strings.HasPrefix(style, name) {
			continue
		}
		depth, ok = 1, true
		numbered = name == "ListNumber"
		if suffix := style[len(name):]; suffix != "" {
			if n, err := strconv.Atoi(suffix); err == nil && n >= 1 {
				depth = n
			}
		}
	}
	sawNum := false
	numID := ""
	for _, t := range blk.Tokens {
		switch t.Name {
		case "w:numPr":
			if t.Kind != blocks.Close {
				sawNum = true
			}
		case "w:ilvl":
			if v := t.IntAttr("w:val", -1); v >= 0 {
				depth = v + 1
			}
		case "w:numId":
			numID = t.Attr("w:val")
		}
	}
	if sawNum {
		ok = true
		numbered = numID != "10"
		if depth == 0 {
			depth = 1
		}
	}
	return depth, numbered, ok
}

func buildNativeList(depth int, numbered bool, text string) string {
	if depth < 1 {
		depth = 1
	}
	head := "- "
	if numbered {
		head = "1. "
	}
	return strings.Repeat("  ", depth-1) + head + text
}

func buildAlignment(align document.Align, text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	for i, ln := range lines {
		switch align {
		case document.AlignRight:
			out[i] = ln + " :"
		case document.AlignCenter:
			out[i] = ": " + ln + " :"
		default:
			out[i] = ": " + ln
		}
	}
	return strings.Join(out, "\n")
}

const cmNumberPat = `[0-9]+(?:\.[0-9]+)?`

var fixedImageRe = regexp.MustCompile(
	`^! *\[([^\[\]]*):(` + cmNumberPat + `)x(` + cmNumberPat + `)\] *\(([^()]+)\)$`)

// fixImageSize replaces a measured size that matches the text area, or
// half of it, with the relative form. Only the single-reference shape
// carries a size to compare.
func fixImageSize(text string, f *document.Form) string {
	m := fixedImageRe.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	textW := f.PaperWidth() - f.LeftMargin - f.RightMargin
	textH := f.PaperHeight() - f.TopMargin - f.BottomMargin
	w := relativeSize(parseFloat(m[2]), textW)
	h := relativeSize(parseFloat(m[3]), textH)
	switch {
	case w != "" && h != "":
		return "![" + m[1] + ":" + w + "x" + h + "](" + m[4] + ")"
	case w != "":
		return "![" + m[1] + ":" + w + "x](" + m[4] + ")"
	case h != "":
		return "![" + m[1] + ":x" + h + "](" + m[4] + ")"
	}
	return text
}

func relativeSize(cm, fixed float64) string {
	switch {
	case cm >= fixed*0.98 && cm <= fixed*1.02:
		return "-1"
	case cm >= fixed*0.48 && cm <= fixed*0.52:
		return "-0.5"
	}
	return ""
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

var fenceCaptionRe = regexp.MustCompile(`^\[(.*)\]`)

// fenceLines shapes a gothic paragraph for the fence extractor: the
// caption line first, then the body. The single backtick pair from the
// font wrap goes away.
func fenceLines(text string) []string {
	text = strings.TrimPrefix(text, "`")
	text = strings.TrimSuffix(text, "`")
	lines := strings.Split(text, "\n")
	if m := fenceCaptionRe.FindStringSubmatch(lines[0]); m != nil {
		lines[0] = m[1] + lines[0][len(m[0]):]
		return lines
	}
	return append([]string{""}, lines...)
}

// ---------------------------------------------------------------------------
// lengths

func harvestTwips(blk blocks.Block) length.Twips {
	var tw length.Twips
	set := func(dst *float64, t blocks.Token, name string) {
		if v := t.Attr(name); v != "" {
			if x, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = x
			}
		}
	}
	for _, t := range blk.Tokens {
		switch t.Name {
		case "w:spacing":
			set(&tw.Before, t, "w:before")
			set(&tw.After, t, "w:after")
			set(&tw.Line, t, "w:line")
		case "w:ind":
			set(&tw.FirstLine, t, "w:firstLine")
			set(&tw.Hanging, t, "w:hanging")
			set(&tw.Left, t, "w:left")
			set(&tw.Right, t, "w:right")
		case "w:tblInd":
			set(&tw.TableInd, t, "w:w")
		}
	}
	return tw
}

// ruleLengths reads the spacing around a border rule. The halves of
// the line box sit asymmetrically around the rule, so the two spacings
// only translate back to a line spacing when they agree.
func ruleLengths(tw length.Twips, f *document.Form) length.Lengths {
	m := f.FontSize
	ls := f.LineSpacing
	var l length.Lengths
	sb := roundN((tw.Before/20-((ls-1)*0.75+0.5)*m)/ls/m, 2)
	sa := roundN((tw.After/20-((ls-1)*0.25+0.5)*m)/ls/m, 2)
	if sb == sa {
		l.LineSpacing = sb + sa
	} else {
		l.SpaceBefore = sb
		l.SpaceAfter = sa
	}
	l.FirstIndent = roundN((tw.FirstLine-tw.Hanging)/20/m, 2)
	l.LeftIndent = roundN((tw.Left+tw.TableInd)/20/m, 2)
	l.RightIndent = roundN(tw.Right/20/m, 2)
	return l
}

// ---------------------------------------------------------------------------
// tables

func (pr *Parser) decodeTable(doc *document.Document, pkg *Package, rels *Relationships, comments map[string]string, blk blocks.Block) {
	f := doc.Form
	sSize := f.FontSize * 0.8

	tab := &document.Table{}
	p := &document.Paragraph{Class: document.ClassTable}
	var tw length.Twips

	inner := blk.Tokens
	if len(inner) >= 2 {
		inner = inner[1 : len(inner)-1]
	}
	children, _ := blocks.Group(inner)
	for _, ch := range children {
		switch ch.Name {
		case "w:tblPr":
			for _, t := range ch.Tokens {
				switch t.Name {
				case "w:jc":
					if p.Alignment == document.AlignNone {
						p.Alignment = document.AlignFromString(t.Attr("w:val"))
					}
				case "w:tblInd":
					if v := t.FloatAttr("w:w", 0); v != 0 {
						tw.TableInd = v
					}
				}
			}
		case "w:tblGrid":
			for _, t := range ch.Tokens {
				if t.Name == "w:gridCol" {
					w := t.FloatAttr("w:w", 0)
					tab.Columns = append(tab.Columns, document.ColumnSpec{
						Width: math.Round(w/sSize/10 - 4),
					})
				}
			}
		case "w:tr":
			row, spec := pr.decodeRow(doc, pkg, rels, ch, tab)
			tab.Rows = append(tab.Rows, row)
			tab.Specs = append(tab.Specs, spec)
		}
	}
	tab.Header = headerRows(tab)

	for _, t := range blk.Tokens {
		if t.Name == "w:commentRangeStart" || t.Name == "w:commentReference" {
			if txt, ok := comments[t.Attr("w:id")]; ok && txt != "" {
				p.Remarks = append(p.Remarks, txt)
			}
		}
	}

	p.Table = tab
	p.Text = ""
	p.NumberedSecond = doc.Counters.Peek(numbering.Section, 2, 0) > 0
	p.NumberedThird = doc.Counters.Peek(numbering.Section, 3, 0) > 0
	p.Lengths.Docx = length.FromTwips(tw, f.FontSize, f.LineSpacing)
	p.Rebase(f)
	doc.Append(p)
	doc.Counters.ResetLists()
}

func (pr *Parser) decodeRow(doc *document.Document, pkg *Package, rels *Relationships, tr blocks.Block, tab *document.Table) ([]document.Cell, document.RowSpec) {
	f := doc.Form
	var row []document.Cell
	var spec document.RowSpec

	inner := tr.Tokens
	if len(inner) >= 2 {
		inner = inner[1 : len(inner)-1]
	}
	children, _ := blocks.Group(inner)
	for _, ch := range children {
		switch ch.Name {
		case "w:trPr":
			for _, t := range ch.Tokens {
				if t.Name == "w:trHeight" {
					if v := t.FloatAttr("w:val", 0); v > 0 {
						spec.Height = roundN(v/20/(f.FontSize*f.LineSpacing), 2)
					}
				}
			}
		case "w:tc":
			cell, span, merged := pr.decodeCell(doc, pkg, rels, ch, &spec, tab, len(row))
			if merged {
				row = append(row, document.Cell{VMerge: true})
			} else {
				row = append(row, cell)
			}
			for i := 1; i < span; i++ {
				row = append(row, document.Cell{Covered: true})
			}
		}
	}
	return row, spec
}

func (pr *Parser) decodeCell(doc *document.Document, pkg *Package, rels *Relationships, tc blocks.Block, spec *document.RowSpec, tab *document.Table, col int) (document.Cell, int, bool) {
	var cell document.Cell
	span := 1
	merged := false

	for _, t := range tc.Tokens {
		switch t.Name {
		case "w:gridSpan":
			if v := t.IntAttr("w:val", 1); v > 1 {
				span = v
			}
		case "w:vMerge":
			if t.Attr("w:val") != "restart" {
				merged = true
			}
		case "w:vAlign":
			switch t.Attr("w:val") {
			case "top":
				spec.VAlign = document.VTop
			case "bottom":
				spec.VAlign = document.VBottom
			case "center":
				spec.VAlign = document.VMiddle
			}
		case "w:jc":
			if cell.Align == document.AlignNone {
				cell.Align = document.AlignFromString(t.Attr("w:val"))
			}
		case "w:right":
			if t.Attr("w:val") == "double" && col < len(tab.Columns) {
				tab.Columns[col].Rule = document.RuleDouble
			}
		case "w:bottom":
			if t.Attr("w:val") == "double" {
				spec.Rule = document.RuleDouble
			}
		}
	}

	inner := tc.Tokens
	if len(inner) >= 2 {
		inner = inner[1 : len(inner)-1]
	}
	children, _ := blocks.Group(inner)
	var paras []string
	for _, ch := range children {
		if ch.Name != "w:p" {
			continue
		}
		rd := newRunDecoder(doc, pkg, rels, pr.media, true)
		paras = append(paras, rd.decode(ch.Tokens))
	}
	text := finishText(strings.Join(paras, "\n"))
	cell.Text = cellGuards(text, cell.Align == document.AlignCenter)
	return cell, span, merged
}

var (
	cellHeadGuardRe = regexp.MustCompile(`^(\\\s+)`)
	cellTailGuardRe = regexp.MustCompile(`(\s+\\)$`)
	cellHeadSlashRe = regexp.MustCompile(`^\\`)
	cellTailSlashRe = regexp.MustCompile(`\\$`)
)

// cellGuards undoes the paragraph-level guards inside a cell. Centered
// cells keep their space guards behind one padding space; other cells
// drop the single escape the guards added.
func cellGuards(text string, centered bool) string {
	if centered {
		text = cellHeadGuardRe.ReplaceAllString(text, " $1")
		text = cellTailGuardRe.ReplaceAllString(text, "$1 ")
		return text
	}
	text = cellHeadSlashRe.ReplaceAllString(text, "")
	text = cellTailSlashRe.ReplaceAllString(text, "")
	return text
}

// headerRows finds where the body starts: the first row whose
// alignment shape matches the middle row's.
func headerRows(tab *document.Table) int {
	if len(tab.Rows) == 0 {
		return 0
	}
	half := len(tab.Rows) / 2
	for i := range tab.Rows {
		if alignShapeEqual(tab.Rows[i], tab.Rows[half]) {
			return i
		}
	}
	return 0
}

func alignShapeEqual(a, b []document.Cell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i].Align, b[i].Align
		if x == document.AlignNone {
			x = document.AlignLeft
		}
		if y == document.AlignNone {
			y = document.AlignLeft
		}
		if x != y {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// small helpers

func roundN(x float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(x*p) / p
}

// pyFloat prints a float with at least one decimal digit, matching the
// number format the configuration block uses.
func pyFloat(x float64) string {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
