package docx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-docx-md/pkg/decorator"
	"github.com/nerdneilsfield/go-docx-md/pkg/document"
	"github.com/nerdneilsfield/go-docx-md/pkg/length"
	"github.com/nerdneilsfield/go-docx-md/pkg/numbering"
)

// Renderer assembles a package from the document model. The document
// is expected to have been through NormalizeForDocx, so every
// paragraph's Docx lengths already carry the class and configuration
// baselines.
type Renderer struct {
	log *zap.Logger
}

// NewRenderer creates a renderer.
func NewRenderer(log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{log: log}
}

// Render writes the document out as a complete package.
func (rn *Renderer) Render(doc *document.Document) (*Package, error) {
	dw := &docWriter{
		doc:      doc,
		f:        doc.Form,
		log:      rn.log,
		imageRel: map[string]string{},
	}
	return dw.render()
}

// docWriter carries the state of one package assembly: the body being
// written, the relationship table of the document part, and the
// comment texts gathered from paragraph remarks.
type docWriter struct {
	doc *document.Document
	f   *document.Form
	log *zap.Logger

	body      strings.Builder
	rels      []Relationship
	imageRel  map[string]string // stored media name to relationship id
	drawingID int
	comments  []string

	headerRel string
	footerRel string
}

func (dw *docWriter) render() (*Package, error) {
	f := dw.f
	dw.addRel(relTypeStyles, "styles.xml")
	dw.addRel(relTypeSettings, "settings.xml")
	if f.HeaderString != "" {
		dw.headerRel = dw.addRel(relTypeHeader, "header1.xml")
	}
	if f.PageNumber != "" {
		dw.footerRel = dw.addRel(relTypeFooter, "footer1.xml")
	}

	for _, p := range dw.doc.Paragraphs {
		dw.renderParagraph(p)
	}

	pkg := NewPackage()
	pkg.SetPart(partRootRels, []byte(rootRelsXML))
	pkg.SetPart(partApp, []byte(appXML))
	pkg.SetPart(partCore, []byte(dw.coreXML()))
	pkg.SetPart(partStyles, []byte(dw.stylesXML()))
	pkg.SetPart(partSettings, []byte(dw.settingsXML()))
	if f.HeaderString != "" {
		pkg.SetPart("word/header1.xml", []byte(dw.runningXML("w:hdr", f.HeaderString)))
	}
	if f.PageNumber != "" {
		pkg.SetPart("word/footer1.xml", []byte(dw.runningXML("w:ftr", f.PageNumber)))
	}
	if len(dw.comments) > 0 {
		dw.addRel(relTypeComments, "comments.xml")
		pkg.SetPart(partComments, []byte(dw.commentsXML()))
	}
	for name, data := range dw.doc.Media {
		pkg.SetPart(mediaPrefix+name, data)
	}
	pkg.SetPart(partDocument, []byte(dw.documentXML()))
	pkg.SetPart(partDocumentRels, []byte(dw.docRelsXML()))
	pkg.SetPart(partContentTypes, []byte(dw.contentTypesXML()))

	dw.log.Debug("rendered package",
		zap.Int("paragraphs", len(dw.doc.Paragraphs)),
		zap.Int("media", len(dw.doc.Media)),
		zap.Int("comments", len(dw.comments)))
	return pkg, nil
}

func (dw *docWriter) addRel(typ, target string) string {
	id := "rId" + strconv.Itoa(len(dw.rels)+1)
	dw.rels = append(dw.rels, Relationship{ID: id, Type: typ, Target: target})
	return id
}

const documentNS = ` xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
	` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"` +
	` xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math"` +
	` xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"` +
	` xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"` +
	` xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"` +
	` xmlns:v="urn:schemas-microsoft-com:vml"` +
	` xmlns:o="urn:schemas-microsoft-com:office:office"`

func (dw *docWriter) documentXML() string {
	var sb strings.Builder
	sb.WriteString(xmlDecl)
	sb.WriteString("<w:document" + documentNS + ">\n<w:body>\n")
	sb.WriteString(dw.body.String())
	sb.WriteString(dw.sectPrXML(false))
	sb.WriteString("\n</w:body>\n</w:document>\n")
	return sb.String()
}

// ---------------------------------------------------------------------------
// paragraphs

func (dw *docWriter) renderParagraph(p *document.Paragraph) {
	switch p.Class {
	case document.ClassConfiguration:
		return
	case document.ClassTable:
		dw.renderTable(p)
		return
	case document.ClassMath:
		dw.renderMath(p)
		return
	case document.ClassHorizontalLine:
		dw.renderRule(p)
		return
	case document.ClassPageBreak:
		dw.renderPageBreak(p)
		return
	case document.ClassPreformatted:
		dw.renderFence(p)
		return
	case document.ClassRemarks:
		dw.writeP(p, dw.pPr(p, ""), "")
		return
	}

	text := dw.paragraphText(p)
	runs := dw.runsXML(p, decorated(p, text), dw.runContext(p))
	dw.writeP(p, dw.pPr(p, ""), runs)
}

// paragraphText reassembles the text the runs carry: the rendered
// numbering literal joined back onto the body for headings and list
// items, the reference markup for images, the text itself elsewhere.
func (dw *docWriter) paragraphText(p *document.Paragraph) string {
	switch p.Class {
	case document.ClassChapter, document.ClassSection:
		title, body, _ := strings.Cut(p.Text, "\n")
		full := title
		if p.HeadString != "" {
			if title == "" {
				full = p.HeadString
			} else {
				full = numbering.JoinHead(p.HeadString, title)
			}
		}
		if body != "" {
			full += "\n" + body
		}
		return full
	case document.ClassList:
		if p.HeadString == "" {
			return p.Text
		}
		return numbering.JoinHead(p.HeadString, p.Text)
	case document.ClassImage:
		refs := make([]string, len(p.Images))
		for i, ref := range p.Images {
			refs[i] = imageMarkup(ref)
		}
		return strings.Join(refs, "")
	default:
		return p.Text
	}
}

func imageMarkup(ref document.ImageRef) string {
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

func decorated(p *document.Paragraph, text string) string {
	return strings.Join(p.HeadDecorators, "") + text + strings.Join(p.TailDecorators, "")
}

// runContext is the per-paragraph rendering context of the runs: the
// size everything in the paragraph is measured against and whether the
// page letters are live fields.
type runContext struct {
	mult      float64
	pageField bool
}

func (dw *docWriter) runContext(p *document.Paragraph) runContext {
	rc := runContext{mult: 1}
	if p.Class == document.ClassSection && p.HeadDepth == 1 {
		rc.mult = 1.4
	}
	return rc
}

// writeP writes one w:p element, wrapping the runs in the comment
// anchors when the paragraph carries remarks.
func (dw *docWriter) writeP(p *document.Paragraph, pPr, runs string) {
	var sb strings.Builder
	sb.WriteString("<w:p>")
	sb.WriteString(pPr)
	for _, remark := range p.Remarks {
		id := strconv.Itoa(len(dw.comments))
		dw.comments = append(dw.comments, remark)
		sb.WriteString(`<w:commentRangeStart w:id="` + id + `"/>`)
	}
	sb.WriteString(runs)
	for i := range p.Remarks {
		id := strconv.Itoa(len(dw.comments) - len(p.Remarks) + i)
		sb.WriteString(`<w:commentRangeEnd w:id="` + id + `"/>` +
			`<w:r><w:commentReference w:id="` + id + `"/></w:r>`)
	}
	sb.WriteString("</w:p>\n")
	dw.body.WriteString(sb.String())
}

// pPr writes the paragraph properties: style, borders, spacing,
// indentation and justification, in schema order. extra slots in
// between the style and the spacing, for the rule borders.
func (dw *docWriter) pPr(p *document.Paragraph, extra string) string {
	var sb strings.Builder
	sb.WriteString("<w:pPr>")
	if p.Class == document.ClassPreformatted {
		sb.WriteString(`<w:pStyle w:val="makdo-g"/>`)
	}
	sb.WriteString(extra)
	sb.WriteString(dw.spacingXML(p))
	if jc := jcXML(p.Alignment); jc != "" {
		sb.WriteString(jc)
	}
	sb.WriteString("</w:pPr>")
	return sb.String()
}

func jcXML(a document.Align) string {
	switch a {
	case document.AlignLeft:
		return `<w:jc w:val="left"/>`
	case document.AlignCenter:
		return `<w:jc w:val="center"/>`
	case document.AlignRight:
		return `<w:jc w:val="right"/>`
	}
	return ""
}

func (dw *docWriter) spacingXML(p *document.Paragraph) string {
	var tw length.Twips
	if p.Class == document.ClassHorizontalLine && p.Rule != document.RuleTextbox {
		tw = ruleTwips(p.Lengths.Docx, dw.f)
	} else {
		var warns []string
		tw, warns = p.Lengths.Docx.ToTwips(dw.f.FontSize, dw.f.LineSpacing)
		for _, w := range warns {
			p.Warn(w)
		}
	}
	s := `<w:spacing w:before="` + twipAttr(tw.Before) +
		`" w:after="` + twipAttr(tw.After) +
		`" w:line="` + twipAttr(tw.Line) + `" w:lineRule="exact"/>`
	var ind []string
	if tw.FirstLine != 0 {
		ind = append(ind, `w:firstLine="`+twipAttr(tw.FirstLine)+`"`)
	}
	if tw.Hanging != 0 {
		ind = append(ind, `w:hanging="`+twipAttr(tw.Hanging)+`"`)
	}
	if tw.Left != 0 {
		ind = append(ind, `w:left="`+twipAttr(tw.Left)+`"`)
	}
	if tw.Right != 0 {
		ind = append(ind, `w:right="`+twipAttr(tw.Right)+`"`)
	}
	if len(ind) > 0 {
		s += "<w:ind " + strings.Join(ind, " ") + "/>"
	}
	return s
}

// ruleTwips re-hides the asymmetric line box around a border rule. A
// line spacing delta split itself evenly on decode, so it splits
// evenly again here.
func ruleTwips(l length.Lengths, f *document.Form) length.Twips {
	m := f.FontSize
	ls := f.LineSpacing
	sb, sa := l.SpaceBefore, l.SpaceAfter
	if l.LineSpacing != 0 {
		sb, sa = l.LineSpacing/2, l.LineSpacing/2
	}
	var tw length.Twips
	tw.Before = (sb*ls + (ls-1)*0.75 + 0.5) * m * 20
	tw.After = (sa*ls + (ls-1)*0.25 + 0.5) * m * 20
	tw.Line = ls * m * 20
	fi := l.FirstIndent * m * 20
	if fi >= 0 {
		tw.FirstLine = fi
	} else {
		tw.Hanging = -fi
	}
	tw.Left = l.LeftIndent * m * 20
	tw.Right = l.RightIndent * m * 20
	return tw
}

func twipAttr(x float64) string {
	return strconv.Itoa(int(math.Round(x)))
}

// ---------------------------------------------------------------------------
// runs

// runsXML splits the decorated text into spans and writes one run per
// span. Newlines become breaks, tabs become tab characters.
func (dw *docWriter) runsXML(p *document.Paragraph, text string, rc runContext) string {
	if text == "" {
		return ""
	}
	sc := decorator.NewScanner(decorator.Stack{})
	sc.PageField = rc.pageField
	sc.Feed(text)
	spans := sc.Finish()
	for _, w := range sc.Warnings() {
		p.Warn(w)
	}
	var sb strings.Builder
	for _, span := range spans {
		sb.WriteString(dw.spanXML(p, span, rc))
	}
	return sb.String()
}

func (dw *docWriter) spanXML(p *document.Paragraph, span decorator.Span, rc runContext) string {
	switch span.Kind {
	case decorator.SpanImage:
		return dw.imageRunXML(p, span, rc)
	case decorator.SpanPageNumber:
		return fieldRunsXML("PAGE")
	case decorator.SpanPageCount:
		return fieldRunsXML("NUMPAGES")
	case decorator.SpanFixedSpace:
		n, _ := strconv.Atoi(span.Text)
		if n < 1 {
			n = 1
		}
		return textRunXML(strings.Repeat(" ", n), dw.rPr(span.Style, rc), span.Style.Track)
	case decorator.SpanIVS:
		st := span.Style
		st.FontName = dw.f.IVSFont
		return textRunXML(span.Text, dw.rPr(st, rc), span.Style.Track)
	default:
		return textRunXML(span.Text, dw.rPr(span.Style, rc), span.Style.Track)
	}
}

// textRunXML writes one run, splitting the text on breaks and tabs.
// A deleted tracked run keeps its text in w:delText.
func textRunXML(text, rPr string, track decorator.Track) string {
	var sb strings.Builder
	sb.WriteString("<w:r>")
	sb.WriteString(rPr)
	tag := "w:t"
	if track == decorator.TrackDeleted {
		tag = "w:delText"
	}
	flushText := func(s string) {
		if s == "" {
			return
		}
		sb.WriteString("<" + tag + ` xml:space="preserve">` + escapeXML(s) + "</" + tag + ">")
	}
	rest := text
	for rest != "" {
		i := strings.IndexAny(rest, "\n\t")
		if i < 0 {
			flushText(rest)
			break
		}
		flushText(rest[:i])
		if rest[i] == '\n' {
			sb.WriteString("<w:br/>")
		} else {
			sb.WriteString("<w:tab/>")
		}
		rest = rest[i+1:]
	}
	sb.WriteString("</w:r>")
	return wrapTrack(sb.String(), track)
}

func wrapTrack(run string, track decorator.Track) string {
	stamp := time.Now().UTC().Format("2006-01-02T15:04:05Z")
	switch track {
	case decorator.TrackInserted:
		return `<w:ins w:id="0" w:author="unknown" w:date="` + stamp + `">` + run + "</w:ins>"
	case decorator.TrackDeleted:
		return `<w:del w:id="0" w:author="unknown" w:date="` + stamp + `">` + run + "</w:del>"
	}
	return run
}

// rPr writes the run properties that differ from the document style.
func (dw *docWriter) rPr(st decorator.Stack, rc runContext) string {
	f := dw.f
	var sb strings.Builder
	switch {
	case st.FontName != "":
		sb.WriteString(rFontsXML(st.FontName))
	case st.Gothic:
		sb.WriteString(rFontsXML(f.GothicFont))
	}
	if st.Bold {
		sb.WriteString("<w:b/>")
	}
	if st.Italic {
		sb.WriteString("<w:i/>")
	}
	if st.Strike {
		sb.WriteString("<w:strike/>")
	}
	if st.FontColor != "" {
		sb.WriteString(`<w:color w:val="` + st.FontColor + `"/>`)
	}
	if pct := st.Width.Percent(); pct != 100 {
		sb.WriteString(`<w:w w:val="` + strconv.Itoa(pct) + `"/>`)
	}
	size := f.FontSize * rc.mult * st.Scale.Ratio()
	if size != f.FontSize {
		sb.WriteString(`<w:sz w:val="` + sizeAttr(size*2) + `"/>`)
	}
	if st.Highlight != "" {
		sb.WriteString(`<w:highlight w:val="` + st.Highlight + `"/>`)
	}
	if st.Underline != "" {
		sb.WriteString(`<w:u w:val="` + st.Underline + `"/>`)
	}
	if st.Frame {
		sb.WriteString(`<w:bdr w:val="single" w:sz="4" w:space="0" w:color="auto"/>`)
	}
	if v := st.Script.Vert(); v != "" {
		sb.WriteString(`<w:vertAlign w:val="` + v + `"/>`)
	}
	if sb.Len() == 0 {
		return ""
	}
	return "<w:rPr>" + sb.String() + "</w:rPr>"
}

func rFontsXML(name string) string {
	n := escapeAttr(name)
	return `<w:rFonts w:ascii="` + n + `" w:hAnsi="` + n + `" w:eastAsia="` + n + `"/>`
}

func sizeAttr(v float64) string {
	return strconv.FormatFloat(roundN(v, 1), 'f', -1, 64)
}

func fieldRunsXML(instr string) string {
	return `<w:r><w:fldChar w:fldCharType="begin"/></w:r>` +
		`<w:r><w:instrText xml:space="preserve"> ` + instr + ` </w:instrText></w:r>` +
		`<w:r><w:fldChar w:fldCharType="separate"/></w:r>` +
		`<w:r><w:t>1</w:t></w:r>` +
		`<w:r><w:fldChar w:fldCharType="end"/></w:r>`
}

// ---------------------------------------------------------------------------
// images

// imageRunXML writes one inline drawing. Sizing follows the reference:
// an explicit size in centimeters, a negative value as that fraction
// of the text area, and no size at all as one character height scaled
// by the surrounding decoration.
func (dw *docWriter) imageRunXML(p *document.Paragraph, span decorator.Span, rc runContext) string {
	ref := document.ImageRef{Alt: span.Alt, Path: span.Path}
	if sm := decodeAltSize(span.Alt); sm != nil {
		ref.Alt, ref.WidthCm, ref.HeightCm = sm.alt, sm.w, sm.h
	}
	name, ok := dw.doc.Refs[ref.Path]
	if !ok {
		name = path.Base(ref.Path)
	}
	data, ok := dw.doc.Media[name]
	if !ok {
		p.Warn("※ 警告: 画像「" + name + "」が見付かりません")
		return ""
	}
	w, h := dw.imageSizeCm(ref, data, span.Style.Scale.Ratio()*rc.mult)
	cx, cy := cmToEMU(w), cmToEMU(h)

	rid, seen := dw.imageRel[name]
	if !seen {
		rid = dw.addRel(relTypeImage, "media/"+name)
		dw.imageRel[name] = rid
	}
	dw.drawingID++
	id := strconv.Itoa(dw.drawingID)
	n := escapeAttr(name)
	return `<w:r>` + dw.rPr(span.Style, rc) +
		`<w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">` +
		`<wp:extent cx="` + cx + `" cy="` + cy + `"/>` +
		`<wp:docPr id="` + id + `" name="` + n + `"/>` +
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">` +
		`<pic:pic>` +
		`<pic:nvPicPr><pic:cNvPr id="` + id + `" name="` + n + `"/><pic:cNvPicPr/></pic:nvPicPr>` +
		`<pic:blipFill><a:blip r:embed="` + rid + `"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>` +
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="` + cx + `" cy="` + cy + `"/></a:xfrm>` +
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>` +
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`
}

type altSize struct {
	alt  string
	w, h float64
}

func decodeAltSize(alt string) *altSize {
	i := strings.LastIndex(alt, ":")
	if i < 0 {
		return nil
	}
	spec := alt[i+1:]
	ws, hs, _ := strings.Cut(spec, "x")
	out := &altSize{alt: alt[:i]}
	var err error
	if ws != "" {
		if out.w, err = strconv.ParseFloat(ws, 64); err != nil {
			return nil
		}
	}
	if hs != "" {
		if out.h, err = strconv.ParseFloat(hs, 64); err != nil {
			return nil
		}
	}
	if ws == "" && hs == "" {
		return nil
	}
	return out
}

// imageSizeCm resolves the printed size of an image in centimeters.
func (dw *docWriter) imageSizeCm(ref document.ImageRef, data []byte, scale float64) (float64, float64) {
	f := dw.f
	textW := f.PaperWidth() - f.LeftMargin - f.RightMargin
	textH := f.PaperHeight() - f.TopMargin - f.BottomMargin

	natW, natH := naturalSizeCm(data)
	w, h := ref.WidthCm, ref.HeightCm
	if w < 0 {
		w = -w * textW
	}
	if h < 0 {
		h = -h * textH
	}
	switch {
	case w == 0 && h == 0:
		m := f.FontSize * 2.54 / 72 * scale
		w = m
		h = m
		if natW > 0 {
			h = m * natH / natW
		}
	case w == 0:
		w = h
		if natH > 0 {
			w = h * natW / natH
		}
	case h == 0:
		h = w
		if natW > 0 {
			h = w * natH / natW
		}
	}
	return w, h
}

// naturalSizeCm reads the pixel size of the image header and converts
// it at 96 dpi. Unknown formats report zero.
func naturalSizeCm(data []byte) (float64, float64) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return float64(cfg.Width) / 96 * 2.54, float64(cfg.Height) / 96 * 2.54
}

func cmToEMU(cm float64) string {
	return strconv.FormatInt(int64(math.Round(cm/2.54*72*emuPerPoint)), 10)
}

// ---------------------------------------------------------------------------
// special paragraph classes

func (dw *docWriter) renderMath(p *document.Paragraph) {
	inner := ""
	if p.Math != nil {
		if p.Math.Expr != nil {
			inner = renderOMML(p.Math.Expr)
		} else {
			inner = "<m:r><m:t>" + escapeXML(p.Math.Source) + "</m:t></m:r>"
		}
	}
	runs := "<m:oMathPara><m:oMath>" + inner + "</m:oMath></m:oMathPara>"
	dw.writeP(p, dw.pPr(p, ""), runs)
}

func (dw *docWriter) renderRule(p *document.Paragraph) {
	if p.Rule == document.RuleTextbox {
		runs := `<w:r><w:pict><v:rect style="width:0;height:1.5pt" o:hralign="center" o:hrstd="t" o:hr="t" stroked="f"/></w:pict></w:r>`
		dw.writeP(p, dw.pPr(p, ""), runs)
		return
	}
	side := "w:bottom"
	if p.Rule == document.RuleTop {
		side = "w:top"
	}
	border := `<w:pBdr><` + side + ` w:val="single" w:sz="6" w:space="1" w:color="auto"/></w:pBdr>`
	dw.writeP(p, dw.pPr(p, border), "")
}

func (dw *docWriter) renderPageBreak(p *document.Paragraph) {
	if p.PageBreak == document.BreakResetNumber {
		pPr := "<w:pPr>" + dw.sectPrXML(true) + "</w:pPr>"
		dw.writeP(p, pPr, "")
		return
	}
	dw.writeP(p, dw.pPr(p, ""), `<w:r><w:br w:type="page"/></w:r>`)
}

// renderFence writes a preformatted block as one gothic paragraph. The
// caption keeps its brackets on the first line so the round trip can
// peel it off again.
func (dw *docWriter) renderFence(p *document.Paragraph) {
	var text string
	if p.Fence != nil {
		text = p.Fence.Body
		if p.Fence.Caption != "" {
			text = "[" + p.Fence.Caption + "]" + "\n" + text
		}
	} else {
		text = p.Text
	}
	runs := textRunXML(text, "<w:rPr>"+rFontsXML(dw.f.GothicFont)+"</w:rPr>", decorator.TrackNone)
	dw.writeP(p, dw.pPr(p, ""), runs)
}

// ---------------------------------------------------------------------------
// tables

func (dw *docWriter) renderTable(p *document.Paragraph) {
	t := p.Table
	if t == nil || len(t.Rows) == 0 {
		return
	}
	f := dw.f
	sSize := f.FontSize * 0.8
	rc := runContext{mult: 0.8}

	cols := len(t.Columns)
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	widths := make([]float64, cols)
	auto := t.AutoWidths()
	for j := range widths {
		if j < len(t.Columns) && t.Columns[j].Width > 0 {
			widths[j] = t.Columns[j].Width
		} else if j < len(auto) {
			widths[j] = auto[j]
		}
	}
	colTwips := make([]float64, cols)
	for j, w := range widths {
		colTwips[j] = math.Round((w + 4) * sSize * 10)
	}

	tw, warns := p.Lengths.Docx.ToTwips(f.FontSize, f.LineSpacing)
	for _, w := range warns {
		p.Warn(w)
	}

	var sb strings.Builder
	sb.WriteString("<w:tbl>\n<w:tblPr>")
	if jc := jcXML(p.Alignment); jc != "" {
		sb.WriteString(jc)
	}
	if tw.Left != 0 {
		sb.WriteString(`<w:tblInd w:w="` + twipAttr(tw.Left) + `" w:type="dxa"/>`)
	}
	sb.WriteString(`<w:tblBorders>` +
		`<w:top w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:left w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:bottom w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:right w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:insideH w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:insideV w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`</w:tblBorders>`)
	sb.WriteString("</w:tblPr>\n<w:tblGrid>")
	for _, w := range colTwips {
		sb.WriteString(`<w:gridCol w:w="` + twipAttr(w) + `"/>`)
	}
	sb.WriteString("</w:tblGrid>\n")

	for i, row := range t.Rows {
		sb.WriteString(dw.rowXML(p, t, i, row, colTwips, rc))
	}
	sb.WriteString("</w:tbl>\n")
	dw.body.WriteString(sb.String())
}

func (dw *docWriter) rowXML(p *document.Paragraph, t *document.Table, i int, row []document.Cell, colTwips []float64, rc runContext) string {
	f := dw.f
	var spec document.RowSpec
	if i < len(t.Specs) {
		spec = t.Specs[i]
	}
	var sb strings.Builder
	sb.WriteString("<w:tr>")
	var trPr strings.Builder
	if spec.Height > 0 {
		v := spec.Height * f.FontSize * f.LineSpacing * 20
		trPr.WriteString(`<w:trHeight w:val="` + twipAttr(v) + `" w:hRule="exact"/>`)
	}
	if i < t.Header {
		trPr.WriteString("<w:tblHeader/>")
	}
	if trPr.Len() > 0 {
		sb.WriteString("<w:trPr>" + trPr.String() + "</w:trPr>")
	}
	for j := 0; j < len(row); j++ {
		c := row[j]
		if c.Covered {
			continue
		}
		span := 1
		width := colTwips[j]
		for k := j + 1; k < len(row) && row[k].Covered; k++ {
			span++
			width += colTwips[k]
		}
		sb.WriteString(dw.cellXML(p, t, i, j, c, span, width, spec, rc))
	}
	sb.WriteString("</w:tr>\n")
	return sb.String()
}

func (dw *docWriter) cellXML(p *document.Paragraph, t *document.Table, i, j int, c document.Cell, span int, width float64, spec document.RowSpec, rc runContext) string {
	var sb strings.Builder
	sb.WriteString("<w:tc><w:tcPr>")
	sb.WriteString(`<w:tcW w:w="` + twipAttr(width) + `" w:type="dxa"/>`)
	if span > 1 {
		sb.WriteString(`<w:gridSpan w:val="` + strconv.Itoa(span) + `"/>`)
	}
	switch {
	case c.VMerge:
		sb.WriteString("<w:vMerge/>")
	case i+1 < len(t.Rows) && j < len(t.Rows[i+1]) && t.Rows[i+1][j].VMerge:
		sb.WriteString(`<w:vMerge w:val="restart"/>`)
	}
	var borders strings.Builder
	if j < len(t.Columns) && t.Columns[j].Rule == document.RuleDouble {
		borders.WriteString(`<w:right w:val="double" w:sz="4" w:space="0" w:color="auto"/>`)
	}
	if spec.Rule == document.RuleDouble {
		borders.WriteString(`<w:bottom w:val="double" w:sz="4" w:space="0" w:color="auto"/>`)
	}
	if borders.Len() > 0 {
		sb.WriteString("<w:tcBorders>" + borders.String() + "</w:tcBorders>")
	}
	switch spec.VAlign {
	case document.VTop:
		sb.WriteString(`<w:vAlign w:val="top"/>`)
	case document.VBottom:
		sb.WriteString(`<w:vAlign w:val="bottom"/>`)
	default:
		sb.WriteString(`<w:vAlign w:val="center"/>`)
	}
	sb.WriteString("</w:tcPr>")

	align := c.Align
	if align == document.AlignNone && j < len(t.Columns) {
		align = t.Columns[j].Align
	}
	pPr := ""
	if jc := jcXML(align); jc != "" {
		pPr = "<w:pPr>" + jc + "</w:pPr>"
	}
	lines := strings.Split(c.Text, "\n")
	for _, ln := range lines {
		sb.WriteString("<w:p>" + pPr + dw.runsXML(p, ln, rc) + "</w:p>")
	}
	sb.WriteString("</w:tc>")
	return sb.String()
}

// ---------------------------------------------------------------------------
// section properties

func (dw *docWriter) sectPrXML(restart bool) string {
	f := dw.f
	var sb strings.Builder
	sb.WriteString("<w:sectPr>")
	if !restart {
		if dw.headerRel != "" {
			sb.WriteString(`<w:headerReference w:type="default" r:id="` + dw.headerRel + `"/>`)
		}
		if dw.footerRel != "" {
			sb.WriteString(`<w:footerReference w:type="default" r:id="` + dw.footerRel + `"/>`)
		}
	}
	sb.WriteString(`<w:pgSz w:w="` + twipAttr(f.PaperWidth()*twipsPerCm) +
		`" w:h="` + twipAttr(f.PaperHeight()*twipsPerCm) + `"/>`)
	sb.WriteString(`<w:pgMar w:top="` + twipAttr(f.TopMargin*twipsPerCm) +
		`" w:bottom="` + twipAttr(f.BottomMargin*twipsPerCm) +
		`" w:left="` + twipAttr(f.LeftMargin*twipsPerCm) +
		`" w:right="` + twipAttr(f.RightMargin*twipsPerCm) +
		`" w:header="851" w:footer="992" w:gutter="0"/>`)
	if restart {
		sb.WriteString(`<w:pgNumType w:start="1"/>`)
	}
	if f.LineNumber {
		sb.WriteString(`<w:lnNumType w:countBy="5" w:restart="newPage"/>`)
	}
	sb.WriteString(`<w:cols w:space="425"/>`)
	sb.WriteString("</w:sectPr>")
	return sb.String()
}

// ---------------------------------------------------------------------------
// running parts

// runningXML writes a header or footer part. The alignment colons of
// the configured text pick the justification, and the page letters
// become live fields.
func (dw *docWriter) runningXML(root, text string) string {
	align := document.AlignNone
	switch {
	case strings.HasPrefix(text, ":") && strings.HasSuffix(text, ":") && len(text) > 1:
		align = document.AlignCenter
		text = strings.TrimSpace(text[1 : len(text)-1])
	case strings.HasSuffix(text, ":"):
		align = document.AlignRight
		text = strings.TrimSpace(text[:len(text)-1])
	case strings.HasPrefix(text, ":"):
		align = document.AlignLeft
		text = strings.TrimSpace(text[1:])
	}
	var p document.Paragraph
	runs := dw.runsXML(&p, text, runContext{mult: 1, pageField: true})
	var sb strings.Builder
	sb.WriteString(xmlDecl)
	sb.WriteString("<" + root + documentNS + ">\n<w:p>")
	if jc := jcXML(align); jc != "" {
		sb.WriteString("<w:pPr>" + jc + "</w:pPr>")
	}
	sb.WriteString(runs)
	sb.WriteString("</w:p>\n</" + root + ">\n")
	return sb.String()
}

// ---------------------------------------------------------------------------
// fixed parts

func (dw *docWriter) coreXML() string {
	f := dw.f
	now := time.Now().UTC().Format("2006-01-02T15:04:05Z")
	created := f.CreatedTime
	if created == "" {
		created = now
	}
	var sb strings.Builder
	sb.WriteString(xmlDecl)
	sb.WriteString(`<cp:coreProperties` +
		` xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
		` xmlns:dc="http://purl.org/dc/elements/1.1/"` +
		` xmlns:dcterms="http://purl.org/dc/terms/"` +
		` xmlns:dcmitype="http://purl.org/dc/dcmitype/"` +
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` + "\n")
	sb.WriteString("<dc:title>" + escapeXML(f.DocumentTitle) + "</dc:title>\n")
	if cat := f.Category(); cat != "" {
		sb.WriteString("<cp:category>" + escapeXML(cat) + "</cp:category>\n")
	}
	if f.Version != "" {
		sb.WriteString("<cp:version>" + escapeXML(f.Version) + "</cp:version>\n")
	}
	if f.ContentStatus != "" {
		sb.WriteString("<cp:contentStatus>" + escapeXML(f.ContentStatus) + "</cp:contentStatus>\n")
	}
	sb.WriteString(`<dcterms:created xsi:type="dcterms:W3CDTF">` + created + "</dcterms:created>\n")
	sb.WriteString(`<dcterms:modified xsi:type="dcterms:W3CDTF">` + now + "</dcterms:modified>\n")
	sb.WriteString("</cp:coreProperties>\n")
	return sb.String()
}

func (dw *docWriter) settingsXML() string {
	id := strings.ToUpper(uuid.NewString())
	return xmlDecl +
		`<w:settings xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
		` xmlns:w15="http://schemas.microsoft.com/office/word/2012/wordml">` + "\n" +
		`<w:zoom w:percent="100"/>` + "\n" +
		`<w:defaultTabStop w:val="840"/>` + "\n" +
		`<w:characterSpacingControl w:val="doNotCompress"/>` + "\n" +
		`<w15:docId w15:val="{` + id + `}"/>` + "\n" +
		`</w:settings>` + "\n"
}

// stylesXML writes the style sheet the configuration round-trips
// through: the base style with the document font and the exact line
// box, the gothic and ivs variants, and one spacing style per section
// depth.
func (dw *docWriter) stylesXML() string {
	f := dw.f
	size := f.FontSize
	lnsp := f.LineSpacing
	line := twipAttr(lnsp * size * 20)
	sz := sizeAttr(size * 2)

	autoSpace := ""
	if !f.AutoSpace {
		autoSpace = `<w:autoSpaceDE w:val="0"/><w:autoSpaceDN w:val="0"/>`
	}
	var sb strings.Builder
	sb.WriteString(xmlDecl)
	sb.WriteString(`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` + "\n")
	sb.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="makdo">` +
		`<w:name w:val="makdo"/>` +
		`<w:pPr><w:spacing w:line="` + line + `" w:lineRule="exact"/>` + autoSpace + `</w:pPr>` +
		`<w:rPr>` + rFontsXML(f.MinchoFont) +
		`<w:kern w:val="0"/><w:sz w:val="` + sz + `"/></w:rPr>` +
		`</w:style>` + "\n")
	sb.WriteString(`<w:style w:type="paragraph" w:styleId="makdo-g">` +
		`<w:name w:val="makdo-g"/><w:basedOn w:val="makdo"/>` +
		`<w:rPr>` + rFontsXML(f.GothicFont) + `</w:rPr>` +
		`</w:style>` + "\n")
	sb.WriteString(`<w:style w:type="paragraph" w:styleId="makdo-i">` +
		`<w:name w:val="makdo-i"/><w:basedOn w:val="makdo"/>` +
		`<w:rPr>` + rFontsXML(f.IVSFont) + `</w:rPr>` +
		`</w:style>` + "\n")
	sbSlots := parseSlots(f.SpaceBefore)
	saSlots := parseSlots(f.SpaceAfter)
	for n := 1; n <= 6; n++ {
		before := twipAttr(sbSlots[n-1] * 20 * size * lnsp)
		after := twipAttr(saSlots[n-1] * 20 * size * lnsp)
		sb.WriteString(`<w:style w:type="paragraph" w:styleId="makdo-` + strconv.Itoa(n) + `">` +
			`<w:name w:val="makdo-` + strconv.Itoa(n) + `"/><w:basedOn w:val="makdo"/>` +
			`<w:pPr><w:spacing w:before="` + before + `" w:after="` + after + `"/></w:pPr>` +
			`</w:style>` + "\n")
	}
	sb.WriteString(`</w:styles>` + "\n")
	return sb.String()
}

func parseSlots(csv string) [6]float64 {
	var out [6]float64
	for i, part := range strings.Split(csv, ",") {
		if i >= len(out) {
			break
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(part), 64); err == nil {
			out[i] = v
		}
	}
	return out
}

func (dw *docWriter) commentsXML() string {
	now := time.Now().UTC().Format("2006-01-02T15:04:05Z")
	var sb strings.Builder
	sb.WriteString(xmlDecl)
	sb.WriteString(`<w:comments xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` + "\n")
	for i, text := range dw.comments {
		sb.WriteString(`<w:comment w:id="` + strconv.Itoa(i) + `" w:author="" w:date="` + now + `">`)
		for _, ln := range strings.Split(text, "\n") {
			sb.WriteString("<w:p><w:r><w:t xml:space=\"preserve\">" + escapeXML(ln) + "</w:t></w:r></w:p>")
		}
		sb.WriteString("</w:comment>\n")
	}
	sb.WriteString("</w:comments>\n")
	return sb.String()
}

func (dw *docWriter) docRelsXML() string {
	var sb strings.Builder
	sb.WriteString(xmlDecl)
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + "\n")
	for _, rel := range dw.rels {
		sb.WriteString(fmt.Sprintf(`<Relationship Id="%s" Type="%s" Target="%s"/>`+"\n",
			rel.ID, rel.Type, escapeAttr(rel.Target)))
	}
	sb.WriteString("</Relationships>\n")
	return sb.String()
}

func (dw *docWriter) contentTypesXML() string {
	f := dw.f
	var sb strings.Builder
	sb.WriteString(xmlDecl)
	sb.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` + "\n")
	sb.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` + "\n")
	sb.WriteString(`<Default Extension="xml" ContentType="application/xml"/>` + "\n")
	exts := map[string]bool{}
	for name := range dw.doc.Media {
		ext := strings.TrimPrefix(path.Ext(name), ".")
		if ext == "" || exts[ext] {
			continue
		}
		exts[ext] = true
	}
	ordered := make([]string, 0, len(exts))
	for ext := range exts {
		ordered = append(ordered, ext)
	}
	sort.Strings(ordered)
	for _, ext := range ordered {
		ct, ok := mediaContentTypes[ext]
		if !ok {
			ct = "application/octet-stream"
		}
		sb.WriteString(`<Default Extension="` + ext + `" ContentType="` + ct + `"/>` + "\n")
	}
	overrides := []struct{ part, ct string }{
		{partDocument, "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"},
		{partStyles, "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"},
		{partSettings, "application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml"},
		{partCore, "application/vnd.openxmlformats-package.core-properties+xml"},
		{partApp, "application/vnd.openxmlformats-officedocument.extended-properties+xml"},
	}
	if len(dw.comments) > 0 {
		overrides = append(overrides, struct{ part, ct string }{
			partComments, "application/vnd.openxmlformats-officedocument.wordprocessingml.comments+xml"})
	}
	if f.HeaderString != "" {
		overrides = append(overrides, struct{ part, ct string }{
			"word/header1.xml", "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"})
	}
	if f.PageNumber != "" {
		overrides = append(overrides, struct{ part, ct string }{
			"word/footer1.xml", "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"})
	}
	for _, o := range overrides {
		sb.WriteString(`<Override PartName="/` + o.part + `" ContentType="` + o.ct + `"/>` + "\n")
	}
	sb.WriteString("</Types>\n")
	return sb.String()
}
