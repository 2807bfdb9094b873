package document

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/unicode/norm"
)

// Default layout values. Margins are centimeters, the font size is
// points, and the line spacing is a multiple of the font height.
const (
	DefaultDocumentStyle = "n"
	DefaultPaperSize     = "A4"
	DefaultTopMargin     = 3.5
	DefaultBottomMargin  = 2.2
	DefaultLeftMargin    = 3.0
	DefaultRightMargin   = 2.0
	DefaultPageNumber    = ": n :"
	DefaultMinchoFont    = "ＭＳ 明朝"
	DefaultGothicFont    = "ＭＳ ゴシック"
	DefaultIVSFont       = "IPAmj明朝"
	DefaultFontSize      = 12.0
	DefaultLineSpacing   = 2.14
)

// Tables get extra room before and after, in line heights.
const (
	TableSpaceBefore = 0.45
	TableSpaceAfter  = 0.2
)

// Page dimensions in centimeters. The bare sizes keep their customary
// orientation; the L and P suffixes force landscape and portrait.
var (
	paperWidth = map[string]float64{
		"A3": 42.0, "A3L": 42.0, "A3P": 29.7,
		"A4": 21.0, "A4L": 29.7, "A4P": 21.0,
	}
	paperHeight = map[string]float64{
		"A3": 29.7, "A3L": 29.7, "A3P": 42.0,
		"A4": 29.7, "A4L": 21.0, "A4P": 29.7,
	}
)

// Form is the per-document configuration: page geometry, fonts, and
// the handful of metadata fields carried through the package
// properties. It is populated once at the start of a run, from the
// configuration comment block on the markdown side or from sectPr,
// styles.xml and core.xml on the docx side.
type Form struct {
	DocumentTitle string  `toml:"document_title"`
	DocumentStyle string  `toml:"document_style"`
	PaperSize     string  `toml:"paper_size"`
	TopMargin     float64 `toml:"top_margin"`
	BottomMargin  float64 `toml:"bottom_margin"`
	LeftMargin    float64 `toml:"left_margin"`
	RightMargin   float64 `toml:"right_margin"`
	HeaderString  string  `toml:"header_string"`

	// PageNumber is the footer text. An unescaped "n" in it becomes
	// the page-number field and "N" the page count; empty suppresses
	// the footer entirely.
	PageNumber string `toml:"page_number"`

	LineNumber  bool    `toml:"line_number"`
	MinchoFont  string  `toml:"mincho_font"`
	GothicFont  string  `toml:"gothic_font"`
	IVSFont     string  `toml:"ivs_font"`
	FontSize    float64 `toml:"font_size"`
	LineSpacing float64 `toml:"line_spacing"`

	// SpaceBefore and SpaceAfter are comma separated multipliers of
	// the line height, one slot per section depth. They stay strings
	// so that empty slots survive a round trip.
	SpaceBefore string `toml:"space_before"`
	SpaceAfter  string `toml:"space_after"`

	AutoSpace    bool   `toml:"auto_space"`
	OriginalFile string `toml:"original_file"`

	// Metadata carried through core.xml only.
	Version       string `toml:"-"`
	ContentStatus string `toml:"-"`
	CreatedTime   string `toml:"-"`

	warnings []string
}

// NewForm returns a form populated with the default layout.
func NewForm() *Form {
	return &Form{
		DocumentStyle: DefaultDocumentStyle,
		PaperSize:     DefaultPaperSize,
		TopMargin:     DefaultTopMargin,
		BottomMargin:  DefaultBottomMargin,
		LeftMargin:    DefaultLeftMargin,
		RightMargin:   DefaultRightMargin,
		PageNumber:    DefaultPageNumber,
		MinchoFont:    DefaultMinchoFont,
		GothicFont:    DefaultGothicFont,
		IVSFont:       DefaultIVSFont,
		FontSize:      DefaultFontSize,
		LineSpacing:   DefaultLineSpacing,
	}
}

// Warn records a configuration warning once.
func (f *Form) Warn(msg string) {
	for _, w := range f.warnings {
		if w == msg {
			return
		}
	}
	f.warnings = append(f.warnings, msg)
}

// Warnings returns the configuration warnings in the order they were
// raised.
func (f *Form) Warnings() []string {
	return f.warnings
}

var (
	formKeyRe     = regexp.MustCompile(`^[\s　]*([^:：]+)[:：][\s　]*(.*)$`)
	formCommentRe = regexp.MustCompile(`^[\s　]*#`)
	marginKeyRe   = regexp.MustCompile(`^(?:top|bottom|left|right)_margin$|^[上下左右]余白$`)
	spaceKeyRe    = regexp.MustCompile(`^space_(?:before|after)$|^[前後]余白$`)
	cmSuffixRe    = regexp.MustCompile(`[\s　]*cm$`)
	ptSuffixRe    = regexp.MustCompile(`[\s　]*pt$`)
	baiSuffixRe   = regexp.MustCompile(`[\s　]*倍$`)
	numberOnlyRe  = regexp.MustCompile(`^` + numberPat + `$`)
	number6Re     = regexp.MustCompile(`^(?:` + numberPat + `?,){0,5}` + numberPat + `?,?$`)
)

// formKeyNames lists every recognized configuration key, both
// spellings, for the unknown-key suggestion.
var formKeyNames = []string{
	"document_title", "書題名", "document_style", "文書式",
	"paper_size", "用紙サ", "top_margin", "上余白",
	"bottom_margin", "下余白", "left_margin", "左余白",
	"right_margin", "右余白", "header_string", "頭書き",
	"page_number", "頁番号", "line_number", "行番号",
	"mincho_font", "明朝体", "gothic_font", "ゴシ体",
	"ivs_font", "異字体", "font_size", "文字サ",
	"line_spacing", "行間高", "space_before", "前余白",
	"space_after", "後余白", "auto_space", "字間整",
	"original_file", "元原稿",
}

// ApplyComment consumes one line of the configuration comment block.
// Lines opening with "#" are explanatory and skipped; anything else
// that does not look like a key/value pair is ignored.
func (f *Form) ApplyComment(com string) {
	if formCommentRe.MatchString(com) {
		return
	}
	m := formKeyRe.FindStringSubmatch(com)
	if m == nil {
		return
	}
	nam := strings.TrimRightFunc(m[1], unicode.IsSpace)
	val := strings.TrimRightFunc(m[2], unicode.IsSpace)
	f.SetKey(nam, val)
}

// SetKey applies one configuration pair. Full-width digits and units
// are accepted everywhere a number is expected. Unknown names and
// malformed values raise warnings rather than errors so that a damaged
// configuration block never aborts a conversion.
func (f *Form) SetKey(nam, val string) {
	switch {
	case nam == "document_title" || nam == "書題名":
		f.DocumentTitle = val
	case nam == "document_style" || nam == "文書式":
		switch val {
		case "n", "普通", "-":
			f.DocumentStyle = "n"
		case "k", "契約":
			f.DocumentStyle = "k"
		case "j", "条文":
			f.DocumentStyle = "j"
		default:
			f.Warn("※ 警告: 「" + nam + "」の値は\"普通\"、\"契約\"又は\"条文\"でなければなりません")
		}
	case nam == "paper_size" || nam == "用紙サ":
		switch norm.NFKC.String(val) {
		case "A3":
			f.PaperSize = "A3"
		case "A3L", "A3横":
			f.PaperSize = "A3L"
		case "A3P", "A3縦":
			f.PaperSize = "A3P"
		case "A4":
			f.PaperSize = "A4"
		case "A4L", "A4横":
			f.PaperSize = "A4L"
		case "A4P", "A4縦":
			f.PaperSize = "A4P"
		default:
			f.Warn("※ 警告: 「" + nam + "」の値は\"A3横\"、\"A3縦\"、\"A4横\"又は\"A4縦\"でなければなりません")
		}
	case marginKeyRe.MatchString(nam):
		v := cmSuffixRe.ReplaceAllString(norm.NFKC.String(val), "")
		if !numberOnlyRe.MatchString(v) {
			f.Warn("※ 警告: 「" + nam + "」の値は整数又は小数でなければなりません")
			return
		}
		switch nam {
		case "top_margin", "上余白":
			f.TopMargin = parseFloat(v)
		case "bottom_margin", "下余白":
			f.BottomMargin = parseFloat(v)
		case "left_margin", "左余白":
			f.LeftMargin = parseFloat(v)
		case "right_margin", "右余白":
			f.RightMargin = parseFloat(v)
		}
	case nam == "header_string" || nam == "頭書き":
		f.HeaderString = val
	case nam == "page_number" || nam == "頁番号":
		v := norm.NFKC.String(val)
		switch v {
		case "True", "有":
			f.PageNumber = DefaultPageNumber
		case "False", "無", "-":
			f.PageNumber = ""
		default:
			f.PageNumber = v
		}
	case nam == "line_number" || nam == "行番号":
		switch norm.NFKC.String(val) {
		case "True", "有":
			f.LineNumber = true
		case "False", "無":
			f.LineNumber = false
		default:
			f.Warn("※ 警告: 「" + nam + "」の値は\"有\"又は\"無\"でなければなりません")
		}
	case nam == "mincho_font" || nam == "明朝体":
		f.MinchoFont = val
	case nam == "gothic_font" || nam == "ゴシ体":
		f.GothicFont = val
	case nam == "ivs_font" || nam == "異字体":
		f.IVSFont = val
	case nam == "font_size" || nam == "文字サ":
		v := ptSuffixRe.ReplaceAllString(norm.NFKC.String(val), "")
		if !numberOnlyRe.MatchString(v) {
			f.Warn("※ 警告: 「" + nam + "」の値は整数又は小数でなければなりません")
			return
		}
		f.FontSize = parseFloat(v)
	case nam == "line_spacing" || nam == "行間高":
		v := baiSuffixRe.ReplaceAllString(norm.NFKC.String(val), "")
		if !numberOnlyRe.MatchString(v) {
			f.Warn("※ 警告: 「" + nam + "」の値は整数又は小数でなければなりません")
			return
		}
		f.LineSpacing = parseFloat(v)
	case spaceKeyRe.MatchString(nam):
		v := norm.NFKC.String(val)
		v = strings.ReplaceAll(v, "、", ",")
		v = strings.ReplaceAll(v, "倍", "")
		v = strings.ReplaceAll(v, " ", "")
		if !number6Re.MatchString(v) {
			f.Warn("※ 警告: 「" + nam + "」の値は整数又は小数をカンマで区切って並べたものでなければなりません")
			return
		}
		if nam == "space_before" || nam == "前余白" {
			f.SpaceBefore = v
		} else {
			f.SpaceAfter = v
		}
	case nam == "auto_space" || nam == "字間整":
		switch norm.NFKC.String(val) {
		case "True", "有":
			f.AutoSpace = true
		case "False", "無":
			f.AutoSpace = false
		default:
			f.Warn("※ 警告: 「" + nam + "」の値は\"有\"又は\"無\"でなければなりません")
		}
	case nam == "original_file" || nam == "元原稿":
		f.OriginalFile = val
	default:
		msg := "※ 警告: 「" + nam + "」という設定項目は存在しません"
		if ranks := fuzzy.RankFindNormalizedFold(nam, formKeyNames); len(ranks) > 0 {
			sort.Sort(ranks)
			msg += "（もしかして: 「" + ranks[0].Target + "」）"
		}
		f.Warn(msg)
	}
}

var (
	articleOneRe  = regexp.MustCompile(`^第[1１]+条[\s　]`)
	numberedOneRe = regexp.MustCompile(`^[1１][\s　]`)
)

// DetectStyle infers the document style from decoded paragraph texts.
// A document whose articles open with 第1条 is a statute; when bare
// numbered paragraphs appear alongside the articles it is a contract.
func (f *Form) DetectStyle(texts []string) {
	hasArticle := false
	hasNumbered := false
	for _, t := range texts {
		if articleOneRe.MatchString(t) {
			hasArticle = true
		}
		if numberedOneRe.MatchString(t) {
			hasNumbered = true
		}
	}
	if hasArticle {
		if hasNumbered {
			f.DocumentStyle = "k"
		} else {
			f.DocumentStyle = "j"
		}
	}
}

// Category renders the document style for the package properties.
func (f *Form) Category() string {
	switch f.DocumentStyle {
	case "k":
		return "（契約）"
	case "j":
		return "（条文）"
	default:
		return "（普通）"
	}
}

// SetCategory restores the document style from a category string.
func (f *Form) SetCategory(s string) {
	switch {
	case strings.Contains(s, "（普通）"):
		f.DocumentStyle = "n"
	case strings.Contains(s, "（契約）"):
		f.DocumentStyle = "k"
	case strings.Contains(s, "（条文）"):
		f.DocumentStyle = "j"
	}
}

// PaperWidth returns the page width in centimeters.
func (f *Form) PaperWidth() float64 {
	if w, ok := paperWidth[f.PaperSize]; ok {
		return w
	}
	return paperWidth[DefaultPaperSize]
}

// PaperHeight returns the page height in centimeters.
func (f *Form) PaperHeight() float64 {
	if h, ok := paperHeight[f.PaperSize]; ok {
		return h
	}
	return paperHeight[DefaultPaperSize]
}

// CommentBlock renders the editable configuration block that opens a
// converted markdown file. Every key is written under an explanatory
// comment line so the output can be adjusted without a manual.
func (f *Form) CommentBlock() string {
	var b strings.Builder
	b.WriteString("<!--------------------------【設定】-----------------------------\n\n")
	put := func(explainer string, lines ...string) {
		b.WriteString(explainer)
		b.WriteString("\n")
		for _, ln := range lines {
			b.WriteString(ln)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	put("# プロパティに表示される書面のタイトルを指定ください。",
		"書題名: "+f.DocumentTitle)

	style := "文書式: 普通"
	switch f.DocumentStyle {
	case "k":
		style = "文書式: 契約"
	case "j":
		style = "文書式: 条文"
	}
	put("# 3つの書式（普通、契約、条文）を指定できます。", style)

	paper := "用紙サ: A4縦"
	switch f.PaperSize {
	case "A3", "A3L":
		paper = "用紙サ: A3横"
	case "A3P":
		paper = "用紙サ: A3縦"
	case "A4L":
		paper = "用紙サ: A4横"
	}
	put("# 用紙のサイズ（A3横、A3縦、A4横、A4縦）を指定できます。", paper)

	put("# 用紙の上下左右の余白をセンチメートル単位で指定できます。",
		"上余白: "+formatNumber(f.TopMargin, 1)+" cm",
		"下余白: "+formatNumber(f.BottomMargin, 1)+" cm",
		"左余白: "+formatNumber(f.LeftMargin, 1)+" cm",
		"右余白: "+formatNumber(f.RightMargin, 1)+" cm")

	put("# ページのヘッダーに表示する文字列（別紙 :等）を指定できます。",
		"頭書き: "+f.HeaderString)

	page := "頁番号: " + f.PageNumber
	switch f.PageNumber {
	case "":
		page = "頁番号: 無"
	case DefaultPageNumber:
		page = "頁番号: 有"
	}
	put("# ページ番号の書式（無、有、n :、-n-、n/N等）を指定できます。", page)

	line := "行番号: 無"
	if f.LineNumber {
		line = "行番号: 有"
	}
	put("# 行番号の記載（無、有）を指定できます。", line)

	put("# 明朝体とゴシック体と異字体（IVS）のフォントを指定できます。",
		"明朝体: "+f.MinchoFont,
		"ゴシ体: "+f.GothicFont,
		"異字体: "+f.IVSFont)

	put("# 基本の文字の大きさをポイント単位で指定できます。",
		"文字サ: "+formatNumber(f.FontSize, 1)+" pt")

	put("# 行間の高さを基本の文字の高さの何倍にするかを指定できます。",
		"行間高: "+formatNumber(f.LineSpacing, 2)+" 倍")

	put("# セクションタイトル前後の余白を行間の高さの倍数で指定できます。",
		"前余白: "+strings.ReplaceAll(f.SpaceBefore, ",", " 倍,")+" 倍",
		"後余白: "+strings.ReplaceAll(f.SpaceAfter, ",", " 倍,")+" 倍")

	auto := "字間整: 無"
	if f.AutoSpace {
		auto = "字間整: 有"
	}
	put("# 半角文字と全角文字の間の間隔調整（無、有）を指定できます。", auto)

	put("# 変換元のWordファイルの最終更新日時が自動で指定されます。",
		"元原稿: "+f.OriginalFile)

	b.WriteString("---------------------------------------------------------------->\n\n")
	return b.String()
}

func roundTo(x float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(x*p) / p
}

// formatNumber renders a value the way the configuration block writes
// numbers, always keeping one decimal ("3" becomes "3.0").
func formatNumber(x float64, digits int) string {
	s := strconv.FormatFloat(roundTo(x, digits), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
