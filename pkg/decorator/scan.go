package decorator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SpanKind tells what a scanned span holds.
type SpanKind int

const (
	SpanText       SpanKind = iota
	SpanImage               // ![alt](path)
	SpanIVS                 // base character plus variation selector
	SpanPageNumber          // page field "n", footers only
	SpanPageCount           // page field "N", footers only
	SpanFixedSpace          // <N>, Text holds the half-width unit count
)

// Span is a stretch of paragraph content under a single decoration stack.
type Span struct {
	Kind  SpanKind
	Text  string // unescaped text, or base character plus selector for SpanIVS
	Alt   string // SpanImage only, may carry a ":WxH" size suffix
	Path  string
	Style Stack
}

var imageTailRe = regexp.MustCompile(`^! *\[([^\[\]]*)\] *\(([^()]+)\)$`)

// Scanner splits markup text into styled spans. Decoration tokens toggle
// the current stack; each toggle closes the text accumulated so far into a
// span carrying the stack as it was before the toggle. Attributes still
// open when Finish is called are closed implicitly with a warning.
type Scanner struct {
	// PageField makes bare "n" and "N" characters scan as page number
	// fields. Only footers and headers want this.
	PageField bool

	base     Stack
	style    Stack
	tex      []rune
	spans    []Span
	warnings []string
}

// NewScanner returns a scanner starting from the given decoration stack.
func NewScanner(base Stack) *Scanner {
	return &Scanner{base: base, style: base}
}

// Split scans one complete text with the given starting stack.
func Split(text string, base Stack) ([]Span, []string) {
	sc := NewScanner(base)
	sc.Feed(text)
	spans := sc.Finish()
	return spans, sc.Warnings()
}

// Style returns the decoration stack at the current scan position.
func (sc *Scanner) Style() Stack {
	return sc.style
}

// Warnings returns the warnings collected so far.
func (sc *Scanner) Warnings() []string {
	return sc.warnings
}

// Feed scans a chunk of text. Explicit "<br>" breaks become newlines and
// relax symbols are removed before scanning. Tokens that are complete in
// themselves fire as soon as their last rune arrives; tokens that are
// prefixes of longer ones wait one rune to see that they do not extend.
func (sc *Scanner) Feed(text string) {
	text = normalizeBreaks(text)
	text = removeRelax(text)
	for _, c := range text {
		sc.tex = append(sc.tex, c)
		if sc.scanAtoms() {
			continue
		}
		sc.pairPending()
		sc.scanTrailers()
	}
}

// Finish flushes the remaining text, implicitly closes any decoration left
// open, and returns the collected spans.
func (sc *Scanner) Finish() []Span {
	sc.pairFinal()
	sc.flush(0)
	if sc.style != sc.base {
		for _, tok := range diffTokens(sc.style, sc.base) {
			sc.warnings = append(sc.warnings,
				fmt.Sprintf("警告: 装飾記号「%s」が閉じられていません", tok))
		}
		sc.style = sc.base
	}
	return sc.spans
}

// flush closes the accumulated text, minus the trailing token of drop
// runes, into a span under the current style.
func (sc *Scanner) flush(drop int) {
	body := string(sc.tex[:len(sc.tex)-drop])
	sc.tex = sc.tex[:0]
	if body == "" {
		return
	}
	sc.spans = append(sc.spans, Span{Kind: SpanText, Text: Unescape(body), Style: sc.style})
}

func (sc *Scanner) emit(kind SpanKind, span Span) {
	span.Kind = kind
	span.Style = sc.style
	sc.spans = append(sc.spans, span)
}

// scanAtoms checks the buffered text, now ending at the rune just added,
// against every token that is complete in itself. It reports whether a
// token fired.
func (sc *Scanner) scanAtoms() bool {
	switch {
	case sc.tailToken("***"):
		sc.flush(3)
		sc.style.Italic = !sc.style.Italic
		sc.style.Bold = !sc.style.Bold
	case sc.tailToken("~~"):
		sc.flush(2)
		sc.style.Strike = !sc.style.Strike
	case sc.tailToken("//") && !sc.urlTail():
		sc.flush(2)
		sc.style.Italic = !sc.style.Italic
	case sc.tailToken("---"):
		sc.flush(3)
		sc.toggleScale(ScaleXSmall)
	case sc.tailToken("+++"):
		sc.flush(3)
		sc.toggleScale(ScaleXLarge)
	case sc.tailToken(">>>"):
		sc.flush(3)
		sc.toggleWidth(WidthXNarrow)
	case sc.tailToken("<<<"):
		sc.flush(3)
		sc.toggleWidth(WidthXWide)
	case !sc.style.Frame && sc.tailToken("[|"):
		sc.flush(2)
		sc.style.Frame = true
	case sc.style.Frame && sc.tailToken("|]"):
		sc.flush(2)
		sc.style.Frame = false
	case sc.tryUnderline():
	case sc.tryColor():
	case sc.tryHighlight():
	case sc.tailToken("^{"):
		sc.flush(2)
		sc.style.Script = ScriptSup
	case sc.tailToken("_{"):
		sc.flush(2)
		sc.style.Script = ScriptSub
	case sc.style.Script == ScriptSup && sc.tailToken("}^"):
		sc.flush(2)
		sc.style.Script = ScriptNone
	case sc.style.Script == ScriptSub && sc.tailToken("}_"):
		sc.flush(2)
		sc.style.Script = ScriptNone
	case sc.tailToken("+>") && !sc.runeBefore(2, '+'):
		sc.flush(2)
		sc.style.Track = TrackInserted
	case sc.style.Track == TrackInserted && sc.tailToken("<+") && !sc.runeBefore(2, '<'):
		sc.flush(2)
		sc.style.Track = TrackNone
	case sc.tailToken("->") && !sc.runeBefore(2, '-'):
		sc.flush(2)
		sc.style.Track = TrackDeleted
	case sc.style.Track == TrackDeleted && sc.tailToken("<-") && !sc.runeBefore(2, '<'):
		sc.flush(2)
		sc.style.Track = TrackNone
	case sc.tailRune('>') && sc.tryFixedSpace():
	case sc.tailRune(')') && sc.tryImage():
	case sc.tryFont():
	case sc.tailRune(';') && sc.tryIVS():
	default:
		return false
	}
	return true
}

// pairPending handles the tokens that are prefixes of longer tokens. They
// sit one rune back in the buffer and fire only once the rune after them
// shows they do not extend.
func (sc *Scanner) pairPending() {
	if len(sc.tex) < 2 {
		return
	}
	next := sc.tex[len(sc.tex)-1]
	switch {
	case next != '*' && sc.pendingTok("**"):
		sc.cutPending(2)
		sc.style.Bold = !sc.style.Bold
	case next != '*' && sc.pendingTok("*"):
		sc.cutPending(1)
		sc.style.Italic = !sc.style.Italic
	case next != '-' && sc.pendingTok("--"):
		sc.cutPending(2)
		sc.toggleScale(ScaleSmall)
	case next != '+' && sc.pendingTok("++"):
		sc.cutPending(2)
		sc.toggleScale(ScaleLarge)
	case next != '>' && sc.pendingTok(">>"):
		sc.cutPending(2)
		sc.toggleWidth(WidthNarrow)
	case next != '<' && sc.pendingTok("<<"):
		sc.cutPending(2)
		sc.toggleWidth(WidthWide)
	case sc.style.Script == ScriptSup && next != '^' && sc.pendingTok("}"):
		sc.cutPending(1)
		sc.style.Script = ScriptNone
	case sc.style.Script == ScriptSub && next != '_' && sc.pendingTok("}"):
		sc.cutPending(1)
		sc.style.Script = ScriptNone
	}
}

// pairFinal fires a pending token left at the very end of the text.
func (sc *Scanner) pairFinal() {
	switch {
	case sc.tailToken("**"):
		sc.flush(2)
		sc.style.Bold = !sc.style.Bold
	case sc.tailToken("*"):
		sc.flush(1)
		sc.style.Italic = !sc.style.Italic
	case sc.tailToken("--"):
		sc.flush(2)
		sc.toggleScale(ScaleSmall)
	case sc.tailToken("++"):
		sc.flush(2)
		sc.toggleScale(ScaleLarge)
	case sc.tailToken(">>"):
		sc.flush(2)
		sc.toggleWidth(WidthNarrow)
	case sc.tailToken("<<"):
		sc.flush(2)
		sc.toggleWidth(WidthWide)
	case sc.style.Script != ScriptNone && sc.tailToken("}"):
		sc.flush(1)
		sc.style.Script = ScriptNone
	}
}

// scanTrailers handles the gothic toggle and page fields. They run after
// pairPending so that a pending token before them resolves first.
func (sc *Scanner) scanTrailers() {
	if sc.tailToken("`") {
		sc.flush(1)
		sc.style.Gothic = !sc.style.Gothic
		return
	}
	if sc.PageField && (sc.tailRune('n') || sc.tailRune('N')) &&
		!escapedAt(sc.tex, len(sc.tex)-1) {
		kind := SpanPageNumber
		if sc.tex[len(sc.tex)-1] == 'N' {
			kind = SpanPageCount
		}
		sc.flush(1)
		sc.emit(kind, Span{})
	}
}

// pendingTok reports whether the token sits immediately before the last
// buffered rune, unescaped.
func (sc *Scanner) pendingTok(tok string) bool {
	t := sc.tex
	n := len(tok)
	if len(t) < n+1 {
		return false
	}
	start := len(t) - 1 - n
	for i := 0; i < n; i++ {
		if t[start+i] != rune(tok[i]) {
			return false
		}
	}
	return !escapedAt(t, start)
}

// cutPending flushes the text before a pending token, keeping the rune
// after it buffered.
func (sc *Scanner) cutPending(n int) {
	last := sc.tex[len(sc.tex)-1]
	sc.tex = sc.tex[:len(sc.tex)-1-n]
	sc.flush(0)
	sc.tex = append(sc.tex, last)
}

func (sc *Scanner) toggleScale(s Scale) {
	if sc.style.Scale == s {
		sc.style.Scale = ScaleNone
	} else {
		sc.style.Scale = s
	}
}

// toggleWidth opens a width span, or closes the one already open. The
// grammar pairs mirrored tokens (>>text<< narrow, <<text>> wide), so the
// opener of the mirror class acts as the closer; repeating the same
// token is accepted as a closer too.
func (sc *Scanner) toggleWidth(w Width) {
	switch sc.style.Width {
	case w, w.Mirror():
		sc.style.Width = WidthNone
	default:
		sc.style.Width = w
	}
}

// tailToken reports whether the buffer ends with the ASCII token and the
// token position is not escaped.
func (sc *Scanner) tailToken(tok string) bool {
	t := sc.tex
	n := len(tok)
	if len(t) < n {
		return false
	}
	for i := 0; i < n; i++ {
		if t[len(t)-n+i] != rune(tok[i]) {
			return false
		}
	}
	return !escapedAt(t, len(t)-n)
}

func (sc *Scanner) tailRune(r rune) bool {
	t := sc.tex
	return len(t) > 0 && t[len(t)-1] == r
}

// runeBefore reports whether the rune just before a trailing token of n
// runes equals r. The dash and plus track tokens use it to yield to the
// size toggles they extend.
func (sc *Scanner) runeBefore(n int, r rune) bool {
	t := sc.tex
	return len(t) > n && t[len(t)-1-n] == r
}

// tryFixedSpace consumes a trailing <N> token: a decimal count of
// half-width space units between angle brackets.
func (sc *Scanner) tryFixedSpace() bool {
	t := sc.tex
	j := len(t) - 2
	for j >= 0 && t[j] >= '0' && t[j] <= '9' {
		j--
	}
	if j < 0 || t[j] != '<' || j == len(t)-2 || escapedAt(t, j) {
		return false
	}
	digits := string(t[j+1 : len(t)-1])
	sc.flush(len(t) - j)
	sc.emit(SpanFixedSpace, Span{Text: digits})
	return true
}

// urlTail reports whether the buffered "//" belongs to a URL scheme such
// as http:// and must stay literal.
func (sc *Scanner) urlTail() bool {
	t := sc.tex
	i := len(t) - 3
	if i < 0 || t[i] != ':' {
		return false
	}
	return i > 0 && t[i-1] >= 'a' && t[i-1] <= 'z'
}

// tryUnderline consumes a trailing underline token: an underscore pair
// around up to four style code characters.
func (sc *Scanner) tryUnderline() bool {
	t := sc.tex
	if len(t) < 2 || t[len(t)-1] != '_' {
		return false
	}
	j := len(t) - 2
	for j >= 0 && len(t)-2-j < 4 && isUnderlineCode(t[j]) {
		j--
	}
	if j < 0 || t[j] != '_' || escapedAt(t, j) {
		return false
	}
	code := string(t[j+1 : len(t)-1])
	style, ok := underlineStyle(code)
	if !ok {
		return false
	}
	sc.flush(len(t) - j)
	switch sc.style.Underline {
	case style:
		sc.style.Underline = ""
	default:
		sc.style.Underline = style
	}
	return true
}

func isUnderlineCode(r rune) bool {
	switch r {
	case '$', '=', '.', '#', '-', '~', '+':
		return true
	}
	return false
}

// tryColor consumes a trailing font color token: a caret pair around a
// color name, hex value, or nothing for white.
func (sc *Scanner) tryColor() bool {
	t := sc.tex
	if len(t) < 2 || t[len(t)-1] != '^' {
		return false
	}
	j := len(t) - 2
	for j >= 0 && len(t)-2-j < 11 && isAlnum(t[j]) {
		j--
	}
	if j < 0 || t[j] != '^' || escapedAt(t, j) {
		return false
	}
	hex, ok := parseColor(string(t[j+1 : len(t)-1]))
	if !ok {
		return false
	}
	sc.flush(len(t) - j)
	if sc.style.FontColor == "" {
		sc.style.FontColor = hex
	} else {
		sc.style.FontColor = ""
	}
	return true
}

// tryHighlight consumes a trailing highlight token: an underscore pair
// around a highlight color name.
func (sc *Scanner) tryHighlight() bool {
	t := sc.tex
	if len(t) < 3 || t[len(t)-1] != '_' {
		return false
	}
	j := len(t) - 2
	for j >= 0 && len(t)-2-j < 11 && isAlnum(t[j]) {
		j--
	}
	if j < 0 || j == len(t)-2 || t[j] != '_' || escapedAt(t, j) {
		return false
	}
	name, ok := parseHighlight(string(t[j+1 : len(t)-1]))
	if !ok {
		return false
	}
	sc.flush(len(t) - j)
	switch sc.style.Highlight {
	case name:
		sc.style.Highlight = ""
	default:
		sc.style.Highlight = name
	}
	return true
}

func isAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// tryImage consumes a complete inline image ending at the rune just added.
func (sc *Scanner) tryImage() bool {
	t := sc.tex
	for i := 0; i < len(t); i++ {
		if t[i] != '!' || escapedAt(t, i) {
			continue
		}
		m := imageTailRe.FindStringSubmatch(string(t[i:]))
		if m == nil {
			continue
		}
		head := string(t[:i])
		sc.tex = sc.tex[:0]
		if head != "" {
			sc.spans = append(sc.spans, Span{Kind: SpanText, Text: Unescape(head), Style: sc.style})
		}
		sc.emit(SpanImage, Span{Alt: m[1], Path: m[2]})
		return true
	}
	return false
}

// tryFont consumes a trailing font name token: an at-sign pair around one
// to sixty-six characters.
func (sc *Scanner) tryFont() bool {
	t := sc.tex
	if len(t) < 3 || t[len(t)-1] != '@' {
		return false
	}
	for j := len(t) - 2; j >= 0 && len(t)-2-j < 67; j-- {
		if t[j] == '\n' {
			return false
		}
		if t[j] != '@' || escapedAt(t, j) {
			continue
		}
		name := string(t[j+1 : len(t)-1])
		if name == "" {
			continue
		}
		sc.flush(len(t) - j)
		if sc.style.FontName == name {
			sc.style.FontName = ""
		} else {
			sc.style.FontName = name
		}
		return true
	}
	return false
}

// tryIVS consumes a trailing ideographic variation sequence written as a
// base character followed by the selector number and a semicolon.
func (sc *Scanner) tryIVS() bool {
	t := sc.tex
	j := len(t) - 2
	for j >= 0 && t[j] >= '0' && t[j] <= '9' {
		j--
	}
	if j < 0 || j == len(t)-2 {
		return false
	}
	if t[j] == '\\' {
		return false
	}
	n, err := strconv.Atoi(string(t[j+1 : len(t)-1]))
	if err != nil || n > 0xEF {
		return false
	}
	head := string(t[:j])
	base := t[j]
	sc.tex = sc.tex[:0]
	if head != "" {
		sc.spans = append(sc.spans, Span{Kind: SpanText, Text: Unescape(head), Style: sc.style})
	}
	sc.emit(SpanIVS, Span{Text: string(base) + string(rune(0xE0100+n))})
	return true
}

// diffTokens lists, in canonical order, the opening tokens of attributes
// on which the two stacks disagree.
func diffTokens(cur, base Stack) []string {
	var toks []string
	pick := func(curTok, baseTok string) {
		if curTok != "" {
			toks = append(toks, curTok)
		} else if baseTok != "" {
			toks = append(toks, baseTok)
		}
	}
	if cur.FontName != base.FontName {
		pick(wrapAt(cur.FontName), wrapAt(base.FontName))
	}
	if cur.Gothic != base.Gothic {
		toks = append(toks, "`")
	}
	if cur.Scale != base.Scale {
		pick(cur.Scale.Token(), base.Scale.Token())
	}
	if cur.Width != base.Width {
		pick(cur.Width.Token(), base.Width.Token())
	}
	if cur.Italic != base.Italic {
		toks = append(toks, "*")
	}
	if cur.Bold != base.Bold {
		toks = append(toks, "**")
	}
	if cur.Strike != base.Strike {
		toks = append(toks, "~~")
	}
	if cur.Frame != base.Frame {
		toks = append(toks, "[|")
	}
	if cur.Underline != base.Underline {
		pick(wrapUnderscore(cur.Underline), wrapUnderscore(base.Underline))
	}
	if cur.FontColor != base.FontColor {
		pick(colorTokenOrEmpty(cur.FontColor), colorTokenOrEmpty(base.FontColor))
	}
	if cur.Highlight != base.Highlight {
		pick(wrapPlainUnderscore(cur.Highlight), wrapPlainUnderscore(base.Highlight))
	}
	if cur.Script != base.Script {
		switch {
		case cur.Script == ScriptSup || base.Script == ScriptSup:
			toks = append(toks, "^{")
		default:
			toks = append(toks, "_{")
		}
	}
	if cur.Track != base.Track {
		switch {
		case cur.Track == TrackInserted || base.Track == TrackInserted:
			toks = append(toks, "+>")
		default:
			toks = append(toks, "->")
		}
	}
	return toks
}

func wrapAt(name string) string {
	if name == "" {
		return ""
	}
	return "@" + name + "@"
}

func wrapUnderscore(style string) string {
	if style == "" {
		return ""
	}
	code, ok := underlineCode(style)
	if !ok {
		return ""
	}
	return "_" + code + "_"
}

func wrapPlainUnderscore(name string) string {
	if name == "" {
		return ""
	}
	return "_" + name + "_"
}

func colorTokenOrEmpty(hex string) string {
	if hex == "" {
		return ""
	}
	return colorToken(hex)
}

// escapedAt reports whether the rune at index i sits behind an odd run of
// backslashes.
func escapedAt(t []rune, i int) bool {
	n := 0
	for i-n-1 >= 0 && t[i-n-1] == '\\' {
		n++
	}
	return n%2 == 1
}

// Unescape resolves backslash escapes; a trailing lone backslash is
// dropped.
func Unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	esc := false
	for _, r := range s {
		if esc {
			b.WriteRune(r)
			esc = false
			continue
		}
		if r == '\\' {
			esc = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// normalizeBreaks turns unescaped explicit break tags into newlines.
func normalizeBreaks(s string) string {
	if !strings.Contains(s, "<br") {
		return s
	}
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(rs); {
		if rs[i] == '<' && !escapedAt(rs, i) {
			if n := breakTagAt(rs, i); n > 0 {
				b.WriteByte('\n')
				i += n
				continue
			}
		}
		b.WriteRune(rs[i])
		i++
	}
	return b.String()
}

func breakTagAt(rs []rune, i int) int {
	for _, tag := range []string{"<br>", "<br/>"} {
		if matchAt(rs, i, tag) {
			return len(tag)
		}
	}
	return 0
}

// removeRelax drops unescaped relax symbols. The renderer writes "<>"
// before markup it generated itself so that the escape pass leaves it
// alone; on the way back the symbol disappears.
func removeRelax(s string) string {
	if !strings.Contains(s, "<>") {
		return s
	}
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(rs); {
		if rs[i] == '<' && matchAt(rs, i, "<>") && !escapedAt(rs, i) {
			i += 2
			continue
		}
		b.WriteRune(rs[i])
		i++
	}
	return b.String()
}

func matchAt(rs []rune, i int, lit string) bool {
	if i+len(lit) > len(rs) {
		return false
	}
	for k := 0; k < len(lit); k++ {
		if rs[i+k] != rune(lit[k]) {
			return false
		}
	}
	return true
}
