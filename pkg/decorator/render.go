package decorator

import (
	"regexp"
	"strconv"
	"strings"
)

// TokenPattern matches one decoration token. Longer tokens come first so
// an alternation built from it prefers them.
const TokenPattern = `(?:\*\*\*|\*\*|\*|~~|` + "`" + `|//|---|--|->|\+\+\+|\+\+|\+>|>>>|>>|<<<|<<|<-|<\+|\[\||\|\]|_[\$=\.#\-~\+]{0,4}_|\^[0-9A-Za-z]{0,11}\^|_[0-9A-Za-z]{1,11}_|@.{1,66}@|\^\{|\}\^|_\{|\}_)`

var (
	escUnderline = regexp.MustCompile(`_([\$=\.#\-~\+]{0,4})_`)
	escURL       = regexp.MustCompile(`([a-z]+:)\\/\\/`)
	escColor     = regexp.MustCompile(`\^([0-9A-Za-z]{0,11})\^`)
	escHighlight = regexp.MustCompile(`_([0-9A-Za-z]{1,11})_`)
	escFont      = regexp.MustCompile(`@(.{1,66})@`)
	escSubOpen   = regexp.MustCompile(`(^|[^\\])((?:\\\\)*)_\{`)
	escSupOpen   = regexp.MustCompile(`(^|[^\\])((?:\\\\)*)\^\{`)
)

// EscapeText escapes document text so that none of it scans as decoration
// tokens. URL double slashes are kept readable.
func EscapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "*", `\*`)
	s = strings.ReplaceAll(s, "`", "\\`")
	s = strings.ReplaceAll(s, "~~", `\~\~`)
	s = escUnderline.ReplaceAllString(s, `\_${1}\_`)
	s = strings.ReplaceAll(s, "//", `\/\/`)
	s = escURL.ReplaceAllString(s, "${1}//")
	s = strings.ReplaceAll(s, "---", `\-\-\-`)
	s = strings.ReplaceAll(s, "--", `\-\-`)
	s = strings.ReplaceAll(s, "+++", `\+\+\+`)
	s = strings.ReplaceAll(s, "++", `\+\+`)
	s = escColor.ReplaceAllString(s, `\^${1}\^`)
	s = escHighlight.ReplaceAllString(s, `\_${1}\_`)
	s = escFont.ReplaceAllString(s, `\@${1}\@`)
	s = strings.ReplaceAll(s, "|]", `\|]`)
	s = strings.ReplaceAll(s, "[|", `[\|`)
	s = escSubOpen.ReplaceAllString(s, `${1}${2}\_{`)
	s = escSupOpen.ReplaceAllString(s, `${1}${2}\^{`)
	s = strings.ReplaceAll(s, "}", `\}`)
	s = strings.ReplaceAll(s, "<", `\<`)
	s = strings.ReplaceAll(s, ">", `\>`)
	return s
}

// EncodeIVS rewrites ideographic variation selectors as their numeric
// notation and protects literal digit-semicolon text from scanning as one.
func EncodeIVS(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	run := 0 // pending digits
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r >= '0' && r <= '9' {
			run++
			continue
		}
		if r == ';' && run > 0 {
			prev := i - run - 1
			if prev >= 0 && rs[prev] != '\\' {
				b.WriteByte('\\')
			}
		}
		for k := i - run; k < i; k++ {
			b.WriteRune(rs[k])
		}
		run = 0
		if r >= 0xE0100 && r <= 0xE01EF {
			b.WriteString(strconv.Itoa(int(r - 0xE0100)))
			b.WriteByte(';')
			continue
		}
		b.WriteRune(r)
	}
	for k := len(rs) - run; k < len(rs); k++ {
		b.WriteRune(rs[k])
	}
	return b.String()
}

// JoinRuns cancels mirror-image decoration tokens across the boundary of
// two adjacent runs: a decoration closed and immediately reopened is a
// no-op the output must not carry. It returns the trimmed pair.
func JoinRuns(left, right string) (string, string) {
	l := []rune(left)
	r := []rune(right)
	for {
		switch {
		case runTail(l, '*') == 3 && runHead(r, '*') == 3 && len(l) > 3 && len(r) > 3:
			l, r = l[:len(l)-3], r[3:]
		case runTail(l, '*') == 2 && runHead(r, '*') == 2 && len(l) > 2 && len(r) > 2:
			l, r = l[:len(l)-2], r[2:]
		case runTail(l, '*') == 1 && runHead(r, '*') == 1 && len(l) > 1 && len(r) > 1:
			l, r = l[:len(l)-1], r[1:]
		case tailIs(l, "~~") && headIs(r, "~~"):
			l, r = l[:len(l)-2], r[2:]
		case tailIs(l, "`") && headIs(r, "`"):
			l, r = l[:len(l)-1], r[1:]
		case tailIs(l, "---") && headIs(r, "---"):
			l, r = l[:len(l)-3], r[3:]
		case tailIs(l, "---") && headIs(r, "--"):
			return string(l), string(r)
		case tailIs(l, "--") && headIs(r, "---"):
			return string(l), string(r)
		case tailIs(l, "--") && headIs(r, "--"):
			l, r = l[:len(l)-2], r[2:]
		case tailIs(l, "+++") && headIs(r, "+++"):
			l, r = l[:len(l)-3], r[3:]
		case tailIs(l, "+++") && headIs(r, "++"):
			return string(l), string(r)
		case tailIs(l, "++") && headIs(r, "+++"):
			return string(l), string(r)
		case tailIs(l, "++") && headIs(r, "++"):
			l, r = l[:len(l)-2], r[2:]
		case tailIs(l, "<<<") && headIs(r, ">>>"):
			l, r = l[:len(l)-3], r[3:]
		case tailIs(l, "<<<") && headIs(r, ">>") || tailIs(l, "<<") && headIs(r, ">>>"):
			return string(l), string(r)
		case tailIs(l, "<<") && headIs(r, ">>"):
			l, r = l[:len(l)-2], r[2:]
		case tailIs(l, ">>>") && headIs(r, "<<<"):
			l, r = l[:len(l)-3], r[3:]
		case tailIs(l, ">>>") && headIs(r, "<<") || tailIs(l, ">>") && headIs(r, "<<<"):
			return string(l), string(r)
		case tailIs(l, ">>") && headIs(r, "<<"):
			l, r = l[:len(l)-2], r[2:]
		case tailIs(l, "|]") && headIs(r, "[|"):
			l, r = l[:len(l)-2], r[2:]
		default:
			if n, m, ok := cancelPair(l, r); ok {
				l, r = l[:len(l)-n], r[m:]
				continue
			}
			return string(l), string(r)
		}
	}
}

// cancelPair handles the valued tokens: underline, font color, highlight,
// font name, script brackets and change tracking. Both sides must carry
// the same value.
func cancelPair(l, r []rune) (int, int, bool) {
	if code, n, ok := codedTail(l, isUnderlineCode, 0, 4, '_'); ok {
		if hcode, m, ok2 := codedHead(r, isUnderlineCode, 0, 4, '_'); ok2 && code == hcode {
			return n, m, true
		}
	}
	if code, n, ok := codedTail(l, isAlnum, 0, 11, '^'); ok {
		if hcode, m, ok2 := codedHead(r, isAlnum, 0, 11, '^'); ok2 && code == hcode {
			return n, m, true
		}
	}
	if code, n, ok := codedTail(l, isAlnum, 1, 11, '_'); ok {
		if hcode, m, ok2 := codedHead(r, isAlnum, 1, 11, '_'); ok2 && code == hcode {
			return n, m, true
		}
	}
	if code, n, ok := fontTail(l); ok {
		if hcode, m, ok2 := fontHead(r); ok2 && code == hcode {
			return n, m, true
		}
	}
	if tailIs(l, "}^") && headIs(r, "^{") {
		return 2, 2, true
	}
	if tailIs(l, "}_") && headIs(r, "_{") {
		return 2, 2, true
	}
	if tailIs(l, "<-") && headIs(r, "->") {
		return 2, 2, true
	}
	if tailIs(l, "<+") && headIs(r, "+>") {
		return 2, 2, true
	}
	return 0, 0, false
}

func runTail(rs []rune, c rune) int {
	n := 0
	for n < len(rs) && rs[len(rs)-1-n] == c {
		n++
	}
	return n
}

func runHead(rs []rune, c rune) int {
	n := 0
	for n < len(rs) && rs[n] == c {
		n++
	}
	return n
}

func tailIs(rs []rune, tok string) bool {
	if len(rs) < len(tok) {
		return false
	}
	return matchAt(rs, len(rs)-len(tok), tok)
}

func headIs(rs []rune, tok string) bool {
	return matchAt(rs, 0, tok)
}

// codedTail matches a trailing delimited token such as _..-_ and returns
// the code and the token length.
func codedTail(rs []rune, class func(rune) bool, min, max int, delim rune) (string, int, bool) {
	if len(rs) < min+2 || rs[len(rs)-1] != delim {
		return "", 0, false
	}
	j := len(rs) - 2
	for j >= 0 && len(rs)-2-j < max && class(rs[j]) {
		j--
	}
	if j < 0 || rs[j] != delim || len(rs)-2-j < min {
		return "", 0, false
	}
	return string(rs[j+1 : len(rs)-1]), len(rs) - j, true
}

// codedHead is the mirror of codedTail at the start of a run.
func codedHead(rs []rune, class func(rune) bool, min, max int, delim rune) (string, int, bool) {
	if len(rs) < min+2 || rs[0] != delim {
		return "", 0, false
	}
	j := 1
	for j < len(rs) && j-1 < max && class(rs[j]) {
		j++
	}
	if j >= len(rs) || rs[j] != delim || j-1 < min {
		return "", 0, false
	}
	return string(rs[1:j]), j + 1, true
}

func fontTail(rs []rune) (string, int, bool) {
	if len(rs) < 3 || rs[len(rs)-1] != '@' {
		return "", 0, false
	}
	for j := len(rs) - 2; j >= 0 && len(rs)-2-j < 67; j-- {
		if rs[j] == '\n' {
			return "", 0, false
		}
		if rs[j] == '@' && j < len(rs)-2 {
			return string(rs[j+1 : len(rs)-1]), len(rs) - j, true
		}
	}
	return "", 0, false
}

func fontHead(rs []rune) (string, int, bool) {
	if len(rs) < 3 || rs[0] != '@' {
		return "", 0, false
	}
	for j := 1; j < len(rs) && j-1 < 67; j++ {
		if rs[j] == '\n' {
			return "", 0, false
		}
		if rs[j] == '@' && j > 1 {
			return string(rs[1:j]), j + 1, true
		}
	}
	return "", 0, false
}

// movableTokens are the decorations and whitespace a tidy pass may hop
// over or keep when dropping an empty pair.
const movableTokens = `(?:\s|~~|_[\$=\.#\-~\+]{0,4}_|---|--|\+\+\+|\+\+|>>>|>>|<<<|<<|_[0-9A-Za-z]{1,11}_|@.{1,66}@)+`

type tidyRule struct {
	drop *regexp.Regexp // fd movable fd  ->  movable
	lead *regexp.Regexp // ^fd movable    ->  movable fd
	tail *regexp.Regexp // movable fd$    ->  fd movable
}

var tidyRules []tidyRule

func init() {
	for _, fd := range []string{
		`\*\*\*`, `\*\*`, `\*`, "`", `//`, `\^[0-9A-Za-z]{0,11}\^`,
	} {
		tidyRules = append(tidyRules, tidyRule{
			drop: regexp.MustCompile(fd + `(` + movableTokens + `)` + fd),
			lead: regexp.MustCompile(`^(` + fd + `)(` + movableTokens + `)`),
			tail: regexp.MustCompile(`(` + movableTokens + `)(` + fd + `)$`),
		})
	}
}

// Tidy drops decoration pairs that wrap nothing but whitespace or other
// decorations, and moves decorations inward past leading and trailing
// whitespace. It runs to a fixed point.
func Tidy(s string) string {
	for {
		prev := s
		for _, rule := range tidyRules {
			s = rule.drop.ReplaceAllString(s, `${1}`)
			s = rule.lead.ReplaceAllString(s, `${2}${1}`)
			s = rule.tail.ReplaceAllString(s, `${2}${1}`)
		}
		if s == prev {
			break
		}
	}
	return s
}

// GuardSpaces escapes leading and trailing whitespace so the markup
// reader keeps it instead of trimming.
func GuardSpaces(s string) string {
	if s == "" {
		return s
	}
	if r := s[0]; r == ' ' || r == '\t' || r == '\n' {
		s = `\` + s
	} else if strings.HasPrefix(s, "　") {
		s = `\` + s
	}
	if r := s[len(s)-1]; r == ' ' || r == '\t' || r == '\n' {
		s = s + `\`
	} else if strings.HasSuffix(s, "　") {
		s = s + `\`
	}
	return s
}
