package charwidth

import (
	"regexp"
	"strings"
)

var (
	imageRe         = regexp.MustCompile(`! *\[[^\[\]]*\] *\([^()]+\)`)
	headMarksRe     = regexp.MustCompile(`^(?:#+(?:-#)* )+$`)
	headMarksLeadRe = regexp.MustCompile(`^(?:#+(?:-#)* )+`)

	conjunctionRe = regexp.MustCompile("^(?:" + strings.Join(conjunctions, "|") + ")[，、]$")

	// Token shapes that a hard break must not cut in half.
	breakGuards = []struct{ tail, head *regexp.Regexp }{
		{regexp.MustCompile(`_[$=.#~+-]*$`), regexp.MustCompile(`^[$=.#~+-]*_`)},       // underline
		{regexp.MustCompile(`\^[0-9A-Za-z]*$`), regexp.MustCompile(`^[0-9A-Za-z]*\^`)}, // font color
		{regexp.MustCompile(`_[0-9A-Za-z]+$`), regexp.MustCompile(`^[0-9A-Za-z]+_`)},   // highlight
		{regexp.MustCompile(`@.{1,66}$`), regexp.MustCompile(`^.{1,66}@`)},             // font name
		{regexp.MustCompile(`<!?$`), regexp.MustCompile(`^!?[-+]`)},                    // track change open
		{regexp.MustCompile(`[-+]$`), regexp.MustCompile(`^>`)},                        // track change close
		{regexp.MustCompile(`</?[0-9a-z]*$`), regexp.MustCompile(`^/?[0-9a-z]*>`)},     // tag
	}
)

// Fold breaks text into lines no wider than TextWidth, splitting at
// phrase boundaries and keeping decorator tokens intact. Line breaks
// already present in text are preserved as "<br>" separators.
func Fold(text string) string {
	var folded []string
	for _, line := range strings.Split(text, "\n") {
		var phrases []string
		for _, part := range splitImage(line) {
			if part == "" {
				continue
			}
			if loc := imageRe.FindStringIndex(part); loc != nil && loc[0] == 0 {
				phrases = append(phrases, part)
				continue
			}
			phrases = append(phrases, splitPhrases(part)...)
		}
		folded = append(folded, concatPhrases(phrases))
	}
	return strings.Join(folded, "<br>\n")
}

// splitImage puts the first unescaped image token on a part of its own
// so that it always lands on its own output line.
func splitImage(line string) []string {
	for _, loc := range imageRe.FindAllStringIndex(line, -1) {
		if escaped(line[:loc[0]]) {
			continue
		}
		return []string{line[:loc[0]], line[loc[0]:loc[1]], line[loc[1]:]}
	}
	return []string{line}
}

// escaped reports whether s ends with an odd run of backslashes, so
// that the character after s is escaped.
func escaped(s string) bool {
	n := 0
	for n < len(s) && s[len(s)-1-n] == '\\' {
		n++
	}
	return n%2 == 1
}

func isASCIIClose(r rune) bool { return strings.ContainsRune(",.)}]", r) }
func isJPOpen(r rune) bool     { return strings.ContainsRune("『「｛（＜", r) }
func isJPClose(r rune) bool    { return strings.ContainsRune("，、．。＞）｝」』", r) }

func isDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= '０' && r <= '９')
}

func isFWDigit(r rune) bool { return r >= '０' && r <= '９' }

func isKanaOrPause(r rune) bool {
	return (r >= 'ぁ' && r <= 'ん') || strings.ContainsRune("，、．。", r)
}

var trackTokens = []string{"<!--", "-->", "<!+>", "<+>"}

func hasTrackPrefix(s string) bool {
	for _, t := range trackTokens {
		if strings.HasPrefix(s, t) {
			return true
		}
	}
	return false
}

func hasTrackSuffix(s string) bool {
	for _, t := range trackTokens {
		if strings.HasSuffix(s, t) {
			return true
		}
	}
	return false
}

// splitPhrases cuts a line into phrases: at space runs, after closing
// punctuation, before opening brackets, and around track-change tokens.
// Digit groupings such as １，２３４ are kept together.
func splitPhrases(line string) []string {
	var phrases []string
	rs := []rune(line)
	m := len(rs) - 1
	tmp := ""
	flush := func() {
		if tmp != "" {
			phrases = append(phrases, tmp)
			tmp = ""
		}
	}
	for i, c := range rs {
		tmp += string(c)
		if i == m {
			break
		}
		c2 := rs[i+1]
		if c2 == ' ' {
			continue // space runs stay with the preceding phrase
		}
		if c == ' ' {
			flush()
		}
		if isASCIIClose(c) && !isASCIIClose(c2) {
			if (c == ',' || c == '.') && i > 0 && isDigit(rs[i-1]) && isDigit(c2) {
				continue
			}
			flush()
		}
		if !isJPOpen(c) && isJPOpen(c2) {
			flush()
		}
		if isJPClose(c) && !isJPClose(c2) {
			if (c == '，' || c == '．') && i > 0 && isDigit(rs[i-1]) && isDigit(c2) {
				continue
			}
			flush()
		}
		rest := string(rs[i+1:])
		if !escaped(tmp) && hasTrackPrefix(rest) {
			flush()
		}
		if hasTrackSuffix(tmp) {
			flush()
		}
	}
	flush()
	return phrases
}

// concatPhrases joins phrases back into lines, flushing at sentence
// ends, after leading conjunctions, and whenever the next phrase would
// push the line past TextWidth. Overlong remainders are hard broken.
func concatPhrases(phrases []string) string {
	tex := ""
	tmp := ""
	last := ""
	if len(phrases) > 0 {
		last = phrases[len(phrases)-1]
	}
	flush := func() {
		if tmp != "" {
			tex += tmp + "\n"
			tmp = ""
		}
	}
	for _, p := range phrases {
		// A bare section tag goes on its own line when the body is a
		// full sentence.
		if tex == "" && headMarksRe.MatchString(tmp) &&
			!headMarksLeadRe.MatchString(p) && endsSentence(last) {
			tex += tmp + "\n"
			tmp = p
			continue
		}
		if loc := imageRe.FindStringIndex(p); loc != nil && loc[0] == 0 {
			flush()
			tex += p + "\n"
			continue
		}
		if IdealWidth(tmp) <= TextWidth {
			if strings.HasSuffix(tmp, "．") || strings.HasSuffix(tmp, "。") {
				flush()
			}
			if strings.HasPrefix(p, "<!--") || strings.HasPrefix(p, "<!+>") {
				flush()
			}
			if strings.HasSuffix(tmp, "-->") || strings.HasSuffix(tmp, "<+>") {
				flush()
			}
		}
		if IdealWidth(tmp+p) > TextWidth {
			flush()
		}
		tmp += p
		if IdealWidth(tmp) <= TextWidth {
			if (strings.HasSuffix(tmp, "，") || strings.HasSuffix(tmp, "、")) &&
				conjunctionRe.MatchString(tmp) {
				flush()
			}
			if strings.HasSuffix(tmp, "．") || strings.HasSuffix(tmp, "。") {
				flush()
			}
		}
		for IdealWidth(tmp) > TextWidth {
			tmp = hardBreak(tmp, &tex)
		}
	}
	flush()
	return strings.TrimSuffix(tex, "\n")
}

func endsSentence(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "．") ||
		strings.HasSuffix(s, "。")
}

// hardBreak cuts one line off the front of tmp, preferring a break
// after the particle を or at a hiragana-to-other boundary, and falls
// back to the widest cut that keeps decorator tokens whole. The cut
// line is appended to tex and the remainder returned.
func hardBreak(tmp string, tex *string) string {
	rs := []rune(tmp)
	for i := len(rs); i >= 0; i-- {
		if IdealWidth(string(rs[:i])) > TextWidth {
			continue
		}
		// Never cut a full-width figure like １２，３４５ at its comma.
		if i >= 2 && i < len(rs) &&
			isFWDigit(rs[i-2]) && (rs[i-1] == '，' || rs[i-1] == '．') && isFWDigit(rs[i]) {
			continue
		}
		if i > 0 && rs[i-1] == 'を' {
			*tex += string(rs[:i]) + "\n"
			return string(rs[i:])
		}
		if i > 0 && i < len(rs) && isKanaOrPause(rs[i-1]) && !isKanaOrPause(rs[i]) {
			*tex += string(rs[:i]) + "\n"
			return string(rs[i:])
		}
	}
	for i := len(rs); i > 0; i-- {
		s1 := string(rs[:i])
		s2 := string(rs[i:])
		if !safeBreak(s1, s2) {
			continue
		}
		if IdealWidth(s1) <= TextWidth {
			*tex += s1 + "\n"
			return s2
		}
	}
	*tex += tmp + "\n"
	return ""
}

// safeBreak reports whether breaking between s1 and s2 cannot cut an
// escape, a decorator token, or a line-break marker in half.
func safeBreak(s1, s2 string) bool {
	if strings.HasSuffix(s1, `\`) {
		return false
	}
	for _, d := range []string{"*", "~", "`", "/", "-", "+"} {
		if strings.HasSuffix(s1, d) && strings.HasPrefix(s2, d) {
			return false
		}
	}
	if strings.HasSuffix(s1, " ") && strings.HasPrefix(s2, " ") {
		return false
	}
	for _, g := range breakGuards {
		if g.tail.MatchString(s1) && g.head.MatchString(s2) {
			return false
		}
	}
	return true
}
