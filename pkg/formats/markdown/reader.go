// Package markdown reads and writes the markup dialect: a Markdown
// look-alike whose marker chains, revisers and decoration tokens carry
// everything a docx package stores as measurements.
package markdown

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// DecodeBytes turns raw file content into text: UTF-8 passes through,
// anything else is tried as Shift_JIS. The byte order mark is dropped
// and line endings are normalized to bare newlines.
func DecodeBytes(data []byte) (string, error) {
	if !utf8.Valid(data) {
		dec, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
		if err != nil {
			return "", fmt.Errorf("failed to decode input as UTF-8 or Shift_JIS: %w", err)
		}
		data = dec
	}
	text := strings.TrimPrefix(string(data), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text, nil
}

// source is the comment-stripped form of one markup file. Comments
// before the first body line are the configuration block; later ones
// are remembered by the line they ended on and ride into the document
// as remarks.
type source struct {
	lines    []string
	conf     []string
	comments map[int][]string
}

// stripComments removes every <!-- --> region, escape aware. A
// backslash hides the character after it, so an escaped opener stays
// in the text. The closing marker needs no escape awareness: a
// backslash inside a comment is literal comment text.
func stripComments(text string) (string, map[int][]string, []string) {
	var out strings.Builder
	var com strings.Builder
	comments := map[int][]string{}
	var conf []string
	line := 0
	bodySeen := false
	inComment := false
	rs := []rune(text)
	for i := 0; i < len(rs); i++ {
		if inComment {
			if matchRunes(rs, i, "-->") {
				i += 2
				inComment = false
				if bodySeen || strings.TrimSpace(currentLine(out.String())) != "" {
					comments[line] = append(comments[line], com.String())
				} else {
					conf = append(conf, strings.Split(com.String(), "\n")...)
				}
				com.Reset()
				continue
			}
			com.WriteRune(rs[i])
			continue
		}
		switch {
		case rs[i] == '\\' && i+1 < len(rs):
			out.WriteRune(rs[i])
			out.WriteRune(rs[i+1])
			i++
		case matchRunes(rs, i, "<!--"):
			inComment = true
			i += 3
		default:
			if rs[i] == '\n' {
				if strings.TrimSpace(currentLine(out.String())) != "" {
					bodySeen = true
				}
				line++
			}
			out.WriteRune(rs[i])
		}
	}
	if inComment {
		// An unclosed comment swallows the rest of the file.
		comments[line] = append(comments[line], com.String())
	}
	return out.String(), comments, conf
}

func matchRunes(rs []rune, i int, lit string) bool {
	for _, c := range lit {
		if i >= len(rs) || rs[i] != c {
			return false
		}
		i++
	}
	return true
}

func currentLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// readSource splits decoded text into trimmed lines. Outside fenced
// regions a line ending in two spaces, a tab or a full-width space
// keeps the break as an explicit token; other trailing whitespace is
// dropped.
func readSource(text string) *source {
	clean, comments, conf := stripComments(text)
	raw := strings.Split(clean, "\n")
	lines := make([]string, len(raw))
	fenced := false
	for i, ln := range raw {
		if strings.HasPrefix(strings.TrimLeft(ln, " \t"), "```") {
			fenced = !fenced
			lines[i] = strings.TrimRight(ln, " \t")
			continue
		}
		if fenced {
			lines[i] = ln
			continue
		}
		lines[i] = trimTail(ln)
	}
	return &source{lines: lines, conf: conf, comments: comments}
}

// trimTail drops trailing whitespace, turning the Markdown hard-break
// forms into the explicit token first.
func trimTail(ln string) string {
	t := strings.TrimRight(ln, " \t　")
	if t == "" || t == ln {
		return t
	}
	cut := ln[len(t):]
	// A right-alignment colon keeps its gap; trailing whitespace
	// after it never means a break.
	if strings.HasSuffix(t, ":") {
		return t
	}
	if strings.HasPrefix(cut, "  ") || strings.HasPrefix(cut, "\t") ||
		strings.HasPrefix(cut, "　") {
		return t + "<br>"
	}
	return t
}
