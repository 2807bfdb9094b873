// Package blocks groups a flat stream of tag and text tokens into
// depth-matched sibling blocks. The stream may come from a document
// part split at angle brackets or from markup text split at line
// boundaries; the grouping rules are the same for both.
package blocks

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies one token of the flat stream.
type Kind int

const (
	// Text is a bare text run or markup line.
	Text Kind = iota
	// Open is an element-opening tag.
	Open
	// Close is an element-closing tag.
	Close
	// SelfClose is a complete element in a single tag.
	SelfClose
	// Boundary separates sibling blocks at depth zero, such as a blank
	// line between paragraphs. Inside an open element it is ordinary
	// content.
	Boundary
)

// ErrUnclosedElement reports that the stream ended inside an element.
// Grouping still returns the blocks read so far, with the unclosed
// element truncated at end of input.
var ErrUnclosedElement = errors.New("unclosed element")

// Token is one entry of the flat stream.
type Token struct {
	Kind Kind
	Name string // element name, empty for text and boundaries
	Raw  string
}

// Block is a run of sibling tokens: a single text run, boundary or
// self-closing element, or an element with its depth-balanced children.
type Block struct {
	Name   string // element name, empty for text runs and boundaries
	Tokens []Token
}

// Kind returns the kind of the block's first token.
func (b Block) Kind() Kind {
	if len(b.Tokens) == 0 {
		return Text
	}
	return b.Tokens[0].Kind
}

// Text joins the raw text of every text token in the block.
func (b Block) Text() string {
	var sb strings.Builder
	for _, t := range b.Tokens {
		if t.Kind == Text {
			sb.WriteString(t.Raw)
		}
	}
	return sb.String()
}

// Split breaks a raw document part into one tag or text run per token
// line. Newlines inside the part carry no meaning and are dropped.
func Split(content string) []string {
	content = strings.ReplaceAll(content, "\r", "")
	content = strings.ReplaceAll(content, "\n", "")
	content = strings.ReplaceAll(content, "<", "\n<")
	content = strings.ReplaceAll(content, ">", ">\n")
	var lines []string
	for _, ln := range strings.Split(content, "\n") {
		if ln != "" {
			lines = append(lines, ln)
		}
	}
	return lines
}

// Classify turns one split line into a token.
func Classify(line string) Token {
	if !strings.HasPrefix(line, "<") || !strings.HasSuffix(line, ">") {
		return Token{Kind: Text, Raw: line}
	}
	if strings.HasPrefix(line, "<?") || strings.HasPrefix(line, "<!") {
		// declarations and comments carry no structure
		return Token{Kind: SelfClose, Raw: line}
	}
	if strings.HasPrefix(line, "</") {
		return Token{Kind: Close, Name: tagName(line[2:]), Raw: line}
	}
	if strings.HasSuffix(line, "/>") {
		return Token{Kind: SelfClose, Name: tagName(line[1:]), Raw: line}
	}
	return Token{Kind: Open, Name: tagName(line[1:]), Raw: line}
}

func tagName(s string) string {
	for i, r := range s {
		if r == ' ' || r == '>' || r == '/' {
			return s[:i]
		}
	}
	return s
}

// Tokenize splits and classifies a raw document part.
func Tokenize(content string) []Token {
	lines := Split(content)
	tokens := make([]Token, 0, len(lines))
	for _, ln := range lines {
		tokens = append(tokens, Classify(ln))
	}
	return tokens
}

// Body returns the tokens between the opening and closing tags of the
// named element, dropping the wrapper itself.
func Body(name string, tokens []Token) []Token {
	var body []Token
	in := false
	for _, t := range tokens {
		if (t.Kind == Open || t.Kind == Close) && t.Name == name {
			in = !in
			continue
		}
		if in {
			body = append(body, t)
		}
	}
	return body
}

// Group collects the stream into sibling blocks. Consecutive text
// tokens form one block; a boundary flushes the pending text and
// stands alone; an opening tag collects children until its own close
// at the same depth. A close with no matching open stands alone, and
// an open with no close before end of input yields the remainder as a
// truncated block together with ErrUnclosedElement.
func Group(tokens []Token) ([]Block, error) {
	var groups []Block
	var text []Token
	var err error
	flushText := func() {
		if len(text) > 0 {
			groups = append(groups, Block{Tokens: text})
			text = nil
		}
	}
	for i := 0; i < len(tokens); {
		t := tokens[i]
		switch t.Kind {
		case Text:
			text = append(text, t)
			i++
		case Boundary, SelfClose, Close:
			flushText()
			groups = append(groups, Block{Name: t.Name, Tokens: tokens[i : i+1]})
			i++
		case Open:
			flushText()
			j, ok := matchClose(tokens, i)
			if !ok && err == nil {
				err = fmt.Errorf("element %q: %w", t.Name, ErrUnclosedElement)
			}
			groups = append(groups, Block{Name: t.Name, Tokens: tokens[i : j+1]})
			i = j + 1
		}
	}
	flushText()
	return groups, err
}

// matchClose finds the close matching the open at start, by element
// name and nesting depth.
func matchClose(tokens []Token, start int) (int, bool) {
	name := tokens[start].Name
	depth := 0
	for j := start; j < len(tokens); j++ {
		switch t := tokens[j]; {
		case t.Kind == Open && t.Name == name:
			depth++
		case t.Kind == Close && t.Name == name:
			depth--
			if depth == 0 {
				return j, true
			}
		}
	}
	return len(tokens) - 1, false
}

// Attr returns the named attribute's value from a tag token, or "".
func (t Token) Attr(name string) string {
	for _, q := range []string{`"`, `'`} {
		key := " " + name + "=" + q
		if i := strings.Index(t.Raw, key); i >= 0 {
			rest := t.Raw[i+len(key):]
			if j := strings.Index(rest, q); j >= 0 {
				return rest[:j]
			}
		}
	}
	return ""
}

// IntAttr returns the named attribute as an integer, or def.
func (t Token) IntAttr(name string, def int) int {
	v := t.Attr(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// FloatAttr returns the named attribute as a float, or def.
func (t Token) FloatAttr(name string, def float64) float64 {
	v := t.Attr(name)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// BoolAttr returns the named attribute as a bool, or def. Only the
// word "true", in any case, counts as true.
func (t Token) BoolAttr(name string, def bool) bool {
	v := t.Attr(name)
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true")
}
