package document

import (
	"fmt"
	"strings"
	"unicode"
)

// Math is the body of a math paragraph: the text between the frames
// and, when it parses, its expression tree.
type Math struct {
	Source string
	Expr   *MathExpr
}

// MathKind enumerates the node forms of the expression tree.
type MathKind int

const (
	MathRun    MathKind = iota // literal text or a symbol command
	MathGroup                  // braced or implicit sequence
	MathFrac                   // \frac{num}{den}
	MathSub                    // base with a subscript
	MathSup                    // base with a superscript
	MathSubSup                 // base with both scripts
	MathSqrt                   // \sqrt{...} or \sqrt[degree]{...}
	MathNary                   // \sum, \prod, \int with limit scripts
	MathFunc                   // \sin and friends applied to an argument
)

// MathExpr is one node of the bounded expression tree. Text carries
// the literal for runs and the operator or function name otherwise.
type MathExpr struct {
	Kind MathKind
	Text string
	Args []*MathExpr
}

// mathMaxDepth caps nesting so malformed input cannot recurse away.
const mathMaxDepth = 32

var naryOps = map[string]string{
	`\sum`: "∑", `\prod`: "∏", `\int`: "∫",
}

var funcNames = map[string]bool{
	`\sin`: true, `\cos`: true, `\tan`: true,
	`\log`: true, `\ln`: true, `\exp`: true, `\lim`: true,
}

type mathParser struct {
	src []rune
	pos int
}

// ParseMath reads a math paragraph body into its expression tree.
func ParseMath(src string) (*MathExpr, error) {
	p := &mathParser{src: []rune(src)}
	expr, err := p.sequence(0, "")
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.src) {
		return nil, fmt.Errorf("unbalanced brace at offset %d", p.pos)
	}
	return expr, nil
}

// sequence parses until the closing rune (or the end when until is
// empty) and wraps multiple nodes into a group.
func (p *mathParser) sequence(depth int, until string) (*MathExpr, error) {
	if depth > mathMaxDepth {
		return nil, fmt.Errorf("expression nested deeper than %d", mathMaxDepth)
	}
	var items []*MathExpr
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		if until != "" && string(r) == until {
			p.pos++
			return groupOf(items), nil
		}
		if r == '}' || r == ']' {
			break
		}
		item, err := p.scripted(depth)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if until != "" {
		return nil, fmt.Errorf("missing closing %q", until)
	}
	return groupOf(items), nil
}

func groupOf(items []*MathExpr) *MathExpr {
	switch len(items) {
	case 0:
		return &MathExpr{Kind: MathGroup}
	case 1:
		return items[0]
	}
	return &MathExpr{Kind: MathGroup, Args: items}
}

// scripted parses one atom plus any _ and ^ scripts attached to it.
func (p *mathParser) scripted(depth int) (*MathExpr, error) {
	base, err := p.atom(depth)
	if err != nil {
		return nil, err
	}
	var sub, sup *MathExpr
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		if r == '_' && sub == nil {
			p.pos++
			if sub, err = p.scriptArg(depth); err != nil {
				return nil, err
			}
			continue
		}
		if r == '^' && sup == nil {
			p.pos++
			if sup, err = p.scriptArg(depth); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	switch {
	case sub != nil && sup != nil:
		return &MathExpr{Kind: MathSubSup, Args: []*MathExpr{base, sub, sup}}, nil
	case sub != nil:
		return &MathExpr{Kind: MathSub, Args: []*MathExpr{base, sub}}, nil
	case sup != nil:
		return &MathExpr{Kind: MathSup, Args: []*MathExpr{base, sup}}, nil
	}
	return base, nil
}

// scriptArg is the argument of _ or ^: a braced sequence or a single
// character.
func (p *mathParser) scriptArg(depth int) (*MathExpr, error) {
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("dangling script at offset %d", p.pos)
	}
	if p.src[p.pos] == '{' {
		p.pos++
		return p.sequence(depth+1, "}")
	}
	r := p.src[p.pos]
	p.pos++
	return &MathExpr{Kind: MathRun, Text: string(r)}, nil
}

func (p *mathParser) atom(depth int) (*MathExpr, error) {
	r := p.src[p.pos]
	switch {
	case r == '{':
		p.pos++
		return p.sequence(depth+1, "}")
	case r == '\\':
		return p.command(depth)
	}
	// A literal run up to the next structural rune.
	start := p.pos
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		if strings.ContainsRune(`\{}_^]`, r) {
			break
		}
		p.pos++
	}
	if p.pos == start {
		p.pos++
		return &MathExpr{Kind: MathRun, Text: string(p.src[start])}, nil
	}
	return &MathExpr{Kind: MathRun, Text: string(p.src[start:p.pos])}, nil
}

func (p *mathParser) command(depth int) (*MathExpr, error) {
	start := p.pos
	p.pos++ // the backslash
	for p.pos < len(p.src) && unicode.IsLetter(p.src[p.pos]) {
		p.pos++
	}
	name := string(p.src[start:p.pos])
	if name == `\` {
		// An escaped single character.
		if p.pos < len(p.src) {
			name += string(p.src[p.pos])
			p.pos++
		}
		return &MathExpr{Kind: MathRun, Text: name}, nil
	}
	switch {
	case name == `\frac`:
		num, err := p.bracedArg(depth)
		if err != nil {
			return nil, err
		}
		den, err := p.bracedArg(depth)
		if err != nil {
			return nil, err
		}
		return &MathExpr{Kind: MathFrac, Args: []*MathExpr{num, den}}, nil
	case name == `\sqrt`:
		var deg *MathExpr
		if p.pos < len(p.src) && p.src[p.pos] == '[' {
			p.pos++
			d, err := p.sequence(depth+1, "]")
			if err != nil {
				return nil, err
			}
			deg = d
		}
		arg, err := p.bracedArg(depth)
		if err != nil {
			return nil, err
		}
		if deg != nil {
			return &MathExpr{Kind: MathSqrt, Args: []*MathExpr{arg, deg}}, nil
		}
		return &MathExpr{Kind: MathSqrt, Args: []*MathExpr{arg}}, nil
	case naryOps[name] != "":
		return &MathExpr{Kind: MathNary, Text: name}, nil
	case funcNames[name]:
		arg, err := p.scripted(depth + 1)
		if err != nil {
			return nil, err
		}
		return &MathExpr{Kind: MathFunc, Text: name, Args: []*MathExpr{arg}}, nil
	}
	// Symbol commands stay literal runs for the writer to map.
	return &MathExpr{Kind: MathRun, Text: name}, nil
}

func (p *mathParser) bracedArg(depth int) (*MathExpr, error) {
	if p.pos >= len(p.src) || p.src[p.pos] != '{' {
		return nil, fmt.Errorf("expected { at offset %d", p.pos)
	}
	p.pos++
	return p.sequence(depth+1, "}")
}

// String renders the tree back in its written form.
func (e *MathExpr) String() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case MathRun:
		return e.Text
	case MathGroup:
		var b strings.Builder
		for _, a := range e.Args {
			b.WriteString(a.String())
		}
		return b.String()
	case MathFrac:
		return `\frac{` + e.Args[0].String() + `}{` + e.Args[1].String() + `}`
	case MathSub:
		return e.Args[0].String() + "_{" + e.Args[1].String() + "}"
	case MathSup:
		return e.Args[0].String() + "^{" + e.Args[1].String() + "}"
	case MathSubSup:
		return e.Args[0].String() + "_{" + e.Args[1].String() + "}^{" + e.Args[2].String() + "}"
	case MathSqrt:
		if len(e.Args) == 2 {
			return `\sqrt[` + e.Args[1].String() + `]{` + e.Args[0].String() + `}`
		}
		return `\sqrt{` + e.Args[0].String() + `}`
	case MathNary:
		return e.Text
	case MathFunc:
		return e.Text + " " + e.Args[0].String()
	}
	return ""
}
