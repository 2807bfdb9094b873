package docx

import (
	"strings"
	"unicode"

	"github.com/nerdneilsfield/go-docx-md/pkg/blocks"
	"github.com/nerdneilsfield/go-docx-md/pkg/document"
)

// texSymbols maps the written commands onto the characters the math
// runs carry. The reverse table turns decoded characters back into
// commands, so a formula survives the round trip spelled the same way.
var texSymbols = map[string]string{
	`\alpha`: "α", `\beta`: "β", `\gamma`: "γ", `\delta`: "δ",
	`\epsilon`: "ε", `\zeta`: "ζ", `\eta`: "η", `\theta`: "θ",
	`\iota`: "ι", `\kappa`: "κ", `\lambda`: "λ", `\mu`: "μ",
	`\nu`: "ν", `\xi`: "ξ", `\pi`: "π", `\rho`: "ρ",
	`\sigma`: "σ", `\tau`: "τ", `\upsilon`: "υ", `\phi`: "φ",
	`\chi`: "χ", `\psi`: "ψ", `\omega`: "ω",
	`\Gamma`: "Γ", `\Delta`: "Δ", `\Theta`: "Θ", `\Lambda`: "Λ",
	`\Xi`: "Ξ", `\Pi`: "Π", `\Sigma`: "Σ", `\Upsilon`: "Υ",
	`\Phi`: "Φ", `\Psi`: "Ψ", `\Omega`: "Ω",
	`\times`: "×", `\div`: "÷", `\pm`: "±", `\mp`: "∓",
	`\cdot`: "⋅", `\infty`: "∞", `\leq`: "≤", `\geq`: "≥",
	`\neq`: "≠", `\approx`: "≈", `\equiv`: "≡",
	`\to`: "→", `\leftarrow`: "←", `\Rightarrow`: "⇒",
	`\partial`: "∂", `\nabla`: "∇", `\in`: "∈", `\notin`: "∉",
	`\subset`: "⊂", `\supset`: "⊃", `\cup`: "∪", `\cap`: "∩",
	`\forall`: "∀", `\exists`: "∃", `\emptyset`: "∅",
	`\ldots`: "…", `\cdots`: "⋯", `\prime`: "′",
}

var texFromChar = map[rune]string{}

var naryChars = map[string]string{
	`\sum`: "∑", `\prod`: "∏", `\int`: "∫",
}

var naryFromChar = map[string]string{}

var funcCommands = map[string]bool{
	"sin": true, "cos": true, "tan": true,
	"log": true, "ln": true, "exp": true, "lim": true,
}

func init() {
	for cmd, ch := range texSymbols {
		texFromChar[[]rune(ch)[0]] = cmd
	}
	for cmd, ch := range naryChars {
		naryFromChar[ch] = cmd
	}
}

// ---------------------------------------------------------------------------
// reading

// decodeMath converts the math markup of a paragraph block into the
// written formula. Several formulas in one paragraph concatenate.
func decodeMath(blk blocks.Block) string {
	var sb strings.Builder
	depth := 0
	start := 0
	for i, t := range blk.Tokens {
		if t.Name != "m:oMath" {
			continue
		}
		switch t.Kind {
		case blocks.Open:
			if depth == 0 {
				start = i + 1
			}
			depth++
		case blocks.Close:
			depth--
			if depth == 0 {
				sb.WriteString(ommlSequence(blk.Tokens[start:i]))
			}
		}
	}
	return sb.String()
}

func ommlSequence(toks []blocks.Token) string {
	children, _ := blocks.Group(toks)
	var sb strings.Builder
	for _, b := range children {
		sb.WriteString(ommlNode(b))
	}
	return sb.String()
}

func ommlInner(b blocks.Block) []blocks.Token {
	if len(b.Tokens) < 2 {
		return nil
	}
	return b.Tokens[1 : len(b.Tokens)-1]
}

// ommlChild returns the converted content of the first child element
// with the given name.
func ommlChild(b blocks.Block, name string) string {
	children, _ := blocks.Group(ommlInner(b))
	for _, c := range children {
		if c.Name == name {
			return ommlSequence(ommlInner(c))
		}
	}
	return ""
}

func ommlAttr(b blocks.Block, name, attr string) (string, bool) {
	for _, t := range b.Tokens {
		if t.Name == name && t.Kind != blocks.Close {
			return unescapeXML(t.Attr(attr)), true
		}
	}
	return "", false
}

func ommlNode(b blocks.Block) string {
	switch b.Name {
	case "m:r":
		return mathRunText(b)
	case "m:f":
		return `\frac{` + ommlChild(b, "m:num") + `}{` + ommlChild(b, "m:den") + `}`
	case "m:sSub":
		return ommlChild(b, "m:e") + "_{" + ommlChild(b, "m:sub") + "}"
	case "m:sSup":
		return ommlChild(b, "m:e") + "^{" + ommlChild(b, "m:sup") + "}"
	case "m:sSubSup":
		return ommlChild(b, "m:e") +
			"_{" + ommlChild(b, "m:sub") + "}" +
			"^{" + ommlChild(b, "m:sup") + "}"
	case "m:rad":
		arg := ommlChild(b, "m:e")
		if v, ok := ommlAttr(b, "m:degHide", "m:val"); ok && (v == "1" || v == "on" || v == "true") {
			return `\sqrt{` + arg + `}`
		}
		if deg := ommlChild(b, "m:deg"); deg != "" {
			return `\sqrt[` + deg + `]{` + arg + `}`
		}
		return `\sqrt{` + arg + `}`
	case "m:nary":
		op := `\int`
		if chr, ok := ommlAttr(b, "m:chr", "m:val"); ok && chr != "" {
			if cmd, known := naryFromChar[chr]; known {
				op = cmd
			}
		}
		out := op
		if sub := ommlChild(b, "m:sub"); sub != "" {
			out += "_{" + sub + "}"
		}
		if sup := ommlChild(b, "m:sup"); sup != "" {
			out += "^{" + sup + "}"
		}
		return out + ommlChild(b, "m:e")
	case "m:func":
		name := mathPlainText(b, "m:fName")
		arg := ommlChild(b, "m:e")
		if !funcCommands[name] {
			return name + arg
		}
		sep := " "
		if arg == "" || strings.HasPrefix(arg, " ") || strings.HasPrefix(arg, "{") {
			sep = ""
		}
		return `\` + name + sep + arg
	case "m:d":
		beg, end, sep := "(", ")", ","
		if v, ok := ommlAttr(b, "m:begChr", "m:val"); ok {
			beg = v
		}
		if v, ok := ommlAttr(b, "m:endChr", "m:val"); ok {
			end = v
		}
		if v, ok := ommlAttr(b, "m:sepChr", "m:val"); ok {
			sep = v
		}
		var parts []string
		children, _ := blocks.Group(ommlInner(b))
		for _, c := range children {
			if c.Name == "m:e" {
				parts = append(parts, ommlSequence(ommlInner(c)))
			}
		}
		return beg + strings.Join(parts, sep) + end
	case "m:e", "m:num", "m:den", "m:sub", "m:sup", "m:deg", "m:oMath", "m:oMathPara":
		return ommlSequence(ommlInner(b))
	}
	if strings.HasSuffix(b.Name, "Pr") {
		return ""
	}
	return ommlSequence(ommlInner(b))
}

// mathRunText reads the text of one math run, turning known symbol
// characters back into their commands. A command directly followed by
// a letter gets a separating space so it reads back as written.
func mathRunText(b blocks.Block) string {
	var sb strings.Builder
	in := false
	lastCmd := false
	for _, t := range b.Tokens {
		switch {
		case t.Name == "m:t":
			in = t.Kind == blocks.Open
		case t.Kind == blocks.Text && in:
			for _, r := range unescapeXML(t.Raw) {
				if cmd, ok := texFromChar[r]; ok {
					sb.WriteString(cmd)
					lastCmd = true
					continue
				}
				if lastCmd && unicode.IsLetter(r) {
					sb.WriteString(" ")
				}
				lastCmd = false
				sb.WriteRune(r)
			}
		}
	}
	return sb.String()
}

func mathPlainText(b blocks.Block, child string) string {
	children, _ := blocks.Group(ommlInner(b))
	for _, c := range children {
		if c.Name == child {
			var sb strings.Builder
			in := false
			for _, t := range c.Tokens {
				switch {
				case t.Name == "m:t":
					in = t.Kind == blocks.Open
				case t.Kind == blocks.Text && in:
					sb.WriteString(unescapeXML(t.Raw))
				}
			}
			return sb.String()
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// writing

// renderOMML writes the expression tree as math markup, the content of
// one m:oMath element. A script whose base is an n-ary operator folds
// into the operator's own limit slots.
func renderOMML(e *document.MathExpr) string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case document.MathRun:
		return mathRunXML(e.Text)
	case document.MathGroup:
		var sb strings.Builder
		for _, a := range e.Args {
			sb.WriteString(renderOMML(a))
		}
		return sb.String()
	case document.MathFrac:
		return "<m:f><m:num>" + renderOMML(e.Args[0]) +
			"</m:num><m:den>" + renderOMML(e.Args[1]) + "</m:den></m:f>"
	case document.MathSub:
		if e.Args[0].Kind == document.MathNary {
			return naryXML(e.Args[0].Text, e.Args[1], nil)
		}
		return "<m:sSub><m:e>" + renderOMML(e.Args[0]) +
			"</m:e><m:sub>" + renderOMML(e.Args[1]) + "</m:sub></m:sSub>"
	case document.MathSup:
		if e.Args[0].Kind == document.MathNary {
			return naryXML(e.Args[0].Text, nil, e.Args[1])
		}
		return "<m:sSup><m:e>" + renderOMML(e.Args[0]) +
			"</m:e><m:sup>" + renderOMML(e.Args[1]) + "</m:sup></m:sSup>"
	case document.MathSubSup:
		if e.Args[0].Kind == document.MathNary {
			return naryXML(e.Args[0].Text, e.Args[1], e.Args[2])
		}
		return "<m:sSubSup><m:e>" + renderOMML(e.Args[0]) +
			"</m:e><m:sub>" + renderOMML(e.Args[1]) +
			"</m:sub><m:sup>" + renderOMML(e.Args[2]) + "</m:sup></m:sSubSup>"
	case document.MathSqrt:
		if len(e.Args) == 2 {
			return "<m:rad><m:deg>" + renderOMML(e.Args[1]) +
				"</m:deg><m:e>" + renderOMML(e.Args[0]) + "</m:e></m:rad>"
		}
		return `<m:rad><m:radPr><m:degHide m:val="1"/></m:radPr><m:deg/><m:e>` +
			renderOMML(e.Args[0]) + "</m:e></m:rad>"
	case document.MathNary:
		return naryXML(e.Text, nil, nil)
	case document.MathFunc:
		name := strings.TrimPrefix(e.Text, `\`)
		return "<m:func><m:funcPr><m:ctrlPr/></m:funcPr><m:fName><m:r><m:t>" +
			escapeXML(name) + "</m:t></m:r></m:fName><m:e>" +
			renderOMML(e.Args[0]) + "</m:e></m:func>"
	}
	return ""
}

func naryXML(cmd string, sub, sup *document.MathExpr) string {
	var sb strings.Builder
	sb.WriteString("<m:nary><m:naryPr>")
	if cmd != `\int` {
		sb.WriteString(`<m:chr m:val="` + escapeAttr(naryChars[cmd]) + `"/>`)
	}
	sb.WriteString(`<m:limLoc m:val="subSup"/></m:naryPr>`)
	sb.WriteString("<m:sub>" + renderOMML(sub) + "</m:sub>")
	sb.WriteString("<m:sup>" + renderOMML(sup) + "</m:sup>")
	sb.WriteString("<m:e/></m:nary>")
	return sb.String()
}

// mathRunXML writes one literal run. Symbol commands become their
// characters; an escaped single keeps only the character itself.
func mathRunXML(text string) string {
	if text == "" {
		return ""
	}
	if ch, ok := texSymbols[text]; ok {
		text = ch
	} else if len(text) >= 2 && text[0] == '\\' {
		rs := []rune(text[1:])
		if len(rs) == 1 && !unicode.IsLetter(rs[0]) {
			text = string(rs)
		}
	}
	return "<m:r><m:t>" + escapeXML(text) + "</m:t></m:r>"
}
