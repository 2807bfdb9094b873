// Package decorator implements the inline decoration codec of the markup
// dialect: the fixed set of character attributes a run can carry (font name,
// scale, width, italic, bold, strike, frame, underline, font color,
// highlight, subscript/superscript and change tracking) and the toggle
// tokens that encode them in plain text.
//
// Encoding is canonical: Open and Close emit tokens in a fixed order so two
// attribute sets produce the same token string exactly when they are equal.
// Decoding is done by Scanner, which splits markup text into styled spans.
package decorator

// Scale is the font size class relative to the base size.
type Scale int

const (
	ScaleNone   Scale = iota
	ScaleXSmall       // ---  0.6x
	ScaleSmall        // --   0.8x
	ScaleLarge        // ++   1.2x
	ScaleXLarge       // +++  1.4x
)

// Ratio returns the size multiplier applied to the base font size.
func (s Scale) Ratio() float64 {
	switch s {
	case ScaleXSmall:
		return 0.6
	case ScaleSmall:
		return 0.8
	case ScaleLarge:
		return 1.2
	case ScaleXLarge:
		return 1.4
	}
	return 1.0
}

// Token returns the markup toggle for the class, or "" for ScaleNone.
func (s Scale) Token() string {
	switch s {
	case ScaleXSmall:
		return "---"
	case ScaleSmall:
		return "--"
	case ScaleLarge:
		return "++"
	case ScaleXLarge:
		return "+++"
	}
	return ""
}

// ScaleFromSize classifies a concrete font size against the base size.
// Sizes within 10% of the base are treated as unscaled.
func ScaleFromSize(size, base float64) Scale {
	if size <= 0 || base <= 0 {
		return ScaleNone
	}
	switch {
	case size < base*0.7:
		return ScaleXSmall
	case size < base*0.9:
		return ScaleSmall
	case size > base*1.3:
		return ScaleXLarge
	case size > base*1.1:
		return ScaleLarge
	}
	return ScaleNone
}

// Width is the character width class (horizontal scaling).
type Width int

const (
	WidthNone    Width = iota
	WidthXNarrow       // >>>  60%
	WidthNarrow        // >>   80%
	WidthWide          // <<  120%
	WidthXWide         // <<< 140%
)

// Percent returns the horizontal scaling percentage written to the document.
func (w Width) Percent() int {
	switch w {
	case WidthXNarrow:
		return 60
	case WidthNarrow:
		return 80
	case WidthWide:
		return 120
	case WidthXWide:
		return 140
	}
	return 100
}

// Token returns the markup opening toggle for the class, or "" for
// WidthNone.
func (w Width) Token() string {
	switch w {
	case WidthXNarrow:
		return ">>>"
	case WidthNarrow:
		return ">>"
	case WidthWide:
		return "<<"
	case WidthXWide:
		return "<<<"
	}
	return ""
}

// Mirror returns the class whose opening token closes this one: the
// width tokens pair off (>>text<< narrow, <<text>> wide), so a narrow
// span closes with the wide opener and the other way round.
func (w Width) Mirror() Width {
	switch w {
	case WidthXNarrow:
		return WidthXWide
	case WidthNarrow:
		return WidthWide
	case WidthWide:
		return WidthNarrow
	case WidthXWide:
		return WidthXNarrow
	}
	return WidthNone
}

// WidthFromPercent classifies a horizontal scaling percentage.
func WidthFromPercent(pct float64) Width {
	if pct <= 0 {
		return WidthNone
	}
	switch {
	case pct < 70:
		return WidthXNarrow
	case pct < 90:
		return WidthNarrow
	case pct > 130:
		return WidthXWide
	case pct > 110:
		return WidthWide
	}
	return WidthNone
}

// Script marks subscript or superscript text.
type Script int

const (
	ScriptNone Script = iota
	ScriptSub         // _{ ... } (}_ accepted too)
	ScriptSup         // ^{ ... } (}^ accepted too)
)

// Vert returns the document vertical alignment value, or "" for ScriptNone.
func (s Script) Vert() string {
	switch s {
	case ScriptSub:
		return "subscript"
	case ScriptSup:
		return "superscript"
	}
	return ""
}

// ScriptFromVert maps a document vertical alignment value to a Script.
func ScriptFromVert(v string) Script {
	switch v {
	case "subscript":
		return ScriptSub
	case "superscript":
		return ScriptSup
	}
	return ScriptNone
}

// Track marks change-tracked text.
type Track int

const (
	TrackNone     Track = iota
	TrackInserted       // +> ... <+
	TrackDeleted        // -> ... <-
)

// Stack holds at most one value per decoration attribute. The zero value is
// undecorated text.
type Stack struct {
	FontName  string // alternative font, "" for the document font
	Gothic    bool   // gothic (monospace) font, toggled by `
	Scale     Scale
	Width     Width
	Italic    bool
	Bold      bool
	Strike    bool
	Frame     bool   // character border, [| ... |]
	Underline string // underline style name ("single", "wave", ...), "" for none
	FontColor string // upper-case RRGGBB, "" for the default color
	Highlight string // highlight color name, "" for none
	Script    Script
	Track     Track
}

// IsZero reports whether no attribute is set.
func (s Stack) IsZero() bool {
	return s == Stack{}
}

// Open returns the opening tokens for every set attribute, in canonical
// order: font name, scale, width, italic, bold, strike, frame, underline,
// font color, highlight, script, change tracking.
func (s Stack) Open() string {
	t := ""
	if s.FontName != "" {
		t += "@" + s.FontName + "@"
	}
	if s.Gothic {
		t += "`"
	}
	t += s.Scale.Token()
	t += s.Width.Token()
	if s.Italic {
		t += "*"
	}
	if s.Bold {
		t += "**"
	}
	if s.Strike {
		t += "~~"
	}
	if s.Frame {
		t += "[|"
	}
	if s.Underline != "" {
		if code, ok := underlineCode(s.Underline); ok {
			t += "_" + code + "_"
		}
	}
	if s.FontColor != "" {
		t += colorToken(s.FontColor)
	}
	if s.Highlight != "" {
		t += "_" + s.Highlight + "_"
	}
	switch s.Script {
	case ScriptSub:
		t += "_{"
	case ScriptSup:
		t += "^{"
	}
	switch s.Track {
	case TrackInserted:
		t += "+>"
	case TrackDeleted:
		t += "->"
	}
	return t
}

// Close returns the closing tokens for every set attribute, mirroring Open
// in reverse order so that Open(s) + text + Close(s) nests correctly.
func (s Stack) Close() string {
	t := ""
	switch s.Track {
	case TrackInserted:
		t += "<+"
	case TrackDeleted:
		t += "<-"
	}
	switch s.Script {
	case ScriptSub:
		t += "}_"
	case ScriptSup:
		t += "}^"
	}
	if s.Highlight != "" {
		t += "_" + s.Highlight + "_"
	}
	if s.FontColor != "" {
		t += colorToken(s.FontColor)
	}
	if s.Underline != "" {
		if code, ok := underlineCode(s.Underline); ok {
			t += "_" + code + "_"
		}
	}
	if s.Frame {
		t += "|]"
	}
	if s.Strike {
		t += "~~"
	}
	if s.Bold {
		t += "**"
	}
	if s.Italic {
		t += "*"
	}
	t += s.Width.Mirror().Token()
	t += s.Scale.Token()
	if s.Gothic {
		t += "`"
	}
	if s.FontName != "" {
		t += "@" + s.FontName + "@"
	}
	return t
}

// Wrap surrounds text with the opening and closing tokens for the stack.
func Wrap(text string, s Stack) string {
	return s.Open() + text + s.Close()
}

// String returns the canonical opening token sequence.
func (s Stack) String() string {
	return s.Open()
}
