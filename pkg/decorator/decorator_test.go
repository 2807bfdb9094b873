package decorator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackOpenClose(t *testing.T) {
	tests := []struct {
		name  string
		stack Stack
		open  string
		close string
	}{
		{
			name:  "zero",
			stack: Stack{},
			open:  "",
			close: "",
		},
		{
			name:  "bold",
			stack: Stack{Bold: true},
			open:  "**",
			close: "**",
		},
		{
			name:  "italic bold",
			stack: Stack{Italic: true, Bold: true},
			open:  "***",
			close: "***",
		},
		{
			name:  "scale and strike",
			stack: Stack{Scale: ScaleXSmall, Strike: true},
			open:  "---~~",
			close: "~~---",
		},
		{
			name:  "narrow closes with the wide token",
			stack: Stack{Width: WidthNarrow},
			open:  ">>",
			close: "<<",
		},
		{
			name:  "xwide closes with the xnarrow token",
			stack: Stack{Width: WidthXWide},
			open:  "<<<",
			close: ">>>",
		},
		{
			name:  "underline single",
			stack: Stack{Underline: "single"},
			open:  "__",
			close: "__",
		},
		{
			name:  "underline wave heavy",
			stack: Stack{Underline: "wavyHeavy"},
			open:  "_~#_",
			close: "_~#_",
		},
		{
			name:  "white is the short color token",
			stack: Stack{FontColor: "FFFFFF"},
			open:  "^^",
			close: "^^",
		},
		{
			name:  "named color",
			stack: Stack{FontColor: "FF0000"},
			open:  "^red^",
			close: "^red^",
		},
		{
			name:  "legacy dark tone decodes to its name",
			stack: Stack{FontColor: "770000"},
			open:  "^darkRed^",
			close: "^darkRed^",
		},
		{
			name:  "unnamed color stays hex",
			stack: Stack{FontColor: "123ABC"},
			open:  "^123ABC^",
			close: "^123ABC^",
		},
		{
			name: "everything in canonical order",
			stack: Stack{
				FontName:  "F",
				Gothic:    true,
				Scale:     ScaleXLarge,
				Width:     WidthWide,
				Italic:    true,
				Bold:      true,
				Strike:    true,
				Frame:     true,
				Underline: "single",
				FontColor: "FF0000",
				Highlight: "yellow",
				Script:    ScriptSup,
				Track:     TrackInserted,
			},
			open:  "@F@`+++<<***~~[|__^red^_yellow_^{+>",
			close: "<+}^_yellow_^red^__|]~~***>>+++`@F@",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.open, tt.stack.Open())
			assert.Equal(t, tt.close, tt.stack.Close())
			assert.Equal(t, tt.open+"text"+tt.close, Wrap("text", tt.stack))
		})
	}
}

func TestStackIsZero(t *testing.T) {
	assert.True(t, Stack{}.IsZero())
	assert.False(t, Stack{Bold: true}.IsZero())
	assert.False(t, Stack{FontColor: "FF0000"}.IsZero())
}

func TestScaleFromSize(t *testing.T) {
	tests := []struct {
		size float64
		base float64
		want Scale
	}{
		{7.2, 12, ScaleXSmall},
		{9.6, 12, ScaleSmall},
		{12, 12, ScaleNone},
		{14.4, 12, ScaleLarge},
		{16.8, 12, ScaleXLarge},
		{12, 0, ScaleNone},
		{0, 12, ScaleNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScaleFromSize(tt.size, tt.base),
			"size %v base %v", tt.size, tt.base)
	}
}

func TestScaleRatioToken(t *testing.T) {
	assert.Equal(t, 0.6, ScaleXSmall.Ratio())
	assert.Equal(t, 0.8, ScaleSmall.Ratio())
	assert.Equal(t, 1.0, ScaleNone.Ratio())
	assert.Equal(t, 1.2, ScaleLarge.Ratio())
	assert.Equal(t, 1.4, ScaleXLarge.Ratio())
	assert.Equal(t, "---", ScaleXSmall.Token())
	assert.Equal(t, "", ScaleNone.Token())
}

func TestWidthFromPercent(t *testing.T) {
	tests := []struct {
		pct  float64
		want Width
	}{
		{60, WidthXNarrow},
		{80, WidthNarrow},
		{100, WidthNone},
		{120, WidthWide},
		{140, WidthXWide},
		{0, WidthNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WidthFromPercent(tt.pct), "pct %v", tt.pct)
	}
}

func TestWidthPercentToken(t *testing.T) {
	assert.Equal(t, 60, WidthXNarrow.Percent())
	assert.Equal(t, 100, WidthNone.Percent())
	assert.Equal(t, 140, WidthXWide.Percent())
	assert.Equal(t, ">>>", WidthXNarrow.Token())
	assert.Equal(t, "<<", WidthWide.Token())
}

func TestWidthMirror(t *testing.T) {
	assert.Equal(t, WidthXWide, WidthXNarrow.Mirror())
	assert.Equal(t, WidthWide, WidthNarrow.Mirror())
	assert.Equal(t, WidthNarrow, WidthWide.Mirror())
	assert.Equal(t, WidthXNarrow, WidthXWide.Mirror())
	assert.Equal(t, WidthNone, WidthNone.Mirror())
}

func TestWrapWidthScansBack(t *testing.T) {
	for _, w := range []Width{WidthXNarrow, WidthNarrow, WidthWide, WidthXWide} {
		in := Wrap("字", Stack{Width: w})
		spans, warnings := Split(in, Stack{})
		assert.Empty(t, warnings, "input %q", in)
		assert.Equal(t, []Span{{Kind: SpanText, Text: "字", Style: Stack{Width: w}}}, spans,
			"input %q", in)
	}
}

func TestScriptVert(t *testing.T) {
	assert.Equal(t, "superscript", ScriptSup.Vert())
	assert.Equal(t, "subscript", ScriptSub.Vert())
	assert.Equal(t, "", ScriptNone.Vert())
	assert.Equal(t, ScriptSup, ScriptFromVert("superscript"))
	assert.Equal(t, ScriptSub, ScriptFromVert("subscript"))
	assert.Equal(t, ScriptNone, ScriptFromVert("baseline"))
}

func TestUnderlineTable(t *testing.T) {
	for style, code := range underlineCodes {
		back, ok := underlineStyle(code)
		require.True(t, ok, "code %q", code)
		assert.Equal(t, style, back)
	}
	_, ok := underlineStyle("-----")
	assert.False(t, ok)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		body string
		want string
		ok   bool
	}{
		{"", "FFFFFF", true},
		{"red", "FF0000", true},
		{"R", "FF0000", true},
		{"darkRed", "7F0000", true},
		{"a120", "00B200", true},
		{"F0F", "FF00FF", true},
		{"12AB34", "12AB34", true},
		{"notacolor", "", false},
		{"12ab34", "", false},
	}
	for _, tt := range tests {
		got, ok := parseColor(tt.body)
		assert.Equal(t, tt.ok, ok, "body %q", tt.body)
		if tt.ok {
			assert.Equal(t, tt.want, got, "body %q", tt.body)
		}
	}
}

func TestColorTokenLegacyTones(t *testing.T) {
	// Files written with the older palette carry 0x77 dark tones; both
	// spellings must come back as the same name.
	assert.Equal(t, "^darkRed^", colorToken("7F0000"))
	assert.Equal(t, "^darkRed^", colorToken("770000"))
	assert.Equal(t, "^lightGray^", colorToken("BFBFBF"))
	assert.Equal(t, "^lightGray^", colorToken("BBBBBB"))
	// The name resolves to the current tone on the way back in.
	hex, ok := parseColor("darkRed")
	require.True(t, ok)
	assert.Equal(t, "7F0000", hex)
}

func TestParseHighlight(t *testing.T) {
	tests := []struct {
		body string
		want string
		ok   bool
	}{
		{"yellow", "yellow", true},
		{"Y", "yellow", true},
		{"DM", "darkMagenta", true},
		{"lightGray", "lightGray", true},
		{"G1", "lightGray", true},
		{"BK", "black", true},
		{"mauve", "", false},
	}
	for _, tt := range tests {
		got, ok := parseHighlight(tt.body)
		assert.Equal(t, tt.ok, ok, "body %q", tt.body)
		if tt.ok {
			assert.Equal(t, tt.want, got, "body %q", tt.body)
		}
	}
}
