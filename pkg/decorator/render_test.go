package decorator

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"asterisk", "100*200", `100\*200`},
		{"double dash", "a--b", `a\-\-b`},
		{"triple dash", "x---", `x\-\-\-`},
		{"double plus", "a++b", `a\+\+b`},
		{"strike", "~~x~~", `\~\~x\~\~`},
		{"backtick", "a`b", "a\\`b"},
		{"url survives", "http://example.com", "http://example.com"},
		{"bare slashes", "A//B", `A\/\/B`},
		{"underline pair", "_.-_", `\_.-\_`},
		{"underline pair with dashes", "_--_", `\_\-\-\_`},
		{"color pair", "^R^", `\^R\^`},
		{"empty color pair", "^^", `\^\^`},
		{"highlight pair", "_Y_", `\_Y\_`},
		{"font pair", "@MS明朝@", `\@MS明朝\@`},
		{"frame pair", "[|x|]", `[\|x\|]`},
		{"frame brackets joined", "[|]", `[\|]`},
		{"angle brackets", "5<3>1", `5\<3\>1`},
		{"arrow", "a->b", `a-\>b`},
		{"subscript open", "x_{2}", `x\_{2\}`},
		{"closing brace", "a}_b", `a\}_b`},
		{"backslash", `C:\tmp`, `C:\\tmp`},
		{"plain", "そのまま", "そのまま"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeText(tt.in))
		})
	}
}

func TestEscapeTextRoundTrip(t *testing.T) {
	// Whatever the text, escaping must make it scan back as literal text.
	inputs := []string{
		"a**b", "*i*", "--s--", "_Y_", "^red^", "^^", "@F@",
		"~~s~~", "[|f|]", ">>n<<", "x^{2}^", "E=mc^{2}", "+>t<+", "->d<-",
		`back\slash`,
	}
	for _, in := range inputs {
		spans, warnings := Split(EscapeText(in), Stack{})
		assert.Empty(t, warnings, "input %q", in)
		if assert.Len(t, spans, 1, "input %q", in) {
			assert.Equal(t, in, spans[0].Text, "input %q", in)
			assert.True(t, spans[0].Style.IsZero(), "input %q", in)
		}
	}
}

func TestEncodeIVS(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"selector", "葛" + string(rune(0xE0100+10)), "葛10;"},
		{"selector zero", "字" + string(rune(0xE0100)), "字0;"},
		{"literal digits guarded", "No2;", `No\2;`},
		{"digits at start stay", "2;", "2;"},
		{"no digits", "abc", "abc"},
		{"digits without semicolon", "a12b", "a12b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeIVS(tt.in))
		})
	}
}

func TestJoinRuns(t *testing.T) {
	tests := []struct {
		name  string
		left  string
		right string
		wantL string
		wantR string
	}{
		{"bold", "a**", "**b", "a", "b"},
		{"italic", "a*", "*b", "a", "b"},
		{"italic bold", "a***", "***b", "a", "b"},
		{"star run too short", "***", "***b", "***", "***b"},
		{"strike", "a~~", "~~", "a", ""},
		{"gothic", "a`", "`b", "a", "b"},
		{"xsmall", "x---", "---y", "x", "y"},
		{"small", "x--", "--y", "x", "y"},
		{"mixed grades keep", "x---", "--y", "x---", "--y"},
		{"mixed grades keep reversed", "x--", "---y", "x--", "---y"},
		{"xlarge", "x+++", "+++y", "x", "y"},
		{"narrow", "a<<", ">>b", "a", "b"},
		{"wide", "a>>", "<<b", "a", "b"},
		{"xnarrow", "a<<<", ">>>b", "a", "b"},
		{"width grades keep", "a<<<", ">>b", "a<<<", ">>b"},
		{"width grades keep reversed", "a>>", "<<<b", "a>>", "<<<b"},
		{"frame", "a|]", "[|b", "a", "b"},
		{"underline", "a_$_", "_$_b", "a", "b"},
		{"underline codes differ", "a_$_", "_=_b", "a_$_", "_=_b"},
		{"color", "a^red^", "^red^b", "a", "b"},
		{"white", "a^^", "^^b", "a", "b"},
		{"highlight", "a_Y_", "_Y_b", "a", "b"},
		{"font", "a@F@", "@F@b", "a", "b"},
		{"superscript", "mc}^", "^{2", "mc", "2"},
		{"subscript", "H}_", "_{2", "H", "2"},
		{"deleted track", "del<-", "->more", "del", "more"},
		{"inserted track", "ins<+", "+>more", "ins", "more"},
		{"chained", "a~~**", "**~~b", "a", "b"},
		{"nothing to cancel", "a**", "*b", "a**", "*b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, r := JoinRuns(tt.left, tt.right)
			assert.Equal(t, tt.wantL, l)
			assert.Equal(t, tt.wantR, r)
		})
	}
}

func TestTidy(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty bold pair", "** **", " "},
		{"empty italic around strike", "*~~*", "~~"},
		{"empty color pair", "^red^ ^red^", " "},
		{"leading decoration moves in", "** bold", " **bold"},
		{"trailing decoration moves in", "bold **", "bold** "},
		{"stable text untouched", "a **b** c", "a **b** c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tidy(tt.in))
		})
	}
}

func TestGuardSpaces(t *testing.T) {
	assert.Equal(t, `\ a`, GuardSpaces(" a"))
	assert.Equal(t, `a \`, GuardSpaces("a "))
	assert.Equal(t, `\　a`, GuardSpaces("　a"))
	assert.Equal(t, "a", GuardSpaces("a"))
	assert.Equal(t, "", GuardSpaces(""))
}

func TestTokenPattern(t *testing.T) {
	re := regexp.MustCompile("^(?:" + TokenPattern + ")+$")
	assert.True(t, re.MatchString("***"))
	assert.True(t, re.MatchString("--^red^_Y_@F@`"))
	assert.True(t, re.MatchString("+><-~~"))
	assert.True(t, re.MatchString("_.-_[|>>"))
	assert.False(t, re.MatchString("abc"))
	assert.False(t, re.MatchString(""))
}
