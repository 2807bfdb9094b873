package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMath(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind MathKind
	}{
		{"literal run", "abc+1", MathRun},
		{"superscript", "x^2", MathSup},
		{"subscript", "x_i", MathSub},
		{"both scripts", "x_i^2", MathSubSup},
		{"fraction", `\frac{a}{b}`, MathFrac},
		{"square root", `\sqrt{x}`, MathSqrt},
		{"root with degree", `\sqrt[3]{x}`, MathSqrt},
		{"symbol command", `\alpha`, MathRun},
		{"escaped char", `\%`, MathRun},
		{"function", `\sin{x}`, MathFunc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := ParseMath(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, expr.Kind)
		})
	}
}

func TestParseMathString(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"run", "a+b", "a+b"},
		{"superscript braces", "x^2", "x^{2}"},
		{"script order is canonical", "x^2_i", "x_{i}^{2}"},
		{"fraction", `\frac{a}{b+1}`, `\frac{a}{b+1}`},
		{"nested fraction", `\frac{1}{\frac{1}{x}}`, `\frac{1}{\frac{1}{x}}`},
		{"root", `\sqrt{x+1}`, `\sqrt{x+1}`},
		{"root with degree", `\sqrt[3]{x}`, `\sqrt[3]{x}`},
		{"nary with limits", `\sum_{k=1}^{n}k`, `\sum_{k=1}^{n}k`},
		{"integral", `\int_{0}^{1}x`, `\int_{0}^{1}x`},
		{"function", `\cos\theta`, `\cos \theta`},
		{"group flattens", "{ab}", "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := ParseMath(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, expr.String())
		})
	}
}

func TestParseMathErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unclosed brace", "{a"},
		{"stray close", "a}b"},
		{"dangling superscript", "x^"},
		{"dangling subscript", "x_"},
		{"fraction missing argument", `\frac{a}`},
		{"root missing argument", `\sqrt`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMath(tt.src)
			assert.Error(t, err)
		})
	}
}

func TestParseMathDepthCap(t *testing.T) {
	src := strings.Repeat("{", 40) + "a" + strings.Repeat("}", 40)
	_, err := ParseMath(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nested deeper")
}

func TestMathExprNilString(t *testing.T) {
	var e *MathExpr
	assert.Equal(t, "", e.String())
}
