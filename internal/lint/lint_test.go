package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findRule(issues []*Issue, rule string) []*Issue {
	var out []*Issue
	for _, i := range issues {
		if i.Rule == rule {
			out = append(out, i)
		}
	}
	return out
}

func TestTrailingSpace(t *testing.T) {
	l := New(nil)
	issues := l.Check([]byte("第一の商品 \n次の行\n"))

	found := findRule(issues, "trailing-space")
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].Line)
	assert.True(t, found[0].CanFix)

	fixed, _, err := l.Fix([]byte("第一の商品 \n次の行\n"))
	require.NoError(t, err)
	assert.Equal(t, "第一の商品\n次の行\n", string(fixed))
}

func TestTabInTable(t *testing.T) {
	l := New(nil)
	src := []byte("|品名\t|数量|\n|=|=|\n")

	issues := l.Check(src)
	found := findRule(issues, "tab-in-table")
	require.Len(t, found, 1)
	assert.Equal(t, SeverityError, found[0].Severity)

	fixed, _, err := l.Fix(src)
	require.NoError(t, err)
	assert.NotContains(t, string(fixed), "\t")
}

func TestUnclosedFence(t *testing.T) {
	l := New(nil)
	issues := l.Check([]byte("本文\n\n``` 手順\nステップ1\n"))

	found := findRule(issues, "unclosed-fence")
	require.Len(t, found, 1)
	assert.Equal(t, 3, found[0].Line)
	assert.False(t, found[0].CanFix)
}

func TestUnclosedDecorator(t *testing.T) {
	l := New(nil)
	issues := l.Check([]byte("これは**太字のまま\n"))

	found := findRule(issues, "unclosed-decorator")
	require.Len(t, found, 1)
	assert.Contains(t, found[0].Message, "**")
}

func TestFencedBodyExempt(t *testing.T) {
	l := New(nil)
	// Trailing spaces and bold markers inside a fence are literal.
	src := []byte("```\n**生のまま \n```\n")
	issues := l.Check(src)
	assert.Empty(t, findRule(issues, "trailing-space"))
	assert.Empty(t, findRule(issues, "unclosed-decorator"))

	fixed, _, err := l.Fix(src)
	require.NoError(t, err)
	assert.Equal(t, string(src), string(fixed))
}

func TestDepthJump(t *testing.T) {
	l := New(nil)
	issues := l.Check([]byte("# 契約書\n\n#### いきなり第四層\n"))

	found := findRule(issues, "depth-jump")
	require.Len(t, found, 1)
	assert.Equal(t, 3, found[0].Line)
}

func TestFullwidthIndent(t *testing.T) {
	l := New(nil)
	src := []byte("- 第一\n 　- 第二\n")

	issues := l.Check(src)
	found := findRule(issues, "fullwidth-indent")
	require.Len(t, found, 1)

	fixed, _, err := l.Fix(src)
	require.NoError(t, err)
	assert.Equal(t, "- 第一\n   - 第二\n", string(fixed))
}

func TestCleanSource(t *testing.T) {
	l := New(nil)
	issues := l.Check([]byte("# 取引契約書\n\n## 目的\n\n本契約の目的は次のとおりとする。\n"))
	assert.Empty(t, issues)
}
