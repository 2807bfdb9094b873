package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	lines := Split("<w:p><w:r><w:t>本文</w:t></w:r></w:p>")
	assert.Equal(t, []string{"<w:p>", "<w:r>", "<w:t>", "本文", "</w:t>", "</w:r>", "</w:p>"}, lines)

	// Newlines inside a part carry no meaning.
	lines = Split("<w:p>\n  <w:r/>\n</w:p>")
	assert.Equal(t, []string{"<w:p>", "  ", "<w:r/>", "</w:p>"}, lines)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		kind Kind
		name string
	}{
		{"<w:p>", Open, "w:p"},
		{`<w:p w14:paraId="3F2A">`, Open, "w:p"},
		{"</w:p>", Close, "w:p"},
		{"<w:br/>", SelfClose, "w:br"},
		{`<w:pStyle w:val="makdo"/>`, SelfClose, "w:pStyle"},
		{"本文", Text, ""},
		{`<?xml version="1.0"?>`, SelfClose, ""},
	}
	for _, tt := range tests {
		tok := Classify(tt.line)
		assert.Equal(t, tt.kind, tok.Kind, tt.line)
		assert.Equal(t, tt.name, tok.Name, tt.line)
	}
}

func TestBody(t *testing.T) {
	tokens := Tokenize(`<w:document><w:body><w:p></w:p></w:body></w:document>`)
	body := Body("w:body", tokens)
	require.Len(t, body, 2)
	assert.Equal(t, "w:p", body[0].Name)
}

func TestGroup(t *testing.T) {
	t.Run("siblings", func(t *testing.T) {
		tokens := Tokenize(`<w:p><w:r/></w:p><w:sectPr/><w:p></w:p>`)
		groups, err := Group(tokens)
		require.NoError(t, err)
		require.Len(t, groups, 3)
		assert.Equal(t, "w:p", groups[0].Name)
		assert.Len(t, groups[0].Tokens, 3)
		assert.Equal(t, "w:sectPr", groups[1].Name)
		assert.Equal(t, "w:p", groups[2].Name)
	})

	t.Run("nested same name", func(t *testing.T) {
		tokens := Tokenize(`<w:tbl><w:tc><w:tbl></w:tbl></w:tc></w:tbl><w:p/>`)
		groups, err := Group(tokens)
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, "w:tbl", groups[0].Name)
		assert.Len(t, groups[0].Tokens, 6)
	})

	t.Run("astray text becomes its own block", func(t *testing.T) {
		tokens := Tokenize(`<w:p></w:p>astray<w:p></w:p>`)
		groups, err := Group(tokens)
		require.NoError(t, err)
		require.Len(t, groups, 3)
		assert.Equal(t, "", groups[1].Name)
		assert.Equal(t, "astray", groups[1].Text())
	})

	t.Run("unclosed element", func(t *testing.T) {
		tokens := Tokenize(`<w:p/><w:tbl><w:tr>`)
		groups, err := Group(tokens)
		assert.ErrorIs(t, err, ErrUnclosedElement)
		require.Len(t, groups, 2)
		assert.Equal(t, "w:tbl", groups[1].Name)
	})

	t.Run("stray close stands alone", func(t *testing.T) {
		tokens := Tokenize(`</w:p><w:p/>`)
		groups, err := Group(tokens)
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, Close, groups[0].Kind())
	})

	t.Run("boundary flushes text and stays inside elements", func(t *testing.T) {
		tokens := []Token{
			{Kind: Text, Raw: "一行目"},
			{Kind: Text, Raw: "二行目"},
			{Kind: Boundary},
			{Kind: Open, Name: "pre", Raw: "```"},
			{Kind: Text, Raw: "コード"},
			{Kind: Boundary},
			{Kind: Text, Raw: "続き"},
			{Kind: Close, Name: "pre", Raw: "```"},
		}
		groups, err := Group(tokens)
		require.NoError(t, err)
		require.Len(t, groups, 3)
		assert.Equal(t, "一行目二行目", groups[0].Text())
		assert.Equal(t, Boundary, groups[1].Kind())
		assert.Equal(t, "pre", groups[2].Name)
		assert.Len(t, groups[2].Tokens, 5)
	})
}

func TestAttrs(t *testing.T) {
	tok := Classify(`<w:spacing w:line="360" w:lineRule="auto" w:before='120'/>`)
	assert.Equal(t, "360", tok.Attr("w:line"))
	assert.Equal(t, "auto", tok.Attr("w:lineRule"))
	assert.Equal(t, "120", tok.Attr("w:before"))
	assert.Equal(t, "", tok.Attr("w:after"))

	assert.Equal(t, 360, tok.IntAttr("w:line", 0))
	assert.Equal(t, 240, tok.IntAttr("w:after", 240))
	assert.InDelta(t, 360.0, tok.FloatAttr("w:line", 0), 1e-9)

	on := Classify(`<w:autoSpaceDE w:val="TRUE"/>`)
	assert.True(t, on.BoolAttr("w:val", false))
	off := Classify(`<w:autoSpaceDE w:val="0"/>`)
	assert.False(t, off.BoolAttr("w:val", true))
	missing := Classify(`<w:autoSpaceDE/>`)
	assert.True(t, missing.BoolAttr("w:val", true))
}
