package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/nerdneilsfield/go-docx-md/pkg/document"
)

func TestDecodeBytes(t *testing.T) {
	got, err := DecodeBytes([]byte("\ufeffこんにちは\r\n世界\r"))
	require.NoError(t, err)
	assert.Equal(t, "こんにちは\n世界\n", got)

	sjis, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte("売買契約書"))
	require.NoError(t, err)
	got, err = DecodeBytes(sjis)
	require.NoError(t, err)
	assert.Equal(t, "売買契約書", got)
}

func TestTrimTail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"本文です。  ", "本文です。<br>"},
		{"本文です。 ", "本文です。"},
		{"本文です。\t", "本文です。<br>"},
		{"本文です。　", "本文です。<br>"},
		{"令和六年 :  ", "令和六年 :"},
		{"そのまま", "そのまま"},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, trimTail(tt.in), tt.in)
	}
}

func TestStripComments(t *testing.T) {
	clean, comments, conf := stripComments("<!-- 書題名: 契約 -->\n本文 <!-- 要確認 -->です\n")
	assert.Equal(t, "\n本文 です\n", clean)
	require.Len(t, conf, 1)
	assert.Equal(t, " 書題名: 契約 ", conf[0])
	require.Len(t, comments[1], 1)
	assert.Equal(t, " 要確認 ", comments[1][0])

	clean, _, conf = stripComments(`\<!-- 残る`)
	assert.Equal(t, `\<!-- 残る`, clean)
	assert.Empty(t, conf)
}

func TestChunkLines(t *testing.T) {
	lines := []string{"一", "二", "", "```go", "", "x", "```", "", "三"}
	chunks := chunkLines(lines)
	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"一", "二"}, chunks[0].lines)
	assert.True(t, chunks[1].fenced)
	assert.Equal(t, []string{"```go", "", "x", "```"}, chunks[1].lines)
	assert.Equal(t, []string{"三"}, chunks[2].lines)
}

const sampleMarkup = `<!--
書題名: テスト契約
文書式: 契約
-->

# 売買契約書

## 目的

v=1
本文です。

- 項目一
- 項目二

|A|B|
|C|D|
`

func TestParse(t *testing.T) {
	p := NewParser(nil)
	doc, err := p.Parse([]byte(sampleMarkup))
	require.NoError(t, err)
	assert.Equal(t, "テスト契約", doc.Form.DocumentTitle)
	assert.Equal(t, "k", doc.Form.DocumentStyle)
	require.Len(t, doc.Paragraphs, 6)

	title := doc.Paragraphs[0]
	assert.Equal(t, document.ClassSection, title.Class)
	assert.Equal(t, 1, title.HeadDepth)
	assert.Equal(t, "売買契約書", title.Text)
	assert.Equal(t, "", title.HeadString)

	art := doc.Paragraphs[1]
	assert.Equal(t, document.ClassSection, art.Class)
	assert.Equal(t, 2, art.HeadDepth)
	assert.Equal(t, "第１条", art.HeadString)

	body := doc.Paragraphs[2]
	assert.Equal(t, document.ClassSentence, body.Class)
	assert.Equal(t, []string{"v=1"}, body.LengthRevisers)
	assert.Equal(t, 1.0, body.Lengths.Revi.SpaceBefore)
	assert.Equal(t, 2, body.HeadDepth)
	assert.Equal(t, "本文です。", body.Text)

	item := doc.Paragraphs[3]
	assert.Equal(t, document.ClassList, item.Class)
	assert.Equal(t, "・", item.HeadString)
	assert.Equal(t, "項目一", item.Text)

	tab := doc.Paragraphs[5]
	assert.Equal(t, document.ClassTable, tab.Class)
	require.NotNil(t, tab.Table)
	assert.Len(t, tab.Table.Rows, 2)
}

func TestParseNumberingReviser(t *testing.T) {
	p := NewParser(nil)
	doc, err := p.Parse([]byte("$=2\n$ 総則\n"))
	require.NoError(t, err)
	require.Len(t, doc.Paragraphs, 1)
	ch := doc.Paragraphs[0]
	assert.Equal(t, document.ClassChapter, ch.Class)
	assert.Equal(t, []string{"$=2"}, ch.NumberingRevisers)
	assert.Equal(t, "第２編", ch.HeadString)
	assert.Equal(t, "総則", ch.Text)
}

func TestParseDepthSetter(t *testing.T) {
	p := NewParser(nil)
	doc, err := p.Parse([]byte("###\nぶら下がる文章です。\n"))
	require.NoError(t, err)
	require.Len(t, doc.Paragraphs, 1)
	s := doc.Paragraphs[0]
	assert.Equal(t, document.ClassSentence, s.Class)
	assert.Equal(t, []string{"###"}, s.DepthSetters)
	assert.Equal(t, 3, s.HeadDepth)
	assert.Equal(t, 3, s.TailDepth)
}

func TestParseNumberedList(t *testing.T) {
	p := NewParser(nil)
	doc, err := p.Parse([]byte("1. 一番\n\n1. 二番\n"))
	require.NoError(t, err)
	require.Len(t, doc.Paragraphs, 2)
	assert.Equal(t, "①", doc.Paragraphs[0].HeadString)
	assert.Equal(t, "②", doc.Paragraphs[1].HeadString)
}

func TestParseAmbientDecoration(t *testing.T) {
	p := NewParser(nil)
	doc, err := p.Parse([]byte("**\n\n第一段落。\n\n第二段落。\n\n**\n"))
	require.NoError(t, err)
	require.Len(t, doc.Paragraphs, 2)
	for _, par := range doc.Paragraphs {
		assert.Equal(t, []string{"**"}, par.HeadDecorators)
		assert.Equal(t, []string{"**"}, par.TailDecorators)
	}
}

func TestParseAmbientMirrorDecoration(t *testing.T) {
	p := NewParser(nil)
	doc, err := p.Parse([]byte(">>\n\n第一段落。\n\n第二段落。\n\n<<\n"))
	require.NoError(t, err)
	require.Len(t, doc.Paragraphs, 2)
	for _, par := range doc.Paragraphs {
		assert.Equal(t, []string{">>"}, par.HeadDecorators)
		assert.Equal(t, []string{"<<"}, par.TailDecorators)
	}
}

func TestParseFence(t *testing.T) {
	p := NewParser(nil)
	doc, err := p.Parse([]byte("```条文案\n第1条の案です。\n\n次の行。\n```\n"))
	require.NoError(t, err)
	require.Len(t, doc.Paragraphs, 1)
	f := doc.Paragraphs[0]
	assert.Equal(t, document.ClassPreformatted, f.Class)
	require.NotNil(t, f.Fence)
	assert.Equal(t, "条文案", f.Fence.Caption)
	assert.Equal(t, "第1条の案です。\n\n次の行。", f.Fence.Body)
}

func TestParseMathAndPageBreak(t *testing.T) {
	p := NewParser(nil)
	doc, err := p.Parse([]byte("\\[x^2+1\\]\n\n<pgbr>\n"))
	require.NoError(t, err)
	require.Len(t, doc.Paragraphs, 2)
	assert.Equal(t, document.ClassMath, doc.Paragraphs[0].Class)
	require.NotNil(t, doc.Paragraphs[0].Math)
	assert.Equal(t, "x^2+1", doc.Paragraphs[0].Math.Source)
	assert.Equal(t, document.ClassPageBreak, doc.Paragraphs[1].Class)
}

func TestUnfold(t *testing.T) {
	assert.Equal(t, "わかれた行", unfold("わかれ\nた行"))
	assert.Equal(t, "a b", unfold("a\nb"))
	assert.Equal(t, "一行目\n二行目", unfold("一行目<br>\n二行目"))
}

func TestParseRemarksAndComments(t *testing.T) {
	p := NewParser(nil)
	doc, err := p.Parse([]byte("序文\n\n\"\" 確認のこと\n本文です。\n"))
	require.NoError(t, err)
	require.Len(t, doc.Paragraphs, 2)
	assert.Equal(t, []string{"確認のこと"}, doc.Paragraphs[1].Remarks)
	assert.False(t, strings.Contains(doc.Paragraphs[1].Text, `""`))
}
