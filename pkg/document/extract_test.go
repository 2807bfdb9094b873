package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// classifyAndExtract runs the markup pipeline for one paragraph.
func classifyAndExtract(t *testing.T, src Source) *Paragraph {
	t.Helper()
	p := &Paragraph{Number: 1, Class: ClassifyMarkup(src)}
	require.NoError(t, Extract(p, src))
	return p
}

func TestExtractTwice(t *testing.T) {
	p := &Paragraph{Number: 3, Class: ClassSentence}
	require.NoError(t, Extract(p, Source{Text: "本文"}))
	err := Extract(p, Source{Text: "本文"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extracted twice")
}

func TestExtractSentence(t *testing.T) {
	src := Source{Text: "一行目 二行目", Lines: []string{"一行目", "二行目"}}
	p := classifyAndExtract(t, src)
	assert.Equal(t, ClassSentence, p.Class)
	assert.Equal(t, "一行目\n二行目", p.Raw)
	assert.Equal(t, "一行目\n二行目", p.Text)
}

func TestExtractCopiesSourceFacts(t *testing.T) {
	src := Source{
		Text:           "本文",
		HeadDecorators: []string{"**"},
		TailDecorators: []string{"**"},
		StyleName:      "makdo",
		Alignment:      AlignRight,
	}
	p := &Paragraph{Class: ClassSentence}
	require.NoError(t, Extract(p, src))
	assert.Equal(t, []string{"**"}, p.HeadDecorators)
	assert.Equal(t, []string{"**"}, p.TailDecorators)
	assert.Equal(t, "makdo", p.StyleName)
	assert.Equal(t, AlignRight, p.Alignment)
}

func TestExtractSection(t *testing.T) {
	tests := []struct {
		name      string
		src       Source
		heads     []HeadMark
		headDepth int
		tailDepth int
		text      string
		align     Align
		warnings  []string
	}{
		{
			name:      "single marker",
			src:       Source{Text: "### 定義"},
			heads:     []HeadMark{{Depth: 3}},
			headDepth: 3, tailDepth: 3,
			text: "定義",
		},
		{
			name:      "chained markers",
			src:       Source{Text: "## ### 定義"},
			heads:     []HeadMark{{Depth: 2}, {Depth: 3}},
			headDepth: 2, tailDepth: 3,
			text: "定義",
		},
		{
			name:      "branch marker",
			src:       Source{Text: "##-# 補則"},
			heads:     []HeadMark{{Depth: 2, Branch: 1}},
			headDepth: 2, tailDepth: 2,
			text: "補則",
		},
		{
			name:      "depth one centers",
			src:       Source{Text: "# 売買契約書"},
			heads:     []HeadMark{{Depth: 1}},
			headDepth: 1, tailDepth: 1,
			text:  "売買契約書",
			align: AlignCenter,
		},
		{
			name:      "bare marker",
			src:       Source{Text: "###"},
			heads:     []HeadMark{{Depth: 3}},
			headDepth: 3, tailDepth: 3,
			text: "",
		},
		{
			name:      "depth jump warns",
			src:       Source{Text: "## #### 雑則"},
			heads:     []HeadMark{{Depth: 2}, {Depth: 4}},
			headDepth: 2, tailDepth: 4,
			text:     "雑則",
			warnings: []string{"※ 警告: セクションの深さが飛んでいます"},
		},
		{
			name:      "title leading space warns",
			src:       Source{Text: "###  二重空白"},
			heads:     []HeadMark{{Depth: 3}},
			headDepth: 3, tailDepth: 3,
			text:     " 二重空白",
			warnings: []string{"※ 警告: セクションのタイトルの最初に空白があります"},
		},
		{
			name:      "body lines",
			src:       Source{Lines: []string{"### 本旨", "その内容"}},
			heads:     []HeadMark{{Depth: 3}},
			headDepth: 3, tailDepth: 3,
			text: "本旨\nその内容",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Paragraph{Number: 1, Class: ClassSection}
			require.NoError(t, Extract(p, tt.src))
			assert.Equal(t, tt.heads, p.Heads)
			assert.Equal(t, tt.headDepth, p.HeadDepth)
			assert.Equal(t, tt.tailDepth, p.TailDepth)
			assert.Equal(t, tt.text, p.Text)
			assert.Equal(t, tt.align, p.Alignment)
			assert.Equal(t, tt.warnings, p.Warnings)
		})
	}
}

func TestExtractSectionNoMarker(t *testing.T) {
	p := &Paragraph{Number: 7, Class: ClassSection}
	err := Extract(p, Source{Text: "マーカーなし"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no section marker")
}

func TestExtractChapter(t *testing.T) {
	p := classifyAndExtract(t, Source{Text: "$$ 株式の譲渡"})
	assert.Equal(t, ClassChapter, p.Class)
	assert.Equal(t, []HeadMark{{Depth: 2}}, p.Heads)
	assert.Equal(t, 2, p.ProperDepth)
	assert.Equal(t, "株式の譲渡", p.Text)

	jump := classifyAndExtract(t, Source{Text: "$$ $$$$ 附則"})
	assert.Equal(t, []string{"※ 警告: チャプターの深さが飛んでいます"}, jump.Warnings)
}

func TestExtractList(t *testing.T) {
	tests := []struct {
		name     string
		src      Source
		depth    int
		numbered bool
		text     string
	}{
		{"bullet", Source{Text: "- 最初の項目"}, 1, false, "最初の項目"},
		{"numbered", Source{Text: "1. 最初の項目"}, 1, true, "最初の項目"},
		{"paren numbered", Source{Text: "3) 三番目"}, 1, true, "三番目"},
		{"indented", Source{Text: "  1. 枝の項目"}, 2, true, "枝の項目"},
		{"continuation", Source{
			Text:  "- 項目 続き",
			Lines: []string{"- 項目", "続き"},
		}, 1, false, "項目\n続き"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := classifyAndExtract(t, tt.src)
			require.Equal(t, ClassList, p.Class)
			require.NotNil(t, p.ListItem)
			assert.Equal(t, tt.depth, p.ListItem.Depth)
			assert.Equal(t, tt.depth, p.ProperDepth)
			assert.Equal(t, tt.numbered, p.ListItem.Numbered)
			assert.Equal(t, tt.text, p.Text)
		})
	}
}

func TestExtractAlignment(t *testing.T) {
	tests := []struct {
		name     string
		src      Source
		align    Align
		text     string
		warnings []string
	}{
		{
			name:  "left",
			src:   Source{Text: ": 前文 : 続き", Lines: []string{": 前文", ": 続き"}},
			align: AlignLeft,
			text:  "前文\n続き",
		},
		{
			name:  "center",
			src:   Source{Text: ": 契約書 :", Lines: []string{": 契約書 :"}},
			align: AlignCenter,
			text:  "契約書",
		},
		{
			name:  "right",
			src:   Source{Text: "令和六年八月二十五日 :", Lines: []string{"令和六年八月二十五日 :"}},
			align: AlignRight,
			text:  "令和六年八月二十五日",
		},
		{
			name:     "unaligned line warns",
			src:      Source{Text: ": 前文 続き", Lines: []string{": 前文", "続き"}},
			align:    AlignLeft,
			text:     "前文\n続き",
			warnings: []string{"※ 警告: 左寄せでない行が含まれています"},
		},
		{
			name:     "leading pad warns",
			src:      Source{Text: ":  二重", Lines: []string{":  二重"}},
			align:    AlignLeft,
			text:     " 二重",
			warnings: []string{"※ 警告: テキストの最初に空白があります（必要な場合は先頭に\"\\\"を入れてください）"},
		},
		{
			name:     "trailing pad warns",
			src:      Source{Text: "二重  :", Lines: []string{"二重  :"}},
			align:    AlignRight,
			text:     "二重 ",
			warnings: []string{"※ 警告: テキストの最後に空白があります"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := classifyAndExtract(t, tt.src)
			require.Equal(t, ClassAlignment, p.Class)
			assert.Equal(t, tt.align, p.Alignment)
			assert.Equal(t, tt.text, p.Text)
			assert.Equal(t, tt.warnings, p.Warnings)
		})
	}
}

func TestExtractImages(t *testing.T) {
	p := classifyAndExtract(t, Source{Text: "![結](hanko.png)"})
	require.Equal(t, ClassImage, p.Class)
	require.Len(t, p.Images, 1)
	assert.Equal(t, ImageRef{Alt: "結", Path: "hanko.png"}, p.Images[0])
	assert.Equal(t, "", p.Text)

	sized := classifyAndExtract(t, Source{Text: "![印:2.5x3](hanko.png)"})
	require.Len(t, sized.Images, 1)
	assert.Equal(t, ImageRef{Alt: "印", Path: "hanko.png", WidthCm: 2.5, HeightCm: 3}, sized.Images[0])

	height := classifyAndExtract(t, Source{Text: "![図:x4](zumen.png)"})
	require.Len(t, height.Images, 1)
	assert.Equal(t, ImageRef{Alt: "図", Path: "zumen.png", HeightCm: 4}, height.Images[0])

	frac := classifyAndExtract(t, Source{Text: "![別紙:-1](betto.png)"})
	require.Len(t, frac.Images, 1)
	assert.Equal(t, -1.0, frac.Images[0].WidthCm)

	two := classifyAndExtract(t, Source{Text: "![a](a.png) ![b](b.png)"})
	require.Len(t, two.Images, 2)
	assert.Equal(t, "a.png", two.Images[0].Path)
	assert.Equal(t, "b.png", two.Images[1].Path)
}

func TestExtractImagesResidualText(t *testing.T) {
	p := &Paragraph{Number: 5, Class: ClassImage}
	err := Extract(p, Source{Text: "![a](a.png) 余分"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "residual text")
}

func TestExtractMath(t *testing.T) {
	p := classifyAndExtract(t, Source{Text: `\[x^2+1\]`})
	require.Equal(t, ClassMath, p.Class)
	require.NotNil(t, p.Math)
	assert.Equal(t, "x^2+1", p.Math.Source)
	assert.NotNil(t, p.Math.Expr)
	assert.Equal(t, AlignCenter, p.Alignment)
	assert.Empty(t, p.Warnings)

	bad := classifyAndExtract(t, Source{Text: `\[{a\]`})
	require.NotNil(t, bad.Math)
	assert.Nil(t, bad.Math.Expr)
	assert.Equal(t, []string{"※ 警告: 数式を解釈できません"}, bad.Warnings)
}

func TestExtractFence(t *testing.T) {
	src := Source{
		Lines:          []string{"見本", "第1条  条文の案", "第2条  続き"},
		HeadDecorators: []string{"`", "`", "`"},
		TailDecorators: []string{"`", "`", "`"},
	}
	p := &Paragraph{Class: ClassPreformatted}
	require.NoError(t, Extract(p, src))
	require.NotNil(t, p.Fence)
	assert.Equal(t, "見本", p.Fence.Caption)
	assert.Equal(t, "第1条  条文の案\n第2条  続き", p.Fence.Body)
	assert.Empty(t, p.HeadDecorators)
	assert.Empty(t, p.TailDecorators)
}

func TestExtractPageBreak(t *testing.T) {
	plain := classifyAndExtract(t, Source{Text: "<pgbr/>"})
	assert.Equal(t, ClassPageBreak, plain.Class)
	assert.Equal(t, BreakPlain, plain.PageBreak)
	assert.Equal(t, "", plain.Text)

	reset := classifyAndExtract(t, Source{Text: "<Pgbr/>"})
	assert.Equal(t, BreakResetNumber, reset.PageBreak)
}

func TestExtractBreakdown(t *testing.T) {
	p := &Paragraph{Class: ClassBreakdown}
	require.NoError(t, Extract(p, Source{Text: "着手金!30万円!税別"}))
	assert.Equal(t, []string{"着手金", "30万円", "税別"}, p.Segments)

	esc := &Paragraph{Class: ClassBreakdown}
	require.NoError(t, Extract(esc, Source{Text: `小計\!額!計`}))
	assert.Equal(t, []string{`小計\!額`, "計"}, esc.Segments)
}

func TestExtractRemarks(t *testing.T) {
	src := Source{
		Text:  `"" 第1条を要確認 ""続き`,
		Lines: []string{`"" 第1条を要確認`, `""続き`},
	}
	p := classifyAndExtract(t, src)
	require.Equal(t, ClassRemarks, p.Class)
	assert.Equal(t, []string{"第1条を要確認", "続き"}, p.Remarks)
	assert.Equal(t, "", p.Text)
}

func TestPeelRemarks(t *testing.T) {
	remarks, rest := PeelRemarks([]string{`"" メモ`, "本文", "続き"})
	assert.Equal(t, []string{"メモ"}, remarks)
	assert.Equal(t, []string{"本文", "続き"}, rest)

	remarks, rest = PeelRemarks([]string{"本文"})
	assert.Empty(t, remarks)
	assert.Equal(t, []string{"本文"}, rest)
}

func TestSplitFrames(t *testing.T) {
	assert.Equal(t, []string{"a", "b", ""}, splitFrames("a!b!"))
	assert.Equal(t, []string{"", "a", "b", ""}, splitFrames("!a!b!"))
	assert.Equal(t, []string{`a\!b`, "c"}, splitFrames(`a\!b!c`))
}
