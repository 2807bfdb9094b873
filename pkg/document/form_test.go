package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormDefaults(t *testing.T) {
	f := NewForm()
	assert.Equal(t, "n", f.DocumentStyle)
	assert.Equal(t, "A4", f.PaperSize)
	assert.Equal(t, 3.5, f.TopMargin)
	assert.Equal(t, 2.2, f.BottomMargin)
	assert.Equal(t, 3.0, f.LeftMargin)
	assert.Equal(t, 2.0, f.RightMargin)
	assert.Equal(t, ": n :", f.PageNumber)
	assert.False(t, f.LineNumber)
	assert.Equal(t, "ＭＳ 明朝", f.MinchoFont)
	assert.Equal(t, "ＭＳ ゴシック", f.GothicFont)
	assert.Equal(t, "IPAmj明朝", f.IVSFont)
	assert.Equal(t, 12.0, f.FontSize)
	assert.Equal(t, 2.14, f.LineSpacing)
	assert.False(t, f.AutoSpace)
	assert.Empty(t, f.Warnings())
}

func TestSetKey(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		val   string
		check func(t *testing.T, f *Form)
	}{
		{"title", "document_title", "業務委託契約書", func(t *testing.T, f *Form) {
			assert.Equal(t, "業務委託契約書", f.DocumentTitle)
		}},
		{"title japanese key", "書題名", "誓約書", func(t *testing.T, f *Form) {
			assert.Equal(t, "誓約書", f.DocumentTitle)
		}},
		{"style contract", "document_style", "契約", func(t *testing.T, f *Form) {
			assert.Equal(t, "k", f.DocumentStyle)
		}},
		{"style statute letter", "文書式", "j", func(t *testing.T, f *Form) {
			assert.Equal(t, "j", f.DocumentStyle)
		}},
		{"style dash resets", "文書式", "-", func(t *testing.T, f *Form) {
			assert.Equal(t, "n", f.DocumentStyle)
		}},
		{"paper landscape", "paper_size", "A4横", func(t *testing.T, f *Form) {
			assert.Equal(t, "A4L", f.PaperSize)
		}},
		{"paper fullwidth", "用紙サ", "Ａ３縦", func(t *testing.T, f *Form) {
			assert.Equal(t, "A3P", f.PaperSize)
		}},
		{"margin with unit", "上余白", "2.5 cm", func(t *testing.T, f *Form) {
			assert.Equal(t, 2.5, f.TopMargin)
		}},
		{"margin fullwidth", "left_margin", "３．０ｃｍ", func(t *testing.T, f *Form) {
			assert.Equal(t, 3.0, f.LeftMargin)
		}},
		{"header string", "頭書き", "別紙 :", func(t *testing.T, f *Form) {
			assert.Equal(t, "別紙 :", f.HeaderString)
		}},
		{"page number on", "頁番号", "有", func(t *testing.T, f *Form) {
			assert.Equal(t, DefaultPageNumber, f.PageNumber)
		}},
		{"page number off", "page_number", "無", func(t *testing.T, f *Form) {
			assert.Equal(t, "", f.PageNumber)
		}},
		{"page number literal", "頁番号", "n/N", func(t *testing.T, f *Form) {
			assert.Equal(t, "n/N", f.PageNumber)
		}},
		{"line number on", "行番号", "有", func(t *testing.T, f *Form) {
			assert.True(t, f.LineNumber)
		}},
		{"fonts", "明朝体", "游明朝", func(t *testing.T, f *Form) {
			assert.Equal(t, "游明朝", f.MinchoFont)
		}},
		{"font size with unit", "文字サ", "10.5 pt", func(t *testing.T, f *Form) {
			assert.Equal(t, 10.5, f.FontSize)
		}},
		{"line spacing with unit", "行間高", "1.75 倍", func(t *testing.T, f *Form) {
			assert.Equal(t, 1.75, f.LineSpacing)
		}},
		{"space before", "前余白", "1.0 倍, 0.5 倍", func(t *testing.T, f *Form) {
			assert.Equal(t, "1.0,0.5", f.SpaceBefore)
		}},
		{"space after sparse slots", "space_after", "0.5,,0.2", func(t *testing.T, f *Form) {
			assert.Equal(t, "0.5,,0.2", f.SpaceAfter)
		}},
		{"auto space", "字間整", "有", func(t *testing.T, f *Form) {
			assert.True(t, f.AutoSpace)
		}},
		{"original file", "元原稿", "draft.docx", func(t *testing.T, f *Form) {
			assert.Equal(t, "draft.docx", f.OriginalFile)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForm()
			f.SetKey(tt.key, tt.val)
			assert.Empty(t, f.Warnings())
			tt.check(t, f)
		})
	}
}

func TestSetKeyWarnings(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{
			"bad style", "document_style", "x",
			"※ 警告: 「document_style」の値は\"普通\"、\"契約\"又は\"条文\"でなければなりません",
		},
		{
			"bad paper", "paper_size", "B5",
			"※ 警告: 「paper_size」の値は\"A3横\"、\"A3縦\"、\"A4横\"又は\"A4縦\"でなければなりません",
		},
		{
			"bad margin", "上余白", "abc",
			"※ 警告: 「上余白」の値は整数又は小数でなければなりません",
		},
		{
			"bad line number", "行番号", "x",
			"※ 警告: 「行番号」の値は\"有\"又は\"無\"でなければなりません",
		},
		{
			"bad font size", "font_size", "大きめ",
			"※ 警告: 「font_size」の値は整数又は小数でなければなりません",
		},
		{
			"bad space list", "前余白", "a,b",
			"※ 警告: 「前余白」の値は整数又は小数をカンマで区切って並べたものでなければなりません",
		},
		{
			"unknown key with suggestion", "documen_title", "x",
			"※ 警告: 「documen_title」という設定項目は存在しません（もしかして: 「document_title」）",
		},
		{
			"unknown key without suggestion", "zzz", "1",
			"※ 警告: 「zzz」という設定項目は存在しません",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForm()
			f.SetKey(tt.key, tt.val)
			require.Len(t, f.Warnings(), 1)
			assert.Equal(t, tt.want, f.Warnings()[0])
		})
	}
}

func TestFormWarnDedup(t *testing.T) {
	f := NewForm()
	f.SetKey("document_style", "x")
	f.SetKey("document_style", "x")
	assert.Len(t, f.Warnings(), 1)
}

func TestBadValueKeepsDefault(t *testing.T) {
	f := NewForm()
	f.SetKey("上余白", "abc")
	assert.Equal(t, DefaultTopMargin, f.TopMargin)
	f.SetKey("paper_size", "B5")
	assert.Equal(t, DefaultPaperSize, f.PaperSize)
}

func TestApplyComment(t *testing.T) {
	f := NewForm()
	f.ApplyComment("# 3つの書式（普通、契約、条文）を指定できます。")
	assert.Empty(t, f.Warnings())
	assert.Equal(t, "n", f.DocumentStyle)

	f.ApplyComment("文書式： 契約")
	assert.Equal(t, "k", f.DocumentStyle)

	f.ApplyComment("書題名: 取引基本契約書  ")
	assert.Equal(t, "取引基本契約書", f.DocumentTitle)

	f.ApplyComment("ただのテキスト行")
	assert.Empty(t, f.Warnings())
}

func TestCommentBlockRoundTrip(t *testing.T) {
	f := NewForm()
	f.DocumentTitle = "業務委託契約書"
	f.DocumentStyle = "k"
	f.PaperSize = "A4L"
	f.TopMargin = 3.0
	f.HeaderString = "別紙"
	f.LineNumber = true
	f.FontSize = 10.5
	f.SpaceBefore = "1.0,0.5"
	f.SpaceAfter = "0.5"
	f.AutoSpace = true
	f.OriginalFile = "draft.docx"

	block := f.CommentBlock()
	assert.True(t, strings.HasPrefix(block, "<!--------------------------【設定】-----------------------------\n"))
	assert.True(t, strings.HasSuffix(block, "---------------------------------------------------------------->\n\n"))

	g := NewForm()
	for _, ln := range strings.Split(block, "\n") {
		g.ApplyComment(ln)
	}
	assert.Empty(t, g.Warnings())
	assert.Equal(t, f.DocumentTitle, g.DocumentTitle)
	assert.Equal(t, f.DocumentStyle, g.DocumentStyle)
	assert.Equal(t, f.PaperSize, g.PaperSize)
	assert.Equal(t, f.TopMargin, g.TopMargin)
	assert.Equal(t, f.BottomMargin, g.BottomMargin)
	assert.Equal(t, f.LeftMargin, g.LeftMargin)
	assert.Equal(t, f.RightMargin, g.RightMargin)
	assert.Equal(t, f.HeaderString, g.HeaderString)
	assert.Equal(t, f.PageNumber, g.PageNumber)
	assert.Equal(t, f.LineNumber, g.LineNumber)
	assert.Equal(t, f.MinchoFont, g.MinchoFont)
	assert.Equal(t, f.GothicFont, g.GothicFont)
	assert.Equal(t, f.IVSFont, g.IVSFont)
	assert.Equal(t, f.FontSize, g.FontSize)
	assert.Equal(t, f.LineSpacing, g.LineSpacing)
	assert.Equal(t, f.SpaceBefore, g.SpaceBefore)
	assert.Equal(t, f.SpaceAfter, g.SpaceAfter)
	assert.Equal(t, f.AutoSpace, g.AutoSpace)
	assert.Equal(t, f.OriginalFile, g.OriginalFile)
}

func TestCommentBlockPageNumberForms(t *testing.T) {
	f := NewForm()
	assert.Contains(t, f.CommentBlock(), "頁番号: 有\n")

	f.PageNumber = ""
	assert.Contains(t, f.CommentBlock(), "頁番号: 無\n")

	f.PageNumber = "- n -"
	assert.Contains(t, f.CommentBlock(), "頁番号: - n -\n")
}

func TestCommentBlockSpaceUnits(t *testing.T) {
	f := NewForm()
	f.SpaceBefore = "1.0,0.5"
	block := f.CommentBlock()
	assert.Contains(t, block, "前余白: 1.0 倍, 0.5 倍\n")
}

func TestDetectStyle(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  string
	}{
		{"statute", []string{"第１条　この規程は、業務の基準を定める。"}, "j"},
		{"contract", []string{"第1条 目的", "1 甲は、乙に委託する。"}, "k"},
		{"plain stays", []string{"前文のみの文書である。"}, "n"},
		{"numbers alone stay", []string{"1 箇条書のような行"}, "n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForm()
			f.DetectStyle(tt.texts)
			assert.Equal(t, tt.want, f.DocumentStyle)
		})
	}
}

func TestCategory(t *testing.T) {
	f := NewForm()
	assert.Equal(t, "（普通）", f.Category())
	f.DocumentStyle = "k"
	assert.Equal(t, "（契約）", f.Category())
	f.DocumentStyle = "j"
	assert.Equal(t, "（条文）", f.Category())

	g := NewForm()
	g.SetCategory("業務委託契約書（契約）")
	assert.Equal(t, "k", g.DocumentStyle)
	g.SetCategory("雇用規程（条文）")
	assert.Equal(t, "j", g.DocumentStyle)
	g.SetCategory("無関係")
	assert.Equal(t, "j", g.DocumentStyle)
}

func TestPaperDimensions(t *testing.T) {
	f := NewForm()
	assert.Equal(t, 21.0, f.PaperWidth())
	assert.Equal(t, 29.7, f.PaperHeight())

	f.PaperSize = "A3L"
	assert.Equal(t, 42.0, f.PaperWidth())
	assert.Equal(t, 29.7, f.PaperHeight())

	f.PaperSize = "A4L"
	assert.Equal(t, 29.7, f.PaperWidth())
	assert.Equal(t, 21.0, f.PaperHeight())

	f.PaperSize = "B5"
	assert.Equal(t, 21.0, f.PaperWidth())
	assert.Equal(t, 29.7, f.PaperHeight())
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "3.0", formatNumber(3, 1))
	assert.Equal(t, "12.0", formatNumber(12, 1))
	assert.Equal(t, "2.14", formatNumber(2.14, 2))
	assert.Equal(t, "3.5", formatNumber(3.456, 1))
	assert.Equal(t, "0.5", formatNumber(0.5, 2))
}
