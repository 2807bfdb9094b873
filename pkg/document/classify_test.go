package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMarkup(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		want Class
	}{
		{"empty", Source{Text: ""}, ClassEmpty},
		{"blank", Source{Text: " 　"}, ClassBlank},
		{"chapter", Source{Text: "$$ 株式"}, ClassChapter},
		{"chapter with branch", Source{Text: "$$-$ 株式"}, ClassChapter},
		{"bare chapter marker", Source{Text: "$"}, ClassChapter},
		{"section article", Source{Text: "### 第1条 目的"}, ClassSection},
		{"section title", Source{Text: "# 売買契約書"}, ClassSection},
		{"bare section marker", Source{Text: "##"}, ClassSection},
		{"bulleted list", Source{Text: "- 最初の項目"}, ClassList},
		{"numbered list", Source{Text: "1. 最初の項目"}, ClassList},
		{"indented list", Source{Text: "  + 枝の項目"}, ClassList},
		{"table", Source{Text: "|品名|数量|"}, ClassTable},
		{"image", Source{Text: "![代替](pic.png)"}, ClassImage},
		{"two images", Source{Text: "![a](a.png) ![b](b.png)"}, ClassImage},
		{"math", Source{Text: `\[x^2+1\]`}, ClassMath},
		{"left alignment", Source{Text: ": 前文"}, ClassAlignment},
		{"right alignment", Source{Text: "令和六年八月 :"}, ClassAlignment},
		{"center alignment", Source{Text: ": 契約書 :"}, ClassAlignment},
		{"preformatted", Source{
			Text:           "第1条の案",
			HeadDecorators: []string{"`", "`", "`"},
			TailDecorators: []string{"`", "`", "`"},
		}, ClassPreformatted},
		{"horizontal line", Source{Text: "----------"}, ClassHorizontalLine},
		{"page break", Source{Text: "<pgbr/>"}, ClassPageBreak},
		{"page break div", Source{Text: `<div style="break-after: page;"></div>`}, ClassPageBreak},
		{"breakdown", Source{Text: "報酬!50,000円!"}, ClassBreakdown},
		{"escaped breakdown", Source{Text: `報酬\!50,000円\!`}, ClassSentence},
		{"remarks", Source{Text: `"" 要確認`}, ClassRemarks},
		{"sentence", Source{Text: "本契約の成立を証するため、本書を作成する。"}, ClassSentence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyMarkup(tt.src))
		})
	}
}

func TestClassifyDecoded(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		want Class
	}{
		{"blank", Source{Text: "　"}, ClassBlank},
		{"configuration", Source{Text: "", HasSectPr: true}, ClassConfiguration},
		{"table cell", Source{Text: "金額", InTable: true}, ClassTable},
		{"chapter literal", Source{Text: "第１編　総則"}, ClassChapter},
		{"article section", Source{Text: "第１条　この契約は次のとおり定める。"}, ClassSection},
		{"numbered section", Source{Text: "２　前項の規定にかかわらず効力を有する。"}, ClassSection},
		{"decorated title", Source{Text: "+++契約書+++", Alignment: AlignCenter}, ClassSection},
		{"plain centered text", Source{Text: "契約書", Alignment: AlignCenter}, ClassAlignment},
		{"native list", Source{Text: "項目", NativeList: true}, ClassList},
		{"literal bullet", Source{Text: "・　項目"}, ClassList},
		{"image", Source{Text: "![図](image1.png)", HasImage: true}, ClassImage},
		{"math", Source{Text: "x²", HasMath: true}, ClassMath},
		{"left aligned", Source{Text: "（別紙）", Alignment: AlignLeft}, ClassAlignment},
		{"preformatted style", Source{Text: "印", StyleName: "makdo-g"}, ClassPreformatted},
		{"horizontal rule", Source{Text: "本文", HasRule: true}, ClassHorizontalLine},
		{"page break", Source{Text: "", HasBreak: true}, ClassPageBreak},
		{"sentence", Source{Text: "甲は、乙に対し、代金を支払う。"}, ClassSentence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDecoded(tt.src))
		})
	}
}

func TestClassifyDecodedGuards(t *testing.T) {
	// A plain decimal must not read as a numbered section head.
	assert.Equal(t, ClassSentence, ClassifyDecoded(Source{Text: "1.5　倍の値とする。"}))
	// Heading forms inside a table stay table cells.
	assert.Equal(t, ClassTable, ClassifyDecoded(Source{Text: "第１条　目的", InTable: true}))
	// An image flag without an image reference stays a sentence.
	assert.Equal(t, ClassSentence, ClassifyDecoded(Source{Text: "写真は別紙のとおり。", HasImage: true}))
}
