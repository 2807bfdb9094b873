package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-docx-md/pkg/length"
)

func TestLeftAlignment(t *testing.T) {
	d := New()
	flush := &Paragraph{Class: ClassSentence, Text: "前文<br>\n次行"}
	indented := &Paragraph{Class: ClassSentence, Text: "本文"}
	indented.Lengths.Docx.FirstIndent = 1
	d.Append(flush)
	d.Append(indented)

	d.leftAlignment()

	assert.Equal(t, ClassAlignment, flush.Class)
	assert.Equal(t, AlignLeft, flush.Alignment)
	assert.Equal(t, "前文\n次行", flush.Text)
	assert.Equal(t, ClassSentence, indented.Class)
}

func TestBlankToSpaceBefore(t *testing.T) {
	d := New()
	blank := &Paragraph{Class: ClassBlank, Text: "\n"} // two blank lines
	body := &Paragraph{Class: ClassSentence, Text: "本文"}
	d.Append(blank)
	d.Append(body)

	d.blankToSpaceBefore()

	assert.Equal(t, ClassEmpty, blank.Class)
	assert.Equal(t, "", blank.Text)
	assert.Equal(t, 0.0, blank.Lengths.Revi.SpaceBefore)
	assert.Equal(t, 2.0, body.Lengths.Revi.SpaceBefore)
}

func TestBlankRunCascades(t *testing.T) {
	d := New()
	e1 := &Paragraph{Class: ClassBlank, Text: ""}
	e2 := &Paragraph{Class: ClassBlank, Text: ""}
	body := &Paragraph{Class: ClassSentence, Text: "本文"}
	d.Append(e1)
	d.Append(e2)
	d.Append(body)

	d.blankToSpaceBefore()

	assert.Equal(t, ClassEmpty, e1.Class)
	assert.Equal(t, ClassEmpty, e2.Class)
	assert.Equal(t, 0.0, e1.Lengths.Revi.SpaceBefore)
	assert.Equal(t, 0.0, e2.Lengths.Revi.SpaceBefore)
	assert.Equal(t, 2.0, body.Lengths.Revi.SpaceBefore)
}

func TestBlankAddsToExistingSpace(t *testing.T) {
	d := New()
	blank := &Paragraph{Class: ClassBlank, Text: ""}
	body := &Paragraph{Class: ClassSentence, Text: "本文"}
	body.Lengths.Docx.SpaceBefore = 0.5
	body.Lengths.Revise()
	d.Append(blank)
	d.Append(body)

	d.blankToSpaceBefore()

	assert.Equal(t, 1.5, body.Lengths.Revi.SpaceBefore)
}

func TestBlankSpaceAfterShifts(t *testing.T) {
	d := New()
	blank := &Paragraph{Class: ClassBlank, Text: ""}
	blank.Lengths.Docx.SpaceAfter = 1.0
	body := &Paragraph{Class: ClassSentence, Text: "本文"}
	d.Append(blank)
	d.Append(body)

	d.blankToSpaceBefore()

	assert.Equal(t, 0.0, blank.Lengths.Revi.SpaceAfter)
	assert.Equal(t, 2.0, body.Lengths.Revi.SpaceBefore)
}

func TestEarSpacingDecode(t *testing.T) {
	d := New()
	d.Form.DocumentStyle = "j"
	ear := &Paragraph{Class: ClassAlignment, Alignment: AlignLeft}
	ear.Lengths.Docx.SpaceBefore = 1.0
	ear.Lengths.Revise()
	art := &Paragraph{Class: ClassSection, HeadDepth: 2, TailDepth: 2}
	art.Lengths.Conf.SpaceBefore = 1.0
	art.Lengths.Revise()
	d.Append(ear)
	d.Append(art)
	require.Equal(t, 1.0, ear.Lengths.Revi.SpaceBefore)
	require.Equal(t, -1.0, art.Lengths.Revi.SpaceBefore)

	d.earSpacingDecode()

	assert.Equal(t, 1.0, ear.Lengths.Conf.SpaceBefore)
	assert.Equal(t, 0.0, art.Lengths.Conf.SpaceBefore)
	assert.Equal(t, 0.0, ear.Lengths.Revi.SpaceBefore)
	assert.Equal(t, 0.0, art.Lengths.Revi.SpaceBefore)
}

func TestEarSpacingDecodeNeedsJStyle(t *testing.T) {
	d := New()
	ear := &Paragraph{Class: ClassAlignment, Alignment: AlignLeft}
	art := &Paragraph{Class: ClassSection, HeadDepth: 2, TailDepth: 2}
	art.Lengths.Conf.SpaceBefore = 1.0
	d.Append(ear)
	d.Append(art)

	d.earSpacingDecode()

	assert.Equal(t, 0.0, ear.Lengths.Conf.SpaceBefore)
	assert.Equal(t, 1.0, art.Lengths.Conf.SpaceBefore)
}

func TestTitleSpacingDecode(t *testing.T) {
	d := New()
	prev := &Paragraph{Class: ClassSentence}
	prev.Lengths.Docx.SpaceAfter = 0.3
	title := &Paragraph{Class: ClassSection, HeadDepth: 1, TailDepth: 1}
	title.Lengths.Docx.SpaceBefore = 0.5
	title.Lengths.Docx.SpaceAfter = 0.2
	next := &Paragraph{Class: ClassSentence}
	next.Lengths.Docx.SpaceBefore = 0.4
	d.Append(prev)
	d.Append(title)
	d.Append(next)

	d.titleAndTableSpacingDecode()

	assert.InDelta(t, 0.2, prev.Lengths.Docx.SpaceAfter, 1e-9)
	assert.InDelta(t, 0.4, title.Lengths.Docx.SpaceBefore, 1e-9)
	assert.InDelta(t, 0.3, title.Lengths.Docx.SpaceAfter, 1e-9)
	assert.InDelta(t, 0.5, next.Lengths.Docx.SpaceBefore, 1e-9)
}

func TestTitleSpacingDecodeHalves(t *testing.T) {
	d := New()
	prev := &Paragraph{Class: ClassSentence}
	prev.Lengths.Docx.SpaceAfter = 0.1
	title := &Paragraph{Class: ClassSection, HeadDepth: 1, TailDepth: 1}
	title.Lengths.Docx.SpaceBefore = 0.1
	title.Lengths.Docx.SpaceAfter = 0.05
	d.Append(prev)
	d.Append(title)

	d.titleAndTableSpacingDecode()

	assert.InDelta(t, 0.05, prev.Lengths.Docx.SpaceAfter, 1e-9)
	assert.InDelta(t, 0.05, title.Lengths.Docx.SpaceBefore, 1e-9)
	assert.InDelta(t, 0.1, title.Lengths.Docx.SpaceAfter, 1e-9)
}

func TestTableSpacingDecode(t *testing.T) {
	d := New()
	prev := &Paragraph{Class: ClassSentence}
	prev.Lengths.Docx.SpaceAfter = 0.45
	tab := &Paragraph{Class: ClassTable}
	next := &Paragraph{Class: ClassSentence}
	next.Lengths.Docx.SpaceBefore = 0.2
	d.Append(prev)
	d.Append(tab)
	d.Append(next)

	d.titleAndTableSpacingDecode()

	assert.Equal(t, 0.0, prev.Lengths.Docx.SpaceAfter)
	assert.InDelta(t, 0.45, tab.Lengths.Docx.SpaceBefore, 1e-9)
	assert.InDelta(t, 0.2, tab.Lengths.Docx.SpaceAfter, 1e-9)
	assert.Equal(t, 0.0, next.Lengths.Docx.SpaceBefore)
}

func TestTableSpacingDecodeAtEdges(t *testing.T) {
	d := New()
	tab := &Paragraph{Class: ClassTable}
	d.Append(tab)

	d.titleAndTableSpacingDecode()

	// A lone table gets the standard gap granted as supplement.
	assert.Equal(t, 0.45, tab.Lengths.Revi.SpaceBefore)
	assert.Equal(t, 0.2, tab.Lengths.Revi.SpaceAfter)
}

func TestTableSpacingDecodeAtDocumentEnd(t *testing.T) {
	d := New()
	prev := &Paragraph{Class: ClassSentence}
	prev.Lengths.Docx.SpaceAfter = 0.45
	tab := &Paragraph{Class: ClassTable}
	tab.Lengths.Class.SpaceBefore = TableSpaceBefore
	tab.Lengths.Class.SpaceAfter = TableSpaceAfter
	cfg := &Paragraph{Class: ClassConfiguration}
	d.Append(prev)
	d.Append(tab)
	d.Append(cfg)

	d.titleAndTableSpacingDecode()

	// The trailing configuration carrier renders nothing, so a table
	// ending the document keeps the standard gap as supplement and
	// needs no reviser.
	assert.Equal(t, 0.2, tab.Lengths.Supp.SpaceAfter)
	assert.InDelta(t, 0.0, tab.Lengths.Revi.SpaceBefore, 1e-9)
	assert.InDelta(t, 0.0, tab.Lengths.Revi.SpaceAfter, 1e-9)
	assert.Equal(t, 0.0, cfg.Lengths.Docx.SpaceBefore)
}

func TestSpacedAndCentered(t *testing.T) {
	d := New()
	head := &Paragraph{Class: ClassSection, HeadDepth: 2, TailDepth: 2}
	head.Lengths.Docx.FirstIndent = -1
	head.Lengths.Docx.LeftIndent = 1
	c := &Paragraph{Class: ClassAlignment, Alignment: AlignCenter, Raw: "別紙", Text: "別紙"}
	c.Lengths.Docx.SpaceBefore = 1.0
	c.Lengths.Revise()
	body := &Paragraph{Class: ClassSentence, Raw: "本文", Text: "本文"}
	body.Lengths.Docx.FirstIndent = 1
	d.Append(head)
	d.Append(c)
	d.Append(body)

	d.spacedAndCentered()

	assert.Equal(t, []string{"v=1", "# "}, c.PreLines)
	assert.Equal(t, 0.0, c.Lengths.Revi.SpaceBefore)
	// The centered page resets the section depth for what follows.
	assert.Equal(t, 1, body.HeadDepth)
	assert.Equal(t, 1, body.TailDepth)
	assert.Equal(t, 0.0, body.Lengths.Revi.FirstIndent)
	// The section keeps its own extracted depths and a clean baseline.
	assert.Equal(t, 2, head.HeadDepth)
	assert.Equal(t, 0.0, head.Lengths.Revi.FirstIndent)
	assert.Equal(t, 0.0, head.Lengths.Revi.LeftIndent)
}

func TestSpacedAndCenteredNeedsOneLine(t *testing.T) {
	d := New()
	c := &Paragraph{Class: ClassAlignment, Alignment: AlignCenter, Text: "別紙"}
	d.Append(c)

	d.spacedAndCentered()

	assert.Empty(t, c.PreLines)
}

func TestSpacedAndCenteredInheritsDepths(t *testing.T) {
	d := New()
	sec := &Paragraph{Class: ClassSection, HeadDepth: 2, TailDepth: 3}
	body := &Paragraph{Class: ClassSentence}
	body.Lengths.Docx.FirstIndent = 1
	body.Lengths.Docx.LeftIndent = 1
	img := &Paragraph{Class: ClassImage}
	d.Append(sec)
	d.Append(body)
	d.Append(img)

	d.spacedAndCentered()

	assert.Equal(t, 3, body.HeadDepth)
	assert.Equal(t, 3, body.TailDepth)
	assert.Equal(t, 0.0, body.Lengths.Revi.FirstIndent)
	assert.Equal(t, 0.0, body.Lengths.Revi.LeftIndent)
	assert.Equal(t, 0, img.HeadDepth)
	assert.Equal(t, 0, img.TailDepth)
}

func TestReviserToDepthSetter(t *testing.T) {
	d := New()
	first := &Paragraph{Class: ClassSentence}
	p := &Paragraph{Class: ClassSentence, HeadDepth: 2, TailDepth: 2, NumberedSecond: true}
	p.Lengths.Class = length.ClassDefaults(length.Context{
		Class: length.ClassSentence, HeadDepth: 2, TailDepth: 2, NumberedSecond: true,
	})
	p.Lengths.Docx.FirstIndent = 1
	p.Lengths.Revise()
	require.Equal(t, -1.0, p.Lengths.Revi.LeftIndent)
	d.Append(first)
	d.Append(p)

	d.reviserToDepthSetter()

	assert.Equal(t, []string{"# "}, p.PreLines)
	assert.Equal(t, 1, p.HeadDepth)
	assert.Equal(t, 1, p.TailDepth)
	assert.Equal(t, 0.0, p.Lengths.Revi.LeftIndent)
	assert.Equal(t, 0.0, p.Lengths.Revi.FirstIndent)
}

func TestReviserToDepthSetterUnnumberedSecond(t *testing.T) {
	d := New()
	first := &Paragraph{Class: ClassSentence}
	p := &Paragraph{Class: ClassSentence, HeadDepth: 4, TailDepth: 4, NumberedThird: true}
	p.Lengths.Class = length.ClassDefaults(length.Context{
		Class: length.ClassSentence, HeadDepth: 4, TailDepth: 4,
	})
	p.Lengths.Docx.FirstIndent = 1
	p.Lengths.Docx.LeftIndent = 1
	p.Lengths.Revise()
	require.Equal(t, -1.0, p.Lengths.Revi.LeftIndent)
	d.Append(first)
	d.Append(p)

	d.reviserToDepthSetter()

	assert.Equal(t, []string{"## "}, p.PreLines)
	assert.Equal(t, 2, p.HeadDepth)
	assert.Equal(t, 0.0, p.Lengths.Revi.LeftIndent)
}

func TestReviserToDepthSetterSkips(t *testing.T) {
	d := New()
	first := &Paragraph{Class: ClassSentence}
	p := &Paragraph{Class: ClassSentence, HeadDepth: 2, TailDepth: 2}
	p.Lengths.Class = length.ClassDefaults(length.Context{
		Class: length.ClassSentence, HeadDepth: 2, TailDepth: 2,
	})
	p.Lengths.Docx.SpaceBefore = 1
	p.Lengths.Docx.FirstIndent = 1
	p.Lengths.Revise()
	d.Append(first)
	d.Append(p)

	d.reviserToDepthSetter()

	assert.Empty(t, p.PreLines)
	assert.Equal(t, 2, p.HeadDepth)
}

func TestPlainWidth(t *testing.T) {
	assert.Equal(t, 6.0, plainWidth("短い文"))
	assert.Equal(t, 4.0, plainWidth("**強調**"))
	assert.Equal(t, 6.0, plainWidth(`\*text\*`))
}

func TestOneLineIndent(t *testing.T) {
	d := New()
	tab := &Paragraph{Class: ClassTable}
	tab.Lengths.Docx.FirstIndent = 0.5
	tab.Lengths.Docx.LeftIndent = -0.5
	tab.Lengths.Revise()
	short := &Paragraph{Class: ClassSentence, Raw: "短い一文です。"}
	short.Lengths.Docx.FirstIndent = 1
	short.Lengths.Docx.LeftIndent = -1
	short.Lengths.Revise()
	long := &Paragraph{Class: ClassSentence, Raw: strings.Repeat("長", 40)}
	long.Lengths.Docx.FirstIndent = 1
	long.Lengths.Docx.LeftIndent = -1
	long.Lengths.Revise()
	d.Append(tab)
	d.Append(short)
	d.Append(long)

	d.oneLineIndent()

	assert.Equal(t, 0.0, tab.Lengths.Revi.FirstIndent)
	assert.Equal(t, 0.0, tab.Lengths.Revi.LeftIndent)
	assert.Equal(t, 0.0, short.Lengths.Revi.FirstIndent)
	assert.Equal(t, 0.0, short.Lengths.Revi.LeftIndent)
	assert.Equal(t, 1.0, long.Lengths.Revi.FirstIndent)
	assert.Equal(t, -1.0, long.Lengths.Revi.LeftIndent)
}

func TestOneLineIndentKeepsRealIndent(t *testing.T) {
	d := New()
	tab := &Paragraph{Class: ClassTable}
	tab.Lengths.Docx.FirstIndent = 1
	tab.Lengths.Revise()
	d.Append(tab)

	d.oneLineIndent()

	assert.Equal(t, 1.0, tab.Lengths.Revi.FirstIndent)
}

func TestEarSpacingEncode(t *testing.T) {
	d := New()
	d.Form.DocumentStyle = "j"
	ear := &Paragraph{Class: ClassAlignment, Alignment: AlignLeft}
	art := &Paragraph{Class: ClassSection, HeadDepth: 2, TailDepth: 2}
	art.Lengths.Conf.SpaceBefore = 1.0
	art.Lengths.Docx.SpaceBefore = 1.0
	d.Append(ear)
	d.Append(art)

	d.earSpacingEncode()

	assert.Equal(t, 1.0, ear.Lengths.Docx.SpaceBefore)
	assert.Equal(t, 0.0, art.Lengths.Docx.SpaceBefore)
}

func TestTitleSpacingEncode(t *testing.T) {
	d := New()
	prev := &Paragraph{Class: ClassSentence}
	prev.Lengths.Docx.SpaceAfter = 0.2
	title := &Paragraph{Class: ClassSection, HeadDepth: 1, TailDepth: 1}
	title.Lengths.Docx.SpaceBefore = 0.4
	title.Lengths.Docx.SpaceAfter = 0.3
	next := &Paragraph{Class: ClassSentence}
	next.Lengths.Docx.SpaceBefore = 0.5
	d.Append(prev)
	d.Append(title)
	d.Append(next)

	d.titleAndTableSpacingEncode()

	assert.InDelta(t, 0.3, prev.Lengths.Docx.SpaceAfter, 1e-9)
	assert.InDelta(t, 0.5, title.Lengths.Docx.SpaceBefore, 1e-9)
	assert.InDelta(t, 0.2, title.Lengths.Docx.SpaceAfter, 1e-9)
	assert.InDelta(t, 0.4, next.Lengths.Docx.SpaceBefore, 1e-9)
}

func TestTableSpacingEncode(t *testing.T) {
	d := New()
	prev := &Paragraph{Class: ClassSentence}
	tab := &Paragraph{Class: ClassTable}
	tab.Lengths.Docx.SpaceBefore = 0.45
	tab.Lengths.Docx.SpaceAfter = 0.2
	next := &Paragraph{Class: ClassSentence}
	d.Append(prev)
	d.Append(tab)
	d.Append(next)

	d.titleAndTableSpacingEncode()

	assert.Equal(t, 0.45, prev.Lengths.Docx.SpaceAfter)
	assert.Equal(t, 0.0, tab.Lengths.Docx.SpaceBefore)
	assert.Equal(t, 0.0, tab.Lengths.Docx.SpaceAfter)
	assert.Equal(t, 0.2, next.Lengths.Docx.SpaceBefore)
	assert.Empty(t, tab.Warnings)
}

func TestTableSpacingEncodeExtraSpace(t *testing.T) {
	d := New()
	prev := &Paragraph{Class: ClassSentence}
	tab := &Paragraph{Class: ClassTable}
	tab.Lengths.Docx.SpaceBefore = 1.45
	d.Append(prev)
	d.Append(tab)

	d.titleAndTableSpacingEncode()

	// The extra line above the standard gap survives on the neighbour.
	assert.InDelta(t, 1.45, prev.Lengths.Docx.SpaceAfter, 1e-9)
	assert.Equal(t, 0.0, tab.Lengths.Docx.SpaceBefore)
}

func TestTableSpacingEncodeAtDocumentEnd(t *testing.T) {
	d := New()
	prev := &Paragraph{Class: ClassSentence}
	tab := &Paragraph{Class: ClassTable}
	tab.Lengths.Docx.SpaceBefore = 0.45
	tab.Lengths.Docx.SpaceAfter = 0.2
	cfg := &Paragraph{Class: ClassConfiguration}
	d.Append(prev)
	d.Append(tab)
	d.Append(cfg)

	d.titleAndTableSpacingEncode()

	// Nothing after the table can carry the gap, so it stays put
	// instead of leaking onto the configuration carrier.
	assert.Equal(t, 0.45, prev.Lengths.Docx.SpaceAfter)
	assert.Equal(t, 0.0, tab.Lengths.Docx.SpaceBefore)
	assert.Equal(t, 0.2, tab.Lengths.Docx.SpaceAfter)
	assert.Equal(t, 0.0, cfg.Lengths.Docx.SpaceBefore)
	assert.Empty(t, tab.Warnings)
}

func TestTableSpacingEncodeWarnsOnNegative(t *testing.T) {
	d := New()
	prev := &Paragraph{Class: ClassSentence}
	tab := &Paragraph{Class: ClassTable}
	tab.Lengths.Docx.SpaceBefore = -0.5
	tab.Lengths.Docx.SpaceAfter = -0.1
	next := &Paragraph{Class: ClassSentence}
	d.Append(prev)
	d.Append(tab)
	d.Append(next)

	d.titleAndTableSpacingEncode()

	assert.Equal(t, []string{
		"警告: 段落前の余白「v」の値が小さ過ぎます",
		"警告: 段落後の余白「V」の値が小さ過ぎます",
	}, tab.Warnings)
	assert.InDelta(t, 0.0, prev.Lengths.Docx.SpaceAfter, 1e-9)
	assert.InDelta(t, 0.0, next.Lengths.Docx.SpaceBefore, 1e-9)
}

func TestNormalizeDecoded(t *testing.T) {
	d := New()
	title := &Paragraph{Class: ClassAlignment, Alignment: AlignCenter, Raw: "契約書", Text: "契約書"}
	title.Lengths.Docx.SpaceBefore = 1.0
	title.Lengths.Revise()
	blank := &Paragraph{Class: ClassBlank, Text: ""}
	body := &Paragraph{Class: ClassSentence, Raw: "甲と乙は合意する。", Text: "甲と乙は合意する。"}
	body.Lengths.Docx.FirstIndent = 1
	body.Lengths.Revise()
	d.Append(title)
	d.Append(blank)
	d.Append(body)

	d.NormalizeDecoded()

	assert.Equal(t, []string{"v=1", "# "}, title.PreLines)
	assert.Equal(t, 0.0, title.Lengths.Revi.SpaceBefore)
	assert.Equal(t, ClassEmpty, blank.Class)
	assert.Equal(t, 1.0, body.Lengths.Revi.SpaceBefore)
	assert.Equal(t, 1, body.HeadDepth)
	assert.Equal(t, 0.0, body.Lengths.Revi.FirstIndent)
}

func TestNormalizeForDocx(t *testing.T) {
	d := New()
	title := &Paragraph{Class: ClassSection, HeadDepth: 1, TailDepth: 1}
	title.Lengths.Docx.SpaceBefore = 0.4
	title.Lengths.Docx.SpaceAfter = 0.3
	d.Append(title)

	d.NormalizeForDocx()

	assert.InDelta(t, 0.5, title.Lengths.Docx.SpaceBefore, 1e-9)
	assert.InDelta(t, 0.2, title.Lengths.Docx.SpaceAfter, 1e-9)
}
