// Package length converts paragraph spacing and indentation between raw
// WordprocessingML measurements and the character units used by length
// revisers (v=, V=, X=, <<=, <=, >=).
//
// All exposed values are deltas in character units: one unit of indent is one
// full-width character at the paragraph font size, one unit of spacing is one
// line at the configured line spacing. Each paragraph class carries a
// baseline (a level-2 section heading is indented one character, a table gets
// extra space above and below); revisers express only the remainder after
// that baseline and the Form-level defaults are taken out.
package length

import (
	"math"
	"strconv"
)

// Lengths holds the six per-paragraph length values in character units.
// The zero value means "exactly the baseline".
type Lengths struct {
	SpaceBefore float64
	SpaceAfter  float64
	LineSpacing float64
	FirstIndent float64
	LeftIndent  float64
	RightIndent float64
}

// IsZero reports whether every component is exactly zero.
func (l Lengths) IsZero() bool {
	return l == Lengths{}
}

// Add returns the component-wise sum of l and o.
func (l Lengths) Add(o Lengths) Lengths {
	return Lengths{
		SpaceBefore: l.SpaceBefore + o.SpaceBefore,
		SpaceAfter:  l.SpaceAfter + o.SpaceAfter,
		LineSpacing: l.LineSpacing + o.LineSpacing,
		FirstIndent: l.FirstIndent + o.FirstIndent,
		LeftIndent:  l.LeftIndent + o.LeftIndent,
		RightIndent: l.RightIndent + o.RightIndent,
	}
}

// Residual returns docx minus the class and configuration baselines,
// component-wise, snapped. The result is what gets written out as revisers.
func Residual(docx, class, config Lengths) Lengths {
	return Lengths{
		SpaceBefore: Snap(docx.SpaceBefore - class.SpaceBefore - config.SpaceBefore),
		SpaceAfter:  Snap(docx.SpaceAfter - class.SpaceAfter - config.SpaceAfter),
		LineSpacing: Snap(docx.LineSpacing - class.LineSpacing - config.LineSpacing),
		FirstIndent: Snap(docx.FirstIndent - class.FirstIndent - config.FirstIndent),
		LeftIndent:  Snap(docx.LeftIndent - class.LeftIndent - config.LeftIndent),
		RightIndent: Snap(docx.RightIndent - class.RightIndent - config.RightIndent),
	}
}

// Twips carries the raw paragraph measurements read from or written to
// WordprocessingML, in twentieths of a point.
type Twips struct {
	Before    float64 // w:spacing w:before
	After     float64 // w:spacing w:after
	Line      float64 // w:spacing w:line
	FirstLine float64 // w:ind w:firstLine
	Hanging   float64 // w:ind w:hanging
	Left      float64 // w:ind w:left
	Right     float64 // w:ind w:right
	TableInd  float64 // w:tblInd w:w
}

// FromTwips converts raw measurements to character units. Word folds part of
// the line-spacing surplus into the gaps around a paragraph: the space before
// hides three quarters of it and the space after one quarter. Both shares are
// given back here so revisers describe the visible gap.
func FromTwips(t Twips, fontSize, lineSpacing float64) Lengths {
	sb := round2(t.Before / 20 / fontSize / lineSpacing)
	sa := round2(t.After / 20 / fontSize / lineSpacing)
	ls := 0.0
	if t.Line > 0 {
		ls = t.Line/20/fontSize/lineSpacing - 1
	}
	ls = Snap(ls)
	ls75 := round2(ls * 0.75)
	ls25 := round2(ls * 0.25)
	if ls <= 0 {
		if sb >= ls75*2 {
			sb += ls75
		} else if sb >= 0 {
			sb /= 2
		}
		if sa >= ls25*2 {
			sa += ls25
		} else if sa >= 0 {
			sa /= 2
		}
	} else {
		if sb >= ls75 {
			sb += ls75
		} else if sb >= 0 {
			sb *= 2
		}
		if sa >= ls25 {
			sa += ls25
		} else if sa >= 0 {
			sa *= 2
		}
	}
	return Lengths{
		SpaceBefore: Snap(sb),
		SpaceAfter:  Snap(sa),
		LineSpacing: ls,
		FirstIndent: Snap((t.FirstLine - t.Hanging) / 20 / fontSize),
		LeftIndent:  Snap((t.Left + t.TableInd) / 20 / fontSize),
		RightIndent: Snap(t.Right / 20 / fontSize),
	}
}

// ToTwips converts character units back to raw measurements, re-hiding the
// line-spacing shares that FromTwips gave back. Negative space collapses to
// zero and a line spacing below one line is raised to one line; both
// conditions add a warning.
func (l Lengths) ToTwips(fontSize, lineSpacing float64) (Twips, []string) {
	var warnings []string
	sb := l.SpaceBefore
	sa := l.SpaceAfter
	ls75 := l.LineSpacing * 0.75
	ls25 := l.LineSpacing * 0.25
	if l.LineSpacing <= 0 {
		if sb >= ls75 {
			sb -= ls75
		} else if sb >= 0 {
			sb *= 2
		}
		if sa >= ls25 {
			sa -= ls25
		} else if sa >= 0 {
			sa *= 2
		}
	} else {
		if sb >= ls75*2 {
			sb -= ls75
		} else if sb >= 0 {
			sb /= 2
		}
		if sa >= ls25*2 {
			sa -= ls25
		} else if sa >= 0 {
			sa *= 2
		}
	}
	var t Twips
	if sb >= 0 {
		t.Before = sb * lineSpacing * fontSize * 20
	} else {
		warnings = append(warnings,
			"警告: 段落前の余白「v」の値が小さ過ぎます")
	}
	if sa >= 0 {
		t.After = sa * lineSpacing * fontSize * 20
	} else {
		warnings = append(warnings,
			"警告: 段落後の余白「V」の値が小さ過ぎます")
	}
	ls := lineSpacing * (1 + l.LineSpacing)
	if ls < 1.0 {
		ls = 1.0
		warnings = append(warnings,
			"警告: 改行幅「X」の値が小さ過ぎます")
	}
	t.Line = ls * fontSize * 20
	fi := l.FirstIndent * fontSize * 20
	if fi >= 0 {
		t.FirstLine = fi
	} else {
		t.Hanging = -fi
	}
	t.Left = l.LeftIndent * fontSize * 20
	t.Right = l.RightIndent * fontSize * 20
	return t, warnings
}

// Fractions a drifting measurement may legitimately mean. Word stores twips
// as integers, so a third of a line comes back as 0.3329…; everything inside
// the window prints as the fraction's two-decimal form.
var snapTargets = [...]struct {
	exact     float64
	canonical float64
}{
	{1.0 / 6.0, 0.17},
	{1.0 / 4.0, 0.25},
	{1.0 / 3.0, 0.33},
	{2.0 / 3.0, 0.67},
	{3.0 / 4.0, 0.75},
	{5.0 / 6.0, 0.83},
}

// Snap rounds x to two decimals, except that a fractional part within ±0.02
// of a sixth, a quarter or a third locks onto that fraction.
func Snap(x float64) float64 {
	n := math.Floor(x)
	f := x - n
	for _, t := range snapTargets {
		if math.Abs(f-t.exact) <= 0.02 {
			return round2(n + t.canonical)
		}
	}
	return round2(x)
}

// Round half to even, matching how twip-quantized ties cancel across the
// give-back in FromTwips.
func round2(x float64) float64 {
	return math.RoundToEven(x*100) / 100
}

// Format renders a value the way revisers write numbers: shortest decimal
// form, no trailing zeros.
func Format(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
