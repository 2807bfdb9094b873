package charwidth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{name: "empty", input: "", expected: 0},
		{name: "ascii", input: "abc", expected: 3},
		{name: "hiragana", input: "あいう", expected: 6},
		{name: "kanji", input: "契約書", expected: 6},
		{name: "narrow then wide", input: "aあ", expected: 3.5},
		{name: "wide then narrow", input: "あa", expected: 3.5},
		{name: "two class switches", input: "aあa", expected: 5},
		{name: "no switch between wides", input: "あ☆", expected: 4},
		{name: "tab advances to eighth column", input: "a\tb", expected: 9},
		{name: "tab from column eight", input: "12345678\tx", expected: 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RealWidth(tt.input))
		})
	}
}

func TestRealWidthForcedWide(t *testing.T) {
	// Ambiguous-width symbols and letters that Japanese fonts render
	// double width.
	for _, s := range []string{"☆", "→", "※", "Α", "ω", "Д", "ё", "①", "⒇", "Ⅻ", "ⓩ", "㋐", "㊉", "─", "№"} {
		assert.Equal(t, 2.0, RealWidth(s), "RealWidth(%q)", s)
	}
}

func TestIdealWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "empty", input: "", expected: 0},
		{name: "ascii", input: "abc", expected: 3},
		{name: "hiragana", input: "あいう", expected: 6},
		{name: "mixed has no letter spacing", input: "aあa", expected: 4},
		{name: "halfwidth katakana", input: "ｱｲｳ", expected: 3},
		{name: "tab", input: "ab\tc", expected: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IdealWidth(tt.input))
		})
	}

	// Ambiguous symbols measure narrow here even though they render wide.
	assert.Equal(t, 1, IdealWidth("☆"))
	assert.Equal(t, 2.0, RealWidth("☆"))
}

func TestWide(t *testing.T) {
	assert.True(t, Wide('あ'))
	assert.True(t, Wide('Ａ'))
	assert.True(t, Wide('☆'))
	assert.True(t, Wide('Я'))
	assert.False(t, Wide('a'))
	assert.False(t, Wide('ｱ'))
	assert.False(t, Wide(' '))
}
