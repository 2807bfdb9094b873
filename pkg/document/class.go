// Package document holds the paragraph model shared by both
// conversion directions: the ordered paragraph classifier, the
// per-class variant data, the document Form, and the normalize passes
// that run over a classified paragraph sequence.
package document

import "github.com/nerdneilsfield/go-docx-md/pkg/length"

// Class is the paragraph class. Classification is ordered and
// exclusive: the first matching predicate in declaration order wins.
type Class int

const (
	ClassEmpty Class = iota
	ClassBlank
	ClassChapter
	ClassSection
	ClassList
	ClassTable
	ClassImage
	ClassMath
	ClassAlignment
	ClassPreformatted
	ClassHorizontalLine
	ClassPageBreak
	ClassBreakdown
	ClassRemarks
	ClassConfiguration
	ClassSentence
)

var classNames = [...]string{
	"empty", "blank", "chapter", "section", "list", "table", "image",
	"math", "alignment", "preformatted", "horizontalline", "pagebreak",
	"breakdown", "remarks", "configuration", "sentence",
}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "unknown"
	}
	return classNames[c]
}

// Japanese returns the class name used in warning messages.
func (c Class) Japanese() string {
	switch c {
	case ClassChapter:
		return "チャプター"
	case ClassSection:
		return "セクション"
	case ClassList:
		return "リスト"
	case ClassTable:
		return "テーブル"
	case ClassImage:
		return "イメージ"
	}
	return c.String()
}

// LengthClass maps a paragraph class to its length baseline family.
func (c Class) LengthClass() length.Class {
	switch c {
	case ClassChapter:
		return length.ClassChapter
	case ClassSection:
		return length.ClassSection
	case ClassList:
		return length.ClassList
	case ClassTable:
		return length.ClassTable
	case ClassPreformatted:
		return length.ClassPreformatted
	case ClassSentence, ClassMath, ClassBreakdown:
		return length.ClassSentence
	}
	return length.ClassOther
}
