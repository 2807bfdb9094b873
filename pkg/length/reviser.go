package length

import (
	"regexp"
	"strconv"
)

const number = `[-+]?(?:[0-9]+(?:\.[0-9]+)?|\.[0-9]+)`

var (
	revSpaceBefore = regexp.MustCompile(`^v=(` + number + `)$`)
	revSpaceAfter  = regexp.MustCompile(`^V=(` + number + `)$`)
	revLineSpacing = regexp.MustCompile(`^X=(` + number + `)$`)
	revFirstIndent = regexp.MustCompile(`^<<=(` + number + `)$`)
	revLeftIndent  = regexp.MustCompile(`^<=(` + number + `)$`)
	revRightIndent = regexp.MustCompile(`^>=(` + number + `)$`)
)

var reviserPatterns = []*regexp.Regexp{
	revSpaceBefore, revSpaceAfter, revLineSpacing,
	revFirstIndent, revLeftIndent, revRightIndent,
}

// IsReviser reports whether tok is one of the six length reviser forms.
func IsReviser(tok string) bool {
	for _, re := range reviserPatterns {
		if re.MatchString(tok) {
			return true
		}
	}
	return false
}

// Accumulate folds one reviser token into l and reports whether tok was a
// length reviser at all. Repeated tokens add up. Indent tokens flip sign:
// <<=1 moves the first line one character further left.
func (l *Lengths) Accumulate(tok string) bool {
	switch {
	case revSpaceBefore.MatchString(tok):
		l.SpaceBefore += num(revSpaceBefore, tok)
	case revSpaceAfter.MatchString(tok):
		l.SpaceAfter += num(revSpaceAfter, tok)
	case revLineSpacing.MatchString(tok):
		l.LineSpacing += num(revLineSpacing, tok)
	case revFirstIndent.MatchString(tok):
		l.FirstIndent -= num(revFirstIndent, tok)
	case revLeftIndent.MatchString(tok):
		l.LeftIndent -= num(revLeftIndent, tok)
	case revRightIndent.MatchString(tok):
		l.RightIndent -= num(revRightIndent, tok)
	default:
		return false
	}
	return true
}

// Revisers renders the non-zero components as reviser tokens in canonical
// order, the inverse of Accumulate.
func (l Lengths) Revisers() []string {
	var revs []string
	if l.SpaceBefore != 0 {
		revs = append(revs, "v="+Format(l.SpaceBefore))
	}
	if l.SpaceAfter != 0 {
		revs = append(revs, "V="+Format(l.SpaceAfter))
	}
	if l.LineSpacing != 0 {
		revs = append(revs, "X="+Format(l.LineSpacing))
	}
	if l.FirstIndent != 0 {
		revs = append(revs, "<<="+Format(-l.FirstIndent))
	}
	if l.LeftIndent != 0 {
		revs = append(revs, "<="+Format(-l.LeftIndent))
	}
	if l.RightIndent != 0 {
		revs = append(revs, ">="+Format(-l.RightIndent))
	}
	return revs
}

func num(re *regexp.Regexp, tok string) float64 {
	m := re.FindStringSubmatch(tok)
	v, _ := strconv.ParseFloat(m[1], 64)
	return v
}
