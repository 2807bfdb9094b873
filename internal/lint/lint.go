// Package lint checks dialect markdown sources for the mechanical
// mistakes that break a round trip: stray whitespace, tabs inside
// tables, unclosed decorators and fences, and heading-depth jumps.
package lint

import (
	"strings"

	"go.uber.org/zap"
)

// Issue is one finding in a source file.
type Issue struct {
	Rule       string   `json:"rule"`
	Severity   Severity `json:"severity"`
	Line       int      `json:"line"`
	Column     int      `json:"column"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
	CanFix     bool     `json:"can_fix"`
}

// Severity orders findings for display.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// A rule inspects the whole source. Rules that can repair a line do
// so through fixLine; the rest report only.
type rule interface {
	name() string
	check(src *source) []*Issue
}

type fixer interface {
	rule
	fixLine(line string) (string, bool)
}

// Linter runs the dialect rules over a source buffer.
type Linter struct {
	rules []rule
	log   *zap.Logger
}

func New(log *zap.Logger) *Linter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Linter{
		rules: []rule{
			trailingSpaceRule{},
			tabInTableRule{},
			unclosedFenceRule{},
			unclosedDecoratorRule{},
			depthJumpRule{},
			headSpaceRule{},
		},
		log: log,
	}
}

// Check reports every issue without touching the content.
func (l *Linter) Check(content []byte) []*Issue {
	src := newSource(content)
	var issues []*Issue
	for _, r := range l.rules {
		found := r.check(src)
		if len(found) > 0 {
			l.log.Debug("lint rule matched",
				zap.String("rule", r.name()), zap.Int("issues", len(found)))
		}
		issues = append(issues, found...)
	}
	sortIssues(issues)
	return issues
}

// Fix applies the mechanical repairs and returns the fixed content
// together with everything found, fixed or not. Fenced bodies are
// left untouched.
func (l *Linter) Fix(content []byte) ([]byte, []*Issue, error) {
	issues := l.Check(content)

	src := newSource(content)
	for i, line := range src.lines {
		if src.fenced[i] {
			continue
		}
		for _, r := range l.rules {
			f, ok := r.(fixer)
			if !ok {
				continue
			}
			if fixed, changed := f.fixLine(line); changed {
				line = fixed
			}
		}
		src.lines[i] = line
	}

	out := strings.Join(src.lines, "\n")
	if src.finalNewline {
		out += "\n"
	}
	return []byte(out), issues, nil
}

// source is the shared view rules work on: lines plus a mask of the
// lines that sit inside a code fence.
type source struct {
	lines        []string
	fenced       []bool
	finalNewline bool
}

func newSource(content []byte) *source {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	finalNewline := strings.HasSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\n")

	lines := strings.Split(text, "\n")
	fenced := make([]bool, len(lines))
	inFence := false
	for i, ln := range lines {
		if strings.HasPrefix(strings.TrimSpace(ln), "```") {
			inFence = !inFence
			continue
		}
		fenced[i] = inFence
	}
	return &source{lines: lines, fenced: fenced, finalNewline: finalNewline}
}

func sortIssues(issues []*Issue) {
	for i := 1; i < len(issues); i++ {
		for j := i; j > 0 && less(issues[j], issues[j-1]); j-- {
			issues[j], issues[j-1] = issues[j-1], issues[j]
		}
	}
}

func less(a, b *Issue) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}
