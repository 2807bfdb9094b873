package lint

import (
	"fmt"
	"strings"

	"github.com/nerdneilsfield/go-docx-md/pkg/decorator"
	"github.com/nerdneilsfield/go-docx-md/pkg/numbering"
)

// trailingSpaceRule flags whitespace at line ends. The reader strips
// it anyway, so the fix is a plain trim.
type trailingSpaceRule struct{}

func (trailingSpaceRule) name() string { return "trailing-space" }

func (trailingSpaceRule) check(src *source) []*Issue {
	var issues []*Issue
	for i, ln := range src.lines {
		if src.fenced[i] {
			continue
		}
		trimmed := strings.TrimRight(ln, " \t　")
		if trimmed != ln {
			issues = append(issues, &Issue{
				Rule:       "trailing-space",
				Severity:   SeverityInfo,
				Line:       i + 1,
				Column:     len([]rune(trimmed)) + 1,
				Message:    "行末に空白があります",
				Suggestion: "行末の空白を削除してください",
				CanFix:     true,
			})
		}
	}
	return issues
}

func (trailingSpaceRule) fixLine(line string) (string, bool) {
	trimmed := strings.TrimRight(line, " \t　")
	return trimmed, trimmed != line
}

// tabInTableRule flags tabs inside table rows, where they shift the
// visual column grid without changing the parsed one.
type tabInTableRule struct{}

func (tabInTableRule) name() string { return "tab-in-table" }

func (tabInTableRule) check(src *source) []*Issue {
	var issues []*Issue
	for i, ln := range src.lines {
		if src.fenced[i] || !strings.HasPrefix(strings.TrimSpace(ln), "|") {
			continue
		}
		if col := strings.IndexRune(ln, '\t'); col >= 0 {
			issues = append(issues, &Issue{
				Rule:       "tab-in-table",
				Severity:   SeverityError,
				Line:       i + 1,
				Column:     len([]rune(ln[:col])) + 1,
				Message:    "表の行にタブ文字があります",
				Suggestion: "タブを空白に置き換えてください",
				CanFix:     true,
			})
		}
	}
	return issues
}

func (tabInTableRule) fixLine(line string) (string, bool) {
	if !strings.HasPrefix(strings.TrimSpace(line), "|") || !strings.ContainsRune(line, '\t') {
		return line, false
	}
	return strings.ReplaceAll(line, "\t", " "), true
}

// unclosedFenceRule flags a ``` fence left open at end of input.
type unclosedFenceRule struct{}

func (unclosedFenceRule) name() string { return "unclosed-fence" }

func (unclosedFenceRule) check(src *source) []*Issue {
	open := -1
	for i, ln := range src.lines {
		if !strings.HasPrefix(strings.TrimSpace(ln), "```") {
			continue
		}
		if open < 0 {
			open = i
		} else {
			open = -1
		}
	}
	if open < 0 {
		return nil
	}
	return []*Issue{{
		Rule:       "unclosed-fence",
		Severity:   SeverityError,
		Line:       open + 1,
		Message:    "コードフェンスが閉じられていません",
		Suggestion: "``` を追加して閉じてください",
	}}
}

// unclosedDecoratorRule runs the decorator scanner over each
// paragraph and surfaces the scanner's own warnings.
type unclosedDecoratorRule struct{}

func (unclosedDecoratorRule) name() string { return "unclosed-decorator" }

func (unclosedDecoratorRule) check(src *source) []*Issue {
	var issues []*Issue
	start := -1
	var body []string

	flush := func() {
		if start < 0 {
			return
		}
		_, warnings := decorator.Split(strings.Join(body, "\n"), decorator.Stack{})
		for _, w := range warnings {
			issues = append(issues, &Issue{
				Rule:       "unclosed-decorator",
				Severity:   SeverityWarning,
				Line:       start + 1,
				Message:    strings.TrimPrefix(w, "警告: "),
				Suggestion: "装飾記号を閉じるか \\ でエスケープしてください",
			})
		}
		start, body = -1, nil
	}

	for i, ln := range src.lines {
		if src.fenced[i] || strings.HasPrefix(strings.TrimSpace(ln), "```") ||
			strings.TrimSpace(ln) == "" {
			flush()
			continue
		}
		if start < 0 {
			start = i
		}
		body = append(body, ln)
	}
	flush()
	return issues
}

// depthJumpRule flags a section or chapter marker more than one level
// deeper than the one before it.
type depthJumpRule struct{}

func (depthJumpRule) name() string { return "depth-jump" }

func (depthJumpRule) check(src *source) []*Issue {
	var issues []*Issue
	prevSection, prevChapter := 0, 0
	for i, ln := range src.lines {
		if src.fenced[i] {
			continue
		}
		if m, ok := numbering.ParseSectionMarker(ln); ok && strings.HasPrefix(ln, "#") {
			if prevSection > 0 && m.Depth > prevSection+1 {
				issues = append(issues, depthJumpIssue(i, "#", prevSection, m.Depth))
			}
			prevSection = m.Depth
			continue
		}
		if m, ok := numbering.ParseChapterMarker(ln); ok && strings.HasPrefix(ln, "$") {
			if prevChapter > 0 && m.Depth > prevChapter+1 {
				issues = append(issues, depthJumpIssue(i, "$", prevChapter, m.Depth))
			}
			prevChapter = m.Depth
		}
	}
	return issues
}

func depthJumpIssue(line int, mark string, from, to int) *Issue {
	return &Issue{
		Rule:     "depth-jump",
		Severity: SeverityWarning,
		Line:     line + 1,
		Message: fmt.Sprintf("見出しの深さが %s から %s へ飛んでいます",
			strings.Repeat(mark, from), strings.Repeat(mark, to)),
		Suggestion: "間の深さの見出しを補ってください",
	}
}

// headSpaceRule flags full-width spaces mixed into a list item's
// indent, where they make the depth ambiguous. The fix rewrites each
// full-width space as two ASCII spaces, matching how depth is counted.
type headSpaceRule struct{}

func (headSpaceRule) name() string { return "fullwidth-indent" }

func (headSpaceRule) check(src *source) []*Issue {
	var issues []*Issue
	for i, ln := range src.lines {
		if src.fenced[i] {
			continue
		}
		if _, ok := numbering.ParseListMarker(ln); !ok {
			continue
		}
		indent := ln[:len(ln)-len(strings.TrimLeft(ln, " \t　"))]
		if strings.Contains(indent, "　") && strings.ContainsAny(indent, " \t") {
			issues = append(issues, &Issue{
				Rule:       "fullwidth-indent",
				Severity:   SeverityWarning,
				Line:       i + 1,
				Column:     1,
				Message:    "箇条書きの字下げに全角空白と半角空白が混在しています",
				Suggestion: "字下げは半角空白に統一してください",
				CanFix:     true,
			})
		}
	}
	return issues
}

func (headSpaceRule) fixLine(line string) (string, bool) {
	if _, ok := numbering.ParseListMarker(line); !ok {
		return line, false
	}
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t　"))]
	if !strings.Contains(indent, "　") || !strings.ContainsAny(indent, " \t") {
		return line, false
	}
	fixed := strings.ReplaceAll(indent, "　", "  ") + line[len(indent):]
	return fixed, true
}
