package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-docx-md/internal/lint"
	"github.com/nerdneilsfield/go-docx-md/internal/logger"
)

var lintFix bool

func newLintCommand() *cobra.Command {
	lintCmd := &cobra.Command{
		Use:   "lint [flags] file.md...",
		Short: "Markdown 方言の記法を検査する",
		Long: `行末の空白、表の中のタブ、閉じられていない装飾記号やコード
フェンス、見出しの深さ跳び、字下げの全角空白混在を検査します。
--fix で機械的に直せる問題をその場で修正します。`,
		Args: cobra.MinimumNArgs(1),
		RunE: runLint,
	}
	lintCmd.Flags().BoolVar(&lintFix, "fix", false, "修正可能な問題をその場で直す")
	return lintCmd
}

func runLint(cmd *cobra.Command, args []string) error {
	log := logger.NewLoggerWithVerbose(debugMode, verboseMode)
	defer func() {
		_ = log.Sync()
	}()

	linter := lint.New(log)
	var total, errors int

	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		var issues []*lint.Issue
		if lintFix {
			fixed, found, err := linter.Fix(content)
			if err != nil {
				return fmt.Errorf("failed to fix %s: %w", path, err)
			}
			issues = found
			if string(fixed) != string(content) {
				if err := os.WriteFile(path, fixed, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				fmt.Printf("%s: 修正しました\n", path)
			}
		} else {
			issues = linter.Check(content)
		}

		total += len(issues)
		for _, issue := range issues {
			printIssue(path, issue)
			if issue.Severity == lint.SeverityError {
				errors++
			}
		}
	}

	if total == 0 {
		fmt.Println("問題は見つかりませんでした")
		return nil
	}
	if errors > 0 && !lintFix {
		return fmt.Errorf("%d error(s) found", errors)
	}
	return nil
}

func printIssue(path string, issue *lint.Issue) {
	c := color.New(color.FgCyan)
	switch issue.Severity {
	case lint.SeverityWarning:
		c = color.New(color.FgYellow)
	case lint.SeverityError:
		c = color.New(color.FgRed)
	}

	pos := fmt.Sprintf("%s:%d", path, issue.Line)
	if issue.Column > 0 {
		pos += fmt.Sprintf(":%d", issue.Column)
	}
	c.Printf("%s [%s/%s] %s\n", pos, issue.Severity, issue.Rule, issue.Message)
	if issue.Suggestion != "" {
		fmt.Printf("    %s\n", issue.Suggestion)
	}
}
