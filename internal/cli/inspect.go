package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-docx-md/internal/logger"
	"github.com/nerdneilsfield/go-docx-md/pkg/document"
	"github.com/nerdneilsfield/go-docx-md/pkg/formats/docx"
	"github.com/nerdneilsfield/go-docx-md/pkg/formats/markdown"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect file.(docx|md)",
		Short: "段落の分類結果を一覧表示する",
		Long: `ファイルを解析し、段落ごとの分類・深さ・指定記号・警告を表に
して表示します。変換結果が思いどおりでないときの調査用です。`,
		Args: cobra.ExactArgs(1),
		RunE: runInspect,
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	log := logger.NewLoggerWithVerbose(debugMode, verboseMode)
	defer func() {
		_ = log.Sync()
	}()

	doc, err := parseAny(args[0], log)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(inspectTitle(doc))
	t.AppendHeader(table.Row{"#", "分類", "深さ", "指定", "警告", "本文"})
	for _, p := range doc.Paragraphs {
		t.AppendRow(table.Row{
			p.Number,
			p.Class.String(),
			depthColumn(p),
			strings.Join(revisers(p), " "),
			len(p.Warnings),
			snippet(p.Text, 28),
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()

	printWarnings(doc.AllWarnings())
	return nil
}

func parseAny(path string, zl *zap.Logger) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".docx") {
		pkg, err := docx.Open(data)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		doc, err := docx.NewParser("media", zl).Parse(pkg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		doc.NormalizeDecoded()
		return doc, nil
	}
	doc, err := markdown.NewParser(zl).Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

func inspectTitle(doc *document.Document) string {
	if doc.Form.DocumentTitle != "" {
		return doc.Form.DocumentTitle
	}
	return fmt.Sprintf("%d 段落", len(doc.Paragraphs))
}

func depthColumn(p *document.Paragraph) string {
	switch p.Class {
	case document.ClassChapter, document.ClassList:
		return fmt.Sprintf("%d", p.ProperDepth)
	case document.ClassSection:
		if p.HeadDepth == p.TailDepth {
			return fmt.Sprintf("%d", p.HeadDepth)
		}
		return fmt.Sprintf("%d-%d", p.HeadDepth, p.TailDepth)
	}
	return ""
}

func revisers(p *document.Paragraph) []string {
	var out []string
	out = append(out, p.NumberingRevisers...)
	out = append(out, p.LengthRevisers...)
	out = append(out, p.DepthSetters...)
	return out
}

func snippet(text string, limit int) string {
	line := strings.SplitN(text, "\n", 2)[0]
	runes := []rune(line)
	if len(runes) > limit {
		return string(runes[:limit]) + "…"
	}
	return line
}
