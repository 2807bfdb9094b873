package cli

import (
	"fmt"
	"os"

	markdownfmt "github.com/Kunde21/markdownfmt/v3"
	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-docx-md/internal/logger"
	"github.com/nerdneilsfield/go-docx-md/pkg/formats/markdown"
)

var exportOutput string

func newExportCommand() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export [flags] file.md",
		Short: "方言を一般的な Markdown に書き出す",
		Long: `方言固有の記法（条数見出し、装飾記号、長さ指定）を一般的な
Markdown に落とし、整形して書き出します。方言を知らない相手に
文書を渡すときに使います。`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "出力ファイルのパス (既定: 標準出力)")
	return exportCmd
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.NewLoggerWithVerbose(debugMode, verboseMode)
	defer func() {
		_ = log.Sync()
	}()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	doc, err := markdown.NewParser(log).Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}
	printWarnings(doc.AllWarnings())

	commonmark := markdown.Downgrade(doc)

	formatted, err := markdownfmt.Process("", []byte(commonmark))
	if err != nil {
		return fmt.Errorf("failed to format export: %w", err)
	}

	if exportOutput == "" {
		fmt.Print(string(formatted))
		return nil
	}
	if err := os.WriteFile(exportOutput, formatted, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOutput, err)
	}
	fmt.Printf("wrote %s\n", exportOutput)
	return nil
}
