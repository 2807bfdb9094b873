package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	mathjax "github.com/litao91/goldmark-mathjax"
	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/nerdneilsfield/go-docx-md/internal/logger"
	"github.com/nerdneilsfield/go-docx-md/pkg/formats/markdown"
)

var previewOutput string

func newPreviewCommand() *cobra.Command {
	previewCmd := &cobra.Command{
		Use:   "preview [flags] file.md",
		Short: "方言の Markdown を HTML にして確認する",
		Long: `方言を一般的な Markdown に落としてから HTML を生成します。
数式は MathJax で描画され、見出しから目次を組み立てます。`,
		Args: cobra.ExactArgs(1),
		RunE: runPreview,
	}
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "出力 HTML のパス (既定: 標準出力)")
	return previewCmd
}

func runPreview(cmd *cobra.Command, args []string) error {
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

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			mathjax.MathJax,
			meta.Meta,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)

	var body bytes.Buffer
	ctx := parser.NewContext()
	if err := md.Convert([]byte(commonmark), &body, parser.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}

	title := doc.Form.DocumentTitle
	if title == "" {
		if t, ok := meta.Get(ctx)["title"].(string); ok {
			title = t
		}
	}
	if title == "" {
		title = args[0]
	}

	page, err := buildPage(title, body.Bytes())
	if err != nil {
		return err
	}

	if previewOutput == "" {
		fmt.Print(page)
		return nil
	}
	if err := os.WriteFile(previewOutput, []byte(page), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", previewOutput, err)
	}
	fmt.Printf("wrote %s\n", previewOutput)
	return nil
}

// buildPage wraps the rendered body in a page shell and injects a
// table of contents collected from the headings.
func buildPage(title string, body []byte) (string, error) {
	shell := fmt.Sprintf(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>%s</title>
<script src="https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-mml-chtml.js" async></script>
<style>
body { max-width: 46em; margin: 2em auto; font-family: serif; line-height: 1.8; }
nav.toc { border: 1px solid #ccc; padding: 0.5em 1.5em; margin-bottom: 2em; }
table { border-collapse: collapse; }
td, th { border: 1px solid #666; padding: 0.2em 0.6em; }
</style>
</head>
<body>
%s
</body>
</html>
`, htmlEscape(title), body)

	gq, err := goquery.NewDocumentFromReader(strings.NewReader(shell))
	if err != nil {
		return "", fmt.Errorf("failed to build table of contents: %w", err)
	}

	var toc strings.Builder
	gq.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		id, ok := s.Attr("id")
		if !ok {
			return
		}
		level := s.Nodes[0].Data // "h1".."h3"
		indent := strings.Repeat("　", int(level[1]-'1'))
		toc.WriteString(fmt.Sprintf(`<li>%s<a href="#%s">%s</a></li>`,
			indent, id, htmlEscape(s.Text())))
		toc.WriteString("\n")
	})
	if toc.Len() > 0 {
		gq.Find("body").PrependHtml(
			"<nav class=\"toc\"><ul>\n" + toc.String() + "</ul></nav>\n")
	}

	out, err := gq.Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize preview: %w", err)
	}
	if !strings.HasPrefix(out, "<!DOCTYPE") {
		out = "<!DOCTYPE html>\n" + out
	}
	return out, nil
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
