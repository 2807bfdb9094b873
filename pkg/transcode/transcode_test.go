package transcode

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-docx-md/pkg/document"
)

const cycleMarkup = "<!-- 書題名: 業務委託契約書 -->\n" +
	"<!-- 文書式: 契約 -->\n" +
	"\n" +
	"# 業務委託契約書\n" +
	"\n" +
	"## 委託業務\n" +
	"\n" +
	"甲は乙に対し、次の業務を委託する。\n" +
	"\n" +
	"- 設計業務\n" +
	"- 保守業務\n"

func TestMarkdownToDocx(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "contract.md")
	out := filepath.Join(dir, "contract.docx")
	require.NoError(t, os.WriteFile(in, []byte(cycleMarkup), 0o644))

	tr := New(Options{}, nil)
	res, err := tr.MarkdownToDocx(context.Background(), in, out)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Classes["section"])
	assert.Equal(t, 2, res.Classes["list"])
	assert.Equal(t, 1, res.Classes["sentence"])
	assert.FileExists(t, out)
}

func TestFullCycle(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "contract.md")
	pkgPath := filepath.Join(dir, "contract.docx")
	back := filepath.Join(dir, "back.md")
	require.NoError(t, os.WriteFile(in, []byte(cycleMarkup), 0o644))

	tr := New(Options{}, nil)
	_, err := tr.MarkdownToDocx(context.Background(), in, pkgPath)
	require.NoError(t, err)
	res, err := tr.DocxToMarkdown(context.Background(), pkgPath, back)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Classes["section"])

	out, err := os.ReadFile(back)
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "書題名: 業務委託契約書")
	assert.Contains(t, s, "# 業務委託契約書")
	assert.Contains(t, s, "## 委託業務")
	assert.Contains(t, s, "- 設計業務")
	assert.NotContains(t, s, "第１条")
}

func TestConvertDispatch(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "contract.md")
	out := filepath.Join(dir, "contract.docx")
	require.NoError(t, os.WriteFile(in, []byte(cycleMarkup), 0o644))

	tr := New(Options{}, nil)
	res, err := tr.Convert(context.Background(), in, out)
	require.NoError(t, err)
	assert.Equal(t, out, res.Output)

	back := filepath.Join(dir, "again.md")
	res, err = tr.Convert(context.Background(), out, back)
	require.NoError(t, err)
	assert.Equal(t, back, res.Output)
}

func TestConvertCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := New(Options{}, nil)
	_, err := tr.MarkdownToDocx(ctx, "in.md", "out.docx")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOverrides(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "doc.md")
	out := filepath.Join(dir, "doc.docx")
	back := filepath.Join(dir, "back.md")
	require.NoError(t, os.WriteFile(in, []byte("<!-- 書題名: 試験 -->\n\n本文です。\n"), 0o644))

	tr := New(Options{Overrides: func(f *document.Form) { f.PaperSize = "A3L" }}, nil)
	_, err := tr.MarkdownToDocx(context.Background(), in, out)
	require.NoError(t, err)
	_, err = New(Options{}, nil).DocxToMarkdown(context.Background(), out, back)
	require.NoError(t, err)

	data, _ := os.ReadFile(back)
	assert.True(t, strings.Contains(string(data), "A3L") ||
		strings.Contains(string(data), "用紙サ: A3L"))
}

func TestLoadMediaSameBaseName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "logo.png"), []byte{1}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b", "logo.png"), []byte{2}, 0o644))

	doc := document.New()
	p := &document.Paragraph{Text: "![甲](a/logo.png)と![乙](b/logo.png)"}
	doc.Append(p)

	New(Options{}, nil).loadMedia(doc, dir)

	require.Len(t, doc.Media, 2)
	assert.Equal(t, []byte{1}, doc.Media[doc.Refs["a/logo.png"]])
	assert.Equal(t, []byte{2}, doc.Media[doc.Refs["b/logo.png"]])
	assert.NotEqual(t, doc.Refs["a/logo.png"], doc.Refs["b/logo.png"])
	assert.Empty(t, doc.AllWarnings())
}

func TestMissingImageWarns(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "doc.md")
	out := filepath.Join(dir, "doc.docx")
	src := "<!-- 書題名: 試験 -->\n\n![figure](media/missing.png)\n"
	require.NoError(t, os.WriteFile(in, []byte(src), 0o644))

	res, err := New(Options{}, nil).MarkdownToDocx(context.Background(), in, out)
	require.NoError(t, err)
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "missing.png") {
			found = true
		}
	}
	assert.True(t, found)
}
