// Package transcode drives a whole conversion run: open the input,
// decode it into the document model, run the normalize passes for the
// target side, render, and write the output files.
package transcode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-docx-md/pkg/document"
	"github.com/nerdneilsfield/go-docx-md/pkg/formats/docx"
	"github.com/nerdneilsfield/go-docx-md/pkg/formats/markdown"
)

// Options tune a transcoder. The zero value is usable.
type Options struct {
	// MediaDir is the directory name image files are written to and
	// read from, relative to the markdown file. Defaults to "media".
	MediaDir string

	// Form overrides applied after the input's own configuration has
	// been read. Nil fields keep the input values.
	Overrides func(*document.Form)
}

// Result summarizes one conversion run.
type Result struct {
	Input    string
	Output   string
	Classes  map[string]int
	Media    []string
	Warnings []string
	Duration time.Duration
}

// Transcoder converts between packages and markup files.
type Transcoder struct {
	opts Options
	log  *zap.Logger
}

// New creates a transcoder.
func New(opts Options, log *zap.Logger) *Transcoder {
	if opts.MediaDir == "" {
		opts.MediaDir = "media"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Transcoder{opts: opts, log: log}
}

// Convert dispatches on the input extension: a .docx input is decoded
// to markup, anything else is treated as markup and encoded to a
// package.
func (t *Transcoder) Convert(ctx context.Context, in, out string) (*Result, error) {
	if strings.EqualFold(filepath.Ext(in), ".docx") {
		return t.DocxToMarkdown(ctx, in, out)
	}
	return t.MarkdownToDocx(ctx, in, out)
}

// DocxToMarkdown decodes a package into markup. Image parts are
// written next to the output file, under the media directory.
func (t *Transcoder) DocxToMarkdown(ctx context.Context, in, out string) (*Result, error) {
	started := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pkg, err := docx.OpenFile(in)
	if err != nil {
		return nil, err
	}
	doc, err := docx.NewParser(t.opts.MediaDir, t.log).Parse(pkg)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", in, err)
	}
	if t.opts.Overrides != nil {
		t.opts.Overrides(doc.Form)
	}
	doc.NormalizeDecoded()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := markdown.NewRenderer(t.log).Render(doc)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
		return nil, err
	}
	media, err := t.writeMedia(doc, filepath.Dir(out))
	if err != nil {
		return nil, err
	}
	res := t.result(doc, in, out, started)
	res.Media = media
	t.log.Info("converted package to markup",
		zap.String("input", in), zap.String("output", out),
		zap.Int("paragraphs", len(doc.Paragraphs)),
		zap.Int("warnings", len(res.Warnings)),
		zap.Duration("elapsed", res.Duration))
	return res, nil
}

// MarkdownToDocx encodes a markup file into a package. Image
// references are resolved relative to the input file and embedded.
func (t *Transcoder) MarkdownToDocx(ctx context.Context, in, out string) (*Result, error) {
	started := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return nil, err
	}
	doc, err := markdown.NewParser(t.log).Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", in, err)
	}
	if t.opts.Overrides != nil {
		t.opts.Overrides(doc.Form)
	}
	t.loadMedia(doc, filepath.Dir(in))
	doc.NormalizeForDocx()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pkg, err := docx.NewRenderer(t.log).Render(doc)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", out, err)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, err
	}
	if err := pkg.SaveFile(out); err != nil {
		return nil, err
	}
	res := t.result(doc, in, out, started)
	t.log.Info("converted markup to package",
		zap.String("input", in), zap.String("output", out),
		zap.Int("paragraphs", len(doc.Paragraphs)),
		zap.Int("warnings", len(res.Warnings)),
		zap.Duration("elapsed", res.Duration))
	return res, nil
}

func (t *Transcoder) result(doc *document.Document, in, out string, started time.Time) *Result {
	classes := map[string]int{}
	for _, p := range doc.Paragraphs {
		classes[p.Class.String()]++
	}
	return &Result{
		Input:    in,
		Output:   out,
		Classes:  classes,
		Warnings: doc.AllWarnings(),
		Duration: time.Since(started),
	}
}

// writeMedia stores the embedded image parts on disk and returns the
// written paths.
func (t *Transcoder) writeMedia(doc *document.Document, dir string) ([]string, error) {
	if len(doc.Media) == 0 {
		return nil, nil
	}
	mediaDir := filepath.Join(dir, t.opts.MediaDir)
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return nil, err
	}
	var out []string
	for name, data := range doc.Media {
		p := filepath.Join(mediaDir, name)
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

var imageRefRe = regexp.MustCompile(`! *\[[^\[\]]*\] *\(([^()]+)\)`)

// loadMedia reads every referenced image from disk into the document.
// A missing file leaves a warning; the renderer then skips the
// reference. References from different directories may share a base
// name, so each one registers under a unique stored name and Refs
// keeps the reference pointing at it.
func (t *Transcoder) loadMedia(doc *document.Document, dir string) {
	seen := map[string]bool{}
	load := func(ref string) {
		if ref == "" || seen[ref] {
			return
		}
		seen[ref] = true
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(ref)))
		if err != nil {
			doc.Warn("※ 警告: 画像「" + ref + "」を読み込めません")
			t.log.Warn("image not readable", zap.String("path", ref), zap.Error(err))
			return
		}
		stored := doc.AddMedia(filepath.Base(filepath.FromSlash(ref)), data)
		doc.Refs[ref] = stored
	}
	for _, p := range doc.Paragraphs {
		for _, img := range p.Images {
			load(img.Path)
		}
		for _, m := range imageRefRe.FindAllStringSubmatch(p.Text, -1) {
			load(m[1])
		}
	}
}
