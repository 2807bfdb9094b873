// Package docx reads and writes the zip packages word processors
// exchange and translates between their XML parts and the document
// model. A package is held fully in memory as named parts; Parser
// turns parts into a Document, Renderer does the reverse.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Package is a word-processor file held in memory as its named parts.
// Part names use forward slashes relative to the package root. The
// insertion order is preserved so a rewritten package keeps a stable
// part layout.
type Package struct {
	parts map[string][]byte
	order []string
}

// NewPackage returns an empty package.
func NewPackage() *Package {
	return &Package{parts: map[string][]byte{}}
}

// Open reads a zip package from data.
func Open(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open package: %w", err)
	}
	pkg := NewPackage()
	for _, f := range zr.File {
		name := filepath.ToSlash(f.Name)
		if strings.HasPrefix(name, "/") || strings.Contains(name, "..") {
			return nil, fmt.Errorf("unsafe part name in package: %s", f.Name)
		}
		if strings.HasSuffix(name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open part %s: %w", name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read part %s: %w", name, err)
		}
		pkg.SetPart(name, content)
	}
	return pkg, nil
}

// OpenFile reads a zip package from path.
func OpenFile(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	pkg, err := Open(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pkg, nil
}

// Part returns the content of the named part and whether it exists.
func (p *Package) Part(name string) ([]byte, bool) {
	data, ok := p.parts[name]
	return data, ok
}

// HasPart reports whether the named part exists.
func (p *Package) HasPart(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// SetPart stores content under name. A part set for the first time is
// appended to the order; resetting an existing part keeps its slot.
func (p *Package) SetPart(name string, content []byte) {
	if _, ok := p.parts[name]; !ok {
		p.order = append(p.order, name)
	}
	p.parts[name] = content
}

// PartNames returns the part names in insertion order.
func (p *Package) PartNames() []string {
	return append([]string(nil), p.order...)
}

// Bytes serializes the package as a zip archive.
func (p *Package) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range p.order {
		w, err := zw.Create(name)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to create part %s: %w", name, err)
		}
		if _, err := w.Write(p.parts[name]); err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to write part %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish package: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveFile writes the package to path. The archive is written next to
// the target first and moved into place, so an interrupted save never
// leaves a half-written file behind.
func (p *Package) SaveFile(path string) error {
	data, err := p.Bytes()
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
