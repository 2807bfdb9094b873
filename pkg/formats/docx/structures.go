package docx

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Names of the parts the parser and renderer touch. Anything else in
// an opened package rides along untouched.
const (
	partContentTypes = "[Content_Types].xml"
	partRootRels     = "_rels/.rels"
	partCore         = "docProps/core.xml"
	partApp          = "docProps/app.xml"
	partDocument     = "word/document.xml"
	partDocumentRels = "word/_rels/document.xml.rels"
	partStyles       = "word/styles.xml"
	partSettings     = "word/settings.xml"
	partComments     = "word/comments.xml"
	mediaPrefix      = "word/media/"
)

// Relationship types used in the package relationship tables.
const (
	relTypeImage    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeHeader   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relTypeFooter   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	relTypeStyles   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeSettings = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/settings"
	relTypeComments = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"
)

const xmlDecl = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Relationship is one entry of a relationship table.
type Relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// Relationships is the parsed form of a .rels part. The tag carries
// only the local name, so any namespace prefix a producer chose is
// accepted.
type Relationships struct {
	XMLName xml.Name       `xml:"Relationships"`
	List    []Relationship `xml:"Relationship"`
}

func parseRelationships(data []byte) (*Relationships, error) {
	var rels Relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships: %w", err)
	}
	return &rels, nil
}

// Target resolves a relationship id to its target, or "".
func (r *Relationships) Target(id string) string {
	for _, rel := range r.List {
		if rel.ID == id {
			return rel.Target
		}
	}
	return ""
}

// coreProperties carries the docProps/core.xml fields the document
// model round-trips. Local-name tags keep the decoder indifferent to
// prefixes and namespaces.
type coreProperties struct {
	XMLName       xml.Name `xml:"coreProperties"`
	Title         string   `xml:"title"`
	Category      string   `xml:"category"`
	Version       string   `xml:"version"`
	ContentStatus string   `xml:"contentStatus"`
	Created       string   `xml:"created"`
	Modified      string   `xml:"modified"`
}

func parseCoreProperties(data []byte) (*coreProperties, error) {
	var core coreProperties
	if err := xml.Unmarshal(data, &core); err != nil {
		return nil, fmt.Errorf("failed to parse core properties: %w", err)
	}
	return &core, nil
}

// Entity escaping for text written inside w:t elements and the
// reverse for text harvested from them. The replacers run in a single
// pass, so already-escaped input cannot be double-unescaped.
var (
	xmlEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;",
	)
	xmlAttrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
	)
	xmlUnescaper = strings.NewReplacer(
		"&lt;", "<", "&gt;", ">", "&quot;", `"`,
		"&apos;", "'", "&#39;", "'", "&amp;", "&",
	)
)

func escapeXML(s string) string  { return xmlEscaper.Replace(s) }
func escapeAttr(s string) string { return xmlAttrEscaper.Replace(s) }

func unescapeXML(s string) string { return xmlUnescaper.Replace(s) }

// mediaContentTypes maps media file extensions to the content type
// declared for them in [Content_Types].xml.
var mediaContentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"emf":  "image/x-emf",
	"wmf":  "image/x-wmf",
	"svg":  "image/svg+xml",
}

const rootRelsXML = xmlDecl +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + "\n" +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` + "\n" +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` + "\n" +
	`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/>` + "\n" +
	`</Relationships>` + "\n"

const appXML = xmlDecl +
	`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">` + "\n" +
	`<Application>docxmd</Application>` + "\n" +
	`</Properties>` + "\n"
