// Package render: JSON renderer.
// Dumps the Document model together with counts of its structural elements.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/postpipe/core"
)

// DocumentStats counts the structural elements of a Document.
type DocumentStats struct {
	Headings   int `json:"headings"`
	Paragraphs int `json:"paragraphs"`
	Lists      int `json:"lists"`
	ListItems  int `json:"list_items"`
	Quotes     int `json:"blockquotes"`
	CodeBlocks int `json:"code_blocks"`
	Images     int `json:"images"`
	Footnotes  int `json:"footnotes"`
	Links      int `json:"links"`
}

// DocumentJSON is the top-level JSON output.
type DocumentJSON struct {
	*core.Document
	Filename string        `json:"filename,omitempty"`
	Stats    DocumentStats `json:"stats"`
}

// JSONRenderer produces the JSON dump of a Document.
type JSONRenderer struct {
	filename FilenameOptions
}

// NewJSONRenderer creates a JSONRenderer. The suggested Markdown filename is
// derived with opts.
func NewJSONRenderer(opts FilenameOptions) *JSONRenderer {
	return &JSONRenderer{filename: opts}
}

// Render marshals doc as indented JSON. Assets are not embedded.
func (r *JSONRenderer) Render(doc *core.Document, _ core.AssetMap) ([]byte, error) {
	out := DocumentJSON{
		Document: doc,
		Filename: Filename(doc.Metadata, r.filename),
		Stats:    Stats(doc),
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

// Stats counts the sections, footnotes and links of doc.
func Stats(doc *core.Document) DocumentStats {
	var s DocumentStats
	for _, sec := range doc.Sections {
		switch sec.Kind {
		case core.SectionHeading:
			s.Headings++
		case core.SectionParagraph:
			s.Paragraphs++
		case core.SectionList:
			s.Lists++
			s.ListItems += len(sec.Items)
		case core.SectionBlockquote:
			s.Quotes++
		case core.SectionCode:
			s.CodeBlocks++
		case core.SectionImage:
			s.Images++
		}
	}
	s.Footnotes = len(doc.Footnotes)
	s.Links = len(doc.Links)
	return s
}
