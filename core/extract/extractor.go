// Package extract builds a core.Document from an article page.
// It locates the article metadata, walks the content container block by block,
// converts inline formatting to Markdown and collects footnotes and links.
// Every lookup is a best-effort fallback chain: a miss yields an empty value,
// never an error.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/postpipe/core"
	"github.com/gaurav-prasanna/postpipe/core/dom"
	"github.com/gaurav-prasanna/postpipe/crawl"
	"github.com/rs/zerolog/log"
)

// noiseSelectors are removed from a copy of the content container before its
// blocks are read. They contribute no article text.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"button", `[role="button"]`,
	"iframe", "form", "input",
	".paywall", ".subscription-widget-wrap", ".share-dialog",
}

// Trace records which fallbacks produced a Document.
type Trace struct {
	Container      string
	StructuredData LDStatus
}

// HTMLExtractor turns article pages into Documents.
type HTMLExtractor struct{}

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract parses raw HTML loaded from pageURL and extracts its Document.
func (e *HTMLExtractor) Extract(html, pageURL string) (*core.Document, error) {
	if strings.TrimSpace(html) == "" {
		return nil, core.ErrEmptyPage
	}
	page, err := dom.ParseString(html, pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	doc, _ := e.ExtractPage(page)
	return doc, nil
}

// ExtractPage extracts the Document of an already parsed page.
func (e *HTMLExtractor) ExtractPage(page *dom.Page) (*core.Document, Trace) {
	meta, ld := extractMetadata(page)
	trace := Trace{StructuredData: ld.Status}

	doc := &core.Document{
		Metadata:  meta,
		Footnotes: ExtractFootnotes(page),
		SourceURL: page.URL(),
		Kind:      crawl.ClassifyURL(page.URL()),
	}

	container, name := FirstMatch(page, ContainerStrategies)
	trace.Container = name
	if container != nil {
		content := withoutNoise(container)
		doc.Sections = ExtractBlocks(page, content)
		doc.Links = ExtractLinks(page, content)
	}

	log.Debug().
		Str("url", doc.SourceURL).
		Str("kind", string(doc.Kind)).
		Str("container", trace.Container).
		Str("structured_data", trace.StructuredData.String()).
		Int("sections", len(doc.Sections)).
		Int("footnotes", len(doc.Footnotes)).
		Int("links", len(doc.Links)).
		Msg("extracted document")

	return doc, trace
}

// withoutNoise returns a detached copy of container with noise elements removed.
func withoutNoise(container *goquery.Selection) *goquery.Selection {
	clone := container.Clone()
	for _, sel := range noiseSelectors {
		clone.Find(sel).Remove()
	}
	return clone
}
