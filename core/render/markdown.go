// Package render provides output renderers for the postpipe pipeline.
// Every renderer is a pure function of a Document, an optional AssetMap and
// the options it was built with.
package render

import (
	"strings"
	"time"

	"github.com/gaurav-prasanna/postpipe/core"
)

// MarkdownOptions configures the Markdown renderer.
type MarkdownOptions struct {
	IncludeFrontMatter bool
	// FrontMatterTemplate replaces the fixed front matter keys when set.
	FrontMatterTemplate string
	IncludeCover        bool
	// Location is the calendar zone used for dates. Nil means time.Local.
	Location *time.Location
}

// DefaultMarkdownOptions returns the options used when nothing is configured.
func DefaultMarkdownOptions() MarkdownOptions {
	return MarkdownOptions{IncludeCover: true}
}

// MarkdownRenderer serializes a Document to Markdown.
type MarkdownRenderer struct {
	opts MarkdownOptions
}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer(opts MarkdownOptions) *MarkdownRenderer {
	return &MarkdownRenderer{opts: opts}
}

// Render returns the Markdown for doc. Image references found in assets are
// replaced by the asset path; the rest keep their original URL.
func (r *MarkdownRenderer) Render(doc *core.Document, assets core.AssetMap) ([]byte, error) {
	return []byte(r.RenderString(doc, assets)), nil
}

// RenderString is Render returning a string.
func (r *MarkdownRenderer) RenderString(doc *core.Document, assets core.AssetMap) string {
	loc := r.opts.Location
	if loc == nil {
		loc = time.Local
	}
	meta := doc.Metadata

	var b strings.Builder
	if r.opts.IncludeFrontMatter {
		b.WriteString(frontMatter(doc, r.opts.FrontMatterTemplate, loc))
	}

	title := meta.Title
	if title == "" {
		title = untitled
	}
	b.WriteString("# " + title + "\n\n")

	if names := meta.AuthorNames(); len(names) > 0 {
		b.WriteString("**Author**: " + strings.Join(names, ", ") + "\n\n")
	}
	if meta.Publisher.Name != "" {
		b.WriteString("**Publisher**: " + meta.Publisher.Name + "\n\n")
	}
	if t, ok := parseDate(meta.DatePublished, loc); ok {
		b.WriteString("**Date**: " + t.Format("January 2, 2006") + "\n\n")
	}
	b.WriteString("**URL**: " + doc.URL() + "\n\n")
	b.WriteString("---\n\n")

	if r.opts.IncludeCover && meta.CoverImageURL != "" {
		b.WriteString("![Cover](" + imageRef(meta.CoverImageURL, assets) + ")\n\n")
	}
	if meta.Description != "" {
		b.WriteString(quoteBlock(meta.Description) + "\n\n")
	}

	for _, s := range doc.Sections {
		writeSection(&b, s, assets)
	}

	if len(doc.Links) > 0 {
		b.WriteString("---\n### Links\n\n")
		for _, l := range doc.Links {
			b.WriteString("- [" + l.Text + "](" + l.Href + ")\n")
		}
	}

	if len(doc.Footnotes) > 0 {
		b.WriteString("\n---\n### Footnotes\n\n")
		for _, fn := range doc.Footnotes {
			b.WriteString("[^" + fn.ID + "]: " + fn.Content + "\n")
		}
	}

	return b.String()
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

func writeSection(b *strings.Builder, s core.Section, assets core.AssetMap) {
	switch s.Kind {
	case core.SectionHeading:
		level := s.Level
		if level < 2 || level > 4 {
			level = 2
		}
		b.WriteString(strings.Repeat("#", level) + " " + s.Text + "\n\n")
	case core.SectionParagraph:
		b.WriteString(s.Text + "\n\n")
	case core.SectionList:
		marker := "-"
		if s.Ordered {
			marker = "1."
		}
		for _, item := range s.Items {
			b.WriteString(marker + " " + item + "\n")
		}
		b.WriteString("\n")
	case core.SectionBlockquote:
		b.WriteString(quoteBlock(s.Text) + "\n\n")
	case core.SectionCode:
		b.WriteString("```\n" + s.Text + "\n```\n\n")
	case core.SectionImage:
		alt := s.Alt
		if alt == "" {
			alt = "Image"
		}
		b.WriteString("![" + alt + "](" + imageRef(s.Src, assets) + ")\n\n")
	}
}

// quoteBlock prefixes every line of text with a blockquote marker.
func quoteBlock(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + l
		}
	}
	return strings.Join(lines, "\n")
}

func imageRef(src string, assets core.AssetMap) string {
	if a, ok := assets.Lookup(src); ok && a.Path != "" {
		return a.Path
	}
	return src
}
