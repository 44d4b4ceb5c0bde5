// Package render: PDF renderer.
// Maps a Document into a page-description tree (styled runs, images and shaded
// boxes) and lays the tree out with gofpdf.
package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gaurav-prasanna/postpipe/core"
)

const (
	defaultFontSize = 11
	projectURL      = "https://github.com/gaurav-prasanna/postpipe"
)

// PDFOptions configures the PDF renderer.
type PDFOptions struct {
	ShowCover     bool
	ShowFootnotes bool
	// FontSize is the base size in points. Zero means 11.
	FontSize float64
	// BreakBeforeH2 starts every level-2 heading on a new page.
	BreakBeforeH2 bool
	// FontPath is an optional UTF-8 TrueType font used for body text.
	// Without it the core Helvetica font and cp1252 text are used.
	FontPath string
	// Location is the calendar zone used for the date line. Nil means time.Local.
	Location *time.Location
}

// DefaultPDFOptions returns the options used when nothing is configured.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		ShowCover:     true,
		ShowFootnotes: true,
		FontSize:      defaultFontSize,
		BreakBeforeH2: true,
	}
}

// Color is an RGB triple.
type Color struct{ R, G, B int }

var (
	colorText    = Color{0, 0, 0}
	colorHeading = Color{0x33, 0x33, 0x33}
	colorSubtle  = Color{0x66, 0x66, 0x66}
	colorQuote   = Color{0x55, 0x55, 0x55}
	colorNote    = Color{0x44, 0x44, 0x44}
	colorFooter  = Color{0x88, 0x88, 0x88}
	colorLink    = Color{0x00, 0x7b, 0xff}
	colorCodeBg  = Color{0xf5, 0xf5, 0xf5}
	colorQuoteBg = Color{0xf9, 0xf9, 0xf9}
	colorRule    = Color{0xcc, 0xcc, 0xcc}
)

// BlockKind tags the variant held by a Block.
type BlockKind int

const (
	BlockText BlockKind = iota
	BlockList
	BlockImage
	BlockShaded
	BlockSpacer
	BlockPageBreak
)

// TextStyle describes how the runs of a block are set.
type TextStyle struct {
	Size        float64
	Bold        bool
	Italic      bool
	Color       Color
	Center      bool
	SpaceBefore float64
	SpaceAfter  float64
}

// Block is one node of the page-description tree.
//
//	text       Style, Runs
//	list       Style, Items, Ordered
//	image      Image, Width, Caption
//	shaded     Style, Runs, Monospace, Rule, Fill
//	spacer     Height
//	page break (no fields)
type Block struct {
	Kind      BlockKind
	Style     TextStyle
	Runs      []Run
	Items     [][]Run
	Ordered   bool
	Image     core.Asset
	Width     float64
	Caption   string
	Monospace bool
	Rule      bool
	Fill      Color
	Height    float64
}

// PDFInfo is the document information dictionary.
type PDFInfo struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
}

// PDFDocument is the page-description tree handed to the layout engine.
type PDFDocument struct {
	Info     PDFInfo
	Blocks   []Block
	FontSize float64
}

// PDFRenderer renders a Document as a PDF.
type PDFRenderer struct {
	opts PDFOptions
}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer(opts PDFOptions) *PDFRenderer {
	if opts.FontSize <= 0 {
		opts.FontSize = defaultFontSize
	}
	return &PDFRenderer{opts: opts}
}

// Render lays out the document. assets must carry image Data; images missing
// from assets are skipped.
func (r *PDFRenderer) Render(doc *core.Document, assets core.AssetMap) ([]byte, error) {
	tree := BuildPDF(doc, assets, r.opts)
	data, err := layoutPDF(tree, r.opts.FontPath)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

var cjkRe = regexp.MustCompile(`[\x{4e00}-\x{9fa5}\x{3040}-\x{30ff}\x{3400}-\x{4dbf}]`)

var straightQuotes = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
)

// BuildPDF maps doc into a page-description tree.
func BuildPDF(doc *core.Document, assets core.AssetMap, opts PDFOptions) PDFDocument {
	size := opts.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	meta := doc.Metadata

	// Western text set in a CJK-capable font spaces curly quotes badly.
	clean := func(s string) string { return s }
	if !cjkRe.MatchString(meta.Title) {
		clean = straightQuotes.Replace
	}
	runs := func(s string) []Run { return ParseRuns(clean(s)) }
	text := func(s string) []Run { return []Run{{Text: clean(s)}} }

	title := meta.Title
	if title == "" {
		title = untitled
	}
	authors := strings.Join(meta.AuthorNames(), ", ")

	var blocks []Block
	add := func(bl Block) { blocks = append(blocks, bl) }
	add(Block{Kind: BlockText, Runs: text(title),
		Style: TextStyle{Size: size * 2.2, Bold: true, Color: colorHeading, SpaceAfter: 10}})

	var metaParts []string
	if authors != "" {
		metaParts = append(metaParts, clean(authors))
	}
	if t, ok := parseDate(meta.DatePublished, loc); ok {
		metaParts = append(metaParts, t.Format("January 2, 2006"))
	}
	if len(metaParts) > 0 {
		add(Block{Kind: BlockText, Runs: text(strings.Join(metaParts, " • ")),
			Style: TextStyle{Size: size + 1, Color: colorSubtle, SpaceAfter: 5}})
	}
	if u := doc.URL(); u != "" {
		add(Block{Kind: BlockText, Runs: []Run{{Text: u, Style: RunLink, Href: u}},
			Style: TextStyle{Size: size - 1, Color: colorLink, SpaceAfter: 20}})
	}

	if opts.ShowCover {
		if a, ok := assets.Lookup(meta.CoverImageURL); ok && len(a.Data) > 0 {
			add(Block{Kind: BlockImage, Image: a, Width: 500})
			add(Block{Kind: BlockSpacer, Height: 10})
		}
	}

	for _, s := range doc.Sections {
		switch s.Kind {
		case core.SectionHeading:
			style := TextStyle{Bold: true, Color: colorHeading}
			switch s.Level {
			case 3:
				style.Size, style.SpaceBefore, style.SpaceAfter = size*1.35, 15, 8
			case 4:
				style.Size, style.SpaceBefore, style.SpaceAfter = size*1.2, 10, 5
			default:
				style.Size, style.SpaceBefore, style.SpaceAfter = size*1.6, 20, 10
				if opts.BreakBeforeH2 {
					add(Block{Kind: BlockPageBreak})
				}
			}
			add(Block{Kind: BlockText, Runs: text(s.Text), Style: style})
		case core.SectionParagraph:
			if s.Text == "" {
				continue
			}
			add(Block{Kind: BlockText, Runs: runs(s.Text),
				Style: TextStyle{Size: size, Color: colorText, SpaceAfter: 10}})
		case core.SectionList:
			items := make([][]Run, 0, len(s.Items))
			for _, it := range s.Items {
				items = append(items, runs(it))
			}
			add(Block{Kind: BlockList, Items: items, Ordered: s.Ordered,
				Style: TextStyle{Size: size, Color: colorText, SpaceAfter: 10}})
		case core.SectionBlockquote:
			add(Block{Kind: BlockShaded, Runs: runs(s.Text), Rule: true, Fill: colorQuoteBg,
				Style: TextStyle{Size: size, Italic: true, Color: colorQuote, SpaceBefore: 10, SpaceAfter: 10}})
		case core.SectionCode:
			add(Block{Kind: BlockShaded, Runs: []Run{{Text: s.Text, Style: RunCode}}, Monospace: true, Fill: colorCodeBg,
				Style: TextStyle{Size: 10, Color: colorText, SpaceBefore: 10, SpaceAfter: 10}})
		case core.SectionImage:
			a, ok := assets.Lookup(s.Src)
			if !ok || len(a.Data) == 0 {
				continue
			}
			add(Block{Kind: BlockImage, Image: a, Width: 480, Caption: clean(s.Alt)})
		}
	}

	if opts.ShowFootnotes && len(doc.Footnotes) > 0 {
		add(Block{Kind: BlockPageBreak})
		add(Block{Kind: BlockText, Runs: text("Footnotes"),
			Style: TextStyle{Size: size * 1.35, Bold: true, Color: colorHeading, SpaceBefore: 15, SpaceAfter: 8}})
		for _, fn := range doc.Footnotes {
			rs := append([]Run{{Text: fn.ID + ". ", Style: RunBold}}, runs(fn.Content)...)
			add(Block{Kind: BlockText, Runs: rs,
				Style: TextStyle{Size: 10, Color: colorNote, SpaceBefore: 2, SpaceAfter: 2}})
		}
	}

	add(Block{Kind: BlockSpacer, Height: 20})
	add(Block{Kind: BlockText, Runs: []Run{
		{Text: "Generated by "},
		{Text: "postpipe", Style: RunLink, Href: projectURL},
	}, Style: TextStyle{Size: 9, Italic: true, Color: colorFooter, Center: true, SpaceAfter: 10}})

	return PDFDocument{
		Info: PDFInfo{
			Title:    title,
			Author:   authors,
			Subject:  "Substack Article",
			Keywords: "substack, pdf, export",
		},
		Blocks:   blocks,
		FontSize: size,
	}
}

// listMarker returns the bullet for item i of a list.
func listMarker(ordered bool, i int) string {
	if ordered {
		return strconv.Itoa(i+1) + "."
	}
	return "•"
}
