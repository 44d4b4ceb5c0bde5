// Package cmd: convert command.
// This is the main command that orchestrates the pipeline:
// fetch → extract → (bundle) → render → write.
//
// It handles flag validation, format selection, and the single-post / --all modes.
package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/gaurav-prasanna/postpipe/config"
	"github.com/gaurav-prasanna/postpipe/core"
	"github.com/gaurav-prasanna/postpipe/core/bundle"
	"github.com/gaurav-prasanna/postpipe/core/extract"
	"github.com/gaurav-prasanna/postpipe/core/fetch"
	"github.com/gaurav-prasanna/postpipe/core/output"
	"github.com/gaurav-prasanna/postpipe/core/render"
	"github.com/gaurav-prasanna/postpipe/crawl"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// outputFormat is one of the mutually exclusive delivery modes.
type outputFormat string

const (
	formatMarkdown outputFormat = "markdown"
	formatZip      outputFormat = "zip"
	formatPDF      outputFormat = "pdf"
	formatJSON     outputFormat = "json"
	formatCopy     outputFormat = "copy"
	formatObsidian outputFormat = "obsidian"
	formatStdout   outputFormat = "stdout"
)

var allFormats = []outputFormat{formatMarkdown, formatZip, formatPDF, formatJSON, formatCopy, formatObsidian, formatStdout}

// Flag variables.
var (
	formatFlags = map[outputFormat]*bool{}

	flagAll                 bool
	flagHTMLFile            string
	flagPageURL             string
	flagOutputDir           string
	flagFilenameFormat      string
	flagFrontmatter         bool
	flagFrontmatterTemplate string
	flagNoCover             bool
	flagPDFCover            bool
	flagPDFFootnotes        bool
	flagFontSize            float64
	flagFont                string
)

var convertCmd = &cobra.Command{
	Use:   "convert [url]",
	Short: "Convert a Substack post to the selected output format",
	Long: `Convert fetches a Substack post, extracts the article and writes it in the
selected format. Markdown is the default when no format flag is given.

Examples:
  postpipe convert https://example.substack.com/p/hello-world
  postpipe convert https://example.substack.com/p/hello-world --zip --output_dir ./out
  postpipe convert https://example.substack.com/p/hello-world --pdf --font ./NotoSans.ttf
  postpipe convert https://example.substack.com --all --markdown
  postpipe convert --html saved.html --url https://example.substack.com/p/hello-world --obsidian`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	// Output format flags (mutually exclusive).
	for _, f := range allFormats {
		formatFlags[f] = new(bool)
	}
	convertCmd.Flags().BoolVar(formatFlags[formatMarkdown], "markdown", false, "Output Markdown (default)")
	convertCmd.Flags().BoolVar(formatFlags[formatZip], "zip", false, "Output a ZIP with Markdown and downloaded images")
	convertCmd.Flags().BoolVar(formatFlags[formatPDF], "pdf", false, "Output PDF")
	convertCmd.Flags().BoolVar(formatFlags[formatJSON], "json", false, "Output the document model as JSON")
	convertCmd.Flags().BoolVar(formatFlags[formatCopy], "copy", false, "Copy Markdown to the clipboard")
	convertCmd.Flags().BoolVar(formatFlags[formatObsidian], "obsidian", false, "Copy Markdown and print an Obsidian new-note link")
	convertCmd.Flags().BoolVar(formatFlags[formatStdout], "stdout", false, "Print Markdown to standard output")

	// Input flags.
	convertCmd.Flags().BoolVar(&flagAll, "all", false, "Convert every post discovered on the publication")
	convertCmd.Flags().StringVar(&flagHTMLFile, "html", "", "Read the page from a saved HTML file instead of fetching")
	convertCmd.Flags().StringVar(&flagPageURL, "url", "", "Page URL of the --html file, used to resolve links")

	// Per-run overrides of stored settings.
	convertCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: settings, then current directory)")
	convertCmd.Flags().StringVar(&flagFilenameFormat, "filename-format", "", "title-date, date-title or author-title")
	convertCmd.Flags().BoolVar(&flagFrontmatter, "frontmatter", false, "Prepend YAML front matter to Markdown")
	convertCmd.Flags().StringVar(&flagFrontmatterTemplate, "frontmatter-template", "", "Front matter template with {title} {url} {date} {author}")
	convertCmd.Flags().BoolVar(&flagNoCover, "no-cover", false, "Leave the cover image out of Markdown and ZIP output")
	convertCmd.Flags().BoolVar(&flagPDFCover, "pdf-cover", true, "Show the cover image in PDF output")
	convertCmd.Flags().BoolVar(&flagPDFFootnotes, "pdf-footnotes", true, "Show footnotes in PDF output")
	convertCmd.Flags().Float64Var(&flagFontSize, "font-size", 0, "PDF base font size in points")
	convertCmd.Flags().StringVar(&flagFont, "font", "", "UTF-8 TrueType font for PDF text")
}

func runConvert(cmd *cobra.Command, args []string) error {
	format, err := selectFormat()
	if err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, &settings); err != nil {
		return err
	}

	p := &pipeline{
		format:    format,
		settings:  settings,
		noCover:   flagNoCover,
		fetcher:   fetch.New(),
		extractor: extract.New(),
		clipboard: output.SystemClipboard{},
		out:       cmd.OutOrStdout(),
		errOut:    cmd.ErrOrStderr(),
	}
	p.bundler = bundle.New(p.fetcher)
	p.writer, err = output.New(settings.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case flagHTMLFile != "":
		if flagAll {
			return fmt.Errorf("--html and --all are mutually exclusive")
		}
		return p.convertFile(ctx, flagHTMLFile, flagPageURL)
	case len(args) == 0:
		return fmt.Errorf("a URL argument or --html <file> is required")
	}

	rawURL := args[0]
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid URL: %s (must include scheme, e.g. https://example.substack.com)", rawURL)
	}
	if !crawl.IsSupported(rawURL) {
		log.Warn().Str("url", rawURL).Msg("URL does not look like a Substack page, trying anyway")
	}

	if flagAll {
		return p.convertAll(ctx, rawURL)
	}
	return p.convertURL(ctx, rawURL)
}

// selectFormat returns the single chosen format, Markdown when none is set.
func selectFormat() (outputFormat, error) {
	var chosen []outputFormat
	for _, f := range allFormats {
		if *formatFlags[f] {
			chosen = append(chosen, f)
		}
	}
	switch len(chosen) {
	case 0:
		return formatMarkdown, nil
	case 1:
		return chosen[0], nil
	}
	return "", fmt.Errorf("only one output format allowed per run (got %d)", len(chosen))
}

// applyFlags overlays explicitly set flags onto the stored settings.
func applyFlags(cmd *cobra.Command, s *config.Settings) error {
	set := func(name, key, value string) error {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		if err := s.Set(key, value); err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		return nil
	}
	overrides := []struct{ flag, key, value string }{
		{"output_dir", "outputDir", flagOutputDir},
		{"filename-format", "filenameFormat", flagFilenameFormat},
		{"frontmatter", "useFrontmatter", fmt.Sprint(flagFrontmatter)},
		{"frontmatter-template", "frontmatterTemplate", flagFrontmatterTemplate},
		{"pdf-cover", "pdfShowCover", fmt.Sprint(flagPDFCover)},
		{"pdf-footnotes", "pdfShowFootnotes", fmt.Sprint(flagPDFFootnotes)},
		{"font-size", "pdfFontSize", fmt.Sprint(flagFontSize)},
		{"font", "pdfFontPath", flagFont},
	}
	for _, o := range overrides {
		if err := set(o.flag, o.key, o.value); err != nil {
			return err
		}
	}
	return nil
}

// pipeline carries the collaborators of one convert run.
type pipeline struct {
	format    outputFormat
	settings  config.Settings
	noCover   bool
	fetcher   core.Fetcher
	extractor *extract.HTMLExtractor
	bundler   *bundle.Bundler
	writer    *output.Writer
	clipboard output.Clipboard
	out       io.Writer
	errOut    io.Writer
}

// convertURL fetches one post and delivers it.
func (p *pipeline) convertURL(ctx context.Context, rawURL string) error {
	doc, err := p.load(ctx, rawURL)
	if err != nil {
		return err
	}
	return p.deliver(ctx, doc)
}

// convertFile reads a saved page from disk and delivers it.
func (p *pipeline) convertFile(ctx context.Context, path, pageURL string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := p.extractor.Extract(string(data), pageURL)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	return p.deliver(ctx, doc)
}

// convertAll discovers the posts of a publication and converts each one.
// A failing post is reported and skipped.
func (p *pipeline) convertAll(ctx context.Context, rawURL string) error {
	if p.format == formatCopy || p.format == formatObsidian {
		return fmt.Errorf("--all cannot be combined with --%s", p.format)
	}
	fmt.Fprintf(p.out, "Discovering posts from %s...\n", rawURL)

	urls, err := crawl.DiscoverPosts(ctx, rawURL, p.fetcher)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "Found %d posts to process\n", len(urls))

	var errCount int
	for i, postURL := range urls {
		fmt.Fprintf(p.out, "[%d/%d] Processing %s\n", i+1, len(urls), postURL)
		if err := p.convertURL(ctx, postURL); err != nil {
			fmt.Fprintf(p.errOut, "  ✗ Error: %v\n", err)
			errCount++
		}
	}

	if errCount > 0 {
		fmt.Fprintf(p.errOut, "\n%d/%d posts failed\n", errCount, len(urls))
	}
	return nil
}

// load runs fetch and extract for a single URL.
func (p *pipeline) load(ctx context.Context, rawURL string) (*core.Document, error) {
	res, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	pageURL := res.URL
	if pageURL == "" {
		pageURL = rawURL
	}
	doc, err := p.extractor.Extract(res.HTML(), pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	return doc, nil
}

// deliver renders doc in the selected format and writes, copies or links it.
func (p *pipeline) deliver(ctx context.Context, doc *core.Document) error {
	mdOpts := p.settings.MarkdownOptions()
	if p.noCover {
		mdOpts.IncludeCover = false
	}
	md := render.NewMarkdownRenderer(mdOpts)
	nameOpts := p.settings.FilenameOptions()
	base := render.Basename(doc.Metadata, nameOpts)

	switch p.format {
	case formatZip:
		data, err := p.bundler.Bundle(ctx, doc, md, base, mdOpts.IncludeCover)
		if err != nil {
			return err
		}
		return p.write(base+".zip", data)

	case formatPDF:
		pdfOpts := p.settings.PDFOptions()
		assets := p.bundler.Fetch(ctx, bundle.Collect(doc, pdfOpts.ShowCover))
		return p.renderAndWrite(render.NewPDFRenderer(pdfOpts), doc, assets, base)

	case formatJSON:
		return p.renderAndWrite(render.NewJSONRenderer(nameOpts), doc, nil, base)

	case formatStdout:
		_, err := io.WriteString(p.out, md.RenderString(doc, nil))
		return err

	case formatCopy, formatObsidian:
		text := md.RenderString(doc, nil)
		if err := p.clipboard.WriteAll(text); err != nil {
			return err
		}
		if p.format == formatCopy {
			fmt.Fprintln(p.out, "✓ Copied to clipboard")
			return nil
		}
		fmt.Fprintln(p.out, output.ObsidianURI(base+md.Extension()))
		return nil
	}
	return p.renderAndWrite(md, doc, nil, base)
}

func (p *pipeline) renderAndWrite(r core.Renderer, doc *core.Document, assets core.AssetMap, base string) error {
	data, err := r.Render(doc, assets)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return p.write(base+r.Extension(), data)
}

func (p *pipeline) write(name string, data []byte) error {
	path, err := p.writer.Write(name, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "✓ Written: %s\n", path)
	return nil
}
