package render

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog/log"
)

const (
	pageMargin  = 50.0
	lineSpacing = 1.5
	listIndent  = 18.0
	quotePad    = 10.0
	ruleWidth   = 3.0
	monoFamily  = "Courier"
	coreFamily  = "Helvetica"
	utf8Family  = "body"
)

// pdfImageTypes maps sniffed MIME types to the image types gofpdf can embed.
var pdfImageTypes = map[string]string{
	"image/png":  "PNG",
	"image/jpeg": "JPG",
	"image/gif":  "GIF",
}

type pdfLayout struct {
	pdf    *gofpdf.Fpdf
	family string
	// tr prepares text for the body font, coreTr for the built-in fonts.
	tr     func(string) string
	coreTr func(string) string
	images int
}

// layoutPDF sets the page-description tree on A4 pages.
func layoutPDF(tree PDFDocument, fontPath string) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)

	l := &pdfLayout{pdf: pdf, family: coreFamily}
	l.coreTr = pdf.UnicodeTranslatorFromDescriptor("")
	l.tr = l.coreTr
	if fontPath != "" {
		if _, err := os.Stat(fontPath); err != nil {
			return nil, fmt.Errorf("loading font: %w", err)
		}
		for _, style := range []string{"", "B", "I", "BI"} {
			pdf.AddUTF8Font(utf8Family, style, fontPath)
		}
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("loading font %s: %w", fontPath, err)
		}
		l.family = utf8Family
		l.tr = func(s string) string { return s }
	}

	pdf.SetTitle(tree.Info.Title, true)
	pdf.SetAuthor(tree.Info.Author, true)
	pdf.SetSubject(tree.Info.Subject, true)
	pdf.SetKeywords(tree.Info.Keywords, true)
	pdf.SetCreator("postpipe", true)

	pdf.AddPage()
	for _, b := range tree.Blocks {
		l.block(b)
		if err := pdf.Error(); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (l *pdfLayout) block(b Block) {
	pdf := l.pdf
	if b.Style.SpaceBefore > 0 && !l.atPageTop() {
		pdf.Ln(b.Style.SpaceBefore)
	}

	switch b.Kind {
	case BlockText:
		if b.Style.Center {
			l.centered(b)
		} else {
			l.runs(b.Runs, b.Style)
			pdf.Ln(b.Style.Size * lineSpacing)
		}
	case BlockList:
		l.list(b)
	case BlockShaded:
		l.shaded(b)
	case BlockImage:
		l.image(b)
	case BlockSpacer:
		pdf.Ln(b.Height)
	case BlockPageBreak:
		if !l.atPageTop() {
			pdf.AddPage()
		}
	}

	if b.Style.SpaceAfter > 0 {
		pdf.Ln(b.Style.SpaceAfter)
	}
}

func (l *pdfLayout) atPageTop() bool {
	_, top, _, _ := l.pdf.GetMargins()
	return l.pdf.GetY() <= top+1
}

// runs writes styled runs in flowing mode, wrapping at the left margin.
func (l *pdfLayout) runs(runs []Run, style TextStyle) {
	pdf := l.pdf
	h := style.Size * lineSpacing
	for _, r := range runs {
		fontStyle := ""
		if style.Bold || r.Style == RunBold || r.Style == RunLink {
			fontStyle += "B"
		}
		if style.Italic || r.Style == RunItalic {
			fontStyle += "I"
		}

		switch r.Style {
		case RunCode:
			pdf.SetFont(monoFamily, "", style.Size-1)
			setTextColor(pdf, style.Color)
			pdf.Write(h, l.coreTr(r.Text))
		case RunLink:
			pdf.SetFont(l.family, fontStyle+"U", style.Size)
			setTextColor(pdf, colorLink)
			pdf.WriteLinkString(h, l.tr(r.Text), r.Href)
		default:
			pdf.SetFont(l.family, fontStyle, style.Size)
			setTextColor(pdf, style.Color)
			pdf.Write(h, l.tr(r.Text))
		}
	}
	setTextColor(pdf, colorText)
}

func (l *pdfLayout) centered(b Block) {
	pdf := l.pdf
	fontStyle := ""
	if b.Style.Bold {
		fontStyle += "B"
	}
	if b.Style.Italic {
		fontStyle += "I"
	}
	link := ""
	for _, r := range b.Runs {
		if r.Style == RunLink {
			link = r.Href
			break
		}
	}
	pdf.SetFont(l.family, fontStyle, b.Style.Size)
	setTextColor(pdf, b.Style.Color)
	pdf.CellFormat(0, b.Style.Size*lineSpacing, l.tr(PlainText(b.Runs)), "", 1, "C", false, 0, link)
	setTextColor(pdf, colorText)
}

func (l *pdfLayout) list(b Block) {
	pdf := l.pdf
	left, _, _, _ := pdf.GetMargins()
	h := b.Style.Size * lineSpacing
	for i, item := range b.Items {
		pdf.SetFont(l.family, "", b.Style.Size)
		setTextColor(pdf, b.Style.Color)
		pdf.SetX(left + 4)
		pdf.Write(h, l.tr(listMarker(b.Ordered, i)))

		pdf.SetLeftMargin(left + listIndent)
		pdf.SetX(left + listIndent)
		l.runs(item, b.Style)
		pdf.Ln(h)
		pdf.SetLeftMargin(left)
		pdf.Ln(4)
	}
}

// shaded draws a filled box, with an optional left rule, around the block text.
// Monospace blocks are written as one cell; other blocks keep their styled runs.
func (l *pdfLayout) shaded(b Block) {
	if b.Monospace {
		l.shadedMono(b)
		return
	}
	pdf := l.pdf
	left, _, right, bottom := pdf.GetMargins()
	pageW, pageH := pdf.GetPageSize()
	width := pageW - left - right
	h := b.Style.Size * lineSpacing

	// Measure with the widest face the runs can use so the fill covers the text.
	fontStyle := "B"
	if b.Style.Italic {
		fontStyle += "I"
	}
	pdf.SetFont(l.family, fontStyle, b.Style.Size)
	lines := l.lineCount(PlainText(b.Runs), width-2*quotePad)
	boxH := float64(lines)*h + quotePad

	if boxH <= pageH-2*bottom && pdf.GetY()+boxH > pageH-bottom {
		pdf.AddPage()
	}
	y0 := pdf.GetY()
	pdf.SetFillColor(b.Fill.R, b.Fill.G, b.Fill.B)
	pdf.Rect(left, y0, width, boxH, "F")
	if b.Rule {
		l.rule(left, y0, y0+boxH)
	}

	pdf.SetLeftMargin(left + quotePad)
	pdf.SetRightMargin(right + quotePad)
	pdf.SetXY(left+quotePad, y0+quotePad/2)
	l.runs(b.Runs, b.Style)
	pdf.Ln(h)
	pdf.SetLeftMargin(left)
	pdf.SetRightMargin(right)

	if end := y0 + boxH; pdf.GetY() < end {
		pdf.SetY(end)
	}
	pdf.SetX(left)
}

func (l *pdfLayout) shadedMono(b Block) {
	pdf := l.pdf
	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()

	pdf.SetFont(monoFamily, "", b.Style.Size)
	setTextColor(pdf, b.Style.Color)
	pdf.SetFillColor(b.Fill.R, b.Fill.G, b.Fill.B)

	page := pdf.PageNo()
	y0 := pdf.GetY()
	pdf.SetCellMargin(quotePad)
	pdf.SetX(left)
	pdf.MultiCell(pageW-left-right, b.Style.Size*lineSpacing, l.coreTr(PlainText(b.Runs)), "", "L", true)
	pdf.SetCellMargin(0)

	if b.Rule && pdf.PageNo() == page {
		l.rule(left, y0, pdf.GetY())
	}
	setTextColor(pdf, colorText)
}

// lineCount estimates how many lines text wraps to at width in the current
// font. Words wider than a line count as one line each.
func (l *pdfLayout) lineCount(text string, width float64) int {
	lines := 0
	for _, para := range strings.Split(text, "\n") {
		lines++
		lineW := 0.0
		space := l.pdf.GetStringWidth(" ")
		for i, word := range strings.Fields(para) {
			w := l.pdf.GetStringWidth(l.tr(word))
			if i > 0 && lineW+space+w > width {
				lines++
				lineW = w
				continue
			}
			if i > 0 {
				lineW += space
			}
			lineW += w
		}
	}
	return lines
}

func (l *pdfLayout) rule(left, y0, y1 float64) {
	pdf := l.pdf
	pdf.SetDrawColor(colorRule.R, colorRule.G, colorRule.B)
	pdf.SetLineWidth(ruleWidth)
	x := left + ruleWidth/2
	pdf.Line(x, y0, x, y1)
	pdf.SetLineWidth(0.2)
	pdf.SetDrawColor(0, 0, 0)
}

// image embeds an image block. Types the engine cannot embed, and data it
// rejects, are skipped with a warning.
func (l *pdfLayout) image(b Block) {
	pdf := l.pdf
	typ, ok := pdfImageTypes[b.Image.MIMEType]
	if !ok {
		log.Warn().Str("path", b.Image.Path).Str("mime", b.Image.MIMEType).Msg("skipping image type not supported in PDF")
		return
	}

	l.images++
	name := "img" + strconv.Itoa(l.images)
	opts := gofpdf.ImageOptions{ImageType: typ}
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(b.Image.Data))
	if err := pdf.Error(); err != nil || info == nil {
		if err == nil {
			err = errors.New("no image info")
		}
		log.Warn().Err(err).Str("path", b.Image.Path).Msg("skipping unreadable image")
		pdf.ClearError()
		return
	}

	left, _, right, bottom := pdf.GetMargins()
	pageW, pageH := pdf.GetPageSize()
	avail := pageW - left - right
	w := b.Width
	if w <= 0 || w > avail {
		w = avail
	}
	iw, ih := info.Width(), info.Height()
	if iw <= 0 || ih <= 0 {
		return
	}
	h := ih * w / iw
	if maxH := pageH - 2*bottom; h > maxH {
		w, h = w*maxH/h, maxH
	}

	if pdf.GetY()+h > pageH-bottom {
		pdf.AddPage()
	}
	x := left + (avail-w)/2
	y := pdf.GetY()
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	pdf.SetY(y + h + 5)

	if b.Caption != "" {
		pdf.SetFont(l.family, "I", 9)
		setTextColor(pdf, colorSubtle)
		pdf.MultiCell(0, 9*lineSpacing, l.tr(b.Caption), "", "C", false)
		setTextColor(pdf, colorText)
		pdf.Ln(10)
	}
}

func setTextColor(pdf *gofpdf.Fpdf, c Color) {
	pdf.SetTextColor(c.R, c.G, c.B)
}
