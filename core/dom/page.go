// Package dom provides a read-only accessor over a parsed article page.
// Extractors query the page only through Page, so they run the same against
// a fetched page, a saved HTML file, or a synthetic test fixture.
package dom

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is a parsed HTML document plus the URL it was loaded from.
type Page struct {
	doc *goquery.Document
	url *url.URL
}

// Parse reads HTML from r. pageURL may be empty when the origin is unknown.
func Parse(r io.Reader, pageURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	p := &Page{doc: doc}
	if pageURL != "" {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("parsing page URL: %w", err)
		}
		p.url = u
	}
	return p, nil
}

// ParseString is Parse for an in-memory string.
func ParseString(html, pageURL string) (*Page, error) {
	return Parse(strings.NewReader(html), pageURL)
}

// Find runs a CSS selector against the whole document.
func (p *Page) Find(selector string) *goquery.Selection {
	return p.doc.Find(selector)
}

// URL returns the page URL as a string, or "" when unknown.
func (p *Page) URL() string {
	if p.url == nil {
		return ""
	}
	return p.url.String()
}

// Host returns the page host, or "" when unknown.
func (p *Page) Host() string {
	if p.url == nil {
		return ""
	}
	return p.url.Host
}

// Resolve makes href absolute against the page URL. Unparseable hrefs are returned as-is.
func (p *Page) Resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || p.url == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return p.url.ResolveReference(ref).String()
}

// Title returns the trimmed <title> text.
func (p *Page) Title() string {
	return strings.TrimSpace(p.doc.Find("head title").First().Text())
}

// Meta returns the content of the first <meta> whose property or name equals key.
func (p *Page) Meta(key string) string {
	for _, attr := range []string{"property", "name"} {
		sel := p.doc.Find(fmt.Sprintf(`meta[%s=%q]`, attr, key)).First()
		if v, ok := sel.Attr("content"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// HTML serializes the whole document.
func (p *Page) HTML() (string, error) {
	return goquery.OuterHtml(p.doc.Find("html").First())
}

// ParsedURL returns the page URL, or nil when unknown.
func (p *Page) ParsedURL() *url.URL {
	return p.url
}

// Text returns the trimmed text content of a selection.
func Text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}
