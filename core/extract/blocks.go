package extract

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/postpipe/core"
	"github.com/gaurav-prasanna/postpipe/core/dom"
	"github.com/gaurav-prasanna/postpipe/core/normalize"
	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog/log"
)

// minImageWidth is the width at or below which an image is treated as an icon.
const minImageWidth = 50

// noiseText marks call-to-action blocks that are not article content.
var noiseText = []string{"Subscribe", "Sign in"}

// ContainerStrategies locate the element whose direct children are the article
// blocks, most specific first.
var ContainerStrategies = []Strategy[*goquery.Selection]{
	selectorStrategy("post-body", ".body.markup"),
	selectorStrategy("available-content", ".available-content"),
	selectorStrategy("main", "main"),
	selectorStrategy("article", "article"),
	selectorStrategy("entry", "#entry"),
	{Name: "readability", Find: readabilityContainer},
}

func selectorStrategy(name, selector string) Strategy[*goquery.Selection] {
	return Strategy[*goquery.Selection]{
		Name: name,
		Find: func(p *dom.Page) (*goquery.Selection, bool) {
			sel := p.Find(selector).First()
			return sel, sel.Length() > 0
		},
	}
}

// readabilityContainer runs a readability pass over the whole page and returns
// the root of the extracted article.
func readabilityContainer(p *dom.Page) (*goquery.Selection, bool) {
	raw, err := p.HTML()
	if err != nil || strings.TrimSpace(raw) == "" {
		return nil, false
	}
	pageURL := p.ParsedURL()
	if pageURL == nil {
		pageURL = &url.URL{}
	}
	article, err := readability.FromReader(strings.NewReader(raw), pageURL)
	if err != nil {
		log.Debug().Err(err).Msg("readability fallback failed")
		return nil, false
	}
	content, err := dom.ParseString(article.Content, p.URL())
	if err != nil {
		return nil, false
	}
	root := content.Find("#readability-page-1").First()
	if root.Length() == 0 {
		root = content.Find("body").First()
	}
	return root, root.Length() > 0 && dom.Text(root) != ""
}

// ExtractBlocks converts the direct children of container into sections, in
// document order. Images inside a child come before that child's own text.
// It never fails; an empty container yields no sections.
func ExtractBlocks(page *dom.Page, container *goquery.Selection) []core.Section {
	if container == nil || container.Length() == 0 {
		return nil
	}

	var sections []core.Section
	container.Children().Each(func(_ int, el *goquery.Selection) {
		if isNoise(el) {
			return
		}
		sections = append(sections, blockImages(page, el)...)
		if s, ok := classify(el); ok {
			sections = append(sections, s)
		}
	})

	if len(sections) == 0 && dom.Text(container) != "" {
		if s, ok := markdownFallback(container); ok {
			sections = append(sections, s)
		}
	}
	return sections
}

// ExtractLinks collects the hyperlinks in container, in document order.
func ExtractLinks(page *dom.Page, container *goquery.Selection) []core.Link {
	if container == nil {
		return nil
	}
	var links []core.Link
	container.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := dom.Text(s)
		if text == "" || strings.TrimSpace(href) == "" {
			return
		}
		n := s.Get(0)
		if strings.HasPrefix(strings.TrimSpace(href), "javascript:") || isFootnoteAnchor(n, href) || hasClass(n, "button") {
			return
		}
		links = append(links, core.Link{Text: text, Href: StripTracking(page.Resolve(href))})
	})
	return links
}

func isNoise(el *goquery.Selection) bool {
	if el.HasClass("button-wrapper") {
		return true
	}
	text := el.Text()
	for _, w := range noiseText {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// blockImages returns an image section for every qualifying image in el,
// including el itself when it is an <img>.
func blockImages(page *dom.Page, el *goquery.Selection) []core.Section {
	var out []core.Section
	el.Find("img").AddSelection(el.Filter("img")).Each(func(_ int, img *goquery.Selection) {
		src := imageSource(img)
		if src == "" || strings.Contains(src, "avatar") {
			return
		}
		if w, ok := img.Attr("width"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(w)); err == nil && n <= minImageWidth {
				return
			}
		}
		alt, _ := img.Attr("alt")
		out = append(out, core.Section{
			Kind: core.SectionImage,
			Src:  page.Resolve(src),
			Alt:  strings.TrimSpace(alt),
		})
	})
	return out
}

func imageSource(img *goquery.Selection) string {
	for _, key := range []string{"src", "data-src"} {
		if v, ok := img.Attr(key); ok && strings.TrimSpace(v) != "" && !strings.HasPrefix(v, "data:") {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// classify maps an element to a section by its tag.
func classify(el *goquery.Selection) (core.Section, bool) {
	tag := goquery.NodeName(el)
	text := dom.Text(el)
	if text == "" {
		return core.Section{}, false
	}

	switch tag {
	case "h2", "h3", "h4":
		return core.Section{Kind: core.SectionHeading, Level: int(tag[1] - '0'), Text: text}, true
	case "p":
		return core.Section{Kind: core.SectionParagraph, Text: Inline(el)}, true
	case "ul", "ol":
		var items []string
		el.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			items = append(items, Inline(li))
		})
		if len(items) == 0 {
			return core.Section{}, false
		}
		return core.Section{Kind: core.SectionList, Ordered: tag == "ol", Items: items}, true
	case "blockquote":
		return core.Section{Kind: core.SectionBlockquote, Text: quoteText(el)}, true
	case "pre":
		return core.Section{Kind: core.SectionCode, Text: text}, true
	}
	return core.Section{}, false
}

// quoteText keeps paragraph breaks inside a blockquote.
func quoteText(el *goquery.Selection) string {
	paras := el.ChildrenFiltered("p")
	if paras.Length() < 2 {
		return Inline(el)
	}
	parts := make([]string, 0, paras.Length())
	paras.Each(func(_ int, p *goquery.Selection) {
		if t := Inline(p); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n\n")
}

// markdownFallback converts a container that has text but no recognizable
// blocks into a single paragraph of Markdown.
func markdownFallback(container *goquery.Selection) (core.Section, bool) {
	raw, err := goquery.OuterHtml(container)
	if err != nil {
		return core.Section{}, false
	}
	md, err := normalize.New().Normalize(raw)
	if err != nil {
		log.Debug().Err(err).Msg("markdown fallback failed")
		return core.Section{}, false
	}
	md = strings.TrimSpace(md)
	if md == "" {
		return core.Section{}, false
	}
	return core.Section{Kind: core.SectionParagraph, Text: md}, true
}
