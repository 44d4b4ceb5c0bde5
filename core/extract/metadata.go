package extract

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/postpipe/core"
	"github.com/gaurav-prasanna/postpipe/core/dom"
	"github.com/rs/zerolog/log"
)

// recommendationSelector matches containers that list other posts rather than
// the one being read.
const recommendationSelector = `[class*="recommend"], [class*="related"], [class*="suggest"], [class*="more-from"]`

// maxAuthorWalk bounds how far up from the main post link an author link is searched.
const maxAuthorWalk = 8

// ctaWords mark links that are calls to action, never a publication name.
var ctaWords = []string{
	"subscribe", "sign in", "sign up", "log in", "login", "upgrade",
	"share", "start writing", "get the app", "open app",
}

// navWords mark publication navigation links.
var navWords = []string{"home", "about", "archive", "notes", "chat", "leaderboard", "recommendations"}

var shortDateRe = regexp.MustCompile(
	`^(?:(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)[a-z]*\.? \d{1,2}(?:, \d{4})?|\d{4}-\d{2}-\d{2})$`)

// ExtractMetadata returns the article metadata for page. Structured data is adopted
// when it describes an article; otherwise DOM heuristics are used. It never fails.
func ExtractMetadata(page *dom.Page) core.ArticleMetadata {
	meta, _ := extractMetadata(page)
	return meta
}

// extractMetadata is ExtractMetadata that also returns the structured data result.
func extractMetadata(page *dom.Page) (core.ArticleMetadata, LDResult) {
	ld := ParseStructuredData(page)
	if ld.Status == LDFound {
		return ld.Metadata, ld
	}

	ev := log.Debug().Str("status", ld.Status.String())
	if ld.Type != "" {
		ev = ev.Str("type", ld.Type)
	}
	if ld.Err != nil {
		ev = ev.Err(ld.Err)
	}
	ev.Msg("structured data not usable, using DOM heuristics")

	return MetadataFromDOM(page), ld
}

// MetadataFromDOM derives metadata from page markup alone.
func MetadataFromDOM(page *dom.Page) core.ArticleMetadata {
	meta := core.ArticleMetadata{}
	meta.Title, _ = FirstMatch(page, TitleStrategies)
	meta.Description, _ = FirstMatch(page, DescriptionStrategies)
	meta.DatePublished, _ = FirstMatch(page, DateStrategies)
	meta.CoverImageURL = page.Resolve(page.Meta("og:image"))

	if author, name := FirstMatch(page, AuthorStrategies); name != "" {
		meta.Authors = []core.Author{author}
	}
	meta.Publisher, _ = FirstMatch(page, PublisherStrategies)

	meta.CanonicalURL = page.URL()
	if href, ok := page.Find(`link[rel="canonical"]`).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		meta.CanonicalURL = page.Resolve(href)
	}
	return meta
}

// TitleStrategies locate the article title.
var TitleStrategies = []Strategy[string]{
	{Name: "og-title", Find: func(p *dom.Page) (string, bool) { return nonEmpty(p.Meta("og:title")) }},
	{Name: "h1", Find: func(p *dom.Page) (string, bool) { return nonEmpty(dom.Text(p.Find("h1").First())) }},
	{Name: "document-title", Find: func(p *dom.Page) (string, bool) { return nonEmpty(p.Title()) }},
}

// DescriptionStrategies locate the article summary.
var DescriptionStrategies = []Strategy[string]{
	{Name: "og-description", Find: func(p *dom.Page) (string, bool) { return nonEmpty(p.Meta("og:description")) }},
	{Name: "meta-description", Find: func(p *dom.Page) (string, bool) { return nonEmpty(p.Meta("description")) }},
}

// DateStrategies locate the publication date string.
var DateStrategies = []Strategy[string]{
	{Name: "time-datetime", Find: func(p *dom.Page) (string, bool) {
		v, _ := p.Find("time[datetime]").First().Attr("datetime")
		return nonEmpty(v)
	}},
	{Name: "time-text", Find: func(p *dom.Page) (string, bool) { return nonEmpty(dom.Text(p.Find("time").First())) }},
	{Name: "short-date-text", Find: findShortDate},
}

// AuthorStrategies locate the primary author.
var AuthorStrategies = []Strategy[core.Author]{
	{Name: "byline", Find: func(p *dom.Page) (core.Author, bool) {
		return authorFrom(p, p.Find(`.byline a, [class*="byline"] a`))
	}},
	{Name: "handle-near-post-link", Find: func(p *dom.Page) (core.Author, bool) {
		link := mainPostLink(p)
		if link == nil {
			return core.Author{}, false
		}
		anc := link.Parent()
		for i := 0; i < maxAuthorWalk && anc.Length() > 0; i++ {
			if a, ok := authorFrom(p, anc.Find(`a[href*="/@"]`)); ok {
				return a, true
			}
			anc = anc.Parent()
		}
		return core.Author{}, false
	}},
	{Name: "any-handle", Find: func(p *dom.Page) (core.Author, bool) {
		return authorFrom(p, p.Find(`a[href*="/@"]`))
	}},
}

// PublisherStrategies locate the publication name.
var PublisherStrategies = []Strategy[core.Publisher]{
	{Name: "same-domain-link", Find: findPublisher},
}

// mainPostLink returns the best guess at the link to the post being read: the
// post link with the longest text outside recommendation containers.
func mainPostLink(p *dom.Page) *goquery.Selection {
	var (
		best      *goquery.Selection
		bestScore int
	)
	p.Find(`a[href*="/p/"]`).Each(func(_ int, s *goquery.Selection) {
		if s.Closest(recommendationSelector).Length() > 0 {
			return
		}
		score := utf8.RuneCountInString(dom.Text(s))
		if score > bestScore {
			best, bestScore = s, score
		}
	})
	return best
}

func authorFrom(p *dom.Page, links *goquery.Selection) (core.Author, bool) {
	var author core.Author
	links.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name := dom.Text(s)
		if name == "" {
			return true
		}
		href, _ := s.Attr("href")
		author = core.Author{Name: name, URL: p.Resolve(href)}
		return false
	})
	return author, author.Name != ""
}

func findShortDate(p *dom.Page) (string, bool) {
	var found string
	p.Find("body *").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Children().Length() > 0 {
			return true
		}
		text := dom.Text(s)
		if len(text) > 24 || !shortDateRe.MatchString(text) {
			return true
		}
		found = text
		return false
	})
	return nonEmpty(found)
}

func findPublisher(p *dom.Page) (core.Publisher, bool) {
	host := p.Host()
	if link := mainPostLink(p); link != nil {
		href, _ := link.Attr("href")
		if u, err := url.Parse(p.Resolve(href)); err == nil && u.Host != "" {
			host = u.Host
		}
	}
	if host == "" {
		return core.Publisher{}, false
	}

	var best core.Publisher
	bestLen := 0
	p.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, err := url.Parse(p.Resolve(href))
		if err != nil || u.Host != host || (u.Path != "" && u.Path != "/") {
			return
		}
		text := dom.Text(s)
		n := utf8.RuneCountInString(text)
		if n < 2 || n > 60 || containsAnyFold(text, ctaWords) || isNavWord(text) {
			return
		}
		if bestLen == 0 || n < bestLen {
			best = core.Publisher{Name: text, URL: u.Scheme + "://" + u.Host}
			bestLen = n
		}
	})
	return best, best.Name != ""
}

func nonEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

func containsAnyFold(s string, words []string) bool {
	lower := strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func isNavWord(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, w := range navWords {
		if lower == w {
			return true
		}
	}
	return false
}
