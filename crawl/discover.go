// Package crawl provides URL discovery for --all mode.
// It lists the posts of a publication via sitemap.xml and falls back to the
// archive page, keeping discovery separate from the extract pipeline.
package crawl

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/postpipe/core"
	"github.com/rs/zerolog/log"
)

// MaxPosts caps how many posts a single discovery run returns.
const MaxPosts = 100

// sitemapURL holds a URL from a sitemap.xml.
type sitemapURL struct {
	Loc string `xml:"loc"`
}

// sitemapIndex is the root element of a sitemap.xml.
type sitemapIndex struct {
	URLs []sitemapURL `xml:"url"`
}

// DiscoverPosts finds the post URLs of the publication that baseURL belongs to.
// It first tries sitemap.xml, then falls back to the /archive page. Results are
// normalized, deduplicated and capped at MaxPosts.
func DiscoverPosts(ctx context.Context, baseURL string, fetcher core.Fetcher) ([]string, error) {
	origin, err := Origin(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	_, domain, _ := strings.Cut(origin, "://")

	urls, err := discoverFromSitemap(ctx, origin+"/sitemap.xml", domain, fetcher)
	if err == nil && len(urls) > 0 {
		log.Debug().Str("source", "sitemap").Int("posts", len(urls)).Msg("discovered posts")
		return urls, nil
	}
	if err != nil {
		log.Debug().Err(err).Msg("sitemap unavailable, trying archive")
	}

	urls, err = discoverFromArchive(ctx, origin+"/archive", domain, fetcher)
	if err != nil {
		return nil, fmt.Errorf("discovering posts on %s: %w", domain, err)
	}
	log.Debug().Str("source", "archive").Int("posts", len(urls)).Msg("discovered posts")
	return urls, nil
}

// discoverFromSitemap fetches and parses sitemap.xml for post URLs.
func discoverFromSitemap(ctx context.Context, sitemapURL string, domain string, fetcher core.Fetcher) ([]string, error) {
	result, err := fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	var sitemap sitemapIndex
	if err := xml.Unmarshal(result.Body, &sitemap); err != nil {
		return nil, fmt.Errorf("parsing sitemap: %w", err)
	}

	queue := NewQueue()
	for _, u := range sitemap.URLs {
		loc := strings.TrimSpace(u.Loc)
		if IsSameDomain(loc, domain) {
			addPost(queue, loc)
		}
		if queue.Len() >= MaxPosts {
			break
		}
	}
	return queue.All(), nil
}

// discoverFromArchive reads post links off the publication archive page.
func discoverFromArchive(ctx context.Context, archiveURL string, domain string, fetcher core.Fetcher) ([]string, error) {
	result, err := fetcher.Fetch(ctx, archiveURL)
	if err != nil {
		return nil, err
	}

	links, err := extractLinks(result.HTML(), archiveURL)
	if err != nil {
		return nil, err
	}

	queue := NewQueue()
	for _, link := range links {
		if IsSameDomain(link, domain) {
			addPost(queue, link)
		}
		if queue.Len() >= MaxPosts {
			break
		}
	}
	return queue.All(), nil
}

func addPost(queue *Queue, link string) {
	if IsStaticAsset(link) {
		return
	}
	link = NormalizeURL(link)
	if IsPostURL(link) {
		queue.Add(link)
	}
}

// extractLinks extracts all href values from <a> tags, resolving relative URLs.
func extractLinks(html string, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(baseURL)
	var links []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}

		resolved := resolveURL(href, base)
		if resolved != "" {
			links = append(links, resolved)
		}
	})

	return links, nil
}

// resolveURL resolves a potentially relative URL against a base.
func resolveURL(href string, base *url.URL) string {
	// Skip mailto, javascript, etc.
	if strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "#") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	return resolved.String()
}
