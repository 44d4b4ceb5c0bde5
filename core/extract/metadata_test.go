package extract

import (
	"strings"
	"testing"

	"github.com/gaurav-prasanna/postpipe/core"
	"github.com/gaurav-prasanna/postpipe/core/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://pub.example.com/p/hello"

func pageWithLD(t *testing.T, ld string) *dom.Page {
	t.Helper()
	page, err := dom.ParseString(`<html><head>
<meta property="og:title" content="DOM Title">
<script type="application/ld+json">`+ld+`</script>
</head><body></body></html>`, pageURL)
	require.NoError(t, err)
	return page
}

func TestParseStructuredData_Article(t *testing.T) {
	page := pageWithLD(t, `{
  "@context": "https://schema.org",
  "@type": "NewsArticle",
  "headline": "LD Title",
  "description": "LD desc",
  "datePublished": "2024-03-05T10:00:00Z",
  "author": [{"@type": "Person", "name": "Jane", "url": "https://substack.com/@jane"}, "Bob"],
  "image": {"url": "https://cdn.example.com/cover.png"},
  "publisher": {"name": "Pub", "url": "https://pub.example.com"}
}`)

	res := ParseStructuredData(page)
	require.Equal(t, LDFound, res.Status)
	assert.Equal(t, core.ArticleMetadata{
		Title:         "LD Title",
		Description:   "LD desc",
		DatePublished: "2024-03-05T10:00:00Z",
		Authors: []core.Author{
			{Name: "Jane", URL: "https://substack.com/@jane"},
			{Name: "Bob"},
		},
		Publisher:     core.Publisher{Name: "Pub", URL: "https://pub.example.com"},
		CoverImageURL: "https://cdn.example.com/cover.png",
		CanonicalURL:  pageURL,
	}, res.Metadata)

	assert.Equal(t, "LD Title", ExtractMetadata(page).Title)
}

func TestParseStructuredData_Graph(t *testing.T) {
	page := pageWithLD(t, `{"@graph": [{"@type": "WebPage", "name": "Page"}, {"@type": ["Thing", "BlogPosting"], "name": "Graph Title"}]}`)

	res := ParseStructuredData(page)
	require.Equal(t, LDFound, res.Status)
	assert.Equal(t, "Graph Title", res.Metadata.Title)
}

func TestParseStructuredData_PersonFallsBackToDOM(t *testing.T) {
	page := pageWithLD(t, `{"@type": "Person", "name": "Someone"}`)

	res := ParseStructuredData(page)
	assert.Equal(t, LDUnrecognizedType, res.Status)
	assert.Equal(t, "Person", res.Type)

	assert.Equal(t, "DOM Title", ExtractMetadata(page).Title)
}

func TestParseStructuredData_Malformed(t *testing.T) {
	page := pageWithLD(t, `{"@type": "Article", "headline": `)

	res := ParseStructuredData(page)
	assert.Equal(t, LDParseError, res.Status)
	assert.Error(t, res.Err)
	assert.Equal(t, "DOM Title", ExtractMetadata(page).Title)
}

func TestParseStructuredData_Absent(t *testing.T) {
	page, err := dom.ParseString(`<html><body></body></html>`, pageURL)
	require.NoError(t, err)
	assert.Equal(t, LDAbsent, ParseStructuredData(page).Status)
	assert.Equal(t, "absent", LDAbsent.String())
}

func TestMetadataFromDOM(t *testing.T) {
	page, err := dom.ParseString(`<html><head>
<title>Doc Title</title>
<meta name="description" content="Plain description">
<meta property="og:image" content="/cover.jpg">
<link rel="canonical" href="https://pub.example.com/p/hello">
</head><body>
<header>
  <a href="https://pub.example.com/">Home</a>
  <a href="https://pub.example.com/">My Publication</a>
  <a href="https://pub.example.com/subscribe">Subscribe</a>
  <a href="https://pub.example.com/">Subscribe now</a>
</header>
<h1>Hello World</h1>
<div class="post-meta">
  <div><a href="https://substack.com/@jane">Jane Doe</a></div>
  <div>Mar 5, 2024</div>
</div>
<a href="https://pub.example.com/p/hello">Hello World, the full title link</a>
<div class="recommendations">
  <a href="https://pub.example.com/p/another-post-with-a-much-longer-link-text">Another post with a much longer link text than the main one</a>
</div>
</body></html>`, pageURL)
	require.NoError(t, err)

	meta := MetadataFromDOM(page)
	assert.Equal(t, "Hello World", meta.Title)
	assert.Equal(t, "Plain description", meta.Description)
	assert.Equal(t, "Mar 5, 2024", meta.DatePublished)
	assert.Equal(t, []core.Author{{Name: "Jane Doe", URL: "https://substack.com/@jane"}}, meta.Authors)
	assert.Equal(t, core.Publisher{Name: "My Publication", URL: "https://pub.example.com"}, meta.Publisher)
	assert.Equal(t, "https://pub.example.com/cover.jpg", meta.CoverImageURL)
	assert.Equal(t, "https://pub.example.com/p/hello", meta.CanonicalURL)
}

func TestMetadataFromDOM_TimeElementWins(t *testing.T) {
	page, err := dom.ParseString(`<html><body>
<div>Jan 1, 2020</div>
<time datetime="2024-03-05T10:00:00.000Z">Mar 5</time>
</body></html>`, pageURL)
	require.NoError(t, err)

	date, name := FirstMatch(page, DateStrategies)
	assert.Equal(t, "2024-03-05T10:00:00.000Z", date)
	assert.Equal(t, "time-datetime", name)
}

func TestMetadataFromDOM_EmptyPage(t *testing.T) {
	page, err := dom.ParseString(`<html><body></body></html>`, pageURL)
	require.NoError(t, err)

	meta := MetadataFromDOM(page)
	assert.Equal(t, "", meta.Title)
	assert.Empty(t, meta.Authors)
	assert.Equal(t, pageURL, meta.CanonicalURL)
}

// nestedPostPage wraps the main post link in depth divs below the element that
// holds the author link. A sidebar handle comes first in document order.
func nestedPostPage(depth int) string {
	return `<html><body>
<aside class="sidebar"><a href="https://substack.com/@other">Other Writer</a></aside>
<div class="post-header">
  <a href="https://substack.com/@jane">Jane Doe</a>
  ` + strings.Repeat("<div>", depth) +
		`<a href="https://pub.example.com/p/hello">Hello World, the full title</a>` +
		strings.Repeat("</div>", depth) + `
</div>
</body></html>`
}

func TestAuthorStrategies(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		author   string
		strategy string
	}{
		{
			name:     "byline first",
			html:     `<html><body><a href="https://substack.com/@other">Other Writer</a><div class="byline"><a href="https://substack.com/@jane">Jane Doe</a></div></body></html>`,
			author:   "Jane Doe",
			strategy: "byline",
		},
		{
			name:     "walk up skips earlier sidebar handle",
			html:     nestedPostPage(1),
			author:   "Jane Doe",
			strategy: "handle-near-post-link",
		},
		{
			name:     "walk up reaches its last ancestor",
			html:     nestedPostPage(maxAuthorWalk - 1),
			author:   "Jane Doe",
			strategy: "handle-near-post-link",
		},
		{
			name:     "walk up stops before a farther ancestor",
			html:     nestedPostPage(maxAuthorWalk),
			author:   "Other Writer",
			strategy: "any-handle",
		},
		{
			name: "recommended post link is not the main link",
			html: `<html><body>
<aside class="recommendations"><div>
  <a href="https://pub.example.com/p/a-much-longer-recommended-post">A much longer recommended post title than the main one</a>
  <a href="https://substack.com/@other">Other Writer</a>
</div></aside>
<div class="post"><h1><a href="https://pub.example.com/p/hello">Hello World</a></h1>
  <a href="https://substack.com/@jane">Jane Doe</a>
</div>
</body></html>`,
			author:   "Jane Doe",
			strategy: "handle-near-post-link",
		},
		{
			name:     "no post link",
			html:     `<html><body><p><a href="https://substack.com/@jane">Jane Doe</a></p></body></html>`,
			author:   "Jane Doe",
			strategy: "any-handle",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := dom.ParseString(tt.html, pageURL)
			require.NoError(t, err)

			author, strategy := FirstMatch(page, AuthorStrategies)
			assert.Equal(t, tt.author, author.Name)
			assert.Equal(t, tt.strategy, strategy)
		})
	}
}
