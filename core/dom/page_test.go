package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `<!doctype html>
<html>
  <head>
    <title>  Page Title </title>
    <meta property="og:title" content="OG Title">
    <meta name="description" content="A description">
  </head>
  <body><a href="/p/post">post</a></body>
</html>`

func TestPage_Accessors(t *testing.T) {
	p, err := ParseString(fixture, "https://example.substack.com/p/hello")
	require.NoError(t, err)

	assert.Equal(t, "Page Title", p.Title())
	assert.Equal(t, "OG Title", p.Meta("og:title"))
	assert.Equal(t, "A description", p.Meta("description"))
	assert.Equal(t, "", p.Meta("og:image"))
	assert.Equal(t, "example.substack.com", p.Host())
	assert.Equal(t, 1, p.Find("a").Length())
}

func TestPage_Resolve(t *testing.T) {
	p, err := ParseString(fixture, "https://example.substack.com/p/hello")
	require.NoError(t, err)

	assert.Equal(t, "https://example.substack.com/p/other", p.Resolve("/p/other"))
	assert.Equal(t, "https://cdn.example.com/a.png", p.Resolve("https://cdn.example.com/a.png"))
	assert.Equal(t, "", p.Resolve("  "))
}

func TestPage_ResolveWithoutURL(t *testing.T) {
	p, err := ParseString(fixture, "")
	require.NoError(t, err)

	assert.Equal(t, "/p/other", p.Resolve("/p/other"))
	assert.Equal(t, "", p.URL())
	assert.Equal(t, "", p.Host())
}
