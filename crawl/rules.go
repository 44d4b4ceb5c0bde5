// Package crawl: URL rules.
// Provides helpers to classify, filter, and normalize article URLs.
package crawl

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/postpipe/core"
)

var (
	postPathRe    = regexp.MustCompile(`^/p/[\w-]+/?$`)
	inboxPathRe   = regexp.MustCompile(`^/home/post/`)
	profilePathRe = regexp.MustCompile(`^/@[\w.-]+/?$`)
)

// staticExtensions are file extensions that never point at an article.
var staticExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true,
	".css": true, ".js": true, ".xml": true, ".json": true,
	".mp3": true, ".mp4": true, ".pdf": true, ".zip": true,
}

// ClassifyURL returns the page layout a URL is expected to have.
func ClassifyURL(rawURL string) core.PageKind {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" {
		return core.PageUnknown
	}
	switch {
	case inboxPathRe.MatchString(parsed.Path):
		return core.PageInbox
	case profilePathRe.MatchString(parsed.Path):
		return core.PageProfile
	case postPathRe.MatchString(parsed.Path):
		return core.PagePost
	}
	return core.PageUnknown
}

// IsSupported reports whether a URL looks like a page postpipe knows how to read.
func IsSupported(rawURL string) bool {
	if ClassifyURL(rawURL) != core.PageUnknown {
		return true
	}
	parsed, err := url.Parse(rawURL)
	return err == nil && strings.HasSuffix(parsed.Host, "substack.com")
}

// IsPostURL reports whether a URL is a standalone post.
func IsPostURL(rawURL string) bool {
	return ClassifyURL(rawURL) == core.PagePost
}

// IsSameDomain checks if the given URL belongs to the specified domain.
func IsSameDomain(rawURL string, domain string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return parsed.Host == domain
}

// IsStaticAsset checks if a URL points to a static asset (image, CSS, JS, etc.).
func IsStaticAsset(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	return staticExtensions[ext]
}

// NormalizeURL strips queries, fragments and trailing slashes for deduplication.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Fragment = ""
	parsed.RawQuery = ""

	// Keep root "/".
	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}

	return parsed.String()
}

// Origin returns scheme://host of an absolute URL.
func Origin(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%q is not an absolute URL", rawURL)
	}
	return parsed.Scheme + "://" + parsed.Host, nil
}
