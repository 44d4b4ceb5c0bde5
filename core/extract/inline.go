package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// trackingParams are query keys removed from link hrefs. Keys ending in "_"
// are prefixes.
var trackingParams = []string{"utm_", "fbclid", "gclid", "mc_cid", "mc_eid"}

// Inline converts the inline formatting of a fragment into Markdown-flavored text.
// Links, emphasis, code, line breaks and footnote anchors are recognized; any other
// element is unwrapped to its children. The result is trimmed. Inline never modifies
// the selection.
func Inline(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		b.WriteString(inlineNode(n))
	}
	return strings.TrimSpace(b.String())
}

func inlineNode(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return n.Data
	case html.ElementNode, html.DocumentNode:
	default:
		return ""
	}

	tag := strings.ToLower(n.Data)
	if tag == "script" || tag == "style" {
		return ""
	}

	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(inlineNode(c))
	}
	children := b.String()

	switch tag {
	case "a":
		return inlineAnchor(n, children)
	case "strong", "b":
		return "**" + children + "**"
	case "em", "i":
		return "*" + children + "*"
	case "code":
		return "`" + children + "`"
	case "br":
		return "\n"
	default:
		return children
	}
}

func inlineAnchor(n *html.Node, children string) string {
	href := attr(n, "href")
	if isFootnoteAnchor(n, href) {
		return "[^" + strings.TrimSpace(children) + "]"
	}
	if hasClass(n, "button") {
		return children
	}
	href = StripTracking(href)
	if href == "" {
		return children
	}
	return "[" + strings.TrimSpace(children) + "](" + href + ")"
}

// isFootnoteAnchor reports whether an anchor points at a footnote of the same page.
func isFootnoteAnchor(n *html.Node, href string) bool {
	if strings.Contains(href, "http") {
		return false
	}
	return hasClass(n, "footnote-anchor") || strings.HasPrefix(href, "#footnote-")
}

// StripTracking removes tracking query parameters from href. Hrefs without any
// tracking parameter, or that cannot be parsed, are returned unchanged.
func StripTracking(href string) string {
	if !hasTrackingParam(href) {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	q := u.Query()
	for key := range q {
		if isTrackingKey(key) {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func hasTrackingParam(href string) bool {
	for _, p := range trackingParams {
		if strings.Contains(href, p) {
			return true
		}
	}
	return false
}

func isTrackingKey(key string) bool {
	for _, p := range trackingParams {
		if strings.HasSuffix(p, "_") {
			if strings.HasPrefix(key, p) {
				return true
			}
		} else if key == p {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
