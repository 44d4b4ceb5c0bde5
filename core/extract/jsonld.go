package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/postpipe/core"
	"github.com/gaurav-prasanna/postpipe/core/dom"
)

// LDStatus tags the outcome of parsing structured data.
type LDStatus int

const (
	// LDAbsent means the page carries no structured-data block.
	LDAbsent LDStatus = iota
	// LDFound means an article-typed block was mapped into Metadata.
	LDFound
	// LDUnrecognizedType means blocks parsed but none had an article type.
	LDUnrecognizedType
	// LDParseError means no block parsed and at least one failed to.
	LDParseError
)

func (s LDStatus) String() string {
	switch s {
	case LDAbsent:
		return "absent"
	case LDFound:
		return "found"
	case LDUnrecognizedType:
		return "unrecognized-type"
	case LDParseError:
		return "parse-error"
	}
	return fmt.Sprintf("LDStatus(%d)", int(s))
}

// LDResult is the result of ParseStructuredData. Metadata is set only for LDFound,
// Type only for LDUnrecognizedType, Err only for LDParseError.
type LDResult struct {
	Status   LDStatus
	Metadata core.ArticleMetadata
	Type     string
	Err      error
}

// articleTypes are the schema.org types whose fields are adopted directly.
var articleTypes = map[string]bool{
	"Article":            true,
	"NewsArticle":        true,
	"BlogPosting":        true,
	"Report":             true,
	"SocialMediaPosting": true,
	"TechArticle":        true,
	"ScholarlyArticle":   true,
}

// ParseStructuredData inspects every application/ld+json script on the page and
// returns the first article-typed block.
func ParseStructuredData(page *dom.Page) LDResult {
	scripts := page.Find(`script[type="application/ld+json"]`)
	if scripts.Length() == 0 {
		return LDResult{Status: LDAbsent}
	}

	var (
		firstErr  error
		otherType string
	)
	for i := range scripts.Nodes {
		raw := strings.TrimSpace(scripts.Eq(i).Text())
		if raw == "" {
			continue
		}
		objects, err := decodeLD(raw)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, obj := range objects {
			typ := ldType(obj)
			if articleTypes[typ] {
				return LDResult{Status: LDFound, Metadata: mapLD(obj, page.URL())}
			}
			if otherType == "" {
				otherType = typ
			}
		}
	}

	switch {
	case otherType != "":
		return LDResult{Status: LDUnrecognizedType, Type: otherType}
	case firstErr != nil:
		return LDResult{Status: LDParseError, Err: firstErr}
	default:
		return LDResult{Status: LDUnrecognizedType}
	}
}

// decodeLD accepts a single object, an array of objects, or an object with @graph.
func decodeLD(raw string) ([]map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("decoding ld+json: %w", err)
	}
	var out []map[string]any
	var walk func(any)
	walk = func(v any) {
		switch t := v.(type) {
		case map[string]any:
			if graph, ok := t["@graph"]; ok {
				walk(graph)
				return
			}
			out = append(out, t)
		case []any:
			for _, e := range t {
				walk(e)
			}
		}
	}
	walk(v)
	return out, nil
}

// ldType returns the first @type of an object.
func ldType(obj map[string]any) string {
	switch t := obj["@type"].(type) {
	case string:
		return t
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok {
				if articleTypes[s] {
					return s
				}
			}
		}
		if len(t) > 0 {
			if s, ok := t[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func mapLD(obj map[string]any, pageURL string) core.ArticleMetadata {
	meta := core.ArticleMetadata{
		Title:         firstString(obj, "headline", "name"),
		Description:   firstString(obj, "description"),
		DatePublished: firstString(obj, "datePublished"),
		Authors:       ldAuthors(obj["author"]),
		CoverImageURL: ldImage(obj["image"]),
		CanonicalURL:  firstString(obj, "url"),
	}
	if pub, ok := obj["publisher"].(map[string]any); ok {
		meta.Publisher = core.Publisher{
			Name: firstString(pub, "name"),
			URL:  firstString(pub, "url"),
		}
	}
	if meta.CanonicalURL == "" {
		meta.CanonicalURL = pageURL
	}
	return meta
}

func ldAuthors(v any) []core.Author {
	var authors []core.Author
	add := func(e any) {
		switch a := e.(type) {
		case map[string]any:
			authors = append(authors, core.Author{Name: firstString(a, "name"), URL: firstString(a, "url")})
		case string:
			authors = append(authors, core.Author{Name: strings.TrimSpace(a)})
		}
	}
	if list, ok := v.([]any); ok {
		for _, e := range list {
			add(e)
		}
	} else if v != nil {
		add(v)
	}
	return authors
}

func ldImage(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return firstString(t, "url", "contentUrl")
	case []any:
		for _, e := range t {
			if s := ldImage(e); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
