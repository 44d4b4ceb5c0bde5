// Package core defines the pipeline interfaces and the document model for postpipe.
// Each stage of the pipeline is a clean, testable interface.
package core

import (
	"context"
	"errors"
)

// ErrEmptyPage is returned when a page has no HTML to extract from.
var ErrEmptyPage = errors.New("page is empty")

// FetchResult holds the raw body and response metadata from a fetch.
type FetchResult struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// HTML returns the body as a string.
func (r *FetchResult) HTML() string {
	return string(r.Body)
}

// Fetcher retrieves a resource (a page or an image) from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Renderer converts a Document (and an optional AssetMap) into a final output format.
// Implementations must not look at anything but their arguments.
type Renderer interface {
	Render(doc *Document, assets AssetMap) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
