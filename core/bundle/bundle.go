// Package bundle resolves the images of a Document into local assets and
// packages them with the rendered Markdown into a ZIP archive.
package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gaurav-prasanna/postpipe/core"
	"github.com/rs/zerolog/log"
)

// AssetDir is the archive folder that holds fetched images.
const AssetDir = "assets"

// Bundler fetches the images a Document references.
type Bundler struct {
	fetcher core.Fetcher
}

// New creates a Bundler that downloads through fetcher.
func New(fetcher core.Fetcher) *Bundler {
	return &Bundler{fetcher: fetcher}
}

// Collect returns the distinct image URLs of doc in first-seen order, the
// cover first when includeCover is set.
func Collect(doc *core.Document, includeCover bool) []string {
	var (
		urls []string
		seen = map[string]bool{}
	)
	add := func(u string) {
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}
	if includeCover {
		add(doc.Metadata.CoverImageURL)
	}
	for _, s := range doc.Sections {
		if s.Kind == core.SectionImage {
			add(s.Src)
		}
	}
	return urls
}

// Fetch downloads every URL concurrently and waits for all of them. Failed
// downloads are logged and left out of the map; the caller keeps the remote
// URL for those. Cancelling ctx stops the downloads still in flight.
func (b *Bundler) Fetch(ctx context.Context, urls []string) core.AssetMap {
	slots := make([]*core.Asset, len(urls))

	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			res, err := b.fetcher.Fetch(ctx, u)
			if err != nil {
				log.Warn().Err(err).Str("url", u).Msg("image fetch failed, keeping remote URL")
				return
			}
			if len(res.Body) == 0 {
				log.Warn().Str("url", u).Msg("image is empty, keeping remote URL")
				return
			}
			ext, mimeType := sniff(res.Body, res.ContentType)
			slots[i] = &core.Asset{
				Path:     AssetDir + "/image-" + strconv.Itoa(i+1) + "." + ext,
				MIMEType: mimeType,
				Data:     res.Body,
			}
		}(i, u)
	}
	wg.Wait()

	assets := make(core.AssetMap, len(urls))
	for i, a := range slots {
		if a != nil {
			assets[urls[i]] = *a
		}
	}
	log.Debug().Int("requested", len(urls)).Int("fetched", len(assets)).Msg("fetched images")
	return assets
}

// sniff picks a file extension and MIME type from the content, using the
// response Content-Type only when the bytes are not recognizably an image.
func sniff(data []byte, contentType string) (ext, mimeType string) {
	mimeType = baseType(mimetype.Detect(data).String())
	if !strings.HasPrefix(mimeType, "image/") {
		if header := baseType(contentType); strings.HasPrefix(header, "image/") {
			mimeType = header
		}
	}

	switch mimeType {
	case "image/png":
		return "png", mimeType
	case "image/gif":
		return "gif", mimeType
	case "image/webp":
		return "webp", mimeType
	case "image/svg+xml":
		return "svg", mimeType
	case "image/jpeg":
		return "jpg", mimeType
	}
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}
	return "jpg", mimeType
}

func baseType(v string) string {
	if v == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.SplitN(v, ";", 2)[0]))
	}
	return mt
}

// Rewrite returns a copy of doc whose cover and image sources point at the
// local asset paths. Images without an asset keep their URL. doc is not modified.
func Rewrite(doc *core.Document, assets core.AssetMap) *core.Document {
	out := doc.Clone()
	if a, ok := assets.Lookup(out.Metadata.CoverImageURL); ok {
		out.Metadata.CoverImageURL = a.Path
	}
	for i := range out.Sections {
		s := &out.Sections[i]
		if s.Kind != core.SectionImage {
			continue
		}
		if a, ok := assets.Lookup(s.Src); ok {
			s.Src = a.Path
		}
	}
	return out
}

// Archive writes a ZIP holding name.md and the asset files.
func Archive(w io.Writer, name string, markdown []byte, assets core.AssetMap) error {
	zw := zip.NewWriter(w)

	if err := writeEntry(zw, name+".md", markdown); err != nil {
		return err
	}

	paths := make([]string, 0, len(assets))
	byPath := make(map[string][]byte, len(assets))
	for _, a := range assets {
		if _, dup := byPath[a.Path]; dup {
			continue
		}
		paths = append(paths, a.Path)
		byPath[a.Path] = a.Data
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := writeEntry(zw, p, byPath[p]); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Bundle fetches the images of doc, renders the rewritten document with md and
// returns the ZIP archive bytes.
func (b *Bundler) Bundle(ctx context.Context, doc *core.Document, md core.Renderer, name string, includeCover bool) ([]byte, error) {
	assets := b.Fetch(ctx, Collect(doc, includeCover))

	text, err := md.Render(Rewrite(doc, assets), nil)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	var buf bytes.Buffer
	if err := Archive(&buf, name, text, assets); err != nil {
		return nil, fmt.Errorf("bundle: %w", err)
	}
	return buf.Bytes(), nil
}
