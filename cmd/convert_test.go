package cmd

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gaurav-prasanna/postpipe/config"
	"github.com/gaurav-prasanna/postpipe/core/bundle"
	"github.com/gaurav-prasanna/postpipe/core/extract"
	"github.com/gaurav-prasanna/postpipe/core/fetch"
	"github.com/gaurav-prasanna/postpipe/core/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func fixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "core", "extract", "testdata", "post.html"))
	require.NoError(t, err)
	return data
}

func postServer(t *testing.T) *httptest.Server {
	t.Helper()
	page := fixture(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/p/hello-world", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	})
	mux.HandleFunc("/p/broken", http.NotFound)
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		host := "http://" + r.Host
		_, _ = w.Write([]byte(`<?xml version="1.0"?><urlset>` +
			`<url><loc>` + host + `/p/hello-world</loc></url>` +
			`<url><loc>` + host + `/p/broken</loc></url>` +
			`</urlset>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testPipeline(t *testing.T, format outputFormat) (*pipeline, *bytes.Buffer, *bytes.Buffer, *fakeClipboard) {
	t.Helper()
	w, err := output.New(t.TempDir())
	require.NoError(t, err)
	// Fixture images point at an unreachable CDN; fail those fast.
	f := fetch.New(fetch.WithClient(&http.Client{Timeout: 2 * time.Second}))
	var out, errOut bytes.Buffer
	clip := &fakeClipboard{}
	return &pipeline{
		format:    format,
		settings:  config.Defaults(),
		fetcher:   f,
		extractor: extract.New(),
		bundler:   bundle.New(f),
		writer:    w,
		clipboard: clip,
		out:       &out,
		errOut:    &errOut,
	}, &out, &errOut, clip
}

func writtenFiles(t *testing.T, p *pipeline) []string {
	t.Helper()
	entries, err := os.ReadDir(p.writer.OutputDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestConvertURL_Markdown(t *testing.T) {
	srv := postServer(t)
	p, out, _, _ := testPipeline(t, formatMarkdown)

	require.NoError(t, p.convertURL(context.Background(), srv.URL+"/p/hello-world"))

	names := writtenFiles(t, p)
	require.Len(t, names, 1)
	assert.True(t, strings.HasPrefix(names[0], "Hello-World-2024-03-0"), names[0])
	assert.True(t, strings.HasSuffix(names[0], ".md"))
	assert.Contains(t, out.String(), "✓ Written: ")

	data, err := os.ReadFile(filepath.Join(p.writer.OutputDir, names[0]))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Hello World\n"))
}

func TestConvertURL_FormatsProduceTheirExtension(t *testing.T) {
	srv := postServer(t)
	for format, ext := range map[outputFormat]string{
		formatZip:  ".zip",
		formatPDF:  ".pdf",
		formatJSON: ".json",
	} {
		t.Run(string(format), func(t *testing.T) {
			p, _, _, _ := testPipeline(t, format)
			require.NoError(t, p.convertURL(context.Background(), srv.URL+"/p/hello-world"))

			names := writtenFiles(t, p)
			require.Len(t, names, 1)
			assert.Equal(t, ext, filepath.Ext(names[0]))

			if format == formatZip {
				data, err := os.ReadFile(filepath.Join(p.writer.OutputDir, names[0]))
				require.NoError(t, err)
				zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
				require.NoError(t, err)
				assert.Equal(t, strings.TrimSuffix(names[0], ".zip")+".md", zr.File[0].Name)
			}
		})
	}
}

func TestConvertFile_Obsidian(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.html")
	require.NoError(t, os.WriteFile(path, fixture(t), 0o644))
	p, out, _, clip := testPipeline(t, formatObsidian)

	require.NoError(t, p.convertFile(context.Background(), path, "https://pub.example.com/p/hello-world"))

	assert.True(t, strings.HasPrefix(clip.text, "# Hello World\n"))
	assert.True(t, strings.HasPrefix(out.String(), "obsidian://new?file=Hello-World-2024-03-0"))
	assert.Contains(t, out.String(), "&clipboard=true")
	assert.Empty(t, writtenFiles(t, p))
}

func TestConvertFile_Stdout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.html")
	require.NoError(t, os.WriteFile(path, fixture(t), 0o644))
	p, out, _, clip := testPipeline(t, formatStdout)

	require.NoError(t, p.convertFile(context.Background(), path, "https://pub.example.com/p/hello-world"))

	assert.True(t, strings.HasPrefix(out.String(), "# Hello World\n"))
	assert.Contains(t, out.String(), "**Author**: Jane Doe")
	assert.NotContains(t, out.String(), "✓ Written")
	assert.Empty(t, clip.text)
	assert.Empty(t, writtenFiles(t, p))
}

func TestConvertFile_CopyError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.html")
	require.NoError(t, os.WriteFile(path, fixture(t), 0o644))
	p, _, _, clip := testPipeline(t, formatCopy)
	clip.err = errors.New("no clipboard")

	assert.EqualError(t, p.convertFile(context.Background(), path, ""), "no clipboard")
}

func TestConvertFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.html")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	p, _, _, _ := testPipeline(t, formatMarkdown)

	err := p.convertFile(context.Background(), path, "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "extract:")
}

func TestConvertAll_ReportsFailuresAndContinues(t *testing.T) {
	srv := postServer(t)
	p, out, errOut, _ := testPipeline(t, formatMarkdown)

	require.NoError(t, p.convertAll(context.Background(), srv.URL))

	assert.Contains(t, out.String(), "Found 2 posts to process")
	assert.Contains(t, errOut.String(), "✗ Error: fetch:")
	assert.Contains(t, errOut.String(), "1/2 posts failed")
	assert.Len(t, writtenFiles(t, p), 1)
}

func TestConvertAll_RejectsClipboardFormats(t *testing.T) {
	p, _, _, _ := testPipeline(t, formatCopy)
	assert.Error(t, p.convertAll(context.Background(), "https://pub.example.com"))
}

func TestSelectFormat(t *testing.T) {
	reset := func() {
		for _, f := range allFormats {
			*formatFlags[f] = false
		}
	}
	t.Cleanup(reset)

	reset()
	f, err := selectFormat()
	require.NoError(t, err)
	assert.Equal(t, formatMarkdown, f)

	*formatFlags[formatPDF] = true
	f, err = selectFormat()
	require.NoError(t, err)
	assert.Equal(t, formatPDF, f)

	*formatFlags[formatJSON] = true
	_, err = selectFormat()
	assert.Error(t, err)
}
