// Package output delivers rendered documents: files on disk, the system
// clipboard, and note-app deep links.
package output

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
)

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	// Ensure the output directory exists.
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// Write stores data as name inside the output directory and returns the full path.
// name must be a bare filename; directory components are stripped.
func (w *Writer) Write(name string, data []byte) (string, error) {
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		return "", fmt.Errorf("invalid output name %q", name)
	}
	path := filepath.Join(w.OutputDir, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// Clipboard abstracts the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

// WriteAll replaces the clipboard contents with text.
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not supported on this system")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}

// ObsidianURI builds the deep link that creates a note named after filename
// (the .md extension is dropped) with the clipboard as its content.
func ObsidianURI(filename string) string {
	name := strings.TrimSuffix(filename, ".md")
	return "obsidian://new?file=" + encodeURIComponent(name) + "&clipboard=true"
}

// componentUnescaper undoes the query-escaping of characters that
// encodeURIComponent leaves as they are, and spells spaces as %20.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeURIComponent escapes s like the browser function of the same name.
func encodeURIComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
