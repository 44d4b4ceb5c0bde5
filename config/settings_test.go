package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gaurav-prasanna/postpipe/core/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("filenameFormat: author-title\npdfShowCover: false\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "author-title", s.FilenameFormat)
	assert.False(t, s.PDFShowCover)
	assert.True(t, s.PDFShowFootnotes)
	assert.Equal(t, 11.0, s.PDFFontSize)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("filenameFormat: [oops"), 0o644))
	_, err := Load(bad)
	assert.Error(t, err)

	wrong := filepath.Join(dir, "wrong.yaml")
	require.NoError(t, os.WriteFile(wrong, []byte("filenameFormat: sideways\n"), 0o644))
	s, err := Load(wrong)
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Equal(t, Defaults(), s)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	s := Defaults()
	s.UseFrontmatter = true
	s.FrontmatterTemplate = "title: {title}"
	s.OutputDir = "/tmp/out"

	require.NoError(t, Save(path, s))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestSet(t *testing.T) {
	s := Defaults()

	require.NoError(t, s.Set("filenameFormat", "date-title"))
	require.NoError(t, s.Set("useFrontmatter", "true"))
	require.NoError(t, s.Set("pdfFontSize", "13.5"))
	require.NoError(t, s.Set("outputDir", "out"))

	assert.Equal(t, "date-title", s.FilenameFormat)
	assert.True(t, s.UseFrontmatter)
	assert.Equal(t, 13.5, s.PDFFontSize)
	assert.Equal(t, "out", s.OutputDir)

	v, err := s.Get("pdfFontSize")
	require.NoError(t, err)
	assert.Equal(t, "13.5", v)
}

func TestSet_Errors(t *testing.T) {
	s := Defaults()

	assert.ErrorIs(t, s.Set("colour", "blue"), ErrUnknownKey)
	assert.ErrorIs(t, s.Set("useFrontmatter", "maybe"), ErrInvalidValue)
	assert.ErrorIs(t, s.Set("pdfFontSize", "0"), ErrInvalidValue)
	assert.ErrorIs(t, s.Set("filenameFormat", "sideways"), ErrInvalidValue)
	_, err := s.Get("colour")
	assert.ErrorIs(t, err, ErrUnknownKey)

	assert.Equal(t, Defaults(), s)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{
		"filenameFormat",
		"frontmatterTemplate",
		"outputDir",
		"pdfFontPath",
		"pdfFontSize",
		"pdfShowCover",
		"pdfShowFootnotes",
		"useFrontmatter",
	}, Keys())
}

func TestRendererOptions(t *testing.T) {
	s := Defaults()
	s.UseFrontmatter = true
	s.PDFShowCover = false
	s.PDFFontSize = 14
	s.FilenameFormat = "author-title"

	md := s.MarkdownOptions()
	assert.True(t, md.IncludeFrontMatter)
	assert.True(t, md.IncludeCover)

	pdf := s.PDFOptions()
	assert.False(t, pdf.ShowCover)
	assert.True(t, pdf.ShowFootnotes)
	assert.Equal(t, 14.0, pdf.FontSize)

	assert.Equal(t, render.FormatAuthorTitle, s.FilenameOptions().Format)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	t.Setenv("HOME", "/home/someone")
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Contains(t, p, filepath.Join("postpipe", "config.yaml"))
}
