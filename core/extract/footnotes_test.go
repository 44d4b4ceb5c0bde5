package extract

import (
	"testing"

	"github.com/gaurav-prasanna/postpipe/core"
	"github.com/gaurav-prasanna/postpipe/core/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFootnotes(t *testing.T) {
	page, err := dom.ParseString(`<html><body>
<div class="footnote">
  <a id="footnote-1" href="#footnote-anchor-1" class="footnote-number">1</a>
  <div class="footnote-content"><p>First note with <a href="https://x.com">link</a>.</p></div>
</div>
<div class="footnote" id="footnote-3">3. Some note</div>
<div class="footnote" id="footnote-3">A duplicate</div>
<div class="footnote" id="footnote-4"><a href="#footnote-anchor-4">4</a></div>
<div class="footnote">No id at all</div>
</body></html>`, "https://pub.example.com/p/post")
	require.NoError(t, err)

	notes := ExtractFootnotes(page)
	assert.Equal(t, []core.Footnote{
		{ID: "1", Content: "First note with [link](https://x.com)."},
		{ID: "3", Content: "Some note"},
	}, notes)
}

func TestExtractFootnotes_IgnoresAnchorIDs(t *testing.T) {
	page, err := dom.ParseString(`<html><body>
<div class="footnote"><span id="footnote-anchor-9">x</span><span id="footnote-9">9</span> Note nine</div>
</body></html>`, "")
	require.NoError(t, err)

	notes := ExtractFootnotes(page)
	require.Len(t, notes, 1)
	assert.Equal(t, "9", notes[0].ID)
}

func TestExtractFootnotes_None(t *testing.T) {
	page, err := dom.ParseString(`<html><body><p>No notes</p></body></html>`, "")
	require.NoError(t, err)
	assert.Empty(t, ExtractFootnotes(page))
}
