package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRuns_AllStyles(t *testing.T) {
	runs := ParseRuns("**bold** and *italic* and `code` and [text](http://x)")

	assert.Equal(t, []Run{
		{Text: "bold", Style: RunBold},
		{Text: " and "},
		{Text: "italic", Style: RunItalic},
		{Text: " and "},
		{Text: "code", Style: RunCode},
		{Text: " and "},
		{Text: "text", Style: RunLink, Href: "http://x"},
	}, runs)
}

func TestParseRuns_UnmatchedMarkersAreLiteral(t *testing.T) {
	assert.Equal(t, []Run{{Text: "2 "}, {Text: "*"}, {Text: " 3"}}, ParseRuns("2 * 3"))
	assert.Equal(t, []Run{{Text: "["}, {Text: "not a link"}}, ParseRuns("[not a link"))
	assert.Equal(t, []Run{{Text: "`"}, {Text: "open"}}, ParseRuns("`open"))
}

func TestParseRuns_NoNesting(t *testing.T) {
	runs := ParseRuns("**a *b* c**")
	assert.Equal(t, []Run{{Text: "a *b* c", Style: RunBold}}, runs)
}

func TestParseRuns_PlainAndEmpty(t *testing.T) {
	assert.Nil(t, ParseRuns(""))
	assert.Equal(t, []Run{{Text: "no markup here"}}, ParseRuns("no markup here"))
}

func TestParseRuns_FootnoteReferenceStaysText(t *testing.T) {
	runs := ParseRuns("see[^1]")
	assert.Equal(t, "see[^1]", PlainText(runs))
	for _, r := range runs {
		assert.Equal(t, RunPlain, r.Style)
	}
}

func TestRunStyle_String(t *testing.T) {
	assert.Equal(t, "link", RunLink.String())
	assert.Equal(t, "plain", RunPlain.String())
}
