package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/postpipe/core"
	"github.com/gaurav-prasanna/postpipe/core/dom"
)

const footnoteIDPrefix = "footnote-"

var leadingOrdinalRe = regexp.MustCompile(`^\d+\.\s*`)

// ExtractFootnotes returns the page footnotes in document order. Entries without
// an id or without content are dropped; when two footnotes share an id the first wins.
func ExtractFootnotes(page *dom.Page) []core.Footnote {
	var (
		notes []core.Footnote
		seen  = map[string]bool{}
	)
	page.Find(".footnote").Each(func(_ int, el *goquery.Selection) {
		id := footnoteID(el)
		if id == "" || seen[id] {
			return
		}

		clone := el.Clone()
		clone.Find(`a[href^="#footnote-anchor-"]`).Remove()
		content := leadingOrdinalRe.ReplaceAllString(Inline(clone), "")
		content = strings.TrimSpace(content)
		if content == "" {
			return
		}

		seen[id] = true
		notes = append(notes, core.Footnote{ID: id, Content: content})
	})
	return notes
}

// footnoteID reads the id from the element, or from its first descendant whose
// id carries the footnote prefix.
func footnoteID(el *goquery.Selection) string {
	raw, _ := el.Attr("id")
	if !strings.HasPrefix(raw, footnoteIDPrefix) {
		el.Find(`[id^="` + footnoteIDPrefix + `"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			v, _ := s.Attr("id")
			if strings.HasPrefix(v, "footnote-anchor-") {
				return true
			}
			raw = v
			return false
		})
	}
	return strings.TrimSpace(strings.TrimPrefix(raw, footnoteIDPrefix))
}
