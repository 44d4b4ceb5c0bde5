package render

import (
	"regexp"
	"strings"
)

// RunStyle is the styling applied to a Run.
type RunStyle int

const (
	RunPlain RunStyle = iota
	RunBold
	RunItalic
	RunCode
	RunLink
)

func (s RunStyle) String() string {
	switch s {
	case RunBold:
		return "bold"
	case RunItalic:
		return "italic"
	case RunCode:
		return "code"
	case RunLink:
		return "link"
	}
	return "plain"
}

// Run is a span of text with a single style. Href is set for links only.
type Run struct {
	Text  string
	Style RunStyle
	Href  string
}

var (
	boldRunRe   = regexp.MustCompile(`^\*\*([\s\S]+?)\*\*`)
	italicRunRe = regexp.MustCompile(`^\*([^*]+)\*`)
	codeRunRe   = regexp.MustCompile("^`([^`]+)`")
	linkRunRe   = regexp.MustCompile(`^\[([^\]]+)\]\(([^)]+)\)`)
)

// ParseRuns splits inline Markdown into styled runs in a single left-to-right
// pass. Emphasis does not nest, and a marker that opens no valid token is kept
// as literal text. Every iteration consumes at least one byte.
func ParseRuns(text string) []Run {
	var runs []Run
	for rest := text; rest != ""; {
		if m := boldRunRe.FindStringSubmatch(rest); m != nil {
			runs = append(runs, Run{Text: m[1], Style: RunBold})
			rest = rest[len(m[0]):]
			continue
		}
		if m := italicRunRe.FindStringSubmatch(rest); m != nil {
			runs = append(runs, Run{Text: m[1], Style: RunItalic})
			rest = rest[len(m[0]):]
			continue
		}
		if m := codeRunRe.FindStringSubmatch(rest); m != nil {
			runs = append(runs, Run{Text: m[1], Style: RunCode})
			rest = rest[len(m[0]):]
			continue
		}
		if m := linkRunRe.FindStringSubmatch(rest); m != nil {
			runs = append(runs, Run{Text: m[1], Style: RunLink, Href: m[2]})
			rest = rest[len(m[0]):]
			continue
		}

		next := strings.IndexAny(rest, "*`[")
		switch {
		case next < 0:
			runs = append(runs, Run{Text: rest})
			rest = ""
		case next > 0:
			runs = append(runs, Run{Text: rest[:next]})
			rest = rest[next:]
		default:
			// Unmatched marker.
			runs = append(runs, Run{Text: rest[:1]})
			rest = rest[1:]
		}
	}
	return runs
}

// PlainText joins the text of runs, dropping all styling.
func PlainText(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}
