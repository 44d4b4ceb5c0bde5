package render

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gaurav-prasanna/postpipe/core"
	"golang.org/x/text/unicode/norm"
)

// FilenameFormat selects the order of the title, date and author tokens.
type FilenameFormat string

const (
	FormatTitleDate   FilenameFormat = "title-date"
	FormatDateTitle   FilenameFormat = "date-title"
	FormatAuthorTitle FilenameFormat = "author-title"
)

const (
	maxTitleRunes  = 50
	maxAuthorRunes = 30

	fallbackTitle  = "untitled-post"
	fallbackAuthor = "unknown-author"
)

var (
	// unsafeNameRe matches everything except word characters, whitespace,
	// hyphens and CJK unified ideographs.
	unsafeNameRe = regexp.MustCompile(`[^\w\s\x{4e00}-\x{9fa5}-]`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
)

// ParseFilenameFormat validates a format name. The empty string means FormatTitleDate.
func ParseFilenameFormat(s string) (FilenameFormat, error) {
	switch f := FilenameFormat(strings.TrimSpace(s)); f {
	case "":
		return FormatTitleDate, nil
	case FormatTitleDate, FormatDateTitle, FormatAuthorTitle:
		return f, nil
	}
	return "", fmt.Errorf("unknown filename format %q (want %s, %s or %s)", s, FormatTitleDate, FormatDateTitle, FormatAuthorTitle)
}

// FilenameOptions controls how output names are derived.
type FilenameOptions struct {
	Format FilenameFormat
	// Location is the calendar zone for the date token. Nil means time.Local.
	Location *time.Location
	// Now supplies the date when the article has no parseable publish date.
	Now func() time.Time
}

// Basename derives a filesystem-safe name for the article, without extension.
// The result depends only on meta and opts.
func Basename(meta core.ArticleMetadata, opts FilenameOptions) string {
	title := sanitizeName(meta.Title, maxTitleRunes, fallbackTitle)
	date := dateToken(meta.DatePublished, opts)

	switch opts.Format {
	case FormatDateTitle:
		return date + "-" + title
	case FormatAuthorTitle:
		author := ""
		if len(meta.Authors) > 0 {
			author = meta.Authors[0].Name
		}
		return sanitizeName(author, maxAuthorRunes, fallbackAuthor) + "-" + title
	default:
		return title + "-" + date
	}
}

// Filename is Basename with the Markdown extension.
func Filename(meta core.ArticleMetadata, opts FilenameOptions) string {
	return Basename(meta, opts) + ".md"
}

func sanitizeName(s string, limit int, fallback string) string {
	s = norm.NFC.String(s)
	s = unsafeNameRe.ReplaceAllString(s, "")
	s = spaceRunRe.ReplaceAllString(strings.TrimSpace(s), "-")
	s = truncateRunes(s, limit)
	s = strings.Trim(s, "-")
	if s == "" {
		return fallback
	}
	return s
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func dateToken(published string, opts FilenameOptions) string {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	if t, ok := parseDate(published, loc); ok {
		return t.Format("2006-01-02")
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	return now().In(loc).Format("2006-01-02")
}

// parseDate reads a platform-supplied date string and returns it in loc.
func parseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t.In(loc), true
}
