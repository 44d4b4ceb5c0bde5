package render

import (
	"strings"
	"time"

	"github.com/gaurav-prasanna/postpipe/core"
)

const untitled = "Untitled"

// frontMatterTags is the fixed tag list of the default front matter.
const frontMatterTags = "[substack, newsletter]"

// frontMatter renders the YAML block that precedes the article. A custom
// template replaces the fixed key set; its placeholders are {title}, {url},
// {date} and {author}.
func frontMatter(doc *core.Document, tmpl string, loc *time.Location) string {
	meta := doc.Metadata
	title := meta.Title
	if title == "" {
		title = untitled
	}
	authors := strings.Join(meta.AuthorNames(), ", ")
	date := ""
	if t, ok := parseDate(meta.DatePublished, loc); ok {
		date = t.Format("2006-01-02")
	}

	if strings.TrimSpace(tmpl) != "" {
		body := strings.NewReplacer(
			"{title}", title,
			"{url}", doc.URL(),
			"{date}", date,
			"{author}", authors,
		).Replace(tmpl)
		body = strings.TrimRight(body, "\n")
		if strings.HasPrefix(strings.TrimSpace(body), "---") {
			return body + "\n\n"
		}
		return "---\n" + body + "\n---\n\n"
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: " + quote(title) + "\n")
	if authors != "" {
		b.WriteString("author: " + quote(authors) + "\n")
	}
	if date != "" {
		b.WriteString("date: " + date + "\n")
	}
	b.WriteString("url: " + quote(doc.URL()) + "\n")
	b.WriteString("tags: " + frontMatterTags + "\n")
	if meta.Publisher.Name != "" {
		b.WriteString("publisher: " + quote(meta.Publisher.Name) + "\n")
	}
	b.WriteString("---\n\n")
	return b.String()
}

// quote wraps s in double quotes, escaping embedded ones.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
