package core

// PageKind is the URL shape a page was loaded from. Each shape has its own DOM layout.
type PageKind string

const (
	PagePost    PageKind = "post"
	PageInbox   PageKind = "inbox"
	PageProfile PageKind = "profile"
	PageUnknown PageKind = "unknown"
)

// Author is a named byline entry.
type Author struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Publisher is the publication an article belongs to.
type Publisher struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ArticleMetadata describes an article. Any field may be empty.
type ArticleMetadata struct {
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	DatePublished string    `json:"date_published"` // as supplied by the page, not guaranteed parseable
	Authors       []Author  `json:"authors"`
	Publisher     Publisher `json:"publisher"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	CanonicalURL  string    `json:"canonical_url"`
}

// AuthorNames returns the non-empty author names in byline order.
func (m ArticleMetadata) AuthorNames() []string {
	names := make([]string, 0, len(m.Authors))
	for _, a := range m.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names
}

// SectionKind tags the variant held by a Section.
type SectionKind string

const (
	SectionHeading    SectionKind = "heading"
	SectionParagraph  SectionKind = "paragraph"
	SectionList       SectionKind = "list"
	SectionBlockquote SectionKind = "blockquote"
	SectionCode       SectionKind = "code"
	SectionImage      SectionKind = "image"
)

// Section is one typed block of article content.
//
// Which fields are meaningful depends on Kind:
//
//	heading     Level (2-4), Text
//	paragraph   Text (inline markdown)
//	list        Ordered, Items (inline markdown)
//	blockquote  Text (inline markdown)
//	code        Text (raw)
//	image       Src, Alt
type Section struct {
	Kind    SectionKind `json:"kind"`
	Level   int         `json:"level,omitempty"`
	Text    string      `json:"text,omitempty"`
	Ordered bool        `json:"ordered,omitempty"`
	Items   []string    `json:"items,omitempty"`
	Src     string      `json:"src,omitempty"`
	Alt     string      `json:"alt,omitempty"`
}

// Footnote is a numbered note referenced from the body as [^ID].
type Footnote struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Link is a hyperlink found in the content container.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Document is the normalized article handed from extraction to rendering.
// Section order is source order and must be preserved by every renderer.
type Document struct {
	Metadata  ArticleMetadata `json:"metadata"`
	Sections  []Section       `json:"sections"`
	Footnotes []Footnote      `json:"footnotes"`
	Links     []Link          `json:"links"`
	SourceURL string          `json:"source_url"`
	Kind      PageKind        `json:"kind"`
}

// URL returns the canonical URL, falling back to the URL the page was loaded from.
func (d *Document) URL() string {
	if d.Metadata.CanonicalURL != "" {
		return d.Metadata.CanonicalURL
	}
	return d.SourceURL
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := *d
	c.Metadata.Authors = append([]Author(nil), d.Metadata.Authors...)
	c.Sections = make([]Section, len(d.Sections))
	for i, s := range d.Sections {
		s.Items = append([]string(nil), s.Items...)
		c.Sections[i] = s
	}
	c.Footnotes = append([]Footnote(nil), d.Footnotes...)
	c.Links = append([]Link(nil), d.Links...)
	return &c
}

// Asset is a locally available copy of a remote image.
type Asset struct {
	Path     string // bundle-relative reference, e.g. assets/image-1.png
	MIMEType string
	Data     []byte
}

// AssetMap maps an original image URL to its local copy. It lives for one render.
type AssetMap map[string]Asset

// Lookup returns the asset for url, if one was fetched.
func (m AssetMap) Lookup(url string) (Asset, bool) {
	if m == nil || url == "" {
		return Asset{}, false
	}
	a, ok := m[url]
	return a, ok
}
