// Package docs contains the domain types for the Reflex documentation
// corpus: pages, their sections, the component catalog, and the error
// codes shared by every surface.
package docs

import "time"

// DocsBaseURL is the public documentation root used to build page URLs.
const DocsBaseURL = "https://reflex.dev/docs"

// Page is a single documentation page, identified by its slug.
// Pages are immutable once indexed and replaced wholesale on re-index.
type Page struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Markdown    string    `json:"markdown,omitempty"`
	ContentHash string    `json:"content_hash,omitempty"`
	URL         string    `json:"url"`
	Sections    []Section `json:"sections,omitempty"`
}

// Section is one heading-delimited block of a page, kept separately for
// search-ranking granularity.
type Section struct {
	Slug     string `json:"slug"`
	Heading  string `json:"heading"`
	Level    int    `json:"level"`
	Content  string `json:"content"`
	Position int    `json:"position"`
}

// Component describes a documented Reflex component (rx.button, rx.box, ...).
type Component struct {
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description"`
	DocSlug     string `json:"doc_slug,omitempty"`
	URL         string `json:"url,omitempty"`
}

// SearchResult is a single ranked hit from a full-text search.
type SearchResult struct {
	Slug    string  `json:"slug"`
	Title   string  `json:"title"`
	Heading string  `json:"heading,omitempty"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
	URL     string  `json:"url,omitempty"`
}

// Stats holds aggregate corpus counts.
type Stats struct {
	Pages       int       `json:"pages"`
	Sections    int       `json:"sections"`
	Components  int       `json:"components"`
	LastIndexed time.Time `json:"last_indexed,omitempty"`
}

// snippetRunes is the maximum snippet length, matching the search
// result payloads served by the original deployment.
const snippetRunes = 200

// Snippet truncates content to snippet length at a rune boundary.
func Snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= snippetRunes {
		return content
	}
	return string(runes[:snippetRunes]) + "..."
}

// PageURL returns the public docs URL for a slug.
func PageURL(slug string) string {
	return DocsBaseURL + "/" + slug
}
