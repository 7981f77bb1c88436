// Package search wraps the Bleve full-text index over documentation
// sections. Ranking and tie-break order are delegated entirely to
// Bleve's default relevance function.
package search

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"

	"github.com/reflex-docs/mcp-server/internal/docs"
)

// Index abstracts the bleve.Index operations the serving path needs,
// so tests can substitute mocks.
type Index interface {
	// Search executes a search request.
	Search(req *bleve.SearchRequest) (*bleve.SearchResult, error)

	// DocCount returns the number of documents in the index.
	DocCount() (uint64, error)

	// Close closes the index.
	Close() error
}

// SectionDocument is the shape of one indexed section.
type SectionDocument struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Heading  string `json:"heading"`
	Content  string `json:"content"`
	Position int    `json:"position"`
}

// DocumentID identifies a section inside the index.
func DocumentID(slug string, position int) string {
	return fmt.Sprintf("%s#%d", slug, position)
}

type bleveIndex struct {
	index bleve.Index
}

// Wrap adapts a bleve.Index to the Index interface.
func Wrap(index bleve.Index) Index {
	return &bleveIndex{index: index}
}

func (w *bleveIndex) Search(req *bleve.SearchRequest) (*bleve.SearchResult, error) {
	return w.index.Search(req)
}

func (w *bleveIndex) DocCount() (uint64, error) {
	return w.index.DocCount()
}

func (w *bleveIndex) Close() error {
	return w.index.Close()
}

// Open opens an existing on-disk index.
func Open(path string) (Index, error) {
	index, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}
	return Wrap(index), nil
}

// Query runs a relevance-ranked full-text search. An empty or
// whitespace-only query returns no results rather than an error.
func Query(index Index, query string, limit int) ([]docs.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return []docs.SearchResult{}, nil
	}

	match := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequest(match)
	req.Size = limit
	req.Fields = []string{"slug", "title", "heading", "content"}

	res, err := index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]docs.SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		result := docs.SearchResult{Score: hit.Score}
		if slug, ok := hit.Fields["slug"].(string); ok {
			result.Slug = slug
			result.URL = docs.PageURL(slug)
		}
		if title, ok := hit.Fields["title"].(string); ok {
			result.Title = title
		}
		if heading, ok := hit.Fields["heading"].(string); ok {
			result.Heading = heading
		}
		if content, ok := hit.Fields["content"].(string); ok {
			result.Snippet = docs.Snippet(content)
		}
		results = append(results, result)
	}
	return results, nil
}
