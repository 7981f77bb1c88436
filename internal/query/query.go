// Package query is the read-only access layer over the document store
// and the search index. Both request surfaces (MCP stdio and HTTP)
// call only this package; nothing here mutates state.
package query

import (
	"context"

	"github.com/reflex-docs/mcp-server/internal/docs"
	"github.com/reflex-docs/mcp-server/internal/search"
	"github.com/reflex-docs/mcp-server/internal/store"
)

// Result limits. Out-of-range limits are clamped, not rejected, so both
// surfaces behave identically.
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Service exposes the read operations of the corpus.
type Service struct {
	store *store.Store
	index search.Index
}

// NewService builds a Service over an opened store and index.
func NewService(st *store.Store, index search.Index) *Service {
	return &Service{store: st, index: index}
}

// ClampLimit normalizes a requested result limit into [1, MaxLimit].
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Search runs a ranked full-text search over section text. Empty and
// whitespace-only queries yield an empty result set.
func (s *Service) Search(ctx context.Context, queryText string, limit int) ([]docs.SearchResult, error) {
	return search.Query(s.index, queryText, ClampLimit(limit))
}

// GetDoc returns the full page for slug, or ENOTFOUND.
func (s *Service) GetDoc(ctx context.Context, slug string) (*docs.Page, error) {
	if slug == "" {
		return nil, docs.Errorf(docs.EINVALID, "slug required")
	}
	return s.store.GetPage(ctx, slug)
}

// ListComponents returns component summaries ordered by name, filtered
// to an exact category match when category is non-empty.
func (s *Service) ListComponents(ctx context.Context, category string) ([]docs.Component, error) {
	return s.store.ListComponents(ctx, category)
}

// GetComponent returns the catalog record for name, or ENOTFOUND.
// Names are accepted with or without the rx. prefix.
func (s *Service) GetComponent(ctx context.Context, name string) (docs.Component, error) {
	if name == "" {
		return docs.Component{}, docs.Errorf(docs.EINVALID, "component name required")
	}
	return s.store.GetComponent(ctx, name)
}

// Stats returns aggregate corpus counts.
func (s *Service) Stats(ctx context.Context) (docs.Stats, error) {
	return s.store.Stats(ctx)
}
