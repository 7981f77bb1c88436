// Package indexing builds the documentation corpus: it reads markdown
// pages from a source, parses them into pages, sections and components,
// and writes a fresh SQLite store plus Bleve search index. Everything
// is staged under temporary paths and swapped into place at the end, so
// a failed run leaves the existing corpus untouched.
package indexing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/reflex-docs/mcp-server/internal/docs"
	"github.com/reflex-docs/mcp-server/internal/search"
	"github.com/reflex-docs/mcp-server/internal/store"
)

// Layout of the data directory, shared with the serving path.
const (
	DBFile   = "docs.db"
	IndexDir = "search/index"
)

// Result summarizes a completed indexing run.
type Result struct {
	Pages      int
	Sections   int
	Components int
	Skipped    int
}

// Indexer runs offline corpus builds.
type Indexer struct {
	dataDir string
	logger  *slog.Logger
}

// New creates an Indexer writing into dataDir.
func New(dataDir string, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{dataDir: dataDir, logger: logger}
}

// Run indexes the given source (a local directory or an https:// URL of
// a gzipped docs tarball). The live store and index are replaced only
// after both have been fully built.
func (ix *Indexer) Run(ctx context.Context, source string) (*Result, error) {
	files, err := CollectSource(ctx, source)
	if err != nil {
		return nil, docs.Errorf(docs.EUNAVAILABLE, "cannot read source %s: %v", source, err)
	}
	return ix.RunFiles(ctx, source, files)
}

// RunFiles indexes an already collected set of source files. source is
// only recorded in the corpus metadata.
func (ix *Indexer) RunFiles(ctx context.Context, source string, files []SourceFile) (*Result, error) {
	if len(files) == 0 {
		return nil, docs.Errorf(docs.EUNAVAILABLE, "source %s contains no markdown files", source)
	}
	ix.logger.Info("collected source files", "source", source, "files", len(files))

	pages, components, skipped := ix.parseAll(files)
	if len(pages) == 0 {
		return nil, docs.Errorf(docs.EUNAVAILABLE, "no page in %s parsed successfully", source)
	}

	result := &Result{Pages: len(pages), Components: len(components), Skipped: skipped}
	for _, page := range pages {
		result.Sections += len(page.Sections)
	}

	if err := ix.stageAndSwap(ctx, source, pages, components); err != nil {
		return nil, err
	}

	ix.logger.Info("indexing complete",
		"pages", result.Pages,
		"sections", result.Sections,
		"components", result.Components,
		"skipped", result.Skipped)
	return result, nil
}

// parseAll parses every source file, skipping files that fail to parse.
// A malformed page is never fatal for the run.
func (ix *Indexer) parseAll(files []SourceFile) ([]*docs.Page, []docs.Component, int) {
	var (
		pages      []*docs.Page
		components []docs.Component
		skipped    int
	)
	seen := make(map[string]bool)

	for _, file := range files {
		page, pageComponents, err := docs.ParsePage(file.RelPath, file.Content)
		if err != nil {
			ix.logger.Warn("skipping page", "path", file.RelPath, "err", err)
			skipped++
			continue
		}
		if seen[page.Slug] {
			ix.logger.Warn("duplicate slug, keeping first occurrence", "slug", page.Slug)
			skipped++
			continue
		}
		seen[page.Slug] = true
		pages = append(pages, page)
		components = append(components, pageComponents...)
	}
	return pages, components, skipped
}

// stageAndSwap writes the new corpus under .tmp paths and renames both
// artifacts into place.
func (ix *Indexer) stageAndSwap(ctx context.Context, source string, pages []*docs.Page, components []docs.Component) error {
	dbPath := filepath.Join(ix.dataDir, DBFile)
	indexPath := filepath.Join(ix.dataDir, IndexDir)
	tempDBPath := dbPath + ".tmp"
	tempIndexPath := indexPath + ".tmp"

	// Leftovers from a previous crashed run.
	os.Remove(tempDBPath)
	os.RemoveAll(tempIndexPath)

	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	sections, titles, err := ix.buildStore(ctx, tempDBPath, source, pages, components)
	if err != nil {
		os.Remove(tempDBPath)
		return err
	}

	ix.logger.Info("building search index", "sections", len(sections))
	if err := search.Build(tempIndexPath, sections, titles); err != nil {
		os.Remove(tempDBPath)
		os.RemoveAll(tempIndexPath)
		return err
	}

	// Swap, database first: a reader that races the swap sees either the
	// old corpus or the new one, never a mix of live and half-built.
	if err := os.Rename(tempDBPath, dbPath); err != nil {
		os.Remove(tempDBPath)
		os.RemoveAll(tempIndexPath)
		return fmt.Errorf("failed to swap database: %w", err)
	}
	if err := os.RemoveAll(indexPath); err != nil && !os.IsNotExist(err) {
		os.RemoveAll(tempIndexPath)
		return fmt.Errorf("failed to remove old index: %w", err)
	}
	if err := os.Rename(tempIndexPath, indexPath); err != nil {
		os.RemoveAll(tempIndexPath)
		return fmt.Errorf("failed to swap index: %w", err)
	}
	return nil
}

func (ix *Indexer) buildStore(ctx context.Context, dbPath, source string, pages []*docs.Page, components []docs.Component) ([]docs.Section, map[string]string, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	var sections []docs.Section
	titles := make(map[string]string, len(pages))

	for _, page := range pages {
		if err := st.InsertPage(ctx, page); err != nil {
			return nil, nil, fmt.Errorf("failed to insert page %s: %w", page.Slug, err)
		}
		titles[page.Slug] = page.Title
		sections = append(sections, page.Sections...)
	}

	for _, component := range components {
		if err := st.InsertComponent(ctx, component); err != nil {
			return nil, nil, fmt.Errorf("failed to insert component %s: %w", component.Name, err)
		}
	}

	if err := st.SetMeta(ctx, "source", source); err != nil {
		return nil, nil, err
	}
	if err := st.SetLastIndexed(ctx, time.Now()); err != nil {
		return nil, nil, err
	}
	return sections, titles, nil
}
