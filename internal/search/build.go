package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"

	"github.com/reflex-docs/mcp-server/internal/docs"
)

const batchSize = 100

// Build creates a new index at path and loads every section into it in
// batches. titles maps page slugs to page titles. The path must not
// already contain an index; callers stage into a temp directory and
// swap it into place so readers never see a half-built index.
func Build(path string, sections []docs.Section, titles map[string]string) error {
	mapping := bleve.NewIndexMapping()
	index, err := bleve.New(path, mapping)
	if err != nil {
		return fmt.Errorf("failed to create search index: %w", err)
	}

	if err := indexSections(index, sections, titles); err != nil {
		index.Close()
		return err
	}

	if err := index.Close(); err != nil {
		return fmt.Errorf("failed to close search index: %w", err)
	}
	return nil
}

// BuildMemory creates an in-memory index, used in tests.
func BuildMemory(sections []docs.Section, titles map[string]string) (Index, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory index: %w", err)
	}
	if err := indexSections(index, sections, titles); err != nil {
		index.Close()
		return nil, err
	}
	return Wrap(index), nil
}

func indexSections(index bleve.Index, sections []docs.Section, titles map[string]string) error {
	batch := index.NewBatch()
	for i, section := range sections {
		doc := SectionDocument{
			Slug:     section.Slug,
			Title:    titles[section.Slug],
			Heading:  section.Heading,
			Content:  section.Content,
			Position: section.Position,
		}
		if err := batch.Index(DocumentID(section.Slug, section.Position), doc); err != nil {
			return fmt.Errorf("failed to add section %s to batch: %w",
				DocumentID(section.Slug, section.Position), err)
		}

		if (i+1)%batchSize == 0 {
			if err := index.Batch(batch); err != nil {
				return fmt.Errorf("failed to index batch: %w", err)
			}
			batch = index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("failed to index final batch: %w", err)
		}
	}
	return nil
}
