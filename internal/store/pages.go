package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/reflex-docs/mcp-server/internal/docs"
)

// InsertPage writes a page and its sections in one transaction. The
// content hash is computed here so rebuild idempotence can be verified
// against the stored rows.
func (s *Store) InsertPage(ctx context.Context, page *docs.Page) error {
	if page.Slug == "" {
		return docs.Errorf(docs.EINVALID, "page slug required")
	}
	if len(page.Sections) == 0 {
		return docs.Errorf(docs.EINVALID, "page %s has no sections", page.Slug)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	page.ContentHash = hashContent(page.Markdown)

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO pages (slug, title, markdown, content_hash, url)
		VALUES (?, ?, ?, ?, ?)
	`, page.Slug, page.Title, page.Markdown, page.ContentHash, page.URL)
	if err != nil {
		return err
	}

	// Replace wholesale: a page's sections never survive a re-insert.
	if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE slug = ?`, page.Slug); err != nil {
		return err
	}

	for _, section := range page.Sections {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sections (slug, heading, level, content, position)
			VALUES (?, ?, ?, ?, ?)
		`, page.Slug, section.Heading, section.Level, section.Content, section.Position)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetPage retrieves a page with its sections ordered by position.
// Returns ENOTFOUND if the slug is absent.
func (s *Store) GetPage(ctx context.Context, slug string) (*docs.Page, error) {
	var page docs.Page
	err := s.queryRow(ctx, `
		SELECT slug, title, markdown, content_hash, url
		FROM pages
		WHERE slug = ?
	`, slug).Scan(&page.Slug, &page.Title, &page.Markdown, &page.ContentHash, &page.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docs.Errorf(docs.ENOTFOUND, "document not found: %s", slug)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, `
		SELECT slug, heading, level, content, position
		FROM sections
		WHERE slug = ?
		ORDER BY position
	`, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var section docs.Section
		if err := rows.Scan(&section.Slug, &section.Heading, &section.Level,
			&section.Content, &section.Position); err != nil {
			return nil, err
		}
		page.Sections = append(page.Sections, section)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &page, nil
}

// ListSections streams every section in the corpus, used when the
// search index has to be rebuilt from the stored rows.
func (s *Store) ListSections(ctx context.Context) ([]docs.Section, error) {
	rows, err := s.query(ctx, `
		SELECT s.slug, s.heading, s.level, s.content, s.position
		FROM sections s
		ORDER BY s.slug, s.position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []docs.Section
	for rows.Next() {
		var section docs.Section
		if err := rows.Scan(&section.Slug, &section.Heading, &section.Level,
			&section.Content, &section.Position); err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	return sections, rows.Err()
}

// PageTitles returns slug -> title for every page, used by the search
// path to resolve hit titles without loading full pages.
func (s *Store) PageTitles(ctx context.Context) (map[string]string, error) {
	rows, err := s.query(ctx, `SELECT slug, title FROM pages`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	titles := make(map[string]string)
	for rows.Next() {
		var slug, title string
		if err := rows.Scan(&slug, &title); err != nil {
			return nil, err
		}
		titles[slug] = title
	}
	return titles, rows.Err()
}
