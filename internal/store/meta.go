package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/reflex-docs/mcp-server/internal/docs"
)

const lastIndexedKey = "last_indexed"

// SetMeta stores a key/value pair in the meta table.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.exec(ctx, `
		INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)
	`, key, value)
	return err
}

// GetMeta returns the value for key, or an empty string if unset.
func (s *Store) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.queryRow(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetLastIndexed stamps the completion time of an indexing run.
func (s *Store) SetLastIndexed(ctx context.Context, t time.Time) error {
	return s.SetMeta(ctx, lastIndexedKey, t.UTC().Format(time.RFC3339))
}

// Stats returns aggregate corpus counts and the last index time.
func (s *Store) Stats(ctx context.Context) (docs.Stats, error) {
	var stats docs.Stats

	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM pages`).Scan(&stats.Pages); err != nil {
		return docs.Stats{}, err
	}
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM sections`).Scan(&stats.Sections); err != nil {
		return docs.Stats{}, err
	}
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM components`).Scan(&stats.Components); err != nil {
		return docs.Stats{}, err
	}

	raw, err := s.GetMeta(ctx, lastIndexedKey)
	if err != nil {
		return docs.Stats{}, err
	}
	if raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			stats.LastIndexed = t
		}
	}

	return stats, nil
}
