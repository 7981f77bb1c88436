package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/reflex-docs/mcp-server/internal/docs"
)

// InsertComponent writes a component record, replacing any previous
// entry with the same name.
func (s *Store) InsertComponent(ctx context.Context, component docs.Component) error {
	if component.Name == "" {
		return docs.Errorf(docs.EINVALID, "component name required")
	}
	var docSlug any
	if component.DocSlug != "" {
		docSlug = component.DocSlug
	}
	_, err := s.exec(ctx, `
		INSERT OR REPLACE INTO components (name, category, description, doc_slug, url)
		VALUES (?, ?, ?, ?, ?)
	`, component.Name, component.Category, component.Description, docSlug, component.URL)
	return err
}

// ListComponents returns components ordered by name, optionally
// filtered to an exact category match.
func (s *Store) ListComponents(ctx context.Context, category string) ([]docs.Component, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if category != "" {
		rows, err = s.query(ctx, `
			SELECT name, category, description, doc_slug, url
			FROM components
			WHERE category = ?
			ORDER BY name
		`, category)
	} else {
		rows, err = s.query(ctx, `
			SELECT name, category, description, doc_slug, url
			FROM components
			ORDER BY name
		`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var components []docs.Component
	for rows.Next() {
		component, err := scanComponent(rows)
		if err != nil {
			return nil, err
		}
		components = append(components, component)
	}
	return components, rows.Err()
}

// GetComponent retrieves a component by name. Lookups accept both the
// bare name and the rx.-prefixed form.
func (s *Store) GetComponent(ctx context.Context, name string) (docs.Component, error) {
	component, err := s.getComponent(ctx, docs.NormalizeComponentName(name))
	if err == nil {
		return component, nil
	}
	if docs.ErrorCode(err) != docs.ENOTFOUND {
		return docs.Component{}, err
	}

	// Some catalog entries are stored without the prefix.
	bare := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "rx.")
	component, err = s.getComponent(ctx, bare)
	if err != nil && docs.ErrorCode(err) == docs.ENOTFOUND {
		return docs.Component{}, docs.Errorf(docs.ENOTFOUND, "component not found: %s", name)
	}
	return component, err
}

func (s *Store) getComponent(ctx context.Context, name string) (docs.Component, error) {
	row := s.queryRow(ctx, `
		SELECT name, category, description, doc_slug, url
		FROM components
		WHERE name = ?
	`, name)
	component, err := scanComponent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return docs.Component{}, docs.Errorf(docs.ENOTFOUND, "component not found: %s", name)
	}
	return component, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComponent(row scanner) (docs.Component, error) {
	var component docs.Component
	var docSlug sql.NullString
	err := row.Scan(&component.Name, &component.Category, &component.Description,
		&docSlug, &component.URL)
	if err != nil {
		return docs.Component{}, err
	}
	component.DocSlug = docSlug.String
	return component, nil
}
