package query_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflex-docs/mcp-server/internal/docs"
	"github.com/reflex-docs/mcp-server/internal/query"
	"github.com/reflex-docs/mcp-server/internal/search"
	"github.com/reflex-docs/mcp-server/internal/store"
)

// newTestService builds a service over an in-memory corpus containing a
// Button page, a Box page and their catalog entries.
func newTestService(t *testing.T) *query.Service {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	pages := []*docs.Page{
		{
			Slug:     "library/forms/button",
			Title:    "Button",
			Markdown: "# Button\n\nUse on_click to respond to clicks.",
			URL:      docs.PageURL("library/forms/button"),
			Sections: []docs.Section{
				{Slug: "library/forms/button", Heading: "Button", Level: 1, Content: "Use on_click to respond to clicks.", Position: 0},
			},
		},
		{
			Slug:     "library/layout/box",
			Title:    "Box",
			Markdown: "# Box\n\nA generic container.",
			URL:      docs.PageURL("library/layout/box"),
			Sections: []docs.Section{
				{Slug: "library/layout/box", Heading: "Box", Level: 1, Content: "A generic container for grouping.", Position: 0},
			},
		},
	}

	var sections []docs.Section
	titles := make(map[string]string)
	for _, page := range pages {
		require.NoError(t, st.InsertPage(ctx, page))
		titles[page.Slug] = page.Title
		sections = append(sections, page.Sections...)
	}

	require.NoError(t, st.InsertComponent(ctx, docs.Component{
		Name: "rx.button", Category: "forms", Description: "A clickable button.", DocSlug: "library/forms/button",
	}))
	require.NoError(t, st.InsertComponent(ctx, docs.Component{
		Name: "rx.box", Category: "layout", Description: "A generic container.", DocSlug: "library/layout/box",
	}))

	index, err := search.BuildMemory(sections, titles)
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	return query.NewService(st, index)
}

func TestServiceSearch(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	t.Run("search result slugs resolve via GetDoc", func(t *testing.T) {
		results, err := service.Search(ctx, "on_click", 10)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "library/forms/button", results[0].Slug)

		for _, result := range results {
			page, err := service.GetDoc(ctx, result.Slug)
			require.NoError(t, err)
			assert.NotEmpty(t, page.Sections)
		}
	})

	t.Run("empty query is not an error", func(t *testing.T) {
		results, err := service.Search(ctx, "   ", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("limit is clamped not rejected", func(t *testing.T) {
		results, err := service.Search(ctx, "container", -5)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(results), query.DefaultLimit)

		results, err = service.Search(ctx, "container", 10_000)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(results), query.MaxLimit)
	})
}

func TestServiceGetDoc(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	t.Run("returns full page", func(t *testing.T) {
		page, err := service.GetDoc(ctx, "library/forms/button")
		require.NoError(t, err)
		assert.Equal(t, "Button", page.Title)
		assert.Contains(t, page.Markdown, "on_click")
	})

	t.Run("not found is explicit", func(t *testing.T) {
		_, err := service.GetDoc(ctx, "nonexistent-slug")
		require.Error(t, err)
		assert.Equal(t, docs.ENOTFOUND, docs.ErrorCode(err))
	})

	t.Run("empty slug is invalid", func(t *testing.T) {
		_, err := service.GetDoc(ctx, "")
		require.Error(t, err)
		assert.Equal(t, docs.EINVALID, docs.ErrorCode(err))
	})
}

func TestServiceComponents(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	t.Run("listed names resolve via GetComponent", func(t *testing.T) {
		components, err := service.ListComponents(ctx, "")
		require.NoError(t, err)
		require.Len(t, components, 2)

		for _, component := range components {
			got, err := service.GetComponent(ctx, component.Name)
			require.NoError(t, err)
			assert.Equal(t, component.Name, got.Name)
		}
	})

	t.Run("category filter is exact", func(t *testing.T) {
		components, err := service.ListComponents(ctx, "forms")
		require.NoError(t, err)
		require.Len(t, components, 1)
		assert.Equal(t, "rx.button", components[0].Name)
	})

	t.Run("unknown component is ENOTFOUND", func(t *testing.T) {
		_, err := service.GetComponent(ctx, "rx.nothing")
		require.Error(t, err)
		assert.Equal(t, docs.ENOTFOUND, docs.ErrorCode(err))
	})
}

func TestServiceStats(t *testing.T) {
	service := newTestService(t)

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 2, stats.Sections)
	assert.Equal(t, 2, stats.Components)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, query.DefaultLimit, query.ClampLimit(0))
	assert.Equal(t, query.DefaultLimit, query.ClampLimit(-1))
	assert.Equal(t, 5, query.ClampLimit(5))
	assert.Equal(t, query.MaxLimit, query.ClampLimit(999))
}
