package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflex-docs/mcp-server/internal/api"
	"github.com/reflex-docs/mcp-server/internal/docs"
	"github.com/reflex-docs/mcp-server/internal/query"
	"github.com/reflex-docs/mcp-server/internal/search"
	"github.com/reflex-docs/mcp-server/internal/store"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	page := &docs.Page{
		Slug:     "library/forms/button",
		Title:    "Button",
		Markdown: "# Button\n\nUse on_click to respond to clicks.",
		URL:      docs.PageURL("library/forms/button"),
		Sections: []docs.Section{
			{Slug: "library/forms/button", Heading: "Button", Level: 1, Content: "Use on_click to respond to clicks.", Position: 0},
		},
	}
	require.NoError(t, st.InsertPage(ctx, page))
	require.NoError(t, st.InsertComponent(ctx, docs.Component{
		Name: "rx.button", Category: "forms", Description: "A clickable button.", DocSlug: page.Slug,
	}))

	index, err := search.BuildMemory(page.Sections, map[string]string{page.Slug: page.Title})
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return api.NewServer(query.NewService(st, index), logger).Handler()
}

func doRequest(t *testing.T, handler http.Handler, path string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	resp := rec.Result()
	t.Cleanup(func() { resp.Body.Close() })

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestHealth(t *testing.T) {
	handler := newTestHandler(t)

	resp, body := doRequest(t, handler, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["database_ready"])
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestSearchEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	t.Run("returns ranked results", func(t *testing.T) {
		resp, body := doRequest(t, handler, "/search?query=on_click")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "on_click", body["query"])
		assert.Equal(t, float64(1), body["count"])

		results := body["results"].([]any)
		first := results[0].(map[string]any)
		assert.Equal(t, "library/forms/button", first["slug"])
	})

	t.Run("missing query param is a bad request", func(t *testing.T) {
		resp, body := doRequest(t, handler, "/search")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.NotEmpty(t, body["error"])
	})

	t.Run("empty query is an empty result set", func(t *testing.T) {
		resp, body := doRequest(t, handler, "/search?query=")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, float64(0), body["count"])
	})

	t.Run("non-numeric limit is a bad request", func(t *testing.T) {
		resp, _ := doRequest(t, handler, "/search?query=button&limit=abc")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("out of range limit is clamped", func(t *testing.T) {
		resp, _ := doRequest(t, handler, "/search?query=button&limit=9999")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestDocEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	t.Run("returns full page for nested slug", func(t *testing.T) {
		resp, body := doRequest(t, handler, "/doc/library/forms/button")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Button", body["title"])
		sections := body["sections"].([]any)
		assert.Len(t, sections, 1)
	})

	t.Run("absent slug is an explicit 404", func(t *testing.T) {
		resp, body := doRequest(t, handler, "/doc/nonexistent-slug")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, body["error"], "not found")
	})
}

func TestComponentEndpoints(t *testing.T) {
	handler := newTestHandler(t)

	t.Run("lists components", func(t *testing.T) {
		resp, body := doRequest(t, handler, "/components")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, float64(1), body["count"])
	})

	t.Run("category filter is exact", func(t *testing.T) {
		_, body := doRequest(t, handler, "/components?category=forms")
		assert.Equal(t, float64(1), body["count"])

		_, body = doRequest(t, handler, "/components?category=form")
		assert.Equal(t, float64(0), body["count"])
	})

	t.Run("gets component by bare name", func(t *testing.T) {
		resp, body := doRequest(t, handler, "/component/button")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "rx.button", body["name"])
	})

	t.Run("unknown component is a 404", func(t *testing.T) {
		resp, _ := doRequest(t, handler, "/component/rx.missing")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestStatsEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	resp, body := doRequest(t, handler, "/stats")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["pages"])
	assert.Equal(t, float64(1), body["sections"])
	assert.Equal(t, float64(1), body["components"])
}
