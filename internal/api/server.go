// Package api serves the read-only HTTP surface over the query layer.
// It mirrors the MCP tool contracts route for route.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/reflex-docs/mcp-server/internal/docs"
	"github.com/reflex-docs/mcp-server/internal/query"
)

// Server handles HTTP requests against the documentation corpus.
type Server struct {
	service *query.Service
	logger  *slog.Logger
}

// NewServer creates a Server over the query service.
func NewServer(service *query.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{service: service, logger: logger}
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /doc/{slug...}", s.handleDoc)
	mux.HandleFunc("GET /components", s.handleComponents)
	mux.HandleFunc("GET /component/{name}", s.handleComponent)
	mux.HandleFunc("GET /stats", s.handleStats)
	return s.cors(mux)
}

// cors allows browser clients from any origin; the API is public and
// read-only.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type healthResponse struct {
	Status        string      `json:"status"`
	DatabaseReady bool        `json:"database_ready"`
	Stats         *docs.Stats `json:"stats,omitempty"`
}

type searchResponse struct {
	Query   string              `json:"query"`
	Results []docs.SearchResult `json:"results"`
	Count   int                 `json:"count"`
}

type componentsResponse struct {
	Category   string           `json:"category,omitempty"`
	Components []docs.Component `json:"components"`
	Count      int              `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.logger.Error("health check failed", "err", err)
		s.writeJSON(w, http.StatusOK, healthResponse{Status: "error"})
		return
	}

	ready := stats.Sections > 0
	status := "healthy"
	if !ready {
		status = "no_data"
	}
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:        status,
		DatabaseReady: ready,
		Stats:         &stats,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	queryText := r.URL.Query().Get("query")
	if !r.URL.Query().Has("query") {
		s.writeError(w, http.StatusBadRequest, "query parameter required")
		return
	}

	limit := query.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	results, err := s.service.Search(r.Context(), queryText, limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, searchResponse{
		Query:   queryText,
		Results: results,
		Count:   len(results),
	})
}

func (s *Server) handleDoc(w http.ResponseWriter, r *http.Request) {
	page, err := s.service.GetDoc(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleComponents(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	components, err := s.service.ListComponents(r.Context(), category)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, componentsResponse{
		Category:   category,
		Components: components,
		Count:      len(components),
	})
}

func (s *Server) handleComponent(w http.ResponseWriter, r *http.Request) {
	component, err := s.service.GetComponent(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, component)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// writeServiceError maps domain error codes onto HTTP status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch docs.ErrorCode(err) {
	case docs.ENOTFOUND:
		s.writeError(w, http.StatusNotFound, docs.ErrorMessage(err))
	case docs.EINVALID:
		s.writeError(w, http.StatusBadRequest, docs.ErrorMessage(err))
	default:
		s.logger.Error("request failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, docs.ErrorMessage(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}
