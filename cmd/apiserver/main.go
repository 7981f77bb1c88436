package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/reflex-docs/mcp-server/internal/api"
	"github.com/reflex-docs/mcp-server/internal/indexing"
	"github.com/reflex-docs/mcp-server/internal/query"
	"github.com/reflex-docs/mcp-server/internal/search"
	"github.com/reflex-docs/mcp-server/internal/store"
)

func main() {
	dataDir := flag.String("data", "data", "data directory holding the database and search index")
	addr := flag.String("addr", "", "listen address (defaults to :$PORT or :8000)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	listenAddr := *addr
	if listenAddr == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8000"
		}
		listenAddr = ":" + port
	}

	st, err := store.Open(filepath.Join(*dataDir, indexing.DBFile))
	if err != nil {
		logger.Error("failed to open store", "err", err)
		os.Exit(1)
	}
	defer st.Close()

	index, err := search.Open(filepath.Join(*dataDir, indexing.IndexDir))
	if err != nil {
		logger.Error("failed to open search index, run the indexer first", "err", err)
		os.Exit(1)
	}
	defer index.Close()

	service := query.NewService(st, index)
	server := api.NewServer(service, logger)

	httpServer := &http.Server{
		Addr:         listenAddr,
		Handler:      server.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logger.Info("api server listening", "addr", listenAddr, "data", *dataDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
