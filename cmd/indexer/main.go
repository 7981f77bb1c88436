package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/reflex-docs/mcp-server/internal/docs"
	"github.com/reflex-docs/mcp-server/internal/indexing"
)

func main() {
	dataDir := flag.String("data", "data", "data directory for the database and search index")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-data <dir>] <source>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Source is a local reflex-web docs directory or an https:// URL\n")
		fmt.Fprintf(os.Stderr, "of a gzipped tarball of the repository.\n\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s ../reflex-web/docs\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s https://github.com/reflex-dev/reflex-web/tarball/main\n", os.Args[0])
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	source := flag.Arg(0)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	logger.Info("reflex docs indexer starting", "source", source, "data", *dataDir)

	ix := indexing.New(*dataDir, logger)
	result, err := ix.Run(context.Background(), source)
	if err != nil {
		if docs.ErrorCode(err) == docs.EUNAVAILABLE {
			logger.Error("source unavailable, existing corpus left untouched", "err", err)
		} else {
			logger.Error("indexing failed", "err", err)
		}
		os.Exit(1)
	}

	logger.Info("done",
		"pages", result.Pages,
		"sections", result.Sections,
		"components", result.Components,
		"skipped", result.Skipped)
}
