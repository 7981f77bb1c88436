package tools

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/reflex-docs/mcp-server/internal/docs"
	"github.com/reflex-docs/mcp-server/internal/indexing"
	"github.com/reflex-docs/mcp-server/internal/query"
	"github.com/reflex-docs/mcp-server/internal/search"
	"github.com/reflex-docs/mcp-server/internal/store"
)

const (
	dataDirEnv    = "REFLEX_DOCS_DATA"
	lockFile      = "search/index.lock"
	lockTimeout   = 5 * time.Second // Max time to wait for lock
	lockRetryWait = 500 * time.Millisecond
)

var (
	dataDir string // Data directory holding docs.db and the search index
)

func init() {
	// Strategy 1: Explicit override via environment
	if dir := os.Getenv(dataDirEnv); dir != "" {
		dataDir = dir
		os.MkdirAll(dataDir, 0o755)
		log.Printf("✓ Data directory: %s (from %s)", dataDir, dataDirEnv)
		return
	}

	// Strategy 2: User home directory (standalone installation)
	homeDir, err := os.UserHomeDir()
	if err == nil {
		userDataDir := filepath.Join(homeDir, ".reflex-docs-mcp")
		if err := os.MkdirAll(userDataDir, 0o755); err == nil {
			dataDir = userDataDir
			log.Printf("✓ Data directory: %s (user home)", dataDir)
			return
		}
		log.Printf("Warning: Could not create user data directory at %s: %v", userDataDir, err)
	} else {
		log.Printf("Warning: Could not determine user home directory: %v", err)
	}

	// Strategy 3: Last resort fallback to current working directory
	dataDir = filepath.Join(".", "data")
	os.MkdirAll(dataDir, 0o755)
	log.Printf("⚠️  Data directory (fallback): %s", dataDir)
}

// isProcessRunning is implemented in platform-specific files:
// - docsearch_unix.go for Unix/Linux/macOS
// - docsearch_windows.go for Windows

// cleanStaleLock removes the lock file if the owning process is dead.
func cleanStaleLock() error {
	lockPath := filepath.Join(dataDir, lockFile)

	data, err := os.ReadFile(lockPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read lock file: %w", err)
	}

	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		log.Printf("Warning: Corrupted lock file (invalid PID), removing...")
		return os.Remove(lockPath)
	}

	if isProcessRunning(pid) {
		return fmt.Errorf("lock held by running process %d", pid)
	}

	log.Printf("Stale lock detected (PID %d not running), cleaning...", pid)
	return os.Remove(lockPath)
}

// acquireLock attempts to acquire the index lock with retry.
func acquireLock() error {
	lockPath := filepath.Join(dataDir, lockFile)
	ourPID := os.Getpid()

	// Re-entrant: we may already hold the lock
	if data, err := os.ReadFile(lockPath); err == nil {
		if pidStr := strings.TrimSpace(string(data)); pidStr != "" {
			if pid, err := strconv.Atoi(pidStr); err == nil && pid == ourPID {
				return nil
			}
		}
	}

	os.MkdirAll(filepath.Dir(lockPath), 0o755)
	startTime := time.Now()

	for {
		if err := cleanStaleLock(); err != nil {
			elapsed := time.Since(startTime)
			if elapsed >= lockTimeout {
				return fmt.Errorf("timeout waiting for index lock after %v: %w", elapsed, err)
			}
			log.Printf("Index locked by another process, waiting... (%v elapsed)", elapsed.Round(100*time.Millisecond))
			time.Sleep(lockRetryWait)
			continue
		}

		if err := os.WriteFile(lockPath, []byte(strconv.Itoa(ourPID)), 0o644); err != nil {
			return fmt.Errorf("failed to create lock file: %w", err)
		}
		log.Printf("✓ Index lock acquired (PID %d)", ourPID)
		return nil
	}
}

// releaseLock releases the index lock if we own it.
func releaseLock() error {
	lockPath := filepath.Join(dataDir, lockFile)

	data, err := os.ReadFile(lockPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read lock file: %w", err)
	}

	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err == nil && pid != os.Getpid() {
		log.Printf("Warning: Lock file contains different PID (%d vs %d), not removing", pid, os.Getpid())
		return nil
	}

	if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// corpus bundles the open store, index and the query service over them.
type corpus struct {
	store   *store.Store
	index   search.Index
	service *query.Service
}

func (c *corpus) close() error {
	var firstErr error
	if err := c.index.Close(); err != nil {
		firstErr = err
	}
	if err := c.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// corpusHolder manages concurrent access to the open corpus. Tool
// handlers read through the atomic pointer; the WaitGroup tracks
// in-flight queries so shutdown can close the store cleanly.
type corpusHolder struct {
	current atomic.Pointer[corpus]
	initMu  sync.Mutex
	wg      sync.WaitGroup
}

var holder = &corpusHolder{}

// service returns the live query service, initializing on first use.
func (h *corpusHolder) service() (*query.Service, error) {
	if c := h.current.Load(); c != nil {
		return c.service, nil
	}
	if err := InitializeDocSearch(); err != nil {
		return nil, fmt.Errorf("failed to initialize documentation search: %w", err)
	}
	c := h.current.Load()
	if c == nil {
		return nil, fmt.Errorf("corpus still unavailable after initialization")
	}
	return c.service, nil
}

// InitializeDocSearch opens the on-disk corpus. If none exists yet, it
// bootstraps one from the embedded seed snapshot of the docs so the
// server is usable before the offline indexer has ever run.
func InitializeDocSearch() error {
	holder.initMu.Lock()
	defer holder.initMu.Unlock()

	if holder.current.Load() != nil {
		return nil
	}

	startTime := time.Now()
	log.Printf("Initializing documentation search...")

	if err := acquireLock(); err != nil {
		return fmt.Errorf("failed to acquire index lock: %w", err)
	}

	dbPath := filepath.Join(dataDir, indexing.DBFile)
	indexPath := filepath.Join(dataDir, indexing.IndexDir)

	if !corpusExists(dbPath, indexPath) {
		log.Printf("No local corpus found, indexing embedded documentation snapshot...")
		if err := bootstrapFromEmbedded(); err != nil {
			return fmt.Errorf("failed to build corpus from embedded docs: %w", err)
		}
	}

	c, err := openCorpus(dbPath, indexPath)
	if err != nil {
		// A corrupted index is rebuilt from the embedded snapshot once.
		log.Printf("Warning: Local corpus unusable (%v), rebuilding from embedded snapshot...", err)
		os.Remove(dbPath)
		os.RemoveAll(indexPath)
		if err := bootstrapFromEmbedded(); err != nil {
			return fmt.Errorf("failed to rebuild corpus: %w", err)
		}
		c, err = openCorpus(dbPath, indexPath)
		if err != nil {
			return err
		}
	}

	holder.current.Store(c)

	count, _ := c.index.DocCount()
	log.Printf("✓ Documentation search initialized (%d sections) in %v",
		count, time.Since(startTime).Round(time.Millisecond))
	return nil
}

func corpusExists(dbPath, indexPath string) bool {
	if _, err := os.Stat(dbPath); err != nil {
		return false
	}
	if _, err := os.Stat(indexPath); err != nil {
		return false
	}
	return true
}

func openCorpus(dbPath, indexPath string) (*corpus, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	index, err := search.Open(indexPath)
	if err != nil {
		st.Close()
		return nil, err
	}
	return &corpus{store: st, index: index, service: query.NewService(st, index)}, nil
}

// bootstrapFromEmbedded runs the indexing pipeline over the markdown
// snapshot compiled into the binary.
func bootstrapFromEmbedded() error {
	files, err := embeddedSourceFiles("data/docs")
	if err != nil {
		return err
	}
	ix := indexing.New(dataDir, nil)
	result, err := ix.RunFiles(context.Background(), "embedded", files)
	if err != nil {
		return err
	}
	log.Printf("✓ Embedded snapshot indexed (%d pages, %d sections, %d components)",
		result.Pages, result.Sections, result.Components)
	return nil
}

// embeddedSourceFiles walks the embedded docs tree through the
// DataProvider so tests can substitute an in-memory corpus.
func embeddedSourceFiles(root string) ([]indexing.SourceFile, error) {
	entries, err := defaultDataProvider.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded directory %s: %w", root, err)
	}

	var files []indexing.SourceFile
	for _, entry := range entries {
		full := root + "/" + entry.Name()
		if entry.IsDir() {
			sub, err := embeddedSourceFiles(full)
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
			continue
		}
		if !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		content, err := defaultDataProvider.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded file %s: %w", full, err)
		}
		files = append(files, indexing.SourceFile{
			RelPath: strings.TrimPrefix(full, "data/docs/"),
			Content: content,
		})
	}
	return files, nil
}

// CloseDocSearch closes the corpus and releases the inter-process lock.
func CloseDocSearch() error {
	var closeErr error

	if c := holder.current.Swap(nil); c != nil {
		log.Printf("Waiting for in-flight queries to complete before closing...")
		holder.wg.Wait()
		if closeErr = c.close(); closeErr != nil {
			log.Printf("Error closing corpus: %v", closeErr)
		} else {
			log.Printf("✓ Corpus closed successfully")
		}
	}

	if err := releaseLock(); err != nil {
		log.Printf("Error releasing lock: %v", err)
		if closeErr == nil {
			closeErr = err
		}
	}
	return closeErr
}

// SearchDocsInput defines input for the search_docs tool.
type SearchDocsInput struct {
	Query string `json:"query" jsonschema:"the documentation search query to execute"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10, max 50"`
}

// SearchDocsOutput defines output for the search_docs tool.
type SearchDocsOutput struct {
	Query   string              `json:"query"`
	Results []docs.SearchResult `json:"results"`
	Count   int                 `json:"count"`
}

// GetDocInput defines input for the get_doc tool.
type GetDocInput struct {
	Slug string `json:"slug" jsonschema:"documentation page slug, e.g. library/forms/button"`
}

// ListComponentsInput defines input for the list_components tool.
type ListComponentsInput struct {
	Category string `json:"category,omitempty" jsonschema:"filter by category, e.g. layout or forms"`
}

// ListComponentsOutput defines output for the list_components tool.
type ListComponentsOutput struct {
	Category   string           `json:"category,omitempty"`
	Components []docs.Component `json:"components"`
	Count      int              `json:"count"`
}

// GetComponentInput defines input for the get_component tool.
type GetComponentInput struct {
	Name string `json:"name" jsonschema:"component name, with or without the rx. prefix"`
}

// SearchDocs searches the Reflex documentation.
func SearchDocs(ctx context.Context, req *mcp.CallToolRequest, input SearchDocsInput) (*mcp.CallToolResult, SearchDocsOutput, error) {
	holder.wg.Add(1)
	defer holder.wg.Done()

	service, err := holder.service()
	if err != nil {
		return nil, SearchDocsOutput{}, err
	}

	results, err := service.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, SearchDocsOutput{}, err
	}
	return nil, SearchDocsOutput{
		Query:   input.Query,
		Results: results,
		Count:   len(results),
	}, nil
}

// GetDoc fetches a full documentation page by slug.
func GetDoc(ctx context.Context, req *mcp.CallToolRequest, input GetDocInput) (*mcp.CallToolResult, docs.Page, error) {
	holder.wg.Add(1)
	defer holder.wg.Done()

	service, err := holder.service()
	if err != nil {
		return nil, docs.Page{}, err
	}

	page, err := service.GetDoc(ctx, input.Slug)
	if err != nil {
		return nil, docs.Page{}, err
	}
	return nil, *page, nil
}

// ListComponents lists documented components, optionally by category.
func ListComponents(ctx context.Context, req *mcp.CallToolRequest, input ListComponentsInput) (*mcp.CallToolResult, ListComponentsOutput, error) {
	holder.wg.Add(1)
	defer holder.wg.Done()

	service, err := holder.service()
	if err != nil {
		return nil, ListComponentsOutput{}, err
	}

	components, err := service.ListComponents(ctx, input.Category)
	if err != nil {
		return nil, ListComponentsOutput{}, err
	}
	return nil, ListComponentsOutput{
		Category:   input.Category,
		Components: components,
		Count:      len(components),
	}, nil
}

// GetComponent fetches a single component record by name.
func GetComponent(ctx context.Context, req *mcp.CallToolRequest, input GetComponentInput) (*mcp.CallToolResult, docs.Component, error) {
	holder.wg.Add(1)
	defer holder.wg.Done()

	service, err := holder.service()
	if err != nil {
		return nil, docs.Component{}, err
	}

	component, err := service.GetComponent(ctx, input.Name)
	if err != nil {
		return nil, docs.Component{}, err
	}
	return nil, component, nil
}

// RegisterDocSearchTools registers the documentation tools.
func RegisterDocSearchTools(server *mcp.Server) error {
	// Initialize doc search synchronously so the first query is fast
	if err := InitializeDocSearch(); err != nil {
		log.Printf("Warning: Documentation search initialization failed: %v", err)
		log.Printf("Documentation search will attempt to initialize on first use")
	}

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "search_docs",
			Description: "Search the Reflex documentation using full-text search. Returns ranked matching sections with snippets.",
		},
		SearchDocs,
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_doc",
			Description: "Get a full Reflex documentation page by slug, e.g. library/forms/button.",
		},
		GetDoc,
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_components",
			Description: "List documented Reflex components, optionally filtered by category (e.g. layout, forms).",
		},
		ListComponents,
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_component",
			Description: "Get details about a specific Reflex component, e.g. rx.button or button.",
		},
		GetComponent,
	)

	return nil
}
