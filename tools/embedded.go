package tools

import (
	"embed"
	"io/fs"
)

// Embed a snapshot of the Reflex documentation into the binary.
// This lets the MCP server answer queries standalone, before the
// offline indexer has ever been run on this machine: on first start
// the snapshot is parsed and indexed into the local data directory.
// Works cross-platform: macOS, Linux, Windows.

//go:embed data/docs
var embeddedFS embed.FS

// embeddedDataProvider implements DataProvider using embed.FS.
// This is the production implementation that uses actual embedded files.
type embeddedDataProvider struct {
	fs embed.FS
}

// NewEmbeddedDataProvider creates a production DataProvider that uses embedded files.
func NewEmbeddedDataProvider() DataProvider {
	return &embeddedDataProvider{fs: embeddedFS}
}

// ReadFile reads the named file from the embedded filesystem.
func (p *embeddedDataProvider) ReadFile(name string) ([]byte, error) {
	return p.fs.ReadFile(name)
}

// ReadDir reads the named directory from the embedded filesystem.
func (p *embeddedDataProvider) ReadDir(name string) ([]fs.DirEntry, error) {
	return p.fs.ReadDir(name)
}

// Default provider used by package-level functions (for backward compatibility)
var defaultDataProvider DataProvider = NewEmbeddedDataProvider()
