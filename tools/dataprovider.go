package tools

import (
	"io/fs"
)

// DataProvider defines the interface for accessing the embedded docs
// snapshot. This abstraction allows for dependency injection and makes
// the bootstrap path testable without real embedded files.
//
// Implementations:
//   - embeddedDataProvider: Uses embed.FS for production (real embedded files)
//   - MockDataProvider: Uses in-memory map for testing
type DataProvider interface {
	// ReadFile reads the named file and returns its contents.
	// The name is relative to the package root (e.g., "data/docs/library/forms/button.md").
	ReadFile(name string) ([]byte, error)

	// ReadDir reads the named directory and returns its entries.
	// The name is relative to the package root (e.g., "data/docs/library").
	ReadDir(name string) ([]fs.DirEntry, error)
}
