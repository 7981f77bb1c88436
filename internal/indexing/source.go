package indexing

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// SourceFile is one markdown file read from the documentation source.
type SourceFile struct {
	RelPath string
	Content []byte
}

// maxFileSize guards against pathological archive entries.
const maxFileSize = 4 << 20

// CollectSource reads every markdown file from source, which is either
// a local directory (a reflex-web docs checkout) or an https:// URL of
// a gzipped tarball of one. Paths are returned relative to the docs
// root so slugs come out stable regardless of where the source lives.
func CollectSource(ctx context.Context, source string) ([]SourceFile, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return collectArchive(ctx, source)
	}
	return collectDir(source)
}

func collectDir(root string) ([]SourceFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", root)
	}

	var files []SourceFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".md") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, SourceFile{RelPath: filepath.ToSlash(rel), Content: content})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func collectArchive(ctx context.Context, url string) ([]SourceFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("not a gzip archive: %w", err)
	}
	defer gz.Close()

	var files []SourceFile
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		rel, ok := docsRelPath(hdr.Name)
		if !ok {
			continue
		}
		if hdr.Size > maxFileSize {
			continue
		}

		content, err := io.ReadAll(io.LimitReader(tr, maxFileSize))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", hdr.Name, err)
		}
		files = append(files, SourceFile{RelPath: rel, Content: content})
	}
	return files, nil
}

// docsRelPath extracts the docs-relative path of a markdown archive
// entry. Repository tarballs prefix every entry with <repo>-<ref>/, so
// the docs root is located by path segment rather than position.
func docsRelPath(name string) (string, bool) {
	if !strings.HasSuffix(name, ".md") {
		return "", false
	}
	name = strings.TrimPrefix(filepath.ToSlash(name), "./")

	parts := strings.Split(name, "/")
	for i, part := range parts {
		if part == "docs" && i < len(parts)-1 {
			return strings.Join(parts[i+1:], "/"), true
		}
	}
	return "", false
}
