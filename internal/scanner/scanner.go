// Package scanner discovers indexable files under a corpus root.
package scanner

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Scan walks root recursively and returns the files matching opts,
// plus a count of entries skipped by filters or read errors. The
// walk never aborts on a per-file error.
func Scan(root string, opts Options) ([]FileEntry, int, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to resolve root path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, 0, fmt.Errorf("root path is not a directory: %s", absRoot)
	}

	pattern := opts.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}

	var entries []FileEntry
	skipped := 0

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			slog.Debug("skipping unreadable entry", "path", path, "error", err)
			skipped++
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path == absRoot {
			return nil
		}

		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			skipped++
			return nil
		}

		if d.IsDir() {
			if opts.ExcludeHidden && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if opts.MaxDepth > 0 && depthOf(rel) > opts.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if opts.ExcludeHidden && strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if opts.MaxDepth > 0 && depthOf(rel) > opts.MaxDepth {
			return nil
		}

		matched, matchErr := filepath.Match(pattern, d.Name())
		if matchErr != nil {
			return fmt.Errorf("invalid pattern %q: %w", pattern, matchErr)
		}
		if !matched {
			return nil
		}

		fi, statErr := d.Info()
		if statErr != nil {
			slog.Debug("skipping unreadable file", "path", path, "error", statErr)
			skipped++
			return nil
		}

		if opts.MaxFileSize > 0 && fi.Size() > opts.MaxFileSize {
			slog.Debug("skipping oversized file", "path", path, "size", fi.Size())
			skipped++
			return nil
		}

		entries = append(entries, FileEntry{
			Path:    path,
			RelPath: rel,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		return nil
	})
	if walkErr != nil {
		return nil, skipped, fmt.Errorf("scan failed: %w", walkErr)
	}

	return entries, skipped, nil
}

// depthOf counts how many directories separate a relative path from
// the root. A file directly under the root has depth 0.
func depthOf(rel string) int {
	return strings.Count(rel, string(filepath.Separator))
}
