package catalog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	wgerrors "github.com/usesalt/wikigen/internal/errors"
	"github.com/usesalt/wikigen/internal/scanner"
)

// IndexDirectory scans root and upserts every matching file. A file
// is added when unseen, updated when its content hash differs or its
// mtime advanced, and skipped otherwise. Unreadable files count as
// skipped without aborting the scan.
//
// The returned slice holds the absolute paths of added and updated
// files, in scan order, so the caller can re-chunk exactly the files
// whose content changed.
func (c *Catalog) IndexDirectory(ctx context.Context, root string, opts scanner.Options) (IndexResult, []string, error) {
	entries, filtered, err := scanner.Scan(root, opts)
	if err != nil {
		return IndexResult{}, nil, wgerrors.Wrap(wgerrors.ErrCodeIndexFailed, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return IndexResult{}, nil, fmt.Errorf("catalog is closed")
	}

	result := IndexResult{Skipped: filtered}
	indexedTime := time.Now().Unix()
	var changed []string

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return IndexResult{}, nil, wgerrors.Wrap(wgerrors.ErrCodePersistenceFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, entry := range entries {
		record := fileRecordFor(entry)
		contentHash := hashFile(entry.Path)
		mtime := entry.ModTime.Unix()

		var (
			id      int64
			oldHash sql.NullString
			oldTime sql.NullInt64
		)
		err := tx.QueryRowContext(ctx,
			`SELECT id, content_hash, modified_time FROM files WHERE file_path = ?`,
			record.FilePath).Scan(&id, &oldHash, &oldTime)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, insErr := tx.ExecContext(ctx, `
				INSERT INTO files (
					file_path, file_name, resource_name, directory,
					size, modified_time, indexed_time, content_hash
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				record.FilePath, record.FileName, record.ResourceName, record.Directory,
				entry.Size, mtime, indexedTime, contentHash)
			if insErr != nil {
				slog.Warn("catalog_insert_failed",
					slog.String("path", record.FilePath),
					slog.String("error", insErr.Error()))
				result.Skipped++
				continue
			}
			result.Added++
			changed = append(changed, record.FilePath)

		case err != nil:
			slog.Warn("catalog_lookup_failed",
				slog.String("path", record.FilePath),
				slog.String("error", err.Error()))
			result.Skipped++

		case contentHash != oldHash.String || mtime > oldTime.Int64:
			_, updErr := tx.ExecContext(ctx, `
				UPDATE files
				SET file_name = ?, resource_name = ?, directory = ?,
				    size = ?, modified_time = ?, indexed_time = ?, content_hash = ?
				WHERE id = ?`,
				record.FileName, record.ResourceName, record.Directory,
				entry.Size, mtime, indexedTime, contentHash, id)
			if updErr != nil {
				slog.Warn("catalog_update_failed",
					slog.String("path", record.FilePath),
					slog.String("error", updErr.Error()))
				result.Skipped++
				continue
			}
			result.Updated++
			changed = append(changed, record.FilePath)

		default:
			result.Skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return IndexResult{}, nil, wgerrors.Wrap(wgerrors.ErrCodePersistenceFailed, err)
	}

	return result, changed, nil
}

// fileRecordFor derives the catalog columns from a scan entry. The
// resource name is the corpus-relative path with its extension
// stripped.
func fileRecordFor(entry scanner.FileEntry) FileRecord {
	rel := entry.RelPath
	resource := strings.TrimSuffix(rel, filepath.Ext(rel))

	return FileRecord{
		FilePath:     entry.Path,
		FileName:     filepath.Base(entry.Path),
		ResourceName: filepath.ToSlash(resource),
		Directory:    filepath.Dir(entry.Path),
		Size:         entry.Size,
		ModifiedTime: entry.ModTime.Unix(),
	}
}

// hashFile returns the SHA-256 hex digest of a file's content, or an
// empty string when the file cannot be read. An empty hash keeps the
// file catalogued on metadata alone.
func hashFile(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return ""
	}
	return hex.EncodeToString(h.Sum(nil))
}
