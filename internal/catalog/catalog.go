// Package catalog stores per-file metadata in SQLite with an FTS5
// projection over path, filename, resource name and directory.
//
// The FTS5 table is an external-content projection of the files
// table, kept consistent by triggers: every insert, update and
// delete on files is mirrored into files_fts within the same
// transaction.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	wgerrors "github.com/usesalt/wikigen/internal/errors"
)

// Catalog is the relational file store. One mutex serializes all
// reads and writes, matching the single-writer connection below.
type Catalog struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	closed bool
}

// validateIntegrity checks an existing database before opening it for
// real use. Returns nil when the file is absent or healthy.
func validateIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master
	                   WHERE type='table' AND name='files'`).Scan(&count)
	if err != nil {
		return fmt.Errorf("cannot query schema: %w", err)
	}
	return nil
}

// New opens or creates the catalog database at path. An empty path
// creates an in-memory catalog for testing. A corrupted database is
// cleared and recreated rather than refused.
func New(path string) (*Catalog, error) {
	var dsn string
	if path == "" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, wgerrors.Wrap(wgerrors.ErrCodePersistenceFailed,
				fmt.Errorf("failed to create catalog directory: %w", err))
		}

		if validErr := validateIntegrity(path); validErr != nil {
			slog.Warn("catalog_corrupted",
				slog.String("path", path),
				slog.String("error", validErr.Error()))

			if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
				return nil, wgerrors.Wrap(wgerrors.ErrCodeCorruptIndex,
					fmt.Errorf("catalog corrupted at %s and cannot remove: %w", path, removeErr))
			}
			_ = os.Remove(path + "-wal")
			_ = os.Remove(path + "-shm")

			slog.Info("catalog_cleared",
				slog.String("path", path),
				slog.String("reason", "corruption detected, please reindex"))
		}

		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, wgerrors.Wrap(wgerrors.ErrCodePersistenceFailed,
			fmt.Errorf("failed to open catalog database: %w", err))
	}

	// Single connection prevents SQLite lock contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// modernc.org/sqlite ignores some DSN params, set pragmas explicitly.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -65536",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, wgerrors.Wrap(wgerrors.ErrCodePersistenceFailed,
				fmt.Errorf("failed to set pragma: %w", err))
		}
	}

	c := &Catalog{db: db, path: path}
	if err := c.initSchema(); err != nil {
		_ = db.Close()
		return nil, wgerrors.Wrap(wgerrors.ErrCodePersistenceFailed,
			fmt.Errorf("failed to initialize catalog schema: %w", err))
	}

	return c, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.db.Close()
}

// RemoveDirectory deletes every catalogued file whose path is
// prefixed by root. The FTS projection follows via the delete
// trigger. Returns the removed count and the removed paths so the
// caller can evict vector entries.
func (c *Catalog) RemoveDirectory(ctx context.Context, root string) (int, []string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return 0, nil, wgerrors.Wrap(wgerrors.ErrCodeInvalidPath, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, nil, fmt.Errorf("catalog is closed")
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT file_path FROM files WHERE file_path LIKE ?`, absRoot+"%")
	if err != nil {
		return 0, nil, wgerrors.Wrap(wgerrors.ErrCodeSearchFailed, err)
	}
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return 0, nil, wgerrors.Wrap(wgerrors.ErrCodeSearchFailed, err)
		}
		paths = append(paths, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, nil, wgerrors.Wrap(wgerrors.ErrCodeSearchFailed, err)
	}

	res, err := c.db.ExecContext(ctx,
		`DELETE FROM files WHERE file_path LIKE ?`, absRoot+"%")
	if err != nil {
		return 0, nil, wgerrors.Wrap(wgerrors.ErrCodePersistenceFailed, err)
	}
	removed, _ := res.RowsAffected()

	return int(removed), paths, nil
}

// Clear empties the catalog. The delete trigger clears the FTS
// projection row by row.
func (c *Catalog) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("catalog is closed")
	}

	if _, err := c.db.ExecContext(ctx, `DELETE FROM files`); err != nil {
		return wgerrors.Wrap(wgerrors.ErrCodePersistenceFailed, err)
	}
	return nil
}

// Stats reports file count, total byte size and distinct directory
// count.
func (c *Catalog) Stats(ctx context.Context) (Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Stats{}, fmt.Errorf("catalog is closed")
	}

	var stats Stats
	if err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(size), 0), COUNT(DISTINCT directory) FROM files`).
		Scan(&stats.TotalFiles, &stats.TotalSize, &stats.TotalDirectories); err != nil {
		return Stats{}, wgerrors.Wrap(wgerrors.ErrCodeSearchFailed, err)
	}
	return stats, nil
}
