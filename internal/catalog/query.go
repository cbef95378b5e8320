package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	wgerrors "github.com/usesalt/wikigen/internal/errors"
)

// ftsEscaper replaces characters that break FTS5 query syntax with
// spaces, splitting the surrounding token.
var ftsEscaper = strings.NewReplacer(
	`"`, " ",
	`'`, " ",
	`\`, " ",
	"(", " ",
	")", " ",
	"[", " ",
	"]", " ",
	"?", " ",
	"-", " ",
)

// buildFTSQuery sanitizes a raw query into an FTS5 MATCH expression.
// Each surviving token gets a prefix wildcard and tokens are
// OR-combined. Returns an empty string when nothing survives.
func buildFTSQuery(query string) string {
	var terms []string
	for _, word := range strings.Fields(query) {
		for _, token := range strings.Fields(ftsEscaper.Replace(word)) {
			token = strings.TrimRight(token, "*")
			if token != "" {
				terms = append(terms, token+"*")
			}
		}
	}
	return strings.Join(terms, " OR ")
}

const fileColumns = `id, file_path, file_name, resource_name, directory, size, modified_time`

// Search runs a full-text search over the catalog. A blank query
// matches all files. A non-blank query that matches nothing falls
// back to a substring scan over filename and path.
func (c *Catalog) Search(ctx context.Context, query string, limit int, directoryFilter string) ([]FileRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("catalog is closed")
	}

	ftsQuery := buildFTSQuery(query)
	if ftsQuery == "" {
		// Match-all is served from the files table directly, the FTS
		// wildcard syntax is not needed for it.
		return c.allFilesLocked(ctx, directoryFilter, limit)
	}

	results, err := c.searchFTS(ctx, ftsQuery, limit, directoryFilter)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 && strings.TrimSpace(query) != "" {
		return c.searchLike(ctx, strings.TrimSpace(query), limit, directoryFilter)
	}
	return results, nil
}

// searchFTS queries the FTS5 projection ordered by relevance rank.
func (c *Catalog) searchFTS(ctx context.Context, ftsQuery string, limit int, directoryFilter string) ([]FileRecord, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if directoryFilter != "" {
		rows, err = c.db.QueryContext(ctx, `
			SELECT f.id, f.file_path, f.file_name, f.resource_name,
			       f.directory, f.size, f.modified_time
			FROM files_fts
			JOIN files f ON files_fts.rowid = f.id
			WHERE files_fts MATCH ? AND f.directory LIKE ?
			ORDER BY files_fts.rank
			LIMIT ?`,
			ftsQuery, "%"+directoryFilter+"%", limit)
	} else {
		rows, err = c.db.QueryContext(ctx, `
			SELECT f.id, f.file_path, f.file_name, f.resource_name,
			       f.directory, f.size, f.modified_time
			FROM files_fts
			JOIN files f ON files_fts.rowid = f.id
			WHERE files_fts MATCH ?
			ORDER BY files_fts.rank
			LIMIT ?`,
			ftsQuery, limit)
	}
	if err != nil {
		// Sanitization should prevent syntax errors; treat any
		// remaining FTS5 parse failure as no matches.
		if strings.Contains(err.Error(), "fts5") || strings.Contains(err.Error(), "syntax error") {
			return nil, nil
		}
		return nil, wgerrors.Wrap(wgerrors.ErrCodeSearchFailed, err)
	}
	defer rows.Close()

	return scanFileRecords(rows)
}

// searchLike is the substring fallback for queries the FTS index
// cannot match.
func (c *Catalog) searchLike(ctx context.Context, query string, limit int, directoryFilter string) ([]FileRecord, error) {
	like := "%" + query + "%"

	var (
		rows *sql.Rows
		err  error
	)
	if directoryFilter != "" {
		rows, err = c.db.QueryContext(ctx, `
			SELECT `+fileColumns+`
			FROM files
			WHERE (file_name LIKE ? OR file_path LIKE ?) AND directory LIKE ?
			LIMIT ?`,
			like, like, "%"+directoryFilter+"%", limit)
	} else {
		rows, err = c.db.QueryContext(ctx, `
			SELECT `+fileColumns+`
			FROM files
			WHERE file_name LIKE ? OR file_path LIKE ?
			LIMIT ?`,
			like, like, limit)
	}
	if err != nil {
		return nil, wgerrors.Wrap(wgerrors.ErrCodeSearchFailed, err)
	}
	defer rows.Close()

	return scanFileRecords(rows)
}

// AllFiles returns every catalogued file, optionally narrowed by a
// directory substring filter, ordered by path.
func (c *Catalog) AllFiles(ctx context.Context, directoryFilter string) ([]FileRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("catalog is closed")
	}
	return c.allFilesLocked(ctx, directoryFilter, -1)
}

func (c *Catalog) allFilesLocked(ctx context.Context, directoryFilter string, limit int) ([]FileRecord, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if directoryFilter != "" {
		rows, err = c.db.QueryContext(ctx, `
			SELECT `+fileColumns+`
			FROM files
			WHERE directory LIKE ?
			ORDER BY file_path
			LIMIT ?`,
			"%"+directoryFilter+"%", limit)
	} else {
		rows, err = c.db.QueryContext(ctx, `
			SELECT `+fileColumns+`
			FROM files
			ORDER BY file_path
			LIMIT ?`,
			limit)
	}
	if err != nil {
		return nil, wgerrors.Wrap(wgerrors.ErrCodeSearchFailed, err)
	}
	defer rows.Close()

	return scanFileRecords(rows)
}

// GetFileByPath returns the record for an absolute path, or nil when
// the path is not catalogued.
func (c *Catalog) GetFileByPath(ctx context.Context, path string) (*FileRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("catalog is closed")
	}

	var rec FileRecord
	err := c.db.QueryRowContext(ctx, `
		SELECT `+fileColumns+`
		FROM files
		WHERE file_path = ?`, path).
		Scan(&rec.ID, &rec.FilePath, &rec.FileName, &rec.ResourceName,
			&rec.Directory, &rec.Size, &rec.ModifiedTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wgerrors.Wrap(wgerrors.ErrCodeSearchFailed, err)
	}
	return &rec, nil
}

func scanFileRecords(rows *sql.Rows) ([]FileRecord, error) {
	var results []FileRecord
	for rows.Next() {
		var rec FileRecord
		if err := rows.Scan(&rec.ID, &rec.FilePath, &rec.FileName, &rec.ResourceName,
			&rec.Directory, &rec.Size, &rec.ModifiedTime); err != nil {
			return nil, wgerrors.Wrap(wgerrors.ErrCodeSearchFailed, err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wgerrors.Wrap(wgerrors.ErrCodeSearchFailed, err)
	}
	return results, nil
}
