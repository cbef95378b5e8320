package catalog

// initSchema creates the files table, its FTS5 projection and the
// triggers that keep the two consistent within each transaction.
func (c *Catalog) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_path TEXT NOT NULL UNIQUE,
		file_name TEXT NOT NULL,
		resource_name TEXT NOT NULL,
		directory TEXT NOT NULL,
		size INTEGER,
		modified_time INTEGER,
		indexed_time INTEGER NOT NULL,
		content_hash TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_file_path ON files(file_path);
	CREATE INDEX IF NOT EXISTS idx_file_name ON files(file_name);
	CREATE INDEX IF NOT EXISTS idx_directory ON files(directory);

	-- External-content FTS5 projection over the searchable columns.
	CREATE VIRTUAL TABLE IF NOT EXISTS files_fts USING fts5(
		file_path,
		file_name,
		resource_name,
		directory,
		content='files',
		content_rowid='id'
	);

	CREATE TRIGGER IF NOT EXISTS files_ai AFTER INSERT ON files BEGIN
		INSERT INTO files_fts(rowid, file_path, file_name, resource_name, directory)
		VALUES (new.id, new.file_path, new.file_name, new.resource_name, new.directory);
	END;

	CREATE TRIGGER IF NOT EXISTS files_ad AFTER DELETE ON files BEGIN
		INSERT INTO files_fts(files_fts, rowid, file_path, file_name, resource_name, directory)
		VALUES ('delete', old.id, old.file_path, old.file_name, old.resource_name, old.directory);
	END;

	CREATE TRIGGER IF NOT EXISTS files_au AFTER UPDATE ON files BEGIN
		INSERT INTO files_fts(files_fts, rowid, file_path, file_name, resource_name, directory)
		VALUES ('delete', old.id, old.file_path, old.file_name, old.resource_name, old.directory);
		INSERT INTO files_fts(rowid, file_path, file_name, resource_name, directory)
		VALUES (new.id, new.file_path, new.file_name, new.resource_name, new.directory);
	END;

	-- Backfill the projection for rows indexed before the FTS table
	-- existed.
	INSERT INTO files_fts(rowid, file_path, file_name, resource_name, directory)
	SELECT id, file_path, file_name, resource_name, directory
	FROM files
	WHERE NOT EXISTS (
		SELECT 1 FROM files_fts WHERE files_fts.rowid = files.id
	);
	`

	_, err := c.db.Exec(schema)
	return err
}
