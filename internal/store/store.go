package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for the semantic-model index:
// files, symbols, declaration and type nodes, and metadata.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
  id              INTEGER PRIMARY KEY,
  path            TEXT NOT NULL UNIQUE,
  language        TEXT NOT NULL,
  hash            TEXT,
  doc             TEXT NOT NULL DEFAULT '',
  is_script       BOOLEAN NOT NULL DEFAULT FALSE,
  size            INTEGER NOT NULL DEFAULT 0,
  last_indexed    TIMESTAMP
);

-- kind: module | exports | declaration | member | alias
CREATE TABLE IF NOT EXISTS symbols (
  id               INTEGER PRIMARY KEY,
  file_id          INTEGER NOT NULL REFERENCES files(id),
  name             TEXT NOT NULL,
  kind             TEXT NOT NULL,
  exported         BOOLEAN NOT NULL DEFAULT FALSE,
  ordinal          INTEGER NOT NULL DEFAULT 0,
  parent_symbol_id INTEGER REFERENCES symbols(id),
  target_symbol_id INTEGER REFERENCES symbols(id)
);

-- role: decl | type | return | param | typeparam | heritage | child
CREATE TABLE IF NOT EXISTS nodes (
  id              INTEGER PRIMARY KEY,
  file_id         INTEGER NOT NULL REFERENCES files(id),
  symbol_id       INTEGER REFERENCES symbols(id),
  parent_node_id  INTEGER REFERENCES nodes(id),
  role            TEXT NOT NULL,
  ordinal         INTEGER NOT NULL DEFAULT 0,
  kind            TEXT NOT NULL,
  name            TEXT NOT NULL DEFAULT '',
  text            TEXT NOT NULL DEFAULT '',
  doc             TEXT NOT NULL DEFAULT '',
  modifiers       TEXT,
  has_body        BOOLEAN NOT NULL DEFAULT FALSE,
  inferred        TEXT NOT NULL DEFAULT '',
  line            INTEGER,
  col             INTEGER
);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_files_language ON files(language);
CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file_id);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_symbols_parent ON symbols(parent_symbol_id);
CREATE INDEX IF NOT EXISTS idx_nodes_file ON nodes(file_id);
CREATE INDEX IF NOT EXISTS idx_nodes_symbol ON nodes(symbol_id);
CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_node_id);
`

// DeleteFileData transactionally removes the symbols and nodes of a file.
// The file row itself is kept. Nodes go first since they reference symbols,
// and alias/parent links are cleared before symbols are dropped.
func (s *Store) DeleteFileData(fileID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM nodes WHERE file_id = ?",
		"UPDATE symbols SET parent_symbol_id = NULL, target_symbol_id = NULL WHERE file_id = ?",
		"UPDATE symbols SET target_symbol_id = NULL WHERE target_symbol_id IN (SELECT id FROM symbols WHERE file_id = ?)",
		"DELETE FROM symbols WHERE file_id = ?",
	} {
		if _, err := tx.Exec(q, fileID); err != nil {
			return fmt.Errorf("delete file data: %w", err)
		}
	}
	return tx.Commit()
}

// DeleteFile removes a file and all of its data.
func (s *Store) DeleteFile(fileID int64) error {
	if err := s.DeleteFileData(fileID); err != nil {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM files WHERE id = ?", fileID); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// DeleteFiles removes several files and all of their data in one
// transaction.
func (s *Store) DeleteFiles(fileIDs []int64) error {
	if len(fileIDs) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	in := "(" + placeholderList(len(fileIDs)) + ")"
	args := int64sToArgs(fileIDs)
	for _, q := range []string{
		"DELETE FROM nodes WHERE file_id IN " + in,
		"UPDATE symbols SET parent_symbol_id = NULL, target_symbol_id = NULL WHERE file_id IN " + in,
		"UPDATE symbols SET target_symbol_id = NULL WHERE target_symbol_id IN (SELECT id FROM symbols WHERE file_id IN " + in + ")",
		"DELETE FROM symbols WHERE file_id IN " + in,
		"DELETE FROM files WHERE id IN " + in,
	} {
		if _, err := tx.Exec(q, args...); err != nil {
			return fmt.Errorf("delete files: %w", err)
		}
	}
	return tx.Commit()
}

// SetMetadata upserts a metadata value.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata %q: %w", key, err)
	}
	return nil
}

// Metadata returns a metadata value, or "" if unset.
func (s *Store) Metadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("metadata %q: %w", key, err)
	}
	return value, nil
}

// Stats summarizes the index.
type Stats struct {
	Files   int
	Symbols int
	Nodes   int
	Bytes   int64
}

// Stats counts indexed rows.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	err := s.db.QueryRow(`SELECT
		(SELECT COUNT(*) FROM files),
		(SELECT COUNT(*) FROM symbols),
		(SELECT COUNT(*) FROM nodes),
		(SELECT COALESCE(SUM(size), 0) FROM files)`).Scan(&st.Files, &st.Symbols, &st.Nodes, &st.Bytes)
	if err != nil {
		return st, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}
