package store

import (
	"database/sql"
	"fmt"
)

// --- File operations ---

func (s *Store) InsertFile(f *File) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO files (path, language, hash, doc, is_script, size, last_indexed) VALUES (?, ?, ?, ?, ?, ?, ?)",
		f.Path, f.Language, f.Hash, f.Doc, f.IsScript, f.Size, f.LastIndexed,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	f.ID = id
	return id, nil
}

// UpdateFile rewrites the mutable columns of an existing file row.
func (s *Store) UpdateFile(f *File) error {
	_, err := s.db.Exec(
		"UPDATE files SET language = ?, hash = ?, doc = ?, is_script = ?, size = ?, last_indexed = ? WHERE id = ?",
		f.Language, f.Hash, f.Doc, f.IsScript, f.Size, f.LastIndexed, f.ID,
	)
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}
	return nil
}

const fileCols = "id, path, language, hash, doc, is_script, size, last_indexed"

func scanFile(scanner interface{ Scan(...any) error }) (*File, error) {
	f := &File{}
	var hash sql.NullString
	var indexed sql.NullTime
	if err := scanner.Scan(&f.ID, &f.Path, &f.Language, &hash, &f.Doc, &f.IsScript, &f.Size, &indexed); err != nil {
		return nil, err
	}
	f.Hash = hash.String
	f.LastIndexed = indexed.Time
	return f, nil
}

func (s *Store) FileByPath(path string) (*File, error) {
	f, err := scanFile(s.db.QueryRow("SELECT "+fileCols+" FROM files WHERE path = ?", path))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return f, nil
}

func (s *Store) FileByID(id int64) (*File, error) {
	f, err := scanFile(s.db.QueryRow("SELECT "+fileCols+" FROM files WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by id: %w", err)
	}
	return f, nil
}

// Files lists all indexed files ordered by path.
func (s *Store) Files() ([]*File, error) {
	rows, err := s.db.Query("SELECT " + fileCols + " FROM files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	defer rows.Close()
	var files []*File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// --- Symbol operations ---

func (s *Store) InsertSymbol(sym *Symbol) (int64, error) {
	id, err := insertSymbolTx(s.db, sym)
	if err != nil {
		return 0, fmt.Errorf("insert symbol: %w", err)
	}
	sym.ID = id
	return id, nil
}

// SymbolCols is the column list for symbol queries.
const SymbolCols = "id, file_id, name, kind, exported, ordinal, parent_symbol_id, target_symbol_id"

func scanSymbol(scanner interface{ Scan(...any) error }) (*Symbol, error) {
	sym := &Symbol{}
	err := scanner.Scan(&sym.ID, &sym.FileID, &sym.Name, &sym.Kind, &sym.Exported, &sym.Ordinal,
		&sym.ParentSymbolID, &sym.TargetSymbolID)
	if err != nil {
		return nil, err
	}
	return sym, nil
}

func (s *Store) querySymbols(query string, args ...any) ([]*Symbol, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var symbols []*Symbol
	for rows.Next() {
		sym, err := scanSymbol(rows)
		if err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

func (s *Store) SymbolByID(id int64) (*Symbol, error) {
	sym, err := scanSymbol(s.db.QueryRow("SELECT "+SymbolCols+" FROM symbols WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("symbol by id: %w", err)
	}
	return sym, nil
}

func (s *Store) SymbolsByFile(fileID int64) ([]*Symbol, error) {
	syms, err := s.querySymbols("SELECT "+SymbolCols+" FROM symbols WHERE file_id = ? ORDER BY id", fileID)
	if err != nil {
		return nil, fmt.Errorf("symbols by file: %w", err)
	}
	return syms, nil
}

// SymbolsByName returns declaration and alias symbols called name.
func (s *Store) SymbolsByName(name string) ([]*Symbol, error) {
	syms, err := s.querySymbols(
		"SELECT "+SymbolCols+" FROM symbols WHERE name = ? AND kind IN (?, ?) ORDER BY id",
		name, SymbolDeclaration, SymbolAlias,
	)
	if err != nil {
		return nil, fmt.Errorf("symbols by name: %w", err)
	}
	return syms, nil
}

// ChildSymbols returns the symbols owned by parentID in ordinal order.
func (s *Store) ChildSymbols(parentID int64) ([]*Symbol, error) {
	syms, err := s.querySymbols(
		"SELECT "+SymbolCols+" FROM symbols WHERE parent_symbol_id = ? ORDER BY ordinal, id", parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("child symbols: %w", err)
	}
	return syms, nil
}

// FileSymbol returns the module or exports symbol of a file.
func (s *Store) FileSymbol(fileID int64, kind string) (*Symbol, error) {
	sym, err := scanSymbol(s.db.QueryRow(
		"SELECT "+SymbolCols+" FROM symbols WHERE file_id = ? AND kind = ? AND parent_symbol_id IS NULL", fileID, kind,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file symbol: %w", err)
	}
	return sym, nil
}

// --- Node operations ---

func (s *Store) InsertNode(n *Node) (int64, error) {
	id, err := insertNodeTx(s.db, n)
	if err != nil {
		return 0, fmt.Errorf("insert node: %w", err)
	}
	n.ID = id
	return id, nil
}

const nodeCols = `id, file_id, symbol_id, parent_node_id, role, ordinal, kind, name, text, doc,
	modifiers, has_body, inferred, line, col`

func scanNode(scanner interface{ Scan(...any) error }) (*Node, error) {
	n := &Node{}
	var mods sql.NullString
	var line, col sql.NullInt64
	err := scanner.Scan(&n.ID, &n.FileID, &n.SymbolID, &n.ParentNodeID, &n.Role, &n.Ordinal, &n.Kind,
		&n.Name, &n.Text, &n.Doc, &mods, &n.HasBody, &n.Inferred, &line, &col)
	if err != nil {
		return nil, err
	}
	n.Modifiers = unmarshalModifiers(mods.String)
	n.Line = int(line.Int64)
	n.Col = int(col.Int64)
	return n, nil
}

func (s *Store) queryNodes(query string, args ...any) ([]*Node, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var nodes []*Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// NodesByFile returns every node of a file ordered by id, so parents
// precede their children.
func (s *Store) NodesByFile(fileID int64) ([]*Node, error) {
	nodes, err := s.queryNodes("SELECT "+nodeCols+" FROM nodes WHERE file_id = ? ORDER BY id", fileID)
	if err != nil {
		return nil, fmt.Errorf("nodes by file: %w", err)
	}
	return nodes, nil
}

// DeclarationNodes returns the declaration nodes of a symbol in source
// order.
func (s *Store) DeclarationNodes(symbolID int64) ([]*Node, error) {
	nodes, err := s.queryNodes(
		"SELECT "+nodeCols+" FROM nodes WHERE symbol_id = ? AND role = ? ORDER BY ordinal, id",
		symbolID, RoleDecl,
	)
	if err != nil {
		return nil, fmt.Errorf("declaration nodes: %w", err)
	}
	return nodes, nil
}

// --- shared insert helpers, usable on *sql.DB or *sql.Tx ---

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertSymbolTx(db execer, sym *Symbol) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO symbols (file_id, name, kind, exported, ordinal, parent_symbol_id, target_symbol_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sym.FileID, sym.Name, sym.Kind, sym.Exported, sym.Ordinal, sym.ParentSymbolID, sym.TargetSymbolID,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertNodeTx(db execer, n *Node) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO nodes (file_id, symbol_id, parent_node_id, role, ordinal, kind, name, text, doc,
			modifiers, has_body, inferred, line, col)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.FileID, n.SymbolID, n.ParentNodeID, n.Role, n.Ordinal, n.Kind, n.Name, n.Text, n.Doc,
		marshalModifiers(n.Modifiers), n.HasBody, n.Inferred, n.Line, n.Col,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
