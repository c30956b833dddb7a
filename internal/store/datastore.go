package store

// DataStore is the interface for extraction-phase writes. Both Store
// (direct SQLite) and BatchedStore (in-memory buffering for parallel
// extraction) implement it.
type DataStore interface {
	// Inserts return the assigned ID and set it on the argument.
	InsertSymbol(sym *Symbol) (int64, error)
	InsertNode(n *Node) (int64, error)
}

// Compile-time check: *Store satisfies DataStore.
var _ DataStore = (*Store)(nil)
