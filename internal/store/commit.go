package store

import (
	"fmt"
)

// CommitBatch inserts all buffered data from a BatchedStore into SQLite
// within a single transaction. Fake (negative) IDs are remapped to real
// IDs, and every reference within the batch is rewritten using the
// fakeToReal mapping.
//
// Insert order respects FK dependencies:
//  1. Symbols (parents are inserted before children by the extractor;
//     alias targets may come later and are patched afterwards)
//  2. Nodes (depend on symbol_id and parent_node_id)
func (s *Store) CommitBatch(batch *BatchedStore) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	fakeToReal := make(map[int64]int64)
	remap := func(id *int64) (*int64, error) {
		if id == nil || *id >= 0 {
			return id, nil
		}
		realID, ok := fakeToReal[*id]
		if !ok {
			return nil, fmt.Errorf("id %d not in fakeToReal map", *id)
		}
		return &realID, nil
	}

	// 1. Symbols
	type pending struct {
		realID int64
		target int64
	}
	var aliases []pending
	for _, sym := range batch.Symbols {
		if sym.ParentSymbolID, err = remap(sym.ParentSymbolID); err != nil {
			return fmt.Errorf("commit batch: symbol %q parent: %w", sym.Name, err)
		}
		target := sym.TargetSymbolID
		if target != nil && *target < 0 {
			if _, seen := fakeToReal[*target]; !seen {
				sym.TargetSymbolID = nil
			} else {
				target = nil
				sym.TargetSymbolID, _ = remap(sym.TargetSymbolID)
			}
		} else {
			target = nil
		}
		realID, err := insertSymbolTx(tx, &sym)
		if err != nil {
			return fmt.Errorf("commit batch: symbol %q: %w", sym.Name, err)
		}
		fakeToReal[sym.ID] = realID
		if target != nil {
			aliases = append(aliases, pending{realID: realID, target: *target})
		}
	}
	for _, a := range aliases {
		realTarget, ok := fakeToReal[a.target]
		if !ok {
			return fmt.Errorf("commit batch: alias target %d not in batch", a.target)
		}
		if _, err := tx.Exec("UPDATE symbols SET target_symbol_id = ? WHERE id = ?", realTarget, a.realID); err != nil {
			return fmt.Errorf("commit batch: alias target: %w", err)
		}
	}

	// 2. Nodes
	for _, n := range batch.Nodes {
		if n.SymbolID, err = remap(n.SymbolID); err != nil {
			return fmt.Errorf("commit batch: node %s symbol: %w", n.Kind, err)
		}
		if n.ParentNodeID, err = remap(n.ParentNodeID); err != nil {
			return fmt.Errorf("commit batch: node %s parent: %w", n.Kind, err)
		}
		realID, err := insertNodeTx(tx, &n)
		if err != nil {
			return fmt.Errorf("commit batch: node %s: %w", n.Kind, err)
		}
		fakeToReal[n.ID] = realID
	}

	return tx.Commit()
}
