package tx

import (
	"fmt"

	"github.com/bondledger/bondmarketd/internal/core/keylet"
)

// Action represents the type of modification to a ledger entry.
type Action int

const (
	// ActionCache means the entry was read but not modified.
	ActionCache Action = iota
	// ActionInsert means a new entry was created.
	ActionInsert
	// ActionModify means an existing entry was modified.
	ActionModify
	// ActionErase means an entry was deleted.
	ActionErase
)

// TrackedEntry is a ledger entry being tracked for changes.
type TrackedEntry struct {
	Action   Action
	Original []byte // Original state (nil for inserts)
	Current  []byte // Current state (nil after erase)
}

// ApplyStateTable wraps a LedgerView and buffers all modifications.
// Nothing reaches the base view until Apply; discarding the table
// discards every change, which is what makes a failed transaction
// invisible.
type ApplyStateTable struct {
	base  LedgerView
	items map[[32]byte]*TrackedEntry
}

// NewApplyStateTable creates a new ApplyStateTable over the base view.
func NewApplyStateTable(base LedgerView) *ApplyStateTable {
	return &ApplyStateTable{
		base:  base,
		items: make(map[[32]byte]*TrackedEntry),
	}
}

// Read reads a ledger entry, tracking it as cached.
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return nil, nil
		}
		return entry.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}
	if data != nil {
		t.items[k.Key] = &TrackedEntry{
			Action:   ActionCache,
			Original: data,
			Current:  data,
		}
	}
	return data, nil
}

// Exists checks if an entry exists.
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if entry, exists := t.items[k.Key]; exists {
		return entry.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry. Inserting over an existing entry fails;
// this is the re-initialization rejection creation flows rely on.
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action != ActionErase {
			return fmt.Errorf("entry already exists")
		}
		// Re-inserting a deleted entry becomes a modify.
		entry.Action = ActionModify
		entry.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("entry already exists")
	}

	t.items[k.Key] = &TrackedEntry{
		Action:  ActionInsert,
		Current: data,
	}
	return nil
}

// Update modifies an existing entry.
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return fmt.Errorf("entry was erased")
		}
		if entry.Action == ActionCache {
			entry.Action = ActionModify
		}
		entry.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("entry does not exist")
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}
	return nil
}

// Erase deletes an entry.
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return fmt.Errorf("entry already erased")
		}
		if entry.Action == ActionInsert {
			// Never reached the base view; forget it entirely.
			delete(t.items, k.Key)
			return nil
		}
		entry.Action = ActionErase
		entry.Current = nil
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("entry does not exist")
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionErase,
		Original: original,
	}
	return nil
}

// Apply flushes all tracked changes to the base view.
func (t *ApplyStateTable) Apply() error {
	for key, entry := range t.items {
		k := keylet.Keylet{Key: key}
		switch entry.Action {
		case ActionInsert:
			if err := t.base.Insert(k, entry.Current); err != nil {
				return err
			}
		case ActionModify:
			if err := t.base.Update(k, entry.Current); err != nil {
				return err
			}
		case ActionErase:
			if err := t.base.Erase(k); err != nil {
				return err
			}
		}
	}
	return nil
}
