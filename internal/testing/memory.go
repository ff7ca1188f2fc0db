// Package testing provides a test environment for exercising
// transactions against an in-memory ledger.
package testing

import (
	"fmt"

	"github.com/bondledger/bondmarketd/internal/core/keylet"
)

// MemoryView is an in-memory LedgerView backed by a map.
type MemoryView struct {
	entries map[[32]byte][]byte
}

// NewMemoryView creates an empty in-memory view.
func NewMemoryView() *MemoryView {
	return &MemoryView{entries: make(map[[32]byte][]byte)}
}

// Read returns the entry at k, or nil if absent.
func (v *MemoryView) Read(k keylet.Keylet) ([]byte, error) {
	data, ok := v.entries[k.Key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Exists reports whether an entry is present at k.
func (v *MemoryView) Exists(k keylet.Keylet) (bool, error) {
	_, ok := v.entries[k.Key]
	return ok, nil
}

// Insert adds a new entry at k.
func (v *MemoryView) Insert(k keylet.Keylet, data []byte) error {
	if _, ok := v.entries[k.Key]; ok {
		return fmt.Errorf("entry already exists")
	}
	v.entries[k.Key] = append([]byte(nil), data...)
	return nil
}

// Update replaces the entry at k.
func (v *MemoryView) Update(k keylet.Keylet, data []byte) error {
	if _, ok := v.entries[k.Key]; !ok {
		return fmt.Errorf("entry does not exist")
	}
	v.entries[k.Key] = append([]byte(nil), data...)
	return nil
}

// Erase removes the entry at k.
func (v *MemoryView) Erase(k keylet.Keylet) error {
	if _, ok := v.entries[k.Key]; !ok {
		return fmt.Errorf("entry does not exist")
	}
	delete(v.entries, k.Key)
	return nil
}

// Len returns the number of entries.
func (v *MemoryView) Len() int {
	return len(v.entries)
}

// Snapshot returns a deep copy of the current entries, for comparing
// state before and after a failed transaction.
func (v *MemoryView) Snapshot() map[[32]byte][]byte {
	snap := make(map[[32]byte][]byte, len(v.entries))
	for k, data := range v.entries {
		snap[k] = append([]byte(nil), data...)
	}
	return snap
}
