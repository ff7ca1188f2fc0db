// Package storage wires concrete keyValueDb backends behind a single
// open call selected by configuration.
package storage

import (
	"fmt"

	"github.com/bondledger/bondmarketd/internal/storage/keyValueDb"
	"github.com/bondledger/bondmarketd/internal/storage/keyValueDb/leveldb"
	"github.com/bondledger/bondmarketd/internal/storage/keyValueDb/pebble"
)

// Backend names accepted in configuration.
const (
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

// Open opens the configured key-value backend. The memory backend
// ignores path and loses everything on close.
func Open(backend, path string) (keyValueDb.DB, error) {
	switch backend {
	case BackendPebble:
		return pebble.Open(path)
	case BackendLevelDB:
		return leveldb.Open(path)
	case BackendMemory:
		return leveldb.OpenInMemory()
	default:
		return nil, fmt.Errorf("%w: %q", keyValueDb.ErrUnknownBackend, backend)
	}
}
