// Package leveldb backs keyValueDb with goleveldb. It is the
// lighter-weight alternative to the Pebble backend for small
// deployments and tests.
package leveldb

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bondledger/bondmarketd/internal/storage/keyValueDb"
)

type DB struct {
	db *leveldb.DB
}

// Open opens or creates a LevelDB database at path.
func Open(path string) (*DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

// OpenInMemory opens a memory-backed database, used in tests.
func OpenInMemory() (*DB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &DB{db: db}, nil
}

func (l *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if l.db == nil {
		return nil, keyValueDb.ErrDBClosed
	}
	val, err := l.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, keyValueDb.ErrKeyNotFound
		}
		return nil, err
	}
	return val, nil
}

func (l *DB) Write(ctx context.Context, key, value []byte) error {
	if l.db == nil {
		return keyValueDb.ErrDBClosed
	}
	return l.db.Put(key, value, nil)
}

func (l *DB) Delete(ctx context.Context, key []byte) error {
	if l.db == nil {
		return keyValueDb.ErrDBClosed
	}
	return l.db.Delete(key, nil)
}

func (l *DB) Batch(ctx context.Context, ops []keyValueDb.BatchOperation) error {
	if l.db == nil {
		return keyValueDb.ErrDBClosed
	}

	batch := new(leveldb.Batch)
	for _, op := range ops {
		switch op.Type {
		case keyValueDb.BatchPut:
			batch.Put(op.Key, op.Value)
		case keyValueDb.BatchDelete:
			batch.Delete(op.Key)
		default:
			return fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
	}
	return l.db.Write(batch, nil)
}

func (l *DB) Close() error {
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

type Iterator struct {
	iter    iteratorAdapter
	current struct {
		key, value []byte
	}
}

// iteratorAdapter is the subset of goleveldb's iterator used here.
type iteratorAdapter interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Release()
}

func (l *DB) Iterator(ctx context.Context, start, end []byte) (keyValueDb.Iterator, error) {
	if l.db == nil {
		return nil, keyValueDb.ErrDBClosed
	}
	iter := l.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)
	return &Iterator{iter: iter}, nil
}

func (it *Iterator) Next() bool {
	if !it.iter.Next() {
		return false
	}
	it.current.key = append([]byte(nil), it.iter.Key()...)
	it.current.value = append([]byte(nil), it.iter.Value()...)
	return true
}

func (it *Iterator) Key() []byte {
	return it.current.key
}

func (it *Iterator) Value() []byte {
	return it.current.value
}

func (it *Iterator) Error() error {
	return it.iter.Error()
}

func (it *Iterator) Close() error {
	it.iter.Release()
	return nil
}
