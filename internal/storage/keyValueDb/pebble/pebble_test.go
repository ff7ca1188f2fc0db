package pebble

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bondledger/bondmarketd/internal/storage/keyValueDb"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReadWriteDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Write(ctx, []byte("k1"), []byte("v1")))

	val, err := db.Read(ctx, []byte("k1"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), val)

	require.NoError(t, db.Delete(ctx, []byte("k1")))
	_, err = db.Read(ctx, []byte("k1"))
	require.ErrorIs(t, err, keyValueDb.ErrKeyNotFound)
}

func TestBatch(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Write(ctx, []byte("gone"), []byte("x")))
	require.NoError(t, db.Batch(ctx, []keyValueDb.BatchOperation{
		{Type: keyValueDb.BatchPut, Key: []byte("a"), Value: []byte("1")},
		{Type: keyValueDb.BatchPut, Key: []byte("b"), Value: []byte("2")},
		{Type: keyValueDb.BatchDelete, Key: []byte("gone")},
	}))

	val, err := db.Read(ctx, []byte("b"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), val)
	_, err = db.Read(ctx, []byte("gone"))
	require.ErrorIs(t, err, keyValueDb.ErrKeyNotFound)
}

func TestIterator(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, db.Write(ctx, []byte(k), []byte("v"+k)))
	}

	iter, err := db.Iterator(ctx, []byte("b"), []byte("d"))
	require.NoError(t, err)
	defer iter.Close()

	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	require.NoError(t, iter.Error())
	require.Equal(t, []string{"b", "c"}, keys)
}

func TestClosedDB(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Close())

	_, err := db.Read(context.Background(), []byte("k"))
	require.ErrorIs(t, err, keyValueDb.ErrDBClosed)
	require.ErrorIs(t, db.Write(context.Background(), []byte("k"), nil), keyValueDb.ErrDBClosed)
}
