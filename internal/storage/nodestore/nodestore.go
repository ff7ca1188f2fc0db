package nodestore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bondledger/bondmarketd/internal/storage/keyValueDb"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("nodestore: not found")

// Stored record framing: one format byte followed by the 4-byte
// big-endian original length, then the payload.
const (
	formatRaw byte = 0
	formatLZ4 byte = 1

	headerSize = 5
)

// DefaultCacheSize is the LRU entry count used when the configured
// size is zero.
const DefaultCacheSize = 16384

// Store is a cached, compressed byte store keyed by 256-bit hashes.
type Store struct {
	db    keyValueDb.DB
	cache *lru.Cache[[32]byte, []byte]
	comp  Compressor
}

// New creates a store over db. A cacheSize of zero selects the
// default.
func New(db keyValueDb.DB, cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[[32]byte, []byte](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, cache: cache, comp: LZ4Compressor{}}, nil
}

// Store persists data under key.
func (s *Store) Store(ctx context.Context, key [32]byte, data []byte) error {
	encoded, err := s.encode(data)
	if err != nil {
		return err
	}
	if err := s.db.Write(ctx, key[:], encoded); err != nil {
		return err
	}
	s.cache.Add(key, append([]byte(nil), data...))
	return nil
}

// Fetch returns the data stored under key, or ErrNotFound.
func (s *Store) Fetch(ctx context.Context, key [32]byte) ([]byte, error) {
	if data, ok := s.cache.Get(key); ok {
		return append([]byte(nil), data...), nil
	}

	encoded, err := s.db.Read(ctx, key[:])
	if err != nil {
		if errors.Is(err, keyValueDb.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	data, err := s.decode(encoded)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, append([]byte(nil), data...))
	return data, nil
}

// Exists reports whether key has a stored value.
func (s *Store) Exists(ctx context.Context, key [32]byte) (bool, error) {
	if s.cache.Contains(key) {
		return true, nil
	}
	_, err := s.db.Read(ctx, key[:])
	if err != nil {
		if errors.Is(err, keyValueDb.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key [32]byte) error {
	s.cache.Remove(key)
	return s.db.Delete(ctx, key[:])
}

// CacheLen returns the number of cached entries.
func (s *Store) CacheLen() int {
	return s.cache.Len()
}

func (s *Store) encode(data []byte) ([]byte, error) {
	out := make([]byte, headerSize, headerSize+len(data))
	binary.BigEndian.PutUint32(out[1:], uint32(len(data)))

	compressed, err := s.comp.Compress(data)
	if err != nil {
		return nil, err
	}
	if compressed == nil || len(compressed) >= len(data) {
		out[0] = formatRaw
		return append(out, data...), nil
	}
	out[0] = formatLZ4
	return append(out, compressed...), nil
}

func (s *Store) decode(encoded []byte) ([]byte, error) {
	if len(encoded) < headerSize {
		return nil, fmt.Errorf("nodestore: truncated record")
	}
	originalSize := int(binary.BigEndian.Uint32(encoded[1:headerSize]))
	payload := encoded[headerSize:]

	switch encoded[0] {
	case formatRaw:
		return append([]byte(nil), payload...), nil
	case formatLZ4:
		return s.comp.Decompress(payload, originalSize)
	default:
		return nil, fmt.Errorf("nodestore: unknown record format %d", encoded[0])
	}
}
