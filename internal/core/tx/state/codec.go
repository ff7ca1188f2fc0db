// Package state defines the ledger entry types the engine reads and
// writes, and their canonical serialization.
package state

import (
	"github.com/ugorji/go/codec"
)

// cborHandle is the canonical CBOR configuration for ledger entries.
// Canonical mode guarantees byte-identical serialization for equal
// values, which entry-diffing during commit relies on.
var cborHandle = func() *codec.CborHandle {
	h := &codec.CborHandle{}
	h.Canonical = true
	return h
}()

// Marshal serializes a ledger entry to canonical CBOR.
func Marshal(v interface{}) ([]byte, error) {
	var out []byte
	enc := codec.NewEncoderBytes(&out, cborHandle)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return out, nil
}

// Unmarshal deserializes a ledger entry from CBOR.
func Unmarshal(data []byte, v interface{}) error {
	dec := codec.NewDecoderBytes(data, cborHandle)
	return dec.Decode(v)
}
