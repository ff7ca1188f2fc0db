// Package protocol defines protocol-level constants shared across the
// ledger core.
package protocol

// HashPrefix provides domain separation for different hash contexts.
// The prefix is hashed ahead of the payload so a transaction ID can
// never collide with a digest from another context.
type HashPrefix [4]byte

var (
	// HashPrefixTransactionID is used for computing transaction IDs.
	HashPrefixTransactionID = HashPrefix{'T', 'X', 'N', 0x00}

	// HashPrefixSigning is used for digests covered by a signature.
	HashPrefixSigning = HashPrefix{'S', 'T', 'X', 0x00}
)

// Bytes returns the prefix as a slice for hashing.
func (p HashPrefix) Bytes() []byte {
	return p[:]
}
