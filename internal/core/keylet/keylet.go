// Package keylet computes deterministic addresses for ledger entries.
// Every entry lives at a 256-bit key derived by hashing a space
// identifier plus immutable seed data, so any holder of the seeds can
// recompute the address and verify that a presented entry is genuine.
package keylet

import (
	"encoding/binary"

	crypto "github.com/bondledger/bondmarketd/internal/crypto/common"
)

// Space identifiers for keylet generation.
const (
	spaceAccount   uint16 = 'a' // Account root
	spaceMint      uint16 = 'm' // Token mint
	spaceToken     uint16 = 't' // Token account (holder, mint)
	spaceMarket    uint16 = 'M' // Bond market state
	spaceAuthority uint16 = 'A' // Market vault authority
	spaceAmm       uint16 = 'p' // AMM state
)

// Fixed seed labels. These never change once a market exists: the
// stored derivation nonces are only reproducible against these exact
// byte strings.
var (
	seedMarket    = []byte("market")
	seedAuthority = []byte("authority")
	seedAmm       = []byte("amm")
	seedBondMint  = []byte("bond_mint")
)

// Keylet is an addressable location in the ledger state.
type Keylet struct {
	Key [32]byte
}

// indexHash computes a keylet key by hashing the space and seed data.
func indexHash(space uint16, data ...[]byte) [32]byte {
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, spaceBytes)
	inputs = append(inputs, data...)

	return crypto.Sha512Half(inputs...)
}

// Account returns the keylet for an account root entry.
func Account(accountID [20]byte) Keylet {
	return Keylet{Key: indexHash(spaceAccount, accountID[:])}
}

// Mint returns the keylet for a token mint entry.
func Mint(mintID [20]byte) Keylet {
	return Keylet{Key: indexHash(spaceMint, mintID[:])}
}

// TokenAccount returns the keylet for a holder's balance of one mint.
func TokenAccount(holder, mint [20]byte) Keylet {
	return Keylet{Key: indexHash(spaceToken, holder[:], mint[:])}
}

// Market returns the keylet for a market derived from its issuer name
// and derivation nonce.
func Market(issuerName string, nonce uint8) Keylet {
	return Keylet{Key: indexHash(spaceMarket, seedMarket, []byte(issuerName), []byte{nonce})}
}

// MarketAuthority returns the keylet for a market's vault authority.
func MarketAuthority(marketID [20]byte, nonce uint8) Keylet {
	return Keylet{Key: indexHash(spaceAuthority, seedAuthority, marketID[:], []byte{nonce})}
}

// Amm returns the keylet for a market's AMM state.
func Amm(marketID [20]byte, nonce uint8) Keylet {
	return Keylet{Key: indexHash(spaceAmm, seedAmm, marketID[:], []byte{nonce})}
}

// MintID derives the deterministic ID of a mint created by an issuer
// under a name.
func MintID(issuer [20]byte, name string) [20]byte {
	return PseudoAccountID(Keylet{Key: indexHash(spaceMint, issuer[:], []byte(name))})
}

// BondMint returns the deterministic ID of the bond mint created for a
// market.
func BondMint(marketID [20]byte) [20]byte {
	return PseudoAccountID(Keylet{Key: indexHash(spaceMint, seedBondMint, marketID[:])})
}

// PseudoAccountID derives a 20-byte account ID from a keylet. Entries
// addressed this way (markets, vault authorities) act as accounts with
// no private key.
func PseudoAccountID(k Keylet) [20]byte {
	var id [20]byte
	copy(id[:], k.Key[:20])
	return id
}

// MarketAccountID derives the market's own account ID.
func MarketAccountID(issuerName string, nonce uint8) [20]byte {
	return PseudoAccountID(Market(issuerName, nonce))
}

// AuthorityAccountID derives the vault authority's account ID.
func AuthorityAccountID(marketID [20]byte, nonce uint8) [20]byte {
	return PseudoAccountID(MarketAuthority(marketID, nonce))
}
