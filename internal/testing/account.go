package testing

import (
	"github.com/bondledger/bondmarketd/internal/codec/addresscodec"
	"github.com/bondledger/bondmarketd/internal/crypto/keys"
)

// Account is a test account with a deterministic key pair derived from
// its name. The same name always yields the same account, which keeps
// tests reproducible.
type Account struct {
	Name    string
	Address string
	ID      [20]byte
	Keys    *keys.KeyPair
}

// NewAccount creates a deterministic secp256k1 test account.
func NewAccount(name string) *Account {
	return newAccount(name, keys.Secp256k1)
}

// NewEd25519Account creates a deterministic ed25519 test account.
func NewEd25519Account(name string) *Account {
	return newAccount(name, keys.Ed25519)
}

func newAccount(name string, alg keys.Algorithm) *Account {
	kp, err := keys.FromSeed(alg, []byte(name))
	if err != nil {
		panic(err)
	}
	id := kp.AccountID()
	return &Account{
		Name:    name,
		Address: addresscodec.EncodeAccountID(id),
		ID:      id,
		Keys:    kp,
	}
}
