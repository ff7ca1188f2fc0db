// Package keys implements the signing algorithms accepted for
// transaction submission: secp256k1 (DER signatures) and ed25519.
// Account IDs are ripemd160(sha256(pubkey)), so an address commits to
// exactly one public key.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	becdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/decred/dcrd/crypto/ripemd160"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	crypto "github.com/bondledger/bondmarketd/internal/crypto/common"
)

// Algorithm identifies a signing algorithm.
type Algorithm int

const (
	Secp256k1 Algorithm = iota
	Ed25519
)

// ed25519Prefix marks an ed25519 public key; secp256k1 keys are
// identified by their compressed-point prefix (0x02 or 0x03).
const ed25519Prefix byte = 0xED

var (
	ErrUnknownAlgorithm = errors.New("unknown signing algorithm")
	ErrInvalidPublicKey = errors.New("invalid public key")
)

// KeyPair holds a private key and its serialized public key.
type KeyPair struct {
	alg       Algorithm
	secpPriv  *secp256k1.PrivateKey
	edPriv    ed25519.PrivateKey
	publicKey []byte
	accountID [20]byte
}

// GenerateKeyPair creates a fresh key pair for the given algorithm.
func GenerateKeyPair(alg Algorithm) (*KeyPair, error) {
	switch alg {
	case Secp256k1:
		priv, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			return nil, fmt.Errorf("generate secp256k1 key: %w", err)
		}
		pub := priv.PubKey().SerializeCompressed()
		return &KeyPair{
			alg:       Secp256k1,
			secpPriv:  priv,
			publicKey: pub,
			accountID: AccountID(pub),
		}, nil
	case Ed25519:
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("generate ed25519 key: %w", err)
		}
		serialized := append([]byte{ed25519Prefix}, pub...)
		return &KeyPair{
			alg:       Ed25519,
			edPriv:    priv,
			publicKey: serialized,
			accountID: AccountID(serialized),
		}, nil
	default:
		return nil, ErrUnknownAlgorithm
	}
}

// FromSeed derives a key pair deterministically from seed bytes. The
// same seed and algorithm always yield the same keys.
func FromSeed(alg Algorithm, seed []byte) (*KeyPair, error) {
	digest := crypto.Sha512Half(seed)
	switch alg {
	case Secp256k1:
		priv := secp256k1.PrivKeyFromBytes(digest[:])
		pub := priv.PubKey().SerializeCompressed()
		return &KeyPair{
			alg:       Secp256k1,
			secpPriv:  priv,
			publicKey: pub,
			accountID: AccountID(pub),
		}, nil
	case Ed25519:
		priv := ed25519.NewKeyFromSeed(digest[:])
		pub := priv.Public().(ed25519.PublicKey)
		serialized := append([]byte{ed25519Prefix}, pub...)
		return &KeyPair{
			alg:       Ed25519,
			edPriv:    priv,
			publicKey: serialized,
			accountID: AccountID(serialized),
		}, nil
	default:
		return nil, ErrUnknownAlgorithm
	}
}

// PublicKey returns the serialized public key.
func (k *KeyPair) PublicKey() []byte {
	return k.publicKey
}

// AccountID returns the account ID derived from the public key.
func (k *KeyPair) AccountID() [20]byte {
	return k.accountID
}

// Sign signs the sha512-half digest of msg.
func (k *KeyPair) Sign(msg []byte) ([]byte, error) {
	digest := crypto.Sha512Half(msg)
	switch k.alg {
	case Secp256k1:
		sig := becdsa.Sign(k.secpPriv, digest[:])
		return sig.Serialize(), nil
	case Ed25519:
		return ed25519.Sign(k.edPriv, digest[:]), nil
	default:
		return nil, ErrUnknownAlgorithm
	}
}

// Verify checks sig over the sha512-half digest of msg against the
// serialized public key. The algorithm is inferred from the key prefix.
func Verify(publicKey, msg, sig []byte) bool {
	digest := crypto.Sha512Half(msg)

	if len(publicKey) == 1+ed25519.PublicKeySize && publicKey[0] == ed25519Prefix {
		return ed25519.Verify(ed25519.PublicKey(publicKey[1:]), digest[:], sig)
	}

	pub, err := btcec.ParsePubKey(publicKey)
	if err != nil {
		return false
	}
	parsed, err := becdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return parsed.Verify(digest[:], pub)
}

// AccountID computes ripemd160(sha256(publicKey)).
func AccountID(publicKey []byte) [20]byte {
	inner := sha256.Sum256(publicKey)
	h := ripemd160.New()
	h.Write(inner[:])

	var id [20]byte
	copy(id[:], h.Sum(nil))
	return id
}
