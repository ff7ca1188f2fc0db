// Package addresscodec encodes 20-byte account IDs as base58check
// addresses and decodes them back, rejecting anything with a bad
// checksum or wrong length.
package addresscodec

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"math/big"
)

const (
	alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

	// accountVersion is the version byte prepended to account IDs
	// before checksumming.
	accountVersion byte = 0x42

	accountIDLength = 20
	checksumLength  = 4
)

var (
	ErrInvalidAddress  = errors.New("invalid address")
	ErrInvalidChecksum = errors.New("invalid address checksum")

	decodeTable [256]int8
)

func init() {
	for i := range decodeTable {
		decodeTable[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		decodeTable[alphabet[i]] = int8(i)
	}
}

// EncodeAccountID encodes a 20-byte account ID into an address string.
func EncodeAccountID(accountID [20]byte) string {
	payload := make([]byte, 0, 1+accountIDLength+checksumLength)
	payload = append(payload, accountVersion)
	payload = append(payload, accountID[:]...)
	payload = append(payload, checksum(payload)...)
	return encodeBase58(payload)
}

// DecodeAccountID decodes an address string back into a 20-byte account ID.
func DecodeAccountID(address string) ([20]byte, error) {
	var accountID [20]byte

	payload, err := decodeBase58(address)
	if err != nil {
		return accountID, err
	}
	if len(payload) != 1+accountIDLength+checksumLength {
		return accountID, ErrInvalidAddress
	}
	if payload[0] != accountVersion {
		return accountID, ErrInvalidAddress
	}

	body := payload[:1+accountIDLength]
	if !bytes.Equal(checksum(body), payload[1+accountIDLength:]) {
		return accountID, ErrInvalidChecksum
	}

	copy(accountID[:], payload[1:1+accountIDLength])
	return accountID, nil
}

// checksum returns the first 4 bytes of a double sha256.
func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:checksumLength]
}

func encodeBase58(input []byte) string {
	zeros := 0
	for zeros < len(input) && input[zeros] == 0 {
		zeros++
	}

	num := new(big.Int).SetBytes(input)
	base := big.NewInt(58)
	mod := new(big.Int)

	var out []byte
	for num.Sign() > 0 {
		num.DivMod(num, base, mod)
		out = append(out, alphabet[mod.Int64()])
	}
	for i := 0; i < zeros; i++ {
		out = append(out, alphabet[0])
	}

	// Digits come out least-significant first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

func decodeBase58(input string) ([]byte, error) {
	if input == "" {
		return nil, ErrInvalidAddress
	}

	zeros := 0
	for zeros < len(input) && input[zeros] == alphabet[0] {
		zeros++
	}

	num := new(big.Int)
	base := big.NewInt(58)
	for i := 0; i < len(input); i++ {
		digit := decodeTable[input[i]]
		if digit < 0 {
			return nil, ErrInvalidAddress
		}
		num.Mul(num, base)
		num.Add(num, big.NewInt(int64(digit)))
	}

	body := num.Bytes()
	out := make([]byte, zeros+len(body))
	copy(out[zeros:], body)
	return out, nil
}
