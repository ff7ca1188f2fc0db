package state

import (
	"errors"
	"fmt"
)

// Entry type tags, stored with every serialized entry so a read can
// reject an entry of the wrong kind.
const (
	TypeAccountRoot  = "AccountRoot"
	TypeMint         = "Mint"
	TypeTokenAccount = "TokenAccount"
	TypeMarketState  = "MarketState"
	TypeAmmState     = "AmmState"
)

// MaxIssuerNameLength caps the issuer name used as a market derivation
// seed.
const MaxIssuerNameLength = 50

var ErrWrongEntryType = errors.New("wrong ledger entry type")

// AccountRoot is a user account: sequence number for replay protection
// and a count of owned entries.
type AccountRoot struct {
	EntryType  string   `codec:"t"`
	AccountID  [20]byte `codec:"id"`
	Sequence   uint32   `codec:"seq"`
	OwnerCount uint32   `codec:"own"`
	Flags      uint32   `codec:"fl"`
}

// Mint describes one token type. Supply grows only through issuance by
// the mint's authority.
type Mint struct {
	EntryType string   `codec:"t"`
	MintID    [20]byte `codec:"id"`
	Authority [20]byte `codec:"auth"`
	Name      string   `codec:"name"`
	Decimals  uint8    `codec:"dec"`
	Supply    uint64   `codec:"sup"`
}

// TokenAccount holds one holder's balance of one mint. Vaults are
// ordinary token accounts whose holder is a market's vault authority.
type TokenAccount struct {
	EntryType string   `codec:"t"`
	Holder    [20]byte `codec:"h"`
	Mint      [20]byte `codec:"m"`
	Balance   uint64   `codec:"bal"`
}

// MarketState is the registry record for one issuer market.
//
// MarketNonce and AuthorityNonce canonicalize the derivation of the
// market's own account ID and its vault authority's account ID. They
// are fixed at creation; every later operation re-derives with the
// stored nonce and compares, never trusting a caller-supplied address.
type MarketState struct {
	EntryType         string   `codec:"t"`
	MarketID          [20]byte `codec:"id"`
	Admin             [20]byte `codec:"adm"`
	AuthorityID       [20]byte `codec:"vau"`
	BondMint          [20]byte `codec:"bm"`
	QuoteMint         [20]byte `codec:"qm"`
	IssuerName        string   `codec:"isn"`
	MaturityTimestamp int64    `codec:"mat"`
	CouponRateBps     uint16   `codec:"cpn"`
	PricePerToken     uint64   `codec:"px"`
	IsMatured         bool     `codec:"mtd"`
	Paused            bool     `codec:"pau"`
	MarketNonce       uint8    `codec:"mn"`
	AuthorityNonce    uint8    `codec:"an"`
}

// AmmState marks a market as AMM-enabled and records its own
// derivation nonce. Pool balances live in the vault token accounts,
// not here.
type AmmState struct {
	EntryType string   `codec:"t"`
	Market    [20]byte `codec:"mkt"`
	AmmNonce  uint8    `codec:"nn"`
}

type typedEntry struct {
	EntryType string `codec:"t"`
}

// EntryTypeOf returns the type tag of a serialized entry.
func EntryTypeOf(data []byte) (string, error) {
	var te typedEntry
	if err := Unmarshal(data, &te); err != nil {
		return "", err
	}
	return te.EntryType, nil
}

func parseAs(data []byte, want string, v interface{}) error {
	got, err := EntryTypeOf(data)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: have %s, want %s", ErrWrongEntryType, got, want)
	}
	return Unmarshal(data, v)
}

// ParseAccountRoot decodes an AccountRoot entry.
func ParseAccountRoot(data []byte) (*AccountRoot, error) {
	var a AccountRoot
	if err := parseAs(data, TypeAccountRoot, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ParseMint decodes a Mint entry.
func ParseMint(data []byte) (*Mint, error) {
	var m Mint
	if err := parseAs(data, TypeMint, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ParseTokenAccount decodes a TokenAccount entry.
func ParseTokenAccount(data []byte) (*TokenAccount, error) {
	var ta TokenAccount
	if err := parseAs(data, TypeTokenAccount, &ta); err != nil {
		return nil, err
	}
	return &ta, nil
}

// ParseMarketState decodes a MarketState entry.
func ParseMarketState(data []byte) (*MarketState, error) {
	var m MarketState
	if err := parseAs(data, TypeMarketState, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ParseAmmState decodes an AmmState entry.
func ParseAmmState(data []byte) (*AmmState, error) {
	var a AmmState
	if err := parseAs(data, TypeAmmState, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Serialize encodes an entry, stamping its type tag.
func (a *AccountRoot) Serialize() ([]byte, error) {
	a.EntryType = TypeAccountRoot
	return Marshal(a)
}

func (m *Mint) Serialize() ([]byte, error) {
	m.EntryType = TypeMint
	return Marshal(m)
}

func (ta *TokenAccount) Serialize() ([]byte, error) {
	ta.EntryType = TypeTokenAccount
	return Marshal(ta)
}

func (m *MarketState) Serialize() ([]byte, error) {
	m.EntryType = TypeMarketState
	return Marshal(m)
}

func (a *AmmState) Serialize() ([]byte, error) {
	a.EntryType = TypeAmmState
	return Marshal(a)
}
