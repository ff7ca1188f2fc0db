package tx

import (
	"encoding/json"
	"errors"
)

// Common errors surfaced by Validate implementations. Messages carry
// the result-code prefix so callers can map them without string
// matching elsewhere.
var (
	ErrMissingAccount = errors.New("temBAD_SRC_ACCOUNT: Account is required")
	ErrMissingTxType  = errors.New("temMALFORMED: TransactionType is required")
	ErrInvalidAmount  = errors.New("temBAD_AMOUNT: Amount must be positive")
	ErrInvalidFlags   = errors.New("temINVALID_FLAG: invalid flags")
)

// Transaction is the interface all transaction types implement.
type Transaction interface {
	// TxType returns the transaction type.
	TxType() Type

	// GetCommon returns the common transaction fields.
	GetCommon() *Common

	// Validate checks the transaction's own fields, without ledger
	// state.
	Validate() error
}

// Appliable is implemented by transaction types that apply themselves
// to ledger state.
type Appliable interface {
	Apply(ctx *ApplyContext) Result
}

// Common contains fields shared by all transaction types.
type Common struct {
	Account         string  `json:"Account"`
	TransactionType string  `json:"TransactionType"`
	Sequence        *uint32 `json:"Sequence,omitempty"`
	Flags           *uint32 `json:"Flags,omitempty"`
	SigningPubKey   string  `json:"SigningPubKey,omitempty"`
	TxnSignature    string  `json:"TxnSignature,omitempty"`
}

// Validate validates the common fields.
func (c *Common) Validate() error {
	if c.Account == "" {
		return ErrMissingAccount
	}
	if c.TransactionType == "" {
		return ErrMissingTxType
	}
	return nil
}

// GetFlags returns the flags value (0 if not set).
func (c *Common) GetFlags() uint32 {
	if c.Flags == nil {
		return 0
	}
	return *c.Flags
}

// SetSequence sets the sequence number.
func (c *Common) SetSequence(seq uint32) {
	c.Sequence = &seq
}

// GetSequence returns the sequence number (0 if not set).
func (c *Common) GetSequence() uint32 {
	if c.Sequence == nil {
		return 0
	}
	return *c.Sequence
}

// BaseTx provides a base implementation for transactions.
type BaseTx struct {
	Common
	txType Type
}

// TxType returns the transaction type.
func (b *BaseTx) TxType() Type {
	return b.txType
}

// GetCommon returns the common transaction fields.
func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

// Validate validates the base transaction.
func (b *BaseTx) Validate() error {
	return b.Common.Validate()
}

// NewBaseTx creates a new base transaction.
func NewBaseTx(txType Type, account string) *BaseTx {
	return &BaseTx{
		Common: Common{
			Account:         account,
			TransactionType: txType.String(),
		},
		txType: txType,
	}
}

// SigningData returns the canonical byte serialization a signature
// covers: the transaction JSON with the signature field cleared.
// json.Marshal of a map emits keys in sorted order, which makes the
// serialization canonical.
func SigningData(t Transaction) ([]byte, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}

	var flat map[string]any
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	delete(flat, "TxnSignature")

	return json.Marshal(flat)
}
