package token

import (
	"errors"

	"github.com/bondledger/bondmarketd/internal/core/keylet"
	"github.com/bondledger/bondmarketd/internal/core/tx"
	"github.com/bondledger/bondmarketd/internal/core/tx/state"
)

func init() {
	tx.Register(tx.TypeMintCreate, func() tx.Transaction {
		return &MintCreate{BaseTx: *tx.NewBaseTx(tx.TypeMintCreate, "")}
	})
}

const maxMintNameLength = 64

// MintCreate creates a new token mint. The mint ID is derived from the
// creator's account and the mint name, so one account cannot create
// two mints under the same name.
type MintCreate struct {
	tx.BaseTx
	Name     string `json:"Name"`
	Decimals uint8  `json:"Decimals"`
}

// NewMintCreate builds a MintCreate transaction.
func NewMintCreate(account, name string, decimals uint8) *MintCreate {
	return &MintCreate{
		BaseTx:   *tx.NewBaseTx(tx.TypeMintCreate, account),
		Name:     name,
		Decimals: decimals,
	}
}

// Validate checks the transaction fields.
func (m *MintCreate) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}
	if m.Name == "" {
		return errors.New("temMALFORMED: Name is required")
	}
	if len(m.Name) > maxMintNameLength {
		return errors.New("temMALFORMED: Name exceeds maximum length")
	}
	return nil
}

// Apply creates the mint entry.
func (m *MintCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	mintID := keylet.MintID(ctx.AccountID, m.Name)

	mint := &state.Mint{
		MintID:    mintID,
		Authority: ctx.AccountID,
		Name:      m.Name,
		Decimals:  m.Decimals,
	}
	serialized, err := mint.Serialize()
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := ctx.View.Insert(keylet.Mint(mintID), serialized); err != nil {
		return tx.TecDUPLICATE
	}

	ctx.Account.OwnerCount++
	return tx.TesSUCCESS
}
