package token

import (
	"errors"

	"github.com/bondledger/bondmarketd/internal/codec/addresscodec"
	"github.com/bondledger/bondmarketd/internal/core/keylet"
	"github.com/bondledger/bondmarketd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeMintIssue, func() tx.Transaction {
		return &MintIssue{BaseTx: *tx.NewBaseTx(tx.TypeMintIssue, "")}
	})
}

// MintIssue issues new supply of a mint to a destination account. Only
// the mint's authority may issue.
type MintIssue struct {
	tx.BaseTx
	Mint        string `json:"Mint"`
	Destination string `json:"Destination"`
	Amount      uint64 `json:"Amount"`
}

// NewMintIssue builds a MintIssue transaction.
func NewMintIssue(account, mint, destination string, amount uint64) *MintIssue {
	return &MintIssue{
		BaseTx:      *tx.NewBaseTx(tx.TypeMintIssue, account),
		Mint:        mint,
		Destination: destination,
		Amount:      amount,
	}
}

// Validate checks the transaction fields.
func (m *MintIssue) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}
	if m.Amount == 0 {
		return tx.ErrInvalidAmount
	}
	if _, err := addresscodec.DecodeAccountID(m.Mint); err != nil {
		return errors.New("temBAD_MINT: invalid Mint address")
	}
	if _, err := addresscodec.DecodeAccountID(m.Destination); err != nil {
		return errors.New("temMALFORMED: invalid Destination address")
	}
	return nil
}

// Apply issues the supply and credits the destination.
func (m *MintIssue) Apply(ctx *tx.ApplyContext) tx.Result {
	mintID, err := addresscodec.DecodeAccountID(m.Mint)
	if err != nil {
		return tx.TemBAD_MINT
	}
	destination, err := addresscodec.DecodeAccountID(m.Destination)
	if err != nil {
		return tx.TemMALFORMED
	}

	mint, err := ReadMint(ctx.View, mintID)
	if err != nil {
		return tx.TefINTERNAL
	}
	if mint == nil {
		return tx.TecNO_ENTRY
	}
	if mint.Authority != ctx.AccountID {
		return tx.TecNO_PERMISSION
	}

	if mint.Supply+m.Amount < mint.Supply {
		return tx.TecMATH_OVERFLOW
	}
	mint.Supply += m.Amount

	serialized, err := mint.Serialize()
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := ctx.View.Update(keylet.Mint(mintID), serialized); err != nil {
		return tx.TefINTERNAL
	}

	return Credit(ctx.View, destination, mintID, m.Amount)
}
