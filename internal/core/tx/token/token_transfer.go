package token

import (
	"errors"

	"github.com/bondledger/bondmarketd/internal/codec/addresscodec"
	"github.com/bondledger/bondmarketd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeTokenTransfer, func() tx.Transaction {
		return &TokenTransfer{BaseTx: *tx.NewBaseTx(tx.TypeTokenTransfer, "")}
	})
}

// TokenTransfer moves tokens from the signing account to a destination.
type TokenTransfer struct {
	tx.BaseTx
	Destination string `json:"Destination"`
	Mint        string `json:"Mint"`
	Amount      uint64 `json:"Amount"`
}

// NewTokenTransfer builds a TokenTransfer transaction.
func NewTokenTransfer(account, destination, mint string, amount uint64) *TokenTransfer {
	return &TokenTransfer{
		BaseTx:      *tx.NewBaseTx(tx.TypeTokenTransfer, account),
		Destination: destination,
		Mint:        mint,
		Amount:      amount,
	}
}

// Validate checks the transaction fields.
func (t *TokenTransfer) Validate() error {
	if err := t.BaseTx.Validate(); err != nil {
		return err
	}
	if t.Amount == 0 {
		return tx.ErrInvalidAmount
	}
	if _, err := addresscodec.DecodeAccountID(t.Mint); err != nil {
		return errors.New("temBAD_MINT: invalid Mint address")
	}
	if _, err := addresscodec.DecodeAccountID(t.Destination); err != nil {
		return errors.New("temMALFORMED: invalid Destination address")
	}
	if t.Destination == t.Account {
		return errors.New("temMALFORMED: Destination must differ from Account")
	}
	return nil
}

// Apply moves the tokens.
func (t *TokenTransfer) Apply(ctx *tx.ApplyContext) tx.Result {
	mintID, err := addresscodec.DecodeAccountID(t.Mint)
	if err != nil {
		return tx.TemBAD_MINT
	}
	destination, err := addresscodec.DecodeAccountID(t.Destination)
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

	return Transfer(ctx.View, Signer(ctx), ctx.AccountID, destination, mintID, t.Amount)
}
