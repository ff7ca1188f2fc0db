package bond

import (
	"errors"

	"github.com/bondledger/bondmarketd/internal/codec/addresscodec"
	"github.com/bondledger/bondmarketd/internal/core/tx"
	"github.com/bondledger/bondmarketd/internal/core/tx/market"
	"github.com/bondledger/bondmarketd/internal/core/tx/token"
	"github.com/bondledger/bondmarketd/internal/events"
)

func init() {
	tx.Register(tx.TypeBondSell, func() tx.Transaction {
		return &BondSell{BaseTx: *tx.NewBaseTx(tx.TypeBondSell, "")}
	})
}

// BondSell sells bond tokens back to the market vault at the fixed
// price. The quote vault is checked for solvency before anything is
// paid out; if any step fails the buffered state is discarded, so the
// seller's bonds never leave without the payout arriving.
type BondSell struct {
	tx.BaseTx
	IssuerName string `json:"IssuerName"`
	Amount     uint64 `json:"Amount"`
}

// NewBondSell builds a BondSell transaction.
func NewBondSell(account, issuerName string, amount uint64) *BondSell {
	return &BondSell{
		BaseTx:     *tx.NewBaseTx(tx.TypeBondSell, account),
		IssuerName: issuerName,
		Amount:     amount,
	}
}

// Validate checks the transaction fields.
func (b *BondSell) Validate() error {
	if err := b.BaseTx.Validate(); err != nil {
		return err
	}
	if b.IssuerName == "" {
		return errors.New("temMALFORMED: IssuerName is required")
	}
	if b.Amount == 0 {
		return tx.ErrInvalidAmount
	}
	return nil
}

// Apply executes the sale.
func (b *BondSell) Apply(ctx *tx.ApplyContext) tx.Result {
	m, _, result := market.Load(ctx.View, b.IssuerName)
	if !result.IsSuccess() {
		return result
	}
	if m.Paused {
		return tx.TecMARKET_PAUSED
	}
	if m.PricePerToken == 0 {
		return tx.TecPRICE_UNSET
	}
	auth, result := token.VaultAuthority(m)
	if !result.IsSuccess() {
		return result
	}

	// Take the bonds first, then prove the quote vault can pay.
	if result := token.Transfer(ctx.View, token.Signer(ctx), ctx.AccountID, m.AuthorityID, m.BondMint, b.Amount); !result.IsSuccess() {
		return result
	}

	payout, ok := checkedCost(b.Amount, m.PricePerToken)
	if !ok {
		return tx.TecMATH_OVERFLOW
	}

	vaultQuote, err := token.ReadBalance(ctx.View, m.AuthorityID, m.QuoteMint)
	if err != nil {
		return tx.TefINTERNAL
	}
	if vaultQuote < payout {
		return tx.TecINSUFFICIENT_VAULT
	}

	if result := token.Transfer(ctx.View, auth, m.AuthorityID, ctx.AccountID, m.QuoteMint, payout); !result.IsSuccess() {
		return result
	}

	ctx.Metadata.EmitEvent(events.NewTrade(
		addresscodec.EncodeAccountID(m.MarketID),
		addresscodec.EncodeAccountID(ctx.AccountID),
		events.SideSell,
		b.Amount,
		m.PricePerToken,
	))
	return tx.TesSUCCESS
}
