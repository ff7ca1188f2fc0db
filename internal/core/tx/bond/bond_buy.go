// Package bond implements fixed-price primary trading against a
// market's vaults, plus the coupon and redemption entry points.
package bond

import (
	"errors"
	"math/bits"

	"github.com/bondledger/bondmarketd/internal/codec/addresscodec"
	"github.com/bondledger/bondmarketd/internal/core/tx"
	"github.com/bondledger/bondmarketd/internal/core/tx/market"
	"github.com/bondledger/bondmarketd/internal/core/tx/token"
	"github.com/bondledger/bondmarketd/internal/events"
)

func init() {
	tx.Register(tx.TypeBondBuy, func() tx.Transaction {
		return &BondBuy{BaseTx: *tx.NewBaseTx(tx.TypeBondBuy, "")}
	})
}

// BondBuy purchases bond tokens from the market vault at the fixed
// price set by the admin.
type BondBuy struct {
	tx.BaseTx
	IssuerName string `json:"IssuerName"`
	Amount     uint64 `json:"Amount"`
}

// NewBondBuy builds a BondBuy transaction.
func NewBondBuy(account, issuerName string, amount uint64) *BondBuy {
	return &BondBuy{
		BaseTx:     *tx.NewBaseTx(tx.TypeBondBuy, account),
		IssuerName: issuerName,
		Amount:     amount,
	}
}

// Validate checks the transaction fields.
func (b *BondBuy) Validate() error {
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

// Apply executes the purchase.
func (b *BondBuy) Apply(ctx *tx.ApplyContext) tx.Result {
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

	cost, ok := checkedCost(b.Amount, m.PricePerToken)
	if !ok {
		return tx.TecMATH_OVERFLOW
	}

	// The vault must actually hold the bonds being sold.
	vaultBonds, err := token.ReadBalance(ctx.View, m.AuthorityID, m.BondMint)
	if err != nil {
		return tx.TefINTERNAL
	}
	if vaultBonds < b.Amount {
		return tx.TecINSUFFICIENT_VAULT
	}

	if result := token.Transfer(ctx.View, token.Signer(ctx), ctx.AccountID, m.AuthorityID, m.QuoteMint, cost); !result.IsSuccess() {
		return result
	}
	if result := token.Transfer(ctx.View, auth, m.AuthorityID, ctx.AccountID, m.BondMint, b.Amount); !result.IsSuccess() {
		return result
	}

	ctx.Metadata.EmitEvent(events.NewTrade(
		addresscodec.EncodeAccountID(m.MarketID),
		addresscodec.EncodeAccountID(ctx.AccountID),
		events.SideBuy,
		b.Amount,
		m.PricePerToken,
	))
	return tx.TesSUCCESS
}

// checkedCost multiplies amount by the per-token price, rejecting
// products beyond uint64.
func checkedCost(amount, price uint64) (uint64, bool) {
	hi, lo := bits.Mul64(amount, price)
	if hi != 0 {
		return 0, false
	}
	return lo, true
}
