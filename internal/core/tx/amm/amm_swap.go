package amm

import (
	"errors"

	"github.com/bondledger/bondmarketd/internal/codec/addresscodec"
	"github.com/bondledger/bondmarketd/internal/core/tx"
	"github.com/bondledger/bondmarketd/internal/core/tx/market"
	"github.com/bondledger/bondmarketd/internal/core/tx/token"
	"github.com/bondledger/bondmarketd/internal/events"
)

func init() {
	tx.Register(tx.TypeAmmSwap, func() tx.Transaction {
		return &AmmSwap{BaseTx: *tx.NewBaseTx(tx.TypeAmmSwap, "")}
	})
}

// AmmSwap trades against a market's pool. Side "buy" spends quote
// tokens for bond tokens, "sell" the reverse. The swap fee is taken
// from the gross output and stays in the output vault, deepening the
// pool for later trades.
type AmmSwap struct {
	tx.BaseTx
	IssuerName string `json:"IssuerName"`
	Side       string `json:"Side"`
	AmountIn   uint64 `json:"AmountIn"`
}

// NewAmmSwap builds an AmmSwap transaction.
func NewAmmSwap(account, issuerName, side string, amountIn uint64) *AmmSwap {
	return &AmmSwap{
		BaseTx:     *tx.NewBaseTx(tx.TypeAmmSwap, account),
		IssuerName: issuerName,
		Side:       side,
		AmountIn:   amountIn,
	}
}

// Validate checks the transaction fields. A zero AmountIn is accepted
// and applies as a no-op.
func (a *AmmSwap) Validate() error {
	if err := a.BaseTx.Validate(); err != nil {
		return err
	}
	if a.IssuerName == "" {
		return errors.New("temMALFORMED: IssuerName is required")
	}
	if a.Side != events.SideBuy && a.Side != events.SideSell {
		return errors.New("temMALFORMED: Side must be buy or sell")
	}
	return nil
}

// Apply executes the swap.
func (a *AmmSwap) Apply(ctx *tx.ApplyContext) tx.Result {
	m, _, result := market.Load(ctx.View, a.IssuerName)
	if !result.IsSuccess() {
		return result
	}
	if m.Paused {
		return tx.TecMARKET_PAUSED
	}

	auth, result := token.VaultAuthority(m)
	if !result.IsSuccess() {
		return result
	}
	if _, _, result := LoadPool(ctx.View, m.MarketID); !result.IsSuccess() {
		return result
	}

	if a.AmountIn == 0 {
		return tx.TesSUCCESS
	}

	inMint, outMint := m.QuoteMint, m.BondMint
	if a.Side == events.SideSell {
		inMint, outMint = m.BondMint, m.QuoteMint
	}

	inReserve, err := token.ReadBalance(ctx.View, m.AuthorityID, inMint)
	if err != nil {
		return tx.TefINTERNAL
	}
	outReserve, err := token.ReadBalance(ctx.View, m.AuthorityID, outMint)
	if err != nil {
		return tx.TefINTERNAL
	}

	grossOut, ok := ConstantProductOut(inReserve, outReserve, a.AmountIn)
	if !ok {
		return tx.TecMATH_OVERFLOW
	}
	fee, ok := FeeOn(grossOut, ctx.Config.FeeBps)
	if !ok {
		return tx.TecMATH_OVERFLOW
	}
	netOut := grossOut - fee
	if netOut == 0 {
		// The input would be consumed for nothing.
		return tx.TecUNFUNDED
	}

	bondAmount, quoteAmount := netOut, a.AmountIn
	if a.Side == events.SideSell {
		bondAmount, quoteAmount = a.AmountIn, netOut
	}
	price, ok := EffectivePrice(quoteAmount, bondAmount)
	if !ok {
		return tx.TecMATH_OVERFLOW
	}

	if result := token.Transfer(ctx.View, token.Signer(ctx), ctx.AccountID, m.AuthorityID, inMint, a.AmountIn); !result.IsSuccess() {
		return result
	}
	if result := token.Transfer(ctx.View, auth, m.AuthorityID, ctx.AccountID, outMint, netOut); !result.IsSuccess() {
		return result
	}

	ctx.Metadata.EmitEvent(events.NewTrade(
		addresscodec.EncodeAccountID(m.MarketID),
		addresscodec.EncodeAccountID(ctx.AccountID),
		a.Side,
		bondAmount,
		price,
	))
	return tx.TesSUCCESS
}
