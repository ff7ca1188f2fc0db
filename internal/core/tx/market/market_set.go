package market

import (
	"errors"

	"github.com/bondledger/bondmarketd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeMarketSet, func() tx.Transaction {
		return &MarketSet{BaseTx: *tx.NewBaseTx(tx.TypeMarketSet, "")}
	})
}

// MarketSet adjusts a market's administrative state. Only the market
// admin may submit it. Unset fields are left untouched; a
// PricePerToken of zero disables fixed-price trading.
type MarketSet struct {
	tx.BaseTx
	IssuerName    string  `json:"IssuerName"`
	Paused        *bool   `json:"Paused,omitempty"`
	PricePerToken *uint64 `json:"PricePerToken,omitempty"`
	IsMatured     *bool   `json:"IsMatured,omitempty"`
}

// NewMarketSet builds an empty MarketSet transaction; callers set the
// fields they want changed.
func NewMarketSet(account, issuerName string) *MarketSet {
	return &MarketSet{
		BaseTx:     *tx.NewBaseTx(tx.TypeMarketSet, account),
		IssuerName: issuerName,
	}
}

// WithPaused sets the pause flag.
func (m *MarketSet) WithPaused(paused bool) *MarketSet {
	m.Paused = &paused
	return m
}

// WithPrice sets the fixed trade price in quote units per bond token.
func (m *MarketSet) WithPrice(price uint64) *MarketSet {
	m.PricePerToken = &price
	return m
}

// WithMatured marks the market matured.
func (m *MarketSet) WithMatured() *MarketSet {
	matured := true
	m.IsMatured = &matured
	return m
}

// Validate checks the transaction fields.
func (m *MarketSet) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}
	if m.IssuerName == "" {
		return errors.New("temMALFORMED: IssuerName is required")
	}
	if m.Paused == nil && m.PricePerToken == nil && m.IsMatured == nil {
		return errors.New("temMALFORMED: no fields to set")
	}
	if m.IsMatured != nil && !*m.IsMatured {
		return errors.New("temINVALID_FLAG: IsMatured cannot be cleared")
	}
	return nil
}

// Apply updates the market entry.
func (m *MarketSet) Apply(ctx *tx.ApplyContext) tx.Result {
	entry, key, result := Load(ctx.View, m.IssuerName)
	if !result.IsSuccess() {
		return result
	}
	if entry.Admin != ctx.AccountID {
		return tx.TecNO_PERMISSION
	}

	if m.Paused != nil {
		entry.Paused = *m.Paused
	}
	if m.PricePerToken != nil {
		entry.PricePerToken = *m.PricePerToken
	}
	if m.IsMatured != nil {
		entry.IsMatured = true
	}

	return Store(ctx.View, key, entry)
}
