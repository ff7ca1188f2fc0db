package market

import (
	"errors"
	"fmt"

	"github.com/bondledger/bondmarketd/internal/codec/addresscodec"
	"github.com/bondledger/bondmarketd/internal/core/keylet"
	"github.com/bondledger/bondmarketd/internal/core/tx"
	"github.com/bondledger/bondmarketd/internal/core/tx/state"
	"github.com/bondledger/bondmarketd/internal/core/tx/token"
	"github.com/bondledger/bondmarketd/internal/events"
)

func init() {
	tx.Register(tx.TypeMarketCreate, func() tx.Transaction {
		return &MarketCreate{BaseTx: *tx.NewBaseTx(tx.TypeMarketCreate, "")}
	})
}

// MarketCreate registers a new issuer market. The market address and
// its vault authority are derived from the issuer name, with
// derivation nonces fixed here and stored in the entry. A bond mint
// dedicated to the market is created alongside it.
type MarketCreate struct {
	tx.BaseTx
	IssuerName        string `json:"IssuerName"`
	QuoteMint         string `json:"QuoteMint"`
	MaturityTimestamp int64  `json:"MaturityTimestamp"`
	CouponRateBps     uint16 `json:"CouponRateBps"`
	PricePerToken     uint64 `json:"PricePerToken,omitempty"`
	BondDecimals      uint8  `json:"BondDecimals,omitempty"`
}

// NewMarketCreate builds a MarketCreate transaction.
func NewMarketCreate(account, issuerName, quoteMint string, maturity int64, couponBps uint16) *MarketCreate {
	return &MarketCreate{
		BaseTx:            *tx.NewBaseTx(tx.TypeMarketCreate, account),
		IssuerName:        issuerName,
		QuoteMint:         quoteMint,
		MaturityTimestamp: maturity,
		CouponRateBps:     couponBps,
	}
}

// Validate checks the transaction fields.
func (m *MarketCreate) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}
	if m.IssuerName == "" {
		return errors.New("temMALFORMED: IssuerName is required")
	}
	if len(m.IssuerName) > state.MaxIssuerNameLength {
		return fmt.Errorf("temISSUER_NAME_TOO_LONG: IssuerName exceeds %d bytes", state.MaxIssuerNameLength)
	}
	if _, err := addresscodec.DecodeAccountID(m.QuoteMint); err != nil {
		return errors.New("temBAD_MINT: invalid QuoteMint address")
	}
	if m.MaturityTimestamp <= 0 {
		return errors.New("temMALFORMED: MaturityTimestamp must be positive")
	}
	return nil
}

// Apply creates the market entry, its bond mint and the canonical
// derivation record.
func (m *MarketCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	quoteMint, err := addresscodec.DecodeAccountID(m.QuoteMint)
	if err != nil {
		return tx.TemBAD_MINT
	}

	// The quote side must be an existing mint.
	quote, err := token.ReadMint(ctx.View, quoteMint)
	if err != nil {
		return tx.TefINTERNAL
	}
	if quote == nil {
		return tx.TecNO_ENTRY
	}

	// Fix the market derivation nonce: the first nonce whose derived
	// account ID is not already taken by a funded account. A market
	// entry found under any nonce means this issuer name is taken.
	marketNonce := -1
	var marketKey keylet.Keylet
	var marketID [20]byte
	for n := 0; n < 256; n++ {
		k := keylet.Market(m.IssuerName, uint8(n))
		exists, err := ctx.View.Exists(k)
		if err != nil {
			return tx.TefINTERNAL
		}
		if exists {
			return tx.TecDUPLICATE
		}
		id := keylet.PseudoAccountID(k)
		occupied, err := ctx.View.Exists(keylet.Account(id))
		if err != nil {
			return tx.TefINTERNAL
		}
		if occupied {
			continue
		}
		marketNonce, marketKey, marketID = n, k, id
		break
	}
	if marketNonce < 0 {
		return tx.TecINTERNAL
	}

	// Same probing for the vault authority.
	authorityNonce := -1
	var authorityID [20]byte
	for n := 0; n < 256; n++ {
		id := keylet.AuthorityAccountID(marketID, uint8(n))
		occupied, err := ctx.View.Exists(keylet.Account(id))
		if err != nil {
			return tx.TefINTERNAL
		}
		if occupied {
			continue
		}
		authorityNonce, authorityID = n, id
		break
	}
	if authorityNonce < 0 {
		return tx.TecINTERNAL
	}

	// The bond mint is owned by the market admin, who seeds the vaults
	// with the initial bond supply.
	bondMintID := keylet.BondMint(marketID)
	bondMint := &state.Mint{
		MintID:    bondMintID,
		Authority: ctx.AccountID,
		Name:      m.IssuerName,
		Decimals:  m.BondDecimals,
	}
	serialized, err := bondMint.Serialize()
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := ctx.View.Insert(keylet.Mint(bondMintID), serialized); err != nil {
		return tx.TecDUPLICATE
	}

	entry := &state.MarketState{
		MarketID:          marketID,
		Admin:             ctx.AccountID,
		AuthorityID:       authorityID,
		BondMint:          bondMintID,
		QuoteMint:         quoteMint,
		IssuerName:        m.IssuerName,
		MaturityTimestamp: m.MaturityTimestamp,
		CouponRateBps:     m.CouponRateBps,
		PricePerToken:     m.PricePerToken,
		MarketNonce:       uint8(marketNonce),
		AuthorityNonce:    uint8(authorityNonce),
	}
	serialized, err = entry.Serialize()
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := ctx.View.Insert(marketKey, serialized); err != nil {
		return tx.TecDUPLICATE
	}

	ctx.Account.OwnerCount++
	ctx.Metadata.EmitEvent(events.NewMarketCreated(
		addresscodec.EncodeAccountID(marketID),
		addresscodec.EncodeAccountID(bondMintID),
		m.IssuerName,
	))
	return tx.TesSUCCESS
}
