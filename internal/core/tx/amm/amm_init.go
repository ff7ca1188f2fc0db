package amm

import (
	"errors"

	"github.com/bondledger/bondmarketd/internal/core/keylet"
	"github.com/bondledger/bondmarketd/internal/core/tx"
	"github.com/bondledger/bondmarketd/internal/core/tx/market"
	"github.com/bondledger/bondmarketd/internal/core/tx/state"
	"github.com/bondledger/bondmarketd/internal/core/tx/token"
)

func init() {
	tx.Register(tx.TypeAmmInit, func() tx.Transaction {
		return &AmmInit{BaseTx: *tx.NewBaseTx(tx.TypeAmmInit, "")}
	})
}

// AmmInit attaches a swap pool to a market and seeds both vaults from
// the admin's own token accounts. Only the market admin may submit it,
// and only once per market.
type AmmInit struct {
	tx.BaseTx
	IssuerName  string `json:"IssuerName"`
	BondAmount  uint64 `json:"BondAmount"`
	QuoteAmount uint64 `json:"QuoteAmount"`
}

// NewAmmInit builds an AmmInit transaction.
func NewAmmInit(account, issuerName string, bondAmount, quoteAmount uint64) *AmmInit {
	return &AmmInit{
		BaseTx:      *tx.NewBaseTx(tx.TypeAmmInit, account),
		IssuerName:  issuerName,
		BondAmount:  bondAmount,
		QuoteAmount: quoteAmount,
	}
}

// Validate checks the transaction fields.
func (a *AmmInit) Validate() error {
	if err := a.BaseTx.Validate(); err != nil {
		return err
	}
	if a.IssuerName == "" {
		return errors.New("temMALFORMED: IssuerName is required")
	}
	if a.BondAmount == 0 || a.QuoteAmount == 0 {
		return errors.New("temBAD_AMOUNT: initial liquidity must be positive on both sides")
	}
	return nil
}

// Apply creates the pool entry and moves the initial liquidity into
// the vaults.
func (a *AmmInit) Apply(ctx *tx.ApplyContext) tx.Result {
	m, _, result := market.Load(ctx.View, a.IssuerName)
	if !result.IsSuccess() {
		return result
	}
	if m.Admin != ctx.AccountID {
		return tx.TecNO_PERMISSION
	}
	if _, _, result := LoadPool(ctx.View, m.MarketID); result.IsSuccess() {
		return tx.TecDUPLICATE
	}

	// Verify the vault authority derivation before funds move toward
	// accounts it controls.
	if _, result := token.VaultAuthority(m); !result.IsSuccess() {
		return result
	}

	// Fix the pool derivation nonce the same way market creation does.
	ammNonce := -1
	var poolKey keylet.Keylet
	for n := 0; n < 256; n++ {
		k := keylet.Amm(m.MarketID, uint8(n))
		id := keylet.PseudoAccountID(k)
		occupied, err := ctx.View.Exists(keylet.Account(id))
		if err != nil {
			return tx.TefINTERNAL
		}
		if occupied {
			continue
		}
		ammNonce, poolKey = n, k
		break
	}
	if ammNonce < 0 {
		return tx.TecINTERNAL
	}

	pool := &state.AmmState{Market: m.MarketID, AmmNonce: uint8(ammNonce)}
	data, err := pool.Serialize()
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := ctx.View.Insert(poolKey, data); err != nil {
		return tx.TecDUPLICATE
	}

	signer := token.Signer(ctx)
	if result := token.Transfer(ctx.View, signer, ctx.AccountID, m.AuthorityID, m.BondMint, a.BondAmount); !result.IsSuccess() {
		return result
	}
	if result := token.Transfer(ctx.View, signer, ctx.AccountID, m.AuthorityID, m.QuoteMint, a.QuoteAmount); !result.IsSuccess() {
		return result
	}

	ctx.Account.OwnerCount++
	return tx.TesSUCCESS
}

// LoadPool locates a market's pool entry by probing derivation nonces,
// re-checking the stored derivation before returning it.
func LoadPool(view tx.LedgerView, marketID [20]byte) (*state.AmmState, keylet.Keylet, tx.Result) {
	for nonce := 0; nonce < 256; nonce++ {
		k := keylet.Amm(marketID, uint8(nonce))
		data, err := view.Read(k)
		if err != nil {
			return nil, keylet.Keylet{}, tx.TefINTERNAL
		}
		if data == nil {
			continue
		}
		pool, err := state.ParseAmmState(data)
		if err != nil {
			return nil, keylet.Keylet{}, tx.TefINTERNAL
		}
		if pool.Market != marketID || pool.AmmNonce != uint8(nonce) {
			return nil, keylet.Keylet{}, tx.TemBAD_DERIVATION
		}
		return pool, k, tx.TesSUCCESS
	}
	return nil, keylet.Keylet{}, tx.TecNO_AMM
}
