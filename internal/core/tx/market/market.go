// Package market implements the bond market registry: creating issuer
// markets with canonical derivation nonces and administering them.
package market

import (
	"github.com/bondledger/bondmarketd/internal/core/keylet"
	"github.com/bondledger/bondmarketd/internal/core/tx"
	"github.com/bondledger/bondmarketd/internal/core/tx/state"
)

// Load locates a market by issuer name, probing derivation nonces the
// same way creation did, and re-checks the stored derivation before
// returning it. An entry whose recorded ID does not match its stored
// nonce is treated as forged.
func Load(view tx.LedgerView, issuerName string) (*state.MarketState, keylet.Keylet, tx.Result) {
	for nonce := 0; nonce < 256; nonce++ {
		k := keylet.Market(issuerName, uint8(nonce))
		data, err := view.Read(k)
		if err != nil {
			return nil, keylet.Keylet{}, tx.TefINTERNAL
		}
		if data == nil {
			continue
		}
		m, err := state.ParseMarketState(data)
		if err != nil {
			return nil, keylet.Keylet{}, tx.TefINTERNAL
		}
		if m.MarketNonce != uint8(nonce) ||
			m.MarketID != keylet.MarketAccountID(issuerName, m.MarketNonce) {
			return nil, keylet.Keylet{}, tx.TemBAD_DERIVATION
		}
		return m, k, tx.TesSUCCESS
	}
	return nil, keylet.Keylet{}, tx.TecNO_ENTRY
}

// Store writes a market entry back to its keylet.
func Store(view tx.LedgerView, k keylet.Keylet, m *state.MarketState) tx.Result {
	data, err := m.Serialize()
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := view.Update(k, data); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}
