// Package token implements token custody: mints, balances and the
// transfer primitive every market operation settles through.
package token

import (
	"github.com/bondledger/bondmarketd/internal/core/keylet"
	"github.com/bondledger/bondmarketd/internal/core/tx"
	"github.com/bondledger/bondmarketd/internal/core/tx/state"
)

// Authority is permission to move funds out of one holder's token
// accounts. The fields are unexported: an Authority can only be built
// from the engine-verified signer or by re-deriving a market's vault
// authority, never from a caller-supplied address.
type Authority struct {
	holder [20]byte
}

// Holder returns the account this authority can debit.
func (a Authority) Holder() [20]byte {
	return a.holder
}

// Signer returns the authority of the transaction's source account.
// The engine has already verified the signature over this account.
func Signer(ctx *tx.ApplyContext) Authority {
	return Authority{holder: ctx.AccountID}
}

// VaultAuthority re-derives a market's vault authority from the nonce
// stored at creation and checks it against the recorded authority ID.
// A mismatch means the market entry does not belong to the address it
// claims, and nothing may move from its vaults.
func VaultAuthority(m *state.MarketState) (Authority, tx.Result) {
	derived := keylet.AuthorityAccountID(m.MarketID, m.AuthorityNonce)
	if derived != m.AuthorityID {
		return Authority{}, tx.TemBAD_DERIVATION
	}
	return Authority{holder: derived}, tx.TesSUCCESS
}
