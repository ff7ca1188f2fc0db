package token

import (
	"github.com/bondledger/bondmarketd/internal/core/keylet"
	"github.com/bondledger/bondmarketd/internal/core/tx"
	"github.com/bondledger/bondmarketd/internal/core/tx/state"
)

// ReadBalance returns the holder's balance of a mint. A missing token
// account reads as zero.
func ReadBalance(view tx.LedgerView, holder, mint [20]byte) (uint64, error) {
	data, err := view.Read(keylet.TokenAccount(holder, mint))
	if err != nil {
		return 0, err
	}
	if data == nil {
		return 0, nil
	}
	ta, err := state.ParseTokenAccount(data)
	if err != nil {
		return 0, err
	}
	return ta.Balance, nil
}

// Transfer moves amount of mint from one holder to another. The
// authority must cover the source account. A zero amount is a no-op
// that still succeeds.
func Transfer(view tx.LedgerView, auth Authority, from, to, mint [20]byte, amount uint64) tx.Result {
	if auth.holder != from {
		return tx.TefBAD_AUTH
	}
	if amount == 0 {
		return tx.TesSUCCESS
	}

	srcKey := keylet.TokenAccount(from, mint)
	data, err := view.Read(srcKey)
	if err != nil {
		return tx.TefINTERNAL
	}
	if data == nil {
		return tx.TecUNFUNDED
	}
	src, err := state.ParseTokenAccount(data)
	if err != nil {
		return tx.TefINTERNAL
	}
	if src.Balance < amount {
		return tx.TecUNFUNDED
	}
	src.Balance -= amount

	serialized, err := src.Serialize()
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := view.Update(srcKey, serialized); err != nil {
		return tx.TecTRANSFER_FAILED
	}

	return Credit(view, to, mint, amount)
}

// Credit adds amount of mint to a holder's token account, creating the
// account if it does not exist yet.
func Credit(view tx.LedgerView, holder, mint [20]byte, amount uint64) tx.Result {
	if amount == 0 {
		return tx.TesSUCCESS
	}

	key := keylet.TokenAccount(holder, mint)
	data, err := view.Read(key)
	if err != nil {
		return tx.TefINTERNAL
	}

	if data == nil {
		ta := &state.TokenAccount{Holder: holder, Mint: mint, Balance: amount}
		serialized, err := ta.Serialize()
		if err != nil {
			return tx.TefINTERNAL
		}
		if err := view.Insert(key, serialized); err != nil {
			return tx.TecTRANSFER_FAILED
		}
		return tx.TesSUCCESS
	}

	ta, err := state.ParseTokenAccount(data)
	if err != nil {
		return tx.TefINTERNAL
	}
	if ta.Balance+amount < ta.Balance {
		return tx.TecMATH_OVERFLOW
	}
	ta.Balance += amount

	serialized, err := ta.Serialize()
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := view.Update(key, serialized); err != nil {
		return tx.TecTRANSFER_FAILED
	}
	return tx.TesSUCCESS
}

// ReadMint loads a mint entry, or nil if it does not exist.
func ReadMint(view tx.LedgerView, mintID [20]byte) (*state.Mint, error) {
	data, err := view.Read(keylet.Mint(mintID))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return state.ParseMint(data)
}
