package testing

import (
	"testing"

	"github.com/bondledger/bondmarketd/internal/core/keylet"
	"github.com/bondledger/bondmarketd/internal/core/tx"
	"github.com/bondledger/bondmarketd/internal/core/tx/state"
	"github.com/bondledger/bondmarketd/internal/core/tx/token"
)

// TestEnv manages an in-memory ledger for transaction testing: it
// funds accounts, signs and submits transactions, and exposes state
// lookups for assertions.
type TestEnv struct {
	t        *testing.T
	view     *MemoryView
	engine   *tx.Engine
	accounts map[string]*Account
}

// NewTestEnv creates a fresh test environment. Signature verification
// is on: Submit signs every transaction with the account's real keys.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	view := NewMemoryView()
	return &TestEnv{
		t:        t,
		view:     view,
		engine:   tx.NewEngine(view, tx.EngineConfig{LedgerSequence: 1}),
		accounts: make(map[string]*Account),
	}
}

// View returns the underlying ledger view.
func (e *TestEnv) View() *MemoryView {
	return e.view
}

// Fund creates and funds accounts by name, returning them in order.
// Funding an already funded name returns the existing account.
func (e *TestEnv) Fund(names ...string) []*Account {
	e.t.Helper()
	out := make([]*Account, 0, len(names))
	for _, name := range names {
		if acc, ok := e.accounts[name]; ok {
			out = append(out, acc)
			continue
		}
		acc := NewAccount(name)
		root := &state.AccountRoot{AccountID: acc.ID, Sequence: 1}
		data, err := root.Serialize()
		if err != nil {
			e.t.Fatalf("serialize account root: %v", err)
		}
		if err := e.view.Insert(keylet.Account(acc.ID), data); err != nil {
			e.t.Fatalf("fund %s: %v", name, err)
		}
		e.accounts[name] = acc
		out = append(out, acc)
	}
	return out
}

// Account returns a previously funded account.
func (e *TestEnv) Account(name string) *Account {
	e.t.Helper()
	acc, ok := e.accounts[name]
	if !ok {
		e.t.Fatalf("account %s not funded", name)
	}
	return acc
}

// Submit fills in the next sequence number, signs the transaction with
// the signer's keys and applies it.
func (e *TestEnv) Submit(transaction tx.Transaction, signer *Account) tx.ApplyResult {
	e.t.Helper()

	common := transaction.GetCommon()
	if common.Sequence == nil {
		common.SetSequence(e.Sequence(signer))
	}
	if err := tx.SignTransaction(transaction, signer.Keys); err != nil {
		e.t.Fatalf("sign transaction: %v", err)
	}
	return e.engine.Apply(transaction)
}

// Sequence returns the account's current on-ledger sequence number.
func (e *TestEnv) Sequence(acc *Account) uint32 {
	e.t.Helper()
	root := e.AccountRoot(acc)
	return root.Sequence
}

// AccountRoot reads an account root entry, failing the test if absent.
func (e *TestEnv) AccountRoot(acc *Account) *state.AccountRoot {
	e.t.Helper()
	data, err := e.view.Read(keylet.Account(acc.ID))
	if err != nil || data == nil {
		e.t.Fatalf("account root for %s not found", acc.Name)
	}
	root, err := state.ParseAccountRoot(data)
	if err != nil {
		e.t.Fatalf("parse account root: %v", err)
	}
	return root
}

// Balance returns a holder's balance of a mint, zero if no token
// account exists.
func (e *TestEnv) Balance(holder, mint [20]byte) uint64 {
	e.t.Helper()
	bal, err := token.ReadBalance(e.view, holder, mint)
	if err != nil {
		e.t.Fatalf("read balance: %v", err)
	}
	return bal
}

// Mint reads a mint entry, failing the test if absent.
func (e *TestEnv) Mint(mintID [20]byte) *state.Mint {
	e.t.Helper()
	m, err := token.ReadMint(e.view, mintID)
	if err != nil {
		e.t.Fatalf("read mint: %v", err)
	}
	if m == nil {
		e.t.Fatalf("mint not found")
	}
	return m
}

// FindMarket locates a market by issuer name, probing derivation
// nonces the same way creation does.
func (e *TestEnv) FindMarket(issuerName string) *state.MarketState {
	e.t.Helper()
	for nonce := 0; nonce < 256; nonce++ {
		data, err := e.view.Read(keylet.Market(issuerName, uint8(nonce)))
		if err != nil {
			e.t.Fatalf("read market: %v", err)
		}
		if data == nil {
			continue
		}
		m, err := state.ParseMarketState(data)
		if err != nil {
			e.t.Fatalf("parse market state: %v", err)
		}
		return m
	}
	e.t.Fatalf("market %q not found", issuerName)
	return nil
}
