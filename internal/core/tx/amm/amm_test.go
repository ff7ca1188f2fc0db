package amm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bondledger/bondmarketd/internal/codec/addresscodec"
	"github.com/bondledger/bondmarketd/internal/core/keylet"
	"github.com/bondledger/bondmarketd/internal/core/tx"
	"github.com/bondledger/bondmarketd/internal/core/tx/amm"
	"github.com/bondledger/bondmarketd/internal/core/tx/market"
	"github.com/bondledger/bondmarketd/internal/core/tx/state"
	"github.com/bondledger/bondmarketd/internal/core/tx/token"
	"github.com/bondledger/bondmarketd/internal/events"
	testenv "github.com/bondledger/bondmarketd/internal/testing"
)

const maturity = int64(1893456000)

// setupPool builds a market with a 1,000,000 quote x 500,000 bond pool
// and a trader holding 100,000 quote tokens.
func setupPool(t *testing.T) (*testenv.TestEnv, *testenv.Account, *testenv.Account, *state.MarketState) {
	t.Helper()
	env := testenv.NewTestEnv(t)
	accs := env.Fund("admin", "trader")
	admin, trader := accs[0], accs[1]

	testenv.RequireSuccess(t, env.Submit(token.NewMintCreate(admin.Address, "USD", 6), admin))
	quoteAddr := addresscodec.EncodeAccountID(keylet.MintID(admin.ID, "USD"))

	testenv.RequireSuccess(t, env.Submit(market.NewMarketCreate(admin.Address, "ACME Corp", quoteAddr, maturity, 500), admin))
	m := env.FindMarket("ACME Corp")
	bondAddr := addresscodec.EncodeAccountID(m.BondMint)

	testenv.RequireSuccess(t, env.Submit(token.NewMintIssue(admin.Address, quoteAddr, admin.Address, 1_000_000), admin))
	testenv.RequireSuccess(t, env.Submit(token.NewMintIssue(admin.Address, bondAddr, admin.Address, 500_000), admin))
	testenv.RequireSuccess(t, env.Submit(token.NewMintIssue(admin.Address, quoteAddr, trader.Address, 100_000), admin))

	testenv.RequireSuccess(t, env.Submit(amm.NewAmmInit(admin.Address, "ACME Corp", 500_000, 1_000_000), admin))
	return env, admin, trader, m
}

func TestAmmInit(t *testing.T) {
	env, admin, _, m := setupPool(t)

	testenv.RequireBalance(t, env, m.AuthorityID, m.QuoteMint, 1_000_000)
	testenv.RequireBalance(t, env, m.AuthorityID, m.BondMint, 500_000)
	testenv.RequireBalance(t, env, admin.ID, m.QuoteMint, 0)
	testenv.RequireBalance(t, env, admin.ID, m.BondMint, 0)

	// A market carries at most one pool.
	res := env.Submit(amm.NewAmmInit(admin.Address, "ACME Corp", 1, 1), admin)
	testenv.RequireResult(t, res, tx.TecDUPLICATE)
}

func TestAmmInitRequiresAdmin(t *testing.T) {
	env, _, trader, _ := setupPool(t)

	res := env.Submit(amm.NewAmmInit(trader.Address, "ACME Corp", 1, 1), trader)
	testenv.RequireResult(t, res, tx.TecDUPLICATE)

	// On a fresh market the non-admin is rejected before the duplicate
	// check can matter.
	admin := env.Account("admin")
	quoteAddr := addresscodec.EncodeAccountID(keylet.MintID(admin.ID, "USD"))
	testenv.RequireSuccess(t, env.Submit(market.NewMarketCreate(admin.Address, "Other Corp", quoteAddr, maturity, 500), admin))
	res = env.Submit(amm.NewAmmInit(trader.Address, "Other Corp", 1, 1), trader)
	testenv.RequireResult(t, res, tx.TecNO_PERMISSION)
}

func TestAmmSwapBuy(t *testing.T) {
	env, _, trader, m := setupPool(t)

	res := env.Submit(amm.NewAmmSwap(trader.Address, "ACME Corp", events.SideBuy, 10_000), trader)
	testenv.RequireSuccess(t, res)

	// Gross output 4,951, fee 14 stays in the bond vault.
	testenv.RequireBalance(t, env, trader.ID, m.BondMint, 4_937)
	testenv.RequireBalance(t, env, trader.ID, m.QuoteMint, 90_000)
	testenv.RequireBalance(t, env, m.AuthorityID, m.QuoteMint, 1_010_000)
	testenv.RequireBalance(t, env, m.AuthorityID, m.BondMint, 495_063)

	require.Len(t, res.Events, 1)
	ev, ok := res.Events[0].(events.TradeEvent)
	require.True(t, ok)
	require.Equal(t, events.SideBuy, ev.Side)
	require.Equal(t, uint64(4_937), ev.Amount)
	require.Equal(t, uint64(2_025_521), ev.Price)
	require.Equal(t, addresscodec.EncodeAccountID(trader.ID), ev.Trader)
	require.Equal(t, events.StreamTrades, ev.Stream())
}

func TestAmmSwapRoundTripLosesValue(t *testing.T) {
	env, _, trader, m := setupPool(t)

	testenv.RequireSuccess(t, env.Submit(amm.NewAmmSwap(trader.Address, "ACME Corp", events.SideBuy, 10_000), trader))
	bonds := env.Balance(trader.ID, m.BondMint)
	require.Positive(t, bonds)

	res := env.Submit(amm.NewAmmSwap(trader.Address, "ACME Corp", events.SideSell, bonds), trader)
	testenv.RequireSuccess(t, res)

	testenv.RequireBalance(t, env, trader.ID, m.BondMint, 0)
	require.Less(t, env.Balance(trader.ID, m.QuoteMint), uint64(100_000))

	ev := res.Events[0].(events.TradeEvent)
	require.Equal(t, events.SideSell, ev.Side)
	require.Equal(t, bonds, ev.Amount)
}

func TestAmmSwapZeroAmount(t *testing.T) {
	env, _, trader, m := setupPool(t)

	res := env.Submit(amm.NewAmmSwap(trader.Address, "ACME Corp", events.SideBuy, 0), trader)
	testenv.RequireSuccess(t, res)
	require.Empty(t, res.Events)
	testenv.RequireBalance(t, env, m.AuthorityID, m.QuoteMint, 1_000_000)
	testenv.RequireBalance(t, env, m.AuthorityID, m.BondMint, 500_000)
	testenv.RequireBalance(t, env, trader.ID, m.QuoteMint, 100_000)
}

func TestAmmSwapPausedMarket(t *testing.T) {
	env, admin, trader, _ := setupPool(t)

	testenv.RequireSuccess(t, env.Submit(market.NewMarketSet(admin.Address, "ACME Corp").WithPaused(true), admin))

	snap := env.View().Snapshot()
	res := env.Submit(amm.NewAmmSwap(trader.Address, "ACME Corp", events.SideBuy, 10_000), trader)
	testenv.RequireResult(t, res, tx.TecMARKET_PAUSED)
	testenv.RequireStateUnchanged(t, env, snap)

	// Unpausing restores trading.
	testenv.RequireSuccess(t, env.Submit(market.NewMarketSet(admin.Address, "ACME Corp").WithPaused(false), admin))
	testenv.RequireSuccess(t, env.Submit(amm.NewAmmSwap(trader.Address, "ACME Corp", events.SideBuy, 10_000), trader))
}

func TestAmmSwapUnfundedTrader(t *testing.T) {
	env, _, trader, _ := setupPool(t)

	snap := env.View().Snapshot()
	res := env.Submit(amm.NewAmmSwap(trader.Address, "ACME Corp", events.SideBuy, 100_001), trader)
	testenv.RequireResult(t, res, tx.TecUNFUNDED)
	testenv.RequireStateUnchanged(t, env, snap)
}

func TestAmmSwapWithoutPool(t *testing.T) {
	env := testenv.NewTestEnv(t)
	admin := env.Fund("admin")[0]
	testenv.RequireSuccess(t, env.Submit(token.NewMintCreate(admin.Address, "USD", 6), admin))
	quoteAddr := addresscodec.EncodeAccountID(keylet.MintID(admin.ID, "USD"))
	testenv.RequireSuccess(t, env.Submit(market.NewMarketCreate(admin.Address, "ACME Corp", quoteAddr, maturity, 500), admin))

	res := env.Submit(amm.NewAmmSwap(admin.Address, "ACME Corp", events.SideBuy, 10), admin)
	testenv.RequireResult(t, res, tx.TecNO_AMM)
}

func TestAmmSwapBadSide(t *testing.T) {
	env, _, trader, _ := setupPool(t)

	res := env.Submit(amm.NewAmmSwap(trader.Address, "ACME Corp", "short", 10), trader)
	testenv.RequireResult(t, res, tx.TemMALFORMED)
}
