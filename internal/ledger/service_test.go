package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bondledger/bondmarketd/internal/codec/addresscodec"
	"github.com/bondledger/bondmarketd/internal/core/keylet"
	"github.com/bondledger/bondmarketd/internal/core/tx"
	"github.com/bondledger/bondmarketd/internal/core/tx/bond"
	"github.com/bondledger/bondmarketd/internal/core/tx/market"
	"github.com/bondledger/bondmarketd/internal/core/tx/token"
	"github.com/bondledger/bondmarketd/internal/events"
	"github.com/bondledger/bondmarketd/internal/ledger"
	"github.com/bondledger/bondmarketd/internal/storage/keyValueDb/leveldb"
	"github.com/bondledger/bondmarketd/internal/storage/nodestore"
	"github.com/bondledger/bondmarketd/internal/storage/relationaldb"
	testenv "github.com/bondledger/bondmarketd/internal/testing"
)

func newTestService(t *testing.T) (*ledger.Service, *events.Hub, relationaldb.Store) {
	t.Helper()
	db, err := leveldb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := nodestore.New(db, 0)
	require.NoError(t, err)

	history, err := relationaldb.Open(relationaldb.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { history.Close() })

	hub := events.NewHub()
	return ledger.NewService(store, ledger.Options{Publisher: hub, History: history}), hub, history
}

// submit signs with the account's keys and applies through the service.
func submit(t *testing.T, svc *ledger.Service, transaction tx.Transaction, acc *testenv.Account) tx.ApplyResult {
	t.Helper()
	ctx := context.Background()

	seq, err := svc.AccountSequence(ctx, acc.ID)
	require.NoError(t, err)
	transaction.GetCommon().SetSequence(seq)
	require.NoError(t, tx.SignTransaction(transaction, acc.Keys))
	return svc.Submit(ctx, transaction)
}

func TestServiceEndToEnd(t *testing.T) {
	svc, hub, history := newTestService(t)
	ctx := context.Background()

	admin := testenv.NewAccount("admin")
	trader := testenv.NewAccount("trader")
	require.NoError(t, svc.EnsureAccount(ctx, admin.ID))
	require.NoError(t, svc.EnsureAccount(ctx, trader.ID))

	sub := hub.Subscribe()
	defer sub.Close()

	// Quote mint and a fixed-price market.
	res := submit(t, svc, token.NewMintCreate(admin.Address, "USD", 6), admin)
	require.True(t, res.Applied, res.Message)
	quoteAddr := addresscodec.EncodeAccountID(keylet.MintID(admin.ID, "USD"))

	mc := market.NewMarketCreate(admin.Address, "ACME Corp", quoteAddr, 1893456000, 500)
	mc.PricePerToken = 2_000_000
	res = submit(t, svc, mc, admin)
	require.True(t, res.Applied, res.Message)

	m, result := svc.Market(ctx, "ACME Corp")
	require.Equal(t, tx.TesSUCCESS, result)
	vaultAddr := addresscodec.EncodeAccountID(m.AuthorityID)
	bondAddr := addresscodec.EncodeAccountID(m.BondMint)

	// Seed the vaults and the trader.
	res = submit(t, svc, token.NewMintIssue(admin.Address, bondAddr, vaultAddr, 1_000), admin)
	require.True(t, res.Applied, res.Message)
	res = submit(t, svc, token.NewMintIssue(admin.Address, quoteAddr, trader.Address, 20_000_000), admin)
	require.True(t, res.Applied, res.Message)

	res = submit(t, svc, bond.NewBondBuy(trader.Address, "ACME Corp", 5), trader)
	require.True(t, res.Applied, res.Message)

	bal, err := svc.Balance(ctx, trader.ID, m.BondMint)
	require.NoError(t, err)
	require.Equal(t, uint64(5), bal)

	// Events came out in order.
	created, ok := (<-sub.C()).(events.MarketCreated)
	require.True(t, ok)
	require.Equal(t, "ACME Corp", created.IssuerName)
	trade, ok := (<-sub.C()).(events.TradeEvent)
	require.True(t, ok)
	require.Equal(t, uint64(5), trade.Amount)

	// History captured both.
	markets, err := history.Markets(ctx)
	require.NoError(t, err)
	require.Len(t, markets, 1)
	require.Equal(t, created.Market, markets[0].MarketID)
	require.Equal(t, admin.Address, markets[0].Admin)

	trades, err := history.MarketTrades(ctx, created.Market, 10)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	require.Equal(t, uint64(5), trades[0].Amount)
	require.Equal(t, events.SideBuy, trades[0].Side)
}

func TestServiceFailedSubmissionKeepsSequence(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	admin := testenv.NewAccount("admin")
	require.NoError(t, svc.EnsureAccount(ctx, admin.ID))

	before := svc.Sequence()
	res := submit(t, svc, bond.NewBondBuy(admin.Address, "Nobody", 1), admin)
	require.False(t, res.Applied)
	require.Equal(t, tx.TecNO_ENTRY, res.Result)
	require.Equal(t, before, svc.Sequence())
}

func TestServiceQueuesAheadOfSequence(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	admin := testenv.NewAccount("admin")
	require.NoError(t, svc.EnsureAccount(ctx, admin.ID))

	seq, err := svc.AccountSequence(ctx, admin.ID)
	require.NoError(t, err)

	// Submit the second mint first. It is one sequence ahead, so it
	// queues instead of applying.
	ahead := token.NewMintCreate(admin.Address, "EUR", 6)
	ahead.SetSequence(seq + 1)
	require.NoError(t, tx.SignTransaction(ahead, admin.Keys))
	res := svc.Submit(ctx, ahead)
	require.False(t, res.Applied)
	require.Equal(t, tx.TerPRE_SEQ, res.Result)
	require.Equal(t, 1, svc.QueuedCount())

	// Filling the gap applies both.
	current := token.NewMintCreate(admin.Address, "USD", 6)
	current.SetSequence(seq)
	require.NoError(t, tx.SignTransaction(current, admin.Keys))
	res = svc.Submit(ctx, current)
	require.True(t, res.Applied, res.Message)
	require.Zero(t, svc.QueuedCount())

	after, err := svc.AccountSequence(ctx, admin.ID)
	require.NoError(t, err)
	require.Equal(t, seq+2, after)

	// The drained mint exists: recreating it is a duplicate.
	res = submit(t, svc, token.NewMintCreate(admin.Address, "EUR", 6), admin)
	require.False(t, res.Applied)
	require.Equal(t, tx.TecDUPLICATE, res.Result)
}

func TestServiceStatePersistsAcrossServices(t *testing.T) {
	db, err := leveldb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := nodestore.New(db, 0)
	require.NoError(t, err)
	svc := ledger.NewService(store, ledger.Options{})
	ctx := context.Background()

	admin := testenv.NewAccount("admin")
	require.NoError(t, svc.EnsureAccount(ctx, admin.ID))
	res := submit(t, svc, token.NewMintCreate(admin.Address, "USD", 6), admin)
	require.True(t, res.Applied, res.Message)

	// A new service over the same store sees the committed state.
	store2, err := nodestore.New(db, 0)
	require.NoError(t, err)
	svc2 := ledger.NewService(store2, ledger.Options{})

	seq, err := svc2.AccountSequence(ctx, admin.ID)
	require.NoError(t, err)
	require.Equal(t, uint32(2), seq)
}
