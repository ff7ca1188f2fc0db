package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/bondledger/bondmarketd/internal/codec/addresscodec"
	"github.com/bondledger/bondmarketd/internal/core/keylet"
	"github.com/bondledger/bondmarketd/internal/core/tx"
	_ "github.com/bondledger/bondmarketd/internal/core/tx/all"
	"github.com/bondledger/bondmarketd/internal/core/tx/market"
	"github.com/bondledger/bondmarketd/internal/core/tx/token"
	"github.com/bondledger/bondmarketd/internal/events"
	"github.com/bondledger/bondmarketd/internal/ledger"
	"github.com/bondledger/bondmarketd/internal/storage/keyValueDb/leveldb"
	"github.com/bondledger/bondmarketd/internal/storage/nodestore"
	"github.com/bondledger/bondmarketd/internal/storage/relationaldb"
	testenv "github.com/bondledger/bondmarketd/internal/testing"
)

type testServer struct {
	http    *httptest.Server
	service *ledger.Service
}

func newTestServer(t *testing.T) *testServer {
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
	service := ledger.NewService(store, ledger.Options{Publisher: hub, History: history})

	server := NewServer(&Services{Ledger: service, History: history}, hub)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return &testServer{http: ts, service: service}
}

// call performs one JSON-RPC request and decodes the result into out.
func (ts *testServer) call(t *testing.T, method string, params interface{}, out interface{}) *RpcError {
	t.Helper()

	rawParams, err := json.Marshal(params)
	require.NoError(t, err)
	body, err := json.Marshal(JsonRpcRequest{JsonRpc: "2.0", Method: method, Params: rawParams, ID: 1})
	require.NoError(t, err)

	resp, err := http.Post(ts.http.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *RpcError       `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpcResp))
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if out != nil {
		require.NoError(t, json.Unmarshal(rpcResp.Result, out))
	}
	return nil
}

// submit signs and submits a transaction over RPC, requiring success.
func (ts *testServer) submit(t *testing.T, transaction tx.Transaction, acc *testenv.Account) submitResult {
	t.Helper()

	seq, err := ts.service.AccountSequence(context.Background(), acc.ID)
	require.NoError(t, err)
	transaction.GetCommon().SetSequence(seq)
	require.NoError(t, tx.SignTransaction(transaction, acc.Keys))

	txJSON, err := tx.ToJSON(transaction)
	require.NoError(t, err)

	var res submitResult
	rpcErr := ts.call(t, "submit", map[string]json.RawMessage{"tx_json": txJSON}, &res)
	require.Nil(t, rpcErr)
	return res
}

func TestPing(t *testing.T) {
	ts := newTestServer(t)
	require.Nil(t, ts.call(t, "ping", map[string]string{}, nil))
}

func TestMethodNotFound(t *testing.T) {
	ts := newTestServer(t)
	rpcErr := ts.call(t, "teleport", map[string]string{}, nil)
	require.NotNil(t, rpcErr)
	require.Equal(t, CodeMethodNotFound, rpcErr.Code)
}

func TestSubmitAndQuery(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	admin := testenv.NewAccount("admin")
	require.NoError(t, ts.service.EnsureAccount(ctx, admin.ID))

	res := ts.submit(t, token.NewMintCreate(admin.Address, "USD", 6), admin)
	require.True(t, res.Applied, res.EngineResultMessage)
	require.Equal(t, "tesSUCCESS", res.EngineResult)
	quoteAddr := addresscodec.EncodeAccountID(keylet.MintID(admin.ID, "USD"))

	mc := market.NewMarketCreate(admin.Address, "ACME Corp", quoteAddr, 1893456000, 500)
	mc.PricePerToken = 2_000_000
	res = ts.submit(t, mc, admin)
	require.True(t, res.Applied, res.EngineResultMessage)

	var info marketInfoResult
	require.Nil(t, ts.call(t, "market_info", map[string]string{"issuer_name": "ACME Corp"}, &info))
	require.Equal(t, "ACME Corp", info.IssuerName)
	require.Equal(t, admin.Address, info.Admin)
	require.Equal(t, uint64(2_000_000), info.PricePerToken)
	require.False(t, info.HasPool)

	// Unknown market.
	rpcErr := ts.call(t, "market_info", map[string]string{"issuer_name": "Nobody"}, nil)
	require.NotNil(t, rpcErr)
	require.Equal(t, CodeNotFound, rpcErr.Code)

	// markets comes from history.
	var markets struct {
		Markets []relationaldb.MarketRow `json:"markets"`
	}
	require.Nil(t, ts.call(t, "markets", map[string]string{}, &markets))
	require.Len(t, markets.Markets, 1)
	require.Equal(t, "ACME Corp", markets.Markets[0].IssuerName)

	// account_info and balance.
	var acct struct {
		Sequence uint32 `json:"sequence"`
	}
	require.Nil(t, ts.call(t, "account_info", map[string]string{"account": admin.Address}, &acct))
	require.Equal(t, uint32(3), acct.Sequence)

	vault := info.VaultAuthority
	bondAddr := info.BondMint
	res = ts.submit(t, token.NewMintIssue(admin.Address, bondAddr, vault, 100), admin)
	require.True(t, res.Applied, res.EngineResultMessage)

	var bal struct {
		Balance uint64 `json:"balance"`
	}
	require.Nil(t, ts.call(t, "balance", map[string]string{"account": vault, "mint": bondAddr}, &bal))
	require.Equal(t, uint64(100), bal.Balance)
}

func TestSubmitRejectionSurfacesResultCode(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	admin := testenv.NewAccount("admin")
	require.NoError(t, ts.service.EnsureAccount(ctx, admin.ID))

	seq, err := ts.service.AccountSequence(ctx, admin.ID)
	require.NoError(t, err)
	transaction := token.NewMintIssue(admin.Address, addresscodec.EncodeAccountID(keylet.MintID(admin.ID, "GONE")), admin.Address, 5)
	transaction.SetSequence(seq)
	require.NoError(t, tx.SignTransaction(transaction, admin.Keys))
	txJSON, err := tx.ToJSON(transaction)
	require.NoError(t, err)

	var res submitResult
	require.Nil(t, ts.call(t, "submit", map[string]json.RawMessage{"tx_json": txJSON}, &res))
	require.False(t, res.Applied)
	require.Equal(t, "tecNO_ENTRY", res.EngineResult)
}

func TestWebsocketSubscribe(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	admin := testenv.NewAccount("admin")
	require.NoError(t, ts.service.EnsureAccount(ctx, admin.ID))

	wsURL := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(subscribeCommand{Command: "subscribe", Streams: []string{events.StreamMarkets}}))

	var ack map[string]string
	require.NoError(t, conn.ReadJSON(&ack))
	require.Equal(t, "success", ack["status"])

	// Creating a market pushes a marketCreated event to the stream.
	res := ts.submit(t, token.NewMintCreate(admin.Address, "USD", 6), admin)
	require.True(t, res.Applied, res.EngineResultMessage)
	quoteAddr := addresscodec.EncodeAccountID(keylet.MintID(admin.ID, "USD"))
	res = ts.submit(t, market.NewMarketCreate(admin.Address, "ACME Corp", quoteAddr, 1893456000, 500), admin)
	require.True(t, res.Applied, res.EngineResultMessage)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev events.MarketCreated
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, "marketCreated", ev.Type)
	require.Equal(t, "ACME Corp", ev.IssuerName)
}
