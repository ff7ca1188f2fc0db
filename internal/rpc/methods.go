package rpc

import (
	"context"
	"encoding/hex"
	"encoding/json"

	"github.com/bondledger/bondmarketd/internal/codec/addresscodec"
	"github.com/bondledger/bondmarketd/internal/core/tx"
	"github.com/bondledger/bondmarketd/internal/ledger"
	"github.com/bondledger/bondmarketd/internal/storage/relationaldb"
)

// Services holds what the RPC methods operate on.
type Services struct {
	Ledger  *ledger.Service
	History relationaldb.Store
}

// registerMethods installs all RPC methods.
func registerMethods(registry *MethodRegistry, services *Services) {
	registry.Register("ping", handlePing)
	registry.Register("server_info", serverInfo(services))
	registry.Register("submit", submitTx(services))
	registry.Register("market_info", marketInfo(services))
	registry.Register("markets", listMarkets(services))
	registry.Register("market_trades", marketTrades(services))
	registry.Register("account_info", accountInfo(services))
	registry.Register("balance", balanceOf(services))
}

func handlePing(ctx context.Context, params json.RawMessage) (interface{}, *RpcError) {
	return map[string]string{}, nil
}

func serverInfo(services *Services) HandlerFunc {
	return func(ctx context.Context, params json.RawMessage) (interface{}, *RpcError) {
		return map[string]interface{}{
			"ledger_sequence":     services.Ledger.Sequence(),
			"queued_transactions": services.Ledger.QueuedCount(),
			"complete_ledger":     true,
		}, nil
	}
}

// submitResult is the submit method's response body.
type submitResult struct {
	EngineResult        string `json:"engine_result"`
	EngineResultMessage string `json:"engine_result_message"`
	Applied             bool   `json:"applied"`
	Queued              bool   `json:"queued"`
	TxHash              string `json:"tx_hash"`
}

func submitTx(services *Services) HandlerFunc {
	return func(ctx context.Context, params json.RawMessage) (interface{}, *RpcError) {
		var req struct {
			TxJSON json.RawMessage `json:"tx_json"`
		}
		if err := json.Unmarshal(params, &req); err != nil || len(req.TxJSON) == 0 {
			return nil, errInvalidParams("submit requires tx_json")
		}

		transaction, err := tx.FromJSON(req.TxJSON)
		if err != nil {
			return nil, errInvalidParams("cannot parse tx_json: " + err.Error())
		}

		res := services.Ledger.Submit(ctx, transaction)
		return submitResult{
			EngineResult:        res.Result.String(),
			EngineResultMessage: res.Message,
			Applied:             res.Applied,
			Queued:              res.Result == tx.TerPRE_SEQ,
			TxHash:              hex.EncodeToString(res.TxHash[:]),
		}, nil
	}
}

// marketInfoResult is the market_info response body.
type marketInfoResult struct {
	Market         string `json:"market"`
	Admin          string `json:"admin"`
	VaultAuthority string `json:"vault_authority"`
	BondMint       string `json:"bond_mint"`
	QuoteMint      string `json:"quote_mint"`
	IssuerName     string `json:"issuer_name"`
	Maturity       int64  `json:"maturity_timestamp"`
	CouponRateBps  uint16 `json:"coupon_rate_bps"`
	PricePerToken  uint64 `json:"price_per_token"`
	IsMatured      bool   `json:"is_matured"`
	Paused         bool   `json:"paused"`
	HasPool        bool   `json:"has_pool"`
	BondReserve    uint64 `json:"bond_reserve"`
	QuoteReserve   uint64 `json:"quote_reserve"`
}

func marketInfo(services *Services) HandlerFunc {
	return func(ctx context.Context, params json.RawMessage) (interface{}, *RpcError) {
		var req struct {
			IssuerName string `json:"issuer_name"`
		}
		if err := json.Unmarshal(params, &req); err != nil || req.IssuerName == "" {
			return nil, errInvalidParams("market_info requires issuer_name")
		}

		m, result := services.Ledger.Market(ctx, req.IssuerName)
		if result == tx.TecNO_ENTRY {
			return nil, errNotFound("market not found")
		}
		if !result.IsSuccess() {
			return nil, &RpcError{Code: CodeTxFailed, Message: result.Message(), Data: result.String()}
		}

		hasPool, err := services.Ledger.HasPool(ctx, m.MarketID)
		if err != nil {
			return nil, errInternal(err)
		}
		bondReserve, err := services.Ledger.Balance(ctx, m.AuthorityID, m.BondMint)
		if err != nil {
			return nil, errInternal(err)
		}
		quoteReserve, err := services.Ledger.Balance(ctx, m.AuthorityID, m.QuoteMint)
		if err != nil {
			return nil, errInternal(err)
		}

		return marketInfoResult{
			Market:         addresscodec.EncodeAccountID(m.MarketID),
			Admin:          addresscodec.EncodeAccountID(m.Admin),
			VaultAuthority: addresscodec.EncodeAccountID(m.AuthorityID),
			BondMint:       addresscodec.EncodeAccountID(m.BondMint),
			QuoteMint:      addresscodec.EncodeAccountID(m.QuoteMint),
			IssuerName:     m.IssuerName,
			Maturity:       m.MaturityTimestamp,
			CouponRateBps:  m.CouponRateBps,
			PricePerToken:  m.PricePerToken,
			IsMatured:      m.IsMatured,
			Paused:         m.Paused,
			HasPool:        hasPool,
			BondReserve:    bondReserve,
			QuoteReserve:   quoteReserve,
		}, nil
	}
}

func listMarkets(services *Services) HandlerFunc {
	return func(ctx context.Context, params json.RawMessage) (interface{}, *RpcError) {
		if services.History == nil {
			return nil, &RpcError{Code: CodeInternalError, Message: "history store not configured"}
		}
		markets, err := services.History.Markets(ctx)
		if err != nil {
			return nil, errInternal(err)
		}
		return map[string]interface{}{"markets": markets}, nil
	}
}

func marketTrades(services *Services) HandlerFunc {
	return func(ctx context.Context, params json.RawMessage) (interface{}, *RpcError) {
		if services.History == nil {
			return nil, &RpcError{Code: CodeInternalError, Message: "history store not configured"}
		}
		var req struct {
			Market string `json:"market"`
			Limit  int    `json:"limit"`
		}
		if err := json.Unmarshal(params, &req); err != nil || req.Market == "" {
			return nil, errInvalidParams("market_trades requires market")
		}
		trades, err := services.History.MarketTrades(ctx, req.Market, req.Limit)
		if err != nil {
			return nil, errInternal(err)
		}
		return map[string]interface{}{"trades": trades}, nil
	}
}

func accountInfo(services *Services) HandlerFunc {
	return func(ctx context.Context, params json.RawMessage) (interface{}, *RpcError) {
		var req struct {
			Account string `json:"account"`
		}
		if err := json.Unmarshal(params, &req); err != nil || req.Account == "" {
			return nil, errInvalidParams("account_info requires account")
		}
		accountID, err := addresscodec.DecodeAccountID(req.Account)
		if err != nil {
			return nil, errInvalidParams("invalid account address")
		}
		seq, err := services.Ledger.AccountSequence(ctx, accountID)
		if err != nil {
			return nil, errInternal(err)
		}
		if seq == 0 {
			return nil, errNotFound("account not found")
		}
		return map[string]interface{}{
			"account":  req.Account,
			"sequence": seq,
		}, nil
	}
}

func balanceOf(services *Services) HandlerFunc {
	return func(ctx context.Context, params json.RawMessage) (interface{}, *RpcError) {
		var req struct {
			Account string `json:"account"`
			Mint    string `json:"mint"`
		}
		if err := json.Unmarshal(params, &req); err != nil || req.Account == "" || req.Mint == "" {
			return nil, errInvalidParams("balance requires account and mint")
		}
		accountID, err := addresscodec.DecodeAccountID(req.Account)
		if err != nil {
			return nil, errInvalidParams("invalid account address")
		}
		mintID, err := addresscodec.DecodeAccountID(req.Mint)
		if err != nil {
			return nil, errInvalidParams("invalid mint address")
		}
		balance, err := services.Ledger.Balance(ctx, accountID, mintID)
		if err != nil {
			return nil, errInternal(err)
		}
		return map[string]interface{}{
			"account": req.Account,
			"mint":    req.Mint,
			"balance": balance,
		}, nil
	}
}
