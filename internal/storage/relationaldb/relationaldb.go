// Package relationaldb keeps the queryable history of markets and
// trades. The ledger is the source of truth; these tables exist so
// observers can ask questions the key-value state cannot answer.
package relationaldb

import (
	"context"
	"errors"
)

// ErrUnknownDriver is returned for an unrecognized driver name.
var ErrUnknownDriver = errors.New("unknown relationaldb driver")

// Driver names accepted in configuration.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// MarketRow is one market registration.
type MarketRow struct {
	MarketID      string
	Admin         string
	BondMint      string
	QuoteMint     string
	IssuerName    string
	Maturity      int64
	CouponBps     uint16
	CreatedLedger uint32
}

// TradeRow is one executed trade.
type TradeRow struct {
	TxHash         string
	Market         string
	Trader         string
	Side           string
	Amount         uint64
	Price          uint64
	LedgerSequence uint32
}

// Store persists and queries history rows.
type Store interface {
	SaveMarket(ctx context.Context, row MarketRow) error
	SaveTrade(ctx context.Context, row TradeRow) error

	// Markets returns all registered markets, oldest first.
	Markets(ctx context.Context) ([]MarketRow, error)

	// MarketTrades returns the most recent trades for a market, newest
	// first, capped at limit.
	MarketTrades(ctx context.Context, market string, limit int) ([]TradeRow, error)

	Close() error
}

// Open opens the configured history driver. SQLite takes a file path
// (or ":memory:"), postgres a connection string.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQLite(dsn)
	case DriverPostgres:
		return OpenPostgres(dsn)
	default:
		return nil, ErrUnknownDriver
	}
}
