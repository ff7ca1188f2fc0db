package relationaldb

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS markets (
	market_id      TEXT PRIMARY KEY,
	admin          TEXT NOT NULL,
	bond_mint      TEXT NOT NULL,
	quote_mint     TEXT NOT NULL,
	issuer_name    TEXT NOT NULL,
	maturity       BIGINT NOT NULL,
	coupon_bps     INTEGER NOT NULL,
	created_ledger BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS trades (
	tx_hash         TEXT PRIMARY KEY,
	market          TEXT NOT NULL,
	trader          TEXT NOT NULL,
	side            TEXT NOT NULL,
	amount          BIGINT NOT NULL,
	price           BIGINT NOT NULL,
	ledger_sequence BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS trades_market_idx ON trades (market, ledger_sequence);
`

// sqlStore implements Store over database/sql. Queries are written
// with ? placeholders and rebound for drivers that use $n.
type sqlStore struct {
	db     *sql.DB
	rebind func(string) string
}

// OpenSQLite opens a file-backed (or ":memory:") SQLite history store.
func OpenSQLite(path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", path, err)
	}
	// The modernc driver mishandles concurrent writes on one file.
	db.SetMaxOpenConns(1)
	return newSQLStore(db, func(q string) string { return q })
}

// OpenPostgres opens a PostgreSQL history store.
func OpenPostgres(dsn string) (Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return newSQLStore(db, rebindDollar)
}

func newSQLStore(db *sql.DB, rebind func(string) string) (Store, error) {
	s := &sqlStore{db: db, rebind: rebind}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return s, nil
}

// rebindDollar rewrites ? placeholders to $1..$n.
func rebindDollar(q string) string {
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) SaveMarket(ctx context.Context, row MarketRow) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO markets (market_id, admin, bond_mint, quote_mint, issuer_name, maturity, coupon_bps, created_ledger)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		row.MarketID, row.Admin, row.BondMint, row.QuoteMint, row.IssuerName,
		row.Maturity, int64(row.CouponBps), int64(row.CreatedLedger))
	return err
}

func (s *sqlStore) SaveTrade(ctx context.Context, row TradeRow) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO trades (tx_hash, market, trader, side, amount, price, ledger_sequence)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		row.TxHash, row.Market, row.Trader, row.Side,
		int64(row.Amount), int64(row.Price), int64(row.LedgerSequence))
	return err
}

func (s *sqlStore) Markets(ctx context.Context) ([]MarketRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT market_id, admin, bond_mint, quote_mint, issuer_name, maturity, coupon_bps, created_ledger
		 FROM markets ORDER BY created_ledger, market_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MarketRow
	for rows.Next() {
		var r MarketRow
		var couponBps, createdLedger int64
		if err := rows.Scan(&r.MarketID, &r.Admin, &r.BondMint, &r.QuoteMint,
			&r.IssuerName, &r.Maturity, &couponBps, &createdLedger); err != nil {
			return nil, err
		}
		r.CouponBps = uint16(couponBps)
		r.CreatedLedger = uint32(createdLedger)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqlStore) MarketTrades(ctx context.Context, market string, limit int) ([]TradeRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT tx_hash, market, trader, side, amount, price, ledger_sequence
		 FROM trades WHERE market = ? ORDER BY ledger_sequence DESC, tx_hash LIMIT ?`),
		market, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRow
	for rows.Next() {
		var r TradeRow
		var amount, price, ledgerSeq int64
		if err := rows.Scan(&r.TxHash, &r.Market, &r.Trader, &r.Side,
			&amount, &price, &ledgerSeq); err != nil {
			return nil, err
		}
		r.Amount = uint64(amount)
		r.Price = uint64(price)
		r.LedgerSequence = uint32(ledgerSeq)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
