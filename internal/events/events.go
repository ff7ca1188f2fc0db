// Package events defines the records published to off-chain observers
// and the publisher interface components emit through. Publication is
// fire-and-forget: no acknowledgment, no state dependency.
package events

// Stream names subscribers can attach to.
const (
	StreamMarkets = "markets"
	StreamTrades  = "trades"
)

// Trade sides.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Event is implemented by every published record.
type Event interface {
	// Stream returns the stream this event belongs to.
	Stream() string
}

// MarketCreated is emitted once when a market registry entry is
// created.
type MarketCreated struct {
	Type       string `json:"type"`
	Market     string `json:"market"`
	BondMint   string `json:"bond_mint"`
	IssuerName string `json:"issuer_name"`
}

func (MarketCreated) Stream() string { return StreamMarkets }

// TradeEvent is emitted for every executed trade. Price is the
// per-unit price in effect at execution time, in quote micro-units.
type TradeEvent struct {
	Type   string `json:"type"`
	Market string `json:"market"`
	Trader string `json:"trader"`
	Side   string `json:"side"`
	Amount uint64 `json:"amount"`
	Price  uint64 `json:"price"`
}

func (TradeEvent) Stream() string { return StreamTrades }

// NewMarketCreated fills in the event type tag.
func NewMarketCreated(market, bondMint, issuerName string) MarketCreated {
	return MarketCreated{
		Type:       "marketCreated",
		Market:     market,
		BondMint:   bondMint,
		IssuerName: issuerName,
	}
}

// NewTrade fills in the event type tag.
func NewTrade(market, trader, side string, amount, price uint64) TradeEvent {
	return TradeEvent{
		Type:   "trade",
		Market: market,
		Trader: trader,
		Side:   side,
		Amount: amount,
		Price:  price,
	}
}

// Publisher delivers events to subscribers.
type Publisher interface {
	Publish(ev Event)
}

// Discard is a Publisher that drops everything. Used where no
// subscriber transport is wired, e.g. tests.
type Discard struct{}

func (Discard) Publish(Event) {}
