package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHubFansOutByStream(t *testing.T) {
	hub := NewHub()
	trades := hub.Subscribe(StreamTrades)
	markets := hub.Subscribe(StreamMarkets)
	all := hub.Subscribe()
	defer trades.Close()
	defer markets.Close()
	defer all.Close()

	trade := NewTrade("rMarket", "rTrader", SideBuy, 10, 2_000_000)
	created := NewMarketCreated("rMarket", "rBond", "ACME Corp")
	hub.Publish(trade)
	hub.Publish(created)

	require.Equal(t, trade, <-trades.C())
	require.Empty(t, trades.C())

	require.Equal(t, created, <-markets.C())
	require.Empty(t, markets.C())

	require.Equal(t, trade, <-all.C())
	require.Equal(t, created, <-all.C())
}

func TestHubClosedSubscriberStopsReceiving(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(StreamTrades)
	sub.Close()

	// Publishing after close must not panic or deliver.
	hub.Publish(NewTrade("rMarket", "rTrader", SideSell, 1, 1))

	_, open := <-sub.C()
	require.False(t, open)
}

func TestHubDropsWhenSubscriberLagging(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(StreamTrades)
	defer sub.Close()

	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Publish(NewTrade("rMarket", "rTrader", SideBuy, uint64(i), 1))
	}

	// The buffer holds the first events; the overflow was dropped, not
	// blocked on.
	require.Len(t, sub.C(), subscriberBuffer)
	first := (<-sub.C()).(TradeEvent)
	require.Zero(t, first.Amount)
}
