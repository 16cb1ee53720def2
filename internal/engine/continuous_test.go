package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiputravu/flob/internal/common"
)

// TestContinuous_SimpleCross checks a straightforward partial fill: the
// resting order's remainder keeps resting, the incoming order is fully
// consumed.
func TestContinuous_SimpleCross(t *testing.T) {
	e := newContinuousEngine()
	feed(e,
		bid(1, 10000, 10, 0),
		ask(2, 10000, 6, 1),
	)

	trades := e.GetTransactions()
	require.Len(t, trades, 1)
	assert.Equal(t, common.Trade{BidUID: 1, AskUID: 2, Price: 10000, Quantity: 6, Timestamp: 1}, trades[0])

	entry, ok := e.Index.Get(1)
	require.True(t, ok, "order 1 must rest with its remainder")
	assert.Equal(t, int64(10000), entry.Price)
	lvl, _ := e.Bids.PeekLevel(10000)
	assert.Equal(t, uint64(4), lvl.TotalQuantity)

	_, ok = e.Index.Get(2)
	assert.False(t, ok, "order 2 fully matched and must not remain resting")
}

// TestContinuous_PriceTimePriority checks that two bids resting at the same
// price are consumed in arrival order, not UID order.
func TestContinuous_PriceTimePriority(t *testing.T) {
	e := newContinuousEngine()
	feed(e,
		bid(1, 10000, 5, 0),
		bid(2, 10000, 5, 1),
		ask(3, 10000, 5, 2),
	)

	trades := e.GetTransactions()
	require.Len(t, trades, 1)
	assert.Equal(t, common.Trade{BidUID: 1, AskUID: 3, Price: 10000, Quantity: 5, Timestamp: 2}, trades[0])

	_, ok := e.Index.Get(1)
	assert.False(t, ok, "earlier-queued order 1 must be fully consumed first")

	entry, ok := e.Index.Get(2)
	require.True(t, ok, "later-queued order 2 must still be resting")
	assert.Equal(t, common.Bid, entry.Side)
}

// TestContinuous_Cancel checks that a cancelled order leaves no trace on
// its side and never participates in a later cross.
func TestContinuous_Cancel(t *testing.T) {
	e := newContinuousEngine()
	feed(e,
		bid(1, 10000, 10, 0),
		common.Order{UID: 99, Side: common.Bid, Kind: common.Cancel, TargetUID: 1, Timestamp: 1},
		ask(2, 10000, 5, 2),
	)

	assert.Empty(t, e.GetTransactions())
	assert.Equal(t, 0, e.Bids.Len(), "cancelled order must leave the bid side empty")

	entry, ok := e.Index.Get(2)
	require.True(t, ok, "order 2 has no opposite liquidity left to cross and must rest")
	assert.Equal(t, common.Ask, entry.Side)
}

// TestContinuous_MarketSweep checks a Market order walking two ask levels
// and discarding its unfilled remainder instead of resting.
func TestContinuous_MarketSweep(t *testing.T) {
	e := newContinuousEngine()
	feed(e,
		ask(1, 101, 3, 0),
		ask(2, 102, 4, 1),
		common.Order{UID: 3, Side: common.Bid, Kind: common.Market, Quantity: 10, Timestamp: 2},
	)

	trades := e.GetTransactions()
	require.Len(t, trades, 2)
	assert.Equal(t, common.Trade{BidUID: 3, AskUID: 1, Price: 101, Quantity: 3, Timestamp: 2}, trades[0])
	assert.Equal(t, common.Trade{BidUID: 3, AskUID: 2, Price: 102, Quantity: 4, Timestamp: 2}, trades[1])

	assert.Equal(t, 0, e.Asks.Len(), "both ask levels were fully consumed")
	assert.Equal(t, 0, e.Bids.Len(), "a market order's unfilled remainder is discarded, never rested")
}

func TestContinuous_CancelUnknownTargetIsRecoverable(t *testing.T) {
	e := newContinuousEngine()
	feed(e, common.Order{UID: 99, Side: common.Bid, Kind: common.Cancel, TargetUID: 404, Timestamp: 0})

	assert.Equal(t, uint64(1), e.UnknownOrderCount())
	assert.Empty(t, e.GetTransactions())
}

func TestContinuous_ModifyResetsTimePriority(t *testing.T) {
	e := newContinuousEngine()
	feed(e,
		bid(1, 10000, 5, 0),
		bid(2, 10000, 5, 1),
		// Modify order 1 back to the same price/quantity: it must re-queue
		// behind order 2 despite being numerically unchanged.
		common.Order{UID: 11, Side: common.Bid, Kind: common.Modify, TargetUID: 1, Price: 10000, Quantity: 5, Timestamp: 2},
		ask(3, 10000, 5, 3),
	)

	trades := e.GetTransactions()
	require.Len(t, trades, 1)
	assert.Equal(t, uint64(2), trades[0].BidUID, "order 2 kept priority since the modify re-queued order 1's replacement behind it")

	_, ok := e.Index.Get(1)
	assert.False(t, ok, "the original uid 1 is gone after modify")
	entry, ok := e.Index.Get(11)
	require.True(t, ok, "the modify's own uid becomes the fresh resting order's identity")
	assert.Equal(t, common.Bid, entry.Side)
}

func TestContinuous_ModifyUnknownTargetIsRecoverable(t *testing.T) {
	e := newContinuousEngine()
	feed(e, common.Order{UID: 50, Side: common.Bid, Kind: common.Modify, TargetUID: 404, Price: 100, Quantity: 1, Timestamp: 0})

	assert.Equal(t, uint64(1), e.UnknownOrderCount())
	_, ok := e.Index.Get(50)
	assert.False(t, ok, "a modify with no target must not insert anything")
}
