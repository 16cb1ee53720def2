package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiputravu/flob/internal/common"
)

func newTestOrder(uid uint64, qty uint64) common.Order {
	return common.Order{UID: uid, Side: common.Bid, Kind: common.Limit, Price: 100, Quantity: qty, Timestamp: int64(uid)}
}

func TestPriceLevel_AppendTracksTotalQuantity(t *testing.T) {
	lvl := NewPriceLevel(common.Bid, 100)
	lvl.Append(newTestOrder(1, 10))
	lvl.Append(newTestOrder(2, 5))

	assert.Equal(t, uint64(15), lvl.TotalQuantity)
	assert.False(t, lvl.Empty())
}

func TestPriceLevel_PeekHeadIsFIFO(t *testing.T) {
	lvl := NewPriceLevel(common.Bid, 100)
	lvl.Append(newTestOrder(1, 10))
	lvl.Append(newTestOrder(2, 5))

	h, ok := lvl.PeekHead()
	require.True(t, ok)
	assert.Equal(t, uint64(1), lvl.Order(h).UID)
}

func TestPriceLevel_ReduceToZeroRemoves(t *testing.T) {
	lvl := NewPriceLevel(common.Bid, 100)
	lvl.Append(newTestOrder(1, 10))
	h, _ := lvl.PeekHead()

	require.NoError(t, lvl.Reduce(h, 10))
	assert.True(t, lvl.Empty())
	assert.Equal(t, uint64(0), lvl.TotalQuantity)

	_, ok := lvl.PeekHead()
	assert.False(t, ok, "level must be empty after its only order is fully reduced")
}

func TestPriceLevel_ReducePartial(t *testing.T) {
	lvl := NewPriceLevel(common.Bid, 100)
	lvl.Append(newTestOrder(1, 10))
	h, _ := lvl.PeekHead()

	require.NoError(t, lvl.Reduce(h, 4))
	assert.Equal(t, uint64(6), lvl.TotalQuantity)
	assert.Equal(t, uint64(6), lvl.Order(h).Quantity)
}

func TestPriceLevel_ReduceUnderflow(t *testing.T) {
	lvl := NewPriceLevel(common.Bid, 100)
	lvl.Append(newTestOrder(1, 10))
	h, _ := lvl.PeekHead()

	err := lvl.Reduce(h, 11)
	assert.ErrorIs(t, err, common.ErrUnderflow)
	assert.Equal(t, uint64(10), lvl.TotalQuantity, "a failed reduce must not mutate state")
}

func TestPriceLevel_RemoveStaleHandle(t *testing.T) {
	lvl := NewPriceLevel(common.Bid, 100)
	lvl.Append(newTestOrder(1, 10))
	h, _ := lvl.PeekHead()

	require.NoError(t, lvl.Remove(h))
	err := lvl.Remove(h)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPriceLevel_OrdersReflectsLiveFIFO(t *testing.T) {
	lvl := NewPriceLevel(common.Ask, 200)
	lvl.Append(newTestOrder(1, 10))
	lvl.Append(newTestOrder(2, 20))
	lvl.Append(newTestOrder(3, 30))

	h, _ := lvl.PeekHead()
	require.NoError(t, lvl.Remove(h))

	uids := make([]uint64, 0, 2)
	for _, o := range lvl.Orders() {
		uids = append(uids, o.UID)
	}
	assert.Equal(t, []uint64{2, 3}, uids)
}

func TestPriceLevel_TokenIsStablePerHandle(t *testing.T) {
	lvl := NewPriceLevel(common.Bid, 100)
	lvl.Append(newTestOrder(1, 10))
	h1, _ := lvl.PeekHead()
	tok1 := lvl.Token(h1)

	lvl.Append(newTestOrder(2, 10))
	assert.Equal(t, tok1, lvl.Token(h1), "appending a sibling order must not disturb an existing handle's token")
}
