package book

import (
	"container/list"

	"github.com/google/uuid"

	"github.com/saiputravu/flob/internal/common"
)

// restingOrder is the payload stored at each FIFO queue node. Token is an
// opaque position-token assigned at rest-time, independent of the
// caller-assigned UID, used by the Order Index to locate an order without
// exposing queue internals.
type restingOrder struct {
	Order common.Order
	Token uuid.UUID
}

// PriceLevel is the insertion-ordered queue of orders resting at one
// (side, price). TotalQuantity is kept incrementally consistent with the
// sum of remaining quantities of its live orders.
//
// The queue itself is a container/list (see DESIGN.md for why the standard
// library is the right tool here).
type PriceLevel struct {
	Side          common.Side
	Price         int64
	TotalQuantity uint64

	orders *list.List
}

// Handle locates one resting order within its PriceLevel's queue.
type Handle = *list.Element

func NewPriceLevel(side common.Side, price int64) *PriceLevel {
	return &PriceLevel{
		Side:  side,
		Price: price,
		orders: list.New(),
	}
}

// Append pushes a new resting order to the tail of the queue.
func (l *PriceLevel) Append(order common.Order) Handle {
	h := l.orders.PushBack(&restingOrder{Order: order, Token: uuid.New()})
	l.TotalQuantity += order.Quantity
	return h
}

// PeekHead returns the earliest resting order, or false if the level is
// empty.
func (l *PriceLevel) PeekHead() (Handle, bool) {
	h := l.orders.Front()
	if h == nil {
		return nil, false
	}
	return h, true
}

func entryOf(h Handle) *restingOrder {
	return h.Value.(*restingOrder)
}

// Order returns the resting order a handle currently points at.
func (l *PriceLevel) Order(h Handle) common.Order {
	return entryOf(h).Order
}

// Token returns the position-token assigned to a handle at rest-time.
func (l *PriceLevel) Token(h Handle) uuid.UUID {
	return entryOf(h).Token
}

// Remove unlinks a resting order and decrements TotalQuantity. Fails with
// ErrNotFound if the handle is stale (already removed from this level).
func (l *PriceLevel) Remove(h Handle) error {
	if h == nil || h.Value == nil {
		return common.ErrNotFound
	}
	ro := entryOf(h)
	l.TotalQuantity -= ro.Order.Quantity
	l.orders.Remove(h)
	h.Value = nil
	return nil
}

// Reduce subtracts delta from the order's remaining quantity and from
// TotalQuantity, removing the order if it reaches zero. Fails with
// ErrUnderflow if delta exceeds the order's remaining quantity.
func (l *PriceLevel) Reduce(h Handle, delta uint64) error {
	if h == nil || h.Value == nil {
		return common.ErrNotFound
	}
	ro := entryOf(h)
	if delta > ro.Order.Quantity {
		return common.ErrUnderflow
	}
	ro.Order.Quantity -= delta
	l.TotalQuantity -= delta
	if ro.Order.Quantity == 0 {
		l.orders.Remove(h)
		h.Value = nil
	}
	return nil
}

// Empty reports whether the level has no remaining live quantity. This must
// coincide exactly with TotalQuantity == 0.
func (l *PriceLevel) Empty() bool {
	return l.TotalQuantity == 0
}

// Orders returns the live resting orders in FIFO order. Used by show()/tests
// only — the matching hot path uses PeekHead/Reduce/Remove.
func (l *PriceLevel) Orders() []common.Order {
	out := make([]common.Order, 0, l.orders.Len())
	for e := l.orders.Front(); e != nil; e = e.Next() {
		out = append(out, entryOf(e).Order)
	}
	return out
}
