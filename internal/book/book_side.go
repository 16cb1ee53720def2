package book

import (
	"github.com/tidwall/btree"

	"github.com/saiputravu/flob/internal/common"
)

// BookSide is a price-sorted collection of Price Levels for one side of the
// book: descending by price for Bids, ascending for Asks, backed by a
// btree.BTreeG[*PriceLevel] with a comparator fixed per side at construction.
type BookSide struct {
	side common.Side
	tree *btree.BTreeG[*PriceLevel]
}

func NewBookSide(side common.Side) *BookSide {
	var less func(a, b *PriceLevel) bool
	if side == common.Bid {
		less = func(a, b *PriceLevel) bool { return a.Price > b.Price }
	} else {
		less = func(a, b *PriceLevel) bool { return a.Price < b.Price }
	}
	return &BookSide{side: side, tree: btree.NewBTreeG(less)}
}

// BestPrice returns the best (highest Bid / lowest Ask) price, or false if
// the side is empty, using the ordinary Go two-result idiom rather than a
// sentinel error.
func (b *BookSide) BestPrice() (int64, bool) {
	lvl, ok := b.tree.Min()
	if !ok {
		return 0, false
	}
	return lvl.Price, true
}

// LevelAt returns the mutable Price Level at price, creating an empty one
// on first insertion.
func (b *BookSide) LevelAt(price int64) *PriceLevel {
	probe := &PriceLevel{Price: price}
	if lvl, ok := b.tree.Get(probe); ok {
		return lvl
	}
	lvl := NewPriceLevel(b.side, price)
	b.tree.Set(lvl)
	return lvl
}

// PeekLevel returns the Price Level at price without creating it.
func (b *BookSide) PeekLevel(price int64) (*PriceLevel, bool) {
	return b.tree.Get(&PriceLevel{Price: price})
}

// DropIfEmpty removes the level at price if it has no remaining quantity.
// Levels must be removed eagerly so BestPrice/iteration never observe a
// dead level.
func (b *BookSide) DropIfEmpty(price int64) {
	if lvl, ok := b.tree.Get(&PriceLevel{Price: price}); ok && lvl.Empty() {
		b.tree.Delete(lvl)
	}
}

// IterFromBest walks levels in priority order, stopping early if fn returns
// false. Restartable: each call starts a fresh scan from the best price.
func (b *BookSide) IterFromBest(fn func(*PriceLevel) bool) {
	b.tree.Scan(fn)
}

// TopK returns up to k (price, total_quantity) pairs in priority order,
// padded with the sentinel (0, 0) if fewer than k levels exist.
func (b *BookSide) TopK(k int) (prices []int64, volumes []uint64) {
	prices = make([]int64, k)
	volumes = make([]uint64, k)
	i := 0
	b.tree.Scan(func(lvl *PriceLevel) bool {
		if i >= k {
			return false
		}
		prices[i] = lvl.Price
		volumes[i] = lvl.TotalQuantity
		i++
		return true
	})
	return prices, volumes
}

// Items returns every live Price Level in priority order. Intended for
// diagnostics (show()) and tests, not the matching hot path.
func (b *BookSide) Items() []*PriceLevel {
	out := make([]*PriceLevel, 0, b.tree.Len())
	b.tree.Scan(func(lvl *PriceLevel) bool {
		out = append(out, lvl)
		return true
	})
	return out
}

// Len reports the number of live price levels.
func (b *BookSide) Len() int {
	return b.tree.Len()
}
