package engine

import (
	"github.com/saiputravu/flob/internal/book"
	"github.com/saiputravu/flob/internal/common"
)

// applyContinuous dispatches one event under the continuous double-auction
// protocol.
func (e *Engine) applyContinuous(ev common.Order) {
	switch ev.Kind {
	case common.Cancel:
		e.cancelTarget(ev)
	case common.Modify:
		e.applyModify(ev, e.matchAndRest)
	case common.Limit, common.Market:
		e.matchAndRest(ev)
	}
}

// applyModify cancels the target order and rests a fresh Limit carrying a
// new uid (the modify event's own uid — see DESIGN.md) and a new
// timestamp, which loses time priority. rest is the side-specific
// continuation (matchAndRest in continuous trading, restOnly during
// accumulation).
func (e *Engine) applyModify(ev common.Order, rest func(common.Order)) {
	entry, ok := e.Index.Get(ev.TargetUID)
	if !ok {
		e.recordUnknownOrder(ev)
		return
	}
	side := entry.Side
	e.removeResting(ev.TargetUID, entry)

	fresh := common.Order{
		UID:       ev.UID,
		Side:      side,
		Kind:      common.Limit,
		Price:     ev.Price,
		Quantity:  ev.Quantity,
		Timestamp: ev.Timestamp,
	}
	rest(fresh)
}

// crosses reports whether x (an aggressive Limit/Market order) crosses the
// opposite side's current best price.
func crosses(x common.Order, oppositeBest int64) bool {
	if x.Kind == common.Market {
		return true
	}
	if x.Side == common.Bid {
		return oppositeBest <= x.Price
	}
	return oppositeBest >= x.Price
}

func makeTrade(aggressive, passive common.Order, price int64, qty uint64) common.Trade {
	t := common.Trade{Price: price, Quantity: qty, Timestamp: aggressive.Timestamp}
	if aggressive.Side == common.Bid {
		t.BidUID = aggressive.UID
		t.AskUID = passive.UID
	} else {
		t.BidUID = passive.UID
		t.AskUID = aggressive.UID
	}
	return t
}

// matchAndRest repeatedly crosses x against the opposite side's best price,
// walking price levels in priority order and consuming FIFO within each,
// then rests any Limit remainder on x's own side or discards a Market
// remainder.
func (e *Engine) matchAndRest(x common.Order) {
	opposite := e.oppositeBook(x.Side)
	remaining := x.Quantity

	for remaining > 0 {
		bestPrice, ok := opposite.BestPrice()
		if !ok || !crosses(x, bestPrice) {
			break
		}

		lvl, ok := opposite.PeekLevel(bestPrice)
		if !ok {
			break
		}
		h, ok := lvl.PeekHead()
		if !ok {
			opposite.DropIfEmpty(bestPrice)
			continue
		}

		passive := lvl.Order(h)
		tradeQty := min64(remaining, passive.Quantity)

		trade := makeTrade(x, passive, passive.Price, tradeQty)
		e.trades = append(e.trades, trade)
		e.recordTradeForWindow(trade)

		if err := lvl.Reduce(h, tradeQty); err != nil {
			e.log.Fatal().Err(err).Msg("price level reduce underflow")
		}
		if passive.Quantity == tradeQty {
			e.Index.Delete(passive.UID)
		}
		opposite.DropIfEmpty(bestPrice)

		remaining -= tradeQty
	}

	if remaining == 0 {
		return
	}
	if x.Kind != common.Limit {
		return // Market remainder is discarded, not rested.
	}

	own := e.sideBook(x.Side)
	lvl := own.LevelAt(x.Price)
	resting := x
	resting.Quantity = remaining
	h := lvl.Append(resting)
	e.Index.Put(x.UID, &book.IndexEntry{
		Side:   x.Side,
		Price:  x.Price,
		Handle: h,
		Token:  lvl.Token(h),
	})
}
