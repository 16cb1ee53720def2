package engine

import "github.com/saiputravu/flob/internal/common"

// recordTradeForWindow folds one trade into the aggregator's current
// OHLCV accumulator.
func (e *Engine) recordTradeForWindow(t common.Trade) {
	if !e.windowHasTrade {
		e.windowOpen = t.Price
		e.windowHigh = t.Price
		e.windowLow = t.Price
		e.windowHasTrade = true
	} else {
		if t.Price > e.windowHigh {
			e.windowHigh = t.Price
		}
		if t.Price < e.windowLow {
			e.windowLow = t.Price
		}
	}
	e.windowClose = t.Price
	e.windowVolume += t.Quantity
	e.windowAmount += t.Price * int64(t.Quantity)
}

// fireDueTicks emits every tick whose deadline is ≤ cursor and strictly
// inside the current open interval. Ticks are never emitted during Closed
// gaps.
func (e *Engine) fireDueTicks(cursor int64) {
	if e.snapshotGap <= 0 || e.status == common.Closed || e.tickDeadline == 0 {
		return
	}
	for e.tickDeadline <= cursor && e.tickDeadline < e.intervalEnd {
		e.emitTick(e.tickDeadline)
		e.tickDeadline += e.snapshotGap
	}
}

func (e *Engine) emitTick(ts int64) {
	open, high, low, close := e.prevClose, e.prevClose, e.prevClose, e.prevClose
	if e.windowHasTrade {
		open, high, low, close = e.windowOpen, e.windowHigh, e.windowLow, e.windowClose
	}

	bidPrices, bidVolumes := e.Bids.TopK(e.topK)
	askPrices, askVolumes := e.Asks.TopK(e.topK)

	e.ticks = append(e.ticks, common.Tick{
		Timestamp:  ts,
		Open:       open,
		High:       high,
		Low:        low,
		Close:      close,
		Volume:     e.windowVolume,
		Amount:     e.windowAmount,
		BidPrices:  bidPrices,
		AskPrices:  askPrices,
		BidVolumes: bidVolumes,
		AskVolumes: askVolumes,
	})

	if e.windowHasTrade {
		e.prevClose = close
	}
	e.windowHasTrade = false
	e.windowVolume = 0
	e.windowAmount = 0
}
