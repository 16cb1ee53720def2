package engine

import (
	"testing"

	"github.com/saiputravu/flob/internal/common"
)

// newContinuousEngine returns an engine forced into ContinuousTrading with
// no schedule installed.
func newContinuousEngine() *Engine {
	e := New()
	e.SetStatus(common.ContinuousTrading)
	return e
}

// feed pushes every event onto the pending queue, in the order given, and
// drains them by advancing the cursor past the last event's timestamp.
func feed(e *Engine, events ...common.Order) {
	var maxTS int64
	for _, ev := range events {
		e.pushPending(ev)
		if ev.Timestamp > maxTS {
			maxTS = ev.Timestamp
		}
	}
	e.Until(maxTS + 1)
}

func bid(uid uint64, price int64, qty uint64, ts int64) common.Order {
	return common.Order{UID: uid, Side: common.Bid, Kind: common.Limit, Price: price, Quantity: qty, Timestamp: ts}
}

func ask(uid uint64, price int64, qty uint64, ts int64) common.Order {
	return common.Order{UID: uid, Side: common.Ask, Kind: common.Limit, Price: price, Quantity: qty, Timestamp: ts}
}
