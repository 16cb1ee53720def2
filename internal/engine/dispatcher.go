package engine

import (
	"math"

	"github.com/saiputravu/flob/internal/common"
)

// pushPending stably enqueues an event by (timestamp, arrival order).
func (e *Engine) pushPending(o common.Order) {
	o = o.WithArrivalSeq(e.arrivalCounter)
	e.arrivalCounter++
	i := len(e.pending)
	for i > e.pendingCursor {
		prev := e.pending[i-1]
		if prev.Timestamp < o.Timestamp || (prev.Timestamp == o.Timestamp && prev.ArrivalSeq() < o.ArrivalSeq()) {
			break
		}
		i--
	}
	e.pending = append(e.pending, common.Order{})
	copy(e.pending[i+1:], e.pending[i:])
	e.pending[i] = o
}

func (e *Engine) peekPendingTimestamp() (int64, bool) {
	if e.pendingCursor >= len(e.pending) {
		return 0, false
	}
	return e.pending[e.pendingCursor].Timestamp, true
}

func (e *Engine) popPending() common.Order {
	ev := e.pending[e.pendingCursor]
	e.pendingCursor++
	return ev
}

// Until drains pending events whose timestamp is ≤ targetNS, advancing the
// Schedule Engine and the Aggregator alongside them, then leaves the cursor
// at targetNS.
func (e *Engine) Until(targetNS int64) {
	for {
		e.fireDueTicks(e.nowNS)

		if e.scheduleSet && e.status == common.Closed {
			next := e.nextIntervalStartAfter(e.scheduleCursorPos)
			c := targetNS
			if next < c {
				c = next
			}
			if c <= e.scheduleCursorPos {
				e.nowNS = targetNS
				break
			}
			e.advanceScheduleTo(c)
			continue
		}

		tNext, hasNext := e.peekPendingTimestamp()
		c := targetNS
		if hasNext && tNext < c {
			c = tNext
		}
		if c < e.scheduleCursorPos {
			c = e.scheduleCursorPos
		}
		e.advanceScheduleTo(c)

		if e.scheduleSet && e.status == common.Closed {
			// Advancing crossed straight into a gap; let the top of the
			// loop jump the schedule to the next open interval.
			continue
		}

		if hasNext && tNext <= targetNS {
			ev := e.popPending()
			ts := ev.Timestamp
			// Events that arrived during a Closed gap are dispatched once
			// the next interval opens, with their effective timestamp
			// bumped to that interval's start.
			if e.scheduleSet && ts < e.currentIntervalStart() {
				ts = e.currentIntervalStart()
			}
			ev.Timestamp = ts
			e.nowNS = ts
			e.dispatch(ev)
			continue
		}

		e.nowNS = targetNS
		break
	}
	e.fireDueTicks(e.nowNS)
}

// Run replays to the end of the installed schedule (or, with no schedule
// set, drains every pending event). At the end of each CallAuction
// interval, MatchCallAuction fires automatically via advanceScheduleTo
// before the transition is observed by the host.
func (e *Engine) Run() {
	target := int64(math.MaxInt64)
	if e.scheduleSet {
		target = e.schedule[len(e.schedule)-1].EndNS
	} else if n := len(e.pending); n > 0 {
		target = e.pending[n-1].Timestamp
	}
	e.Until(target)
}

func (e *Engine) dispatch(ev common.Order) {
	switch e.status {
	case common.ContinuousTrading:
		e.applyContinuous(ev)
	case common.CallAuction:
		e.applyAuctionAccumulate(ev)
	default:
		// Reached only in the no-schedule, no-SetStatus-yet mode; treat as
		// accumulation (rest or remove, no trades) until the host picks a
		// status.
		e.applyAuctionAccumulate(ev)
	}
}

// GetTransactions returns the full trade tape in emission order. The slice
// is a snapshot; callers may iterate it freely and it is restartable
// (calling GetTransactions again returns the tape as it stands at that
// moment).
func (e *Engine) GetTransactions() []common.Trade {
	out := make([]common.Trade, len(e.trades))
	copy(out, e.trades)
	return out
}

// GetTicks returns every tick emitted so far, in strictly increasing
// timestamp order.
func (e *Engine) GetTicks() []common.Tick {
	out := make([]common.Tick, len(e.ticks))
	copy(out, e.ticks)
	return out
}
