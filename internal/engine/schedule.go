package engine

import (
	"math"

	"github.com/saiputravu/flob/internal/common"
)

// SetSchedule installs the trading-session schedule the dispatcher drives
// the cursor through in Until/Run. Intervals must be non-overlapping and
// sorted by StartNS, or ErrInvalidSchedule is returned and the prior
// schedule (if any) is left intact.
func (e *Engine) SetSchedule(intervals []common.SessionInterval) error {
	for i, iv := range intervals {
		if iv.EndNS <= iv.StartNS {
			return common.ErrInvalidSchedule
		}
		if i > 0 && iv.StartNS < intervals[i-1].EndNS {
			return common.ErrInvalidSchedule
		}
	}

	e.schedule = append([]common.SessionInterval(nil), intervals...)
	e.scheduleSet = len(e.schedule) > 0
	e.scheduleCursorPos = e.nowNS
	e.status, _ = e.statusAt(e.scheduleCursorPos)
	if e.status != common.Closed {
		idx := e.intervalIndexAt(e.scheduleCursorPos)
		e.enterInterval(e.schedule[idx])
	}
	return nil
}

// SetStatus forces the current status, bypassing the schedule — the mode
// example.py's manual pre-opening/morning/afternoon/closing walk uses.
func (e *Engine) SetStatus(s common.Status) {
	e.status = s
	if s != common.Closed {
		e.intervalStart = e.nowNS
		e.intervalEnd = math.MaxInt64
		e.resetTickDeadline()
	}
}

// SetSnapshotGap configures the aggregator's emission cadence in
// nanoseconds. A gap of 0 disables tick emission.
func (e *Engine) SetSnapshotGap(ns int64) {
	e.snapshotGap = ns
	if e.status != common.Closed {
		e.resetTickDeadline()
	}
}

// SetTopK configures the per-side depth captured in each tick.
func (e *Engine) SetTopK(k int) {
	e.topK = k
}

func (e *Engine) statusAt(pos int64) (common.Status, int) {
	for i, iv := range e.schedule {
		if pos >= iv.StartNS && pos < iv.EndNS {
			return iv.Status, i
		}
	}
	return common.Closed, -1
}

func (e *Engine) intervalIndexAt(pos int64) int {
	_, idx := e.statusAt(pos)
	return idx
}

// nextIntervalStartAfter returns the StartNS of the first interval
// beginning strictly after pos, or math.MaxInt64 if none remain.
func (e *Engine) nextIntervalStartAfter(pos int64) int64 {
	best := int64(math.MaxInt64)
	for _, iv := range e.schedule {
		if iv.StartNS > pos && iv.StartNS < best {
			best = iv.StartNS
		}
	}
	return best
}

// currentIntervalStart returns the StartNS of the interval the cursor is
// presently inside (only meaningful while status != Closed).
func (e *Engine) currentIntervalStart() int64 {
	return e.intervalStart
}

// enterInterval updates interval bookkeeping (used for tick reference
// pricing and the next-tick deadline) when the cursor moves into a
// non-Closed interval.
func (e *Engine) enterInterval(iv common.SessionInterval) {
	e.intervalStart = iv.StartNS
	e.intervalEnd = iv.EndNS
	e.resetTickDeadline()
}

func (e *Engine) resetTickDeadline() {
	e.windowHasTrade = false
	e.windowVolume = 0
	e.windowAmount = 0
	if e.snapshotGap > 0 {
		e.tickDeadline = e.intervalStart + e.snapshotGap
	} else {
		e.tickDeadline = 0
	}
}

// advanceScheduleTo moves the schedule cursor forward to target,
// crossing interval boundaries one at a time so each transition — in
// particular a CallAuction interval's implicit close — fires at its exact
// boundary timestamp.
func (e *Engine) advanceScheduleTo(target int64) {
	if !e.scheduleSet {
		e.scheduleCursorPos = target
		return
	}

	for e.scheduleCursorPos < target {
		status, idx := e.statusAt(e.scheduleCursorPos)

		var regimeEnd int64
		if idx >= 0 {
			regimeEnd = e.schedule[idx].EndNS
		} else {
			regimeEnd = e.nextIntervalStartAfter(e.scheduleCursorPos)
		}

		if regimeEnd > target {
			e.scheduleCursorPos = target
			e.status = status
			return
		}

		e.scheduleCursorPos = regimeEnd
		newStatus, newIdx := e.statusAt(regimeEnd)

		if status == common.CallAuction && newStatus != common.CallAuction {
			e.matchCallAuctionAt(regimeEnd)
		}
		if newStatus != status {
			e.log.Info().
				Str("from", status.String()).
				Str("to", newStatus.String()).
				Int64("ts", regimeEnd).
				Msg("session transition")
		}
		e.status = newStatus
		if newStatus != common.Closed {
			e.enterInterval(e.schedule[newIdx])
		}
	}

	e.status, _ = e.statusAt(e.scheduleCursorPos)
}
