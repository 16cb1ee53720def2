// Package engine implements the matching engine: the dual priority book
// (internal/book), the continuous and call-auction matching protocols, the
// event dispatcher/schedule engine that drives the book through an A-share
// trading-session schedule, and the snapshot/tick aggregator.
//
// The engine is single-threaded and synchronous: there are no goroutines or
// channels here, and Until/Run block the caller until the requested cursor
// is reached.
package engine

import (
	"math"
	"os"

	"github.com/rs/zerolog"

	"github.com/saiputravu/flob/internal/book"
	"github.com/saiputravu/flob/internal/common"
	"github.com/saiputravu/flob/internal/fixedpoint"
)

// DefaultTopK is the default depth the tick aggregator captures per side.
const DefaultTopK = 5

// Engine owns one book, one trade tape and one tick buffer. It is not safe
// for concurrent use.
type Engine struct {
	Bids  *book.BookSide
	Asks  *book.BookSide
	Index *book.OrderIndex

	trades []common.Trade
	ticks  []common.Tick

	pending        []common.Order
	pendingCursor  int
	arrivalCounter uint64

	nowNS int64

	schedule      []common.SessionInterval
	scheduleSet   bool
	scheduleCursorPos int64
	status        common.Status

	intervalStart int64
	intervalEnd   int64

	snapshotGap int64
	topK        int
	tickDeadline int64
	prevClose    int64

	windowHasTrade bool
	windowOpen     int64
	windowHigh     int64
	windowLow      int64
	windowClose    int64
	windowVolume   uint64
	windowAmount   int64

	unknownOrderCount uint64

	priceScale int

	log zerolog.Logger
}

// New returns a fresh engine with default topk (5), no snapshot cadence and
// status Closed until the host calls SetStatus or SetSchedule.
func New() *Engine {
	return &Engine{
		Bids:       book.NewBookSide(common.Bid),
		Asks:       book.NewBookSide(common.Ask),
		Index:      book.NewOrderIndex(),
		status:     common.Closed,
		topK:       DefaultTopK,
		priceScale: fixedpoint.DefaultScale,
		intervalEnd: math.MaxInt64,
		log:        zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger(),
	}
}

func (e *Engine) sideBook(side common.Side) *book.BookSide {
	if side == common.Bid {
		return e.Bids
	}
	return e.Asks
}

func (e *Engine) oppositeBook(side common.Side) *book.BookSide {
	if side == common.Bid {
		return e.Asks
	}
	return e.Bids
}

func (e *Engine) recordUnknownOrder(ev common.Order) {
	e.unknownOrderCount++
	e.log.Warn().
		Uint64("uid", ev.UID).
		Uint64("targetUid", ev.TargetUID).
		Str("kind", ev.Kind.String()).
		Msg("unknown order target, skipping event")
}

// removeResting unlinks a live resting order from its Price Level and
// Order Index entry.
func (e *Engine) removeResting(uid uint64, entry *book.IndexEntry) {
	side := e.sideBook(entry.Side)
	if lvl, ok := side.PeekLevel(entry.Price); ok {
		_ = lvl.Remove(entry.Handle)
		side.DropIfEmpty(entry.Price)
	}
	e.Index.Delete(uid)
}

func (e *Engine) cancelTarget(ev common.Order) bool {
	entry, ok := e.Index.Get(ev.TargetUID)
	if !ok {
		e.recordUnknownOrder(ev)
		return false
	}
	e.removeResting(ev.TargetUID, entry)
	return true
}

// UnknownOrderCount reports how many Cancel/Modify events referenced an
// absent uid during replay. These are recoverable: the event is skipped and
// logged rather than aborting the run.
func (e *Engine) UnknownOrderCount() uint64 {
	return e.unknownOrderCount
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
