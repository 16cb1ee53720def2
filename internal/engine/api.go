package engine

import (
	"fmt"
	"strings"

	"github.com/saiputravu/flob/internal/fixedpoint"
	"github.com/saiputravu/flob/internal/ingest"
)

// FirstPendingTimestamp returns the timestamp of the earliest loaded event,
// used by hosts that derive a schedule relative to the data (e.g. an
// A-share session schedule anchored to the trading day in the file).
func (e *Engine) FirstPendingTimestamp() (int64, bool) {
	if len(e.pending) == 0 {
		return 0, false
	}
	return e.pending[0].Timestamp, true
}

// SetPriceScale configures the number of fractional digits CSV price text
// is parsed/formatted at. Must be called before Load to take effect on
// ingestion.
func (e *Engine) SetPriceScale(scale int) {
	e.priceScale = scale
}

// Load ingests every event in the CSV file at path. An unrecoverable parse
// error aborts ingestion and leaves the engine's prior state untouched.
func (e *Engine) Load(path string) error {
	orders, err := ingest.Load(path, e.priceScale)
	if err != nil {
		return err
	}
	e.pending = orders
	e.pendingCursor = 0
	e.arrivalCounter = uint64(len(orders))
	return nil
}

func (e *Engine) formatPrice(v int64) string {
	return fixedpoint.Format(v, e.priceScale)
}

// Show renders a human-readable book dump: every live level on each side
// with its total quantity. Format is stable across calls within one version
// but otherwise unspecified.
func (e *Engine) Show() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "status=%s now=%d\n", e.status, e.nowNS)
	fmt.Fprintf(&sb, "asks (furthest first, best ask nearest bids):\n")
	for _, lvl := range reverse(e.Asks.Items()) {
		fmt.Fprintf(&sb, "  %s x %d\n", e.formatPrice(lvl.Price), lvl.TotalQuantity)
	}
	fmt.Fprintf(&sb, "bids (best first):\n")
	for _, lvl := range e.Bids.Items() {
		fmt.Fprintf(&sb, "  %s x %d\n", e.formatPrice(lvl.Price), lvl.TotalQuantity)
	}
	return sb.String()
}

func reverse[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

// ShowTransactions renders the trade tape as one line per trade.
func (e *Engine) ShowTransactions() string {
	var sb strings.Builder
	for _, t := range e.trades {
		fmt.Fprintf(&sb, "t=%d bid=%d ask=%d price=%s qty=%d\n",
			t.Timestamp, t.BidUID, t.AskUID, e.formatPrice(t.Price), t.Quantity)
	}
	return sb.String()
}
