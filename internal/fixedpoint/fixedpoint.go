// Package fixedpoint converts between decimal text (the CSV wire format's
// price column) and the engine's internal scaled-integer price, so that no
// float64 ever participates in a price comparison.
//
// NOTE: might want to compare with `Float` from `math/big`: more precise but
// slower — shopspring/decimal already gives exact decimal arithmetic up to
// the configured scale, which is the right tradeoff here.
package fixedpoint

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultScale is the number of fractional digits a scaled price carries
// when the host doesn't specify one.
const DefaultScale = 4

// Parse converts decimal text such as "100.00" or "9.9500" into a scaled
// integer at the given scale. Scale must be non-negative.
func Parse(s string, scale int) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("fixedpoint: parse %q: %w", s, err)
	}
	scaled := d.Shift(int32(scale)).Round(0)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("fixedpoint: %q does not fit scale %d", s, scale)
	}
	return scaled.IntPart(), nil
}

// Format renders a scaled integer back to decimal text at the given scale.
func Format(v int64, scale int) string {
	return decimal.New(v, int32(-scale)).StringFixed(int32(scale))
}
