// Package ingest loads the CSV order-event stream into a stable-sorted
// slice of common.Order ready for the dispatcher's pending queue. This is
// glue kept outside the matching engine's core — the engine only ever sees
// the []common.Order this package produces.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/saiputravu/flob/internal/common"
	"github.com/saiputravu/flob/internal/fixedpoint"
)

// Columns, in order: uid, side (B|S), kind (L|M|C|X), price, quantity,
// timestamp, target_uid (optional, required for C/X).
const expectedColumns = 7

// Load reads every event row from path, parses it at the given fixed-point
// scale, and returns the events stable-sorted by timestamp (ties broken by
// original row order). A malformed row aborts the whole load with
// common.ErrInvalidInput — ingestion either fully succeeds or leaves no
// partial state behind. The aborting row is logged via zerolog before the
// error is returned to the caller.
func Load(path string, scale int) ([]common.Order, error) {
	f, err := os.Open(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("ingest: open failed")
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	defer f.Close()

	orders, err := parse(f, scale)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("ingest: aborted")
		return nil, err
	}
	return orders, nil
}

func parse(r io.Reader, scale int) ([]common.Order, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	if len(rows) > 0 && looksLikeHeader(rows[0]) {
		rows = rows[1:]
	}

	orders := make([]common.Order, 0, len(rows))
	for i, row := range rows {
		ord, err := parseRow(row, scale)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", common.ErrInvalidInput, i, err)
		}
		orders = append(orders, ord.WithArrivalSeq(uint64(i)))
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Timestamp < orders[j].Timestamp
	})
	return orders, nil
}

func looksLikeHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	_, err := strconv.ParseUint(strings.TrimSpace(row[0]), 10, 64)
	return err != nil
}

func parseRow(row []string, scale int) (common.Order, error) {
	if len(row) < expectedColumns-1 {
		return common.Order{}, fmt.Errorf("expected at least %d columns, got %d", expectedColumns-1, len(row))
	}

	uid, err := strconv.ParseUint(strings.TrimSpace(row[0]), 10, 64)
	if err != nil {
		return common.Order{}, fmt.Errorf("uid: %w", err)
	}

	side, err := parseSide(row[1])
	if err != nil {
		return common.Order{}, err
	}

	kind, err := parseKind(row[2])
	if err != nil {
		return common.Order{}, err
	}

	var price int64
	if priceText := strings.TrimSpace(row[3]); priceText != "" && priceText != "-" {
		price, err = fixedpoint.Parse(priceText, scale)
		if err != nil {
			return common.Order{}, fmt.Errorf("price: %w", err)
		}
	}

	var quantity uint64
	if qtyText := strings.TrimSpace(row[4]); qtyText != "" && qtyText != "-" {
		quantity, err = strconv.ParseUint(qtyText, 10, 64)
		if err != nil {
			return common.Order{}, fmt.Errorf("quantity: %w", err)
		}
	}

	timestamp, err := parseTimestamp(row[5])
	if err != nil {
		return common.Order{}, fmt.Errorf("timestamp: %w", err)
	}

	var targetUID uint64
	if (kind == common.Cancel || kind == common.Modify) {
		if len(row) < expectedColumns || strings.TrimSpace(row[6]) == "" || strings.TrimSpace(row[6]) == "-" {
			return common.Order{}, fmt.Errorf("target_uid required for %s", kind)
		}
		targetUID, err = strconv.ParseUint(strings.TrimSpace(row[6]), 10, 64)
		if err != nil {
			return common.Order{}, fmt.Errorf("target_uid: %w", err)
		}
	}

	if kind == common.Limit {
		if price <= 0 {
			return common.Order{}, fmt.Errorf("limit order requires price > 0")
		}
		if quantity == 0 {
			return common.Order{}, fmt.Errorf("limit order requires quantity > 0")
		}
	}

	return common.Order{
		UID:       uid,
		Side:      side,
		Kind:      kind,
		Price:     price,
		Quantity:  quantity,
		Timestamp: timestamp,
		TargetUID: targetUID,
	}, nil
}

func parseSide(s string) (common.Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "B":
		return common.Bid, nil
	case "S":
		return common.Ask, nil
	default:
		return 0, fmt.Errorf("side: unknown value %q", s)
	}
}

func parseKind(s string) (common.Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return common.Limit, nil
	case "M":
		return common.Market, nil
	case "C":
		return common.Cancel, nil
	case "X":
		return common.Modify, nil
	default:
		return 0, fmt.Errorf("kind: unknown value %q", s)
	}
}

// parseTimestamp accepts either an integer count of nanoseconds since epoch
// or an RFC3339-ish ISO-8601 timestamp.
func parseTimestamp(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if ns, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ns, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, fmt.Errorf("unrecognized timestamp %q", s)
	}
	return t.UnixNano(), nil
}
