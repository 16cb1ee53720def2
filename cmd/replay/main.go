// Command replay is the host glue that sits outside the matching engine's
// core: it loads a CSV event stream, drives it through a trading schedule,
// and dumps the resulting trade tape, built with the stdlib flag package
// for its small trading CLI surface.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/saiputravu/flob/internal/common"
	"github.com/saiputravu/flob/internal/engine"
	"github.com/saiputravu/flob/internal/fixedpoint"
)

func main() {
	data := flag.String("data", "data/sample.csv", "path to the CSV order-event stream")
	schedule := flag.String("schedule", "ashare", "session schedule: 'ashare' or 'none'")
	snapshotGap := flag.Duration("snapshot-gap", 3*time.Second, "tick cadence; 0 disables tick emission")
	topk := flag.Int("topk", engine.DefaultTopK, "depth levels captured per tick")
	priceScale := flag.Int("price-scale", fixedpoint.DefaultScale, "fractional digits in the CSV price column")
	output := flag.String("output", "", "optional path to write the trade tape as CSV")
	flag.Parse()

	eng := engine.New()
	eng.SetPriceScale(*priceScale)
	eng.SetTopK(*topk)

	if err := eng.Load(*data); err != nil {
		log.Fatalf("load %s: %v", *data, err)
	}

	switch *schedule {
	case "ashare":
		dayStart, ok := eng.FirstPendingTimestamp()
		if !ok {
			dayStart = time.Now().UnixNano()
		}
		if err := eng.SetSchedule(ashareSchedule(dayStart)); err != nil {
			log.Fatalf("set schedule: %v", err)
		}
	case "none":
		eng.SetStatus(common.ContinuousTrading)
	default:
		log.Fatalf("unknown schedule preset %q", *schedule)
	}

	eng.SetSnapshotGap(int64(*snapshotGap))
	eng.Run()

	fmt.Print(eng.Show())
	fmt.Printf("transactions: %d, ticks: %d, unknown-order events: %d\n",
		len(eng.GetTransactions()), len(eng.GetTicks()), eng.UnknownOrderCount())

	if *output != "" {
		if err := writeTransactions(*output, eng, *priceScale); err != nil {
			log.Fatalf("write output: %v", err)
		}
	}
}

func writeTransactions(path string, eng *engine.Engine, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "bid_uid", "ask_uid", "price", "volume"}); err != nil {
		return err
	}
	for _, t := range eng.GetTransactions() {
		row := []string{
			fmt.Sprintf("%d", t.Timestamp),
			fmt.Sprintf("%d", t.BidUID),
			fmt.Sprintf("%d", t.AskUID),
			fixedpoint.Format(t.Price, scale),
			fmt.Sprintf("%d", t.Quantity),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
