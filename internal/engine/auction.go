package engine

import (
	"sort"

	"github.com/saiputravu/flob/internal/book"
	"github.com/saiputravu/flob/internal/common"
)

// applyAuctionAccumulate dispatches one event during call-auction
// accumulation: Limit orders rest, Cancel/Modify are processed as under
// continuous trading but never generate trades, and Market orders (having
// no price to rest at, and auctions generating no trades during
// accumulation) are simply discarded.
func (e *Engine) applyAuctionAccumulate(ev common.Order) {
	switch ev.Kind {
	case common.Cancel:
		e.cancelTarget(ev)
	case common.Modify:
		e.applyModify(ev, e.restOnly)
	case common.Limit:
		e.restOnly(ev)
	case common.Market:
		// No price to rest at, no trade generation during accumulation:
		// the remainder is simply discarded.
	}
}

func (e *Engine) restOnly(x common.Order) {
	own := e.sideBook(x.Side)
	lvl := own.LevelAt(x.Price)
	h := lvl.Append(x)
	e.Index.Put(x.UID, &book.IndexEntry{
		Side:   x.Side,
		Price:  x.Price,
		Handle: h,
		Token:  lvl.Token(h),
	})
}

// clearingCandidate is one distinct price's executable-volume tally.
type clearingCandidate struct {
	price    int64
	bidQty   uint64
	askQty   uint64
	executable uint64
}

// MatchCallAuction forces resolution of the uniform-price call auction. It
// is a no-op if the book is empty or no price crosses.
func (e *Engine) MatchCallAuction() {
	e.matchCallAuctionAt(e.nowNS)
}

func (e *Engine) matchCallAuctionAt(ts int64) {
	bidLevels := e.Bids.Items() // descending price order
	askLevels := e.Asks.Items() // ascending price order
	if len(bidLevels) == 0 && len(askLevels) == 0 {
		return
	}

	priceSeen := make(map[int64]struct{}, len(bidLevels)+len(askLevels))
	prices := make([]int64, 0, len(bidLevels)+len(askLevels))
	for _, l := range bidLevels {
		if _, ok := priceSeen[l.Price]; !ok {
			priceSeen[l.Price] = struct{}{}
			prices = append(prices, l.Price)
		}
	}
	for _, l := range askLevels {
		if _, ok := priceSeen[l.Price]; !ok {
			priceSeen[l.Price] = struct{}{}
			prices = append(prices, l.Price)
		}
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })

	bidAtLeast := func(p int64) uint64 {
		var sum uint64
		for _, l := range bidLevels {
			if l.Price >= p {
				sum += l.TotalQuantity
			}
		}
		return sum
	}
	askAtMost := func(p int64) uint64 {
		var sum uint64
		for _, l := range askLevels {
			if l.Price <= p {
				sum += l.TotalQuantity
			}
		}
		return sum
	}

	candidates := make([]clearingCandidate, 0, len(prices))
	var maxExecutable uint64
	for _, p := range prices {
		b, a := bidAtLeast(p), askAtMost(p)
		x := min64(b, a)
		candidates = append(candidates, clearingCandidate{price: p, bidQty: b, askQty: a, executable: x})
		if x > maxExecutable {
			maxExecutable = x
		}
	}
	if maxExecutable == 0 {
		return
	}

	best := candidates[:0:0]
	for _, c := range candidates {
		if c.executable == maxExecutable {
			best = append(best, c)
		}
	}

	clearing := resolveClearingPrice(best, e.prevClose)
	e.executeAuctionAt(clearing.price, clearing.executable, ts)
}

// resolveClearingPrice applies the tie-break ladder over candidates already
// filtered to the maximum executable volume: minimize |bid-ask| imbalance,
// then prefer the price in the direction of market pressure, then — if bid
// and ask volume are exactly balanced — the previous-close-aware midpoint.
func resolveClearingPrice(tied []clearingCandidate, prevClose int64) clearingCandidate {
	if len(tied) == 1 {
		return tied[0]
	}

	var minImbalance uint64 = ^uint64(0)
	imbalanceTied := tied[:0:0]
	for _, c := range tied {
		imb := imbalance(c.bidQty, c.askQty)
		if imb < minImbalance {
			minImbalance = imb
			imbalanceTied = []clearingCandidate{c}
		} else if imb == minImbalance {
			imbalanceTied = append(imbalanceTied, c)
		}
	}
	if len(imbalanceTied) == 1 {
		return imbalanceTied[0]
	}

	pressure := imbalanceTied[0]
	switch {
	case pressure.bidQty > pressure.askQty:
		return extremeByPrice(imbalanceTied, true)
	case pressure.bidQty < pressure.askQty:
		return extremeByPrice(imbalanceTied, false)
	default:
		return midpointCandidate(imbalanceTied, prevClose)
	}
}

func imbalance(bid, ask uint64) uint64 {
	if bid > ask {
		return bid - ask
	}
	return ask - bid
}

func extremeByPrice(cands []clearingCandidate, highest bool) clearingCandidate {
	best := cands[0]
	for _, c := range cands[1:] {
		if highest && c.price > best.price {
			best = c
		}
		if !highest && c.price < best.price {
			best = c
		}
	}
	return best
}

func midpointCandidate(cands []clearingCandidate, prevClose int64) clearingCandidate {
	minP, maxP := cands[0].price, cands[0].price
	for _, c := range cands[1:] {
		if c.price < minP {
			minP = c.price
		}
		if c.price > maxP {
			maxP = c.price
		}
	}
	mid := (minP + maxP) / 2

	best := cands[0]
	bestDist := absInt64(best.price - mid)
	for _, c := range cands[1:] {
		d := absInt64(c.price - mid)
		switch {
		case d < bestDist:
			best, bestDist = c, d
		case d == bestDist && closerToPreviousClose(c, best, prevClose):
			best = c
		}
	}
	return best
}

func closerToPreviousClose(c, cur clearingCandidate, prevClose int64) bool {
	if prevClose != 0 {
		return absInt64(c.price-prevClose) < absInt64(cur.price-prevClose)
	}
	return c.price > cur.price
}

// executeAuctionAt walks bids descending and asks ascending, pairing
// head-of-level FIFO orders, until volume units have been drained at price.
func (e *Engine) executeAuctionAt(price int64, volume uint64, ts int64) {
	remaining := volume
	for remaining > 0 {
		bestBid, okB := e.Bids.BestPrice()
		bestAsk, okA := e.Asks.BestPrice()
		if !okB || !okA || bestBid < price || bestAsk > price {
			break
		}

		bidLvl, _ := e.Bids.PeekLevel(bestBid)
		askLvl, _ := e.Asks.PeekLevel(bestAsk)
		bh, okbh := bidLvl.PeekHead()
		ah, okah := askLvl.PeekHead()
		if !okbh || !okah {
			break
		}

		bidOrder := bidLvl.Order(bh)
		askOrder := askLvl.Order(ah)
		tradeQty := min64(remaining, min64(bidOrder.Quantity, askOrder.Quantity))

		trade := common.Trade{BidUID: bidOrder.UID, AskUID: askOrder.UID, Price: price, Quantity: tradeQty, Timestamp: ts}
		e.trades = append(e.trades, trade)
		e.recordTradeForWindow(trade)

		_ = bidLvl.Reduce(bh, tradeQty)
		_ = askLvl.Reduce(ah, tradeQty)
		if bidOrder.Quantity == tradeQty {
			e.Index.Delete(bidOrder.UID)
		}
		if askOrder.Quantity == tradeQty {
			e.Index.Delete(askOrder.UID)
		}
		e.Bids.DropIfEmpty(bestBid)
		e.Asks.DropIfEmpty(bestAsk)

		remaining -= tradeQty
	}
}
