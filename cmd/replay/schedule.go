package main

import (
	"time"

	"github.com/saiputravu/flob/internal/common"
)

// ashareSchedule builds the four-interval pre-opening / morning /
// afternoon / closing schedule, anchored to the start of the trading day
// containing dayStartNS.
func ashareSchedule(dayStartNS int64) []common.SessionInterval {
	day := time.Unix(0, dayStartNS).UTC().Truncate(24 * time.Hour)

	at := func(h, m, s int) int64 {
		return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second).UnixNano()
	}

	return []common.SessionInterval{
		{Status: common.CallAuction, StartNS: at(9, 15, 0), EndNS: at(9, 25, 0)},
		{Status: common.ContinuousTrading, StartNS: at(9, 30, 0), EndNS: at(11, 30, 0)},
		{Status: common.ContinuousTrading, StartNS: at(13, 0, 0), EndNS: at(14, 57, 0)},
		{Status: common.CallAuction, StartNS: at(14, 57, 0), EndNS: at(15, 0, 0)},
	}
}
