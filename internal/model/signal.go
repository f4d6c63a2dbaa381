package model

import "time"

// SignalRecord is the crossover state for one bar.
type SignalRecord struct {
	Time      time.Time
	ShortMAvg float64
	LongMAvg  float64
	// Position is 1 when invested and 0 when flat.
	Position float64
	// PositionChange is +1 on a buy, -1 on a sell and 0 otherwise.
	// It is always 0 on the first bar.
	PositionChange float64
}

// TradeSide marks a bar where the position flipped.
type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

// TradeMarker is a bar on which the signal changed.
type TradeMarker struct {
	Index int
	Time  time.Time
	Side  TradeSide
	Price float64
}

// Markers extracts the buy and sell points from a signal table.
// Price is the short moving average at the marker, as in the chart overlay.
func Markers(signals []SignalRecord) []TradeMarker {
	var out []TradeMarker
	for i, s := range signals {
		switch s.PositionChange {
		case 1:
			out = append(out, TradeMarker{Index: i, Time: s.Time, Side: SideBuy, Price: s.ShortMAvg})
		case -1:
			out = append(out, TradeMarker{Index: i, Time: s.Time, Side: SideSell, Price: s.ShortMAvg})
		}
	}
	return out
}
