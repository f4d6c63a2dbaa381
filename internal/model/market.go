package model

import "time"

// PriceBar is one trading day of OHLCV data for a single instrument.
type PriceBar struct {
	Time     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// PriceSeries holds the raw bars returned by a data source.
type PriceSeries struct {
	Symbol    string
	Bars      []PriceBar
	Source    string
	FetchedAt time.Time
}

// Closes returns the close column of bars.
func Closes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
