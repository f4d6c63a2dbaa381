// Package analysis holds ad hoc inspection helpers for a raw bar series.
package analysis

import (
	"errors"
	"math"

	"MACross/internal/calculator"
	"MACross/internal/model"
)

// AnnotatedBar is a bar with its day-over-day changes.
type AnnotatedBar struct {
	model.PriceBar
	// CloseChange and VolumeChange are NaN on the first bar.
	CloseChange  float64
	VolumeChange float64
}

// Exploration is a quick look at a bar series.
type Exploration struct {
	Symbol string
	Bars   []AnnotatedBar
	// MissingValues counts NaN or zero price fields. Fetchers already drop
	// rows with a null close, so those never reach this count.
	MissingValues int
	// High and Low span the last Lookback bars, or the whole series when
	// Lookback is zero.
	Lookback int
	High     float64
	Low      float64
}

// HasMissing reports whether any bar has a missing price field.
func (e *Exploration) HasMissing() bool { return e.MissingValues > 0 }

// Explore annotates series with close and volume changes, scans for missing
// values and takes the high/low range of the last lookback bars.
func Explore(series *model.PriceSeries, lookback int) (*Exploration, error) {
	if series == nil || len(series.Bars) == 0 {
		return nil, errors.New("no bars to explore")
	}
	bars := series.Bars

	closeChg := calculator.Diff(model.Closes(bars))
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	volChg := calculator.Diff(vols)

	if lookback < 0 || lookback > len(bars) {
		lookback = 0
	}
	out := &Exploration{Symbol: series.Symbol, Bars: make([]AnnotatedBar, len(bars)), Lookback: lookback}
	for i, b := range bars {
		out.Bars[i] = AnnotatedBar{PriceBar: b, CloseChange: closeChg[i], VolumeChange: volChg[i]}
		for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.AdjClose} {
			if math.IsNaN(v) || v == 0 {
				out.MissingValues++
			}
		}
	}

	high, low, err := calculator.CalculateRange(bars, lookback)
	if err != nil {
		return nil, err
	}
	out.High, out.Low = high, low
	return out, nil
}
