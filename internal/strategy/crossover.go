package strategy

import (
	"fmt"

	"MACross/internal/calculator"
	"MACross/internal/model"
)

var _ Strategy = (*MovingAverageCross)(nil)

// MovingAverageCross goes long while the short simple moving average of the
// close sits above the long one, and is flat otherwise.
type MovingAverageCross struct {
	ShortWindow int
	LongWindow  int
}

// NewMovingAverageCross validates the windows and returns the strategy.
func NewMovingAverageCross(short, long int) (*MovingAverageCross, error) {
	if err := ValidateWindows(short, long); err != nil {
		return nil, err
	}
	return &MovingAverageCross{ShortWindow: short, LongWindow: long}, nil
}

func (s *MovingAverageCross) Name() string {
	return fmt.Sprintf("ma-cross(%d,%d)", s.ShortWindow, s.LongWindow)
}

// GenerateSignals computes both averages and the position for every bar.
//
// The first ShortWindow bars are always flat. The cutoff is indexed by the
// short window, not the long one, so the long average may still be warming
// up when the first signal is allowed.
func (s *MovingAverageCross) GenerateSignals(bars []model.PriceBar) ([]model.SignalRecord, error) {
	if err := ValidateWindows(s.ShortWindow, s.LongWindow); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, ErrNoBars
	}

	closes := model.Closes(bars)
	shortMA, err := calculator.RollingMean(closes, s.ShortWindow)
	if err != nil {
		return nil, fmt.Errorf("short average: %w", err)
	}
	longMA, err := calculator.RollingMean(closes, s.LongWindow)
	if err != nil {
		return nil, fmt.Errorf("long average: %w", err)
	}

	signals := make([]model.SignalRecord, len(bars))
	for i, b := range bars {
		rec := model.SignalRecord{
			Time:      b.Time,
			ShortMAvg: shortMA[i],
			LongMAvg:  longMA[i],
		}
		if i >= s.ShortWindow && shortMA[i] > longMA[i] {
			rec.Position = 1
		}
		if i > 0 {
			rec.PositionChange = rec.Position - signals[i-1].Position
		}
		signals[i] = rec
	}
	return signals, nil
}
