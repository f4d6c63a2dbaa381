// Package strategy turns a bar series into long/flat position signals.
package strategy

import (
	"errors"
	"fmt"

	"MACross/internal/model"
)

// ErrNoBars is returned when a strategy is given an empty series.
var ErrNoBars = errors.New("no price bars")

// Strategy produces one signal record per input bar.
type Strategy interface {
	Name() string
	GenerateSignals(bars []model.PriceBar) ([]model.SignalRecord, error)
}

// ValidateWindows checks a short/long moving-average pair and wraps
// model.ErrConfiguration on failure.
func ValidateWindows(short, long int) error {
	if short <= 0 || long <= 0 {
		return fmt.Errorf("%w: windows must be positive (short=%d, long=%d)", model.ErrConfiguration, short, long)
	}
	if short >= long {
		return fmt.Errorf("%w: short window %d must be less than long window %d", model.ErrConfiguration, short, long)
	}
	return nil
}
