// Package portfolio converts position signals into a share ledger and an
// equity curve for a single instrument.
package portfolio

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"MACross/internal/model"
)

// DefaultLotSize is the fixed number of shares bought on a long signal.
const DefaultLotSize = 100

// ErrNonFinite is returned when a price or share count is NaN or infinite.
var ErrNonFinite = errors.New("non-finite value")

// Portfolio sizes positions from signals and marks them to market.
type Portfolio interface {
	GeneratePositions(signals []model.SignalRecord) ([]model.PositionRecord, error)
	BacktestPortfolio(bars []model.PriceBar, positions []model.PositionRecord) ([]model.ReturnRecord, error)
}

var _ Portfolio = (*MarketOnClose)(nil)

// MarketOnClose trades a fixed lot at the adjusted close of the signal bar.
// Cash is not constrained and may go negative.
type MarketOnClose struct {
	LotSize        float64
	InitialCapital float64
}

// NewMarketOnClose returns a portfolio that holds lotSize shares while long.
func NewMarketOnClose(lotSize, initialCapital float64) (*MarketOnClose, error) {
	p := &MarketOnClose{LotSize: lotSize, InitialCapital: initialCapital}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *MarketOnClose) validate() error {
	if p.LotSize <= 0 || math.IsNaN(p.LotSize) || math.IsInf(p.LotSize, 0) {
		return fmt.Errorf("%w: lot size must be positive, got %v", model.ErrConfiguration, p.LotSize)
	}
	if p.LotSize != math.Trunc(p.LotSize) {
		return fmt.Errorf("%w: lot size must be a whole number of shares, got %v", model.ErrConfiguration, p.LotSize)
	}
	if math.IsNaN(p.InitialCapital) || math.IsInf(p.InitialCapital, 0) {
		return fmt.Errorf("%w: initial capital must be finite, got %v", model.ErrConfiguration, p.InitialCapital)
	}
	return nil
}

// GeneratePositions holds LotSize shares while the signal is long.
// ShareChange is zero on the first bar; the book always starts flat.
func (p *MarketOnClose) GeneratePositions(signals []model.SignalRecord) ([]model.PositionRecord, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	positions := make([]model.PositionRecord, len(signals))
	for i, s := range signals {
		positions[i] = model.PositionRecord{
			Time:   s.Time,
			Shares: p.LotSize * s.Position,
		}
		if i > 0 {
			positions[i].ShareChange = positions[i].Shares - positions[i-1].Shares
		}
	}
	return positions, nil
}

// BacktestPortfolio marks the positions to the adjusted close of each bar.
//
// Cash is a running ledger: every share change at bar t is settled at that
// bar's adjusted close. The ledger is kept in decimal so the cumulative sum
// does not drift over long series.
func (p *MarketOnClose) BacktestPortfolio(bars []model.PriceBar, positions []model.PositionRecord) ([]model.ReturnRecord, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if err := checkAligned(bars, positions); err != nil {
		return nil, err
	}

	returns := make([]model.ReturnRecord, len(bars))
	cash := decimal.NewFromFloat(p.InitialCapital)
	var prevTotal decimal.Decimal

	for i, b := range bars {
		pos := positions[i]
		if !finite(b.AdjClose) || !finite(pos.Shares) || !finite(pos.ShareChange) {
			return nil, fmt.Errorf("%w: row %d on %s (adj close %v, shares %v, change %v)", ErrNonFinite,
				i, b.Time.Format("2006-01-02"), b.AdjClose, pos.Shares, pos.ShareChange)
		}
		px := decimal.NewFromFloat(b.AdjClose)

		cash = cash.Sub(decimal.NewFromFloat(pos.ShareChange).Mul(px))
		holdings := decimal.NewFromFloat(pos.Shares).Mul(px)
		total := cash.Add(holdings)

		ret := math.NaN()
		if i > 0 && !prevTotal.IsZero() {
			ret = total.Sub(prevTotal).Div(prevTotal).InexactFloat64()
		}

		returns[i] = model.ReturnRecord{
			Time:      b.Time,
			Shares:    pos.Shares,
			AdjClose:  b.AdjClose,
			Holdings:  holdings.InexactFloat64(),
			Cash:      cash.InexactFloat64(),
			Total:     total.InexactFloat64(),
			ReturnPct: ret,
		}
		prevTotal = total
	}
	return returns, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkAligned(bars []model.PriceBar, positions []model.PositionRecord) error {
	if len(bars) != len(positions) {
		return fmt.Errorf("%w: %d bars vs %d positions", model.ErrDataAlignment, len(bars), len(positions))
	}
	for i := range bars {
		if !bars[i].Time.Equal(positions[i].Time) {
			return fmt.Errorf("%w: row %d bar date %s vs position date %s", model.ErrDataAlignment,
				i, bars[i].Time.Format("2006-01-02"), positions[i].Time.Format("2006-01-02"))
		}
	}
	return nil
}

// FinalEquity returns the last total of an equity curve, or NaN if empty.
func FinalEquity(returns []model.ReturnRecord) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	return returns[len(returns)-1].Total
}
