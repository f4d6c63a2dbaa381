// Package backtest runs the crossover strategy and the portfolio ledger over
// one collected bar series.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"MACross/internal/collector"
	"MACross/internal/model"
	"MACross/internal/portfolio"
	"MACross/internal/strategy"
)

// Result holds the three output tables of a run plus headline numbers.
type Result struct {
	Symbol         string
	Source         string
	Strategy       string
	Bars           []model.PriceBar
	Signals        []model.SignalRecord
	Positions      []model.PositionRecord
	Returns        []model.ReturnRecord
	Markers        []model.TradeMarker
	InitialCapital float64
	FinalEquity    float64
	TotalReturn    float64
	RanAt          time.Time
}

// Runner wires a data collector to a strategy and a portfolio.
type Runner struct {
	Collector      *collector.Collector
	Strategy       strategy.Strategy
	Portfolio      portfolio.Portfolio
	InitialCapital float64
}

// NewRunner creates a new Runner.
func NewRunner(col *collector.Collector, strat strategy.Strategy, pf portfolio.Portfolio, initialCapital float64) *Runner {
	return &Runner{
		Collector:      col,
		Strategy:       strat,
		Portfolio:      pf,
		InitialCapital: initialCapital,
	}
}

// Run fetches bars and evaluates them.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	series, err := r.Collector.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	return r.Evaluate(series)
}

// Evaluate computes signals, positions and the equity curve for series.
func (r *Runner) Evaluate(series *model.PriceSeries) (*Result, error) {
	signals, err := r.Strategy.GenerateSignals(series.Bars)
	if err != nil {
		return nil, fmt.Errorf("generate signals: %w", err)
	}
	positions, err := r.Portfolio.GeneratePositions(signals)
	if err != nil {
		return nil, fmt.Errorf("generate positions: %w", err)
	}
	returns, err := r.Portfolio.BacktestPortfolio(series.Bars, positions)
	if err != nil {
		return nil, fmt.Errorf("backtest portfolio: %w", err)
	}

	res := &Result{
		Symbol:         series.Symbol,
		Source:         series.Source,
		Strategy:       r.Strategy.Name(),
		Bars:           series.Bars,
		Signals:        signals,
		Positions:      positions,
		Returns:        returns,
		Markers:        model.Markers(signals),
		InitialCapital: r.InitialCapital,
		FinalEquity:    portfolio.FinalEquity(returns),
		RanAt:          time.Now(),
	}
	if r.InitialCapital != 0 {
		res.TotalReturn = (res.FinalEquity - r.InitialCapital) / r.InitialCapital
	}

	log.Info().
		Str("symbol", res.Symbol).
		Str("strategy", res.Strategy).
		Int("bars", len(res.Bars)).
		Int("trades", len(res.Markers)).
		Float64("final_equity", res.FinalEquity).
		Msg("backtest complete")
	return res, nil
}

// Last returns the final signal and equity point, or false if the run is empty.
func (res *Result) Last() (model.SignalRecord, model.ReturnRecord, bool) {
	if len(res.Signals) == 0 || len(res.Returns) == 0 {
		return model.SignalRecord{}, model.ReturnRecord{}, false
	}
	return res.Signals[len(res.Signals)-1], res.Returns[len(res.Returns)-1], true
}
