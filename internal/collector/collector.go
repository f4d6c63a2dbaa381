package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"MACross/internal/model"
)

// StaticFetcher serves a fixed bar table. It never touches the network.
type StaticFetcher struct {
	Bars []model.PriceBar
	Err  error
}

func (s *StaticFetcher) Name() string { return "static" }

// FetchDailyBars returns the bars that fall inside [start, end].
func (s *StaticFetcher) FetchDailyBars(_ context.Context, _ string, start, end time.Time) ([]model.PriceBar, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.PriceBar
	for _, b := range s.Bars {
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// Collector fetches the bar window for one instrument.
type Collector struct {
	Fetcher Fetcher
	Symbol  string
	Start   time.Time
	End     time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol string, start, end time.Time) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol, Start: start, End: end}
}

// Collect fetches the configured window and drops duplicate or out-of-order
// dates so the result is strictly increasing.
func (c *Collector) Collect(ctx context.Context) (*model.PriceSeries, error) {
	end := c.End
	if end.IsZero() {
		// Whole days keep request URLs stable for the HTTP cache.
		end = dayOf(time.Now())
	}
	bars, err := c.Fetcher.FetchDailyBars(ctx, c.Symbol, c.Start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}

	clean := make([]model.PriceBar, 0, len(bars))
	for _, b := range bars {
		if n := len(clean); n > 0 && !b.Time.After(clean[n-1].Time) {
			log.Warn().Str("symbol", c.Symbol).Time("date", b.Time).Msg("dropping non-increasing bar")
			continue
		}
		clean = append(clean, b)
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("no bars for %s between %s and %s",
			c.Symbol, c.Start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	log.Info().
		Str("symbol", c.Symbol).
		Str("source", c.Fetcher.Name()).
		Int("bars", len(clean)).
		Time("first", clean[0].Time).
		Time("last", clean[len(clean)-1].Time).
		Msg("bars collected")

	return &model.PriceSeries{
		Symbol:    c.Symbol,
		Bars:      clean,
		Source:    c.Fetcher.Name(),
		FetchedAt: time.Now(),
	}, nil
}
