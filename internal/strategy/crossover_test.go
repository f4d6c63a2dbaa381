package strategy

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MACross/internal/model"
)

func barsFromCloses(closes ...float64) []model.PriceBar {
	start := time.Date(2009, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = model.PriceBar{
			Time:     start.AddDate(0, 0, i),
			Open:     c,
			High:     c,
			Low:      c,
			Close:    c,
			AdjClose: c,
			Volume:   1000,
		}
	}
	return bars
}

func TestGenerateSignals_WorkedExample(t *testing.T) {
	s, err := NewMovingAverageCross(2, 3)
	require.NoError(t, err)

	bars := barsFromCloses(10, 11, 12, 11, 10)
	signals, err := s.GenerateSignals(bars)
	require.NoError(t, err)
	require.Len(t, signals, 5)

	wantShort := []float64{10, 10.5, 11.5, 11.5, 10.5}
	wantLong := []float64{10, 10.5, 11, 34.0 / 3, 11}
	wantPos := []float64{0, 0, 1, 1, 0}
	wantChange := []float64{0, 0, 1, 0, -1}

	for i, sig := range signals {
		assert.Equal(t, bars[i].Time, sig.Time, "time at %d", i)
		assert.InDelta(t, wantShort[i], sig.ShortMAvg, 1e-12, "short at %d", i)
		assert.InDelta(t, wantLong[i], sig.LongMAvg, 1e-12, "long at %d", i)
		assert.Equal(t, wantPos[i], sig.Position, "position at %d", i)
		assert.Equal(t, wantChange[i], sig.PositionChange, "change at %d", i)
	}
}

func TestGenerateSignals_WarmupIsFlat(t *testing.T) {
	// Rising prices put the short average above the long one from bar 1.
	s, err := NewMovingAverageCross(4, 10)
	require.NoError(t, err)

	signals, err := s.GenerateSignals(barsFromCloses(1, 2, 3, 4, 5, 6, 7, 8))
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		assert.Equal(t, 0.0, signals[i].Position, "warm-up bar %d", i)
	}
	for i := 4; i < len(signals); i++ {
		assert.Equal(t, 1.0, signals[i].Position, "bar %d", i)
	}
	assert.Equal(t, 1.0, signals[4].PositionChange)
}

func TestGenerateSignals_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	closes := make([]float64, 300)
	price := 50.0
	for i := range closes {
		price += rng.NormFloat64()
		if price < 1 {
			price = 1
		}
		closes[i] = price
	}

	s, err := NewMovingAverageCross(5, 20)
	require.NoError(t, err)
	signals, err := s.GenerateSignals(barsFromCloses(closes...))
	require.NoError(t, err)
	require.Len(t, signals, len(closes))

	assert.Equal(t, 0.0, signals[0].PositionChange)
	for i, sig := range signals {
		if i < s.ShortWindow {
			assert.Equal(t, 0.0, sig.Position, "warm-up bar %d", i)
		} else {
			want := 0.0
			if sig.ShortMAvg > sig.LongMAvg {
				want = 1.0
			}
			assert.Equal(t, want, sig.Position, "bar %d", i)
		}
		if i > 0 {
			assert.Equal(t, sig.Position-signals[i-1].Position, sig.PositionChange, "bar %d", i)
		}
	}
}

func TestGenerateSignals_FlatPricesNeverTrade(t *testing.T) {
	s, err := NewMovingAverageCross(2, 5)
	require.NoError(t, err)
	signals, err := s.GenerateSignals(barsFromCloses(7, 7, 7, 7, 7, 7, 7))
	require.NoError(t, err)
	for _, sig := range signals {
		assert.Equal(t, 0.0, sig.Position)
		assert.Equal(t, 0.0, sig.PositionChange)
	}
	assert.Empty(t, model.Markers(signals))
}

func TestGenerateSignals_SingleBar(t *testing.T) {
	s, err := NewMovingAverageCross(40, 100)
	require.NoError(t, err)
	signals, err := s.GenerateSignals(barsFromCloses(12.5))
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, 12.5, signals[0].ShortMAvg)
	assert.Equal(t, 12.5, signals[0].LongMAvg)
	assert.Equal(t, 0.0, signals[0].Position)
}

func TestGenerateSignals_NoBars(t *testing.T) {
	s, err := NewMovingAverageCross(2, 3)
	require.NoError(t, err)
	_, err = s.GenerateSignals(nil)
	assert.ErrorIs(t, err, ErrNoBars)
}

func TestConfigurationErrors(t *testing.T) {
	tests := []struct {
		name        string
		short, long int
	}{
		{"zero short", 0, 10},
		{"zero long", 5, 0},
		{"negative", -1, 10},
		{"inverted", 100, 40},
		{"equal", 20, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMovingAverageCross(tt.short, tt.long)
			assert.ErrorIs(t, err, model.ErrConfiguration)

			s := &MovingAverageCross{ShortWindow: tt.short, LongWindow: tt.long}
			_, err = s.GenerateSignals(barsFromCloses(1, 2, 3))
			assert.ErrorIs(t, err, model.ErrConfiguration)
		})
	}
}

func TestMarkers(t *testing.T) {
	s, err := NewMovingAverageCross(2, 3)
	require.NoError(t, err)
	signals, err := s.GenerateSignals(barsFromCloses(10, 11, 12, 11, 10))
	require.NoError(t, err)

	markers := model.Markers(signals)
	require.Len(t, markers, 2)
	assert.Equal(t, model.SideBuy, markers[0].Side)
	assert.Equal(t, 2, markers[0].Index)
	assert.Equal(t, 11.5, markers[0].Price)
	assert.Equal(t, model.SideSell, markers[1].Side)
	assert.Equal(t, 4, markers[1].Index)
}
