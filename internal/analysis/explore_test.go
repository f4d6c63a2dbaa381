package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MACross/internal/model"
)

func TestExplore(t *testing.T) {
	day := time.Date(2016, 10, 3, 0, 0, 0, 0, time.UTC)
	series := &model.PriceSeries{Symbol: "IO", Bars: []model.PriceBar{
		{Time: day, Open: 5, High: 5.5, Low: 4.8, Close: 5.2, AdjClose: 5.2, Volume: 1000},
		{Time: day.AddDate(0, 0, 1), Open: 5.2, High: 5.9, Low: 5.1, Close: 5.8, AdjClose: 5.8, Volume: 1500},
		{Time: day.AddDate(0, 0, 2), Open: 5.8, High: 6.0, Low: 5.0, Close: 5.3, AdjClose: 5.3, Volume: 900},
	}}

	ex, err := Explore(series, 0)
	require.NoError(t, err)
	require.Len(t, ex.Bars, 3)

	assert.True(t, math.IsNaN(ex.Bars[0].CloseChange))
	assert.True(t, math.IsNaN(ex.Bars[0].VolumeChange))
	assert.InDelta(t, 0.6, ex.Bars[1].CloseChange, 1e-12)
	assert.Equal(t, 500.0, ex.Bars[1].VolumeChange)
	assert.InDelta(t, -0.5, ex.Bars[2].CloseChange, 1e-12)
	assert.Equal(t, -600.0, ex.Bars[2].VolumeChange)
	assert.False(t, ex.HasMissing())
	assert.Equal(t, 6.0, ex.High)
	assert.Equal(t, 4.8, ex.Low)

	recent, err := Explore(series, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, recent.Lookback)
	assert.Equal(t, 6.0, recent.High)
	assert.Equal(t, 5.0, recent.Low)

	wide, err := Explore(series, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, wide.Lookback)
	assert.Equal(t, 4.8, wide.Low)
}

func TestExplore_Missing(t *testing.T) {
	day := time.Date(2016, 10, 3, 0, 0, 0, 0, time.UTC)
	series := &model.PriceSeries{Bars: []model.PriceBar{
		{Time: day, Open: 5, High: 5, Low: 5, Close: 5, AdjClose: math.NaN()},
	}}
	ex, err := Explore(series, 0)
	require.NoError(t, err)
	assert.True(t, ex.HasMissing())
	assert.Equal(t, 1, ex.MissingValues)
}

func TestExplore_ZeroPriceCountsAsMissing(t *testing.T) {
	day := time.Date(2016, 10, 3, 0, 0, 0, 0, time.UTC)
	series := &model.PriceSeries{Bars: []model.PriceBar{
		{Time: day, Open: 5, High: 5, Low: 5, Close: 5, AdjClose: 5},
		{Time: day.AddDate(0, 0, 1), Open: 0, High: 5, Low: 0, Close: 5, AdjClose: 5},
	}}
	ex, err := Explore(series, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, ex.MissingValues)
}

func TestExplore_Empty(t *testing.T) {
	_, err := Explore(&model.PriceSeries{}, 0)
	assert.Error(t, err)
	_, err = Explore(nil, 0)
	assert.Error(t, err)
}
