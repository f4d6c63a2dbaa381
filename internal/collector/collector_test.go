package collector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MACross/internal/model"
)

const yahooFixture = `{
  "chart": {
    "result": [{
      "timestamp": [1475501400, 1475587800, 1475674200, 1475760600],
      "indicators": {
        "quote": [{
          "open":   [29.50, 29.60, null, 29.90],
          "high":   [29.80, 29.95, null, 30.10],
          "low":    [29.40, 29.55, null, 29.70],
          "close":  [29.70, 29.90, null, 30.00],
          "volume": [1000, 1100, null, 1300]
        }],
        "adjclose": [{"adjclose": [25.10, 25.27, null, null]}]
      }
    }],
    "error": null
  }
}`

func TestYahooFetcher_FetchDailyBars(t *testing.T) {
	var gotPath, gotInterval string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		_, _ = w.Write([]byte(yahooFixture))
	}))
	defer srv.Close()

	f := NewYahooFetcher(nil)
	f.BaseURL = srv.URL

	start := time.Date(2016, 10, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2016, 10, 7, 0, 0, 0, 0, time.UTC)
	bars, err := f.FetchDailyBars(context.Background(), "SPX", start, end)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/^GSPC", gotPath)
	assert.Equal(t, "1d", gotInterval)
	require.Len(t, bars, 3, "null row must be skipped")

	assert.Equal(t, time.Date(2016, 10, 3, 0, 0, 0, 0, time.UTC), bars[0].Time)
	assert.Equal(t, 29.70, bars[0].Close)
	assert.Equal(t, 25.10, bars[0].AdjClose)
	assert.Equal(t, 1000.0, bars[0].Volume)
	// Missing adjusted close falls back to close.
	assert.Equal(t, 30.00, bars[2].AdjClose)
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher(nil)
	f.BaseURL = srv.URL
	_, err := f.FetchDailyBars(context.Background(), "XXXX", time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")
}

func TestYahooFetcher_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewYahooFetcher(nil)
	f.BaseURL = srv.URL
	_, err := f.FetchDailyBars(context.Background(), "GE", time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestRESTFetcher_FetchDailyBars(t *testing.T) {
	adj := 9.5
	payload := []restBar{
		{Timestamp: 1475587800, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 200},
		{Timestamp: 1475501400, Open: 9, High: 10, Low: 8, Close: 9.8, AdjClose: &adj, Volume: 100},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/bars/daily", r.URL.Path)
		assert.Equal(t, "GE", r.URL.Query().Get("symbol"))
		assert.Equal(t, "2016-10-01", r.URL.Query().Get("start"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", nil)
	bars, err := f.FetchDailyBars(context.Background(), "GE",
		time.Date(2016, 10, 1, 0, 0, 0, 0, time.UTC), time.Date(2016, 10, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
	assert.Equal(t, 9.5, bars[0].AdjClose)
	assert.Equal(t, 10.5, bars[1].AdjClose)
}

func TestCollector_Collect(t *testing.T) {
	day := time.Date(2016, 10, 3, 0, 0, 0, 0, time.UTC)
	fetcher := &StaticFetcher{Bars: []model.PriceBar{
		{Time: day, Close: 1},
		{Time: day.AddDate(0, 0, 1), Close: 2},
		{Time: day.AddDate(0, 0, 1), Close: 2.5},
		{Time: day.AddDate(0, 0, 2), Close: 3},
		{Time: day.AddDate(0, 0, 30), Close: 4},
	}}
	col := NewCollector(fetcher, "IO", day, day.AddDate(0, 0, 10))

	series, err := col.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "IO", series.Symbol)
	assert.Equal(t, "static", series.Source)
	require.Len(t, series.Bars, 3)
	assert.Equal(t, []float64{1, 2, 3}, model.Closes(series.Bars))
}

func TestCollector_Errors(t *testing.T) {
	boom := errors.New("boom")
	col := NewCollector(&StaticFetcher{Err: boom}, "GE", time.Now().AddDate(-1, 0, 0), time.Time{})
	_, err := col.Collect(context.Background())
	assert.ErrorIs(t, err, boom)

	col = NewCollector(&StaticFetcher{}, "GE", time.Now().AddDate(-1, 0, 0), time.Time{})
	_, err = col.Collect(context.Background())
	assert.Error(t, err)
}
