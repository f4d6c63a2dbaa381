package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"MACross/internal/model"
)

// Fetcher defines the interface for fetching daily bars.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.PriceBar, error)
	Name() string
}

// NewTransport returns an HTTP transport with optional proxy support.
func NewTransport(proxyURL string) *http.Transport {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return transport
}

func newClient(rt http.RoundTripper) *http.Client {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: rt,
	}
}
