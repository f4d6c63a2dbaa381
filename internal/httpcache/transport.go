package httpcache

import (
	"bufio"
	"bytes"
	"fmt"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultExpireAfter is how long a cached response stays fresh.
const DefaultExpireAfter = 72 * time.Hour

// HeaderFromCache is set on responses served from the store.
const HeaderFromCache = "X-From-Cache"

// Transport is an http.RoundTripper that serves successful GET responses
// from Store while they are younger than ExpireAfter.
type Transport struct {
	Next        http.RoundTripper
	Store       Store
	ExpireAfter time.Duration
	Now         func() time.Time
}

// NewTransport wraps next with a cache backed by store.
func NewTransport(next http.RoundTripper, store Store, expireAfter time.Duration) *Transport {
	if expireAfter <= 0 {
		expireAfter = DefaultExpireAfter
	}
	return &Transport{Next: next, Store: store, ExpireAfter: expireAfter}
}

func (t *Transport) next() http.RoundTripper {
	if t.Next == nil {
		return http.DefaultTransport
	}
	return t.Next
}

func (t *Transport) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

func cacheKey(req *http.Request) string {
	return req.Method + " " + req.URL.String()
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || t.Store == nil {
		return t.next().RoundTrip(req)
	}
	key := cacheKey(req)

	if resp := t.lookup(req, key); resp != nil {
		return resp, nil
	}

	resp, err := t.next().RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	// DumpResponse buffers the body and leaves resp readable.
	raw, err := httputil.DumpResponse(resp, true)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("buffer response: %w", err)
	}
	if err := t.Store.Put(&Entry{Key: key, Response: raw, StoredAt: t.now()}); err != nil {
		log.Warn().Err(err).Str("url", req.URL.Redacted()).Msg("http cache write failed")
	}
	return resp, nil
}

func (t *Transport) lookup(req *http.Request, key string) *http.Response {
	entry, err := t.Store.Get(key)
	if err != nil {
		log.Warn().Err(err).Str("url", req.URL.Redacted()).Msg("http cache read failed")
		return nil
	}
	if entry == nil || t.now().Sub(entry.StoredAt) >= t.ExpireAfter {
		return nil
	}
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(entry.Response)), req)
	if err != nil {
		log.Warn().Err(err).Str("url", req.URL.Redacted()).Msg("corrupt http cache entry")
		return nil
	}
	resp.Header.Set(HeaderFromCache, "1")
	log.Debug().Str("url", req.URL.Redacted()).Time("stored_at", entry.StoredAt).Msg("http cache hit")
	return resp
}

// Purge removes every entry that has outlived ExpireAfter.
func (t *Transport) Purge() (int64, error) {
	if t.Store == nil {
		return 0, nil
	}
	return t.Store.PurgeExpired(t.now().Add(-t.ExpireAfter))
}
