// Package httpcache provides a persistent cache for upstream HTTP responses,
// so repeated runs within the expiry window do not hit the data provider.
package httpcache

import "time"

// Entry is one cached response in wire format.
type Entry struct {
	Key      string
	Response []byte
	StoredAt time.Time
}

// Store persists cached responses.
type Store interface {
	Get(key string) (*Entry, error)
	Put(entry *Entry) error
	PurgeExpired(olderThan time.Time) (int64, error)
	Close() error
}

// NoopStore caches nothing. It is used when no cache path is configured.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Get(_ string) (*Entry, error)            { return nil, nil }
func (n *NoopStore) Put(_ *Entry) error                      { return nil }
func (n *NoopStore) PurgeExpired(_ time.Time) (int64, error) { return 0, nil }
func (n *NoopStore) Close() error                            { return nil }
