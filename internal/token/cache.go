package token

import (
	"context"
	"errors"
	"fmt"
	"sync"

	klog "github.com/Klingon-tech/tokenview/internal/log"
	"golang.org/x/sync/singleflight"
)

// FetchFunc loads metadata for a token from its ledger.
type FetchFunc func(ctx context.Context) (Metadata, error)

var errNilFetch = errors.New("no metadata fetch function")

// Cache maps token ids to metadata. Entries are written at most once and
// never evicted. Concurrent misses for one token share a single fetch.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Metadata

	flights singleflight.Group
}

// NewCache creates an empty metadata cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]Metadata),
	}
}

// Get returns the metadata for tokenID, calling fetch on a miss. The bool is
// false when the ledger did not answer and the metadata is Fallback().
//
// A failed fetch yields Fallback() to every caller waiting on it and leaves
// the key absent so a later call retries. The fetch itself is detached from
// ctx: a caller whose ctx ends early gets Fallback(), while the fetch keeps
// running and a successful result is still stored.
func (c *Cache) Get(ctx context.Context, tokenID string, fetch FetchFunc) (Metadata, bool) {
	if m, ok := c.Peek(tokenID); ok {
		return m, true
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(tokenID, func() (interface{}, error) {
		// A flight for this key may have completed between Peek and DoChan.
		if m, ok := c.Peek(tokenID); ok {
			return m, nil
		}
		m, err := safeFetch(fetchCtx, fetch)
		if err != nil {
			logger := klog.WithTokenID(tokenID)
			logger.Warn().
				Err(err).
				Msg("Token metadata fetch failed, using fallback")
			return nil, err
		}
		return c.insert(tokenID, m), nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Fallback(), false
		}
		return res.Val.(Metadata), true
	case <-ctx.Done():
		return Fallback(), false
	}
}

// Peek returns the cached metadata for tokenID without fetching.
func (c *Cache) Peek(tokenID string) (Metadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.entries[tokenID]
	return m, ok
}

// Len returns the number of cached tokens.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// insert stores m unless the key already has an entry, and returns the
// stored value.
func (c *Cache) insert(tokenID string, m Metadata) Metadata {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[tokenID]; ok {
		return existing
	}
	c.entries[tokenID] = m
	return m
}

// safeFetch runs fetch and converts a panic into an error so a broken
// metadata source cannot take the process down.
func safeFetch(ctx context.Context, fetch FetchFunc) (m Metadata, err error) {
	if fetch == nil {
		return Metadata{}, errNilFetch
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("metadata fetch panicked: %v", r)
		}
	}()
	return fetch(ctx)
}
