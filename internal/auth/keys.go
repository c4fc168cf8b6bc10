package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/team5526/pitcrew/internal/logger"
)

// KeyCache supplies the identity provider's current signing certificates,
// keyed by kid. Implementations cache; callers never do.
type KeyCache interface {
	Get(ctx context.Context) (map[string]string, error)
}

// HTTPKeyCache fetches x509 signing certificates over HTTP and caches them
// for a fixed TTL. The provider rotates keys, so the cache re-fetches after
// expiry and on unknown-kid misses.
type HTTPKeyCache struct {
	url        string
	ttl        time.Duration
	httpClient *http.Client
	log        logger.Logger

	mu        sync.RWMutex
	keys      map[string]string
	fetchedAt time.Time
}

// NewHTTPKeyCache creates a key cache backed by the given certificate URL
func NewHTTPKeyCache(url string, ttl time.Duration, log logger.Logger) *HTTPKeyCache {
	return &HTTPKeyCache{
		url: url,
		ttl: ttl,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// Get returns the cached certificate map, refreshing it when stale
func (c *HTTPKeyCache) Get(ctx context.Context) (map[string]string, error) {
	c.mu.RLock()
	if c.keys != nil && time.Since(c.fetchedAt) < c.ttl {
		keys := c.keys
		c.mu.RUnlock()
		return keys, nil
	}
	c.mu.RUnlock()

	return c.refresh(ctx)
}

// Invalidate drops the cached keys so the next Get re-fetches. Used when a
// token carries a kid the cache does not know.
func (c *HTTPKeyCache) Invalidate() {
	c.mu.Lock()
	c.keys = nil
	c.mu.Unlock()
}

func (c *HTTPKeyCache) refresh(ctx context.Context) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have refreshed while we waited on the lock
	if c.keys != nil && time.Since(c.fetchedAt) < c.ttl {
		return c.keys, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create key request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch signing keys: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("key endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var keys map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&keys); err != nil {
		return nil, fmt.Errorf("failed to decode signing keys: %w", err)
	}

	c.keys = keys
	c.fetchedAt = time.Now()
	c.log.Debug("signing keys refreshed", "count", len(keys))
	return keys, nil
}

// StaticKeyCache serves a fixed certificate map. Used in tests and for
// offline development.
type StaticKeyCache struct {
	Keys map[string]string
}

// Get returns the static certificate map
func (c *StaticKeyCache) Get(ctx context.Context) (map[string]string, error) {
	return c.Keys, nil
}

var (
	_ KeyCache = (*HTTPKeyCache)(nil)
	_ KeyCache = (*StaticKeyCache)(nil)
)
