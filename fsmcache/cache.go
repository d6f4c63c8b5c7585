// Package fsmcache memoizes index builds keyed by regex and vocabulary
// fingerprint, so repeated requests for the same (regex, vocabulary) pair
// share a single in-flight or finished build rather than racing duplicate
// BFS walks against the same automaton.
package fsmcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/coregx/fsmindex"
	"github.com/coregx/fsmindex/index"
	"github.com/coregx/fsmindex/vocab"
)

// Fingerprint identifies a (regex, vocabulary, config) build uniquely
// enough for memoization — a collision would serve the wrong index, so it
// is derived with sha256 rather than a fast, collision-prone hash.
type Fingerprint [32]byte

// Cache maps fingerprints to finished or in-flight LazyIndex builds.
//
// Thread safety: all methods are safe for concurrent access. A RWMutex
// guards the backing map (reads are the common case, grounded on the
// teacher's dfa/lazy.Cache) and a singleflight.Group collapses concurrent
// misses for the same fingerprint into one build.
type Cache struct {
	mu       sync.RWMutex
	entries  map[Fingerprint]*index.LazyIndex
	group    singleflight.Group
	disabled bool
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[Fingerprint]*index.LazyIndex)}
}

var (
	globalOnce sync.Once
	global     *Cache
)

// Global returns the process-wide cache. It is disabled for the lifetime
// of the process if the DISABLE_CACHE environment variable is set to
// anything but an empty string, checked once on first use.
func Global() *Cache {
	globalOnce.Do(func() {
		global = New()
		if os.Getenv("DISABLE_CACHE") != "" {
			global.Disable()
		}
	})
	return global
}

// GetOrBuild returns the cached handle for (regex, v, cfg) if one exists,
// building it otherwise. Concurrent calls with the same fingerprint
// observe the same handle — the underlying build runs exactly once.
func (c *Cache) GetOrBuild(ctx context.Context, regex string, v *vocab.Vocabulary, cfg fsmindex.Config) (*index.LazyIndex, error) {
	if c.isDisabled() {
		return fsmindex.BuildWithConfig(ctx, regex, v, cfg)
	}

	fp := fingerprint(regex, v, cfg)

	c.mu.RLock()
	if h, ok := c.entries[fp]; ok {
		c.mu.RUnlock()
		return h, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.group.Do(string(fp[:]), func() (interface{}, error) {
		c.mu.RLock()
		if h, ok := c.entries[fp]; ok {
			c.mu.RUnlock()
			return h, nil
		}
		c.mu.RUnlock()

		h, err := fsmindex.BuildWithConfig(ctx, regex, v, cfg)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[fp] = h
		c.mu.Unlock()
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*index.LazyIndex), nil
}

// Clear removes every cached entry. In-flight builds already handed out
// keep running; they are simply no longer reachable from future lookups.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Fingerprint]*index.LazyIndex)
}

// Disable makes every future GetOrBuild call bypass memoization entirely,
// building fresh each time. Irreversible for the cache's lifetime —
// mirrors DISABLE_CACHE being an environment-level, process-lifetime knob.
func (c *Cache) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = true
}

func (c *Cache) isDisabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.disabled
}

func fingerprint(regex string, v *vocab.Vocabulary, cfg fsmindex.Config) Fingerprint {
	h := sha256.New()
	h.Write([]byte(regex))
	digest := v.Digest()
	h.Write(digest[:])
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(cfg.WorkerThreads))
	binary.BigEndian.PutUint64(buf[8:16], uint64(cfg.MaxAutomatonStates))
	h.Write(buf[:])
	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp
}
