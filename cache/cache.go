// Package cache keeps analysis results keyed by content hash in a flat JSON
// file. Every insertion is written through to disk.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type Option func(*options)

type options struct {
	log logrus.FieldLogger
}

// WithLogger sets the logger used for corrupt-file and flush warnings.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// Cache maps a content hash to a stored value. It is safe for concurrent use.
type Cache[V any] struct {
	path string
	log  logrus.FieldLogger

	mu      sync.RWMutex
	entries map[string]V

	flushMu sync.Mutex
	group   singleflight.Group
}

// New returns an empty cache persisted at path. Call Load to read the file.
func New[V any](path string, opts ...Option) *Cache[V] {
	o := options{log: logrus.StandardLogger()}
	for _, fn := range opts {
		fn(&o)
	}
	return &Cache[V]{path: path, log: o.log, entries: map[string]V{}}
}

// NewMemory returns a cache that never touches disk.
func NewMemory[V any](opts ...Option) *Cache[V] { return New[V]("", opts...) }

// Load replaces the in-memory entries with the file's contents. A missing or
// unparsable file leaves the cache empty and is not an error.
func (c *Cache[V]) Load() error {
	if c.path == "" {
		return nil
	}
	b, err := os.ReadFile(c.path)
	entries := map[string]V{}
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		c.reset(entries)
		return fmt.Errorf("cache read: %w", err)
	default:
		if err := json.Unmarshal(b, &entries); err != nil {
			c.log.WithError(err).WithField("path", c.path).Warn("cache: corrupt file, starting empty")
			entries = map[string]V{}
		}
	}
	c.reset(entries)
	return nil
}

func (c *Cache[V]) reset(entries map[string]V) {
	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
}

func (c *Cache[V]) Get(hash string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[hash]
	return v, ok
}

// Put stores v and flushes the cache. The entry stays in memory even when
// the flush fails.
func (c *Cache[V]) Put(hash string, v V) error {
	c.mu.Lock()
	c.entries[hash] = v
	c.mu.Unlock()
	return c.Flush()
}

func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Flush writes every entry to a temporary file next to the cache file and
// renames it into place.
func (c *Cache[V]) Flush() error {
	if c.path == "" {
		return nil
	}
	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	c.mu.RLock()
	b, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("cache flush: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("cache flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cache flush: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("cache flush: %w", err)
	}
	return nil
}

// Do returns the cached value for hash, or runs compute once across all
// concurrent callers asking for the same hash and stores its result. hit
// reports whether the value came from the cache. Flush failures are logged.
func (c *Cache[V]) Do(hash string, compute func() (V, error)) (v V, hit bool, err error) {
	if v, ok := c.Get(hash); ok {
		return v, true, nil
	}
	res, err, _ := c.group.Do(hash, func() (any, error) {
		if v, ok := c.Get(hash); ok {
			return outcome[V]{v, true}, nil
		}
		v, err := compute()
		if err != nil {
			return nil, err
		}
		if err := c.Put(hash, v); err != nil {
			c.log.WithError(err).WithField("hash", hash).Warn("cache: flush failed, keeping entry in memory")
		}
		return outcome[V]{v, false}, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	o := res.(outcome[V])
	return o.v, o.hit, nil
}

type outcome[V any] struct {
	v   V
	hit bool
}
