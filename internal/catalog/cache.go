package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"
)

// Cache holds the most recently parsed catalog together with the path,
// modification time and size it was read at. A change in any of them
// forces a re-parse.
type Cache struct {
	mu      sync.Mutex
	path    string
	modTime time.Time
	size    int64
	exists  bool
	catalog *Catalog
	parses  int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Load returns the catalog at path, parsing it only when the file changed
// since the previous call. A missing file is an empty catalog.
func (c *Cache) Load(path string, parse func([]byte) *Catalog) (*Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if c.catalog == nil || c.path != path || c.exists {
			c.store(path, time.Time{}, 0, false, &Catalog{})
		}
		return c.catalog, nil
	case err != nil:
		return nil, fmt.Errorf("stat catalog %s: %w", path, err)
	}

	if c.catalog != nil && c.path == path && c.exists &&
		c.modTime.Equal(st.ModTime()) && c.size == st.Size() {
		return c.catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c.parses++
	c.store(path, st.ModTime(), st.Size(), true, parse(data))
	return c.catalog, nil
}

func (c *Cache) store(path string, modTime time.Time, size int64, exists bool, cat *Catalog) {
	c.path = path
	c.modTime = modTime
	c.size = size
	c.exists = exists
	c.catalog = cat
}

// Invalidate drops the cached catalog.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog = nil
}

// Parses reports how many times a file was actually parsed.
func (c *Cache) Parses() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parses
}
