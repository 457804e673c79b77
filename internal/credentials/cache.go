package credentials

import (
	"sync"

	"github.com/systmms/davsync/internal/secure"
)

type cacheKey struct {
	username string
	host     string
}

// Cache holds the passwords resolved during one CLI session, keyed by
// (username, hostname). Entries are never evicted; Destroy wipes them all
// when the session ends.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]*secure.SecureBuffer
}

// NewCache creates an empty session cache
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]*secure.SecureBuffer)}
}

// Get returns the cached password for (username, host)
func (c *Cache) Get(username, host string) (string, bool) {
	c.mu.RLock()
	buf, ok := c.entries[cacheKey{username, host}]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}

	pw, err := buf.Reveal()
	if err != nil {
		return "", false
	}
	return pw, true
}

// Contains reports whether (username, host) has been resolved
func (c *Cache) Contains(username, host string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[cacheKey{username, host}]
	return ok
}

// Put stores password, replacing any previous entry
func (c *Cache) Put(username, host, password string) error {
	buf, err := secure.NewSecureString(password)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{username, host}
	if old, ok := c.entries[key]; ok {
		old.Destroy()
	}
	c.entries[key] = buf
	return nil
}

// Len returns the number of cached credentials
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Destroy wipes every entry. The cache stays usable and empty.
func (c *Cache) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, buf := range c.entries {
		buf.Destroy()
		delete(c.entries, key)
	}
}
