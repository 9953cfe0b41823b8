package eval

import "sync"

// Cache maps canonical grid keys to fitness scores. It grows for the
// life of a run and is never evicted. First write wins: fitness is a
// pure function of grid contents for a fixed fuel, so a duplicate
// insert always carries the same value and may be dropped.
type Cache struct {
	mu     sync.RWMutex
	scores map[string]float64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{scores: make(map[string]float64)}
}

// Get returns the cached score for key, if present.
func (c *Cache) Get(key string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	score, ok := c.scores[key]
	return score, ok
}

// PutIfAbsent stores score under key unless the key is already
// present, and returns the value that ends up stored.
func (c *Cache) PutIfAbsent(key string, score float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.scores[key]; ok {
		return existing
	}
	c.scores[key] = score
	return score
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.scores)
}
