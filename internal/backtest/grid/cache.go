package grid

import "sync"

// Cache stores grid records by run key. Implementations must be safe for
// concurrent use by the runner's workers.
type Cache interface {
	// Get returns the record for key. A miss is (Record{}, false, nil).
	Get(key string) (Record, bool, error)
	Put(key string, record Record) error
	// Reset drops every record.
	Reset() error
}

// MemoryCache keeps records for the lifetime of the process.
type MemoryCache struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		records: make(map[string]Record),
	}
}

// Get implements Cache.
func (c *MemoryCache) Get(key string) (Record, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	record, ok := c.records[key]

	return record, ok, nil
}

// Put implements Cache.
func (c *MemoryCache) Put(key string, record Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records[key] = record

	return nil
}

// Reset implements Cache.
func (c *MemoryCache) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = make(map[string]Record)

	return nil
}

// Len returns the number of cached records.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.records)
}
