package sms

import "sync"

const defaultDedupCapacity = 1000

// DedupCache suppresses reprocessing of webhook retries. It remembers
// the most recently seen GUIDs up to a fixed capacity, evicting strictly
// FIFO. No TTL; eviction is purely capacity-driven, so a retry arriving
// after capacity-many other distinct messages is treated as new.
type DedupCache struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
	cap   int
}

func NewDedupCache(capacity int) *DedupCache {
	if capacity <= 0 {
		capacity = defaultDedupCapacity
	}
	return &DedupCache{
		seen: make(map[string]struct{}, capacity),
		cap:  capacity,
	}
}

// MarkProcessed reports whether guid is seen for the first time.
// Test-and-insert runs under one lock: two concurrent deliveries of the
// same guid can never both pass the gate.
func (c *DedupCache) MarkProcessed(guid string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[guid]; ok {
		return false
	}

	if len(c.order) >= c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.seen, oldest)
	}

	c.seen[guid] = struct{}{}
	c.order = append(c.order, guid)
	return true
}

// Reset clears all state. Test isolation only.
func (c *DedupCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = make(map[string]struct{}, c.cap)
	c.order = nil
}
