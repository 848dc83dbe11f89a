package store

import "sync"

// Counters tracks per-key write and remove counts. It is owned by whoever
// constructs the store (not process-global) so tests can build isolated
// instances.
type Counters struct {
	mu      sync.Mutex
	writes  map[string]int
	removes map[string]int
}

func NewCounters() *Counters {
	return &Counters{
		writes:  make(map[string]int),
		removes: make(map[string]int),
	}
}

func (c *Counters) CountWrite(key string) {
	c.mu.Lock()
	c.writes[key]++
	c.mu.Unlock()
}

func (c *Counters) CountRemove(key string) {
	c.mu.Lock()
	c.removes[key]++
	c.mu.Unlock()
}

func (c *Counters) Writes(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes[key]
}

func (c *Counters) Removes(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removes[key]
}

// Totals returns the summed write and remove counts across all keys.
func (c *Counters) Totals() (writes, removes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.writes {
		writes += n
	}
	for _, n := range c.removes {
		removes += n
	}
	return writes, removes
}
