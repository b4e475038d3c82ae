package world

import (
	"sync"
	"time"
)

const (
	DefaultMaxEvents = 50
	DefaultEventTTL  = 10 * time.Minute
)

// StateCache holds the latest Snapshot plus a bounded, time-windowed log of
// notable events. The owning service is the only writer; readers go through
// the accessors and never hold a mutable reference.
type StateCache struct {
	mu        sync.RWMutex
	snapshot  *Snapshot
	events    []Event
	maxEvents int
	eventTTL  time.Duration

	now func() time.Time // test hook
}

func NewStateCache(maxEvents int, eventTTL time.Duration) *StateCache {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	if eventTTL <= 0 {
		eventTTL = DefaultEventTTL
	}
	return &StateCache{
		maxEvents: maxEvents,
		eventTTL:  eventTTL,
		now:       time.Now,
	}
}

// UpdateWorld atomically replaces the current snapshot. Last write wins;
// the server is trusted to push in order.
func (c *StateCache) UpdateWorld(s Snapshot) {
	c.mu.Lock()
	c.snapshot = &s
	c.mu.Unlock()
}

// World returns a copy of the current snapshot, or ok=false before the
// first update (and after Clear).
func (c *StateCache) World() (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return Snapshot{}, false
	}
	return *c.snapshot, true
}

// PushEvent appends one entry and prunes by both count and age.
func (c *StateCache) PushEvent(ev Event) {
	if ev.At.IsZero() {
		ev.At = c.now()
	}
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.pruneLocked(c.now())
	c.mu.Unlock()
}

// RecentEvents returns the not-yet-expired entries in receipt order.
func (c *StateCache) RecentEvents() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked(c.now())
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Clear resets both the snapshot and the event log. Used on service stop.
func (c *StateCache) Clear() {
	c.mu.Lock()
	c.snapshot = nil
	c.events = nil
	c.mu.Unlock()
}

func (c *StateCache) pruneLocked(now time.Time) {
	cutoff := now.Add(-c.eventTTL)
	i := 0
	for i < len(c.events) && c.events[i].At.Before(cutoff) {
		i++
	}
	if i > 0 {
		c.events = append(c.events[:0], c.events[i:]...)
	}
	if n := len(c.events) - c.maxEvents; n > 0 {
		c.events = append(c.events[:0], c.events[n:]...)
	}
}
