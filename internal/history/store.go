package history

import (
	"sort"
	"sync"
	"time"
)

// Store holds historical entity states in memory, indexed by entity ID.
type Store struct {
	mu       sync.RWMutex
	readings map[string][]Reading // keyed by entity ID, sorted by timestamp
}

func NewStore() *Store {
	return &Store{readings: make(map[string][]Reading)}
}

// Add inserts readings, keeping each entity's history sorted by timestamp.
func (s *Store) Add(readings []Reading) {
	if len(readings) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range readings {
		s.readings[r.Entity] = append(s.readings[r.Entity], r)
	}

	seen := make(map[string]bool)
	for _, r := range readings {
		if !seen[r.Entity] {
			seen[r.Entity] = true
			list := s.readings[r.Entity]
			sort.Slice(list, func(i, j int) bool {
				return list[i].Timestamp.Before(list[j].Timestamp)
			})
		}
	}
}

// Entities returns all entity IDs with history, sorted.
func (s *Store) Entities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.readings))
	for e := range s.readings {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// TimeRange returns the union of all entities' time ranges.
func (s *Store) TimeRange() (start, end time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, list := range s.readings {
		if len(list) == 0 {
			continue
		}
		first := list[0].Timestamp
		last := list[len(list)-1].Timestamp
		if !ok || first.Before(start) {
			start = first
		}
		if !ok || last.After(end) {
			end = last
		}
		ok = true
	}
	return start, end, ok
}

// StateAt returns the latest state at or before t for an entity.
func (s *Store) StateAt(entity string, t time.Time) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.readings[entity]
	if len(list) == 0 {
		return "", false
	}

	idx := sort.Search(len(list), func(i int) bool {
		return list[i].Timestamp.After(t)
	})
	if idx == 0 {
		return "", false
	}
	return list[idx-1].State, true
}

// Cursor is a movable point-in-time view over the store. It implements the
// states provider contract, so the engine can replay history as if it were
// live data.
type Cursor struct {
	mu    sync.RWMutex
	store *Store
	t     time.Time
}

func (s *Store) Cursor(t time.Time) *Cursor {
	return &Cursor{store: s, t: t}
}

// Seek moves the cursor to t.
func (c *Cursor) Seek(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// Time returns the cursor's current position.
func (c *Cursor) Time() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.t
}

// Value returns the entity's state at the cursor position.
func (c *Cursor) Value(key string) (string, bool) {
	c.mu.RLock()
	t := c.t
	c.mu.RUnlock()
	return c.store.StateAt(key, t)
}
