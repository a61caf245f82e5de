package store

import (
	"sort"
	"sync"

	"github.com/obsidianstack/statuspanels/pkg/types"
)

// Store is a thread-safe in-memory view store, keyed by panel ID.
type Store struct {
	mu   sync.RWMutex
	data map[string]types.PanelView
}

// New creates an empty Store.
func New() *Store {
	return &Store{data: make(map[string]types.PanelView)}
}

// Put stores or replaces the view for v.ID.
func (s *Store) Put(v types.PanelView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[v.ID] = v
}

// Get returns the view for the given panel ID and whether one was found.
func (s *Store) Get(id string) (types.PanelView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[id]
	return v, ok
}

// List returns all views ordered by board position.
func (s *Store) List() []types.PanelView {
	s.mu.RLock()
	out := make([]types.PanelView, 0, len(s.data))
	for _, v := range s.data {
		out = append(out, v)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Count returns the number of views held.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Retain drops every view whose ID is not in ids and returns how many were
// removed. Used after a config reload removes panels.
func (s *Store) Retain(ids map[string]bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id := range s.data {
		if !ids[id] {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}
