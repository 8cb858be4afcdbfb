package report

import (
	"container/list"
	"fmt"
	"sync"
)

// LRUStore keeps the most recent runs in memory. Records are lost when
// the process exits.
type LRUStore struct {
	mu    sync.Mutex
	cap   int
	order *list.List // front is most recently used; values are *RunResult
	items map[string]*list.Element
}

// NewLRUStore creates a store holding at most cap runs. Capacity must be >= 1.
func NewLRUStore(cap int) *LRUStore {
	if cap < 1 {
		cap = 1
	}
	return &LRUStore{
		cap:   cap,
		order: list.New(),
		items: make(map[string]*list.Element, cap),
	}
}

// Save inserts or replaces a run, evicting the least recently used one
// when full.
func (s *LRUStore) Save(result *RunResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.items[result.ID]; ok {
		e.Value = result
		s.order.MoveToFront(e)
		return nil
	}
	s.items[result.ID] = s.order.PushFront(result)
	if s.order.Len() > s.cap {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.items, oldest.Value.(*RunResult).ID)
	}
	return nil
}

// Load returns a stored run and marks it as recently used.
func (s *LRUStore) Load(runID string) (*RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	s.order.MoveToFront(e)
	return e.Value.(*RunResult), nil
}

// len returns the number of stored runs.
func (s *LRUStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
