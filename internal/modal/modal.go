// Package modal tracks which modal nodes are open. The set is the only source
// of truth for modal rendering: an id that is not in the set does not render.
package modal

import (
	"fmt"
	"sort"
	"sync"
)

// SignalKind is one of the two mutations a modal set accepts.
type SignalKind string

const (
	SignalOpen  SignalKind = "open"
	SignalClose SignalKind = "close"
)

// Signal asks the set to open or close one modal.
type Signal struct {
	Kind    SignalKind `json:"kind"`
	ModalID string     `json:"modalId"`
}

// Set is the global open-set of modal ids.
type Set struct {
	mu   sync.RWMutex
	open map[string]struct{}
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{open: make(map[string]struct{})}
}

// Open adds id to the set.
func (s *Set) Open(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open[id] = struct{}{}
}

// Close removes id from the set.
func (s *Set) Close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.open, id)
}

// IsOpen reports whether id is in the set. A nil set has nothing open.
func (s *Set) IsOpen(id string) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.open[id]
	return ok
}

// Apply dispatches a signal to Open or Close.
func (s *Set) Apply(sig Signal) error {
	if sig.ModalID == "" {
		return fmt.Errorf("modal signal %q has no modal id", sig.Kind)
	}
	switch sig.Kind {
	case SignalOpen:
		s.Open(sig.ModalID)
	case SignalClose:
		s.Close(sig.ModalID)
	default:
		return fmt.Errorf("unknown modal signal %q", sig.Kind)
	}
	return nil
}

// IDs returns the open ids, sorted.
func (s *Set) IDs() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.open))
	for id := range s.open {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
