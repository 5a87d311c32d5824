package datastore

import (
	"sort"
	"sync"

	"github.com/specialistvlad/pagegridgo/internal/value"
)

// Store is an in-memory map of component id to record list.
type Store struct {
	records sync.Map // Key: component id, Value: []value.Value
	// writeMu serializes read-modify-write updates such as Append.
	writeMu sync.Mutex

	mu          sync.RWMutex
	subscribers []func(componentID string)
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

// Set replaces the records of a component. A nil slice clears them.
func (s *Store) Set(componentID string, records []value.Value) {
	s.writeMu.Lock()
	if records == nil {
		s.records.Delete(componentID)
	} else {
		cp := make([]value.Value, len(records))
		copy(cp, records)
		s.records.Store(componentID, cp)
	}
	s.writeMu.Unlock()
	s.notify(componentID)
}

// Get returns a copy of the records stored for a component.
func (s *Store) Get(componentID string) []value.Value {
	v, ok := s.records.Load(componentID)
	if !ok {
		return nil
	}
	records := v.([]value.Value)
	cp := make([]value.Value, len(records))
	copy(cp, records)
	return cp
}

// Append adds records to the end of a component's list.
func (s *Store) Append(componentID string, records ...value.Value) {
	s.writeMu.Lock()
	next := append(s.Get(componentID), records...)
	s.records.Store(componentID, next)
	s.writeMu.Unlock()
	s.notify(componentID)
}

// Clear removes a component's records.
func (s *Store) Clear(componentID string) {
	s.Set(componentID, nil)
}

// Keys returns the ids that currently hold records, sorted.
func (s *Store) Keys() []string {
	var keys []string
	s.records.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}

// Snapshot returns the whole store as an object of arrays.
func (s *Store) Snapshot() value.Value {
	fields := make(map[string]value.Value)
	s.records.Range(func(k, v any) bool {
		fields[k.(string)] = value.Array(v.([]value.Value)...)
		return true
	})
	return value.Object(fields)
}

// Subscribe registers fn to be called with the component id after each
// change. Callbacks run synchronously on the mutating goroutine.
func (s *Store) Subscribe(fn func(componentID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) notify(componentID string) {
	s.mu.RLock()
	subs := make([]func(string), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(componentID)
	}
}
