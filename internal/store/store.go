// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store holds looked-up records in insertion order, keyed by
// identifier, with bounded capacity and FIFO eviction. It also reads and
// writes the on-disk .bib serialization.
package store

import (
	"fmt"
	"strings"

	"github.com/pdiddy/citeseek/internal/bib"
)

// Store is an ordered identifier-to-record map. It is not safe for
// concurrent use; lookups run strictly sequentially.
type Store struct {
	capacity int
	order    []string
	items    map[string]*bib.Record
}

// New creates a store. A capacity of zero or less means unbounded.
func New(capacity int) *Store {
	return &Store{
		capacity: capacity,
		items:    make(map[string]*bib.Record),
	}
}

// Len returns the number of stored records.
func (s *Store) Len() int { return len(s.order) }

// Put inserts a record under its identifier. Re-inserting an existing
// identifier replaces the record in place, keeping its position. When the
// insertion exceeds capacity the oldest-inserted record is evicted first
// (FIFO; access order is not tracked).
func (s *Store) Put(rec *bib.Record) {
	id := rec.Identifier()
	if _, ok := s.items[id]; ok {
		s.items[id] = rec
		return
	}
	s.order = append(s.order, id)
	s.items[id] = rec
	if s.capacity > 0 && len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.items, oldest)
	}
}

// Get returns the record stored under an identifier.
func (s *Store) Get(identifier string) (*bib.Record, bool) {
	rec, ok := s.items[identifier]
	return rec, ok
}

// At returns the record at a position in insertion order.
func (s *Store) At(index int) (*bib.Record, bool) {
	if index < 0 || index >= len(s.order) {
		return nil, false
	}
	return s.items[s.order[index]], true
}

// Pop removes and returns the record stored under an identifier.
func (s *Store) Pop(identifier string) (*bib.Record, bool) {
	rec, ok := s.items[identifier]
	if !ok {
		return nil, false
	}
	delete(s.items, identifier)
	for i, id := range s.order {
		if id == identifier {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return rec, true
}

// PopAt removes and returns the record at a position in insertion order.
func (s *Store) PopAt(index int) (*bib.Record, bool) {
	if index < 0 || index >= len(s.order) {
		return nil, false
	}
	return s.Pop(s.order[index])
}

// All returns the records in insertion order.
func (s *Store) All() []*bib.Record {
	out := make([]*bib.Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Identifiers returns the stored identifiers in insertion order.
func (s *Store) Identifiers() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// String renders the stored records with index and identifier comment
// headers, in insertion order.
func (s *Store) String() string {
	var b strings.Builder
	for i, id := range s.order {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%% index: %d\n%% identifier: %s\n%s", i, id, s.items[id])
	}
	return b.String()
}
