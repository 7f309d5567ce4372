// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store holds the in-memory collection of paper records. The
// collection only grows: records are appended as journal files load and are
// never removed or modified.
package store

import (
	"sort"
	"sync"

	"github.com/pdiddy/paper-search/pkg/types"
)

// Store is an append-only record collection. It is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	records    []types.PaperRecord
	journals   map[string]int
	generation uint64
}

// New returns an empty store.
func New() *Store {
	return &Store{journals: make(map[string]int)}
}

// Append adds records in one step, so readers see either none or all of them.
// Appending nothing leaves the generation unchanged.
func (s *Store) Append(records ...types.PaperRecord) {
	if len(records) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	for _, r := range records {
		s.journals[r.Journal]++
	}
	s.generation++
}

// Snapshot returns the records appended so far. The returned slice is never
// written again by the store; later appends do not show up in it.
func (s *Store) Snapshot() []types.PaperRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[:len(s.records):len(s.records)]
}

// SnapshotAt returns the snapshot together with the generation it belongs to.
func (s *Store) SnapshotAt() ([]types.PaperRecord, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[:len(s.records):len(s.records)], s.generation
}

// Generation increments every time records are appended.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Len returns the number of records held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Journals returns the sorted distinct journal names seen in loaded records.
func (s *Store) Journals() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.journals))
	for name := range s.journals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of records loaded for journal.
func (s *Store) Count(journal string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.journals[journal]
}
