package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"quantumassembler/pkg/domain"
)

// CellStore holds persisted cell records keyed by coordinate. Get is
// read-through-create: a missing record is defaulted, stored and returned, and
// later calls return the same record.
type CellStore interface {
	Get(c Coordinate) *CellRecord
	Put(rec CellRecord)
	Delete(c Coordinate) bool
	Records() []CellRecord
	Import(records map[string]CellRecord) error
	Export() map[string]CellRecord
}

// MemoryCellStore is the in-process CellStore.
type MemoryCellStore struct {
	mu      sync.RWMutex
	records map[string]*CellRecord
}

// NewMemoryCellStore returns an empty store.
func NewMemoryCellStore() *MemoryCellStore {
	return &MemoryCellStore{records: make(map[string]*CellRecord)}
}

// Get returns the record for c, creating a default one on first access.
func (s *MemoryCellStore) Get(c Coordinate) *CellRecord {
	key := c.Key()
	s.mu.RLock()
	rec, ok := s.records[key]
	s.mu.RUnlock()
	if ok {
		return rec
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[key]; ok {
		return rec
	}
	created := domain.DefaultCellRecord(c.X, c.Y)
	s.records[key] = &created
	return &created
}

// Put stores rec under its own coordinate, reusing the existing record so
// handles returned by Get observe the change.
func (s *MemoryCellStore) Put(rec CellRecord) {
	key := rec.Coordinate().Key()
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[key]; ok {
		*existing = rec
		return
	}
	cp := rec
	s.records[key] = &cp
}

// Delete removes the record for c.
func (s *MemoryCellStore) Delete(c Coordinate) bool {
	key := c.Key()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; !ok {
		return false
	}
	delete(s.records, key)
	return true
}

// Records returns copies of all records sorted by y, then x.
func (s *MemoryCellStore) Records() []CellRecord {
	s.mu.RLock()
	out := make([]CellRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y == out[j].Y {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

// Import replaces the store contents. Records are addressed by their key; a
// key that does not parse falls back to the coordinates inside the record and
// is reported in the returned error after the import completes.
func (s *MemoryCellStore) Import(records map[string]CellRecord) error {
	next := make(map[string]*CellRecord, len(records))
	var errs []error
	for key, rec := range records {
		coord, err := domain.ParseCoordinate(key)
		if err != nil {
			errs = append(errs, err)
			coord = rec.Coordinate()
		}
		rec.X, rec.Y = coord.X, coord.Y
		cp := rec
		next[coord.Key()] = &cp
	}
	s.mu.Lock()
	s.records = next
	s.mu.Unlock()
	if len(errs) > 0 {
		return fmt.Errorf("import cells: %w", errors.Join(errs...))
	}
	return nil
}

// Export returns copies of all records keyed by "x,y".
func (s *MemoryCellStore) Export() map[string]CellRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]CellRecord, len(s.records))
	for key, rec := range s.records {
		out[key] = *rec
	}
	return out
}
