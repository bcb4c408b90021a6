// Package holdings owns the current portfolio snapshot and its lifecycle:
// sample data, manual appends, bulk imports and wholesale clears.
package holdings

import (
	"sync"

	"github.com/google/uuid"
	"github.com/nlagos/folio/internal/domain"
)

// Store is the single mutable cell of the application: a portfolio
// snapshot replaced wholesale on every edit. Holdings are never mutated
// in place; readers always get a copy, so compute over a snapshot is
// safe while the next edit lands.
type Store struct {
	mu       sync.RWMutex
	holdings []domain.Holding
	id       string // regenerated on every write
	sample   bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{id: uuid.NewString()}
}

// Replace swaps in a whole new snapshot.
func (s *Store) Replace(holdings []domain.Holding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holdings = append([]domain.Holding(nil), holdings...)
	s.id = uuid.NewString()
	s.sample = false
}

// ReplaceWithSample swaps in a snapshot flagged as the built-in sample
// set, so clients can show a "viewing sample data" notice.
func (s *Store) ReplaceWithSample(holdings []domain.Holding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holdings = append([]domain.Holding(nil), holdings...)
	s.id = uuid.NewString()
	s.sample = true
}

// Append adds one holding to the current snapshot. Appending to the
// sample set clears the sample flag: the portfolio is now the user's.
func (s *Store) Append(h domain.Holding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holdings = append(s.holdings, h)
	s.id = uuid.NewString()
	s.sample = false
}

// Clear empties the store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holdings = nil
	s.id = uuid.NewString()
	s.sample = false
}

// Snapshot returns a copy of the current holdings in display order.
func (s *Store) Snapshot() []domain.Holding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Holding(nil), s.holdings...)
}

// SnapshotID identifies the current snapshot; it changes on every write.
func (s *Store) SnapshotID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// IsSample reports whether the current snapshot is the built-in sample set.
func (s *Store) IsSample() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sample
}

// Len returns the number of holdings in the current snapshot.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.holdings)
}
