package store

import (
	"slices"
	"sync"

	"github.com/desertthunder/borrowx/internal/models"
)

// BorrowingStore accumulates borrowing records for the session.
type BorrowingStore struct {
	mu       sync.RWMutex
	records  []models.Borrowing
	onChange func()
}

// NewBorrowingStore creates an empty store. onChange, when set, runs after every mutation.
func NewBorrowingStore(onChange func()) *BorrowingStore {
	return &BorrowingStore{onChange: onChange}
}

// AddVideoBorrowings appends records in argument order. There is no deduplication.
func (s *BorrowingStore) AddVideoBorrowings(records []models.Borrowing) {
	if len(records) == 0 {
		return
	}

	s.mu.Lock()
	s.records = append(s.records, records...)
	s.mu.Unlock()

	s.changed()
}

// Borrowings returns a copy of all records.
func (s *BorrowingStore) Borrowings() []models.Borrowing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Len returns the number of records.
func (s *BorrowingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Reset clears the session.
func (s *BorrowingStore) Reset() {
	s.mu.Lock()
	s.records = nil
	s.mu.Unlock()

	s.changed()
}

func (s *BorrowingStore) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
