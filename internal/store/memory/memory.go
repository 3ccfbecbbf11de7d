// Package memory provides an in-process Store used as the default
// development backend and as the fixture for handler and client tests.
package memory

import (
	"context"
	"sync"
	"time"

	"fintrack/internal/core"
)

type Store struct {
	mu     sync.Mutex
	items  []core.Transaction
	nextID int64
}

func New() *Store {
	return &Store{nextID: 1}
}

func (s *Store) Create(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	t.ID = s.nextID
	t.CreatedAt = now
	t.UpdatedAt = now
	s.nextID++
	s.items = append(s.items, t)
	return t, nil
}

func (s *Store) Get(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return s.items[idx], nil
}

func (s *Store) Update(_ context.Context, id int64, patch core.TransactionPatch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	t := s.items[idx]
	patch.ApplyTo(&t)
	t.UpdatedAt = time.Now().UTC()
	s.items[idx] = t
	return t, nil
}

func (s *Store) Delete(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	t := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	return t, nil
}

func (s *Store) List(_ context.Context, f core.Filter) (core.Page, error) {
	f = f.Normalize()

	s.mu.Lock()
	matched := make([]core.Transaction, 0, len(s.items))
	for _, t := range s.items {
		if f.Matches(t) {
			matched = append(matched, t)
		}
	}
	s.mu.Unlock()

	core.SortForListing(matched)
	return core.Paginate(matched, f.Page, f.PageSize), nil
}

func (s *Store) All(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Store) Close() error { return nil }

// indexOf must be called with the lock held.
func (s *Store) indexOf(id int64) int {
	for i, t := range s.items {
		if t.ID == id {
			return i
		}
	}
	return -1
}
