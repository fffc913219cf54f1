package helper

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

// ConflictingStore decorates a RecordStore to simulate concurrent writers.
//
// FailNextUpdates makes the next n updates fail with ErrConcurrencyConflict without touching the store.
// BeforeUpdate is invoked before each update is delegated, which allows a test to write the same
// record in between a read and a write.
type ConflictingStore struct {
	schedulestore.RecordStore

	BeforeUpdate func(ctx context.Context, store schedulestore.RecordStore, record schedulestore.Record)

	mu            sync.Mutex
	failingWrites int
	updateCalls   int
}

func NewConflictingStore(store schedulestore.RecordStore) *ConflictingStore {
	return &ConflictingStore{RecordStore: store}
}

func (s *ConflictingStore) FailNextUpdates(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failingWrites = n
}

// UpdateCalls returns how often Update was invoked, including failed calls.
func (s *ConflictingStore) UpdateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateCalls
}

func (s *ConflictingStore) Update(ctx context.Context, record schedulestore.Record) (schedulestore.Record, error) {
	s.mu.Lock()
	s.updateCalls++
	failing := s.failingWrites > 0
	if failing {
		s.failingWrites--
	}
	hook := s.BeforeUpdate
	s.mu.Unlock()

	if failing {
		return nil, schedulestore.ErrConcurrencyConflict
	}

	if hook != nil {
		hook(ctx, s.RecordStore, record)
	}

	return s.RecordStore.Update(ctx, record)
}
