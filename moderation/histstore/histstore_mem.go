package histstore

import (
	"context"
	"sync"
	"time"
)

type MemHistStore struct {
	mu      sync.RWMutex
	records map[string]*OffenseRecord
	writers *userLocks
}

func NewMemHistStore() *MemHistStore {
	return &MemHistStore{
		records: make(map[string]*OffenseRecord),
		writers: newUserLocks(),
	}
}

var _ HistStore = (*MemHistStore)(nil)

func (s *MemHistStore) snapshot(userID string) *OffenseRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

func (s *MemHistStore) IsLockedOut(ctx context.Context, userID string, now time.Time) (bool, error) {
	return lockedOut(s.snapshot(userID), now), nil
}

func (s *MemHistStore) HistoryScore(ctx context.Context, userID string, now time.Time) (int, bool, error) {
	score, rapid := scoreRecord(s.snapshot(userID), now)
	return score, rapid, nil
}

func (s *MemHistStore) RecordOutcome(ctx context.Context, userID string, score int, lockout bool, now time.Time) error {
	l := s.writers.get(userID)
	l.Lock()
	defer l.Unlock()

	rec := applyOutcome(s.snapshot(userID), userID, score, lockout, now)

	s.mu.Lock()
	s.records[userID] = rec
	s.mu.Unlock()
	return nil
}

func (s *MemHistStore) GetRecord(ctx context.Context, userID string) (*OffenseRecord, error) {
	return s.snapshot(userID), nil
}
