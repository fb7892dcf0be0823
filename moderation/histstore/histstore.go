// Package histstore persists per-user offense records: how many scored
// messages a user has accumulated, with what cumulative severity, when the
// most recent one happened, and whether the user is currently locked out.
//
// Exactly one record exists per user id; records are created on first scored
// message and never deleted here (retention is someone else's policy).
// Implementations must serialize the read-modify-write in RecordOutcome per
// user id, so concurrent analyses of the same user cannot lose counts or miss
// a lockout. Analyses of different users should not block each other.
package histstore

import (
	"context"
	"sync"
	"time"
)

const (
	// window within which a previous offense makes the next one "rapid"
	RapidWindow = 10 * time.Minute

	// how long a lockout lasts once triggered
	LockoutDuration = 48 * time.Hour

	// per-user history contribution is capped regardless of count
	MaxHistoryScore = 5
)

type OffenseRecord struct {
	ID            uint       `gorm:"primarykey" json:"-"`
	UserID        string     `gorm:"uniqueIndex" json:"user_id"`
	Count         int        `json:"count"`
	SeverityScore int        `json:"severity_score"`
	LastOffense   *time.Time `json:"last_offense,omitempty"`
	LockoutUntil  *time.Time `json:"lockout_until,omitempty"`
}

type HistStore interface {
	// true iff the user has a lockout expiring strictly after `now`
	IsLockedOut(ctx context.Context, userID string, now time.Time) (bool, error)

	// HistoryScore returns the prior-offense contribution for the user, and
	// whether the user is re-offending rapidly (last offense within
	// RapidWindow). A user with no record scores (0, false).
	HistoryScore(ctx context.Context, userID string, now time.Time) (int, bool, error)

	// RecordOutcome folds one analysis outcome into the user's record,
	// creating it if absent. When lockout is set the record's lockout expiry
	// becomes now+LockoutDuration; otherwise any existing expiry is cleared.
	RecordOutcome(ctx context.Context, userID string, score int, lockout bool, now time.Time) error

	// GetRecord returns the user's record, or nil if the user has none.
	GetRecord(ctx context.Context, userID string) (*OffenseRecord, error)
}

// scoring rule shared by all backends
func scoreRecord(rec *OffenseRecord, now time.Time) (int, bool) {
	if rec == nil {
		return 0, false
	}
	if rec.LastOffense != nil && now.Sub(*rec.LastOffense) < RapidWindow {
		return min(rec.Count*2, MaxHistoryScore), true
	}
	return min(rec.Count, MaxHistoryScore), false
}

func lockedOut(rec *OffenseRecord, now time.Time) bool {
	return rec != nil && rec.LockoutUntil != nil && now.Before(*rec.LockoutUntil)
}

func applyOutcome(rec *OffenseRecord, userID string, score int, lockout bool, now time.Time) *OffenseRecord {
	ts := now
	if rec == nil {
		rec = &OffenseRecord{UserID: userID}
	}
	rec.Count++
	rec.SeverityScore += score
	rec.LastOffense = &ts
	if lockout {
		until := now.Add(LockoutDuration)
		rec.LockoutUntil = &until
	} else {
		rec.LockoutUntil = nil
	}
	return rec
}

// userLocks hands out one mutex per user id, so same-user writes serialize
// without a store-wide lock.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

func (ul *userLocks) get(userID string) *sync.Mutex {
	ul.mu.Lock()
	defer ul.mu.Unlock()
	l, ok := ul.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		ul.locks[userID] = l
	}
	return l
}
