// Package escalation adjusts a raw message score upward for time-of-day and
// short-interval repetition.
package escalation

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// repeated messages inside this window get multiplied
	RepeatWindow = 10 * time.Minute

	RepeatMultiplier = 1.5

	// late-night hours [LateNightStart, LateNightEnd) add one point
	LateNightStart = 0
	LateNightEnd   = 5

	LateNightBonus = 1
)

// Escalator tracks when each user was last seen, in memory only. The map is
// process-lifetime state: a restart forgets all last-seen timestamps, and the
// first message after a restart is never treated as a repeat. There is no
// durability requirement here; the offense history in histstore is the
// durable record.
type Escalator struct {
	lastSeen *expirable.LRU[string, time.Time]
}

// capacity bounds memory for the last-seen map; entries expire on their own
// after the repeat window anyway
func NewEscalator(capacity int) *Escalator {
	return &Escalator{
		lastSeen: expirable.NewLRU[string, time.Time](capacity, nil, RepeatWindow),
	}
}

// TimeEscalate adds LateNightBonus when the local hour of `now` falls in the
// late-night range.
func (e *Escalator) TimeEscalate(score float64, now time.Time) float64 {
	hour := now.Hour()
	if hour >= LateNightStart && hour < LateNightEnd {
		score += LateNightBonus
	}
	return score
}

// RepeatEscalate multiplies the score when the user was last seen within
// RepeatWindow, then unconditionally marks the user as seen at `now`.
func (e *Escalator) RepeatEscalate(userID string, score float64, now time.Time) float64 {
	if last, ok := e.lastSeen.Get(userID); ok {
		if now.Sub(last) < RepeatWindow {
			score *= RepeatMultiplier
		}
	}
	e.lastSeen.Add(userID, now)
	return score
}
