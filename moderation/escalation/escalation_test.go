package escalation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeEscalate(t *testing.T) {
	assert := assert.New(t)

	e := NewEscalator(100)
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	lateNight := time.Date(2024, 3, 10, 3, 30, 0, 0, time.UTC)
	assert.Equal(5.0, e.TimeEscalate(4, lateNight))

	midnight := day
	assert.Equal(5.0, e.TimeEscalate(4, midnight))

	// 5am is outside the range
	fiveAM := time.Date(2024, 3, 10, 5, 0, 0, 0, time.UTC)
	assert.Equal(4.0, e.TimeEscalate(4, fiveAM))

	noon := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(4.0, e.TimeEscalate(4, noon))
}

func TestRepeatEscalate(t *testing.T) {
	assert := assert.New(t)

	e := NewEscalator(100)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	// first message: no history, no multiplier
	assert.Equal(4.0, e.RepeatEscalate("user-a", 4, now))

	// second message inside the window gets multiplied
	assert.Equal(6.0, e.RepeatEscalate("user-a", 4, now.Add(time.Minute)))

	// a different user is unaffected
	assert.Equal(4.0, e.RepeatEscalate("user-b", 4, now.Add(time.Minute)))

	// outside the window: back to no multiplier
	assert.Equal(4.0, e.RepeatEscalate("user-a", 4, now.Add(time.Minute+RepeatWindow)))
}

func TestRepeatEscalateUpdatesLastSeen(t *testing.T) {
	assert := assert.New(t)

	e := NewEscalator(100)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	e.RepeatEscalate("user-a", 0, now)
	// even a multiplied message refreshes the window
	e.RepeatEscalate("user-a", 0, now.Add(9*time.Minute))
	assert.Equal(3.0, e.RepeatEscalate("user-a", 2, now.Add(18*time.Minute)))
}

func TestRepeatTrackerResets(t *testing.T) {
	// the last-seen map is process state: a fresh Escalator (as after a
	// restart) treats everyone as first-time
	assert := assert.New(t)

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	e1 := NewEscalator(100)
	e1.RepeatEscalate("user-a", 4, now)
	assert.Equal(6.0, e1.RepeatEscalate("user-a", 4, now.Add(time.Minute)))

	e2 := NewEscalator(100)
	assert.Equal(4.0, e2.RepeatEscalate("user-a", 4, now.Add(2*time.Minute)))
}
