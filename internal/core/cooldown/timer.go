// Package cooldown provides the re-trigger guard shared by the classifiers
// and the throw sequencer.
package cooldown

import "time"

// Timer blocks an action for a minimum interval. It is advanced explicitly,
// once per simulation tick, so it follows simulation time rather than the
// wall clock. The zero value is inactive.
type Timer struct {
	remaining time.Duration
}

// Arm starts (or restarts) the cooldown window.
func (t *Timer) Arm(d time.Duration) {
	t.remaining = max(d, 0)
}

// Tick consumes dt of simulation time.
func (t *Timer) Tick(dt time.Duration) {
	if t.remaining <= 0 {
		return
	}
	t.remaining = max(t.remaining-dt, 0)
}

// Active reports whether the guarded action is still blocked.
func (t *Timer) Active() bool { return t.remaining > 0 }

// Remaining is never negative.
func (t *Timer) Remaining() time.Duration { return t.remaining }

// Reset makes the timer inactive immediately.
func (t *Timer) Reset() { t.remaining = 0 }
