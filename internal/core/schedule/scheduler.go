// Package schedule implements scheduled resumptions keyed by simulation tick.
// A continuation registered with After runs from inside a later Advance call,
// so a suspended sequence never blocks the rest of the simulation.
package schedule

import (
	"time"

	"github.com/zeusync/grip/pkg/sequence"
)

type task struct {
	due uint64
	seq uint64
	fn  func()
}

// Handle identifies a scheduled task for cancellation.
type Handle struct {
	item *sequence.PriorityItem[*task]
}

// Pending reports whether the task is still waiting to run.
func (h Handle) Pending() bool { return h.item.Queued() }

// Scheduler is a single-threaded tick-keyed task queue.
type Scheduler struct {
	tick  uint64
	step  time.Duration
	seq   uint64
	queue *sequence.PriorityQueue[*task]
}

func New(step time.Duration) *Scheduler {
	if step <= 0 {
		step = time.Millisecond
	}
	return &Scheduler{
		step: step,
		queue: sequence.NewPriorityQueue(func(a, b *task) bool {
			if a.due != b.due {
				return a.due < b.due
			}
			return a.seq < b.seq
		}),
	}
}

// Now returns the current tick.
func (s *Scheduler) Now() uint64 { return s.tick }

func (s *Scheduler) Step() time.Duration { return s.step }

// TicksFor converts d into whole ticks, rounding up. Any positive delay is at
// least one tick; zero or negative means "next tick".
func (s *Scheduler) TicksFor(d time.Duration) uint64 {
	if d <= 0 {
		return 1
	}
	n := uint64((d + s.step - 1) / s.step)
	return max(n, 1)
}

// After schedules fn to run once d of simulation time has elapsed.
func (s *Scheduler) After(d time.Duration, fn func()) Handle {
	return s.At(s.tick+s.TicksFor(d), fn)
}

// At schedules fn for a specific tick. Ticks in the past run on the next
// Advance.
func (s *Scheduler) At(tick uint64, fn func()) Handle {
	s.seq++
	return Handle{item: s.queue.Enqueue(&task{due: tick, seq: s.seq, fn: fn})}
}

// Advance moves to the next tick and runs every task due by then, in due
// order and then registration order. It returns the number of tasks run.
func (s *Scheduler) Advance() int {
	s.tick++
	ran := 0
	for {
		next, ok := s.queue.Peek()
		if !ok || next.due > s.tick {
			return ran
		}
		s.queue.Dequeue()
		next.fn()
		ran++
	}
}

// Cancel drops a pending task. It returns false if the task already ran or
// was cancelled.
func (s *Scheduler) Cancel(h Handle) bool {
	if h.item == nil {
		return false
	}
	return s.queue.Remove(h.item)
}

// CancelAll drops every pending task and returns how many were dropped.
func (s *Scheduler) CancelAll() int {
	n := s.queue.Len()
	s.queue.Clear()
	return n
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int { return s.queue.Len() }
