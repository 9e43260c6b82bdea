// Package motion smooths per-tick velocity readings of a held body and
// classifies fast, wide swings as slashes.
package motion

import "github.com/zeusync/grip/internal/core/systems/physics"

// Sample is one velocity reading taken on a simulation tick.
type Sample struct {
	Velocity physics.Vec3
	Tick     uint64
}

// Buffer is a fixed-capacity ring of samples; a push overwrites the oldest
// slot. Slots not yet written read as zero velocity, so Mean always averages
// over the full capacity.
type Buffer struct {
	data []Sample
	pos  int
	full bool
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &Buffer{data: make([]Sample, capacity)}
}

// Push adds a sample to the ring.
func (b *Buffer) Push(s Sample) {
	b.data[b.pos] = s
	b.pos++
	if b.pos >= len(b.data) {
		b.pos = 0
		b.full = true
	}
}

// Len returns the number of samples written since the last reset, capped at
// the capacity.
func (b *Buffer) Len() int {
	if b.full {
		return len(b.data)
	}
	return b.pos
}

func (b *Buffer) Cap() int { return len(b.data) }

// Mean averages every slot, including unfilled zero slots.
func (b *Buffer) Mean() physics.Vec3 {
	vs := make([]physics.Vec3, len(b.data))
	for i, s := range b.data {
		vs[i] = s.Velocity
	}
	return physics.Mean(vs)
}

// Samples returns the written samples, oldest first.
func (b *Buffer) Samples() []Sample {
	n := b.Len()
	out := make([]Sample, n)
	if b.full {
		copy(out, b.data[b.pos:])
		copy(out[len(b.data)-b.pos:], b.data[:b.pos])
	} else {
		copy(out, b.data[:b.pos])
	}
	return out
}

// Reset clears every slot back to zero velocity.
func (b *Buffer) Reset() {
	clear(b.data)
	b.pos = 0
	b.full = false
}
