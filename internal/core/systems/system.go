package systems

import (
	"context"
	"time"
)

// Ticker is anything advanced by the simulation loop. FixedUpdate runs on the
// fixed-rate simulation tick (physics aligned), Update once per rendered frame.
type Ticker interface {
	Name() string

	FixedUpdate(fixedDelta time.Duration) error
	Update(delta time.Duration) error
}

// Shutdowner is implemented by tickers that hold scheduled work or external
// resources.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// Priority defines execution order priority; higher runs first.
type Priority uint16

const (
	PriorityLow    Priority = 500
	PriorityNormal Priority = 600
	PriorityHigh   Priority = 1000
)

// ExecutionPhase defines when a ticker runs
type ExecutionPhase uint8

const (
	PhaseFixedUpdate ExecutionPhase = iota
	PhaseUpdate
)

func (p ExecutionPhase) String() string {
	switch p {
	case PhaseFixedUpdate:
		return "fixed_update"
	case PhaseUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Metrics provides runtime counters for the loop
type Metrics struct {
	FixedTicks   uint64
	Frames       uint64
	ErrorCount   uint64
	LastError    error
	DroppedSteps uint64
}
