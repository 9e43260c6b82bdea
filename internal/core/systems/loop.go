package systems

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/zeusync/grip/internal/core/observability/log"
)

// maxStepsPerFrame caps catch-up work after a long stall.
const maxStepsPerFrame = 8

type entry struct {
	ticker   Ticker
	priority Priority
	order    int
}

// Loop drives tickers from a single goroutine with a fixed simulation step and
// a variable frame step. It is not safe for concurrent use.
type Loop struct {
	step    time.Duration
	entries []entry
	acc     time.Duration
	metrics Metrics
	logger  log.Log
}

func NewLoop(step time.Duration, logger log.Log) (*Loop, error) {
	if step <= 0 {
		return nil, fmt.Errorf("fixed step must be positive, got %s", step)
	}
	if logger == nil {
		logger = log.Provide()
	}
	return &Loop{step: step, logger: logger}, nil
}

func (l *Loop) Step() time.Duration { return l.step }

// Register adds t; tickers of equal priority run in registration order.
func (l *Loop) Register(t Ticker, priority Priority) {
	l.entries = append(l.entries, entry{ticker: t, priority: priority, order: len(l.entries)})
	sort.SliceStable(l.entries, func(i, j int) bool {
		if l.entries[i].priority != l.entries[j].priority {
			return l.entries[i].priority > l.entries[j].priority
		}
		return l.entries[i].order < l.entries[j].order
	})
}

// Unregister removes the ticker with the given name.
func (l *Loop) Unregister(name string) bool {
	for i, e := range l.entries {
		if e.ticker.Name() == name {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Advance feeds frameDelta of wall time into the loop: it runs as many fixed
// steps as have accumulated, then one frame update.
func (l *Loop) Advance(frameDelta time.Duration) error {
	var errs error
	l.acc += frameDelta

	steps := 0
	for l.acc >= l.step {
		if steps == maxStepsPerFrame {
			dropped := uint64(l.acc / l.step)
			l.metrics.DroppedSteps += dropped
			l.logger.Warn("simulation falling behind, dropping steps", log.Uint64("dropped", dropped))
			l.acc %= l.step
			break
		}
		errs = errors.Join(errs, l.run(PhaseFixedUpdate, l.step))
		l.acc -= l.step
		l.metrics.FixedTicks++
		steps++
	}

	errs = errors.Join(errs, l.run(PhaseUpdate, frameDelta))
	l.metrics.Frames++
	return errs
}

func (l *Loop) run(phase ExecutionPhase, dt time.Duration) error {
	var errs error
	for _, e := range l.entries {
		var err error
		if phase == PhaseFixedUpdate {
			err = e.ticker.FixedUpdate(dt)
		} else {
			err = e.ticker.Update(dt)
		}
		if err != nil {
			l.metrics.ErrorCount++
			l.metrics.LastError = err
			errs = errors.Join(errs, fmt.Errorf("%s %s: %w", e.ticker.Name(), phase, err))
		}
	}
	return errs
}

// Run advances the loop once per frameInterval until ctx is done, then shuts
// tickers down in reverse order. Ticker errors are logged, not fatal.
func (l *Loop) Run(ctx context.Context, frameInterval time.Duration) error {
	if frameInterval <= 0 {
		return fmt.Errorf("frame interval must be positive, got %s", frameInterval)
	}
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return l.Shutdown(context.WithoutCancel(ctx))
		case now := <-ticker.C:
			if err := l.Advance(now.Sub(last)); err != nil {
				l.logger.Warn("tick error", log.Error(err))
			}
			last = now
		}
	}
}

func (l *Loop) Shutdown(ctx context.Context) error {
	var errs error
	for i := len(l.entries) - 1; i >= 0; i-- {
		if s, ok := l.entries[i].ticker.(Shutdowner); ok {
			errs = errors.Join(errs, s.Shutdown(ctx))
		}
	}
	return errs
}

func (l *Loop) GetMetrics() Metrics { return l.metrics }
