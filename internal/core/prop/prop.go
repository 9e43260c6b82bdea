// Package prop composes the held-object feedback components into one
// tickable unit: a prop that can be grabbed with one or two hands, swung,
// struck against things and thrown.
package prop

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/grip/internal/core/feedback"
	"github.com/zeusync/grip/internal/core/grip"
	"github.com/zeusync/grip/internal/core/impact"
	"github.com/zeusync/grip/internal/core/interaction"
	"github.com/zeusync/grip/internal/core/motion"
	"github.com/zeusync/grip/internal/core/observability/log"
	"github.com/zeusync/grip/internal/core/schedule"
	"github.com/zeusync/grip/internal/core/systems"
	"github.com/zeusync/grip/internal/core/systems/physics"
	"github.com/zeusync/grip/internal/core/throw"
)

var (
	_ systems.Ticker     = (*Prop)(nil)
	_ systems.Shutdowner = (*Prop)(nil)
)

// Settings gathers the tuning of every component.
type Settings struct {
	Step     time.Duration
	Motion   motion.Settings
	Impact   impact.Settings
	Grip     grip.Settings
	Throw    throw.Settings
	Profiles feedback.Profiles
}

// DefaultSettings returns the stock tuning at a 50Hz simulation step.
func DefaultSettings() Settings {
	m := motion.DefaultSettings()
	i := impact.DefaultSettings()
	return Settings{
		Step:     20 * time.Millisecond,
		Motion:   m,
		Impact:   i,
		Grip:     grip.DefaultSettings(),
		Throw:    throw.DefaultSettings(),
		Profiles: feedback.DefaultProfiles(m.VelocityThreshold, i.MinHitVelocity),
	}
}

func (s Settings) Validate() error {
	if s.Step <= 0 {
		return fmt.Errorf("step must be positive, got %s", s.Step)
	}
	if err := s.Motion.Validate(); err != nil {
		return fmt.Errorf("motion: %w", err)
	}
	if err := s.Impact.Validate(); err != nil {
		return fmt.Errorf("impact: %w", err)
	}
	if err := s.Grip.Validate(); err != nil {
		return fmt.Errorf("grip: %w", err)
	}
	if err := s.Throw.Validate(); err != nil {
		return fmt.Errorf("throw: %w", err)
	}
	if err := s.Profiles.Validate(); err != nil {
		return fmt.Errorf("profiles: %w", err)
	}
	return nil
}

// Deps are the engine-side collaborators. Surface and Sink may be nil.
type Deps struct {
	Name    string
	Body    physics.Body
	Surface interaction.Interactable
	Sink    feedback.AudioSink
	Logger  log.Log
}

// Stats counts what the prop did over its lifetime.
type Stats struct {
	Slashes uint64
	Hits    uint64
	// Throws counts launches; activations cancelled before launch are not thrown.
	Throws              uint64
	ManualSlashes       uint64
	IgnoredGrabs        uint64
	IgnoredReleases     uint64
	RejectedActivations uint64
	Frames              uint64
}

// Prop is one graspable object. It is driven from a single goroutine.
type Prop struct {
	id       uuid.UUID
	name     string
	settings Settings
	logger   log.Log

	body      physics.Body
	tracker   *grip.Tracker
	slash     *motion.Classifier
	hit       *impact.Classifier
	emitter   *feedback.Emitter
	scheduler *schedule.Scheduler
	throw     *throw.Sequencer

	stats     Stats
	destroyed bool
}

func New(settings Settings, deps Deps) (*Prop, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid prop settings: %w", err)
	}
	if deps.Body == nil {
		return nil, fmt.Errorf("prop needs a body")
	}
	id := uuid.New()
	name := deps.Name
	if name == "" {
		name = "prop-" + id.String()[:8]
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.With(log.String("prop", name))

	p := &Prop{
		id:        id,
		name:      name,
		settings:  settings,
		logger:    logger,
		body:      deps.Body,
		tracker:   grip.NewTracker(settings.Grip, deps.Body, logger),
		slash:     motion.NewClassifier(settings.Motion),
		hit:       impact.NewClassifier(settings.Impact),
		emitter:   feedback.NewEmitter(deps.Sink, settings.Profiles, logger),
		scheduler: schedule.New(settings.Step),
	}

	seq, err := throw.NewSequencer(settings.Throw, throw.Deps{
		Body:      deps.Body,
		Surface:   deps.Surface,
		Grip:      p.tracker,
		Scheduler: p.scheduler,
		Emitter:   p.emitter,
		Logger:    logger,
		OnTransition: func(_, to throw.State) {
			if to == throw.Cooldown {
				p.stats.Throws++
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("throw sequencer: %w", err)
	}
	p.throw = seq
	return p, nil
}

func (p *Prop) ID() uuid.UUID { return p.id }
func (p *Prop) Name() string  { return p.name }

// OnGrabBegin records a new grip. Every grab-begin discards motion history,
// clears both feedback cooldowns and keeps the body dynamic, even when no
// slot is free for m.
func (p *Prop) OnGrabBegin(m interaction.Manipulator) grip.Role {
	if p.destroyed || m == nil {
		return grip.RoleNone
	}
	role := p.tracker.Begin(m)
	if role == grip.RoleNone {
		p.stats.IgnoredGrabs++
	}
	p.slash.Rebaseline(p.body.Rotation(), p.scheduler.Now())
	p.hit.Reset()
	p.body.SetKinematic(false)
	return role
}

// OnGrabEnd releases m's grip. Releases from non-owners are ignored.
func (p *Prop) OnGrabEnd(m interaction.Manipulator) grip.Role {
	if p.destroyed || m == nil {
		return grip.RoleNone
	}
	role := p.tracker.End(m)
	if role == grip.RoleNone {
		p.stats.IgnoredReleases++
		return role
	}
	p.body.SetKinematic(false)
	return role
}

// OnContact classifies a batch of simultaneous contacts. Hits register
// whether or not the prop is held.
func (p *Prop) OnContact(contacts ...impact.Contact) (feedback.Emission, bool) {
	if p.destroyed {
		return feedback.Emission{}, false
	}
	ev, ok := p.hit.OnContacts(contacts...)
	if !ok {
		return feedback.Emission{}, false
	}
	p.stats.Hits++
	return p.emitter.Emit(ev, p.tracker.Ownership(), p.body.Position()), true
}

// OnActivate starts a throw. It reports whether a throw began.
func (p *Prop) OnActivate() bool {
	if p.destroyed {
		return false
	}
	if !p.throw.Activate() {
		p.stats.RejectedActivations++
		return false
	}
	return true
}

// FixedUpdate runs one simulation tick: cooldowns, then scheduled work, then
// motion sampling for the slash classifier.
func (p *Prop) FixedUpdate(dt time.Duration) error {
	if p.destroyed {
		return nil
	}
	p.slash.Tick(dt)
	p.hit.Tick(dt)
	p.throw.Tick(dt)
	p.scheduler.Advance()

	if !p.tracker.IsHeld() {
		return nil
	}
	ev, ok := p.slash.Observe(p.body.LinearVelocity(), p.body.Rotation(), p.scheduler.Now())
	if ok {
		p.stats.Slashes++
		p.emitter.Emit(ev, p.tracker.Ownership(), p.body.Position())
	}
	return nil
}

// Update runs once per rendered frame.
func (p *Prop) Update(time.Duration) error {
	if !p.destroyed {
		p.stats.Frames++
	}
	return nil
}

// ManualSlash emits slash feedback immediately, bypassing detection and the
// slash cooldown. A non-positive intensity uses 1.5x the velocity threshold.
func (p *Prop) ManualSlash(intensity float64) feedback.Emission {
	if p.destroyed {
		return feedback.Emission{}
	}
	if intensity <= 0 {
		intensity = p.settings.Motion.VelocityThreshold * 1.5
	}
	p.stats.ManualSlashes++
	ev := feedback.Event{Kind: feedback.Slash, Intensity: intensity}
	return p.emitter.Emit(ev, p.tracker.Ownership(), p.body.Position())
}

func (p *Prop) Ownership() grip.Ownership { return p.tracker.Ownership() }
func (p *Prop) IsTwoHanded() bool         { return p.tracker.IsTwoHanded() }
func (p *Prop) ThrowState() throw.State   { return p.throw.State() }
func (p *Prop) Stats() Stats              { return p.stats }
func (p *Prop) Destroyed() bool           { return p.destroyed }

// Destroy cancels scheduled work and detaches from every collaborator. All
// entry points are no-ops afterwards.
func (p *Prop) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.throw.Cancel()
	if n := p.scheduler.CancelAll(); n > 0 {
		p.logger.Debug("dropped scheduled work", log.Int("tasks", n))
	}
	p.tracker.Clear()
	p.logger.Info("prop destroyed")
}

// Shutdown lets the simulation loop destroy the prop on exit.
func (p *Prop) Shutdown(context.Context) error {
	p.Destroy()
	return nil
}
