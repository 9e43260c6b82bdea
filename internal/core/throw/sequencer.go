// Package throw sequences a timed release of a held object: capture the
// swing, drop the grip, wait for the constraint to clear, then launch.
package throw

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/zeusync/grip/internal/core/cooldown"
	"github.com/zeusync/grip/internal/core/feedback"
	"github.com/zeusync/grip/internal/core/grip"
	"github.com/zeusync/grip/internal/core/interaction"
	"github.com/zeusync/grip/internal/core/observability/log"
	"github.com/zeusync/grip/internal/core/schedule"
	"github.com/zeusync/grip/internal/core/systems/physics"
)

// State of the release sequence.
type State uint8

const (
	Idle State = iota
	Armed
	Releasing
	Cooldown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Releasing:
		return "releasing"
	case Cooldown:
		return "cooldown"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Settings tune the throw.
type Settings struct {
	Force         float64       `json:"force" yaml:"force"`
	Delay         time.Duration `json:"delay" yaml:"delay"`
	Cooldown      time.Duration `json:"cooldown" yaml:"cooldown"`
	UpwardFactor  float64       `json:"upward_factor" yaml:"upward_factor"`
	VelocityCarry float64       `json:"velocity_carry" yaml:"velocity_carry"`

	ReleasePulse         float64       `json:"release_pulse" yaml:"release_pulse"`
	ReleasePulseDuration time.Duration `json:"release_pulse_duration" yaml:"release_pulse_duration"`
}

func DefaultSettings() Settings {
	return Settings{
		Force:                20,
		Delay:                100 * time.Millisecond,
		Cooldown:             500 * time.Millisecond,
		UpwardFactor:         0.3,
		VelocityCarry:        1.5,
		ReleasePulse:         0.8,
		ReleasePulseDuration: 100 * time.Millisecond,
	}
}

func (s Settings) Validate() error {
	if s.Force < 0 {
		return fmt.Errorf("force must not be negative, got %v", s.Force)
	}
	if s.Delay < 0 || s.Cooldown < 0 || s.ReleasePulseDuration < 0 {
		return fmt.Errorf("throw durations must not be negative")
	}
	if s.ReleasePulse < 0 || s.ReleasePulse > 1 {
		return fmt.Errorf("release_pulse must be within [0,1], got %v", s.ReleasePulse)
	}
	return nil
}

// Session is the state of one throw, from activation back to Idle.
type Session struct {
	State                   State
	Holder                  interaction.Manipulator
	CapturedVelocity        physics.Vec3
	CapturedAngularVelocity physics.Vec3
	Forward                 physics.Vec3
	ArmedAt                 uint64
}

// GripView exposes the current owners of the object.
type GripView interface {
	Ownership() grip.Ownership
}

// Deps are the collaborators a Sequencer drives. Surface and Emitter may be
// nil.
type Deps struct {
	Body      physics.Body
	Surface   interaction.Interactable
	Grip      GripView
	Scheduler *schedule.Scheduler
	Emitter   *feedback.Emitter
	Logger    log.Log
	// OnTransition observes every state change.
	OnTransition func(from, to State)
}

// Sequencer runs at most one throw at a time.
type Sequencer struct {
	settings Settings
	deps     Deps
	logger   log.Log

	state    State
	session  *Session
	cooldown cooldown.Timer
	pending  schedule.Handle
	disabled bool
	closed   bool
}

func NewSequencer(settings Settings, deps Deps) (*Sequencer, error) {
	if deps.Body == nil {
		return nil, fmt.Errorf("throw sequencer needs a body")
	}
	if deps.Grip == nil {
		return nil, fmt.Errorf("throw sequencer needs a grip view")
	}
	if deps.Scheduler == nil {
		return nil, fmt.Errorf("throw sequencer needs a scheduler")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	return &Sequencer{settings: settings, deps: deps, logger: logger}, nil
}

// Activate starts a throw if the object is held, no throw is in flight and
// the throw cooldown has expired. Everything else is ignored.
func (s *Sequencer) Activate() bool {
	if s.closed {
		return false
	}
	if s.state != Idle || s.cooldown.Active() {
		s.logger.Debug("throw activation ignored", log.Stringer("state", s.state))
		return false
	}
	owners := s.deps.Grip.Ownership()
	if !owners.IsHeld() {
		s.logger.Debug("throw activation without a holder ignored")
		return false
	}

	body := s.deps.Body
	s.session = &Session{
		Holder:                  owners.Primary,
		CapturedVelocity:        body.LinearVelocity(),
		CapturedAngularVelocity: body.AngularVelocity(),
		Forward:                 direction(owners.Primary.Forward()),
		ArmedAt:                 s.deps.Scheduler.Now(),
	}
	if s.deps.Emitter != nil {
		s.deps.Emitter.Emit(feedback.Event{
			Kind:      feedback.Throw,
			Intensity: physics.Magnitude(s.session.CapturedVelocity),
		}, owners, body.Position())
	}

	s.transition(Armed)
	s.pending = s.deps.Scheduler.After(0, s.release)
	return true
}

// release runs on the tick after activation.
func (s *Sequencer) release() {
	holder := s.session.Holder
	owners := s.deps.Grip.Ownership()
	if owners.IsHeld() {
		if s.deps.Surface != nil {
			s.deps.Surface.SetGrabbable(false)
			s.disabled = true
		}
		if owners.RoleOf(holder) != grip.RoleNone {
			if s.deps.Emitter != nil {
				s.deps.Emitter.Pulse(holder, s.settings.ReleasePulse, s.settings.ReleasePulseDuration)
			}
			if s.deps.Surface != nil {
				s.deps.Surface.EndGrip(holder)
			}
		}
	} else {
		s.logger.Debug("holder let go before release, launching from captured state")
	}

	s.transition(Releasing)
	s.pending = s.deps.Scheduler.After(s.settings.Delay, s.launch)
}

// launch runs once the throw delay has elapsed.
func (s *Sequencer) launch() {
	if s.disabled {
		s.deps.Surface.SetGrabbable(true)
		s.disabled = false
	}

	body := s.deps.Body
	forward := s.session.Forward
	force := s.settings.Force
	body.AddVelocityChange(r3.Scale(force, forward))
	body.AddVelocityChange(r3.Scale(force*s.settings.UpwardFactor, physics.Up))

	final := r3.Add(r3.Scale(s.settings.VelocityCarry, s.session.CapturedVelocity), r3.Scale(force, forward))
	body.SetLinearVelocity(final)

	s.logger.Info("thrown",
		log.Float64("speed", physics.Magnitude(final)),
		log.Duration("cooldown", s.settings.Cooldown))

	s.cooldown.Arm(s.settings.Cooldown)
	s.transition(Cooldown)
}

// Tick advances the throw cooldown and returns to Idle once it expires.
func (s *Sequencer) Tick(dt time.Duration) {
	if s.closed {
		return
	}
	s.cooldown.Tick(dt)
	if s.state == Cooldown && !s.cooldown.Active() {
		s.transition(Idle)
		s.session = nil
	}
}

// Cancel drops any scheduled resumption and every reference the sequence
// holds. No further physics or interaction calls are made afterwards.
func (s *Sequencer) Cancel() {
	if s.closed {
		return
	}
	s.deps.Scheduler.Cancel(s.pending)
	s.closed = true
	s.session = nil
	s.state = Idle
	s.deps = Deps{Scheduler: s.deps.Scheduler}
}

func (s *Sequencer) State() State { return s.state }

func (s *Sequencer) CooldownRemaining() time.Duration { return s.cooldown.Remaining() }

// Session returns a copy of the in-flight session.
func (s *Sequencer) Session() (Session, bool) {
	if s.session == nil {
		return Session{}, false
	}
	out := *s.session
	out.State = s.state
	return out, true
}

func (s *Sequencer) transition(to State) {
	from := s.state
	s.state = to
	s.logger.Debug("throw state", log.Stringer("from", from), log.Stringer("to", to))
	if s.deps.OnTransition != nil {
		s.deps.OnTransition(from, to)
	}
}

func direction(v physics.Vec3) physics.Vec3 {
	if physics.Magnitude(v) == 0 {
		return physics.Forward
	}
	return r3.Unit(v)
}
