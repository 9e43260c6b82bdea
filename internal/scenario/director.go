package scenario

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/zeusync/grip/internal/core/events/bus"
	"github.com/zeusync/grip/internal/core/impact"
	"github.com/zeusync/grip/internal/core/observability/log"
	"github.com/zeusync/grip/internal/core/prop"
	"github.com/zeusync/grip/internal/core/systems"
	"github.com/zeusync/grip/internal/core/systems/physics"
)

var (
	_ systems.Ticker = (*Director)(nil)
	_ systems.Ticker = (*Physics)(nil)
)

type swing struct {
	base    physics.Vec3
	growth  float64
	degrees float64
	axis    physics.Vec3
	start   physics.Quat
	until   time.Duration
	tick    int
}

// Director plays a script's steps on the simulation tick. It runs before the
// props so that motion it sets is what they sample.
type Director struct {
	world    *World
	steps    []Step
	next     int
	elapsed  time.Duration
	duration time.Duration
	swings   map[string]*swing
	onDone   func()
	logger   log.Log
}

func newDirector(w *World, s *Script) *Director {
	return &Director{
		world:    w,
		steps:    s.Steps,
		duration: s.Duration,
		swings:   make(map[string]*swing),
		logger:   w.logger.With(log.String("scenario", s.Name)),
	}
}

func (d *Director) Name() string { return "director" }

func (d *Director) Elapsed() time.Duration { return d.elapsed }

// Done reports whether the script has run its full duration.
func (d *Director) Done() bool { return d.elapsed >= d.duration }

// OnDone registers fn to run once, on the tick the script finishes.
func (d *Director) OnDone(fn func()) { d.onDone = fn }

func (d *Director) FixedUpdate(dt time.Duration) error {
	var errs error
	for d.next < len(d.steps) && d.steps[d.next].At <= d.elapsed {
		st := d.steps[d.next]
		d.next++
		if err := d.run(st); err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s %s at %s: %w", st.Action, st.Prop, st.At, err))
		}
	}
	for _, e := range d.world.Entities {
		if sw, ok := d.swings[e.Name]; ok {
			d.drive(e, sw, dt)
		}
	}
	d.elapsed += dt
	if d.Done() && d.onDone != nil {
		d.logger.Info("scenario finished", log.Duration("elapsed", d.elapsed))
		d.onDone()
		d.onDone = nil
	}
	return errs
}

func (d *Director) Update(time.Duration) error { return nil }

func (d *Director) run(st Step) error {
	e, ok := d.world.Entity(st.Prop)
	if !ok {
		return fmt.Errorf("unknown prop")
	}
	d.logger.Debug("step",
		log.String("action", string(st.Action)),
		log.String("prop", st.Prop),
		log.Duration("at", st.At))

	publish := func(eventType string, data any) error {
		return d.world.Bus.PublishToTopic(st.Prop, bus.NewEvent(eventType, "scenario", data))
	}

	switch st.Action {
	case ActionGrab:
		if !e.Surface.Grabbable() {
			d.logger.Debug("prop not grabbable, grab dropped", log.String("prop", st.Prop))
			return nil
		}
		return publish(prop.EventGrabBegin, d.world.Hands[st.Hand])
	case ActionRelease:
		return publish(prop.EventGrabEnd, d.world.Hands[st.Hand])
	case ActionContact:
		return publish(prop.EventContact, impact.Contact{
			RelativeVelocity: st.Velocity.Vec3(),
			Point:            e.Body.Position(),
		})
	case ActionActivate:
		return publish(prop.EventActivate, nil)
	case ActionSwing:
		axis := st.Axis.Vec3()
		if physics.Magnitude(axis) > 0 {
			axis = r3.Unit(axis)
		}
		d.swings[st.Prop] = &swing{
			base:    st.Velocity.Vec3(),
			growth:  st.Growth,
			degrees: st.Degrees,
			axis:    axis,
			start:   e.Body.Rotation(),
			until:   d.elapsed + st.Duration,
		}
	case ActionStill:
		delete(d.swings, st.Prop)
		e.Body.SetLinearVelocity(physics.Zero)
		e.Body.SetAngularVelocity(physics.Zero)
	case ActionAim:
		d.world.Hands[st.Hand].SetForward(st.Forward.Vec3())
	case ActionManualSlash:
		e.Prop.ManualSlash(st.Intensity)
	case ActionDestroy:
		delete(d.swings, st.Prop)
		return e.destroy()
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	return nil
}

// drive applies one tick of a swing: speed grows geometrically while the
// body turns a fixed angle per tick.
func (d *Director) drive(e *Entity, sw *swing, dt time.Duration) {
	if d.elapsed >= sw.until {
		delete(d.swings, e.Name)
		return
	}
	sw.tick++
	speedUp := math.Pow(sw.growth, float64(sw.tick-1))
	e.Body.SetLinearVelocity(r3.Scale(speedUp, sw.base))

	turn := physics.AxisAngle(sw.degrees*float64(sw.tick), sw.axis)
	e.Body.SetRotation(quat.Mul(turn, sw.start))
	if dt > 0 {
		rate := sw.degrees * math.Pi / 180 / dt.Seconds()
		e.Body.SetAngularVelocity(r3.Scale(rate, sw.axis))
	}
}

// Physics integrates props that have been let go. Bodies rest where they are
// placed until released from a grip, and settle again on the ground plane,
// reporting the landing as a contact.
type Physics struct {
	world *World
}

func (p *Physics) Name() string { return "physics" }

func (p *Physics) FixedUpdate(dt time.Duration) error {
	var errs error
	for _, e := range p.world.Entities {
		if e.Prop.Destroyed() {
			continue
		}
		if e.Prop.Ownership().IsHeld() {
			e.wasHeld = true
			continue
		}
		if e.wasHeld {
			e.wasHeld = false
			e.free = true
		}
		if !e.free {
			continue
		}

		airborne := e.Body.Position().Y > 0
		e.Body.Step(dt.Seconds())
		pos := e.Body.Position()
		if pos.Y >= 0 {
			continue
		}

		landing := e.Body.LinearVelocity()
		pos.Y = 0
		e.Body.SetPosition(pos)
		e.Body.SetLinearVelocity(physics.Zero)
		e.Body.SetAngularVelocity(physics.Zero)
		e.free = false
		if !airborne {
			continue
		}
		err := p.world.Bus.PublishToTopic(e.Name, bus.NewEvent(prop.EventContact, "physics", impact.Contact{
			RelativeVelocity: landing,
			Point:            pos,
		}))
		errs = errors.Join(errs, err)
	}
	return errs
}

func (p *Physics) Update(time.Duration) error { return nil }
