package scenario

import (
	"errors"
	"fmt"

	"github.com/zeusync/grip/internal/core/events/bus"
	"github.com/zeusync/grip/internal/core/feedback"
	"github.com/zeusync/grip/internal/core/interaction"
	"github.com/zeusync/grip/internal/core/observability/log"
	"github.com/zeusync/grip/internal/core/prop"
	"github.com/zeusync/grip/internal/core/systems"
	"github.com/zeusync/grip/internal/core/systems/physics"
)

var _ interaction.Interactable = (*Surface)(nil)

// Surface stands in for the interaction layer of one prop. Ending a grip is
// reported back as a regular grab.end event on the prop's topic.
type Surface struct {
	bus       bus.EventBus
	topic     string
	grabbable bool
	logger    log.Log
}

func NewSurface(b bus.EventBus, topic string, logger log.Log) *Surface {
	return &Surface{bus: b, topic: topic, grabbable: true, logger: logger}
}

func (s *Surface) SetGrabbable(enabled bool) { s.grabbable = enabled }
func (s *Surface) Grabbable() bool           { return s.grabbable }

func (s *Surface) EndGrip(m interaction.Manipulator) {
	if err := s.bus.PublishToTopic(s.topic, bus.NewEvent(prop.EventGrabEnd, "surface", m)); err != nil {
		s.logger.Warn("end grip not delivered", log.String("prop", s.topic), log.Error(err))
	}
}

// Entity is one scripted prop and its collaborators.
type Entity struct {
	Name    string
	Body    *physics.RigidBody
	Prop    *prop.Prop
	Surface *Surface

	binding *prop.Binding
	wasHeld bool
	free    bool
}

// World is everything a script runs against.
type World struct {
	Bus      bus.EventBus
	Entities []*Entity
	Hands    map[string]*interaction.Hand
	Director *Director
	Physics  *Physics

	byName map[string]*Entity
	logger log.Log
}

// listener is implemented by sinks that attenuate cues by distance.
type listener interface {
	SetListener(p physics.Vec3)
}

// Build creates the hands and props a script names and binds every prop to
// its own bus topic.
func Build(script *Script, settings prop.Settings, sink feedback.AudioSink, logger log.Log) (*World, error) {
	if logger == nil {
		logger = log.Provide()
	}
	w := &World{
		Bus:    bus.New(),
		Hands:  make(map[string]*interaction.Hand, len(script.Hands)),
		byName: make(map[string]*Entity, len(script.Props)),
		logger: logger,
	}
	if l, ok := sink.(listener); ok {
		l.SetListener(script.Listener.Vec3())
	}
	for _, h := range script.Hands {
		hand := interaction.NewHand(h.Name, h.Haptics)
		hand.SetForward(h.Forward.Vec3())
		w.Hands[h.Name] = hand
	}
	for _, def := range script.Props {
		body := physics.NewRigidBody(def.Mass)
		body.SetPosition(def.Position.Vec3())
		surface := NewSurface(w.Bus, def.Name, logger)

		p, err := prop.New(settings, prop.Deps{
			Name:    def.Name,
			Body:    body,
			Surface: surface,
			Sink:    sink,
			Logger:  logger,
		})
		if err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("prop %q: %w", def.Name, err)
		}
		binding, err := prop.Bind(w.Bus, def.Name, p)
		if err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("bind prop %q: %w", def.Name, err)
		}

		e := &Entity{Name: def.Name, Body: body, Prop: p, Surface: surface, binding: binding}
		w.Entities = append(w.Entities, e)
		w.byName[def.Name] = e
	}
	w.Director = newDirector(w, script)
	w.Physics = &Physics{world: w}
	return w, nil
}

func (w *World) Entity(name string) (*Entity, bool) {
	e, ok := w.byName[name]
	return e, ok
}

// Register adds the director, every prop and the physics step to loop in
// the order they must run within a tick.
func (w *World) Register(loop *systems.Loop) {
	loop.Register(w.Director, systems.PriorityHigh)
	for _, e := range w.Entities {
		loop.Register(e.Prop, systems.PriorityNormal)
	}
	loop.Register(w.Physics, systems.PriorityLow)
}

// Close unbinds and destroys every prop.
func (w *World) Close() error {
	var all error
	for _, e := range w.Entities {
		all = errors.Join(all, e.destroy())
	}
	return all
}

func (e *Entity) destroy() error {
	var err error
	if e.binding != nil {
		err = e.binding.Close()
		e.binding = nil
	}
	e.Prop.Destroy()
	return err
}

// Report summarises one prop after a run.
type Report struct {
	Name        string
	Stats       prop.Stats
	Diagnostics prop.Diagnostics
}

func (w *World) Report() []Report {
	out := make([]Report, 0, len(w.Entities))
	for _, e := range w.Entities {
		out = append(out, Report{Name: e.Name, Stats: e.Prop.Stats(), Diagnostics: e.Prop.Diagnostics()})
	}
	return out
}
