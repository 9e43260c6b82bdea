package interaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/grip/internal/core/systems/physics"
)

// Pulse is one recorded haptic impulse.
type Pulse struct {
	Amplitude float64
	Duration  time.Duration
}

// Controller is an in-process haptic device that records pulses.
type Controller struct {
	pulses []Pulse
}

func (c *Controller) SendHapticImpulse(amplitude float64, duration time.Duration) bool {
	c.pulses = append(c.pulses, Pulse{Amplitude: amplitude, Duration: duration})
	return true
}

func (c *Controller) Pulses() []Pulse {
	out := make([]Pulse, len(c.pulses))
	copy(out, c.pulses)
	return out
}

// Hand is a simple manipulator used by the simulation runner and tests. A
// Hand with a nil controller has no haptics.
type Hand struct {
	id         uuid.UUID
	name       string
	forward    physics.Vec3
	controller *Controller
}

var (
	_ Manipulator        = (*Hand)(nil)
	_ ControllerProvider = (*Hand)(nil)
)

func NewHand(name string, haptics bool) *Hand {
	h := &Hand{id: uuid.New(), name: name, forward: physics.Forward}
	if haptics {
		h.controller = &Controller{}
	}
	return h
}

func (h *Hand) ID() uuid.UUID             { return h.id }
func (h *Hand) Name() string              { return h.name }
func (h *Hand) Forward() physics.Vec3     { return h.forward }
func (h *Hand) SetForward(f physics.Vec3) { h.forward = f }
func (h *Hand) String() string            { return h.name }

func (h *Hand) Controller() (HapticDevice, bool) {
	if h.controller == nil {
		return nil, false
	}
	return h.controller, true
}

// Pulses returns the pulses received so far, nil for hands without haptics.
func (h *Hand) Pulses() []Pulse {
	if h.controller == nil {
		return nil
	}
	return h.controller.Pulses()
}
