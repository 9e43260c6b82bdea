// Package interaction holds the contracts the feedback core expects from the
// interaction layer: manipulators (tracked hands or controllers), their haptic
// capability and the grab surface of an object.
package interaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/grip/internal/core/systems/physics"
)

// Manipulator is a tracked hand or controller that can grasp objects.
// Two manipulators are the same iff their IDs are equal.
type Manipulator interface {
	ID() uuid.UUID
	// Forward returns the current facing direction in world space.
	Forward() physics.Vec3
}

// HapticDevice accepts a rumble pulse. Amplitude is in [0, 1].
type HapticDevice interface {
	SendHapticImpulse(amplitude float64, duration time.Duration) bool
}

// ControllerProvider is implemented by manipulator kinds that do not rumble
// themselves but can resolve the controller that does, e.g. a direct
// interactor parented under a controller.
type ControllerProvider interface {
	Controller() (HapticDevice, bool)
}

// HapticsOf resolves the haptic device behind m. Manipulators without haptic
// capability report false and callers treat the pulse as a no-op.
func HapticsOf(m Manipulator) (HapticDevice, bool) {
	if m == nil {
		return nil, false
	}
	if p, ok := m.(ControllerProvider); ok {
		if d, ok := p.Controller(); ok && d != nil {
			return d, true
		}
		return nil, false
	}
	if d, ok := m.(HapticDevice); ok {
		return d, true
	}
	return nil, false
}

// Same reports whether a and b refer to the same manipulator.
func Same(a, b Manipulator) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

// Interactable is the object-side grab surface owned by the interaction layer.
type Interactable interface {
	// SetGrabbable toggles whether manipulators may start a new grab.
	SetGrabbable(enabled bool)
	// EndGrip asks the interaction layer to release m's grip constraint. The
	// layer later reports the release as a regular grab-end event.
	EndGrip(m Manipulator)
}
