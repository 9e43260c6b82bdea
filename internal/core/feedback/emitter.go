package feedback

import (
	"errors"
	"time"

	"github.com/zeusync/grip/internal/core/grip"
	"github.com/zeusync/grip/internal/core/interaction"
	"github.com/zeusync/grip/internal/core/observability/log"
	"github.com/zeusync/grip/internal/core/systems/physics"
)

// Emission describes what Emit did. Callers are free to ignore it.
type Emission struct {
	Event  Event
	Volume float64
	Pitch  float64
	Played bool
	Pulses int
}

// Emitter routes events to the audio sink and to the owning manipulators'
// haptics.
type Emitter struct {
	sink     AudioSink
	profiles Profiles
	logger   log.Log
}

// NewEmitter builds an emitter. A nil sink disables audio but keeps haptics.
func NewEmitter(sink AudioSink, profiles Profiles, logger log.Log) *Emitter {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Emitter{sink: sink, profiles: profiles, logger: logger}
}

// Emit plays the cue for ev at position and pulses the owners. A missing cue
// skips playback only.
func (e *Emitter) Emit(ev Event, owners grip.Ownership, position physics.Vec3) Emission {
	out := Emission{Event: ev}
	profile, ok := e.profiles.For(ev.Kind)
	if !ok {
		e.logger.Warn("no feedback profile", log.Stringer("kind", ev.Kind))
		return out
	}

	out.Volume = profile.Volume(ev.Intensity)
	out.Pitch = profile.Pitch(ev.Intensity)
	out.Played = e.play(profile, PlayRequest{
		Channel:  ev.Kind,
		Cue:      profile.Cue,
		Volume:   out.Volume,
		Pitch:    out.Pitch,
		Position: position,
	})

	if e.Pulse(owners.Primary, out.Volume*profile.PrimaryHaptic, profile.HapticDuration) {
		out.Pulses++
	}
	if owners.IsTwoHanded() &&
		e.Pulse(owners.Secondary, out.Volume*profile.SecondaryHaptic, profile.HapticDuration) {
		out.Pulses++
	}
	return out
}

// Pulse sends one haptic impulse to m, clamped to [0,1]. Manipulators
// without haptics and non-positive amplitudes are skipped.
func (e *Emitter) Pulse(m interaction.Manipulator, amplitude float64, duration time.Duration) bool {
	if amplitude <= 0 || duration <= 0 {
		return false
	}
	device, ok := interaction.HapticsOf(m)
	if !ok {
		return false
	}
	return device.SendHapticImpulse(physics.Clamp(amplitude, 0, 1), duration)
}

func (e *Emitter) play(profile Profile, req PlayRequest) bool {
	if e.sink == nil || profile.Cue == "" {
		return false
	}
	if err := e.sink.Play(req); err != nil {
		if errors.Is(err, ErrMissingCue) {
			e.logger.Debug("cue missing, skipping playback", log.String("cue", req.Cue))
		} else {
			e.logger.Warn("playback failed", log.String("cue", req.Cue), log.Error(err))
		}
		return false
	}
	return true
}
