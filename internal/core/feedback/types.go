// Package feedback turns classified events into audio cues and haptic pulses.
package feedback

import (
	"errors"
	"fmt"
	"time"

	"github.com/zeusync/grip/internal/core/systems/physics"
)

// Kind of feedback event. Each kind plays on its own audio channel.
type Kind uint8

const (
	Slash Kind = iota
	Hit
	Throw
)

func (k Kind) String() string {
	switch k {
	case Slash:
		return "slash"
	case Hit:
		return "hit"
	case Throw:
		return "throw"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Kinds lists every kind in channel order.
var Kinds = []Kind{Slash, Hit, Throw}

// Event is produced and consumed within one tick; it is never stored.
type Event struct {
	Kind      Kind
	Intensity float64
}

// ErrMissingCue is returned by sinks asked to play a cue they do not have.
var ErrMissingCue = errors.New("audio cue not available")

// PlayRequest is one fire-and-forget audio playback.
type PlayRequest struct {
	Channel  Kind
	Cue      string
	Volume   float64
	Pitch    float64
	Position physics.Vec3
}

// AudioSink plays cues. Requests on one channel must not cut off sounds
// already playing on that or any other channel.
type AudioSink interface {
	Play(req PlayRequest) error
}

// Profile tunes the cue and haptics of one kind. Intensities are scaled
// against Threshold; a non-positive Threshold plays at BaseVolume and unit
// pitch regardless of intensity.
type Profile struct {
	Cue        string  `json:"cue" yaml:"cue"`
	BaseVolume float64 `json:"base_volume" yaml:"base_volume"`
	// Threshold mirrors the classifier threshold and is set by the owner.
	Threshold float64 `json:"-" yaml:"-"`

	VolumeFloor   float64 `json:"volume_floor" yaml:"volume_floor"`
	VolumeDivisor float64 `json:"volume_divisor" yaml:"volume_divisor"`
	PitchDivisor  float64 `json:"pitch_divisor" yaml:"pitch_divisor"`
	PitchMin      float64 `json:"pitch_min" yaml:"pitch_min"`
	PitchMax      float64 `json:"pitch_max" yaml:"pitch_max"`

	PrimaryHaptic   float64       `json:"primary_haptic" yaml:"primary_haptic"`
	SecondaryHaptic float64       `json:"secondary_haptic" yaml:"secondary_haptic"`
	HapticDuration  time.Duration `json:"haptic_duration" yaml:"haptic_duration"`
}

func (p Profile) Validate() error {
	if p.BaseVolume < 0 || p.BaseVolume > 1 {
		return fmt.Errorf("base_volume must be within [0,1], got %v", p.BaseVolume)
	}
	if p.Threshold > 0 && (p.VolumeDivisor <= 0 || p.PitchDivisor <= 0) {
		return fmt.Errorf("volume_divisor and pitch_divisor must be positive")
	}
	if p.VolumeFloor < 0 || p.VolumeFloor > 1 {
		return fmt.Errorf("volume_floor must be within [0,1], got %v", p.VolumeFloor)
	}
	if p.PitchMin > p.PitchMax {
		return fmt.Errorf("pitch_min %v exceeds pitch_max %v", p.PitchMin, p.PitchMax)
	}
	if p.PrimaryHaptic < 0 || p.SecondaryHaptic < 0 || p.HapticDuration < 0 {
		return fmt.Errorf("haptic scales and duration must not be negative")
	}
	return nil
}

// Volume maps intensity to playback volume.
func (p Profile) Volume(intensity float64) float64 {
	if p.Threshold <= 0 {
		return p.BaseVolume
	}
	return p.BaseVolume * physics.Clamp(intensity/(p.Threshold*p.VolumeDivisor), p.VolumeFloor, 1)
}

// Pitch maps intensity to a playback rate multiplier.
func (p Profile) Pitch(intensity float64) float64 {
	if p.Threshold <= 0 {
		return 1
	}
	return physics.Clamp(intensity/(p.Threshold*p.PitchDivisor), p.PitchMin, p.PitchMax)
}

// Profiles holds one Profile per kind.
type Profiles struct {
	Slash Profile `json:"slash" yaml:"slash"`
	Hit   Profile `json:"hit" yaml:"hit"`
	Throw Profile `json:"throw" yaml:"throw"`
}

func (ps Profiles) For(k Kind) (Profile, bool) {
	switch k {
	case Slash:
		return ps.Slash, true
	case Hit:
		return ps.Hit, true
	case Throw:
		return ps.Throw, true
	default:
		return Profile{}, false
	}
}

func (ps Profiles) Validate() error {
	for _, k := range Kinds {
		p, _ := ps.For(k)
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	return nil
}

// DefaultProfiles reproduces the stock katana and orb tuning. Thresholds are
// filled in from the classifier settings by the caller.
func DefaultProfiles(slashThreshold, hitThreshold float64) Profiles {
	return Profiles{
		Slash: Profile{
			Cue:             "slash",
			BaseVolume:      0.7,
			Threshold:       slashThreshold,
			VolumeFloor:     0.5,
			VolumeDivisor:   1.5,
			PitchDivisor:    2,
			PitchMin:        0.5,
			PitchMax:        1.5,
			PrimaryHaptic:   0.7,
			SecondaryHaptic: 0.5,
			HapticDuration:  100 * time.Millisecond,
		},
		Hit: Profile{
			Cue:             "hit",
			BaseVolume:      0.8,
			Threshold:       hitThreshold,
			VolumeFloor:     0.5,
			VolumeDivisor:   1.5,
			PitchDivisor:    2,
			PitchMin:        0.8,
			PitchMax:        1.5,
			PrimaryHaptic:   1.0,
			SecondaryHaptic: 0.7,
			HapticDuration:  150 * time.Millisecond,
		},
		Throw: Profile{
			Cue:        "throw",
			BaseVolume: 0.7,
			PitchMin:   1,
			PitchMax:   1,
		},
	}
}
