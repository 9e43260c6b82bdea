// Package scenario scripts hands, props and contacts for the simulation
// runner.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/grip/internal/core/systems/physics"
)

// ErrInvalid wraps every script validation failure.
var ErrInvalid = errors.New("invalid scenario")

type Action string

const (
	ActionGrab        Action = "grab"
	ActionRelease     Action = "release"
	ActionContact     Action = "contact"
	ActionActivate    Action = "activate"
	ActionSwing       Action = "swing"
	ActionStill       Action = "still"
	ActionAim         Action = "aim"
	ActionManualSlash Action = "manual_slash"
	ActionDestroy     Action = "destroy"
)

// Vec is a YAML-friendly [x, y, z].
type Vec [3]float64

func (v Vec) Vec3() physics.Vec3 { return physics.Vec3{X: v[0], Y: v[1], Z: v[2]} }

type PropSpec struct {
	Name     string  `yaml:"name"`
	Mass     float64 `yaml:"mass"`
	Position Vec     `yaml:"position"`
}

type HandSpec struct {
	Name    string `yaml:"name"`
	Haptics bool   `yaml:"haptics"`
	Forward Vec    `yaml:"forward"`
}

// Step is one scripted action. Which fields apply depends on Action.
type Step struct {
	At     time.Duration `yaml:"at"`
	Action Action        `yaml:"action"`
	Prop   string        `yaml:"prop"`
	Hand   string        `yaml:"hand,omitempty"`

	// contact, swing
	Velocity Vec `yaml:"velocity,omitempty"`
	// swing
	Growth   float64       `yaml:"growth,omitempty"`
	Degrees  float64       `yaml:"degrees,omitempty"`
	Axis     Vec           `yaml:"axis,omitempty"`
	Duration time.Duration `yaml:"duration,omitempty"`
	// aim
	Forward Vec `yaml:"forward,omitempty"`
	// manual_slash
	Intensity float64 `yaml:"intensity,omitempty"`
}

type Script struct {
	Name     string        `yaml:"name"`
	Duration time.Duration `yaml:"duration"`
	// Listener is where spatial audio is heard from; the world origin when omitted.
	Listener Vec        `yaml:"listener,omitempty"`
	Props    []PropSpec `yaml:"props"`
	Hands    []HandSpec `yaml:"hands"`
	Steps    []Step     `yaml:"steps"`
}

func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func Parse(data []byte) (*Script, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads and validates a script. Steps come back sorted by time,
// keeping file order for equal times.
func Decode(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].At < s.Steps[j].At })
	return &s, nil
}

func (s *Script) applyDefaults() {
	for i := range s.Props {
		if s.Props[i].Mass == 0 {
			s.Props[i].Mass = 1
		}
	}
	for i := range s.Hands {
		if s.Hands[i].Forward == (Vec{}) {
			s.Hands[i].Forward = Vec{0, 0, 1}
		}
	}
	for i := range s.Steps {
		st := &s.Steps[i]
		if st.Action != ActionSwing {
			continue
		}
		if st.Growth == 0 {
			st.Growth = 1
		}
		if st.Axis == (Vec{}) {
			st.Axis = Vec{0, 1, 0}
		}
	}
}

func (s *Script) Validate() error {
	if s.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalid)
	}
	if len(s.Props) == 0 {
		return fmt.Errorf("%w: at least one prop is required", ErrInvalid)
	}
	props := make(map[string]bool, len(s.Props))
	for _, p := range s.Props {
		if p.Name == "" || props[p.Name] {
			return fmt.Errorf("%w: prop names must be unique and non-empty, got %q", ErrInvalid, p.Name)
		}
		if p.Mass < 0 {
			return fmt.Errorf("%w: prop %q has negative mass", ErrInvalid, p.Name)
		}
		props[p.Name] = true
	}
	hands := make(map[string]bool, len(s.Hands))
	for _, h := range s.Hands {
		if h.Name == "" || hands[h.Name] {
			return fmt.Errorf("%w: hand names must be unique and non-empty, got %q", ErrInvalid, h.Name)
		}
		hands[h.Name] = true
	}

	for i, st := range s.Steps {
		if st.At < 0 {
			return fmt.Errorf("%w: step %d: negative time", ErrInvalid, i)
		}
		if !props[st.Prop] {
			return fmt.Errorf("%w: step %d: unknown prop %q", ErrInvalid, i, st.Prop)
		}
		switch st.Action {
		case ActionGrab, ActionRelease, ActionAim:
			if !hands[st.Hand] {
				return fmt.Errorf("%w: step %d: unknown hand %q", ErrInvalid, i, st.Hand)
			}
		case ActionSwing:
			if st.Duration <= 0 {
				return fmt.Errorf("%w: step %d: swing needs a duration", ErrInvalid, i)
			}
			if st.Growth < 0 {
				return fmt.Errorf("%w: step %d: negative growth", ErrInvalid, i)
			}
		case ActionContact, ActionActivate, ActionStill, ActionManualSlash, ActionDestroy:
		default:
			return fmt.Errorf("%w: step %d: unknown action %q", ErrInvalid, i, st.Action)
		}
	}
	return nil
}
