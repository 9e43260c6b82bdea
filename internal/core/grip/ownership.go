// Package grip tracks which manipulators hold an object and whether it is in
// two-handed mode.
package grip

import (
	"fmt"
	"strings"

	"github.com/zeusync/grip/internal/core/interaction"
	"github.com/zeusync/grip/internal/core/observability/log"
	"github.com/zeusync/grip/internal/core/systems/physics"
)

// Role is the slot a manipulator occupies.
type Role uint8

const (
	RoleNone Role = iota
	RolePrimary
	RoleSecondary
)

func (r Role) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleSecondary:
		return "secondary"
	default:
		return "none"
	}
}

// RestoreMode selects the mass written back when two-handed mode ends.
type RestoreMode string

const (
	// RestoreCaptured writes back the mass recorded when two-handed mode began.
	RestoreCaptured RestoreMode = "captured"
	// RestoreFixed writes DefaultMass whenever a release leaves the object
	// one-handed or free, whatever the mass was before.
	RestoreFixed RestoreMode = "fixed"
)

// Settings configure two-handed behaviour.
type Settings struct {
	MassFactor  float64     `json:"mass_factor" yaml:"mass_factor"`
	MassRestore RestoreMode `json:"mass_restore" yaml:"mass_restore"`
	DefaultMass float64     `json:"default_mass" yaml:"default_mass"`
}

func DefaultSettings() Settings {
	return Settings{MassFactor: 0.7, MassRestore: RestoreCaptured, DefaultMass: 1.0}
}

func (s Settings) Validate() error {
	if s.MassFactor <= 0 {
		return fmt.Errorf("mass_factor must be positive, got %v", s.MassFactor)
	}
	switch s.MassRestore {
	case RestoreCaptured, RestoreFixed:
	default:
		return fmt.Errorf("unknown mass_restore %q", s.MassRestore)
	}
	if s.MassRestore == RestoreFixed && s.DefaultMass <= 0 {
		return fmt.Errorf("default_mass must be positive with fixed restore, got %v", s.DefaultMass)
	}
	return nil
}

// Ownership is a snapshot of the grip slots. Secondary is never set while
// Primary is empty.
type Ownership struct {
	Primary   interaction.Manipulator
	Secondary interaction.Manipulator

	massBeforeScale float64
}

func (o Ownership) IsHeld() bool      { return o.Primary != nil }
func (o Ownership) IsTwoHanded() bool { return o.Primary != nil && o.Secondary != nil }

// RoleOf returns the slot m occupies.
func (o Ownership) RoleOf(m interaction.Manipulator) Role {
	switch {
	case m == nil:
		return RoleNone
	case o.Primary != nil && interaction.Same(o.Primary, m):
		return RolePrimary
	case o.Secondary != nil && interaction.Same(o.Secondary, m):
		return RoleSecondary
	default:
		return RoleNone
	}
}

func (o Ownership) String() string {
	var b strings.Builder
	b.WriteString("primary=")
	writeManipulator(&b, o.Primary)
	b.WriteString(" secondary=")
	writeManipulator(&b, o.Secondary)
	return b.String()
}

func writeManipulator(b *strings.Builder, m interaction.Manipulator) {
	if m == nil {
		b.WriteString("-")
		return
	}
	if s, ok := m.(fmt.Stringer); ok {
		b.WriteString(s.String())
		return
	}
	b.WriteString(m.ID().String())
}

// Tracker applies grab-begin and grab-end events to an Ownership and keeps the
// body's mass in step with two-handed mode. body may be nil.
type Tracker struct {
	settings Settings
	body     physics.Body
	own      Ownership
	logger   log.Log
}

func NewTracker(settings Settings, body physics.Body, logger log.Log) *Tracker {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Tracker{settings: settings, body: body, logger: logger}
}

// Begin assigns m to the first free slot. Third grips and repeated grips by a
// current owner are ignored and reported as RoleNone.
func (t *Tracker) Begin(m interaction.Manipulator) Role {
	if m == nil {
		return RoleNone
	}
	if role := t.own.RoleOf(m); role != RoleNone {
		t.logger.Debug("duplicate grab ignored", log.Stringer("role", role))
		return RoleNone
	}

	switch {
	case t.own.Primary == nil:
		t.own.Primary = m
		return RolePrimary
	case t.own.Secondary == nil:
		t.own.Secondary = m
		t.enterTwoHanded()
		return RoleSecondary
	default:
		t.logger.Debug("third grip ignored")
		return RoleNone
	}
}

// End removes m from whichever slot it holds, promoting the secondary when the
// primary lets go. Releases from non-owners are ignored and return RoleNone.
func (t *Tracker) End(m interaction.Manipulator) Role {
	role := t.own.RoleOf(m)
	wasTwoHanded := t.own.IsTwoHanded()

	switch role {
	case RolePrimary:
		t.own.Primary = t.own.Secondary
		t.own.Secondary = nil
	case RoleSecondary:
		t.own.Secondary = nil
	default:
		t.logger.Debug("release from non-owner ignored")
		return RoleNone
	}

	t.leaveTwoHanded(wasTwoHanded)
	return role
}

func (t *Tracker) Ownership() Ownership { return t.own }
func (t *Tracker) IsHeld() bool         { return t.own.IsHeld() }
func (t *Tracker) IsTwoHanded() bool    { return t.own.IsTwoHanded() }

// Clear drops both slots without touching the body. Used on destroy.
func (t *Tracker) Clear() { t.own = Ownership{} }

func (t *Tracker) enterTwoHanded() {
	if t.body == nil {
		return
	}
	before := t.body.Mass()
	t.own.massBeforeScale = before
	t.body.SetMass(before * t.settings.MassFactor)
	t.logger.Debug("two-handed mode on",
		log.Float64("mass_before", before),
		log.Float64("mass", t.body.Mass()))
}

func (t *Tracker) leaveTwoHanded(wasTwoHanded bool) {
	if t.body == nil || t.own.IsTwoHanded() {
		return
	}

	switch t.settings.MassRestore {
	case RestoreFixed:
		t.body.SetMass(t.settings.DefaultMass)
	default:
		if !wasTwoHanded {
			return
		}
		t.body.SetMass(t.own.massBeforeScale)
	}
	t.own.massBeforeScale = 0
	t.logger.Debug("two-handed mode off", log.Float64("mass", t.body.Mass()))
}
