package grip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/grip/internal/core/interaction"
	"github.com/zeusync/grip/internal/core/systems/physics"
)

func newTracker(t *testing.T, mass float64, s Settings) (*Tracker, *physics.RigidBody) {
	t.Helper()
	require.NoError(t, s.Validate())
	body := physics.NewRigidBody(mass)
	return NewTracker(s, body, nil), body
}

func TestTwoHandedScalesAndRestoresMass(t *testing.T) {
	for _, release := range []string{"primary", "secondary"} {
		t.Run(release, func(t *testing.T) {
			tr, body := newTracker(t, 1.0, DefaultSettings())
			left := interaction.NewHand("left", true)
			right := interaction.NewHand("right", true)

			assert.Equal(t, RolePrimary, tr.Begin(left))
			assert.False(t, tr.IsTwoHanded())
			assert.Equal(t, RoleSecondary, tr.Begin(right))
			assert.True(t, tr.IsTwoHanded())
			assert.InDelta(t, 0.7, body.Mass(), 1e-12)

			if release == "primary" {
				assert.Equal(t, RolePrimary, tr.End(left))
				assert.Same(t, right, tr.Ownership().Primary)
			} else {
				assert.Equal(t, RoleSecondary, tr.End(right))
				assert.Same(t, left, tr.Ownership().Primary)
			}
			assert.False(t, tr.IsTwoHanded())
			assert.Nil(t, tr.Ownership().Secondary)
			assert.InDelta(t, 1.0, body.Mass(), 1e-12)
		})
	}
}

func TestCapturedRestoreKeepsNonUnitMass(t *testing.T) {
	tr, body := newTracker(t, 4.0, DefaultSettings())
	a, b := interaction.NewHand("a", false), interaction.NewHand("b", false)
	tr.Begin(a)
	tr.Begin(b)
	assert.InDelta(t, 2.8, body.Mass(), 1e-12)
	tr.End(b)
	assert.InDelta(t, 4.0, body.Mass(), 1e-12)
}

func TestFixedRestoreWritesDefaultMass(t *testing.T) {
	s := DefaultSettings()
	s.MassRestore = RestoreFixed
	tr, body := newTracker(t, 4.0, s)
	a := interaction.NewHand("a", false)

	tr.Begin(a)
	tr.End(a)
	assert.Equal(t, 1.0, body.Mass())
}

func TestThirdAndDuplicateGripsIgnored(t *testing.T) {
	tr, body := newTracker(t, 1.0, DefaultSettings())
	a, b, c := interaction.NewHand("a", false), interaction.NewHand("b", false), interaction.NewHand("c", false)

	assert.Equal(t, RolePrimary, tr.Begin(a))
	assert.Equal(t, RoleNone, tr.Begin(a))
	assert.Equal(t, RoleSecondary, tr.Begin(b))
	assert.Equal(t, RoleNone, tr.Begin(c))
	assert.Equal(t, RoleNone, tr.Begin(nil))
	assert.InDelta(t, 0.7, body.Mass(), 1e-12)

	own := tr.Ownership()
	assert.Equal(t, RolePrimary, own.RoleOf(a))
	assert.Equal(t, RoleSecondary, own.RoleOf(b))
	assert.Equal(t, RoleNone, own.RoleOf(c))
}

func TestReleaseFromNonOwnerIgnored(t *testing.T) {
	tr, body := newTracker(t, 1.0, DefaultSettings())
	a, b := interaction.NewHand("a", false), interaction.NewHand("b", false)
	tr.Begin(a)
	tr.Begin(b)

	assert.Equal(t, RoleNone, tr.End(interaction.NewHand("stranger", false)))
	assert.True(t, tr.IsTwoHanded())
	assert.InDelta(t, 0.7, body.Mass(), 1e-12)
}

func TestSecondaryNeverWithoutPrimary(t *testing.T) {
	tr, _ := newTracker(t, 1.0, DefaultSettings())
	a, b := interaction.NewHand("a", false), interaction.NewHand("b", false)
	tr.Begin(a)
	tr.Begin(b)
	tr.End(a)
	tr.End(b)

	own := tr.Ownership()
	assert.False(t, own.IsHeld())
	assert.Nil(t, own.Secondary)

	// A new grab after everything let go lands in the primary slot.
	assert.Equal(t, RolePrimary, tr.Begin(b))
}

func TestTrackerWithoutBody(t *testing.T) {
	tr := NewTracker(DefaultSettings(), nil, nil)
	a, b := interaction.NewHand("a", false), interaction.NewHand("b", false)
	tr.Begin(a)
	tr.Begin(b)
	assert.True(t, tr.IsTwoHanded())
	tr.End(a)
	assert.False(t, tr.IsTwoHanded())
}

func TestSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	s.MassFactor = 0
	assert.Error(t, s.Validate())

	s = DefaultSettings()
	s.MassRestore = "guess"
	assert.Error(t, s.Validate())
}

func TestOwnershipString(t *testing.T) {
	tr, _ := newTracker(t, 1.0, DefaultSettings())
	tr.Begin(interaction.NewHand("left", false))
	assert.Equal(t, "primary=left secondary=-", tr.Ownership().String())
}
