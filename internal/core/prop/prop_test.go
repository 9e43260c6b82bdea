package prop

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/grip/internal/core/feedback"
	"github.com/zeusync/grip/internal/core/grip"
	"github.com/zeusync/grip/internal/core/impact"
	"github.com/zeusync/grip/internal/core/interaction"
	"github.com/zeusync/grip/internal/core/systems/physics"
	"github.com/zeusync/grip/internal/core/throw"
)

type recordingSink struct{ played []feedback.PlayRequest }

func (s *recordingSink) Play(req feedback.PlayRequest) error {
	s.played = append(s.played, req)
	return nil
}

func (s *recordingSink) count(k feedback.Kind) int {
	n := 0
	for _, r := range s.played {
		if r.Channel == k {
			n++
		}
	}
	return n
}

// surface ends grips the way an interaction layer would: by reporting a
// regular release back to the prop.
type surface struct {
	prop      *Prop
	grabbable []bool
}

func (s *surface) SetGrabbable(enabled bool) { s.grabbable = append(s.grabbable, enabled) }
func (s *surface) EndGrip(m interaction.Manipulator) {
	s.prop.OnGrabEnd(m)
}

type fixture struct {
	prop    *Prop
	body    *physics.RigidBody
	sink    *recordingSink
	surface *surface
	left    *interaction.Hand
	right   *interaction.Hand
	step    time.Duration
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		body:    physics.NewRigidBody(1),
		sink:    &recordingSink{},
		surface: &surface{},
		left:    interaction.NewHand("left", true),
		right:   interaction.NewHand("right", true),
	}
	settings := DefaultSettings()
	f.step = settings.Step
	p, err := New(settings, Deps{Name: "katana", Body: f.body, Surface: f.surface, Sink: f.sink})
	require.NoError(t, err)
	f.prop = p
	f.surface.prop = p
	return f
}

// swing sets up tick k of a widening, accelerating arc and runs it.
func (f *fixture) swing(t *testing.T, k int) {
	t.Helper()
	f.body.SetLinearVelocity(physics.Vec3{Z: 4 * math.Pow(1.5, float64(k-1))})
	f.body.SetRotation(physics.AxisAngle(40*float64(k), physics.Up))
	require.NoError(t, f.prop.FixedUpdate(f.step))
}

func (f *fixture) idle(t *testing.T, n int) {
	t.Helper()
	for range n {
		require.NoError(t, f.prop.FixedUpdate(f.step))
	}
}

func TestNewValidatesSettings(t *testing.T) {
	_, err := New(DefaultSettings(), Deps{})
	assert.Error(t, err)

	bad := DefaultSettings()
	bad.Motion.BufferSize = 0
	_, err = New(bad, Deps{Body: physics.NewRigidBody(1)})
	assert.Error(t, err)

	p, err := New(DefaultSettings(), Deps{Body: physics.NewRigidBody(1)})
	require.NoError(t, err)
	assert.Contains(t, p.Name(), "prop-")
}

func TestSlashFiresOncePerCooldown(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, grip.RolePrimary, f.prop.OnGrabBegin(f.right))

	var fired []int
	for k := 1; k <= 17; k++ {
		before := f.sink.count(feedback.Slash)
		f.swing(t, k)
		if f.sink.count(feedback.Slash) > before {
			fired = append(fired, k)
		}
	}
	// 300ms cooldown at a 20ms step.
	assert.Equal(t, []int{2, 17}, fired)
	assert.EqualValues(t, 2, f.prop.Stats().Slashes)

	pulses := f.right.Pulses()
	require.Len(t, pulses, 2)
	assert.InDelta(t, 0.7*0.7, pulses[0].Amplitude, 1e-9)
	assert.Equal(t, 100*time.Millisecond, pulses[0].Duration)
}

func TestNoSlashWhileNotHeld(t *testing.T) {
	f := newFixture(t)
	for k := 1; k <= 5; k++ {
		f.swing(t, k)
	}
	assert.Zero(t, f.sink.count(feedback.Slash))
}

func TestRegrabResetsMotionState(t *testing.T) {
	f := newFixture(t)
	f.prop.OnGrabBegin(f.right)
	f.swing(t, 1)
	f.swing(t, 2)
	require.True(t, f.prop.Diagnostics().SlashCooldown)
	require.Equal(t, 2, f.prop.slash.Buffer().Len())

	f.prop.OnGrabEnd(f.right)
	require.Equal(t, grip.RolePrimary, f.prop.OnGrabBegin(f.right))

	d := f.prop.Diagnostics()
	assert.False(t, d.SlashCooldown)
	assert.Zero(t, d.HitCooldown)
	assert.Equal(t, 0, f.prop.slash.Buffer().Len())
	assert.Equal(t, physics.Zero, f.prop.slash.Buffer().Mean())
	assert.Equal(t, f.body.Rotation(), f.prop.slash.Reference())
}

func TestTwoHandedScalesMass(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, grip.RolePrimary, f.prop.OnGrabBegin(f.left))
	assert.Equal(t, grip.RoleSecondary, f.prop.OnGrabBegin(f.right))
	assert.True(t, f.prop.IsTwoHanded())
	assert.InDelta(t, 0.7, f.body.Mass(), 1e-12)

	third := interaction.NewHand("third", false)
	assert.Equal(t, grip.RoleNone, f.prop.OnGrabBegin(third))
	assert.EqualValues(t, 1, f.prop.Stats().IgnoredGrabs)
	assert.True(t, interaction.Same(f.left, f.prop.Ownership().Primary))
	assert.True(t, interaction.Same(f.right, f.prop.Ownership().Secondary))

	assert.Equal(t, grip.RolePrimary, f.prop.OnGrabEnd(f.left))
	assert.False(t, f.prop.IsTwoHanded())
	assert.InDelta(t, 1.0, f.body.Mass(), 1e-12)
	assert.True(t, interaction.Same(f.right, f.prop.Ownership().Primary))
	assert.Nil(t, f.prop.Ownership().Secondary)

	assert.Equal(t, grip.RoleNone, f.prop.OnGrabEnd(f.left))
	assert.EqualValues(t, 1, f.prop.Stats().IgnoredReleases)
}

func TestIgnoredGrabStillResetsMotionState(t *testing.T) {
	f := newFixture(t)
	f.prop.OnGrabBegin(f.left)
	f.prop.OnGrabBegin(f.right)

	f.body.SetLinearVelocity(physics.Vec3{Z: 9})
	require.NoError(t, f.prop.FixedUpdate(f.step))
	_, ok := f.prop.OnContact(impact.Contact{RelativeVelocity: physics.Vec3{X: 5}})
	require.True(t, ok)
	require.Equal(t, 1, f.prop.slash.Buffer().Len())
	require.NotZero(t, f.prop.Diagnostics().HitCooldown)

	for _, m := range []interaction.Manipulator{interaction.NewHand("third", false), f.left} {
		f.body.SetKinematic(true)
		assert.Equal(t, grip.RoleNone, f.prop.OnGrabBegin(m))

		assert.Equal(t, 0, f.prop.slash.Buffer().Len())
		assert.Equal(t, physics.Zero, f.prop.slash.Buffer().Mean())
		assert.False(t, f.prop.Diagnostics().SlashCooldown)
		assert.Zero(t, f.prop.Diagnostics().HitCooldown)
		assert.Equal(t, f.body.Rotation(), f.prop.slash.Reference())
		assert.False(t, f.body.Kinematic())

		require.NoError(t, f.prop.FixedUpdate(f.step))
		_, ok = f.prop.OnContact(impact.Contact{RelativeVelocity: physics.Vec3{X: 5}})
		require.True(t, ok)
	}
	assert.EqualValues(t, 2, f.prop.Stats().IgnoredGrabs)
	assert.True(t, f.prop.IsTwoHanded())
}

func TestGrabKeepsBodyDynamic(t *testing.T) {
	f := newFixture(t)
	f.body.SetKinematic(true)
	f.prop.OnGrabBegin(f.left)
	assert.False(t, f.body.Kinematic())

	f.body.SetKinematic(true)
	f.prop.OnGrabEnd(f.left)
	assert.False(t, f.body.Kinematic())
}

func TestHitFeedbackAndCooldown(t *testing.T) {
	f := newFixture(t)
	f.prop.OnGrabBegin(f.right)

	em, ok := f.prop.OnContact(impact.Contact{RelativeVelocity: physics.Vec3{X: 1.5}})
	require.True(t, ok)
	assert.InDelta(t, 0.8, em.Volume, 1e-12)
	assert.InDelta(t, 0.8, em.Pitch, 1e-12)
	assert.Equal(t, 1, em.Pulses)

	_, ok = f.prop.OnContact(impact.Contact{RelativeVelocity: physics.Vec3{X: 5}})
	assert.False(t, ok, "inside the hit cooldown")

	f.idle(t, 5)
	_, ok = f.prop.OnContact(impact.Contact{RelativeVelocity: physics.Vec3{X: 5}})
	assert.True(t, ok)
	assert.Equal(t, 2, f.sink.count(feedback.Hit))
	assert.EqualValues(t, 2, f.prop.Stats().Hits)
}

func TestHitsRegisterWithoutHolder(t *testing.T) {
	f := newFixture(t)
	em, ok := f.prop.OnContact(impact.Contact{RelativeVelocity: physics.Vec3{Y: -3}})
	require.True(t, ok)
	assert.Zero(t, em.Pulses)
	assert.True(t, em.Played)
}

func TestThrowRunsToCompletion(t *testing.T) {
	f := newFixture(t)
	f.prop.OnGrabBegin(f.right)
	f.body.SetLinearVelocity(physics.Vec3{X: 1})

	require.True(t, f.prop.OnActivate())
	assert.Equal(t, throw.Armed, f.prop.ThrowState())
	assert.False(t, f.prop.OnActivate())

	f.idle(t, 1)
	assert.Equal(t, throw.Releasing, f.prop.ThrowState())
	assert.False(t, f.prop.Ownership().IsHeld(), "grip ended by the interaction layer")
	assert.Equal(t, []bool{false}, f.surface.grabbable)

	f.idle(t, 5)
	assert.Equal(t, throw.Cooldown, f.prop.ThrowState())
	assert.Equal(t, []bool{false, true}, f.surface.grabbable)
	assert.Equal(t, physics.Vec3{X: 1.5, Z: 20}, f.body.LinearVelocity())

	f.prop.OnGrabBegin(f.right)
	assert.False(t, f.prop.OnActivate(), "no new throw before the cooldown elapses")

	f.idle(t, 25)
	assert.Equal(t, throw.Idle, f.prop.ThrowState())
	assert.True(t, f.prop.OnActivate())
	assert.EqualValues(t, 1, f.prop.Stats().Throws, "counted at launch")

	f.idle(t, 10)
	s := f.prop.Stats()
	assert.EqualValues(t, 2, s.Throws)
	assert.EqualValues(t, 2, s.RejectedActivations)
	assert.Equal(t, 2, f.sink.count(feedback.Throw))
}

func TestDestroyBeforeLaunchIsNotAThrow(t *testing.T) {
	f := newFixture(t)
	f.prop.OnGrabBegin(f.right)
	require.True(t, f.prop.OnActivate())

	f.idle(t, 1)
	require.Equal(t, throw.Releasing, f.prop.ThrowState())
	f.prop.Destroy()
	f.idle(t, 10)

	assert.Zero(t, f.prop.Stats().Throws)
}

func TestActivateWithoutHolderIgnored(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.prop.OnActivate())
	assert.Equal(t, throw.Idle, f.prop.ThrowState())
	assert.Empty(t, f.sink.played)
}

func TestManualSlashDefaultsIntensity(t *testing.T) {
	f := newFixture(t)
	f.prop.OnGrabBegin(f.left)

	em := f.prop.ManualSlash(0)
	assert.InDelta(t, 3.0, em.Event.Intensity, 1e-12)
	assert.InDelta(t, 0.7, em.Volume, 1e-12)
	assert.InDelta(t, 0.75, em.Pitch, 1e-12)
	assert.Equal(t, 1, em.Pulses)

	em = f.prop.ManualSlash(1)
	assert.InDelta(t, 0.35, em.Volume, 1e-12)
	assert.InDelta(t, 0.5, em.Pitch, 1e-12)
	assert.EqualValues(t, 2, f.prop.Stats().ManualSlashes)
	assert.Zero(t, f.prop.Stats().Slashes)
}

func TestDestroyCancelsPendingThrow(t *testing.T) {
	f := newFixture(t)
	f.prop.OnGrabBegin(f.right)
	require.True(t, f.prop.OnActivate())
	f.idle(t, 1)
	require.Equal(t, throw.Releasing, f.prop.ThrowState())

	require.NoError(t, f.prop.Shutdown(context.Background()))
	f.idle(t, 10)

	assert.Empty(t, f.body.Impulses())
	assert.Equal(t, []bool{false}, f.surface.grabbable)
	assert.False(t, f.prop.OnActivate())
	assert.Equal(t, grip.RoleNone, f.prop.OnGrabBegin(f.left))
	_, ok := f.prop.OnContact(impact.Contact{RelativeVelocity: physics.Vec3{X: 9}})
	assert.False(t, ok)

	d := f.prop.Diagnostics()
	assert.True(t, d.Destroyed)
	assert.Zero(t, d.Pending)
	assert.False(t, d.Ownership.IsHeld())
	f.prop.Destroy()
}

func TestDiagnosticsSnapshot(t *testing.T) {
	f := newFixture(t)
	f.prop.OnGrabBegin(f.left)
	f.swing(t, 1)
	require.NoError(t, f.prop.Update(16*time.Millisecond))

	d := f.prop.Diagnostics()
	assert.Equal(t, "katana", d.Name)
	assert.EqualValues(t, 1, d.Tick)
	assert.InDelta(t, 4.0/3.0, d.Motion.Speed, 1e-9)
	assert.InDelta(t, 40, d.Motion.Angle, 1e-6)
	assert.InDelta(t, 1.0, physics.Magnitude(d.Forward), 1e-9)
	assert.EqualValues(t, 1, d.Stats.Frames)
	assert.Equal(t, throw.Idle, d.Throw)
}
