package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAngleBetween(t *testing.T) {
	from := Identity
	to := AxisAngle(45, Up)
	assert.InDelta(t, 45, AngleBetween(from, to), 1e-9)
	assert.InDelta(t, 0, AngleBetween(to, to), 1e-6)

	// q and -q describe the same rotation.
	neg := Quat{Real: -to.Real, Imag: -to.Imag, Jmag: -to.Jmag, Kmag: -to.Kmag}
	assert.InDelta(t, 0, AngleBetween(to, neg), 1e-6)
}

func TestAxisAngleDegenerate(t *testing.T) {
	assert.Equal(t, Identity, AxisAngle(30, Zero))
	assert.Equal(t, Identity, AxisAngle(0, Up))
}

func TestRotate(t *testing.T) {
	v := Rotate(AxisAngle(90, Up), Forward)
	assert.InDelta(t, 1, v.X, 1e-9)
	assert.InDelta(t, 0, v.Z, 1e-9)
}

func TestMean(t *testing.T) {
	assert.Equal(t, Zero, Mean(nil))
	m := Mean([]Vec3{{X: 3}, {X: 0}, {Y: 3}})
	assert.InDelta(t, 1, m.X, 1e-12)
	assert.InDelta(t, 1, m.Y, 1e-12)
}

func TestRigidBody(t *testing.T) {
	b := NewRigidBody(0)
	assert.Equal(t, 1.0, b.Mass())

	b.SetMass(-2)
	assert.Equal(t, 1.0, b.Mass())

	b.SetGravity(false)
	b.AddVelocityChange(Vec3{X: 2})
	b.Step(0.5)
	assert.Equal(t, Vec3{X: 1}, b.Position())
	assert.Len(t, b.Impulses(), 1)

	b.SetKinematic(true)
	b.Step(0.5)
	assert.Equal(t, Vec3{X: 1}, b.Position())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.5, Clamp(0.1, 0.5, 1))
	assert.Equal(t, 1.0, Clamp(3, 0.5, 1))
	assert.Equal(t, 0.7, Clamp(0.7, 0.5, 1))
}
