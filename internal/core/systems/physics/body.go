package physics

import "gonum.org/v1/gonum/spatial/r3"

var _ Body = (*RigidBody)(nil)

// RigidBody is an in-memory Body. It stands in for an engine body in the
// simulation runner and in tests; Step does plain explicit Euler so scripted
// scenarios move in a believable way.
type RigidBody struct {
	position        Vec3
	rotation        Quat
	linearVelocity  Vec3
	angularVelocity Vec3
	mass            float64
	kinematic       bool
	gravity         bool

	impulses []Vec3
}

func NewRigidBody(mass float64) *RigidBody {
	if mass <= 0 {
		mass = 1
	}
	return &RigidBody{rotation: Identity, mass: mass, gravity: true}
}

func (b *RigidBody) Position() Vec3       { return b.position }
func (b *RigidBody) Rotation() Quat       { return b.rotation }
func (b *RigidBody) LinearVelocity() Vec3 { return b.linearVelocity }
func (b *RigidBody) AngularVelocity() Vec3 {
	return b.angularVelocity
}
func (b *RigidBody) Mass() float64   { return b.mass }
func (b *RigidBody) Kinematic() bool { return b.kinematic }

func (b *RigidBody) SetPosition(p Vec3)          { b.position = p }
func (b *RigidBody) SetRotation(q Quat)          { b.rotation = normalize(q) }
func (b *RigidBody) SetLinearVelocity(v Vec3)    { b.linearVelocity = v }
func (b *RigidBody) SetAngularVelocity(w Vec3)   { b.angularVelocity = w }
func (b *RigidBody) SetKinematic(kinematic bool) { b.kinematic = kinematic }
func (b *RigidBody) SetGravity(enabled bool)     { b.gravity = enabled }

func (b *RigidBody) SetMass(m float64) {
	if m > 0 {
		b.mass = m
	}
}

func (b *RigidBody) AddVelocityChange(dv Vec3) {
	b.impulses = append(b.impulses, dv)
	b.linearVelocity = r3.Add(b.linearVelocity, dv)
}

// Impulses returns every velocity change applied since construction.
func (b *RigidBody) Impulses() []Vec3 {
	out := make([]Vec3, len(b.impulses))
	copy(out, b.impulses)
	return out
}

// Step advances position by velocity over dt seconds, applying gravity when
// the body is dynamic.
func (b *RigidBody) Step(dt float64) {
	if b.kinematic {
		return
	}
	if b.gravity {
		b.linearVelocity = r3.Add(b.linearVelocity, Vec3{Y: -9.81 * dt})
	}
	b.position = r3.Add(b.position, r3.Scale(dt, b.linearVelocity))
}
