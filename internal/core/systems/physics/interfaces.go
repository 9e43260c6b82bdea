package physics

// Body is the narrow view of a rigid body owned by the physics layer.
// The feedback core reads motion through it and issues the few writes a
// throw or a two-handed grip needs. It never integrates anything itself.
type Body interface {
	Position() Vec3
	Rotation() Quat

	LinearVelocity() Vec3
	SetLinearVelocity(v Vec3)
	AngularVelocity() Vec3

	Mass() float64
	SetMass(m float64)

	// AddVelocityChange applies an impulse that ignores mass, the same as
	// a velocity-change force mode in most engines.
	AddVelocityChange(dv Vec3)
	SetKinematic(kinematic bool)
}
