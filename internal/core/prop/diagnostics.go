package prop

import (
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/grip/internal/core/grip"
	"github.com/zeusync/grip/internal/core/motion"
	"github.com/zeusync/grip/internal/core/systems/physics"
	"github.com/zeusync/grip/internal/core/throw"
)

// Diagnostics is a read-only snapshot for debug overlays and logs.
type Diagnostics struct {
	ID        uuid.UUID
	Name      string
	Tick      uint64
	Ownership grip.Ownership
	TwoHanded bool

	Mass     float64
	Position physics.Vec3
	Velocity physics.Vec3
	Forward  physics.Vec3

	Motion        motion.Reading
	SlashCooldown bool
	HitCooldown   time.Duration

	Throw         throw.State
	ThrowCooldown time.Duration
	Pending       int

	Stats     Stats
	Destroyed bool
}

func (p *Prop) Diagnostics() Diagnostics {
	d := Diagnostics{
		ID:            p.id,
		Name:          p.name,
		Tick:          p.scheduler.Now(),
		Ownership:     p.tracker.Ownership(),
		TwoHanded:     p.tracker.IsTwoHanded(),
		Motion:        p.slash.LastReading(),
		SlashCooldown: p.slash.CooldownActive(),
		HitCooldown:   p.hit.CooldownRemaining(),
		Throw:         p.throw.State(),
		ThrowCooldown: p.throw.CooldownRemaining(),
		Pending:       p.scheduler.Pending(),
		Stats:         p.stats,
		Destroyed:     p.destroyed,
	}
	if !p.destroyed {
		d.Mass = p.body.Mass()
		d.Position = p.body.Position()
		d.Velocity = p.body.LinearVelocity()
		d.Forward = physics.Rotate(p.body.Rotation(), physics.Forward)
	}
	return d
}
