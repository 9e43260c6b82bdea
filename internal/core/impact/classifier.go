// Package impact classifies physics contacts into hit events.
package impact

import (
	"fmt"
	"time"

	"github.com/zeusync/grip/internal/core/cooldown"
	"github.com/zeusync/grip/internal/core/feedback"
	"github.com/zeusync/grip/internal/core/systems/physics"
)

// Contact is one contact report from the physics layer.
type Contact struct {
	RelativeVelocity physics.Vec3
	Point            physics.Vec3
}

// Settings tune hit detection.
type Settings struct {
	MinHitVelocity float64       `json:"min_hit_velocity" yaml:"min_hit_velocity"`
	Cooldown       time.Duration `json:"cooldown" yaml:"cooldown"`
}

func DefaultSettings() Settings {
	return Settings{MinHitVelocity: 1.0, Cooldown: 100 * time.Millisecond}
}

func (s Settings) Validate() error {
	if s.MinHitVelocity <= 0 {
		return fmt.Errorf("min_hit_velocity must be positive, got %v", s.MinHitVelocity)
	}
	if s.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative, got %s", s.Cooldown)
	}
	return nil
}

// Classifier turns contacts into hits. It does not care whether the object
// is held.
type Classifier struct {
	settings Settings
	cooldown cooldown.Timer
}

func NewClassifier(settings Settings) *Classifier {
	return &Classifier{settings: settings}
}

// OnContacts checks one batch of contacts reported together. The batch is
// collapsed to its strongest relative velocity, so simultaneous contacts
// produce at most one hit.
func (c *Classifier) OnContacts(contacts ...Contact) (feedback.Event, bool) {
	if len(contacts) == 0 || c.cooldown.Active() {
		return feedback.Event{}, false
	}

	strongest := 0.0
	for _, ct := range contacts {
		strongest = max(strongest, physics.Magnitude(ct.RelativeVelocity))
	}
	if strongest <= c.settings.MinHitVelocity {
		return feedback.Event{}, false
	}

	c.cooldown.Arm(c.settings.Cooldown)
	return feedback.Event{Kind: feedback.Hit, Intensity: strongest}, true
}

// Tick advances the hit cooldown by dt.
func (c *Classifier) Tick(dt time.Duration) { c.cooldown.Tick(dt) }

// Reset clears the hit cooldown.
func (c *Classifier) Reset() { c.cooldown.Reset() }

func (c *Classifier) CooldownActive() bool             { return c.cooldown.Active() }
func (c *Classifier) CooldownRemaining() time.Duration { return c.cooldown.Remaining() }
