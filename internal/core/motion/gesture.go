package motion

import (
	"fmt"
	"time"

	"github.com/zeusync/grip/internal/core/cooldown"
	"github.com/zeusync/grip/internal/core/feedback"
	"github.com/zeusync/grip/internal/core/systems/physics"
)

// Settings tune slash detection. AngleThreshold is in degrees per tick.
type Settings struct {
	VelocityThreshold float64       `json:"velocity_threshold" yaml:"velocity_threshold"`
	AngleThreshold    float64       `json:"angle_threshold" yaml:"angle_threshold"`
	AccelerationGate  float64       `json:"acceleration_gate" yaml:"acceleration_gate"`
	Cooldown          time.Duration `json:"cooldown" yaml:"cooldown"`
	BufferSize        int           `json:"buffer_size" yaml:"buffer_size"`
}

func DefaultSettings() Settings {
	return Settings{
		VelocityThreshold: 2.0,
		AngleThreshold:    30,
		AccelerationGate:  1.2,
		Cooldown:          300 * time.Millisecond,
		BufferSize:        3,
	}
}

func (s Settings) Validate() error {
	if s.VelocityThreshold <= 0 {
		return fmt.Errorf("velocity_threshold must be positive, got %v", s.VelocityThreshold)
	}
	if s.AngleThreshold < 0 || s.AngleThreshold >= 180 {
		return fmt.Errorf("angle_threshold must be within [0,180), got %v", s.AngleThreshold)
	}
	if s.AccelerationGate < 1 {
		return fmt.Errorf("acceleration_gate must be at least 1, got %v", s.AccelerationGate)
	}
	if s.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative, got %s", s.Cooldown)
	}
	if s.BufferSize <= 0 {
		return fmt.Errorf("buffer_size must be positive, got %d", s.BufferSize)
	}
	return nil
}

// Reading is what the classifier saw on its last observed tick.
type Reading struct {
	Smoothed  physics.Vec3
	Speed     float64
	PrevSpeed float64
	Angle     float64
	Tick      uint64
	Slash     bool
	Cooldown  time.Duration
}

// Classifier detects the onset of a swing. A slash needs every gate at once:
// smoothed speed over the threshold, a per-tick rotation over the angle
// threshold, speed rising by the acceleration gate since the previous tick,
// and no slash cooldown running.
type Classifier struct {
	settings  Settings
	buffer    *Buffer
	cooldown  cooldown.Timer
	reference physics.Quat
	prevSpeed float64
	last      Reading
}

func NewClassifier(settings Settings) *Classifier {
	return &Classifier{
		settings:  settings,
		buffer:    NewBuffer(settings.BufferSize),
		reference: physics.Identity,
	}
}

// Observe feeds one tick of motion and reports whether it completed a slash.
func (c *Classifier) Observe(velocity physics.Vec3, rotation physics.Quat, tick uint64) (feedback.Event, bool) {
	c.buffer.Push(Sample{Velocity: velocity, Tick: tick})

	smoothed := c.buffer.Mean()
	speed := physics.Magnitude(smoothed)
	angle := physics.AngleBetween(c.reference, rotation)

	fast := speed > c.settings.VelocityThreshold
	wide := angle > c.settings.AngleThreshold
	accelerating := speed > c.prevSpeed*c.settings.AccelerationGate
	slash := fast && wide && accelerating && !c.cooldown.Active()

	if slash {
		c.cooldown.Arm(c.settings.Cooldown)
	}

	c.last = Reading{
		Smoothed:  smoothed,
		Speed:     speed,
		PrevSpeed: c.prevSpeed,
		Angle:     angle,
		Tick:      tick,
		Slash:     slash,
		Cooldown:  c.cooldown.Remaining(),
	}
	c.reference = rotation
	c.prevSpeed = speed

	if !slash {
		return feedback.Event{}, false
	}
	return feedback.Event{Kind: feedback.Slash, Intensity: speed}, true
}

// Tick advances the slash cooldown by dt.
func (c *Classifier) Tick(dt time.Duration) { c.cooldown.Tick(dt) }

// Rebaseline discards motion history: the buffer goes back to zero, the
// cooldown is cleared and rotation becomes the new reference pose.
func (c *Classifier) Rebaseline(rotation physics.Quat, tick uint64) {
	c.buffer.Reset()
	c.cooldown.Reset()
	c.reference = rotation
	c.prevSpeed = 0
	c.last = Reading{Tick: tick}
}

func (c *Classifier) CooldownActive() bool    { return c.cooldown.Active() }
func (c *Classifier) Buffer() *Buffer         { return c.buffer }
func (c *Classifier) LastReading() Reading    { return c.last }
func (c *Classifier) Settings() Settings      { return c.settings }
func (c *Classifier) Reference() physics.Quat { return c.reference }
