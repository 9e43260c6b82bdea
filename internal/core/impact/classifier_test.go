package impact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/grip/internal/core/feedback"
	"github.com/zeusync/grip/internal/core/systems/physics"
)

func contact(speed float64) Contact {
	return Contact{RelativeVelocity: physics.Vec3{X: speed}}
}

func TestHitThenCooldown(t *testing.T) {
	c := NewClassifier(DefaultSettings())

	ev, ok := c.OnContacts(contact(1.5))
	require.True(t, ok)
	assert.Equal(t, feedback.Event{Kind: feedback.Hit, Intensity: 1.5}, ev)

	_, ok = c.OnContacts(contact(5))
	assert.False(t, ok, "second contact inside the cooldown window")

	c.Tick(50 * time.Millisecond)
	_, ok = c.OnContacts(contact(5))
	assert.False(t, ok)

	c.Tick(50 * time.Millisecond)
	_, ok = c.OnContacts(contact(5))
	assert.True(t, ok)
}

func TestWeakContactIgnored(t *testing.T) {
	c := NewClassifier(DefaultSettings())
	_, ok := c.OnContacts(contact(1.0))
	assert.False(t, ok, "threshold is strict")
	assert.False(t, c.CooldownActive())

	_, ok = c.OnContacts()
	assert.False(t, ok)
}

func TestSimultaneousContactsUseStrongest(t *testing.T) {
	c := NewClassifier(DefaultSettings())
	ev, ok := c.OnContacts(contact(0.5), contact(3), contact(2))
	require.True(t, ok)
	assert.Equal(t, 3.0, ev.Intensity)
	assert.Equal(t, 100*time.Millisecond, c.CooldownRemaining())
}

func TestReset(t *testing.T) {
	c := NewClassifier(DefaultSettings())
	c.OnContacts(contact(2))
	c.Reset()
	_, ok := c.OnContacts(contact(2))
	assert.True(t, ok)
}
