package prop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/grip/internal/core/events/bus"
	"github.com/zeusync/grip/internal/core/feedback"
	"github.com/zeusync/grip/internal/core/impact"
	"github.com/zeusync/grip/internal/core/systems/physics"
	"github.com/zeusync/grip/internal/core/throw"
)

func TestBindRoutesInteractionEvents(t *testing.T) {
	f := newFixture(t)
	b := bus.New()
	binding, err := Bind(b, "katana", f.prop)
	require.NoError(t, err)

	require.NoError(t, b.PublishToTopic("katana", bus.NewEvent(EventGrabBegin, "xr", f.left)))
	require.NoError(t, b.PublishToTopic("katana", bus.NewEvent(EventGrabBegin, "xr", f.right)))
	assert.True(t, f.prop.IsTwoHanded())

	// other topics do not reach this prop
	require.NoError(t, b.PublishToTopic("orb", bus.NewEvent(EventGrabEnd, "xr", f.left)))
	assert.True(t, f.prop.IsTwoHanded())

	contacts := []impact.Contact{
		{RelativeVelocity: physics.Vec3{X: 0.5}},
		{RelativeVelocity: physics.Vec3{X: 2}},
	}
	require.NoError(t, b.PublishToTopic("katana", bus.NewEvent(EventContact, "physics", contacts)))
	assert.Equal(t, 1, f.sink.count(feedback.Hit))

	require.NoError(t, b.PublishToTopic("katana", bus.NewEvent(EventActivate, "input", nil)))
	assert.Equal(t, throw.Armed, f.prop.ThrowState())

	require.NoError(t, binding.Close())
	require.NoError(t, b.PublishToTopic("katana", bus.NewEvent(EventGrabEnd, "xr", f.left)))
	assert.True(t, f.prop.Ownership().IsHeld())
}

func TestBindRejectsMalformedPayloads(t *testing.T) {
	f := newFixture(t)
	b := bus.New()
	_, err := Bind(b, "", f.prop)
	require.NoError(t, err)

	assert.ErrorIs(t, b.Publish(bus.NewEvent(EventGrabBegin, "xr", "left")), ErrPayload)
	assert.ErrorIs(t, b.Publish(bus.NewEvent(EventContact, "physics", 3.0)), ErrPayload)

	// a single contact is accepted as well as a batch
	require.NoError(t, b.Publish(bus.NewEvent(EventContact, "physics", impact.Contact{RelativeVelocity: physics.Vec3{Z: 4}})))
	assert.EqualValues(t, 1, f.prop.Stats().Hits)
}
