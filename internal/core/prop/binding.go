package prop

import (
	"errors"
	"fmt"

	"github.com/zeusync/grip/internal/core/events/bus"
	"github.com/zeusync/grip/internal/core/impact"
	"github.com/zeusync/grip/internal/core/interaction"
)

// Event types a prop listens to.
const (
	EventGrabBegin = "grab.begin"
	EventGrabEnd   = "grab.end"
	EventContact   = "contact"
	EventActivate  = "activate"
)

// ErrPayload is returned by bound handlers for events carrying the wrong data.
var ErrPayload = errors.New("unexpected event payload")

// Handlers are the narrow entry points of a prop. Anything that delivers
// interaction signals can drive a prop through them.
type Handlers struct {
	GrabBegin func(m interaction.Manipulator)
	GrabEnd   func(m interaction.Manipulator)
	Contact   func(contacts ...impact.Contact)
	Activate  func()
}

func (p *Prop) Handlers() Handlers {
	return Handlers{
		GrabBegin: func(m interaction.Manipulator) { p.OnGrabBegin(m) },
		GrabEnd:   func(m interaction.Manipulator) { p.OnGrabEnd(m) },
		Contact:   func(contacts ...impact.Contact) { p.OnContact(contacts...) },
		Activate:  func() { p.OnActivate() },
	}
}

// Binding is a set of bus subscriptions feeding one prop.
type Binding struct {
	subs []bus.Subscription
}

// Bind subscribes p to the interaction events published on topic. Grab
// events carry an interaction.Manipulator, contact events an impact.Contact
// or a []impact.Contact, activate events nothing.
func Bind(b bus.EventBus, topic string, p *Prop) (*Binding, error) {
	h := p.Handlers()
	routes := []struct {
		eventType string
		handler   bus.EventHandler
	}{
		{EventGrabBegin, grabHandler(h.GrabBegin)},
		{EventGrabEnd, grabHandler(h.GrabEnd)},
		{EventContact, func(e bus.Event) error {
			switch data := e.Data().(type) {
			case impact.Contact:
				h.Contact(data)
			case []impact.Contact:
				h.Contact(data...)
			default:
				return fmt.Errorf("%s: %w: %T", e.Type(), ErrPayload, e.Data())
			}
			return nil
		}},
		{EventActivate, func(bus.Event) error {
			h.Activate()
			return nil
		}},
	}

	binding := &Binding{}
	for _, r := range routes {
		sub, err := b.SubscribeTopic(topic, r.eventType, r.handler)
		if err != nil {
			_ = binding.Close()
			return nil, fmt.Errorf("subscribe %s: %w", r.eventType, err)
		}
		binding.subs = append(binding.subs, sub)
	}
	return binding, nil
}

func grabHandler(fn func(interaction.Manipulator)) bus.EventHandler {
	return func(e bus.Event) error {
		m, ok := e.Data().(interaction.Manipulator)
		if !ok || m == nil {
			return fmt.Errorf("%s: %w: %T", e.Type(), ErrPayload, e.Data())
		}
		fn(m)
		return nil
	}
}

// Close cancels every subscription.
func (b *Binding) Close() error {
	var all error
	for _, s := range b.subs {
		all = errors.Join(all, s.Cancel())
	}
	b.subs = nil
	return all
}
