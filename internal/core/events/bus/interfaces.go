package bus

import "time"

// EventBus is an in-process pub/sub bus that carries interaction-layer
// signals (grab, release, contact, activation) to props.
//
// - Type-based fan-out: handlers subscribe by Event.Type().
// - Optional topics scope delivery; the default topic is "".
// - Synchronous delivery in subscription order, in the publisher's goroutine.
// - Handler errors are joined and returned from Publish.
// - Metrics are collected only while an observer is registered.
//
// All methods are safe for concurrent use.
type EventBus interface {
	// Publish delivers event to the default topic.
	Publish(event Event) error
	// PublishToTopic delivers event to every active subscriber of its type
	// within topic.
	PublishToTopic(topic string, event Event) error
	// PublishBatch publishes events to topic in order and joins their errors.
	PublishBatch(topic string, events ...Event) error

	// Subscribe registers a handler in the default topic.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// SubscribeTopic registers a handler for eventType within topic.
	SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels sub. Nil is ignored.
	Unsubscribe(sub Subscription) error

	AddObserver(obs Observer)
	RemoveObserver(obs Observer)
	// GetMetrics returns a snapshot of the counters.
	GetMetrics() Metrics
	// GetTopics returns a snapshot of the known topics.
	GetTopics() []TopicInfo
}

// Event is an immutable message. Type is the routing key.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

// EventHandler is invoked once per delivered event.
type EventHandler func(event Event) error

// Subscription is a registered handler.
type Subscription interface {
	ID() string
	Topic() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Repeat calls are safe.
	Cancel() error
}

// Observer is notified about deliveries. Observers should return quickly.
type Observer interface {
	OnPublish(topic, eventType string, event Event)
	OnDelivered(topic, eventType string, handlers int, err error, took time.Duration)
}

type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
	Topics            uint64
}

type TopicInfo struct {
	Name       string
	EventTypes int
	Subs       int
}
