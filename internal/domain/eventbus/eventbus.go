// Package eventbus carries state-change notifications from the storefront
// managers to whoever renders them. Buses are constructed and injected, not
// reached through a global.
package eventbus

import (
	evbus "github.com/asaskevich/EventBus"
)

// Topics published by the storefront core.
const (
	TopicSessionChanged    = "session.changed"
	TopicCartChanged       = "cart.changed"
	TopicCheckoutCompleted = "checkout.completed"
)

// Bus wraps the underlying event bus. A nil *Bus is valid and drops all
// publishes, so managers can run without subscribers wired.
type Bus struct {
	bus evbus.Bus
}

func New() *Bus {
	return &Bus{bus: evbus.New()}
}

// Publish delivers an event synchronously to all subscribers of the topic.
func (b *Bus) Publish(topic string, args ...interface{}) {
	if b == nil {
		return
	}
	b.bus.Publish(topic, args...)
}

// Subscribe registers fn for the topic. fn must be a function whose
// signature matches the published arguments.
func (b *Bus) Subscribe(topic string, fn interface{}) error {
	if b == nil {
		return nil
	}
	return b.bus.Subscribe(topic, fn)
}

// SubscribeAsync registers fn to run on its own goroutine per event.
func (b *Bus) SubscribeAsync(topic string, fn interface{}) error {
	if b == nil {
		return nil
	}
	return b.bus.SubscribeAsync(topic, fn, false)
}

// Unsubscribe removes a previously registered handler.
func (b *Bus) Unsubscribe(topic string, fn interface{}) error {
	if b == nil {
		return nil
	}
	return b.bus.Unsubscribe(topic, fn)
}

// WaitAsync blocks until all async handlers have finished.
func (b *Bus) WaitAsync() {
	if b == nil {
		return
	}
	b.bus.WaitAsync()
}
