// Package pubsub fans typed events out from the navigation core to UI
// consumers without blocking the publisher.
package pubsub

import (
	"context"
	"time"
)

// EventType names the kind of event. Producers define their own values.
type EventType string

// Event wraps a payload with its type and publish time.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher publishes events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
