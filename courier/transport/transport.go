// Package transport defines the narrow messaging interfaces the courier
// engine consumes, together with an in-memory broker suitable for tests,
// examples, and single-process deployments.
//
// The engine only ever needs two delivery primitives: Send (addressed,
// point-to-point) and Publish (broadcast by message type). Broker adapters
// for real infrastructure implement the same interfaces.
package transport

import (
	"context"
)

// Sender delivers an envelope to a specific address.
// Delivery is at-least-once; the caller must tolerate duplicates.
type Sender interface {
	Send(ctx context.Context, address string, env *Envelope) error
}

// Publisher broadcasts an envelope to all interested consumers.
// Routing is by message type rather than by address.
type Publisher interface {
	Publish(ctx context.Context, env *Envelope) error
}

// Receiver consumes envelopes delivered to an address.
type Receiver interface {
	// Receive returns a channel emitting envelopes sent to the address.
	// The channel is closed when the context is canceled or the broker
	// shuts down.
	Receive(ctx context.Context, address string) <-chan *Envelope
}

// Broker combines the send, publish, and receive capabilities.
type Broker interface {
	Sender
	Publisher
	Receiver
	// Close gracefully shuts down the broker.
	Close() error
}
