// Package cloudevents bridges courier envelopes to CloudEvents, for
// subscribers that live outside the messaging framework.
package cloudevents

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/pkg/errors"

	"github.com/krew-solutions/courier-go/courier/transport"
)

// Sink receives converted CloudEvents, e.g. a cloudevents client Send.
type Sink func(ctx context.Context, e event.Event) error

// Publisher adapts a CloudEvents sink to the transport.Publisher interface
// so routing slip events can be broadcast as CloudEvents.
type Publisher struct {
	source string
	sink   Sink
}

// NewPublisher creates a publisher that stamps events with the given
// source URI.
func NewPublisher(source string, sink Sink) *Publisher {
	return &Publisher{source: source, sink: sink}
}

// Publish converts the envelope and hands it to the sink.
func (p *Publisher) Publish(ctx context.Context, env *transport.Envelope) error {
	e, err := ToCloudEvent(env, p.source)
	if err != nil {
		return err
	}
	return p.sink(ctx, *e)
}

// ToCloudEvent converts an envelope into a CloudEvent. The envelope
// payload becomes the event data verbatim.
func ToCloudEvent(env *transport.Envelope, source string) (*event.Event, error) {
	if env == nil {
		return nil, errors.New("cloudevents: nil envelope")
	}

	e := cloudevents.NewEvent()
	e.SetID(env.MessageID)
	e.SetType(env.MessageType)
	e.SetSource(source)
	if !env.Timestamp.IsZero() {
		e.SetTime(env.Timestamp.UTC())
	}
	if err := e.SetData(cloudevents.ApplicationJSON, []byte(env.Payload)); err != nil {
		return nil, errors.Wrap(err, "cloudevents: set data")
	}
	return &e, nil
}

// FromCloudEvent converts a CloudEvent back into an envelope.
func FromCloudEvent(e *event.Event) (*transport.Envelope, error) {
	if e == nil {
		return nil, errors.New("cloudevents: nil event")
	}

	ts := e.Time()
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	return &transport.Envelope{
		MessageID:   e.ID(),
		MessageType: e.Type(),
		Timestamp:   ts,
		Payload:     append([]byte(nil), e.Data()...),
	}, nil
}
