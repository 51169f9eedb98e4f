package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Envelope is the wire form of every message the engine sends or publishes.
// The payload is kept as raw JSON so the transport never needs to know the
// concrete message types flowing through it.
type Envelope struct {
	MessageID   string          `json:"messageId"`
	MessageType string          `json:"messageType"`
	Timestamp   time.Time       `json:"timestamp"`
	Payload     json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a payload in an envelope with a fresh message id.
func NewEnvelope(messageType string, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %s payload", messageType)
	}
	return &Envelope{
		MessageID:   uuid.NewString(),
		MessageType: messageType,
		Timestamp:   time.Now().UTC(),
		Payload:     data,
	}, nil
}

// Bind unmarshals the envelope payload into v.
func (e *Envelope) Bind(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return errors.Wrapf(err, "unmarshal %s payload", e.MessageType)
	}
	return nil
}
