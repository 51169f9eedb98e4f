package courier

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewTrackingNumber generates a globally unique tracking number.
func NewTrackingNumber() string {
	return uuid.NewString()
}

// NewExecutionID generates an identifier for a single execution attempt.
// ULIDs are used so execution ids sort by attempt time.
func NewExecutionID() string {
	return ulid.Make().String()
}
