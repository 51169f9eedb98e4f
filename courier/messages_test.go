package courier

import (
	"context"
	"errors"
	"testing"
)

func TestDispatch_SendsToFirstStep(t *testing.T) {
	capture := newCaptureTransport()
	slip := twoStepSlip()

	if err := Dispatch(context.Background(), capture, slip); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	envs := capture.sentTo("queue:flight-reservations")
	if len(envs) != 1 {
		t.Fatalf("Expected dispatch to the first step, got %d", len(envs))
	}
	if envs[0].MessageType != MessageTypeExecute {
		t.Errorf("Expected %s, got %s", MessageTypeExecute, envs[0].MessageType)
	}

	var msg ExecuteMessage
	if err := envs[0].Bind(&msg); err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}
	if msg.ExecutionID == "" {
		t.Error("Expected an execution id assigned at dispatch")
	}
	if msg.RoutingSlip.TrackingNumber != slip.TrackingNumber {
		t.Errorf("Expected the slip carried in the message, got %s", msg.RoutingSlip.TrackingNumber)
	}
}

func TestDispatch_EmptyItinerary(t *testing.T) {
	capture := newCaptureTransport()
	slip := &RoutingSlip{TrackingNumber: "trip-1"}

	err := Dispatch(context.Background(), capture, slip)
	if !errors.Is(err, ErrEmptyItinerary) {
		t.Errorf("Expected ErrEmptyItinerary, got %v", err)
	}
	if capture.sentCount() != 0 {
		t.Errorf("Expected nothing sent, got %d", capture.sentCount())
	}
}

func TestNewExecutionID_Sortable(t *testing.T) {
	a := NewExecutionID()
	b := NewExecutionID()
	if a == "" || b == "" {
		t.Fatal("Expected non-empty execution ids")
	}
	if a == b {
		t.Error("Expected distinct execution ids")
	}
	if len(a) != 26 {
		t.Errorf("Expected a 26-character ULID, got %d characters", len(a))
	}
}
