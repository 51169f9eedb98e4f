package courier

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/krew-solutions/courier-go/courier/dedup"
	"github.com/krew-solutions/courier-go/courier/transport"
)

func TestActivityHost_ProcessesSlip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	broker := transport.NewMemoryBroker(transport.MemoryConfig{})
	defer broker.Close()

	completed := broker.Receive(ctx, MessageTypeCompleted)

	reg := Registration{
		Name:           "Step",
		ExecuteAddress: "queue:step",
		NewExecute: stubExecute(func(ctx context.Context, ec *ExecuteContext) ExecutionResult {
			return ec.Completed()
		}),
	}
	host := NewActivityHost(reg, HostConfig{
		Broker: broker,
		Dedup:  dedup.NewMemory(time.Minute),
		Host:   NewHostInfo(),
	})
	go func() {
		_ = host.Run(ctx)
	}()
	time.Sleep(50 * time.Millisecond)

	b := NewBuilder()
	if err := b.AddActivity("Step", "queue:step", nil); err != nil {
		t.Fatalf("AddActivity returned error: %v", err)
	}
	slip, err := b.Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if err := Dispatch(ctx, broker, slip); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	select {
	case env := <-completed:
		var event CompletedEvent
		if err := env.Bind(&event); err != nil {
			t.Fatalf("Bind returned error: %v", err)
		}
		if event.TrackingNumber != slip.TrackingNumber {
			t.Errorf("Expected %s, got %s", slip.TrackingNumber, event.TrackingNumber)
		}
	case <-ctx.Done():
		t.Fatal("Timed out waiting for completion")
	}
}

func TestActivityHost_SurvivesMalformedMessage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	broker := transport.NewMemoryBroker(transport.MemoryConfig{})
	defer broker.Close()

	completed := broker.Receive(ctx, MessageTypeCompleted)

	reg := Registration{
		Name:           "Step",
		ExecuteAddress: "queue:step",
		NewExecute: stubExecute(func(ctx context.Context, ec *ExecuteContext) ExecutionResult {
			return ec.Completed()
		}),
	}
	host := NewActivityHost(reg, HostConfig{Broker: broker, Host: NewHostInfo()})
	go func() {
		_ = host.Run(ctx)
	}()
	time.Sleep(50 * time.Millisecond)

	// A payload that does not bind must be dropped, not kill the host.
	garbage := &transport.Envelope{
		MessageID:   "bad-1",
		MessageType: MessageTypeExecute,
		Timestamp:   time.Now().UTC(),
		Payload:     json.RawMessage(`"not a routing slip"`),
	}
	if err := broker.Send(ctx, "queue:step", garbage); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	b := NewBuilder()
	if err := b.AddActivity("Step", "queue:step", nil); err != nil {
		t.Fatalf("AddActivity returned error: %v", err)
	}
	slip, err := b.Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if err := Dispatch(ctx, broker, slip); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	select {
	case <-completed:
	case <-ctx.Done():
		t.Fatal("Expected the host to keep processing after a malformed message")
	}
}
