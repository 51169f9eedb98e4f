package courier

import (
	"context"

	"github.com/krew-solutions/courier-go/courier/transport"
)

// Message type names for routing slip transport.
const (
	MessageTypeExecute    = "ExecuteRoutingSlip"
	MessageTypeCompensate = "CompensateRoutingSlip"
)

// ExecuteMessage carries a routing slip to the execution endpoint of its
// next activity. The execution id is assigned at dispatch time, so a
// redelivered message carries the same id and the hop applies once.
type ExecuteMessage struct {
	ExecutionID string       `json:"executionId"`
	RoutingSlip *RoutingSlip `json:"routingSlip"`
}

// CompensateMessage carries a routing slip to the compensation endpoint of
// its most recent activity log entry.
type CompensateMessage struct {
	RoutingSlip *RoutingSlip `json:"routingSlip"`
}

// Dispatch sends a freshly built routing slip to its first activity's
// execution endpoint. Once dispatched, the caller observes outcomes only
// through whichever events it subscribed to.
func Dispatch(ctx context.Context, sender transport.Sender, slip *RoutingSlip) error {
	step, ok := slip.NextActivity()
	if !ok {
		return ErrEmptyItinerary
	}
	return sendExecute(ctx, sender, step.Address, &ExecuteMessage{
		ExecutionID: NewExecutionID(),
		RoutingSlip: slip,
	})
}

func sendExecute(ctx context.Context, sender transport.Sender, address string, msg *ExecuteMessage) error {
	env, err := transport.NewEnvelope(MessageTypeExecute, msg)
	if err != nil {
		return err
	}
	return sender.Send(ctx, address, env)
}

func sendCompensate(ctx context.Context, sender transport.Sender, address string, msg *CompensateMessage) error {
	env, err := transport.NewEnvelope(MessageTypeCompensate, msg)
	if err != nil {
		return err
	}
	return sender.Send(ctx, address, env)
}
