package courier

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/krew-solutions/courier-go/courier/dedup"
	"github.com/krew-solutions/courier-go/courier/transport"
)

// CompensatorConfig configures a routing slip compensator for one activity.
type CompensatorConfig struct {
	// ActivityName is the activity whose log entries this compensator
	// can undo.
	ActivityName string

	Sender    transport.Sender
	Publisher transport.Publisher

	// Dedup, when set, makes redelivered compensation hops idempotent.
	Dedup dedup.Store

	Host   HostInfo
	Logger Logger
}

// Compensator is the backward state machine. It walks the activity log in
// strict reverse insertion order, one entry per hop: undo the most recent
// completed activity, then dispatch the slip to the next older entry's
// compensation address. A failed compensation halts the walk permanently;
// the remaining entries are left as a reported inconsistency.
type Compensator struct {
	newActivity func() CompensateActivity
	config      CompensatorConfig
	logger      Logger
}

// NewCompensator creates a compensator. A fresh activity instance is
// created for every hop.
func NewCompensator(newActivity func() CompensateActivity, config CompensatorConfig) *Compensator {
	logger := config.Logger
	if logger == nil {
		logger = defaultLogger()
	}
	return &Compensator{
		newActivity: newActivity,
		config:      config,
		logger:      logger,
	}
}

// Compensate processes one backward hop of the routing slip.
func (c *Compensator) Compensate(ctx context.Context, msg *CompensateMessage) error {
	slip := msg.RoutingSlip

	next := slip.clone()
	// Entries recorded without a compensation address have nothing to
	// undo; drop them from the tail of the walk.
	for len(next.ActivityLogs) > 0 && next.ActivityLogs[len(next.ActivityLogs)-1].Address == "" {
		next.ActivityLogs = next.ActivityLogs[:len(next.ActivityLogs)-1]
	}
	if len(next.ActivityLogs) == 0 {
		// Fully compensated.
		return nil
	}

	entry := next.ActivityLogs[len(next.ActivityLogs)-1]
	if !strings.EqualFold(entry.Name, c.config.ActivityName) {
		return errors.Wrapf(ErrUnknownActivity, "expected %s, log entry names %s", c.config.ActivityName, entry.Name)
	}

	dedupKey := "compensate:" + entry.ExecutionID
	if c.config.Dedup != nil {
		seen, err := c.config.Dedup.Seen(ctx, dedupKey)
		if err != nil {
			return errors.Wrap(err, "dedup lookup")
		}
		if seen {
			c.logger.Debug("skipping redelivered compensation",
				"trackingNumber", slip.TrackingNumber,
				"activity", entry.Name,
				"executionId", entry.ExecutionID)
			return nil
		}
	}

	pub := NewEventPublisher(slip, EventPublisherConfig{
		Sender:       c.config.Sender,
		Publisher:    c.config.Publisher,
		ActivityName: entry.Name,
		Host:         c.config.Host,
		Logger:       c.logger,
	})

	cc := newCompensateContext(slip.TrackingNumber, entry.Name, entry.ExecutionID, entry.Data)

	started := time.Now().UTC()
	result := c.invoke(ctx, cc)
	duration := time.Since(started)

	switch r := result.(type) {
	case *compensatedResult:
		next.ActivityLogs = next.ActivityLogs[:len(next.ActivityLogs)-1]

		c.publishOrLog(pub.PublishActivityCompensated(ctx, entry.Name, entry.ExecutionID, started, duration, slip.Variables, entry.Data))

		if older, ok := nextCompensableLog(next.ActivityLogs); ok {
			if err := sendCompensate(ctx, c.config.Sender, older.Address, &CompensateMessage{RoutingSlip: next}); err != nil {
				return errors.Wrapf(err, "dispatch compensation of %s to %s", older.Name, older.Address)
			}
		}

		if c.config.Dedup != nil {
			return errors.Wrap(c.config.Dedup.MarkProcessed(ctx, dedupKey), "dedup mark")
		}
		return nil

	case *compensationFailedResult:
		exception := newExceptionInfo(r.err)
		c.publishOrLog(pub.PublishCompensationFailed(ctx,
			entry.Name, entry.ExecutionID,
			started, duration,
			time.Now().UTC(), time.Since(slip.CreateTimestamp),
			exception, slip.Variables, entry.Data))

		// The walk halts here; no retry is attempted by the engine.
		return nil

	default:
		return errors.Errorf("courier: unexpected compensation result %T", result)
	}
}

// invoke runs the compensator with panic recovery. A recovered panic is a
// compensation failure.
func (c *Compensator) invoke(ctx context.Context, cc *CompensateContext) (result CompensationResult) {
	defer func() {
		if r := recover(); r != nil {
			result = &compensationFailedResult{err: &RecoveryError{
				PanicValue: r,
				StackTrace: string(debug.Stack()),
			}}
		}
	}()
	result = c.newActivity().Compensate(ctx, cc)
	if result == nil {
		result = &compensationFailedResult{err: ErrNoCompensationResult}
	}
	return result
}

func (c *Compensator) publishOrLog(err error) {
	if err != nil {
		c.logger.Error("event publication failed", "error", err)
	}
}
