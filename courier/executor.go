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

// ExecutorConfig configures a routing slip executor for one activity.
type ExecutorConfig struct {
	// ActivityName is the activity this executor serves. A slip whose
	// next step names a different activity is rejected.
	ActivityName string

	// CompensateAddress is recorded into the activity log so the
	// compensator can be reached later. Empty when the activity has no
	// compensation; such log entries are skipped during compensation.
	CompensateAddress string

	Sender    transport.Sender
	Publisher transport.Publisher

	// Dedup, when set, makes redelivered hops idempotent by execution id.
	Dedup dedup.Store

	Host   HostInfo
	Logger Logger
}

// Executor is the forward state machine. Each received slip is one hop:
// pop the next itinerary step, run the activity, interpret its result, and
// either dispatch the slip onward, terminate, or start compensation. The
// executor holds no state between hops; the slip is the state.
type Executor struct {
	newActivity func() ExecuteActivity
	config      ExecutorConfig
	logger      Logger
}

// NewExecutor creates an executor. A fresh activity instance is created
// for every hop.
func NewExecutor(newActivity func() ExecuteActivity, config ExecutorConfig) *Executor {
	logger := config.Logger
	if logger == nil {
		logger = defaultLogger()
	}
	return &Executor{
		newActivity: newActivity,
		config:      config,
		logger:      logger,
	}
}

// Execute processes one forward hop of the routing slip.
func (e *Executor) Execute(ctx context.Context, msg *ExecuteMessage) error {
	slip := msg.RoutingSlip
	executionID := msg.ExecutionID
	if executionID == "" {
		executionID = NewExecutionID()
	}

	step, ok := slip.NextActivity()
	if !ok {
		pub := e.eventPublisher(slip, "")
		e.publishOrLog(pub.PublishCompleted(ctx, time.Now().UTC(), time.Since(slip.CreateTimestamp), slip.Variables))
		return nil
	}

	if !strings.EqualFold(step.Name, e.config.ActivityName) {
		return errors.Wrapf(ErrUnknownActivity, "expected %s, slip names %s", e.config.ActivityName, step.Name)
	}

	if e.config.Dedup != nil {
		seen, err := e.config.Dedup.Seen(ctx, executionID)
		if err != nil {
			return errors.Wrap(err, "dedup lookup")
		}
		if seen {
			e.logger.Debug("skipping redelivered hop",
				"trackingNumber", slip.TrackingNumber,
				"activity", step.Name,
				"executionId", executionID)
			return nil
		}
	}

	pub := e.eventPublisher(slip, step.Name)
	arguments := mergeArguments(slip.Variables, step.Arguments)
	ec := newExecuteContext(slip.TrackingNumber, step.Name, executionID, arguments)

	started := time.Now().UTC()
	result := e.invoke(ctx, ec)
	duration := time.Since(started)

	switch r := result.(type) {
	case *completedResult:
		return e.completed(ctx, pub, slip, step, executionID, started, duration, arguments, r)
	case *faultedResult:
		return e.faulted(ctx, pub, slip, step, executionID, started, duration, arguments, r.err)
	case *terminatedResult:
		return e.terminated(ctx, pub, slip, step, executionID, started, duration, r)
	case *revisedResult:
		return e.revised(ctx, pub, slip, step, executionID, started, duration, arguments, r)
	default:
		return e.faulted(ctx, pub, slip, step, executionID, started, duration, arguments, ErrNoExecutionResult)
	}
}

// invoke runs the activity with panic recovery. A recovered panic becomes
// a fault result, indistinguishable from a returned fault in the engine's
// transition logic.
func (e *Executor) invoke(ctx context.Context, ec *ExecuteContext) (result ExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = &faultedResult{err: &RecoveryError{
				PanicValue: r,
				StackTrace: string(debug.Stack()),
			}}
		}
	}()
	result = e.newActivity().Execute(ctx, ec)
	if result == nil {
		result = &faultedResult{err: ErrNoExecutionResult}
	}
	return result
}

func (e *Executor) completed(ctx context.Context, pub *EventPublisher, slip *RoutingSlip, step Activity, executionID string, started time.Time, duration time.Duration, arguments map[string]any, r *completedResult) error {
	data := r.data
	if data == nil {
		data = map[string]any{}
	}

	next := slip.clone()
	next.Itinerary = next.Itinerary[1:]
	next.ActivityLogs = append(next.ActivityLogs, ActivityLog{
		Name:        step.Name,
		ExecutionID: executionID,
		Address:     e.config.CompensateAddress,
		Timestamp:   started,
		Duration:    duration,
		Data:        data,
	})
	next.mergeVariables(r.variables)

	e.publishOrLog(pub.PublishActivityCompleted(ctx, step.Name, executionID, started, duration, next.Variables, arguments, data))

	if nextStep, ok := next.NextActivity(); ok {
		if err := sendExecute(ctx, e.config.Sender, nextStep.Address, &ExecuteMessage{
			ExecutionID: NewExecutionID(),
			RoutingSlip: next,
		}); err != nil {
			return errors.Wrapf(err, "dispatch %s to %s", nextStep.Name, nextStep.Address)
		}
	} else {
		e.publishOrLog(pub.PublishCompleted(ctx, time.Now().UTC(), time.Since(slip.CreateTimestamp), next.Variables))
	}

	return e.markProcessed(ctx, executionID)
}

func (e *Executor) faulted(ctx context.Context, pub *EventPublisher, slip *RoutingSlip, step Activity, executionID string, started time.Time, duration time.Duration, arguments map[string]any, cause error) error {
	exception := newExceptionInfo(cause)

	e.publishOrLog(pub.PublishActivityFaulted(ctx, step.Name, executionID, started, duration, exception, slip.Variables, arguments))
	e.publishOrLog(pub.PublishFaulted(ctx, time.Now().UTC(), time.Since(slip.CreateTimestamp), slip.Variables, exception))

	entry, ok := nextCompensableLog(slip.ActivityLogs)
	if !ok {
		// Nothing completed so far; the fault is fully reported.
		return nil
	}
	if err := sendCompensate(ctx, e.config.Sender, entry.Address, &CompensateMessage{RoutingSlip: slip}); err != nil {
		return errors.Wrapf(err, "dispatch compensation of %s to %s", entry.Name, entry.Address)
	}
	return nil
}

func (e *Executor) terminated(ctx context.Context, pub *EventPublisher, slip *RoutingSlip, step Activity, executionID string, started time.Time, duration time.Duration, r *terminatedResult) error {
	discarded := append([]Activity(nil), slip.Itinerary[1:]...)

	variables := cloneMap(slip.Variables)
	if variables == nil {
		variables = map[string]any{}
	}
	for k, v := range r.variables {
		variables[k] = v
	}

	e.publishOrLog(pub.PublishTerminated(ctx, step.Name, executionID, started, duration, variables, discarded))
	return e.markProcessed(ctx, executionID)
}

func (e *Executor) revised(ctx context.Context, pub *EventPublisher, slip *RoutingSlip, step Activity, executionID string, started time.Time, duration time.Duration, arguments map[string]any, r *revisedResult) error {
	for _, revisedStep := range r.itinerary {
		if err := validateActivity(revisedStep.Name, revisedStep.Address, revisedStep.Arguments); err != nil {
			// An invalid revision is never silently dropped; it faults
			// the slip like any other activity failure.
			return e.faulted(ctx, pub, slip, step, executionID, started, duration, arguments, err)
		}
	}

	next := slip.clone()
	next.Itinerary = next.Itinerary[1:]
	if r.data != nil {
		next.ActivityLogs = append(next.ActivityLogs, ActivityLog{
			Name:        step.Name,
			ExecutionID: executionID,
			Address:     e.config.CompensateAddress,
			Timestamp:   started,
			Duration:    duration,
			Data:        r.data,
		})
	}
	next.mergeVariables(r.variables)

	previous := next.Itinerary
	next.Itinerary = append([]Activity(nil), r.itinerary...)

	e.publishOrLog(pub.PublishRevised(ctx, step.Name, executionID, started, duration, next.Variables, next.Itinerary, previous))

	if nextStep, ok := next.NextActivity(); ok {
		if err := sendExecute(ctx, e.config.Sender, nextStep.Address, &ExecuteMessage{
			ExecutionID: NewExecutionID(),
			RoutingSlip: next,
		}); err != nil {
			return errors.Wrapf(err, "dispatch %s to %s", nextStep.Name, nextStep.Address)
		}
	} else {
		e.publishOrLog(pub.PublishCompleted(ctx, time.Now().UTC(), time.Since(slip.CreateTimestamp), next.Variables))
	}

	return e.markProcessed(ctx, executionID)
}

func (e *Executor) eventPublisher(slip *RoutingSlip, activityName string) *EventPublisher {
	return NewEventPublisher(slip, EventPublisherConfig{
		Sender:       e.config.Sender,
		Publisher:    e.config.Publisher,
		ActivityName: activityName,
		Host:         e.config.Host,
		Logger:       e.logger,
	})
}

func (e *Executor) markProcessed(ctx context.Context, executionID string) error {
	if e.config.Dedup == nil {
		return nil
	}
	return errors.Wrap(e.config.Dedup.MarkProcessed(ctx, executionID), "dedup mark")
}

// publishOrLog keeps event delivery failures from failing the hop; a slip
// never retries because a subscriber was unreachable.
func (e *Executor) publishOrLog(err error) {
	if err != nil {
		e.logger.Error("event publication failed", "error", err)
	}
}

// nextCompensableLog returns the most recent log entry that has a
// compensation address, skipping entries recorded without one.
func nextCompensableLog(logs []ActivityLog) (ActivityLog, bool) {
	for i := len(logs) - 1; i >= 0; i-- {
		if logs[i].Address != "" {
			return logs[i], true
		}
	}
	return ActivityLog{}, false
}
