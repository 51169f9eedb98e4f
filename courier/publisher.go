package courier

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/krew-solutions/courier-go/courier/transport"
)

// EventPublisher translates lifecycle transitions into typed events and
// fans them out: every matching subscription receives a copy redacted to
// its Include mask, then a default broadcast with full content goes out
// when no subscription exists or every subscription is supplemental.
//
// Deliveries to subscribers run concurrently; a failed delivery never
// blocks the others. All failures are aggregated into the returned error.
type EventPublisher struct {
	slip         *RoutingSlip
	sender       transport.Sender
	publisher    transport.Publisher
	activityName string
	host         HostInfo
	logger       Logger
}

// EventPublisherConfig configures an EventPublisher.
type EventPublisherConfig struct {
	Sender    transport.Sender
	Publisher transport.Publisher
	// ActivityName is the currently executing activity, used for
	// subscription filtering. Empty outside an activity scope.
	ActivityName string
	Host         HostInfo
	Logger       Logger
}

// NewEventPublisher creates a publisher scoped to one routing slip.
func NewEventPublisher(slip *RoutingSlip, cfg EventPublisherConfig) *EventPublisher {
	logger := cfg.Logger
	if logger == nil {
		logger = defaultLogger()
	}
	return &EventPublisher{
		slip:         slip,
		sender:       cfg.Sender,
		publisher:    cfg.Publisher,
		activityName: cfg.ActivityName,
		host:         cfg.Host,
		logger:       logger,
	}
}

// PublishCompleted reports that the slip finished its itinerary.
func (p *EventPublisher) PublishCompleted(ctx context.Context, timestamp time.Time, duration time.Duration, variables map[string]any) error {
	return p.publishEvent(ctx, EventCompleted, MessageTypeCompleted, func(contents Contents) any {
		return &CompletedEvent{
			TrackingNumber: p.slip.TrackingNumber,
			Timestamp:      timestamp,
			Duration:       duration,
			Variables:      redactMap(contents, ContentVariables, variables),
		}
	})
}

// PublishFaulted reports that the slip faulted.
func (p *EventPublisher) PublishFaulted(ctx context.Context, timestamp time.Time, duration time.Duration, variables map[string]any, exceptions ...ExceptionInfo) error {
	return p.publishEvent(ctx, EventFaulted, MessageTypeFaulted, func(contents Contents) any {
		return &FaultedEvent{
			TrackingNumber: p.slip.TrackingNumber,
			Timestamp:      timestamp,
			Duration:       duration,
			Exceptions:     exceptions,
			Variables:      redactMap(contents, ContentVariables, variables),
		}
	})
}

// PublishActivityCompleted reports one successful forward execution.
func (p *EventPublisher) PublishActivityCompleted(ctx context.Context, activityName, executionID string, timestamp time.Time, duration time.Duration, variables, arguments, data map[string]any) error {
	return p.publishEvent(ctx, EventActivityCompleted, MessageTypeActivityCompleted, func(contents Contents) any {
		return &ActivityCompletedEvent{
			Host:           p.host,
			TrackingNumber: p.slip.TrackingNumber,
			ActivityName:   activityName,
			ExecutionID:    executionID,
			Timestamp:      timestamp,
			Duration:       duration,
			Variables:      redactMap(contents, ContentVariables, variables),
			Arguments:      redactMap(contents, ContentArguments, arguments),
			Data:           redactMap(contents, ContentData, data),
		}
	})
}

// PublishActivityFaulted reports the activity that faulted.
func (p *EventPublisher) PublishActivityFaulted(ctx context.Context, activityName, executionID string, timestamp time.Time, duration time.Duration, exception ExceptionInfo, variables, arguments map[string]any) error {
	return p.publishEvent(ctx, EventActivityFaulted, MessageTypeActivityFaulted, func(contents Contents) any {
		return &ActivityFaultedEvent{
			Host:           p.host,
			TrackingNumber: p.slip.TrackingNumber,
			ActivityName:   activityName,
			ExecutionID:    executionID,
			Timestamp:      timestamp,
			Duration:       duration,
			Exception:      exception,
			Variables:      redactMap(contents, ContentVariables, variables),
			Arguments:      redactMap(contents, ContentArguments, arguments),
		}
	})
}

// PublishActivityCompensated reports one successful compensation.
func (p *EventPublisher) PublishActivityCompensated(ctx context.Context, activityName, executionID string, timestamp time.Time, duration time.Duration, variables, data map[string]any) error {
	return p.publishEvent(ctx, EventActivityCompensated, MessageTypeActivityCompensated, func(contents Contents) any {
		return &ActivityCompensatedEvent{
			Host:           p.host,
			TrackingNumber: p.slip.TrackingNumber,
			ActivityName:   activityName,
			ExecutionID:    executionID,
			Timestamp:      timestamp,
			Duration:       duration,
			Variables:      redactMap(contents, ContentVariables, variables),
			Data:           redactMap(contents, ContentData, data),
		}
	})
}

// PublishRevised reports a mid-flight itinerary replacement.
func (p *EventPublisher) PublishRevised(ctx context.Context, activityName, executionID string, timestamp time.Time, duration time.Duration, variables map[string]any, itinerary, previousItinerary []Activity) error {
	return p.publishEvent(ctx, EventRevised, MessageTypeRevised, func(contents Contents) any {
		return &RevisedEvent{
			Host:              p.host,
			TrackingNumber:    p.slip.TrackingNumber,
			ActivityName:      activityName,
			ExecutionID:       executionID,
			Timestamp:         timestamp,
			Duration:          duration,
			Variables:         redactMap(contents, ContentVariables, variables),
			Itinerary:         redactItinerary(contents, itinerary),
			PreviousItinerary: redactItinerary(contents, previousItinerary),
		}
	})
}

// PublishTerminated reports that an activity stopped the slip without
// fault. The itinerary section carries the discarded remaining steps.
func (p *EventPublisher) PublishTerminated(ctx context.Context, activityName, executionID string, timestamp time.Time, duration time.Duration, variables map[string]any, itinerary []Activity) error {
	return p.publishEvent(ctx, EventTerminated, MessageTypeTerminated, func(contents Contents) any {
		return &TerminatedEvent{
			Host:           p.host,
			TrackingNumber: p.slip.TrackingNumber,
			ActivityName:   activityName,
			ExecutionID:    executionID,
			Timestamp:      timestamp,
			Duration:       duration,
			Variables:      redactMap(contents, ContentVariables, variables),
			Itinerary:      redactItinerary(contents, itinerary),
		}
	})
}

// PublishCompensationFailed emits the activity-level and slip-level
// compensation failure events together, as a single awaited operation.
func (p *EventPublisher) PublishCompensationFailed(ctx context.Context, activityName, executionID string, timestamp time.Time, duration time.Duration, failureTimestamp time.Time, slipDuration time.Duration, exception ExceptionInfo, variables, data map[string]any) error {
	var wg sync.WaitGroup
	var activityErr, slipErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		activityErr = p.publishEvent(ctx, EventActivityCompensationFailed, MessageTypeActivityCompensationFailed, func(contents Contents) any {
			return &ActivityCompensationFailedEvent{
				Host:           p.host,
				TrackingNumber: p.slip.TrackingNumber,
				ActivityName:   activityName,
				ExecutionID:    executionID,
				Timestamp:      timestamp,
				Duration:       duration,
				Exception:      exception,
				Variables:      redactMap(contents, ContentVariables, variables),
				Data:           redactMap(contents, ContentData, data),
			}
		})
	}()
	go func() {
		defer wg.Done()
		slipErr = p.publishEvent(ctx, EventCompensationFailed, MessageTypeCompensationFailed, func(contents Contents) any {
			return &CompensationFailedEvent{
				TrackingNumber: p.slip.TrackingNumber,
				Timestamp:      failureTimestamp,
				Duration:       slipDuration,
				Exception:      exception,
				Variables:      redactMap(contents, ContentVariables, variables),
			}
		})
	}()
	wg.Wait()

	var errs *multierror.Error
	errs = multierror.Append(errs, activityErr, slipErr)
	return errs.ErrorOrNil()
}

// publishEvent delivers one event: concurrently to each matching
// subscription with that subscription's redaction applied, then the
// conditional default broadcast with full content.
func (p *EventPublisher) publishEvent(ctx context.Context, flag Events, messageType string, build func(Contents) any) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs *multierror.Error

	for _, sub := range p.slip.Subscriptions {
		if !sub.Matches(flag, p.activityName) {
			continue
		}
		wg.Add(1)
		go func(sub Subscription) {
			defer wg.Done()
			if err := p.deliver(ctx, sub, messageType, build); err != nil {
				p.logger.Warn("event delivery failed",
					"trackingNumber", p.slip.TrackingNumber,
					"messageType", messageType,
					"destination", sub.Address,
					"error", err)
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
			}
		}(sub)
	}
	wg.Wait()

	// The broadcast decision depends on every subscription's flags, not
	// on whether any matched or succeeded.
	if p.broadcastWanted() {
		env, err := transport.NewEnvelope(messageType, build(ContentAll))
		if err == nil {
			err = p.publisher.Publish(ctx, env)
		}
		if err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "broadcast %s", messageType))
		}
	}

	return errs.ErrorOrNil()
}

func (p *EventPublisher) deliver(ctx context.Context, sub Subscription, messageType string, build func(Contents) any) error {
	if sub.Message != "" {
		messageType = sub.Message
	}
	env, err := transport.NewEnvelope(messageType, build(sub.Include))
	if err != nil {
		return err
	}
	if err := p.sender.Send(ctx, sub.Address, env); err != nil {
		return errors.Wrapf(err, "deliver %s to %s", messageType, sub.Address)
	}
	return nil
}

// broadcastWanted applies the default broadcast rule: broadcast when the
// subscription set is empty or every subscription is supplemental.
func (p *EventPublisher) broadcastWanted() bool {
	for _, sub := range p.slip.Subscriptions {
		if sub.Events&EventSupplemental == 0 {
			return false
		}
	}
	return true
}
