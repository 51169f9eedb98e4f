package courier

import (
	"strings"
	"time"
)

// Events is a bit-set selecting which lifecycle events a subscription
// receives. Combine flags with bitwise OR.
type Events uint16

const (
	// EventCompleted fires when the slip finishes its itinerary.
	EventCompleted Events = 1 << iota
	// EventFaulted fires when an activity faults.
	EventFaulted
	// EventRevised fires when an activity replaces the remaining itinerary.
	EventRevised
	// EventTerminated fires when an activity stops the slip without fault.
	EventTerminated
	// EventActivityCompleted fires after each successful activity execution.
	EventActivityCompleted
	// EventActivityFaulted fires for the activity that faulted.
	EventActivityFaulted
	// EventActivityCompensated fires after each successful compensation.
	EventActivityCompensated
	// EventActivityCompensationFailed fires for the activity whose
	// compensation failed.
	EventActivityCompensationFailed
	// EventCompensationFailed fires when compensation of the slip halts.
	EventCompensationFailed

	// EventSupplemental marks a subscription as wanting delivery in
	// addition to, not instead of, the default broadcast.
	EventSupplemental

	// EventMask covers every event flag, excluding modifiers.
	EventMask = EventCompleted | EventFaulted | EventRevised | EventTerminated |
		EventActivityCompleted | EventActivityFaulted | EventActivityCompensated |
		EventActivityCompensationFailed | EventCompensationFailed

	// EventAll matches every event.
	EventAll = EventMask
)

// Contents is a bit-set selecting which optional payload sections are
// delivered to a subscriber. The zero value means full content; the
// redacted sections of a partial mask are replaced with empty values of
// the same shape, never omitted.
type Contents uint8

const (
	// ContentVariables includes the slip variables.
	ContentVariables Contents = 1 << iota
	// ContentArguments includes the activity arguments.
	ContentArguments
	// ContentData includes the activity's compensation data.
	ContentData
	// ContentItinerary includes itinerary snapshots.
	ContentItinerary

	// ContentAll includes every section. It is the zero value, so a
	// subscription that never sets Include receives full content.
	ContentAll Contents = 0
)

// Includes reports whether the section should be delivered verbatim.
func (c Contents) Includes(section Contents) bool {
	return c == ContentAll || c&section != 0
}

// Subscription is a registered interest in a subset of lifecycle events.
// Subscriptions are fixed when the slip is built and travel with it.
type Subscription struct {
	// Address is the destination endpoint for event delivery.
	Address string `json:"address"`
	// Events selects which events are delivered.
	Events Events `json:"events"`
	// Include selects which payload sections are delivered verbatim.
	Include Contents `json:"include"`
	// ActivityName restricts activity-scoped events to one activity,
	// matched case-insensitively. Empty matches all activities.
	ActivityName string `json:"activityName,omitempty"`
	// Message optionally overrides the envelope message type, for
	// consumers expecting a specific contract.
	Message string `json:"message,omitempty"`
}

// Matches reports whether an event with the given flag, observed while the
// named activity is current, should be delivered to this subscription.
// Slip-level events pass an empty activity name and are never filtered by
// the subscription's ActivityName.
func (s Subscription) Matches(flag Events, activityName string) bool {
	if s.Events&EventMask != EventAll && s.Events&flag == 0 {
		return false
	}
	if activityName == "" || s.ActivityName == "" {
		return true
	}
	return strings.EqualFold(activityName, s.ActivityName)
}

// ExceptionInfo describes a fault in a transport-friendly form. It captures
// both activity-reported faults and recovered panics; the engine treats the
// two identically apart from this detail.
type ExceptionInfo struct {
	ExceptionType string `json:"exceptionType"`
	Message       string `json:"message"`
	StackTrace    string `json:"stackTrace,omitempty"`
}

// HostInfo identifies the process that executed an activity. It is
// constructed explicitly at startup and passed down; there is no implicit
// process-wide cache.
type HostInfo struct {
	MachineName    string `json:"machineName"`
	ProcessName    string `json:"processName"`
	ProcessID      int    `json:"processId"`
	RuntimeVersion string `json:"runtimeVersion"`
}

// Message type names for published events.
const (
	MessageTypeCompleted                  = "RoutingSlipCompleted"
	MessageTypeFaulted                    = "RoutingSlipFaulted"
	MessageTypeRevised                    = "RoutingSlipRevised"
	MessageTypeTerminated                 = "RoutingSlipTerminated"
	MessageTypeActivityCompleted          = "RoutingSlipActivityCompleted"
	MessageTypeActivityFaulted            = "RoutingSlipActivityFaulted"
	MessageTypeActivityCompensated        = "RoutingSlipActivityCompensated"
	MessageTypeActivityCompensationFailed = "RoutingSlipActivityCompensationFailed"
	MessageTypeCompensationFailed         = "RoutingSlipCompensationFailed"
)

// CompletedEvent reports that the slip finished its itinerary.
type CompletedEvent struct {
	TrackingNumber string         `json:"trackingNumber"`
	Timestamp      time.Time      `json:"timestamp"`
	Duration       time.Duration  `json:"duration"`
	Variables      map[string]any `json:"variables"`
}

// FaultedEvent reports that the slip faulted.
type FaultedEvent struct {
	TrackingNumber string          `json:"trackingNumber"`
	Timestamp      time.Time       `json:"timestamp"`
	Duration       time.Duration   `json:"duration"`
	Exceptions     []ExceptionInfo `json:"exceptions"`
	Variables      map[string]any  `json:"variables"`
}

// ActivityCompletedEvent reports one successful forward execution.
type ActivityCompletedEvent struct {
	Host           HostInfo       `json:"host"`
	TrackingNumber string         `json:"trackingNumber"`
	ActivityName   string         `json:"activityName"`
	ExecutionID    string         `json:"executionId"`
	Timestamp      time.Time      `json:"timestamp"`
	Duration       time.Duration  `json:"duration"`
	Variables      map[string]any `json:"variables"`
	Arguments      map[string]any `json:"arguments"`
	Data           map[string]any `json:"data"`
}

// ActivityFaultedEvent reports the activity that faulted.
type ActivityFaultedEvent struct {
	Host           HostInfo       `json:"host"`
	TrackingNumber string         `json:"trackingNumber"`
	ActivityName   string         `json:"activityName"`
	ExecutionID    string         `json:"executionId"`
	Timestamp      time.Time      `json:"timestamp"`
	Duration       time.Duration  `json:"duration"`
	Exception      ExceptionInfo  `json:"exception"`
	Variables      map[string]any `json:"variables"`
	Arguments      map[string]any `json:"arguments"`
}

// ActivityCompensatedEvent reports one successful compensation.
type ActivityCompensatedEvent struct {
	Host           HostInfo       `json:"host"`
	TrackingNumber string         `json:"trackingNumber"`
	ActivityName   string         `json:"activityName"`
	ExecutionID    string         `json:"executionId"`
	Timestamp      time.Time      `json:"timestamp"`
	Duration       time.Duration  `json:"duration"`
	Variables      map[string]any `json:"variables"`
	Data           map[string]any `json:"data"`
}

// ActivityCompensationFailedEvent reports the activity whose compensation
// failed. It is always published together with CompensationFailedEvent.
type ActivityCompensationFailedEvent struct {
	Host           HostInfo       `json:"host"`
	TrackingNumber string         `json:"trackingNumber"`
	ActivityName   string         `json:"activityName"`
	ExecutionID    string         `json:"executionId"`
	Timestamp      time.Time      `json:"timestamp"`
	Duration       time.Duration  `json:"duration"`
	Exception      ExceptionInfo  `json:"exception"`
	Variables      map[string]any `json:"variables"`
	Data           map[string]any `json:"data"`
}

// CompensationFailedEvent reports that compensation of the slip halted,
// leaving the remaining log entries as a reported inconsistency.
type CompensationFailedEvent struct {
	TrackingNumber string         `json:"trackingNumber"`
	Timestamp      time.Time      `json:"timestamp"`
	Duration       time.Duration  `json:"duration"`
	Exception      ExceptionInfo  `json:"exception"`
	Variables      map[string]any `json:"variables"`
}

// RevisedEvent reports a mid-flight itinerary replacement.
type RevisedEvent struct {
	Host              HostInfo       `json:"host"`
	TrackingNumber    string         `json:"trackingNumber"`
	ActivityName      string         `json:"activityName"`
	ExecutionID       string         `json:"executionId"`
	Timestamp         time.Time      `json:"timestamp"`
	Duration          time.Duration  `json:"duration"`
	Variables         map[string]any `json:"variables"`
	Itinerary         []Activity     `json:"itinerary"`
	PreviousItinerary []Activity     `json:"previousItinerary"`
}

// TerminatedEvent reports that an activity stopped the slip without fault.
// Itinerary carries the remaining steps that were discarded.
type TerminatedEvent struct {
	Host           HostInfo       `json:"host"`
	TrackingNumber string         `json:"trackingNumber"`
	ActivityName   string         `json:"activityName"`
	ExecutionID    string         `json:"executionId"`
	Timestamp      time.Time      `json:"timestamp"`
	Duration       time.Duration  `json:"duration"`
	Variables      map[string]any `json:"variables"`
	Itinerary      []Activity     `json:"itinerary"`
}

// emptyObject is the redaction placeholder for map sections. Subscribers
// always receive a section of the right shape, never a missing one.
func emptyObject() map[string]any {
	return map[string]any{}
}

// emptyItinerary is the redaction placeholder for itinerary sections.
func emptyItinerary() []Activity {
	return []Activity{}
}

func redactMap(c Contents, section Contents, m map[string]any) map[string]any {
	if c.Includes(section) {
		if m == nil {
			return emptyObject()
		}
		return m
	}
	return emptyObject()
}

func redactItinerary(c Contents, itinerary []Activity) []Activity {
	if c.Includes(ContentItinerary) {
		if itinerary == nil {
			return emptyItinerary()
		}
		return itinerary
	}
	return emptyItinerary()
}
