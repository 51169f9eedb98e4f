package courier

import (
	"time"
)

// Activity is one itinerary step: a named unit of remote work and the
// address of the endpoint that executes it.
type Activity struct {
	Name      string         `json:"name"`
	Address   string         `json:"address"`
	Arguments map[string]any `json:"arguments"`
}

// ActivityLog records one completed execution with everything needed to
// undo it later. Entries are append-only; compensation consumes them in
// reverse insertion order.
type ActivityLog struct {
	Name        string         `json:"name"`
	ExecutionID string         `json:"executionId"`
	// Address is the compensation endpoint of the host that executed
	// the activity. Empty when the activity has no compensation.
	Address   string        `json:"address,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	// Data is the opaque compensation payload produced by the activity,
	// interpretable only by that activity's compensator.
	Data map[string]any `json:"data"`
}

// RoutingSlip is the traveling workflow document. It is the authoritative
// state of the saga: it rides inside the message, and whichever host holds
// the in-flight message owns it. There is no coordinator state anywhere else.
type RoutingSlip struct {
	TrackingNumber  string         `json:"trackingNumber"`
	CreateTimestamp time.Time      `json:"createTimestamp"`
	Itinerary       []Activity     `json:"itinerary"`
	ActivityLogs    []ActivityLog  `json:"activityLogs"`
	Variables       map[string]any `json:"variables"`
	Subscriptions   []Subscription `json:"subscriptions"`
}

// IsCompleted reports whether no itinerary steps remain.
func (rs *RoutingSlip) IsCompleted() bool {
	return len(rs.Itinerary) == 0
}

// IsInProgress reports whether completed work exists that can be compensated.
func (rs *RoutingSlip) IsInProgress() bool {
	return len(rs.ActivityLogs) > 0
}

// NextActivity returns the first remaining itinerary step without removing it.
func (rs *RoutingSlip) NextActivity() (Activity, bool) {
	if rs.IsCompleted() {
		return Activity{}, false
	}
	return rs.Itinerary[0], true
}

// LastLog returns the most recent activity log entry without removing it.
func (rs *RoutingSlip) LastLog() (ActivityLog, bool) {
	if !rs.IsInProgress() {
		return ActivityLog{}, false
	}
	return rs.ActivityLogs[len(rs.ActivityLogs)-1], true
}

// clone produces an independent copy of the slip. Each hop mutates a clone
// and dispatches it, so a canceled hop never leaves a partially mutated
// slip behind.
func (rs *RoutingSlip) clone() *RoutingSlip {
	next := &RoutingSlip{
		TrackingNumber:  rs.TrackingNumber,
		CreateTimestamp: rs.CreateTimestamp,
		Itinerary:       append([]Activity(nil), rs.Itinerary...),
		ActivityLogs:    append([]ActivityLog(nil), rs.ActivityLogs...),
		Variables:       cloneMap(rs.Variables),
		Subscriptions:   append([]Subscription(nil), rs.Subscriptions...),
	}
	return next
}

// mergeVariables merges the given variables into the slip, last write wins.
// Keys are never removed.
func (rs *RoutingSlip) mergeVariables(vars map[string]any) {
	if len(vars) == 0 {
		return
	}
	if rs.Variables == nil {
		rs.Variables = make(map[string]any, len(vars))
	}
	for k, v := range vars {
		rs.Variables[k] = v
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// mergeArguments overlays step arguments on top of the slip variables,
// producing the argument view an activity sees. Step arguments win.
func mergeArguments(variables, arguments map[string]any) map[string]any {
	out := make(map[string]any, len(variables)+len(arguments))
	for k, v := range variables {
		out[k] = v
	}
	for k, v := range arguments {
		out[k] = v
	}
	return out
}
