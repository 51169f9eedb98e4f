package courier

// ExecuteContext is the scoped view handed to an activity during forward
// execution. It exposes the activity's arguments and the result
// constructors, and nothing else: an activity cannot reach the itinerary,
// the logs, or the subscriptions. All slip mutation is expressed through
// the returned ExecutionResult and applied centrally by the executor.
type ExecuteContext struct {
	trackingNumber string
	activityName   string
	executionID    string
	arguments      map[string]any
}

func newExecuteContext(trackingNumber, activityName, executionID string, arguments map[string]any) *ExecuteContext {
	return &ExecuteContext{
		trackingNumber: trackingNumber,
		activityName:   activityName,
		executionID:    executionID,
		arguments:      arguments,
	}
}

// TrackingNumber returns the slip's tracking number.
func (c *ExecuteContext) TrackingNumber() string {
	return c.trackingNumber
}

// ActivityName returns the executing activity's name.
func (c *ExecuteContext) ActivityName() string {
	return c.activityName
}

// ExecutionID returns the identifier of this execution attempt.
func (c *ExecuteContext) ExecutionID() string {
	return c.executionID
}

// Arguments returns the activity arguments: the slip variables overlaid
// with the itinerary step's own arguments. The returned map is a copy.
func (c *ExecuteContext) Arguments() map[string]any {
	return cloneMap(c.arguments)
}

// Completed signals success with no compensation data.
func (c *ExecuteContext) Completed() ExecutionResult {
	return &completedResult{}
}

// CompletedWithVariables signals success and merges variables into the slip.
func (c *ExecuteContext) CompletedWithVariables(variables map[string]any) ExecutionResult {
	return &completedResult{variables: cloneMap(variables)}
}

// CompletedWithLog signals success and records data needed to compensate
// this activity later.
func (c *ExecuteContext) CompletedWithLog(data map[string]any) ExecutionResult {
	return &completedResult{data: cloneMap(data)}
}

// CompletedWithLogAndVariables signals success with both compensation data
// and variables to merge.
func (c *ExecuteContext) CompletedWithLogAndVariables(data, variables map[string]any) ExecutionResult {
	return &completedResult{data: cloneMap(data), variables: cloneMap(variables)}
}

// Faulted signals failure; the engine switches to compensation.
func (c *ExecuteContext) Faulted(err error) ExecutionResult {
	return &faultedResult{err: err}
}

// Terminate stops the slip without fault and without compensation.
func (c *ExecuteContext) Terminate() ExecutionResult {
	return &terminatedResult{}
}

// TerminateWithVariables stops the slip without fault, merging variables
// into the terminal event.
func (c *ExecuteContext) TerminateWithVariables(variables map[string]any) ExecutionResult {
	return &terminatedResult{variables: cloneMap(variables)}
}

// ReviseOption attaches optional content to an itinerary revision.
type ReviseOption func(*revisedResult)

// WithReviseLog records compensation data for the revising activity.
func WithReviseLog(data map[string]any) ReviseOption {
	return func(r *revisedResult) {
		r.data = cloneMap(data)
	}
}

// WithReviseVariables merges variables as part of the revision.
func WithReviseVariables(variables map[string]any) ReviseOption {
	return func(r *revisedResult) {
		r.variables = cloneMap(variables)
	}
}

// ReviseItinerary replaces the remaining itinerary and continues forward
// execution with the supplied steps.
func (c *ExecuteContext) ReviseItinerary(itinerary []Activity, opts ...ReviseOption) ExecutionResult {
	r := &revisedResult{itinerary: append([]Activity(nil), itinerary...)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
