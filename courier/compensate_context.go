package courier

// CompensateContext is the scoped view handed to an activity's compensator.
// It exposes only the log data recorded at execution time and the two
// compensation result constructors.
type CompensateContext struct {
	trackingNumber string
	activityName   string
	executionID    string
	log            map[string]any
}

func newCompensateContext(trackingNumber, activityName, executionID string, log map[string]any) *CompensateContext {
	return &CompensateContext{
		trackingNumber: trackingNumber,
		activityName:   activityName,
		executionID:    executionID,
		log:            log,
	}
}

// TrackingNumber returns the slip's tracking number.
func (c *CompensateContext) TrackingNumber() string {
	return c.trackingNumber
}

// ActivityName returns the name of the activity being compensated.
func (c *CompensateContext) ActivityName() string {
	return c.activityName
}

// ExecutionID returns the execution attempt being compensated.
func (c *CompensateContext) ExecutionID() string {
	return c.executionID
}

// Log returns the compensation data recorded when the activity executed.
// The returned map is a copy.
func (c *CompensateContext) Log() map[string]any {
	return cloneMap(c.log)
}

// Compensated signals that the activity's side effects were undone.
func (c *CompensateContext) Compensated() CompensationResult {
	return &compensatedResult{}
}

// CompensationFailed signals that the activity could not be undone.
// Compensation of the slip halts permanently.
func (c *CompensateContext) CompensationFailed(err error) CompensationResult {
	return &compensationFailedResult{err: err}
}
