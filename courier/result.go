package courier

// ExecutionResult is the outcome of one forward activity execution. It is a
// closed set: results are only produced through ExecuteContext, and the
// executor matches them exhaustively. Exactly one result per invocation.
type ExecutionResult interface {
	isExecutionResult()
}

type completedResult struct {
	data      map[string]any
	variables map[string]any
}

type faultedResult struct {
	err error
}

type terminatedResult struct {
	variables map[string]any
}

type revisedResult struct {
	itinerary []Activity
	data      map[string]any
	variables map[string]any
}

func (*completedResult) isExecutionResult()  {}
func (*faultedResult) isExecutionResult()    {}
func (*terminatedResult) isExecutionResult() {}
func (*revisedResult) isExecutionResult()    {}

// CompensationResult is the outcome of one compensation step, produced
// through CompensateContext.
type CompensationResult interface {
	isCompensationResult()
}

type compensatedResult struct{}

type compensationFailedResult struct {
	err error
}

func (*compensatedResult) isCompensationResult()        {}
func (*compensationFailedResult) isCompensationResult() {}
