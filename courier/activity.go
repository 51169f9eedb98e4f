package courier

import "context"

// ExecuteActivity is the forward operation of an activity. Implementations
// produce exactly one result through the context's constructors; a panic is
// treated as a fault.
type ExecuteActivity interface {
	Execute(ctx context.Context, ec *ExecuteContext) ExecutionResult
}

// CompensateActivity is the backward operation of an activity, invoked with
// the log data that its Execute recorded.
type CompensateActivity interface {
	Compensate(ctx context.Context, cc *CompensateContext) CompensationResult
}
