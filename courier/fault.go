package courier

import (
	"fmt"
)

// RecoveryError wraps a panic recovered during an activity invocation.
// The engine handles it exactly like an activity-reported fault; only the
// exception detail attached to the published event differs.
type RecoveryError struct {
	// PanicValue is the original value passed to panic().
	PanicValue any
	// StackTrace is the stack captured at the point of panic.
	StackTrace string
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("panic recovered: %v", e.PanicValue)
}

// newExceptionInfo converts a fault into its wire representation.
func newExceptionInfo(err error) ExceptionInfo {
	if err == nil {
		return ExceptionInfo{}
	}
	info := ExceptionInfo{
		ExceptionType: fmt.Sprintf("%T", err),
		Message:       err.Error(),
	}
	if re, ok := err.(*RecoveryError); ok {
		info.StackTrace = re.StackTrace
	}
	return info
}
