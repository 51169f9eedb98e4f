package courier

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is raised when an activity argument or variable
	// key is empty or collides with a reserved name.
	ErrInvalidArgument = errors.New("courier: invalid argument")

	// ErrInvalidItinerary is raised when an itinerary step is malformed,
	// at build time or at revision time.
	ErrInvalidItinerary = errors.New("courier: invalid itinerary")

	// ErrInvalidSubscription is raised when a subscription has no address.
	ErrInvalidSubscription = errors.New("courier: invalid subscription")

	// ErrBuilderCompleted is raised when a builder is used after Build.
	ErrBuilderCompleted = errors.New("courier: builder already completed")

	// ErrEmptyItinerary is raised when dispatching a slip with no
	// remaining itinerary.
	ErrEmptyItinerary = errors.New("courier: empty itinerary")

	// ErrUnknownActivity is raised when a slip arrives at a host whose
	// activity does not match the current step.
	ErrUnknownActivity = errors.New("courier: unknown activity")

	// ErrNoExecutionResult is raised when an activity invocation produces
	// no result. The engine treats it as a fault.
	ErrNoExecutionResult = errors.New("courier: activity produced no execution result")

	// ErrNoCompensationResult is raised when a compensator produces no
	// result. The engine treats it as a compensation failure.
	ErrNoCompensationResult = errors.New("courier: activity produced no compensation result")
)
