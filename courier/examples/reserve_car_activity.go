package examples

import (
	"context"

	"github.com/pkg/errors"

	"github.com/krew-solutions/courier-go/courier"
)

// Addresses for car rental activities.
const (
	CarActivityName   = "ReserveCar"
	CarExecuteAddress = "queue:car-reservations"
)

// ReserveCarActivity rents a car at the destination. Car rentals cannot
// be canceled once booked, so the activity has no compensator.
type ReserveCarActivity struct {
	// Available simulates rental availability. When false the
	// reservation faults, which unwinds the earlier itinerary steps.
	Available bool
}

// NewReserveCarActivity creates a car rental activity with cars on the lot.
func NewReserveCarActivity() courier.ExecuteActivity {
	return &ReserveCarActivity{Available: true}
}

// NewSoldOutCarActivity creates a car rental activity with no cars left.
func NewSoldOutCarActivity() courier.ExecuteActivity {
	return &ReserveCarActivity{Available: false}
}

// Execute rents a car, or faults when the lot is sold out.
func (a *ReserveCarActivity) Execute(ctx context.Context, ec *courier.ExecuteContext) courier.ExecutionResult {
	if !a.Available {
		return ec.Faulted(errors.New("no cars available at destination"))
	}
	return ec.Completed()
}

// Registration returns the transport registration for this activity.
func (a *ReserveCarActivity) Registration() courier.Registration {
	return courier.Registration{
		Name:           CarActivityName,
		ExecuteAddress: CarExecuteAddress,
		NewExecute:     NewReserveCarActivity,
	}
}
