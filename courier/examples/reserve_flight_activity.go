// Package examples contains sample trip-booking activities used by the
// example tests and the demo binary.
package examples

import (
	"context"
	"math/rand"

	"github.com/krew-solutions/courier-go/courier"
)

var flightRnd = rand.New(rand.NewSource(3))

// Addresses for flight reservation activities.
const (
	FlightActivityName      = "ReserveFlight"
	FlightExecuteAddress    = "queue:flight-reservations"
	FlightCompensateAddress = "queue:flight-cancellations"
)

// ReserveFlightActivity reserves a flight. This is the highest risk step
// in a travel booking saga.
type ReserveFlightActivity struct{}

// NewReserveFlightActivity creates a flight reservation activity.
func NewReserveFlightActivity() courier.ExecuteActivity {
	return &ReserveFlightActivity{}
}

// NewReserveFlightCompensator creates the matching compensator.
func NewReserveFlightCompensator() courier.CompensateActivity {
	return &ReserveFlightActivity{}
}

// Execute reserves a flight and records the reservation id for later
// cancellation.
func (a *ReserveFlightActivity) Execute(ctx context.Context, ec *courier.ExecuteContext) courier.ExecutionResult {
	_ = ec.Arguments()["destination"]
	reservationID := flightRnd.Intn(100000)
	return ec.CompletedWithLog(map[string]any{"reservationId": reservationID})
}

// Compensate cancels the flight reservation.
func (a *ReserveFlightActivity) Compensate(ctx context.Context, cc *courier.CompensateContext) courier.CompensationResult {
	_ = cc.Log()["reservationId"]
	return cc.Compensated()
}

// Registration returns the transport registration for this activity.
func (a *ReserveFlightActivity) Registration() courier.Registration {
	return courier.Registration{
		Name:              FlightActivityName,
		ExecuteAddress:    FlightExecuteAddress,
		CompensateAddress: FlightCompensateAddress,
		NewExecute:        NewReserveFlightActivity,
		NewCompensate:     NewReserveFlightCompensator,
	}
}
