package examples

import (
	"context"
	"math/rand"

	"github.com/krew-solutions/courier-go/courier"
)

var hotelRnd = rand.New(rand.NewSource(7))

// Addresses for hotel reservation activities.
const (
	HotelActivityName      = "ReserveHotel"
	HotelExecuteAddress    = "queue:hotel-reservations"
	HotelCompensateAddress = "queue:hotel-cancellations"
)

// ReserveHotelActivity reserves a hotel room for the trip.
type ReserveHotelActivity struct{}

// NewReserveHotelActivity creates a hotel reservation activity.
func NewReserveHotelActivity() courier.ExecuteActivity {
	return &ReserveHotelActivity{}
}

// NewReserveHotelCompensator creates the matching compensator.
func NewReserveHotelCompensator() courier.CompensateActivity {
	return &ReserveHotelActivity{}
}

// Execute reserves a room and shares the confirmation number with the
// rest of the itinerary through a variable.
func (a *ReserveHotelActivity) Execute(ctx context.Context, ec *courier.ExecuteContext) courier.ExecutionResult {
	confirmation := hotelRnd.Intn(100000)
	return ec.CompletedWithLogAndVariables(
		map[string]any{"confirmationNumber": confirmation},
		map[string]any{"hotelConfirmation": confirmation},
	)
}

// Compensate releases the room reservation.
func (a *ReserveHotelActivity) Compensate(ctx context.Context, cc *courier.CompensateContext) courier.CompensationResult {
	_ = cc.Log()["confirmationNumber"]
	return cc.Compensated()
}

// Registration returns the transport registration for this activity.
func (a *ReserveHotelActivity) Registration() courier.Registration {
	return courier.Registration{
		Name:              HotelActivityName,
		ExecuteAddress:    HotelExecuteAddress,
		CompensateAddress: HotelCompensateAddress,
		NewExecute:        NewReserveHotelActivity,
		NewCompensate:     NewReserveHotelCompensator,
	}
}
