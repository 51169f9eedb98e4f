package courier

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// reservedArgumentNames are argument keys the engine itself uses on the
// wire. Activity arguments must not collide with them, case-insensitively.
var reservedArgumentNames = []string{
	"trackingNumber",
	"executionId",
	"activityName",
	"timestamp",
	"duration",
	"host",
	"variables",
}

func isReservedArgumentName(key string) bool {
	for _, name := range reservedArgumentNames {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}

// Builder constructs a new routing slip. A builder is single-use: after
// Build it refuses further mutation.
type Builder struct {
	trackingNumber string
	itinerary      []Activity
	variables      map[string]any
	subscriptions  []Subscription
	built          bool
}

// BuilderOption customizes a new builder.
type BuilderOption func(*Builder)

// WithTrackingNumber sets an explicit tracking number instead of a
// generated one.
func WithTrackingNumber(trackingNumber string) BuilderOption {
	return func(b *Builder) {
		b.trackingNumber = trackingNumber
	}
}

// NewBuilder creates a routing slip builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		variables: make(map[string]any),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.trackingNumber == "" {
		b.trackingNumber = NewTrackingNumber()
	}
	return b
}

// AddActivity appends a step to the itinerary. Arguments must be a flat
// mapping serializable by the wire codec; keys colliding with reserved
// names are rejected.
func (b *Builder) AddActivity(name, address string, arguments map[string]any) error {
	if b.built {
		return ErrBuilderCompleted
	}
	if err := validateActivity(name, address, arguments); err != nil {
		return err
	}
	b.itinerary = append(b.itinerary, Activity{
		Name:      name,
		Address:   address,
		Arguments: cloneMap(arguments),
	})
	return nil
}

// AddVariable merges a single variable into the slip, last write wins.
func (b *Builder) AddVariable(key string, value any) error {
	if b.built {
		return ErrBuilderCompleted
	}
	if key == "" {
		return errors.Wrap(ErrInvalidArgument, "variable key must not be empty")
	}
	b.variables[key] = value
	return nil
}

// AddVariables merges a set of variables into the slip, last write wins.
func (b *Builder) AddVariables(vars map[string]any) error {
	if b.built {
		return ErrBuilderCompleted
	}
	for key, value := range vars {
		if key == "" {
			return errors.Wrap(ErrInvalidArgument, "variable key must not be empty")
		}
		b.variables[key] = value
	}
	return nil
}

// AddSubscription appends an event subscription.
func (b *Builder) AddSubscription(sub Subscription) error {
	if b.built {
		return ErrBuilderCompleted
	}
	if sub.Address == "" {
		return errors.Wrap(ErrInvalidSubscription, "subscription address must not be empty")
	}
	b.subscriptions = append(b.subscriptions, sub)
	return nil
}

// Build produces the routing slip. The builder must not be reused afterward.
func (b *Builder) Build() (*RoutingSlip, error) {
	if b.built {
		return nil, ErrBuilderCompleted
	}
	b.built = true

	return &RoutingSlip{
		TrackingNumber:  b.trackingNumber,
		CreateTimestamp: time.Now().UTC(),
		Itinerary:       b.itinerary,
		ActivityLogs:    []ActivityLog{},
		Variables:       b.variables,
		Subscriptions:   b.subscriptions,
	}, nil
}

// RevisedRoutingSlip pairs a revised slip with the itinerary it replaced.
// The previous itinerary is retained only for the Revised event; it is not
// part of the slip's steady state.
type RevisedRoutingSlip struct {
	Slip              *RoutingSlip
	PreviousItinerary []Activity
}

// Revise replaces the remaining itinerary of an in-flight slip, preserving
// tracking number, activity logs, variables, and subscriptions.
func Revise(slip *RoutingSlip, itinerary []Activity) (*RevisedRoutingSlip, error) {
	for _, step := range itinerary {
		if err := validateActivity(step.Name, step.Address, step.Arguments); err != nil {
			return nil, err
		}
	}

	next := slip.clone()
	previous := next.Itinerary
	next.Itinerary = append([]Activity(nil), itinerary...)

	return &RevisedRoutingSlip{
		Slip:              next,
		PreviousItinerary: previous,
	}, nil
}

func validateActivity(name, address string, arguments map[string]any) error {
	if name == "" {
		return errors.Wrap(ErrInvalidItinerary, "activity name must not be empty")
	}
	if address == "" {
		return errors.Wrapf(ErrInvalidItinerary, "activity %s has no execution address", name)
	}
	for key := range arguments {
		if key == "" {
			return errors.Wrapf(ErrInvalidArgument, "activity %s has an empty argument key", name)
		}
		if isReservedArgumentName(key) {
			return errors.Wrapf(ErrInvalidArgument, "activity %s argument %q collides with a reserved name", name, key)
		}
	}
	return nil
}
