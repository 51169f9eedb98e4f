package courier

import (
	"github.com/pkg/errors"
)

// Registration binds an activity name to its implementation factories and
// transport addresses. NewCompensate may be nil for activities without
// compensation.
type Registration struct {
	Name              string
	ExecuteAddress    string
	CompensateAddress string
	NewExecute        func() ExecuteActivity
	NewCompensate     func() CompensateActivity
}

// Registry resolves activity registrations by name. It is constructed
// explicitly at process start and passed down; there is no process-wide
// registry.
type Registry struct {
	byName map[string]Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Registration)}
}

// Register adds a registration.
func (r *Registry) Register(reg Registration) error {
	if reg.Name == "" {
		return errors.Wrap(ErrInvalidArgument, "registration name must not be empty")
	}
	if reg.ExecuteAddress == "" {
		return errors.Wrapf(ErrInvalidArgument, "registration %s has no execute address", reg.Name)
	}
	if reg.NewExecute == nil {
		return errors.Wrapf(ErrInvalidArgument, "registration %s has no execute factory", reg.Name)
	}
	if reg.NewCompensate != nil && reg.CompensateAddress == "" {
		return errors.Wrapf(ErrInvalidArgument, "registration %s has a compensator but no compensate address", reg.Name)
	}
	if _, exists := r.byName[reg.Name]; exists {
		return errors.Wrapf(ErrInvalidArgument, "activity %s already registered", reg.Name)
	}
	r.byName[reg.Name] = reg
	return nil
}

// Resolve returns the registration for the given activity name.
func (r *Registry) Resolve(name string) (Registration, error) {
	reg, ok := r.byName[name]
	if !ok {
		return Registration{}, errors.Wrapf(ErrUnknownActivity, "activity %s not registered", name)
	}
	return reg, nil
}

// Names returns the registered activity names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}
