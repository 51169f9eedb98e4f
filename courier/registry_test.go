package courier

import (
	"context"
	"errors"
	"testing"
)

func testRegistration(name string) Registration {
	return Registration{
		Name:              name,
		ExecuteAddress:    "queue:" + name,
		CompensateAddress: "queue:" + name + "-comp",
		NewExecute: stubExecute(func(ctx context.Context, ec *ExecuteContext) ExecutionResult {
			return ec.Completed()
		}),
		NewCompensate: stubCompensate(func(ctx context.Context, cc *CompensateContext) CompensationResult {
			return cc.Compensated()
		}),
	}
}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testRegistration("ReserveFlight")); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	reg, err := r.Resolve("ReserveFlight")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if reg.ExecuteAddress != "queue:ReserveFlight" {
		t.Errorf("Expected registration returned intact, got %+v", reg)
	}

	if _, err := r.Resolve("Unknown"); !errors.Is(err, ErrUnknownActivity) {
		t.Errorf("Expected ErrUnknownActivity, got %v", err)
	}

	names := r.Names()
	if len(names) != 1 || names[0] != "ReserveFlight" {
		t.Errorf("Expected one registered name, got %v", names)
	}
}

func TestRegistry_RejectsInvalidRegistrations(t *testing.T) {
	r := NewRegistry()

	noName := testRegistration("")
	if err := r.Register(noName); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for missing name, got %v", err)
	}

	noAddress := testRegistration("A")
	noAddress.ExecuteAddress = ""
	if err := r.Register(noAddress); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for missing address, got %v", err)
	}

	noFactory := testRegistration("A")
	noFactory.NewExecute = nil
	if err := r.Register(noFactory); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for missing factory, got %v", err)
	}

	orphanCompensator := testRegistration("A")
	orphanCompensator.CompensateAddress = ""
	if err := r.Register(orphanCompensator); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for compensator without address, got %v", err)
	}
}

func TestRegistry_RejectsDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testRegistration("A")); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if err := r.Register(testRegistration("A")); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for duplicate, got %v", err)
	}
}
