package core

import (
	"errors"
	"testing"
)

func TestNewReadingComputesConsumption(t *testing.T) {
	r, err := NewReading(1, date(2024, 2, 1), 100, 150, 320.5, "kWh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Consumption != 50 {
		t.Fatalf("consumption %v, want 50", r.Consumption)
	}
	if r.Unit != "kWh" {
		t.Fatalf("unit %q", r.Unit)
	}
}

func TestNewReadingRejectsNegativeConsumption(t *testing.T) {
	if _, err := NewReading(1, date(2024, 2, 1), 100, 90, 50, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestNewReadingDefaultsUnit(t *testing.T) {
	r, err := NewReading(1, date(2024, 2, 1), 0, 10, 25, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Unit != DefaultConsumptionUnit {
		t.Fatalf("unit %q, want default", r.Unit)
	}
}

// Readings are deliberately unchained: a previous reading below the meter's
// last stored value is accepted, since each snapshot stands alone.
func TestNewReadingIsIndependentOfHistory(t *testing.T) {
	first, err := NewReading(1, date(2024, 1, 1), 100, 200, 80, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := NewReading(1, date(2024, 2, 1), 150, 180, 40, "")
	if err != nil {
		t.Fatalf("re-baselined reading should be accepted: %v", err)
	}
	if first.Consumption != 100 || second.Consumption != 30 {
		t.Fatalf("consumptions %v, %v", first.Consumption, second.Consumption)
	}
}
