package core

import (
	"fmt"
	"time"
)

// DefaultConsumptionUnit labels readings that do not specify a meter unit.
const DefaultConsumptionUnit = "unități"

// NewReading validates and derives a consumption reading. The consumption is
// computed here, at write time, and persisted as-is.
//
// Readings are independent snapshots: previousReading is NOT cross-checked
// against the utility's last stored currentReading, so meters may be
// re-baselined or corrected freely between readings.
func NewReading(utilityID int64, readingDate time.Time, previous, current, totalAmount float64, unit string) (ConsumptionReading, error) {
	if readingDate.IsZero() {
		return ConsumptionReading{}, fmt.Errorf("%w: reading date is required", ErrInvalidArgument)
	}
	if current < previous {
		return ConsumptionReading{}, fmt.Errorf("%w: current reading cannot be below previous reading", ErrInvalidArgument)
	}
	if totalAmount <= 0 {
		return ConsumptionReading{}, fmt.Errorf("%w: total amount must be positive", ErrInvalidArgument)
	}
	if unit == "" {
		unit = DefaultConsumptionUnit
	}
	return ConsumptionReading{
		UtilityID:       utilityID,
		ReadingDate:     readingDate,
		PreviousReading: previous,
		CurrentReading:  current,
		Consumption:     current - previous,
		Unit:            unit,
		TotalAmount:     totalAmount,
	}, nil
}
