package core

import (
	"fmt"
	"time"
)

// BuildSchedule produces the full installment plan for a utility.
//
// The per-installment amount is totalAmount/count in floating point; the last
// installment is deliberately NOT adjusted to absorb rounding drift, so the
// amounts sum to the total only within float tolerance. Due dates use calendar
// month arithmetic: startDate + (i-1)*spacing months, with month overflow
// rolling into the following month the way normalized dates do.
//
// Spacing is one month for bank installments and config.frequency_months
// (default 4) for insurance-style installments.
func BuildSchedule(u Utility, totalAmount float64, count int, startDate time.Time) ([]Installment, error) {
	if err := Permit(u.Type, OpInstallmentPlan); err != nil {
		return nil, err
	}
	if totalAmount <= 0 {
		return nil, fmt.Errorf("%w: total amount must be positive", ErrInvalidArgument)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: installment count must be positive", ErrInvalidArgument)
	}
	if startDate.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", ErrInvalidArgument)
	}

	spacing := 1
	if u.Type == UtilityInstallment {
		spacing = DefaultInstallmentFrequency
		if cfg, ok := u.Config.(InstallmentConfig); ok && cfg.FrequencyMonths > 0 {
			spacing = cfg.FrequencyMonths
		}
	}

	amount := totalAmount / float64(count)
	plan := make([]Installment, 0, count)
	for i := 1; i <= count; i++ {
		plan = append(plan, Installment{
			UtilityID:         u.ID,
			InstallmentNumber: i,
			TotalInstallments: count,
			Amount:            amount,
			DueDate:           startDate.AddDate(0, (i-1)*spacing, 0),
			Status:            InstallmentPending,
		})
	}
	return plan, nil
}

// InstallmentDescription is the default description for an installment
// payment transaction.
func InstallmentDescription(number, total int) string {
	return fmt.Sprintf("Rată %d/%d", number, total)
}
