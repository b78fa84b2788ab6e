package core

import (
	"fmt"
	"time"
)

// renewalLeadDays is how far ahead of the next due date the reminder fires.
const renewalLeadDays = 30

// Renewal is the derived schedule of an annual payment: when the next
// payment is due and when the reminder should be raised.
type Renewal struct {
	NextDueDate      time.Time
	NotificationDate time.Time
}

// PlanRenewal computes the renewal for an annual payment made on paymentDate
// and valid for yearsValid years.
func PlanRenewal(paymentDate time.Time, yearsValid int) (Renewal, error) {
	if yearsValid <= 0 {
		return Renewal{}, fmt.Errorf("%w: years valid must be positive", ErrInvalidArgument)
	}
	if paymentDate.IsZero() {
		return Renewal{}, fmt.Errorf("%w: payment date is required", ErrInvalidArgument)
	}
	next := paymentDate.AddDate(yearsValid, 0, 0)
	return Renewal{
		NextDueDate:      next,
		NotificationDate: next.AddDate(0, 0, -renewalLeadDays),
	}, nil
}

// ShouldNotify reports whether a reminder is still worth creating: the
// notification date must be strictly in the future. A renewal whose reminder
// window has already passed is skipped silently, not an error.
func (r Renewal) ShouldNotify(now time.Time) bool {
	return r.NotificationDate.After(now)
}

// Message builds the reminder text shown for the renewal.
func (r Renewal) Message(utilityName string) string {
	return fmt.Sprintf("Plata pentru %s expiră pe %s", utilityName, r.NextDueDate.Format("02.01.2006"))
}

// AnnualPaymentDescription is the default description for the expense
// transaction recorded with an annual payment.
func AnnualPaymentDescription(utilityName string, yearsValid int) string {
	unit := "ani"
	if yearsValid == 1 {
		unit = "an"
	}
	return fmt.Sprintf("%s - %d %s", utilityName, yearsValid, unit)
}
