package core

import "fmt"

const (
	OpTransaction        Operation = "transaction"
	OpInstallmentPlan    Operation = "installment_plan"
	OpConsumptionReading Operation = "consumption_reading"
	OpAnnualPayment      Operation = "annual_payment"
)

// Operation names a satellite operation that targets a utility.
type Operation string

// permitted maps each operation to the utility types it is valid for.
// Transactions are valid on every type; the rest are type-bound.
var permitted = map[Operation][]UtilityType{
	OpTransaction: {UtilitySimple, UtilityInstallment, UtilityBankInstallment, UtilityConsumption, UtilityAnnualPayment},
	OpInstallmentPlan:    {UtilityInstallment, UtilityBankInstallment},
	OpConsumptionReading: {UtilityConsumption},
	OpAnnualPayment:      {UtilityAnnualPayment},
}

// Permit rejects operations targeting a utility of the wrong type. It is the
// single dispatch point for type/operation mismatches, so handlers never
// branch on utility types themselves.
func Permit(t UtilityType, op Operation) error {
	types, ok := permitted[op]
	if !ok {
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidArgument, op)
	}
	for _, allowed := range types {
		if t == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: utility type %q does not support %s", ErrInvalidArgument, t, op)
}
