package sheets

import "context"

// LedgerRow is one exported transaction, ready for a spreadsheet line.
type LedgerRow struct {
	Date         string // "2006-01-02"
	Description  string
	Amount       float64
	Type         string // "income" or "expense"
	UtilityName  string
	CategoryName string
}

// LedgerAppender is the outbound port the sync worker writes through.
type LedgerAppender interface {
	Append(ctx context.Context, row LedgerRow) (rowRef string, err error)
}
