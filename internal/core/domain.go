package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	UtilitySimple          UtilityType = "simple"
	UtilityInstallment     UtilityType = "installment"
	UtilityBankInstallment UtilityType = "bank_installment"
	UtilityConsumption     UtilityType = "consumption"
	UtilityAnnualPayment   UtilityType = "annual_payment"
)

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPaid    InstallmentStatus = "paid"
	InstallmentOverdue InstallmentStatus = "overdue"
)

const (
	NotificationInstallmentDue   NotificationType = "installment_due"
	NotificationAnnualPaymentDue NotificationType = "annual_payment_due"
)

type (
	UtilityType       string
	TransactionType   string
	InstallmentStatus string
	NotificationType  string

	Category struct {
		ID        int64     `json:"id"`
		Name      string    `json:"name"`
		Color     string    `json:"color"`
		Icon      string    `json:"icon"`
		CreatedAt time.Time `json:"createdAt"`
	}

	Utility struct {
		ID          int64         `json:"id"`
		CategoryID  int64         `json:"categoryId"`
		Name        string        `json:"name"`
		Description string        `json:"description,omitempty"`
		Type        UtilityType   `json:"utilityType"`
		Config      UtilityConfig `json:"config,omitempty"`
		LogoURL     string        `json:"logoUrl,omitempty"`
		CreatedAt   time.Time     `json:"createdAt"`
	}

	Transaction struct {
		ID          int64           `json:"id"`
		UtilityID   int64           `json:"utilityId"`
		Type        TransactionType `json:"type"`
		Amount      float64         `json:"amount"`
		Description string          `json:"description,omitempty"`
		Date        time.Time       `json:"date"`
		CreatedAt   time.Time       `json:"createdAt"`
	}

	Installment struct {
		ID                int64             `json:"id"`
		UtilityID         int64             `json:"utilityId"`
		InstallmentNumber int               `json:"installmentNumber"`
		TotalInstallments int               `json:"totalInstallments"`
		Amount            float64           `json:"amount"`
		DueDate           time.Time         `json:"dueDate"`
		PaidDate          *time.Time        `json:"paidDate,omitempty"`
		PaidAmount        *float64          `json:"paidAmount,omitempty"`
		Status            InstallmentStatus `json:"status"`
		CreatedAt         time.Time         `json:"createdAt"`
	}

	ConsumptionReading struct {
		ID              int64     `json:"id"`
		UtilityID       int64     `json:"utilityId"`
		ReadingDate     time.Time `json:"readingDate"`
		PreviousReading float64   `json:"previousReading"`
		CurrentReading  float64   `json:"currentReading"`
		Consumption     float64   `json:"consumption"`
		Unit            string    `json:"unit"`
		TotalAmount     float64   `json:"totalAmount"`
		CreatedAt       time.Time `json:"createdAt"`
	}

	PaymentNotification struct {
		ID        int64            `json:"id"`
		UtilityID int64            `json:"utilityId"`
		Type      NotificationType `json:"notificationType"`
		DueDate   time.Time        `json:"dueDate"`
		Message   string           `json:"message"`
		IsRead    bool             `json:"isRead"`
		CreatedAt time.Time        `json:"createdAt"`
	}
)

// CategoryColors is the fixed palette accepted for categories.
var CategoryColors = []string{"blue", "green", "purple", "red", "yellow", "indigo", "pink", "gray"}

// CategoryIcons is the fixed icon set accepted for categories.
var CategoryIcons = []string{"Zap", "Settings", "TrendingUp", "CreditCard", "Play", "Palette"}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name cannot be empty", ErrInvalidArgument)
	}
	if !contains(CategoryColors, c.Color) {
		return fmt.Errorf("%w: unknown color %q", ErrInvalidArgument, c.Color)
	}
	if !contains(CategoryIcons, c.Icon) {
		return fmt.Errorf("%w: unknown icon %q", ErrInvalidArgument, c.Icon)
	}
	return nil
}

func (t UtilityType) Valid() bool {
	switch t {
	case UtilitySimple, UtilityInstallment, UtilityBankInstallment, UtilityConsumption, UtilityAnnualPayment:
		return true
	}
	return false
}

func (u Utility) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: utility name cannot be empty", ErrInvalidArgument)
	}
	if !u.Type.Valid() {
		return fmt.Errorf("%w: unknown utility type %q", ErrInvalidArgument, u.Type)
	}
	if u.Config != nil {
		if err := u.Config.Validate(); err != nil {
			return err
		}
		if u.Config.AppliesTo() != u.Type {
			return fmt.Errorf("%w: config applies to %q, utility is %q",
				ErrInvalidArgument, u.Config.AppliesTo(), u.Type)
		}
	}
	return nil
}

func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", ErrInvalidArgument, t.Type)
	}
	if t.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: transaction date is required", ErrInvalidArgument)
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
