package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"facturi/internal/core"
	"facturi/internal/storage"
)

// TransactionPublisher queues created transactions for ledger export.
type TransactionPublisher interface {
	PublishTransactionSync(ctx context.Context, id, version int64) error
}

// PaymentService orchestrates payment operations across SQLite and AMQP.
// The clock is injected so the renewal notification gate is testable.
type PaymentService struct {
	storage   *storage.SQLiteRepository
	publisher TransactionPublisher
	now       func() time.Time
}

func NewPaymentService(storage *storage.SQLiteRepository, publisher TransactionPublisher) *PaymentService {
	return &PaymentService{
		storage:   storage,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock overrides the service clock.
func (s *PaymentService) WithClock(now func() time.Time) *PaymentService {
	s.now = now
	return s
}

// CreateTransaction saves a transaction locally and publishes a sync
// message. Publish failures don't fail the request, the worker's pending
// scan picks the row up later.
func (s *PaymentService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publishSync(ctx, created.ID)
	return created, nil
}

// CreateInstallmentPlanParams describe a new payment schedule.
type CreateInstallmentPlanParams struct {
	UtilityID   int64
	TotalAmount float64
	Count       int
	StartDate   time.Time
}

// CreateInstallmentPlan builds and persists a schedule for an installment
// or bank installment utility. All rows commit together.
func (s *PaymentService) CreateInstallmentPlan(ctx context.Context, p CreateInstallmentPlanParams) ([]core.Installment, error) {
	utility, err := s.storage.GetUtility(ctx, p.UtilityID)
	if err != nil {
		return nil, err
	}

	plan, err := core.BuildSchedule(utility, p.TotalAmount, p.Count, p.StartDate)
	if err != nil {
		return nil, err
	}

	saved, err := s.storage.CreateInstallmentPlan(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("save installment plan: %w", err)
	}
	return saved, nil
}

// PayInstallmentParams describe one installment payment. Zero values fall
// back to the schedule: PaidDate to today, Amount to the scheduled amount,
// Description to the numbered installment label.
type PayInstallmentParams struct {
	InstallmentID int64
	PaidDate      time.Time
	Amount        float64
	Description   string
}

// PayInstallment marks the installment paid and records the matching
// expense transaction. Paying more or less than scheduled is allowed.
func (s *PaymentService) PayInstallment(ctx context.Context, p PayInstallmentParams) (core.Installment, error) {
	inst, err := s.storage.GetInstallment(ctx, p.InstallmentID)
	if err != nil {
		return core.Installment{}, err
	}
	if inst.Status == core.InstallmentPaid {
		return core.Installment{}, fmt.Errorf("%w: installment %d already paid", core.ErrInvalidArgument, p.InstallmentID)
	}

	paidDate := p.PaidDate
	if paidDate.IsZero() {
		paidDate = s.now()
	}
	amount := p.Amount
	if amount < 0 {
		return core.Installment{}, fmt.Errorf("%w: payment amount cannot be negative", core.ErrInvalidArgument)
	}
	if amount == 0 {
		amount = inst.Amount
	}
	description := p.Description
	if description == "" {
		description = core.InstallmentDescription(inst.InstallmentNumber, inst.TotalInstallments)
	}

	paid, err := s.storage.PayInstallment(ctx, storage.PayInstallmentParams{
		InstallmentID: p.InstallmentID,
		PaidDate:      paidDate.Format("2006-01-02"),
		PaidAmount:    amount,
		Description:   description,
	})
	if err != nil {
		return core.Installment{}, err
	}
	return paid, nil
}

// AnnualPaymentParams describe a yearly payment for an annual utility.
type AnnualPaymentParams struct {
	UtilityID   int64
	Amount      float64
	PaymentDate time.Time
	YearsValid  int
	Description string
}

// CreateAnnualPayment records the expense and schedules a renewal reminder
// 30 days ahead of the next due date, unless that reminder date has
// already passed.
func (s *PaymentService) CreateAnnualPayment(ctx context.Context, p AnnualPaymentParams) (core.Transaction, error) {
	utility, err := s.storage.GetUtility(ctx, p.UtilityID)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := core.Permit(utility.Type, core.OpAnnualPayment); err != nil {
		return core.Transaction{}, err
	}
	if p.Amount <= 0 {
		return core.Transaction{}, fmt.Errorf("%w: amount must be positive", core.ErrInvalidArgument)
	}
	if p.YearsValid <= 0 {
		return core.Transaction{}, fmt.Errorf("%w: years valid must be positive", core.ErrInvalidArgument)
	}
	if p.PaymentDate.IsZero() {
		return core.Transaction{}, fmt.Errorf("%w: payment date is required", core.ErrInvalidArgument)
	}

	renewal, err := core.PlanRenewal(p.PaymentDate, p.YearsValid)
	if err != nil {
		return core.Transaction{}, err
	}
	description := p.Description
	if description == "" {
		description = core.AnnualPaymentDescription(utility.Name, p.YearsValid)
	}

	created, err := s.storage.CreateAnnualPayment(ctx, storage.AnnualPaymentParams{
		UtilityID:   p.UtilityID,
		Amount:      p.Amount,
		Description: description,
		PaymentDate: p.PaymentDate.Format("2006-01-02"),
		DueDate:     renewal.NextDueDate.Format("2006-01-02"),
		Message:     renewal.Message(utility.Name),
		Notify:      renewal.ShouldNotify(s.now()),
	})
	if err != nil {
		return core.Transaction{}, err
	}

	s.publishSync(ctx, created.ID)
	return created, nil
}

// RecordConsumptionParams describe a new meter reading.
type RecordConsumptionParams struct {
	UtilityID       int64
	ReadingDate     time.Time
	PreviousReading float64
	CurrentReading  float64
	TotalAmount     float64
	Unit            string
}

// RecordConsumption stores a meter reading for a consumption utility.
// Readings are independent of each other, the previous value is whatever
// the caller says it is.
func (s *PaymentService) RecordConsumption(ctx context.Context, p RecordConsumptionParams) (core.ConsumptionReading, error) {
	utility, err := s.storage.GetUtility(ctx, p.UtilityID)
	if err != nil {
		return core.ConsumptionReading{}, err
	}
	if err := core.Permit(utility.Type, core.OpConsumptionReading); err != nil {
		return core.ConsumptionReading{}, err
	}

	reading, err := core.NewReading(p.UtilityID, p.ReadingDate, p.PreviousReading, p.CurrentReading, p.TotalAmount, p.Unit)
	if err != nil {
		return core.ConsumptionReading{}, err
	}

	saved, err := s.storage.CreateConsumptionReading(ctx, reading)
	if err != nil {
		return core.ConsumptionReading{}, fmt.Errorf("save consumption reading: %w", err)
	}
	return saved, nil
}

// UnreadNotifications lists unread notifications that are still relevant,
// soonest due date first.
func (s *PaymentService) UnreadNotifications(ctx context.Context) ([]core.PaymentNotification, error) {
	return s.storage.ListUnreadNotifications(ctx, s.now().Format("2006-01-02"))
}

func (s *PaymentService) MarkNotificationRead(ctx context.Context, id int64) error {
	return s.storage.MarkNotificationRead(ctx, id)
}

func (s *PaymentService) publishSync(ctx context.Context, id int64) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP publisher not available, skipping sync message")
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
	}
}
