package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"facturi/internal/core"
	"facturi/internal/storage"
)

type fakePublisher struct {
	published []int64
	err       error
}

func (f *fakePublisher) PublishTransactionSync(_ context.Context, id, _ int64) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, id)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestService(t *testing.T) (*PaymentService, *storage.SQLiteRepository, *fakePublisher) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	publisher := &fakePublisher{}
	svc := NewPaymentService(repo, publisher).
		WithClock(fixedClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)))
	return svc, repo, publisher
}

func seedUtility(t *testing.T, repo *storage.SQLiteRepository, utype core.UtilityType, cfg core.UtilityConfig) core.Utility {
	t.Helper()
	ctx := context.Background()
	cat, err := repo.CreateCategory(ctx, core.Category{Name: "Utilități", Color: "blue", Icon: "Zap"})
	require.NoError(t, err)
	util, err := repo.CreateUtility(ctx, core.Utility{
		CategoryID: cat.ID, Name: "Enel", Type: utype, Config: cfg,
	})
	require.NoError(t, err)
	return util
}

func TestCreateTransactionPublishesSync(t *testing.T) {
	svc, repo, publisher := newTestService(t)
	ctx := context.Background()
	util := seedUtility(t, repo, core.UtilitySimple, nil)

	created, err := svc.CreateTransaction(ctx, core.Transaction{
		UtilityID: util.ID, Type: core.TransactionExpense,
		Amount: 99.9, Date: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, []int64{created.ID}, publisher.published)
}

func TestCreateTransactionPublishFailureIsNonFatal(t *testing.T) {
	svc, repo, publisher := newTestService(t)
	ctx := context.Background()
	util := seedUtility(t, repo, core.UtilitySimple, nil)
	publisher.err = context.DeadlineExceeded

	_, err := svc.CreateTransaction(ctx, core.Transaction{
		UtilityID: util.ID, Type: core.TransactionIncome,
		Amount: 10, Date: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func TestCreateTransactionValidation(t *testing.T) {
	svc, repo, _ := newTestService(t)
	util := seedUtility(t, repo, core.UtilitySimple, nil)

	_, err := svc.CreateTransaction(context.Background(), core.Transaction{
		UtilityID: util.ID, Type: core.TransactionExpense,
		Amount: -5, Date: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestCreateInstallmentPlanBank(t *testing.T) {
	svc, repo, _ := newTestService(t)
	util := seedUtility(t, repo, core.UtilityBankInstallment, nil)

	plan, err := svc.CreateInstallmentPlan(context.Background(), CreateInstallmentPlanParams{
		UtilityID:   util.ID,
		TotalAmount: 300,
		Count:       3,
		StartDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, plan, 3)
	require.Equal(t, 100.0, plan[0].Amount)
	require.Equal(t, "2024-01-15", plan[0].DueDate.Format("2006-01-02"))
	require.Equal(t, "2024-02-15", plan[1].DueDate.Format("2006-01-02"))
	require.Equal(t, "2024-03-15", plan[2].DueDate.Format("2006-01-02"))
}

func TestCreateInstallmentPlanUsesConfiguredFrequency(t *testing.T) {
	svc, repo, _ := newTestService(t)
	util := seedUtility(t, repo, core.UtilityInstallment, core.InstallmentConfig{FrequencyMonths: 6})

	plan, err := svc.CreateInstallmentPlan(context.Background(), CreateInstallmentPlanParams{
		UtilityID:   util.ID,
		TotalAmount: 200,
		Count:       2,
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, "2024-07-01", plan[1].DueDate.Format("2006-01-02"))
}

func TestCreateInstallmentPlanRejectsWrongType(t *testing.T) {
	svc, repo, _ := newTestService(t)
	util := seedUtility(t, repo, core.UtilitySimple, nil)

	_, err := svc.CreateInstallmentPlan(context.Background(), CreateInstallmentPlanParams{
		UtilityID: util.ID, TotalAmount: 100, Count: 2,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestPayInstallmentDefaults(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	util := seedUtility(t, repo, core.UtilityBankInstallment, nil)

	plan, err := svc.CreateInstallmentPlan(ctx, CreateInstallmentPlanParams{
		UtilityID: util.ID, TotalAmount: 300, Count: 3,
		StartDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	paid, err := svc.PayInstallment(ctx, PayInstallmentParams{InstallmentID: plan[0].ID})
	require.NoError(t, err)
	require.Equal(t, core.InstallmentPaid, paid.Status)
	require.NotNil(t, paid.PaidDate)
	require.Equal(t, "2024-06-01", paid.PaidDate.Format("2006-01-02"))
	require.NotNil(t, paid.PaidAmount)
	require.Equal(t, 100.0, *paid.PaidAmount)

	txs, err := repo.ListTransactionsByUtility(ctx, util.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, "Rată 1/3", txs[0].Description)

	// Second payment attempt is rejected, no duplicate transaction.
	_, err = svc.PayInstallment(ctx, PayInstallmentParams{InstallmentID: plan[0].ID})
	require.ErrorIs(t, err, core.ErrInvalidArgument)

	txs, err = repo.ListTransactionsByUtility(ctx, util.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
}

func TestPayInstallmentDifferentAmountAllowed(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	util := seedUtility(t, repo, core.UtilityBankInstallment, nil)

	plan, err := svc.CreateInstallmentPlan(ctx, CreateInstallmentPlanParams{
		UtilityID: util.ID, TotalAmount: 100, Count: 2,
		StartDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	paid, err := svc.PayInstallment(ctx, PayInstallmentParams{
		InstallmentID: plan[0].ID,
		Amount:        42.5,
	})
	require.NoError(t, err)
	require.Equal(t, 42.5, *paid.PaidAmount)
}

func TestCreateAnnualPaymentWithReminder(t *testing.T) {
	svc, repo, publisher := newTestService(t)
	ctx := context.Background()
	util := seedUtility(t, repo, core.UtilityAnnualPayment, nil)

	created, err := svc.CreateAnnualPayment(ctx, AnnualPaymentParams{
		UtilityID:   util.ID,
		Amount:      350,
		PaymentDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		YearsValid:  1,
	})
	require.NoError(t, err)
	require.Equal(t, "Enel - 1 an", created.Description)
	require.Equal(t, []int64{created.ID}, publisher.published)

	unread, err := svc.UnreadNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	require.Equal(t, "2025-05-01", unread[0].DueDate.Format("2006-01-02"))
	require.Equal(t, "Plata pentru Enel expiră pe 01.05.2025", unread[0].Message)

	require.NoError(t, svc.MarkNotificationRead(ctx, unread[0].ID))
	unread, err = svc.UnreadNotifications(ctx)
	require.NoError(t, err)
	require.Empty(t, unread)
}

func TestCreateAnnualPaymentSkipsPastReminder(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	util := seedUtility(t, repo, core.UtilityAnnualPayment, nil)

	// Renewal due 2023-07-01, reminder date 2023-06-01 is before the
	// clock (2024-06-01), so no notification is created.
	_, err := svc.CreateAnnualPayment(ctx, AnnualPaymentParams{
		UtilityID:   util.ID,
		Amount:      100,
		PaymentDate: time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC),
		YearsValid:  1,
	})
	require.NoError(t, err)

	unread, err := svc.UnreadNotifications(ctx)
	require.NoError(t, err)
	require.Empty(t, unread)
}

func TestCreateAnnualPaymentRejectsWrongType(t *testing.T) {
	svc, repo, _ := newTestService(t)
	util := seedUtility(t, repo, core.UtilityConsumption, nil)

	_, err := svc.CreateAnnualPayment(context.Background(), AnnualPaymentParams{
		UtilityID: util.ID, Amount: 100,
		PaymentDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		YearsValid:  1,
	})
	require.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestCreateAnnualPaymentComputesRenewal(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	util := seedUtility(t, repo, core.UtilityAnnualPayment, nil)

	// A multi-year validity pushes the due date the same number of
	// years ahead.
	_, err := svc.CreateAnnualPayment(ctx, AnnualPaymentParams{
		UtilityID:   util.ID,
		Amount:      500,
		PaymentDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		YearsValid:  3,
	})
	require.NoError(t, err)

	unread, err := svc.UnreadNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	require.Equal(t, "2027-05-01", unread[0].DueDate.Format("2006-01-02"))

	_, err = svc.CreateAnnualPayment(ctx, AnnualPaymentParams{
		UtilityID: util.ID, Amount: 500,
		PaymentDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		YearsValid:  0,
	})
	require.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestRecordConsumption(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	util := seedUtility(t, repo, core.UtilityConsumption, nil)

	saved, err := svc.RecordConsumption(ctx, RecordConsumptionParams{
		UtilityID:       util.ID,
		ReadingDate:     time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC),
		PreviousReading: 1200,
		CurrentReading:  1250,
		TotalAmount:     180,
	})
	require.NoError(t, err)
	require.Equal(t, 50.0, saved.Consumption)
	require.Equal(t, "unități", saved.Unit)

	// Readings don't create transactions.
	txs, err := repo.ListTransactionsByUtility(ctx, util.ID)
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestRecordConsumptionRejectsWrongType(t *testing.T) {
	svc, repo, _ := newTestService(t)
	util := seedUtility(t, repo, core.UtilitySimple, nil)

	_, err := svc.RecordConsumption(context.Background(), RecordConsumptionParams{
		UtilityID:       util.ID,
		ReadingDate:     time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC),
		PreviousReading: 10,
		CurrentReading:  20,
		TotalAmount:     5,
	})
	require.ErrorIs(t, err, core.ErrInvalidArgument)
}
