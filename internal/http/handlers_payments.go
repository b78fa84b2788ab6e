package http

import (
	"net/http"
	"time"

	"facturi/internal/core"
	"facturi/internal/services"
)

type transactionRequest struct {
	UtilityID   int64   `json:"utilityId"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.payments.CreateTransaction(r.Context(), core.Transaction{
		UtilityID:   req.UtilityID,
		Type:        core.TransactionType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.reports.Invalidate()
	writeJSON(w, http.StatusCreated, created)
}

type installmentPlanRequest struct {
	UtilityID   int64   `json:"utilityId"`
	TotalAmount float64 `json:"totalAmount"`
	Count       int     `json:"installmentCount"`
	StartDate   string  `json:"startDate"`
}

func (s *Server) handleCreateInstallmentPlan(w http.ResponseWriter, r *http.Request) {
	var req installmentPlanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	startDate, err := parseDate("startDate", req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	plan, err := s.payments.CreateInstallmentPlan(r.Context(), services.CreateInstallmentPlanParams{
		UtilityID:   req.UtilityID,
		TotalAmount: req.TotalAmount,
		Count:       req.Count,
		StartDate:   startDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"installments": plan})
}

type payInstallmentRequest struct {
	PaidDate    string  `json:"paidDate"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

func (s *Server) handlePayInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req payInstallmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var paidDate time.Time
	if req.PaidDate != "" {
		paidDate, err = parseDate("paidDate", req.PaidDate)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	paid, err := s.payments.PayInstallment(r.Context(), services.PayInstallmentParams{
		InstallmentID: id,
		PaidDate:      paidDate,
		Amount:        req.Amount,
		Description:   req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.reports.Invalidate()
	writeJSON(w, http.StatusOK, paid)
}

// installmentsWithTotals pairs a schedule with its payment progress.
type installmentsWithTotals struct {
	Installments   []core.Installment `json:"installments"`
	TotalPaid      float64            `json:"totalPaid"`
	TotalRemaining float64            `json:"totalRemaining"`
}

func (s *Server) handleListInstallments(w http.ResponseWriter, r *http.Request) {
	utilityID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := s.repo.GetUtility(r.Context(), utilityID); err != nil {
		writeError(w, r, err)
		return
	}

	installments, err := s.repo.ListInstallmentsByUtility(r.Context(), utilityID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if installments == nil {
		installments = []core.Installment{}
	}

	var paid, remaining float64
	for _, inst := range installments {
		if inst.Status == core.InstallmentPaid && inst.PaidAmount != nil {
			paid += *inst.PaidAmount
		} else if inst.Status != core.InstallmentPaid {
			remaining += inst.Amount
		}
	}

	writeJSON(w, http.StatusOK, installmentsWithTotals{
		Installments:   installments,
		TotalPaid:      paid,
		TotalRemaining: remaining,
	})
}

type annualPaymentRequest struct {
	UtilityID   int64   `json:"utilityId"`
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"paymentDate"`
	YearsValid  int     `json:"yearsValid"`
	Description string  `json:"description"`
}

func (s *Server) handleCreateAnnualPayment(w http.ResponseWriter, r *http.Request) {
	var req annualPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	paymentDate, err := parseDate("paymentDate", req.PaymentDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.payments.CreateAnnualPayment(r.Context(), services.AnnualPaymentParams{
		UtilityID:   req.UtilityID,
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		YearsValid:  req.YearsValid,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.reports.Invalidate()
	writeJSON(w, http.StatusCreated, created)
}

type readingRequest struct {
	UtilityID       int64   `json:"utilityId"`
	ReadingDate     string  `json:"readingDate"`
	PreviousReading float64 `json:"previousReading"`
	CurrentReading  float64 `json:"currentReading"`
	TotalAmount     float64 `json:"totalAmount"`
	Unit            string  `json:"unit"`
}

func (s *Server) handleCreateReading(w http.ResponseWriter, r *http.Request) {
	var req readingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	readingDate, err := parseDate("readingDate", req.ReadingDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := s.payments.RecordConsumption(r.Context(), services.RecordConsumptionParams{
		UtilityID:       req.UtilityID,
		ReadingDate:     readingDate,
		PreviousReading: req.PreviousReading,
		CurrentReading:  req.CurrentReading,
		TotalAmount:     req.TotalAmount,
		Unit:            req.Unit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// readingsWithTotals pairs a utility's readings with usage aggregates.
type readingsWithTotals struct {
	Readings         []core.ConsumptionReading `json:"readings"`
	TotalConsumption float64                   `json:"totalConsumption"`
	LastReading      *core.ConsumptionReading  `json:"lastReading,omitempty"`
}

func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	utilityID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := s.repo.GetUtility(r.Context(), utilityID); err != nil {
		writeError(w, r, err)
		return
	}

	readings, err := s.repo.ListConsumptionReadingsByUtility(r.Context(), utilityID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if readings == nil {
		readings = []core.ConsumptionReading{}
	}

	var total float64
	for _, reading := range readings {
		total += reading.Consumption
	}

	resp := readingsWithTotals{
		Readings:         readings,
		TotalConsumption: total,
	}
	// Readings are listed newest first.
	if len(readings) > 0 {
		resp.LastReading = &readings[0]
	}
	writeJSON(w, http.StatusOK, resp)
}
