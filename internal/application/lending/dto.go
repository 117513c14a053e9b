package lending

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinicore/backend/internal/domain/lending"
	"github.com/clinicore/backend/internal/domain/shared"
)

// CreateLoanRequest represents a request to originate a new loan
type CreateLoanRequest struct {
	BorrowerName     string          `json:"borrower_name" binding:"required,min=1,max=200"`
	BorrowerType     string          `json:"borrower_type" binding:"required,oneof=PERSON COMPANY"`
	PrincipalAmount  decimal.Decimal `json:"principal_amount" binding:"required"`
	AnnualRatePct    decimal.Decimal `json:"annual_rate_pct"`
	InterestType     string          `json:"interest_type" binding:"required,oneof=SIMPLE COMPOUND"`
	Frequency        string          `json:"frequency" binding:"required,oneof=WEEKLY BIWEEKLY MONTHLY"`
	StartDate        time.Time       `json:"start_date" binding:"required"`
	InstallmentCount int             `json:"installment_count" binding:"required,min=1,max=600"`
}

// RegenerateRequest represents a request to rebuild the open segment of a
// loan's schedule, optionally under new terms
type RegenerateRequest struct {
	EffectiveFromInstallment int              `json:"effective_from_installment" binding:"required,min=1"`
	AnnualRatePct            *decimal.Decimal `json:"annual_rate_pct"`
	InterestType             *string          `json:"interest_type" binding:"omitempty,oneof=SIMPLE COMPOUND"`
	Frequency                *string          `json:"frequency" binding:"omitempty,oneof=WEEKLY BIWEEKLY MONTHLY"`
	InstallmentCount         *int             `json:"installment_count" binding:"omitempty,min=1,max=600"`
}

// RegisterPaymentRequest links a ledger transaction to an installment
type RegisterPaymentRequest struct {
	TransactionID uuid.UUID       `json:"transaction_id" binding:"required"`
	PaidAmount    decimal.Decimal `json:"paid_amount" binding:"required"`
	PaidDate      time.Time       `json:"paid_date" binding:"required"`
}

// LoanListFilter represents filter options for the loan list
type LoanListFilter struct {
	Search       string `form:"search"`
	Status       string `form:"status" binding:"omitempty,oneof=ACTIVE COMPLETED DEFAULTED"`
	BorrowerType string `form:"borrower_type" binding:"omitempty,oneof=PERSON COMPANY"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ScheduleResponse represents one installment row in API responses
type ScheduleResponse struct {
	ID                uuid.UUID        `json:"id"`
	LoanID            uuid.UUID        `json:"loan_id"`
	InstallmentNumber int              `json:"installment_number"`
	DueDate           time.Time        `json:"due_date"`
	ExpectedPrincipal decimal.Decimal  `json:"expected_principal"`
	ExpectedInterest  decimal.Decimal  `json:"expected_interest"`
	ExpectedAmount    decimal.Decimal  `json:"expected_amount"`
	Status            string           `json:"status"`
	PaidAmount        *decimal.Decimal `json:"paid_amount,omitempty"`
	PaidDate          *time.Time       `json:"paid_date,omitempty"`
	TransactionID     *uuid.UUID       `json:"transaction_id,omitempty"`
}

// SummaryResponse represents the derived payment totals of a loan
type SummaryResponse struct {
	PaidInstallments    int             `json:"paid_installments"`
	PendingInstallments int             `json:"pending_installments"`
	TotalExpected       decimal.Decimal `json:"total_expected"`
	TotalPaid           decimal.Decimal `json:"total_paid"`
	RemainingAmount     decimal.Decimal `json:"remaining_amount"`
}

// LoanResponse represents a loan with its schedule and summary
type LoanResponse struct {
	ID               uuid.UUID          `json:"id"`
	LoanNumber       string             `json:"loan_number"`
	BorrowerName     string             `json:"borrower_name"`
	BorrowerType     string             `json:"borrower_type"`
	PrincipalAmount  decimal.Decimal    `json:"principal_amount"`
	AnnualRatePct    decimal.Decimal    `json:"annual_rate_pct"`
	InterestType     string             `json:"interest_type"`
	Frequency        string             `json:"frequency"`
	StartDate        time.Time          `json:"start_date"`
	InstallmentCount int                `json:"installment_count"`
	Status           string             `json:"status"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	Version          int                `json:"version"`
	Schedules        []ScheduleResponse `json:"schedules,omitempty"`
	Summary          *SummaryResponse   `json:"summary,omitempty"`
}

// LoanListItemResponse represents a loan in list responses
type LoanListItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	LoanNumber       string          `json:"loan_number"`
	BorrowerName     string          `json:"borrower_name"`
	BorrowerType     string          `json:"borrower_type"`
	PrincipalAmount  decimal.Decimal `json:"principal_amount"`
	AnnualRatePct    decimal.Decimal `json:"annual_rate_pct"`
	InterestType     string          `json:"interest_type"`
	Frequency        string          `json:"frequency"`
	StartDate        time.Time       `json:"start_date"`
	InstallmentCount int             `json:"installment_count"`
	Status           string          `json:"status"`
	Summary          SummaryResponse `json:"summary"`
}

// ToScheduleResponse converts a domain LoanSchedule to ScheduleResponse
func ToScheduleResponse(s *lending.LoanSchedule) ScheduleResponse {
	return ScheduleResponse{
		ID:                s.ID,
		LoanID:            s.LoanID,
		InstallmentNumber: s.InstallmentNumber,
		DueDate:           s.DueDate,
		ExpectedPrincipal: s.ExpectedPrincipal,
		ExpectedInterest:  s.ExpectedInterest,
		ExpectedAmount:    s.ExpectedAmount,
		Status:            string(s.Status),
		PaidAmount:        s.PaidAmount,
		PaidDate:          s.PaidDate,
		TransactionID:     s.TransactionID,
	}
}

// ToScheduleResponses converts schedule rows ordered by installment number
func ToScheduleResponses(schedules []*lending.LoanSchedule) []ScheduleResponse {
	out := make([]ScheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, ToScheduleResponse(s))
	}
	return out
}

// ToSummaryResponse converts a domain LoanSummary to SummaryResponse
func ToSummaryResponse(s lending.LoanSummary) SummaryResponse {
	return SummaryResponse{
		PaidInstallments:    s.PaidInstallments,
		PendingInstallments: s.PendingInstallments,
		TotalExpected:       s.TotalExpected,
		TotalPaid:           s.TotalPaid,
		RemainingAmount:     s.RemainingAmount,
	}
}

// ToLoanResponse converts a domain Loan to LoanResponse without schedules
func ToLoanResponse(l *lending.Loan) LoanResponse {
	return LoanResponse{
		ID:               l.ID,
		LoanNumber:       l.LoanNumber,
		BorrowerName:     l.BorrowerName,
		BorrowerType:     string(l.BorrowerType),
		PrincipalAmount:  l.PrincipalAmount,
		AnnualRatePct:    l.AnnualRatePct,
		InterestType:     string(l.InterestType),
		Frequency:        string(l.Frequency),
		StartDate:        l.StartDate,
		InstallmentCount: l.InstallmentCount,
		Status:           string(l.Status),
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
		Version:          l.Version,
	}
}

// ToLoanDetailResponse converts a loan with its schedules and summary
func ToLoanDetailResponse(l *lending.Loan, schedules []*lending.LoanSchedule, summary lending.LoanSummary) LoanResponse {
	resp := ToLoanResponse(l)
	resp.Schedules = ToScheduleResponses(schedules)
	s := ToSummaryResponse(summary)
	resp.Summary = &s
	return resp
}

// ToLoanListItemResponse converts a loan and its summary to a list item
func ToLoanListItemResponse(l *lending.Loan, summary lending.LoanSummary) LoanListItemResponse {
	return LoanListItemResponse{
		ID:               l.ID,
		LoanNumber:       l.LoanNumber,
		BorrowerName:     l.BorrowerName,
		BorrowerType:     string(l.BorrowerType),
		PrincipalAmount:  l.PrincipalAmount,
		AnnualRatePct:    l.AnnualRatePct,
		InterestType:     string(l.InterestType),
		Frequency:        string(l.Frequency),
		StartDate:        l.StartDate,
		InstallmentCount: l.InstallmentCount,
		Status:           string(l.Status),
		Summary:          ToSummaryResponse(summary),
	}
}

// ToDomainFilter converts the transport filter to the repository filter
func (f LoanListFilter) ToDomainFilter() lending.LoanFilter {
	base := shared.DefaultFilter()
	if f.Page > 0 {
		base.Page = f.Page
	}
	if f.PageSize > 0 {
		base.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		base.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		base.OrderDir = f.OrderDir
	}
	base.Search = f.Search

	filter := lending.LoanFilter{Filter: base}
	if f.Status != "" {
		status := lending.LoanStatus(f.Status)
		filter.Status = &status
	}
	if f.BorrowerType != "" {
		bt := lending.BorrowerType(f.BorrowerType)
		filter.BorrowerType = &bt
	}
	return filter
}
