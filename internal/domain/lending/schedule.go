package lending

import (
	"fmt"
	"time"

	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScheduleStatus represents the lifecycle state of one installment
type ScheduleStatus string

const (
	ScheduleStatusPending ScheduleStatus = "PENDING"
	ScheduleStatusPartial ScheduleStatus = "PARTIAL"
	ScheduleStatusPaid    ScheduleStatus = "PAID"
	ScheduleStatusOverdue ScheduleStatus = "OVERDUE"
	ScheduleStatusSkipped ScheduleStatus = "SKIPPED"
)

// IsValid checks if the status is a valid ScheduleStatus
func (s ScheduleStatus) IsValid() bool {
	switch s {
	case ScheduleStatusPending, ScheduleStatusPartial, ScheduleStatusPaid,
		ScheduleStatusOverdue, ScheduleStatusSkipped:
		return true
	}
	return false
}

// String returns the string representation of ScheduleStatus
func (s ScheduleStatus) String() string {
	return string(s)
}

// IsSettled returns true when the installment carries paid history that
// regeneration must never rewrite.
func (s ScheduleStatus) IsSettled() bool {
	return s == ScheduleStatusPaid || s == ScheduleStatusPartial
}

// LoanSchedule is one installment row of a loan's amortization schedule.
// It is owned by its Loan: rows are created in bulk by schedule generation and
// only the payment fields and status are ever mutated in place.
type LoanSchedule struct {
	shared.BaseEntity
	LoanID            uuid.UUID
	InstallmentNumber int
	DueDate           time.Time
	ExpectedPrincipal decimal.Decimal
	ExpectedInterest  decimal.Decimal
	ExpectedAmount    decimal.Decimal
	Status            ScheduleStatus
	PaidAmount        *decimal.Decimal
	PaidDate          *time.Time
	TransactionID     *uuid.UUID
}

// NewLoanSchedule creates a PENDING installment row with null payment fields
func NewLoanSchedule(
	loanID uuid.UUID,
	installmentNumber int,
	dueDate time.Time,
	amounts InstallmentAmounts,
) *LoanSchedule {
	return &LoanSchedule{
		BaseEntity:        shared.NewBaseEntity(),
		LoanID:            loanID,
		InstallmentNumber: installmentNumber,
		DueDate:           dueDate,
		ExpectedPrincipal: amounts.Principal.Amount(),
		ExpectedInterest:  amounts.Interest.Amount(),
		ExpectedAmount:    amounts.Amount().Amount(),
		Status:            ScheduleStatusPending,
	}
}

// IsLinked returns true if a ledger transaction is attached to this row
func (s *LoanSchedule) IsLinked() bool {
	return s.TransactionID != nil
}

// RegisterPayment links a ledger transaction to the installment and derives
// the paid status from the amount. The transaction-level uniqueness check
// (one schedule row per transaction) is the caller's responsibility.
func (s *LoanSchedule) RegisterPayment(transactionID uuid.UUID, paidAmount decimal.Decimal, paidDate time.Time) error {
	if s.TransactionID != nil {
		return shared.NewDomainError(CodeScheduleAlreadyLinked,
			fmt.Sprintf("Installment %d already has a linked transaction", s.InstallmentNumber))
	}
	if transactionID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Transaction ID cannot be empty")
	}
	if !paidAmount.IsPositive() {
		return NewInvalidPaymentAmountError("Payment amount must be positive")
	}
	if paidDate.IsZero() {
		return NewInvalidPaymentAmountError("Payment date is required")
	}

	s.TransactionID = &transactionID
	s.PaidAmount = &paidAmount
	s.PaidDate = &paidDate

	if paidAmount.GreaterThanOrEqual(s.ExpectedAmount) {
		s.Status = ScheduleStatusPaid
	} else {
		s.Status = ScheduleStatusPartial
	}
	s.UpdatedAt = time.Now()

	return nil
}

// UnlinkPayment clears the payment fields and re-derives the date-based
// status. Unlinking an already-unlinked row is a no-op; the returned bool
// reports whether anything changed.
func (s *LoanSchedule) UnlinkPayment(today time.Time) bool {
	if s.TransactionID == nil && s.PaidAmount == nil && s.PaidDate == nil {
		return false
	}

	s.TransactionID = nil
	s.PaidAmount = nil
	s.PaidDate = nil
	s.Status = s.deriveUnpaidStatus(today)
	s.UpdatedAt = time.Now()

	return true
}

// MarkSkipped is an explicit operator override; it is never derived.
// A skipped row remains replaceable by regeneration while it is unpaid.
func (s *LoanSchedule) MarkSkipped() error {
	if s.Status.IsSettled() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Installment %d has payment history and cannot be skipped", s.InstallmentNumber))
	}
	s.Status = ScheduleStatusSkipped
	s.UpdatedAt = time.Now()
	return nil
}

// DeriveStatus recomputes the status from the payment fields and due date.
// SKIPPED is a manual terminal state and is preserved.
func (s *LoanSchedule) DeriveStatus(today time.Time) ScheduleStatus {
	if s.Status == ScheduleStatusSkipped {
		return ScheduleStatusSkipped
	}
	if s.PaidAmount != nil {
		if s.PaidAmount.GreaterThanOrEqual(s.ExpectedAmount) {
			return ScheduleStatusPaid
		}
		return ScheduleStatusPartial
	}
	return s.deriveUnpaidStatus(today)
}

// RefreshStatus applies DeriveStatus in place and reports whether it changed
func (s *LoanSchedule) RefreshStatus(today time.Time) bool {
	derived := s.DeriveStatus(today)
	if derived == s.Status {
		return false
	}
	s.Status = derived
	s.UpdatedAt = time.Now()
	return true
}

func (s *LoanSchedule) deriveUnpaidStatus(today time.Time) ScheduleStatus {
	if dateBefore(s.DueDate, today) {
		return ScheduleStatusOverdue
	}
	return ScheduleStatusPending
}

// dateBefore compares two instants at day granularity in UTC
func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	aDay := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bDay := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return aDay.Before(bDay)
}
