package lending

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinicore/backend/internal/domain/shared"
)

const (
	EventLoanCreated               = "lending.loan.created"
	EventLoanCompleted             = "lending.loan.completed"
	EventLoanDefaulted             = "lending.loan.defaulted"
	EventLoanScheduleRegenerated   = "lending.loan.schedule_regenerated"
	EventSchedulePaymentRegistered = "lending.schedule.payment_registered"
	EventSchedulePaymentUnlinked   = "lending.schedule.payment_unlinked"
)

// LoanCreatedEvent is raised when a loan and its initial schedule are created.
type LoanCreatedEvent struct {
	shared.BaseDomainEvent
	LoanNumber       string          `json:"loan_number"`
	BorrowerName     string          `json:"borrower_name"`
	PrincipalAmount  decimal.Decimal `json:"principal_amount"`
	InstallmentCount int             `json:"installment_count"`
}

func NewLoanCreatedEvent(loan *Loan) *LoanCreatedEvent {
	return &LoanCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventLoanCreated, "Loan", loan.ID),
		LoanNumber:       loan.LoanNumber,
		BorrowerName:     loan.BorrowerName,
		PrincipalAmount:  loan.PrincipalAmount,
		InstallmentCount: loan.InstallmentCount,
	}
}

// LoanCompletedEvent is raised when the last open installment is paid off.
type LoanCompletedEvent struct {
	shared.BaseDomainEvent
	LoanNumber string `json:"loan_number"`
}

func NewLoanCompletedEvent(loan *Loan) *LoanCompletedEvent {
	return &LoanCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventLoanCompleted, "Loan", loan.ID),
		LoanNumber:      loan.LoanNumber,
	}
}

// LoanDefaultedEvent is raised when an operator marks a loan defaulted.
type LoanDefaultedEvent struct {
	shared.BaseDomainEvent
	LoanNumber string `json:"loan_number"`
}

func NewLoanDefaultedEvent(loan *Loan) *LoanDefaultedEvent {
	return &LoanDefaultedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventLoanDefaulted, "Loan", loan.ID),
		LoanNumber:      loan.LoanNumber,
	}
}

// LoanScheduleRegeneratedEvent is raised after the open segment of a schedule
// has been replaced under new terms.
type LoanScheduleRegeneratedEvent struct {
	shared.BaseDomainEvent
	LoanNumber        string `json:"loan_number"`
	EffectiveFrom     int    `json:"effective_from"`
	ReplacedCount     int    `json:"replaced_count"`
	TotalInstallments int    `json:"total_installments"`
}

func NewLoanScheduleRegeneratedEvent(loanID uuid.UUID, loanNumber string, effectiveFrom, replaced, total int) *LoanScheduleRegeneratedEvent {
	return &LoanScheduleRegeneratedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventLoanScheduleRegenerated, "Loan", loanID),
		LoanNumber:        loanNumber,
		EffectiveFrom:     effectiveFrom,
		ReplacedCount:     replaced,
		TotalInstallments: total,
	}
}

// SchedulePaymentRegisteredEvent is raised when a bank transaction is linked
// to an installment.
type SchedulePaymentRegisteredEvent struct {
	shared.BaseDomainEvent
	LoanID            uuid.UUID       `json:"loan_id"`
	InstallmentNumber int             `json:"installment_number"`
	TransactionID     uuid.UUID       `json:"transaction_id"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	PaidDate          time.Time       `json:"paid_date"`
}

func NewSchedulePaymentRegisteredEvent(scheduleID, loanID uuid.UUID, installment int, txID uuid.UUID, amount decimal.Decimal, paidDate time.Time) *SchedulePaymentRegisteredEvent {
	return &SchedulePaymentRegisteredEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventSchedulePaymentRegistered, "LoanSchedule", scheduleID),
		LoanID:            loanID,
		InstallmentNumber: installment,
		TransactionID:     txID,
		PaidAmount:        amount,
		PaidDate:          paidDate,
	}
}

// SchedulePaymentUnlinkedEvent is raised when a previously linked transaction
// is detached from an installment.
type SchedulePaymentUnlinkedEvent struct {
	shared.BaseDomainEvent
	LoanID            uuid.UUID `json:"loan_id"`
	InstallmentNumber int       `json:"installment_number"`
}

func NewSchedulePaymentUnlinkedEvent(scheduleID, loanID uuid.UUID, installment int) *SchedulePaymentUnlinkedEvent {
	return &SchedulePaymentUnlinkedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventSchedulePaymentUnlinked, "LoanSchedule", scheduleID),
		LoanID:            loanID,
		InstallmentNumber: installment,
	}
}
