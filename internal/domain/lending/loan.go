package lending

import (
	"time"

	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InterestType represents how interest accrues on a loan
type InterestType string

const (
	InterestTypeSimple   InterestType = "SIMPLE"
	InterestTypeCompound InterestType = "COMPOUND"
)

// IsValid checks if the interest type is valid
func (t InterestType) IsValid() bool {
	return t == InterestTypeSimple || t == InterestTypeCompound
}

// String returns the string representation of InterestType
func (t InterestType) String() string {
	return string(t)
}

// PaymentFrequency represents how often installments fall due
type PaymentFrequency string

const (
	FrequencyWeekly   PaymentFrequency = "WEEKLY"
	FrequencyBiweekly PaymentFrequency = "BIWEEKLY"
	FrequencyMonthly  PaymentFrequency = "MONTHLY"
)

// IsValid checks if the frequency is valid
func (f PaymentFrequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// String returns the string representation of PaymentFrequency
func (f PaymentFrequency) String() string {
	return string(f)
}

// PeriodsPerYear returns how many payment periods the frequency has in a year
func (f PaymentFrequency) PeriodsPerYear() int64 {
	switch f {
	case FrequencyWeekly:
		return 52
	case FrequencyBiweekly:
		return 26
	default:
		return 12
	}
}

// Next steps a date forward by one payment period
func (f PaymentFrequency) Next(date time.Time) time.Time {
	switch f {
	case FrequencyWeekly:
		return date.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		return date.AddDate(0, 0, 14)
	default:
		return date.AddDate(0, 1, 0)
	}
}

// LoanStatus represents the lifecycle state of a loan
type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusCompleted LoanStatus = "COMPLETED"
	LoanStatusDefaulted LoanStatus = "DEFAULTED"
)

// IsValid checks if the status is a valid LoanStatus
func (s LoanStatus) IsValid() bool {
	switch s {
	case LoanStatusActive, LoanStatusCompleted, LoanStatusDefaulted:
		return true
	}
	return false
}

// String returns the string representation of LoanStatus
func (s LoanStatus) String() string {
	return string(s)
}

// BorrowerType represents the legal nature of a borrower
type BorrowerType string

const (
	BorrowerTypePerson  BorrowerType = "PERSON"
	BorrowerTypeCompany BorrowerType = "COMPANY"
)

// IsValid checks if the borrower type is valid
func (b BorrowerType) IsValid() bool {
	return b == BorrowerTypePerson || b == BorrowerTypeCompany
}

// Terms bundles the parameters that drive amortization for a loan.
// Regeneration overrides produce a modified Terms without touching the loan.
type Terms struct {
	AnnualRatePct decimal.Decimal
	InterestType  InterestType
	Frequency     PaymentFrequency
}

// Loan is the aggregate root for a loan and its installment schedule.
// Schedule rows are exclusively owned by the loan; they are only created in
// bulk by schedule generation and replaced in bulk by regeneration.
type Loan struct {
	shared.BaseAggregateRoot
	LoanNumber       string
	BorrowerName     string
	BorrowerType     BorrowerType
	PrincipalAmount  decimal.Decimal
	AnnualRatePct    decimal.Decimal
	InterestType     InterestType
	Frequency        PaymentFrequency
	StartDate        time.Time
	InstallmentCount int
	Status           LoanStatus
}

// NewLoan creates a new loan in ACTIVE status
func NewLoan(
	loanNumber string,
	borrowerName string,
	borrowerType BorrowerType,
	principalAmount decimal.Decimal,
	annualRatePct decimal.Decimal,
	interestType InterestType,
	frequency PaymentFrequency,
	startDate time.Time,
	installmentCount int,
) (*Loan, error) {
	if loanNumber == "" {
		return nil, NewInvalidTermsError("Loan number cannot be empty")
	}
	if borrowerName == "" {
		return nil, NewInvalidTermsError("Borrower name cannot be empty")
	}
	if !borrowerType.IsValid() {
		return nil, NewInvalidTermsError("Borrower type is not valid")
	}
	if !principalAmount.IsPositive() {
		return nil, NewInvalidTermsError("Principal amount must be positive")
	}
	if annualRatePct.IsNegative() {
		return nil, NewInvalidTermsError("Interest rate cannot be negative")
	}
	if !interestType.IsValid() {
		return nil, NewInvalidTermsError("Interest type is not valid")
	}
	if !frequency.IsValid() {
		return nil, NewInvalidTermsError("Payment frequency is not valid")
	}
	if startDate.IsZero() {
		return nil, NewInvalidTermsError("Start date is required")
	}
	if installmentCount <= 0 {
		return nil, NewInvalidTermsError("Installment count must be positive")
	}

	loan := &Loan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LoanNumber:        loanNumber,
		BorrowerName:      borrowerName,
		BorrowerType:      borrowerType,
		PrincipalAmount:   principalAmount,
		AnnualRatePct:     annualRatePct,
		InterestType:      interestType,
		Frequency:         frequency,
		StartDate:         startDate,
		InstallmentCount:  installmentCount,
		Status:            LoanStatusActive,
	}

	loan.AddDomainEvent(NewLoanCreatedEvent(loan))

	return loan, nil
}

// Terms returns the loan's current amortization terms
func (l *Loan) Terms() Terms {
	return Terms{
		AnnualRatePct: l.AnnualRatePct,
		InterestType:  l.InterestType,
		Frequency:     l.Frequency,
	}
}

// IsActive returns true if the loan can accept payments and regeneration
func (l *Loan) IsActive() bool {
	return l.Status == LoanStatusActive
}

// MarkDefaulted transitions the loan to DEFAULTED. This is always an explicit
// operator action; the engine never defaults a loan automatically.
func (l *Loan) MarkDefaulted() error {
	if l.Status != LoanStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active loans can be defaulted")
	}
	l.Status = LoanStatusDefaulted
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	l.AddDomainEvent(NewLoanDefaultedEvent(l))
	return nil
}

// ApplyTermOverrides updates the loan's stored terms after a regeneration.
// Only supplied overrides are applied; the installment count follows the plan.
func (l *Loan) ApplyTermOverrides(overrides RegenerationOverrides, totalInstallments int) {
	if overrides.AnnualRatePct != nil {
		l.AnnualRatePct = *overrides.AnnualRatePct
	}
	if overrides.InterestType != nil {
		l.InterestType = *overrides.InterestType
	}
	if overrides.Frequency != nil {
		l.Frequency = *overrides.Frequency
	}
	l.InstallmentCount = totalInstallments
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
}
