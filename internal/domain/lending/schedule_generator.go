package lending

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScheduleGenerator turns amortization amounts into installment rows with due
// dates. It never persists anything; callers insert the returned rows as one
// atomic batch.
type ScheduleGenerator struct{}

// NewScheduleGenerator creates a new ScheduleGenerator
func NewScheduleGenerator() *ScheduleGenerator {
	return &ScheduleGenerator{}
}

// Generate builds installment rows numbered fromInstallment onward.
//
// openingPrincipal is the principal outstanding at fromInstallment: the full
// principal for a fresh schedule, or the unamortized remainder when rebuilding
// a tail, so partial regeneration is a sub-amortization over the unpaid
// balance. afterDate is the date one period before the first generated row's
// due date: the loan start date for a fresh schedule, or the due date
// preceding fromInstallment when regenerating.
func (g *ScheduleGenerator) Generate(
	loanID uuid.UUID,
	terms Terms,
	openingPrincipal decimal.Decimal,
	fromInstallment int,
	installmentCount int,
	afterDate time.Time,
) ([]*LoanSchedule, error) {
	if fromInstallment < 1 {
		return nil, NewInvalidTermsError("First installment number must be at least 1")
	}

	amounts, err := ComputeInstallments(
		openingPrincipal,
		terms.AnnualRatePct,
		terms.InterestType,
		terms.Frequency,
		installmentCount,
	)
	if err != nil {
		return nil, err
	}

	rows := make([]*LoanSchedule, 0, installmentCount)
	dueDate := afterDate
	for i, amount := range amounts {
		dueDate = terms.Frequency.Next(dueDate)
		rows = append(rows, NewLoanSchedule(loanID, fromInstallment+i, dueDate, amount))
	}

	return rows, nil
}

// GenerateForLoan builds the initial full schedule for a newly created loan
func (g *ScheduleGenerator) GenerateForLoan(loan *Loan) ([]*LoanSchedule, error) {
	return g.Generate(
		loan.ID,
		loan.Terms(),
		loan.PrincipalAmount,
		1,
		loan.InstallmentCount,
		loan.StartDate,
	)
}
