package lending

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegenerationOverrides carries the optional new terms for a schedule rebuild.
// Nil fields fall back to the loan's current values.
type RegenerationOverrides struct {
	AnnualRatePct    *decimal.Decimal
	InterestType     *InterestType
	Frequency        *PaymentFrequency
	InstallmentCount *int
}

// RegenerationPlan is the outcome of partitioning a schedule into the locked
// segment (settled history, never rewritten) and the open segment (rows to be
// replaced). The plan is computed against an in-memory snapshot; executing it
// must happen inside the same transaction that re-reads and locks the rows.
type RegenerationPlan struct {
	Locked             []*LoanSchedule
	OpenIDs            []uuid.UUID
	Numbers            []int
	RemainingPrincipal decimal.Decimal
	Terms              Terms
	AfterDate          time.Time
	TotalInstallments  int
}

// PlanRegeneration partitions the existing schedule rows for a loan.
//
// A row is locked when its installment number precedes effectiveFrom or when
// it carries payment history (PAID/PARTIAL), regardless of number. Everything
// else, including SKIPPED rows, is open and will be replaced. An open row
// that carries a transaction link means a payment raced the regeneration; the
// caller must retry after a fresh read.
func PlanRegeneration(
	loan *Loan,
	schedules []*LoanSchedule,
	overrides RegenerationOverrides,
	effectiveFrom int,
) (*RegenerationPlan, error) {
	if effectiveFrom < 1 {
		return nil, NewInvalidTermsError("Effective installment number must be at least 1")
	}

	sorted := make([]*LoanSchedule, len(schedules))
	copy(sorted, schedules)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].InstallmentNumber < sorted[j].InstallmentNumber
	})

	var (
		locked      []*LoanSchedule
		openIDs     []uuid.UUID
		openNumbers []int
		maxNumber   int
	)
	lockedDueDates := make(map[int]time.Time)
	lockedPrincipal := decimal.Zero

	for _, row := range sorted {
		if row.InstallmentNumber > maxNumber {
			maxNumber = row.InstallmentNumber
		}
		if row.InstallmentNumber < effectiveFrom || row.Status.IsSettled() {
			locked = append(locked, row)
			lockedDueDates[row.InstallmentNumber] = row.DueDate
			lockedPrincipal = lockedPrincipal.Add(row.ExpectedPrincipal)
			continue
		}
		if row.IsLinked() {
			return nil, NewRegenerationConflictError(fmt.Sprintf(
				"Installment %d was linked to a transaction concurrently", row.InstallmentNumber))
		}
		openIDs = append(openIDs, row.ID)
		openNumbers = append(openNumbers, row.InstallmentNumber)
	}

	if effectiveFrom > maxNumber+1 {
		return nil, NewInvalidTermsError(fmt.Sprintf(
			"Effective installment %d is beyond the schedule end %d", effectiveFrom, maxNumber))
	}

	count := len(openNumbers)
	if overrides.InstallmentCount != nil {
		count = *overrides.InstallmentCount
	}
	if count <= 0 {
		return nil, NewInvalidTermsError("Regeneration must produce at least one installment")
	}

	remaining := loan.PrincipalAmount.Sub(lockedPrincipal)
	if !remaining.IsPositive() {
		return nil, NewInvalidTermsError("No principal remains to amortize over the open segment")
	}

	numbers := assignNumbers(openNumbers, count, maxNumber)
	if err := checkContiguity(locked, numbers); err != nil {
		return nil, err
	}

	terms := loan.Terms()
	if overrides.AnnualRatePct != nil {
		if overrides.AnnualRatePct.IsNegative() {
			return nil, NewInvalidTermsError("Interest rate cannot be negative")
		}
		terms.AnnualRatePct = *overrides.AnnualRatePct
	}
	if overrides.InterestType != nil {
		if !overrides.InterestType.IsValid() {
			return nil, NewInvalidTermsError("Interest type is not valid")
		}
		terms.InterestType = *overrides.InterestType
	}
	if overrides.Frequency != nil {
		if !overrides.Frequency.IsValid() {
			return nil, NewInvalidTermsError("Payment frequency is not valid")
		}
		terms.Frequency = *overrides.Frequency
	}

	afterDate := loan.StartDate
	if prev, ok := lockedDueDates[numbers[0]-1]; ok {
		afterDate = prev
	}

	return &RegenerationPlan{
		Locked:             locked,
		OpenIDs:            openIDs,
		Numbers:            numbers,
		RemainingPrincipal: remaining,
		Terms:              terms,
		AfterDate:          afterDate,
		TotalInstallments:  len(locked) + count,
	}, nil
}

// BuildReplacementRows computes the sub-amortization over the remaining
// principal and materializes the open-segment rows with their assigned
// installment numbers and stepped due dates.
func (p *RegenerationPlan) BuildReplacementRows(loanID uuid.UUID) ([]*LoanSchedule, error) {
	amounts, err := ComputeInstallments(
		p.RemainingPrincipal,
		p.Terms.AnnualRatePct,
		p.Terms.InterestType,
		p.Terms.Frequency,
		len(p.Numbers),
	)
	if err != nil {
		return nil, err
	}

	rows := make([]*LoanSchedule, 0, len(amounts))
	dueDate := p.AfterDate
	for i, amount := range amounts {
		dueDate = p.Terms.Frequency.Next(dueDate)
		rows = append(rows, NewLoanSchedule(loanID, p.Numbers[i], dueDate, amount))
	}

	return rows, nil
}

// assignNumbers picks the installment numbers for the replacement rows: the
// freed open numbers in ascending order, extended past the current schedule
// end when the override asks for more installments.
func assignNumbers(openNumbers []int, count, maxNumber int) []int {
	numbers := make([]int, 0, count)
	for _, n := range openNumbers {
		if len(numbers) == count {
			break
		}
		numbers = append(numbers, n)
	}
	next := maxNumber + 1
	for len(numbers) < count {
		numbers = append(numbers, next)
		next++
	}
	return numbers
}

// checkContiguity verifies that locked numbers plus the assigned numbers form
// exactly 1..N. Shrinking the schedule below a settled installment's number
// would strand it past the new end, which is rejected.
func checkContiguity(locked []*LoanSchedule, numbers []int) error {
	total := len(locked) + len(numbers)
	seen := make(map[int]bool, total)
	for _, row := range locked {
		seen[row.InstallmentNumber] = true
	}
	for _, n := range numbers {
		if seen[n] {
			return NewInvalidTermsError(fmt.Sprintf("Duplicate installment number %d in regeneration", n))
		}
		seen[n] = true
	}
	for i := 1; i <= total; i++ {
		if !seen[i] {
			return NewInvalidTermsError(fmt.Sprintf(
				"Regeneration would leave a gap at installment %d", i))
		}
	}
	return nil
}
