package lending

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanSummary holds the derived payment totals of a loan. SKIPPED rows count
// toward neither the paid nor the pending side.
type LoanSummary struct {
	PaidInstallments    int
	PendingInstallments int
	TotalExpected       decimal.Decimal
	TotalPaid           decimal.Decimal
	RemainingAmount     decimal.Decimal
}

// AllPaid reports whether every non-skipped installment is fully paid.
func (s LoanSummary) AllPaid() bool {
	return s.PendingInstallments == 0 && s.PaidInstallments > 0
}

// Summarize refreshes each schedule's derived status against today and folds
// the rows into a LoanSummary. Partial payments leave their installment in
// the pending count; the paid count only grows on full settlement.
func Summarize(schedules []*LoanSchedule, today time.Time) LoanSummary {
	summary := LoanSummary{
		TotalExpected: decimal.Zero,
		TotalPaid:     decimal.Zero,
	}

	for _, row := range schedules {
		row.RefreshStatus(today)
		if row.Status == ScheduleStatusSkipped {
			continue
		}

		summary.TotalExpected = summary.TotalExpected.Add(row.ExpectedAmount)
		if row.PaidAmount != nil {
			summary.TotalPaid = summary.TotalPaid.Add(*row.PaidAmount)
		}

		if row.Status == ScheduleStatusPaid {
			summary.PaidInstallments++
		} else {
			summary.PendingInstallments++
		}
	}

	remaining := summary.TotalExpected.Sub(summary.TotalPaid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	summary.RemainingAmount = remaining

	return summary
}

// ApplySummary reconciles the loan's lifecycle status with the derived
// totals. An active loan completes when every installment is paid; a
// completed loan reverts to active when an unlink reopens an installment.
// Defaulted loans keep their status regardless of payments.
func (l *Loan) ApplySummary(summary LoanSummary) bool {
	switch {
	case l.Status == LoanStatusActive && summary.AllPaid():
		l.Status = LoanStatusCompleted
		l.UpdatedAt = time.Now()
		l.IncrementVersion()
		l.AddDomainEvent(NewLoanCompletedEvent(l))
		return true
	case l.Status == LoanStatusCompleted && !summary.AllPaid():
		l.Status = LoanStatusActive
		l.UpdatedAt = time.Now()
		l.IncrementVersion()
		return true
	}
	return false
}
