package lending

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoanWithSchedule(t *testing.T) (*Loan, []*LoanSchedule) {
	t.Helper()
	loan := newTestLoan(t)
	rows, err := NewScheduleGenerator().GenerateForLoan(loan)
	require.NoError(t, err)
	return loan, rows
}

func payInFull(t *testing.T, row *LoanSchedule) {
	t.Helper()
	require.NoError(t, row.RegisterPayment(uuid.New(), row.ExpectedAmount, row.DueDate))
}

func TestPlanRegeneration_TailRebuild(t *testing.T) {
	loan, rows := newLoanWithSchedule(t)
	payInFull(t, rows[0])
	payInFull(t, rows[1])
	payInFull(t, rows[2])

	newRate := amt("10")
	plan, err := PlanRegeneration(loan, rows, RegenerationOverrides{AnnualRatePct: &newRate}, 4)

	require.NoError(t, err)
	assert.Len(t, plan.Locked, 3)
	assert.Len(t, plan.OpenIDs, 9)
	assert.Equal(t, []int{4, 5, 6, 7, 8, 9, 10, 11, 12}, plan.Numbers)
	assert.True(t, amt("900000").Equal(plan.RemainingPrincipal))
	assert.True(t, newRate.Equal(plan.Terms.AnnualRatePct))
	assert.Equal(t, 12, plan.TotalInstallments)
	// the rebuilt segment dates continue from the last locked due date
	assert.Equal(t, rows[2].DueDate, plan.AfterDate)

	replacement, err := plan.BuildReplacementRows(loan.ID)
	require.NoError(t, err)
	require.Len(t, replacement, 9)
	assert.Equal(t, 4, replacement[0].InstallmentNumber)
	assert.Equal(t, time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC), replacement[0].DueDate)
	assert.True(t, amt("7500").Equal(replacement[0].ExpectedInterest))
	assert.True(t, amt("900000").Equal(sumSchedulePrincipal(replacement)))
}

func TestPlanRegeneration_SettledRowBeyondEffectiveFrom(t *testing.T) {
	loan, rows := newLoanWithSchedule(t)
	payInFull(t, rows[0])
	payInFull(t, rows[4]) // installment 5 paid out of order

	plan, err := PlanRegeneration(loan, rows, RegenerationOverrides{}, 2)

	require.NoError(t, err)
	assert.Len(t, plan.Locked, 2)
	assert.Equal(t, []int{2, 3, 4, 6, 7, 8, 9, 10, 11, 12}, plan.Numbers)
	assert.True(t, amt("1000000").Equal(plan.RemainingPrincipal))
	assert.Equal(t, 12, plan.TotalInstallments)
}

func TestPlanRegeneration_SkippedRowIsReplaced(t *testing.T) {
	loan, rows := newLoanWithSchedule(t)
	payInFull(t, rows[0])
	require.NoError(t, rows[5].MarkSkipped())

	plan, err := PlanRegeneration(loan, rows, RegenerationOverrides{}, 2)

	require.NoError(t, err)
	assert.Len(t, plan.OpenIDs, 11)
	assert.Contains(t, plan.OpenIDs, rows[5].ID)
}

func TestPlanRegeneration_ExtendTerm(t *testing.T) {
	loan, rows := newLoanWithSchedule(t)
	count := 18

	plan, err := PlanRegeneration(loan, rows, RegenerationOverrides{InstallmentCount: &count}, 1)

	require.NoError(t, err)
	assert.Len(t, plan.Numbers, 18)
	assert.Equal(t, 1, plan.Numbers[0])
	assert.Equal(t, 18, plan.Numbers[17])
	assert.Equal(t, 18, plan.TotalInstallments)
	assert.True(t, loan.PrincipalAmount.Equal(plan.RemainingPrincipal))
}

func TestPlanRegeneration_ShrinkTerm(t *testing.T) {
	loan, rows := newLoanWithSchedule(t)
	payInFull(t, rows[0])
	payInFull(t, rows[1])
	payInFull(t, rows[2])
	count := 6

	plan, err := PlanRegeneration(loan, rows, RegenerationOverrides{InstallmentCount: &count}, 4)

	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 6, 7, 8, 9}, plan.Numbers)
	assert.Equal(t, 9, plan.TotalInstallments)
}

func TestPlanRegeneration_ShrinkBelowSettledNumber(t *testing.T) {
	loan, rows := newLoanWithSchedule(t)
	payInFull(t, rows[11]) // final installment settled early
	count := 5

	_, err := PlanRegeneration(loan, rows, RegenerationOverrides{InstallmentCount: &count}, 1)

	require.Error(t, err)
	assert.True(t, HasCode(err, CodeInvalidTerms))
}

func TestPlanRegeneration_ConcurrentLinkDetected(t *testing.T) {
	loan, rows := newLoanWithSchedule(t)
	// simulate a payment committed by another transaction after this
	// snapshot was read: the link is present but the status is stale
	txID := uuid.New()
	rows[4].TransactionID = &txID

	_, err := PlanRegeneration(loan, rows, RegenerationOverrides{}, 1)

	require.Error(t, err)
	assert.True(t, HasCode(err, CodeRegenerationConflict))
}

func TestPlanRegeneration_NothingOpen(t *testing.T) {
	loan, rows := newLoanWithSchedule(t)
	for _, row := range rows {
		payInFull(t, row)
	}

	_, err := PlanRegeneration(loan, rows, RegenerationOverrides{}, 1)

	require.Error(t, err)
	assert.True(t, HasCode(err, CodeInvalidTerms))
}

func TestPlanRegeneration_EffectiveFromOutOfRange(t *testing.T) {
	loan, rows := newLoanWithSchedule(t)

	for _, from := range []int{0, -1, 14} {
		_, err := PlanRegeneration(loan, rows, RegenerationOverrides{}, from)
		require.Error(t, err, "effectiveFrom %d", from)
		assert.True(t, HasCode(err, CodeInvalidTerms))
	}
}

func TestPlanRegeneration_InvalidOverrides(t *testing.T) {
	loan, rows := newLoanWithSchedule(t)

	t.Run("negative rate", func(t *testing.T) {
		rate := amt("-1")
		_, err := PlanRegeneration(loan, rows, RegenerationOverrides{AnnualRatePct: &rate}, 1)
		require.Error(t, err)
		assert.True(t, HasCode(err, CodeInvalidTerms))
	})

	t.Run("bad interest type", func(t *testing.T) {
		bad := InterestType("FLAT")
		_, err := PlanRegeneration(loan, rows, RegenerationOverrides{InterestType: &bad}, 1)
		require.Error(t, err)
		assert.True(t, HasCode(err, CodeInvalidTerms))
	})

	t.Run("zero count", func(t *testing.T) {
		count := 0
		_, err := PlanRegeneration(loan, rows, RegenerationOverrides{InstallmentCount: &count}, 1)
		require.Error(t, err)
		assert.True(t, HasCode(err, CodeInvalidTerms))
	})
}

func sumSchedulePrincipal(rows []*LoanSchedule) (total decimal.Decimal) {
	total = decimal.Zero
	for _, row := range rows {
		total = total.Add(row.ExpectedPrincipal)
	}
	return total
}
