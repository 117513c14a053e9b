package lending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleGenerator_GenerateForLoan(t *testing.T) {
	loan := newTestLoan(t)
	generator := NewScheduleGenerator()

	rows, err := generator.GenerateForLoan(loan)

	require.NoError(t, err)
	require.Len(t, rows, 12)

	total := amt("0")
	for i, row := range rows {
		assert.Equal(t, loan.ID, row.LoanID)
		assert.Equal(t, i+1, row.InstallmentNumber)
		assert.Equal(t, ScheduleStatusPending, row.Status)
		total = total.Add(row.ExpectedPrincipal)
	}
	assert.True(t, loan.PrincipalAmount.Equal(total))

	// due dates step one month from the loan start date
	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), rows[0].DueDate)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), rows[1].DueDate)
	assert.Equal(t, time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC), rows[11].DueDate)
}

func TestScheduleGenerator_Generate_WeeklyDueDates(t *testing.T) {
	loan := newTestLoan(t)
	generator := NewScheduleGenerator()
	terms := Terms{AnnualRatePct: amt("13"), InterestType: InterestTypeSimple, Frequency: FrequencyWeekly}
	after := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	rows, err := generator.Generate(loan.ID, terms, amt("5200"), 1, 4, after)

	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), rows[0].DueDate)
	assert.Equal(t, time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC), rows[1].DueDate)
	assert.Equal(t, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), rows[3].DueDate)
}

func TestScheduleGenerator_Generate_FromInstallmentOffset(t *testing.T) {
	loan := newTestLoan(t)
	generator := NewScheduleGenerator()
	after := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

	rows, err := generator.Generate(loan.ID, loan.Terms(), amt("900000"), 4, 9, after)

	require.NoError(t, err)
	require.Len(t, rows, 9)
	assert.Equal(t, 4, rows[0].InstallmentNumber)
	assert.Equal(t, 12, rows[8].InstallmentNumber)
	assert.Equal(t, time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC), rows[0].DueDate)
}

func TestScheduleGenerator_Generate_InvalidStart(t *testing.T) {
	loan := newTestLoan(t)
	generator := NewScheduleGenerator()

	_, err := generator.Generate(loan.ID, loan.Terms(), amt("1000"), 0, 3, loan.StartDate)

	require.Error(t, err)
	assert.True(t, HasCode(err, CodeInvalidTerms))
}
