package lending

import (
	"github.com/shopspring/decimal"

	"github.com/clinicore/backend/internal/domain/shared/valueobject"
)

var (
	oneHundred = decimal.NewFromInt(100)
	one        = decimal.NewFromInt(1)
)

// InstallmentAmounts is the principal/interest split of one installment.
// Amounts are rounded to the smallest currency unit once per installment;
// residual cents always land on the last installment.
type InstallmentAmounts struct {
	Principal valueobject.Money
	Interest  valueobject.Money
}

// Amount returns the total due for the installment
func (a InstallmentAmounts) Amount() valueobject.Money {
	return a.Principal.MustAdd(a.Interest)
}

// PeriodRate converts a per-annum percentage rate to the per-period rate for
// the given frequency, keeping full decimal precision.
func PeriodRate(annualRatePct decimal.Decimal, frequency PaymentFrequency) decimal.Decimal {
	return annualRatePct.Div(oneHundred).Div(decimal.NewFromInt(frequency.PeriodsPerYear()))
}

// ComputeInstallments produces the ordered principal/interest split for a loan
// amortized over installmentCount periods. It is pure and deterministic.
//
// SIMPLE amortizes principal evenly with interest charged on the outstanding
// balance each period. COMPOUND produces a level payment using the standard
// annuity formula, with the final installment adjusted so cumulative principal
// equals the original principal exactly.
func ComputeInstallments(
	principal decimal.Decimal,
	annualRatePct decimal.Decimal,
	interestType InterestType,
	frequency PaymentFrequency,
	installmentCount int,
) ([]InstallmentAmounts, error) {
	if installmentCount <= 0 {
		return nil, NewInvalidTermsError("Installment count must be positive")
	}
	if !principal.IsPositive() {
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

	rate := PeriodRate(annualRatePct, frequency)

	if interestType == InterestTypeCompound && !rate.IsZero() {
		return computeLevelPayment(valueobject.NewMoneyUSD(principal), rate, installmentCount), nil
	}
	return computeEvenPrincipal(valueobject.NewMoneyUSD(principal), rate, installmentCount), nil
}

// computeEvenPrincipal amortizes principal in equal parts, charging simple
// interest on the remaining balance. The even split is truncated to the
// smallest currency unit so the cumulative principal never overshoots; the
// last installment absorbs the remainder, which is therefore non-negative.
func computeEvenPrincipal(principal valueobject.Money, rate decimal.Decimal, count int) []InstallmentAmounts {
	n := decimal.NewFromInt(int64(count))
	base := valueobject.NewMoneyUSD(principal.Amount().Div(n)).RoundCurrencyDown()

	rows := make([]InstallmentAmounts, 0, count)
	remaining := principal

	for i := 1; i <= count; i++ {
		principalDue := base
		if i == count {
			principalDue = remaining
		}
		interestDue := remaining.Multiply(rate).RoundCurrency()

		rows = append(rows, InstallmentAmounts{
			Principal: principalDue,
			Interest:  interestDue,
		})
		remaining = remaining.MustSubtract(principalDue)
	}

	return rows
}

// computeLevelPayment implements the standard amortizing-loan formula
// payment = P*r / (1 - (1+r)^-n), splitting each payment into interest on the
// outstanding balance and a principal remainder. The principal share of each
// row is clamped to [0, remaining] so per-row rounding can never drive an
// installment negative; the final installment settles the exact remaining
// balance.
func computeLevelPayment(principal valueobject.Money, rate decimal.Decimal, count int) []InstallmentAmounts {
	n := int64(count)

	// (1+r)^n in full precision, then payment = P*r*(1+r)^n / ((1+r)^n - 1)
	compound := one.Add(rate).Pow(decimal.NewFromInt(n))
	payment := valueobject.NewMoneyUSD(
		principal.Amount().Mul(rate).Mul(compound).Div(compound.Sub(one))).RoundCurrency()

	rows := make([]InstallmentAmounts, 0, count)
	remaining := principal

	for i := 1; i <= count; i++ {
		interestDue := remaining.Multiply(rate).RoundCurrency()
		principalDue := payment.MustSubtract(interestDue)
		if principalDue.IsNegative() {
			principalDue = valueobject.ZeroUSD()
		}
		if i == count || principalDue.Amount().GreaterThanOrEqual(remaining.Amount()) {
			principalDue = remaining
		}

		rows = append(rows, InstallmentAmounts{
			Principal: principalDue,
			Interest:  interestDue,
		})
		remaining = remaining.MustSubtract(principalDue)
	}

	return rows
}
