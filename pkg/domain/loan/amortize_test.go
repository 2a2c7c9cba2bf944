package loan_test

import (
	"testing"
	"time"

	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/loan"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kzt(t *testing.T, s string) money.Money {
	t.Helper()
	m, err := money.NewFromString(s, currency.KZT)
	require.NoError(t, err)
	return m
}

func TestPlan_AnnuityIdentity(t *testing.T) {
	// 120,000 at 15% over 12 months: twelve equal payments at a 1.25%
	// monthly rate must amortize the principal to zero within one unit.
	principal := kzt(t, "120000.00")
	rate := decimal.RequireFromString("0.15")

	payment, amounts, err := loan.Plan(principal, rate, 12)
	require.NoError(t, err)
	require.Len(t, amounts, 12)

	monthlyRate := rate.Div(decimal.NewFromInt(12))
	balance := principal.Amount()
	for _, a := range amounts {
		assert.True(t, a.Equal(payment), "interest-bearing plans repeat the fixed payment")
		balance = balance.Mul(decimal.NewFromInt(1).Add(monthlyRate)).Sub(a.Amount())
	}
	assert.True(t, balance.Abs().LessThanOrEqual(decimal.NewFromInt(1)),
		"residual after 12 payments was %s", balance.String())
}

func TestPlan_ZeroRateEvenSplit(t *testing.T) {
	principal := kzt(t, "100000.00")

	payment, amounts, err := loan.Plan(principal, decimal.Zero, 4)
	require.NoError(t, err)
	require.Len(t, amounts, 4)
	assert.Equal(t, "25000.00 KZT", payment.String())

	sum := money.Zero(currency.KZT)
	for _, a := range amounts {
		assert.Equal(t, "25000.00 KZT", a.String())
		sum, err = sum.Add(a)
		require.NoError(t, err)
	}
	assert.True(t, sum.Equal(principal), "installments must sum to the principal exactly")
}

func TestPlan_ZeroRateResidualOnFinalInstallment(t *testing.T) {
	principal := kzt(t, "100.00")

	_, amounts, err := loan.Plan(principal, decimal.Zero, 3)
	require.NoError(t, err)
	require.Len(t, amounts, 3)

	assert.Equal(t, "33.33 KZT", amounts[0].String())
	assert.Equal(t, "33.33 KZT", amounts[1].String())
	assert.Equal(t, "33.34 KZT", amounts[2].String())
}

func TestPlan_InvalidInput(t *testing.T) {
	principal := kzt(t, "1000.00")

	_, _, err := loan.Plan(principal, decimal.Zero, 0)
	assert.ErrorIs(t, err, loan.ErrInvalidTerm)

	_, _, err = loan.Plan(principal, decimal.Zero, -3)
	assert.ErrorIs(t, err, loan.ErrInvalidTerm)

	_, _, err = loan.Plan(money.Zero(currency.KZT), decimal.Zero, 12)
	assert.ErrorIs(t, err, money.ErrInvalidAmount)
}

func TestGenerateSchedule(t *testing.T) {
	loanID := uuid.New()
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	_, amounts, err := loan.Plan(kzt(t, "120000.00"), decimal.RequireFromString("0.15"), 6)
	require.NoError(t, err)

	entries := loan.GenerateSchedule(loanID, amounts, start)
	require.Len(t, entries, 6)

	for i, e := range entries {
		assert.Equal(t, loanID, e.LoanID)
		assert.False(t, e.Paid)
		wantDue := start.Add(time.Duration(i+1) * 30 * 24 * time.Hour)
		assert.True(t, e.DueDate.Equal(wantDue), "entry %d due at %s, want %s", i, e.DueDate, wantDue)
		if i > 0 {
			assert.True(t, entries[i-1].DueDate.Before(e.DueDate), "due dates strictly increasing")
		}
	}
}

func TestNextUnpaid(t *testing.T) {
	loanID := uuid.New()
	start := time.Now()
	_, amounts, err := loan.Plan(kzt(t, "3000.00"), decimal.Zero, 3)
	require.NoError(t, err)
	entries := loan.GenerateSchedule(loanID, amounts, start)

	first := loan.NextUnpaid(entries)
	require.NotNil(t, first)
	assert.Equal(t, entries[0].ID, first.ID)

	entries[0].Paid = true
	second := loan.NextUnpaid(entries)
	require.NotNil(t, second)
	assert.Equal(t, entries[1].ID, second.ID)

	entries[1].Paid = true
	entries[2].Paid = true
	assert.Nil(t, loan.NextUnpaid(entries))
}

func TestRemaining(t *testing.T) {
	loanID := uuid.New()
	_, amounts, err := loan.Plan(kzt(t, "3000.00"), decimal.Zero, 3)
	require.NoError(t, err)
	entries := loan.GenerateSchedule(loanID, amounts, time.Now())

	assert.Equal(t, "3000.00 KZT", loan.Remaining(entries, currency.KZT).String())
	entries[0].Paid = true
	assert.Equal(t, "2000.00 KZT", loan.Remaining(entries, currency.KZT).String())
}

func TestCheckAffordability(t *testing.T) {
	payment := kzt(t, "30000.00")
	ratio := decimal.RequireFromString("0.3")

	t.Run("qualifying income passes", func(t *testing.T) {
		assert.NoError(t, loan.CheckAffordability(payment, decimal.NewFromInt(100000), ratio))
	})

	t.Run("boundary income passes", func(t *testing.T) {
		assert.NoError(t, loan.CheckAffordability(payment, decimal.RequireFromString("100000.00"), ratio))
	})

	t.Run("violation reports minimum income", func(t *testing.T) {
		err := loan.CheckAffordability(payment, decimal.NewFromInt(99999), ratio)
		require.ErrorIs(t, err, loan.ErrInsufficientIncome)
		var incomeErr *loan.InsufficientIncomeError
		require.ErrorAs(t, err, &incomeErr)
		assert.Equal(t, "100000.00", incomeErr.MinIncome.StringFixed(2))
	})
}

func TestDefaultTerms(t *testing.T) {
	terms := loan.DefaultTerms()

	rate, err := terms.Rate(loan.TypeCash)
	require.NoError(t, err)
	assert.Equal(t, "0.15", rate.String())

	rate, err = terms.Rate(loan.TypeRed)
	require.NoError(t, err)
	assert.True(t, rate.IsZero(), "red is a zero-rate alias")

	_, err = terms.Rate(loan.Type("payday"))
	assert.ErrorIs(t, err, loan.ErrUnknownType)

	ratio, err := terms.IncomeRatio(loan.TypeMortgage)
	require.NoError(t, err)
	assert.Equal(t, "0.4", ratio.String())
}
