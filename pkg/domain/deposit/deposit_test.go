package deposit_test

import (
	"testing"
	"time"

	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/deposit"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectedIncome(t *testing.T) {
	principal, err := money.NewFromString("100000.00", currency.KZT)
	require.NoError(t, err)
	rate := decimal.RequireFromString("0.12")
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"nothing accrued at start", start, "0.00 KZT"},
		{"one 30-day month", start.AddDate(0, 0, 30), "1000.00 KZT"},
		{"half year (180 days)", start.AddDate(0, 0, 180), "6000.00 KZT"},
		{"full year (360 days)", start.AddDate(0, 0, 360), "12000.00 KZT"},
		{"partial days count", start.AddDate(0, 0, 45), "1500.00 KZT"},
		{"clock skew clamps to zero", start.AddDate(0, 0, -1), "0.00 KZT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deposit.ProjectedIncome(principal, rate, start, tt.now)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDeposit_CloseOnce(t *testing.T) {
	amount, err := money.NewFromString("50000.00", currency.KZT)
	require.NoError(t, err)
	d := deposit.New(uuid.New(), amount, decimal.RequireFromString("0.12"), 12, deposit.TierStandard)

	require.True(t, d.Active)
	require.NoError(t, d.Close())
	assert.False(t, d.Active)

	assert.ErrorIs(t, d.Close(), deposit.ErrDepositNotFound)
}

func TestDeposit_MaturityUses30DayMonths(t *testing.T) {
	amount, err := money.NewFromString("1000.00", currency.KZT)
	require.NoError(t, err)
	d := deposit.New(uuid.New(), amount, decimal.RequireFromString("0.12"), 6, deposit.TierStandard)

	assert.Equal(t, 180*24*time.Hour, d.EndDate.Sub(d.StartDate))
}

func TestTierRates(t *testing.T) {
	rates := deposit.DefaultTierRates()

	for tier, want := range map[deposit.Tier]string{
		deposit.TierStandard: "0.12",
		deposit.TierPremium:  "0.14",
		deposit.TierVIP:      "0.16",
	} {
		rate, err := rates.Rate(tier)
		require.NoError(t, err)
		assert.Equal(t, want, rate.String())
	}

	_, err := rates.Rate(deposit.Tier("platinum"))
	assert.ErrorIs(t, err, deposit.ErrUnknownTier)
}
