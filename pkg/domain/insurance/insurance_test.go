package insurance_test

import (
	"testing"

	"github.com/bellybank/backend/pkg/domain/insurance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	tariffs := insurance.DefaultTariffs()

	tests := []struct {
		name        string
		typ         insurance.Type
		coverage    string
		term        int
		wantMonthly string
		wantTotal   string
	}{
		{"life at one million", insurance.TypeLife, "1000000", 12, "5000.00 KZT", "60000.00 KZT"},
		{"health scales up", insurance.TypeHealth, "2000000", 6, "16000.00 KZT", "96000.00 KZT"},
		{"travel scales down", insurance.TypeTravel, "500000", 3, "1000.00 KZT", "3000.00 KZT"},
		{"unknown type uses default tariff", insurance.Type("pet"), "1000000", 2, "5000.00 KZT", "10000.00 KZT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monthly, total, err := insurance.Quote(tariffs, tt.typ, decimal.RequireFromString(tt.coverage), tt.term)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMonthly, monthly.String())
			assert.Equal(t, tt.wantTotal, total.String())
		})
	}

	t.Run("non-positive coverage rejected", func(t *testing.T) {
		_, _, err := insurance.Quote(tariffs, insurance.TypeLife, decimal.Zero, 12)
		assert.ErrorIs(t, err, insurance.ErrInvalidCoverage)
	})

	t.Run("non-positive term rejected", func(t *testing.T) {
		_, _, err := insurance.Quote(tariffs, insurance.TypeLife, decimal.NewFromInt(1_000_000), 0)
		assert.ErrorIs(t, err, insurance.ErrInvalidTerm)
	})
}

func TestPolicy_CancelOnce(t *testing.T) {
	tariffs := insurance.DefaultTariffs()
	monthly, _, err := insurance.Quote(tariffs, insurance.TypeAuto, decimal.NewFromInt(1_000_000), 12)
	require.NoError(t, err)

	p := insurance.New(uuid.New(), insurance.TypeAuto, decimal.NewFromInt(1_000_000), monthly, 12)
	require.True(t, p.Active)

	require.NoError(t, p.Cancel())
	assert.False(t, p.Active)
	assert.ErrorIs(t, p.Cancel(), insurance.ErrPolicyNotFound)
}
