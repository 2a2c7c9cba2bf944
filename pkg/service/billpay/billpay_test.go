package billpay_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/bellybank/backend/internal/fixtures"
	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/account"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/bellybank/backend/pkg/domain/user"
	"github.com/bellybank/backend/pkg/service/billpay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kzt(t *testing.T, s string) money.Money {
	t.Helper()
	m, err := money.NewFromString(s, currency.KZT)
	require.NoError(t, err)
	return m
}

type world struct {
	uow   *fixtures.MemoryUoW
	svc   *billpay.Service
	payer *user.User
	acc   *account.Account
}

func newWorld(t *testing.T, balance string) *world {
	t.Helper()
	uow := fixtures.NewMemoryUoW()
	payer := user.New("87010000001", "hash", "Payer")
	acc := account.New(payer.ID, "4400110000000001", currency.KZT)
	if balance != "0" {
		require.NoError(t, acc.Credit(kzt(t, balance)))
	}
	uow.UsersData = append(uow.UsersData, payer)
	uow.AccountsData = append(uow.AccountsData, acc)
	return &world{
		uow:   uow,
		svc:   billpay.New(uow, billpay.DefaultCatalog(), slog.Default()),
		payer: payer,
		acc:   acc,
	}
}

func TestPay_CreatesProviderOnFirstUse(t *testing.T) {
	w := newWorld(t, "10000.00")

	res, err := w.svc.Pay(context.Background(), billpay.PayRequest{
		UserID:      w.payer.ID,
		ServiceName: "mobile",
		Amount:      kzt(t, "2500.00"),
		Details:     map[string]string{"operator": "kcell", "phone": "87017654321"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Mobile: KCELL 87017654321", res.Description)
	assert.Equal(t, "7500.00 KZT", res.NewBalance.String())
	assert.Equal(t, "7500.00 KZT", w.uow.Account(w.acc.ID).Balance.String())

	// synthetic counterparty materialized with the service role
	require.Len(t, w.uow.UsersData, 2)
	provider := w.uow.UsersData[1]
	assert.Equal(t, "srv_mobile", provider.Phone)
	assert.Equal(t, user.RoleService, provider.Role)

	require.Len(t, w.uow.AccountsData, 2)
	provAcc := w.uow.AccountsData[1]
	assert.Equal(t, "MOB_001", provAcc.CardNumber)
	assert.Equal(t, "2500.00 KZT", provAcc.Balance.String())

	require.Len(t, w.uow.TransactionsData, 1)
	entry := w.uow.TransactionsData[0]
	require.NotNil(t, entry.FromAccountID)
	require.NotNil(t, entry.ToAccountID)
	assert.Equal(t, provAcc.ID, *entry.ToAccountID)
}

func TestPay_ReusesProviderAccount(t *testing.T) {
	w := newWorld(t, "10000.00")

	for i := 0; i < 3; i++ {
		_, err := w.svc.Pay(context.Background(), billpay.PayRequest{
			UserID:      w.payer.ID,
			ServiceName: "utilities",
			Amount:      kzt(t, "1000.00"),
			Details:     map[string]string{"service": "water", "account": "AB-1"},
		})
		require.NoError(t, err)
	}

	// one counterparty user and account, three ledger entries
	assert.Len(t, w.uow.UsersData, 2)
	assert.Len(t, w.uow.AccountsData, 2)
	assert.Len(t, w.uow.TransactionsData, 3)
	assert.Equal(t, "3000.00 KZT", w.uow.AccountsData[1].Balance.String())
}

func TestPay_UnknownServiceFallsBack(t *testing.T) {
	w := newWorld(t, "10000.00")

	res, err := w.svc.Pay(context.Background(), billpay.PayRequest{
		UserID:      w.payer.ID,
		ServiceName: "parking",
		Amount:      kzt(t, "500.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Payment: parking", res.Description)
	assert.Equal(t, "srv_other", w.uow.UsersData[1].Phone)
}

func TestPay_InsufficientFundsLeavesNoTrace(t *testing.T) {
	w := newWorld(t, "100.00")

	_, err := w.svc.Pay(context.Background(), billpay.PayRequest{
		UserID:      w.payer.ID,
		ServiceName: "games",
		Amount:      kzt(t, "5000.00"),
	})
	require.ErrorIs(t, err, account.ErrInsufficientFunds)

	assert.Equal(t, "100.00 KZT", w.uow.Account(w.acc.ID).Balance.String())
	assert.Empty(t, w.uow.TransactionsData)
	// the provider created inside the failed unit of work is rolled back too
	assert.Len(t, w.uow.UsersData, 1)
	assert.Len(t, w.uow.AccountsData, 1)
}

func TestPay_ZeroAmountRejected(t *testing.T) {
	w := newWorld(t, "100.00")

	_, err := w.svc.Pay(context.Background(), billpay.PayRequest{
		UserID:      w.payer.ID,
		ServiceName: "mobile",
		Amount:      money.Zero(currency.KZT),
	})
	require.ErrorIs(t, err, money.ErrInvalidAmount)
}

func TestDescribe_Formats(t *testing.T) {
	tests := []struct {
		name    string
		service string
		details map[string]string
		want    string
	}{
		{"mobile", "mobile", map[string]string{"operator": "beeline", "phone": "87001112233"}, "Mobile: BEELINE 87001112233"},
		{"utilities", "utilities", map[string]string{"service": "gas", "account": "X-9"}, "Utilities: GAS (X-9)"},
		{"transport", "transport", map[string]string{"city": "Almaty", "card": "T-77"}, "Transport: Almaty (T-77)"},
		{"fines", "fines", map[string]string{"type": "speeding", "value": "KZ123"}, "Fine: speeding KZ123"},
		{"ecotree", "ecotree", nil, "Eco contribution"},
		{"ortak", "ortak", nil, "Debt repayment (split)"},
		{"generic", "tickets", nil, "Payment: tickets"},
		{"missing details", "mobile", nil, "Mobile:  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, billpay.Describe(tt.service, tt.details))
		})
	}
}
