package loan_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/bellybank/backend/internal/fixtures"
	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/account"
	"github.com/bellybank/backend/pkg/domain/loan"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/bellybank/backend/pkg/domain/user"
	loansvc "github.com/bellybank/backend/pkg/service/loan"
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

type world struct {
	uow      *fixtures.MemoryUoW
	svc      *loansvc.Service
	borrower *user.User
	acc      *account.Account
}

func newWorld(t *testing.T, balance string) *world {
	t.Helper()
	uow := fixtures.NewMemoryUoW()
	borrower := user.New("87010000001", "hash", "Borrower")
	acc := account.New(borrower.ID, "4400110000000001", currency.KZT)
	if balance != "0" {
		require.NoError(t, acc.Credit(kzt(t, balance)))
	}
	uow.UsersData = append(uow.UsersData, borrower)
	uow.AccountsData = append(uow.AccountsData, acc)
	return &world{
		uow:      uow,
		svc:      loansvc.New(uow, loan.DefaultTerms(), slog.Default()),
		borrower: borrower,
		acc:      acc,
	}
}

func (w *world) apply(t *testing.T, req loansvc.ApplyRequest) *loansvc.ApplyResult {
	t.Helper()
	res, err := w.svc.Apply(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestApply_InstallmentDisbursesAndSchedules(t *testing.T) {
	w := newWorld(t, "0")

	res := w.apply(t, loansvc.ApplyRequest{
		UserID:     w.borrower.ID,
		Amount:     kzt(t, "120000.00"),
		TermMonths: 12,
		Income:     decimal.RequireFromString("500000"),
		Type:       loan.TypeInstallment,
	})

	// zero-rate: even split, no interest
	assert.Equal(t, "10000.00 KZT", res.MonthlyPayment.String())
	assert.Equal(t, "120000.00 KZT", res.TotalPayable.String())
	assert.Equal(t, "120000.00 KZT", w.uow.Account(w.acc.ID).Balance.String())

	require.Len(t, w.uow.LoansData, 1)
	assert.True(t, w.uow.LoansData[0].Active)
	require.Len(t, w.uow.ScheduleData, 12)
	for _, e := range w.uow.ScheduleData {
		assert.False(t, e.Paid)
	}

	require.Len(t, w.uow.TransactionsData, 1)
	entry := w.uow.TransactionsData[0]
	assert.Nil(t, entry.FromAccountID)
	require.NotNil(t, entry.ToAccountID)
	assert.Equal(t, w.acc.ID, *entry.ToAccountID)
	assert.Equal(t, "Disbursement: 0% installment plan", entry.Category)
}

func TestApply_CashLoanCarriesInterest(t *testing.T) {
	w := newWorld(t, "0")

	res := w.apply(t, loansvc.ApplyRequest{
		UserID:     w.borrower.ID,
		Amount:     kzt(t, "100000.00"),
		TermMonths: 12,
		Income:     decimal.RequireFromString("500000"),
		Type:       loan.TypeCash,
	})

	// 15% annual over 12 months costs more than the principal
	assert.True(t, kzt(t, "100000.00").LessThan(res.TotalPayable))
	assert.True(t, kzt(t, "8333.33").LessThan(res.MonthlyPayment))
}

func TestApply_InsufficientIncome(t *testing.T) {
	w := newWorld(t, "0")

	_, err := w.svc.Apply(context.Background(), loansvc.ApplyRequest{
		UserID:     w.borrower.ID,
		Amount:     kzt(t, "1200000.00"),
		TermMonths: 12,
		Income:     decimal.RequireFromString("100000"),
		Type:       loan.TypeInstallment,
	})
	require.ErrorIs(t, err, loan.ErrInsufficientIncome)

	var incomeErr *loan.InsufficientIncomeError
	require.ErrorAs(t, err, &incomeErr)
	// 100000 monthly payment at the 0.2 ratio needs 500000 income
	assert.Equal(t, "500000.00", incomeErr.MinIncome.StringFixed(2))

	assert.Empty(t, w.uow.LoansData)
	assert.Empty(t, w.uow.TransactionsData)
	assert.Equal(t, "0.00 KZT", w.uow.Account(w.acc.ID).Balance.String())
}

func TestApply_MortgageCollateral(t *testing.T) {
	w := newWorld(t, "0")

	base := loansvc.ApplyRequest{
		UserID:     w.borrower.ID,
		Amount:     kzt(t, "10000000.00"),
		TermMonths: 240,
		Income:     decimal.RequireFromString("1000000"),
		Type:       loan.TypeMortgage,
	}

	_, err := w.svc.Apply(context.Background(), base)
	require.ErrorIs(t, err, loan.ErrMissingCollateral)

	low := decimal.RequireFromString("9000000")
	base.PropertyValue = &low
	_, err = w.svc.Apply(context.Background(), base)
	require.ErrorIs(t, err, loan.ErrInsufficientCollateral)

	ok := decimal.RequireFromString("12000000")
	base.PropertyValue = &ok
	_, err = w.svc.Apply(context.Background(), base)
	require.NoError(t, err)
}

func TestApply_AutoCollateral(t *testing.T) {
	w := newWorld(t, "0")

	_, err := w.svc.Apply(context.Background(), loansvc.ApplyRequest{
		UserID:     w.borrower.ID,
		Amount:     kzt(t, "5000000.00"),
		TermMonths: 60,
		Income:     decimal.RequireFromString("1000000"),
		Type:       loan.TypeAuto,
	})
	require.ErrorIs(t, err, loan.ErrMissingCollateral)
}

func TestApply_UnknownType(t *testing.T) {
	w := newWorld(t, "0")

	_, err := w.svc.Apply(context.Background(), loansvc.ApplyRequest{
		UserID:     w.borrower.ID,
		Amount:     kzt(t, "1000.00"),
		TermMonths: 6,
		Income:     decimal.RequireFromString("100000"),
		Type:       loan.Type("payday"),
	})
	require.ErrorIs(t, err, loan.ErrUnknownType)
}

func TestApply_NoUsableAccount(t *testing.T) {
	w := newWorld(t, "0")
	w.acc.Blocked = true

	_, err := w.svc.Apply(context.Background(), loansvc.ApplyRequest{
		UserID:     w.borrower.ID,
		Amount:     kzt(t, "1000.00"),
		TermMonths: 6,
		Income:     decimal.RequireFromString("100000"),
		Type:       loan.TypeInstallment,
	})
	require.ErrorIs(t, err, account.ErrNoUsableAccount)
	assert.Empty(t, w.uow.LoansData)
}

func TestPay_InstallmentsInDueDateOrder(t *testing.T) {
	w := newWorld(t, "0")
	res := w.apply(t, loansvc.ApplyRequest{
		UserID:     w.borrower.ID,
		Amount:     kzt(t, "30000.00"),
		TermMonths: 3,
		Income:     decimal.RequireFromString("500000"),
		Type:       loan.TypeInstallment,
	})

	pay, err := w.svc.Pay(context.Background(), w.borrower.ID, res.LoanID)
	require.NoError(t, err)
	assert.Equal(t, "10000.00 KZT", pay.PaidAmount.String())
	assert.False(t, pay.LoanClosed)

	// earliest due date cleared first
	var paid []*loan.ScheduleEntry
	for _, e := range w.uow.ScheduleData {
		if e.Paid {
			paid = append(paid, e)
		}
	}
	require.Len(t, paid, 1)
	for _, e := range w.uow.ScheduleData {
		if !e.Paid {
			assert.True(t, paid[0].DueDate.Before(e.DueDate))
		}
	}

	// disbursement funded the installment in place
	assert.Equal(t, "20000.00 KZT", w.uow.Account(w.acc.ID).Balance.String())
}

func TestPay_ClosesLoanOnFinalInstallment(t *testing.T) {
	w := newWorld(t, "0")
	res := w.apply(t, loansvc.ApplyRequest{
		UserID:     w.borrower.ID,
		Amount:     kzt(t, "30000.00"),
		TermMonths: 3,
		Income:     decimal.RequireFromString("500000"),
		Type:       loan.TypeInstallment,
	})

	for i := 0; i < 3; i++ {
		pay, err := w.svc.Pay(context.Background(), w.borrower.ID, res.LoanID)
		require.NoError(t, err)
		assert.Equal(t, i == 2, pay.LoanClosed)
	}

	assert.False(t, w.uow.Loan(res.LoanID).Active)
	assert.Equal(t, "0.00 KZT", w.uow.Account(w.acc.ID).Balance.String())

	// further payments are rejected: the loan is closed
	_, err := w.svc.Pay(context.Background(), w.borrower.ID, res.LoanID)
	require.ErrorIs(t, err, loan.ErrLoanNotFound)
}

func TestPay_InsufficientFundsLeavesNoTrace(t *testing.T) {
	w := newWorld(t, "0")
	res := w.apply(t, loansvc.ApplyRequest{
		UserID:     w.borrower.ID,
		Amount:     kzt(t, "30000.00"),
		TermMonths: 3,
		Income:     decimal.RequireFromString("500000"),
		Type:       loan.TypeInstallment,
	})

	// drain the disbursed balance out of band
	drained := w.uow.Account(w.acc.ID)
	require.NoError(t, drained.Debit(kzt(t, "25000.00")))

	_, err := w.svc.Pay(context.Background(), w.borrower.ID, res.LoanID)
	require.ErrorIs(t, err, account.ErrInsufficientFunds)

	for _, e := range w.uow.ScheduleData {
		assert.False(t, e.Paid)
	}
	assert.Equal(t, "5000.00 KZT", w.uow.Account(w.acc.ID).Balance.String())
}

func TestPay_ForeignLoanRejected(t *testing.T) {
	w := newWorld(t, "0")
	res := w.apply(t, loansvc.ApplyRequest{
		UserID:     w.borrower.ID,
		Amount:     kzt(t, "30000.00"),
		TermMonths: 3,
		Income:     decimal.RequireFromString("500000"),
		Type:       loan.TypeInstallment,
	})

	stranger := user.New("87010000002", "hash", "Stranger")
	w.uow.UsersData = append(w.uow.UsersData, stranger)

	_, err := w.svc.Pay(context.Background(), stranger.ID, res.LoanID)
	require.ErrorIs(t, err, loan.ErrLoanNotFound)
}

func TestMy_ReportsRemaining(t *testing.T) {
	w := newWorld(t, "0")
	res := w.apply(t, loansvc.ApplyRequest{
		UserID:     w.borrower.ID,
		Amount:     kzt(t, "30000.00"),
		TermMonths: 3,
		Income:     decimal.RequireFromString("500000"),
		Type:       loan.TypeInstallment,
	})

	_, err := w.svc.Pay(context.Background(), w.borrower.ID, res.LoanID)
	require.NoError(t, err)

	infos, err := w.svc.My(context.Background(), w.borrower.ID)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, res.LoanID, infos[0].Loan.ID)
	assert.Equal(t, "20000.00 KZT", infos[0].Remaining.String())
}

func TestMy_OmitsClosedLoans(t *testing.T) {
	w := newWorld(t, "0")
	res := w.apply(t, loansvc.ApplyRequest{
		UserID:     w.borrower.ID,
		Amount:     kzt(t, "10000.00"),
		TermMonths: 1,
		Income:     decimal.RequireFromString("500000"),
		Type:       loan.TypeInstallment,
	})

	_, err := w.svc.Pay(context.Background(), w.borrower.ID, res.LoanID)
	require.NoError(t, err)

	infos, err := w.svc.My(context.Background(), w.borrower.ID)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestCalendar_MapsUnpaidEntriesByDate(t *testing.T) {
	w := newWorld(t, "0")
	res := w.apply(t, loansvc.ApplyRequest{
		UserID:     w.borrower.ID,
		Amount:     kzt(t, "30000.00"),
		TermMonths: 3,
		Income:     decimal.RequireFromString("500000"),
		Type:       loan.TypeInstallment,
	})

	_, err := w.svc.Pay(context.Background(), w.borrower.ID, res.LoanID)
	require.NoError(t, err)

	calendar, err := w.svc.Calendar(context.Background(), w.borrower.ID)
	require.NoError(t, err)
	require.Len(t, calendar, 2)
	for date, entry := range calendar {
		assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, date)
		assert.True(t, entry.Amount.Equal(decimal.RequireFromString("10000")))
		assert.True(t, entry.Marked)
		assert.Equal(t, "red", entry.DotColor)
		assert.Zero(t, entry.ActiveOpacity)
	}
}
