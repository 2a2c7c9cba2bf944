package transfer_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/bellybank/backend/internal/fixtures"
	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/account"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/bellybank/backend/pkg/domain/user"
	"github.com/bellybank/backend/pkg/service/transfer"
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
	uow    *fixtures.MemoryUoW
	svc    *transfer.Service
	sender *user.User
	acc    *account.Account
}

func newWorld(t *testing.T, balance string) *world {
	t.Helper()
	uow := fixtures.NewMemoryUoW()
	sender := user.New("87010000001", "hash", "Sender")
	acc := account.New(sender.ID, "4400110000000001", currency.KZT)
	require.NoError(t, acc.Credit(kzt(t, balance)))
	uow.UsersData = append(uow.UsersData, sender)
	uow.AccountsData = append(uow.AccountsData, acc)
	return &world{
		uow:    uow,
		svc:    transfer.New(uow, slog.Default()),
		sender: sender,
		acc:    acc,
	}
}

func (w *world) addRecipient(t *testing.T, phoneNumber, card, balance string) (*user.User, *account.Account) {
	t.Helper()
	u := user.New(phoneNumber, "hash", "Recipient")
	a := account.New(u.ID, card, currency.KZT)
	if balance != "0" {
		require.NoError(t, a.Credit(kzt(t, balance)))
	}
	w.uow.UsersData = append(w.uow.UsersData, u)
	w.uow.AccountsData = append(w.uow.AccountsData, a)
	return u, a
}

func TestTransfer_InternalByPhone(t *testing.T) {
	w := newWorld(t, "1000.00")
	_, recipientAcc := w.addRecipient(t, "87470000002", "4400110000000002", "100.00")

	res, err := w.svc.Transfer(context.Background(), transfer.Request{
		UserID:  w.sender.ID,
		Amount:  kzt(t, "300.00"),
		ToPhone: "+7 747 000 00 02",
	})
	require.NoError(t, err)

	assert.False(t, res.External)
	assert.Equal(t, "700.00 KZT", w.uow.Account(w.acc.ID).Balance.String())
	assert.Equal(t, "400.00 KZT", w.uow.Account(recipientAcc.ID).Balance.String())

	require.Len(t, w.uow.TransactionsData, 1)
	entry := w.uow.TransactionsData[0]
	require.NotNil(t, entry.FromAccountID)
	require.NotNil(t, entry.ToAccountID)
	assert.Equal(t, w.acc.ID, *entry.FromAccountID)
	assert.Equal(t, recipientAcc.ID, *entry.ToAccountID)
	assert.Equal(t, "300.00 KZT", entry.Amount.String())
}

func TestTransfer_BalanceConservation(t *testing.T) {
	w := newWorld(t, "1000.00")
	_, recipientAcc := w.addRecipient(t, "87470000002", "4400110000000002", "250.00")

	_, err := w.svc.Transfer(context.Background(), transfer.Request{
		UserID: w.sender.ID,
		Amount: kzt(t, "123.45"),
		ToCard: "4400 1100 0000 0002",
	})
	require.NoError(t, err)

	total, err := w.uow.Account(w.acc.ID).Balance.Add(w.uow.Account(recipientAcc.ID).Balance)
	require.NoError(t, err)
	assert.Equal(t, "1250.00 KZT", total.String(), "sum of balances is preserved")
}

func TestTransfer_ExternalCardFallback(t *testing.T) {
	w := newWorld(t, "1000.00")

	res, err := w.svc.Transfer(context.Background(), transfer.Request{
		UserID: w.sender.ID,
		Amount: kzt(t, "200.00"),
		ToCard: "5500 9999 8888 1234",
	})
	require.NoError(t, err, "unknown card is an external transfer, never recipient-not-found")

	assert.True(t, res.External)
	assert.Nil(t, res.ToAccountID)
	assert.Contains(t, res.Category, "1234")
	assert.Equal(t, "800.00 KZT", w.uow.Account(w.acc.ID).Balance.String())

	require.Len(t, w.uow.TransactionsData, 1)
	entry := w.uow.TransactionsData[0]
	assert.NotNil(t, entry.FromAccountID)
	assert.Nil(t, entry.ToAccountID, "external transfers are source-only entries")
}

func TestTransfer_PhoneUnknownFails(t *testing.T) {
	w := newWorld(t, "1000.00")

	_, err := w.svc.Transfer(context.Background(), transfer.Request{
		UserID:  w.sender.ID,
		Amount:  kzt(t, "100.00"),
		ToPhone: "87479999999",
	})
	assert.ErrorIs(t, err, account.ErrRecipientNotFound)
	assert.Equal(t, "1000.00 KZT", w.uow.Account(w.acc.ID).Balance.String())
	assert.Empty(t, w.uow.TransactionsData)
}

func TestTransfer_SameAccountRejected(t *testing.T) {
	w := newWorld(t, "1000.00")

	_, err := w.svc.Transfer(context.Background(), transfer.Request{
		UserID: w.sender.ID,
		Amount: kzt(t, "100.00"),
		ToCard: w.acc.CardNumber,
	})
	assert.ErrorIs(t, err, account.ErrSameAccountTransfer)
	assert.Equal(t, "1000.00 KZT", w.uow.Account(w.acc.ID).Balance.String())
}

func TestTransfer_InsufficientFundsLeavesNoTrace(t *testing.T) {
	w := newWorld(t, "50.00")
	w.addRecipient(t, "87470000002", "4400110000000002", "0")

	_, err := w.svc.Transfer(context.Background(), transfer.Request{
		UserID:  w.sender.ID,
		Amount:  kzt(t, "100.00"),
		ToPhone: "87470000002",
	})
	assert.ErrorIs(t, err, account.ErrInsufficientFunds)
	assert.Equal(t, "50.00 KZT", w.uow.Account(w.acc.ID).Balance.String())
	assert.Empty(t, w.uow.TransactionsData)
}

func TestTransfer_SenderChecksPrecedeRecipientLookup(t *testing.T) {
	// A sender who cannot pay gets the sender-side error even when the
	// recipient phone is unknown, so failed transfers cannot be used to
	// probe which numbers belong to customers.
	t.Run("insufficient funds", func(t *testing.T) {
		w := newWorld(t, "50.00")

		_, err := w.svc.Transfer(context.Background(), transfer.Request{
			UserID:  w.sender.ID,
			Amount:  kzt(t, "100.00"),
			ToPhone: "87479999999",
		})
		assert.ErrorIs(t, err, account.ErrInsufficientFunds)
	})

	t.Run("blocked sender", func(t *testing.T) {
		w := newWorld(t, "1000.00")
		w.acc.Blocked = true

		_, err := w.svc.Transfer(context.Background(), transfer.Request{
			UserID:        w.sender.ID,
			Amount:        kzt(t, "100.00"),
			ToPhone:       "87479999999",
			FromAccountID: &w.acc.ID,
		})
		assert.ErrorIs(t, err, account.ErrAccountBlocked)
	})
}

func TestTransfer_BlockedSenderRejected(t *testing.T) {
	w := newWorld(t, "1000.00")
	w.acc.Blocked = true
	w.addRecipient(t, "87470000002", "4400110000000002", "0")

	_, err := w.svc.Transfer(context.Background(), transfer.Request{
		UserID:        w.sender.ID,
		Amount:        kzt(t, "100.00"),
		ToPhone:       "87470000002",
		FromAccountID: &w.acc.ID,
	})
	assert.ErrorIs(t, err, account.ErrAccountBlocked)
	assert.Equal(t, "1000.00 KZT", w.uow.Account(w.acc.ID).Balance.String())
}

func TestTransfer_BlockedRecipientStillReceives(t *testing.T) {
	w := newWorld(t, "1000.00")
	_, recipientAcc := w.addRecipient(t, "87470000002", "4400110000000002", "0")
	recipientAcc.Blocked = true

	_, err := w.svc.Transfer(context.Background(), transfer.Request{
		UserID:  w.sender.ID,
		Amount:  kzt(t, "100.00"),
		ToPhone: "87470000002",
	})
	require.NoError(t, err, "blocking prevents outflow only")
	assert.Equal(t, "100.00 KZT", w.uow.Account(recipientAcc.ID).Balance.String())
}

func TestTransfer_ExplicitAccountMustBeOwned(t *testing.T) {
	w := newWorld(t, "1000.00")
	_, other := w.addRecipient(t, "87470000002", "4400110000000002", "500.00")

	_, err := w.svc.Transfer(context.Background(), transfer.Request{
		UserID:        w.sender.ID,
		Amount:        kzt(t, "100.00"),
		ToCard:        "5500 0000 0000 0000",
		FromAccountID: &other.ID,
	})
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestTransfer_SenderSelection(t *testing.T) {
	w := newWorld(t, "10.00")
	// A second account with enough balance; selection must skip the first.
	second := account.New(w.sender.ID, "4400110000000099", currency.KZT)
	require.NoError(t, second.Credit(kzt(t, "500.00")))
	w.uow.AccountsData = append(w.uow.AccountsData, second)
	w.addRecipient(t, "87470000002", "4400110000000002", "0")

	res, err := w.svc.Transfer(context.Background(), transfer.Request{
		UserID:  w.sender.ID,
		Amount:  kzt(t, "100.00"),
		ToPhone: "87470000002",
	})
	require.NoError(t, err)
	assert.Equal(t, second.ID, res.FromAccountID)
	assert.Equal(t, "10.00 KZT", w.uow.Account(w.acc.ID).Balance.String())
}

func TestTransfer_NoAccountsAtAll(t *testing.T) {
	uow := fixtures.NewMemoryUoW()
	lonely := user.New("87010000009", "hash", "No Accounts")
	uow.UsersData = append(uow.UsersData, lonely)
	svc := transfer.New(uow, slog.Default())

	_, err := svc.Transfer(context.Background(), transfer.Request{
		UserID: lonely.ID,
		Amount: kzt(t, "10.00"),
		ToCard: "5500 0000 0000 0000",
	})
	assert.ErrorIs(t, err, account.ErrNoUsableAccount)
}

func TestTransfer_ValidationBeforeResolution(t *testing.T) {
	w := newWorld(t, "1000.00")

	_, err := w.svc.Transfer(context.Background(), transfer.Request{
		UserID: w.sender.ID,
		Amount: money.Zero(currency.KZT),
		ToCard: "5500 0000 0000 0000",
	})
	assert.ErrorIs(t, err, account.ErrInvalidAmount)

	_, err = w.svc.Transfer(context.Background(), transfer.Request{
		UserID: w.sender.ID,
		Amount: kzt(t, "10.00"),
	})
	assert.ErrorIs(t, err, account.ErrNoRecipient)
}

func TestTransfer_LedgerFailureRollsBackDebit(t *testing.T) {
	w := newWorld(t, "1000.00")
	_, recipientAcc := w.addRecipient(t, "87470000002", "4400110000000002", "0")
	w.uow.FailTransactionCreate = errors.New("connection reset")

	_, err := w.svc.Transfer(context.Background(), transfer.Request{
		UserID:  w.sender.ID,
		Amount:  kzt(t, "100.00"),
		ToPhone: "87470000002",
	})
	require.Error(t, err)

	assert.Equal(t, "1000.00 KZT", w.uow.Account(w.acc.ID).Balance.String(),
		"debit must not survive a failed unit of work")
	assert.Equal(t, "0.00 KZT", w.uow.Account(recipientAcc.ID).Balance.String())
	assert.Empty(t, w.uow.TransactionsData)
}
