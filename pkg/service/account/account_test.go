package account_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/bellybank/backend/internal/fixtures"
	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/account"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/bellybank/backend/pkg/domain/user"
	accountsvc "github.com/bellybank/backend/pkg/service/account"
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
	svc   *accountsvc.Service
	owner *user.User
	acc   *account.Account
}

func newWorld(t *testing.T) *world {
	t.Helper()
	uow := fixtures.NewMemoryUoW()
	owner := user.New("87010000001", "hash", "Owner")
	acc := account.New(owner.ID, "4400110000000001", currency.KZT)
	uow.UsersData = append(uow.UsersData, owner)
	uow.AccountsData = append(uow.AccountsData, acc)
	return &world{
		uow:   uow,
		svc:   accountsvc.New(uow, slog.Default()),
		owner: owner,
		acc:   acc,
	}
}

func TestList_OwnAccountsOnly(t *testing.T) {
	w := newWorld(t)
	stranger := user.New("87010000002", "hash", "Stranger")
	otherAcc := account.New(stranger.ID, "4400110000000002", currency.KZT)
	w.uow.UsersData = append(w.uow.UsersData, stranger)
	w.uow.AccountsData = append(w.uow.AccountsData, otherAcc)

	accounts, err := w.svc.List(context.Background(), w.owner.ID)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, w.acc.ID, accounts[0].ID)
}

func TestSetBlocked_TogglesOwnAccount(t *testing.T) {
	w := newWorld(t)

	require.NoError(t, w.svc.SetBlocked(context.Background(), w.owner.ID, w.acc.ID, true))
	assert.True(t, w.uow.Account(w.acc.ID).Blocked)

	// blocked accounts still receive credits
	require.NoError(t, w.uow.Account(w.acc.ID).Credit(kzt(t, "100.00")))

	require.NoError(t, w.svc.SetBlocked(context.Background(), w.owner.ID, w.acc.ID, false))
	assert.False(t, w.uow.Account(w.acc.ID).Blocked)
}

func TestSetBlocked_ForeignAccountRejected(t *testing.T) {
	w := newWorld(t)
	stranger := user.New("87010000002", "hash", "Stranger")
	w.uow.UsersData = append(w.uow.UsersData, stranger)

	err := w.svc.SetBlocked(context.Background(), stranger.ID, w.acc.ID, true)
	require.ErrorIs(t, err, account.ErrAccountNotFound)
	assert.False(t, w.uow.Account(w.acc.ID).Blocked)
}

func TestTransactions_NewestFirstScopedToOwner(t *testing.T) {
	w := newWorld(t)
	stranger := user.New("87010000002", "hash", "Stranger")
	otherAcc := account.New(stranger.ID, "4400110000000002", currency.KZT)
	w.uow.UsersData = append(w.uow.UsersData, stranger)
	w.uow.AccountsData = append(w.uow.AccountsData, otherAcc)

	older, err := account.NewTransaction(&w.acc.ID, nil, kzt(t, "10.00"), "first")
	require.NoError(t, err)
	newer, err := account.NewTransaction(nil, &w.acc.ID, kzt(t, "20.00"), "second")
	require.NoError(t, err)
	foreign, err := account.NewTransaction(&otherAcc.ID, nil, kzt(t, "30.00"), "foreign")
	require.NoError(t, err)
	w.uow.TransactionsData = append(w.uow.TransactionsData, older, newer, foreign)

	entries, err := w.svc.Transactions(context.Background(), w.owner.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Category)
	assert.Equal(t, "first", entries[1].Category)
}

func TestFavorites_AddListDelete(t *testing.T) {
	w := newWorld(t)

	f, err := w.svc.AddFavorite(context.Background(), accountsvc.FavoriteRequest{
		UserID: w.owner.ID,
		Name:   "Mom",
		Value:  "87470000002",
		Type:   "phone",
	})
	require.NoError(t, err)
	// default gradient filled in
	assert.Equal(t, "#FFA726", f.ColorStart)
	assert.Equal(t, "#FB8C00", f.ColorEnd)

	list, err := w.svc.Favorites(context.Background(), w.owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mom", list[0].Name)

	require.NoError(t, w.svc.DeleteFavorite(context.Background(), w.owner.ID, f.ID))
	list, err = w.svc.Favorites(context.Background(), w.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	// idempotent
	require.NoError(t, w.svc.DeleteFavorite(context.Background(), w.owner.ID, f.ID))
}

func TestFavorites_ExplicitColorsKept(t *testing.T) {
	w := newWorld(t)

	f, err := w.svc.AddFavorite(context.Background(), accountsvc.FavoriteRequest{
		UserID:     w.owner.ID,
		Name:       "Rent",
		Value:      "4400110000000009",
		Type:       "card",
		ColorStart: "#111111",
		ColorEnd:   "#222222",
	})
	require.NoError(t, err)
	assert.Equal(t, "#111111", f.ColorStart)
	assert.Equal(t, "#222222", f.ColorEnd)
}

func TestDeleteFavorite_ForeignFavoriteUntouched(t *testing.T) {
	w := newWorld(t)
	stranger := user.New("87010000002", "hash", "Stranger")
	w.uow.UsersData = append(w.uow.UsersData, stranger)

	f, err := w.svc.AddFavorite(context.Background(), accountsvc.FavoriteRequest{
		UserID: w.owner.ID,
		Name:   "Mom",
		Value:  "87470000002",
		Type:   "phone",
	})
	require.NoError(t, err)

	require.NoError(t, w.svc.DeleteFavorite(context.Background(), stranger.ID, f.ID))
	list, err := w.svc.Favorites(context.Background(), w.owner.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
