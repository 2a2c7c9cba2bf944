// Package account implements account listing, blocking, ledger history and
// the favorites bookmarks.
package account

import (
	"context"
	"log/slog"
	"time"

	"github.com/bellybank/backend/pkg/domain/account"
	"github.com/bellybank/backend/pkg/domain/user"
	"github.com/bellybank/backend/pkg/repository"
	"github.com/google/uuid"
)

// Default tile gradient for favorites saved without explicit colors.
const (
	defaultColorStart = "#FFA726"
	defaultColorEnd   = "#FB8C00"
)

// historyLimit caps the transactions listing.
const historyLimit = 50

// Service reads and administers the requester's accounts.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates an account service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// List returns the requester's accounts in creation order.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	var accounts []*account.Account
	err := s.uow.Do(ctx, func(r repository.Registry) error {
		var err error
		accounts, err = r.Accounts().ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// SetBlocked blocks or unblocks the requester's own account. A blocked
// account refuses debits but still accepts credits.
func (s *Service) SetBlocked(ctx context.Context, userID, accountID uuid.UUID, blocked bool) error {
	err := s.uow.Do(ctx, func(r repository.Registry) error {
		a, err := r.Accounts().GetForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if a.UserID != userID {
			return account.ErrAccountNotFound
		}
		a.Blocked = blocked
		a.UpdatedAt = time.Now()
		return r.Accounts().Update(ctx, a)
	})
	if err != nil {
		return err
	}

	s.logger.Info("account block state changed", "account_id", accountID, "blocked", blocked)
	return nil
}

// Transactions returns recent ledger entries touching any of the requester's
// accounts, newest first.
func (s *Service) Transactions(ctx context.Context, userID uuid.UUID) ([]*account.Transaction, error) {
	var entries []*account.Transaction
	err := s.uow.Do(ctx, func(r repository.Registry) error {
		accounts, err := r.Accounts().ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(accounts))
		for i, a := range accounts {
			ids[i] = a.ID
		}
		entries, err = r.Transactions().ListByAccounts(ctx, ids, historyLimit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// FavoriteRequest is a new favorite payee.
type FavoriteRequest struct {
	UserID     uuid.UUID
	Name       string
	Value      string
	Type       string
	ColorStart string
	ColorEnd   string
}

// Favorites returns the requester's saved payees.
func (s *Service) Favorites(ctx context.Context, userID uuid.UUID) ([]*user.Favorite, error) {
	var favorites []*user.Favorite
	err := s.uow.Do(ctx, func(r repository.Registry) error {
		var err error
		favorites, err = r.Favorites().ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return favorites, nil
}

// AddFavorite saves a payee, filling in the default tile gradient when the
// client sends no colors.
func (s *Service) AddFavorite(ctx context.Context, req FavoriteRequest) (*user.Favorite, error) {
	if req.ColorStart == "" {
		req.ColorStart = defaultColorStart
	}
	if req.ColorEnd == "" {
		req.ColorEnd = defaultColorEnd
	}
	f := &user.Favorite{
		ID:         uuid.New(),
		UserID:     req.UserID,
		Name:       req.Name,
		Value:      req.Value,
		Type:       req.Type,
		ColorStart: req.ColorStart,
		ColorEnd:   req.ColorEnd,
		CreatedAt:  time.Now(),
	}
	err := s.uow.Do(ctx, func(r repository.Registry) error {
		return r.Favorites().Create(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteFavorite removes a saved payee. Deleting an absent favorite is a
// no-op so removal is idempotent.
func (s *Service) DeleteFavorite(ctx context.Context, userID, favoriteID uuid.UUID) error {
	return s.uow.Do(ctx, func(r repository.Registry) error {
		return r.Favorites().Delete(ctx, favoriteID, userID)
	})
}
