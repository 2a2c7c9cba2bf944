// Package user implements registration and profile reads.
package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/account"
	"github.com/bellybank/backend/pkg/domain/user"
	"github.com/bellybank/backend/pkg/phone"
	"github.com/bellybank/backend/pkg/repository"
	"github.com/bellybank/backend/pkg/utils"
	"github.com/google/uuid"
)

// Service manages user accounts.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a user service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// RegisterRequest is a new customer signup.
type RegisterRequest struct {
	Phone    string
	Password string
	FullName string
}

// Register creates the user and their default account in the operating
// currency, with a freshly issued card number. The phone number is stored in
// canonical form, so every later login and transfer lookup hits the same key.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*user.User, error) {
	canonical := phone.Normalize(req.Phone)
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	cardNumber, err := utils.GenerateCardNumber()
	if err != nil {
		return nil, err
	}

	u := user.New(canonical, hash, req.FullName)
	err = s.uow.Do(ctx, func(r repository.Registry) error {
		_, err := r.Users().GetByPhone(ctx, canonical)
		switch {
		case err == nil:
			return user.ErrPhoneAlreadyRegistered
		case !errors.Is(err, user.ErrUserNotFound):
			return err
		}
		if err := r.Users().Create(ctx, u); err != nil {
			return err
		}
		return r.Accounts().Create(ctx, account.New(u.ID, cardNumber, currency.DefaultCurrency))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", u.ID, "phone", canonical)
	return u, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var u *user.User
	err := s.uow.Do(ctx, func(r repository.Registry) error {
		var err error
		u, err = r.Users().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}
