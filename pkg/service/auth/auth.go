// Package auth implements phone+password login and JWT issuance.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bellybank/backend/pkg/config"
	"github.com/bellybank/backend/pkg/domain/user"
	"github.com/bellybank/backend/pkg/phone"
	"github.com/bellybank/backend/pkg/repository"
	"github.com/bellybank/backend/pkg/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// dummyHash keeps the bcrypt cost of a miss equal to the cost of a hit, so
// response timing does not reveal whether a phone number is registered.
const dummyHash = "$2a$10$7zFqzDbD3RrlkMTczbXG9OWZ0FLOXjIxXzSZ.QZxkVXjXcx7QZQiC"

// Service authenticates users and issues tokens.
type Service struct {
	uow    repository.UnitOfWork
	cfg    *config.Jwt
	logger *slog.Logger
}

// New creates an auth service.
func New(uow repository.UnitOfWork, cfg *config.Jwt, logger *slog.Logger) *Service {
	return &Service{uow: uow, cfg: cfg, logger: logger}
}

// Login verifies phone+password and returns the authenticated user. Every
// failure mode returns user.ErrUserUnauthorized.
func (s *Service) Login(ctx context.Context, phoneNumber, password string) (*user.User, error) {
	canonical := phone.Normalize(phoneNumber)

	var u *user.User
	err := s.uow.Do(ctx, func(r repository.Registry) error {
		var err error
		u, err = r.Users().GetByPhone(ctx, canonical)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				_ = utils.CheckPasswordHash(password, dummyHash)
				return user.ErrUserUnauthorized
			}
			return err
		}
		if !utils.CheckPasswordHash(password, u.PasswordHash) {
			return user.ErrUserUnauthorized
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("login failed", "phone", canonical)
		return nil, err
	}

	s.logger.Info("login successful", "user_id", u.ID)
	return u, nil
}

// GenerateToken signs a JWT carrying the user id and phone.
func (s *Service) GenerateToken(u *user.User) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = u.ID.String()
	claims["phone"] = u.Phone
	claims["exp"] = time.Now().Add(s.cfg.Expiry).Unix()
	return token.SignedString([]byte(s.cfg.Secret))
}

// UserIDFromToken extracts the authenticated user id from a verified token.
func UserIDFromToken(token *jwt.Token) (uuid.UUID, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	return id, nil
}
