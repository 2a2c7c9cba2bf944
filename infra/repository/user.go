// Package repository implements the persistence ports on GORM/Postgres.
package repository

import (
	"context"
	"errors"

	"github.com/bellybank/backend/pkg/domain/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository bound to the given session.
func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var m User
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return mapUser(&m), nil
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*user.User, error) {
	var m User
	if err := r.db.WithContext(ctx).First(&m, "phone = ?", phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return mapUser(&m), nil
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	m := User{
		ID:           u.ID,
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		AvatarURL:    u.AvatarURL,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func mapUser(m *User) *user.User {
	return &user.User{
		ID:           m.ID,
		Phone:        m.Phone,
		PasswordHash: m.PasswordHash,
		FullName:     m.FullName,
		AvatarURL:    m.AvatarURL,
		Role:         user.Role(m.Role),
		CreatedAt:    m.CreatedAt,
	}
}
