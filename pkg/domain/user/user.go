// Package user holds the user aggregate and the favorites bookmark entity.
package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup key.
	ErrUserNotFound = errors.New("user not found")
	// ErrFavoriteNotFound is returned when a favorite does not exist or is not owned by the requester.
	ErrFavoriteNotFound = errors.New("favorite not found")
	// ErrUserUnauthorized is returned for failed logins and invalid tokens.
	ErrUserUnauthorized = errors.New("unauthorized")
	// ErrPhoneAlreadyRegistered is returned when registration reuses a phone number.
	ErrPhoneAlreadyRegistered = errors.New("phone already registered")
)

// Role distinguishes regular customers, administrators and the synthetic
// owners of service counterparty accounts.
type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RoleService Role = "service"
)

// User is an account owner. Phone is the unique login and transfer-lookup
// key, stored in canonical normalized form.
type User struct {
	ID           uuid.UUID
	Phone        string
	PasswordHash string
	FullName     string
	AvatarURL    string
	Role         Role
	CreatedAt    time.Time
}

// New creates a regular user with a fresh identity.
func New(phone, passwordHash, fullName string) *User {
	return &User{
		ID:           uuid.New(),
		Phone:        phone,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Role:         RoleUser,
		CreatedAt:    time.Now(),
	}
}

// Favorite is a saved payee: a phone number, card number or service category
// the user pays often. Color pair drives the client's tile gradient.
type Favorite struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Name       string
	Value      string
	Type       string
	ColorStart string
	ColorEnd   string
	CreatedAt  time.Time
}
