package repository

import (
	"context"
	"errors"

	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/account"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates an account repository bound to the given session.
func NewAccountRepository(db *gorm.DB) *accountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapAccountErr(err)
	}
	return mapAccount(&m)
}

// GetForUpdate takes a FOR UPDATE row lock so concurrent balance mutations on
// the same account serialize. Callers locking several accounts must lock them
// in ascending id order.
func (r *accountRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var m Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, mapAccountErr(err)
	}
	return mapAccount(&m)
}

func (r *accountRepository) GetByCard(ctx context.Context, cardNumber string) (*account.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).First(&m, "card_number = ?", cardNumber).Error; err != nil {
		return nil, mapAccountErr(err)
	}
	return mapAccount(&m)
}

func (r *accountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	var models []Account
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	accounts := make([]*account.Account, 0, len(models))
	for i := range models {
		a, err := mapAccount(&models[i])
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	m := Account{
		ID:         a.ID,
		UserID:     a.UserID,
		CardNumber: a.CardNumber,
		Balance:    a.Balance.Amount(),
		Currency:   string(a.Balance.Currency()),
		Blocked:    a.Blocked,
		CreatedAt:  a.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *accountRepository) Update(ctx context.Context, a *account.Account) error {
	return r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"balance": a.Balance.Amount(),
			"blocked": a.Blocked,
		}).Error
}

func mapAccount(m *Account) (*account.Account, error) {
	balance, err := money.New(m.Balance, currency.Code(m.Currency))
	if err != nil {
		return nil, err
	}
	return &account.Account{
		ID:         m.ID,
		UserID:     m.UserID,
		CardNumber: m.CardNumber,
		Balance:    balance,
		Blocked:    m.Blocked,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}, nil
}

func mapAccountErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return account.ErrAccountNotFound
	}
	return err
}
