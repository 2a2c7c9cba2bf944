package repository

import (
	"context"
	"errors"

	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/deposit"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type depositRepository struct {
	db *gorm.DB
}

// NewDepositRepository creates a deposit repository bound to the given session.
func NewDepositRepository(db *gorm.DB) *depositRepository {
	return &depositRepository{db: db}
}

func (r *depositRepository) Create(ctx context.Context, d *deposit.Deposit) error {
	m := Deposit{
		ID:         d.ID,
		UserID:     d.UserID,
		Amount:     d.Amount.Amount(),
		Currency:   string(d.Amount.Currency()),
		Rate:       d.Rate,
		TermMonths: d.TermMonths,
		Tier:       string(d.Tier),
		StartDate:  d.StartDate,
		EndDate:    d.EndDate,
		Active:     d.Active,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *depositRepository) GetOwned(ctx context.Context, id, userID uuid.UUID) (*deposit.Deposit, error) {
	var m Deposit
	err := r.db.WithContext(ctx).First(&m, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, deposit.ErrDepositNotFound
		}
		return nil, err
	}
	return mapDeposit(&m)
}

func (r *depositRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*deposit.Deposit, error) {
	var models []Deposit
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("start_date").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	deposits := make([]*deposit.Deposit, 0, len(models))
	for i := range models {
		d, err := mapDeposit(&models[i])
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, nil
}

func (r *depositRepository) Update(ctx context.Context, d *deposit.Deposit) error {
	return r.db.WithContext(ctx).
		Model(&Deposit{}).
		Where("id = ?", d.ID).
		Update("active", d.Active).Error
}

func mapDeposit(m *Deposit) (*deposit.Deposit, error) {
	amount, err := money.New(m.Amount, currency.Code(m.Currency))
	if err != nil {
		return nil, err
	}
	return &deposit.Deposit{
		ID:         m.ID,
		UserID:     m.UserID,
		Amount:     amount,
		Rate:       m.Rate,
		TermMonths: m.TermMonths,
		Tier:       deposit.Tier(m.Tier),
		StartDate:  m.StartDate,
		EndDate:    m.EndDate,
		Active:     m.Active,
	}, nil
}
