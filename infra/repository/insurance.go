package repository

import (
	"context"
	"errors"

	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/insurance"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type insuranceRepository struct {
	db *gorm.DB
}

// NewInsuranceRepository creates a policy repository bound to the given session.
func NewInsuranceRepository(db *gorm.DB) *insuranceRepository {
	return &insuranceRepository{db: db}
}

func (r *insuranceRepository) Create(ctx context.Context, p *insurance.Policy) error {
	m := Insurance{
		ID:          p.ID,
		UserID:      p.UserID,
		Type:        string(p.Type),
		Coverage:    p.Coverage,
		MonthlyCost: p.MonthlyCost.Amount(),
		Currency:    string(p.MonthlyCost.Currency()),
		TermMonths:  p.TermMonths,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Active:      p.Active,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *insuranceRepository) GetOwned(ctx context.Context, id, userID uuid.UUID) (*insurance.Policy, error) {
	var m Insurance
	err := r.db.WithContext(ctx).First(&m, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, insurance.ErrPolicyNotFound
		}
		return nil, err
	}
	return mapPolicy(&m)
}

func (r *insuranceRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*insurance.Policy, error) {
	var models []Insurance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("start_date").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	policies := make([]*insurance.Policy, 0, len(models))
	for i := range models {
		p, err := mapPolicy(&models[i])
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, nil
}

func (r *insuranceRepository) Update(ctx context.Context, p *insurance.Policy) error {
	return r.db.WithContext(ctx).
		Model(&Insurance{}).
		Where("id = ?", p.ID).
		Update("active", p.Active).Error
}

func mapPolicy(m *Insurance) (*insurance.Policy, error) {
	monthly, err := money.New(m.MonthlyCost, currency.Code(m.Currency))
	if err != nil {
		return nil, err
	}
	return &insurance.Policy{
		ID:          m.ID,
		UserID:      m.UserID,
		Type:        insurance.Type(m.Type),
		Coverage:    m.Coverage,
		MonthlyCost: monthly,
		TermMonths:  m.TermMonths,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		Active:      m.Active,
	}, nil
}
