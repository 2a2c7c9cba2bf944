package repository

import (
	"context"

	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/account"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a ledger-log repository bound to the given session.
func NewTransactionRepository(db *gorm.DB) *transactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *account.Transaction) error {
	m := Transaction{
		ID:            tx.ID,
		FromAccountID: tx.FromAccountID,
		ToAccountID:   tx.ToAccountID,
		Amount:        tx.Amount.Amount(),
		Currency:      string(tx.Amount.Currency()),
		Category:      tx.Category,
		CreatedAt:     tx.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *transactionRepository) ListByAccounts(ctx context.Context, accountIDs []uuid.UUID, limit int) ([]*account.Transaction, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}
	var models []Transaction
	q := r.db.WithContext(ctx).
		Where("from_account_id IN ? OR to_account_id IN ?", accountIDs, accountIDs).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	result := make([]*account.Transaction, 0, len(models))
	for i := range models {
		tx, err := mapTransaction(&models[i])
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, nil
}

func mapTransaction(m *Transaction) (*account.Transaction, error) {
	amount, err := money.New(m.Amount, currency.Code(m.Currency))
	if err != nil {
		return nil, err
	}
	return &account.Transaction{
		ID:            m.ID,
		FromAccountID: m.FromAccountID,
		ToAccountID:   m.ToAccountID,
		Amount:        amount,
		Category:      m.Category,
		CreatedAt:     m.CreatedAt,
	}, nil
}
