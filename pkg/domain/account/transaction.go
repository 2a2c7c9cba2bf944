package account

import (
	"errors"
	"time"

	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/google/uuid"
)

// ErrTransactionNoParty is returned when a transaction names neither a source
// nor a destination account.
var ErrTransactionNoParty = errors.New("transaction must reference a source or destination account")

// Transaction is an immutable ledger entry. Exactly three shapes are valid:
//   - both accounts set: internal transfer
//   - source only: outflow to an external or synthetic counterparty
//   - destination only: inflow with no internal source (loan disbursement, deposit payout)
//
// Entries are never updated or deleted once created.
type Transaction struct {
	ID            uuid.UUID
	FromAccountID *uuid.UUID
	ToAccountID   *uuid.UUID
	Amount        money.Money
	Category      string
	CreatedAt     time.Time
}

// NewTransaction creates a ledger entry, validating the party and amount
// invariants.
func NewTransaction(from, to *uuid.UUID, amount money.Money, category string) (*Transaction, error) {
	if from == nil && to == nil {
		return nil, ErrTransactionNoParty
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return &Transaction{
		ID:            uuid.New(),
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        amount,
		Category:      category,
		CreatedAt:     time.Now(),
	}, nil
}

// IsInternal reports whether both parties are bank accounts.
func (t *Transaction) IsInternal() bool {
	return t.FromAccountID != nil && t.ToAccountID != nil
}
