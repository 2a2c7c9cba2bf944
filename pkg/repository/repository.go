// Package repository defines the persistence ports the services depend on.
// Implementations live in infra/repository.
package repository

import (
	"context"

	"github.com/bellybank/backend/pkg/domain/account"
	"github.com/bellybank/backend/pkg/domain/deposit"
	"github.com/bellybank/backend/pkg/domain/insurance"
	"github.com/bellybank/backend/pkg/domain/loan"
	"github.com/bellybank/backend/pkg/domain/user"
	"github.com/google/uuid"
)

// UserRepository persists users.
type UserRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	// GetByPhone looks a user up by canonical phone. Returns user.ErrUserNotFound when absent.
	GetByPhone(ctx context.Context, phone string) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
}

// AccountRepository persists accounts.
type AccountRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*account.Account, error)
	// GetForUpdate fetches the account under a row lock; balance mutations
	// must go through it so concurrent units of work on the same account are
	// serialized.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error)
	// GetByCard looks an account up by exact card number. Returns
	// account.ErrAccountNotFound when absent.
	GetByCard(ctx context.Context, cardNumber string) (*account.Account, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error)
	Create(ctx context.Context, a *account.Account) error
	// Update persists the balance and blocked flag of an already-loaded account.
	Update(ctx context.Context, a *account.Account) error
}

// TransactionRepository appends to and reads the immutable ledger log.
type TransactionRepository interface {
	Create(ctx context.Context, tx *account.Transaction) error
	// ListByAccounts returns entries touching any of the accounts, newest first.
	ListByAccounts(ctx context.Context, accountIDs []uuid.UUID, limit int) ([]*account.Transaction, error)
}

// LoanRepository persists loans and their schedules.
type LoanRepository interface {
	Create(ctx context.Context, l *loan.Loan) error
	CreateSchedule(ctx context.Context, entries []*loan.ScheduleEntry) error
	// GetOwned returns the loan only when it belongs to userID; otherwise
	// loan.ErrLoanNotFound.
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*loan.Loan, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*loan.Loan, error)
	Schedule(ctx context.Context, loanID uuid.UUID) ([]*loan.ScheduleEntry, error)
	// UnpaidByUser returns unpaid entries across the user's active loans,
	// ordered by due date.
	UnpaidByUser(ctx context.Context, userID uuid.UUID) ([]*loan.ScheduleEntry, error)
	MarkPaid(ctx context.Context, entryID uuid.UUID) error
	Update(ctx context.Context, l *loan.Loan) error
}

// DepositRepository persists deposits.
type DepositRepository interface {
	Create(ctx context.Context, d *deposit.Deposit) error
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*deposit.Deposit, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*deposit.Deposit, error)
	Update(ctx context.Context, d *deposit.Deposit) error
}

// InsuranceRepository persists insurance policies.
type InsuranceRepository interface {
	Create(ctx context.Context, p *insurance.Policy) error
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*insurance.Policy, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*insurance.Policy, error)
	Update(ctx context.Context, p *insurance.Policy) error
}

// FavoriteRepository persists saved payees.
type FavoriteRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*user.Favorite, error)
	Create(ctx context.Context, f *user.Favorite) error
	// Delete removes the favorite only when owned by userID; deleting an
	// absent favorite is not an error.
	Delete(ctx context.Context, id, userID uuid.UUID) error
}
