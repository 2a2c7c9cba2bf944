package repository

import (
	"context"

	"github.com/bellybank/backend/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides the transaction boundary and repository access in one
// abstraction. Every repository handed out by the Registry inside Do uses the
// same *gorm.DB transaction, which is what makes a unit of work atomic: a
// failure anywhere in fn rolls back every balance change, ledger append and
// schedule mutation made within it.
type UoW struct {
	db *gorm.DB
}

// NewUoW creates a unit-of-work factory over the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn inside one database transaction. fn returning an error rolls the
// transaction back; the error is passed through unchanged so callers can
// match domain sentinels.
func (u *UoW) Do(ctx context.Context, fn func(r repository.Registry) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&registry{tx: tx})
	})
}

// registry binds every repository to one transaction session.
type registry struct {
	tx *gorm.DB
}

func (r *registry) Users() repository.UserRepository               { return NewUserRepository(r.tx) }
func (r *registry) Accounts() repository.AccountRepository         { return NewAccountRepository(r.tx) }
func (r *registry) Transactions() repository.TransactionRepository { return NewTransactionRepository(r.tx) }
func (r *registry) Loans() repository.LoanRepository               { return NewLoanRepository(r.tx) }
func (r *registry) Deposits() repository.DepositRepository         { return NewDepositRepository(r.tx) }
func (r *registry) Insurances() repository.InsuranceRepository     { return NewInsuranceRepository(r.tx) }
func (r *registry) Favorites() repository.FavoriteRepository       { return NewFavoriteRepository(r.tx) }

var _ repository.UnitOfWork = (*UoW)(nil)
var _ repository.Registry = (*registry)(nil)
