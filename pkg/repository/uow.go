package repository

import "context"

// Registry exposes every repository bound to one storage session. All
// repositories obtained from the same Registry share that session, which is
// what makes a unit of work atomic.
type Registry interface {
	Users() UserRepository
	Accounts() AccountRepository
	Transactions() TransactionRepository
	Loans() LoanRepository
	Deposits() DepositRepository
	Insurances() InsuranceRepository
	Favorites() FavoriteRepository
}

// UnitOfWork runs a function inside one atomic transaction boundary. Every
// mutation made through the Registry commits together when fn returns nil and
// rolls back together when it returns an error — no partial debit or credit
// is ever observable outside the boundary.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(r Registry) error) error
}
