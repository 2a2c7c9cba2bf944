// Package fixtures provides an in-memory unit of work for service tests.
// Mutations made inside a failed Do are rolled back by snapshot/restore, so
// tests can assert the all-or-nothing contract without a database.
package fixtures

import (
	"context"

	"github.com/bellybank/backend/pkg/domain/account"
	"github.com/bellybank/backend/pkg/domain/deposit"
	"github.com/bellybank/backend/pkg/domain/insurance"
	"github.com/bellybank/backend/pkg/domain/loan"
	"github.com/bellybank/backend/pkg/domain/user"
	"github.com/bellybank/backend/pkg/repository"
	"github.com/google/uuid"
)

// MemoryUoW is an in-memory repository.UnitOfWork. Slices keep insertion
// order so "first account" selection behaves like the ordered SQL queries.
type MemoryUoW struct {
	UsersData        []*user.User
	AccountsData     []*account.Account
	TransactionsData []*account.Transaction
	LoansData        []*loan.Loan
	ScheduleData     []*loan.ScheduleEntry
	DepositsData     []*deposit.Deposit
	InsurancesData   []*insurance.Policy
	FavoritesData    []*user.Favorite

	// FailTransactionCreate forces ledger appends to fail, exercising
	// rollback paths.
	FailTransactionCreate error
}

// NewMemoryUoW returns an empty in-memory unit of work.
func NewMemoryUoW() *MemoryUoW {
	return &MemoryUoW{}
}

// Do snapshots the store, runs fn, and restores the snapshot when fn fails.
func (m *MemoryUoW) Do(_ context.Context, fn func(r repository.Registry) error) error {
	snapshot := m.clone()
	if err := fn(&memoryRegistry{store: m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *MemoryUoW) clone() *MemoryUoW {
	c := &MemoryUoW{}
	for _, u := range m.UsersData {
		v := *u
		c.UsersData = append(c.UsersData, &v)
	}
	for _, a := range m.AccountsData {
		v := *a
		c.AccountsData = append(c.AccountsData, &v)
	}
	for _, t := range m.TransactionsData {
		v := *t
		c.TransactionsData = append(c.TransactionsData, &v)
	}
	for _, l := range m.LoansData {
		v := *l
		c.LoansData = append(c.LoansData, &v)
	}
	for _, e := range m.ScheduleData {
		v := *e
		c.ScheduleData = append(c.ScheduleData, &v)
	}
	for _, d := range m.DepositsData {
		v := *d
		c.DepositsData = append(c.DepositsData, &v)
	}
	for _, p := range m.InsurancesData {
		v := *p
		c.InsurancesData = append(c.InsurancesData, &v)
	}
	for _, f := range m.FavoritesData {
		v := *f
		c.FavoritesData = append(c.FavoritesData, &v)
	}
	return c
}

func (m *MemoryUoW) restore(snapshot *MemoryUoW) {
	m.UsersData = snapshot.UsersData
	m.AccountsData = snapshot.AccountsData
	m.TransactionsData = snapshot.TransactionsData
	m.LoansData = snapshot.LoansData
	m.ScheduleData = snapshot.ScheduleData
	m.DepositsData = snapshot.DepositsData
	m.InsurancesData = snapshot.InsurancesData
	m.FavoritesData = snapshot.FavoritesData
}

// Account returns the stored account by id for assertions.
func (m *MemoryUoW) Account(id uuid.UUID) *account.Account {
	for _, a := range m.AccountsData {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// Loan returns the stored loan by id for assertions.
func (m *MemoryUoW) Loan(id uuid.UUID) *loan.Loan {
	for _, l := range m.LoansData {
		if l.ID == id {
			return l
		}
	}
	return nil
}

type memoryRegistry struct {
	store *MemoryUoW
}

func (r *memoryRegistry) Users() repository.UserRepository               { return &memUsers{r.store} }
func (r *memoryRegistry) Accounts() repository.AccountRepository         { return &memAccounts{r.store} }
func (r *memoryRegistry) Transactions() repository.TransactionRepository { return &memTransactions{r.store} }
func (r *memoryRegistry) Loans() repository.LoanRepository               { return &memLoans{r.store} }
func (r *memoryRegistry) Deposits() repository.DepositRepository         { return &memDeposits{r.store} }
func (r *memoryRegistry) Insurances() repository.InsuranceRepository     { return &memInsurances{r.store} }
func (r *memoryRegistry) Favorites() repository.FavoriteRepository       { return &memFavorites{r.store} }

type memUsers struct{ s *MemoryUoW }

func (m *memUsers) Get(_ context.Context, id uuid.UUID) (*user.User, error) {
	for _, u := range m.s.UsersData {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *memUsers) GetByPhone(_ context.Context, phone string) (*user.User, error) {
	for _, u := range m.s.UsersData {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	m.s.UsersData = append(m.s.UsersData, u)
	return nil
}

type memAccounts struct{ s *MemoryUoW }

func (m *memAccounts) Get(_ context.Context, id uuid.UUID) (*account.Account, error) {
	if a := m.s.Account(id); a != nil {
		return a, nil
	}
	return nil, account.ErrAccountNotFound
}

func (m *memAccounts) GetForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return m.Get(ctx, id)
}

func (m *memAccounts) GetByCard(_ context.Context, cardNumber string) (*account.Account, error) {
	for _, a := range m.s.AccountsData {
		if a.CardNumber == cardNumber {
			return a, nil
		}
	}
	return nil, account.ErrAccountNotFound
}

func (m *memAccounts) ListByUser(_ context.Context, userID uuid.UUID) ([]*account.Account, error) {
	var result []*account.Account
	for _, a := range m.s.AccountsData {
		if a.UserID == userID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *memAccounts) Create(_ context.Context, a *account.Account) error {
	m.s.AccountsData = append(m.s.AccountsData, a)
	return nil
}

func (m *memAccounts) Update(_ context.Context, a *account.Account) error {
	for i, existing := range m.s.AccountsData {
		if existing.ID == a.ID {
			m.s.AccountsData[i] = a
			return nil
		}
	}
	return account.ErrAccountNotFound
}

type memTransactions struct{ s *MemoryUoW }

func (m *memTransactions) Create(_ context.Context, tx *account.Transaction) error {
	if m.s.FailTransactionCreate != nil {
		return m.s.FailTransactionCreate
	}
	m.s.TransactionsData = append(m.s.TransactionsData, tx)
	return nil
}

func (m *memTransactions) ListByAccounts(_ context.Context, accountIDs []uuid.UUID, limit int) ([]*account.Transaction, error) {
	ids := make(map[uuid.UUID]bool, len(accountIDs))
	for _, id := range accountIDs {
		ids[id] = true
	}
	var result []*account.Transaction
	for i := len(m.s.TransactionsData) - 1; i >= 0; i-- {
		tx := m.s.TransactionsData[i]
		if (tx.FromAccountID != nil && ids[*tx.FromAccountID]) ||
			(tx.ToAccountID != nil && ids[*tx.ToAccountID]) {
			result = append(result, tx)
		}
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

type memLoans struct{ s *MemoryUoW }

func (m *memLoans) Create(_ context.Context, l *loan.Loan) error {
	m.s.LoansData = append(m.s.LoansData, l)
	return nil
}

func (m *memLoans) CreateSchedule(_ context.Context, entries []*loan.ScheduleEntry) error {
	m.s.ScheduleData = append(m.s.ScheduleData, entries...)
	return nil
}

func (m *memLoans) GetOwned(_ context.Context, id, userID uuid.UUID) (*loan.Loan, error) {
	for _, l := range m.s.LoansData {
		if l.ID == id && l.UserID == userID {
			return l, nil
		}
	}
	return nil, loan.ErrLoanNotFound
}

func (m *memLoans) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]*loan.Loan, error) {
	var result []*loan.Loan
	for _, l := range m.s.LoansData {
		if l.UserID == userID && l.Active {
			result = append(result, l)
		}
	}
	return result, nil
}

func (m *memLoans) Schedule(_ context.Context, loanID uuid.UUID) ([]*loan.ScheduleEntry, error) {
	var result []*loan.ScheduleEntry
	for _, e := range m.s.ScheduleData {
		if e.LoanID == loanID {
			result = append(result, e)
		}
	}
	loan.SortByDueDate(result)
	return result, nil
}

func (m *memLoans) UnpaidByUser(_ context.Context, userID uuid.UUID) ([]*loan.ScheduleEntry, error) {
	active := make(map[uuid.UUID]bool)
	for _, l := range m.s.LoansData {
		if l.UserID == userID && l.Active {
			active[l.ID] = true
		}
	}
	var result []*loan.ScheduleEntry
	for _, e := range m.s.ScheduleData {
		if active[e.LoanID] && !e.Paid {
			result = append(result, e)
		}
	}
	loan.SortByDueDate(result)
	return result, nil
}

func (m *memLoans) MarkPaid(_ context.Context, entryID uuid.UUID) error {
	for _, e := range m.s.ScheduleData {
		if e.ID == entryID {
			e.Paid = true
			return nil
		}
	}
	return loan.ErrLoanNotFound
}

func (m *memLoans) Update(_ context.Context, l *loan.Loan) error {
	for i, existing := range m.s.LoansData {
		if existing.ID == l.ID {
			m.s.LoansData[i] = l
			return nil
		}
	}
	return loan.ErrLoanNotFound
}

type memDeposits struct{ s *MemoryUoW }

func (m *memDeposits) Create(_ context.Context, d *deposit.Deposit) error {
	m.s.DepositsData = append(m.s.DepositsData, d)
	return nil
}

func (m *memDeposits) GetOwned(_ context.Context, id, userID uuid.UUID) (*deposit.Deposit, error) {
	for _, d := range m.s.DepositsData {
		if d.ID == id && d.UserID == userID {
			return d, nil
		}
	}
	return nil, deposit.ErrDepositNotFound
}

func (m *memDeposits) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]*deposit.Deposit, error) {
	var result []*deposit.Deposit
	for _, d := range m.s.DepositsData {
		if d.UserID == userID && d.Active {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *memDeposits) Update(_ context.Context, d *deposit.Deposit) error {
	for i, existing := range m.s.DepositsData {
		if existing.ID == d.ID {
			m.s.DepositsData[i] = d
			return nil
		}
	}
	return deposit.ErrDepositNotFound
}

type memInsurances struct{ s *MemoryUoW }

func (m *memInsurances) Create(_ context.Context, p *insurance.Policy) error {
	m.s.InsurancesData = append(m.s.InsurancesData, p)
	return nil
}

func (m *memInsurances) GetOwned(_ context.Context, id, userID uuid.UUID) (*insurance.Policy, error) {
	for _, p := range m.s.InsurancesData {
		if p.ID == id && p.UserID == userID {
			return p, nil
		}
	}
	return nil, insurance.ErrPolicyNotFound
}

func (m *memInsurances) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]*insurance.Policy, error) {
	var result []*insurance.Policy
	for _, p := range m.s.InsurancesData {
		if p.UserID == userID && p.Active {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *memInsurances) Update(_ context.Context, p *insurance.Policy) error {
	for i, existing := range m.s.InsurancesData {
		if existing.ID == p.ID {
			m.s.InsurancesData[i] = p
			return nil
		}
	}
	return insurance.ErrPolicyNotFound
}

type memFavorites struct{ s *MemoryUoW }

func (m *memFavorites) ListByUser(_ context.Context, userID uuid.UUID) ([]*user.Favorite, error) {
	var result []*user.Favorite
	for _, f := range m.s.FavoritesData {
		if f.UserID == userID {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *memFavorites) Create(_ context.Context, f *user.Favorite) error {
	m.s.FavoritesData = append(m.s.FavoritesData, f)
	return nil
}

func (m *memFavorites) Delete(_ context.Context, id, userID uuid.UUID) error {
	for i, f := range m.s.FavoritesData {
		if f.ID == id && f.UserID == userID {
			m.s.FavoritesData = append(m.s.FavoritesData[:i], m.s.FavoritesData[i+1:]...)
			return nil
		}
	}
	return nil
}

var _ repository.UnitOfWork = (*MemoryUoW)(nil)
