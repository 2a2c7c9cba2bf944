package repository

import (
	"context"
	"errors"

	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/loan"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a loan repository bound to the given session.
func NewLoanRepository(db *gorm.DB) *loanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, l *loan.Loan) error {
	m := Loan{
		ID:             l.ID,
		UserID:         l.UserID,
		Amount:         l.Amount.Amount(),
		Currency:       string(l.Amount.Currency()),
		TermMonths:     l.TermMonths,
		MonthlyPayment: l.MonthlyPayment.Amount(),
		Type:           string(l.Type),
		Active:         l.Active,
		CreatedAt:      l.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *loanRepository) CreateSchedule(ctx context.Context, entries []*loan.ScheduleEntry) error {
	models := make([]LoanSchedule, len(entries))
	for i, e := range entries {
		models[i] = LoanSchedule{
			ID:        e.ID,
			LoanID:    e.LoanID,
			DueDate:   e.DueDate,
			Amount:    e.Amount.Amount(),
			Currency:  string(e.Amount.Currency()),
			Paid:      e.Paid,
			CreatedAt: e.CreatedAt,
		}
	}
	return r.db.WithContext(ctx).Create(&models).Error
}

func (r *loanRepository) GetOwned(ctx context.Context, id, userID uuid.UUID) (*loan.Loan, error) {
	var m Loan
	err := r.db.WithContext(ctx).First(&m, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrLoanNotFound
		}
		return nil, err
	}
	return mapLoan(&m)
}

func (r *loanRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*loan.Loan, error) {
	var models []Loan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("created_at").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	loans := make([]*loan.Loan, 0, len(models))
	for i := range models {
		l, err := mapLoan(&models[i])
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, nil
}

func (r *loanRepository) Schedule(ctx context.Context, loanID uuid.UUID) ([]*loan.ScheduleEntry, error) {
	var models []LoanSchedule
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("due_date").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return mapScheduleEntries(models)
}

func (r *loanRepository) UnpaidByUser(ctx context.Context, userID uuid.UUID) ([]*loan.ScheduleEntry, error) {
	var models []LoanSchedule
	err := r.db.WithContext(ctx).
		Joins("JOIN loans ON loans.id = loan_schedules.loan_id").
		Where("loans.user_id = ? AND loans.active = ? AND loan_schedules.paid = ?", userID, true, false).
		Order("loan_schedules.due_date").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return mapScheduleEntries(models)
}

func (r *loanRepository) MarkPaid(ctx context.Context, entryID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&LoanSchedule{}).
		Where("id = ?", entryID).
		Update("paid", true).Error
}

func (r *loanRepository) Update(ctx context.Context, l *loan.Loan) error {
	return r.db.WithContext(ctx).
		Model(&Loan{}).
		Where("id = ?", l.ID).
		Update("active", l.Active).Error
}

func mapLoan(m *Loan) (*loan.Loan, error) {
	code := currency.Code(m.Currency)
	amount, err := money.New(m.Amount, code)
	if err != nil {
		return nil, err
	}
	payment, err := money.New(m.MonthlyPayment, code)
	if err != nil {
		return nil, err
	}
	return &loan.Loan{
		ID:             m.ID,
		UserID:         m.UserID,
		Amount:         amount,
		TermMonths:     m.TermMonths,
		MonthlyPayment: payment,
		Type:           loan.Type(m.Type),
		CreatedAt:      m.CreatedAt,
		Active:         m.Active,
	}, nil
}

func mapScheduleEntries(models []LoanSchedule) ([]*loan.ScheduleEntry, error) {
	entries := make([]*loan.ScheduleEntry, 0, len(models))
	for i := range models {
		m := &models[i]
		amount, err := money.New(m.Amount, currency.Code(m.Currency))
		if err != nil {
			return nil, err
		}
		entries = append(entries, &loan.ScheduleEntry{
			ID:        m.ID,
			LoanID:    m.LoanID,
			DueDate:   m.DueDate,
			Amount:    amount,
			Paid:      m.Paid,
			CreatedAt: m.CreatedAt,
		})
	}
	return entries, nil
}
