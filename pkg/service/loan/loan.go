// Package loan implements loan origination, installment payment and the
// payment calendar on top of the amortization engine.
package loan

import (
	"context"
	"log/slog"
	"time"

	"github.com/bellybank/backend/pkg/domain/account"
	"github.com/bellybank/backend/pkg/domain/loan"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/bellybank/backend/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service executes loan workflows inside units of work. Terms are injected so
// tests can price against alternate rate tables.
type Service struct {
	uow    repository.UnitOfWork
	terms  loan.Terms
	logger *slog.Logger
}

// New creates a loan service.
func New(uow repository.UnitOfWork, terms loan.Terms, logger *slog.Logger) *Service {
	return &Service{uow: uow, terms: terms, logger: logger}
}

// ApplyRequest is a loan application.
type ApplyRequest struct {
	UserID     uuid.UUID
	Amount     money.Money
	TermMonths int
	Income     decimal.Decimal
	Type       loan.Type
	// PropertyValue is required for mortgages.
	PropertyValue *decimal.Decimal
	// VehiclePrice is required for auto loans.
	VehiclePrice *decimal.Decimal
}

// ApplyResult reports an approved loan.
type ApplyResult struct {
	LoanID         uuid.UUID
	MonthlyPayment money.Money
	TotalPayable   money.Money
}

// LoanInfo is an active loan with its outstanding commitment.
type LoanInfo struct {
	Loan      *loan.Loan
	Remaining money.Money
}

// CalendarEntry is one unpaid installment surfaced to the payment calendar.
// The marker fields drive the mobile calendar widget directly.
type CalendarEntry struct {
	Amount        decimal.Decimal `json:"amount"`
	Marked        bool            `json:"marked"`
	DotColor      string          `json:"dotColor"`
	ActiveOpacity float64         `json:"activeOpacity"`
}

// PayResult reports one paid installment.
type PayResult struct {
	PaidAmount money.Money
	LoanClosed bool
}

// Apply prices the loan, checks affordability and collateral, then creates
// the loan, materializes its full schedule, credits the disbursement and logs
// it — one atomic unit of work.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	rate, err := s.terms.Rate(req.Type)
	if err != nil {
		return nil, err
	}
	ratio, err := s.terms.IncomeRatio(req.Type)
	if err != nil {
		return nil, err
	}

	payment, amounts, err := loan.Plan(req.Amount, rate, req.TermMonths)
	if err != nil {
		return nil, err
	}
	if err := loan.CheckAffordability(payment, req.Income, ratio); err != nil {
		return nil, err
	}
	if err := checkCollateral(req); err != nil {
		return nil, err
	}

	var result *ApplyResult
	err = s.uow.Do(ctx, func(r repository.Registry) error {
		target, err := firstUnblockedAccount(ctx, r, req.UserID)
		if err != nil {
			return err
		}
		target, err = r.Accounts().GetForUpdate(ctx, target.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		newLoan := &loan.Loan{
			ID:             uuid.New(),
			UserID:         req.UserID,
			Amount:         req.Amount,
			TermMonths:     req.TermMonths,
			MonthlyPayment: payment,
			Type:           req.Type,
			CreatedAt:      now,
			Active:         true,
		}
		if err := r.Loans().Create(ctx, newLoan); err != nil {
			return err
		}
		schedule := loan.GenerateSchedule(newLoan.ID, amounts, now)
		if err := r.Loans().CreateSchedule(ctx, schedule); err != nil {
			return err
		}

		if err := target.Credit(req.Amount); err != nil {
			return err
		}
		if err := r.Accounts().Update(ctx, target); err != nil {
			return err
		}

		entry, err := account.NewTransaction(nil, &target.ID, req.Amount,
			"Disbursement: "+s.terms.Category(req.Type))
		if err != nil {
			return err
		}
		if err := r.Transactions().Create(ctx, entry); err != nil {
			return err
		}

		result = &ApplyResult{
			LoanID:         newLoan.ID,
			MonthlyPayment: payment,
			TotalPayable:   loan.Remaining(schedule, req.Amount.Currency()),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("loan approved",
		"loan_id", result.LoanID,
		"type", req.Type,
		"term_months", req.TermMonths,
		"monthly_payment", result.MonthlyPayment.String(),
	)
	return result, nil
}

// My lists the requester's active loans with remaining commitments.
func (s *Service) My(ctx context.Context, userID uuid.UUID) ([]*LoanInfo, error) {
	var infos []*LoanInfo
	err := s.uow.Do(ctx, func(r repository.Registry) error {
		loans, err := r.Loans().ListActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, l := range loans {
			entries, err := r.Loans().Schedule(ctx, l.ID)
			if err != nil {
				return err
			}
			infos = append(infos, &LoanInfo{
				Loan:      l,
				Remaining: loan.Remaining(entries, l.Amount.Currency()),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// Calendar maps ISO due dates to installment amounts for every unpaid entry
// across the requester's active loans.
func (s *Service) Calendar(ctx context.Context, userID uuid.UUID) (map[string]CalendarEntry, error) {
	calendar := make(map[string]CalendarEntry)
	err := s.uow.Do(ctx, func(r repository.Registry) error {
		entries, err := r.Loans().UnpaidByUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, e := range entries {
			calendar[e.DueDate.Format("2006-01-02")] = CalendarEntry{
				Amount:   e.Amount.Amount(),
				Marked:   true,
				DotColor: "red",
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return calendar, nil
}

// Pay settles the earliest unpaid installment of the loan: debit the paying
// account, mark the entry paid, log the movement, and close the loan if that
// was the last entry — one atomic unit of work.
func (s *Service) Pay(ctx context.Context, userID, loanID uuid.UUID) (*PayResult, error) {
	var result *PayResult
	err := s.uow.Do(ctx, func(r repository.Registry) error {
		l, err := r.Loans().GetOwned(ctx, loanID, userID)
		if err != nil {
			return err
		}
		if !l.Active {
			return loan.ErrLoanNotFound
		}

		entries, err := r.Loans().Schedule(ctx, l.ID)
		if err != nil {
			return err
		}
		next := loan.NextUnpaid(entries)
		if next == nil {
			return loan.ErrNoPendingInstallments
		}

		payer, err := firstUnblockedAccount(ctx, r, userID)
		if err != nil {
			return err
		}
		payer, err = r.Accounts().GetForUpdate(ctx, payer.ID)
		if err != nil {
			return err
		}

		if err := payer.Debit(next.Amount); err != nil {
			return err
		}
		if err := r.Accounts().Update(ctx, payer); err != nil {
			return err
		}
		if err := r.Loans().MarkPaid(ctx, next.ID); err != nil {
			return err
		}

		entry, err := account.NewTransaction(&payer.ID, nil, next.Amount,
			"Loan installment ("+string(l.Type)+")")
		if err != nil {
			return err
		}
		if err := r.Transactions().Create(ctx, entry); err != nil {
			return err
		}

		closed := true
		for _, e := range entries {
			if !e.Paid && e.ID != next.ID {
				closed = false
				break
			}
		}
		if closed {
			l.Active = false
			if err := r.Loans().Update(ctx, l); err != nil {
				return err
			}
		}

		result = &PayResult{PaidAmount: next.Amount, LoanClosed: closed}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("installment paid",
		"loan_id", loanID,
		"amount", result.PaidAmount.String(),
		"loan_closed", result.LoanClosed,
	)
	return result, nil
}

func checkCollateral(req ApplyRequest) error {
	switch req.Type {
	case loan.TypeMortgage:
		return collateralCovers(req.PropertyValue, req.Amount)
	case loan.TypeAuto:
		return collateralCovers(req.VehiclePrice, req.Amount)
	default:
		return nil
	}
}

func collateralCovers(value *decimal.Decimal, amount money.Money) error {
	if value == nil {
		return loan.ErrMissingCollateral
	}
	if value.LessThan(amount.Amount()) {
		return loan.ErrInsufficientCollateral
	}
	return nil
}

func firstUnblockedAccount(ctx context.Context, r repository.Registry, userID uuid.UUID) (*account.Account, error) {
	accounts, err := r.Accounts().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if !a.Blocked {
			return a, nil
		}
	}
	return nil, account.ErrNoUsableAccount
}
