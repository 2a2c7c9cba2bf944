// Package deposit implements term-deposit opening, reporting and closure.
package deposit

import (
	"context"
	"log/slog"
	"time"

	"github.com/bellybank/backend/pkg/domain/account"
	"github.com/bellybank/backend/pkg/domain/deposit"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/bellybank/backend/pkg/repository"
	"github.com/google/uuid"
)

// Service executes deposit workflows inside units of work. Rates are injected
// so tests can price against alternate tier tables.
type Service struct {
	uow    repository.UnitOfWork
	rates  deposit.TierRates
	logger *slog.Logger
}

// New creates a deposit service.
func New(uow repository.UnitOfWork, rates deposit.TierRates, logger *slog.Logger) *Service {
	return &Service{uow: uow, rates: rates, logger: logger}
}

// CreateRequest opens a deposit.
type CreateRequest struct {
	UserID     uuid.UUID
	Amount     money.Money
	TermMonths int
	Tier       deposit.Tier
}

// CreateResult reports an opened deposit.
type CreateResult struct {
	DepositID       uuid.UUID
	Rate            string
	EndDate         time.Time
	EstimatedIncome money.Money
}

// DepositInfo is an active deposit with its interest accrued so far.
type DepositInfo struct {
	Deposit       *deposit.Deposit
	AccruedIncome money.Money
}

// CloseResult reports a closed deposit.
type CloseResult struct {
	Refunded money.Money
}

// Create prices the deposit at its tier rate, debits the principal from the
// funding account and logs the movement — one atomic unit of work. The ledger
// entry is source-only: the principal leaves the account and is held by the
// deposit until closure.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if req.TermMonths <= 0 {
		return nil, deposit.ErrInvalidTerm
	}
	if !req.Amount.IsPositive() {
		return nil, money.ErrInvalidAmount
	}
	rate, err := s.rates.Rate(req.Tier)
	if err != nil {
		return nil, err
	}

	var result *CreateResult
	err = s.uow.Do(ctx, func(r repository.Registry) error {
		source, err := firstUnblockedAccount(ctx, r, req.UserID)
		if err != nil {
			return err
		}
		source, err = r.Accounts().GetForUpdate(ctx, source.ID)
		if err != nil {
			return err
		}

		if err := source.Debit(req.Amount); err != nil {
			return err
		}
		if err := r.Accounts().Update(ctx, source); err != nil {
			return err
		}

		d := deposit.New(req.UserID, req.Amount, rate, req.TermMonths, req.Tier)
		if err := r.Deposits().Create(ctx, d); err != nil {
			return err
		}

		entry, err := account.NewTransaction(&source.ID, nil, req.Amount,
			"Deposit opened ("+string(req.Tier)+")")
		if err != nil {
			return err
		}
		if err := r.Transactions().Create(ctx, entry); err != nil {
			return err
		}

		result = &CreateResult{
			DepositID:       d.ID,
			Rate:            d.Rate.String(),
			EndDate:         d.EndDate,
			EstimatedIncome: deposit.ProjectedIncome(req.Amount, rate, d.StartDate, d.EndDate),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("deposit opened",
		"deposit_id", result.DepositID,
		"tier", req.Tier,
		"term_months", req.TermMonths,
		"amount", req.Amount.String(),
	)
	return result, nil
}

// My lists the requester's active deposits with interest accrued to now.
func (s *Service) My(ctx context.Context, userID uuid.UUID) ([]*DepositInfo, error) {
	var infos []*DepositInfo
	err := s.uow.Do(ctx, func(r repository.Registry) error {
		deposits, err := r.Deposits().ListActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		now := time.Now()
		for _, d := range deposits {
			infos = append(infos, &DepositInfo{
				Deposit:       d,
				AccruedIncome: deposit.ProjectedIncome(d.Amount, d.Rate, d.StartDate, now),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// Close deactivates the deposit and refunds the principal. Accrued interest
// is forfeited on closure before maturity; the refund is always
// principal-only. Closing twice fails.
func (s *Service) Close(ctx context.Context, userID, depositID uuid.UUID) (*CloseResult, error) {
	var result *CloseResult
	err := s.uow.Do(ctx, func(r repository.Registry) error {
		d, err := r.Deposits().GetOwned(ctx, depositID, userID)
		if err != nil {
			return err
		}
		if err := d.Close(); err != nil {
			return err
		}
		if err := r.Deposits().Update(ctx, d); err != nil {
			return err
		}

		target, err := firstUnblockedAccount(ctx, r, userID)
		if err != nil {
			return err
		}
		target, err = r.Accounts().GetForUpdate(ctx, target.ID)
		if err != nil {
			return err
		}
		if err := target.Credit(d.Amount); err != nil {
			return err
		}
		if err := r.Accounts().Update(ctx, target); err != nil {
			return err
		}

		entry, err := account.NewTransaction(nil, &target.ID, d.Amount,
			"Deposit closed ("+string(d.Tier)+")")
		if err != nil {
			return err
		}
		if err := r.Transactions().Create(ctx, entry); err != nil {
			return err
		}

		result = &CloseResult{Refunded: d.Amount}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("deposit closed", "deposit_id", depositID, "refunded", result.Refunded.String())
	return result, nil
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
