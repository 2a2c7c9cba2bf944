// Package insurance implements policy issuance, reporting and cancellation.
package insurance

import (
	"context"
	"log/slog"
	"time"

	"github.com/bellybank/backend/pkg/domain/account"
	"github.com/bellybank/backend/pkg/domain/insurance"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/bellybank/backend/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service executes insurance workflows inside units of work. Tariffs are
// injected so tests can price against alternate tables.
type Service struct {
	uow     repository.UnitOfWork
	tariffs insurance.Tariffs
	logger  *slog.Logger
}

// New creates an insurance service.
func New(uow repository.UnitOfWork, tariffs insurance.Tariffs, logger *slog.Logger) *Service {
	return &Service{uow: uow, tariffs: tariffs, logger: logger}
}

// ApplyRequest is a policy application.
type ApplyRequest struct {
	UserID     uuid.UUID
	Type       insurance.Type
	Coverage   decimal.Decimal
	TermMonths int
}

// ApplyResult reports an issued policy.
type ApplyResult struct {
	PolicyID    uuid.UUID
	MonthlyCost money.Money
	TotalCost   money.Money
	EndDate     time.Time
}

// Apply prices the policy, charges the full term premium upfront from the
// first usable account, issues the policy and logs the movement — one atomic
// unit of work.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	monthly, total, err := insurance.Quote(s.tariffs, req.Type, req.Coverage, req.TermMonths)
	if err != nil {
		return nil, err
	}

	var result *ApplyResult
	err = s.uow.Do(ctx, func(r repository.Registry) error {
		source, err := firstUnblockedAccount(ctx, r, req.UserID)
		if err != nil {
			return err
		}
		source, err = r.Accounts().GetForUpdate(ctx, source.ID)
		if err != nil {
			return err
		}

		if err := source.Debit(total); err != nil {
			return err
		}
		if err := r.Accounts().Update(ctx, source); err != nil {
			return err
		}

		p := insurance.New(req.UserID, req.Type, req.Coverage, monthly, req.TermMonths)
		if err := r.Insurances().Create(ctx, p); err != nil {
			return err
		}

		entry, err := account.NewTransaction(&source.ID, nil, total,
			"Insurance premium ("+string(req.Type)+")")
		if err != nil {
			return err
		}
		if err := r.Transactions().Create(ctx, entry); err != nil {
			return err
		}

		result = &ApplyResult{
			PolicyID:    p.ID,
			MonthlyCost: monthly,
			TotalCost:   total,
			EndDate:     p.EndDate,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("policy issued",
		"policy_id", result.PolicyID,
		"type", req.Type,
		"term_months", req.TermMonths,
		"total_cost", result.TotalCost.String(),
	)
	return result, nil
}

// My lists the requester's active policies.
func (s *Service) My(ctx context.Context, userID uuid.UUID) ([]*insurance.Policy, error) {
	var policies []*insurance.Policy
	err := s.uow.Do(ctx, func(r repository.Registry) error {
		var err error
		policies, err = r.Insurances().ListActiveByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return policies, nil
}

// Cancel deactivates the policy. The premium was charged upfront and is not
// refunded, in whole or prorated.
func (s *Service) Cancel(ctx context.Context, userID, policyID uuid.UUID) error {
	err := s.uow.Do(ctx, func(r repository.Registry) error {
		p, err := r.Insurances().GetOwned(ctx, policyID, userID)
		if err != nil {
			return err
		}
		if err := p.Cancel(); err != nil {
			return err
		}
		return r.Insurances().Update(ctx, p)
	})
	if err != nil {
		return err
	}

	s.logger.Info("policy cancelled", "policy_id", policyID)
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
