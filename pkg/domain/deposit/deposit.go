// Package deposit holds the term-deposit aggregate and its interest accrual
// math.
package deposit

import (
	"errors"
	"time"

	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrDepositNotFound is returned when a deposit does not exist, is already
	// closed, or is not owned by the requester.
	ErrDepositNotFound = errors.New("deposit not found")
	// ErrUnknownTier is returned for tiers outside the configured product set.
	ErrUnknownTier = errors.New("unknown deposit tier")
	// ErrInvalidTerm is returned when the term is not a positive number of months.
	ErrInvalidTerm = errors.New("term must be a positive number of months")
)

// Tier selects a deposit product.
type Tier string

const (
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
	TierVIP      Tier = "vip"
)

// TierRates maps tiers to annual interest rates; injected into the deposit
// service at construction.
type TierRates map[Tier]decimal.Decimal

// DefaultTierRates returns the production deposit rates.
func DefaultTierRates() TierRates {
	return TierRates{
		TierStandard: decimal.RequireFromString("0.12"),
		TierPremium:  decimal.RequireFromString("0.14"),
		TierVIP:      decimal.RequireFromString("0.16"),
	}
}

// Rate returns the annual rate for a tier.
func (r TierRates) Rate(tier Tier) (decimal.Decimal, error) {
	rate, ok := r[tier]
	if !ok {
		return decimal.Decimal{}, ErrUnknownTier
	}
	return rate, nil
}

// Deposit is a funded term deposit. Closing it, at maturity or early, sets
// Active to false and credits an account exactly once; early closure forfeits
// accrued interest by policy.
type Deposit struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Amount     money.Money
	Rate       decimal.Decimal
	TermMonths int
	Tier       Tier
	StartDate  time.Time
	EndDate    time.Time
	Active     bool
}

// New opens a deposit starting now with the fixed 30-day month convention for
// its maturity date.
func New(userID uuid.UUID, amount money.Money, rate decimal.Decimal, termMonths int, tier Tier) *Deposit {
	now := time.Now()
	return &Deposit{
		ID:         uuid.New(),
		UserID:     userID,
		Amount:     amount,
		Rate:       money.RoundRate(rate),
		TermMonths: termMonths,
		Tier:       tier,
		StartDate:  now,
		EndDate:    now.Add(time.Duration(termMonths) * 30 * 24 * time.Hour),
		Active:     true,
	}
}

// ProjectedIncome computes the time-proportional accrued interest as of now:
// principal x rate x elapsedMonths/12, where elapsedMonths is elapsed whole
// days / 30 (the same 30-day convention as the amortization schedule).
func ProjectedIncome(principal money.Money, annualRate decimal.Decimal, start, now time.Time) money.Money {
	days := int(now.Sub(start).Hours() / 24)
	if days < 0 {
		days = 0
	}
	// principal * rate * (days/30) / 12 == principal * rate * days / 360
	factor := annualRate.Mul(decimal.NewFromInt(int64(days))).Div(decimal.NewFromInt(360))
	return principal.Mul(factor)
}

// Close deactivates the deposit. A second close fails with
// ErrDepositNotFound so the principal can never be paid out twice.
func (d *Deposit) Close() error {
	if !d.Active {
		return ErrDepositNotFound
	}
	d.Active = false
	return nil
}
