// Package insurance holds the policy aggregate and its premium math.
package insurance

import (
	"errors"
	"time"

	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrPolicyNotFound is returned when a policy does not exist, is already
	// cancelled, or is not owned by the requester.
	ErrPolicyNotFound = errors.New("insurance policy not found")
	// ErrInvalidCoverage is returned for non-positive coverage amounts.
	ErrInvalidCoverage = errors.New("coverage amount must be positive")
)

// Type selects an insurance product.
type Type string

const (
	TypeLife     Type = "life"
	TypeHealth   Type = "health"
	TypeProperty Type = "property"
	TypeAuto     Type = "auto"
	TypeTravel   Type = "travel"
)

// coverageUnit is the coverage amount the tariff base prices are quoted for.
var coverageUnit = decimal.NewFromInt(1_000_000)

// Tariffs maps policy types to the monthly cost per one million of coverage;
// injected into the insurance service at construction.
type Tariffs map[Type]decimal.Decimal

// DefaultTariffs returns the production tariff table. Unknown types fall back
// to the life tariff, matching DefaultCost.
func DefaultTariffs() Tariffs {
	return Tariffs{
		TypeLife:     decimal.NewFromInt(5000),
		TypeHealth:   decimal.NewFromInt(8000),
		TypeProperty: decimal.NewFromInt(3000),
		TypeAuto:     decimal.NewFromInt(6000),
		TypeTravel:   decimal.NewFromInt(2000),
	}
}

// DefaultCost is the monthly base cost used for types missing from the table.
var DefaultCost = decimal.NewFromInt(5000)

// Quote prices a policy: the monthly cost is the type's base tariff scaled
// linearly by coverage/1,000,000, the total is monthly x term, charged in
// full upfront.
func Quote(tariffs Tariffs, typ Type, coverage decimal.Decimal, termMonths int) (monthly, total money.Money, err error) {
	if !coverage.IsPositive() {
		return money.Money{}, money.Money{}, ErrInvalidCoverage
	}
	if termMonths <= 0 {
		return money.Money{}, money.Money{}, ErrInvalidTerm
	}
	base, ok := tariffs[typ]
	if !ok {
		base = DefaultCost
	}
	monthly, err = money.New(base.Mul(coverage).Div(coverageUnit), "")
	if err != nil {
		return money.Money{}, money.Money{}, err
	}
	total = monthly.Mul(decimal.NewFromInt(int64(termMonths)))
	return monthly, total, nil
}

// ErrInvalidTerm is returned when the term is not a positive number of months.
var ErrInvalidTerm = errors.New("term must be a positive number of months")

// Policy is an active insurance contract. Cancellation sets Active to false
// with no refund; there is no proration.
type Policy struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        Type
	Coverage    decimal.Decimal
	MonthlyCost money.Money
	TermMonths  int
	StartDate   time.Time
	EndDate     time.Time
	Active      bool
}

// New issues a policy starting now with the fixed 30-day month convention for
// its end date.
func New(userID uuid.UUID, typ Type, coverage decimal.Decimal, monthly money.Money, termMonths int) *Policy {
	now := time.Now()
	return &Policy{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        typ,
		Coverage:    coverage,
		MonthlyCost: monthly,
		TermMonths:  termMonths,
		StartDate:   now,
		EndDate:     now.Add(time.Duration(termMonths) * 30 * 24 * time.Hour),
		Active:      true,
	}
}

// Cancel deactivates the policy, once. No refund is issued.
func (p *Policy) Cancel() error {
	if !p.Active {
		return ErrPolicyNotFound
	}
	p.Active = false
	return nil
}
