// Package loan holds the loan aggregate, its payment schedule and the
// amortization math that prices both.
package loan

import (
	"errors"
	"fmt"
	"time"

	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidTerm is returned when the term is not a positive number of months.
	ErrInvalidTerm = errors.New("term must be a positive number of months")
	// ErrUnknownType is returned for loan types outside the configured product set.
	ErrUnknownType = errors.New("unknown loan type")
	// ErrInsufficientIncome is returned when the installment exceeds the allowed share of declared income.
	ErrInsufficientIncome = errors.New("income too low for requested loan")
	// ErrMissingCollateral is returned when a mortgage or auto loan omits its collateral value.
	ErrMissingCollateral = errors.New("collateral value required for this loan type")
	// ErrInsufficientCollateral is returned when the collateral is worth less than the loan amount.
	ErrInsufficientCollateral = errors.New("collateral value must cover the loan amount")
	// ErrLoanNotFound is returned when a loan does not exist, is inactive, or is not owned by the requester.
	ErrLoanNotFound = errors.New("loan not found")
	// ErrNoPendingInstallments is returned when a payment is attempted on a fully paid schedule.
	ErrNoPendingInstallments = errors.New("no pending installments")
)

// Type tags a loan product.
type Type string

const (
	TypeCash        Type = "cash"
	TypeInstallment Type = "installment"
	TypeBellyRed    Type = "bellyred"
	// TypeRed is a legacy alias for TypeBellyRed kept for older clients.
	TypeRed      Type = "red"
	TypeMortgage Type = "mortgage"
	TypeAuto     Type = "auto"
)

// Terms carries the per-product pricing and scoring tables. It is injected
// into the loan service at construction so tests can substitute alternates.
type Terms struct {
	// Rates maps product type to annual interest rate.
	Rates map[Type]decimal.Decimal
	// IncomeRatios maps product type to the maximum installment/income share.
	IncomeRatios map[Type]decimal.Decimal
	// Categories maps product type to the ledger category of its disbursement.
	Categories map[Type]string
}

// DefaultTerms returns the production pricing tables.
func DefaultTerms() Terms {
	return Terms{
		Rates: map[Type]decimal.Decimal{
			TypeCash:        decimal.RequireFromString("0.15"),
			TypeInstallment: decimal.Zero,
			TypeBellyRed:    decimal.Zero,
			TypeRed:         decimal.Zero,
			TypeMortgage:    decimal.RequireFromString("0.035"),
			TypeAuto:        decimal.RequireFromString("0.07"),
		},
		IncomeRatios: map[Type]decimal.Decimal{
			TypeCash:        decimal.RequireFromString("0.3"),
			TypeInstallment: decimal.RequireFromString("0.2"),
			TypeBellyRed:    decimal.RequireFromString("0.25"),
			TypeRed:         decimal.RequireFromString("0.25"),
			TypeMortgage:    decimal.RequireFromString("0.4"),
			TypeAuto:        decimal.RequireFromString("0.35"),
		},
		Categories: map[Type]string{
			TypeCash:        "Cash loan",
			TypeInstallment: "0% installment plan",
			TypeBellyRed:    "Belly Red",
			TypeRed:         "Belly Red",
			TypeMortgage:    "Mortgage",
			TypeAuto:        "Auto loan",
		},
	}
}

// Rate returns the annual rate for a product type.
func (t Terms) Rate(typ Type) (decimal.Decimal, error) {
	r, ok := t.Rates[typ]
	if !ok {
		return decimal.Decimal{}, ErrUnknownType
	}
	return r, nil
}

// IncomeRatio returns the maximum installment/income share for a product type.
func (t Terms) IncomeRatio(typ Type) (decimal.Decimal, error) {
	r, ok := t.IncomeRatios[typ]
	if !ok {
		return decimal.Decimal{}, ErrUnknownType
	}
	return r, nil
}

// Category returns the ledger category for a product's disbursement.
func (t Terms) Category(typ Type) string {
	if c, ok := t.Categories[typ]; ok {
		return c
	}
	return "Loan"
}

// Loan is an originated credit product. The full payment schedule is
// materialized at origination; the loan stays active until its last schedule
// entry is paid.
type Loan struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Amount         money.Money
	TermMonths     int
	MonthlyPayment money.Money
	Type           Type
	CreatedAt      time.Time
	Active         bool
}

// ScheduleEntry is one installment of a loan. Paid transitions false->true
// exactly once, in due-date order.
type ScheduleEntry struct {
	ID        uuid.UUID
	LoanID    uuid.UUID
	DueDate   time.Time
	Amount    money.Money
	Paid      bool
	CreatedAt time.Time
}

// InsufficientIncomeError reports the minimum qualifying income alongside the
// affordability failure. errors.Is(err, ErrInsufficientIncome) holds.
type InsufficientIncomeError struct {
	MinIncome decimal.Decimal
}

func (e *InsufficientIncomeError) Error() string {
	return fmt.Sprintf("income too low for requested loan: minimum qualifying income is %s", e.MinIncome.StringFixed(2))
}

// Is makes the typed error match the ErrInsufficientIncome sentinel.
func (e *InsufficientIncomeError) Is(target error) bool {
	return target == ErrInsufficientIncome
}
