package loan

import (
	"sort"
	"time"

	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// scheduleInterval is the fixed 30-day month convention shared with the
// deposit accrual math. Due dates are not calendar-accurate.
const scheduleInterval = 30 * 24 * time.Hour

// Plan prices a loan: the fixed monthly payment plus the exact amount of each
// installment.
//
// For a positive annual rate the payment is the standard annuity
//
//	payment = P * r / (1 - (1+r)^-n), r = annualRate/12
//
// rounded half-up to currency precision and repeated for every installment.
// For a zero rate the principal is split evenly: every installment is the
// rounded quotient and the final one absorbs the residual, so the amounts sum
// to the principal exactly.
func Plan(principal money.Money, annualRate decimal.Decimal, termMonths int) (money.Money, []money.Money, error) {
	if termMonths <= 0 {
		return money.Money{}, nil, ErrInvalidTerm
	}
	if !principal.IsPositive() {
		return money.Money{}, nil, money.ErrInvalidAmount
	}

	n := decimal.NewFromInt(int64(termMonths))
	amounts := make([]money.Money, termMonths)

	if annualRate.IsPositive() {
		// payment = P * r * (1+r)^n / ((1+r)^n - 1)
		r := annualRate.Div(decimal.NewFromInt(12))
		compound := decimal.NewFromInt(1).Add(r).Pow(n)
		payment := principal.Amount().Mul(r).Mul(compound).Div(compound.Sub(decimal.NewFromInt(1)))
		fixed, err := money.New(payment, principal.Currency())
		if err != nil {
			return money.Money{}, nil, err
		}
		for i := range amounts {
			amounts[i] = fixed
		}
		return fixed, amounts, nil
	}

	base, err := money.New(principal.Amount().Div(n), principal.Currency())
	if err != nil {
		return money.Money{}, nil, err
	}
	total := money.Zero(principal.Currency())
	for i := 0; i < termMonths-1; i++ {
		amounts[i] = base
		total, err = total.Add(base)
		if err != nil {
			return money.Money{}, nil, err
		}
	}
	last, err := principal.Sub(total)
	if err != nil {
		return money.Money{}, nil, err
	}
	amounts[termMonths-1] = last
	return base, amounts, nil
}

// GenerateSchedule materializes the full payment schedule at origination:
// one entry per month, due dates at fixed 30-day intervals from start, all
// unpaid. The schedule is a persisted commitment, never computed on demand.
func GenerateSchedule(loanID uuid.UUID, amounts []money.Money, start time.Time) []*ScheduleEntry {
	entries := make([]*ScheduleEntry, len(amounts))
	now := time.Now()
	for i, amount := range amounts {
		entries[i] = &ScheduleEntry{
			ID:        uuid.New(),
			LoanID:    loanID,
			DueDate:   start.Add(time.Duration(i+1) * scheduleInterval),
			Amount:    amount,
			Paid:      false,
			CreatedAt: now,
		}
	}
	return entries
}

// NextUnpaid returns the unpaid entry with the earliest due date, ties broken
// by creation order. It returns nil when every entry is paid.
func NextUnpaid(entries []*ScheduleEntry) *ScheduleEntry {
	var next *ScheduleEntry
	for _, e := range entries {
		if e.Paid {
			continue
		}
		if next == nil || e.DueDate.Before(next.DueDate) ||
			(e.DueDate.Equal(next.DueDate) && e.CreatedAt.Before(next.CreatedAt)) {
			next = e
		}
	}
	return next
}

// Remaining sums the unpaid installment amounts, the outstanding
// principal-plus-interest commitment of the loan.
func Remaining(entries []*ScheduleEntry, code currency.Code) money.Money {
	total := money.Zero(code)
	for _, e := range entries {
		if e.Paid {
			continue
		}
		total, _ = total.Add(e.Amount)
	}
	return total
}

// CheckAffordability verifies the fixed payment does not exceed the allowed
// share of declared monthly income. On violation it returns an
// InsufficientIncomeError carrying the minimum qualifying income.
func CheckAffordability(payment money.Money, income, ratio decimal.Decimal) error {
	if payment.Amount().LessThanOrEqual(income.Mul(ratio)) {
		return nil
	}
	return &InsufficientIncomeError{
		MinIncome: payment.Amount().Div(ratio).Round(2),
	}
}

// SortByDueDate orders entries by due date ascending, creation time breaking
// ties.
func SortByDueDate(entries []*ScheduleEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].DueDate.Equal(entries[j].DueDate) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].DueDate.Before(entries[j].DueDate)
	})
}
