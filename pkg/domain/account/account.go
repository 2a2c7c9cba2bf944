// Package account holds the ledger core: the Account aggregate whose balance
// only ever changes through paired Debit/Credit operations inside a unit of
// work, and the immutable Transaction entries that justify those changes.
package account

import (
	"errors"
	"time"

	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/google/uuid"
)

var (
	// ErrInsufficientFunds is returned when a debit exceeds the account balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAccountBlocked is returned when a debit is attempted on a blocked account.
	// Blocking only prevents outflow; credits to blocked accounts are permitted.
	ErrAccountBlocked = errors.New("account is blocked")
	// ErrInvalidAmount is returned when a ledger operation amount is not strictly positive.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrAccountNotFound is returned when an account does not exist or is not owned by the requester.
	ErrAccountNotFound = errors.New("account not found")
	// ErrNoUsableAccount is returned when a user has no account a payment could be taken from.
	ErrNoUsableAccount = errors.New("no usable account")
	// ErrSameAccountTransfer is returned when sender and recipient resolve to the same account.
	ErrSameAccountTransfer = errors.New("cannot transfer to the same account")
	// ErrRecipientNotFound is returned when a phone transfer targets an unknown user.
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrNoRecipientAccount is returned when the recipient user has no accounts at all.
	ErrNoRecipientAccount = errors.New("recipient has no accounts")
	// ErrNoRecipient is returned when a transfer request names neither a card nor a phone.
	ErrNoRecipient = errors.New("transfer must specify a recipient card or phone")
	// ErrCurrencyMismatch is returned when an operation mixes currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// Account is a card account. Invariants:
//   - Balance never goes negative; Debit enforces this at mutation time.
//   - CardNumber is unique across the bank.
//   - Blocked accounts accept credits but reject debits.
type Account struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CardNumber string
	Balance    money.Money
	Blocked    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// New creates an account for the given owner with a zero balance.
func New(userID uuid.UUID, cardNumber string, code currency.Code) *Account {
	return &Account{
		ID:         uuid.New(),
		UserID:     userID,
		CardNumber: cardNumber,
		Balance:    money.Zero(code),
		CreatedAt:  time.Now(),
	}
}

// CanDebit reports whether a debit of amount would succeed, without mutating
// the balance. Fails with ErrInvalidAmount for non-positive amounts,
// ErrAccountBlocked if the account is blocked, ErrInsufficientFunds if amount
// exceeds the balance.
func (a *Account) CanDebit(amount money.Money) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if a.Blocked {
		return ErrAccountBlocked
	}
	if !amount.SameCurrency(a.Balance) {
		return ErrCurrencyMismatch
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// Debit decreases the balance by amount after the CanDebit checks pass.
// The caller must persist the account within the same unit of work as the
// matching Transaction entry.
func (a *Account) Debit(amount money.Money) error {
	if err := a.CanDebit(amount); err != nil {
		return err
	}
	newBalance, err := a.Balance.Sub(amount)
	if err != nil {
		return err
	}
	a.Balance = newBalance
	a.UpdatedAt = time.Now()
	return nil
}

// Credit increases the balance by amount. Crediting a blocked account is
// permitted. Fails with ErrInvalidAmount for non-positive amounts.
func (a *Account) Credit(amount money.Money) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !amount.SameCurrency(a.Balance) {
		return ErrCurrencyMismatch
	}
	newBalance, err := a.Balance.Add(amount)
	if err != nil {
		return err
	}
	a.Balance = newBalance
	a.UpdatedAt = time.Now()
	return nil
}

// MaskedCard returns the card number reduced to its last four digits.
func (a *Account) MaskedCard() string {
	return "*" + CardLast4(a.CardNumber)
}

// CardLast4 returns the last four characters of a card number.
func CardLast4(card string) string {
	if len(card) < 4 {
		return card
	}
	return card[len(card)-4:]
}
