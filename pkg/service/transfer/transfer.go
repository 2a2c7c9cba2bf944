// Package transfer implements peer-to-peer transfers: sender and recipient
// resolution, balance validation and the atomic debit/credit/log unit of work.
package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bellybank/backend/pkg/domain/account"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/bellybank/backend/pkg/phone"
	"github.com/bellybank/backend/pkg/repository"
	"github.com/google/uuid"
)

// Service executes transfers inside units of work.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a transfer service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Request is a resolved-owner transfer order. Exactly one of ToCard/ToPhone
// designates the recipient; FromAccountID optionally pins the sender account.
type Request struct {
	UserID        uuid.UUID
	Amount        money.Money
	ToCard        string
	ToPhone       string
	FromAccountID *uuid.UUID
}

// RecipientKind tags the outcome of recipient resolution.
type RecipientKind int

const (
	// RecipientInternal is a bank account credited within the same unit of work.
	RecipientInternal RecipientKind = iota
	// RecipientExternal is a card at another bank: debit-only, source-only
	// ledger entry. An unknown card number is this outcome, not an error.
	RecipientExternal
)

// Recipient is the tagged result of recipient resolution, so the
// internal/external distinction is type-visible at the call site.
type Recipient struct {
	Kind      RecipientKind
	Account   *account.Account
	CardLast4 string
}

// Result reports a completed transfer.
type Result struct {
	TransactionID uuid.UUID
	FromAccountID uuid.UUID
	ToAccountID   *uuid.UUID
	Amount        money.Money
	Category      string
	NewBalance    money.Money
	External      bool
}

// Transfer resolves both parties, validates every business rule before any
// mutation, then debits, credits and appends the ledger entry as one atomic
// unit of work. On any failure nothing is observable: no debited sender
// without a recorded transaction.
func (s *Service) Transfer(ctx context.Context, req Request) (*Result, error) {
	if !req.Amount.IsPositive() {
		return nil, account.ErrInvalidAmount
	}
	if req.ToCard == "" && req.ToPhone == "" {
		return nil, account.ErrNoRecipient
	}

	var result *Result
	err := s.uow.Do(ctx, func(r repository.Registry) error {
		sender, err := s.resolveSender(ctx, r, req)
		if err != nil {
			return err
		}
		// Sender must be able to pay before the recipient is even looked up,
		// so a blocked or underfunded sender never learns whether a phone
		// number belongs to a customer.
		if err := sender.CanDebit(req.Amount); err != nil {
			return err
		}

		recipient, err := s.resolveRecipient(ctx, r, req)
		if err != nil {
			return err
		}

		if recipient.Kind == RecipientInternal && recipient.Account.ID == sender.ID {
			return account.ErrSameAccountTransfer
		}

		// Re-fetch under row locks, ascending id order, before mutating.
		sender, recipientAccount, err := s.lockParties(ctx, r, sender.ID, recipient)
		if err != nil {
			return err
		}

		if err := sender.Debit(req.Amount); err != nil {
			return err
		}
		if err := r.Accounts().Update(ctx, sender); err != nil {
			return err
		}

		var toID *uuid.UUID
		category := "Internal transfer"
		if recipientAccount != nil {
			if err := recipientAccount.Credit(req.Amount); err != nil {
				return err
			}
			if err := r.Accounts().Update(ctx, recipientAccount); err != nil {
				return err
			}
			id := recipientAccount.ID
			toID = &id
		} else {
			category = fmt.Sprintf("External transfer to card ending %s", recipient.CardLast4)
		}

		entry, err := account.NewTransaction(&sender.ID, toID, req.Amount, category)
		if err != nil {
			return err
		}
		if err := r.Transactions().Create(ctx, entry); err != nil {
			return err
		}

		result = &Result{
			TransactionID: entry.ID,
			FromAccountID: sender.ID,
			ToAccountID:   toID,
			Amount:        req.Amount,
			Category:      category,
			NewBalance:    sender.Balance,
			External:      recipientAccount == nil,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer completed",
		"transaction_id", result.TransactionID,
		"from", result.FromAccountID,
		"external", result.External,
		"amount", result.Amount.String(),
	)
	return result, nil
}

// resolveSender picks the account the transfer is taken from. An explicit
// account must belong to the requester. Otherwise: the first unblocked
// account with sufficient balance, falling back to the first unblocked
// account so the insufficient-funds error reports against a real candidate.
func (s *Service) resolveSender(ctx context.Context, r repository.Registry, req Request) (*account.Account, error) {
	if req.FromAccountID != nil {
		a, err := r.Accounts().Get(ctx, *req.FromAccountID)
		if err != nil {
			return nil, err
		}
		if a.UserID != req.UserID {
			return nil, account.ErrAccountNotFound
		}
		return a, nil
	}

	accounts, err := r.Accounts().ListByUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	var fallback *account.Account
	for _, a := range accounts {
		if a.Blocked {
			continue
		}
		if fallback == nil {
			fallback = a
		}
		if !a.Balance.LessThan(req.Amount) {
			return a, nil
		}
	}
	if fallback == nil {
		return nil, account.ErrNoUsableAccount
	}
	return fallback, nil
}

// resolveRecipient resolves the destination. Phone transfers are intra-bank
// only: an unknown phone is ErrRecipientNotFound. An unknown card number is
// an external-bank transfer, not an error.
func (s *Service) resolveRecipient(ctx context.Context, r repository.Registry, req Request) (*Recipient, error) {
	if req.ToPhone != "" {
		canonical := phone.Normalize(req.ToPhone)
		recipientUser, err := r.Users().GetByPhone(ctx, canonical)
		if err != nil {
			return nil, account.ErrRecipientNotFound
		}
		accounts, err := r.Accounts().ListByUser(ctx, recipientUser.ID)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			return nil, account.ErrNoRecipientAccount
		}
		target := accounts[0]
		for _, a := range accounts {
			if !a.Blocked {
				target = a
				break
			}
		}
		return &Recipient{Kind: RecipientInternal, Account: target}, nil
	}

	card := strings.ReplaceAll(req.ToCard, " ", "")
	a, err := r.Accounts().GetByCard(ctx, card)
	if err == nil {
		return &Recipient{Kind: RecipientInternal, Account: a}, nil
	}
	return &Recipient{Kind: RecipientExternal, CardLast4: account.CardLast4(card)}, nil
}

// lockParties re-fetches the mutated accounts under FOR UPDATE locks. Locks
// are taken in ascending id order so two opposing transfers cannot deadlock.
func (s *Service) lockParties(ctx context.Context, r repository.Registry, senderID uuid.UUID, recipient *Recipient) (*account.Account, *account.Account, error) {
	if recipient.Kind != RecipientInternal {
		sender, err := r.Accounts().GetForUpdate(ctx, senderID)
		return sender, nil, err
	}

	recipientID := recipient.Account.ID
	first, second := senderID, recipientID
	if second.String() < first.String() {
		first, second = second, first
	}
	a1, err := r.Accounts().GetForUpdate(ctx, first)
	if err != nil {
		return nil, nil, err
	}
	a2, err := r.Accounts().GetForUpdate(ctx, second)
	if err != nil {
		return nil, nil, err
	}
	if a1.ID == senderID {
		return a1, a2, nil
	}
	return a2, a1, nil
}
