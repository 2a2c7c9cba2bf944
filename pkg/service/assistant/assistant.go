// Package assistant turns free-text chat messages into banking actions. A
// Parser port extracts the intent; transfers execute through the transfer
// service so every ledger rule applies to assistant-initiated payments too.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/bellybank/backend/pkg/repository"
	"github.com/bellybank/backend/pkg/service/transfer"
	"github.com/google/uuid"
)

// ActionTransfer is the one intent action the assistant can execute.
const ActionTransfer = "transfer"

// Intent is a parsed chat message. Action is empty for plain conversation;
// for ActionTransfer, Amount and Phone carry the extracted transfer fields.
type Intent struct {
	Reply  string
	Action string
	Amount money.Money
	Phone  string
}

// Parser extracts an intent from free text. The finContext string carries the
// user's masked account balances so the parser can answer balance questions.
type Parser interface {
	Parse(ctx context.Context, message, finContext string) (*Intent, error)
}

// Response is the assistant's answer. Data is non-nil only when an action was
// executed.
type Response struct {
	Reply  string            `json:"reply"`
	Action string            `json:"action,omitempty"`
	Data   map[string]string `json:"data,omitempty"`
}

// Service wires the parser to the transfer engine.
type Service struct {
	uow      repository.UnitOfWork
	parser   Parser
	transfer *transfer.Service
	logger   *slog.Logger
}

// New creates an assistant service.
func New(uow repository.UnitOfWork, parser Parser, tr *transfer.Service, logger *slog.Logger) *Service {
	return &Service{uow: uow, parser: parser, transfer: tr, logger: logger}
}

// Chat answers a message, executing a transfer when the parser extracts one.
// Parser and transfer failures degrade to an apologetic no-action reply; chat
// never surfaces an internal error to the client.
func (s *Service) Chat(ctx context.Context, userID uuid.UUID, message string) (*Response, error) {
	finContext, err := s.financeContext(ctx, userID)
	if err != nil {
		return nil, err
	}

	intent, err := s.parser.Parse(ctx, message, finContext)
	if err != nil {
		s.logger.Warn("intent parse failed", "error", err)
		return &Response{Reply: "Sorry, I could not process that. Please try again."}, nil
	}

	if intent.Action != ActionTransfer {
		return &Response{Reply: intent.Reply}, nil
	}

	res, err := s.transfer.Transfer(ctx, transfer.Request{
		UserID:  userID,
		Amount:  intent.Amount,
		ToPhone: intent.Phone,
	})
	if err != nil {
		s.logger.Warn("assistant transfer failed", "error", err)
		return &Response{Reply: "The transfer could not be completed: " + err.Error()}, nil
	}

	return &Response{
		Reply:  intent.Reply,
		Action: ActionTransfer,
		Data: map[string]string{
			"amount":      intent.Amount.Amount().String(),
			"phone":       intent.Phone,
			"new_balance": res.NewBalance.Amount().StringFixed(2),
		},
	}, nil
}

// financeContext renders the user's balances with masked card numbers for the
// parser prompt. Full card numbers never leave the service.
func (s *Service) financeContext(ctx context.Context, userID uuid.UUID) (string, error) {
	var b strings.Builder
	b.WriteString("User balances:\n")
	err := s.uow.Do(ctx, func(r repository.Registry) error {
		accounts, err := r.Accounts().ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, a := range accounts {
			fmt.Fprintf(&b, "- Card %s: %s\n", a.MaskedCard(), a.Balance.String())
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
