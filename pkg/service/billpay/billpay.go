// Package billpay routes service payments (mobile top-ups, utilities, fines
// and the rest of the category catalog) to synthetic provider accounts.
package billpay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/account"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/bellybank/backend/pkg/domain/user"
	"github.com/bellybank/backend/pkg/repository"
	"github.com/google/uuid"
)

// Provider is one payable service category: a display name plus the stable
// synthetic identifiers of its counterparty user and account. The phone id is
// intentionally outside the normalized customer phone space so it can never
// collide with a real login.
type Provider struct {
	PhoneID string
	Name    string
	CardID  string
}

// Catalog maps category keys to providers; injected into the service at
// construction. DefaultKey must be present in every catalog.
type Catalog map[string]Provider

// DefaultKey is the catch-all category for unknown service names.
const DefaultKey = "other"

// DefaultCatalog returns the production service catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		"mobile":        {PhoneID: "srv_mobile", Name: "Mobile Hub", CardID: "MOB_001"},
		"utilities":     {PhoneID: "srv_util", Name: "Utility Center", CardID: "UTL_001"},
		"transport":     {PhoneID: "srv_trans", Name: "City Transport", CardID: "TRN_001"},
		"fines":         {PhoneID: "srv_fines", Name: "Gov Fines", CardID: "GOV_001"},
		"internet":      {PhoneID: "srv_inet", Name: "Internet Providers", CardID: "INET_ACC"},
		"education":     {PhoneID: "srv_edu", Name: "Education Hub", CardID: "EDU_ACC"},
		"games":         {PhoneID: "srv_games", Name: "Game Stores", CardID: "GAM_001"},
		"tickets":       {PhoneID: "srv_ticket", Name: "Ticketon", CardID: "TICKET_ACC"},
		"shopping":      {PhoneID: "srv_shop", Name: "E-Commerce", CardID: "SHOP_ACC"},
		"entertainment": {PhoneID: "srv_fun", Name: "Entertainment", CardID: "FUN_ACC"},
		"ads":           {PhoneID: "srv_ads", Name: "Ads Platform", CardID: "ADS_001"},
		"beauty":        {PhoneID: "srv_beauty", Name: "Beauty Hub", CardID: "BTY_001"},
		"finance":       {PhoneID: "srv_fin", Name: "Fin Services", CardID: "FIN_001"},
		"ecotree":       {PhoneID: "srv_eco", Name: "Eco Fund KZ", CardID: "ECO_001"},
		"ortak":         {PhoneID: "srv_ortak", Name: "P2P Split System", CardID: "ORTAK_001"},
		DefaultKey:      {PhoneID: "srv_other", Name: "Other Services", CardID: "OTH_001"},
	}
}

// Service executes service payments inside units of work.
type Service struct {
	uow     repository.UnitOfWork
	catalog Catalog
	logger  *slog.Logger
}

// New creates a billpay service.
func New(uow repository.UnitOfWork, catalog Catalog, logger *slog.Logger) *Service {
	return &Service{uow: uow, catalog: catalog, logger: logger}
}

// PayRequest is a service payment. Details carries free-form fields the
// category's description format pulls from; unknown fields are ignored.
type PayRequest struct {
	UserID      uuid.UUID
	ServiceName string
	Amount      money.Money
	Details     map[string]string
}

// PayResult reports a completed service payment.
type PayResult struct {
	Description string
	NewBalance  money.Money
}

// Pay debits the payer's first usable account, credits the category's
// synthetic provider account (creating its user and account on first use) and
// appends the ledger entry — one atomic unit of work.
func (s *Service) Pay(ctx context.Context, req PayRequest) (*PayResult, error) {
	if !req.Amount.IsPositive() {
		return nil, money.ErrInvalidAmount
	}

	var result *PayResult
	err := s.uow.Do(ctx, func(r repository.Registry) error {
		source, err := firstUnblockedAccount(ctx, r, req.UserID)
		if err != nil {
			return err
		}
		source, err = r.Accounts().GetForUpdate(ctx, source.ID)
		if err != nil {
			return err
		}

		target, err := s.providerAccount(ctx, r, req.ServiceName)
		if err != nil {
			return err
		}

		if err := source.Debit(req.Amount); err != nil {
			return err
		}
		if err := target.Credit(req.Amount); err != nil {
			return err
		}
		if err := r.Accounts().Update(ctx, source); err != nil {
			return err
		}
		if err := r.Accounts().Update(ctx, target); err != nil {
			return err
		}

		desc := Describe(req.ServiceName, req.Details)
		entry, err := account.NewTransaction(&source.ID, &target.ID, req.Amount, desc)
		if err != nil {
			return err
		}
		if err := r.Transactions().Create(ctx, entry); err != nil {
			return err
		}

		result = &PayResult{Description: desc, NewBalance: source.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("service paid",
		"service", req.ServiceName,
		"amount", req.Amount.String(),
		"description", result.Description,
	)
	return result, nil
}

// providerAccount finds the category's synthetic counterparty, creating its
// user and account on first use. Lookups key on the synthetic phone id, so
// repeated payments reuse one counterparty per category.
func (s *Service) providerAccount(ctx context.Context, r repository.Registry, serviceName string) (*account.Account, error) {
	p, ok := s.catalog[serviceName]
	if !ok {
		p = s.catalog[DefaultKey]
	}

	owner, err := r.Users().GetByPhone(ctx, p.PhoneID)
	switch {
	case err == nil:
	case errors.Is(err, user.ErrUserNotFound):
		// empty hash: service identities can never pass a login check
		owner = user.New(p.PhoneID, "", p.Name)
		owner.Role = user.RoleService
		if err := r.Users().Create(ctx, owner); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	accounts, err := r.Accounts().ListByUser(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	if len(accounts) > 0 {
		return r.Accounts().GetForUpdate(ctx, accounts[0].ID)
	}

	acc := account.New(owner.ID, p.CardID, currency.DefaultCurrency)
	if err := r.Accounts().Create(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// Describe builds the ledger category line for a payment. Categories with a
// structured format pull fields from the details map; everything else gets
// the generic "Payment: name" line.
func Describe(serviceName string, details map[string]string) string {
	dt := func(key string) string { return details[key] }
	switch serviceName {
	case "mobile":
		return fmt.Sprintf("Mobile: %s %s", strings.ToUpper(dt("operator")), dt("phone"))
	case "utilities":
		return fmt.Sprintf("Utilities: %s (%s)", strings.ToUpper(dt("service")), dt("account"))
	case "transport":
		return fmt.Sprintf("Transport: %s (%s)", dt("city"), dt("card"))
	case "fines":
		return fmt.Sprintf("Fine: %s %s", dt("type"), dt("value"))
	case "ecotree":
		return "Eco contribution"
	case "ortak":
		return "Debt repayment (split)"
	default:
		return "Payment: " + serviceName
	}
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
