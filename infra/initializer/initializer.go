// Package initializer wires configuration, storage and services together at
// application startup.
package initializer

import (
	"fmt"
	"log/slog"

	"github.com/bellybank/backend/infra"
	"github.com/bellybank/backend/infra/provider/intent"
	infrarepository "github.com/bellybank/backend/infra/repository"
	"github.com/bellybank/backend/pkg/config"
	"github.com/bellybank/backend/pkg/domain/deposit"
	"github.com/bellybank/backend/pkg/domain/insurance"
	"github.com/bellybank/backend/pkg/domain/loan"
	accountsvc "github.com/bellybank/backend/pkg/service/account"
	assistantsvc "github.com/bellybank/backend/pkg/service/assistant"
	authsvc "github.com/bellybank/backend/pkg/service/auth"
	billpaysvc "github.com/bellybank/backend/pkg/service/billpay"
	depositsvc "github.com/bellybank/backend/pkg/service/deposit"
	insurancesvc "github.com/bellybank/backend/pkg/service/insurance"
	loansvc "github.com/bellybank/backend/pkg/service/loan"
	transfersvc "github.com/bellybank/backend/pkg/service/transfer"
	usersvc "github.com/bellybank/backend/pkg/service/user"
	"github.com/bellybank/backend/webapi"
)

// Initialize loads configuration, opens the database and builds every
// service the HTTP layer depends on.
func Initialize() (webapi.Deps, *slog.Logger, error) {
	logger := slog.Default()

	cfg, err := config.Load(logger)
	if err != nil {
		return webapi.Deps{}, logger, fmt.Errorf("failed to load application configuration: %w", err)
	}

	logger = setupLogger(cfg.Env)

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return webapi.Deps{}, logger, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.AutoMigrate(infrarepository.Models()...); err != nil {
		return webapi.Deps{}, logger, fmt.Errorf("failed to run migrations: %w", err)
	}

	uow := infrarepository.NewUoW(db)

	parser := intent.New(cfg.Assistant, logger)
	transferService := transfersvc.New(uow, logger)

	deps := webapi.Deps{
		Cfg:       cfg,
		User:      usersvc.New(uow, logger),
		Auth:      authsvc.New(uow, &cfg.Jwt, logger),
		Account:   accountsvc.New(uow, logger),
		Transfer:  transferService,
		Loan:      loansvc.New(uow, loan.DefaultTerms(), logger),
		Deposit:   depositsvc.New(uow, deposit.DefaultTierRates(), logger),
		Insurance: insurancesvc.New(uow, insurance.DefaultTariffs(), logger),
		Billpay:   billpaysvc.New(uow, billpaysvc.DefaultCatalog(), logger),
		Assistant: assistantsvc.New(uow, parser, transferService, logger),
	}
	return deps, logger, nil
}
