// Package webapi exposes the banking services over HTTP with Fiber.
package webapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bellybank/backend/pkg/config"
	accountsvc "github.com/bellybank/backend/pkg/service/account"
	assistantsvc "github.com/bellybank/backend/pkg/service/assistant"
	authsvc "github.com/bellybank/backend/pkg/service/auth"
	billpaysvc "github.com/bellybank/backend/pkg/service/billpay"
	depositsvc "github.com/bellybank/backend/pkg/service/deposit"
	insurancesvc "github.com/bellybank/backend/pkg/service/insurance"
	loansvc "github.com/bellybank/backend/pkg/service/loan"
	transfersvc "github.com/bellybank/backend/pkg/service/transfer"
	usersvc "github.com/bellybank/backend/pkg/service/user"
	"github.com/bellybank/backend/webapi/common"
)

// Deps carries the constructed services into route registration.
type Deps struct {
	Cfg       *config.App
	User      *usersvc.Service
	Auth      *authsvc.Service
	Account   *accountsvc.Service
	Transfer  *transfersvc.Service
	Loan      *loansvc.Service
	Deposit   *depositsvc.Service
	Insurance *insurancesvc.Service
	Billpay   *billpaysvc.Service
	Assistant *assistantsvc.Service
}

// SetupApp builds the Fiber application with rate limiting, panic recovery
// and every route registered.
func SetupApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  d.Cfg.Server.ReadTimeout,
		WriteTimeout: d.Cfg.Server.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return common.ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(limiter.New(limiter.Config{
		Max: 60,
		KeyGenerator: func(c *fiber.Ctx) string {
			// honor the proxy chain when present
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				if i := strings.Index(forwardedFor, ","); i != -1 {
					return strings.TrimSpace(forwardedFor[:i])
				}
				return forwardedFor
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ErrorResponseJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
		},
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	AuthRoutes(app, d.User, d.Auth)
	AccountRoutes(app, d.Account, d.Cfg.Jwt)
	TransferRoutes(app, d.Transfer, d.Cfg.Jwt)
	LoanRoutes(app, d.Loan, d.Cfg.Jwt)
	DepositRoutes(app, d.Deposit, d.Cfg.Jwt)
	InsuranceRoutes(app, d.Insurance, d.Cfg.Jwt)
	ServiceRoutes(app, d.Billpay, d.Cfg.Jwt)
	AssistantRoutes(app, d.Assistant, d.Cfg.Jwt)

	return app
}
