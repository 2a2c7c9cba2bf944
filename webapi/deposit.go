package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/bellybank/backend/pkg/config"
	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/deposit"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/bellybank/backend/pkg/middleware"
	depositsvc "github.com/bellybank/backend/pkg/service/deposit"
	"github.com/bellybank/backend/webapi/common"
)

// DepositInput opens a term deposit.
type DepositInput struct {
	Amount     string `json:"amount" validate:"required"`
	TermMonths int    `json:"term_months" validate:"required,gt=0"`
	Tier       string `json:"tier" validate:"required"`
}

// DepositRoutes registers the protected deposit endpoints.
func DepositRoutes(app *fiber.App, svc *depositsvc.Service, cfg config.Jwt) {
	app.Post("/deposits", middleware.JwtProtected(cfg), CreateDeposit(svc))
	app.Get("/deposits/my", middleware.JwtProtected(cfg), MyDeposits(svc))
	app.Post("/deposits/:id/close", middleware.JwtProtected(cfg), CloseDeposit(svc))
}

// CreateDeposit opens a deposit funded from the first usable account.
func CreateDeposit(svc *depositsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[DepositInput](c)
		if input == nil {
			return err
		}
		amount, err := money.NewFromString(input.Amount, currency.DefaultCurrency)
		if err != nil {
			return common.ProblemJSON(c, "Invalid amount", err)
		}
		res, err := svc.Create(c.Context(), depositsvc.CreateRequest{
			UserID:     userID,
			Amount:     amount,
			TermMonths: input.TermMonths,
			Tier:       deposit.Tier(input.Tier),
		})
		if err != nil {
			log.Errorf("Deposit creation failed: %v", err)
			return common.ProblemJSON(c, "Deposit creation failed", err)
		}
		return common.SuccessJSON(c, fiber.StatusCreated, "Deposit opened", fiber.Map{
			"deposit_id":       res.DepositID,
			"rate":             res.Rate,
			"end_date":         res.EndDate,
			"estimated_income": res.EstimatedIncome.Amount().StringFixed(2),
		})
	}
}

// MyDeposits returns the requester's active deposits with accrued interest.
func MyDeposits(svc *depositsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		infos, err := svc.My(c.Context(), userID)
		if err != nil {
			return common.ProblemJSON(c, "Failed to list deposits", err)
		}
		out := make([]fiber.Map, len(infos))
		for i, info := range infos {
			out[i] = fiber.Map{
				"id":             info.Deposit.ID,
				"amount":         info.Deposit.Amount.Amount().StringFixed(2),
				"rate":           info.Deposit.Rate,
				"tier":           info.Deposit.Tier,
				"term_months":    info.Deposit.TermMonths,
				"end_date":       info.Deposit.EndDate,
				"accrued_income": info.AccruedIncome.Amount().StringFixed(2),
			}
		}
		return common.SuccessJSON(c, fiber.StatusOK, "Deposits", out)
	}
}

// CloseDeposit refunds the principal and deactivates the deposit.
func CloseDeposit(svc *depositsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		depositID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid deposit id", err.Error())
		}
		res, err := svc.Close(c.Context(), userID, depositID)
		if err != nil {
			log.Errorf("Deposit closure failed: %v", err)
			return common.ProblemJSON(c, "Deposit closure failed", err)
		}
		return common.SuccessJSON(c, fiber.StatusOK, "Deposit closed", fiber.Map{
			"refunded": res.Refunded.Amount().StringFixed(2),
		})
	}
}
