package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bellybank/backend/pkg/config"
	"github.com/bellybank/backend/pkg/domain/insurance"
	"github.com/bellybank/backend/pkg/middleware"
	insurancesvc "github.com/bellybank/backend/pkg/service/insurance"
	"github.com/bellybank/backend/webapi/common"
)

// InsuranceInput is a policy application.
type InsuranceInput struct {
	Type       string `json:"type" validate:"required"`
	Coverage   string `json:"coverage" validate:"required"`
	TermMonths int    `json:"term_months" validate:"required,gt=0"`
}

// InsuranceRoutes registers the protected insurance endpoints.
func InsuranceRoutes(app *fiber.App, svc *insurancesvc.Service, cfg config.Jwt) {
	app.Post("/insurance/apply", middleware.JwtProtected(cfg), ApplyInsurance(svc))
	app.Get("/insurance/my", middleware.JwtProtected(cfg), MyPolicies(svc))
	app.Post("/insurance/:id/cancel", middleware.JwtProtected(cfg), CancelPolicy(svc))
}

// ApplyInsurance prices and issues a policy, charging the term upfront.
func ApplyInsurance(svc *insurancesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[InsuranceInput](c)
		if input == nil {
			return err
		}
		coverage, err := decimal.NewFromString(input.Coverage)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid coverage", err.Error())
		}
		res, err := svc.Apply(c.Context(), insurancesvc.ApplyRequest{
			UserID:     userID,
			Type:       insurance.Type(input.Type),
			Coverage:   coverage,
			TermMonths: input.TermMonths,
		})
		if err != nil {
			log.Errorf("Insurance application failed: %v", err)
			return common.ProblemJSON(c, "Insurance application failed", err)
		}
		return common.SuccessJSON(c, fiber.StatusCreated, "Policy issued", fiber.Map{
			"policy_id":    res.PolicyID,
			"monthly_cost": res.MonthlyCost.Amount().StringFixed(2),
			"total_cost":   res.TotalCost.Amount().StringFixed(2),
			"end_date":     res.EndDate,
		})
	}
}

// MyPolicies returns the requester's active policies.
func MyPolicies(svc *insurancesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		policies, err := svc.My(c.Context(), userID)
		if err != nil {
			return common.ProblemJSON(c, "Failed to list policies", err)
		}
		out := make([]fiber.Map, len(policies))
		for i, p := range policies {
			out[i] = fiber.Map{
				"id":           p.ID,
				"type":         p.Type,
				"coverage":     p.Coverage,
				"monthly_cost": p.MonthlyCost.Amount().StringFixed(2),
				"term_months":  p.TermMonths,
				"end_date":     p.EndDate,
			}
		}
		return common.SuccessJSON(c, fiber.StatusOK, "Policies", out)
	}
}

// CancelPolicy deactivates a policy without a refund.
func CancelPolicy(svc *insurancesvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		policyID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid policy id", err.Error())
		}
		if err := svc.Cancel(c.Context(), userID, policyID); err != nil {
			log.Errorf("Policy cancellation failed: %v", err)
			return common.ProblemJSON(c, "Policy cancellation failed", err)
		}
		return common.SuccessJSON(c, fiber.StatusOK, "Policy cancelled", nil)
	}
}
