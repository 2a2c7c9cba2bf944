package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/bellybank/backend/pkg/config"
	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/bellybank/backend/pkg/middleware"
	billpaysvc "github.com/bellybank/backend/pkg/service/billpay"
	"github.com/bellybank/backend/webapi/common"
)

// PayServiceInput is a service payment (mobile top-up, utilities, fines...).
type PayServiceInput struct {
	ServiceName string            `json:"service_name" validate:"required"`
	Amount      string            `json:"amount" validate:"required"`
	Details     map[string]string `json:"details"`
}

// ServiceRoutes registers the protected service-payment endpoint.
func ServiceRoutes(app *fiber.App, svc *billpaysvc.Service, cfg config.Jwt) {
	app.Post("/services/pay", middleware.JwtProtected(cfg), PayService(svc))
}

// PayService routes a payment to the named service category.
func PayService(svc *billpaysvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[PayServiceInput](c)
		if input == nil {
			return err
		}
		amount, err := money.NewFromString(input.Amount, currency.DefaultCurrency)
		if err != nil {
			return common.ProblemJSON(c, "Invalid amount", err)
		}
		res, err := svc.Pay(c.Context(), billpaysvc.PayRequest{
			UserID:      userID,
			ServiceName: input.ServiceName,
			Amount:      amount,
			Details:     input.Details,
		})
		if err != nil {
			log.Errorf("Service payment failed: %v", err)
			return common.ProblemJSON(c, "Service payment failed", err)
		}
		return common.SuccessJSON(c, fiber.StatusOK, res.Description, fiber.Map{
			"new_balance": res.NewBalance.Amount().StringFixed(2),
		})
	}
}
