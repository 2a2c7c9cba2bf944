package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/bellybank/backend/pkg/config"
	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/bellybank/backend/pkg/middleware"
	transfersvc "github.com/bellybank/backend/pkg/service/transfer"
	"github.com/bellybank/backend/webapi/common"
)

// TransferInput is a money transfer request. Exactly one of to_card and
// to_phone selects the recipient.
type TransferInput struct {
	Amount        string `json:"amount" validate:"required"`
	Currency      string `json:"currency"`
	ToCard        string `json:"to_card"`
	ToPhone       string `json:"to_phone"`
	FromAccountID string `json:"from_account_id"`
}

// TransferRoutes registers the protected transfer endpoint.
func TransferRoutes(app *fiber.App, svc *transfersvc.Service, cfg config.Jwt) {
	app.Post("/transfers", middleware.JwtProtected(cfg), Transfer(svc))
}

// Transfer executes a transfer to a card or phone recipient.
func Transfer(svc *transfersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[TransferInput](c)
		if input == nil {
			return err
		}

		amount, err := money.NewFromString(input.Amount, currency.Code(input.Currency))
		if err != nil {
			return common.ProblemJSON(c, "Invalid amount", err)
		}

		req := transfersvc.Request{
			UserID:  userID,
			Amount:  amount,
			ToCard:  input.ToCard,
			ToPhone: input.ToPhone,
		}
		if input.FromAccountID != "" {
			fromID, err := uuid.Parse(input.FromAccountID)
			if err != nil {
				return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account id", err.Error())
			}
			req.FromAccountID = &fromID
		}

		res, err := svc.Transfer(c.Context(), req)
		if err != nil {
			log.Errorf("Transfer failed: %v", err)
			return common.ProblemJSON(c, "Transfer failed", err)
		}
		return common.SuccessJSON(c, fiber.StatusOK, "Transfer completed", fiber.Map{
			"transaction_id": res.TransactionID,
			"category":       res.Category,
			"external":       res.External,
			"new_balance":    res.NewBalance.Amount().StringFixed(2),
		})
	}
}
