package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/bellybank/backend/pkg/config"
	"github.com/bellybank/backend/pkg/middleware"
	assistantsvc "github.com/bellybank/backend/pkg/service/assistant"
	"github.com/bellybank/backend/webapi/common"
)

// ChatInput is a message to the assistant.
type ChatInput struct {
	Message string `json:"message" validate:"required"`
}

// AssistantRoutes registers the protected assistant endpoint.
func AssistantRoutes(app *fiber.App, svc *assistantsvc.Service, cfg config.Jwt) {
	app.Post("/assistant/chat", middleware.JwtProtected(cfg), Chat(svc))
}

// Chat answers a free-text message, executing a transfer when one is asked
// for.
func Chat(svc *assistantsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[ChatInput](c)
		if input == nil {
			return err
		}
		res, err := svc.Chat(c.Context(), userID, input.Message)
		if err != nil {
			log.Errorf("Assistant chat failed: %v", err)
			return common.ProblemJSON(c, "Assistant unavailable", err)
		}
		return c.Status(fiber.StatusOK).JSON(res)
	}
}
