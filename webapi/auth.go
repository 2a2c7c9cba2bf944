package webapi

import (
	"github.com/gofiber/fiber/v2"

	authsvc "github.com/bellybank/backend/pkg/service/auth"
	usersvc "github.com/bellybank/backend/pkg/service/user"
	"github.com/bellybank/backend/webapi/common"
)

// RegisterInput is a signup request.
type RegisterInput struct {
	Phone    string `json:"phone" validate:"required,min=10"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
}

// LoginInput is a login request.
type LoginInput struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthRoutes registers the public auth endpoints.
func AuthRoutes(app *fiber.App, userSvc *usersvc.Service, authSvc *authsvc.Service) {
	app.Post("/auth/register", Register(userSvc, authSvc))
	app.Post("/auth/login", Login(authSvc))
}

// Register creates a user with a default account and returns a token so the
// client is signed in immediately.
func Register(userSvc *usersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[RegisterInput](c)
		if input == nil {
			return err
		}
		u, err := userSvc.Register(c.Context(), usersvc.RegisterRequest{
			Phone:    input.Phone,
			Password: input.Password,
			FullName: input.FullName,
		})
		if err != nil {
			return common.ProblemJSON(c, "Registration failed", err)
		}
		token, err := authSvc.GenerateToken(u)
		if err != nil {
			return common.ProblemJSON(c, "Registration failed", err)
		}
		return common.SuccessJSON(c, fiber.StatusCreated, "Registered", fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":        u.ID,
				"phone":     u.Phone,
				"full_name": u.FullName,
			},
		})
	}
}

// Login authenticates phone+password and returns a JWT.
func Login(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginInput](c)
		if input == nil {
			return err
		}
		u, err := authSvc.Login(c.Context(), input.Phone, input.Password)
		if err != nil {
			return common.ProblemJSON(c, "Login failed", err)
		}
		token, err := authSvc.GenerateToken(u)
		if err != nil {
			return common.ProblemJSON(c, "Login failed", err)
		}
		return common.SuccessJSON(c, fiber.StatusOK, "Success login", fiber.Map{"token": token})
	}
}
