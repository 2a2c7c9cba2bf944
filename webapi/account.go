package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/bellybank/backend/pkg/config"
	"github.com/bellybank/backend/pkg/domain/account"
	"github.com/bellybank/backend/pkg/middleware"
	accountsvc "github.com/bellybank/backend/pkg/service/account"
	"github.com/bellybank/backend/webapi/common"
)

// FavoriteInput is a new favorite payee.
type FavoriteInput struct {
	Name       string `json:"name" validate:"required"`
	Value      string `json:"value" validate:"required"`
	Type       string `json:"type" validate:"required,oneof=phone card service"`
	ColorStart string `json:"color_start"`
	ColorEnd   string `json:"color_end"`
}

// AccountRoutes registers the protected account, transaction and favorites
// endpoints.
func AccountRoutes(app *fiber.App, svc *accountsvc.Service, cfg config.Jwt) {
	app.Get("/accounts", middleware.JwtProtected(cfg), ListAccounts(svc))
	app.Post("/accounts/:id/block", middleware.JwtProtected(cfg), SetBlocked(svc, true))
	app.Post("/accounts/:id/unblock", middleware.JwtProtected(cfg), SetBlocked(svc, false))
	app.Get("/transactions", middleware.JwtProtected(cfg), ListTransactions(svc))
	app.Get("/favorites", middleware.JwtProtected(cfg), ListFavorites(svc))
	app.Post("/favorites", middleware.JwtProtected(cfg), AddFavorite(svc))
	app.Delete("/favorites/:id", middleware.JwtProtected(cfg), DeleteFavorite(svc))
}

func accountJSON(a *account.Account) fiber.Map {
	return fiber.Map{
		"id":          a.ID,
		"card_number": a.MaskedCard(),
		"balance":     a.Balance.Amount().StringFixed(2),
		"currency":    a.Balance.Currency(),
		"is_blocked":  a.Blocked,
	}
}

func transactionJSON(tx *account.Transaction) fiber.Map {
	return fiber.Map{
		"id":              tx.ID,
		"from_account_id": tx.FromAccountID,
		"to_account_id":   tx.ToAccountID,
		"amount":          tx.Amount.Amount().StringFixed(2),
		"currency":        tx.Amount.Currency(),
		"category":        tx.Category,
		"created_at":      tx.CreatedAt,
	}
}

// ListAccounts returns the requester's accounts with masked card numbers.
func ListAccounts(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		accounts, err := svc.List(c.Context(), userID)
		if err != nil {
			log.Errorf("Failed to list accounts: %v", err)
			return common.ProblemJSON(c, "Failed to list accounts", err)
		}
		out := make([]fiber.Map, len(accounts))
		for i, a := range accounts {
			out[i] = accountJSON(a)
		}
		return common.SuccessJSON(c, fiber.StatusOK, "Accounts", out)
	}
}

// SetBlocked blocks or unblocks one of the requester's accounts.
func SetBlocked(svc *accountsvc.Service, blocked bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		accountID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account id", err.Error())
		}
		if err := svc.SetBlocked(c.Context(), userID, accountID, blocked); err != nil {
			return common.ProblemJSON(c, "Failed to update account", err)
		}
		return common.SuccessJSON(c, fiber.StatusOK, "Account updated", fiber.Map{"is_blocked": blocked})
	}
}

// ListTransactions returns recent ledger entries across the requester's
// accounts, newest first.
func ListTransactions(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		entries, err := svc.Transactions(c.Context(), userID)
		if err != nil {
			log.Errorf("Failed to list transactions: %v", err)
			return common.ProblemJSON(c, "Failed to list transactions", err)
		}
		out := make([]fiber.Map, len(entries))
		for i, tx := range entries {
			out[i] = transactionJSON(tx)
		}
		return common.SuccessJSON(c, fiber.StatusOK, "Transactions", out)
	}
}

// ListFavorites returns the requester's saved payees.
func ListFavorites(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		favorites, err := svc.Favorites(c.Context(), userID)
		if err != nil {
			return common.ProblemJSON(c, "Failed to list favorites", err)
		}
		out := make([]fiber.Map, len(favorites))
		for i, f := range favorites {
			out[i] = fiber.Map{
				"id":          f.ID,
				"name":        f.Name,
				"value":       f.Value,
				"type":        f.Type,
				"color_start": f.ColorStart,
				"color_end":   f.ColorEnd,
			}
		}
		return common.SuccessJSON(c, fiber.StatusOK, "Favorites", out)
	}
}

// AddFavorite saves a payee.
func AddFavorite(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[FavoriteInput](c)
		if input == nil {
			return err
		}
		f, err := svc.AddFavorite(c.Context(), accountsvc.FavoriteRequest{
			UserID:     userID,
			Name:       input.Name,
			Value:      input.Value,
			Type:       input.Type,
			ColorStart: input.ColorStart,
			ColorEnd:   input.ColorEnd,
		})
		if err != nil {
			return common.ProblemJSON(c, "Failed to add favorite", err)
		}
		return common.SuccessJSON(c, fiber.StatusCreated, "Favorite added", fiber.Map{"id": f.ID})
	}
}

// DeleteFavorite removes a saved payee.
func DeleteFavorite(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		favoriteID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid favorite id", err.Error())
		}
		if err := svc.DeleteFavorite(c.Context(), userID, favoriteID); err != nil {
			return common.ProblemJSON(c, "Failed to delete favorite", err)
		}
		return common.SuccessJSON(c, fiber.StatusOK, "Favorite deleted", nil)
	}
}
