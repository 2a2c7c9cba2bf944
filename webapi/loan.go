package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bellybank/backend/pkg/config"
	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/loan"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/bellybank/backend/pkg/middleware"
	loansvc "github.com/bellybank/backend/pkg/service/loan"
	"github.com/bellybank/backend/webapi/common"
)

// LoanApplyInput is a loan application.
type LoanApplyInput struct {
	Amount        string `json:"amount" validate:"required"`
	TermMonths    int    `json:"term_months" validate:"required,gt=0"`
	Income        string `json:"income" validate:"required"`
	Type          string `json:"type" validate:"required"`
	PropertyValue string `json:"property_value"`
	VehiclePrice  string `json:"vehicle_price"`
}

// LoanRoutes registers the protected loan endpoints.
func LoanRoutes(app *fiber.App, svc *loansvc.Service, cfg config.Jwt) {
	app.Post("/loans/apply", middleware.JwtProtected(cfg), ApplyLoan(svc))
	app.Get("/loans/my", middleware.JwtProtected(cfg), MyLoans(svc))
	app.Get("/loans/calendar", middleware.JwtProtected(cfg), LoanCalendar(svc))
	app.Post("/loans/:id/pay", middleware.JwtProtected(cfg), PayLoan(svc))
}

// ApplyLoan prices and originates a loan.
func ApplyLoan(svc *loansvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[LoanApplyInput](c)
		if input == nil {
			return err
		}

		amount, err := money.NewFromString(input.Amount, currency.DefaultCurrency)
		if err != nil {
			return common.ProblemJSON(c, "Invalid amount", err)
		}
		income, err := decimal.NewFromString(input.Income)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid income", err.Error())
		}

		req := loansvc.ApplyRequest{
			UserID:     userID,
			Amount:     amount,
			TermMonths: input.TermMonths,
			Income:     income,
			Type:       loan.Type(input.Type),
		}
		if input.PropertyValue != "" {
			v, err := decimal.NewFromString(input.PropertyValue)
			if err != nil {
				return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid property value", err.Error())
			}
			req.PropertyValue = &v
		}
		if input.VehiclePrice != "" {
			v, err := decimal.NewFromString(input.VehiclePrice)
			if err != nil {
				return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid vehicle price", err.Error())
			}
			req.VehiclePrice = &v
		}

		res, err := svc.Apply(c.Context(), req)
		if err != nil {
			log.Errorf("Loan application failed: %v", err)
			return common.ProblemJSON(c, "Loan application failed", err)
		}
		return common.SuccessJSON(c, fiber.StatusCreated, "Loan approved", fiber.Map{
			"loan_id":         res.LoanID,
			"monthly_payment": res.MonthlyPayment.Amount().StringFixed(2),
			"total_payable":   res.TotalPayable.Amount().StringFixed(2),
		})
	}
}

// MyLoans returns the requester's active loans with remaining commitments.
func MyLoans(svc *loansvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		infos, err := svc.My(c.Context(), userID)
		if err != nil {
			return common.ProblemJSON(c, "Failed to list loans", err)
		}
		out := make([]fiber.Map, len(infos))
		for i, info := range infos {
			out[i] = fiber.Map{
				"id":              info.Loan.ID,
				"type":            info.Loan.Type,
				"amount":          info.Loan.Amount.Amount().StringFixed(2),
				"term_months":     info.Loan.TermMonths,
				"monthly_payment": info.Loan.MonthlyPayment.Amount().StringFixed(2),
				"remaining":       info.Remaining.Amount().StringFixed(2),
			}
		}
		return common.SuccessJSON(c, fiber.StatusOK, "Loans", out)
	}
}

// LoanCalendar maps ISO due dates to pending installments.
func LoanCalendar(svc *loansvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		calendar, err := svc.Calendar(c.Context(), userID)
		if err != nil {
			return common.ProblemJSON(c, "Failed to build calendar", err)
		}
		return common.SuccessJSON(c, fiber.StatusOK, "Calendar", calendar)
	}
}

// PayLoan settles the earliest unpaid installment.
func PayLoan(svc *loansvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ProblemJSON(c, "Unauthorized", err)
		}
		loanID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid loan id", err.Error())
		}
		res, err := svc.Pay(c.Context(), userID, loanID)
		if err != nil {
			log.Errorf("Loan payment failed: %v", err)
			return common.ProblemJSON(c, "Loan payment failed", err)
		}
		return common.SuccessJSON(c, fiber.StatusOK, "Installment paid", fiber.Map{
			"paid_amount": res.PaidAmount.Amount().StringFixed(2),
			"loan_closed": res.LoanClosed,
		})
	}
}
