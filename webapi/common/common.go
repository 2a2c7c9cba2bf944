// Package common holds the response envelope, problem-details rendering and
// request binding shared by every route package.
package common

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/bellybank/backend/pkg/domain/account"
	"github.com/bellybank/backend/pkg/domain/deposit"
	"github.com/bellybank/backend/pkg/domain/insurance"
	"github.com/bellybank/backend/pkg/domain/loan"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/bellybank/backend/pkg/domain/user"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// ErrorResponseJSON writes an RFC 9457 problem-details response.
func ErrorResponseJSON(c *fiber.Ctx, status int, title string, detail any) error {
	pd := ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
	}
	if detail != nil {
		if s, ok := detail.(string); ok {
			pd.Detail = s
		} else {
			pd.Errors = detail
		}
	}
	pd.Instance = c.OriginalURL()
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(pd)
}

// ProblemJSON maps a service error to its HTTP status and writes the
// problem-details response. Internal errors keep their detail out of the
// body; the caller is expected to have logged them.
func ProblemJSON(c *fiber.Ctx, title string, err error) error {
	status := ErrorToStatusCode(err)
	detail := err.Error()
	if status == fiber.StatusInternalServerError {
		detail = "internal error"
	}
	return ErrorResponseJSON(c, status, title, detail)
}

// ErrorToStatusCode maps domain errors to HTTP status codes. Anything not in
// the business taxonomy is a 500.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, user.ErrUserUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, account.ErrAccountNotFound),
		errors.Is(err, account.ErrRecipientNotFound),
		errors.Is(err, loan.ErrLoanNotFound),
		errors.Is(err, deposit.ErrDepositNotFound),
		errors.Is(err, insurance.ErrPolicyNotFound),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, user.ErrFavoriteNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, user.ErrPhoneAlreadyRegistered):
		return fiber.StatusConflict
	case errors.Is(err, account.ErrInsufficientFunds),
		errors.Is(err, account.ErrAccountBlocked),
		errors.Is(err, loan.ErrInsufficientIncome),
		errors.Is(err, loan.ErrInsufficientCollateral):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, money.ErrCurrencyMismatch),
		errors.Is(err, money.ErrUnsupportedCurrency),
		errors.Is(err, account.ErrSameAccountTransfer),
		errors.Is(err, account.ErrNoUsableAccount),
		errors.Is(err, account.ErrNoRecipientAccount),
		errors.Is(err, account.ErrNoRecipient),
		errors.Is(err, loan.ErrInvalidTerm),
		errors.Is(err, loan.ErrUnknownType),
		errors.Is(err, loan.ErrMissingCollateral),
		errors.Is(err, loan.ErrNoPendingInstallments),
		errors.Is(err, deposit.ErrUnknownTier),
		errors.Is(err, deposit.ErrInvalidTerm),
		errors.Is(err, insurance.ErrInvalidCoverage),
		errors.Is(err, insurance.ErrInvalidTerm):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body and validates struct tags. On
// failure the error response is already written and the returned pointer is
// nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	if err := validator.New().Struct(input); err != nil {
		return nil, ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", err.Error())
	}
	return &input, nil
}

// SuccessJSON writes the standard success envelope.
func SuccessJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}
