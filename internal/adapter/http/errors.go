package http

import (
	"net/http"

	"lenoa-backend/internal/usecase/lending"

	"github.com/labstack/echo/v4"
)

var statusByCode = map[string]int{
	"InvalidAmount":            http.StatusUnprocessableEntity,
	"InvalidRate":              http.StatusUnprocessableEntity,
	"InvalidDuration":          http.StatusUnprocessableEntity,
	"InvalidAccount":           http.StatusUnprocessableEntity,
	"InvalidStatus":            http.StatusUnprocessableEntity,
	"InvalidRecipient":         http.StatusUnprocessableEntity,
	"InvalidAsset":             http.StatusUnprocessableEntity,
	"UnsupportedAsset":         http.StatusUnprocessableEntity,
	"CollateralRequired":       http.StatusUnprocessableEntity,
	"ValueMismatch":            http.StatusUnprocessableEntity,
	"IncorrectRepaymentAmount": http.StatusUnprocessableEntity,

	"InvalidTransition":   http.StatusConflict,
	"LoanNotAvailable":    http.StatusConflict,
	"LoanNotActive":       http.StatusConflict,
	"LoanNotPending":      http.StatusConflict,
	"LoanNotDefaultedYet": http.StatusConflict,
	"LoanDefaulted":       http.StatusConflict,
	"AlreadyDeposited":    http.StatusConflict,
	"AlreadyReleased":     http.StatusConflict,
	"AlreadyMinted":       http.StatusConflict,

	"CannotFundOwnLoan":     http.StatusForbidden,
	"OnlyBorrowerCanRepay":  http.StatusForbidden,
	"OnlyBorrowerCanCancel": http.StatusForbidden,
	"OnlyFactoryCanCall":    http.StatusForbidden,
	"Unauthorized":          http.StatusForbidden,

	"NotFound": http.StatusNotFound,

	"PayoutFailed":        http.StatusPaymentRequired,
	"InsufficientBalance": http.StatusPaymentRequired,
}

// StatusFor maps an engine error code to its HTTP status.
func StatusFor(code string) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// respondError writes the error payload for an engine failure. Internal
// errors are logged and their message withheld.
func respondError(c echo.Context, err error) error {
	code := lending.ErrorCode(err)
	status := StatusFor(code)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		loggerFrom(c).WithError(err).WithField("path", c.Path()).Error("http: internal error")
		msg = "internal error"
	}
	return c.JSON(status, ErrorResponse{Error: msg, Code: code})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Details: ToFieldErrors(err),
	})
}
