package http

import (
	"strconv"
	"strings"

	"lenoa-backend/internal/adapter/middleware"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const loggerKey = "logger"

// withLogger makes log available to handlers through loggerFrom.
func withLogger(log *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(loggerKey, log)
			return next(c)
		}
	}
}

// loggerFrom returns the router's logger tagged with the request id.
func loggerFrom(c echo.Context) *logrus.Entry {
	log, ok := c.Get(loggerKey).(*logrus.Logger)
	if !ok {
		log = logrus.StandardLogger()
	}
	return log.WithField("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
}

func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil
}

func parseAddress(raw string) (common.Address, bool) {
	raw = strings.TrimSpace(raw)
	if !common.IsHexAddress(raw) {
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

// parseUnits reads a validated uint_str field; empty means zero.
func parseUnits(raw string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	return decimal.RequireFromString(raw)
}

// bindValid binds and validates the request body, writing the error response itself.
func bindValid(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, badRequest(c, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}

func caller(c echo.Context) common.Address {
	a, _ := middleware.AccountFrom(c)
	return a
}
