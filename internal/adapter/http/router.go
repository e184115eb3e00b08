package http

import (
	"time"

	"lenoa-backend/internal/adapter/middleware"
	"lenoa-backend/internal/infrastructure/metrics"
	"lenoa-backend/pkg/id"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type RouterDeps struct {
	Health   *Handler
	Loans    *LoanHandler
	Assets   *AssetHandler
	Claims   *ClaimHandler
	Treasury *TreasuryHandler

	JWTSecret      string
	Redis          *redis.Client
	IdempotencyTTL time.Duration
	Log            *logrus.Logger
	Metrics        *metrics.Metrics
}

// NewRouter builds the echo instance with every route mounted. Mutations
// require a bearer token and an idempotency key.
func NewRouter(d RouterDeps) *echo.Echo {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.Health == nil {
		d.Health = NewHandler()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.Use(
		echomw.Recover(),
		echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: id.NewRequestID}),
		middleware.RequestLogger(d.Log),
		withLogger(d.Log),
		d.Metrics.Middleware(),
	)

	e.GET("/health", d.Health.Health)
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	write := []echo.MiddlewareFunc{
		middleware.Auth(d.JWTSecret),
		middleware.Idempotency(middleware.IdempotencyConfig{Redis: d.Redis, TTL: d.IdempotencyTTL, Log: d.Log}),
	}

	if h := d.Loans; h != nil {
		e.GET("/loans", h.ListLoans)
		e.GET("/loans/:loan_id", h.GetLoan)
		e.GET("/loans/:loan_id/collateral", h.GetCollateral)
		e.GET("/accounts/:account/loans/borrowed", h.BorrowerLoans)
		e.GET("/accounts/:account/loans/lent", h.LenderLoans)
		e.POST("/loans", h.CreateLoan, write...)
		e.POST("/loans/:loan_id/fund", h.FundLoan, write...)
		e.POST("/loans/:loan_id/repay", h.RepayLoan, write...)
		e.POST("/loans/:loan_id/liquidate", h.LiquidateLoan, write...)
		e.POST("/loans/:loan_id/cancel", h.CancelLoan, write...)
	}

	if h := d.Assets; h != nil {
		e.GET("/assets", h.List)
		e.GET("/assets/:asset/supported", h.Supported)
		e.POST("/admin/assets", h.Add, write...)
		e.POST("/admin/assets/:asset/disable", h.Disable, write...)
	}

	if h := d.Claims; h != nil {
		e.GET("/claims/:token_id", h.Get)
		e.GET("/claims/owners/:account/balance", h.Balance)
		e.GET("/nft/:token_id", h.Document)
		e.POST("/claims/operators", h.SetApprovalForAll, write...)
		e.POST("/claims/:token_id/transfer", h.Transfer, write...)
		e.POST("/claims/:token_id/approve", h.Approve, write...)
	}

	if h := d.Treasury; h != nil {
		e.GET("/accounts/:account/balances/:asset", h.Balance)
		e.POST("/admin/accounts/:account/credit", h.Credit, write...)
		e.POST("/admin/accounts/:account/payout-rejection", h.SetPayoutRejection, write...)
		e.POST("/admin/fees/:asset/withdraw", h.WithdrawFees, write...)
	}

	return e
}
