package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"lenoa-backend/internal/domain/loan"
	"lenoa-backend/pkg/id"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestRespondError_UsesRouterLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	e := echo.New()
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: id.NewRequestID}), withLogger(log))
	e.GET("/loans/:loan_id", func(c echo.Context) error {
		return respondError(c, errors.New("connection refused"))
	})
	e.GET("/loans/:loan_id/repay", func(c echo.Context) error {
		return respondError(c, fmt.Errorf("repay: %w", loan.ErrLoanDefaulted))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/loans/3", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "internal error")
	require.NotContains(t, rec.Body.String(), "connection refused")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "http: internal error", line["msg"])
	require.Equal(t, "connection refused", line["error"])
	require.Equal(t, "/loans/:loan_id", line["path"])
	require.Equal(t, rec.Header().Get(echo.HeaderXRequestID), line["request_id"])

	buf.Reset()
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/loans/3/repay", nil))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "LoanDefaulted")
	require.Zero(t, buf.Len(), "engine errors are not logged as internal")
}
