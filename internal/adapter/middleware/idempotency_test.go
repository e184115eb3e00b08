package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	fundReqID  = "3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88"
)

var (
	testAccount = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	otherLender = common.HexToAddress("0x00000000000000000000000000000000000000a1")
)

func bearer(t *testing.T, account common.Address) string {
	t.Helper()
	tok, _, err := GenerateToken(account, testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

// lendingEcho mounts fund and repay behind Auth and Idempotency. Each
// handler invocation bumps calls; fund answers with the count so a replay
// is distinguishable from a second execution.
func lendingEcho(cfg IdempotencyConfig, calls *int32, fund echo.HandlerFunc) *echo.Echo {
	if fund == nil {
		fund = func(c echo.Context) error {
			n := atomic.AddInt32(calls, 1)
			return c.JSON(http.StatusOK, map[string]any{"loan_id": c.Param("loan_id"), "execution": n})
		}
	}
	e := echo.New()
	e.HideBanner = true
	write := []echo.MiddlewareFunc{Auth(testSecret), Idempotency(cfg)}
	e.POST("/loans/:loan_id/fund", fund, write...)
	e.POST("/loans/:loan_id/repay", func(c echo.Context) error {
		atomic.AddInt32(calls, 1)
		return c.JSON(http.StatusOK, map[string]string{"status": "repaid"})
	}, write...)
	e.GET("/loans/:loan_id", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "active"})
	}, Idempotency(cfg))
	return e
}

type call struct {
	path    string
	body    string
	reqID   string
	at      string
	account *common.Address
}

func send(t *testing.T, e *echo.Echo, cl call) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, cl.path, strings.NewReader(cl.body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if cl.reqID != "" {
		req.Header.Set(HeaderRequestID, cl.reqID)
	}
	at := cl.at
	if at == "" {
		at = time.Now().UTC().Format(time.RFC3339)
	}
	req.Header.Set(HeaderRequestAt, at)
	if cl.account != nil {
		req.Header.Set(echo.HeaderAuthorization, bearer(t, *cl.account))
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func fundCall(reqID string) call {
	return call{path: "/loans/7/fund", body: `{}`, reqID: reqID, account: &testAccount}
}

func TestIdempotency_GetBypassesHeaders(t *testing.T) {
	_, rdb := newRedis(t)
	var calls int32
	e := lendingEcho(IdempotencyConfig{Redis: rdb}, &calls, nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/loans/7", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestIdempotency_RejectsBadHeaders(t *testing.T) {
	_, rdb := newRedis(t)
	var calls int32
	e := lendingEcho(IdempotencyConfig{Redis: rdb, ClockSkew: 5 * time.Minute}, &calls, nil)
	stale := time.Now().UTC().Add(-6 * time.Minute).Format(time.RFC3339)

	tests := []struct {
		name string
		cl   call
		want int
	}{
		{"missing request id", call{path: "/loans/7/fund", account: &testAccount}, http.StatusBadRequest},
		{"malformed request id", call{path: "/loans/7/fund", reqID: "not-an-id", account: &testAccount}, http.StatusBadRequest},
		{"naive timestamp", call{path: "/loans/7/fund", reqID: fundReqID, at: "2026-03-01T12:00:00", account: &testAccount}, http.StatusBadRequest},
		{"stale timestamp", call{path: "/loans/7/fund", reqID: fundReqID, at: stale, account: &testAccount}, http.StatusBadRequest},
		{"no bearer token", call{path: "/loans/7/fund", reqID: fundReqID}, http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := send(t, e, tc.cl)
			require.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
	require.Zero(t, atomic.LoadInt32(&calls))
}

func TestIdempotency_DoubleFundReplaysFirstResponse(t *testing.T) {
	_, rdb := newRedis(t)
	var calls int32
	e := lendingEcho(IdempotencyConfig{Redis: rdb}, &calls, nil)

	first := send(t, e, fundCall(fundReqID))
	require.Equal(t, http.StatusOK, first.Code)
	require.Empty(t, first.Header().Get(HeaderReplayed))

	second := send(t, e, fundCall(fundReqID))
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, "true", second.Header().Get(HeaderReplayed))
	require.JSONEq(t, first.Body.String(), second.Body.String())
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestIdempotency_RequestIDCaseInsensitive(t *testing.T) {
	_, rdb := newRedis(t)
	var calls int32
	e := lendingEcho(IdempotencyConfig{Redis: rdb}, &calls, nil)

	require.Equal(t, http.StatusOK, send(t, e, fundCall(strings.ToUpper(fundReqID))).Code)
	rec := send(t, e, fundCall(fundReqID))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "true", rec.Header().Get(HeaderReplayed))
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestIdempotency_KeyScopedByAccountAndRoute(t *testing.T) {
	_, rdb := newRedis(t)
	var calls int32
	e := lendingEcho(IdempotencyConfig{Redis: rdb}, &calls, nil)

	require.Equal(t, http.StatusOK, send(t, e, fundCall(fundReqID)).Code)

	asOther := fundCall(fundReqID)
	asOther.account = &otherLender
	rec := send(t, e, asOther)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get(HeaderReplayed))

	repay := call{path: "/loans/7/repay", body: `{}`, reqID: fundReqID, account: &testAccount}
	rec = send(t, e, repay)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"repaid"}`, rec.Body.String())

	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestIdempotency_DifferentBodyConflicts(t *testing.T) {
	_, rdb := newRedis(t)
	var calls int32
	e := lendingEcho(IdempotencyConfig{Redis: rdb}, &calls, nil)

	require.Equal(t, http.StatusOK, send(t, e, fundCall(fundReqID)).Code)
	changed := fundCall(fundReqID)
	changed.body = `{"note":"again"}`
	rec := send(t, e, changed)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "different body")
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestIdempotency_InFlightConflicts(t *testing.T) {
	_, rdb := newRedis(t)
	var calls int32
	e := lendingEcho(IdempotencyConfig{Redis: rdb}, &calls, nil)

	s := &replayStore{rdb: rdb, lockTTL: time.Minute, ttl: time.Hour}
	key := replayKey(http.MethodPost, "/loans/:loan_id/fund", testAccount, fundReqID)
	ok, err := s.reserve(context.Background(), key, replay{BodySHA256: digest([]byte(`{}`))})
	require.NoError(t, err)
	require.True(t, ok)

	rec := send(t, e, fundCall(fundReqID))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "in progress")
	require.Zero(t, atomic.LoadInt32(&calls))
}

func TestIdempotency_ClientErrorIsReplayed(t *testing.T) {
	_, rdb := newRedis(t)
	var calls int32
	e := lendingEcho(IdempotencyConfig{Redis: rdb}, &calls, func(c echo.Context) error {
		atomic.AddInt32(&calls, 1)
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "loan is not open")
	})

	first := send(t, e, fundCall(fundReqID))
	require.Equal(t, http.StatusUnprocessableEntity, first.Code)
	second := send(t, e, fundCall(fundReqID))
	require.Equal(t, http.StatusUnprocessableEntity, second.Code)
	require.Equal(t, "true", second.Header().Get(HeaderReplayed))
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestIdempotency_ServerErrorReleasesKey(t *testing.T) {
	mr, rdb := newRedis(t)
	var calls int32
	e := lendingEcho(IdempotencyConfig{Redis: rdb}, &calls, func(c echo.Context) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "active"})
	})

	require.Equal(t, http.StatusServiceUnavailable, send(t, e, fundCall(fundReqID)).Code)
	require.False(t, mr.Exists(replayKey(http.MethodPost, "/loans/:loan_id/fund", testAccount, fundReqID)))

	rec := send(t, e, fundCall(fundReqID))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get(HeaderReplayed))
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestIdempotency_StoreUnavailable(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	var calls int32
	e := lendingEcho(IdempotencyConfig{Redis: rdb, Log: log}, &calls, nil)

	rec := send(t, e, fundCall(fundReqID))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Zero(t, atomic.LoadInt32(&calls))
	require.Contains(t, buf.String(), "idempotency store unavailable")
	require.Contains(t, buf.String(), testAccount.Hex())
}

func TestIdempotency_InjectedClock(t *testing.T) {
	_, rdb := newRedis(t)
	var calls int32
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := lendingEcho(IdempotencyConfig{Redis: rdb, now: func() time.Time { return fixed }}, &calls, nil)

	cl := fundCall(fundReqID)
	cl.at = "2026-03-01T19:05:00+07:00"
	require.Equal(t, http.StatusOK, send(t, e, cl).Code)

	cl.reqID = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	cl.at = "2026-03-01T12:30:00Z"
	require.Equal(t, http.StatusBadRequest, send(t, e, cl).Code)
}
