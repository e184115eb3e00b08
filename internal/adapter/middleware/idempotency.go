package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	defaultReplayTTL = 24 * time.Hour
	defaultLockTTL   = time.Minute
	defaultClockSkew = 10 * time.Minute
	storeTimeout     = 2 * time.Second
)

// IdempotencyConfig configures Idempotency. Zero durations take defaults.
type IdempotencyConfig struct {
	Redis *redis.Client
	Log   *logrus.Logger

	// TTL is how long a completed response is replayed.
	TTL time.Duration
	// LockTTL bounds how long a pending request holds its key.
	LockTTL time.Duration
	// ClockSkew is the accepted distance between Ax-Request-At and now.
	ClockSkew time.Duration

	now func() time.Time
}

// Idempotency makes mutating requests safe to retry. The key is scoped to
// method, route, authenticated account and Ax-Request-Id, so it must run
// after Auth. A retry with the same body replays the stored response; a
// different body or a request still in flight gets 409. Responses with a
// 5xx status are not stored.
func Idempotency(cfg IdempotencyConfig) echo.MiddlewareFunc {
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultReplayTTL
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}
	if cfg.ClockSkew <= 0 {
		cfg.ClockSkew = defaultClockSkew
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	store := &replayStore{rdb: cfg.Redis, lockTTL: cfg.LockTTL, ttl: cfg.TTL}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID, valid := requestID(req.Header.Get(HeaderRequestID))
			if reqID == "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing " + HeaderRequestID})
			}
			if !valid {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid " + HeaderRequestID + " format"})
			}
			at, err := requestAt(req.Header.Get(HeaderRequestAt))
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			if !withinSkew(at, cfg.now().UTC(), cfg.ClockSkew) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": HeaderRequestAt + " too skewed"})
			}
			account, authed := AccountFrom(c)
			if !authed {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing authenticated account"})
			}

			var body []byte
			if req.Body != nil {
				if body, err = io.ReadAll(req.Body); err != nil {
					return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable body"})
				}
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			key := replayKey(req.Method, c.Path(), account, reqID)
			log := cfg.Log.WithFields(logrus.Fields{"idempotency_key": key, "account": account.Hex()})
			sum := digest(body)

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()
			ok, err := store.reserve(ctx, key, replay{BodySHA256: sum, RequestAt: at.UnixMilli(), StoredAt: cfg.now().UTC()})
			if err != nil {
				log.WithError(err).Error("idempotency store unavailable")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !ok {
				prev, found, err := store.load(ctx, key)
				if err != nil {
					log.WithError(err).Warn("idempotency: load replay")
				}
				if found && prev.BodySHA256 != sum {
					return c.JSON(http.StatusConflict, map[string]string{"error": HeaderRequestID + " reused with different body"})
				}
				if found && !prev.Pending {
					c.Response().Header().Set(HeaderReplayed, "true")
					return c.Blob(prev.Status, echo.MIMEApplicationJSON, prev.Body)
				}
				return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
			}

			w := c.Response().Writer
			capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			c.Response().Writer = capture
			if err := next(c); err != nil {
				c.Error(err)
			}
			c.Response().Writer = w

			// The request context may be gone by now; the outcome still has to land.
			saveCtx, saveCancel := context.WithTimeout(context.Background(), storeTimeout)
			defer saveCancel()
			if capture.status >= http.StatusInternalServerError {
				if err := store.release(saveCtx, key); err != nil {
					log.WithError(err).Warn("idempotency: release key")
				}
				return nil
			}
			final := replay{
				Status:     capture.status,
				Body:       capture.buf.Bytes(),
				BodySHA256: sum,
				RequestAt:  at.UnixMilli(),
				StoredAt:   cfg.now().UTC(),
			}
			if err := store.commit(saveCtx, key, final); err != nil {
				log.WithError(err).Warn("idempotency: commit replay")
			}
			return nil
		}
	}
}

// captureWriter tees the response so it can be stored for replay.
type captureWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *captureWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}
