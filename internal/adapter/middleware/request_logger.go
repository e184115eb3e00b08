package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs each completed request through logrus. Mount it after
// echo's RequestID middleware so the id is available.
func RequestLogger(log *logrus.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURIPath:   true,
		LogRoutePath: true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"status":     v.Status,
				"method":     v.Method,
				"path":       v.URIPath,
				"route":      v.RoutePath,
				"latency_ms": v.Latency.Milliseconds(),
				"client_ip":  v.RemoteIP,
				"request_id": v.RequestID,
			})
			if a, ok := AccountFrom(c); ok {
				entry = entry.WithField("account", a.Hex())
			}
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			switch {
			case v.Status >= 500:
				entry.Error("request completed")
			case v.Status >= 400:
				entry.Warn("request completed")
			default:
				entry.Info("request completed")
			}
			return nil
		},
	})
}
