package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const accountKey = "account"

// Claims carries the account a bearer token acts for.
type Claims struct {
	Account string `json:"account"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for account valid for ttl.
func GenerateToken(account common.Address, secret string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		Account: account.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.Hex(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Auth validates the bearer token and stores the caller's account in the context.
func Auth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authorization header required"})
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization header format"})
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(*jwt.Token) (any, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			}
			if !common.IsHexAddress(claims.Account) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "token carries no account"})
			}

			c.Set(accountKey, common.HexToAddress(claims.Account))
			return next(c)
		}
	}
}

// AccountFrom returns the authenticated caller, if any.
func AccountFrom(c echo.Context) (common.Address, bool) {
	a, ok := c.Get(accountKey).(common.Address)
	return a, ok
}
