package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/detailiq/dashboard-system/internal/core/ports"
)

const identityKey = "identity"

// identityClaims are the claims the identity provider puts in its tokens.
type identityClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Auth validates the provider-issued JWT and injects the caller's
// ports.Identity into the context. When issuer is non-empty the token's iss
// claim must match it.
func Auth(jwtSecret, issuer string) echo.MiddlewareFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			var claims identityClaims
			tkn, err := parser.ParseWithClaims(parts[1], &claims, func(*jwt.Token) (any, error) {
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if claims.Subject == "" || claims.Issuer == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing subject or issuer")
			}

			c.Set(identityKey, ports.Identity{
				TokenIdentifier: claims.Issuer + "|" + claims.Subject,
				Name:            claims.Name,
			})
			return next(c)
		}
	}
}

// IdentityFrom returns the identity injected by Auth, or the zero Identity
// when the request was not authenticated.
func IdentityFrom(c echo.Context) ports.Identity {
	id, _ := c.Get(identityKey).(ports.Identity)
	return id
}
