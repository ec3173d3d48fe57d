package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"strings" // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/job-portal-manager/internal/apperr"
	"github.com/iliyamo/job-portal-manager/internal/utils"
)

// TokenVerifier validates a raw bearer token and returns its claims.
// service.AuthService satisfies it.
type TokenVerifier interface {
	VerifyToken(raw string) (*utils.TokenClaims, error)
}

var errTokenRequired = apperr.Auth("Authorization token required")

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's claims into the request context. Handlers read the
// caller with UserID(c). Failures are returned as apperr.ErrAuth errors and
// rendered by the central error handler.
func JWTAuth(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header is "Bearer " followed by the token.
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := bearerToken(auth)
			if !ok {
				return errTokenRequired
			}

			claims, err := v.VerifyToken(raw)
			if err != nil {
				return err
			}

			c.Set(ctxUserID, claims.UserID)
			c.Set(ctxClaims, claims)
			return next(c)
		}
	}
}

// bearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, tok, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
