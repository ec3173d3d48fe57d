package middleware

// identity.go exposes the authenticated caller stored by JWTAuth.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/job-portal-manager/internal/utils"
)

const (
	ctxUserID = "user_id"
	ctxClaims = "claims"
)

// UserID returns the authenticated user's id. ok is false on routes not
// wrapped by JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok && id != 0
}

// Claims returns the verified token claims, or nil.
func Claims(c echo.Context) *utils.TokenClaims {
	cl, _ := c.Get(ctxClaims).(*utils.TokenClaims)
	return cl
}
