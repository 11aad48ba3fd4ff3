package authmw

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/tokens"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

type AccessVerifier interface {
	VerifyAccess(raw string) (*tokens.AccessClaims, error)
}

type BearerMiddleware struct {
	Tokens AccessVerifier
}

func NewBearerMiddleware(v AccessVerifier) *BearerMiddleware {
	return &BearerMiddleware{Tokens: v}
}

// RequireAuth rejects requests without a valid "Authorization: Bearer"
// access token and exposes the token's user to handlers.
func (m *BearerMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "auth")

		raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			l.Warn("auth_error", "status", http.StatusUnauthorized, "reason", "missing bearer token")
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := m.Tokens.VerifyAccess(raw)
		if err != nil {
			l.Warn("auth_error", "status", http.StatusUnauthorized, "reason", "invalid access token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		return next(c)
	}
}

func UserID(c echo.Context) string {
	id, _ := c.Get(ContextUserID).(string)
	return id
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
