package api

import (
	"strings"

	"YiJinJing/internal/services/auth"
	xhttp "YiJinJing/pkg/http"

	"github.com/labstack/echo/v4"
)

const identityKey = "identity"

// RequireAuth accepts a bearer token, or ?token= for clients that cannot set
// headers (browser WebSocket), and stores the identity on the context.
func RequireAuth(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if tok == "" {
				tok = c.QueryParam("token")
			}
			if tok == "" {
				return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError("missing token"))
			}
			id, err := svc.ParseToken(tok)
			if err != nil {
				return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError(err.Error()))
			}
			c.Set(identityKey, id)
			return next(c)
		}
	}
}

func bearerToken(h string) string {
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

// identity returns the authenticated user. Only valid behind RequireAuth.
func identity(c echo.Context) *auth.Identity {
	id, _ := c.Get(identityKey).(*auth.Identity)
	return id
}
