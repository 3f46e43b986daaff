package rest

import (
	"strings"

	"github.com/labstack/echo/v4"

	"ArticleGate/internal/domain"
	"ArticleGate/internal/ports"
)

const principalKey = "articlegate.principal"

// authenticate attaches the caller's principal. Requests without a bearer
// token continue as anonymous; an invalid token is rejected outright.
func authenticate(verifier ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(principalKey, domain.Anonymous)

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return domain.Permissionf("malformed authorization header")
			}

			principal, err := verifier.Authenticate(c.Request().Context(), strings.TrimSpace(token))
			if err != nil {
				return err
			}
			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// requireAuth rejects anonymous callers with 401.
func requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !principalFrom(c).Authenticated() {
			return domain.Permissionf("authentication required")
		}
		return next(c)
	}
}

// requireAdmin rejects non-admin callers with 403 (401 when anonymous).
func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := principalFrom(c)
		if !p.Authenticated() {
			return domain.Permissionf("authentication required")
		}
		if !p.Admin {
			return domain.Permissionf("admin privileges required")
		}
		return next(c)
	}
}

func principalFrom(c echo.Context) domain.Principal {
	if p, ok := c.Get(principalKey).(domain.Principal); ok {
		return p
	}
	return domain.Anonymous
}
