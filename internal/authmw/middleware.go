package authmw

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campushub/university_backend/internal/keys"
	"github.com/campushub/university_backend/internal/logging"
	"github.com/campushub/university_backend/internal/models"
	"github.com/campushub/university_backend/internal/token"
)

const contextKey = "authContext"

// AuthContext is the request-scoped identity derived from a valid access
// token. It is never persisted; it lives on the echo context and dies with
// the request.
type AuthContext struct {
	Subject     string
	Authorities map[string]struct{}
	Roles       []models.Role
}

func (a *AuthContext) HasAuthority(authority string) bool {
	_, ok := a.Authorities[authority]
	return ok
}

func (a *AuthContext) HasRole(role models.Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// FromContext returns the AuthContext attached by Middleware, if any.
func FromContext(c echo.Context) (*AuthContext, bool) {
	ac, ok := c.Get(contextKey).(*AuthContext)
	return ac, ok && ac != nil
}

// Middleware is the per-request authentication pipeline. A missing bearer
// token is not an error: the request continues anonymous and RequireRole
// decides whether that is acceptable. A failing token is logged and likewise
// degrades to anonymous instead of halting the chain, so public endpoints
// keep working behind the same middleware stack.
func Middleware(codec *token.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request())
			if !ok {
				return next(c)
			}

			claims, err := codec.Decode(raw, keys.PurposeAccess)
			if err != nil {
				logging.FromContext(c.Request().Context()).
					Warn("access token rejected", "reason", err.Error())
				return next(c)
			}

			authorities := make(map[string]struct{}, len(claims.Authorities))
			for _, a := range claims.Authorities {
				authorities[a] = struct{}{}
			}
			c.Set(contextKey, &AuthContext{
				Subject:     claims.Subject,
				Authorities: authorities,
				Roles:       claims.RoleSet(),
			})
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	t := strings.TrimSpace(header[len(prefix):])
	return t, t != ""
}

// RequireRole produces the actual 401/403. The pipeline above only
// establishes identity; this guard is what protected route groups mount.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ac, ok := FromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			for _, r := range roles {
				if ac.HasRole(r) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}
