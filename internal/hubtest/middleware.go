package hubtest

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by authenticate.
const (
	ctxEmail      = "email"
	ctxRole       = "role"
	ctxCredential = "credential"
)

// authenticate verifies the bearer credential and injects its claims.
func (h *Hub) authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return h.secret, nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			h.mu.Lock()
			_, revoked := h.revoked[parts[1]]
			h.mu.Unlock()
			if revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
			}

			c.Set(ctxEmail, claims["email"])
			c.Set(ctxRole, claims["role"])
			c.Set(ctxCredential, parts[1])

			return next(c)
		}
	}
}

// rejectInjected answers 401 while RejectNext has calls left to refuse.
func (h *Hub) rejectInjected(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h.mu.Lock()
		reject := h.rejectNext > 0
		if reject {
			h.rejectNext--
		}
		h.mu.Unlock()
		if reject {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		return next(c)
	}
}

// requireRole enforces role-based access control on top of authenticate.
func requireRole(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ctxRole).(string)
			if _, ok := allowed[role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
