package policy

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bibliodesk/library-service/internal/errs"
	"github.com/bibliodesk/library-service/pkg/auth"
)

// Middleware evaluates the policy against every request before its
// handler runs. The apiPrefix (e.g. "/api/v1") is stripped so rules are
// written against logical resource paths.
func Middleware(p *Policy, apiPrefix string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := strings.TrimPrefix(c.Request().URL.Path, apiPrefix)
			if path == "" {
				path = "/"
			}
			id := auth.FromContext(c.Request().Context())

			if err := p.Evaluate(c.Request().Method, path, id); err != nil {
				if err == errs.ErrUnauthorized {
					return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
				}
				return echo.NewHTTPError(http.StatusForbidden, "access denied")
			}
			return next(c)
		}
	}
}
