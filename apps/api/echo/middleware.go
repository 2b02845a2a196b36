package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// adminMiddleware admits privileged identities only. The role tag is matched
// case-insensitively so records tagged "Admin" by older tooling still pass.
func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ident, err := getContextIdentity(ctx)
			if err != nil {
				return errors.Wrap(err, "getting authenticated identity")
			}
			if !ident.IsAdmin() {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// requireRoleMiddleware admits identities whose role matches exactly,
// case-sensitively. Rejections echo both roles so clients can see what the
// gate compared.
func requireRoleMiddleware(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ident, err := getContextIdentity(ctx)
			if err != nil {
				return errors.Wrap(err, "getting authenticated identity")
			}
			if ident.Role != role {
				return echo.NewHTTPError(
					http.StatusForbidden,
					fmt.Sprintf("requires role %q, have role %q", role, ident.Role),
				)
			}
			return next(ctx)
		}
	}
}
