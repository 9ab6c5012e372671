package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shiksha/core/navigation"
	"github.com/trezcool/shiksha/core/user"
)

// sessionTokenMiddleware rejects tokens whose session has since logged out, ended or changed account.
// Tokens not bound to a session are let through.
func sessionTokenMiddleware(svc *navigation.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.SessionID == "" {
				return next(ctx)
			}

			st, err := svc.Get(ctx.Request().Context(), claims.SessionID)
			switch {
			case errors.Cause(err) == navigation.ErrSessionNotFound:
				return errSessionLoggedOut
			case err != nil:
				return errors.Wrap(err, "getting token session")
			case !st.Session.IsAuthenticated || st.Session.UserID != claims.Subject:
				return errSessionLoggedOut
			}
			return next(ctx)
		}
	}
}

// notifierMiddleware only lets teachers and admins through.
func notifierMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if !usr.IsActive {
				return errAccountDeactivated
			}
			if usr.CanNotify() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
