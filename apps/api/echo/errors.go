package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/shiksha/core"
	"github.com/trezcool/shiksha/core/appstate"
	"github.com/trezcool/shiksha/core/navigation"
	"github.com/trezcool/shiksha/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errRoleMismatch         = echo.NewHTTPError(http.StatusBadRequest, "account does not match the selected role")
	errSessionLoggedOut     = echo.NewHTTPError(http.StatusUnauthorized, "session logged out")
	errLoginCommand         = echo.NewHTTPError(http.StatusBadRequest, "login-success is only issued by the login endpoint")
)

// domainErrorCodes maps the domain sentinel errors to their HTTP status.
var domainErrorCodes = map[error]int{
	navigation.ErrSessionNotFound:    http.StatusNotFound,
	user.ErrNotFound:                 http.StatusNotFound,
	appstate.ErrNotificationNotFound: http.StatusNotFound,

	navigation.ErrNoRole:            http.StatusBadRequest,
	navigation.ErrUnknownScreen:     http.StatusBadRequest,
	navigation.ErrUnknownRole:       http.StatusBadRequest,
	navigation.ErrUnknownCommand:    http.StatusBadRequest,
	appstate.ErrUnknownLanguage:     http.StatusBadRequest,
	appstate.ErrUnknownNotification: http.StatusBadRequest,
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		if c, ok := domainErrorCodes[cause]; ok {
			code = c
			message = cause.Error()
		} else {
			switch origErr := cause.(type) {
			case *echo.HTTPError:
				if origErr == middleware.ErrJWTMissing {
					code = http.StatusUnauthorized
					message = origErr.Message
					break
				}
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				message = origErr.Message
			case validator.ValidationErrors:
				code = http.StatusBadRequest
				message = core.TranslateErrors(origErr, translator)
			case *core.ValidationError:
				if len(origErr.Fields) > 0 {
					message = origErr.FieldMap()
				} else {
					message = origErr.Error()
				}
				code = http.StatusBadRequest
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				args := []interface{}{errors.Wrap(err, msg)}
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					args = append(args, user.User{ID: claims.Subject, Username: claims.Username, Email: claims.Email})
				}
				if id := ctx.Param("id"); id != "" {
					args = append(args, map[string]interface{}{"session_id": id})
				}
				logger.Error(msg, args...)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
