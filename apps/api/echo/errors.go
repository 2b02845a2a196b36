package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/elimuhq/elimu/core"
)

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errInvalidCredentials = echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound       = echo.NewHTTPError(http.StatusNotFound, "not found")
	errSelfDelete         = echo.NewHTTPError(http.StatusBadRequest, "cannot delete own account")
)

// ErrorResponse is the envelope every API error is serialized into.
type ErrorResponse struct {
	Error interface{} `json:"error"`
}

// SuccessResponse is the envelope for operations with no natural payload.
type SuccessResponse struct {
	Success string `json:"success"`
}

// newAppHTTPErrorHandler converts errors bubbling out of handlers into JSON
// responses. Unknown errors are reported and, when marked as shutdown errors,
// trigger a graceful stop of the server.
func newAppHTTPErrorHandler(e *echo.Echo, logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code    int
			message interface{}
		)

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				// absent credentials are an authentication failure, not a
				// malformed request
				code, message = errUnauthorized.Code, errUnauthorized.Message
				break
			}
			if origErr.Internal != nil {
				// only surface the internal error when it is itself an HTTP
				// error; library failures (JWT parsing, Bind) stay opaque
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message

		case validator.ValidationErrors:
			code = http.StatusBadRequest
			fields := make(map[string]string, len(origErr))
			for _, fieldErr := range origErr {
				fields[fieldErr.Field()] = fieldErr.Translate(translator)
			}
			message = fields

		case *core.ValidationError:
			code = http.StatusBadRequest
			if len(origErr.Fields) > 0 {
				fields := make(map[string]string, len(origErr.Fields))
				for _, fieldErr := range origErr.Fields {
					fields[fieldErr.Field] = fieldErr.Error
				}
				message = fields
			} else {
				message = origErr.Error()
			}

		default:
			if core.IsShutdown(origErr) {
				defer signalShutdown()
			}
			logArgs := []interface{}{err}
			if ident, identErr := getContextIdentity(ctx); identErr == nil {
				logArgs = append(logArgs, ident)
			}
			logger.Error(err.Error(), logArgs...)
			code = http.StatusInternalServerError
			message = http.StatusText(code)
			if e.Debug {
				message = err.Error()
			}
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, ErrorResponse{Error: message})
		}
		if err != nil {
			logger.Error("sending error response", err)
		}
	}
}
