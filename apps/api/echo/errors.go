package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolrecords/core"
	"github.com/trezcool/schoolrecords/core/grade"
	"github.com/trezcool/schoolrecords/core/professor"
	"github.com/trezcool/schoolrecords/core/student"
	"github.com/trezcool/schoolrecords/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errJWTMissing           = echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed jwt")
	errJWTInvalid           = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired jwt")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// notFoundErrs are the repository errors answered with a 404.
var notFoundErrs = []error{user.ErrNotFound, student.ErrNotFound, professor.ErrNotFound, grade.ErrNotFound}

// httpStatusOf tells the status code newAppHTTPErrorHandler answers err with.
func httpStatusOf(err error) int {
	code, _, _ := resolveError(err, nil)
	return code
}

// resolveError maps err to a status code and a response message. unexpected reports
// server errors, which must be logged.
func resolveError(err error, translator ut.Translator) (code int, message interface{}, unexpected bool) {
	switch origErr := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if origErr.Internal != nil {
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
		}
		return origErr.Code, origErr.Message, false
	case *echo.BindingError:
		return origErr.Code, origErr.Message, false
	case validator.ValidationErrors:
		if translator == nil {
			return http.StatusBadRequest, nil, false
		}
		return http.StatusBadRequest, core.TranslateErrors(origErr, translator), false
	case *core.ValidationError:
		if origErr.Fields != nil {
			fldErrs := make(map[string]string, len(origErr.Fields))
			for _, fErr := range origErr.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			return http.StatusBadRequest, fldErrs, false
		}
		return http.StatusBadRequest, origErr.Error(), false
	}

	cause := errors.Cause(err)
	for _, nf := range notFoundErrs {
		if cause == nf {
			return http.StatusNotFound, cause.Error(), false
		}
	}

	// any other error is a server error
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), true
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(
	logger core.Logger,
	translator ut.Translator,
	debug bool,
	signalShutdown func(),
) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, message, unexpected := resolveError(err, translator)
		if unexpected {
			msg := http.StatusText(code)
			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.UserID()
				usr.Username = claims.Username
				usr.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if debug && unexpected {
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
				logger.Error("sending error response", errors.Wrap(err, "newAppHTTPErrorHandler"))
			}
		}
	}
}
