package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/activity"
	"github.com/nickmarkin/AAA-Summarizer/core/department"
	"github.com/nickmarkin/AAA-Summarizer/core/faculty"
	"github.com/nickmarkin/AAA-Summarizer/core/review"
	"github.com/nickmarkin/AAA-Summarizer/core/survey"
)

var (
	// domain errors mapped to 404
	notFoundErrs = []error{
		faculty.ErrNotFound,
		activity.ErrNotFound,
		department.ErrNotFound,
		review.ErrNotFound,
		survey.ErrRecordNotFound,
		survey.ErrImportNotFound,
		survey.ErrCampaignNotFound,
		survey.ErrInvitationNotFound,
		survey.ErrResponseNotFound,
		survey.ErrEntryNotFound,
	}

	// domain errors mapped to 409
	conflictErrs = []error{
		survey.ErrAlreadySubmitted,
		survey.ErrNotSubmitted,
		survey.ErrCampaignClosed,
		review.ErrInvalidTransition,
	}
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how
// to handle our errors. signalShutdown is called in order to gracefully
// shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if c, ok := domainStatus(err); ok {
				code = c
				message = errors.Cause(err).Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
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

func domainStatus(err error) (int, bool) {
	for _, target := range notFoundErrs {
		if errors.Is(err, target) {
			return http.StatusNotFound, true
		}
	}
	for _, target := range conflictErrs {
		if errors.Is(err, target) {
			return http.StatusConflict, true
		}
	}
	return 0, false
}
