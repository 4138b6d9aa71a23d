package handlers

import (
	"errors"
	"net/http"

	"case_docket_app_go/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	msgNotFound   = "Not found"
	msgTooLarge   = "Uploaded files exceed the maximum allowed size"
	msgBadRequest = "Malformed request"
	msgInternal   = "Something went wrong. Please try again."
)

// isTooLarge reports whether err comes from a body or upload size cap
func isTooLarge(err error) bool {
	if errors.Is(err, services.ErrRequestTooLarge) {
		return true
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return true
	}
	var he *echo.HTTPError
	return errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge
}

// workflowError maps a service error onto an HTTP error. Unknown errors are
// logged and hidden behind a generic message.
func (a *App) workflowError(c echo.Context, err error) error {
	var ve *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrFileNotFound):
		return echo.NewHTTPError(http.StatusNotFound, msgNotFound)
	case isTooLarge(err):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, msgTooLarge)
	case errors.Is(err, services.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, ve.Message)
	default:
		a.Log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
	}
}

// formError maps the error of parsing a request body
func (a *App) formError(c echo.Context, err error) error {
	if isTooLarge(err) {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, msgTooLarge)
	}
	a.Log.Warn("malformed form", zap.String("path", c.Path()), zap.Error(err))
	return echo.NewHTTPError(http.StatusBadRequest, msgBadRequest)
}

// validationJSON answers a JSON client with the field that failed
func validationJSON(c echo.Context, ve *services.ValidationError) error {
	return c.JSON(http.StatusUnprocessableEntity, map[string]string{
		"error": ve.Message,
		"field": ve.Field,
	})
}

// HTTPErrorHandler renders errors as JSON for API clients and as plain text
// otherwise. Internal error details never reach the client.
func (a *App) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := msgInternal
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	} else {
		a.Log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
	}

	var writeErr error
	switch {
	case c.Request().Method == http.MethodHead:
		writeErr = c.NoContent(code)
	case wantsJSON(c):
		writeErr = c.JSON(code, map[string]string{"error": message})
	default:
		writeErr = c.String(code, message)
	}
	if writeErr != nil {
		a.Log.Warn("failed to write error response", zap.Error(writeErr))
	}
}
