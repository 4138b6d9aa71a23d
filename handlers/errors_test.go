package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"case_docket_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowError(t *testing.T) {
	ta := newTestApp(t)

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", services.ErrNotFound, http.StatusNotFound},
		{"file not found", services.ErrFileNotFound, http.StatusNotFound},
		{"too large", services.ErrRequestTooLarge, http.StatusRequestEntityTooLarge},
		{"max bytes", fmt.Errorf("read body: %w", &http.MaxBytesError{Limit: 10}), http.StatusRequestEntityTooLarge},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"validation", &services.ValidationError{Field: "x", Message: "bad x"}, http.StatusUnprocessableEntity},
		{"storage", fmt.Errorf("%w: disk full", services.ErrStorage), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ta.e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			err := ta.workflowError(c, tt.err)

			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.code, he.Code)
		})
	}
}

func TestHTTPErrorHandlerHidesInternals(t *testing.T) {
	ta := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := ta.e.NewContext(req, rec)

	ta.HTTPErrorHandler(errors.New("sql: connection refused"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Contains(t, rec.Body.String(), msgInternal)
}
