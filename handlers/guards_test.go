package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"case_docket_app_go/config"
	"case_docket_app_go/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFGuardsMutations(t *testing.T) {
	ta := newTestApp(t)
	cookie := ta.sessionCookie(t)
	form := url.Values{"client_name": {"No Token"}, "case_status": {"Open"}}

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/cases/new", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		req.AddCookie(cookie)

		rec := ta.do(req)
		assert.Contains(t, []int{http.StatusBadRequest, http.StatusForbidden}, rec.Code)
	})

	t.Run("mismatched token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/cases/new", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		req.AddCookie(cookie)
		req.AddCookie(&http.Cookie{Name: "_csrf", Value: testCSRFToken})
		req.Header.Set(echo.HeaderXCSRFToken, "some-other-token")

		rec := ta.do(req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	var count int64
	ta.DB.Model(&models.Case{}).Count(&count)
	assert.Zero(t, count)
}

func TestFormsCarryCSRFToken(t *testing.T) {
	ta := newTestApp(t)

	rec := ta.do(getRequest("/login", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="_csrf"`)
}

func TestOversizedBodyRejectedBeforeParsing(t *testing.T) {
	ta := newTestApp(t, func(cfg *config.Config) {
		cfg.MaxUploadBytes = 1024
	})
	cookie := ta.sessionCookie(t)

	req := multipartRequest(t, "/cases/new",
		map[string]string{"client_name": "Too Big", "case_status": "Open"},
		[]upload{{field: "case_file", filename: "huge.pdf", content: bytes.Repeat([]byte("a"), 2<<20)}},
		cookie,
	)
	rec := ta.do(req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	// refused ahead of the CSRF middleware, which would refresh its cookie
	assert.Empty(t, rec.Header().Values("Set-Cookie"))

	var count int64
	ta.DB.Model(&models.Case{}).Count(&count)
	assert.Zero(t, count)

	entries, err := os.ReadDir(ta.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSecurityHeadersOnEveryResponse(t *testing.T) {
	ta := newTestApp(t)

	rec := ta.do(getRequest("/login", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "nonce-")
}
