package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// CSRFContextKey is where echo stores the token for the current request
const CSRFContextKey = "csrf"

// CSRF protects state-changing form posts. Forms carry the token in the
// "_csrf" field, scripts may send it in X-CSRF-Token.
func CSRF(secureCookies bool, skipper echomiddleware.Skipper) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = echomiddleware.DefaultSkipper
	}
	return echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		Skipper:        skipper,
		TokenLookup:    "form:_csrf,header:X-CSRF-Token",
		ContextKey:     CSRFContextKey,
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   secureCookies,
		CookieSameSite: http.SameSiteLaxMode,
	})
}

// GetCSRFToken retrieves the CSRF token from the Echo context
// This token should be included in forms and AJAX requests
func GetCSRFToken(c echo.Context) string {
	token := c.Get(CSRFContextKey)
	if token == nil {
		return ""
	}
	if tokenStr, ok := token.(string); ok {
		return tokenStr
	}
	return ""
}
