package middleware

import (
	"case_docket_app_go/services"

	"github.com/labstack/echo/v4"
)

// AuditContext is middleware that attaches the acting user to the request
// context so workflow services can record it in the audit log
func AuditContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actx := services.AuditContext{
				IPAddress: c.RealIP(),
				UserAgent: c.Request().UserAgent(),
			}

			if user := GetCurrentUser(c); user != nil {
				actx.UserID = user.ID
				actx.Username = user.Username
			}

			req := c.Request()
			c.SetRequest(req.WithContext(services.WithAuditContext(req.Context(), actx)))
			return next(c)
		}
	}
}

// GetAuditContext retrieves the audit context from the request
func GetAuditContext(c echo.Context) services.AuditContext {
	return services.AuditContextFrom(c.Request().Context())
}
