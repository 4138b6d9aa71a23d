package handlers

import (
	"net/http"
	"strconv"

	"case_docket_app_go/models"
	"case_docket_app_go/services"

	"github.com/labstack/echo/v4"
)

// AuditLogs returns audit entries as JSON, newest first. With resource_type
// and resource_id it returns the history of one resource; otherwise the
// latest entries up to limit.
func (a *App) AuditLogs(c echo.Context) error {
	limit := services.DefaultAuditLogLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	tx := a.DB.WithContext(c.Request().Context())
	var (
		logs []models.AuditLog
		err  error
	)
	if resourceID := c.QueryParam("resource_id"); resourceID != "" {
		logs, err = services.GetResourceAuditHistory(tx, c.QueryParam("resource_type"), resourceID)
	} else {
		logs, err = services.GetRecentAuditLogs(tx, limit)
	}
	if err != nil {
		return a.workflowError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

// SecurityAlerts returns the failed-login alerts raised since startup
func (a *App) SecurityAlerts(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Monitor.RecentAlerts())
}
