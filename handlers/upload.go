package handlers

import (
	"net/http"

	"case_docket_app_go/middleware"
	"case_docket_app_go/models"
	"case_docket_app_go/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// DownloadUpload streams a stored case document to a signed-in user
func (a *App) DownloadUpload(c echo.Context) error {
	name := c.Param("filename")
	ctx := c.Request().Context()

	reader, contentType, err := a.Files.Retrieve(ctx, name)
	if err != nil {
		return a.workflowError(c, err)
	}
	defer reader.Close()

	actx := middleware.GetAuditContext(c)
	if err := services.LogAuditEvent(a.DB.WithContext(ctx), actx, models.AuditActionDownload, "File", name, name, "Document downloaded", nil, nil); err != nil {
		a.Log.Warn("failed to record download", zap.String("file", name), zap.Error(err))
	}

	c.Response().Header().Set("Content-Disposition", "inline; filename=\""+name+"\"")
	return c.Stream(http.StatusOK, contentType, reader)
}
