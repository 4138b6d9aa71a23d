package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"case_docket_app_go/config"
	"case_docket_app_go/middleware"
	"case_docket_app_go/services"
	"case_docket_app_go/templates/pages"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files
const multipartMemory = 8 << 20

// formOverhead leaves room for the text fields and multipart framing on top
// of the upload cap
const formOverhead = 1 << 20

// App carries everything a request handler needs. It replaces package level
// globals so tests can build as many independent instances as they like.
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	Files       *services.FileStore
	Cases       *services.CaseService
	Proceedings *services.ProceedingService
	Metrics     *middleware.Metrics
	Monitor     *services.LoginMonitor

	loginLimiter *middleware.RateLimiter
}

// NewApp wires the workflow services around the given database and storage
func NewApp(cfg *config.Config, db *gorm.DB, storage services.StorageProvider, log *zap.Logger) *App {
	files := services.NewFileStore(storage)
	notifier := services.NewNotifier(cfg, log)

	return &App{
		Config:       cfg,
		DB:           db,
		Log:          log,
		Files:        files,
		Cases:        services.NewCaseService(db, files, cfg.MaxUploadBytes, notifier, log),
		Proceedings:  services.NewProceedingService(db, log),
		Metrics:      middleware.NewMetrics(),
		Monitor:      services.NewLoginMonitor(log, notifier),
		loginLimiter: middleware.NewLoginRateLimiter(),
	}
}

// Mount installs the request guards every route sits behind and registers
// the routes. Request logging and panic recovery are left to the caller.
func (a *App) Mount(e *echo.Echo) {
	// bodies over the limit are refused before CSRF or any handler parses them
	e.Use(echomiddleware.BodyLimit(fmt.Sprintf("%dB", a.Config.MaxUploadBytes+formOverhead)))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.CSRF(a.Config.IsProduction(), nil))
	a.RegisterRoutes(e)
}

// RegisterRoutes binds every route to e
func (a *App) RegisterRoutes(e *echo.Echo) {
	e.HTTPErrorHandler = a.HTTPErrorHandler
	e.Use(a.Metrics.Middleware())

	e.GET("/metrics", a.Metrics.Handler())

	// Public routes
	e.GET("/login", a.LoginPage)
	e.POST("/login", a.Login, a.loginLimiter.Middleware())
	e.GET("/register", a.RegisterPage)
	e.POST("/register", a.Register, a.loginLimiter.Middleware())

	// Everything else needs a session
	protected := e.Group("")
	protected.Use(middleware.RequireAuth(a.DB, a.Config.IsProduction()))
	protected.Use(middleware.AuditContext())

	protected.POST("/logout", a.Logout)

	protected.GET("/", a.ListCases)
	protected.GET("/cases/export.xlsx", a.ExportCases)
	protected.GET("/cases/new", a.NewCaseForm)
	protected.POST("/cases/new", a.CreateCase)
	protected.GET("/cases/:id", a.ViewCase)
	protected.GET("/cases/:id/edit", a.EditCaseForm)
	protected.POST("/cases/:id/edit", a.UpdateCase)
	protected.POST("/cases/:id/delete", a.DeleteCase)
	protected.GET("/cases/:id/report.pdf", a.CaseReport)

	protected.GET("/cases/:id/proceedings/new", a.NewProceedingForm)
	protected.POST("/cases/:id/proceedings/new", a.AddProceeding)
	protected.GET("/proceedings/:id/edit", a.EditProceedingForm)
	protected.POST("/proceedings/:id/edit", a.UpdateProceeding)
	protected.POST("/proceedings/:id/delete", a.DeleteProceeding)

	protected.GET("/uploads/:filename", a.DownloadUpload)
	protected.GET("/audit-logs", a.AuditLogs)
	protected.GET("/security-alerts", a.SecurityAlerts)
}

// layout fills the shared page fields for the current request
func (a *App) layout(c echo.Context) pages.Layout {
	l := pages.Layout{CSRFToken: middleware.GetCSRFToken(c)}
	if user := middleware.GetCurrentUser(c); user != nil {
		l.CurrentUser = user.Username
	}
	return l
}

func render(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

// wantsJSON reports whether the client asked for a JSON response
func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// respond finishes a successful mutation: JSON clients get the payload,
// browsers are redirected.
func respond(c echo.Context, status int, payload interface{}, location string) error {
	if wantsJSON(c) {
		if payload == nil {
			return c.NoContent(http.StatusNoContent)
		}
		return c.JSON(status, payload)
	}
	return c.Redirect(http.StatusSeeOther, location)
}

// parseForm reads the request body once so later FormValue/FormFile calls
// cannot swallow a read error
func parseForm(c echo.Context) error {
	req := c.Request()
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return req.ParseMultipartForm(multipartMemory)
	}
	return req.ParseForm()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
