package handlers

import (
	"errors"
	"net/http"

	"case_docket_app_go/middleware"
	"case_docket_app_go/models"
	"case_docket_app_go/services"
	"case_docket_app_go/templates/pages"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LoginPage renders the sign-in form
func (a *App) LoginPage(c echo.Context) error {
	data := &pages.LoginPage{Layout: a.layout(c)}
	if c.QueryParam("registered") == "1" {
		data.Notice = "Registration successful. Please sign in."
	}
	return render(c, http.StatusOK, pages.Login(data))
}

// Login authenticates the submitted credentials and opens a session
func (a *App) Login(c echo.Context) error {
	if err := parseForm(c); err != nil {
		return a.formError(c, err)
	}
	username := c.FormValue("username")
	password := c.FormValue("password")
	ctx := c.Request().Context()

	user, err := services.Authenticate(ctx, a.DB, username, password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			return a.workflowError(c, err)
		}
		a.Log.Info("failed login", zap.String("username", username), zap.String("ip", c.RealIP()))
		a.Monitor.TrackFailedLogin(c.RealIP())
		if wantsJSON(c) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		data := &pages.LoginPage{Layout: a.layout(c), Username: username}
		data.Error = "Invalid credentials"
		return render(c, http.StatusUnauthorized, pages.Login(data))
	}

	session, err := services.CreateSession(a.DB.WithContext(ctx), user.ID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return a.workflowError(c, err)
	}
	middleware.SetSessionCookie(c, session.Token, session.ExpiresAt, a.Config.IsProduction())

	actx := services.AuditContext{
		UserID:    user.ID,
		Username:  user.Username,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
	if err := services.LogAuditEvent(a.DB.WithContext(ctx), actx, models.AuditActionLogin, "User", user.ID, user.Username, "User logged in", nil, nil); err != nil {
		a.Log.Warn("failed to record login", zap.String("user_id", user.ID), zap.Error(err))
	}
	a.Log.Info("user logged in", zap.String("user_id", user.ID))

	return respond(c, http.StatusOK, user, "/")
}

// RegisterPage renders the account creation form
func (a *App) RegisterPage(c echo.Context) error {
	return render(c, http.StatusOK, pages.Register(&pages.RegisterPage{Layout: a.layout(c)}))
}

// Register creates an account and sends the user to the sign-in form
func (a *App) Register(c echo.Context) error {
	if err := parseForm(c); err != nil {
		return a.formError(c, err)
	}
	username := c.FormValue("username")
	password := c.FormValue("password")

	user, err := services.Register(c.Request().Context(), a.DB, username, password)
	a.Metrics.RecordWorkflow("register", resultLabel(err))
	if err != nil {
		var ve *services.ValidationError
		if !errors.As(err, &ve) {
			return a.workflowError(c, err)
		}
		if wantsJSON(c) {
			return validationJSON(c, ve)
		}
		data := &pages.RegisterPage{Layout: a.layout(c), Username: username}
		data.Error = ve.Message
		return render(c, http.StatusUnprocessableEntity, pages.Register(data))
	}

	a.Log.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return respond(c, http.StatusCreated, user, "/login?registered=1")
}

// Logout ends the current session
func (a *App) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	if session := middleware.GetCurrentSession(c); session != nil {
		if err := services.DeleteSession(a.DB.WithContext(ctx), session.Token); err != nil {
			a.Log.Warn("failed to delete session", zap.Error(err))
		}
	}
	if user := middleware.GetCurrentUser(c); user != nil {
		actx := middleware.GetAuditContext(c)
		if err := services.LogAuditEvent(a.DB.WithContext(ctx), actx, models.AuditActionLogout, "User", user.ID, user.Username, "User logged out", nil, nil); err != nil {
			a.Log.Warn("failed to record logout", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	middleware.ClearSessionCookie(c, a.Config.IsProduction())

	return respond(c, http.StatusOK, nil, "/login")
}
