package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"case_docket_app_go/config"
	"case_docket_app_go/middleware"
	"case_docket_app_go/models"
	"case_docket_app_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testApp struct {
	*App
	e         *echo.Echo
	uploadDir string
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_foreign_keys=on&_busy_timeout=5000"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, testDB.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Case{},
		&models.Proceeding{},
		&models.AuditLog{},
	))

	t.Cleanup(func() {
		if sqlDB, err := testDB.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return testDB
}

// testCSRFToken is sent as both the CSRF cookie and header on unsafe requests
const testCSRFToken = "test-csrf-token"

// newTestApp builds an app behind the same guards the server installs.
// opts may adjust the config before the app is wired.
func newTestApp(t *testing.T, opts ...func(*config.Config)) *testApp {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Environment:    "test",
		UploadDir:      dir,
		MaxUploadBytes: config.DefaultMaxUploadBytes,
		EmailTestMode:  true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	app := NewApp(cfg, setupTestDB(t), services.NewLocalStorage(dir), zap.NewNop())
	e := echo.New()
	app.Mount(e)
	return &testApp{App: app, e: e, uploadDir: dir}
}

// withCSRF attaches a matching CSRF cookie and header
func withCSRF(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: testCSRFToken})
	req.Header.Set(echo.HeaderXCSRFToken, testCSRFToken)
	return req
}

// do serves req through the full router
func (ta *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ta.e.ServeHTTP(rec, req)
	return rec
}

// login registers a user and returns its session cookie
func (ta *testApp) login(t *testing.T) *http.Cookie {
	t.Helper()
	username := "user_" + uuid.New().String()[:8]
	_, err := services.Register(t.Context(), ta.DB, username, "secret123")
	require.NoError(t, err)

	rec := ta.do(formRequest(http.MethodPost, "/login", url.Values{
		"username": {username},
		"password": {"secret123"},
	}, nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			return cookie
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

// sessionCookie registers a user and opens a session without the login route
func (ta *testApp) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	user, err := services.Register(t.Context(), ta.DB, "user_"+uuid.New().String()[:8], "secret123")
	require.NoError(t, err)
	session, err := services.CreateSession(ta.DB, user.ID, "127.0.0.1", "test")
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookieName, Value: session.Token}
}

func formRequest(method, path string, form url.Values, cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if method != http.MethodGet {
		withCSRF(req)
	}
	return req
}

func getRequest(path string, cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func jsonGetRequest(path string, cookie *http.Cookie) *http.Request {
	req := getRequest(path, cookie)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	return req
}

type upload struct {
	field, filename string
	content         []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, uploads []upload, cookie *http.Cookie) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, u := range uploads {
		part, err := writer.CreateFormFile(u.field, u.filename)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(u.content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return withCSRF(req)
}

func createTestCase(t *testing.T, ta *testApp, clientName string) *models.Case {
	t.Helper()
	kase, err := ta.Cases.CreateCase(t.Context(), services.CaseInput{ClientName: clientName, CaseStatus: "Open"})
	require.NoError(t, err)
	return kase
}
