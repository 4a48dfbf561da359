package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"court_transfer_app_go/config"
	"court_transfer_app_go/db"
	"court_transfer_app_go/middleware"
	"court_transfer_app_go/models"
	"court_transfer_app_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Unique shared memory name isolates tests while allowing the async notifier to read
	dsn := fmt.Sprintf("file:mem_%s?mode=memory&cache=shared&_foreign_keys=on&_busy_timeout=5000", uuid.NewString())
	testDB, err := db.Open(sqlite.Open(dsn), logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(models.All()...))
	require.NoError(t, services.SeedReferenceData(testDB))

	// Set globals used by handlers and middleware
	db.DB = testDB
	services.Storage = services.NewLocalStorage(t.TempDir())
	services.Monitor = services.NewSecurityEventMonitor()

	t.Cleanup(func() {
		if sqlDB, err := testDB.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return testDB
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:       "test",
		JWTSecret:         "handler-test-secret-with-enough-length",
		JWTIssuer:         "court-transfer-api",
		JWTAudience:       "court-transfer-console",
		JWTTTL:            time.Hour,
		Location:          time.UTC,
		DailyRequestLimit: 3,
		MaxUploadSize:     1024 * 1024,
		EmailTestMode:     true,
		AppURL:            "http://localhost:5173",
	}
}

// newTestServer mounts the routes exercised by the handler tests with the
// same middleware chain the server uses
func newTestServer(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	admin := models.PermissionAdmin
	api := e.Group("/api")
	api.POST("/auth/login", LoginHandler, middleware.Audited("Auth", "Login"))

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(services.NewTokenIssuer(cfg)))
	protected.GET("/auth/me", GetCurrentUserHandler)
	protected.POST("/courthouses", CreateCourthouseHandler,
		middleware.Audited("Courthouse", "Create"), middleware.RequirePermission(admin, models.PermissionCourthouseCreate))

	reviewers := middleware.RequirePermission(admin, models.PermissionTransferRequestGetAllUsers)
	transfers := protected.Group("/transfer-requests")
	transfers.POST("", CreateTransferRequestHandler, middleware.Audited("TransferRequest", "Create"))
	transfers.GET("/mine", GetMyTransferRequestsHandler, middleware.Audited("TransferRequest", "Mine"))
	transfers.GET("/admin", GetTransferRequestsForReviewHandler, middleware.Audited("TransferRequest", "GetAllUsers"), reviewers)
	transfers.GET("/export", ExportTransferRequestsHandler, middleware.Audited("TransferRequest", "Export"), reviewers)
	transfers.GET("/:id", GetTransferRequestHandler, middleware.Audited("TransferRequest", "Get"))
	transfers.GET("/:id/sources/:sourceId", DownloadTransferRequestSourceHandler, middleware.Audited("TransferRequest", "GetSource"))
	transfers.DELETE("/:id", CancelTransferRequestHandler, middleware.Audited("TransferRequest", "Cancel"))
	transfers.PUT("/:id", DecideTransferRequestHandler,
		middleware.Audited("TransferRequest", "UpdateApproveStatus"), middleware.RequirePermission(admin, models.PermissionTransferRequestUpdateApproveStat))

	logs := protected.Group("/log-entries")
	logs.Use(middleware.RequirePermission(admin, models.PermissionLogEntryGetAll))
	logs.GET("", GetLogEntriesHandler)
	logs.GET("/export", ExportLogEntriesHandler, middleware.Audited("LogEntry", "Export"))
	return e
}

// createUser inserts a user with password "password1" and the given permissions
func createUser(t *testing.T, testDB *gorm.DB, registrationNumber int, permissions ...string) *models.User {
	t.Helper()
	courthouse := createCourthouse(t, testDB, fmt.Sprintf("Home Courthouse %d", registrationNumber))
	title := models.Title{Name: fmt.Sprintf("Title %d", registrationNumber)}
	require.NoError(t, testDB.Create(&title).Error)

	user, err := services.RegisterUser(testDB, services.RegisterUserInput{
		RegistrationNumber: registrationNumber,
		NationalID:         "12345678901",
		Name:               "Test",
		Surname:            fmt.Sprintf("User%d", registrationNumber),
		Email:              fmt.Sprintf("user%d@example.com", registrationNumber),
		TitleID:            title.ID,
		ActiveCourthouseID: courthouse.ID,
		Password:           "password1",
	})
	require.NoError(t, err)

	for _, name := range permissions {
		var permission models.Permission
		require.NoError(t, testDB.Where("name = ?", name).First(&permission).Error)
		_, err := services.GrantPermission(testDB, user.ID, permission.ID)
		require.NoError(t, err)
	}
	return user
}

func createCourthouse(t *testing.T, testDB *gorm.DB, name string) models.Courthouse {
	t.Helper()
	courthouse := models.Courthouse{Name: name}
	require.NoError(t, testDB.Create(&courthouse).Error)
	return courthouse
}

func createRequestType(t *testing.T, testDB *gorm.DB) models.TransferRequestType {
	t.Helper()
	requestType := models.TransferRequestType{Name: "Family " + uuid.NewString()[:8]}
	require.NoError(t, testDB.Create(&requestType).Error)
	return requestType
}

func doJSON(e *echo.Echo, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, e *echo.Echo, registrationNumber int) string {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"registration_number": registrationNumber,
		"password":            "password1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

type uploadFile struct {
	name    string
	content []byte
}

func postTransferRequest(e *echo.Echo, token string, fields map[string][]string, files ...uploadFile) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, values := range fields {
		for _, v := range values {
			writer.WriteField(name, v)
		}
	}
	for _, f := range files {
		part, _ := writer.CreateFormFile("sources", f.name)
		part.Write(f.content)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/transfer-requests", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
