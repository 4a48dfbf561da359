package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"court_transfer_app_go/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func auditRows(t *testing.T, testDB *gorm.DB) []models.LogEntry {
	var entries []models.LogEntry
	require.NoError(t, testDB.Order("id").Find(&entries).Error)
	return entries
}

func TestAudited(t *testing.T) {
	e := echo.New()

	t.Run("Completed", func(t *testing.T) {
		testDB := setupTestDB(t)
		user := createUser(t, testDB, 3001)

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.1.2.3:5555"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyUser, user)

		handler := Audited("TransferRequest", "Create")(func(c echo.Context) error {
			return c.NoContent(http.StatusCreated)
		})
		assert.NoError(t, handler(c))

		entries := auditRows(t, testDB)
		require.Len(t, entries, 2)
		assert.Equal(t, "Action started", entries[0].Message)
		assert.Equal(t, "Action successfully completed", entries[1].Message)
		for _, entry := range entries {
			assert.Equal(t, models.LogLevelInfo, entry.Level)
			assert.Equal(t, "3001", entry.RegistrationNumber)
			assert.Equal(t, "TransferRequest", entry.ControllerName)
			assert.Equal(t, "Create", entry.ActionName)
			assert.Equal(t, "10.1.2.3", entry.IPAddress)
			assert.Nil(t, entry.Exception)
		}
	})

	t.Run("Rejected", func(t *testing.T) {
		testDB := setupTestDB(t)
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())

		handler := Audited("Auth", "Login")(func(c echo.Context) error {
			c.Set(ContextKeyAuditActor, "4242")
			return echo.NewHTTPError(http.StatusUnauthorized, "registration number or password incorrect")
		})
		err := handler(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)

		entries := auditRows(t, testDB)
		require.Len(t, entries, 2)
		assert.Equal(t, models.AnonymousActor, entries[0].RegistrationNumber)
		assert.Equal(t, "4242", entries[1].RegistrationNumber)
		assert.Equal(t, models.LogLevelInfo, entries[1].Level)
		assert.Contains(t, entries[1].Message, "registration number or password incorrect")
	})

	t.Run("FailedHidesDetail", func(t *testing.T) {
		testDB := setupTestDB(t)
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())

		handler := Audited("TransferRequest", "Decide")(func(c echo.Context) error {
			return errors.New("database is locked")
		})
		err := handler(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, he.Code)
		assert.NotContains(t, he.Message, "locked")

		entries := auditRows(t, testDB)
		require.Len(t, entries, 2)
		assert.Equal(t, models.LogLevelError, entries[1].Level)
		assert.Equal(t, "There was an error during the action", entries[1].Message)
		require.NotNil(t, entries[1].Exception)
		assert.Equal(t, "database is locked", *entries[1].Exception)
	})

	t.Run("Panic", func(t *testing.T) {
		testDB := setupTestDB(t)
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())

		handler := Audited("TransferRequest", "Cancel")(func(c echo.Context) error {
			panic("boom")
		})
		err := handler(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, he.Code)

		entries := auditRows(t, testDB)
		require.Len(t, entries, 2)
		assert.Equal(t, models.LogLevelError, entries[1].Level)
		require.NotNil(t, entries[1].Exception)
		assert.Contains(t, *entries[1].Exception, "panic: boom")
	})
}

func TestAuditIP(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[::1]:8080"
	c := e.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, "Localhost", AuditIP(c))
}
