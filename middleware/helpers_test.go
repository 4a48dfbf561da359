package middleware

import (
	"fmt"
	"testing"
	"time"

	"court_transfer_app_go/config"
	"court_transfer_app_go/db"
	"court_transfer_app_go/models"
	"court_transfer_app_go/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:mem_%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	testDB, err := db.Open(sqlite.Open(dsn), logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(models.All()...))
	require.NoError(t, services.SeedReferenceData(testDB))

	// Set the global DB variable used by middleware
	db.DB = testDB
	return testDB
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:   "middleware-test-secret-with-enough-length",
		JWTIssuer:   "court-transfer-api",
		JWTAudience: "court-transfer-console",
		JWTTTL:      time.Hour,
	}
}

func createUser(t *testing.T, testDB *gorm.DB, registrationNumber int, permissions ...string) *models.User {
	courthouse := models.Courthouse{Name: fmt.Sprintf("Courthouse %d", registrationNumber)}
	require.NoError(t, testDB.Create(&courthouse).Error)
	title := models.Title{Name: fmt.Sprintf("Title %d", registrationNumber)}
	require.NoError(t, testDB.Create(&title).Error)

	user := &models.User{
		RegistrationNumber: registrationNumber,
		NationalID:         "12345678901",
		Name:               "Test",
		Surname:            "User",
		Email:              fmt.Sprintf("user%d@example.com", registrationNumber),
		TitleID:            title.ID,
		ActiveCourthouseID: courthouse.ID,
		PasswordHash:       "x",
	}
	require.NoError(t, testDB.Create(user).Error)

	for _, name := range permissions {
		var permission models.Permission
		require.NoError(t, testDB.Where("name = ?", name).First(&permission).Error)
		require.NoError(t, testDB.Create(&models.UserPermissionClaim{UserID: user.ID, PermissionID: permission.ID}).Error)
	}
	return user
}
