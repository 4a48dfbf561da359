package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"court_transfer_app_go/db"
	"court_transfer_app_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory database with foreign keys on and
// the fixed statuses and permissions seeded
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:mem_%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	testDB, err := db.Open(sqlite.Open(dsn), logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(models.All()...))
	require.NoError(t, SeedReferenceData(testDB))

	t.Cleanup(func() {
		if sqlDB, err := testDB.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return testDB
}

var nameSeq atomic.Int64

func createCourthouse(t *testing.T, testDB *gorm.DB) models.Courthouse {
	t.Helper()
	c := models.Courthouse{Name: fmt.Sprintf("Courthouse %d", nameSeq.Add(1))}
	require.NoError(t, testDB.Create(&c).Error)
	return c
}

func createRequestType(t *testing.T, testDB *gorm.DB) models.TransferRequestType {
	t.Helper()
	rt := models.TransferRequestType{Name: fmt.Sprintf("Type %d", nameSeq.Add(1))}
	require.NoError(t, testDB.Create(&rt).Error)
	return rt
}

// createUser inserts a user with password "password1" and the given permissions
func createUser(t *testing.T, testDB *gorm.DB, registrationNumber int, permissions ...string) *models.User {
	t.Helper()
	courthouse := createCourthouse(t, testDB)
	title := models.Title{Name: fmt.Sprintf("Title %d", nameSeq.Add(1))}
	require.NoError(t, testDB.Create(&title).Error)

	hash, err := HashPassword("password1")
	require.NoError(t, err)

	user := &models.User{
		RegistrationNumber: registrationNumber,
		NationalID:         "12345678901",
		Name:               "Test",
		Surname:            fmt.Sprintf("User%d", registrationNumber),
		Email:              fmt.Sprintf("user%d@example.com", registrationNumber),
		TitleID:            title.ID,
		ActiveCourthouseID: courthouse.ID,
		PasswordHash:       hash,
	}
	require.NoError(t, testDB.Create(user).Error)

	for _, name := range permissions {
		var permission models.Permission
		require.NoError(t, testDB.Where(models.Permission{Name: name}).FirstOrCreate(&permission).Error)
		require.NoError(t, testDB.Create(&models.UserPermissionClaim{UserID: user.ID, PermissionID: permission.ID}).Error)
	}
	return user
}
