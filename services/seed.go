package services

import (
	"fmt"
	"os"
	"strconv"

	"court_transfer_app_go/logging"
	"court_transfer_app_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedReferenceData inserts the fixed statuses and the well-known permission
// names. Existing rows are left untouched.
func SeedReferenceData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		statuses := make([]models.TransferRequestStatus, len(models.DefaultStatuses))
		copy(statuses, models.DefaultStatuses)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&statuses).Error; err != nil {
			return fmt.Errorf("failed to seed statuses: %w", err)
		}

		for _, name := range models.DefaultPermissions {
			permission := models.Permission{Name: name}
			if err := tx.Where(models.Permission{Name: name}).FirstOrCreate(&permission).Error; err != nil {
				return fmt.Errorf("failed to seed permission %s: %w", name, err)
			}
		}
		return nil
	})
}

// AdminSeed describes the bootstrap administrator
type AdminSeed struct {
	RegistrationNumber int
	NationalID         string
	Name               string
	Surname            string
	Email              string
	Password           string
	Courthouse         string
	Title              string
}

// SeedAdmin creates the administrator with every default permission. It is a
// no-op when the registration number is already taken.
func SeedAdmin(db *gorm.DB, seed AdminSeed) error {
	var count int64
	if err := db.Model(&models.User{}).Where("registration_number = ?", seed.RegistrationNumber).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logging.L().Info("admin user already exists, skipping seed", zap.Int("registration_number", seed.RegistrationNumber))
		return nil
	}

	if err := SeedReferenceData(db); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		courthouse := models.Courthouse{Name: seed.Courthouse}
		if err := tx.Where(models.Courthouse{Name: seed.Courthouse}).FirstOrCreate(&courthouse).Error; err != nil {
			return err
		}
		title := models.Title{Name: seed.Title}
		if err := tx.Where(models.Title{Name: seed.Title}).FirstOrCreate(&title).Error; err != nil {
			return err
		}

		user, err := RegisterUser(tx, RegisterUserInput{
			RegistrationNumber: seed.RegistrationNumber,
			NationalID:         seed.NationalID,
			Name:               seed.Name,
			Surname:            seed.Surname,
			Email:              seed.Email,
			Password:           seed.Password,
			TitleID:            title.ID,
			ActiveCourthouseID: courthouse.ID,
		})
		if err != nil {
			return err
		}

		var permissions []models.Permission
		if err := tx.Where("name IN ?", models.DefaultPermissions).Find(&permissions).Error; err != nil {
			return err
		}
		for _, permission := range permissions {
			claim := models.UserPermissionClaim{UserID: user.ID, PermissionID: permission.ID}
			if err := tx.Create(&claim).Error; err != nil {
				return err
			}
		}

		logging.L().Info("created admin user", zap.Int("registration_number", user.RegistrationNumber))
		return nil
	})
}

// SeedAdminFromEnv creates the administrator from ADMIN_* variables.
// Only runs if ADMIN_REGISTRATION_NUMBER and ADMIN_PASSWORD are set.
func SeedAdminFromEnv(db *gorm.DB) error {
	regNo := os.Getenv("ADMIN_REGISTRATION_NUMBER")
	password := os.Getenv("ADMIN_PASSWORD")
	if regNo == "" || password == "" {
		return nil
	}

	registrationNumber, err := strconv.Atoi(regNo)
	if err != nil {
		return fmt.Errorf("invalid ADMIN_REGISTRATION_NUMBER: %w", err)
	}

	return SeedAdmin(db, AdminSeed{
		RegistrationNumber: registrationNumber,
		NationalID:         envOr("ADMIN_NATIONAL_ID", "00000000000"),
		Name:               envOr("ADMIN_NAME", "System"),
		Surname:            envOr("ADMIN_SURNAME", "Administrator"),
		Email:              envOr("ADMIN_EMAIL", "admin@court-transfer.local"),
		Password:           password,
		Courthouse:         envOr("ADMIN_COURTHOUSE", "Head Office"),
		Title:              envOr("ADMIN_TITLE", "Administrator"),
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
