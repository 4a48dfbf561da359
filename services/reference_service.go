package services

import (
	"errors"
	"fmt"
	"strings"

	"court_transfer_app_go/models"

	"gorm.io/gorm"
)

// Reference data (courthouses, titles, request types, statuses) is a flat
// id/name catalogue.

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(name) > 200 {
		return "", fmt.Errorf("%w: name must be at most 200 characters", ErrValidation)
	}
	return name, nil
}

// createNamed inserts a catalogue row unless the name is taken
func createNamed(db *gorm.DB, model interface{}, name string) error {
	var count int64
	if err := db.Model(model).Where("name = ?", name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrConflict, name)
	}
	return db.Create(model).Error
}

// ListCourthouses returns all courthouses ordered by name
func ListCourthouses(db *gorm.DB) ([]models.Courthouse, error) {
	var courthouses []models.Courthouse
	err := db.Order("name").Find(&courthouses).Error
	return courthouses, err
}

// CreateCourthouse adds a courthouse
func CreateCourthouse(db *gorm.DB, name string) (*models.Courthouse, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	courthouse := &models.Courthouse{Name: name}
	if err := createNamed(db, courthouse, name); err != nil {
		return nil, err
	}
	return courthouse, nil
}

// ListTitles returns all job titles ordered by name
func ListTitles(db *gorm.DB) ([]models.Title, error) {
	var titles []models.Title
	err := db.Order("name").Find(&titles).Error
	return titles, err
}

// CreateTitle adds a job title
func CreateTitle(db *gorm.DB, name string) (*models.Title, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	title := &models.Title{Name: name}
	if err := createNamed(db, title, name); err != nil {
		return nil, err
	}
	return title, nil
}

// ListTransferRequestTypes returns all request types ordered by name
func ListTransferRequestTypes(db *gorm.DB) ([]models.TransferRequestType, error) {
	var types []models.TransferRequestType
	err := db.Order("name").Find(&types).Error
	return types, err
}

// CreateTransferRequestType adds a request type
func CreateTransferRequestType(db *gorm.DB, name string) (*models.TransferRequestType, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	requestType := &models.TransferRequestType{Name: name}
	if err := createNamed(db, requestType, name); err != nil {
		return nil, err
	}
	return requestType, nil
}

// ListStatuses returns the fixed lifecycle statuses
func ListStatuses(db *gorm.DB) ([]models.TransferRequestStatus, error) {
	var statuses []models.TransferRequestStatus
	err := db.Order("id").Find(&statuses).Error
	return statuses, err
}

// referenceExists reports whether a row with id exists in model's table
func referenceExists(db *gorm.DB, model interface{}, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	err := db.Select("id").First(model, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}
