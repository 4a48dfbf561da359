package services

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"court_transfer_app_go/models"

	"gorm.io/gorm"
)

// RegisterUserInput carries the fields an administrator supplies for a new employee
type RegisterUserInput struct {
	RegistrationNumber int
	NationalID         string
	Name               string
	Surname            string
	Email              string
	Phone              string
	TitleID            uint
	ActiveCourthouseID uint
	Password           string
}

func (in *RegisterUserInput) normalize() error {
	in.NationalID = strings.TrimSpace(in.NationalID)
	in.Name = strings.TrimSpace(in.Name)
	in.Surname = strings.TrimSpace(in.Surname)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)

	if in.RegistrationNumber <= 0 {
		return fmt.Errorf("%w: registration number must be positive", ErrValidation)
	}
	if len(in.NationalID) != 11 || strings.Trim(in.NationalID, "0123456789") != "" {
		return fmt.Errorf("%w: national id must be 11 digits", ErrValidation)
	}
	if in.Name == "" || in.Surname == "" {
		return fmt.Errorf("%w: name and surname are required", ErrValidation)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	return ValidatePassword(in.Password)
}

// RegisterUser creates an employee account with a hashed password
func RegisterUser(db *gorm.DB, in RegisterUserInput) (*models.User, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var user *models.User
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("registration_number = ?", in.RegistrationNumber).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: registration number %d", ErrConflict, in.RegistrationNumber)
		}

		if ok, err := referenceExists(tx, &models.Title{}, in.TitleID); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%w: title %d does not exist", ErrValidation, in.TitleID)
		}
		if ok, err := referenceExists(tx, &models.Courthouse{}, in.ActiveCourthouseID); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%w: courthouse %d does not exist", ErrValidation, in.ActiveCourthouseID)
		}

		hash, err := HashPassword(in.Password)
		if err != nil {
			return err
		}

		user = &models.User{
			RegistrationNumber: in.RegistrationNumber,
			NationalID:         in.NationalID,
			Name:               in.Name,
			Surname:            in.Surname,
			Email:              in.Email,
			Phone:              in.Phone,
			TitleID:            in.TitleID,
			ActiveCourthouseID: in.ActiveCourthouseID,
			PasswordHash:       hash,
		}
		return tx.Create(user).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID loads a user or returns gorm.ErrRecordNotFound
func GetUserByID(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users ordered by registration number
func ListUsers(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := db.Order("registration_number").Find(&users).Error
	return users, err
}

// UserProfile is the caller-facing view of an account
type UserProfile struct {
	ID                   uint     `json:"id"`
	RegistrationNumber   int      `json:"registration_number"`
	Name                 string   `json:"name"`
	Surname              string   `json:"surname"`
	Email                string   `json:"email"`
	Phone                string   `json:"phone"`
	TitleID              uint     `json:"title_id"`
	TitleName            string   `json:"title_name"`
	ActiveCourthouseID   uint     `json:"active_courthouse_id"`
	ActiveCourthouseName string   `json:"active_courthouse_name"`
	Permissions          []string `json:"permissions"`
}

// BuildUserProfile resolves reference names and permission grants for user
func BuildUserProfile(db *gorm.DB, user *models.User) (*UserProfile, error) {
	profile := &UserProfile{
		ID:                 user.ID,
		RegistrationNumber: user.RegistrationNumber,
		Name:               user.Name,
		Surname:            user.Surname,
		Email:              user.Email,
		Phone:              user.Phone,
		TitleID:            user.TitleID,
		ActiveCourthouseID: user.ActiveCourthouseID,
	}

	var title models.Title
	if err := db.First(&title, user.TitleID).Error; err == nil {
		profile.TitleName = title.Name
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var courthouse models.Courthouse
	if err := db.First(&courthouse, user.ActiveCourthouseID).Error; err == nil {
		profile.ActiveCourthouseName = courthouse.Name
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	permissions, err := UserPermissionNames(db, user.ID)
	if err != nil {
		return nil, err
	}
	if permissions == nil {
		permissions = []string{}
	}
	profile.Permissions = permissions
	return profile, nil
}
