package services

import (
	"errors"
	"fmt"

	"court_transfer_app_go/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
)

// dummyHash is compared against when the registration number is unknown so
// both failure paths spend the same bcrypt time.
var dummyHash string

func init() {
	hash, _ := HashPassword("dummy_password_for_timing_mitigation")
	dummyHash = hash
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password is empty", ErrValidation)
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// VerifyPassword verifies a password against a bcrypt hash
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// Authenticate looks up the user by registration number and checks the
// password. Unknown users and wrong passwords both return ErrAuthenticationFailed.
func Authenticate(db *gorm.DB, registrationNumber int, password string) (*models.User, error) {
	var user models.User
	err := db.Where("registration_number = ?", registrationNumber).First(&user).Error
	if err != nil {
		VerifyPassword(dummyHash, password)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !VerifyPassword(user.PasswordHash, password) {
		return nil, ErrAuthenticationFailed
	}
	return &user, nil
}
