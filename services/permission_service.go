package services

import (
	"errors"
	"fmt"
	"strings"

	"court_transfer_app_go/models"

	"gorm.io/gorm"
)

// UserPermissionNames resolves every grant of the user to its permission name
func UserPermissionNames(db *gorm.DB, userID uint) ([]string, error) {
	var names []string
	err := db.Model(&models.UserPermissionClaim{}).
		Joins("JOIN permissions ON permissions.id = user_permission_claims.permission_id").
		Where("user_permission_claims.user_id = ?", userID).
		Order("permissions.name").
		Pluck("permissions.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load permissions: %w", err)
	}
	return names, nil
}

// Authorize reports whether the user holds any of the required permission
// names. An unknown user or a user without grants is never authorized.
func Authorize(db *gorm.DB, userID uint, required ...string) (bool, error) {
	if userID == 0 || len(required) == 0 {
		return false, nil
	}

	var count int64
	err := db.Model(&models.UserPermissionClaim{}).
		Joins("JOIN permissions ON permissions.id = user_permission_claims.permission_id").
		Where("user_permission_claims.user_id = ? AND permissions.name IN ?", userID, required).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to resolve permissions: %w", err)
	}
	return count > 0, nil
}

// ListPermissions returns every permission ordered by name
func ListPermissions(db *gorm.DB) ([]models.Permission, error) {
	var permissions []models.Permission
	err := db.Order("name").Find(&permissions).Error
	return permissions, err
}

// CreatePermission adds a new named permission
func CreatePermission(db *gorm.DB, name string) (*models.Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: permission name is required", ErrValidation)
	}
	var count int64
	if err := db.Model(&models.Permission{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("permission %q %w", name, ErrConflict)
	}
	permission := &models.Permission{Name: name}
	if err := db.Create(permission).Error; err != nil {
		return nil, fmt.Errorf("failed to create permission: %w", err)
	}
	return permission, nil
}

// DeletePermission removes a permission; its grants go with it
func DeletePermission(db *gorm.DB, id uint) error {
	result := db.Delete(&models.Permission{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete permission: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListPermissionClaims returns every grant
func ListPermissionClaims(db *gorm.DB) ([]models.UserPermissionClaim, error) {
	var claims []models.UserPermissionClaim
	err := db.Order("id").Find(&claims).Error
	return claims, err
}

// GrantPermission links a user to a permission. Both must exist and the
// grant must not already be present.
func GrantPermission(db *gorm.DB, userID, permissionID uint) (*models.UserPermissionClaim, error) {
	var claim *models.UserPermissionClaim
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.User{}, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d does not exist", ErrValidation, userID)
			}
			return err
		}
		if err := tx.First(&models.Permission{}, permissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: permission %d does not exist", ErrValidation, permissionID)
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.UserPermissionClaim{}).
			Where("user_id = ? AND permission_id = ?", userID, permissionID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("permission grant %w", ErrConflict)
		}

		claim = &models.UserPermissionClaim{UserID: userID, PermissionID: permissionID}
		return tx.Create(claim).Error
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// RevokePermission deletes one grant by id
func RevokePermission(db *gorm.DB, claimID uint) error {
	result := db.Delete(&models.UserPermissionClaim{}, claimID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete permission grant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
