package handlers

import (
	"net/http"

	"court_transfer_app_go/db"
	"court_transfer_app_go/middleware"
	"court_transfer_app_go/services"

	"github.com/labstack/echo/v4"
)

// GetPermissionsHandler lists permission names
func GetPermissionsHandler(c echo.Context) error {
	permissions, err := services.ListPermissions(db.DB)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, permissions)
}

// CreatePermissionHandler adds a permission name
func CreatePermissionHandler(c echo.Context) error {
	name, err := bindName(c)
	if err != nil {
		return err
	}
	permission, err := services.CreatePermission(db.DB, name)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, permission)
}

// DeletePermissionHandler removes a permission and every grant of it
func DeletePermissionHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := services.DeletePermission(db.DB, id); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type permissionCheckRequest struct {
	Permissions []string `json:"permissions"`
}

// CheckPermissionsHandler answers whether the caller holds any of the posted names
func CheckPermissionsHandler(c echo.Context) error {
	var req permissionCheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	allowed, err := services.Authorize(db.DB, middleware.GetCurrentUser(c).ID, req.Permissions...)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"allowed": allowed})
}

// GetPermissionClaimsHandler lists all grants
func GetPermissionClaimsHandler(c echo.Context) error {
	claims, err := services.ListPermissionClaims(db.DB)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, claims)
}

type permissionClaimRequest struct {
	UserID       uint `json:"user_id"`
	PermissionID uint `json:"permission_id"`
}

// CreatePermissionClaimHandler grants a permission to a user
func CreatePermissionClaimHandler(c echo.Context) error {
	var req permissionClaimRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	claim, err := services.GrantPermission(db.DB, req.UserID, req.PermissionID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, claim)
}

// DeletePermissionClaimHandler revokes a grant
func DeletePermissionClaimHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := services.RevokePermission(db.DB, id); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
