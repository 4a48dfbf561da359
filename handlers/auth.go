package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"court_transfer_app_go/db"
	"court_transfer_app_go/middleware"
	"court_transfer_app_go/services"

	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	RegistrationNumber int    `json:"registration_number"`
	Password           string `json:"password"`
}

type loginResponse struct {
	Token     string                `json:"token"`
	ExpiresAt time.Time             `json:"expires_at"`
	User      *services.UserProfile `json:"user"`
}

// LoginHandler exchanges a registration number and password for a bearer token
func LoginHandler(c echo.Context) error {
	cfg := getConfig(c)

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.RegistrationNumber <= 0 || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Registration number and password are required")
	}
	c.Set(middleware.ContextKeyAuditActor, strconv.Itoa(req.RegistrationNumber))

	user, err := services.Authenticate(db.DB, req.RegistrationNumber, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrAuthenticationFailed) {
			services.Monitor.TrackFailedLogin(c.RealIP(), req.RegistrationNumber)
		}
		return serviceError(err)
	}
	services.Monitor.ResetFailedLogins(c.RealIP())

	token, expiresAt, err := services.NewTokenIssuer(cfg).IssueToken(user)
	if err != nil {
		return err
	}

	profile, err := services.BuildUserProfile(db.DB, user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      profile,
	})
}

// GetCurrentUserHandler returns the caller's profile
func GetCurrentUserHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	profile, err := services.BuildUserProfile(db.DB, user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}
