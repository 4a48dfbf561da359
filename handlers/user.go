package handlers

import (
	"net/http"

	"court_transfer_app_go/db"
	"court_transfer_app_go/services"

	"github.com/labstack/echo/v4"
)

type registerUserRequest struct {
	RegistrationNumber int    `json:"registration_number"`
	NationalID         string `json:"national_id"`
	Name               string `json:"name"`
	Surname            string `json:"surname"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	TitleID            uint   `json:"title_id"`
	ActiveCourthouseID uint   `json:"active_courthouse_id"`
	Password           string `json:"password"`
}

// RegisterUserHandler creates an employee account
func RegisterUserHandler(c echo.Context) error {
	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	user, err := services.RegisterUser(db.DB, services.RegisterUserInput{
		RegistrationNumber: req.RegistrationNumber,
		NationalID:         req.NationalID,
		Name:               req.Name,
		Surname:            req.Surname,
		Email:              req.Email,
		Phone:              req.Phone,
		TitleID:            req.TitleID,
		ActiveCourthouseID: req.ActiveCourthouseID,
		Password:           req.Password,
	})
	if err != nil {
		return serviceError(err)
	}

	profile, err := services.BuildUserProfile(db.DB, user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, profile)
}

// GetUsersHandler lists all users
func GetUsersHandler(c echo.Context) error {
	users, err := services.ListUsers(db.DB)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}
