package handlers

import (
	"net/http"

	"court_transfer_app_go/db"
	"court_transfer_app_go/services"

	"github.com/labstack/echo/v4"
)

type nameRequest struct {
	Name string `json:"name"`
}

func bindName(c echo.Context) (string, error) {
	var req nameRequest
	if err := c.Bind(&req); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	return req.Name, nil
}

// GetCourthousesHandler lists courthouses
func GetCourthousesHandler(c echo.Context) error {
	courthouses, err := services.ListCourthouses(db.DB)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, courthouses)
}

// CreateCourthouseHandler adds a courthouse
func CreateCourthouseHandler(c echo.Context) error {
	name, err := bindName(c)
	if err != nil {
		return err
	}
	courthouse, err := services.CreateCourthouse(db.DB, name)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, courthouse)
}

// GetTitlesHandler lists job titles
func GetTitlesHandler(c echo.Context) error {
	titles, err := services.ListTitles(db.DB)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, titles)
}

// CreateTitleHandler adds a job title
func CreateTitleHandler(c echo.Context) error {
	name, err := bindName(c)
	if err != nil {
		return err
	}
	title, err := services.CreateTitle(db.DB, name)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, title)
}

// GetTransferRequestTypesHandler lists request types
func GetTransferRequestTypesHandler(c echo.Context) error {
	types, err := services.ListTransferRequestTypes(db.DB)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, types)
}

// CreateTransferRequestTypeHandler adds a request type
func CreateTransferRequestTypeHandler(c echo.Context) error {
	name, err := bindName(c)
	if err != nil {
		return err
	}
	requestType, err := services.CreateTransferRequestType(db.DB, name)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, requestType)
}

// GetTransferRequestStatusesHandler lists the lifecycle statuses
func GetTransferRequestStatusesHandler(c echo.Context) error {
	statuses, err := services.ListStatuses(db.DB)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statuses)
}
