package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"court_transfer_app_go/config"
	"court_transfer_app_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// serviceError maps domain errors to HTTP errors. Unknown errors are returned
// unchanged so the audit middleware records them and answers with a 500.
func serviceError(err error) error {
	var code int
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidType),
		errors.Is(err, services.ErrInvalidPreference),
		errors.Is(err, services.ErrInvalidAttachment),
		errors.Is(err, services.ErrInvalidPreferenceChoice):
		code = http.StatusBadRequest
	case errors.Is(err, services.ErrAuthenticationFailed),
		errors.Is(err, services.ErrInvalidToken):
		code = http.StatusUnauthorized
	case errors.Is(err, services.ErrAuthorizationDenied),
		errors.Is(err, services.ErrSelfReviewForbidden):
		code = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrNotFoundOrForbidden),
		errors.Is(err, gorm.ErrRecordNotFound):
		code = http.StatusNotFound
	case errors.Is(err, services.ErrNotPending),
		errors.Is(err, services.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, services.ErrDailyLimitExceeded):
		code = http.StatusTooManyRequests
	default:
		return err
	}
	return echo.NewHTTPError(code, err.Error())
}

func getConfig(c echo.Context) *config.Config {
	if cfg, ok := c.Get("config").(*config.Config); ok {
		return cfg
	}
	return &config.Config{EmailTestMode: true}
}

// parseID reads a positive numeric path parameter
func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
	}
	return uint(id), nil
}

// queryInt reads an optional integer query parameter
func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func paging(c echo.Context) (int, int) {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// paginatedResponse wraps one page of results
type paginatedResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}
