package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"court_transfer_app_go/db"
	"court_transfer_app_go/models"
	"court_transfer_app_go/services"

	"github.com/labstack/echo/v4"
)

// logEntryFilters reads level, actor, action, from and to (YYYY-MM-DD in the
// organization's timezone, both inclusive)
func logEntryFilters(c echo.Context) (services.LogEntryFilters, error) {
	loc := locationOrUTC(getConfig(c).Location)
	filters := services.LogEntryFilters{
		Level:  strings.ToUpper(c.QueryParam("level")),
		Actor:  c.QueryParam("actor"),
		Action: c.QueryParam("action"),
	}
	if filters.Level != "" && filters.Level != models.LogLevelInfo && filters.Level != models.LogLevelError {
		return filters, echo.NewHTTPError(http.StatusBadRequest, "Invalid level")
	}

	if raw := c.QueryParam("from"); raw != "" {
		from, err := services.ParseDate(raw, loc)
		if err != nil {
			return filters, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filters.DateFrom = from
	}
	if raw := c.QueryParam("to"); raw != "" {
		to, err := services.ParseDate(raw, loc)
		if err != nil {
			return filters, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filters.DateTo = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return filters, nil
}

// GetLogEntriesHandler lists audit entries, newest first
func GetLogEntriesHandler(c echo.Context) error {
	filters, err := logEntryFilters(c)
	if err != nil {
		return err
	}
	page, limit := paging(c)

	entries, total, err := services.ListLogEntries(db.DB, filters, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paginatedResponse{
		Items: entries,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// ExportLogEntriesHandler downloads the filtered audit log as xlsx
func ExportLogEntriesHandler(c echo.Context) error {
	filters, err := logEntryFilters(c)
	if err != nil {
		return err
	}

	entries, err := services.AllLogEntries(db.DB, filters)
	if err != nil {
		return err
	}

	loc := locationOrUTC(getConfig(c).Location)
	buf, err := services.ExportLogEntries(entries, loc)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("log-entries-%s.xlsx", time.Now().In(loc).Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
