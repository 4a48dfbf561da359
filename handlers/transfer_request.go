package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"court_transfer_app_go/db"
	"court_transfer_app_go/middleware"
	"court_transfer_app_go/models"
	"court_transfer_app_go/services"

	"github.com/labstack/echo/v4"
)

// Permissions that let a caller read other people's requests
var reviewerPermissions = []string{
	models.PermissionAdmin,
	models.PermissionTransferRequestGetAllUsers,
}

type preferenceResponse struct {
	ID              uint `json:"id"`
	CourthouseID    uint `json:"courthouse_id"`
	PreferenceOrder int  `json:"preference_order"`
}

type sourceResponse struct {
	ID           uint   `json:"id"`
	OriginalName string `json:"original_name"`
	FileSize     int64  `json:"file_size"`
	MimeType     string `json:"mime_type"`
	DownloadURL  string `json:"download_url"`
}

type transferRequestResponse struct {
	ID                             uint                 `json:"id"`
	UserID                         uint                 `json:"user_id"`
	TypeID                         uint                 `json:"type_id"`
	Description                    string               `json:"description"`
	StatusID                       uint                 `json:"status_id"`
	StatusName                     string               `json:"status_name"`
	ApprovedCourthousePreferenceID *uint                `json:"approved_courthouse_preference_id"`
	CreatedAt                      time.Time            `json:"created_at"`
	CreatedAtLocal                 string               `json:"created_at_local"`
	Preferences                    []preferenceResponse `json:"preferences"`
	Sources                        []sourceResponse     `json:"sources"`
}

func toTransferRequestResponse(r *models.TransferRequest, loc *time.Location) transferRequestResponse {
	resp := transferRequestResponse{
		ID:                             r.ID,
		UserID:                         r.UserID,
		TypeID:                         r.TypeID,
		Description:                    r.Description,
		StatusID:                       r.StatusID,
		StatusName:                     models.StatusName(r.StatusID),
		ApprovedCourthousePreferenceID: r.ApprovedCourthousePreferenceID,
		CreatedAt:                      r.CreatedAt,
		CreatedAtLocal:                 services.FormatLocal(r.CreatedAt, loc),
		Preferences:                    make([]preferenceResponse, 0, len(r.Preferences)),
		Sources:                        make([]sourceResponse, 0, len(r.Sources)),
	}
	for _, p := range r.Preferences {
		resp.Preferences = append(resp.Preferences, preferenceResponse{
			ID:              p.ID,
			CourthouseID:    p.CourthouseID,
			PreferenceOrder: p.PreferenceOrder,
		})
	}
	for _, s := range r.Sources {
		resp.Sources = append(resp.Sources, sourceResponse{
			ID:           s.ID,
			OriginalName: s.OriginalName,
			FileSize:     s.FileSize,
			MimeType:     s.MimeType,
			DownloadURL:  s.GetDownloadURL(),
		})
	}
	return resp
}

func toTransferRequestResponses(requests []models.TransferRequest, loc *time.Location) []transferRequestResponse {
	out := make([]transferRequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, toTransferRequestResponse(&requests[i], loc))
	}
	return out
}

func transferService(c echo.Context) *services.TransferRequestService {
	return services.NewTransferRequestService(db.DB, services.Storage, getConfig(c))
}

// formValues returns every value posted under name or name[]
func formValues(c echo.Context, name string) ([]string, error) {
	params, err := c.FormParams()
	if err != nil {
		return nil, err
	}
	values := append([]string{}, params[name]...)
	values = append(values, params[name+"[]"]...)

	// Accept a single comma separated value as well
	if len(values) == 1 && strings.Contains(values[0], ",") {
		values = strings.Split(values[0], ",")
	}
	return values, nil
}

// CreateTransferRequestHandler creates a request from a multipart form:
// type_id, description, preference_ids (rank order) and sources files
func CreateTransferRequestHandler(c echo.Context) error {
	cfg := getConfig(c)
	user := middleware.GetCurrentUser(c)

	typeID, err := strconv.ParseUint(c.FormValue("type_id"), 10, 64)
	if err != nil || typeID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "type_id is required")
	}

	rawPrefs, err := formValues(c, "preference_ids")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	preferenceIDs := make([]uint, 0, len(rawPrefs))
	for _, raw := range rawPrefs {
		id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		if err != nil || id == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid courthouse id %q", raw))
		}
		preferenceIDs = append(preferenceIDs, uint(id))
	}

	var attachments []services.Attachment
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files := append(form.File["sources"], form.File["sources[]"]...)
		for _, fh := range files {
			attachment, err := services.ReadAttachment(fh, cfg.MaxUploadSize)
			if err != nil {
				return serviceError(err)
			}
			attachments = append(attachments, attachment)
		}
	}

	request, err := transferService(c).Create(c.Request().Context(), user, services.CreateTransferRequestInput{
		TypeID:        uint(typeID),
		Description:   c.FormValue("description"),
		PreferenceIDs: preferenceIDs,
		Attachments:   attachments,
	})
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, toTransferRequestResponse(request, cfg.Location))
}

// CancelTransferRequestHandler cancels one of the caller's pending requests
func CancelTransferRequestHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := transferService(c).Cancel(c.Request().Context(), middleware.GetCurrentUser(c), id); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":          id,
		"status_id":   models.StatusCancelled,
		"status_name": models.StatusName(models.StatusCancelled),
	})
}

// GetMyTransferRequestsHandler lists the caller's requests
func GetMyTransferRequestsHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	requests, err := transferService(c).ListMine(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTransferRequestResponses(requests, getConfig(c).Location))
}

func reviewFilter(c echo.Context) (services.ReviewFilter, error) {
	page, limit := paging(c)
	filter := services.ReviewFilter{Page: page, Limit: limit}

	if raw := c.QueryParam("status"); raw != "" {
		status, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || !models.IsValidStatus(uint(status)) {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "Invalid status")
		}
		filter.StatusID = uint(status)
	}
	if raw := c.QueryParam("user_id"); raw != "" {
		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "Invalid user_id")
		}
		filter.UserID = uint(userID)
	}
	return filter, nil
}

// GetTransferRequestsForReviewHandler lists everyone else's requests for reviewers
func GetTransferRequestsForReviewHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	filter, err := reviewFilter(c)
	if err != nil {
		return err
	}

	requests, total, err := transferService(c).ListForReview(c.Request().Context(), user.ID, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paginatedResponse{
		Items: toTransferRequestResponses(requests, getConfig(c).Location),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

// GetTransferRequestHandler returns one request to its owner or a reviewer
func GetTransferRequestHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	canReview, err := middleware.HasAnyPermission(c, reviewerPermissions...)
	if err != nil {
		return err
	}

	request, err := transferService(c).Get(c.Request().Context(), middleware.GetCurrentUser(c), canReview, id)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, toTransferRequestResponse(request, getConfig(c).Location))
}

type decideRequest struct {
	StatusID                       uint  `json:"status_id"`
	ApprovedCourthousePreferenceID *uint `json:"approved_courthouse_preference_id"`
}

// DecideTransferRequestHandler approves or rejects a pending request
func DecideTransferRequestHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req decideRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	result, err := transferService(c).Decide(c.Request().Context(), middleware.GetCurrentUser(c), id, services.DecideInput{
		StatusID:             req.StatusID,
		ApprovedPreferenceID: req.ApprovedCourthousePreferenceID,
	})
	if err != nil {
		return serviceError(err)
	}

	cascaded := result.CascadedRequestIDs
	if cascaded == nil {
		cascaded = []uint{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":                                result.Request.ID,
		"status_id":                         result.Request.StatusID,
		"status_name":                       models.StatusName(result.Request.StatusID),
		"approved_courthouse_preference_id": result.Request.ApprovedCourthousePreferenceID,
		"active_courthouse_id":              result.Owner.ActiveCourthouseID,
		"cascaded_request_ids":              cascaded,
	})
}

// DownloadTransferRequestSourceHandler streams one attachment
func DownloadTransferRequestSourceHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	sourceID, err := parseID(c, "sourceId")
	if err != nil {
		return err
	}
	canReview, err := middleware.HasAnyPermission(c, reviewerPermissions...)
	if err != nil {
		return err
	}

	reader, contentType, source, err := transferService(c).OpenSource(c.Request().Context(), middleware.GetCurrentUser(c), canReview, id, sourceID)
	if err != nil {
		return serviceError(err)
	}
	defer reader.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", source.OriginalName))
	return c.Stream(http.StatusOK, contentType, reader)
}

// ExportTransferRequestsHandler downloads the reviewer listing as xlsx
func ExportTransferRequestsHandler(c echo.Context) error {
	cfg := getConfig(c)
	user := middleware.GetCurrentUser(c)
	filter, err := reviewFilter(c)
	if err != nil {
		return err
	}
	filter.All = true

	requests, _, err := transferService(c).ListForReview(c.Request().Context(), user.ID, filter)
	if err != nil {
		return err
	}

	buf, err := services.ExportTransferRequests(db.DB, requests, cfg.Location)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("transfer-requests-%s.xlsx", time.Now().In(locationOrUTC(cfg.Location)).Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func locationOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
