package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"court_transfer_app_go/config"
	"court_transfer_app_go/logging"
	"court_transfer_app_go/metrics"
	"court_transfer_app_go/models"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// DefaultDailyRequestLimit is the number of requests one user may create per local day
	DefaultDailyRequestLimit = 3
	// MaxDescriptionLength bounds the free-text description
	MaxDescriptionLength = 2000
)

// DecisionNotifier is told about committed decisions. It must not block.
type DecisionNotifier interface {
	NotifyDecision(owner *models.User, request *models.TransferRequest, cascaded []uint)
}

// TransferRequestService runs the transfer request lifecycle. Every mutating
// operation is a single database transaction.
type TransferRequestService struct {
	DB            *gorm.DB
	Storage       StorageProvider
	Location      *time.Location
	DailyLimit    int
	MaxUploadSize int64
	Notifier      DecisionNotifier
	Now           func() time.Time
}

// NewTransferRequestService wires the service from configuration
func NewTransferRequestService(db *gorm.DB, storage StorageProvider, cfg *config.Config) *TransferRequestService {
	return &TransferRequestService{
		DB:            db,
		Storage:       storage,
		Location:      cfg.Location,
		DailyLimit:    cfg.DailyRequestLimit,
		MaxUploadSize: cfg.MaxUploadSize,
		Notifier:      NewEmailNotifier(cfg).WithDB(db),
		Now:           time.Now,
	}
}

func (s *TransferRequestService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *TransferRequestService) dailyLimit() int {
	if s.DailyLimit <= 0 {
		return DefaultDailyRequestLimit
	}
	return s.DailyLimit
}

// CreateTransferRequestInput is the payload of Create. PreferenceIDs are
// courthouse ids in rank order.
type CreateTransferRequestInput struct {
	TypeID        uint
	Description   string
	PreferenceIDs []uint
	Attachments   []Attachment
}

var descriptionPolicy = bluemonday.StrictPolicy()

// sanitizeDescription strips markup and returns plain text
func sanitizeDescription(description string) string {
	return strings.TrimSpace(html.UnescapeString(descriptionPolicy.Sanitize(description)))
}

// Create validates and stores a new pending transfer request for owner.
// Attachments are written only after every validation passed; if a write or
// the commit fails the files already written are removed.
func (s *TransferRequestService) Create(ctx context.Context, owner *models.User, in CreateTransferRequestInput) (*models.TransferRequest, error) {
	description := sanitizeDescription(in.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if len([]rune(description)) > MaxDescriptionLength {
		return nil, fmt.Errorf("%w: description must be at most %d characters", ErrValidation, MaxDescriptionLength)
	}
	if len(in.PreferenceIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one courthouse preference is required", ErrValidation)
	}

	now := s.now()
	var (
		request     *models.TransferRequest
		writtenKeys []string
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var requestType models.TransferRequestType
		if err := tx.First(&requestType, in.TypeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %d", ErrInvalidType, in.TypeID)
			}
			return err
		}

		if err := lockOwner(tx, owner.ID).Error; err != nil {
			return err
		}

		start, end := LocalDayBounds(now, s.Location)
		var countToday int64
		if err := tx.Model(&models.TransferRequest{}).
			Where("user_id = ? AND created_at >= ? AND created_at < ?", owner.ID, start, end).
			Count(&countToday).Error; err != nil {
			return err
		}
		if countToday >= int64(s.dailyLimit()) {
			return fmt.Errorf("%w (%d)", ErrDailyLimitExceeded, s.dailyLimit())
		}

		if err := validatePreferences(tx, in.PreferenceIDs); err != nil {
			return err
		}
		for _, attachment := range in.Attachments {
			if err := ValidateAttachment(attachment, s.MaxUploadSize); err != nil {
				return err
			}
		}

		request = &models.TransferRequest{
			CreatedAt:   now,
			UpdatedAt:   now,
			UserID:      owner.ID,
			TypeID:      requestType.ID,
			Description: description,
			StatusID:    models.StatusPending,
			Version:     1,
		}
		if err := tx.Create(request).Error; err != nil {
			return fmt.Errorf("failed to create transfer request: %w", err)
		}

		for i, courthouseID := range in.PreferenceIDs {
			preference := models.CourthousePreference{
				TransferRequestID: request.ID,
				CourthouseID:      courthouseID,
				PreferenceOrder:   i + 1,
			}
			if err := tx.Create(&preference).Error; err != nil {
				return fmt.Errorf("failed to create preference: %w", err)
			}
			request.Preferences = append(request.Preferences, preference)
		}

		for i, attachment := range in.Attachments {
			ext := attachment.Extension()
			key := AttachmentKey(request.ID, i+1, ext)
			contentType := ContentTypeForExtension(ext)
			result, err := s.Storage.UploadReader(ctx, bytes.NewReader(attachment.Content), key, contentType, int64(len(attachment.Content)))
			if err != nil {
				return fmt.Errorf("failed to store attachment: %w", err)
			}
			writtenKeys = append(writtenKeys, result.Key)

			source := models.TransferRequestSource{
				CreatedAt:         now,
				TransferRequestID: request.ID,
				PathName:          result.Key,
				OriginalName:      attachment.FileName,
				FileSize:          result.FileSize,
				MimeType:          contentType,
			}
			if err := tx.Create(&source).Error; err != nil {
				return fmt.Errorf("failed to create attachment record: %w", err)
			}
			request.Sources = append(request.Sources, source)
		}
		return nil
	})
	if err != nil {
		s.removeFiles(writtenKeys)
		return nil, err
	}
	return request, nil
}

// validatePreferences rejects duplicates and unknown courthouses, reporting
// the first offending id in rank order
func validatePreferences(tx *gorm.DB, courthouseIDs []uint) error {
	var existing []uint
	if err := tx.Model(&models.Courthouse{}).Where("id IN ?", courthouseIDs).Pluck("id", &existing).Error; err != nil {
		return err
	}
	known := make(map[uint]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}

	seen := make(map[uint]bool, len(courthouseIDs))
	for _, id := range courthouseIDs {
		if !known[id] {
			return fmt.Errorf("%w: courthouse %d does not exist", ErrInvalidPreference, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: courthouse %d is listed more than once", ErrInvalidPreference, id)
		}
		seen[id] = true
	}
	return nil
}

func (s *TransferRequestService) removeFiles(keys []string) {
	for _, key := range keys {
		if err := s.Storage.Delete(context.Background(), key); err != nil {
			logging.L().Error("failed to remove attachment after rollback", zap.String("key", key), zap.Error(err))
		}
	}
}

// Cancel moves the caller's own pending request to Cancelled
func (s *TransferRequestService) Cancel(ctx context.Context, caller *models.User, requestID uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.TransferRequest
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFoundOrForbidden
			}
			return err
		}
		if request.UserID != caller.ID {
			return ErrNotFoundOrForbidden
		}
		if !request.IsPending() {
			return ErrNotPending
		}
		return transition(tx, &request, models.StatusCancelled, nil)
	})
	if err != nil {
		return err
	}
	metrics.TransferDecisions.WithLabelValues(models.StatusName(models.StatusCancelled)).Inc()
	return nil
}

// transition applies a status change guarded by the pending status and the
// version read earlier in the same transaction. Losing a race surfaces as
// ErrNotPending.
func transition(tx *gorm.DB, request *models.TransferRequest, statusID uint, approvedPreferenceID *uint) error {
	result := tx.Model(&models.TransferRequest{}).
		Where("id = ? AND status_id = ? AND version = ?", request.ID, models.StatusPending, request.Version).
		Updates(map[string]interface{}{
			"status_id":                         statusID,
			"approved_courthouse_preference_id": approvedPreferenceID,
			"version":                           gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update transfer request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotPending
	}
	request.StatusID = statusID
	request.ApprovedCourthousePreferenceID = approvedPreferenceID
	request.Version++
	return nil
}

// DecideInput is a reviewer's decision. ApprovedPreferenceID is required
// when StatusID is StatusApproved and ignored otherwise.
type DecideInput struct {
	StatusID             uint
	ApprovedPreferenceID *uint
}

// DecisionResult reports what a committed decision changed
type DecisionResult struct {
	Request            *models.TransferRequest
	Owner              *models.User
	CascadedRequestIDs []uint
}

// Decide approves or rejects a pending request. Approval moves the owner to
// the chosen courthouse and rejects every other pending request of the owner,
// all in one transaction.
func (s *TransferRequestService) Decide(ctx context.Context, reviewer *models.User, requestID uint, in DecideInput) (*DecisionResult, error) {
	if in.StatusID != models.StatusApproved && in.StatusID != models.StatusRejected {
		return nil, fmt.Errorf("%w: status must be %d (approved) or %d (rejected)", ErrValidation, models.StatusApproved, models.StatusRejected)
	}

	result := &DecisionResult{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.TransferRequest
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if request.UserID == reviewer.ID {
			return ErrSelfReviewForbidden
		}
		if !request.IsPending() {
			return ErrNotPending
		}

		var owner models.User
		if err := tx.First(&owner, request.UserID).Error; err != nil {
			return fmt.Errorf("failed to load request owner: %w", err)
		}

		if in.StatusID == models.StatusRejected {
			if err := transition(tx, &request, models.StatusRejected, nil); err != nil {
				return err
			}
			result.Request = &request
			result.Owner = &owner
			return nil
		}

		if in.ApprovedPreferenceID == nil {
			return ErrInvalidPreferenceChoice
		}
		var preference models.CourthousePreference
		if err := tx.Where("id = ? AND transfer_request_id = ?", *in.ApprovedPreferenceID, request.ID).
			First(&preference).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidPreferenceChoice
			}
			return err
		}

		preferenceID := preference.ID
		if err := transition(tx, &request, models.StatusApproved, &preferenceID); err != nil {
			return err
		}

		if err := tx.Model(&owner).Update("active_courthouse_id", preference.CourthouseID).Error; err != nil {
			return fmt.Errorf("failed to update active courthouse: %w", err)
		}
		owner.ActiveCourthouseID = preference.CourthouseID

		var cascaded []uint
		if err := tx.Model(&models.TransferRequest{}).
			Where("user_id = ? AND id <> ? AND status_id = ?", owner.ID, request.ID, models.StatusPending).
			Order("id").
			Pluck("id", &cascaded).Error; err != nil {
			return err
		}
		if len(cascaded) > 0 {
			if err := tx.Model(&models.TransferRequest{}).
				Where("id IN ? AND status_id = ?", cascaded, models.StatusPending).
				Updates(map[string]interface{}{
					"status_id":                         models.StatusRejected,
					"approved_courthouse_preference_id": nil,
					"version":                           gorm.Expr("version + 1"),
				}).Error; err != nil {
				return fmt.Errorf("failed to reject competing requests: %w", err)
			}
		}

		result.Request = &request
		result.Owner = &owner
		result.CascadedRequestIDs = cascaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TransferDecisions.WithLabelValues(models.StatusName(in.StatusID)).Inc()
	if n := len(result.CascadedRequestIDs); n > 0 {
		metrics.TransferDecisions.WithLabelValues(models.StatusName(models.StatusRejected)).Add(float64(n))
	}
	if s.Notifier != nil {
		s.Notifier.NotifyDecision(result.Owner, result.Request, result.CascadedRequestIDs)
	}
	return result, nil
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Preferences", func(db *gorm.DB) *gorm.DB { return db.Order("preference_order") }).
		Preload("Sources", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

// Get returns one request with preferences and attachment metadata. Only the
// owner or a reviewer may read it; any other caller gets the same error as
// for a missing request.
func (s *TransferRequestService) Get(ctx context.Context, caller *models.User, canReview bool, requestID uint) (*models.TransferRequest, error) {
	var request models.TransferRequest
	if err := withDetails(s.DB.WithContext(ctx)).First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundOrForbidden
		}
		return nil, err
	}
	if request.UserID != caller.ID && !canReview {
		return nil, ErrNotFoundOrForbidden
	}
	return &request, nil
}

// lockOwner takes a row lock on the owner so concurrent creates by the same
// user count today's requests one at a time. SQLite drops the locking clause
// and serializes writers on its own.
func lockOwner(tx *gorm.DB, userID uint) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Take(&models.User{}, userID)
}

// ListMine returns the caller's own requests, newest first
func (s *TransferRequestService) ListMine(ctx context.Context, userID uint) ([]models.TransferRequest, error) {
	var requests []models.TransferRequest
	err := withDetails(s.DB.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&requests).Error
	return requests, err
}

// ReviewFilter narrows the reviewer listing
type ReviewFilter struct {
	StatusID uint
	UserID   uint
	Page     int
	Limit    int
	// All disables pagination (exports)
	All bool
}

// ListForReview returns requests of everyone except the reviewer, newest first
func (s *TransferRequestService) ListForReview(ctx context.Context, reviewerID uint, filter ReviewFilter) ([]models.TransferRequest, int64, error) {
	query := s.DB.WithContext(ctx).Model(&models.TransferRequest{}).Where("user_id <> ?", reviewerID)
	if filter.StatusID != 0 {
		query = query.Where("status_id = ?", filter.StatusID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	query = withDetails(query).Order("created_at DESC, id DESC")
	if !filter.All {
		query = query.Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var requests []models.TransferRequest
	err := query.Find(&requests).Error
	return requests, total, err
}

// OpenSource streams one attachment of a request the caller may read
func (s *TransferRequestService) OpenSource(ctx context.Context, caller *models.User, canReview bool, requestID, sourceID uint) (io.ReadCloser, string, *models.TransferRequestSource, error) {
	request, err := s.Get(ctx, caller, canReview, requestID)
	if err != nil {
		return nil, "", nil, err
	}

	for i := range request.Sources {
		source := request.Sources[i]
		if source.ID != sourceID {
			continue
		}
		reader, contentType, err := s.Storage.Get(ctx, source.PathName)
		if err != nil {
			return nil, "", nil, fmt.Errorf("failed to open attachment: %w", err)
		}
		if source.MimeType != "" {
			contentType = source.MimeType
		}
		return reader, contentType, &source, nil
	}
	return nil, "", nil, ErrNotFoundOrForbidden
}
