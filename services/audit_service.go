package services

import (
	"context"
	"fmt"
	"time"

	"court_transfer_app_go/logging"
	"court_transfer_app_go/metrics"
	"court_transfer_app_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditEntry is one outcome to record. Failure is the internal error detail
// and never leaves the server except through the audit log.
type AuditEntry struct {
	Level     string
	Actor     string
	Component string
	Action    string
	Message   string
	Failure   string
	IPAddress string
}

// AuditLogger appends immutable LogEntry rows
type AuditLogger struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAuditLogger creates an audit logger writing to db
func NewAuditLogger(db *gorm.DB) *AuditLogger {
	return &AuditLogger{db: db, now: time.Now}
}

// Record writes the entry synchronously. A failed write is reported to the
// process log and the failure counter before the error is returned.
func (a *AuditLogger) Record(ctx context.Context, entry AuditEntry) error {
	if entry.Actor == "" {
		entry.Actor = models.AnonymousActor
	}
	if entry.Level == "" {
		entry.Level = models.LogLevelInfo
	}

	logEntry := models.LogEntry{
		Date:               a.now().UTC(),
		Level:              entry.Level,
		RegistrationNumber: entry.Actor,
		ControllerName:     entry.Component,
		ActionName:         entry.Action,
		Message:            entry.Message,
		Exception:          ptrIfNotEmpty(entry.Failure),
		IPAddress:          entry.IPAddress,
	}

	if err := a.db.WithContext(ctx).Create(&logEntry).Error; err != nil {
		metrics.AuditWriteFailures.Inc()
		logging.L().Error("failed to write audit entry",
			zap.Error(err),
			zap.String("actor", entry.Actor),
			zap.String("component", entry.Component),
			zap.String("action", entry.Action),
			zap.String("message", entry.Message),
		)
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// Info records an INFO entry
func (a *AuditLogger) Info(ctx context.Context, entry AuditEntry) error {
	entry.Level = models.LogLevelInfo
	return a.Record(ctx, entry)
}

// Error records an ERROR entry
func (a *AuditLogger) Error(ctx context.Context, entry AuditEntry) error {
	entry.Level = models.LogLevelError
	return a.Record(ctx, entry)
}

// ptrIfNotEmpty returns a pointer to the string if not empty, nil otherwise
func ptrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// LogEntryFilters contains filter options for audit log queries
type LogEntryFilters struct {
	Level    string
	Actor    string
	Action   string
	DateFrom time.Time
	DateTo   time.Time
}

// ListLogEntries retrieves paginated audit entries, newest first
func ListLogEntries(db *gorm.DB, filters LogEntryFilters, page, pageSize int) ([]models.LogEntry, int64, error) {
	query := filterLogEntries(db.Model(&models.LogEntry{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.LogEntry
	offset := (page - 1) * pageSize
	err := query.Order("date DESC, id DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&entries).Error

	return entries, total, err
}

// AllLogEntries returns every entry matching filters, newest first
func AllLogEntries(db *gorm.DB, filters LogEntryFilters) ([]models.LogEntry, error) {
	var entries []models.LogEntry
	err := filterLogEntries(db.Model(&models.LogEntry{}), filters).
		Order("date DESC, id DESC").
		Find(&entries).Error
	return entries, err
}

func filterLogEntries(query *gorm.DB, filters LogEntryFilters) *gorm.DB {
	if filters.Level != "" {
		query = query.Where("level = ?", filters.Level)
	}
	if filters.Actor != "" {
		query = query.Where("registration_number = ?", filters.Actor)
	}
	if filters.Action != "" {
		query = query.Where("action_name = ?", filters.Action)
	}
	if !filters.DateFrom.IsZero() {
		query = query.Where("date >= ?", filters.DateFrom.UTC())
	}
	if !filters.DateTo.IsZero() {
		query = query.Where("date <= ?", filters.DateTo.UTC())
	}
	return query
}
