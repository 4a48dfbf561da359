package models

import (
	"time"

	"gorm.io/gorm"
)

// Log levels
const (
	LogLevelInfo  = "INFO"
	LogLevelError = "ERROR"
)

// AnonymousActor is recorded when no authenticated identity is present
const AnonymousActor = "Anonymous"

// LogEntry is an immutable audit record of one workflow operation outcome.
// Date is stored in UTC.
type LogEntry struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Date               time.Time `gorm:"not null;index:idx_log_date" json:"date"`
	Level              string    `gorm:"size:10;not null;index:idx_log_level" json:"level"`
	RegistrationNumber string    `gorm:"size:50;not null;index:idx_log_actor" json:"registration_number"`
	ControllerName     string    `gorm:"size:100;not null" json:"controller_name"`
	ActionName         string    `gorm:"size:100;not null" json:"action_name"`
	Message            string    `gorm:"type:text;not null" json:"message"`
	Exception          *string   `gorm:"type:text" json:"exception,omitempty"`
	IPAddress          string    `gorm:"size:64" json:"ip_address"`
}

// BeforeUpdate prevents modification of audit entries (immutability)
func (l *LogEntry) BeforeUpdate(tx *gorm.DB) error {
	return gorm.ErrRecordNotFound
}

// BeforeDelete prevents deletion of audit entries (immutability)
func (l *LogEntry) BeforeDelete(tx *gorm.DB) error {
	return gorm.ErrRecordNotFound
}

// TableName specifies the table name
func (LogEntry) TableName() string {
	return "log_entries"
}
