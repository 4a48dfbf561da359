package models

import (
	"fmt"
	"time"
)

// Transfer request status ids. The set is closed; the table exists so clients
// can list the names.
const (
	StatusPending   uint = 1
	StatusApproved  uint = 2
	StatusRejected  uint = 3
	StatusCancelled uint = 4
)

// TransferRequestStatus is the reference row for one status id
type TransferRequestStatus struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;not null" json:"name"`
}

// TableName specifies the table name
func (TransferRequestStatus) TableName() string {
	return "transfer_request_statuses"
}

// DefaultStatuses are the four rows seeded at migration time
var DefaultStatuses = []TransferRequestStatus{
	{ID: StatusPending, Name: "Pending"},
	{ID: StatusApproved, Name: "Approved"},
	{ID: StatusRejected, Name: "Rejected"},
	{ID: StatusCancelled, Name: "Cancelled"},
}

// StatusName returns the display name of a status id
func StatusName(id uint) string {
	for _, s := range DefaultStatuses {
		if s.ID == id {
			return s.Name
		}
	}
	return fmt.Sprintf("Unknown(%d)", id)
}

// IsValidStatus checks if the status id is one of the four known values
func IsValidStatus(id uint) bool {
	return id >= StatusPending && id <= StatusCancelled
}

// TransferRequest is a relocation request and the root of its preferences
// and attachments. CreatedAt is stored in UTC.
type TransferRequest struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_transfer_user_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID                         uint   `gorm:"not null;index:idx_transfer_user_created,priority:1" json:"user_id"`
	TypeID                         uint   `gorm:"not null" json:"type_id"`
	Description                    string `gorm:"type:text;not null" json:"description"`
	StatusID                       uint   `gorm:"not null;default:1;index" json:"status_id"`
	ApprovedCourthousePreferenceID *uint  `json:"approved_courthouse_preference_id"`

	// Version is bumped on every status change; updates are conditional on it
	Version int `gorm:"not null;default:1" json:"-"`

	Preferences []CourthousePreference  `gorm:"foreignKey:TransferRequestID;constraint:OnDelete:CASCADE" json:"preferences,omitempty"`
	Sources     []TransferRequestSource `gorm:"foreignKey:TransferRequestID;constraint:OnDelete:CASCADE" json:"sources,omitempty"`
}

// IsPending reports whether the request can still change state
func (tr *TransferRequest) IsPending() bool {
	return tr.StatusID == StatusPending
}

// TableName specifies the table name
func (TransferRequest) TableName() string {
	return "transfer_requests"
}

// CourthousePreference is one ranked destination inside a transfer request.
// PreferenceOrder starts at 1 and is contiguous within a request.
type CourthousePreference struct {
	ID                uint `gorm:"primaryKey;autoIncrement" json:"id"`
	TransferRequestID uint `gorm:"not null;uniqueIndex:idx_pref_request_courthouse;uniqueIndex:idx_pref_request_order" json:"transfer_request_id"`
	CourthouseID      uint `gorm:"not null;uniqueIndex:idx_pref_request_courthouse" json:"courthouse_id"`
	PreferenceOrder   int  `gorm:"not null;uniqueIndex:idx_pref_request_order" json:"preference_order"`
}

// TableName specifies the table name
func (CourthousePreference) TableName() string {
	return "courthouse_preferences"
}

// TransferRequestSource is the metadata row of one supporting document.
// PathName is the storage key; the bytes live in the attachment store.
type TransferRequestSource struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt         time.Time `json:"created_at"`
	TransferRequestID uint      `gorm:"not null;index" json:"transfer_request_id"`
	PathName          string    `gorm:"not null;uniqueIndex" json:"path_name"`
	OriginalName      string    `json:"original_name"`
	FileSize          int64     `json:"file_size"`
	MimeType          string    `json:"mime_type,omitempty"`
}

// GetDownloadURL returns the authenticated retrieval path for this attachment
func (s *TransferRequestSource) GetDownloadURL() string {
	return fmt.Sprintf("/api/transfer-requests/%d/sources/%d", s.TransferRequestID, s.ID)
}

// TableName specifies the table name
func (TransferRequestSource) TableName() string {
	return "transfer_request_sources"
}
