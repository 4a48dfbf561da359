package models

// Courthouse is a court facility an employee can be assigned to
type Courthouse struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:200;not null;uniqueIndex" json:"name"`
}

// TableName specifies the table name
func (Courthouse) TableName() string {
	return "courthouses"
}

// Title is a job classification (clerk, bailiff, ...)
type Title struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:200;not null;uniqueIndex" json:"name"`
}

// TableName specifies the table name
func (Title) TableName() string {
	return "titles"
}

// TransferRequestType describes the kind of move requested (health, family, ...)
type TransferRequestType struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:200;not null;uniqueIndex" json:"name"`
}

// TableName specifies the table name
func (TransferRequestType) TableName() string {
	return "transfer_request_types"
}
