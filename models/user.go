package models

import (
	"time"
)

// User is a registered court employee. RegistrationNumber is the login key.
type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RegistrationNumber int    `gorm:"uniqueIndex;not null" json:"registration_number"`
	NationalID         string `gorm:"size:11;not null" json:"national_id"`
	Name               string `gorm:"not null" json:"name"`
	Surname            string `gorm:"not null" json:"surname"`
	Email              string `gorm:"not null" json:"email"`
	Phone              string `json:"phone"`
	TitleID            uint   `gorm:"index;not null" json:"title_id"`
	ActiveCourthouseID uint   `gorm:"index;not null" json:"active_courthouse_id"`
	PasswordHash       string `gorm:"not null" json:"-"`
}

// FullName returns name and surname joined for display and mail salutations
func (u *User) FullName() string {
	return u.Name + " " + u.Surname
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
