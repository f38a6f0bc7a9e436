package model

import "time"

// DefaultRole is assigned to accounts created through registration.
const DefaultRole = "User"

// User represents a registered surveyor account.
type User struct {
	ID           uint      `json:"user_id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FirstName    string    `json:"first_name" gorm:"size:255;not null"`
	LastName     string    `json:"last_name" gorm:"size:255;not null"`
	Sex          string    `json:"sex" gorm:"size:10;not null"`
	ContactNo    string    `json:"contact_no" gorm:"size:50;not null"`
	Role         string    `json:"user_type" gorm:"size:50;not null;default:'User'"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	Areas []Area `json:"areas,omitempty" gorm:"foreignKey:UserID"`
}
