package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile mirrors the identity issued by the external auth provider. It
// deliberately carries no role bit: admin status comes only from the
// admin_emails allow-list.
type Profile struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid"`
	Email       string    `json:"email" db:"email" gorm:"uniqueIndex;not null"`
	Handle      string    `json:"handle" db:"handle" gorm:"uniqueIndex"`
	DisplayName string    `json:"display_name" db:"display_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the Profile model
func (Profile) TableName() string {
	return "profiles"
}

// AdminEmail is the moderation allow-list. An account may perform moderation
// actions iff its email appears here.
type AdminEmail struct {
	Email     string    `json:"email" db:"email" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for the AdminEmail model
func (AdminEmail) TableName() string {
	return "admin_emails"
}
