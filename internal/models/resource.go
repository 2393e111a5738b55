package models

import (
	"time"

	"github.com/google/uuid"
)

// Resource represents a published, publicly browsable catalog entry. Resources
// are created exactly once, by approving a pending Submission, and the slug is
// immutable after that.
type Resource struct {
	ID          uuid.UUID  `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Slug        string     `json:"slug" db:"slug" gorm:"uniqueIndex;not null"`
	Title       string     `json:"title" db:"title" gorm:"not null"`
	Description string     `json:"description" db:"description" gorm:"type:text"`
	URL         string     `json:"url" db:"url" gorm:"not null"`
	// Lowercased host with any www. prefix stripped, written at approval
	// time. Duplicate checks match on it exactly.
	HostKey string `json:"-" db:"host_key" gorm:"index"`
	LogoURL string `json:"logo_url" db:"logo_url"`
	Pricing     string     `json:"pricing" db:"pricing" gorm:"default:unknown"`
	CategoryID  *uuid.UUID `json:"category_id" db:"category_id" gorm:"type:uuid;index"`
	IsApproved  bool       `json:"is_approved" db:"is_approved" gorm:"default:false;index"`

	// Provenance link back to the submission this resource was created from.
	// cmd/reconcile uses it to repair a crash between resource insert and
	// submission status flip.
	SubmissionID *uuid.UUID `json:"submission_id" db:"submission_id" gorm:"type:uuid;index"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// TableName sets the table name for the Resource model
func (Resource) TableName() string {
	return "resources"
}
