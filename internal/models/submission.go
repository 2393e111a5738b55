package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Submission statuses. Transitions are one-way: pending -> approved or
// pending -> rejected, nothing ever leaves a terminal state.
const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// Pricing tiers a submitter can declare for a resource.
const (
	PricingUnknown  = "unknown"
	PricingFree     = "free"
	PricingFreemium = "freemium"
	PricingTrial    = "trial"
	PricingPaid     = "paid"
)

// Submission represents a user-proposed catalog entry awaiting review.
// Rows are never hard-deleted; terminal states are kept for audit.
type Submission struct {
	ID          uuid.UUID  `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SubmitterID *uuid.UUID `json:"submitter_id" db:"submitter_id" gorm:"type:uuid;index"`
	Email       string     `json:"email" db:"email"` // contact address for guest submissions
	Title       string     `json:"title" db:"title" gorm:"not null"`
	URL         string     `json:"url" db:"url" gorm:"not null"`
	// Lowercased host with any www. prefix stripped, written at intake.
	// Duplicate checks match on it exactly.
	HostKey     string     `json:"-" db:"host_key" gorm:"index"`
	Description string     `json:"description" db:"description" gorm:"type:text"`
	LogoURL     string     `json:"logo_url" db:"logo_url"`
	Pricing     string     `json:"pricing" db:"pricing" gorm:"default:unknown"`

	// Category may arrive as a free-text slug; it is resolved against the
	// category vocabulary at approval time, not at intake.
	CategoryID   *uuid.UUID     `json:"category_id" db:"category_id" gorm:"type:uuid"`
	CategorySlug string         `json:"category_slug" db:"category_slug"`
	TagSlugs     pq.StringArray `json:"tag_slugs" db:"tag_slugs" gorm:"type:text[]"`

	Status     string     `json:"status" db:"status" gorm:"default:pending;index"`
	Notes      string     `json:"notes" db:"notes" gorm:"type:text"`
	ReviewedBy *uuid.UUID `json:"reviewed_by" db:"reviewed_by" gorm:"type:uuid"`
	ReviewedAt *time.Time `json:"reviewed_at" db:"reviewed_at"`

	// One-way fingerprints for rate limiting and abuse analysis. Never used
	// as identity.
	IPHash string `json:"-" db:"ip_hash"`
	UAHash string `json:"-" db:"ua_hash"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for the Submission model
func (Submission) TableName() string {
	return "submissions"
}
