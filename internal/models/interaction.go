package models

import (
	"time"

	"github.com/google/uuid"
)

// Vote is a toggle relation: at most one row per (user, resource). Presence
// means the vote is active; there is no separate on/off column.
type Vote struct {
	UserID     uuid.UUID `json:"user_id" db:"user_id" gorm:"primaryKey;type:uuid"`
	ResourceID uuid.UUID `json:"resource_id" db:"resource_id" gorm:"primaryKey;type:uuid"`
	CreatedAt  time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for the Vote model
func (Vote) TableName() string {
	return "votes"
}

// Favorite is the save-for-later toggle relation, keyed like Vote.
type Favorite struct {
	UserID     uuid.UUID `json:"user_id" db:"user_id" gorm:"primaryKey;type:uuid"`
	ResourceID uuid.UUID `json:"resource_id" db:"resource_id" gorm:"primaryKey;type:uuid"`
	CreatedAt  time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for the Favorite model
func (Favorite) TableName() string {
	return "favorites"
}

// Comment is a user comment on a published resource. Moderation soft-deletes
// rather than removing rows.
type Comment struct {
	ID         uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID     uuid.UUID `json:"user_id" db:"user_id" gorm:"type:uuid;index;not null"`
	ResourceID uuid.UUID `json:"resource_id" db:"resource_id" gorm:"type:uuid;index;not null"`
	Body       string    `json:"body" db:"body" gorm:"type:text;not null"`
	IsDeleted  bool      `json:"is_deleted" db:"is_deleted" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for the Comment model
func (Comment) TableName() string {
	return "comments"
}

// CommentFlag is the report-a-comment toggle relation.
type CommentFlag struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id" gorm:"primaryKey;type:uuid"`
	CommentID uuid.UUID `json:"comment_id" db:"comment_id" gorm:"primaryKey;type:uuid"`
	Reason    string    `json:"reason" db:"reason"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for the CommentFlag model
func (CommentFlag) TableName() string {
	return "comment_flags"
}

// Click is an append-only log of outbound redirects, used for analytics and
// rate limiting. It is not a toggle relation.
type Click struct {
	ID         uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ResourceID uuid.UUID `json:"resource_id" db:"resource_id" gorm:"type:uuid;index;not null"`
	IPHash     string    `json:"-" db:"ip_hash"`
	CreatedAt  time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for the Click model
func (Click) TableName() string {
	return "clicks"
}
