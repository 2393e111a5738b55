package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a shared vocabulary entry. Slugs are unique; approval upserts
// new categories on demand when a submission references an unknown slug.
type Category struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Slug      string    `json:"slug" db:"slug" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name" db:"name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// Tag is a shared vocabulary entry, same upsert-on-conflict semantics as
// Category.
type Tag struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Slug      string    `json:"slug" db:"slug" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name" db:"name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for the Tag model
func (Tag) TableName() string {
	return "tags"
}

// ResourceTag associates a published resource with a tag.
type ResourceTag struct {
	ResourceID uuid.UUID `json:"resource_id" db:"resource_id" gorm:"primaryKey;type:uuid"`
	TagID      uuid.UUID `json:"tag_id" db:"tag_id" gorm:"primaryKey;type:uuid"`
}

// TableName sets the table name for the ResourceTag model
func (ResourceTag) TableName() string {
	return "resource_tags"
}
