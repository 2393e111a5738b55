// Package models contains all data models for the linkdir application
package models

import (
	"gorm.io/gorm"
)

// AllModels returns a slice of all model types for database migrations
func AllModels() []interface{} {
	return []interface{}{
		&Profile{},
		&AdminEmail{},
		&Category{},
		&Tag{},
		&Submission{},
		&Resource{},
		&ResourceTag{},
		&Vote{},
		&Favorite{},
		&Comment{},
		&CommentFlag{},
		&Click{},
	}
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
