package services

import (
	"os"
	"testing"

	"linkdir/internal/database"

	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Set test environment variables
	os.Setenv("DB_HOST", "localhost")
	os.Setenv("DB_PORT", "5432")
	os.Setenv("DB_USER", "postgres")
	os.Setenv("DB_PASSWORD", "")
	os.Setenv("DB_NAME", "linkdir_test")
	os.Setenv("DB_SSLMODE", "disable")

	// Load test database configuration
	config := database.LoadConfig()

	// Connect to test database
	err := database.Connect(config)
	if err != nil {
		t.Skipf("Skipping test - PostgreSQL test database not available: %v", err)
	}

	db := database.DB

	// Run migrations to ensure schema is up to date
	if err := database.Migrate(); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	// Clean up any existing test data
	db.Exec("DELETE FROM resource_tags")
	db.Exec("DELETE FROM votes")
	db.Exec("DELETE FROM favorites")
	db.Exec("DELETE FROM comment_flags")
	db.Exec("DELETE FROM comments")
	db.Exec("DELETE FROM clicks")
	db.Exec("DELETE FROM resources")
	db.Exec("DELETE FROM submissions")
	db.Exec("DELETE FROM tags")
	db.Exec("DELETE FROM categories")
	db.Exec("DELETE FROM admin_emails")
	db.Exec("DELETE FROM profiles")

	return db
}
