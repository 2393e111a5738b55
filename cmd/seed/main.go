package main

import (
	"log"
	"os"
	"strings"

	"linkdir/internal/database"
	"linkdir/internal/models"

	"github.com/joho/godotenv"
	"gorm.io/gorm/clause"
)

var categories = []models.Category{
	{Slug: "developer-tools", Name: "Developer Tools"},
	{Slug: "design", Name: "Design"},
	{Slug: "productivity", Name: "Productivity"},
	{Slug: "marketing", Name: "Marketing"},
	{Slug: "analytics", Name: "Analytics"},
	{Slug: "ai", Name: "AI"},
	{Slug: "open-source", Name: "Open Source"},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := database.Connect(database.LoadConfig()); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	db := database.DB

	for _, category := range categories {
		if err := db.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoNothing: true,
			}).
			Create(&category).Error; err != nil {
			log.Fatal("Failed to seed category:", err)
		}
	}
	log.Printf("Seeded %d categories", len(categories))

	// Comma-separated list of reviewer addresses to place on the allow list.
	for _, email := range strings.Split(os.Getenv("SEED_ADMIN_EMAILS"), ",") {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}
		if err := db.
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.AdminEmail{Email: email}).Error; err != nil {
			log.Fatal("Failed to seed admin email:", err)
		}
		log.Printf("Allow-listed %s", email)
	}

	log.Println("Seed complete")
}
