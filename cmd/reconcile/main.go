package main

import (
	"log"
	"time"

	"linkdir/internal/database"
	"linkdir/internal/models"

	"github.com/joho/godotenv"
)

// Approval creates the resource first and flips the submission status second.
// A crash between the two steps leaves a published resource whose submission
// still reads pending. This job finds those rows and completes the flip, so
// the queue never shows work that is already done.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := database.Connect(database.LoadConfig()); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	db := database.DB

	var stranded []models.Resource
	err := db.
		Joins("JOIN submissions ON submissions.id = resources.submission_id").
		Where("resources.is_approved = ? AND submissions.status = ?", true, models.SubmissionPending).
		Find(&stranded).Error
	if err != nil {
		log.Fatal("Failed to scan for stranded approvals:", err)
	}

	if len(stranded) == 0 {
		log.Println("No stranded approvals found")
		return
	}

	repaired := 0
	for _, resource := range stranded {
		now := time.Now()
		flip := db.
			Model(&models.Submission{}).
			Where("id = ? AND status = ?", resource.SubmissionID, models.SubmissionPending).
			Updates(map[string]interface{}{
				"status":      models.SubmissionApproved,
				"reviewed_at": now,
			})
		if flip.Error != nil {
			log.Printf("Failed to repair submission %s for resource %s: %v", resource.SubmissionID, resource.ID, flip.Error)
			continue
		}
		if flip.RowsAffected == 0 {
			// A reviewer got there between the scan and the flip.
			continue
		}
		log.Printf("Repaired submission %s (resource %s, slug %s)", resource.SubmissionID, resource.ID, resource.Slug)
		repaired++
	}

	log.Printf("Reconcile complete: %d repaired of %d stranded", repaired, len(stranded))
}
