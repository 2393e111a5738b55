package handlers

import (
	"log"
	"net/http"
	"time"

	"linkdir/internal/metadata"
	"linkdir/internal/realtime"
	"linkdir/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SubmissionsHandler handles HTTP requests for the intake flow
type SubmissionsHandler struct {
	submissions *services.SubmissionsService
	dedupe      *services.DedupeService
	extractor   *metadata.Extractor
	hub         *realtime.Hub
}

// NewSubmissionsHandler creates a new submissions handler. hub may be nil.
func NewSubmissionsHandler(submissions *services.SubmissionsService, dedupe *services.DedupeService, extractor *metadata.Extractor, hub *realtime.Hub) *SubmissionsHandler {
	return &SubmissionsHandler{
		submissions: submissions,
		dedupe:      dedupe,
		extractor:   extractor,
		hub:         hub,
	}
}

// Submit handles POST /api/submissions
func (h *SubmissionsHandler) Submit(c *gin.Context) {
	var candidate services.SubmissionCandidate
	if err := c.ShouldBindJSON(&candidate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "kind": "validation"})
		return
	}

	submission, err := h.submissions.Submit(
		c.Request.Context(),
		candidate,
		currentActor(c),
		c.ClientIP(),
		c.Request.UserAgent(),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	// A honeypot "success" has no persisted row and nothing to announce.
	if h.hub != nil && submission.ID != uuid.Nil {
		h.hub.Broadcast(realtime.QueueEvent{
			Kind:         "submitted",
			SubmissionID: submission.ID.String(),
			Title:        submission.Title,
			At:           time.Now(),
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":     submission.ID,
		"status": submission.Status,
	})
}

// CheckDuplicate handles GET /api/submissions/check?url=
// The answer is advisory: it hints the submitter, it never blocks intake.
func (h *SubmissionsHandler) CheckDuplicate(c *gin.Context) {
	raw := c.Query("url")

	match, err := h.dedupe.FindDuplicate(c.Request.Context(), raw)
	if err != nil {
		log.Printf("Duplicate check failed for %q: %v", raw, err)
		c.JSON(http.StatusOK, gin.H{"duplicate": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"duplicate": match})
}

// Prefill handles GET /api/submissions/prefill?url=
func (h *SubmissionsHandler) Prefill(c *gin.Context) {
	raw := c.Query("url")
	normalized, err := services.NormalizeURL(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid URL", "kind": "validation"})
		return
	}

	suggestion, err := h.extractor.Extract(c.Request.Context(), normalized.String())
	if err != nil {
		log.Printf("Prefill fetch failed for %q: %v", raw, err)
		c.JSON(http.StatusOK, gin.H{"suggestion": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestion": suggestion})
}
