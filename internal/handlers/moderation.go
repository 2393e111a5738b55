package handlers

import (
	"net/http"
	"strconv"
	"time"

	"linkdir/internal/auth"
	"linkdir/internal/realtime"
	"linkdir/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ModerationHandler handles the admin review surface
type ModerationHandler struct {
	moderation  *services.ModerationService
	submissions *services.SubmissionsService
	authorizer  auth.Authorizer
	hub         *realtime.Hub
}

// NewModerationHandler creates a new moderation handler. hub may be nil.
func NewModerationHandler(moderation *services.ModerationService, submissions *services.SubmissionsService, authorizer auth.Authorizer, hub *realtime.Hub) *ModerationHandler {
	return &ModerationHandler{
		moderation:  moderation,
		submissions: submissions,
		authorizer:  authorizer,
		hub:         hub,
	}
}

// RequireAdmin guards read-only admin pages. The mutation endpoints run the
// gate again inside the service; this middleware only keeps dashboards
// private.
func (h *ModerationHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := h.authorizer.IsAdmin(c.Request.Context(), currentActor(c))
		if err != nil || !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "not authorized",
				"kind":  "not_authorized",
			})
			return
		}
		c.Next()
	}
}

// Approve handles POST /admin/submissions/:id/approve
func (h *ModerationHandler) Approve(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission id", "kind": "validation"})
		return
	}

	result, err := h.moderation.Approve(c.Request.Context(), submissionID, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(realtime.QueueEvent{
			Kind:         "approved",
			SubmissionID: submissionID.String(),
			At:           time.Now(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"resource_id": result.ResourceID,
		"slug":        result.Slug,
	})
}

// Reject handles POST /admin/submissions/:id/reject
func (h *ModerationHandler) Reject(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission id", "kind": "validation"})
		return
	}

	var body struct {
		Notes string `json:"notes"`
	}
	// Notes are optional; an empty body is fine.
	_ = c.ShouldBindJSON(&body)

	if err := h.moderation.Reject(c.Request.Context(), submissionID, currentActor(c), body.Notes); err != nil {
		respondError(c, err)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(realtime.QueueEvent{
			Kind:         "rejected",
			SubmissionID: submissionID.String(),
			At:           time.Now(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

// Queue handles GET /admin/queue
func (h *ModerationHandler) Queue(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	queue, total, err := h.submissions.PendingQueue(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": queue,
		"total":       total,
		"page":        page,
		"limit":       limit,
	})
}

// QueueLive handles GET /admin/queue/live by upgrading to a websocket.
func (h *ModerationHandler) QueueLive(c *gin.Context) {
	if h.hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live queue disabled"})
		return
	}
	h.hub.Serve(c.Writer, c.Request)
}
