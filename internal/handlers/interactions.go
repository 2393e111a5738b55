package handlers

import (
	"net/http"

	"linkdir/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InteractionsHandler handles vote/save/flag toggles
type InteractionsHandler struct {
	interactions *services.InteractionsService
}

// NewInteractionsHandler creates a new interactions handler
func NewInteractionsHandler(interactions *services.InteractionsService) *InteractionsHandler {
	return &InteractionsHandler{interactions: interactions}
}

// ToggleVote handles POST /api/interactions/resources/:id/vote
func (h *InteractionsHandler) ToggleVote(c *gin.Context) {
	h.toggle(c, services.ToggleVote)
}

// ToggleFavorite handles POST /api/interactions/resources/:id/favorite
func (h *InteractionsHandler) ToggleFavorite(c *gin.Context) {
	h.toggle(c, services.ToggleFavorite)
}

// ToggleFlag handles POST /api/interactions/comments/:id/flag
func (h *InteractionsHandler) ToggleFlag(c *gin.Context) {
	h.toggle(c, services.ToggleFlag)
}

func (h *InteractionsHandler) toggle(c *gin.Context, kind string) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id", "kind": "validation"})
		return
	}

	result, err := h.interactions.Toggle(c.Request.Context(), currentActor(c), targetID, kind)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
