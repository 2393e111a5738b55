package handlers

import (
	"net/http"
	"strconv"

	"linkdir/internal/listings"
	"linkdir/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/russross/blackfriday/v2"
)

// ResourcesHandler serves the public catalog
type ResourcesHandler struct {
	listings *listings.Service
}

// NewResourcesHandler creates a new resources handler
func NewResourcesHandler(listings *listings.Service) *ResourcesHandler {
	return &ResourcesHandler{listings: listings}
}

// List handles GET /api/resources
func (h *ResourcesHandler) List(c *gin.Context) {
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

	result, err := h.listings.Resources(
		c.Request.Context(),
		c.Query("category"),
		c.Query("tag"),
		limit,
		offset,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Detail handles GET /api/resources/:slug
func (h *ResourcesHandler) Detail(c *gin.Context) {
	entry, err := h.listings.ResourceBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "kind": "not_found"})
		return
	}

	// Descriptions are markdown; render them for the detail page.
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags,
	})
	descriptionHTML := blackfriday.Run(
		[]byte(entry.Description),
		blackfriday.WithRenderer(renderer),
		blackfriday.WithExtensions(blackfriday.CommonExtensions),
	)

	c.JSON(http.StatusOK, gin.H{
		"resource":         entry,
		"description_html": string(descriptionHTML),
	})
}

// Redirect handles GET /go/:slug — logs the click and forwards to the
// resource URL.
func (h *ResourcesHandler) Redirect(c *gin.Context) {
	target, err := h.listings.RecordClick(
		c.Request.Context(),
		c.Param("slug"),
		services.Fingerprint(c.ClientIP()),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	if target == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "kind": "not_found"})
		return
	}

	c.Redirect(http.StatusFound, target)
}
