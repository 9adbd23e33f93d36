package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepiq-api/internal/middleware"
	"github.com/yourusername/prepiq-api/internal/repository"
	"github.com/yourusername/prepiq-api/internal/service"
)

type DraftHandler struct {
	drafts *service.DraftService
}

func NewDraftHandler(drafts *service.DraftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// Create handles POST /drafts
// The body is optional; {"text": "..."} seeds the draft
func (h *DraftHandler) Create(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	view := h.drafts.Create(middleware.GetFirebaseUID(c), req.Text)
	c.JSON(http.StatusCreated, view)
}

// Get handles GET /drafts/:id
func (h *DraftHandler) Get(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	view, err := h.drafts.Get(id, middleware.GetFirebaseUID(c))
	if err != nil {
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetText handles PUT /drafts/:id/text
func (h *DraftHandler) SetText(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	var req struct {
		Text *string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	view, err := h.drafts.SetText(id, middleware.GetFirebaseUID(c), *req.Text)
	if err != nil {
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Upload handles POST /drafts/:id/upload
// Extraction runs in the background; poll GET /drafts/:id for the result
func (h *DraftHandler) Upload(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	turn, err := h.drafts.StartImport(id, middleware.GetFirebaseUID(c), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondDraftError(c, err)
		return
	}

	log.Info().
		Str("draftId", id.String()).
		Str("filename", header.Filename).
		Uint64("turn", turn).
		Msg("Resume import started")

	c.JSON(http.StatusAccepted, gin.H{"turn": turn})
}

// ClearText handles DELETE /drafts/:id/text
func (h *DraftHandler) ClearText(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	view, err := h.drafts.Clear(id, middleware.GetFirebaseUID(c))
	if err != nil {
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Delete handles DELETE /drafts/:id
func (h *DraftHandler) Delete(c *gin.Context) {
	id, ok := draftID(c)
	if !ok {
		return
	}

	if err := h.drafts.Delete(id, middleware.GetFirebaseUID(c)); err != nil {
		respondDraftError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ── helpers ───────────────────────────────────────────

// draftID parses the :id param, answering 400 when it is not a UUID
func draftID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draft ID"})
		return uuid.Nil, false
	}
	return id, true
}

func respondDraftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrDraftNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Draft not found"})
	case errors.Is(err, service.ErrImportInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "Resume import is still running. Please wait a moment."})
	case errors.Is(err, service.ErrFileTooLarge), errors.Is(err, service.ErrPlaceholderContent):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": service.UserMessage(err)})
	default:
		log.Error().Err(err).Msg("Draft operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": service.UserMessage(err)})
	}
}
