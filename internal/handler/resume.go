package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepiq-api/internal/model"
	"github.com/yourusername/prepiq-api/internal/service"
)

type ResumeHandler struct {
	extractor *service.Extractor
}

func NewResumeHandler(extractor *service.Extractor) *ResumeHandler {
	return &ResumeHandler{extractor: extractor}
}

// Extract handles POST /resume/extract
// Accepts a resume file via multipart form and returns its text plus detected skills
func (h *ResumeHandler) Extract(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	ext, err := h.extractor.Extract(c.Request.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		logExtractionError(err, header.Filename)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": service.UserMessage(err)})
		return
	}

	log.Info().
		Str("filename", header.Filename).
		Str("format", ext.Format).
		Int("pages", ext.Pages).
		Bool("placeholder", ext.Placeholder).
		Msg("Resume text extracted")

	c.JSON(http.StatusOK, gin.H{
		"extraction": ext,
		"skills":     skillsFor(ext),
	})
}

// Skills handles POST /resume/skills
func (h *ResumeHandler) Skills(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"skills": service.DetectSkills(req.Text)})
}

// skillsFor never reads skills out of placeholder text
func skillsFor(ext *model.Extraction) []string {
	if ext.Placeholder {
		return []string{}
	}
	return service.DetectSkills(ext.Text)
}

func logExtractionError(err error, fileName string) {
	event := log.Warn()
	if errors.Is(err, service.ErrReadFailed) {
		event = log.Error()
	}
	event.Err(err).Str("filename", fileName).Msg("Resume extraction failed")
}
