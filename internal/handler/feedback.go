package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepiq-api/internal/middleware"
	"github.com/yourusername/prepiq-api/internal/model"
	"github.com/yourusername/prepiq-api/internal/service"
)

type FeedbackHandler struct {
	feedback *service.FeedbackService
	drafts   *service.DraftService
}

func NewFeedbackHandler(feedback *service.FeedbackService, drafts *service.DraftService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, drafts: drafts}
}

type feedbackRequest struct {
	ResumeText string                  `json:"resumeText"`
	DraftID    string                  `json:"draftId"`
	Difficulty model.Difficulty        `json:"difficulty" binding:"required"`
	Transcript []model.TranscriptEntry `json:"transcript"`
}

// Generate handles POST /interview/feedback
// Grades the session transcript against the resume text or a stored draft
func (h *FeedbackHandler) Generate(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "difficulty and transcript are required"})
		return
	}

	if !model.ValidDifficulty(req.Difficulty) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "difficulty must be Easy, Medium or Hard"})
		return
	}
	for _, entry := range req.Transcript {
		if !model.ValidRole(entry.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "transcript role must be candidate or interviewer"})
			return
		}
	}

	resumeText := req.ResumeText
	if req.DraftID != "" {
		id, err := uuid.Parse(req.DraftID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draft ID"})
			return
		}
		resumeText, err = h.drafts.ResumeText(id, middleware.GetFirebaseUID(c))
		if err != nil {
			respondDraftError(c, err)
			return
		}
	}

	report, err := h.feedback.GenerateFeedback(c.Request.Context(), resumeText, req.Difficulty, req.Transcript)
	if err != nil {
		var failed *service.RequestFailedError
		if errors.As(err, &failed) {
			log.Error().Str("stage", failed.Stage).Err(failed.Cause).Msg(failed.LogString())
			c.JSON(http.StatusBadGateway, gin.H{"error": failed.Error()})
			return
		}
		log.Error().Err(err).Msg("Feedback generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate feedback report."})
		return
	}

	c.JSON(http.StatusOK, report)
}
