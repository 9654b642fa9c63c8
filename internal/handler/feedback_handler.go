package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-events-console/internal/dto"
	"github.com/noah-isme/campus-events-console/pkg/response"
)

type feedbackOverviewService interface {
	Overview(ctx context.Context) (dto.FeedbackOverview, error)
}

// FeedbackHandler serves the staff feedback screen.
type FeedbackHandler struct {
	service feedbackOverviewService
}

// NewFeedbackHandler constructs the handler.
func NewFeedbackHandler(service feedbackOverviewService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// Overview godoc
// @Summary Feedback entries with rating statistics
// @Tags Staff
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /staff/feedback [get]
func (h *FeedbackHandler) Overview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview)
}
