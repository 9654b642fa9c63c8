package dto

import "github.com/noah-isme/campus-events-console/internal/models"

// FeedbackOverview is the staff feedback screen.
type FeedbackOverview struct {
	Entries []models.FeedbackEntry `json:"entries"`
	Stats   models.FeedbackStats   `json:"stats"`
}
