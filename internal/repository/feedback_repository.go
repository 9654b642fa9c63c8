package repository

import (
	"context"
	"net/http"

	"github.com/noah-isme/campus-events-console/internal/models"
)

// FeedbackRepository wraps the backend feedback endpoints.
type FeedbackRepository struct {
	client *APIClient
}

// NewFeedbackRepository constructs a feedback repository.
func NewFeedbackRepository(client *APIClient) *FeedbackRepository {
	return &FeedbackRepository{client: client}
}

// List returns all feedback with event and student details.
func (r *FeedbackRepository) List(ctx context.Context) ([]models.FeedbackEntry, error) {
	var entries []models.FeedbackEntry
	if err := r.client.FetchList(ctx, "/staff/feedback", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Submit records feedback for an event.
func (r *FeedbackRepository) Submit(ctx context.Context, req models.SubmitFeedbackRequest) error {
	var ack models.MessageResult
	return r.client.Mutate(ctx, http.MethodPost, "/feedback", req, &ack)
}
