package repository

import (
	"context"
	"fmt"
	"net/http"

	"github.com/noah-isme/campus-events-console/internal/models"
)

// EventRepository wraps the backend event endpoints.
type EventRepository struct {
	client *APIClient
}

// NewEventRepository constructs an event repository.
func NewEventRepository(client *APIClient) *EventRepository {
	return &EventRepository{client: client}
}

// List returns every event ordered by date, as the backend sorts them.
func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := r.client.FetchList(ctx, "/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListWithCounts returns every event with its registration count.
func (r *EventRepository) ListWithCounts(ctx context.Context) ([]models.StaffEvent, error) {
	var events []models.StaffEvent
	if err := r.client.FetchList(ctx, "/staff/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

type createEventPayload struct {
	CollegeID string           `json:"college_id"`
	Name      string           `json:"name"`
	Type      models.EventType `json:"type"`
	Date      string           `json:"date"`
}

// Create inserts a new event and returns the backend-assigned id.
func (r *EventRepository) Create(ctx context.Context, event models.Event) (*models.CreateEventResult, error) {
	payload := createEventPayload{CollegeID: event.CollegeID, Name: event.Name, Type: event.Type, Date: event.Date}
	var result models.CreateEventResult
	if err := r.client.Mutate(ctx, http.MethodPost, "/events", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes an event together with its registrations, attendance and feedback.
func (r *EventRepository) Delete(ctx context.Context, eventID int64) error {
	return r.client.Mutate(ctx, http.MethodDelete, fmt.Sprintf("/events/%d", eventID), nil, nil)
}
