package dto

import "github.com/noah-isme/campus-events-console/internal/models"

// CreateEventRequest is submitted by the create-event form.
type CreateEventRequest struct {
	CollegeID string `json:"college_id" validate:"required,max=64"`
	Name      string `json:"name" validate:"required,max=255"`
	Type      string `json:"type" validate:"required,event_type"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
}

// EventListQuery filters the student event list.
type EventListQuery struct {
	Type string `form:"type"`
}

// CreateEventResponse acknowledges a created event.
type CreateEventResponse struct {
	EventID  int64                 `json:"event_id"`
	Message  string                `json:"message"`
	Mutation models.MutationStatus `json:"mutation"`
}

// DeleteEventResponse acknowledges a deleted event.
type DeleteEventResponse struct {
	EventID  int64                 `json:"event_id"`
	Mutation models.MutationStatus `json:"mutation"`
}
