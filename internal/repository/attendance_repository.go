package repository

import (
	"context"
	"fmt"
	"net/http"

	"github.com/noah-isme/campus-events-console/internal/models"
)

// AttendanceRepository wraps the backend attendance endpoints.
type AttendanceRepository struct {
	client *APIClient
}

// NewAttendanceRepository constructs an attendance repository.
func NewAttendanceRepository(client *APIClient) *AttendanceRepository {
	return &AttendanceRepository{client: client}
}

// ListByEvent returns the attendance records of one event.
func (r *AttendanceRepository) ListByEvent(ctx context.Context, eventID int64) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	if err := r.client.FetchList(ctx, fmt.Sprintf("/staff/attendance/%d", eventID), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListAll returns every attendance record, newest first.
func (r *AttendanceRepository) ListAll(ctx context.Context) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	if err := r.client.FetchList(ctx, "/attendance", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Mark upserts the attendance status of a student for an event.
func (r *AttendanceRepository) Mark(ctx context.Context, req models.MarkAttendanceRequest) error {
	var ack models.MessageResult
	return r.client.Mutate(ctx, http.MethodPost, "/staff/attendance", req, &ack)
}
