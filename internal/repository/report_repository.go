package repository

import (
	"context"

	"github.com/noah-isme/campus-events-console/internal/models"
)

// ReportRepository wraps the backend report endpoints.
type ReportRepository struct {
	client *APIClient
}

// NewReportRepository constructs a report repository.
func NewReportRepository(client *APIClient) *ReportRepository {
	return &ReportRepository{client: client}
}

// Registrations returns the registration count per event.
func (r *ReportRepository) Registrations(ctx context.Context) ([]models.RegistrationReportRow, error) {
	var rows []models.RegistrationReportRow
	if err := r.client.FetchList(ctx, "/reports/registrations", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// TopStudents returns the most active students by attended events.
func (r *ReportRepository) TopStudents(ctx context.Context) ([]models.TopStudentRow, error) {
	var rows []models.TopStudentRow
	if err := r.client.FetchList(ctx, "/reports/top_students", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
