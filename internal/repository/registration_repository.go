package repository

import (
	"context"
	"fmt"
	"net/http"

	"github.com/noah-isme/campus-events-console/internal/models"
)

// RegistrationRepository wraps the backend registration endpoints.
type RegistrationRepository struct {
	client *APIClient
}

// NewRegistrationRepository constructs a registration repository.
func NewRegistrationRepository(client *APIClient) *RegistrationRepository {
	return &RegistrationRepository{client: client}
}

// ListByEvent returns the registrations of one event.
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID int64) ([]models.Registration, error) {
	var regs []models.Registration
	if err := r.client.FetchList(ctx, fmt.Sprintf("/staff/registrations/%d", eventID), nil, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}

// ListAll returns every registration joined with event and student details.
func (r *RegistrationRepository) ListAll(ctx context.Context) ([]models.StudentRegistration, error) {
	var regs []models.StudentRegistration
	if err := r.client.FetchList(ctx, "/registrations", nil, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}

// Register enrols a student. A duplicate registration is rejected by the backend with a 400.
func (r *RegistrationRepository) Register(ctx context.Context, req models.RegisterRequest) error {
	var ack models.MessageResult
	return r.client.Mutate(ctx, http.MethodPost, "/register", req, &ack)
}
