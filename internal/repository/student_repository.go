package repository

import (
	"context"
	"net/http"

	"github.com/noah-isme/campus-events-console/internal/models"
)

// StudentRepository resolves student identities on the backend.
type StudentRepository struct {
	client *APIClient
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(client *APIClient) *StudentRepository {
	return &StudentRepository{client: client}
}

// FindOrCreate returns the student matching the email, creating one if needed.
func (r *StudentRepository) FindOrCreate(ctx context.Context, req models.FindOrCreateStudentRequest) (*models.Student, error) {
	var student models.Student
	if err := r.client.Mutate(ctx, http.MethodPost, "/students/find-or-create", req, &student); err != nil {
		return nil, err
	}
	return &student, nil
}
