package service

import (
	"context"
	"strings"

	"github.com/noah-isme/campus-events-console/internal/dto"
	"github.com/noah-isme/campus-events-console/internal/models"
)

type studentResolver interface {
	FindOrCreate(ctx context.Context, req models.FindOrCreateStudentRequest) (*models.Student, error)
}

func resolveStudent(ctx context.Context, students studentResolver, id dto.StudentIdentity) (*models.Student, error) {
	return students.FindOrCreate(ctx, models.FindOrCreateStudentRequest{
		CollegeID: strings.TrimSpace(id.CollegeID),
		Name:      strings.TrimSpace(id.Name),
		Email:     strings.ToLower(strings.TrimSpace(id.Email)),
	})
}
