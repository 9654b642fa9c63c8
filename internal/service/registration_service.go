package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-events-console/internal/dto"
	"github.com/noah-isme/campus-events-console/internal/models"
	appErrors "github.com/noah-isme/campus-events-console/pkg/errors"
)

type registrationRepository interface {
	ListAll(ctx context.Context) ([]models.StudentRegistration, error)
	Register(ctx context.Context, req models.RegisterRequest) error
}

// RegistrationService handles student registrations from the student app.
type RegistrationService struct {
	registrations registrationRepository
	students      studentResolver
	coordinator   *MutationCoordinator
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewRegistrationService constructs the registration service.
func NewRegistrationService(registrations registrationRepository, students studentResolver, coordinator *MutationCoordinator, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		registrations: registrations,
		students:      students,
		coordinator:   coordinator,
		validator:     validate,
		logger:        logger,
	}
}

// Register resolves the student and registers them for eventID.
// The backend rejects duplicate registrations with a validation error.
func (s *RegistrationService) Register(ctx context.Context, eventID int64, req dto.RegisterEventRequest) (int64, models.MutationStatus, error) {
	if eventID <= 0 {
		return 0, models.MutationStatus{}, appErrors.NewValidationError("event_id", "must be greater than 0")
	}
	if err := s.validator.Struct(req); err != nil {
		return 0, models.MutationStatus{}, validationError(err)
	}

	key := registrationKey(eventID, req.Email)
	var studentID int64
	err := s.coordinator.Run(ctx, key, "register", func(ctx context.Context) error {
		student, err := resolveStudent(ctx, s.students, req.StudentIdentity)
		if err != nil {
			return err
		}
		studentID = student.ID
		return s.registrations.Register(ctx, models.RegisterRequest{StudentID: student.ID, EventID: eventID})
	})
	return studentID, s.coordinator.Status(key), err
}

// List returns every registration with event details.
func (s *RegistrationService) List(ctx context.Context) ([]models.StudentRegistration, error) {
	return s.registrations.ListAll(ctx)
}
