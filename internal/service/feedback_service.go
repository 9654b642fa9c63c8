package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-events-console/internal/dto"
	"github.com/noah-isme/campus-events-console/internal/models"
)

type feedbackRepository interface {
	List(ctx context.Context) ([]models.FeedbackEntry, error)
	Submit(ctx context.Context, req models.SubmitFeedbackRequest) error
}

// FeedbackService handles feedback submission and the staff feedback overview.
type FeedbackService struct {
	feedback    feedbackRepository
	students    studentResolver
	coordinator *MutationCoordinator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewFeedbackService constructs the feedback service.
func NewFeedbackService(feedback feedbackRepository, students studentResolver, coordinator *MutationCoordinator, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{feedback: feedback, students: students, coordinator: coordinator, validator: validate, logger: logger}
}

// Submit validates the rating before any network call, resolves the student
// and submits the feedback.
func (s *FeedbackService) Submit(ctx context.Context, req dto.SubmitFeedbackRequest) (int64, models.MutationStatus, error) {
	req.Comment = strings.TrimSpace(req.Comment)
	if err := s.validator.Struct(req); err != nil {
		return 0, models.MutationStatus{}, validationError(err)
	}

	key := feedbackKey(req.EventID, req.Email)
	var studentID int64
	err := s.coordinator.Run(ctx, key, "submit_feedback", func(ctx context.Context) error {
		student, err := resolveStudent(ctx, s.students, req.StudentIdentity)
		if err != nil {
			return err
		}
		studentID = student.ID
		return s.feedback.Submit(ctx, models.SubmitFeedbackRequest{
			StudentID: student.ID,
			EventID:   req.EventID,
			Rating:    req.Rating,
			Comment:   req.Comment,
		})
	})
	return studentID, s.coordinator.Status(key), err
}

// Overview returns every feedback entry with derived statistics.
func (s *FeedbackService) Overview(ctx context.Context) (dto.FeedbackOverview, error) {
	entries, err := s.feedback.List(ctx)
	if err != nil {
		return dto.FeedbackOverview{}, err
	}
	if entries == nil {
		entries = []models.FeedbackEntry{}
	}
	return dto.FeedbackOverview{Entries: entries, Stats: FeedbackStatistics(entries)}, nil
}
