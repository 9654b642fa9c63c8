package dto

import "github.com/noah-isme/campus-events-console/internal/models"

// StudentIdentity is how the student app identifies the current student.
type StudentIdentity struct {
	CollegeID string `json:"college_id" validate:"required,max=64"`
	Name      string `json:"name" validate:"required,max=255"`
	Email     string `json:"email" validate:"required,email"`
}

// RegisterEventRequest registers the identified student for an event.
type RegisterEventRequest struct {
	StudentIdentity
}

// SubmitFeedbackRequest rates an attended event.
type SubmitFeedbackRequest struct {
	StudentIdentity
	EventID int64  `json:"event_id" validate:"required,gt=0"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"feedback_text" validate:"max=2000"`
}

// StudentWriteResponse acknowledges a student-side write.
type StudentWriteResponse struct {
	StudentID int64                 `json:"student_id"`
	EventID   int64                 `json:"event_id"`
	Mutation  models.MutationStatus `json:"mutation"`
}
