package dto

import "github.com/noah-isme/campus-events-console/internal/models"

// MarkAttendanceRequest marks one registered student.
type MarkAttendanceRequest struct {
	StudentID int64  `json:"student_id" validate:"required,gt=0"`
	Status    string `json:"status" validate:"required,oneof=present absent"`
}

// MarkAttendanceResponse reports the settled mutation for the student.
type MarkAttendanceResponse struct {
	EventID   int64                   `json:"event_id"`
	StudentID int64                   `json:"student_id"`
	Status    models.AttendanceStatus `json:"status"`
	Mutation  models.MutationStatus   `json:"mutation"`
}
