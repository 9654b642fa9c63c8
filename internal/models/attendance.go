package models

import "encoding/json"

// AttendanceStatus is the marked state of a student for an event.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	// AttendanceStatusUnmarked means no record exists. It is never sent to the backend.
	AttendanceStatusUnmarked AttendanceStatus = "unmarked"
)

// Markable returns true for statuses staff may submit.
func (s AttendanceStatus) Markable() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusAbsent
}

// AttendanceRecord mirrors rows of GET /staff/attendance/{eventId} and GET /attendance.
type AttendanceRecord struct {
	ID         int64            `json:"att_id"`
	StudentID  int64            `json:"student_id"`
	EventID    int64            `json:"event_id"`
	Status     AttendanceStatus `json:"status"`
	MarkedDate string           `json:"marked_date,omitempty"`

	// Student columns joined by the staff listing.
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	CollegeID string `json:"college_id,omitempty"`

	// Event columns joined by the student listing.
	EventName string    `json:"event_name,omitempty"`
	EventType EventType `json:"event_type,omitempty"`
	EventDate string    `json:"event_date,omitempty"`
}

// UnmarshalJSON accepts both id/date spellings the backend has shipped.
func (r *AttendanceRecord) UnmarshalJSON(data []byte) error {
	type alias AttendanceRecord
	aux := struct {
		*alias
		AttendanceID   *int64  `json:"attendance_id"`
		AttendanceDate *string `json:"attendance_date"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.ID == 0 && aux.AttendanceID != nil {
		r.ID = *aux.AttendanceID
	}
	if r.MarkedDate == "" && aux.AttendanceDate != nil {
		r.MarkedDate = *aux.AttendanceDate
	}
	return nil
}

// MarkAttendanceRequest is the POST /staff/attendance payload.
type MarkAttendanceRequest struct {
	StudentID int64            `json:"student_id"`
	EventID   int64            `json:"event_id"`
	Status    AttendanceStatus `json:"status"`
}

// AttendanceFetch is the outcome of one per-event attendance sub-fetch.
// A non-nil Err marks the fetch as failed.
type AttendanceFetch struct {
	Records []AttendanceRecord
	Err     error
}

// AttendanceRosterEntry joins a registration with its attendance state and the
// in-flight state of any mark-attendance action for that student.
type AttendanceRosterEntry struct {
	Registration
	Status     AttendanceStatus `json:"status"`
	MarkedDate string           `json:"marked_date,omitempty"`
	Mutation   MutationStatus   `json:"mutation"`
}
