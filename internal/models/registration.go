package models

// Registration mirrors a row of GET /staff/registrations/{eventId}.
type Registration struct {
	ID               int64  `json:"reg_id"`
	StudentID        int64  `json:"student_id"`
	EventID          int64  `json:"event_id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	CollegeID        string `json:"college_id,omitempty"`
	RegistrationDate string `json:"registration_date"`
}

// StudentRegistration mirrors a row of GET /registrations, which joins the
// registration with its event and student.
type StudentRegistration struct {
	ID               int64     `json:"reg_id"`
	StudentID        int64     `json:"student_id"`
	EventID          int64     `json:"event_id"`
	RegistrationDate string    `json:"registration_date"`
	EventName        string    `json:"name"`
	EventType        EventType `json:"type"`
	EventDate        string    `json:"date"`
	CollegeID        string    `json:"college_id"`
	StudentName      string    `json:"student_name"`
	Email            string    `json:"email"`
}

// RegisterRequest is the POST /register payload.
type RegisterRequest struct {
	StudentID int64 `json:"student_id"`
	EventID   int64 `json:"event_id"`
}
