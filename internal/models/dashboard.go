package models

// StaffDashboardStats backs the staff portal landing page.
type StaffDashboardStats struct {
	TotalEvents        int `json:"total_events"`
	TotalRegistrations int `json:"total_registrations"`
	TotalAttendance    int `json:"total_attendance"`
	TotalFeedback      int `json:"total_feedback"`
}

// StudentHomeStats backs the student app home screen.
type StudentHomeStats struct {
	RegisteredEvents int `json:"registered_events"`
	EventsAttended   int `json:"events_attended"`
}

// ReportsOverview combines both report endpoints.
type ReportsOverview struct {
	Registrations []RegistrationReportRow `json:"registrations"`
	TopStudents   []TopStudentRow         `json:"top_students"`
}
