package models

// RegistrationReportRow mirrors GET /reports/registrations.
type RegistrationReportRow struct {
	EventName          string `json:"event_name"`
	TotalRegistrations int    `json:"total_registrations"`
}

// TopStudentRow mirrors GET /reports/top_students.
type TopStudentRow struct {
	StudentName         string `json:"student_name"`
	Email               string `json:"email"`
	EventsAttendedCount int    `json:"events_attended_count"`
}

// ReportFormat selects an export renderer.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)
