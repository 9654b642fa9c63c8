package models

// EventSummary is an event joined with its registration and attendance figures.
// Partial is set when the attendance sub-fetch failed, so a zero attendance
// count is not indistinguishable from genuinely zero attendance.
type EventSummary struct {
	Event
	RegistrationCount    int  `json:"registration_count"`
	AttendanceCount      int  `json:"attendance_count"`
	AttendancePercentage int  `json:"attendance_percentage"`
	Partial              bool `json:"partial"`
}
