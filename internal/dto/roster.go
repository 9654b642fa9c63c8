package dto

import "github.com/noah-isme/campus-events-console/internal/models"

// RosterResponse is the attendance screen of one event.
type RosterResponse struct {
	EventID int64                          `json:"event_id"`
	Entries []models.AttendanceRosterEntry `json:"entries"`
}
