package service

import (
	"math"

	"github.com/noah-isme/campus-events-console/internal/models"
)

// SummarizeEvents joins events with their attendance and registration figures.
// It returns one summary per event in input order and never mutates its inputs.
// An event whose attendance fetch failed, or that has no entry in
// attendanceByEvent, is reported with zero attendance and Partial set.
func SummarizeEvents(events []models.Event, attendanceByEvent map[int64]models.AttendanceFetch, registrationCounts map[int64]int) []models.EventSummary {
	summaries := make([]models.EventSummary, 0, len(events))
	for _, event := range events {
		registered := clampCount(registrationCounts[event.ID])
		summary := models.EventSummary{Event: event, RegistrationCount: registered}

		fetch, ok := attendanceByEvent[event.ID]
		if !ok || fetch.Err != nil {
			summary.Partial = true
			summaries = append(summaries, summary)
			continue
		}

		summary.AttendanceCount = countPresent(event.ID, fetch.Records)
		summary.AttendancePercentage = AttendancePercentage(summary.AttendanceCount, registered)
		summaries = append(summaries, summary)
	}
	return summaries
}

// AttendancePercentage returns attended/registered as a whole percentage,
// rounding halves up. Zero registrations yield 0.
func AttendancePercentage(attended, registered int) int {
	attended = clampCount(attended)
	registered = clampCount(registered)
	if registered == 0 {
		return 0
	}
	pct := int(math.Floor(float64(attended)*100/float64(registered) + 0.5))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// latestStatusByStudent keeps the last record per student for eventID.
// Records carrying another event id are ignored.
func latestStatusByStudent(eventID int64, records []models.AttendanceRecord) map[int64]models.AttendanceRecord {
	latest := make(map[int64]models.AttendanceRecord, len(records))
	for _, record := range records {
		if record.EventID != 0 && record.EventID != eventID {
			continue
		}
		latest[record.StudentID] = record
	}
	return latest
}

func countPresent(eventID int64, records []models.AttendanceRecord) int {
	present := 0
	for _, record := range latestStatusByStudent(eventID, records) {
		if record.Status == models.AttendanceStatusPresent {
			present++
		}
	}
	return present
}

func clampCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// BuildRoster joins the registrations of an event with its attendance records.
// Students without a record are reported as unmarked.
func BuildRoster(registrations []models.Registration, records []models.AttendanceRecord) []models.AttendanceRosterEntry {
	roster := make([]models.AttendanceRosterEntry, 0, len(registrations))
	byEvent := make(map[int64]map[int64]models.AttendanceRecord)
	for _, reg := range registrations {
		latest, ok := byEvent[reg.EventID]
		if !ok {
			latest = latestStatusByStudent(reg.EventID, records)
			byEvent[reg.EventID] = latest
		}
		entry := models.AttendanceRosterEntry{
			Registration: reg,
			Status:       models.AttendanceStatusUnmarked,
			Mutation:     models.MutationStatus{State: models.MutationStateIdle},
		}
		if record, ok := latest[reg.StudentID]; ok && record.Status.Markable() {
			entry.Status = record.Status
			entry.MarkedDate = record.MarkedDate
		}
		roster = append(roster, entry)
	}
	return roster
}

// FeedbackStatistics derives the feedback overview. The average is rounded to one decimal.
func FeedbackStatistics(entries []models.FeedbackEntry) models.FeedbackStats {
	stats := models.FeedbackStats{Count: len(entries)}
	if len(entries) == 0 {
		return stats
	}
	total := 0
	for _, entry := range entries {
		total += entry.Rating
		switch {
		case entry.Rating >= 4:
			stats.Positive++
		case entry.Rating < 3:
			stats.NeedsImprovement++
		}
	}
	stats.AverageRating = math.Round(float64(total)/float64(len(entries))*10) / 10
	return stats
}

// StaffDashboard derives the staff landing page counters.
func StaffDashboard(events []models.Event, registrations []models.StudentRegistration, attendance []models.AttendanceRecord, feedback []models.FeedbackEntry) models.StaffDashboardStats {
	return models.StaffDashboardStats{
		TotalEvents:        len(events),
		TotalRegistrations: len(registrations),
		TotalAttendance:    countStatus(attendance, models.AttendanceStatusPresent),
		TotalFeedback:      len(feedback),
	}
}

// StudentHome derives the student home counters.
func StudentHome(registrations []models.StudentRegistration, attendance []models.AttendanceRecord) models.StudentHomeStats {
	return models.StudentHomeStats{
		RegisteredEvents: len(registrations),
		EventsAttended:   countStatus(attendance, models.AttendanceStatusPresent),
	}
}

func countStatus(records []models.AttendanceRecord, status models.AttendanceStatus) int {
	n := 0
	for _, record := range records {
		if record.Status == status {
			n++
		}
	}
	return n
}

// FilterEventsByType keeps events of the given type. An empty type keeps everything.
func FilterEventsByType(events []models.Event, eventType models.EventType) []models.Event {
	if eventType == "" {
		return events
	}
	filtered := make([]models.Event, 0, len(events))
	for _, event := range events {
		if event.Type == eventType {
			filtered = append(filtered, event)
		}
	}
	return filtered
}
