package models

// EventType is the fixed category set offered by the create-event form.
type EventType string

const (
	EventTypeHackathon EventType = "Hackathon"
	EventTypeWorkshop  EventType = "Workshop"
	EventTypeTechTalk  EventType = "Tech Talk"
	EventTypeFest      EventType = "Fest"
	EventTypeSeminar   EventType = "Seminar"
)

// EventTypes lists every supported category in display order.
var EventTypes = []EventType{EventTypeHackathon, EventTypeWorkshop, EventTypeTechTalk, EventTypeFest, EventTypeSeminar}

// Valid returns true when the type is a supported category.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeHackathon, EventTypeWorkshop, EventTypeTechTalk, EventTypeFest, EventTypeSeminar:
		return true
	default:
		return false
	}
}

// Event mirrors a row of GET /events.
type Event struct {
	ID        int64     `json:"event_id"`
	CollegeID string    `json:"college_id"`
	Name      string    `json:"name"`
	Type      EventType `json:"type"`
	Date      string    `json:"date"`
}

// StaffEvent is an event with the registration count computed by GET /staff/events.
type StaffEvent struct {
	Event
	RegistrationCount int `json:"registration_count"`
}

// CreateEventResult is the body returned by POST /events.
type CreateEventResult struct {
	ID      int64  `json:"event_id"`
	Message string `json:"message"`
}

// MessageResult is the generic acknowledgement body of backend writes.
type MessageResult struct {
	Message string `json:"message"`
}
