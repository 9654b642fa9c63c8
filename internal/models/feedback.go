package models

import "encoding/json"

// Rating bounds accepted by POST /feedback.
const (
	MinRating = 1
	MaxRating = 5
)

// FeedbackEntry mirrors a row of GET /staff/feedback.
type FeedbackEntry struct {
	ID           int64     `json:"feedback_id"`
	StudentID    int64     `json:"student_id"`
	EventID      int64     `json:"event_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"feedback_text"`
	FeedbackDate string    `json:"feedback_date"`
	EventName    string    `json:"event_name,omitempty"`
	EventType    EventType `json:"event_type,omitempty"`
	EventDate    string    `json:"event_date,omitempty"`
	StudentName  string    `json:"student_name,omitempty"`
	StudentEmail string    `json:"student_email,omitempty"`
}

// UnmarshalJSON accepts "comment" as an alias of "feedback_text".
func (f *FeedbackEntry) UnmarshalJSON(data []byte) error {
	type alias FeedbackEntry
	aux := struct {
		*alias
		LegacyComment *string `json:"comment"`
	}{alias: (*alias)(f)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if f.Comment == "" && aux.LegacyComment != nil {
		f.Comment = *aux.LegacyComment
	}
	return nil
}

// SubmitFeedbackRequest is the POST /feedback payload.
type SubmitFeedbackRequest struct {
	StudentID int64  `json:"student_id"`
	EventID   int64  `json:"event_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"feedback_text"`
}

// FeedbackStats is derived client-side from the feedback list.
type FeedbackStats struct {
	Count            int     `json:"count"`
	AverageRating    float64 `json:"average_rating"`
	Positive         int     `json:"positive"`
	NeedsImprovement int     `json:"needs_improvement"`
}
