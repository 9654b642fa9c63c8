package service

import (
	"fmt"
	"strconv"
	"strings"
)

// Mutation keys. The event id always follows the kind so scopes can be matched by prefix.
const (
	keyEventCreate  = "event:create:"
	keyEventDelete  = "event:delete:"
	keyAttendance   = "attendance:"
	keyRegistration = "registration:"
	keyFeedback     = "feedback:"
)

// Keys for cached view models.
const (
	summaryCachePrefix = "summary:event:"
	reportsCachePrefix = "reports:"
)

func summaryCacheKey(eventID int64) string {
	return fmt.Sprintf("%s%d", summaryCachePrefix, eventID)
}

func eventCreateKey(collegeID, name, date string) string {
	return fmt.Sprintf("%s%s:%s:%s", keyEventCreate, collegeID, strings.ToLower(strings.TrimSpace(name)), date)
}

func eventDeleteKey(eventID int64) string {
	return fmt.Sprintf("%s%d", keyEventDelete, eventID)
}

func attendanceKey(eventID, studentID int64) string {
	return fmt.Sprintf("%s%d:%d", keyAttendance, eventID, studentID)
}

func attendancePrefix(eventID int64) string {
	return fmt.Sprintf("%s%d:", keyAttendance, eventID)
}

func registrationKey(eventID int64, email string) string {
	return fmt.Sprintf("%s%d:%s", keyRegistration, eventID, strings.ToLower(strings.TrimSpace(email)))
}

func registrationPrefix(eventID int64) string {
	return fmt.Sprintf("%s%d:", keyRegistration, eventID)
}

func feedbackKey(eventID int64, email string) string {
	return fmt.Sprintf("%s%d:%s", keyFeedback, eventID, strings.ToLower(strings.TrimSpace(email)))
}

// eventIDFromKey extracts the event id of attendance, registration, feedback
// and delete keys.
func eventIDFromKey(key string) (int64, bool) {
	var rest string
	switch {
	case strings.HasPrefix(key, keyEventDelete):
		rest = strings.TrimPrefix(key, keyEventDelete)
	case strings.HasPrefix(key, keyAttendance):
		rest = strings.TrimPrefix(key, keyAttendance)
	case strings.HasPrefix(key, keyRegistration):
		rest = strings.TrimPrefix(key, keyRegistration)
	case strings.HasPrefix(key, keyFeedback):
		rest = strings.TrimPrefix(key, keyFeedback)
	default:
		return 0, false
	}
	idPart := strings.SplitN(rest, ":", 2)[0]
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// isDeleteKey reports whether key is an event deletion.
func isDeleteKey(key string) bool {
	return strings.HasPrefix(key, keyEventDelete)
}
