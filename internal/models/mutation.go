package models

import "time"

// MutationState is the per-key lifecycle of a write.
type MutationState string

const (
	MutationStateIdle    MutationState = "idle"
	MutationStatePending MutationState = "pending"
	MutationStateSuccess MutationState = "success"
	MutationStateFailed  MutationState = "failed"
)

// MutationStatus is the UI-facing state of one mutation key. LastError keeps
// the most recent failure so it can be shown inline next to the item.
type MutationStatus struct {
	Key           string        `json:"key"`
	State         MutationState `json:"state"`
	LastOutcome   MutationState `json:"last_outcome,omitempty"`
	LastError     string        `json:"last_error,omitempty"`
	LastErrorCode string        `json:"last_error_code,omitempty"`
	UpdatedAt     time.Time     `json:"updated_at,omitempty"`
}
