package models

// Student identifies a student as known to the backend.
type Student struct {
	ID        int64  `json:"student_id"`
	CollegeID string `json:"college_id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	IsNew     bool   `json:"is_new,omitempty"`
}

// FindOrCreateStudentRequest is the POST /students/find-or-create payload.
type FindOrCreateStudentRequest struct {
	CollegeID string `json:"college_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}
