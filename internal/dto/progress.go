package dto

import "time"

// StartCourseRequest is the body of POST /api/progress/start.
type StartCourseRequest struct {
	CourseID string `json:"course_id"`
}

// UpdateProgressRequest is a partial update; omitted fields are unchanged.
// @Description Request body for updating course progress
type UpdateProgressRequest struct {
	Progress  *int  `json:"progress,omitempty"`
	Completed *bool `json:"completed,omitempty"`
}

type ProgressResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	CourseID    string     `json:"course_id"`
	Progress    int        `json:"progress"`
	Completed   bool       `json:"completed"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type ProgressListResponse struct {
	Items []ProgressResponse `json:"items"`
}
