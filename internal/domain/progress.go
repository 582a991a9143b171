package domain

import (
	"context"
	"time"
)

const (
	MinProgress = 0
	MaxProgress = 100
)

// UserProgress tracks one user working through one course.
type UserProgress struct {
	ID          string
	UserID      string
	CourseID    string
	Progress    int
	Completed   bool
	StartedAt   time.Time
	CompletedAt *time.Time
}

// NewUserProgress starts a course at 0%.
func NewUserProgress(userID, courseID string, now time.Time) *UserProgress {
	return &UserProgress{
		UserID:    userID,
		CourseID:  courseID,
		StartedAt: now,
	}
}

// ProgressUpdate is a partial update; nil fields are left alone.
type ProgressUpdate struct {
	Progress  *int
	Completed *bool
}

// Apply merges u into p. Progress is clamped to 0..100 and completion forces 100%.
// It reports whether this update is the first transition to completed.
func (p *UserProgress) Apply(u ProgressUpdate, now time.Time) bool {
	if u.Progress != nil {
		p.Progress = clampProgress(*u.Progress)
	}
	firstCompletion := false
	if u.Completed != nil {
		switch {
		case *u.Completed && !p.Completed:
			p.Completed = true
			completedAt := now
			p.CompletedAt = &completedAt
			firstCompletion = true
		case !*u.Completed:
			p.Completed = false
			p.CompletedAt = nil
		}
	}
	if p.Completed {
		p.Progress = MaxProgress
	}
	return firstCompletion
}

func clampProgress(v int) int {
	if v < MinProgress {
		return MinProgress
	}
	if v > MaxProgress {
		return MaxProgress
	}
	return v
}

// MeanProgress averages course progress, 0 for no courses.
func MeanProgress(items []*UserProgress) int {
	if len(items) == 0 {
		return 0
	}
	total := 0
	for _, it := range items {
		total += it.Progress
	}
	return total / len(items)
}

// ActivityType distinguishes entries of the dashboard activity feed.
type ActivityType string

const (
	ActivityStarted   ActivityType = "started"
	ActivityCompleted ActivityType = "completed"
)

// ActivityItem is one row of the recent activity feed.
type ActivityItem struct {
	UserID         string
	UserName       string
	UserDepartment string
	CourseID       string
	CourseTitle    string
	Type           ActivityType
	Timestamp      time.Time
}

// ProgressRepository defines the interface for progress persistence
type ProgressRepository interface {
	CreateProgress(ctx context.Context, p *UserProgress) error
	GetProgressByID(ctx context.Context, id string) (*UserProgress, error)
	// GetProgressByUserCourse returns (nil, nil) when the user has not started the course.
	GetProgressByUserCourse(ctx context.Context, userID, courseID string) (*UserProgress, error)
	UpdateProgress(ctx context.Context, p *UserProgress) error
	ListProgressByUser(ctx context.Context, userID string) ([]*UserProgress, error)
	// ListActivity returns started/completed events, newest first, at most limit entries.
	ListActivity(ctx context.Context, limit int) ([]ActivityItem, error)
}
