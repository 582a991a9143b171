package models

import (
	"database/sql"
	"time"
)

// UserProgress is a row of user_progress. Completed is stored as 0/1.
type UserProgress struct {
	ID          string       `db:"id"`
	UserID      string       `db:"user_id"`
	CourseID    string       `db:"course_id"`
	Progress    int          `db:"progress"`
	Completed   int          `db:"completed"`
	StartedAt   time.Time    `db:"started_at"`
	CompletedAt sql.NullTime `db:"completed_at"`
}

// ActivityRow joins a progress row with its user and course.
type ActivityRow struct {
	UserID         string         `db:"user_id"`
	UserName       string         `db:"user_name"`
	UserDepartment sql.NullString `db:"user_department"`
	CourseID       string         `db:"course_id"`
	CourseTitle    string         `db:"course_title"`
	Completed      int            `db:"completed"`
	StartedAt      time.Time      `db:"started_at"`
	CompletedAt    sql.NullTime   `db:"completed_at"`
}

// ActivitySnapshot is a row of activity_snapshots. Day is "YYYY-MM-DD".
type ActivitySnapshot struct {
	ID          string    `db:"id"`
	Persona     string    `db:"persona"`
	Day         string    `db:"snapshot_day"`
	ActiveUsers int       `db:"active_users"`
	CreatedAt   time.Time `db:"created_at"`
}
