package models

import (
	"database/sql"
	"time"
)

// User is a row of users. Nullable columns use sql.Null* types.
type User struct {
	ID               string         `db:"id"`
	Username         sql.NullString `db:"username"`
	PasswordHash     sql.NullString `db:"password_hash"`
	GoogleID         sql.NullString `db:"google_id"`
	Name             string         `db:"name"`
	Email            string         `db:"email"`
	Department       sql.NullString `db:"department"`
	Role             string         `db:"user_role"`
	Persona          sql.NullString `db:"persona"`
	StreakCount      int            `db:"streak_count"`
	LastActive       sql.NullTime   `db:"last_active"`
	CompletedCourses int            `db:"completed_courses"`
	Progress         int            `db:"progress"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// PersonaCount is one row of a GROUP BY over users.
type PersonaCount struct {
	Department sql.NullString `db:"department"`
	Persona    string         `db:"persona"`
	Total      int            `db:"total"`
}
