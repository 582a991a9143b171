package models

import (
	"database/sql"
	"time"
)

// Course is a row of courses.
type Course struct {
	ID               string         `db:"id"`
	Title            string         `db:"title"`
	Description      sql.NullString `db:"description"`
	URL              string         `db:"url"`
	ImageURL         sql.NullString `db:"image_url"`
	Provider         sql.NullString `db:"provider"`
	Tags             StringSlice    `db:"tags"`
	SuitablePersonas StringSlice    `db:"suitable_personas"`
	Difficulty       sql.NullString `db:"difficulty"`
	Duration         sql.NullString `db:"duration"`
	CreatedAt        time.Time      `db:"created_at"`
}

// LearningStrategy is a row of learning_strategies.
type LearningStrategy struct {
	ID               string         `db:"id"`
	Title            string         `db:"title"`
	Description      sql.NullString `db:"description"`
	Content          string         `db:"content"`
	SuitablePersonas StringSlice    `db:"suitable_personas"`
	Type             sql.NullString `db:"strategy_type"`
	CreatedAt        time.Time      `db:"created_at"`
}
