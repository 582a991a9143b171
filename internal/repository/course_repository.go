package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"learn-persona/internal/domain"
	"learn-persona/internal/repository/models"
	"learn-persona/internal/util"

	"github.com/jmoiron/sqlx"
)

const courseColumns = `id, title, description, url, image_url, provider, tags, suitable_personas, difficulty, duration, created_at`

type sqlxCourseRepository struct {
	db DBTX
}

func NewSQLXCourseRepository(db *sqlx.DB) domain.CourseRepository {
	return &sqlxCourseRepository{db: db}
}

func (r *sqlxCourseRepository) CreateCourse(ctx context.Context, course *domain.Course) error {
	if course.ID == "" {
		course.ID = util.NewULID()
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}
	m := fromDomainCourse(course)

	query := `INSERT INTO courses (` + courseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	exec := GetExecutor(ctx, r.db)
	if _, err := exec.ExecContext(ctx, exec.Rebind(query),
		m.ID, m.Title, m.Description, m.URL, m.ImageURL, m.Provider, m.Tags, m.SuitablePersonas,
		m.Difficulty, m.Duration, m.CreatedAt); err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (r *sqlxCourseRepository) GetCourseByID(ctx context.Context, id string) (*domain.Course, error) {
	return r.getCourseBy(ctx, "id", id)
}

func (r *sqlxCourseRepository) GetCourseByTitle(ctx context.Context, title string) (*domain.Course, error) {
	return r.getCourseBy(ctx, "title", title)
}

func (r *sqlxCourseRepository) getCourseBy(ctx context.Context, column, value string) (*domain.Course, error) {
	var row models.Course
	query := `SELECT ` + courseColumns + ` FROM courses WHERE ` + column + ` = ?`

	exec := GetExecutor(ctx, r.db)
	if err := exec.GetContext(ctx, &row, exec.Rebind(query), value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get course by %s: %w", column, err)
	}
	return toDomainCourse(&row), nil
}

func (r *sqlxCourseRepository) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY title`
	return r.selectCourses(ctx, query)
}

func (r *sqlxCourseRepository) ListCoursesByPersona(ctx context.Context, p domain.Persona) ([]*domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE suitable_personas LIKE ? ORDER BY title`
	return r.selectCourses(ctx, query, personaPattern(p.Key()))
}

func (r *sqlxCourseRepository) selectCourses(ctx context.Context, query string, args ...interface{}) ([]*domain.Course, error) {
	var rows []models.Course
	exec := GetExecutor(ctx, r.db)
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	out := make([]*domain.Course, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainCourse(&rows[i]))
	}
	return out, nil
}

func toDomainCourse(m *models.Course) *domain.Course {
	if m == nil {
		return nil
	}
	return &domain.Course{
		ID:               m.ID,
		Title:            m.Title,
		Description:      m.Description.String,
		URL:              m.URL,
		ImageURL:         m.ImageURL.String,
		Provider:         m.Provider.String,
		Tags:             []string(m.Tags),
		SuitablePersonas: personasFromKeys(m.SuitablePersonas),
		Difficulty:       m.Difficulty.String,
		Duration:         m.Duration.String,
		CreatedAt:        m.CreatedAt,
	}
}

func fromDomainCourse(c *domain.Course) *models.Course {
	if c == nil {
		return nil
	}
	return &models.Course{
		ID:               c.ID,
		Title:            c.Title,
		Description:      util.StringToNullString(c.Description),
		URL:              c.URL,
		ImageURL:         util.StringToNullString(c.ImageURL),
		Provider:         util.StringToNullString(c.Provider),
		Tags:             models.StringSlice(c.Tags),
		SuitablePersonas: personaKeys(c.SuitablePersonas),
		Difficulty:       util.StringToNullString(c.Difficulty),
		Duration:         util.StringToNullString(c.Duration),
		CreatedAt:        c.CreatedAt,
	}
}

func personaKeys(ps []domain.Persona) models.StringSlice {
	keys := make(models.StringSlice, 0, len(ps))
	for _, p := range ps {
		if p.IsValid() {
			keys = append(keys, p.Key())
		}
	}
	return keys
}

// personasFromKeys drops keys outside the enumeration.
func personasFromKeys(keys models.StringSlice) []domain.Persona {
	out := make([]domain.Persona, 0, len(keys))
	for _, k := range keys {
		if p, err := domain.ParsePersona(k); err == nil {
			out = append(out, p)
		}
	}
	return out
}
