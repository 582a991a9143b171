package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"learn-persona/internal/domain"
	"learn-persona/internal/repository/models"
	"learn-persona/internal/util"

	"github.com/jmoiron/sqlx"
)

const progressColumns = `id, user_id, course_id, progress, completed, started_at, completed_at`

type sqlxProgressRepository struct {
	db DBTX
}

func NewSQLXProgressRepository(db *sqlx.DB) domain.ProgressRepository {
	return &sqlxProgressRepository{db: db}
}

func (r *sqlxProgressRepository) CreateProgress(ctx context.Context, p *domain.UserProgress) error {
	if p.ID == "" {
		p.ID = util.NewULID()
	}
	m := fromDomainProgress(p)

	query := `INSERT INTO user_progress (` + progressColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	exec := GetExecutor(ctx, r.db)
	if _, err := exec.ExecContext(ctx, exec.Rebind(query),
		m.ID, m.UserID, m.CourseID, m.Progress, m.Completed, m.StartedAt, m.CompletedAt); err != nil {
		return fmt.Errorf("failed to create progress: %w", err)
	}
	return nil
}

func (r *sqlxProgressRepository) GetProgressByID(ctx context.Context, id string) (*domain.UserProgress, error) {
	return r.getProgress(ctx, `WHERE id = ?`, id)
}

func (r *sqlxProgressRepository) GetProgressByUserCourse(ctx context.Context, userID, courseID string) (*domain.UserProgress, error) {
	return r.getProgress(ctx, `WHERE user_id = ? AND course_id = ?`, userID, courseID)
}

func (r *sqlxProgressRepository) getProgress(ctx context.Context, where string, args ...any) (*domain.UserProgress, error) {
	var row models.UserProgress
	query := `SELECT ` + progressColumns + ` FROM user_progress ` + where

	exec := GetExecutor(ctx, r.db)
	if err := exec.GetContext(ctx, &row, exec.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return toDomainProgress(&row), nil
}

func (r *sqlxProgressRepository) UpdateProgress(ctx context.Context, p *domain.UserProgress) error {
	m := fromDomainProgress(p)
	query := `UPDATE user_progress SET progress = ?, completed = ?, completed_at = ? WHERE id = ?`

	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, exec.Rebind(query), m.Progress, m.Completed, m.CompletedAt, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return requireOneRow(result)
}

func (r *sqlxProgressRepository) ListProgressByUser(ctx context.Context, userID string) ([]*domain.UserProgress, error) {
	var rows []models.UserProgress
	query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = ? ORDER BY started_at DESC, id DESC`

	exec := GetExecutor(ctx, r.db)
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(query), userID); err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	out := make([]*domain.UserProgress, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainProgress(&rows[i]))
	}
	return out, nil
}

// ListActivity turns every progress row into one feed entry: "completed" at
// completed_at when finished, otherwise "started" at started_at.
func (r *sqlxProgressRepository) ListActivity(ctx context.Context, limit int) ([]domain.ActivityItem, error) {
	var rows []models.ActivityRow
	query := `SELECT up.user_id, u.name AS user_name, u.department AS user_department,
	                 up.course_id, c.title AS course_title, up.completed, up.started_at, up.completed_at
	          FROM user_progress up
	          JOIN users u ON u.id = up.user_id
	          JOIN courses c ON c.id = up.course_id`

	exec := GetExecutor(ctx, r.db)
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(query)); err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}

	items := make([]domain.ActivityItem, 0, len(rows))
	for _, row := range rows {
		item := domain.ActivityItem{
			UserID:         row.UserID,
			UserName:       row.UserName,
			UserDepartment: row.UserDepartment.String,
			CourseID:       row.CourseID,
			CourseTitle:    row.CourseTitle,
			Type:           domain.ActivityStarted,
			Timestamp:      row.StartedAt,
		}
		if row.Completed == 1 && row.CompletedAt.Valid {
			item.Type = domain.ActivityCompleted
			item.Timestamp = row.CompletedAt.Time
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func toDomainProgress(m *models.UserProgress) *domain.UserProgress {
	if m == nil {
		return nil
	}
	return &domain.UserProgress{
		ID:          m.ID,
		UserID:      m.UserID,
		CourseID:    m.CourseID,
		Progress:    m.Progress,
		Completed:   m.Completed == 1,
		StartedAt:   m.StartedAt,
		CompletedAt: util.NullTimeToPtr(m.CompletedAt),
	}
}

func fromDomainProgress(p *domain.UserProgress) *models.UserProgress {
	if p == nil {
		return nil
	}
	return &models.UserProgress{
		ID:          p.ID,
		UserID:      p.UserID,
		CourseID:    p.CourseID,
		Progress:    p.Progress,
		Completed:   util.BoolToInt(p.Completed),
		StartedAt:   p.StartedAt,
		CompletedAt: util.PtrToNullTime(p.CompletedAt),
	}
}
