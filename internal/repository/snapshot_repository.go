package repository

import (
	"context"
	"fmt"
	"time"

	"learn-persona/internal/domain"
	"learn-persona/internal/repository/models"
	"learn-persona/internal/util"

	"github.com/jmoiron/sqlx"
)

// DayLayout is the storage format of activity_snapshots.snapshot_day.
const DayLayout = "2006-01-02"

type sqlxSnapshotRepository struct {
	db DBTX
}

func NewSQLXSnapshotRepository(db *sqlx.DB) domain.SnapshotRepository {
	return &sqlxSnapshotRepository{db: db}
}

func (r *sqlxSnapshotRepository) SaveSnapshot(ctx context.Context, s *domain.ActivitySnapshot) (bool, error) {
	day := s.Day.UTC().Format(DayLayout)
	exec := GetExecutor(ctx, r.db)

	var existing int
	countQuery := `SELECT COUNT(*) FROM activity_snapshots WHERE persona = ? AND snapshot_day = ?`
	if err := exec.GetContext(ctx, &existing, exec.Rebind(countQuery), s.Persona.Key(), day); err != nil {
		return false, fmt.Errorf("failed to check snapshot: %w", err)
	}
	if existing > 0 {
		return false, nil
	}

	if s.ID == "" {
		s.ID = util.NewULID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO activity_snapshots (id, persona, snapshot_day, active_users, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := exec.ExecContext(ctx, exec.Rebind(query), s.ID, s.Persona.Key(), day, s.ActiveUsers, s.CreatedAt); err != nil {
		return false, fmt.Errorf("failed to save snapshot: %w", err)
	}
	return true, nil
}

func (r *sqlxSnapshotRepository) ListSnapshotsSince(ctx context.Context, since time.Time) ([]*domain.ActivitySnapshot, error) {
	var rows []models.ActivitySnapshot
	query := `SELECT id, persona, snapshot_day, active_users, created_at
	          FROM activity_snapshots
	          WHERE snapshot_day >= ?
	          ORDER BY snapshot_day, persona`

	exec := GetExecutor(ctx, r.db)
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(query), since.UTC().Format(DayLayout)); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	out := make([]*domain.ActivitySnapshot, 0, len(rows))
	for _, row := range rows {
		p, err := domain.ParsePersona(row.Persona)
		if err != nil {
			continue
		}
		day, err := time.Parse(DayLayout, row.Day)
		if err != nil {
			continue
		}
		out = append(out, &domain.ActivitySnapshot{
			ID:          row.ID,
			Persona:     p,
			Day:         day,
			ActiveUsers: row.ActiveUsers,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}
