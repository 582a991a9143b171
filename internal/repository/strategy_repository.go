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

const strategyColumns = `id, title, description, content, suitable_personas, strategy_type, created_at`

type sqlxStrategyRepository struct {
	db DBTX
}

func NewSQLXStrategyRepository(db *sqlx.DB) domain.StrategyRepository {
	return &sqlxStrategyRepository{db: db}
}

func (r *sqlxStrategyRepository) CreateStrategy(ctx context.Context, s *domain.LearningStrategy) error {
	if s.ID == "" {
		s.ID = util.NewULID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	m := fromDomainStrategy(s)

	query := `INSERT INTO learning_strategies (` + strategyColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	exec := GetExecutor(ctx, r.db)
	if _, err := exec.ExecContext(ctx, exec.Rebind(query),
		m.ID, m.Title, m.Description, m.Content, m.SuitablePersonas, m.Type, m.CreatedAt); err != nil {
		return fmt.Errorf("failed to create learning strategy: %w", err)
	}
	return nil
}

func (r *sqlxStrategyRepository) GetStrategyByID(ctx context.Context, id string) (*domain.LearningStrategy, error) {
	return r.getStrategyBy(ctx, "id", id)
}

func (r *sqlxStrategyRepository) GetStrategyByTitle(ctx context.Context, title string) (*domain.LearningStrategy, error) {
	return r.getStrategyBy(ctx, "title", title)
}

func (r *sqlxStrategyRepository) getStrategyBy(ctx context.Context, column, value string) (*domain.LearningStrategy, error) {
	var row models.LearningStrategy
	query := `SELECT ` + strategyColumns + ` FROM learning_strategies WHERE ` + column + ` = ?`

	exec := GetExecutor(ctx, r.db)
	if err := exec.GetContext(ctx, &row, exec.Rebind(query), value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get learning strategy by %s: %w", column, err)
	}
	return toDomainStrategy(&row), nil
}

func (r *sqlxStrategyRepository) ListStrategies(ctx context.Context) ([]*domain.LearningStrategy, error) {
	return r.selectStrategies(ctx, `SELECT `+strategyColumns+` FROM learning_strategies ORDER BY title`)
}

func (r *sqlxStrategyRepository) ListStrategiesByPersona(ctx context.Context, p domain.Persona) ([]*domain.LearningStrategy, error) {
	query := `SELECT ` + strategyColumns + ` FROM learning_strategies WHERE suitable_personas LIKE ? ORDER BY title`
	return r.selectStrategies(ctx, query, personaPattern(p.Key()))
}

func (r *sqlxStrategyRepository) selectStrategies(ctx context.Context, query string, args ...interface{}) ([]*domain.LearningStrategy, error) {
	var rows []models.LearningStrategy
	exec := GetExecutor(ctx, r.db)
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list learning strategies: %w", err)
	}
	out := make([]*domain.LearningStrategy, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainStrategy(&rows[i]))
	}
	return out, nil
}

func toDomainStrategy(m *models.LearningStrategy) *domain.LearningStrategy {
	if m == nil {
		return nil
	}
	return &domain.LearningStrategy{
		ID:               m.ID,
		Title:            m.Title,
		Description:      m.Description.String,
		Content:          m.Content,
		SuitablePersonas: personasFromKeys(m.SuitablePersonas),
		Type:             m.Type.String,
		CreatedAt:        m.CreatedAt,
	}
}

func fromDomainStrategy(s *domain.LearningStrategy) *models.LearningStrategy {
	if s == nil {
		return nil
	}
	return &models.LearningStrategy{
		ID:               s.ID,
		Title:            s.Title,
		Description:      util.StringToNullString(s.Description),
		Content:          s.Content,
		SuitablePersonas: personaKeys(s.SuitablePersonas),
		Type:             util.StringToNullString(s.Type),
		CreatedAt:        s.CreatedAt,
	}
}
