package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"learn-persona/internal/domain"
	"learn-persona/internal/repository/models"
	"learn-persona/internal/util"

	"github.com/jmoiron/sqlx"
)

const quizResponseColumns = `id, user_id, responses, result, scores, completed_at`

type sqlxQuizResponseRepository struct {
	db DBTX
}

func NewSQLXQuizResponseRepository(db *sqlx.DB) domain.QuizResponseRepository {
	return &sqlxQuizResponseRepository{db: db}
}

func (r *sqlxQuizResponseRepository) SaveResponse(ctx context.Context, resp *domain.QuizResponse) error {
	if resp.ID == "" {
		resp.ID = util.NewULID()
	}
	m := fromDomainQuizResponse(resp)

	query := `INSERT INTO quiz_responses (` + quizResponseColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	exec := GetExecutor(ctx, r.db)
	if _, err := exec.ExecContext(ctx, exec.Rebind(query),
		m.ID, m.UserID, m.Responses, m.Result, m.Scores, m.CompletedAt); err != nil {
		return fmt.Errorf("failed to save quiz response: %w", err)
	}
	return nil
}

func (r *sqlxQuizResponseRepository) ListResponsesByUser(ctx context.Context, userID string) ([]*domain.QuizResponse, error) {
	var rows []models.QuizResponse
	query := `SELECT ` + quizResponseColumns + ` FROM quiz_responses
	          WHERE user_id = ?
	          ORDER BY completed_at DESC, id DESC`

	exec := GetExecutor(ctx, r.db)
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(query), userID); err != nil {
		return nil, fmt.Errorf("failed to list quiz responses: %w", err)
	}

	out := make([]*domain.QuizResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainQuizResponse(&rows[i]))
	}
	return out, nil
}

// GetLatestResponse returns (nil, nil) when the user never submitted the quiz.
func (r *sqlxQuizResponseRepository) GetLatestResponse(ctx context.Context, userID string) (*domain.QuizResponse, error) {
	var row models.QuizResponse
	query := `SELECT ` + quizResponseColumns + ` FROM quiz_responses
	          WHERE user_id = ?
	            AND completed_at = (SELECT MAX(completed_at) FROM quiz_responses WHERE user_id = ?)
	          ORDER BY id DESC`

	exec := GetExecutor(ctx, r.db)
	if err := exec.GetContext(ctx, &row, exec.Rebind(query), userID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest quiz response: %w", err)
	}
	return toDomainQuizResponse(&row), nil
}

func toDomainQuizResponse(m *models.QuizResponse) *domain.QuizResponse {
	if m == nil {
		return nil
	}
	resp := &domain.QuizResponse{
		ID:          m.ID,
		UserID:      m.UserID,
		Responses:   make(domain.QuizSubmission, len(m.Responses)),
		Scores:      make(domain.PersonaScores, len(m.Scores)),
		CompletedAt: m.CompletedAt,
	}
	if p, err := domain.ParsePersona(m.Result); err == nil {
		resp.Result = p
	}
	for qid, key := range m.Responses {
		if p, err := domain.ParsePersona(key); err == nil {
			resp.Responses[qid] = p
		}
	}
	for key, n := range m.Scores {
		if p, err := domain.ParsePersona(key); err == nil {
			resp.Scores[p] = n
		}
	}
	return resp
}

func fromDomainQuizResponse(r *domain.QuizResponse) *models.QuizResponse {
	if r == nil {
		return nil
	}
	m := &models.QuizResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		Responses:   make(models.StringMap, len(r.Responses)),
		Result:      r.Result.Key(),
		Scores:      make(models.IntMap, len(r.Scores)),
		CompletedAt: r.CompletedAt,
	}
	for qid, p := range r.Responses {
		m.Responses[qid] = p.Key()
	}
	for p, n := range r.Scores {
		m.Scores[p.Key()] = n
	}
	return m
}
