package domain

import (
	"context"
	"time"
)

// QuizResponse is a stored, classified quiz submission. It is never updated.
type QuizResponse struct {
	ID          string
	UserID      string
	Responses   QuizSubmission
	Result      Persona
	Scores      PersonaScores
	CompletedAt time.Time
}

// NewQuizResponse pairs a submission with its classification.
func NewQuizResponse(userID string, sub QuizSubmission, result PersonaResult) *QuizResponse {
	return &QuizResponse{
		UserID:      userID,
		Responses:   sub,
		Result:      result.Persona,
		Scores:      result.Scores,
		CompletedAt: result.ComputedAt,
	}
}

// QuizResponseRepository defines the interface for quiz response persistence
type QuizResponseRepository interface {
	SaveResponse(ctx context.Context, r *QuizResponse) error
	// ListResponsesByUser returns the user's responses newest first.
	ListResponsesByUser(ctx context.Context, userID string) ([]*QuizResponse, error)
	GetLatestResponse(ctx context.Context, userID string) (*QuizResponse, error)
}
