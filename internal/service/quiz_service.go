package service

import (
	"context"

	"learn-persona/internal/domain"
	"learn-persona/internal/dto"
	"learn-persona/internal/logger"
	"learn-persona/internal/metrics"

	"go.uber.org/zap"
)

const incompleteQuizMessage = "Please answer all questions"

// QuizService defines the interface for quiz-related operations
type QuizService interface {
	GetQuestions() *dto.QuizQuestionsResponse
	SubmitQuiz(ctx context.Context, userID string, answers map[string]string) (*dto.QuizResultResponse, error)
	GetHistory(ctx context.Context, userID string) (*dto.QuizHistoryResponse, error)
	GetLatest(ctx context.Context, userID string) (*dto.QuizResultResponse, error)
}

// RecommendationInvalidator drops cached recommendations for a user.
type RecommendationInvalidator interface {
	InvalidateUser(ctx context.Context, userID string) error
}

type quizServiceImpl struct {
	bank         *domain.QuestionBank
	classifier   *domain.Classifier
	userRepo     domain.UserRepository
	responseRepo domain.QuizResponseRepository
	txManager    domain.TransactionManager
	invalidator  RecommendationInvalidator
	metrics      *metrics.Metrics
}

// NewQuizService creates a new instance of QuizService. invalidator and m may be nil.
func NewQuizService(
	bank *domain.QuestionBank,
	classifier *domain.Classifier,
	userRepo domain.UserRepository,
	responseRepo domain.QuizResponseRepository,
	txManager domain.TransactionManager,
	invalidator RecommendationInvalidator,
	m *metrics.Metrics,
) QuizService {
	if classifier == nil {
		classifier = domain.NewClassifier()
	}
	return &quizServiceImpl{
		bank:         bank,
		classifier:   classifier,
		userRepo:     userRepo,
		responseRepo: responseRepo,
		txManager:    txManager,
		invalidator:  invalidator,
		metrics:      m,
	}
}

func (s *quizServiceImpl) GetQuestions() *dto.QuizQuestionsResponse {
	questions := make([]dto.QuestionResponse, 0, len(s.bank.Questions))
	for _, q := range s.bank.Questions {
		questions = append(questions, dto.NewQuestionResponse(q))
	}
	return &dto.QuizQuestionsResponse{Questions: questions, Total: len(questions)}
}

// SubmitQuiz classifies a complete submission and stores it as the user's current persona.
// Incomplete or malformed submissions are rejected before any scoring takes place.
func (s *quizServiceImpl) SubmitQuiz(ctx context.Context, userID string, answers map[string]string) (*dto.QuizResultResponse, error) {
	sub, errs := s.bank.ParseSubmission(answers)
	if errs.HasErrors() {
		return nil, domain.NewError(domain.CodeIncompleteQuiz, incompleteQuizMessage, errs).
			WithContext("errors", []domain.ValidationError(errs))
	}

	user, err := loadUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}

	result := s.classifier.Classify(sub)
	response := domain.NewQuizResponse(user.ID, sub, result)

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.userRepo.GetUserForUpdate(ctx, user.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.NewNotFoundError("User not found")
		}
		if err := s.responseRepo.SaveResponse(ctx, response); err != nil {
			return err
		}
		if err := s.userRepo.SetPersona(ctx, locked.ID, result.Persona, result.ComputedAt); err != nil {
			return err
		}
		locked.TouchActivity(result.ComputedAt)
		return s.userRepo.RecordActivity(ctx, locked.ID, locked.StreakCount, *locked.LastActive)
	})
	if err != nil {
		return nil, asDomainError(err, "Failed to save quiz result")
	}

	if s.invalidator != nil {
		if err := s.invalidator.InvalidateUser(ctx, user.ID); err != nil {
			logger.Get().Warn("Failed to invalidate cached recommendations",
				zap.String("userID", user.ID), zap.Error(err))
		}
	}
	s.metrics.IncQuizSubmission(result.Persona.Key())

	logger.Get().Info("Quiz submitted",
		zap.String("userID", user.ID),
		zap.String("persona", result.Persona.Key()),
	)

	out := dto.NewQuizResultResponse(response)
	return &out, nil
}

func (s *quizServiceImpl) GetHistory(ctx context.Context, userID string) (*dto.QuizHistoryResponse, error) {
	if userID == "" {
		return nil, domain.NewUnauthorizedError("User not authenticated")
	}
	responses, err := s.responseRepo.ListResponsesByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to fetch quiz history", err)
	}
	results := make([]dto.QuizResultResponse, 0, len(responses))
	for _, r := range responses {
		results = append(results, dto.NewQuizResultResponse(r))
	}
	return &dto.QuizHistoryResponse{Results: results}, nil
}

func (s *quizServiceImpl) GetLatest(ctx context.Context, userID string) (*dto.QuizResultResponse, error) {
	if userID == "" {
		return nil, domain.NewUnauthorizedError("User not authenticated")
	}
	latest, err := s.responseRepo.GetLatestResponse(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to fetch latest quiz result", err)
	}
	if latest == nil {
		return nil, domain.NewNotFoundError("No quiz result found")
	}
	out := dto.NewQuizResultResponse(latest)
	return &out, nil
}
