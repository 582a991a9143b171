package service

import (
	"context"
	"time"

	"learn-persona/internal/domain"
	"learn-persona/internal/dto"
	"learn-persona/internal/logger"

	"go.uber.org/zap"
)

// UserService defines the interface for user-related operations.
type UserService interface {
	GetUserProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error)
	// ExpireStreaks zeroes the streak of every user whose last activity is
	// before the previous calendar day (UTC) relative to now.
	ExpireStreaks(ctx context.Context, now time.Time) (int64, error)
}

type userServiceImpl struct {
	userRepo domain.UserRepository
}

// NewUserService creates a new instance of UserService.
func NewUserService(userRepo domain.UserRepository) UserService {
	return &userServiceImpl{userRepo: userRepo}
}

// loadUser maps the repository's (nil, nil) to a not-found domain error.
func loadUser(ctx context.Context, repo domain.UserRepository, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.NewUnauthorizedError("User not authenticated")
	}
	user, err := repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to fetch user", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("User not found").WithContext("user_id", userID)
	}
	return user, nil
}

func (s *userServiceImpl) GetUserProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	user, err := loadUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	profile := dto.NewUserProfileResponse(user)
	return &profile, nil
}

func (s *userServiceImpl) ExpireStreaks(ctx context.Context, now time.Time) (int64, error) {
	today := now.UTC().Truncate(24 * time.Hour)
	cutoff := today.AddDate(0, 0, -1)

	n, err := s.userRepo.ResetStaleStreaks(ctx, cutoff)
	if err != nil {
		return 0, domain.NewInternalError("Failed to reset streaks", err)
	}
	logger.Get().Info("Expired activity streaks", zap.Int64("users", n), zap.Time("cutoff", cutoff))
	return n, nil
}
