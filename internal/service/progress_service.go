package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"learn-persona/internal/domain"
	"learn-persona/internal/dto"
	"learn-persona/internal/logger"

	"go.uber.org/zap"
)

// ProgressService tracks users working through courses.
type ProgressService interface {
	StartCourse(ctx context.Context, userID, courseID string) (*dto.ProgressResponse, error)
	UpdateProgress(ctx context.Context, userID, progressID string, req dto.UpdateProgressRequest) (*dto.ProgressResponse, error)
	ListProgress(ctx context.Context, userID string) (*dto.ProgressListResponse, error)
}

type progressServiceImpl struct {
	progressRepo domain.ProgressRepository
	courseRepo   domain.CourseRepository
	userRepo     domain.UserRepository
	txManager    domain.TransactionManager
	now          func() time.Time
}

func NewProgressService(
	progressRepo domain.ProgressRepository,
	courseRepo domain.CourseRepository,
	userRepo domain.UserRepository,
	txManager domain.TransactionManager,
) ProgressService {
	return &progressServiceImpl{
		progressRepo: progressRepo,
		courseRepo:   courseRepo,
		userRepo:     userRepo,
		txManager:    txManager,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// StartCourse is idempotent: starting a course twice returns the existing record.
func (s *progressServiceImpl) StartCourse(ctx context.Context, userID, courseID string) (*dto.ProgressResponse, error) {
	if strings.TrimSpace(courseID) == "" {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("course_id")}
	}
	user, err := loadUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	course, err := s.courseRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to fetch course", err)
	}
	if course == nil {
		return nil, domain.NewNotFoundError("Course not found").WithContext("course_id", courseID)
	}

	var started *domain.UserProgress
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.lockUser(ctx, user.ID)
		if err != nil {
			return err
		}
		existing, err := s.progressRepo.GetProgressByUserCourse(ctx, locked.ID, course.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			started = existing
			return nil
		}

		now := s.now()
		started = domain.NewUserProgress(locked.ID, course.ID, now)
		if err := s.progressRepo.CreateProgress(ctx, started); err != nil {
			return err
		}
		items, err := s.progressRepo.ListProgressByUser(ctx, locked.ID)
		if err != nil {
			return err
		}
		if err := s.userRepo.UpdateCourseStats(ctx, locked.ID, 0, domain.MeanProgress(items)); err != nil {
			return err
		}
		return s.recordActivity(ctx, locked, now)
	})
	if err != nil {
		// A concurrent start of the same course loses on the unique (user, course) key.
		existing, lookupErr := s.progressRepo.GetProgressByUserCourse(ctx, user.ID, course.ID)
		if lookupErr != nil || existing == nil {
			return nil, asDomainError(err, "Failed to start course")
		}
		started = existing
	}

	logger.Get().Info("Course started", zap.String("userID", user.ID), zap.String("courseID", course.ID))
	out := dto.NewProgressResponse(started)
	return &out, nil
}

// lockUser re-reads the user inside the current transaction.
func (s *progressServiceImpl) lockUser(ctx context.Context, userID string) (*domain.User, error) {
	locked, err := s.userRepo.GetUserForUpdate(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to fetch user", err)
	}
	if locked == nil {
		return nil, domain.NewNotFoundError("User not found")
	}
	return locked, nil
}

func (s *progressServiceImpl) recordActivity(ctx context.Context, user *domain.User, now time.Time) error {
	user.TouchActivity(now)
	return s.userRepo.RecordActivity(ctx, user.ID, user.StreakCount, now)
}

func validateProgressUpdate(req dto.UpdateProgressRequest) domain.ValidationErrors {
	var errs domain.ValidationErrors
	if req.Progress == nil && req.Completed == nil {
		errs = append(errs, domain.NewValidationError("progress", domain.CodeMissingField,
			"progress or completed is required"))
	}
	return errs
}

// UpdateProgress applies a partial update to a record owned by userID. Records of
// other users are reported as not found.
func (s *progressServiceImpl) UpdateProgress(ctx context.Context, userID, progressID string, req dto.UpdateProgressRequest) (*dto.ProgressResponse, error) {
	if errs := validateProgressUpdate(req); errs.HasErrors() {
		return nil, errs
	}
	user, err := loadUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}

	var updated *domain.UserProgress
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.lockUser(ctx, user.ID)
		if err != nil {
			return err
		}
		p, err := s.progressRepo.GetProgressByID(ctx, progressID)
		if err != nil {
			return domain.NewInternalError("Failed to fetch progress", err)
		}
		if p == nil || p.UserID != locked.ID {
			return domain.NewNotFoundError("Progress not found").WithContext("progress_id", progressID)
		}

		now := s.now()
		wasCompleted := p.Completed
		firstCompletion := p.Apply(domain.ProgressUpdate{Progress: req.Progress, Completed: req.Completed}, now)
		if err := s.progressRepo.UpdateProgress(ctx, p); err != nil {
			return domain.NewInternalError("Failed to update progress", err)
		}

		items, err := s.progressRepo.ListProgressByUser(ctx, locked.ID)
		if err != nil {
			return domain.NewInternalError("Failed to list progress", err)
		}
		delta := 0
		switch {
		case firstCompletion:
			delta = 1
		case wasCompleted && !p.Completed:
			delta = -1
		}
		if err := s.userRepo.UpdateCourseStats(ctx, locked.ID, delta, domain.MeanProgress(items)); err != nil {
			return domain.NewInternalError("Failed to update user", err)
		}
		if err := s.recordActivity(ctx, locked, now); err != nil {
			return domain.NewInternalError("Failed to update user", err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, asDomainError(err, "Failed to update progress")
	}

	out := dto.NewProgressResponse(updated)
	return &out, nil
}

func (s *progressServiceImpl) ListProgress(ctx context.Context, userID string) (*dto.ProgressListResponse, error) {
	if userID == "" {
		return nil, domain.NewUnauthorizedError("User not authenticated")
	}
	items, err := s.progressRepo.ListProgressByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list progress", err)
	}
	out := make([]dto.ProgressResponse, 0, len(items))
	for _, p := range items {
		out = append(out, dto.NewProgressResponse(p))
	}
	return &dto.ProgressListResponse{Items: out}, nil
}

// asDomainError keeps domain errors raised inside a transaction and wraps anything else.
func asDomainError(err error, message string) error {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return domain.NewInternalError(message, err)
}
