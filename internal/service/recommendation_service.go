package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"learn-persona/internal/cache"
	"learn-persona/internal/domain"
	"learn-persona/internal/dto"
	"learn-persona/internal/logger"
	"learn-persona/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const recommendationCacheName = "recommendation"

// RecommendationService serves the course and strategy catalog and per-persona suggestions.
type RecommendationService interface {
	ListCourses(ctx context.Context, tags []string) ([]dto.CourseResponse, error)
	GetCourse(ctx context.Context, id string) (*dto.CourseResponse, error)
	CoursesByPersona(ctx context.Context, persona string) ([]dto.CourseResponse, error)
	ListStrategies(ctx context.Context) ([]dto.StrategyResponse, error)
	GetStrategy(ctx context.Context, id string) (*dto.StrategyResponse, error)
	StrategiesByPersona(ctx context.Context, persona string) ([]dto.StrategyResponse, error)
	Recommended(ctx context.Context, userID string) (*dto.RecommendationResponse, error)
	InvalidateUser(ctx context.Context, userID string) error
}

type recommendationServiceImpl struct {
	userRepo     domain.UserRepository
	courseRepo   domain.CourseRepository
	strategyRepo domain.StrategyRepository
	cache        domain.Cache
	cacheTTL     time.Duration
	metrics      *metrics.Metrics
	group        singleflight.Group
}

// NewRecommendationService creates the service. cache and m may be nil.
func NewRecommendationService(
	userRepo domain.UserRepository,
	courseRepo domain.CourseRepository,
	strategyRepo domain.StrategyRepository,
	c domain.Cache,
	cacheTTL time.Duration,
	m *metrics.Metrics,
) RecommendationService {
	return &recommendationServiceImpl{
		userRepo:     userRepo,
		courseRepo:   courseRepo,
		strategyRepo: strategyRepo,
		cache:        c,
		cacheTTL:     cacheTTL,
		metrics:      m,
	}
}

func parsePersonaParam(value string) (domain.Persona, error) {
	p, err := domain.ParsePersona(value)
	if err != nil {
		return domain.PersonaUnset, domain.NewInvalidPersonaError(value)
	}
	return p, nil
}

func (s *recommendationServiceImpl) ListCourses(ctx context.Context, tags []string) ([]dto.CourseResponse, error) {
	courses, err := s.courseRepo.ListCourses(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list courses", err)
	}
	if len(tags) == 0 {
		return dto.NewCourseResponses(courses), nil
	}
	filtered := courses[:0]
	for _, c := range courses {
		if c.HasAnyTag(tags) {
			filtered = append(filtered, c)
		}
	}
	return dto.NewCourseResponses(filtered), nil
}

func (s *recommendationServiceImpl) GetCourse(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := s.courseRepo.GetCourseByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to fetch course", err)
	}
	if course == nil {
		return nil, domain.NewNotFoundError("Course not found").WithContext("course_id", id)
	}
	out := dto.NewCourseResponse(course)
	return &out, nil
}

func (s *recommendationServiceImpl) CoursesByPersona(ctx context.Context, persona string) ([]dto.CourseResponse, error) {
	p, err := parsePersonaParam(persona)
	if err != nil {
		return nil, err
	}
	courses, err := s.courseRepo.ListCoursesByPersona(ctx, p)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list courses for persona", err)
	}
	return dto.NewCourseResponses(courses), nil
}

func (s *recommendationServiceImpl) ListStrategies(ctx context.Context) ([]dto.StrategyResponse, error) {
	strategies, err := s.strategyRepo.ListStrategies(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list strategies", err)
	}
	return dto.NewStrategyResponses(strategies), nil
}

func (s *recommendationServiceImpl) GetStrategy(ctx context.Context, id string) (*dto.StrategyResponse, error) {
	strategy, err := s.strategyRepo.GetStrategyByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to fetch strategy", err)
	}
	if strategy == nil {
		return nil, domain.NewNotFoundError("Strategy not found").WithContext("strategy_id", id)
	}
	out := dto.NewStrategyResponse(strategy)
	return &out, nil
}

func (s *recommendationServiceImpl) StrategiesByPersona(ctx context.Context, persona string) ([]dto.StrategyResponse, error) {
	p, err := parsePersonaParam(persona)
	if err != nil {
		return nil, err
	}
	strategies, err := s.strategyRepo.ListStrategiesByPersona(ctx, p)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list strategies for persona", err)
	}
	return dto.NewStrategyResponses(strategies), nil
}

// Recommended returns the catalog entries suited to the user's current persona.
// A cached entry recorded under a different persona is ignored.
func (s *recommendationServiceImpl) Recommended(ctx context.Context, userID string) (*dto.RecommendationResponse, error) {
	user, err := loadUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasPersona() {
		return nil, domain.NewPersonaNotSetError()
	}

	key := cache.RecommendationKey(user.ID)
	if cached, ok := s.fromCache(ctx, key, user.Persona); ok {
		return cached, nil
	}

	// Callers waiting on the same key share this build; one leaving must not cancel it.
	buildCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key+":"+user.Persona.Key(), func() (interface{}, error) {
		return s.build(buildCtx, key, user.Persona)
	})
	if err != nil {
		return nil, err
	}
	return v.(*dto.RecommendationResponse), nil
}

func (s *recommendationServiceImpl) fromCache(ctx context.Context, key string, p domain.Persona) (*dto.RecommendationResponse, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			s.metrics.ObserveCache(recommendationCacheName, "miss")
		} else {
			s.metrics.ObserveCache(recommendationCacheName, "error")
			logger.Get().Warn("Recommendation cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var cached dto.RecommendationResponse
	if err := json.Unmarshal([]byte(raw), &cached); err != nil || cached.Persona != p.Key() {
		s.metrics.ObserveCache(recommendationCacheName, "miss")
		return nil, false
	}
	s.metrics.ObserveCache(recommendationCacheName, "hit")
	return &cached, true
}

func (s *recommendationServiceImpl) build(ctx context.Context, key string, p domain.Persona) (*dto.RecommendationResponse, error) {
	var (
		courses    []*domain.Course
		strategies []*domain.LearningStrategy
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		courses, err = s.courseRepo.ListCoursesByPersona(gctx, p)
		return err
	})
	g.Go(func() error {
		var err error
		strategies, err = s.strategyRepo.ListStrategiesByPersona(gctx, p)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, domain.NewInternalError("Failed to build recommendations", err)
	}

	resp := &dto.RecommendationResponse{
		Persona:    p.Key(),
		Label:      p.Label(),
		Courses:    dto.NewCourseResponses(courses),
		Strategies: dto.NewStrategyResponses(strategies),
	}

	if s.cache != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.cache.Set(ctx, key, string(data), s.cacheTTL); err != nil {
				logger.Get().Warn("Recommendation cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return resp, nil
}

func (s *recommendationServiceImpl) InvalidateUser(ctx context.Context, userID string) error {
	if s.cache == nil || strings.TrimSpace(userID) == "" {
		return nil
	}
	return s.cache.Delete(ctx, cache.RecommendationKey(userID))
}
