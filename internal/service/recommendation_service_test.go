package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"learn-persona/internal/cache"
	"learn-persona/internal/domain"
	"learn-persona/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recommendationFixture struct {
	users      *MockUserRepository
	courses    *MockCourseRepository
	strategies *MockStrategyRepository
	cache      *MockCache
	svc        RecommendationService
}

func newRecommendationFixture() *recommendationFixture {
	f := &recommendationFixture{
		users:      new(MockUserRepository),
		courses:    new(MockCourseRepository),
		strategies: new(MockStrategyRepository),
		cache:      new(MockCache),
	}
	f.svc = NewRecommendationService(f.users, f.courses, f.strategies, f.cache, time.Hour, nil)
	return f
}

func thinkerCatalog() ([]*domain.Course, []*domain.LearningStrategy) {
	return []*domain.Course{
			{ID: "c1", Title: "Critical Thinking", URL: "https://a", Tags: []string{"Logic"},
				SuitablePersonas: []domain.Persona{domain.PersonaThinker}},
		}, []*domain.LearningStrategy{
			{ID: "s1", Title: "Deep Work", Content: "Block time", Type: "technique",
				SuitablePersonas: []domain.Persona{domain.PersonaThinker}},
		}
}

func TestRecommendationService_Recommended_PersonaNotSet(t *testing.T) {
	f := newRecommendationFixture()
	f.users.On("GetUserByID", mock.Anything, "u1").Return(&domain.User{ID: "u1"}, nil)

	_, err := f.svc.Recommended(context.Background(), "u1")
	assertDomainCode(t, err, domain.CodePersonaNotSet)
	f.cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestRecommendationService_Recommended_MissBuildsAndCaches(t *testing.T) {
	f := newRecommendationFixture()
	courses, strategies := thinkerCatalog()
	key := cache.RecommendationKey("u1")

	f.users.On("GetUserByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Persona: domain.PersonaThinker}, nil)
	f.cache.On("Get", mock.Anything, key).Return("", domain.ErrCacheMiss)
	f.courses.On("ListCoursesByPersona", mock.Anything, domain.PersonaThinker).Return(courses, nil)
	f.strategies.On("ListStrategiesByPersona", mock.Anything, domain.PersonaThinker).Return(strategies, nil)
	f.cache.On("Set", mock.Anything, key, mock.AnythingOfType("string"), time.Hour).Return(nil)

	got, err := f.svc.Recommended(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "thinker", got.Persona)
	assert.Equal(t, "The Thinker", got.Label)
	require.Len(t, got.Courses, 1)
	assert.Equal(t, "Critical Thinking", got.Courses[0].Title)
	require.Len(t, got.Strategies, 1)
	assert.Equal(t, "Deep Work", got.Strategies[0].Title)

	f.cache.AssertExpectations(t)
	f.courses.AssertExpectations(t)
	f.strategies.AssertExpectations(t)
}

func TestRecommendationService_Recommended_BuildSurvivesCallerCancel(t *testing.T) {
	f := newRecommendationFixture()
	courses, strategies := thinkerCatalog()
	key := cache.RecommendationKey("u1")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var buildErr, cacheErr error
	f.users.On("GetUserByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Persona: domain.PersonaThinker}, nil)
	f.cache.On("Get", mock.Anything, key).Return("", domain.ErrCacheMiss)
	f.courses.On("ListCoursesByPersona", mock.Anything, domain.PersonaThinker).Run(func(args mock.Arguments) {
		cancel()
		buildErr = args.Get(0).(context.Context).Err()
	}).Return(courses, nil)
	f.strategies.On("ListStrategiesByPersona", mock.Anything, domain.PersonaThinker).Return(strategies, nil)
	f.cache.On("Set", mock.Anything, key, mock.AnythingOfType("string"), time.Hour).Run(func(args mock.Arguments) {
		cacheErr = args.Get(0).(context.Context).Err()
	}).Return(nil)

	got, err := f.svc.Recommended(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, got.Courses, 1)
	assert.Error(t, ctx.Err())
	assert.NoError(t, buildErr)
	assert.NoError(t, cacheErr)
	f.cache.AssertExpectations(t)
}

func TestRecommendationService_Recommended_CacheHit(t *testing.T) {
	f := newRecommendationFixture()
	key := cache.RecommendationKey("u1")
	cached, err := json.Marshal(dto.RecommendationResponse{Persona: "creator", Label: "The Creator"})
	require.NoError(t, err)

	f.users.On("GetUserByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Persona: domain.PersonaCreator}, nil)
	f.cache.On("Get", mock.Anything, key).Return(string(cached), nil)

	got, err := f.svc.Recommended(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "creator", got.Persona)
	f.courses.AssertNotCalled(t, "ListCoursesByPersona", mock.Anything, mock.Anything)
}

func TestRecommendationService_Recommended_StaleCachedPersona(t *testing.T) {
	f := newRecommendationFixture()
	courses, strategies := thinkerCatalog()
	key := cache.RecommendationKey("u1")
	stale, err := json.Marshal(dto.RecommendationResponse{Persona: "explorer", Label: "The Explorer"})
	require.NoError(t, err)

	f.users.On("GetUserByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Persona: domain.PersonaThinker}, nil)
	f.cache.On("Get", mock.Anything, key).Return(string(stale), nil)
	f.courses.On("ListCoursesByPersona", mock.Anything, domain.PersonaThinker).Return(courses, nil)
	f.strategies.On("ListStrategiesByPersona", mock.Anything, domain.PersonaThinker).Return(strategies, nil)
	f.cache.On("Set", mock.Anything, key, mock.Anything, time.Hour).Return(nil)

	got, err := f.svc.Recommended(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "thinker", got.Persona)
}

func TestRecommendationService_Recommended_CacheFailuresAreNotFatal(t *testing.T) {
	f := newRecommendationFixture()
	courses, strategies := thinkerCatalog()
	key := cache.RecommendationKey("u1")

	f.users.On("GetUserByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Persona: domain.PersonaThinker}, nil)
	f.cache.On("Get", mock.Anything, key).Return("", errors.New("connection refused"))
	f.courses.On("ListCoursesByPersona", mock.Anything, domain.PersonaThinker).Return(courses, nil)
	f.strategies.On("ListStrategiesByPersona", mock.Anything, domain.PersonaThinker).Return(strategies, nil)
	f.cache.On("Set", mock.Anything, key, mock.Anything, time.Hour).Return(errors.New("connection refused"))

	got, err := f.svc.Recommended(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, got.Courses, 1)
}

func TestRecommendationService_Recommended_RepositoryError(t *testing.T) {
	f := newRecommendationFixture()
	f.users.On("GetUserByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Persona: domain.PersonaThinker}, nil)
	f.cache.On("Get", mock.Anything, mock.Anything).Return("", domain.ErrCacheMiss)
	f.courses.On("ListCoursesByPersona", mock.Anything, domain.PersonaThinker).Return(nil, errors.New("db down"))
	f.strategies.On("ListStrategiesByPersona", mock.Anything, domain.PersonaThinker).Return([]*domain.LearningStrategy{}, nil)

	_, err := f.svc.Recommended(context.Background(), "u1")
	assertDomainCode(t, err, domain.CodeInternal)
	f.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecommendationService_WithoutCache(t *testing.T) {
	users := new(MockUserRepository)
	courses := new(MockCourseRepository)
	strategies := new(MockStrategyRepository)
	svc := NewRecommendationService(users, courses, strategies, nil, 0, nil)

	list, strats := thinkerCatalog()
	users.On("GetUserByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Persona: domain.PersonaThinker}, nil)
	courses.On("ListCoursesByPersona", mock.Anything, domain.PersonaThinker).Return(list, nil)
	strategies.On("ListStrategiesByPersona", mock.Anything, domain.PersonaThinker).Return(strats, nil)

	got, err := svc.Recommended(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, got.Strategies, 1)
	assert.NoError(t, svc.InvalidateUser(context.Background(), "u1"))
}

func TestRecommendationService_ByPersona(t *testing.T) {
	f := newRecommendationFixture()
	courses, strategies := thinkerCatalog()
	f.courses.On("ListCoursesByPersona", mock.Anything, domain.PersonaThinker).Return(courses, nil)
	f.strategies.On("ListStrategiesByPersona", mock.Anything, domain.PersonaThinker).Return(strategies, nil)

	gotCourses, err := f.svc.CoursesByPersona(context.Background(), "The Thinker")
	require.NoError(t, err)
	assert.Len(t, gotCourses, 1)

	gotStrategies, err := f.svc.StrategiesByPersona(context.Background(), "THINKER")
	require.NoError(t, err)
	assert.Len(t, gotStrategies, 1)

	_, err = f.svc.CoursesByPersona(context.Background(), "Visual Learner")
	assertDomainCode(t, err, domain.CodeInvalidPersona)
	_, err = f.svc.StrategiesByPersona(context.Background(), "")
	assertDomainCode(t, err, domain.CodeInvalidPersona)
}

func TestRecommendationService_ListCourses_TagFilter(t *testing.T) {
	f := newRecommendationFixture()
	all := []*domain.Course{
		{ID: "c1", Title: "Go", Tags: []string{"Programming"}},
		{ID: "c2", Title: "Sketching", Tags: []string{"Design"}},
		{ID: "c3", Title: "Negotiation"},
	}
	f.courses.On("ListCourses", mock.Anything).Return(all, nil).Once()

	got, err := f.svc.ListCourses(context.Background(), []string{"design"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c2", got[0].ID)
	assert.Equal(t, []string{"Design"}, got[0].Tags)

	f.courses.On("ListCourses", mock.Anything).Return([]*domain.Course{{ID: "c3"}}, nil).Once()
	got, err = f.svc.ListCourses(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{}, got[0].Tags)
}

func TestRecommendationService_GetCourseAndStrategy(t *testing.T) {
	f := newRecommendationFixture()
	courses, strategies := thinkerCatalog()
	f.courses.On("GetCourseByID", mock.Anything, "c1").Return(courses[0], nil)
	f.courses.On("GetCourseByID", mock.Anything, "missing").Return(nil, nil)
	f.strategies.On("GetStrategyByID", mock.Anything, "s1").Return(strategies[0], nil)
	f.strategies.On("GetStrategyByID", mock.Anything, "missing").Return(nil, nil)

	c, err := f.svc.GetCourse(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"thinker"}, c.SuitablePersonas)

	_, err = f.svc.GetCourse(context.Background(), "missing")
	assertDomainCode(t, err, domain.CodeNotFound)

	s, err := f.svc.GetStrategy(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "technique", s.Type)

	_, err = f.svc.GetStrategy(context.Background(), "missing")
	assertDomainCode(t, err, domain.CodeNotFound)
}

func TestRecommendationService_InvalidateUser(t *testing.T) {
	f := newRecommendationFixture()
	f.cache.On("Delete", mock.Anything, cache.RecommendationKey("u1")).Return(nil)

	require.NoError(t, f.svc.InvalidateUser(context.Background(), "u1"))
	require.NoError(t, f.svc.InvalidateUser(context.Background(), " "))
	f.cache.AssertNumberOfCalls(t, "Delete", 1)
}
