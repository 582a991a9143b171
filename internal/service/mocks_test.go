package service

import (
	"context"
	"time"

	"learn-persona/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == "" {
		user.ID = "generated-user-id"
	}
	return args.Error(0)
}

func (m *MockUserRepository) getUser(args mock.Arguments) (*domain.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return m.getUser(m.Called(ctx, userID))
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.getUser(m.Called(ctx, username))
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getUser(m.Called(ctx, email))
}

func (m *MockUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return m.getUser(m.Called(ctx, googleID))
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserForUpdate(ctx context.Context, userID string) (*domain.User, error) {
	return m.getUser(m.Called(ctx, userID))
}

func (m *MockUserRepository) SetPersona(ctx context.Context, userID string, persona domain.Persona, at time.Time) error {
	return m.Called(ctx, userID, persona, at).Error(0)
}

func (m *MockUserRepository) RecordActivity(ctx context.Context, userID string, streak int, lastActive time.Time) error {
	return m.Called(ctx, userID, streak, lastActive).Error(0)
}

func (m *MockUserRepository) UpdateCourseStats(ctx context.Context, userID string, completedDelta, progress int) error {
	return m.Called(ctx, userID, completedDelta, progress).Error(0)
}

func (m *MockUserRepository) LinkGoogleAccount(ctx context.Context, userID, googleID, name string) error {
	return m.Called(ctx, userID, googleID, name).Error(0)
}

func (m *MockUserRepository) PersonaCountsByDepartment(ctx context.Context) (map[string]map[domain.Persona]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]map[domain.Persona]int), args.Error(1)
}

func (m *MockUserRepository) CountActiveByPersona(ctx context.Context, since time.Time) (map[domain.Persona]int, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.Persona]int), args.Error(1)
}

func (m *MockUserRepository) ResetStaleStreaks(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// --- MockQuizResponseRepository ---
type MockQuizResponseRepository struct {
	mock.Mock
}

func (m *MockQuizResponseRepository) SaveResponse(ctx context.Context, r *domain.QuizResponse) error {
	args := m.Called(ctx, r)
	if args.Error(0) == nil && r.ID == "" {
		r.ID = "generated-response-id"
	}
	return args.Error(0)
}

func (m *MockQuizResponseRepository) ListResponsesByUser(ctx context.Context, userID string) ([]*domain.QuizResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.QuizResponse), args.Error(1)
}

func (m *MockQuizResponseRepository) GetLatestResponse(ctx context.Context, userID string) (*domain.QuizResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizResponse), args.Error(1)
}

// --- MockCourseRepository ---
type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) CreateCourse(ctx context.Context, course *domain.Course) error {
	return m.Called(ctx, course).Error(0)
}

func (m *MockCourseRepository) GetCourseByID(ctx context.Context, id string) (*domain.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

func (m *MockCourseRepository) GetCourseByTitle(ctx context.Context, title string) (*domain.Course, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

func (m *MockCourseRepository) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Course), args.Error(1)
}

func (m *MockCourseRepository) ListCoursesByPersona(ctx context.Context, p domain.Persona) ([]*domain.Course, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Course), args.Error(1)
}

// --- MockStrategyRepository ---
type MockStrategyRepository struct {
	mock.Mock
}

func (m *MockStrategyRepository) CreateStrategy(ctx context.Context, s *domain.LearningStrategy) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockStrategyRepository) GetStrategyByID(ctx context.Context, id string) (*domain.LearningStrategy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LearningStrategy), args.Error(1)
}

func (m *MockStrategyRepository) GetStrategyByTitle(ctx context.Context, title string) (*domain.LearningStrategy, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LearningStrategy), args.Error(1)
}

func (m *MockStrategyRepository) ListStrategies(ctx context.Context) ([]*domain.LearningStrategy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LearningStrategy), args.Error(1)
}

func (m *MockStrategyRepository) ListStrategiesByPersona(ctx context.Context, p domain.Persona) ([]*domain.LearningStrategy, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LearningStrategy), args.Error(1)
}

// --- MockProgressRepository ---
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) CreateProgress(ctx context.Context, p *domain.UserProgress) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil && p.ID == "" {
		p.ID = "generated-progress-id"
	}
	return args.Error(0)
}

func (m *MockProgressRepository) GetProgressByID(ctx context.Context, id string) (*domain.UserProgress, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProgress), args.Error(1)
}

func (m *MockProgressRepository) GetProgressByUserCourse(ctx context.Context, userID, courseID string) (*domain.UserProgress, error) {
	args := m.Called(ctx, userID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProgress), args.Error(1)
}

func (m *MockProgressRepository) UpdateProgress(ctx context.Context, p *domain.UserProgress) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProgressRepository) ListProgressByUser(ctx context.Context, userID string) ([]*domain.UserProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UserProgress), args.Error(1)
}

func (m *MockProgressRepository) ListActivity(ctx context.Context, limit int) ([]domain.ActivityItem, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ActivityItem), args.Error(1)
}

// --- MockSnapshotRepository ---
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) SaveSnapshot(ctx context.Context, s *domain.ActivitySnapshot) (bool, error) {
	args := m.Called(ctx, s)
	return args.Bool(0), args.Error(1)
}

func (m *MockSnapshotRepository) ListSnapshotsSince(ctx context.Context, since time.Time) ([]*domain.ActivitySnapshot, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ActivitySnapshot), args.Error(1)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// --- MockTransactionManager ---
// MockTransactionManager runs fn directly; Calls counts invocations.
type MockTransactionManager struct {
	Calls int
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	return fn(ctx)
}

// --- MockInvalidator ---
type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) InvalidateUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
