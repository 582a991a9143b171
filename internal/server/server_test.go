package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"learn-persona/internal/config"
	"learn-persona/internal/database"
	"learn-persona/internal/domain"
	"learn-persona/internal/dto"
	"learn-persona/internal/questionbank"
	"learn-persona/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		DB:        config.DBConfig{Driver: config.DriverSQLite, Path: ":memory:"},
		Server:    config.ServerConfig{ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second, BodyLimit: 1 << 20, AllowOrigins: "*"},
		Cache:     config.CacheConfig{Backend: config.CacheBackendMemory, LRUSize: 64, RecommendationTTL: "1m", DashboardTTL: "1m"},
		JWT:       config.JWTConfig{SecretKey: "test-secret", AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour},
		Scheduler: config.SchedulerConfig{Enabled: true, SnapshotAt: "00:05"},
		Metrics:   config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func setupServer(t *testing.T) (*Server, domain.CourseRepository) {
	t.Helper()
	cfg := testConfig()

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, config.DriverSQLite))
	t.Cleanup(func() { db.Close() })

	c, closeCache, err := NewCache(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeCache() })

	bank, err := questionbank.Default()
	require.NoError(t, err)

	srv, err := New(Options{Config: cfg, DB: db, Cache: c, Bank: bank, Registry: prometheus.NewRegistry()})
	require.NoError(t, err)
	return srv, repository.NewSQLXCourseRepository(db)
}

func do(t *testing.T, app *fiber.App, method, target, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func register(t *testing.T, app *fiber.App, username, role string) dto.TokenResponse {
	t.Helper()
	resp := do(t, app, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Username:   username,
		Password:   "secret123",
		Name:       strings.ToUpper(username[:1]) + username[1:],
		Email:      username + "@example.com",
		Department: "Engineering",
		Role:       role,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decode[dto.TokenResponse](t, resp)
}

func answersFor(t *testing.T, app *fiber.App, persona string) map[string]string {
	t.Helper()
	questions := decode[dto.QuizQuestionsResponse](t, do(t, app, http.MethodGet, "/api/quiz/questions", "", nil))
	require.NotEmpty(t, questions.Questions)

	answers := make(map[string]string, len(questions.Questions))
	for _, q := range questions.Questions {
		for _, opt := range q.Options {
			if opt.Persona == persona {
				answers[q.ID] = opt.Persona
				break
			}
		}
		require.Contains(t, answers, q.ID, "question %s has no %s option", q.ID, persona)
	}
	return answers
}

func TestServer_LearnerJourney(t *testing.T) {
	srv, courses := setupServer(t)
	app := srv.App
	ctx := context.Background()

	course := &domain.Course{
		Title:            "Critical Thinking",
		URL:              "https://example.com/ct",
		Tags:             []string{"Logic"},
		SuitablePersonas: []domain.Persona{domain.PersonaThinker},
	}
	require.NoError(t, courses.CreateCourse(ctx, course))
	require.NoError(t, courses.CreateCourse(ctx, &domain.Course{
		Title: "Maker Lab", URL: "https://example.com/ml", SuitablePersonas: []domain.Persona{domain.PersonaCreator},
	}))

	tokens := register(t, app, "ada", "")

	// No persona yet.
	resp := do(t, app, http.MethodGet, "/api/courses/recommended", tokens.AccessToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Unauthenticated submissions are rejected.
	resp = do(t, app, http.MethodPost, "/api/quiz/submit", "", dto.QuizSubmitRequest{})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Incomplete submission.
	resp = do(t, app, http.MethodPost, "/api/quiz/submit", tokens.AccessToken, dto.QuizSubmitRequest{Answers: map[string]string{"q1": "thinker"}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodPost, "/api/quiz/submit", tokens.AccessToken, dto.QuizSubmitRequest{Answers: answersFor(t, app, "thinker")})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := decode[dto.QuizResultResponse](t, resp)
	assert.Equal(t, "thinker", result.Persona)

	profile := decode[dto.UserProfileResponse](t, do(t, app, http.MethodGet, "/api/user", tokens.AccessToken, nil))
	assert.Equal(t, "thinker", profile.Persona)

	resp = do(t, app, http.MethodGet, "/api/courses/recommended", tokens.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	recommended := decode[[]dto.CourseResponse](t, resp)
	require.Len(t, recommended, 1)
	assert.Equal(t, course.ID, recommended[0].ID)

	// Static course routes are not captured by :id, and malformed ids are rejected.
	resp = do(t, app, http.MethodGet, "/api/courses/not-a-ulid", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp = do(t, app, http.MethodGet, "/api/courses/"+course.ID, "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	all := decode[[]dto.CourseResponse](t, do(t, app, http.MethodGet, "/api/courses?tags=logic", "", nil))
	assert.Len(t, all, 1)

	resp = do(t, app, http.MethodPost, "/api/progress/start", tokens.AccessToken, dto.StartCourseRequest{CourseID: course.ID})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	progress := decode[dto.ProgressResponse](t, resp)

	completed := true
	resp = do(t, app, http.MethodPut, "/api/progress/"+progress.ID, tokens.AccessToken, dto.UpdateProgressRequest{Completed: &completed})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 100, decode[dto.ProgressResponse](t, resp).Progress)

	profile = decode[dto.UserProfileResponse](t, do(t, app, http.MethodGet, "/api/user", tokens.AccessToken, nil))
	assert.Equal(t, 1, profile.CompletedCourses)
	assert.Equal(t, 100, profile.Progress)

	// Learners cannot see the dashboard.
	resp = do(t, app, http.MethodGet, "/api/dashboard/personas", tokens.AccessToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestServer_Dashboard(t *testing.T) {
	srv, _ := setupServer(t)
	app := srv.App

	learner := register(t, app, "bob", "")
	resp := do(t, app, http.MethodPost, "/api/quiz/submit", learner.AccessToken, dto.QuizSubmitRequest{Answers: answersFor(t, app, "creator")})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	ld := register(t, app, "lena", string(domain.RoleLDProfessional))

	resp = do(t, app, http.MethodGet, "/api/dashboard/personas", ld.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	dist := decode[map[string]map[string]int](t, resp)
	assert.Equal(t, 1, dist["Engineering"][domain.PersonaCreator.Label()])

	written, err := srv.DashboardService.SnapshotActivity(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 5, written)

	resp = do(t, app, http.MethodGet, "/api/dashboard/trends?days=3", ld.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	trends := decode[map[string][]int](t, resp)
	require.Len(t, trends[domain.PersonaCreator.Label()], 3)
	assert.GreaterOrEqual(t, trends[domain.PersonaCreator.Label()][1], 1)
	assert.Equal(t, 0, trends[domain.PersonaCreator.Label()][2])

	resp = do(t, app, http.MethodGet, "/api/dashboard/summary?limit=500", ld.AccessToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/api/dashboard/export", ld.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("PK")), "xlsx is a zip archive")
}

func TestServer_OperationalEndpoints(t *testing.T) {
	srv, _ := setupServer(t)
	app := srv.App
	require.NotNil(t, srv.Scheduler)

	resp := do(t, app, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	resp = do(t, app, http.MethodGet, "/api/personas", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "learn_persona_http_request_duration_seconds")
}

func TestNewCache_UnsupportedBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Backend = "memcached"
	_, closeFn, err := NewCache(context.Background(), cfg)
	assert.Error(t, err)
	assert.NotNil(t, closeFn)
}
