package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"learn-persona/internal/domain"
	"learn-persona/internal/dto"
	"learn-persona/internal/handler"
	"learn-persona/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDashboardApp(mock *MockDashboardService) *fiber.App {
	app := newTestApp("ld-1", domain.RoleLDProfessional)
	h := handler.NewDashboardHandler(mock)
	query := middleware.NewValidationMiddleware().ValidateDashboardQuery()
	app.Get("/api/dashboard/personas", h.PersonaDistribution)
	app.Get("/api/dashboard/trends", query, h.ActivityTrends)
	app.Get("/api/dashboard/activity", query, h.RecentActivity)
	app.Get("/api/dashboard/summary", query, h.Summary)
	app.Get("/api/dashboard/export", query, h.Export)
	return app
}

func TestDashboardHandler_PersonaDistribution(t *testing.T) {
	mock := &MockDashboardService{
		PersonaDistributionFunc: func(ctx context.Context) (domain.PersonaDistribution, error) {
			return domain.PersonaDistribution{"Engineering": {"The Thinker": 3}}, nil
		},
	}
	resp, err := newDashboardApp(mock).Test(httptest.NewRequest(http.MethodGet, "/api/dashboard/personas", nil))
	require.NoError(t, err)

	var body map[string]map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 3, body["Engineering"]["The Thinker"])
}

func TestDashboardHandler_Trends_UsesValidatedDays(t *testing.T) {
	var gotDays int
	mock := &MockDashboardService{
		ActivityTrendsFunc: func(ctx context.Context, days int) (domain.ActivityTrends, error) {
			gotDays = days
			return domain.ActivityTrends{"The Explorer": make([]int, days)}, nil
		},
	}
	app := newDashboardApp(mock)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/dashboard/trends", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 7, gotDays)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/dashboard/trends?days=30", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 30, gotDays)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/dashboard/trends?days=abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDashboardHandler_RecentActivity(t *testing.T) {
	at := time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC)
	mock := &MockDashboardService{
		RecentActivityFunc: func(ctx context.Context, limit int) ([]domain.ActivityItem, error) {
			assert.Equal(t, 5, limit)
			return []domain.ActivityItem{{UserID: "u1", UserName: "Ada", CourseTitle: "Go", Type: domain.ActivityCompleted, Timestamp: at}}, nil
		},
	}
	resp, err := newDashboardApp(mock).Test(httptest.NewRequest(http.MethodGet, "/api/dashboard/activity?limit=5", nil))
	require.NoError(t, err)

	var body []dto.ActivityItemResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, string(domain.ActivityCompleted), body[0].Type)
	assert.True(t, at.Equal(body[0].Timestamp))
}

func TestDashboardHandler_Summary(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		mock := &MockDashboardService{
			SummaryFunc: func(ctx context.Context, limit, days int) (*domain.DashboardSummary, error) {
				assert.Equal(t, 20, limit)
				assert.Equal(t, 14, days)
				return &domain.DashboardSummary{
					Distribution: domain.PersonaDistribution{},
					Trends:       domain.ActivityTrends{"The Creator": {1, 2}},
					GeneratedAt:  time.Now().UTC(),
				}, nil
			},
		}
		resp, err := newDashboardApp(mock).Test(httptest.NewRequest(http.MethodGet, "/api/dashboard/summary?days=14", nil))
		require.NoError(t, err)

		var body dto.DashboardSummaryResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, []int{1, 2}, body.ActivityTrends["The Creator"])
		assert.NotNil(t, body.RecentActivity)
	})

	t.Run("service failure", func(t *testing.T) {
		mock := &MockDashboardService{
			SummaryFunc: func(ctx context.Context, limit, days int) (*domain.DashboardSummary, error) {
				return nil, domain.NewInternalError("Failed to build dashboard", errors.New("db down"))
			},
		}
		resp, err := newDashboardApp(mock).Test(httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}

func TestDashboardHandler_Export(t *testing.T) {
	mock := &MockDashboardService{
		ExportWorkbookFunc: func(ctx context.Context, w io.Writer, limit, days int) error {
			_, err := w.Write([]byte("PK-fake-workbook"))
			return err
		},
	}
	resp, err := newDashboardApp(mock).Test(httptest.NewRequest(http.MethodGet, "/api/dashboard/export", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get(fiber.HeaderContentType))
	assert.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderContentDisposition), `attachment; filename="persona-dashboard-`))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "PK-fake-workbook", string(body))
}
