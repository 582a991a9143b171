package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"learn-persona/internal/adapter/spreadsheet"
	"learn-persona/internal/cache"
	"learn-persona/internal/domain"
	"learn-persona/internal/logger"
	"learn-persona/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTrendDays     = 7
	MaxTrendDays         = 90
	DefaultActivityLimit = 20
	MaxActivityLimit     = 100

	dashboardCacheName = "dashboard"
	activeWindow       = 24 * time.Hour
)

// DashboardService aggregates organization-wide persona analytics for L&D professionals.
type DashboardService interface {
	PersonaDistribution(ctx context.Context) (domain.PersonaDistribution, error)
	ActivityTrends(ctx context.Context, days int) (domain.ActivityTrends, error)
	RecentActivity(ctx context.Context, limit int) ([]domain.ActivityItem, error)
	Summary(ctx context.Context, limit, days int) (*domain.DashboardSummary, error)
	ExportWorkbook(ctx context.Context, w io.Writer, limit, days int) error
	// SnapshotActivity records, per persona, the users active in the 24 hours
	// before now, filed under the previous UTC day. A day that already has a
	// snapshot is left untouched.
	SnapshotActivity(ctx context.Context, now time.Time) (int, error)
}

type dashboardServiceImpl struct {
	userRepo     domain.UserRepository
	progressRepo domain.ProgressRepository
	snapshotRepo domain.SnapshotRepository
	cache        domain.Cache
	cacheTTL     time.Duration
	metrics      *metrics.Metrics
	now          func() time.Time
}

// NewDashboardService creates the service. cache and m may be nil.
func NewDashboardService(
	userRepo domain.UserRepository,
	progressRepo domain.ProgressRepository,
	snapshotRepo domain.SnapshotRepository,
	c domain.Cache,
	cacheTTL time.Duration,
	m *metrics.Metrics,
) DashboardService {
	return &dashboardServiceImpl{
		userRepo:     userRepo,
		progressRepo: progressRepo,
		snapshotRepo: snapshotRepo,
		cache:        c,
		cacheTTL:     cacheTTL,
		metrics:      m,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func clamp(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

func (s *dashboardServiceImpl) PersonaDistribution(ctx context.Context) (domain.PersonaDistribution, error) {
	counts, err := s.userRepo.PersonaCountsByDepartment(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load persona distribution", err)
	}
	dist := make(domain.PersonaDistribution, len(counts))
	for department, byPersona := range counts {
		labels := make(map[string]int, len(byPersona))
		for p, n := range byPersona {
			if p.IsValid() && n > 0 {
				labels[p.Label()] += n
			}
		}
		if len(labels) > 0 {
			dist[department] = labels
		}
	}
	return dist, nil
}

// ActivityTrends returns one zero-filled series per persona covering the last
// days calendar days (UTC), oldest first and ending today.
func (s *dashboardServiceImpl) ActivityTrends(ctx context.Context, days int) (domain.ActivityTrends, error) {
	days = clamp(days, DefaultTrendDays, MaxTrendDays)
	today := s.now().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(days - 1))

	snapshots, err := s.snapshotRepo.ListSnapshotsSince(ctx, start)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load activity snapshots", err)
	}

	trends := make(domain.ActivityTrends, len(domain.AllPersonas()))
	for _, p := range domain.AllPersonas() {
		trends[p.Label()] = make([]int, days)
	}
	for _, snap := range snapshots {
		if !snap.Persona.IsValid() {
			continue
		}
		idx := int(snap.Day.UTC().Truncate(24*time.Hour).Sub(start) / (24 * time.Hour))
		if idx < 0 || idx >= days {
			continue
		}
		trends[snap.Persona.Label()][idx] = snap.ActiveUsers
	}
	return trends, nil
}

func (s *dashboardServiceImpl) RecentActivity(ctx context.Context, limit int) ([]domain.ActivityItem, error) {
	items, err := s.progressRepo.ListActivity(ctx, clamp(limit, DefaultActivityLimit, MaxActivityLimit))
	if err != nil {
		return nil, domain.NewInternalError("Failed to load recent activity", err)
	}
	if items == nil {
		items = []domain.ActivityItem{}
	}
	return items, nil
}

// Summary loads every panel concurrently. Results are cached briefly per (limit, days).
func (s *dashboardServiceImpl) Summary(ctx context.Context, limit, days int) (*domain.DashboardSummary, error) {
	limit = clamp(limit, DefaultActivityLimit, MaxActivityLimit)
	days = clamp(days, DefaultTrendDays, MaxTrendDays)
	key := cache.DashboardSummaryKey(limit, days)

	if cached, ok := s.cachedSummary(ctx, key); ok {
		return cached, nil
	}

	summary := &domain.DashboardSummary{GeneratedAt: s.now()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary.Distribution, err = s.PersonaDistribution(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		summary.Trends, err = s.ActivityTrends(gctx, days)
		return err
	})
	g.Go(func() error {
		var err error
		summary.Activity, err = s.RecentActivity(gctx, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, key, string(data), s.cacheTTL); err != nil {
				logger.Get().Warn("Dashboard cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return summary, nil
}

func (s *dashboardServiceImpl) cachedSummary(ctx context.Context, key string) (*domain.DashboardSummary, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		result := "error"
		if errors.Is(err, domain.ErrCacheMiss) {
			result = "miss"
		}
		s.metrics.ObserveCache(dashboardCacheName, result)
		return nil, false
	}
	var summary domain.DashboardSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		s.metrics.ObserveCache(dashboardCacheName, "error")
		return nil, false
	}
	s.metrics.ObserveCache(dashboardCacheName, "hit")
	return &summary, true
}

func (s *dashboardServiceImpl) ExportWorkbook(ctx context.Context, w io.Writer, limit, days int) error {
	summary, err := s.Summary(ctx, limit, days)
	if err != nil {
		return err
	}
	if err := spreadsheet.WriteDashboard(w, summary); err != nil {
		return domain.NewInternalError("Failed to render dashboard workbook", err)
	}
	return nil
}

func (s *dashboardServiceImpl) SnapshotActivity(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()
	counts, err := s.userRepo.CountActiveByPersona(ctx, now.Add(-activeWindow))
	if err != nil {
		return 0, domain.NewInternalError("Failed to count active users", err)
	}

	// The counts cover the 24h ending at now, so they belong to the day before.
	day := now.AddDate(0, 0, -1)
	written := 0
	for _, p := range domain.AllPersonas() {
		ok, err := s.snapshotRepo.SaveSnapshot(ctx, &domain.ActivitySnapshot{
			Persona:     p,
			Day:         day,
			ActiveUsers: counts[p],
		})
		if err != nil {
			return written, domain.NewInternalError("Failed to save activity snapshot", err)
		}
		if ok {
			written++
		}
	}
	logger.Get().Info("Activity snapshot taken", zap.Int("written", written), zap.Time("day", day))
	return written, nil
}
