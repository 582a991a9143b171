package scheduler

import (
	"context"
	"fmt"
	"time"

	"learn-persona/internal/config"
	"learn-persona/internal/logger"
	"learn-persona/internal/metrics"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

const (
	JobActivitySnapshot = "activity_snapshot"
	JobStreakExpiry     = "streak_expiry"

	defaultRunAt = "00:05"
	jobTimeout   = 5 * time.Minute
)

// Snapshotter records daily per-persona activity.
type Snapshotter interface {
	SnapshotActivity(ctx context.Context, now time.Time) (int, error)
}

// StreakExpirer resets the streaks of users who missed a day.
type StreakExpirer interface {
	ExpireStreaks(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler runs the daily maintenance jobs.
type Scheduler struct {
	scheduler   *gocron.Scheduler
	snapshotter Snapshotter
	streaks     StreakExpirer
	metrics     *metrics.Metrics
	runAt       string
	now         func() time.Time
}

// New creates a scheduler that runs both jobs once a day at cfg.SnapshotAt (UTC).
func New(cfg config.SchedulerConfig, snapshotter Snapshotter, streaks StreakExpirer, m *metrics.Metrics) *Scheduler {
	runAt := cfg.SnapshotAt
	if runAt == "" {
		runAt = defaultRunAt
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler:   s,
		snapshotter: snapshotter,
		streaks:     streaks,
		metrics:     m,
		runAt:       runAt,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the jobs and runs the scheduler in the background.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Day().At(s.runAt).Tag(JobStreakExpiry).Do(s.RunStreakExpiry); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", JobStreakExpiry, err)
	}
	if _, err := s.scheduler.Every(1).Day().At(s.runAt).Tag(JobActivitySnapshot).Do(s.RunSnapshot); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", JobActivitySnapshot, err)
	}
	s.scheduler.StartAsync()
	logger.Get().Info("Scheduler started", zap.String("run_at_utc", s.runAt), zap.Int("jobs", len(s.scheduler.Jobs())))
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunSnapshot takes the activity snapshot for the day that just ended.
func (s *Scheduler) RunSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	written, err := s.snapshotter.SnapshotActivity(ctx, s.now())
	s.metrics.IncJobRun(JobActivitySnapshot, err)
	if err != nil {
		logger.Get().Error("Activity snapshot failed", zap.Error(err))
		return
	}
	logger.Get().Info("Activity snapshot completed", zap.Int("rows_written", written))
}

// RunStreakExpiry zeroes the streaks of users inactive since before yesterday.
func (s *Scheduler) RunStreakExpiry() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	reset, err := s.streaks.ExpireStreaks(ctx, s.now())
	s.metrics.IncJobRun(JobStreakExpiry, err)
	if err != nil {
		logger.Get().Error("Streak expiry failed", zap.Error(err))
		return
	}
	logger.Get().Info("Streak expiry completed", zap.Int64("users_reset", reset))
}
