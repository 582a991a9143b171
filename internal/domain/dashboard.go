package domain

import (
	"context"
	"time"
)

// ActivitySnapshot is the number of active users of one persona on one day.
type ActivitySnapshot struct {
	ID          string
	Persona     Persona
	Day         time.Time
	ActiveUsers int
	CreatedAt   time.Time
}

// PersonaDistribution maps department -> persona label -> user count.
type PersonaDistribution map[string]map[string]int

// ActivityTrends maps persona label -> daily counts, oldest first.
type ActivityTrends map[string][]int

// DashboardSummary bundles every dashboard panel.
type DashboardSummary struct {
	Distribution PersonaDistribution
	Trends       ActivityTrends
	Activity     []ActivityItem
	GeneratedAt  time.Time
}

// SnapshotRepository persists daily activity snapshots.
type SnapshotRepository interface {
	// SaveSnapshot inserts the snapshot unless one exists for the same persona and day.
	// It reports whether a row was written.
	SaveSnapshot(ctx context.Context, s *ActivitySnapshot) (bool, error)
	ListSnapshotsSince(ctx context.Context, since time.Time) ([]*ActivitySnapshot, error)
}

// TransactionManager runs fn inside a single database transaction carried by ctx.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
