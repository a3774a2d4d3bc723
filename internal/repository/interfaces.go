package repository

import (
	"context"

	"github.com/hxrushing/sdk-platform/internal/domain"
)

// StatsQuery filters the daily PV/UV trend. Dates are inclusive
// YYYY-MM-DD calendar-day bounds; EventName optionally narrows the trend
// to one event.
type StatsQuery struct {
	ProjectID string
	StartDate string
	EndDate   string
	EventName string
}

// DailyStat is one day of the trend.
type DailyStat struct {
	Date string
	PV   uint64
	UV   uint64
}

// DayTotals are row and distinct-user counts for a single day.
type DayTotals struct {
	PV uint64
	UV uint64
}

// PageviewTotals are pageview row and distinct-user counts for a single
// day.
type PageviewTotals struct {
	Views uint64
	Users uint64
}

// HourlyEventQuery filters the hourly event breakdown. Timestamps are
// shifted by UTCOffsetHours before bucketing.
type HourlyEventQuery struct {
	ProjectID      string
	StartDate      string
	EndDate        string
	Events         []string
	UTCOffsetHours int
}

// HourlyEventStat is one (hour bucket, event name) aggregate.
type HourlyEventStat struct {
	Bucket    string
	EventName string
	Count     uint64
	Users     uint64
}

// ProjectVisits is one project's visit aggregate within a date range.
type ProjectVisits struct {
	ProjectID      string
	VisitCount     uint64
	UniqueVisitors uint64
}

// EventRepository defines event-log storage and aggregation reads. All
// reads are independent and side-effect free.
type EventRepository interface {
	// InsertBatch appends a batch of events to the log.
	InsertBatch(ctx context.Context, events []*domain.Event) (int, error)

	// InitSchema creates the event-log table if it does not exist.
	InitSchema(ctx context.Context) error

	// Ping checks if the store connection is alive.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error

	// DailyStats groups events by calendar day, ascending.
	DailyStats(ctx context.Context, q StatsQuery) ([]DailyStat, error)

	// DayTotals counts rows and distinct users for one day.
	DayTotals(ctx context.Context, projectID, date string) (DayTotals, error)

	// PageviewTotals counts pageview rows and their distinct users for
	// one day.
	PageviewTotals(ctx context.Context, projectID, date string) (PageviewTotals, error)

	// AvgSessionMinutes returns the mean per-user span in minutes
	// between first and last event of the day, over users with at least
	// one event.
	AvgSessionMinutes(ctx context.Context, projectID, date string) (float64, error)

	// HourlyEventStats buckets the requested events by display hour,
	// ordered by bucket then event name.
	HourlyEventStats(ctx context.Context, q HourlyEventQuery) ([]HourlyEventStat, error)

	// DistinctUsers counts distinct users that fired eventName within
	// the range.
	DistinctUsers(ctx context.Context, projectID, eventName, startDate, endDate string) (uint64, error)

	// TopProjects ranks projects by event count descending within the
	// range; ties break on project id for reproducibility.
	TopProjects(ctx context.Context, startDate, endDate string, limit int) ([]ProjectVisits, error)

	// RecentEvents lists the latest events for a project, newest first.
	RecentEvents(ctx context.Context, projectID string, limit int) ([]*domain.Event, error)
}

// MetadataRepository defines project and event-definition storage.
type MetadataRepository interface {
	// InitSchema creates the metadata tables if they do not exist.
	InitSchema(ctx context.Context) error

	// DefinitionExists reports whether any definition row exists for
	// (projectID, eventName).
	DefinitionExists(ctx context.Context, projectID, eventName string) (bool, error)

	// CreateDefinition inserts a definition row. No uniqueness is
	// enforced; concurrent first-sight ingestion may produce duplicate
	// rows, which consumers tolerate.
	CreateDefinition(ctx context.Context, def *domain.EventDefinition) error

	// ListDefinitions returns all definitions for a project.
	ListDefinitions(ctx context.Context, projectID string) ([]*domain.EventDefinition, error)

	// UpdateDefinition mutates a definition scoped to (id, projectID).
	UpdateDefinition(ctx context.Context, def *domain.EventDefinition) error

	// DeleteDefinition removes a definition scoped to (id, projectID).
	DeleteDefinition(ctx context.Context, id, projectID string) error

	// CreateProject inserts a project.
	CreateProject(ctx context.Context, p *domain.Project) error

	// ListProjects returns all projects, newest first.
	ListProjects(ctx context.Context) ([]*domain.Project, error)

	// ProjectNames resolves project ids to display names.
	ProjectNames(ctx context.Context, ids []string) (map[string]string, error)

	// Close releases resources.
	Close() error
}
