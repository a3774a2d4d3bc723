package service

import (
	"context"
	"errors"

	"github.com/hxrushing/sdk-platform/internal/dto"
)

// Sentinel errors that handlers map to client-side failures.
var (
	// ErrMissingFields indicates a tracked event without project or
	// event identifiers.
	ErrMissingFields = errors.New("missing required fields: projectId and eventName")

	// ErrInvalidDateFormat indicates a date parameter that is not a
	// valid YYYY-MM-DD calendar date.
	ErrInvalidDateFormat = errors.New("invalid date format, expected YYYY-MM-DD")

	// ErrMissingParameters indicates an analytics query without the
	// required event or stage list.
	ErrMissingParameters = errors.New("missing required query parameters")
)

// DefinitionCache is the read-through cache consulted before the
// metadata store on the ingestion path.
type DefinitionCache interface {
	Known(ctx context.Context, projectID, eventName string) (bool, error)
	Mark(ctx context.Context, projectID, eventName string) error
}

// TrackingServicer handles event ingestion and raw event reads.
type TrackingServicer interface {
	// TrackEvent validates an event, auto-registers its definition and
	// enqueues it for persistence.
	TrackEvent(ctx context.Context, req *dto.TrackEventRequest) error

	// TrackEventsBulk processes a batch of events individually; one bad
	// event does not fail the rest.
	TrackEventsBulk(ctx context.Context, events []dto.TrackEventRequest) *dto.BulkTrackResponse

	// RecentEvents lists the latest stored events for a project.
	RecentEvents(ctx context.Context, projectID string, limit int) ([]dto.RecentEvent, error)
}

// StatsServicer computes analytics over the event log.
type StatsServicer interface {
	// DailyStats returns the daily PV/UV trend.
	DailyStats(ctx context.Context, req *dto.StatsRequest) ([]dto.DailyStat, error)

	// DashboardOverview returns today's PV, UV, pages per user and mean
	// session duration.
	DashboardOverview(ctx context.Context, projectID string) (*dto.DashboardOverview, error)

	// EventAnalysis returns hourly counts, distinct users and per-user
	// averages for the requested events.
	EventAnalysis(ctx context.Context, req *dto.EventAnalysisRequest) ([]dto.EventAnalysisPoint, error)

	// FunnelAnalysis computes sequential conversion across the given
	// stages, with a comparison against the preceding period.
	FunnelAnalysis(ctx context.Context, req *dto.FunnelAnalysisRequest) ([]dto.FunnelStage, error)

	// TopProjects ranks projects by visit count within the range.
	TopProjects(ctx context.Context, req *dto.TopProjectsRequest) ([]dto.ProjectRank, error)
}

// MetadataServicer manages projects and event definitions.
type MetadataServicer interface {
	ListDefinitions(ctx context.Context, projectID string) ([]dto.EventDefinitionData, error)
	CreateDefinition(ctx context.Context, req *dto.EventDefinitionRequest) (*dto.EventDefinitionData, error)
	UpdateDefinition(ctx context.Context, id string, req *dto.EventDefinitionRequest) (*dto.EventDefinitionData, error)
	DeleteDefinition(ctx context.Context, id, projectID string) error

	CreateProject(ctx context.Context, req *dto.CreateProjectRequest) (*dto.ProjectData, error)
	ListProjects(ctx context.Context) ([]dto.ProjectData, error)
}
