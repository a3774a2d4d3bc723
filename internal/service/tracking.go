package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hxrushing/sdk-platform/internal/domain"
	"github.com/hxrushing/sdk-platform/internal/dto"
	"github.com/hxrushing/sdk-platform/internal/metrics"
	"github.com/hxrushing/sdk-platform/internal/queue"
	"github.com/hxrushing/sdk-platform/internal/repository"
)

// TrackingService implements TrackingServicer. Ingestion is
// validate, auto-register the definition, enqueue; persistence happens
// in the consumer.
type TrackingService struct {
	publisher queue.QueuePublisher
	events    repository.EventRepository
	meta      repository.MetadataRepository
	cache     DefinitionCache
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// NewTrackingService creates a new tracking service. cache may be nil
// when the definition cache is disabled.
func NewTrackingService(
	publisher queue.QueuePublisher,
	events repository.EventRepository,
	meta repository.MetadataRepository,
	cache DefinitionCache,
	m *metrics.Metrics,
	log *zap.Logger,
) *TrackingService {
	return &TrackingService{
		publisher: publisher,
		events:    events,
		meta:      meta,
		cache:     cache,
		metrics:   m,
		log:       log,
	}
}

// TrackEvent validates the event, registers its definition on first
// sight and publishes it to the ingestion queue.
func (s *TrackingService) TrackEvent(ctx context.Context, req *dto.TrackEventRequest) error {
	if req.ProjectID == "" || req.EventName == "" {
		s.metrics.EventsRejected.Inc()
		return ErrMissingFields
	}

	if err := s.ensureDefinition(ctx, req.ProjectID, req.EventName); err != nil {
		return err
	}

	if err := s.publisher.PublishEvent(ctx, req); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	s.metrics.EventsAccepted.Inc()
	return nil
}

// TrackEventsBulk processes each event independently so a malformed
// entry never rejects its siblings.
func (s *TrackingService) TrackEventsBulk(ctx context.Context, events []dto.TrackEventRequest) *dto.BulkTrackResponse {
	resp := &dto.BulkTrackResponse{}

	for i := range events {
		if err := s.TrackEvent(ctx, &events[i]); err != nil {
			resp.Rejected++
			resp.Errors = append(resp.Errors, fmt.Sprintf("event %d: %v", i, err))
			s.log.Warn("Bulk event rejected",
				zap.Int("index", i),
				zap.String("project_id", events[i].ProjectID),
				zap.String("event_name", events[i].EventName),
				zap.Error(err))
			continue
		}
		resp.Accepted++
	}

	return resp
}

// ensureDefinition registers an event definition the first time a
// (project, event name) pair is seen. The cache is best-effort; the
// metadata store is authoritative. Duplicate rows from concurrent first
// sights are tolerated downstream.
func (s *TrackingService) ensureDefinition(ctx context.Context, projectID, eventName string) error {
	if s.cache != nil {
		known, err := s.cache.Known(ctx, projectID, eventName)
		if err != nil {
			return fmt.Errorf("definition cache lookup failed: %w", err)
		}
		if known {
			s.metrics.CacheHits.Inc()
			return nil
		}
		s.metrics.CacheMisses.Inc()
	}

	exists, err := s.meta.DefinitionExists(ctx, projectID, eventName)
	if err != nil {
		return fmt.Errorf("failed to check event definition: %w", err)
	}

	if !exists {
		def := &domain.EventDefinition{
			ID:           uuid.NewString(),
			ProjectID:    projectID,
			EventName:    eventName,
			Description:  fmt.Sprintf("Auto-created event: %s", eventName),
			ParamsSchema: "{}",
		}
		if err := s.meta.CreateDefinition(ctx, def); err != nil {
			return fmt.Errorf("failed to auto-create event definition: %w", err)
		}
		s.metrics.DefinitionsAutoCreated.Inc()
		s.log.Info("Event definition auto-created",
			zap.String("project_id", projectID),
			zap.String("event_name", eventName))
	}

	if s.cache != nil {
		if err := s.cache.Mark(ctx, projectID, eventName); err != nil {
			s.log.Warn("Failed to mark definition in cache", zap.Error(err))
		}
	}

	return nil
}

// RecentEvents lists the newest stored events for a project.
func (s *TrackingService) RecentEvents(ctx context.Context, projectID string, limit int) ([]dto.RecentEvent, error) {
	if projectID == "" {
		return nil, ErrMissingParameters
	}
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	rows, err := s.events.RecentEvents(ctx, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent events: %w", err)
	}

	out := make([]dto.RecentEvent, 0, len(rows))
	for _, row := range rows {
		params := map[string]interface{}{}
		if row.EventParams != "" {
			if err := json.Unmarshal([]byte(row.EventParams), &params); err != nil {
				s.log.Warn("Stored event params are not valid JSON",
					zap.String("project_id", row.ProjectID),
					zap.String("event_name", row.EventName),
					zap.Error(err))
				params = map[string]interface{}{}
			}
		}
		out = append(out, dto.RecentEvent{
			ProjectID:   row.ProjectID,
			EventName:   row.EventName,
			EventParams: params,
			UserID:      row.UserID,
			Timestamp:   row.Timestamp.UnixMilli(),
		})
	}

	return out, nil
}
