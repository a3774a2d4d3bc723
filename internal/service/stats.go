package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hxrushing/sdk-platform/internal/dto"
	"github.com/hxrushing/sdk-platform/internal/repository"
)

const dateLayout = "2006-01-02"

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// validateDate rejects anything that is not a real YYYY-MM-DD calendar
// date before it reaches a query.
func validateDate(s string) (time.Time, error) {
	if !dateRe.MatchString(s) {
		return time.Time{}, ErrInvalidDateFormat
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// splitList parses a comma-separated parameter, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// StatsService implements StatsServicer on top of the event log, with
// project names resolved from the metadata store.
type StatsService struct {
	events         repository.EventRepository
	meta           repository.MetadataRepository
	utcOffsetHours int
	now            func() time.Time
	log            *zap.Logger
}

// NewStatsService creates a new stats service. utcOffsetHours shifts
// hourly buckets into the dashboard's display timezone.
func NewStatsService(events repository.EventRepository, meta repository.MetadataRepository, utcOffsetHours int, log *zap.Logger) *StatsService {
	return &StatsService{
		events:         events,
		meta:           meta,
		utcOffsetHours: utcOffsetHours,
		now:            time.Now,
		log:            log,
	}
}

// DailyStats returns the daily PV/UV trend for the range.
func (s *StatsService) DailyStats(ctx context.Context, req *dto.StatsRequest) ([]dto.DailyStat, error) {
	if _, err := validateDate(req.StartDate); err != nil {
		return nil, err
	}
	if _, err := validateDate(req.EndDate); err != nil {
		return nil, err
	}

	rows, err := s.events.DailyStats(ctx, repository.StatsQuery{
		ProjectID: req.ProjectID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		EventName: req.EventName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}

	out := make([]dto.DailyStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.DailyStat{Date: row.Date, PV: row.PV, UV: row.UV})
	}
	return out, nil
}

// DashboardOverview composes today's totals, pages per user and mean
// session duration.
func (s *StatsService) DashboardOverview(ctx context.Context, projectID string) (*dto.DashboardOverview, error) {
	if projectID == "" {
		return nil, ErrMissingParameters
	}
	today := s.now().UTC().Format(dateLayout)

	totals, err := s.events.DayTotals(ctx, projectID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to query day totals: %w", err)
	}

	pageviews, err := s.events.PageviewTotals(ctx, projectID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to query pageview totals: %w", err)
	}

	avgMinutes, err := s.events.AvgSessionMinutes(ctx, projectID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to query session duration: %w", err)
	}

	var avgPages float64
	if pageviews.Users > 0 {
		avgPages = float64(pageviews.Views) / float64(pageviews.Users)
	}

	return &dto.DashboardOverview{
		TodayPV:     totals.PV,
		TodayUV:     totals.UV,
		AvgPages:    avgPages,
		AvgDuration: avgMinutes,
	}, nil
}

// EventAnalysis buckets the requested events by display hour.
func (s *StatsService) EventAnalysis(ctx context.Context, req *dto.EventAnalysisRequest) ([]dto.EventAnalysisPoint, error) {
	if _, err := validateDate(req.StartDate); err != nil {
		return nil, err
	}
	if _, err := validateDate(req.EndDate); err != nil {
		return nil, err
	}
	events := splitList(req.Events)
	if len(events) == 0 {
		return nil, ErrMissingParameters
	}

	rows, err := s.events.HourlyEventStats(ctx, repository.HourlyEventQuery{
		ProjectID:      req.ProjectID,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Events:         events,
		UTCOffsetHours: s.utcOffsetHours,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query event analysis: %w", err)
	}

	out := make([]dto.EventAnalysisPoint, 0, len(rows))
	for _, row := range rows {
		var avgPerUser float64
		if row.Users > 0 {
			avgPerUser = float64(row.Count) / float64(row.Users)
		}
		out = append(out, dto.EventAnalysisPoint{
			Date:       row.Bucket,
			EventName:  row.EventName,
			Count:      row.Count,
			Users:      row.Users,
			AvgPerUser: avgPerUser,
		})
	}
	return out, nil
}

// FunnelAnalysis counts distinct users per stage over the range and
// compares each stage against the preceding period of equal length,
// which ends the day before the range starts.
func (s *StatsService) FunnelAnalysis(ctx context.Context, req *dto.FunnelAnalysisRequest) ([]dto.FunnelStage, error) {
	start, err := validateDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := validateDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	stages := splitList(req.Stages)
	if len(stages) == 0 {
		return nil, ErrMissingParameters
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	prevEnd := start.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -(days - 1))

	out := make([]dto.FunnelStage, 0, len(stages))
	var prevStageValue uint64

	for i, stage := range stages {
		value, err := s.events.DistinctUsers(ctx, req.ProjectID, stage, req.StartDate, req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("failed to query funnel stage %q: %w", stage, err)
		}
		prevValue, err := s.events.DistinctUsers(ctx, req.ProjectID, stage,
			prevStart.Format(dateLayout), prevEnd.Format(dateLayout))
		if err != nil {
			return nil, fmt.Errorf("failed to query previous period for stage %q: %w", stage, err)
		}

		var rate *float64
		if i > 0 {
			r := 0.0
			if prevStageValue > 0 {
				r = float64(value) / float64(prevStageValue)
			}
			rate = &r
		}

		var change float64
		if prevValue > 0 {
			change = (float64(value) - float64(prevValue)) / float64(prevValue)
		}

		out = append(out, dto.FunnelStage{
			Stage:  stage,
			Value:  value,
			Rate:   rate,
			Change: change,
		})
		prevStageValue = value
	}

	return out, nil
}

// topProjectsLimit caps the ranking size.
const topProjectsLimit = 5

// TopProjects ranks projects by visit count across the whole platform.
// Projects missing from the metadata store are skipped.
func (s *StatsService) TopProjects(ctx context.Context, req *dto.TopProjectsRequest) ([]dto.ProjectRank, error) {
	if _, err := validateDate(req.StartDate); err != nil {
		return nil, err
	}
	if _, err := validateDate(req.EndDate); err != nil {
		return nil, err
	}

	visits, err := s.events.TopProjects(ctx, req.StartDate, req.EndDate, topProjectsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top projects: %w", err)
	}
	if len(visits) == 0 {
		return []dto.ProjectRank{}, nil
	}

	ids := make([]string, 0, len(visits))
	for _, v := range visits {
		ids = append(ids, v.ProjectID)
	}
	names, err := s.meta.ProjectNames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project names: %w", err)
	}

	out := make([]dto.ProjectRank, 0, len(visits))
	for _, v := range visits {
		name, ok := names[v.ProjectID]
		if !ok {
			s.log.Warn("Ranked project has no metadata row, skipping",
				zap.String("project_id", v.ProjectID))
			continue
		}
		out = append(out, dto.ProjectRank{
			ProjectName:    name,
			VisitCount:     v.VisitCount,
			UniqueVisitors: v.UniqueVisitors,
		})
	}
	return out, nil
}
