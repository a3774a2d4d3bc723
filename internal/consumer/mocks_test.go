package consumer

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hxrushing/sdk-platform/internal/domain"
	"github.com/hxrushing/sdk-platform/internal/repository"
)

var testEventTime = time.Unix(1766702552, 0).UTC()

// MockEventRepository is a mock implementation of repository.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) InsertBatch(ctx context.Context, events []*domain.Event) (int, error) {
	args := m.Called(ctx, events)
	return args.Int(0), args.Error(1)
}

func (m *MockEventRepository) InitSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEventRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEventRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockEventRepository) DailyStats(ctx context.Context, q repository.StatsQuery) ([]repository.DailyStat, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.DailyStat), args.Error(1)
}

func (m *MockEventRepository) DayTotals(ctx context.Context, projectID, date string) (repository.DayTotals, error) {
	args := m.Called(ctx, projectID, date)
	return args.Get(0).(repository.DayTotals), args.Error(1)
}

func (m *MockEventRepository) PageviewTotals(ctx context.Context, projectID, date string) (repository.PageviewTotals, error) {
	args := m.Called(ctx, projectID, date)
	return args.Get(0).(repository.PageviewTotals), args.Error(1)
}

func (m *MockEventRepository) AvgSessionMinutes(ctx context.Context, projectID, date string) (float64, error) {
	args := m.Called(ctx, projectID, date)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockEventRepository) HourlyEventStats(ctx context.Context, q repository.HourlyEventQuery) ([]repository.HourlyEventStat, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.HourlyEventStat), args.Error(1)
}

func (m *MockEventRepository) DistinctUsers(ctx context.Context, projectID, eventName, startDate, endDate string) (uint64, error) {
	args := m.Called(ctx, projectID, eventName, startDate, endDate)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockEventRepository) TopProjects(ctx context.Context, startDate, endDate string, limit int) ([]repository.ProjectVisits, error) {
	args := m.Called(ctx, startDate, endDate, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ProjectVisits), args.Error(1)
}

func (m *MockEventRepository) RecentEvents(ctx context.Context, projectID string, limit int) ([]*domain.Event, error) {
	args := m.Called(ctx, projectID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Event), args.Error(1)
}
