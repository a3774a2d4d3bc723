package clickhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/hxrushing/sdk-platform/internal/domain"
	"github.com/hxrushing/sdk-platform/internal/repository"
)

// Repository implements repository.EventRepository for ClickHouse
type Repository struct {
	client *Client
	log    *zap.Logger
}

// NewRepository creates a new ClickHouse repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		client: client,
		log:    log,
	}
}

// InitSchema creates the append-only event log
func (r *Repository) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS events (
		project_id String,
		event_name LowCardinality(String),
		event_params String,
		user_id String,
		device_info String,
		timestamp DateTime64(3),
		received_at DateTime64(3) DEFAULT now64(3)
	) ENGINE = MergeTree
	ORDER BY (project_id, event_name, timestamp)
	PARTITION BY toYYYYMM(timestamp)
	SETTINGS index_granularity = 8192
	`

	if err := r.client.Conn().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}

	r.log.Info("ClickHouse schema initialized successfully")
	return nil
}

// InsertBatch appends a batch of events to the log
func (r *Repository) InsertBatch(ctx context.Context, events []*domain.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx,
		"INSERT INTO events (project_id, event_name, event_params, user_id, device_info, timestamp, received_at)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	insertedCount := 0
	for _, event := range events {
		paramsJSON := event.EventParams
		if paramsJSON == "" {
			paramsJSON = "{}"
		}

		deviceJSON := event.DeviceInfo
		if deviceJSON == "" {
			deviceJSON = "{}"
		}

		receivedAt := event.ReceivedAt
		if receivedAt.IsZero() {
			receivedAt = time.Now()
		}

		err := batch.Append(
			event.ProjectID,
			event.EventName,
			paramsJSON,
			event.UserID,
			deviceJSON,
			event.Timestamp,
			receivedAt,
		)

		if err != nil {
			return 0, fmt.Errorf("failed to append event to batch: %w", err)
		}
		insertedCount++
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return insertedCount, nil
}

// Ping checks if the ClickHouse connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Conn().Ping(ctx)
}

// Close closes the ClickHouse connection
func (r *Repository) Close() error {
	return r.client.Close()
}

// DailyStats groups events by calendar day within the inclusive range
func (r *Repository) DailyStats(ctx context.Context, q repository.StatsQuery) ([]repository.DailyStat, error) {
	sql := `
		SELECT
			toString(toDate(timestamp)) AS date,
			count() AS pv,
			uniqExactIf(user_id, user_id != '') AS uv
		FROM events
		WHERE project_id = ?
		  AND toDate(timestamp) >= toDate(?)
		  AND toDate(timestamp) <= toDate(?)
	`
	args := []interface{}{q.ProjectID, q.StartDate, q.EndDate}

	if q.EventName != "" {
		sql += " AND event_name = ?"
		args = append(args, q.EventName)
	}

	sql += " GROUP BY date ORDER BY date"

	rows, err := r.client.Conn().Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer r.closeRows(rows)

	var stats []repository.DailyStat
	for rows.Next() {
		var s repository.DailyStat
		if err := rows.Scan(&s.Date, &s.PV, &s.UV); err != nil {
			return nil, fmt.Errorf("failed to scan daily stats row: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily stats rows: %w", err)
	}

	return stats, nil
}

// DayTotals counts rows and distinct users for one day
func (r *Repository) DayTotals(ctx context.Context, projectID, date string) (repository.DayTotals, error) {
	var totals repository.DayTotals

	row := r.client.Conn().QueryRow(ctx, `
		SELECT
			count() AS pv,
			uniqExactIf(user_id, user_id != '') AS uv
		FROM events
		WHERE project_id = ? AND toDate(timestamp) = toDate(?)
	`, projectID, date)

	if err := row.Scan(&totals.PV, &totals.UV); err != nil {
		return totals, fmt.Errorf("failed to query day totals: %w", err)
	}

	return totals, nil
}

// PageviewTotals counts pageview rows and their distinct users for one day
func (r *Repository) PageviewTotals(ctx context.Context, projectID, date string) (repository.PageviewTotals, error) {
	var totals repository.PageviewTotals

	row := r.client.Conn().QueryRow(ctx, `
		SELECT
			count() AS views,
			uniqExactIf(user_id, user_id != '') AS users
		FROM events
		WHERE project_id = ?
		  AND event_name = 'pageview'
		  AND toDate(timestamp) = toDate(?)
	`, projectID, date)

	if err := row.Scan(&totals.Views, &totals.Users); err != nil {
		return totals, fmt.Errorf("failed to query pageview totals: %w", err)
	}

	return totals, nil
}

// AvgSessionMinutes averages per-user first-to-last spans for one day.
// Users with a single event contribute a zero span; days with no
// identified users yield 0.
func (r *Repository) AvgSessionMinutes(ctx context.Context, projectID, date string) (float64, error) {
	var avg float64

	row := r.client.Conn().QueryRow(ctx, `
		SELECT avgOrDefault(dateDiff('minute', first_ts, last_ts))
		FROM (
			SELECT
				user_id,
				min(timestamp) AS first_ts,
				max(timestamp) AS last_ts
			FROM events
			WHERE project_id = ?
			  AND toDate(timestamp) = toDate(?)
			  AND user_id != ''
			GROUP BY user_id
		)
	`, projectID, date)

	if err := row.Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to query session spans: %w", err)
	}

	return avg, nil
}

// HourlyEventStats buckets events by display hour after shifting from
// storage time by the configured offset
func (r *Repository) HourlyEventStats(ctx context.Context, q repository.HourlyEventQuery) ([]repository.HourlyEventStat, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(q.Events)), ",")

	sql := fmt.Sprintf(`
		SELECT
			formatDateTime(toStartOfHour(timestamp + INTERVAL ? HOUR), '%%Y-%%m-%%d %%H:00:00') AS bucket,
			event_name,
			count() AS cnt,
			uniqExactIf(user_id, user_id != '') AS users
		FROM events
		WHERE project_id = ?
		  AND toDate(timestamp + INTERVAL ? HOUR) >= toDate(?)
		  AND toDate(timestamp + INTERVAL ? HOUR) <= toDate(?)
		  AND event_name IN (%s)
		GROUP BY bucket, event_name
		ORDER BY bucket ASC, event_name ASC
	`, placeholders)

	args := []interface{}{
		q.UTCOffsetHours,
		q.ProjectID,
		q.UTCOffsetHours, q.StartDate,
		q.UTCOffsetHours, q.EndDate,
	}
	for _, name := range q.Events {
		args = append(args, name)
	}

	rows, err := r.client.Conn().Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly event stats: %w", err)
	}
	defer r.closeRows(rows)

	var stats []repository.HourlyEventStat
	for rows.Next() {
		var s repository.HourlyEventStat
		if err := rows.Scan(&s.Bucket, &s.EventName, &s.Count, &s.Users); err != nil {
			return nil, fmt.Errorf("failed to scan hourly event stats row: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hourly event stats rows: %w", err)
	}

	return stats, nil
}

// DistinctUsers counts distinct users for one event name within the range
func (r *Repository) DistinctUsers(ctx context.Context, projectID, eventName, startDate, endDate string) (uint64, error) {
	var users uint64

	row := r.client.Conn().QueryRow(ctx, `
		SELECT uniqExactIf(user_id, user_id != '')
		FROM events
		WHERE project_id = ?
		  AND event_name = ?
		  AND toDate(timestamp) >= toDate(?)
		  AND toDate(timestamp) <= toDate(?)
	`, projectID, eventName, startDate, endDate)

	if err := row.Scan(&users); err != nil {
		return 0, fmt.Errorf("failed to query distinct users: %w", err)
	}

	return users, nil
}

// TopProjects ranks projects by event count within the range. Project id
// is the tie-break so identical inputs always rank identically.
func (r *Repository) TopProjects(ctx context.Context, startDate, endDate string, limit int) ([]repository.ProjectVisits, error) {
	rows, err := r.client.Conn().Query(ctx, `
		SELECT
			project_id,
			count() AS visits,
			uniqExactIf(user_id, user_id != '') AS uniques
		FROM events
		WHERE toDate(timestamp) >= toDate(?)
		  AND toDate(timestamp) <= toDate(?)
		GROUP BY project_id
		ORDER BY visits DESC, project_id ASC
		LIMIT ?
	`, startDate, endDate, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top projects: %w", err)
	}
	defer r.closeRows(rows)

	var ranks []repository.ProjectVisits
	for rows.Next() {
		var p repository.ProjectVisits
		if err := rows.Scan(&p.ProjectID, &p.VisitCount, &p.UniqueVisitors); err != nil {
			return nil, fmt.Errorf("failed to scan top projects row: %w", err)
		}
		ranks = append(ranks, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top projects rows: %w", err)
	}

	return ranks, nil
}

// RecentEvents lists the latest events for a project, newest first
func (r *Repository) RecentEvents(ctx context.Context, projectID string, limit int) ([]*domain.Event, error) {
	rows, err := r.client.Conn().Query(ctx, `
		SELECT project_id, event_name, event_params, user_id, device_info, timestamp
		FROM events
		WHERE project_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}
	defer r.closeRows(rows)

	var events []*domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ProjectID, &e.EventName, &e.EventParams, &e.UserID, &e.DeviceInfo, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan recent events row: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent events rows: %w", err)
	}

	return events, nil
}

func (r *Repository) closeRows(rows driver.Rows) {
	if err := rows.Close(); err != nil {
		r.log.Error("Failed to close rows", zap.Error(err))
	}
}
