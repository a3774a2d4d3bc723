package domain

import "time"

// Event is one stored event-log row. Append-only; there is no update or
// delete path.
type Event struct {
	ProjectID   string    `ch:"project_id"`
	EventName   string    `ch:"event_name"`
	EventParams string    `ch:"event_params"`
	UserID      string    `ch:"user_id"`
	DeviceInfo  string    `ch:"device_info"`
	Timestamp   time.Time `ch:"timestamp"`
	ReceivedAt  time.Time `ch:"received_at"`
}

// EventDefinition is the registered metadata for a named event within a
// project. Created explicitly or auto-created by ingestion on first
// sight; duplicates for the same (project, name) may exist and are
// tolerated downstream.
type EventDefinition struct {
	ID           string
	ProjectID    string
	EventName    string
	Description  string
	ParamsSchema string
}

// Project is the owning application a tracked event belongs to.
type Project struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}
