package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/hxrushing/sdk-platform/internal/domain"
)

// Store implements repository.MetadataRepository on Postgres. It owns
// project and event-definition metadata; the event log itself lives in
// ClickHouse.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open connects to Postgres using the pgx stdlib driver and verifies the
// connection.
func Open(dsn string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	log.Info("Postgres connection established successfully")

	return &Store{db: db, log: log}, nil
}

// NewStore wraps an existing database handle. Used by tests.
func NewStore(db *sql.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

// InitSchema creates the metadata tables. event_definitions carries no
// unique (project_id, event_name) constraint: concurrent first-sight
// ingestion may race and duplicate rows are tolerated downstream.
func (s *Store) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS event_definitions (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			event_name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			params_schema TEXT NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_event_definitions_project
			ON event_definitions (project_id, event_name)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create metadata schema: %w", err)
		}
	}

	s.log.Info("Postgres schema initialized successfully")
	return nil
}

// DefinitionExists reports whether any definition row exists for the
// (projectID, eventName) pair.
func (s *Store) DefinitionExists(ctx context.Context, projectID, eventName string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_definitions WHERE project_id = $1 AND event_name = $2`,
		projectID, eventName,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check event definition: %w", err)
	}
	return count > 0, nil
}

// CreateDefinition inserts a definition row.
func (s *Store) CreateDefinition(ctx context.Context, def *domain.EventDefinition) error {
	schema := def.ParamsSchema
	if schema == "" {
		schema = "{}"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event_definitions (id, project_id, event_name, description, params_schema)
		 VALUES ($1, $2, $3, $4, $5)`,
		def.ID, def.ProjectID, def.EventName, def.Description, schema,
	)
	if err != nil {
		return fmt.Errorf("failed to create event definition: %w", err)
	}
	return nil
}

// ListDefinitions returns all definitions for a project.
func (s *Store) ListDefinitions(ctx context.Context, projectID string) ([]*domain.EventDefinition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, event_name, description, params_schema
		 FROM event_definitions
		 WHERE project_id = $1
		 ORDER BY event_name`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list event definitions: %w", err)
	}
	defer rows.Close()

	var defs []*domain.EventDefinition
	for rows.Next() {
		var d domain.EventDefinition
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.EventName, &d.Description, &d.ParamsSchema); err != nil {
			return nil, fmt.Errorf("failed to scan event definition row: %w", err)
		}
		defs = append(defs, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event definition rows: %w", err)
	}

	return defs, nil
}

// UpdateDefinition mutates a definition scoped to (id, projectID).
func (s *Store) UpdateDefinition(ctx context.Context, def *domain.EventDefinition) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE event_definitions
		 SET event_name = $1, description = $2, params_schema = $3
		 WHERE id = $4 AND project_id = $5`,
		def.EventName, def.Description, def.ParamsSchema, def.ID, def.ProjectID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event definition: %w", err)
	}
	return nil
}

// DeleteDefinition removes a definition scoped to (id, projectID).
func (s *Store) DeleteDefinition(ctx context.Context, id, projectID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM event_definitions WHERE id = $1 AND project_id = $2`,
		id, projectID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete event definition: %w", err)
	}
	return nil
}

// CreateProject inserts a project.
func (s *Store) CreateProject(ctx context.Context, p *domain.Project) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, description) VALUES ($1, $2, $3)`,
		p.ID, p.Name, p.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// ListProjects returns all projects, newest first.
func (s *Store) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM projects ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}

// ProjectNames resolves project ids to display names. Unknown ids are
// simply absent from the result.
func (s *Store) ProjectNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, name FROM projects WHERE id IN (%s)`, strings.Join(placeholders, ", ")),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan project name row: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project name rows: %w", err)
	}

	return names, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
