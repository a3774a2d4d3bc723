package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hxrushing/sdk-platform/internal/domain"
	"github.com/hxrushing/sdk-platform/internal/dto"
	"github.com/hxrushing/sdk-platform/internal/repository"
)

// MetadataService implements MetadataServicer over the metadata store.
type MetadataService struct {
	meta repository.MetadataRepository
	log  *zap.Logger
}

// NewMetadataService creates a new metadata service.
func NewMetadataService(meta repository.MetadataRepository, log *zap.Logger) *MetadataService {
	return &MetadataService{meta: meta, log: log}
}

func marshalSchema(schema map[string]interface{}) (string, error) {
	if len(schema) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("failed to marshal params schema: %w", err)
	}
	return string(data), nil
}

func (s *MetadataService) toDefinitionData(def *domain.EventDefinition) dto.EventDefinitionData {
	schema := map[string]interface{}{}
	if def.ParamsSchema != "" {
		if err := json.Unmarshal([]byte(def.ParamsSchema), &schema); err != nil {
			s.log.Warn("Stored params schema is not valid JSON",
				zap.String("definition_id", def.ID),
				zap.Error(err))
			schema = map[string]interface{}{}
		}
	}
	return dto.EventDefinitionData{
		ID:           def.ID,
		ProjectID:    def.ProjectID,
		EventName:    def.EventName,
		Description:  def.Description,
		ParamsSchema: schema,
	}
}

// ListDefinitions returns every definition registered for a project.
func (s *MetadataService) ListDefinitions(ctx context.Context, projectID string) ([]dto.EventDefinitionData, error) {
	if projectID == "" {
		return nil, ErrMissingParameters
	}

	defs, err := s.meta.ListDefinitions(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event definitions: %w", err)
	}

	out := make([]dto.EventDefinitionData, 0, len(defs))
	for _, def := range defs {
		out = append(out, s.toDefinitionData(def))
	}
	return out, nil
}

// CreateDefinition registers a definition explicitly, ahead of any
// tracked event.
func (s *MetadataService) CreateDefinition(ctx context.Context, req *dto.EventDefinitionRequest) (*dto.EventDefinitionData, error) {
	schema, err := marshalSchema(req.ParamsSchema)
	if err != nil {
		return nil, err
	}

	def := &domain.EventDefinition{
		ID:           uuid.NewString(),
		ProjectID:    req.ProjectID,
		EventName:    req.EventName,
		Description:  req.Description,
		ParamsSchema: schema,
	}
	if err := s.meta.CreateDefinition(ctx, def); err != nil {
		return nil, fmt.Errorf("failed to create event definition: %w", err)
	}

	s.log.Info("Event definition created",
		zap.String("definition_id", def.ID),
		zap.String("project_id", def.ProjectID),
		zap.String("event_name", def.EventName))

	data := s.toDefinitionData(def)
	return &data, nil
}

// UpdateDefinition mutates a definition scoped to its project.
func (s *MetadataService) UpdateDefinition(ctx context.Context, id string, req *dto.EventDefinitionRequest) (*dto.EventDefinitionData, error) {
	schema, err := marshalSchema(req.ParamsSchema)
	if err != nil {
		return nil, err
	}

	def := &domain.EventDefinition{
		ID:           id,
		ProjectID:    req.ProjectID,
		EventName:    req.EventName,
		Description:  req.Description,
		ParamsSchema: schema,
	}
	if err := s.meta.UpdateDefinition(ctx, def); err != nil {
		return nil, fmt.Errorf("failed to update event definition: %w", err)
	}

	data := s.toDefinitionData(def)
	return &data, nil
}

// DeleteDefinition removes a definition scoped to its project.
func (s *MetadataService) DeleteDefinition(ctx context.Context, id, projectID string) error {
	if id == "" || projectID == "" {
		return ErrMissingParameters
	}
	if err := s.meta.DeleteDefinition(ctx, id, projectID); err != nil {
		return fmt.Errorf("failed to delete event definition: %w", err)
	}
	return nil
}

// CreateProject registers a project.
func (s *MetadataService) CreateProject(ctx context.Context, req *dto.CreateProjectRequest) (*dto.ProjectData, error) {
	p := &domain.Project{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.meta.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.log.Info("Project created",
		zap.String("project_id", p.ID),
		zap.String("name", p.Name))

	return &dto.ProjectData{ID: p.ID, Name: p.Name, Description: p.Description}, nil
}

// ListProjects returns every registered project.
func (s *MetadataService) ListProjects(ctx context.Context) ([]dto.ProjectData, error) {
	projects, err := s.meta.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	out := make([]dto.ProjectData, 0, len(projects))
	for _, p := range projects {
		out = append(out, dto.ProjectData{ID: p.ID, Name: p.Name, Description: p.Description})
	}
	return out, nil
}
