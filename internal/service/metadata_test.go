package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/hxrushing/sdk-platform/internal/domain"
	"github.com/hxrushing/sdk-platform/internal/dto"
)

func TestMetadataService_CreateDefinition(t *testing.T) {
	meta := new(MockMetadataRepository)
	svc := NewMetadataService(meta, zap.NewNop())

	meta.On("CreateDefinition", mock.Anything, mock.MatchedBy(func(def *domain.EventDefinition) bool {
		return def.ID != "" &&
			def.ProjectID == "proj1" &&
			def.EventName == "purchase" &&
			def.ParamsSchema == `{"amount":"number"}`
	})).Return(nil)

	out, err := svc.CreateDefinition(context.Background(), &dto.EventDefinitionRequest{
		ProjectID:    "proj1",
		EventName:    "purchase",
		Description:  "Checkout completed",
		ParamsSchema: map[string]interface{}{"amount": "number"},
	})

	assert.NoError(t, err)
	assert.Equal(t, "purchase", out.EventName)
	assert.Equal(t, "number", out.ParamsSchema["amount"])
	meta.AssertExpectations(t)
}

func TestMetadataService_CreateDefinition_EmptySchemaDefaults(t *testing.T) {
	meta := new(MockMetadataRepository)
	svc := NewMetadataService(meta, zap.NewNop())

	meta.On("CreateDefinition", mock.Anything, mock.MatchedBy(func(def *domain.EventDefinition) bool {
		return def.ParamsSchema == "{}"
	})).Return(nil)

	out, err := svc.CreateDefinition(context.Background(), &dto.EventDefinitionRequest{
		ProjectID: "proj1",
		EventName: "purchase",
	})

	assert.NoError(t, err)
	assert.Empty(t, out.ParamsSchema)
	meta.AssertExpectations(t)
}

func TestMetadataService_ListDefinitions(t *testing.T) {
	meta := new(MockMetadataRepository)
	svc := NewMetadataService(meta, zap.NewNop())

	meta.On("ListDefinitions", mock.Anything, "proj1").Return([]*domain.EventDefinition{
		{ID: "def-1", ProjectID: "proj1", EventName: "click", ParamsSchema: `{"tag":"string"}`},
		{ID: "def-2", ProjectID: "proj1", EventName: "page_view", ParamsSchema: "not-json"},
	}, nil)

	out, err := svc.ListDefinitions(context.Background(), "proj1")

	assert.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, "string", out[0].ParamsSchema["tag"])
	// Corrupt stored schema degrades to an empty map.
	assert.Empty(t, out[1].ParamsSchema)
}

func TestMetadataService_ListDefinitions_RequiresProject(t *testing.T) {
	meta := new(MockMetadataRepository)
	svc := NewMetadataService(meta, zap.NewNop())

	_, err := svc.ListDefinitions(context.Background(), "")

	assert.ErrorIs(t, err, ErrMissingParameters)
	meta.AssertNotCalled(t, "ListDefinitions")
}

func TestMetadataService_UpdateDefinition(t *testing.T) {
	meta := new(MockMetadataRepository)
	svc := NewMetadataService(meta, zap.NewNop())

	meta.On("UpdateDefinition", mock.Anything, mock.MatchedBy(func(def *domain.EventDefinition) bool {
		return def.ID == "def-1" && def.ProjectID == "proj1" && def.Description == "Updated"
	})).Return(nil)

	out, err := svc.UpdateDefinition(context.Background(), "def-1", &dto.EventDefinitionRequest{
		ProjectID:   "proj1",
		EventName:   "purchase",
		Description: "Updated",
	})

	assert.NoError(t, err)
	assert.Equal(t, "def-1", out.ID)
	meta.AssertExpectations(t)
}

func TestMetadataService_DeleteDefinition_RequiresScope(t *testing.T) {
	meta := new(MockMetadataRepository)
	svc := NewMetadataService(meta, zap.NewNop())

	err := svc.DeleteDefinition(context.Background(), "def-1", "")

	assert.ErrorIs(t, err, ErrMissingParameters)
	meta.AssertNotCalled(t, "DeleteDefinition")
}

func TestMetadataService_CreateProject(t *testing.T) {
	meta := new(MockMetadataRepository)
	svc := NewMetadataService(meta, zap.NewNop())

	meta.On("CreateProject", mock.Anything, mock.MatchedBy(func(p *domain.Project) bool {
		return p.ID != "" && p.Name == "Shop"
	})).Return(nil)

	out, err := svc.CreateProject(context.Background(), &dto.CreateProjectRequest{
		Name:        "Shop",
		Description: "Storefront",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "Shop", out.Name)
	meta.AssertExpectations(t)
}

func TestMetadataService_ListProjects(t *testing.T) {
	meta := new(MockMetadataRepository)
	svc := NewMetadataService(meta, zap.NewNop())

	meta.On("ListProjects", mock.Anything).Return([]*domain.Project{
		{ID: "p1", Name: "Shop"},
		{ID: "p2", Name: "Blog"},
	}, nil)

	out, err := svc.ListProjects(context.Background())

	assert.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, "Shop", out[0].Name)
}
