package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hxrushing/sdk-platform/internal/dto"
	"github.com/hxrushing/sdk-platform/internal/metrics"
	"github.com/hxrushing/sdk-platform/internal/service"
)

type Handler struct {
	tracking service.TrackingServicer
	stats    service.StatsServicer
	metadata service.MetadataServicer
	metrics  *metrics.Metrics
	router   *gin.Engine
	log      *zap.Logger
}

func NewHandler(
	tracking service.TrackingServicer,
	stats service.StatsServicer,
	metadata service.MetadataServicer,
	m *metrics.Metrics,
	log *zap.Logger,
) *Handler {
	h := &Handler{
		tracking: tracking,
		stats:    stats,
		metadata: metadata,
		metrics:  m,
		router:   gin.Default(),
		log:      log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	h.router.POST("/track", h.trackEvent)
	h.router.POST("/track/bulk", h.trackEventsBulk)

	api := h.router.Group("/api")
	{
		api.GET("/stats", h.getStats)
		api.GET("/dashboard/overview", h.getDashboardOverview)
		api.GET("/events/analysis", h.getEventAnalysis)
		api.GET("/events/recent", h.getRecentEvents)
		api.GET("/funnel/analysis", h.getFunnelAnalysis)
		api.GET("/projects/top", h.getTopProjects)

		api.GET("/event-definitions", h.listEventDefinitions)
		api.POST("/event-definitions", h.createEventDefinition)
		api.PUT("/event-definitions/:id", h.updateEventDefinition)
		api.DELETE("/event-definitions/:id", h.deleteEventDefinition)

		api.GET("/projects", h.listProjects)
		api.POST("/projects", h.createProject)
	}
}

// clientError reports whether the failure was caused by the request
// rather than the platform.
func clientError(err error) bool {
	return errors.Is(err, service.ErrMissingFields) ||
		errors.Is(err, service.ErrInvalidDateFormat) ||
		errors.Is(err, service.ErrMissingParameters)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	if clientError(err) {
		c.JSON(http.StatusBadRequest, dto.Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, dto.Response{Success: false, Error: err.Error()})
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// trackEvent handles POST /track, the SDK's ingestion endpoint.
func (h *Handler) trackEvent(c *gin.Context) {
	var req dto.TrackEventRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid track request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.Response{Success: false, Error: err.Error()})
		return
	}

	if err := h.tracking.TrackEvent(c.Request.Context(), &req); err != nil {
		h.log.Error("Failed to track event",
			zap.Error(err),
			zap.String("project_id", req.ProjectID),
			zap.String("event_name", req.EventName))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.Response{Success: true})
}

// trackEventsBulk handles POST /track/bulk.
func (h *Handler) trackEventsBulk(c *gin.Context) {
	var req dto.TrackEventsBulkRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid bulk track request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.Response{Success: false, Error: err.Error()})
		return
	}

	result := h.tracking.TrackEventsBulk(c.Request.Context(), req.Events)

	h.log.Info("Bulk events processed",
		zap.Int("accepted", result.Accepted),
		zap.Int("rejected", result.Rejected),
		zap.Int("total", len(req.Events)))

	c.JSON(http.StatusAccepted, dto.Response{Success: true, Data: result})
}

// getStats handles GET /api/stats.
func (h *Handler) getStats(c *gin.Context) {
	var req dto.StatsRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Response{Success: false, Error: err.Error()})
		return
	}

	stats, err := h.stats.DailyStats(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to get daily stats",
			zap.Error(err),
			zap.String("project_id", req.ProjectID))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{Success: true, Data: stats})
}

// getDashboardOverview handles GET /api/dashboard/overview.
func (h *Handler) getDashboardOverview(c *gin.Context) {
	projectID := c.Query("projectId")

	overview, err := h.stats.DashboardOverview(c.Request.Context(), projectID)
	if err != nil {
		h.log.Error("Failed to get dashboard overview",
			zap.Error(err),
			zap.String("project_id", projectID))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{Success: true, Data: overview})
}

// getEventAnalysis handles GET /api/events/analysis.
func (h *Handler) getEventAnalysis(c *gin.Context) {
	var req dto.EventAnalysisRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Response{Success: false, Error: err.Error()})
		return
	}

	points, err := h.stats.EventAnalysis(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to get event analysis",
			zap.Error(err),
			zap.String("project_id", req.ProjectID),
			zap.String("events", req.Events))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{Success: true, Data: points})
}

// getRecentEvents handles GET /api/events/recent.
func (h *Handler) getRecentEvents(c *gin.Context) {
	var req dto.RecentEventsRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Response{Success: false, Error: err.Error()})
		return
	}

	events, err := h.tracking.RecentEvents(c.Request.Context(), req.ProjectID, req.Limit)
	if err != nil {
		h.log.Error("Failed to get recent events",
			zap.Error(err),
			zap.String("project_id", req.ProjectID))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{Success: true, Data: events})
}

// getFunnelAnalysis handles GET /api/funnel/analysis.
func (h *Handler) getFunnelAnalysis(c *gin.Context) {
	var req dto.FunnelAnalysisRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Response{Success: false, Error: err.Error()})
		return
	}

	stages, err := h.stats.FunnelAnalysis(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to get funnel analysis",
			zap.Error(err),
			zap.String("project_id", req.ProjectID),
			zap.String("stages", req.Stages))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{Success: true, Data: stages})
}

// getTopProjects handles GET /api/projects/top.
func (h *Handler) getTopProjects(c *gin.Context) {
	var req dto.TopProjectsRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Response{Success: false, Error: err.Error()})
		return
	}

	ranks, err := h.stats.TopProjects(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to get top projects", zap.Error(err))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{Success: true, Data: ranks})
}

// listEventDefinitions handles GET /api/event-definitions.
func (h *Handler) listEventDefinitions(c *gin.Context) {
	projectID := c.Query("projectId")

	defs, err := h.metadata.ListDefinitions(c.Request.Context(), projectID)
	if err != nil {
		h.log.Error("Failed to list event definitions",
			zap.Error(err),
			zap.String("project_id", projectID))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{Success: true, Data: defs})
}

// createEventDefinition handles POST /api/event-definitions.
func (h *Handler) createEventDefinition(c *gin.Context) {
	var req dto.EventDefinitionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Response{Success: false, Error: err.Error()})
		return
	}

	def, err := h.metadata.CreateDefinition(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to create event definition",
			zap.Error(err),
			zap.String("project_id", req.ProjectID),
			zap.String("event_name", req.EventName))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.Response{Success: true, Data: def})
}

// updateEventDefinition handles PUT /api/event-definitions/:id.
func (h *Handler) updateEventDefinition(c *gin.Context) {
	var req dto.EventDefinitionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Response{Success: false, Error: err.Error()})
		return
	}

	def, err := h.metadata.UpdateDefinition(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.log.Error("Failed to update event definition",
			zap.Error(err),
			zap.String("definition_id", c.Param("id")))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{Success: true, Data: def})
}

// deleteEventDefinition handles DELETE /api/event-definitions/:id.
func (h *Handler) deleteEventDefinition(c *gin.Context) {
	id := c.Param("id")
	projectID := c.Query("projectId")

	if err := h.metadata.DeleteDefinition(c.Request.Context(), id, projectID); err != nil {
		h.log.Error("Failed to delete event definition",
			zap.Error(err),
			zap.String("definition_id", id))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{Success: true})
}

// listProjects handles GET /api/projects.
func (h *Handler) listProjects(c *gin.Context) {
	projects, err := h.metadata.ListProjects(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list projects", zap.Error(err))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{Success: true, Data: projects})
}

// createProject handles POST /api/projects.
func (h *Handler) createProject(c *gin.Context) {
	var req dto.CreateProjectRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Response{Success: false, Error: err.Error()})
		return
	}

	project, err := h.metadata.CreateProject(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to create project",
			zap.Error(err),
			zap.String("name", req.Name))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.Response{Success: true, Data: project})
}
