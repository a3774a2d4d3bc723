package dto

// TrackEventRequest is the ingestion wire payload (§ external interface).
// eventParams carries user params plus path, eventType and optional
// elementInfo merged in by the client SDK.
type TrackEventRequest struct {
	ProjectID   string                 `json:"projectId" binding:"required"`
	EventName   string                 `json:"eventName" binding:"required"`
	EventParams map[string]interface{} `json:"eventParams"`
	UID         *string                `json:"uid"`
	DeviceInfo  map[string]interface{} `json:"deviceInfo"`
	Timestamp   int64                  `json:"timestamp"`
}

// TrackEventsBulkRequest ingests multiple events in one request.
type TrackEventsBulkRequest struct {
	Events []TrackEventRequest `json:"events" binding:"required,min=1,max=1000,dive"`
}

// StatsRequest queries daily PV/UV trends.
type StatsRequest struct {
	ProjectID string `form:"projectId" binding:"required"`
	StartDate string `form:"startDate" binding:"required"`
	EndDate   string `form:"endDate" binding:"required"`
	EventName string `form:"eventName"`
}

// EventAnalysisRequest queries hourly event breakdowns. Events is a
// comma-separated list of event names.
type EventAnalysisRequest struct {
	ProjectID string `form:"projectId" binding:"required"`
	StartDate string `form:"startDate" binding:"required"`
	EndDate   string `form:"endDate" binding:"required"`
	Events    string `form:"events" binding:"required"`
}

// FunnelAnalysisRequest queries sequential conversion. Stages is a
// comma-separated, caller-ordered list of event names.
type FunnelAnalysisRequest struct {
	ProjectID string `form:"projectId" binding:"required"`
	StartDate string `form:"startDate" binding:"required"`
	EndDate   string `form:"endDate" binding:"required"`
	Stages    string `form:"stages" binding:"required"`
}

// TopProjectsRequest queries the top-N project ranking.
type TopProjectsRequest struct {
	StartDate string `form:"startDate" binding:"required"`
	EndDate   string `form:"endDate" binding:"required"`
}

// RecentEventsRequest lists the latest stored events for a project.
type RecentEventsRequest struct {
	ProjectID string `form:"projectId" binding:"required"`
	Limit     int    `form:"limit,default=100" binding:"max=1000"`
}

// EventDefinitionRequest creates or updates an event definition.
type EventDefinitionRequest struct {
	ProjectID    string                 `json:"projectId" binding:"required"`
	EventName    string                 `json:"eventName" binding:"required"`
	Description  string                 `json:"description"`
	ParamsSchema map[string]interface{} `json:"paramsSchema"`
}

// CreateProjectRequest registers a project.
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}
