package dto

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// BulkTrackResponse reports the outcome of a bulk ingestion request.
type BulkTrackResponse struct {
	Accepted int      `json:"accepted"`
	Rejected int      `json:"rejected"`
	Errors   []string `json:"errors,omitempty"`
}

// DailyStat is one day of the PV/UV trend.
type DailyStat struct {
	Date string `json:"date"`
	PV   uint64 `json:"pv"`
	UV   uint64 `json:"uv"`
}

// DashboardOverview is today's snapshot.
type DashboardOverview struct {
	TodayPV     uint64  `json:"todayPV"`
	TodayUV     uint64  `json:"todayUV"`
	AvgPages    float64 `json:"avgPages"`
	AvgDuration float64 `json:"avgDuration"`
}

// EventAnalysisPoint is one (hour bucket, event name) cell.
type EventAnalysisPoint struct {
	Date       string  `json:"date"`
	EventName  string  `json:"eventName"`
	Count      uint64  `json:"count"`
	Users      uint64  `json:"users"`
	AvgPerUser float64 `json:"avgPerUser"`
}

// FunnelStage is one step of a funnel result. Rate is null for the
// first stage; conversion is defined between consecutive stages only.
type FunnelStage struct {
	Stage  string   `json:"stage"`
	Value  uint64   `json:"value"`
	Rate   *float64 `json:"rate"`
	Change float64  `json:"change"`
}

// ProjectRank is one row of the top-N ranking.
type ProjectRank struct {
	ProjectName    string `json:"projectName"`
	VisitCount     uint64 `json:"visitCount"`
	UniqueVisitors uint64 `json:"uniqueVisitors"`
}

// EventDefinitionData is the API shape of a definition.
type EventDefinitionData struct {
	ID           string                 `json:"id"`
	ProjectID    string                 `json:"projectId"`
	EventName    string                 `json:"eventName"`
	Description  string                 `json:"description"`
	ParamsSchema map[string]interface{} `json:"paramsSchema"`
}

// ProjectData is the API shape of a project.
type ProjectData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RecentEvent is one row of the recent-events listing.
type RecentEvent struct {
	ProjectID   string                 `json:"projectId"`
	EventName   string                 `json:"eventName"`
	EventParams map[string]interface{} `json:"eventParams"`
	UserID      string                 `json:"userId,omitempty"`
	Timestamp   int64                  `json:"timestamp"`
}
