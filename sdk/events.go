package sdk

// EventType classifies a tracked event.
type EventType string

const (
	EventPageview EventType = "pageview"
	EventClick    EventType = "click"
	EventError    EventType = "error"
	EventCustom   EventType = "custom"
)

// Params holds arbitrary JSON-serializable event parameters.
type Params map[string]interface{}

// DeviceInfo is the device snapshot attached to every wire payload.
type DeviceInfo struct {
	UserAgent        string `json:"userAgent"`
	Platform         string `json:"platform"`
	Language         string `json:"language"`
	ScreenResolution string `json:"screenResolution"`
}

// Environment is the output of the environment probe.
type Environment struct {
	Browser          string
	BrowserVersion   string
	OS               string
	OSVersion        string
	DeviceType       string
	ScreenResolution string
}

// ElementInfo is the snapshot of the element that triggered a click event.
type ElementInfo struct {
	TagName   string `json:"tagName,omitempty"`
	ClassName string `json:"className,omitempty"`
	ID        string `json:"id,omitempty"`
	Text      string `json:"text,omitempty"`
}

// Event is one instrumented occurrence, immutable once constructed.
// The environment snapshot is computed at send time, not at listener
// registration time.
type Event struct {
	EventName   string
	EventType   EventType
	EventParams Params
	Timestamp   int64
	Path        string
	DeviceInfo  DeviceInfo
	Environment Environment
	ElementInfo *ElementInfo
}

// TrackPayload is the ingestion request body.
type TrackPayload struct {
	ProjectID   string                 `json:"projectId"`
	EventName   string                 `json:"eventName"`
	EventParams map[string]interface{} `json:"eventParams"`
	UID         *string                `json:"uid"`
	DeviceInfo  DeviceInfo             `json:"deviceInfo"`
	Timestamp   int64                  `json:"timestamp"`
}

// RuntimeInfo describes the host runtime at the moment an event fires.
// The tracker asks for a fresh snapshot on every event so mid-session
// changes are reflected.
type RuntimeInfo struct {
	UserAgent    string
	Language     string
	ScreenWidth  int
	ScreenHeight int
	Path         string
}
