package consumer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hxrushing/sdk-platform/internal/domain"
)

// JSONEventParser implements MessageParser for the ingestion wire
// payload
type JSONEventParser struct{}

// NewJSONEventParser creates a new JSON event parser
func NewJSONEventParser() *JSONEventParser {
	return &JSONEventParser{}
}

// Parse parses a wire payload body into a stored event row. Messages
// without project or event identifiers are malformed; the parser stage
// drops them.
func (p *JSONEventParser) Parse(body []byte) (*domain.Event, error) {
	var msgBody map[string]interface{}
	if err := json.Unmarshal(body, &msgBody); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	projectID := getStringField(msgBody, "projectId")
	eventName := getStringField(msgBody, "eventName")
	if projectID == "" || eventName == "" {
		return nil, fmt.Errorf("message missing projectId or eventName")
	}

	paramsJSON, err := marshalObjectField(msgBody, "eventParams")
	if err != nil {
		return nil, err
	}
	deviceJSON, err := marshalObjectField(msgBody, "deviceInfo")
	if err != nil {
		return nil, err
	}

	ts := getInt64Field(msgBody, "timestamp")
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}

	event := &domain.Event{
		ProjectID:   projectID,
		EventName:   eventName,
		EventParams: paramsJSON,
		UserID:      getStringField(msgBody, "uid"),
		DeviceInfo:  deviceJSON,
		Timestamp:   time.UnixMilli(ts).UTC(),
		ReceivedAt:  time.Now(),
	}

	return event, nil
}

// marshalObjectField re-serializes a nested JSON object field, defaulting
// to an empty object.
func marshalObjectField(m map[string]interface{}, key string) (string, error) {
	obj, ok := m[key].(map[string]interface{})
	if !ok || len(obj) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return string(data), nil
}

// Helper functions for extracting fields from parsed JSON
func getStringField(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}

func getInt64Field(m map[string]interface{}, key string) int64 {
	if val, ok := m[key].(float64); ok {
		return int64(val)
	}
	return 0
}
