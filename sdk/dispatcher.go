package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// DeliveryStatus is the outcome of a single send attempt.
type DeliveryStatus int

const (
	Delivered DeliveryStatus = iota
	Dropped
)

// DeliveryResult reports whether a payload reached the collection
// endpoint. Track never observes it; it exists for direct dispatcher
// callers and tests.
type DeliveryResult struct {
	Status DeliveryStatus
	Err    error
}

// Dispatcher performs best-effort delivery of serialized events. One
// request per event, no retry, no queue; failures are logged and the
// event is lost. Instrumentation must never block or crash the host
// application.
type Dispatcher struct {
	endpoint string
	client   *http.Client
	log      *zap.Logger
}

// NewDispatcher creates a dispatcher posting to <endpoint>/track.
func NewDispatcher(endpoint string, client *http.Client, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		endpoint: endpoint,
		client:   client,
		log:      log,
	}
}

// Send serializes the payload and issues a single non-retried request.
func (d *Dispatcher) Send(ctx context.Context, payload *TrackPayload) DeliveryResult {
	body, err := json.Marshal(payload)
	if err != nil {
		d.log.Warn("Failed to serialize event, dropping",
			zap.String("event_name", payload.EventName),
			zap.Error(err))
		return DeliveryResult{Status: Dropped, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint+"/track", bytes.NewReader(body))
	if err != nil {
		d.log.Warn("Failed to build track request, dropping",
			zap.String("event_name", payload.EventName),
			zap.Error(err))
		return DeliveryResult{Status: Dropped, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.log.Warn("Failed to deliver event, dropping",
			zap.String("event_name", payload.EventName),
			zap.Error(err))
		return DeliveryResult{Status: Dropped, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("track request returned status %d", resp.StatusCode)
		d.log.Warn("Event rejected by endpoint, dropping",
			zap.String("event_name", payload.EventName),
			zap.Int("status", resp.StatusCode))
		return DeliveryResult{Status: Dropped, Err: err}
	}

	return DeliveryResult{Status: Delivered}
}
