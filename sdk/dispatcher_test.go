package sdk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDispatcher_Send_Delivered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/track", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	d := NewDispatcher(server.URL, server.Client(), zap.NewNop())

	result := d.Send(context.Background(), &TrackPayload{
		ProjectID: "proj1",
		EventName: "page_view",
	})

	assert.Equal(t, Delivered, result.Status)
	assert.NoError(t, result.Err)
}

func TestDispatcher_Send_ServerRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	d := NewDispatcher(server.URL, server.Client(), zap.NewNop())

	result := d.Send(context.Background(), &TrackPayload{EventName: "page_view"})

	assert.Equal(t, Dropped, result.Status)
	assert.Error(t, result.Err)
}

func TestDispatcher_Send_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close() // connection refused from here on

	d := NewDispatcher(url, &http.Client{}, zap.NewNop())

	result := d.Send(context.Background(), &TrackPayload{EventName: "page_view"})

	assert.Equal(t, Dropped, result.Status)
	assert.Error(t, result.Err)
}

func TestDispatcher_Send_NoRetry(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	d := NewDispatcher(server.URL, server.Client(), zap.NewNop())
	d.Send(context.Background(), &TrackPayload{EventName: "page_view"})

	assert.Equal(t, 1, attempts)
}
