package sdk

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config configures the tracker singleton.
type Config struct {
	// Endpoint is the base URL of the collection server; events are
	// posted to <Endpoint>/track.
	Endpoint string
	// ProjectID identifies the instrumented application.
	ProjectID string
	// CommonParams are merged into every tracked event.
	CommonParams Params
	// Runtime returns a fresh snapshot of the host runtime. Called on
	// every event.
	Runtime func() RuntimeInfo
	// HTTPClient overrides the dispatcher's HTTP client.
	HTTPClient *http.Client
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Tracker is the process-wide instrumentation handle. Exactly one
// instance exists per process; obtain it with Init and pass it explicitly
// to code that emits events.
type Tracker struct {
	cfg        config
	dispatcher *Dispatcher
	log        *zap.Logger

	mu           sync.RWMutex
	commonParams Params
	path         string

	handlers    map[SignalKind]func(Signal)
	initialized bool

	inflight sync.WaitGroup
}

// config is the validated, defaulted form of Config.
type config struct {
	endpoint  string
	projectID string
	runtime   func() RuntimeInfo
}

var (
	instanceMu sync.Mutex
	instance   *Tracker
)

// ErrMissingConfig is returned by Init when a required field is absent.
var ErrMissingConfig = errors.New("sdk: endpoint and projectId are required")

// Init constructs the process-wide tracker. The first call that supplies
// a valid configuration wins; later calls return the existing instance
// unchanged. Initialization side effects (signal handler registration and
// the initial pageview) run exactly once.
func Init(cfg Config) (*Tracker, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance != nil {
		return instance, nil
	}
	if cfg.Endpoint == "" || cfg.ProjectID == "" {
		return nil, ErrMissingConfig
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	runtime := cfg.Runtime
	if runtime == nil {
		runtime = func() RuntimeInfo { return RuntimeInfo{} }
	}

	common := Params{}
	for k, v := range cfg.CommonParams {
		common[k] = v
	}

	t := &Tracker{
		cfg: config{
			endpoint:  cfg.Endpoint,
			projectID: cfg.ProjectID,
			runtime:   runtime,
		},
		dispatcher:   NewDispatcher(cfg.Endpoint, client, log),
		log:          log,
		commonParams: common,
		path:         runtime().Path,
	}
	t.registerHandlers()

	instance = t

	// Initial page load counts as a pageview.
	t.Track("pageview", Params{"path": t.currentPath()}, EventPageview)

	return t, nil
}

// Instance returns the tracker created by Init, or nil before the first
// successful Init. Callers must guard against the nil return.
func Instance() *Tracker {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	return instance
}

// SetCommonParams shallow-merges params into the stored common
// parameters. Later calls override earlier keys; keys absent from params
// are left untouched.
func (t *Tracker) SetCommonParams(params Params) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, v := range params {
		t.commonParams[k] = v
	}
}

// Track builds an event with a freshly probed environment snapshot and
// the current navigation path, then hands it to the dispatcher. It
// returns immediately; delivery is asynchronous and its outcome is never
// surfaced to the caller.
func (t *Tracker) Track(eventName string, params Params, eventType EventType) {
	if eventType == "" {
		eventType = EventCustom
	}
	t.submit(eventName, params, eventType, nil)
}

func (t *Tracker) submit(eventName string, params Params, eventType EventType, elem *ElementInfo) {
	rt := t.cfg.runtime()
	env := ProbeEnvironment(rt.UserAgent, rt.ScreenWidth, rt.ScreenHeight)
	ev := Event{
		EventName:   eventName,
		EventType:   eventType,
		EventParams: params,
		Timestamp:   time.Now().UnixMilli(),
		Path:        t.currentPath(),
		Environment: env,
		DeviceInfo: DeviceInfo{
			UserAgent:        rt.UserAgent,
			Platform:         env.OS,
			Language:         rt.Language,
			ScreenResolution: env.ScreenResolution,
		},
		ElementInfo: elem,
	}

	payload := t.buildPayload(&ev)

	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()
		t.dispatcher.Send(context.Background(), payload)
	}()
}

// Flush waits for in-flight deliveries to complete or drop. Intended for
// host shutdown; Track callers never need it.
func (t *Tracker) Flush() {
	t.inflight.Wait()
}

// buildPayload merges common parameters, per-event parameters and the
// capture context into the wire shape. Per-event keys override common
// ones.
func (t *Tracker) buildPayload(ev *Event) *TrackPayload {
	t.mu.RLock()
	merged := make(map[string]interface{}, len(t.commonParams)+len(ev.EventParams)+2)
	for k, v := range t.commonParams {
		merged[k] = v
	}
	var uid *string
	if v, ok := t.commonParams["userId"].(string); ok && v != "" {
		uid = &v
	}
	t.mu.RUnlock()

	for k, v := range ev.EventParams {
		merged[k] = v
	}
	merged["path"] = ev.Path
	merged["eventType"] = string(ev.EventType)
	if ev.ElementInfo != nil {
		merged["elementInfo"] = ev.ElementInfo
	}

	return &TrackPayload{
		ProjectID:   t.cfg.projectID,
		EventName:   ev.EventName,
		EventParams: merged,
		UID:         uid,
		DeviceInfo:  ev.DeviceInfo,
		Timestamp:   ev.Timestamp,
	}
}

func (t *Tracker) currentPath() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.path
}

func (t *Tracker) setPath(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.path = path
}
