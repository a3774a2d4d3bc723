package sdk

import "strings"

// SignalKind names a class of host-runtime signals the tracker listens
// for.
type SignalKind string

const (
	SignalNavigation  SignalKind = "navigation"
	SignalInteraction SignalKind = "interaction"
	SignalFailure     SignalKind = "failure"
)

// Signal is a host-runtime occurrence delivered to the tracker via Emit.
type Signal interface {
	Kind() SignalKind
}

// NavigationSignal fires on history-level navigation (back/forward).
// In-app route changes that do not produce a history signal are not
// captured.
type NavigationSignal struct {
	Path string
}

func (NavigationSignal) Kind() SignalKind { return SignalNavigation }

// Element describes the target of an interaction.
type Element struct {
	TagName   string
	ClassName string
	ID        string
	Text      string
}

// InteractionSignal fires on any click on the root document.
type InteractionSignal struct {
	Target Element
}

func (InteractionSignal) Kind() SignalKind { return SignalInteraction }

// FailureSignal fires on an uncaught error or an unhandled asynchronous
// rejection (Async true).
type FailureSignal struct {
	Message  string
	Filename string
	Line     int
	Column   int
	Stack    string
	Async    bool
}

func (FailureSignal) Kind() SignalKind { return SignalFailure }

// Emit dispatches a signal to its registered handler. Signals with no
// handler are ignored.
func (t *Tracker) Emit(sig Signal) {
	if h, ok := t.handlers[sig.Kind()]; ok {
		h(sig)
	}
}

// registerHandlers fills the subscription table. Guarded by the
// initialized flag so repeated construction attempts cannot attach
// duplicate handlers.
func (t *Tracker) registerHandlers() {
	if t.initialized {
		return
	}
	t.handlers = map[SignalKind]func(Signal){
		SignalNavigation:  t.onNavigation,
		SignalInteraction: t.onInteraction,
		SignalFailure:     t.onFailure,
	}
	t.initialized = true
}

func (t *Tracker) onNavigation(sig Signal) {
	nav, ok := sig.(NavigationSignal)
	if !ok {
		return
	}
	t.setPath(nav.Path)
	t.submit("pageview", Params{"path": nav.Path}, EventPageview, nil)
}

func (t *Tracker) onInteraction(sig Signal) {
	click, ok := sig.(InteractionSignal)
	if !ok {
		return
	}
	elem := &ElementInfo{
		TagName:   strings.ToLower(click.Target.TagName),
		ClassName: click.Target.ClassName,
		ID:        click.Target.ID,
		Text:      strings.TrimSpace(click.Target.Text),
	}
	t.submit("click", nil, EventClick, elem)
}

func (t *Tracker) onFailure(sig Signal) {
	fail, ok := sig.(FailureSignal)
	if !ok {
		return
	}

	if fail.Async {
		message := fail.Message
		if message == "" {
			message = "Promise rejection"
		}
		t.submit("error", Params{
			"type":    "unhandledrejection",
			"message": message,
			"error":   fail.Stack,
		}, EventError, nil)
		return
	}

	t.submit("error", Params{
		"message":  fail.Message,
		"filename": fail.Filename,
		"lineno":   fail.Line,
		"colno":    fail.Column,
		"error":    fail.Stack,
	}, EventError, nil)
}
