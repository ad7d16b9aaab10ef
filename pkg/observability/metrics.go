package observability

import (
	"context"
	"errors"

	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "chatdialog"

// Metrics holds the Prometheus collectors fed by the engine hooks.
type Metrics struct {
	DialogStarts  *prometheus.CounterVec
	DialogEnds    *prometheus.CounterVec
	WindowShows   *prometheus.CounterVec
	RenderSeconds *prometheus.HistogramVec
	EventErrors   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		DialogStarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "dialog_starts_total",
			Help:      "Total number of dialogs started.",
		}, []string{"dialog", "mode"}),
		DialogEnds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "dialog_ends_total",
			Help:      "Total number of dialogs that left a stack.",
		}, []string{"dialog", "reason"}),
		WindowShows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "window_shows_total",
			Help:      "Total number of windows delivered, by transport operation.",
		}, []string{"dialog", "operation"}),
		RenderSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "window_show_duration_seconds",
			Help:      "Time spent delivering a window to the transport.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		EventErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "event_errors_total",
			Help:      "Total number of events that failed, by event kind and cause.",
		}, []string{"kind", "cause"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.DialogStarts, m.DialogEnds, m.WindowShows, m.RenderSeconds, m.EventErrors}
}

// Hooks returns lifecycle hooks recording into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDialogStart: func(_ context.Context, ev *domain.DialogEvent) {
			mode := ev.Mode
			if mode == "" {
				mode = domain.LaunchStandard
			}
			m.DialogStarts.WithLabelValues(ev.Dialog, string(mode)).Inc()
		},
		OnDialogDone: func(_ context.Context, ev *domain.DialogEvent) {
			m.DialogEnds.WithLabelValues(ev.Dialog, "done").Inc()
		},
		OnDialogClose: func(_ context.Context, ev *domain.DialogEvent) {
			m.DialogEnds.WithLabelValues(ev.Dialog, "close").Inc()
		},
		OnWindowShow: func(_ context.Context, ev *domain.WindowEvent) {
			m.WindowShows.WithLabelValues(ev.State.Group(), ev.Operation).Inc()
			m.RenderSeconds.WithLabelValues(ev.Operation).Observe(ev.Duration.Seconds())
		},
		OnEventError: func(_ context.Context, ev domain.Event, err error) {
			kind := "unknown"
			if ev != nil {
				kind = string(ev.Kind())
			}
			m.EventErrors.WithLabelValues(kind, Cause(err)).Inc()
		},
	}
}

var causes = []struct {
	err  error
	name string
}{
	{domain.ErrUnknownIntent, "unknown_intent"},
	{domain.ErrOutdatedIntent, "outdated_intent"},
	{domain.ErrNoContext, "no_context"},
	{domain.ErrAccessDenied, "access_denied"},
	{domain.ErrExclusiveStack, "exclusive_stack"},
	{domain.ErrUnregisteredDialog, "unregistered_dialog"},
	{domain.ErrUnregisteredWindow, "unregistered_window"},
	{domain.ErrNavigation, "navigation"},
	{domain.ErrStackOverflow, "stack_overflow"},
}

// Cause maps err to a low-cardinality label.
func Cause(err error) string {
	for _, c := range causes {
		if errors.Is(err, c.err) {
			return c.name
		}
	}
	return "other"
}
