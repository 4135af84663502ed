package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "byobu-select"

// Metrics holds the OTEL instruments for session resolution and the
// preferences menu. All counters are monotonic.
type Metrics struct {
	SessionsEnumerated metric.Int64Counter
	Selections         metric.Int64Counter // partitioned by kind: session, new, shell, default
	PromptRetries      metric.Int64Counter
	ZombiesReaped      metric.Int64Counter
	EnvPropagated      metric.Int64Counter
	PrefChanges        metric.Int64Counter // partitioned by preference
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}

	var err error
	m.SessionsEnumerated, err = meter.Int64Counter("sessions.enumerated",
		metric.WithDescription("Visible sessions found when building the selection list"),
		metric.WithUnit("{session}"))
	if err != nil {
		return nil, err
	}

	m.Selections, err = meter.Int64Counter("selections.total",
		metric.WithDescription("Resolved selections partitioned by kind (session, new, shell, default)"))
	if err != nil {
		return nil, err
	}

	m.PromptRetries, err = meter.Int64Counter("prompt.retries",
		metric.WithDescription("Invalid answers at the session prompt"))
	if err != nil {
		return nil, err
	}

	m.ZombiesReaped, err = meter.Int64Counter("zombies.reaped",
		metric.WithDescription("Unattached session-group satellites killed before attach"),
		metric.WithUnit("{session}"))
	if err != nil {
		return nil, err
	}

	m.EnvPropagated, err = meter.Int64Counter("env.propagated",
		metric.WithDescription("Environment variables pushed into the target session"))
	if err != nil {
		return nil, err
	}

	m.PrefChanges, err = meter.Int64Counter("preferences.changes",
		metric.WithDescription("Persisted preference changes partitioned by preference"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordEnumerated records how many visible sessions were listed.
func (m *Metrics) RecordEnumerated(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.SessionsEnumerated.Add(ctx, int64(n))
}

// RecordSelection records the kind of choice the resolver settled on.
func (m *Metrics) RecordSelection(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.Selections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("selection.kind", kind),
	))
}

// RecordPromptRetry records one rejected answer.
func (m *Metrics) RecordPromptRetry(ctx context.Context) {
	if m == nil {
		return
	}
	m.PromptRetries.Add(ctx, 1)
}

// RecordZombiesReaped records killed satellite sessions.
func (m *Metrics) RecordZombiesReaped(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ZombiesReaped.Add(ctx, int64(n))
}

// RecordEnvPropagated records variables successfully set in a session.
func (m *Metrics) RecordEnvPropagated(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.EnvPropagated.Add(ctx, int64(n))
}

// RecordPrefChange records a persisted preference change.
func (m *Metrics) RecordPrefChange(ctx context.Context, pref string) {
	if m == nil {
		return
	}
	m.PrefChanges.Add(ctx, 1, metric.WithAttributes(
		attribute.String("preference", pref),
	))
}
