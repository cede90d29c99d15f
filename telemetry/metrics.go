package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/pthm-cable/goldhelper/tracking"
)

// Shutdown flushes and stops the meter provider.
type Shutdown func(ctx context.Context) error

// Init configures the global OpenTelemetry meter provider.
// If endpoint is empty, OTEL is disabled and the no-op provider stays in place.
// Returns a shutdown function that must be called before exit.
func Init(ctx context.Context, endpoint, serviceName, version string, insecure bool) (Shutdown, error) {
	if endpoint == "" {
		return func(ctx context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create resource: %w", err)
	}

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(endpoint),
	}
	if insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exp, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exp,
				sdkmetric.WithInterval(15*time.Second),
			),
		),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	return mp.Shutdown, nil
}

// Meter returns the global meter for the given instrumentation scope.
func Meter(name string) metric.Meter {
	return otel.GetMeterProvider().Meter(name)
}

// StateFunc returns the latest published tracker state. It is called from
// the metric reader's goroutine and must be safe for that.
type StateFunc func() tracking.State

// Metrics records tracker events as OTEL instruments.
type Metrics struct {
	goldGained    metric.Int64Counter
	goldSpent     metric.Int64Counter
	runsCompleted metric.Int64Counter
	runsDiscarded metric.Int64Counter
	runRate       metric.Float64Histogram
}

// NewMetrics creates the instruments on meter. state, if non-nil, backs the
// observable session gauges.
func NewMetrics(meter metric.Meter, state StateFunc) *Metrics {
	gained, _ := meter.Int64Counter("goldhelper.gold.gained",
		metric.WithDescription("Gold picked up while in an active area"),
	)
	spent, _ := meter.Int64Counter("goldhelper.gold.spent",
		metric.WithDescription("Gold leaving the raw counter"),
	)
	completed, _ := meter.Int64Counter("goldhelper.runs.completed",
		metric.WithDescription("Runs finalized with a positive gain"),
	)
	discarded, _ := meter.Int64Counter("goldhelper.runs.discarded",
		metric.WithDescription("Runs closed without gain"),
	)
	rate, _ := meter.Float64Histogram("goldhelper.run.gold_per_hour",
		metric.WithDescription("Gold per hour of completed runs"),
		metric.WithUnit("{gold}/h"),
	)

	if state != nil {
		_, _ = meter.Int64ObservableGauge("goldhelper.session.gold",
			metric.WithDescription("Gold gained this session"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(state().SessionGold)
				return nil
			}),
		)
		_, _ = meter.Int64ObservableGauge("goldhelper.history.size",
			metric.WithDescription("Runs in the profitability history"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(int64(len(state().Recent)))
				return nil
			}),
		)
	}

	return &Metrics{
		goldGained:    gained,
		goldSpent:     spent,
		runsCompleted: completed,
		runsDiscarded: discarded,
		runRate:       rate,
	}
}

// Record adds one tracker step to the instruments.
func (m *Metrics) Record(ctx context.Context, res tracking.Result) {
	if m == nil {
		return
	}
	if res.SessionGain > 0 {
		m.goldGained.Add(ctx, res.SessionGain)
	}
	if res.Spent > 0 {
		m.goldSpent.Add(ctx, res.Spent)
	}
	if res.Discarded {
		m.runsDiscarded.Add(ctx, 1)
	}
	if res.Finalized != nil {
		name := metric.WithAttributes(attribute.String("run.name", res.Finalized.Name))
		m.runsCompleted.Add(ctx, 1, name)
		m.runRate.Record(ctx, res.Finalized.GoldPerHour(), name)
	}
}
