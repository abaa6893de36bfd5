package infra

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/arbitrage/app"
)

const meterName = "arbitrage-scanner/engine"

// Telemetry exports the engine's pipeline counters through OTEL observable
// instruments, sampled on every collection cycle.
type Telemetry struct {
	registration metric.Registration
}

// NewTelemetry registers the engine instruments against the global meter
// provider.
func NewTelemetry(engine *app.Engine) (*Telemetry, error) {
	meter := otel.Meter(meterName)

	ticks, err := meter.Int64ObservableCounter(
		"ticks_processed_total",
		metric.WithDescription("Ticks folded into the price graph"),
		metric.WithUnit("{tick}"),
	)
	if err != nil {
		return nil, err
	}

	opportunities, err := meter.Int64ObservableCounter(
		"opportunities_found_total",
		metric.WithDescription("Opportunities that cleared every publication gate"),
		metric.WithUnit("{opportunity}"),
	)
	if err != nil {
		return nil, err
	}

	falsePositives, err := meter.Int64ObservableCounter(
		"false_positives_total",
		metric.WithDescription("Detected cycles rejected on re-verification"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64ObservableGauge(
		"ingress_latency_avg_us",
		metric.WithDescription("EWMA of tick ingress-to-apply latency"),
		metric.WithUnit("us"),
	)
	if err != nil {
		return nil, err
	}

	queueDepth, err := meter.Int64ObservableGauge(
		"ingress_queue_depth",
		metric.WithDescription("Pending ticks per venue queue"),
		metric.WithUnit("{tick}"),
	)
	if err != nil {
		return nil, err
	}

	nodes, err := meter.Int64ObservableGauge(
		"graph_nodes",
		metric.WithDescription("Interned (currency, venue) nodes"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, err
	}

	registration, err := meter.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			snap := engine.Stats()
			o.ObserveInt64(ticks, int64(snap.MessagesProcessed))
			o.ObserveInt64(opportunities, int64(snap.OpportunitiesFound))
			o.ObserveInt64(falsePositives, int64(snap.FalsePositives))
			o.ObserveFloat64(latency, snap.AvgLatencyUS)
			o.ObserveInt64(nodes, int64(engine.NodeCount()))
			for venue, depth := range engine.QueueDepths() {
				o.ObserveInt64(queueDepth, int64(depth),
					metric.WithAttributes(attribute.Int("venue", venue)))
			}
			return nil
		},
		ticks, opportunities, falsePositives, latency, queueDepth, nodes,
	)
	if err != nil {
		return nil, err
	}

	return &Telemetry{registration: registration}, nil
}

// Close unregisters the instruments.
func (t *Telemetry) Close() error {
	return t.registration.Unregister()
}
