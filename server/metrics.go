package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

const instrumentationName = "car-arena/server"

// telemetry owns the relay's meter provider. A manual reader always backs
// the /stats totals; a periodic stdout exporter is added when an interval
// is configured.
type telemetry struct {
	provider *sdkmetric.MeterProvider
	reader   *sdkmetric.ManualReader
}

func newTelemetry(export io.Writer, interval time.Duration) (*telemetry, error) {
	reader := sdkmetric.NewManualReader()
	opts := []sdkmetric.Option{sdkmetric.WithReader(reader)}

	if export != nil && interval > 0 {
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(export))
		if err != nil {
			return nil, fmt.Errorf("creating metrics exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval)),
		))
	}

	return &telemetry{provider: sdkmetric.NewMeterProvider(opts...), reader: reader}, nil
}

// Totals sums every integer counter across its attribute sets
func (t *telemetry) Totals(ctx context.Context) (map[string]int64, error) {
	var rm metricdata.ResourceMetrics
	if err := t.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}
	totals := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			totals[m.Name] = total
		}
	}
	return totals, nil
}

// Shutdown flushes the exporter, if any, and stops the provider
func (t *telemetry) Shutdown(ctx context.Context) error {
	if err := t.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("meter provider shutdown: %w", err)
	}
	return nil
}

// relayMetrics counts relay traffic
type relayMetrics struct {
	source  *telemetry
	peers   metric.Int64UpDownCounter
	relayed metric.Int64Counter
	dropped metric.Int64Counter
}

func newRelayMetrics(t *telemetry) (*relayMetrics, error) {
	m := t.provider.Meter(instrumentationName)

	peers, err := m.Int64UpDownCounter(
		"relay.peers",
		metric.WithDescription("Peers currently attached to a room"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating peers counter: %w", err)
	}
	relayed, err := m.Int64Counter(
		"relay.messages.relayed",
		metric.WithDescription("Messages delivered to peers"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating relayed counter: %w", err)
	}
	dropped, err := m.Int64Counter(
		"relay.messages.dropped",
		metric.WithDescription("Messages dropped because a peer's send buffer was full"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}
	return &relayMetrics{source: t, peers: peers, relayed: relayed, dropped: dropped}, nil
}

func (m *relayMetrics) peerJoined(room string) {
	m.peers.Add(context.Background(), 1, metric.WithAttributes(attribute.String("room", room)))
}

func (m *relayMetrics) peerLeft(room string) {
	m.peers.Add(context.Background(), -1, metric.WithAttributes(attribute.String("room", room)))
}

func (m *relayMetrics) delivered(msgType string, ok bool) {
	attrs := metric.WithAttributes(attribute.String("type", msgType))
	if ok {
		m.relayed.Add(context.Background(), 1, attrs)
		return
	}
	m.dropped.Add(context.Background(), 1, attrs)
}

// Totals reports the current counter values by metric name
func (m *relayMetrics) Totals(ctx context.Context) (map[string]int64, error) {
	return m.source.Totals(ctx)
}
