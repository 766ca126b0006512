package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the engine's RED instruments: withdrawal rate, denials by
// reason, and delegated-transfer duration.
type Metrics struct {
	withdrawals      metric.Int64Counter
	denials          metric.Int64Counter
	transferDuration metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.withdrawals, err = meter.Int64Counter("drip.withdrawals.total",
		metric.WithDescription("Total number of withdrawal attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	m.denials, err = meter.Int64Counter("drip.denials.total",
		metric.WithDescription("Total number of denied operations, by reason"),
		metric.WithUnit("{denial}"),
	)
	if err != nil {
		return nil, err
	}

	m.transferDuration, err = meter.Float64Histogram("drip.transfer.duration",
		metric.WithDescription("Delegated token transfer duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordWithdrawal counts one withdrawal attempt and, when denied, the
// denial reason.
func (m *Metrics) RecordWithdrawal(ctx context.Context, allowed bool, reason string) {
	if m == nil {
		return
	}
	m.withdrawals.Add(ctx, 1,
		metric.WithAttributes(attribute.Bool("allowed", allowed)),
	)
	if !allowed {
		m.denials.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("op", "withdraw"),
				attribute.String("reason", reason),
			),
		)
	}
}

// RecordTransfer observes one delegated transfer's duration.
func (m *Metrics) RecordTransfer(ctx context.Context, seconds float64) {
	if m == nil {
		return
	}
	m.transferDuration.Record(ctx, seconds)
}
