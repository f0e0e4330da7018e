package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the BFF's metric instruments. All fields are always initialized;
// without a MeterProvider they are no-ops.
type Metrics struct {
	UpstreamRequests metric.Int64Counter
	UpstreamDuration metric.Float64Histogram
	UpstreamErrors   metric.Int64Counter

	ProfilesCreated   metric.Int64Counter
	IdentityFailures  metric.Int64Counter
	ActivityRecorded  metric.Int64Counter
	RateLimitRejected metric.Int64Counter
}

// NewMetrics creates all metric instruments
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("trackmyoffer-bff")
	m := &Metrics{}
	var err error

	if m.UpstreamRequests, err = meter.Int64Counter("bff.upstream.requests",
		metric.WithDescription("Total calls to the feature service")); err != nil {
		return nil, err
	}
	if m.UpstreamDuration, err = meter.Float64Histogram("bff.upstream.duration_seconds",
		metric.WithDescription("Feature service call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10)); err != nil {
		return nil, err
	}
	if m.UpstreamErrors, err = meter.Int64Counter("bff.upstream.errors",
		metric.WithDescription("Feature service calls that failed before a response")); err != nil {
		return nil, err
	}
	if m.ProfilesCreated, err = meter.Int64Counter("bff.directory.profiles_created",
		metric.WithDescription("Upstream profiles created for first-time users")); err != nil {
		return nil, err
	}
	if m.IdentityFailures, err = meter.Int64Counter("bff.identity.failures",
		metric.WithDescription("Requests whose session could not be resolved")); err != nil {
		return nil, err
	}
	if m.ActivityRecorded, err = meter.Int64Counter("bff.activity.recorded",
		metric.WithDescription("Activity events recorded")); err != nil {
		return nil, err
	}
	if m.RateLimitRejected, err = meter.Int64Counter("bff.ratelimit.rejected",
		metric.WithDescription("Requests rejected by the rate limiter")); err != nil {
		return nil, err
	}

	return m, nil
}
