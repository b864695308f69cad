package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the service's custom instruments. A nil *Metrics records
// nothing, so callers never need to check whether metrics are enabled.
type Metrics struct {
	AnalysisDuration   metric.Float64Histogram
	AnalysesTotal      metric.Int64Counter
	OverallScore       metric.Float64Histogram
	AugmentationsTotal metric.Int64Counter
	AIRequestDuration  metric.Float64Histogram
	AITokenUsage       metric.Int64Histogram
	ExtractionsTotal   metric.Int64Counter
	RateLimitHits      metric.Int64Counter
	CertReloads        metric.Int64Counter
}

// NewMetrics creates every instrument on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.AnalysisDuration, err = meter.Float64Histogram(
		"resumescore_analysis_duration_seconds",
		metric.WithDescription("Time spent producing one analysis"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create analysis duration metric: %w", err)
	}

	if m.AnalysesTotal, err = meter.Int64Counter(
		"resumescore_analyses_total",
		metric.WithDescription("Total number of analyses produced"),
	); err != nil {
		return nil, fmt.Errorf("failed to create analyses metric: %w", err)
	}

	if m.OverallScore, err = meter.Float64Histogram(
		"resumescore_overall_score",
		metric.WithDescription("Distribution of overall resume scores"),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100),
	); err != nil {
		return nil, fmt.Errorf("failed to create overall score metric: %w", err)
	}

	if m.AugmentationsTotal, err = meter.Int64Counter(
		"resumescore_augmentations_total",
		metric.WithDescription("AI augmentation calls by operation and outcome"),
	); err != nil {
		return nil, fmt.Errorf("failed to create augmentation metric: %w", err)
	}

	if m.AIRequestDuration, err = meter.Float64Histogram(
		"resumescore_ai_request_duration_seconds",
		metric.WithDescription("Time spent waiting for the model provider"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI duration metric: %w", err)
	}

	if m.AITokenUsage, err = meter.Int64Histogram(
		"resumescore_ai_token_usage",
		metric.WithDescription("Token usage for AI requests (input, output)"),
		metric.WithUnit("tokens"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	if m.ExtractionsTotal, err = meter.Int64Counter(
		"resumescore_extractions_total",
		metric.WithDescription("Document extractions by format and outcome"),
	); err != nil {
		return nil, fmt.Errorf("failed to create extraction metric: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter(
		"resumescore_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	); err != nil {
		return nil, fmt.Errorf("failed to create rate limit metric: %w", err)
	}

	if m.CertReloads, err = meter.Int64Counter(
		"resumescore_cert_reloads_total",
		metric.WithDescription("TLS certificate reloads by outcome"),
	); err != nil {
		return nil, fmt.Errorf("failed to create certificate reload metric: %w", err)
	}

	return m, nil
}

// RecordAnalysis records one completed analysis
func (m *Metrics) RecordAnalysis(ctx context.Context, d time.Duration, overall float64, augmented bool, policyVersion string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.Bool("augmented", augmented),
		attribute.String("policy_version", policyVersion),
	)
	m.AnalysisDuration.Record(ctx, d.Seconds(), attrs)
	m.AnalysesTotal.Add(ctx, 1, attrs)
	m.OverallScore.Record(ctx, overall, attrs)
}

// RecordAugmentation records the outcome of one augmentation operation
func (m *Metrics) RecordAugmentation(ctx context.Context, operation string, fallback bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if fallback {
		outcome = "fallback"
	}
	m.AugmentationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

// RecordAIRequest records one provider round trip and its token usage
func (m *Metrics) RecordAIRequest(ctx context.Context, provider, operation string, d time.Duration, success bool, inputTokens, outputTokens int64) {
	if m == nil {
		return
	}
	base := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("operation", operation),
	}
	m.AIRequestDuration.Record(ctx, d.Seconds(), metric.WithAttributes(append(base, attribute.Bool("success", success))...))
	if !success {
		return
	}
	m.AITokenUsage.Record(ctx, inputTokens, metric.WithAttributes(append(base, attribute.String("token_type", "input"))...))
	m.AITokenUsage.Record(ctx, outputTokens, metric.WithAttributes(append(base, attribute.String("token_type", "output"))...))
}

// RecordExtraction records one document extraction
func (m *Metrics) RecordExtraction(ctx context.Context, format string, success bool) {
	if m == nil {
		return
	}
	m.ExtractionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.Bool("success", success),
	))
}

// RecordRateLimitHit records a rejected request
func (m *Metrics) RecordRateLimitHit(ctx context.Context, limitedBy string) {
	if m == nil {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("limited_by", limitedBy)))
}

// RecordCertReload records a TLS certificate reload attempt
func (m *Metrics) RecordCertReload(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	m.CertReloads.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}
