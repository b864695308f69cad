package ai

import (
	"context"
	"time"

	"resumescore/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// TracingCompleter records a span and AI request metrics for every call
type TracingCompleter struct {
	next    ChatCompleter
	model   string
	metrics *observability.Metrics
}

var _ ChatCompleter = (*TracingCompleter)(nil)

// NewTracingCompleter wraps next. metrics may be nil.
func NewTracingCompleter(next ChatCompleter, model string, metrics *observability.Metrics) *TracingCompleter {
	return &TracingCompleter{next: next, model: model, metrics: metrics}
}

// CompleteChat implements ChatCompleter
func (t *TracingCompleter) CompleteChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	tracer := otel.Tracer("resumescore.ai")
	ctx, span := tracer.Start(ctx, t.next.Name()+"."+req.Operation)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", t.next.Name()),
		attribute.String("ai.model", t.model),
		attribute.String("ai.operation", req.Operation),
		attribute.Float64("ai.temperature", float64(req.Temperature)),
		attribute.Int("ai.max_tokens", req.MaxTokens),
		attribute.Bool("ai.json", req.JSON),
		attribute.Int("input.user_prompt_length", len(req.UserPrompt)),
	)

	start := time.Now()
	resp, err := t.next.CompleteChat(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("success", false))
		t.metrics.RecordAIRequest(ctx, t.next.Name(), req.Operation, elapsed, false, 0, 0)
		return nil, err
	}

	var in, out int64
	if resp.Usage != nil {
		in, out = resp.Usage.InputTokens, resp.Usage.OutputTokens
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", resp.Usage.InputTokens),
			attribute.Int64("ai.tokens.output", resp.Usage.OutputTokens),
			attribute.Int64("ai.tokens.total", resp.Usage.TotalTokens),
		)
	}
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.length", len(resp.Text)),
	)
	t.metrics.RecordAIRequest(ctx, t.next.Name(), req.Operation, elapsed, true, in, out)
	return resp, nil
}

// ModelInfo implements ChatCompleter
func (t *TracingCompleter) ModelInfo(ctx context.Context) *ModelInfo {
	return t.next.ModelInfo(ctx)
}

func (t *TracingCompleter) Name() string { return t.next.Name() }

func (t *TracingCompleter) Close() error { return t.next.Close() }
