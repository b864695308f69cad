package ai

import (
	"context"
	stderrors "errors"
	"fmt"

	"resumescore/internal/config"
	"resumescore/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// BreakerCompleter wraps a ChatCompleter with a circuit breaker. While the
// breaker is open calls fail fast with CIRCUIT_OPEN.
type BreakerCompleter struct {
	next ChatCompleter
	cb   *gobreaker.CircuitBreaker[*ChatResponse]
}

var _ ChatCompleter = (*BreakerCompleter)(nil)

// NewBreakerCompleter wraps next. It returns next unchanged when the
// breaker is disabled.
func NewBreakerCompleter(next ChatCompleter, cfg config.CircuitBreakerConfig, logger *errors.Logger) ChatCompleter {
	if !cfg.Enabled {
		return next
	}

	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("AI-%s", next.Name()),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureThreshold
		},
		// Cancellations are the caller's deadline, not provider health
		IsSuccessful: func(err error) bool {
			return err == nil || stderrors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger != nil {
				logger.Info("Circuit breaker state changed",
					"name", name,
					"from", from.String(),
					"to", to.String(),
					"max_requests", cfg.MaxRequests,
					"failure_threshold", cfg.FailureThreshold)
			}
		},
	}

	return &BreakerCompleter{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[*ChatResponse](settings),
	}
}

// CompleteChat implements ChatCompleter
func (b *BreakerCompleter) CompleteChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	resp, err := b.cb.Execute(func() (*ChatResponse, error) {
		return b.next.CompleteChat(ctx, req)
	})
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.NewAugmentationError(errors.ErrCodeCircuitOpen,
			"AI provider circuit breaker is open", err).WithContext("provider", b.next.Name())
	}
	return resp, err
}

// ModelInfo bypasses the breaker so health checks can observe recovery
func (b *BreakerCompleter) ModelInfo(ctx context.Context) *ModelInfo {
	return b.next.ModelInfo(ctx)
}

func (b *BreakerCompleter) Name() string { return b.next.Name() }

func (b *BreakerCompleter) Close() error { return b.next.Close() }

// Stats returns circuit breaker statistics
func (b *BreakerCompleter) Stats() map[string]any {
	counts := b.cb.Counts()
	return map[string]any{
		"enabled": true,
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts": map[string]uint32{
			"requests":             counts.Requests,
			"totalSuccesses":       counts.TotalSuccesses,
			"totalFailures":        counts.TotalFailures,
			"consecutiveSuccesses": counts.ConsecutiveSuccesses,
			"consecutiveFailures":  counts.ConsecutiveFailures,
		},
	}
}

// IsHealthy returns true if the circuit breaker is in closed state
func (b *BreakerCompleter) IsHealthy() bool {
	return b.cb.State() == gobreaker.StateClosed
}

// BreakerStats returns breaker statistics for any completer
func BreakerStats(c ChatCompleter) map[string]any {
	if b, ok := c.(*BreakerCompleter); ok {
		return b.Stats()
	}
	if t, ok := c.(*TracingCompleter); ok {
		return BreakerStats(t.next)
	}
	return map[string]any{"enabled": false}
}
