package ai

import (
	"context"
	"fmt"

	"resumescore/internal/config"
	"resumescore/internal/errors"
	"resumescore/internal/observability"
)

// NewCompleter builds the process-wide ChatCompleter. A missing provider or
// key selects Unavailable so every operation falls back. Configured
// completers are wrapped by a circuit breaker and tracing.
func NewCompleter(ctx context.Context, cfg *config.Config, logger *errors.Logger, metrics *observability.Metrics) (ChatCompleter, error) {
	aiCfg := cfg.AI

	logger.Debug("Initializing AI completer",
		"provider", aiCfg.Provider,
		"model", aiCfg.Model,
		"temperature", aiCfg.Temperature,
		"timeout", aiCfg.Timeout,
		"circuit_breaker", aiCfg.CircuitBreaker.Enabled)

	if aiCfg.Provider == config.ProviderNone {
		return Unavailable{Reason: "AI augmentation is disabled"}, nil
	}
	if aiCfg.APIKey == "" {
		logger.Warn("No API key configured, AI augmentation will use fallbacks",
			"provider", aiCfg.Provider)
		return Unavailable{Reason: fmt.Sprintf("no API key configured for %s", aiCfg.Provider)}, nil
	}

	var base ChatCompleter
	switch aiCfg.Provider {
	case config.ProviderGemini:
		g, err := NewGeminiCompleter(ctx, aiCfg.APIKey, aiCfg.Model, logger)
		if err != nil {
			return nil, err
		}
		base = g
	case config.ProviderOpenAI:
		base = NewOpenAICompleter(aiCfg.APIKey, aiCfg.BaseURL, aiCfg.Model, logger)
	case config.ProviderAnthropic:
		base = NewAnthropicCompleter(aiCfg.APIKey, aiCfg.BaseURL, aiCfg.Model, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", aiCfg.Provider), nil)
	}

	return wrapCompleter(base, aiCfg, logger, metrics), nil
}

func wrapCompleter(base ChatCompleter, aiCfg config.AIConfig, logger *errors.Logger, metrics *observability.Metrics) ChatCompleter {
	return NewTracingCompleter(NewBreakerCompleter(base, aiCfg.CircuitBreaker, logger), aiCfg.Model, metrics)
}
