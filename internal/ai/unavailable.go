package ai

import (
	"context"

	"resumescore/internal/errors"
)

// Unavailable is the ChatCompleter used when no provider is configured.
// Every call fails, so every Augmenter operation takes its fallback.
type Unavailable struct {
	Reason string
}

var _ ChatCompleter = Unavailable{}

// CompleteChat always fails with AI_UNAVAILABLE
func (u Unavailable) CompleteChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return nil, errors.NewAugmentationError(errors.ErrCodeAIUnavailable, u.reason(), nil)
}

// ModelInfo reports the completer as unavailable
func (u Unavailable) ModelInfo(ctx context.Context) *ModelInfo {
	return &ModelInfo{Provider: "none", Available: false, Error: u.reason()}
}

func (u Unavailable) Name() string { return "none" }

func (u Unavailable) Close() error { return nil }

func (u Unavailable) reason() string {
	if u.Reason == "" {
		return "AI augmentation is not configured"
	}
	return u.Reason
}
