package ai

import (
	"context"
	"io"
	"log/slog"
	"time"

	"resumescore/internal/config"
	"resumescore/internal/errors"
)

// fakeCompleter replies with a fixed text or error and records requests
type fakeCompleter struct {
	reply       string
	err         error
	requests    []ChatRequest
	hadDeadline []bool
}

func (f *fakeCompleter) CompleteChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	_, ok := ctx.Deadline()
	f.requests = append(f.requests, req)
	f.hadDeadline = append(f.hadDeadline, ok)
	if f.err != nil {
		return nil, f.err
	}
	return &ChatResponse{
		Text:  f.reply,
		Usage: &TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
		Model: "fake-model",
	}, nil
}

func (f *fakeCompleter) ModelInfo(ctx context.Context) *ModelInfo {
	return &ModelInfo{Provider: "fake", Name: "fake-model", Available: true}
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) Close() error { return nil }

// blockingCompleter waits for the context to end
type blockingCompleter struct{}

func (blockingCompleter) CompleteChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	<-ctx.Done()
	return nil, transportError("blocking", ctx.Err())
}

func (blockingCompleter) ModelInfo(ctx context.Context) *ModelInfo { return &ModelInfo{} }

func (blockingCompleter) Name() string { return "blocking" }

func (blockingCompleter) Close() error { return nil }

func testLogger() *errors.Logger {
	return errors.NewLoggerTo(io.Discard, slog.LevelDebug)
}

func testConfig() *config.Config {
	return &config.Config{
		AI: config.AIConfig{
			Provider:    config.ProviderGemini,
			Model:       "test-model",
			Timeout:     2 * time.Second,
			Temperature: 0.3,
			MaxTokens:   512,
			Limits: config.InputLimits{
				ResumeRunes:   200,
				JobRunes:      100,
				QuestionRunes: 50,
			},
		},
	}
}
