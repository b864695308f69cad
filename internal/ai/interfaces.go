// Package ai provides optional LLM enrichment. Every Augmenter operation
// returns a usable value even when the model cannot be reached.
package ai

import (
	"context"
)

// ChatRequest is one prompt sent to a chat model
type ChatRequest struct {
	Operation    string // used for tracing and metrics
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float32
	// JSON asks for a JSON object reply. Schema, when set, describes it
	// using the JSON Schema subset of type, properties, items, required,
	// minimum and maximum.
	JSON   bool
	Schema map[string]any
}

// ChatResponse is the model's reply
type ChatResponse struct {
	Text  string
	Usage *TokenUsage
	Model string
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Provider    string `json:"provider"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// ChatCompleter is the capability the augmentation layer depends on.
// CompleteChat fails with a RATE_LIMITED error when the provider throttles
// and a TRANSPORT_FAILED error for any other provider failure.
type ChatCompleter interface {
	CompleteChat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	ModelInfo(ctx context.Context) *ModelInfo
	Name() string
	Close() error
}
