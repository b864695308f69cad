package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"resumescore/internal/errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	anthropicDefaultMaxTokens = 1024
	anthropicJSONInstruction  = "Respond with a single JSON object and nothing else."
)

// AnthropicCompleter implements ChatCompleter using the official Anthropic SDK
type AnthropicCompleter struct {
	client *anthropic.Client
	model  string
	logger *errors.Logger
}

var _ ChatCompleter = (*AnthropicCompleter)(nil)

// NewAnthropicCompleter creates an Anthropic client for model
func NewAnthropicCompleter(apiKey, baseURL, model string, logger *errors.Logger) *AnthropicCompleter {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicCompleter{client: &client, model: model, logger: logger}
}

// CompleteChat implements ChatCompleter. Anthropic has no JSON response
// mode, so JSON requests carry an extra system instruction instead.
func (a *AnthropicCompleter) CompleteChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	maxTokens := int64(anthropicDefaultMaxTokens)
	if req.MaxTokens > 0 {
		maxTokens = int64(req.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	}

	system := req.SystemPrompt
	if req.JSON {
		system = strings.TrimSpace(system + "\n\n" + anthropicJSONInstruction)
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(req.Temperature))
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classifyAnthropicError(err)
	}

	var builder strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(builder.String())
	if text == "" {
		return nil, transportError("anthropic", fmt.Errorf("empty response from model %s", a.model))
	}

	return &ChatResponse{
		Text: text,
		Usage: &TokenUsage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TotalTokens:  resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
		Model: string(resp.Model),
	}, nil
}

// ModelInfo checks that the configured model exists
func (a *AnthropicCompleter) ModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{Provider: "anthropic", Name: a.model}

	model, err := a.client.Models.Get(ctx, a.model, anthropic.ModelGetParams{})
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		a.logger.Warn("Model availability check failed",
			"model", a.model,
			"provider", "anthropic",
			"error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.DisplayName
	return info
}

func (a *AnthropicCompleter) Name() string { return "anthropic" }

func (a *AnthropicCompleter) Close() error { return nil }

func classifyAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if stderrors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return rateLimitError("anthropic", err)
	}
	return transportError("anthropic", err)
}
