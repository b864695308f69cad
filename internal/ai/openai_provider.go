package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"resumescore/internal/errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAICompleter implements ChatCompleter using the official OpenAI SDK.
// BaseURL may point at any OpenAI-compatible endpoint.
type OpenAICompleter struct {
	client *openai.Client
	model  string
	logger *errors.Logger
}

var _ ChatCompleter = (*OpenAICompleter)(nil)

// NewOpenAICompleter creates an OpenAI client for model
func NewOpenAICompleter(apiKey, baseURL, model string, logger *errors.Logger) *OpenAICompleter {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAICompleter{client: &client, model: model, logger: logger}
}

// CompleteChat implements ChatCompleter
func (o *OpenAICompleter) CompleteChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(o.model),
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(float64(req.Temperature))
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, transportError("openai", fmt.Errorf("no choices returned by model %s", o.model))
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, transportError("openai", fmt.Errorf("empty response from model %s", o.model))
	}

	return &ChatResponse{
		Text: text,
		Usage: &TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		Model: resp.Model,
	}, nil
}

// ModelInfo looks the configured model up in the provider's model list
func (o *OpenAICompleter) ModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{Provider: "openai", Name: o.model}

	model, err := o.client.Models.Get(ctx, o.model)
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		o.logger.Warn("Model availability check failed",
			"model", o.model,
			"provider", "openai",
			"error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.ID
	return info
}

func (o *OpenAICompleter) Name() string { return "openai" }

func (o *OpenAICompleter) Close() error { return nil }

func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if stderrors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return rateLimitError("openai", err)
	}
	return transportError("openai", err)
}
