package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"resumescore/internal/errors"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiCompleter implements ChatCompleter for Google Gemini
type GeminiCompleter struct {
	client *genai.Client
	model  string
	logger *errors.Logger
}

var _ ChatCompleter = (*GeminiCompleter)(nil)

// NewGeminiCompleter creates a Gemini client for model
func NewGeminiCompleter(ctx context.Context, apiKey, model string, logger *errors.Logger) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}
	return &GeminiCompleter{client: client, model: model, logger: logger}, nil
}

// CompleteChat implements ChatCompleter
func (g *GeminiCompleter) CompleteChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	genaiConfig := &genai.GenerateContentConfig{}
	if req.Temperature > 0 {
		genaiConfig.Temperature = genai.Ptr(req.Temperature)
	}
	if req.MaxTokens > 0 {
		genaiConfig.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.SystemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.JSON {
		genaiConfig.ResponseMIMEType = "application/json"
		if req.Schema != nil {
			genaiConfig.ResponseSchema = toGenaiSchema(req.Schema)
		}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.UserPrompt), genaiConfig)
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, transportError("gemini", fmt.Errorf("empty response from model %s", g.model))
	}

	return &ChatResponse{
		Text:  text,
		Usage: geminiTokenUsage(result),
		Model: g.model,
	}, nil
}

// ModelInfo checks the readiness and availability of the configured model
func (g *GeminiCompleter) ModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{Provider: "gemini", Name: g.model}

	model, err := g.client.Models.Get(ctx, g.model, &genai.GetModelConfig{})
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.model,
			"provider", "gemini",
			"error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.DisplayName
	return info
}

func (g *GeminiCompleter) Name() string { return "gemini" }

// Close is a no-op; the Gemini client holds no persistent connection
func (g *GeminiCompleter) Close() error { return nil }

// classifyGeminiError maps SDK errors to RATE_LIMITED or TRANSPORT_FAILED
func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if stderrors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return rateLimitError("gemini", err)
	}
	var apiErrPtr *genai.APIError
	if stderrors.As(err, &apiErrPtr) && apiErrPtr.Code == http.StatusTooManyRequests {
		return rateLimitError("gemini", err)
	}
	var gErr *googleapi.Error
	if stderrors.As(err, &gErr) && gErr.Code == http.StatusTooManyRequests {
		return rateLimitError("gemini", err)
	}
	return transportError("gemini", err)
}

// geminiTokenUsage extracts token usage information from a Gemini response
func geminiTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}
	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// toGenaiSchema converts a JSON Schema subset into a Gemini response schema
func toGenaiSchema(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}
	out := &genai.Schema{}

	switch schema["type"] {
	case "object":
		out.Type = genai.TypeObject
	case "array":
		out.Type = genai.TypeArray
	case "string":
		out.Type = genai.TypeString
	case "integer":
		out.Type = genai.TypeInteger
	case "number":
		out.Type = genai.TypeNumber
	case "boolean":
		out.Type = genai.TypeBoolean
	}

	if desc, ok := schema["description"].(string); ok {
		out.Description = desc
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if sub, ok := raw.(map[string]any); ok {
				out.Properties[name] = toGenaiSchema(sub)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		out.Items = toGenaiSchema(items)
	}
	switch req := schema["required"].(type) {
	case []string:
		out.Required = append([]string(nil), req...)
	case []any:
		for _, r := range req {
			if s, ok := r.(string); ok {
				out.Required = append(out.Required, s)
			}
		}
	}
	if v, ok := toFloat(schema["minimum"]); ok {
		out.Minimum = &v
	}
	if v, ok := toFloat(schema["maximum"]); ok {
		out.Maximum = &v
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
