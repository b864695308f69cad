package ai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// providerBackend serves a canned reply and records the last request body
type providerBackend struct {
	mu       sync.Mutex
	lastPath string
	lastBody string
	status   int
	reply    string
}

func (b *providerBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.lastPath = r.URL.Path
	b.lastBody = string(body)
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.status)
	_, _ = io.WriteString(w, b.reply)
}

func newProviderBackend(t *testing.T, status int, reply string) (*providerBackend, string) {
	t.Helper()
	b := &providerBackend{status: status, reply: reply}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return b, srv.URL + "/v1/"
}

const openAIReply = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-test",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "  Strong Go background.  "}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
}`

const anthropicReply = `{
	"id": "msg_1",
	"type": "message",
	"role": "assistant",
	"model": "claude-test",
	"content": [{"type": "text", "text": "{\"score\": 70}"}],
	"stop_reason": "end_turn",
	"usage": {"input_tokens": 20, "output_tokens": 6}
}`

const rateLimitedReply = `{"error": {"type": "rate_limit_error", "message": "slow down"}}`

func TestOpenAICompleter(t *testing.T) {
	backend, baseURL := newProviderBackend(t, http.StatusOK, openAIReply)
	c := NewOpenAICompleter("test-key", baseURL, "gpt-test", testLogger())

	resp, err := c.CompleteChat(context.Background(), ChatRequest{
		SystemPrompt: "You review resumes.",
		UserPrompt:   "Summarize this resume.",
		MaxTokens:    200,
		Temperature:  0.2,
		JSON:         true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Strong Go background.", resp.Text)
	assert.Equal(t, "gpt-test", resp.Model)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, int64(12), resp.Usage.InputTokens)
	assert.Equal(t, int64(16), resp.Usage.TotalTokens)

	assert.True(t, strings.HasSuffix(backend.lastPath, "/chat/completions"), backend.lastPath)
	assert.Contains(t, backend.lastBody, "You review resumes.")
	assert.Contains(t, backend.lastBody, "json_object")
}

func TestAnthropicCompleter(t *testing.T) {
	backend, baseURL := newProviderBackend(t, http.StatusOK, anthropicReply)
	c := NewAnthropicCompleter("test-key", strings.TrimSuffix(baseURL, "v1/"), "claude-test", testLogger())

	resp, err := c.CompleteChat(context.Background(), ChatRequest{
		SystemPrompt: "You match resumes.",
		UserPrompt:   "Match this.",
		JSON:         true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"score": 70}`, resp.Text)
	assert.Equal(t, int64(26), resp.Usage.TotalTokens)

	assert.True(t, strings.HasSuffix(backend.lastPath, "/messages"), backend.lastPath)
	assert.Contains(t, backend.lastBody, anthropicJSONInstruction)
	assert.Contains(t, backend.lastBody, "max_tokens")
}

func TestProviderErrorsAreClassified(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		newClient   func(baseURL string) ChatCompleter
		rateLimited bool
	}{
		{"openai 429", http.StatusTooManyRequests, func(u string) ChatCompleter {
			return NewOpenAICompleter("k", u, "gpt-test", testLogger())
		}, true},
		{"openai 500", http.StatusInternalServerError, func(u string) ChatCompleter {
			return NewOpenAICompleter("k", u, "gpt-test", testLogger())
		}, false},
		{"anthropic 429", http.StatusTooManyRequests, func(u string) ChatCompleter {
			return NewAnthropicCompleter("k", strings.TrimSuffix(u, "v1/"), "claude-test", testLogger())
		}, true},
		{"anthropic 500", http.StatusInternalServerError, func(u string) ChatCompleter {
			return NewAnthropicCompleter("k", strings.TrimSuffix(u, "v1/"), "claude-test", testLogger())
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, baseURL := newProviderBackend(t, tt.status, rateLimitedReply)
			_, err := tt.newClient(baseURL).CompleteChat(context.Background(), ChatRequest{UserPrompt: "hi"})
			require.Error(t, err)
			assert.Equal(t, tt.rateLimited, IsRateLimited(err))
		})
	}
}

func TestModelInfoReportsUnavailableBackend(t *testing.T) {
	_, baseURL := newProviderBackend(t, http.StatusNotFound, `{"error": {"message": "no such model"}}`)
	info := NewOpenAICompleter("k", baseURL, "gpt-missing", testLogger()).ModelInfo(context.Background())
	assert.False(t, info.Available)
	assert.Equal(t, "openai", info.Provider)
	assert.NotEmpty(t, info.Error)
}
