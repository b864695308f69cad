package ai

import (
	"context"
	"net/http"
	"testing"

	"resumescore/internal/config"
	"resumescore/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

func TestClassifyGeminiError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		rateLimited bool
	}{
		{"genai 429", genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}, true},
		{"genai 500", genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}, false},
		{"googleapi 429", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"plain error", assert.AnError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyGeminiError(tt.err)
			assert.Equal(t, tt.rateLimited, IsRateLimited(err))
			assert.True(t, errors.IsType(err, errors.ErrorTypeAugmentation))
			if !tt.rateLimited {
				assert.True(t, errors.HasCode(err, errors.ErrCodeTransportFailed))
			}
		})
	}
}

func TestToGenaiSchema(t *testing.T) {
	s := toGenaiSchema(jobMatchSchema)
	require.NotNil(t, s)
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.ElementsMatch(t, []string{"matchScore", "matchingKeywords", "missingKeywords"}, s.Required)

	score := s.Properties["matchScore"]
	require.NotNil(t, score)
	assert.Equal(t, genai.TypeInteger, score.Type)
	require.NotNil(t, score.Minimum)
	require.NotNil(t, score.Maximum)
	assert.Equal(t, 0.0, *score.Minimum)
	assert.Equal(t, 100.0, *score.Maximum)

	keywords := s.Properties["missingKeywords"]
	require.NotNil(t, keywords)
	assert.Equal(t, genai.TypeArray, keywords.Type)
	require.NotNil(t, keywords.Items)
	assert.Equal(t, genai.TypeString, keywords.Items.Type)

	assert.Nil(t, toGenaiSchema(nil))
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", "Here you go: {\"a\":1} hope it helps", `{"a":1}`},
		{"no object", "no json here", "no json here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.in))
		})
	}
}

func TestNewCompleterSelectsUnavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("provider none", func(t *testing.T) {
		cfg := testConfig()
		cfg.AI.Provider = config.ProviderNone
		c, err := NewCompleter(ctx, cfg, testLogger(), nil)
		require.NoError(t, err)
		assert.Equal(t, "none", c.Name())
		assert.False(t, c.ModelInfo(ctx).Available)
	})

	t.Run("missing key", func(t *testing.T) {
		cfg := testConfig()
		cfg.AI.Provider = config.ProviderOpenAI
		cfg.AI.APIKey = ""
		c, err := NewCompleter(ctx, cfg, testLogger(), nil)
		require.NoError(t, err)
		_, err = c.CompleteChat(ctx, ChatRequest{UserPrompt: "hi"})
		assert.True(t, errors.HasCode(err, errors.ErrCodeAIUnavailable))
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := testConfig()
		cfg.AI.Provider = "mystery"
		cfg.AI.APIKey = "key"
		_, err := NewCompleter(ctx, cfg, testLogger(), nil)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})

	t.Run("configured providers are wrapped", func(t *testing.T) {
		for _, provider := range []string{config.ProviderOpenAI, config.ProviderAnthropic} {
			cfg := testConfig()
			cfg.AI.Provider = provider
			cfg.AI.APIKey = "test-key"
			cfg.AI.CircuitBreaker = breakerConfig()
			c, err := NewCompleter(ctx, cfg, testLogger(), nil)
			require.NoError(t, err)
			assert.IsType(t, &TracingCompleter{}, c)
			assert.Equal(t, provider, c.Name())
			assert.Equal(t, true, BreakerStats(c)["enabled"])
		}
	})
}
