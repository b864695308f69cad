package ai

import (
	"context"
	"strings"
	"testing"
	"time"

	"resumescore/internal/config"
	"resumescore/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exact limit", "hello", 5, "hello"},
		{"ascii cut", "hello world", 5, "hello"},
		{"multibyte cut", "héllo wörld", 7, "héllo w"},
		{"cjk", "日本語テキスト", 3, "日本語"},
		{"zero disables", "hello", 0, "hello"},
		{"empty", "", 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.n))
		})
	}
}

func TestFallbackSummaryBands(t *testing.T) {
	high := FallbackSummary(80)
	mid := FallbackSummary(79.99)
	low := FallbackSummary(59.99)

	assert.Equal(t, high, FallbackSummary(100))
	assert.Equal(t, mid, FallbackSummary(60))
	assert.Equal(t, low, FallbackSummary(0))
	assert.NotEqual(t, high, mid)
	assert.NotEqual(t, mid, low)

	for _, s := range []Summary{high, mid, low} {
		assert.NotEmpty(t, s.Strengths)
		assert.NotEmpty(t, s.Weaknesses)
	}
}

func TestAugmenterFallbacksWithFailingCompleter(t *testing.T) {
	failing := &fakeCompleter{err: transportError("fake", assert.AnError)}
	aug := NewAugmenter(failing, testConfig(), testLogger(), nil)
	ctx := context.Background()

	t.Run("summarize", func(t *testing.T) {
		got, err := aug.Summarize(ctx, "resume text", 72.5, "")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeAugmentation))
		assert.Equal(t, FallbackSummary(72.5), got)
	})

	t.Run("rewrite", func(t *testing.T) {
		in := "Responsible for servers."
		got, err := aug.Rewrite(ctx, in, "experience")
		require.Error(t, err)
		assert.Equal(t, in, got)
	})

	t.Run("chat", func(t *testing.T) {
		got, err := aug.Chat(ctx, "What are my strengths?", "resume text")
		require.Error(t, err)
		assert.Equal(t, ChatUnavailableMessage, got)
	})

	t.Run("match", func(t *testing.T) {
		got, err := aug.MatchJob(ctx, "resume text", "Go developer")
		require.Error(t, err)
		assert.Equal(t, 0, got.MatchScore)
		assert.Empty(t, got.MatchingKeywords)
		assert.Empty(t, got.MissingKeywords)
		assert.NotNil(t, got.MatchingKeywords)
		assert.False(t, got.Success)
	})
}

func TestAugmenterUnavailable(t *testing.T) {
	aug := NewAugmenter(Unavailable{}, testConfig(), testLogger(), nil)

	got, err := aug.Summarize(context.Background(), "text", 91, "Engineer")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAIUnavailable))
	assert.Equal(t, FallbackSummary(91), got)
}

func TestSummarizeSuccess(t *testing.T) {
	fake := &fakeCompleter{reply: "```json\n{\"strengths\": \"Clear experience.\", \"weaknesses\": \"No metrics.\"}\n```"}
	aug := NewAugmenter(fake, testConfig(), testLogger(), nil)

	got, err := aug.Summarize(context.Background(), strings.Repeat("a", 500), 65, "Data Engineer")
	require.NoError(t, err)
	assert.Equal(t, "Clear experience.", got.Strengths)
	assert.Equal(t, "No metrics.", got.Weaknesses)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, config.OperationSummarize, req.Operation)
	assert.True(t, req.JSON)
	assert.NotNil(t, req.Schema)
	assert.Equal(t, DefaultSystemPrompts.Summarize, req.SystemPrompt)
	assert.Contains(t, req.UserPrompt, "Data Engineer")
	assert.Contains(t, req.UserPrompt, strings.Repeat("a", 200))
	assert.NotContains(t, req.UserPrompt, strings.Repeat("a", 201))
	assert.True(t, fake.hadDeadline[0])
}

func TestSummarizeInvalidResponseFallsBack(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"not json", "The resume looks good."},
		{"missing field", `{"strengths": "ok"}`},
		{"empty field", `{"strengths": "ok", "weaknesses": ""}`},
		{"wrong type", `{"strengths": 1, "weaknesses": "x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aug := NewAugmenter(&fakeCompleter{reply: tt.reply}, testConfig(), testLogger(), nil)
			got, err := aug.Summarize(context.Background(), "text", 40, "")
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidAIResponse))
			assert.Equal(t, FallbackSummary(40), got)
		})
	}
}

func TestMatchJob(t *testing.T) {
	t.Run("valid response", func(t *testing.T) {
		fake := &fakeCompleter{reply: `{"matchScore": 78, "matchingKeywords": ["Go", "Docker"], "missingKeywords": ["Kubernetes"]}`}
		aug := NewAugmenter(fake, testConfig(), testLogger(), nil)

		got, err := aug.MatchJob(context.Background(), "Go and Docker", "Go, Docker, Kubernetes")
		require.NoError(t, err)
		assert.Equal(t, 78, got.MatchScore)
		assert.Equal(t, []string{"Go", "Docker"}, got.MatchingKeywords)
		assert.Equal(t, []string{"Kubernetes"}, got.MissingKeywords)
		assert.True(t, got.Success)
		assert.Equal(t, config.OperationMatch, fake.requests[0].Operation)
	})

	t.Run("fractional score is rounded", func(t *testing.T) {
		tests := []struct {
			reply string
			want  int
		}{
			{`{"matchScore": 72.5, "matchingKeywords": ["Go"], "missingKeywords": []}`, 73},
			{`{"matchScore": 64.2, "matchingKeywords": [], "missingKeywords": ["Rust"]}`, 64},
			{`{"matchScore": 99.9, "matchingKeywords": [], "missingKeywords": []}`, 100},
		}
		for _, tt := range tests {
			aug := NewAugmenter(&fakeCompleter{reply: tt.reply}, testConfig(), testLogger(), nil)
			got, err := aug.MatchJob(context.Background(), "resume", "job")
			require.NoError(t, err)
			assert.True(t, got.Success)
			assert.Equal(t, tt.want, got.MatchScore)
		}
	})

	t.Run("score out of range", func(t *testing.T) {
		fake := &fakeCompleter{reply: `{"matchScore": 140, "matchingKeywords": [], "missingKeywords": []}`}
		aug := NewAugmenter(fake, testConfig(), testLogger(), nil)

		got, err := aug.MatchJob(context.Background(), "resume", "job")
		require.Error(t, err)
		assert.False(t, got.Success)
		assert.Equal(t, 0, got.MatchScore)
	})

	t.Run("empty job description never calls the model", func(t *testing.T) {
		fake := &fakeCompleter{reply: "{}"}
		aug := NewAugmenter(fake, testConfig(), testLogger(), nil)

		got, err := aug.MatchJob(context.Background(), "resume", "   ")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
		assert.True(t, errors.HasCode(err, errors.ErrCodeEmptyJobDescription))
		assert.False(t, got.Success)
		assert.Empty(t, fake.requests)
	})

	t.Run("job description truncated", func(t *testing.T) {
		fake := &fakeCompleter{err: transportError("fake", assert.AnError)}
		aug := NewAugmenter(fake, testConfig(), testLogger(), nil)

		_, _ = aug.MatchJob(context.Background(), "resume", strings.Repeat("j", 150))
		require.Len(t, fake.requests, 1)
		assert.Contains(t, fake.requests[0].UserPrompt, strings.Repeat("j", 100))
		assert.NotContains(t, fake.requests[0].UserPrompt, strings.Repeat("j", 101))
	})
}

func TestRewriteAndChatSuccess(t *testing.T) {
	fake := &fakeCompleter{reply: "  Led migration of 40 services to Kubernetes.  "}
	aug := NewAugmenter(fake, testConfig(), testLogger(), nil)
	ctx := context.Background()

	rewritten, err := aug.Rewrite(ctx, "Worked on Kubernetes migration.", "experience")
	require.NoError(t, err)
	assert.Equal(t, "Led migration of 40 services to Kubernetes.", rewritten)
	assert.Contains(t, fake.requests[0].UserPrompt, `"experience"`)
	assert.False(t, fake.requests[0].JSON)

	answer, err := aug.Chat(ctx, "What did I migrate?", "Worked on Kubernetes migration.")
	require.NoError(t, err)
	assert.Equal(t, "Led migration of 40 services to Kubernetes.", answer)
	assert.Equal(t, config.OperationChat, fake.requests[1].Operation)
}

func TestChatEmptyQuestion(t *testing.T) {
	fake := &fakeCompleter{reply: "answer"}
	aug := NewAugmenter(fake, testConfig(), testLogger(), nil)

	_, err := aug.Chat(context.Background(), "  ", "resume")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeEmptyQuestion))
	assert.Empty(t, fake.requests)
}

func TestOperationOverrides(t *testing.T) {
	cfg := testConfig()
	temp := float32(0.9)
	maxTokens := 64
	cfg.AI.Rewrite = config.OperationAIConfig{
		Temperature:  &temp,
		MaxTokens:    &maxTokens,
		SystemPrompt: "custom rewrite prompt",
	}
	fake := &fakeCompleter{reply: "done"}
	aug := NewAugmenter(fake, cfg, testLogger(), nil)

	_, err := aug.Rewrite(context.Background(), "text", "summary")
	require.NoError(t, err)
	req := fake.requests[0]
	assert.Equal(t, float32(0.9), req.Temperature)
	assert.Equal(t, 64, req.MaxTokens)
	assert.Equal(t, "custom rewrite prompt", req.SystemPrompt)
}

func TestAugmenterDeadline(t *testing.T) {
	cfg := testConfig()
	short := 20 * time.Millisecond
	cfg.AI.Chat.Timeout = &short
	aug := NewAugmenter(blockingCompleter{}, cfg, testLogger(), nil)

	start := time.Now()
	got, err := aug.Chat(context.Background(), "question?", "resume")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAITimeout))
	assert.Equal(t, ChatUnavailableMessage, got)
}
