package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider: ProviderGemini,
			Timeout:  30 * time.Second,
			Limits:   InputLimits{ResumeRunes: DefaultResumeRunes, JobRunes: DefaultJobRunes, QuestionRunes: DefaultQuestionRunes},
		},
		Engine:     EngineConfig{AugmentationTimeout: 10 * time.Second},
		Extraction: ExtractionConfig{MaxFileSize: 1024},
		Store:      StoreConfig{Driver: "memory"},
		Server:     ServerConfig{Port: "8080", TLS: TLSConfig{Mode: "disabled"}},
		App:        AppConfig{DefaultFormat: "json", SupportedFormats: []string{"json", "text", "markdown"}},
	}
}

func TestLoadConfigFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  logLevel: warn\n"), 0600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.App.LogLevel)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.Equal(t, DefaultResumeRunes, cfg.AI.Limits.ResumeRunes)
	assert.Equal(t, DefaultJobRunes, cfg.AI.Limits.JobRunes)
	assert.Equal(t, DefaultQuestionRunes, cfg.AI.Limits.QuestionRunes)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, int64(5*1024*1024), cfg.Extraction.MaxFileSize)
	assert.Contains(t, cfg.Extraction.SupportedExtensions, ".pdf")
	assert.Equal(t, 20*time.Second, cfg.Operation(OperationSummarize).Timeout)
}

func TestLoadConfigFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
ai:
  provider: anthropic
  temperature: 0.9
  maxTokens: 512
  chat:
    timeout: 5s
    maxTokens: 256
store:
  driver: memory
server:
  port: "9999"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))
	t.Setenv("RESUMESCORE_AI_APIKEY", "sk-test")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.AI.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.AI.Model)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.True(t, cfg.AIEnabled())
	assert.Equal(t, "9999", cfg.Server.Port)

	chat := cfg.Operation(OperationChat)
	assert.Equal(t, 5*time.Second, chat.Timeout)
	assert.Equal(t, 256, chat.MaxTokens)
	assert.InDelta(t, 0.9, chat.Temperature, 1e-6)
}

func TestLoadConfigFileRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai:\n  provider: mystery\n"), 0600))

	_, err := LoadConfigFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid AI provider")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing api key is allowed", func(c *Config) { c.AI.APIKey = "" }, ""},
		{"provider none", func(c *Config) { c.AI.Provider = ProviderNone }, ""},
		{"unknown provider", func(c *Config) { c.AI.Provider = "cohere" }, "invalid AI provider"},
		{"zero timeout", func(c *Config) { c.AI.Timeout = 0 }, "AI timeout must be positive"},
		{"zero limit", func(c *Config) { c.AI.Limits.JobRunes = 0 }, "input limits must be positive"},
		{"zero augmentation timeout", func(c *Config) { c.Engine.AugmentationTimeout = 0 }, "augmentation timeout"},
		{"zero file size", func(c *Config) { c.Extraction.MaxFileSize = 0 }, "maxFileSize"},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = "postgres" }, "store DSN is required"},
		{"postgres with dsn", func(c *Config) { c.Store.Driver = "postgres"; c.Store.DSN = "host=db" }, ""},
		{"unknown store", func(c *Config) { c.Store.Driver = "redis" }, "invalid store driver"},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "server port is required"},
		{"bad format", func(c *Config) { c.App.DefaultFormat = "yaml" }, "invalid default format"},
		{"bad tls", func(c *Config) { c.Server.TLS.Mode = "server" }, "TLS configuration error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestOperationFallsBackToGlobal(t *testing.T) {
	cfg := validConfig()
	cfg.AI.Temperature = 0.4
	cfg.AI.MaxTokens = 800

	temp := float32(0.1)
	timeout := 3 * time.Second
	cfg.AI.Match = OperationAIConfig{Temperature: &temp, Timeout: &timeout, SystemPrompt: "json only"}

	match := cfg.Operation(OperationMatch)
	assert.Equal(t, OperationMatch, match.Name)
	assert.Equal(t, timeout, match.Timeout)
	assert.InDelta(t, 0.1, match.Temperature, 1e-6)
	assert.Equal(t, 800, match.MaxTokens)
	assert.Equal(t, "json only", match.SystemPrompt)

	rewrite := cfg.Operation(OperationRewrite)
	assert.Equal(t, 30*time.Second, rewrite.Timeout)
	assert.InDelta(t, 0.4, rewrite.Temperature, 1e-6)
	assert.Empty(t, rewrite.SystemPrompt)
}

func TestAIEnabled(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.AIEnabled())

	cfg.AI.APIKey = "key"
	assert.True(t, cfg.AIEnabled())

	cfg.AI.Provider = ProviderNone
	assert.False(t, cfg.AIEnabled())
}

func TestApplyFallbacksServerAPIKeys(t *testing.T) {
	t.Setenv("RESUMESCORE_SERVER_APIKEYS", " a , b,,c ")
	cfg := validConfig()
	cfg.applyFallbacks()
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Server.APIKeys)
}

func TestApplyFallbacksProviderKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	cfg := validConfig()
	cfg.AI.Provider = ProviderOpenAI
	cfg.applyFallbacks()
	assert.Equal(t, "sk-openai", cfg.AI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
}
