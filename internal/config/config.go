package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (RESUMESCORE_AI_APIKEY, etc.)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Engine        EngineConfig        `mapstructure:"engine"`
	Extraction    ExtractionConfig    `mapstructure:"extraction"`
	Store         StoreConfig         `mapstructure:"store"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// Supported AI providers
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// AI operation names, used as keys for operation-specific settings
const (
	OperationSummarize = "summarize"
	OperationRewrite   = "rewrite"
	OperationChat      = "chat"
	OperationMatch     = "match"
)

// AIConfig holds AI service configuration. A single completer is shared by
// all operations; operations may override timeout, sampling and prompt.
type AIConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"apiKey"`
	BaseURL     string        `mapstructure:"baseURL"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"maxTokens"`

	Limits         InputLimits          `mapstructure:"limits"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`

	Summarize OperationAIConfig `mapstructure:"summarize"`
	Rewrite   OperationAIConfig `mapstructure:"rewrite"`
	Chat      OperationAIConfig `mapstructure:"chat"`
	Match     OperationAIConfig `mapstructure:"match"`
}

// InputLimits caps the text sent to the model, in runes
type InputLimits struct {
	ResumeRunes   int `mapstructure:"resumeRunes"`
	JobRunes      int `mapstructure:"jobRunes"`
	QuestionRunes int `mapstructure:"questionRunes"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// OperationAIConfig holds AI configuration for specific operations. Nil
// fields fall back to the global AI settings.
type OperationAIConfig struct {
	Timeout          *time.Duration `mapstructure:"timeout"`
	Temperature      *float32       `mapstructure:"temperature"`
	MaxTokens        *int           `mapstructure:"maxTokens"`
	SystemPrompt     string         `mapstructure:"systemPrompt"`
	SystemPromptFile string         `mapstructure:"systemPromptFile"`
}

// OperationSettings is an operation's configuration with every fallback applied
type OperationSettings struct {
	Name         string
	Timeout      time.Duration
	Temperature  float32
	MaxTokens    int
	SystemPrompt string
}

// EngineConfig holds deterministic engine configuration
type EngineConfig struct {
	PolicyFile          string        `mapstructure:"policyFile"` // empty selects the embedded policy
	AugmentationTimeout time.Duration `mapstructure:"augmentationTimeout"`
}

// ExtractionConfig holds document extraction configuration
type ExtractionConfig struct {
	MaxFileSize         int64    `mapstructure:"maxFileSize"`
	SupportedExtensions []string `mapstructure:"supportedExtensions"`
}

// StoreConfig selects and configures the analysis store
type StoreConfig struct {
	Driver   string `mapstructure:"driver"` // memory or postgres
	DSN      string `mapstructure:"dsn"`
	LogLevel string `mapstructure:"logLevel"` // gorm logger level: silent, error, warn, info
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	MaxRequestSize int64         `mapstructure:"maxRequestSize"`
	HealthTimeout  time.Duration `mapstructure:"healthTimeout"`

	// TLS Configuration
	TLS TLSConfig `mapstructure:"tls"`

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"` // Valid API keys for authentication

	// Rate Limiting Configuration
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds TLS/mTLS configuration
type TLSConfig struct {
	Mode     string `mapstructure:"mode"`     // TLS mode: "disabled", "server", "mutual"
	CertFile string `mapstructure:"certFile"` // Server certificate file (PEM)
	KeyFile  string `mapstructure:"keyFile"`  // Server private key file (PEM)
	CAFile   string `mapstructure:"caFile"`   // CA certificate file for client cert verification (PEM, required for mutual mode)

	// Certificate content (used when loaded from Vault instead of files)
	CertContent string `mapstructure:"certContent"`
	KeyContent  string `mapstructure:"keyContent"`
	CAContent   string `mapstructure:"caContent"`

	MinVersion       string `mapstructure:"minVersion"`       // "1.2" or "1.3"
	ClientAuthPolicy string `mapstructure:"clientAuthPolicy"` // mutual mode: "require", "request", "verify"

	// Reload certificate files when they change on disk
	WatchFiles    bool          `mapstructure:"watchFiles"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`

	// Poll vault.secrets.tlsCerts for new versions; zero disables polling
	VaultPollInterval time.Duration `mapstructure:"vaultPollInterval"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin"`
	BurstCapacity  int           `mapstructure:"burstCapacity"`
	ByIP           bool          `mapstructure:"byIP"`
	ByAPIKey       bool          `mapstructure:"byAPIKey"`
	Window         time.Duration `mapstructure:"window"` // idle limiters are evicted after this
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool             `mapstructure:"enabled"`
	ServiceName     string           `mapstructure:"serviceName"`
	ServiceVersion  string           `mapstructure:"serviceVersion"`
	ServiceInstance string           `mapstructure:"serviceInstance"`
	ConsoleOutput   bool             `mapstructure:"consoleOutput"`
	Tracing         TracingConfig    `mapstructure:"tracing"`
	Metrics         MetricsConfig    `mapstructure:"metrics"`
	Prometheus      PrometheusConfig `mapstructure:"prometheus"`
	OTLP            OTLPConfig       `mapstructure:"otlp"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadConfig loads configuration from environment variables and a config
// file found on the default search path.
func LoadConfig() (*Config, error) {
	return LoadConfigFile("")
}

// LoadConfigFile loads configuration, reading path when it is not empty
// instead of searching the default locations.
func LoadConfigFile(path string) (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RESUMESCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	log.Println("[CONFIG] Configured environment variable handling with prefix 'RESUMESCORE'")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/resumescore/")
		v.AddConfigPath("$HOME/.resumescore")
		v.AddConfigPath(".")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFileUsed)

	if err := config.loadPromptsFromFiles(); err != nil {
		return nil, fmt.Errorf("failed to load custom prompts from files: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid. A missing AI API key is
// not an error; the service then runs without augmentation.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderNone:
	default:
		return fmt.Errorf("invalid AI provider: %s (must be 'gemini', 'openai', 'anthropic' or 'none')", c.AI.Provider)
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}

	if c.AI.Limits.ResumeRunes <= 0 || c.AI.Limits.JobRunes <= 0 || c.AI.Limits.QuestionRunes <= 0 {
		return fmt.Errorf("AI input limits must be positive")
	}

	if c.Engine.AugmentationTimeout <= 0 {
		return fmt.Errorf("engine augmentation timeout must be positive")
	}

	if c.Extraction.MaxFileSize <= 0 {
		return fmt.Errorf("extraction maxFileSize must be positive")
	}

	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be 'memory' or 'postgres')", c.Store.Driver)
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}

// AIEnabled reports whether a model provider is configured with a key.
func (c *Config) AIEnabled() bool {
	return c.AI.Provider != ProviderNone && c.AI.APIKey != ""
}

// Operation returns the resolved settings for one AI operation.
func (c *Config) Operation(name string) OperationSettings {
	var op OperationAIConfig
	switch name {
	case OperationSummarize:
		op = c.AI.Summarize
	case OperationRewrite:
		op = c.AI.Rewrite
	case OperationChat:
		op = c.AI.Chat
	case OperationMatch:
		op = c.AI.Match
	}

	s := OperationSettings{
		Name:         name,
		Timeout:      c.AI.Timeout,
		Temperature:  c.AI.Temperature,
		MaxTokens:    c.AI.MaxTokens,
		SystemPrompt: op.SystemPrompt,
	}
	if op.Timeout != nil {
		s.Timeout = *op.Timeout
	}
	if op.Temperature != nil {
		s.Temperature = *op.Temperature
	}
	if op.MaxTokens != nil {
		s.MaxTokens = *op.MaxTokens
	}
	return s
}

// operations returns pointers to every operation block, keyed by name
func (c *Config) operations() map[string]*OperationAIConfig {
	return map[string]*OperationAIConfig{
		OperationSummarize: &c.AI.Summarize,
		OperationRewrite:   &c.AI.Rewrite,
		OperationChat:      &c.AI.Chat,
		OperationMatch:     &c.AI.Match,
	}
}

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	// Parse API keys from environment variable if not set in config
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv("RESUMESCORE_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = splitAndTrim(apiKeysEnv)
		}
	}

	// Provider-native key variables are honored when no key is configured
	if c.AI.APIKey == "" {
		for _, env := range providerKeyEnv[c.AI.Provider] {
			if key := os.Getenv(env); key != "" {
				c.AI.APIKey = key
				break
			}
		}
	}

	if c.AI.Model == "" {
		c.AI.Model = defaultModels[c.AI.Provider]
	}

	if c.Server.TLS.Mode == "mutual" && c.Server.TLS.ClientAuthPolicy == "" {
		c.Server.TLS.ClientAuthPolicy = "require"
	}

	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}

	if c.Observability.ServiceInstance == "" {
		if hostname, err := os.Hostname(); err == nil {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-%s", c.Observability.ServiceName, hostname)
		} else {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-1", c.Observability.ServiceName)
		}
	}

	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

var providerKeyEnv = map[string][]string{
	ProviderGemini:    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	ProviderOpenAI:    {"OPENAI_API_KEY"},
	ProviderAnthropic: {"ANTHROPIC_API_KEY"},
}

var defaultModels = map[string]string{
	ProviderGemini:    "gemini-2.0-flash",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"RESUMESCORE_AI_APIKEY",
		"RESUMESCORE_AI_PROVIDER",
		"RESUMESCORE_AI_MODEL",
		"RESUMESCORE_STORE_DRIVER",
		"RESUMESCORE_SERVER_PORT",
		"RESUMESCORE_SERVER_HOST",
		"RESUMESCORE_APP_LOGLEVEL",
		"RESUMESCORE_VAULT_ENABLED",
		"GEMINI_API_KEY",
		"OPENAI_API_KEY",
		"ANTHROPIC_API_KEY",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			if strings.Contains(strings.ToLower(envVar), "key") {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] AI Provider: %s", c.AI.Provider)
	log.Printf("[CONFIG] AI Model: %s", c.AI.Model)
	if c.AI.APIKey != "" {
		log.Println("[CONFIG] AI API Key: ***CONFIGURED***")
	} else {
		log.Println("[CONFIG] AI API Key: ***NOT SET*** (augmentation disabled)")
	}
	log.Printf("[CONFIG] Scoring policy: %s", valueOr(c.Engine.PolicyFile, "embedded"))
	log.Printf("[CONFIG] Store driver: %s", c.Store.Driver)
	log.Printf("[CONFIG] Server: %s:%s (TLS %s)", c.Server.Host, c.Server.Port, c.Server.TLS.Mode)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)
	log.Println("[CONFIG] =====================================")
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
