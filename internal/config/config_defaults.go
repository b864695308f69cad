package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default rune limits for text sent to the model
const (
	DefaultResumeRunes   = 12000
	DefaultJobRunes      = 6000
	DefaultQuestionRunes = 2000
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration
	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.baseURL", "")
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.temperature", 0.3)
	v.SetDefault("ai.maxTokens", 1024)

	v.SetDefault("ai.limits.resumeRunes", DefaultResumeRunes)
	v.SetDefault("ai.limits.jobRunes", DefaultJobRunes)
	v.SetDefault("ai.limits.questionRunes", DefaultQuestionRunes)

	v.SetDefault("ai.circuitBreaker.enabled", true)
	v.SetDefault("ai.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.circuitBreaker.failureThreshold", 0.6)

	// Operation-specific overrides
	v.SetDefault("ai.summarize.timeout", 20*time.Second)
	v.SetDefault("ai.summarize.temperature", 0.2) // Low temperature for consistent summaries
	v.SetDefault("ai.rewrite.timeout", 45*time.Second)
	v.SetDefault("ai.rewrite.temperature", 0.5)
	v.SetDefault("ai.chat.timeout", 30*time.Second)
	v.SetDefault("ai.match.timeout", 30*time.Second)
	v.SetDefault("ai.match.temperature", 0.1) // Very low temperature for structured output

	// Engine Configuration
	v.SetDefault("engine.policyFile", "")
	v.SetDefault("engine.augmentationTimeout", 20*time.Second)

	// Extraction Configuration
	v.SetDefault("extraction.maxFileSize", 5*1024*1024) // 5MB
	v.SetDefault("extraction.supportedExtensions", []string{".txt", ".text", ".md", ".markdown", ".pdf", ".html", ".htm"})

	// Store Configuration
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.logLevel", "warn")

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 10*1024*1024) // 10MB
	v.SetDefault("server.healthTimeout", 5*time.Second)

	// TLS Configuration
	v.SetDefault("server.tls.mode", "disabled") // disabled, server, mutual
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.caFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.clientAuthPolicy", "require")
	v.SetDefault("server.tls.watchFiles", true)
	v.SetDefault("server.tls.debounceDelay", time.Second)
	v.SetDefault("server.tls.vaultPollInterval", time.Duration(0))

	// API Authentication
	v.SetDefault("server.apiKeys", []string{})

	// Rate limiting
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", 10*time.Minute)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.aiKey", "")
	v.SetDefault("vault.secrets.tlsCerts", "")
	v.SetDefault("vault.secrets.storeDSN", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumescore")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
