package server

import (
	"time"

	"resumescore/internal/ai"
	"resumescore/internal/config"
	"resumescore/internal/engine"
	"resumescore/internal/errors"
	"resumescore/internal/observability"
	"resumescore/internal/store"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Dependencies are the services behind the HTTP API
type Dependencies struct {
	Analyzer  *engine.Analyzer
	Augmenter *ai.Augmenter
	Store     store.Store

	// Observability may be nil
	Observability *observability.Manager

	// Secrets is used to poll rotated TLS material; may be nil
	Secrets SecretSource
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Certificate management
	CertificateManager *CertificateManager

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	HealthTimeout time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	analyzer  *engine.Analyzer
	augmenter *ai.Augmenter
	store     store.Store
	om        *observability.Manager
	metrics   *observability.Metrics
	secrets   SecretSource

	// Logger
	Logger *errors.Logger
}

// NewServer creates a new Server from the application configuration
func NewServer(appCfg *config.Config, deps Dependencies, version string, logger *errors.Logger) *Server {
	cfg := appCfg.Server

	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	metrics := deps.Observability.Metrics()

	var rateLimiter *RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	healthTimeout := cfg.HealthTimeout
	if healthTimeout <= 0 {
		healthTimeout = 5 * time.Second
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLS,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		HealthTimeout:  healthTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      &cfg.RateLimit,
		RateLimiter:    rateLimiter,
		analyzer:       deps.Analyzer,
		augmenter:      deps.Augmenter,
		store:          deps.Store,
		om:             deps.Observability,
		metrics:        metrics,
		secrets:        deps.Secrets,
		Logger:         logger,
	}
}
