package cli

import (
	"context"
	"fmt"
	"time"

	"resumescore/internal/config"
	"resumescore/internal/observability"
	"resumescore/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for resume analysis",
	Long: `Start an HTTP server that provides REST API endpoints for resume analysis.

Available endpoints:
- POST /analyze: Analyze resume text
- POST /analyze/upload: Analyze an uploaded resume file (multipart field "file")
- GET /analyses/{id}: Fetch a saved analysis
- POST /match: Match a resume against a job description
- POST /rewrite: Rewrite a resume section
- POST /chat: Ask a question about a resume
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
	RunE: runServe,
}

var serveFlags struct {
	port     string
	host     string
	tlsMode  string
	certFile string
	keyFile  string
	caFile   string
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.port, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.host, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.tlsMode, "tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.certFile, "cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.keyFile, "key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.caFile, "ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")
}

// applyServeOverrides copies non-empty flag values over the server config
func applyServeOverrides(cfg *config.ServerConfig) {
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&cfg.Port, serveFlags.port)
	override(&cfg.Host, serveFlags.host)
	override(&cfg.TLS.Mode, serveFlags.tlsMode)
	override(&cfg.TLS.CertFile, serveFlags.certFile)
	override(&cfg.TLS.KeyFile, serveFlags.keyFile)
	override(&cfg.TLS.CAFile, serveFlags.caFile)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	applyServeOverrides(&cfg.Server)

	// Validate TLS configuration after applying overrides
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	om, err := observability.NewManager(cfg.Observability, Version)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := om.Shutdown(ctx); err != nil {
			logger.LogError(err, "Failed to shut down observability")
		}
	}()

	a, err := newApp(cmd.Context(), cfg, logger, om.Metrics())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	deps := server.Dependencies{
		Analyzer:      a.analyzer,
		Augmenter:     a.augmenter,
		Store:         a.store,
		Observability: om,
	}

	vault, err := config.NewVaultClient(cfg.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to vault: %w", err)
	}
	if vault != nil {
		deps.Secrets = vault
	}

	return server.NewServer(cfg, deps, Version, logger).Start(cmd.Context())
}
