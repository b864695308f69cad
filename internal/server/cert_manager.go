package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"resumescore/internal/config"
	"resumescore/internal/errors"
	"resumescore/internal/observability"
)

// CertificateManager serves TLS certificates that can be replaced while
// the server is running, from watched files or from rotated Vault secrets.
type CertificateManager struct {
	mu sync.RWMutex

	cfg        config.TLSConfig
	serverCert *tls.Certificate
	caCertPool *x509.CertPool
	expiry     time.Time

	fileWatcher  *CertWatcher
	vaultWatcher *VaultWatcher
	secrets      SecretSource
	secretPath   string

	metrics *observability.Metrics
	logger  *errors.Logger

	lastReloadTime     time.Time
	reloadCount        int64
	reloadFailureCount int64
	lastReloadError    string
}

// NewCertificateManager creates a manager for cfg. secrets and secretPath
// enable Vault polling when cfg.VaultPollInterval is positive; secrets may
// be nil.
func NewCertificateManager(cfg config.TLSConfig, secrets SecretSource, secretPath string, metrics *observability.Metrics, logger *errors.Logger) *CertificateManager {
	return &CertificateManager{
		cfg:        cfg,
		secrets:    secrets,
		secretPath: secretPath,
		metrics:    metrics,
		logger:     logger,
	}
}

// Start loads the initial certificates and starts the configured watchers
func (cm *CertificateManager) Start() error {
	if err := cm.Reload(); err != nil {
		return fmt.Errorf("failed to load initial certificates: %w", err)
	}

	cm.mu.RLock()
	cfg := cm.cfg
	cm.mu.RUnlock()

	if cfg.WatchFiles && cfg.FromFiles() {
		files := []string{cfg.CertFile, cfg.KeyFile}
		if cfg.Mode == "mutual" && cfg.CAFile != "" {
			files = append(files, cfg.CAFile)
		}
		watcher := NewCertWatcher(files, cfg.DebounceDelay, func() {
			if err := cm.Reload(); err != nil {
				cm.logger.LogError(err, "Failed to reload TLS certificates")
			}
		}, cm.logger)
		if err := watcher.Start(); err != nil {
			return err
		}
		cm.fileWatcher = watcher
	}

	if cm.secrets != nil && cm.secretPath != "" && cfg.VaultPollInterval > 0 {
		watcher := NewVaultWatcher(cm.secrets, cm.secretPath, cfg.VaultPollInterval, func(data *CertificateData) {
			if err := cm.ApplyContent(*data); err != nil {
				cm.logger.LogError(err, "Failed to apply TLS certificates from Vault")
			}
		}, cm.logger)
		if err := watcher.Start(); err != nil {
			return err
		}
		cm.vaultWatcher = watcher
	}

	return nil
}

// Stop stops every running watcher
func (cm *CertificateManager) Stop() error {
	var first error
	if cm.fileWatcher != nil {
		if err := cm.fileWatcher.Stop(); err != nil {
			first = err
		}
	}
	if cm.vaultWatcher != nil {
		cm.vaultWatcher.Stop()
	}
	return first
}

// TLSConfig builds a tls.Config that always presents the current certificate
// and, in mutual mode, verifies clients against the current CA pool.
func (cm *CertificateManager) TLSConfig() (*tls.Config, error) {
	cm.mu.RLock()
	cfg := cm.cfg
	cm.mu.RUnlock()

	minVersion, err := cfg.TLSMinVersion()
	if err != nil {
		return nil, err
	}

	base := &tls.Config{
		MinVersion:     minVersion,
		GetCertificate: cm.GetCertificate,
		ClientAuth:     tls.NoClientCert,
	}

	if cfg.Mode == "mutual" {
		clientAuth, err := cfg.ClientAuthType()
		if err != nil {
			return nil, err
		}
		base.ClientAuth = clientAuth
		base.GetConfigForClient = func(*tls.ClientHelloInfo) (*tls.Config, error) {
			c := base.Clone()
			c.GetConfigForClient = nil
			c.ClientCAs = cm.caPool()
			return c, nil
		}
	}

	return base, nil
}

// GetCertificate returns the current server certificate for TLS handshakes
func (cm *CertificateManager) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCert == nil {
		return nil, fmt.Errorf("no server certificate available")
	}
	return cm.serverCert, nil
}

func (cm *CertificateManager) caPool() *x509.CertPool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.caCertPool
}

// ApplyContent replaces PEM certificate content and reloads. Empty fields
// keep their current value.
func (cm *CertificateManager) ApplyContent(data CertificateData) error {
	cm.mu.Lock()
	if data.CertContent != "" {
		cm.cfg.CertContent = data.CertContent
	}
	if data.KeyContent != "" {
		cm.cfg.KeyContent = data.KeyContent
	}
	if data.CAContent != "" {
		cm.cfg.CAContent = data.CAContent
	}
	cm.mu.Unlock()

	return cm.Reload()
}

// Reload reads the certificates again. On failure the previous
// certificates stay in use.
func (cm *CertificateManager) Reload() error {
	cm.mu.RLock()
	cfg := cm.cfg
	cm.mu.RUnlock()

	cert, expiry, pool, err := loadCertificates(cfg)

	cm.mu.Lock()
	cm.reloadCount++
	cm.lastReloadTime = time.Now()
	if err != nil {
		cm.reloadFailureCount++
		cm.lastReloadError = err.Error()
	} else {
		cm.serverCert = cert
		cm.expiry = expiry
		cm.caCertPool = pool
		cm.lastReloadError = ""
	}
	cm.mu.Unlock()

	cm.metrics.RecordCertReload(context.Background(), err == nil)
	if err != nil {
		return err
	}
	if cm.logger != nil {
		cm.logger.Info("TLS certificates loaded", "expiry", expiry)
	}
	return nil
}

// CheckExpiry returns the time left before the server certificate expires
func (cm *CertificateManager) CheckExpiry() (time.Duration, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.expiry.IsZero() {
		return 0, fmt.Errorf("no certificates loaded")
	}
	return time.Until(cm.expiry), nil
}

// Stats returns reload statistics for health and stats endpoints
func (cm *CertificateManager) Stats() map[string]any {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := map[string]any{
		"expiry":               cm.expiry,
		"reload_count":         cm.reloadCount,
		"reload_failure_count": cm.reloadFailureCount,
		"last_reload_time":     cm.lastReloadTime,
		"file_watcher_running": cm.fileWatcher != nil && cm.fileWatcher.IsRunning(),
	}
	if cm.lastReloadError != "" {
		stats["last_reload_error"] = cm.lastReloadError
	}
	if cm.vaultWatcher != nil {
		stats["vault_watcher"] = cm.vaultWatcher.Status()
	}
	return stats
}

// loadCertificates reads the key pair, its expiry and, in mutual mode, the
// client CA pool. Content takes precedence over files.
func loadCertificates(cfg config.TLSConfig) (*tls.Certificate, time.Time, *x509.CertPool, error) {
	var (
		cert tls.Certificate
		err  error
	)
	switch {
	case cfg.CertContent != "" && cfg.KeyContent != "":
		cert, err = tls.X509KeyPair([]byte(cfg.CertContent), []byte(cfg.KeyContent))
	case cfg.CertFile != "" && cfg.KeyFile != "":
		cert, err = tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	default:
		err = fmt.Errorf("TLS certificate and key are required (provide either files or content)")
	}
	if err != nil {
		return nil, time.Time{}, nil, fmt.Errorf("failed to load server certificate: %w", err)
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, time.Time{}, nil, fmt.Errorf("failed to parse server certificate: %w", err)
	}

	if cfg.Mode != "mutual" {
		return &cert, leaf.NotAfter, nil, nil
	}

	caPEM := []byte(cfg.CAContent)
	if len(caPEM) == 0 {
		caPEM, err = os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, time.Time{}, nil, fmt.Errorf("failed to read CA file: %w", err)
		}
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, time.Time{}, nil, fmt.Errorf("failed to parse CA certificate")
	}

	return &cert, leaf.NotAfter, pool, nil
}
