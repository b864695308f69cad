package server

import (
	"fmt"
	"sync"
	"time"

	"resumescore/internal/config"
	"resumescore/internal/errors"
)

// SecretSource reads KVv2 secrets. *config.VaultClient implements it.
type SecretSource interface {
	GetSecretV2(path string) (*config.VaultSecret, error)
}

// CertificateData holds PEM certificate data fetched from Vault
type CertificateData struct {
	CertContent string
	KeyContent  string
	CAContent   string
}

// VaultWatcher polls a Vault secret and calls onChange with its content
// each time its version increases.
type VaultWatcher struct {
	mu sync.RWMutex

	source       SecretSource
	secretPath   string
	pollInterval time.Duration
	onChange     func(*CertificateData)
	logger       *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
}

// NewVaultWatcher creates a new VaultWatcher
func NewVaultWatcher(source SecretSource, secretPath string, pollInterval time.Duration, onChange func(*CertificateData), logger *errors.Logger) *VaultWatcher {
	return &VaultWatcher{
		source:       source,
		secretPath:   secretPath,
		pollInterval: pollInterval,
		onChange:     onChange,
		logger:       logger,
	}
}

// Start records the current secret version and begins polling
func (vw *VaultWatcher) Start() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()

	if vw.running {
		return fmt.Errorf("vault watcher is already running")
	}
	if vw.pollInterval <= 0 {
		return fmt.Errorf("vault poll interval must be positive")
	}

	if secret, err := vw.source.GetSecretV2(vw.secretPath); err == nil && secret != nil {
		vw.lastVersion = secret.Version
	}

	vw.stopChan = make(chan struct{})
	vw.running = true
	go vw.pollLoop(vw.stopChan)

	if vw.logger != nil {
		vw.logger.Info("Vault watcher started",
			"secret_path", vw.secretPath,
			"poll_interval", vw.pollInterval,
			"version", vw.lastVersion)
	}
	return nil
}

// Stop stops the Vault watcher
func (vw *VaultWatcher) Stop() {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if !vw.running {
		return
	}
	close(vw.stopChan)
	vw.running = false
	if vw.logger != nil {
		vw.logger.Info("Vault watcher stopped")
	}
}

func (vw *VaultWatcher) pollLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(vw.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			data, err := vw.checkForUpdates()
			if err != nil {
				if vw.logger != nil {
					vw.logger.LogError(err, "Failed to check Vault for updates")
				}
				continue
			}
			if data != nil {
				if vw.logger != nil {
					vw.logger.Info("Vault secret changed, reloading certificates",
						"secret_path", vw.secretPath)
				}
				vw.onChange(data)
			}
		case <-stop:
			return
		}
	}
}

// checkForUpdates returns the certificate data when the secret version is
// newer than the last one seen, and nil otherwise
func (vw *VaultWatcher) checkForUpdates() (*CertificateData, error) {
	secret, err := vw.source.GetSecretV2(vw.secretPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}
	if secret == nil {
		return nil, fmt.Errorf("secret %s not found", vw.secretPath)
	}

	vw.mu.Lock()
	defer vw.mu.Unlock()
	if secret.Version <= vw.lastVersion {
		return nil, nil
	}
	vw.lastVersion = secret.Version

	data := &CertificateData{}
	data.CertContent, _ = secret.Data["cert"].(string)
	data.KeyContent, _ = secret.Data["key"].(string)
	data.CAContent, _ = secret.Data["ca"].(string)
	return data, nil
}

// Status returns the current status of the VaultWatcher for health reporting
func (vw *VaultWatcher) Status() map[string]any {
	vw.mu.RLock()
	defer vw.mu.RUnlock()
	return map[string]any{
		"running":       vw.running,
		"poll_interval": vw.pollInterval.String(),
		"secret_path":   vw.secretPath,
		"last_version":  vw.lastVersion,
	}
}
