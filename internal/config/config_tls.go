package config

import (
	"crypto/tls"
	"fmt"
)

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	t := c.Server.TLS

	switch t.Mode {
	case "disabled":
		return nil
	case "server":
		if err := requireCertAndKey(t, "server mode"); err != nil {
			return err
		}
	case "mutual":
		if err := requireCertAndKey(t, "mutual mode"); err != nil {
			return err
		}
		if t.CAFile == "" && t.CAContent == "" {
			return fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
		}
		if t.CAFile != "" && t.CAContent != "" {
			return fmt.Errorf("cannot specify both caFile and caContent - choose one")
		}
		if _, err := t.ClientAuthType(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", t.Mode)
	}

	if _, err := t.TLSMinVersion(); err != nil {
		return err
	}
	return nil
}

// requireCertAndKey checks that cert and key each come from exactly one source
func requireCertAndKey(t TLSConfig, mode string) error {
	if (t.CertFile == "" && t.CertContent == "") || (t.KeyFile == "" && t.KeyContent == "") {
		return fmt.Errorf("TLS certificate and key are required for %s (provide either files or content)", mode)
	}
	if t.CertFile != "" && t.CertContent != "" {
		return fmt.Errorf("cannot specify both certFile and certContent - choose one")
	}
	if t.KeyFile != "" && t.KeyContent != "" {
		return fmt.Errorf("cannot specify both keyFile and keyContent - choose one")
	}
	return nil
}

// TLSMinVersion maps MinVersion to a crypto/tls constant. Empty means 1.2.
func (t TLSConfig) TLSMinVersion() (uint16, error) {
	switch t.MinVersion {
	case "", "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", t.MinVersion)
	}
}

// ClientAuthType maps ClientAuthPolicy to a crypto/tls constant. Empty
// means require.
func (t TLSConfig) ClientAuthType() (tls.ClientAuthType, error) {
	switch t.ClientAuthPolicy {
	case "", "require":
		return tls.RequireAndVerifyClientCert, nil
	case "request":
		return tls.RequestClientCert, nil
	case "verify":
		return tls.VerifyClientCertIfGiven, nil
	default:
		return tls.NoClientCert, fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", t.ClientAuthPolicy)
	}
}

// FromFiles reports whether certificates are read from disk and can be watched.
func (t TLSConfig) FromFiles() bool {
	return t.CertFile != "" && t.KeyFile != ""
}
