package server

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"resumescore/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSecretSource is a SecretSource whose secret can be swapped
type mockSecretSource struct {
	mu      sync.Mutex
	secrets map[string]*config.VaultSecret
	err     error
}

func (m *mockSecretSource) GetSecretV2(path string) (*config.VaultSecret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.secrets[path], nil
}

func (m *mockSecretSource) set(path string, secret *config.VaultSecret) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[path] = secret
}

func TestVaultWatcherCheckForUpdates(t *testing.T) {
	source := &mockSecretSource{secrets: map[string]*config.VaultSecret{
		"tls/server": {Data: map[string]any{"cert": "c1", "key": "k1"}, Version: 1},
	}}
	vw := NewVaultWatcher(source, "tls/server", time.Minute, func(*CertificateData) {}, nil)

	data, err := vw.checkForUpdates()
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, "c1", data.CertContent)
	assert.Equal(t, "k1", data.KeyContent)
	assert.Empty(t, data.CAContent)

	data, err = vw.checkForUpdates()
	require.NoError(t, err)
	assert.Nil(t, data, "same version must not trigger a reload")

	source.set("tls/server", &config.VaultSecret{Data: map[string]any{"cert": "c2", "key": "k2", "ca": "ca2"}, Version: 2})
	data, err = vw.checkForUpdates()
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, "ca2", data.CAContent)
	assert.Equal(t, int64(2), vw.Status()["last_version"])
}

func TestVaultWatcherErrors(t *testing.T) {
	source := &mockSecretSource{secrets: map[string]*config.VaultSecret{}}
	vw := NewVaultWatcher(source, "tls/missing", time.Minute, func(*CertificateData) {}, nil)

	_, err := vw.checkForUpdates()
	assert.Error(t, err)

	source.err = fmt.Errorf("permission denied")
	_, err = vw.checkForUpdates()
	assert.ErrorContains(t, err, "permission denied")

	assert.Error(t, NewVaultWatcher(source, "x", 0, nil, nil).Start())
}

func TestVaultWatcherPollsAndNotifies(t *testing.T) {
	source := &mockSecretSource{secrets: map[string]*config.VaultSecret{
		"tls/server": {Data: map[string]any{"cert": "c1"}, Version: 3},
	}}
	got := make(chan *CertificateData, 1)
	vw := NewVaultWatcher(source, "tls/server", 10*time.Millisecond, func(d *CertificateData) { got <- d }, nil)
	require.NoError(t, vw.Start())
	t.Cleanup(vw.Stop)

	// The version seen at start does not trigger a reload
	select {
	case <-got:
		t.Fatal("unexpected reload for the initial version")
	case <-time.After(50 * time.Millisecond):
	}

	source.set("tls/server", &config.VaultSecret{Data: map[string]any{"cert": "c4"}, Version: 4})
	select {
	case d := <-got:
		assert.Equal(t, "c4", d.CertContent)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	assert.Equal(t, true, vw.Status()["running"])
}
