package ssh

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewConfig("dev1", "root")
	assert.Equal(t, "dev1", cfg.Host)
	assert.Equal(t, "root", cfg.User)
	assert.Equal(t, 22, cfg.Port)
	assert.True(t, cfg.UseAgent)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestWithDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{Host: "dev1", User: "root"}.WithDefaults()
	assert.Equal(t, 22, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.Timeout)

	// Explicit values survive.
	cfg = Config{Port: 2222, Timeout: time.Minute}.WithDefaults()
	assert.Equal(t, 2222, cfg.Port)
	assert.Equal(t, time.Minute, cfg.Timeout)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, NewConfig("dev1", "root").Validate())

	err := NewConfig("", "root").Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host")

	err = NewConfig("dev1", "").Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user")
}

func TestAddr(t *testing.T) {
	t.Parallel()

	cfg := NewConfig("dev1", "root")
	assert.Equal(t, "dev1:22", cfg.Addr())

	cfg.Port = 2222
	assert.Equal(t, "dev1:2222", cfg.Addr())
}

func TestToClientConfigWithPassword(t *testing.T) {
	t.Parallel()

	cfg := NewConfig("dev1", "root")
	cfg.UseAgent = false
	cfg.Password = "secret"

	clientCfg, err := cfg.ToClientConfig()
	require.NoError(t, err)
	assert.Equal(t, "root", clientCfg.User)
	assert.Equal(t, cfg.Timeout, clientCfg.Timeout)
	assert.NotEmpty(t, clientCfg.Auth)
}

func TestToClientConfigMissingKeyFile(t *testing.T) {
	t.Parallel()

	cfg := NewConfig("dev1", "root")
	cfg.PrivateKeyPath = "/nonexistent/id_ed25519"

	_, err := cfg.ToClientConfig()
	require.Error(t, err)
}
