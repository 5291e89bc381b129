package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, 2*time.Minute, c.RequestTimeout)
	assert.Equal(t, "en", c.Language)
}

func TestLoadConfig_NoFileUsesDefaults(t *testing.T) {
	t.Setenv("CARDDAV_CONFIG", "")
	cfg := LoadConfig([]string{"server", "list"})

	require.NotNil(t, cfg)
	assert.Equal(t, "127.0.0.1:50051", cfg.ServerEndpointAddr)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout)
}
