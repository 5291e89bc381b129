package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	t.Setenv("CARDDAV_CONFIG", "")

	t.Run("overlays present keys", func(t *testing.T) {
		path := writeTempFile(t, `{"server_endpoint_addr":"dav.example:9000","request_timeout":"10s"}`)

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg, []string{"sync", "-c", path})

		assert.Equal(t, "dav.example:9000", cfg.ServerEndpointAddr)
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
		assert.Equal(t, "en", cfg.Language)
	})

	t.Run("env fallback", func(t *testing.T) {
		path := writeTempFile(t, `{"language":"de"}`)
		t.Setenv("CARDDAV_CONFIG", path)

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg, nil)

		assert.Equal(t, "de", cfg.Language)
	})

	t.Run("no file no change", func(t *testing.T) {
		cfg := &Config{ServerEndpointAddr: "keep:1"}
		parseJson(cfg, []string{"server", "list"})
		assert.Equal(t, "keep:1", cfg.ServerEndpointAddr)
	})

	t.Run("malformed panics", func(t *testing.T) {
		path := writeTempFile(t, `{not json`)
		assert.Panics(t, func() { parseJson(&Config{}, []string{"--config", path}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		assert.Panics(t, func() { parseJson(&Config{}, []string{"-c", filepath.Join(t.TempDir(), "nope.json")}) })
	})
}
