package config

import (
	"encoding/json"
	"os"

	"github.com/graviox/roundcube-carddav/internal/flagx"
	"github.com/graviox/roundcube-carddav/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr string          `json:"server_endpoint_addr"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	Language           string          `json:"language"`
}

// parseJson overlays cfg with values from the JSON file selected by args.
// Keys missing from the file keep their current values. Read or decode
// errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.Language != "" {
		cfg.Language = jc.Language
	}
}
