package config

import "time"

// Config holds runtime settings for carddavctl.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - RequestTimeout: upper bound for a single RPC. A sync of every server can
//     take a while, so the default is generous.
//   - Language: value sent as accept-language; selects the message language.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
	Language           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 2 * time.Minute
	c.Language = "en"
}

// LoadConfig constructs a Config from defaults overlaid with the JSON file
// named in args, if any. Flags are applied later by cobra through BindFlags.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	return cfg
}
