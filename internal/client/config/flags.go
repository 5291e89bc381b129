package config

import "github.com/spf13/pflag"

// BindFlags registers the persistent flags that override cfg. The current
// field values become the flag defaults, so call it after LoadConfig.
//
//	-a, --endpoint string     address:port of the backend gRPC endpoint
//	-t, --timeout duration    per-request timeout
//	-l, --lang string         preferred message language
//	-c, --config string       JSON config file (read by LoadConfig)
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.ServerEndpointAddr, "endpoint", "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.DurationVarP(&cfg.RequestTimeout, "timeout", "t", cfg.RequestTimeout, "per-request timeout")
	fs.StringVarP(&cfg.Language, "lang", "l", cfg.Language, "preferred message language")
	fs.StringP("config", "c", "", "path to JSON config file")
}
