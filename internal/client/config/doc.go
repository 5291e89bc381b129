// Package config loads runtime configuration for carddavctl.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file named by -c/--config or $CARDDAV_CONFIG.
//  3. Persistent command-line flags registered by BindFlags.
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "30s",
//	  "language": "de"
//	}
//
// request_timeout accepts a duration string or integer nanoseconds.
package config
