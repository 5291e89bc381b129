package config

import (
	"encoding/json"
	"os"

	"github.com/graviox/roundcube-carddav/internal/flagx"
	"github.com/graviox/roundcube-carddav/internal/timex"
)

// JsonConfig mirrors Config for JSON decoding. Durations accept "30s" or
// integer nanoseconds. Absent keys leave the current value untouched.
type JsonConfig struct {
	EndpointAddrGRPC string          `json:"endpoint_addr_grpc"`
	DatabaseDSN      string          `json:"database_dsn"`
	SecretKey        string          `json:"secret_key"`
	CredentialKey    string          `json:"credential_key"`
	SyncWorkers      int             `json:"sync_workers"`
	SyncTimeout      *timex.Duration `json:"sync_timeout"`
	CheckTimeout     *timex.Duration `json:"check_timeout"`
	HTTPTimeout      *timex.Duration `json:"http_timeout"`
	S3RootUser       string          `json:"s3_root_user"`
	S3RootPassword   string          `json:"s3_root_password"`
	S3Bucket         string          `json:"s3_bucket"`
	S3Region         string          `json:"s3_region"`
	S3BaseEndpoint   string          `json:"s3_base_endpoint"`
	LogLevel         string          `json:"log_level"`
}

// parseJson overlays values from the file named by -c/-config (or
// $CARDDAV_CONFIG). Nothing happens when no file is named. An unreadable or
// malformed file panics: the server must not start half-configured.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.CredentialKey, c.CredentialKey)
	if c.SyncWorkers > 0 {
		config.SyncWorkers = c.SyncWorkers
	}
	if c.SyncTimeout != nil {
		config.SyncTimeout = c.SyncTimeout.Duration
	}
	if c.CheckTimeout != nil {
		config.CheckTimeout = c.CheckTimeout.Duration
	}
	if c.HTTPTimeout != nil {
		config.HTTPTimeout = c.HTTPTimeout.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
