package config

import (
	"flag"
	"time"

	"github.com/graviox/roundcube-carddav/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-k string   credential encryption passphrase
//	-w int      sync worker pool width
//	-t int      per-server sync timeout, seconds
//	-x int      connectivity check timeout, seconds
//	-r int      CardDAV request timeout, seconds
//	-u string   S3 user
//	-p string   S3 password
//	-b string   S3 bucket (empty disables the vCard archive)
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g. "http://127.0.0.1:9000/")
//	-l string   log level
//
// Only recognized flags are parsed (flagx.FilterArgs), so -c/-config and
// unrelated arguments pass through untouched.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-k", "-w", "-t", "-x", "-r", "-u", "-p", "-b", "-g", "-e", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "JWT secret key")
	fs.StringVar(&config.CredentialKey, "k", config.CredentialKey, "credential encryption key")
	fs.IntVar(&config.SyncWorkers, "w", config.SyncWorkers, "sync worker pool width")

	syncTimeout := fs.Int("t", int(config.SyncTimeout.Seconds()), "per-server sync timeout (in seconds)")
	checkTimeout := fs.Int("x", int(config.CheckTimeout.Seconds()), "connectivity check timeout (in seconds)")
	httpTimeout := fs.Int("r", int(config.HTTPTimeout.Seconds()), "CardDAV request timeout (in seconds)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SyncTimeout = time.Duration(*syncTimeout) * time.Second
	config.CheckTimeout = time.Duration(*checkTimeout) * time.Second
	config.HTTPTimeout = time.Duration(*httpTimeout) * time.Second
}
