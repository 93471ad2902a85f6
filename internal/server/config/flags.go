package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-h string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      minted access token validity, hours
//	-r string   Redis address; empty uses the in-memory rate limiter
//	-n int      ingestion requests allowed per window
//	-w int      rate limit window, seconds
//	-k int      tombstone retention, hours
//	-p string   tombstone purge cron spec (with seconds)
//	-mint-token string   print an access token for the user and exit
//	-mint-key string     create an ingestion API key for the user, print it and exit
//
// os.Args is filtered with flagx.FilterArgs first so the JSON stage's -c
// flag does not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-h", "-d", "-s", "-t", "-r", "-n", "-w", "-k", "-p", "-mint-token", "-mint-key"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.EndpointAddrHTTP, "h", config.EndpointAddrHTTP, "address and port to run HTTP server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.IntVar(&config.RateLimitRequests, "n", config.RateLimitRequests, "ingestion requests per window")
	fs.StringVar(&config.PurgeSchedule, "p", config.PurgeSchedule, "tombstone purge schedule")
	fs.StringVar(&config.MintTokenFor, "mint-token", config.MintTokenFor, "print an access token for the user id and exit")
	fs.StringVar(&config.MintAPIKeyFor, "mint-key", config.MintAPIKeyFor, "create an API key for the user id, print it and exit")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Hours()), "access token validity (in hours)")
	rateLimitWindow := fs.Int("w", int(config.RateLimitWindow.Seconds()), "rate limit window (in seconds)")
	tombstoneRetention := fs.Int("k", int(config.TombstoneRetention.Hours()), "tombstone retention (in hours)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Hour
	config.RateLimitWindow = time.Duration(*rateLimitWindow) * time.Second
	config.TombstoneRetention = time.Duration(*tombstoneRetention) * time.Hour
}
