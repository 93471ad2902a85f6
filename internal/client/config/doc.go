// Package config loads runtime configuration for the lifesync client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the sync gRPC endpoint
//	-d string   path of the local SQLite database
//	-u string   user id the local mirror belongs to
//	-t string   access token presented to the server
//	-i int      online status check interval (seconds)
//	-w int      sync debounce delay (milliseconds)
//	-s int      watermark age that triggers a startup sync (hours)
//	-o int      timeout of one sync pass (seconds)
//	-l string   log file path
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds. Missing keys keep their default:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "database_path": "lifesync.db",
//	  "user_id": "5f1c...",
//	  "access_token": "eyJ...",
//	  "online_check_interval": "3s",
//	  "sync_debounce": "2s",
//	  "stale_after": "24h",
//	  "sync_timeout": "60s",
//	  "log_file": "lifesync.log",
//	  "log_max_size_mb": 10,
//	  "log_max_backups": 3
//	}
package config
