package config

import "time"

// Config holds runtime settings for the lifesync client.
//
// Units: durations are time.Duration; flags take them in the units listed
// in the package documentation.
type Config struct {
	ServerEndpointAddr string
	DatabasePath       string
	UserID             string
	AccessToken        string

	OnlineCheckInterval time.Duration
	SyncDebounce        time.Duration
	StaleAfter          time.Duration
	SyncTimeout         time.Duration

	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabasePath = "lifesync.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.SyncDebounce = 2 * time.Second
	c.StaleAfter = 24 * time.Hour
	c.SyncTimeout = 60 * time.Second
	c.LogFile = "lifesync.log"
	c.LogMaxSizeMB = 10
	c.LogMaxBackups = 3
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
