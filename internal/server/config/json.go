package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/lifesync/internal/flagx"
	"github.com/dmitrijs2005/lifesync/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// Duration fields use timex.Duration, which accepts both strings such as
// "1s" and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	RedisAddr                   string         `json:"redis_addr"`
	RedisPassword               string         `json:"redis_password"`
	RedisDB                     int            `json:"redis_db"`
	RateLimitRequests           int            `json:"rate_limit_requests"`
	RateLimitWindow             timex.Duration `json:"rate_limit_window"`
	TombstoneRetention          timex.Duration `json:"tombstone_retention"`
	PurgeSchedule               string         `json:"purge_schedule"`
}

// parseJson loads configuration values from the JSON file named by -c or
// -config into the provided Config. Only non-empty values are copied, so
// defaults survive a partial file. It panics if the file cannot be read or
// contains invalid JSON.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setString(&config.PurgeSchedule, c.PurgeSchedule)
	setNonZero(&config.RedisDB, c.RedisDB)
	setNonZero(&config.RateLimitRequests, c.RateLimitRequests)
	setNonZero(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration.Duration)
	setNonZero(&config.RateLimitWindow, c.RateLimitWindow.Duration)
	setNonZero(&config.TombstoneRetention, c.TombstoneRetention.Duration)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setNonZero[T ~int | ~int64](dst *T, v T) {
	if v != 0 {
		*dst = v
	}
}
