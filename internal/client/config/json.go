package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/lifesync/internal/flagx"
	"github.com/dmitrijs2005/lifesync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	DatabasePath        string         `json:"database_path"`
	UserID              string         `json:"user_id"`
	AccessToken         string         `json:"access_token"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	SyncDebounce        timex.Duration `json:"sync_debounce"`
	StaleAfter          timex.Duration `json:"stale_after"`
	SyncTimeout         timex.Duration `json:"sync_timeout"`
	LogFile             string         `json:"log_file"`
	LogMaxSizeMB        int            `json:"log_max_size_mb"`
	LogMaxBackups       int            `json:"log_max_backups"`
}

// parseJson overlays Config with the non-empty values of the JSON file named
// by -c/-config. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.UserID, jc.UserID)
	setString(&cfg.AccessToken, jc.AccessToken)
	setString(&cfg.LogFile, jc.LogFile)
	setNonZero(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval.Duration)
	setNonZero(&cfg.SyncDebounce, jc.SyncDebounce.Duration)
	setNonZero(&cfg.StaleAfter, jc.StaleAfter.Duration)
	setNonZero(&cfg.SyncTimeout, jc.SyncTimeout.Duration)
	setNonZero(&cfg.LogMaxSizeMB, jc.LogMaxSizeMB)
	setNonZero(&cfg.LogMaxBackups, jc.LogMaxBackups)
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
