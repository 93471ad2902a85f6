package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "127.0.0.1:9090", "-d", "/tmp/x.db", "-u", "u1", "-t", "tok",
				"-i", "10", "-w", "500", "-s", "12", "-o", "30", "-l", "/tmp/x.log"},
			expected: &Config{
				ServerEndpointAddr:  "127.0.0.1:9090",
				DatabasePath:        "/tmp/x.db",
				UserID:              "u1",
				AccessToken:         "tok",
				OnlineCheckInterval: 10 * time.Second,
				SyncDebounce:        500 * time.Millisecond,
				StaleAfter:          12 * time.Hour,
				SyncTimeout:         30 * time.Second,
				LogFile:             "/tmp/x.log",
			},
		},
		{
			name: "config flag is ignored",
			args: []string{"cmd", "-c", "cfg.json", "-i", "1"},
			expected: &Config{
				OnlineCheckInterval: time.Second,
			},
		},
		{name: "incorrect check interval", args: []string{"cmd", "-a", "127.0.0.1:9090", "-i", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
