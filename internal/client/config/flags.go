package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// os.Args is filtered with flagx.FilterArgs first so the JSON stage's -c
// flag does not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-u", "-t", "-i", "-w", "-s", "-o", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.UserID, "u", cfg.UserID, "user id")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "access token")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "log file")

	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	syncDebounce := fs.Int("w", int(cfg.SyncDebounce.Milliseconds()), "sync debounce delay (in milliseconds)")
	staleAfter := fs.Int("s", int(cfg.StaleAfter.Hours()), "sync on startup when the last sync is older (in hours)")
	syncTimeout := fs.Int("o", int(cfg.SyncTimeout.Seconds()), "sync pass timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.SyncDebounce = time.Duration(*syncDebounce) * time.Millisecond
	cfg.StaleAfter = time.Duration(*staleAfter) * time.Hour
	cfg.SyncTimeout = time.Duration(*syncTimeout) * time.Second
}
