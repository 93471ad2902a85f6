package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/dmitrijs2005/lifesync/internal/client/cli"
	"github.com/dmitrijs2005/lifesync/internal/client/config"
	"github.com/dmitrijs2005/lifesync/internal/logging"
)

func main() {

	ctx := context.Background()

	cfg := config.LoadConfig()

	logger, closer := logging.NewFileLogger(logging.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		Level:      slog.LevelInfo,
	})
	defer closer.Close()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
