package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/lifesync/internal/server"
	"github.com/dmitrijs2005/lifesync/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	if cfg.MintTokenFor != "" {
		if err := server.MintToken(cfg, os.Stdout); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	if cfg.MintAPIKeyFor != "" {
		if err := app.MintAPIKey(ctx, os.Stdout); err != nil {
			log.Printf("%v", err)
		}
		return
	}

	app.Run(ctx)

}
