package main

import (
	"context"
	"flag"
	"log"

	"magiclink/internal/server"
	"magiclink/internal/server/config"
)

func main() {

	var configPath string
	flag.StringVar(&configPath, "config", "", "path to YAML config file (optional)")
	flag.Parse()

	ctx := context.Background()
	cfg := config.MustLoadConfig(configPath)

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
