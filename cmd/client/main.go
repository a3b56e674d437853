package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/tootcache/internal/client/app"
	"github.com/dmitrijs2005/tootcache/internal/client/config"
	"github.com/dmitrijs2005/tootcache/internal/logging"
)

func main() {

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	a, err := app.NewApp(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer a.Close()

	a.Run()

}
