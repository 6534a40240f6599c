package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gpu-price-tracker/src/config"
	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/storage"
)

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// 2. Load config
	if err := config.LoadEnv(); err != nil {
		fmt.Printf("Error loading env: %v\n", err)
		os.Exit(1)
	}
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)

	// 4. Open the series store read side
	store, err := storage.NewSeriesStore(conf.MConfig, appLogger.Named("Storage"))
	if err != nil {
		appLogger.Critical("Failed to open series store: %v", err)
		os.Exit(1)
	}
	if err := store.Initialize(); err != nil {
		appLogger.Critical("Failed to initialize series store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	// 5. Start servers
	servers := setupServers(conf, store, appLogger)
	failed := startServers(servers, appLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case <-failed:
	}

	appLogger.Info("Shutting down...")
	stopServers(servers, appLogger)
}
